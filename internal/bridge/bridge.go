// Package bridge forwards prompts to a language model and lets it call the email tools.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/llm"
	"mail-assistant-go/internal/metrics"
)

// Prompt outcomes, used as a metric label
const (
	OutcomeOK       = "ok"
	OutcomeMaxTurns = "max_turns"
	OutcomeError    = "error"
)

const preambleTemplate = `
- You are an AI assistant specialized in managing emails.
- You can perform various actions such as listing, searching, filtering, and manipulating emails.
- Use the provided tools to interact with the email system.
- Never ask the user for confirmation before performing an action.
- If needed, my email address is %q so you can use it to send emails or perform actions related to my account.
%s
`

// Options configures a Bridge
type Options struct {
	Model        string
	MaxTurns     int
	OwnerAddress string
}

// Result is the rendered outcome of a prompt
type Result struct {
	// Content is the final assistant message as returned by the model.
	Content      string
	Response     string
	HTMLResponse string
	Rounds       int
	Transcript   []Entry
}

// Bridge runs the model/tool loop for a prompt
type Bridge struct {
	model   llm.ChatCompleter
	tools   *mcp.ClientSession
	metrics *metrics.Metrics
	opts    Options
}

// New creates a bridge calling tools through the given MCP session
func New(model llm.ChatCompleter, tools *mcp.ClientSession, m *metrics.Metrics, opts Options) *Bridge {
	return &Bridge{
		model:   model,
		tools:   tools,
		metrics: m,
		opts:    opts,
	}
}

// ConnectTools opens an in-process client session on server
func ConnectTools(ctx context.Context, server *mcp.Server) (*mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "prompt-bridge", Version: "v1.0.0"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		return nil, fmt.Errorf("server.Connect failed: %w", err)
	}

	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("client.Connect failed: %w", err)
	}
	return session, nil
}

// Run answers prompt, executing every tool call the model asks for
func (b *Bridge) Run(ctx context.Context, prompt string) (*Result, error) {
	start := time.Now()
	defer func() {
		b.metrics.PromptDurations.Observe(time.Since(start).Seconds())
	}()

	res, outcome, err := b.run(ctx, prompt)
	b.metrics.PromptRequests.WithLabelValues(outcome).Inc()
	if err != nil {
		return nil, err
	}
	b.metrics.ModelRounds.Observe(float64(res.Rounds))

	logrus.WithFields(logrus.Fields{
		"rounds":  res.Rounds,
		"outcome": outcome,
	}).Info("Prompt answered")
	return res, nil
}

func (b *Bridge) run(ctx context.Context, prompt string) (*Result, string, error) {
	tools, err := b.listTools(ctx)
	if err != nil {
		return nil, OutcomeError, err
	}

	content := fmt.Sprintf(preambleTemplate, b.opts.OwnerAddress, prompt)
	messages := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: content}}
	transcript := []Entry{{Role: openai.ChatMessageRoleUser, Content: content}}

	var (
		final   string
		rounds  int
		outcome = OutcomeMaxTurns
	)

	for rounds < b.opts.MaxTurns {
		rounds++

		resp, err := b.model.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    b.opts.Model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return nil, OutcomeError, fmt.Errorf("model completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, OutcomeError, errors.New("model completion returned no choices")
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg)
		transcript = append(transcript, assistantEntry(msg))
		final = msg.Content

		if len(msg.ToolCalls) == 0 {
			outcome = OutcomeOK
			break
		}

		for _, call := range msg.ToolCalls {
			output := b.callTool(ctx, call)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
			transcript = append(transcript, Entry{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolName:   call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	if outcome == OutcomeMaxTurns {
		logrus.WithField("max_turns", b.opts.MaxTurns).Warn("Prompt stopped at the turn limit")
	}

	response, err := renderMarkdown(final)
	if err != nil {
		return nil, OutcomeError, err
	}
	htmlResponse, err := renderTranscript(transcript, final)
	if err != nil {
		return nil, OutcomeError, err
	}

	return &Result{
		Content:      final,
		Response:     response,
		HTMLResponse: htmlResponse,
		Rounds:       rounds,
		Transcript:   transcript,
	}, outcome, nil
}

func (b *Bridge) listTools(ctx context.Context) ([]openai.Tool, error) {
	res, err := b.tools.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("tools.ListTools failed: %w", err)
	}

	tools := make([]openai.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		params, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema of %s failed: %w", t.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}
	return tools, nil
}

// callTool executes a tool call. Failures are returned as text for the model to read.
func (b *Bridge) callTool(ctx context.Context, call openai.ToolCall) string {
	name := call.Function.Name
	args := strings.TrimSpace(call.Function.Arguments)
	if args == "" {
		args = "{}"
	}

	log := logrus.WithFields(logrus.Fields{"tool": name, "tool_call_id": call.ID})

	if !json.Valid([]byte(args)) {
		b.metrics.ToolCalls.WithLabelValues(name, OutcomeError).Inc()
		log.Warn("Tool call with malformed arguments")
		return fmt.Sprintf("Error: arguments of %s are not valid JSON", name)
	}

	res, err := b.tools.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: json.RawMessage(args),
	})
	if err != nil {
		b.metrics.ToolCalls.WithLabelValues(name, OutcomeError).Inc()
		log.Warnf("Tool call failed: %v", err)
		return "Error: " + err.Error()
	}

	text := contentText(res.Content)
	if res.IsError {
		b.metrics.ToolCalls.WithLabelValues(name, OutcomeError).Inc()
		log.Warnf("Tool returned an error: %s", text)
		return "Error: " + text
	}

	b.metrics.ToolCalls.WithLabelValues(name, OutcomeOK).Inc()
	log.Debug("Tool call succeeded")
	return text
}

func contentText(content []mcp.Content) string {
	var sb strings.Builder
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
