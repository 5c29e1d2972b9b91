package bridge

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sashabaranov/go-openai"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Entry is one message of the prompt exchange
type Entry struct {
	Role       string
	Content    string
	ToolName   string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func assistantEntry(msg openai.ChatCompletionMessage) Entry {
	e := Entry{Role: openai.ChatMessageRoleAssistant, Content: msg.Content}
	for _, c := range msg.ToolCalls {
		e.ToolCalls = append(e.ToolCalls, ToolCall{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return e
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

//go:embed transcript.html
var transcriptHTML string

var transcriptTemplate = template.Must(template.New("transcript").Parse(transcriptHTML))

// renderMarkdown converts the answer to HTML with links opening in a new tab
func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown.Convert failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("goquery.NewDocumentFromReader failed: %w", err)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("target", "_blank")
		s.SetAttr("rel", "noopener noreferrer")
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render body failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func renderTranscript(entries []Entry, final string) (string, error) {
	var buf bytes.Buffer
	err := transcriptTemplate.Execute(&buf, map[string]any{
		"Entries": entries,
		"Final":   final,
	})
	if err != nil {
		return "", fmt.Errorf("transcriptTemplate.Execute failed: %w", err)
	}
	return buf.String(), nil
}
