// Package llm builds the chat completion client used by the prompt bridge.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"mail-assistant-go/internal/config"
)

// ChatCompleter is the subset of the OpenAI client the bridge needs
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Model identifies a model as "provider:name"
type Model struct {
	Provider string
	Name     string
}

func (m Model) String() string {
	return m.Provider + ":" + m.Name
}

// OpenAI compatible endpoints of the known providers
var providerBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"groq":     "https://api.groq.com/openai/v1",
	"mistral":  "https://api.mistral.ai/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"ollama":   "http://localhost:11434/v1",
}

// ParseModel splits "provider:name". A bare name is an OpenAI model.
func ParseModel(s string) (Model, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Model{}, fmt.Errorf("model name is empty")
	}

	provider, name, found := strings.Cut(s, ":")
	if !found {
		return Model{Provider: "openai", Name: s}, nil
	}
	if provider == "" || name == "" {
		return Model{}, fmt.Errorf("invalid model %q, expected provider:name", s)
	}

	return Model{Provider: strings.ToLower(provider), Name: name}, nil
}

// NewClient creates an OpenAI compatible client for the configured model
func NewClient(cfg config.LLMConfig) (*openai.Client, Model, error) {
	model, err := ParseModel(cfg.Model)
	if err != nil {
		return nil, Model{}, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		var ok bool
		if baseURL, ok = providerBaseURLs[model.Provider]; !ok {
			return nil, Model{}, fmt.Errorf("unknown provider %q, set llm.base_url", model.Provider)
		}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(baseURL, "/")

	return openai.NewClientWithConfig(clientCfg), model, nil
}
