package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/matchpredict/internal/config"
)

// NewClient builds the configured provider client wrapped in a Guard.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*Guard, error) {
	provider := strings.ToLower(cfg.Provider)

	var c Client
	switch provider {
	case "openai":
		c = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, nil)

	case "gemini":
		gc, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		c = gc

	case "claude":
		c = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, nil)

	case "ollama":
		// Ollama speaks the OpenAI API under /v1, including json_schema
		// response formats.
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}

		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}

		c = NewOpenAIClient(apiKey, cfg.Model, baseURL, nil)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	return NewGuard(c, GuardOptions{
		Timeout:        cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSecond,
	}), nil
}
