package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient also serves OpenAI-compatible servers such as Ollama
// when baseURL is set.
func NewOpenAIClient(apiKey string, model string, baseURL string, httpClient *http.Client) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIClient{
		client: client,
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.chatRequest(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no response choices")
}

func (c *OpenAIClient) chatRequest(req Request) openai.ChatCompletionRequest {
	chat := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
	}
	if req.Temperature != nil {
		chat.Temperature = *req.Temperature
		// Temperature is omitempty; a literal 0 would fall back to the
		// provider default of 1.
		if chat.Temperature == 0 {
			chat.Temperature = math.SmallestNonzeroFloat32
		}
	}
	if req.Schema != nil {
		def := req.Schema.jsonSchema()
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        schemaName(req.Schema),
				Description: req.Schema.Description,
				Schema:      &def,
				Strict:      true,
			},
		}
	}
	return chat
}

func schemaName(s *Schema) string {
	if s.Name != "" {
		return s.Name
	}
	return "response"
}
