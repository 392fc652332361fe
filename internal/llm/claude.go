package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeMaxTokens = 1000

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey string, model string, baseURL string, httpClient *http.Client) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, anthropic.WithHTTPClient(httpClient))
	}

	client := anthropic.NewClient(apiKey, opts...)

	return &ClaudeClient{
		client: client,
		model:  model,
	}
}

// Generate returns the text reply, or for schema requests the JSON input
// Claude produced for the forced response tool.
func (c *ClaudeClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateMessages(ctx, c.messagesRequest(req))
	if err != nil {
		return "", err
	}

	for _, content := range resp.Content {
		if req.Schema != nil {
			if content.Type == anthropic.MessagesContentTypeToolUse && content.MessageContentToolUse != nil {
				return string(content.MessageContentToolUse.Input), nil
			}
			continue
		}
		if content.Text != nil {
			return *content.Text, nil
		}
	}
	return "", fmt.Errorf("no response content")
}

// Claude has no JSON response mode; a schema is expressed as a single tool
// the model is forced to call.
func (c *ClaudeClient) messagesRequest(req Request) anthropic.MessagesRequest {
	msg := anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(req.Prompt),
				},
			},
		},
		MaxTokens: claudeMaxTokens,
	}
	if req.Temperature != nil {
		t := *req.Temperature
		msg.Temperature = &t
	}
	if req.Schema != nil {
		name := schemaName(req.Schema)
		msg.Tools = []anthropic.ToolDefinition{
			{
				Name:        name,
				Description: req.Schema.Description,
				InputSchema: req.Schema.Map(),
			},
		}
		msg.ToolChoice = &anthropic.ToolChoice{Type: "tool", Name: name}
	}
	return msg
}
