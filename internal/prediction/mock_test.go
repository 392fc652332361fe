package prediction

import (
	"context"

	"github.com/agenthands/matchpredict/internal/llm"
)

type MockLLMClient struct {
	Response string
	Err      error
	Requests []llm.Request
}

func (m *MockLLMClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
