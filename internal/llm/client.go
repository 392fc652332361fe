package llm

import (
	"context"
)

// Request is a single completion request. Schema, when set, asks the
// provider to constrain its output to a JSON value of that shape.
type Request struct {
	Prompt      string
	Schema      *Schema
	Temperature *float32
}

type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Temperature returns a pointer to t for use in Request.
func Temperature(t float32) *float32 {
	return &t
}
