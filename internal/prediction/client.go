// Package prediction asks an LLM for a match prediction under a fixed JSON
// schema and narrows the reply into a Result.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agenthands/matchpredict/internal/llm"
)

var (
	// ErrFetchFailed is returned for every failed prediction. Causes are
	// logged, never returned.
	ErrFetchFailed = errors.New("prediction fetch failed")

	// ErrMalformedResponse means the provider answered with JSON that does
	// not match the schema. It wraps ErrFetchFailed.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrFetchFailed)
)

const DefaultTemperature float32 = 0.3

const DefaultPrompt = `
Analyze the upcoming soccer match between %s and %s.
Based on all available public data including recent form, historical head-to-head records, player injuries, team tactics, and general team strength, predict the outcome.

Provide the following:
1. The name of the winning team. If you predict a draw, state "Draw".
2. A confidence score for your prediction on a scale of 0-100.
3. A brief analysis (1-2 sentences) justifying your prediction.
4. A predicted final score.

Respond ONLY with a valid JSON object that adheres to the provided schema. Do not include any other text or markdown formatting.
`

// Schema is the response contract sent with every prediction request.
var Schema = &llm.Schema{
	Name:        "match_prediction",
	Type:        llm.TypeObject,
	Description: "Predicted outcome of a soccer match.",
	Properties: map[string]*llm.Schema{
		"winner": {
			Type:        llm.TypeString,
			Description: "The predicted winning team. If a draw, state 'Draw'.",
		},
		"confidence": {
			Type:        llm.TypeNumber,
			Description: "A confidence score for the prediction, from 0 to 100.",
		},
		"analysis": {
			Type:        llm.TypeString,
			Description: "A brief, one or two-sentence analysis explaining the prediction, considering factors like recent form, key players, and head-to-head records.",
		},
		"predictedScore": {
			Type:        llm.TypeString,
			Description: "The predicted final score, e.g., '2-1'.",
		},
	},
	Required: []string{"winner", "confidence", "analysis", "predictedScore"},
}

type Client struct {
	LLM         llm.Client
	Prompt      string
	Temperature float32
	logger      zerolog.Logger
}

type Option func(*Client)

// WithPrompt replaces the instruction template. It must hold two %s verbs,
// team A then team B. An empty template keeps the default.
func WithPrompt(prompt string) Option {
	return func(c *Client) {
		if prompt != "" {
			c.Prompt = prompt
		}
	}
}

func WithTemperature(t float32) Option {
	return func(c *Client) { c.Temperature = t }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(llmClient llm.Client, opts ...Option) *Client {
	c := &Client{
		LLM:         llmClient,
		Prompt:      DefaultPrompt,
		Temperature: DefaultTemperature,
		logger:      log.With().Str("component", "prediction_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PredictMatch returns a fully validated Result or an error wrapping
// ErrFetchFailed. Team names are interpolated verbatim; validating them is
// the caller's job.
func (c *Client) PredictMatch(ctx context.Context, teamA, teamB string) (Result, error) {
	start := time.Now()
	defer func() { predictionDuration.Observe(time.Since(start).Seconds()) }()

	logger := c.logger.With().Str("team_a", teamA).Str("team_b", teamB).Logger()

	response, err := c.LLM.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(c.Prompt, teamA, teamB),
		Schema:      Schema,
		Temperature: llm.Temperature(c.Temperature),
	})
	if err != nil {
		logger.Error().Err(err).Msg("LLM request failed")
		predictionsTotal.WithLabelValues(outcomeFailed).Inc()
		return Result{}, ErrFetchFailed
	}

	result, err := decode(response)
	if errors.Is(err, errShape) {
		logger.Error().Err(err).Str("response", response).Msg("Malformed prediction response")
		predictionsTotal.WithLabelValues(outcomeMalformed).Inc()
		return Result{}, ErrMalformedResponse
	}
	if err != nil {
		logger.Error().Err(err).Str("response", response).Msg("Unparseable prediction response")
		predictionsTotal.WithLabelValues(outcomeFailed).Inc()
		return Result{}, ErrFetchFailed
	}

	logger.Debug().
		Str("winner", result.Winner).
		Float64("confidence", result.Confidence).
		Dur("took", time.Since(start)).
		Msg("Prediction received")
	predictionsTotal.WithLabelValues(outcomeSuccess).Inc()
	return result, nil
}
