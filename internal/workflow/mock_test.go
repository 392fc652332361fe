package workflow

import (
	"context"
	"sync"

	"github.com/agenthands/matchpredict/internal/prediction"
)

type MockPredictor struct {
	Result  prediction.Result
	Err     error
	Release chan struct{}

	mu      sync.Mutex
	calls   []Match
	ctxErrs []error
}

func (m *MockPredictor) PredictMatch(ctx context.Context, teamA, teamB string) (prediction.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Match{TeamA: teamA, TeamB: teamB})
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()

	if m.Release != nil {
		<-m.Release
	}
	if m.Err != nil {
		return prediction.Result{}, m.Err
	}
	return m.Result, nil
}

func (m *MockPredictor) Calls() []Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Match(nil), m.calls...)
}
