package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/matchpredict/internal/prediction"
)

var drawResult = prediction.Result{
	Winner:         "Draw",
	Confidence:     55,
	Analysis:       "Both sides are evenly matched.",
	PredictedScore: "1-1",
}

func newTestWorkflow(p *MockPredictor) *Workflow {
	return New(p, WithLogger(zerolog.Nop()))
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("prediction call did not settle")
	}
}

func submitAndWait(t *testing.T, w *Workflow, ctx context.Context) bool {
	t.Helper()
	done, started := w.Submit(ctx)
	wait(t, done)
	return started
}

func TestInitialState(t *testing.T) {
	w := newTestWorkflow(&MockPredictor{})

	assert.Equal(t, Idle{}, w.State())
	assert.False(t, w.CanSubmit())

	s := w.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Empty(t, s.Notice)
	assert.Nil(t, s.Result)
}

func TestSubmitEntersLoadingBeforeCallResolves(t *testing.T) {
	p := &MockPredictor{Result: drawResult, Release: make(chan struct{})}
	w := newTestWorkflow(p)
	w.SetTeamA("Arsenal")
	w.SetTeamB("Chelsea")
	require.True(t, w.CanSubmit())

	done, started := w.Submit(context.Background())

	assert.True(t, started)
	assert.Equal(t, Loading{Match: Match{TeamA: "Arsenal", TeamB: "Chelsea"}}, w.State())
	assert.False(t, w.CanSubmit())
	assert.True(t, w.Busy())

	close(p.Release)
	wait(t, done)

	assert.Equal(t, PhaseSuccess, w.State().Phase())
	assert.Equal(t, []Match{{TeamA: "Arsenal", TeamB: "Chelsea"}}, p.Calls())
}

func TestSubmitMissingTeams(t *testing.T) {
	cases := []struct{ a, b string }{
		{"", ""},
		{"Arsenal", ""},
		{"", "Chelsea"},
		{"   ", "Chelsea"},
	}

	for _, tc := range cases {
		p := &MockPredictor{}
		w := newTestWorkflow(p)
		w.SetTeams(tc.a, tc.b)

		started := submitAndWait(t, w, context.Background())

		assert.False(t, started)
		assert.Equal(t, Idle{Notice: MsgMissingTeams}, w.State(), "teams %q / %q", tc.a, tc.b)
		assert.Empty(t, p.Calls())
	}
}

func TestSubmitSameTeamsIgnoringCase(t *testing.T) {
	p := &MockPredictor{}
	w := newTestWorkflow(p)
	w.SetTeamA("Chelsea")
	w.SetTeamB("chelsea")

	assert.False(t, submitAndWait(t, w, context.Background()))

	assert.Equal(t, Idle{Notice: MsgSameTeams}, w.State())
	assert.Equal(t, MsgSameTeams, w.Snapshot().Notice)
	assert.Empty(t, p.Calls())
}

func TestSubmitSuccessWithDraw(t *testing.T) {
	p := &MockPredictor{Result: drawResult}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")

	submitAndWait(t, w, context.Background())

	st, ok := w.State().(Success)
	require.True(t, ok)
	assert.Equal(t, drawResult, st.Result)
	assert.Equal(t, prediction.Draw, st.Result.Outcome(st.Match.TeamA, st.Match.TeamB))

	s := w.Snapshot()
	assert.Equal(t, PhaseSuccess, s.Phase)
	assert.Equal(t, "draw", s.Outcome)
	require.NotNil(t, s.Result)
	assert.Equal(t, "1-1", s.Result.PredictedScore)
}

func TestSubmitFailure(t *testing.T) {
	p := &MockPredictor{Err: prediction.ErrFetchFailed}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")

	submitAndWait(t, w, context.Background())

	assert.Equal(t, Failure{Message: MsgPredictionFailed}, w.State())
	s := w.Snapshot()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, MsgPredictionFailed, s.Error)
	assert.Nil(t, s.Result)
	assert.True(t, s.CanSubmit)
}

func TestResubmitAfterSuccessDiscardsResult(t *testing.T) {
	p := &MockPredictor{Result: drawResult}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")
	submitAndWait(t, w, context.Background())
	require.Equal(t, PhaseSuccess, w.State().Phase())

	p.Err = errors.New("boom")
	submitAndWait(t, w, context.Background())

	assert.Equal(t, Failure{Message: MsgPredictionFailed}, w.State())
	assert.Nil(t, w.Snapshot().Result)
	assert.Len(t, p.Calls(), 2)
}

func TestSubmitWhileLoadingIsNoop(t *testing.T) {
	p := &MockPredictor{Result: drawResult, Release: make(chan struct{})}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")

	first, started := w.Submit(context.Background())
	require.True(t, started)
	second, started := w.Submit(context.Background())
	assert.False(t, started)
	w.SetTeams("Everton", "Leeds")
	third, started := w.Submit(context.Background())
	assert.False(t, started)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)

	close(p.Release)
	wait(t, first)

	assert.Len(t, p.Calls(), 1)
	st, ok := w.State().(Success)
	require.True(t, ok)
	assert.Equal(t, Match{TeamA: "Arsenal", TeamB: "Chelsea"}, st.Match)
}

func TestConcurrentSubmitStartsOneCall(t *testing.T) {
	p := &MockPredictor{Result: drawResult, Release: make(chan struct{})}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")

	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := w.Submit(context.Background()); ok {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), started.Load())
	close(p.Release)
	require.Eventually(t, func() bool { return !w.Busy() }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, p.Calls(), 1)
}

func TestReset(t *testing.T) {
	for name, p := range map[string]*MockPredictor{
		"from success": {Result: drawResult},
		"from error":   {Err: prediction.ErrMalformedResponse},
	} {
		t.Run(name, func(t *testing.T) {
			w := newTestWorkflow(p)
			w.SetTeams("Arsenal", "Chelsea")
			submitAndWait(t, w, context.Background())

			assert.True(t, w.Reset())

			assert.Equal(t, Idle{}, w.State())
			s := w.Snapshot()
			assert.Empty(t, s.TeamA)
			assert.Empty(t, s.TeamB)
			assert.Empty(t, s.Error)
			assert.Empty(t, s.Notice)
			assert.Nil(t, s.Result)
			assert.False(t, s.CanSubmit)
		})
	}
}

func TestResetWhileLoadingIsIgnored(t *testing.T) {
	p := &MockPredictor{Result: drawResult, Release: make(chan struct{})}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")
	done, _ := w.Submit(context.Background())

	assert.False(t, w.Reset())
	assert.Equal(t, PhaseLoading, w.State().Phase())

	close(p.Release)
	wait(t, done)
	assert.Equal(t, PhaseSuccess, w.State().Phase())
}

func TestSubmitDetachedFromCallerCancellation(t *testing.T) {
	p := &MockPredictor{Result: drawResult}
	w := newTestWorkflow(p)
	w.SetTeams("Arsenal", "Chelsea")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	submitAndWait(t, w, ctx)

	assert.Equal(t, PhaseSuccess, w.State().Phase())
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, []error{nil}, p.ctxErrs)
}

func TestSubmitTrimsTeamNames(t *testing.T) {
	p := &MockPredictor{Result: drawResult}
	w := newTestWorkflow(p)
	w.SetTeams("  Arsenal ", "Chelsea\n")

	submitAndWait(t, w, context.Background())

	assert.Equal(t, []Match{{TeamA: "Arsenal", TeamB: "Chelsea"}}, p.Calls())
}

func TestLastActivity(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w := New(&MockPredictor{}, WithLogger(zerolog.Nop()), WithClock(func() time.Time { return now }))
	assert.Equal(t, now, w.LastActivity())

	now = now.Add(time.Minute)
	w.SetTeamA("Arsenal")
	assert.Equal(t, now, w.LastActivity())
}
