// Package workflow sequences team input, the single outbound prediction
// call and its result or error.
package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agenthands/matchpredict/internal/prediction"
)

const (
	MsgMissingTeams     = "Please enter both team names."
	MsgSameTeams        = "Please enter two different teams."
	MsgPredictionFailed = "Failed to get prediction. The AI might be busy. Please try again."
)

type Predictor interface {
	PredictMatch(ctx context.Context, teamA, teamB string) (prediction.Result, error)
}

// Workflow is safe for concurrent use. At most one prediction call is in
// flight at a time.
type Workflow struct {
	mu        sync.Mutex
	predictor Predictor
	logger    zerolog.Logger
	now       func() time.Time

	teamA   string
	teamB   string
	state   State
	done    chan struct{}
	touched time.Time
}

type Option func(*Workflow)

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func New(predictor Predictor, opts ...Option) *Workflow {
	w := &Workflow{
		predictor: predictor,
		logger:    log.With().Str("component", "workflow").Logger(),
		now:       time.Now,
		state:     Idle{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.touched = w.now()
	return w
}

func (w *Workflow) SetTeamA(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teamA = name
	w.touched = w.now()
}

func (w *Workflow) SetTeamB(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teamB = name
	w.touched = w.now()
}

// SetTeams sets both inputs at once.
func (w *Workflow) SetTeams(teamA, teamB string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teamA, w.teamB = teamA, teamB
	w.touched = w.now()
}

func (w *Workflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmit()
}

func (w *Workflow) canSubmit() bool {
	if _, loading := w.state.(Loading); loading {
		return false
	}
	return strings.TrimSpace(w.teamA) != "" && strings.TrimSpace(w.teamB) != ""
}

// Submit validates the inputs and, when they pass, moves to Loading before
// returning and starts the prediction call. The returned channel is closed
// once that call has settled into Success or Failure; started reports
// whether this Submit issued the call. When no call is started the channel
// is already closed, except while Loading, where the in-flight call's
// channel is returned and nothing else happens.
//
// The call is detached from ctx cancellation; only the transport timeout
// bounds it.
func (w *Workflow) Submit(ctx context.Context) (done <-chan struct{}, started bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = w.now()

	if _, loading := w.state.(Loading); loading {
		return w.done, false
	}

	teamA := strings.TrimSpace(w.teamA)
	teamB := strings.TrimSpace(w.teamB)
	switch {
	case teamA == "" || teamB == "":
		w.state = Idle{Notice: MsgMissingTeams}
		return closed(), false
	case strings.EqualFold(teamA, teamB):
		w.state = Idle{Notice: MsgSameTeams}
		return closed(), false
	}

	match := Match{TeamA: teamA, TeamB: teamB}
	ch := make(chan struct{})
	w.state = Loading{Match: match}
	w.done = ch

	go w.run(context.WithoutCancel(ctx), match, ch)
	return ch, true
}

func (w *Workflow) run(ctx context.Context, match Match, done chan struct{}) {
	defer close(done)

	result, err := w.predictor.PredictMatch(ctx, match.TeamA, match.TeamB)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.done = nil
	w.touched = w.now()

	if err != nil {
		w.logger.Warn().Err(err).Str("team_a", match.TeamA).Str("team_b", match.TeamB).Msg("Prediction failed")
		w.state = Failure{Message: MsgPredictionFailed}
		return
	}
	w.state = Success{Match: match, Result: result}
}

// Reset clears inputs, result and error and returns to Idle. It reports
// false and changes nothing while a call is in flight.
func (w *Workflow) Reset() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, loading := w.state.(Loading); loading {
		return false
	}
	w.teamA, w.teamB = "", ""
	w.state = Idle{}
	w.touched = w.now()
	return true
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Busy reports whether a prediction call is in flight.
func (w *Workflow) Busy() bool {
	_, loading := w.State().(Loading)
	return loading
}

// LastActivity is the time of the last input, submit, reset or settled call.
func (w *Workflow) LastActivity() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}

func closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
