package workflow

import "github.com/agenthands/matchpredict/internal/prediction"

// Snapshot is a consistent copy of a workflow for rendering.
type Snapshot struct {
	TeamA     string             `json:"team_a"`
	TeamB     string             `json:"team_b"`
	Phase     Phase              `json:"phase"`
	CanSubmit bool               `json:"can_submit"`
	Notice    string             `json:"notice,omitempty"`
	Error     string             `json:"error,omitempty"`
	Match     *Match             `json:"match,omitempty"`
	Result    *prediction.Result `json:"result,omitempty"`
	Outcome   string             `json:"outcome,omitempty"`
	State     State              `json:"-"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		TeamA:     w.teamA,
		TeamB:     w.teamB,
		Phase:     w.state.Phase(),
		CanSubmit: w.canSubmit(),
		State:     w.state,
	}

	switch st := w.state.(type) {
	case Idle:
		s.Notice = st.Notice
	case Loading:
		m := st.Match
		s.Match = &m
	case Success:
		m, r := st.Match, st.Result
		s.Match = &m
		s.Result = &r
		s.Outcome = r.Outcome(m.TeamA, m.TeamB).String()
	case Failure:
		s.Error = st.Message
	}
	return s
}
