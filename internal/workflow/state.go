package workflow

import "github.com/agenthands/matchpredict/internal/prediction"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Match is the team pair a prediction was requested for.
type Match struct {
	TeamA string `json:"team_a"`
	TeamB string `json:"team_b"`
}

// State is one of Idle, Loading, Success or Failure.
type State interface {
	Phase() Phase
	state()
}

// Idle accepts input. Notice holds the last input validation message.
type Idle struct {
	Notice string
}

type Loading struct {
	Match Match
}

type Success struct {
	Match  Match
	Result prediction.Result
}

// Failure carries a user-safe message only.
type Failure struct {
	Message string
}

func (Idle) Phase() Phase    { return PhaseIdle }
func (Loading) Phase() Phase { return PhaseLoading }
func (Success) Phase() Phase { return PhaseSuccess }
func (Failure) Phase() Phase { return PhaseError }

func (Idle) state()    {}
func (Loading) state() {}
func (Success) state() {}
func (Failure) state() {}
