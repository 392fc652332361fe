package prediction

import "strings"

// DrawWinner is the Winner value the model uses for a drawn match.
const DrawWinner = "Draw"

// Result is a validated match prediction.
type Result struct {
	Winner         string  `json:"winner"`
	Confidence     float64 `json:"confidence"`
	Analysis       string  `json:"analysis"`
	PredictedScore string  `json:"predictedScore"`
}

func (r Result) IsDraw() bool {
	return strings.EqualFold(strings.TrimSpace(r.Winner), DrawWinner)
}

type Outcome int

const (
	// Undecided means the model named a winner that matches neither team.
	Undecided Outcome = iota
	Draw
	TeamAWins
	TeamBWins
)

func (o Outcome) String() string {
	switch o {
	case Draw:
		return "draw"
	case TeamAWins:
		return "team_a"
	case TeamBWins:
		return "team_b"
	default:
		return "undecided"
	}
}

// Outcome resolves Winner against the submitted pair, ignoring case.
func (r Result) Outcome(teamA, teamB string) Outcome {
	if r.IsDraw() {
		return Draw
	}
	winner := strings.TrimSpace(r.Winner)
	switch {
	case strings.EqualFold(winner, strings.TrimSpace(teamA)):
		return TeamAWins
	case strings.EqualFold(winner, strings.TrimSpace(teamB)):
		return TeamBWins
	default:
		return Undecided
	}
}

type TeamStatus int

const (
	StatusLost TeamStatus = iota
	StatusWon
	StatusDrew
)

// Status is how team fared under the prediction. A team that is not the
// named winner counts as lost, which includes both teams when the outcome
// is Undecided.
func (r Result) Status(team string) TeamStatus {
	if r.IsDraw() {
		return StatusDrew
	}
	if strings.EqualFold(strings.TrimSpace(r.Winner), strings.TrimSpace(team)) {
		return StatusWon
	}
	return StatusLost
}
