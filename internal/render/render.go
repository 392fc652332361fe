// Package render formats workflow snapshots as plain text for the terminal
// and chat front-ends.
package render

import (
	"fmt"
	"strings"

	"github.com/agenthands/matchpredict/internal/prediction"
	"github.com/agenthands/matchpredict/internal/workflow"
)

const (
	Title      = "AI Soccer Predictor"
	Disclaimer = "Predictions are for entertainment purposes only."
	Analyzing  = "Analyzing..."
)

func Text(s workflow.Snapshot) string {
	switch s.Phase {
	case workflow.PhaseLoading:
		if s.Match != nil {
			return fmt.Sprintf("%s %s vs %s", Analyzing, s.Match.TeamA, s.Match.TeamB)
		}
		return Analyzing
	case workflow.PhaseSuccess:
		if s.Match != nil && s.Result != nil {
			return Prediction(*s.Match, *s.Result)
		}
	case workflow.PhaseError:
		return s.Error
	}

	if s.Notice != "" {
		return s.Notice
	}
	return "Enter two teams to predict the match outcome."
}

// Prediction renders the result card: score, each team's status, headline,
// confidence bar and analysis.
func Prediction(m workflow.Match, r prediction.Result) string {
	var sb strings.Builder

	sb.WriteString("Match Prediction\n")
	fmt.Fprintf(&sb, "%s\n\n", r.PredictedScore)
	fmt.Fprintf(&sb, "%s %s\n", statusMark(r.Status(m.TeamA)), m.TeamA)
	fmt.Fprintf(&sb, "%s %s\n\n", statusMark(r.Status(m.TeamB)), m.TeamB)

	if r.IsDraw() {
		sb.WriteString("Predicted Outcome: Draw\n")
	} else {
		fmt.Fprintf(&sb, "Predicted Winner: %s\n", r.Winner)
	}

	fmt.Fprintf(&sb, "Confidence: %s %s%%\n\n", ConfidenceBar(r.Confidence, 20), formatConfidence(r.Confidence))
	sb.WriteString("AI Analysis\n")
	sb.WriteString(r.Analysis)

	return sb.String()
}

func statusMark(s prediction.TeamStatus) string {
	switch s {
	case prediction.StatusWon:
		return "[W]"
	case prediction.StatusDrew:
		return "[D]"
	default:
		return "[L]"
	}
}

// ConfidenceBar draws a width-cell bar. Values outside 0-100 are clamped
// for drawing only.
func ConfidenceBar(confidence float64, width int) string {
	c := confidence
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	filled := int(c/100*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func formatConfidence(c float64) string {
	if c == float64(int64(c)) {
		return fmt.Sprintf("%d", int64(c))
	}
	return fmt.Sprintf("%.1f", c)
}
