package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errNoJSON = errors.New("no JSON object found in response")
	errShape  = errors.New("response does not match the prediction schema")
)

// extractObject trims the response and cuts the outermost {...} when a
// provider wrapped the object in a markdown fence or prose.
func extractObject(response string) (string, error) {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text, nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end < start {
		return "", errNoJSON
	}
	return text[start : end+1], nil
}

// decode parses the response and narrows the untyped value into a Result.
// Syntax problems and shape problems are reported as different errors:
// only the latter wrap errShape.
func decode(response string) (Result, error) {
	text, err := extractObject(response)
	if err != nil {
		return Result{}, err
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Result{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return narrow(raw)
}

func narrow(raw any) (Result, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("%w: top-level value is %T, not an object", errShape, raw)
	}

	var (
		r    Result
		errs []string
	)
	if v, ok := obj["winner"].(string); ok {
		r.Winner = v
	} else {
		errs = append(errs, fieldProblem(obj, "winner", "string"))
	}
	if v, ok := obj["confidence"].(float64); ok {
		r.Confidence = v
	} else {
		errs = append(errs, fieldProblem(obj, "confidence", "number"))
	}
	if v, ok := obj["analysis"].(string); ok {
		r.Analysis = v
	} else {
		errs = append(errs, fieldProblem(obj, "analysis", "string"))
	}
	if v, ok := obj["predictedScore"].(string); ok {
		r.PredictedScore = v
	} else {
		errs = append(errs, fieldProblem(obj, "predictedScore", "string"))
	}

	if len(errs) > 0 {
		return Result{}, fmt.Errorf("%w: %s", errShape, strings.Join(errs, "; "))
	}
	return r, nil
}

func fieldProblem(obj map[string]any, name, want string) string {
	v, present := obj[name]
	if !present {
		return fmt.Sprintf("%s is missing", name)
	}
	return fmt.Sprintf("%s is %T, want %s", name, v, want)
}
