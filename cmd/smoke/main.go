// Command smoke drives a running matchpredict HTTP API through one full
// session: create, set teams, submit and wait, reset, delete.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

type session struct {
	ID      string          `json:"id"`
	Phase   string          `json:"phase"`
	Notice  string          `json:"notice"`
	Error   string          `json:"error"`
	Outcome string          `json:"outcome"`
	Result  json.RawMessage `json:"result"`
}

var client = &http.Client{Timeout: 60 * time.Second}

func main() {
	app := &cli.App{
		Name:  "smoke",
		Usage: "Exercise a running matchpredict HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "API base URL", EnvVars: []string{"SMOKE_URL"}},
			&cli.StringFlag{Name: "team-a", Value: "Real Madrid", Usage: "First team"},
			&cli.StringFlag{Name: "team-b", Value: "Barcelona", Usage: "Second team"},
		},
		Action: func(c *cli.Context) error {
			run(c.String("url"), c.String("team-a"), c.String("team-b"))
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(baseURL, teamA, teamB string) {
	fmt.Println("Starting smoke test...")

	fmt.Println("1. Health check...")
	if _, err := send(baseURL, http.MethodGet, "/healthz", nil, http.StatusOK); err != nil {
		fail("Health check", err)
	}

	fmt.Println("2. Creating session...")
	s, err := send(baseURL, http.MethodPost, "/sessions", nil, http.StatusCreated)
	if err != nil {
		fail("Create session", err)
	}
	path := "/sessions/" + s.ID

	fmt.Println("3. Setting teams...")
	teams := map[string]string{"team_a": teamA, "team_b": teamB}
	if _, err := send(baseURL, http.MethodPut, path+"/teams", teams, http.StatusOK); err != nil {
		fail("Set teams", err)
	}

	fmt.Println("4. Submitting and waiting for the prediction...")
	s, err = send(baseURL, http.MethodPost, path+"/submit?wait=true", nil, http.StatusOK)
	if err != nil {
		fail("Submit", err)
	}
	if s.Phase != "success" {
		fail("Submit", fmt.Errorf("phase %q: %s", s.Phase, s.Error))
	}
	fmt.Printf("   outcome=%s result=%s\n", s.Outcome, string(s.Result))

	fmt.Println("5. Resetting...")
	s, err = send(baseURL, http.MethodPost, path+"/reset", nil, http.StatusOK)
	if err != nil {
		fail("Reset", err)
	}
	if s.Phase != "idle" || len(s.Result) != 0 {
		fail("Reset", fmt.Errorf("unexpected state after reset: %+v", s))
	}

	fmt.Println("6. Deleting session...")
	if _, err := send(baseURL, http.MethodDelete, path, nil, http.StatusNoContent); err != nil {
		fail("Delete session", err)
	}

	fmt.Println("PASSED")
}

func fail(step string, err error) {
	fmt.Printf("FAILED: %s: %v\n", step, err)
	os.Exit(1)
}

func send(baseURL, method, endpoint string, payload any, want int) (session, error) {
	var s session

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return s, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		return s, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return s, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return s, err
	}
	if resp.StatusCode != want {
		return s, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &s); err != nil {
			return s, fmt.Errorf("error decoding response: %w", err)
		}
	}
	return s, nil
}
