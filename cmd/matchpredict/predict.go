package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/agenthands/matchpredict/internal/render"
	"github.com/agenthands/matchpredict/internal/workflow"
)

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict a single match in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "team-a", Aliases: []string{"a"}, Usage: "First team"},
			&cli.StringFlag{Name: "team-b", Aliases: []string{"b"}, Usage: "Second team"},
		},
		Action: runPredict,
	}
}

func runPredict(c *cli.Context) error {
	rt, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	out := c.App.Writer
	fmt.Fprintf(out, "%s\n%s\n\n", render.Title, render.Disclaimer)

	in := bufio.NewReader(os.Stdin)
	teamA, err := teamName(in, out, c.String("team-a"), "First team: ")
	if err != nil {
		return err
	}
	teamB, err := teamName(in, out, c.String("team-b"), "Second team: ")
	if err != nil {
		return err
	}

	w := workflow.New(rt.predictor)
	w.SetTeams(teamA, teamB)

	done, started := w.Submit(c.Context)
	if started {
		fmt.Fprintf(out, "%s %s vs %s\n", render.Analyzing, strings.TrimSpace(teamA), strings.TrimSpace(teamB))
	}

	select {
	case <-done:
	case <-c.Context.Done():
		return c.Context.Err()
	}

	snap := w.Snapshot()
	switch snap.Phase {
	case workflow.PhaseIdle:
		return cli.Exit(render.Text(snap), 2)
	case workflow.PhaseError:
		return cli.Exit(render.Text(snap), 1)
	}

	fmt.Fprintf(out, "\n%s\n", render.Text(snap))
	return nil
}

// teamName returns flag when set, otherwise prompts for one line of input.
func teamName(in *bufio.Reader, out io.Writer, flag, prompt string) (string, error) {
	if flag != "" {
		return flag, nil
	}

	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read team name: %w", err)
	}
	return strings.TrimSpace(line), nil
}
