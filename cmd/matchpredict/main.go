package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/agenthands/matchpredict/internal/config"
	"github.com/agenthands/matchpredict/internal/llm"
	"github.com/agenthands/matchpredict/internal/logging"
	"github.com/agenthands/matchpredict/internal/prediction"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	app := &cli.App{
		Name:    "matchpredict",
		Usage:   "AI soccer match predictor",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "Path to the TOML config file (optional)",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			telegramCommand(),
			predictCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// deps is what every command needs: validated config and a ready prediction
// client.
type deps struct {
	cfg       *config.Config
	llm       *llm.Guard
	predictor *prediction.Client
}

func (r *deps) Close() error {
	return r.llm.Close()
}

func bootstrap(c *cli.Context) (*deps, error) {
	cfg, err := config.Resolve(c.String("config"), os.Getenv)
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(cfg.Log)

	guard, err := llm.NewClient(c.Context, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	predictor := prediction.NewClient(guard,
		prediction.WithPrompt(cfg.Prompts.Match),
		prediction.WithTemperature(cfg.LLM.Temperature),
		prediction.WithLogger(logging.Component(logger, "prediction_client")),
	)

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Float32("temperature", cfg.LLM.Temperature).
		Msg("Prediction client ready")

	return &deps{cfg: cfg, llm: guard, predictor: predictor}, nil
}
