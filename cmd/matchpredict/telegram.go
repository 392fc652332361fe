package main

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/agenthands/matchpredict/internal/telegram"
)

func telegramCommand() *cli.Command {
	return &cli.Command{
		Name:   "telegram",
		Usage:  "Run the Telegram bot (long polling)",
		Action: runTelegram,
	}
}

func runTelegram(c *cli.Context) error {
	rt, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.cfg.Telegram.Token == "" {
		return errors.New("telegram bot token is not set (TELEGRAM_BOT_TOKEN)")
	}

	api, err := tgbotapi.NewBotAPI(rt.cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	ctx := c.Context
	bot := telegram.NewBot(api, rt.predictor, rt.cfg.Server.SessionTTL(), log.Logger)
	go bot.Sessions.Run(ctx, sweepInterval)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	bot.Run(ctx, updates)
	log.Info().Msg("Telegram bot stopped")
	return nil
}
