// Package telegram drives one workflow per chat from Telegram updates.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/agenthands/matchpredict/internal/render"
	"github.com/agenthands/matchpredict/internal/session"
	"github.com/agenthands/matchpredict/internal/workflow"
)

const (
	callbackPredict = "predict"
	callbackReset   = "reset"
)

const (
	msgAskTeamA  = "Send the name of the first team."
	msgAskTeamB  = "Now send the name of the second team."
	msgReady     = "Tap \"Predict match\" or send /reset to start over."
	msgBusy      = "A prediction is already running. Please wait for it to finish."
	msgEmptyText = "Team names cannot be blank."
)

// Sender is the part of tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      Sender
	Sessions *session.Registry[int64]
	logger   zerolog.Logger
	pending  sync.WaitGroup
}

func NewBot(api Sender, predictor workflow.Predictor, sessionTTL time.Duration, logger zerolog.Logger) *Bot {
	b := &Bot{
		api:    api,
		logger: logger.With().Str("component", "telegram_bot").Logger(),
	}
	b.Sessions = session.NewRegistry[int64](func() *workflow.Workflow {
		return workflow.New(predictor, workflow.WithLogger(b.logger))
	}, sessionTTL)
	return b
}

// Run handles updates until ctx is done or the channel is closed, then waits
// for in-flight predictions to be reported.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.pending.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	w := b.Sessions.GetOrCreate(chatID)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.reset(chatID, w, fmt.Sprintf("Welcome to %s!\n%s\n\n%s", render.Title, render.Disclaimer, msgAskTeamA))
		case "reset":
			b.reset(chatID, w, msgAskTeamA)
		default:
			b.sendText(chatID, "Unknown command. Use /start or /reset.")
		}
		return
	}

	if w.Busy() {
		b.sendText(chatID, msgBusy)
		return
	}

	name := strings.TrimSpace(message.Text)
	if name == "" {
		b.sendText(chatID, msgEmptyText)
		return
	}

	snap := w.Snapshot()
	switch {
	case strings.TrimSpace(snap.TeamA) == "":
		w.SetTeamA(name)
		b.sendText(chatID, fmt.Sprintf("First team: %s\n%s", name, msgAskTeamB))
	case strings.TrimSpace(snap.TeamB) == "":
		w.SetTeamB(name)
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s vs %s", strings.TrimSpace(snap.TeamA), name))
		msg.ReplyMarkup = predictKeyboard()
		b.send(msg)
	default:
		msg := tgbotapi.NewMessage(chatID, msgReady)
		msg.ReplyMarkup = predictKeyboard()
		b.send(msg)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn().Err(err).Str("callback_id", callback.ID).Msg("Failed to acknowledge callback")
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	w := b.Sessions.GetOrCreate(chatID)

	switch callback.Data {
	case callbackPredict:
		b.submit(ctx, chatID, w)
	case callbackReset:
		b.reset(chatID, w, msgAskTeamA)
	default:
		b.logger.Debug().Int64("chat_id", chatID).Str("data", callback.Data).Msg("Ignoring unknown callback")
	}
}

func (b *Bot) reset(chatID int64, w *workflow.Workflow, text string) {
	if !w.Reset() {
		b.sendText(chatID, msgBusy)
		return
	}
	b.sendText(chatID, text)
}

// submit reports the Loading text right away and the settled result from a
// separate goroutine so the update loop keeps serving other chats.
func (b *Bot) submit(ctx context.Context, chatID int64, w *workflow.Workflow) {
	done, started := w.Submit(ctx)
	snap := w.Snapshot()
	if !started {
		if snap.Phase == workflow.PhaseIdle {
			b.sendText(chatID, render.Text(snap))
		} else {
			b.sendText(chatID, msgBusy)
		}
		return
	}
	if snap.Match != nil {
		b.sendText(chatID, fmt.Sprintf("%s %s vs %s", render.Analyzing, snap.Match.TeamA, snap.Match.TeamB))
	}

	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		select {
		case <-done:
		case <-ctx.Done():
			return
		}

		final := w.Snapshot()
		b.logger.Debug().Int64("chat_id", chatID).Str("phase", string(final.Phase)).Msg("Prediction settled")

		msg := tgbotapi.NewMessage(chatID, render.Text(final))
		msg.ReplyMarkup = anotherKeyboard()
		b.send(msg)
	}()
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send message")
	}
}

func predictKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Predict match", callbackPredict),
		),
	)
}

func anotherKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Predict another match", callbackReset),
		),
	)
}
