package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/matchpredict/internal/prediction"
	"github.com/agenthands/matchpredict/internal/workflow"
)

type MockSender struct {
	mu        sync.Mutex
	Messages  []tgbotapi.MessageConfig
	Callbacks []tgbotapi.CallbackConfig
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.Messages = append(m.Messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (m *MockSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		m.Callbacks = append(m.Callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockSender) last() tgbotapi.MessageConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Messages[len(m.Messages)-1]
}

func (m *MockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

type MockPredictor struct {
	mu      sync.Mutex
	Result  prediction.Result
	Err     error
	Release chan struct{}
	calls   int
}

func (m *MockPredictor) PredictMatch(ctx context.Context, teamA, teamB string) (prediction.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Release != nil {
		<-m.Release
	}
	return m.Result, m.Err
}

func (m *MockPredictor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

const chatID int64 = 42

func textUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func buttonData(t *testing.T, msg tgbotapi.MessageConfig) string {
	t.Helper()
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "expected an inline keyboard")
	require.NotEmpty(t, markup.InlineKeyboard)
	require.NotEmpty(t, markup.InlineKeyboard[0])
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	return *markup.InlineKeyboard[0][0].CallbackData
}

func newTestBot(p *MockPredictor) (*Bot, *MockSender) {
	sender := &MockSender{}
	return NewBot(sender, p, time.Minute, zerolog.Nop()), sender
}

func TestConversation(t *testing.T) {
	p := &MockPredictor{Result: prediction.Result{
		Winner:         "Arsenal",
		Confidence:     64,
		Analysis:       "Stronger at home.",
		PredictedScore: "2-0",
	}}
	b, sender := newTestBot(p)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("/start"))
	assert.Contains(t, sender.last().Text, msgAskTeamA)
	assert.Equal(t, chatID, sender.last().ChatID)

	b.HandleUpdate(ctx, textUpdate("  Arsenal "))
	assert.Contains(t, sender.last().Text, "First team: Arsenal")

	b.HandleUpdate(ctx, textUpdate("Chelsea"))
	assert.Equal(t, "Arsenal vs Chelsea", sender.last().Text)
	assert.Equal(t, callbackPredict, buttonData(t, sender.last()))

	b.HandleUpdate(ctx, callbackUpdate(callbackPredict))
	b.pending.Wait()

	require.Len(t, sender.Callbacks, 1)
	assert.Equal(t, "cb-predict", sender.Callbacks[0].CallbackQueryID)

	result := sender.last()
	assert.Contains(t, result.Text, "Predicted Winner: Arsenal")
	assert.Contains(t, result.Text, "[W] Arsenal")
	assert.Contains(t, result.Text, "[L] Chelsea")
	assert.Equal(t, callbackReset, buttonData(t, result))
	assert.Equal(t, 1, p.Calls())

	b.HandleUpdate(ctx, callbackUpdate(callbackReset))
	assert.Equal(t, msgAskTeamA, sender.last().Text)

	w, ok := b.Sessions.Get(chatID)
	require.True(t, ok)
	snap := w.Snapshot()
	assert.Equal(t, workflow.PhaseIdle, snap.Phase)
	assert.Empty(t, snap.TeamA)
	assert.Empty(t, snap.TeamB)
}

func TestPredictFailure(t *testing.T) {
	b, sender := newTestBot(&MockPredictor{Err: prediction.ErrFetchFailed})
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("Arsenal"))
	b.HandleUpdate(ctx, textUpdate("Chelsea"))
	b.HandleUpdate(ctx, callbackUpdate(callbackPredict))
	b.pending.Wait()

	assert.Equal(t, workflow.MsgPredictionFailed, sender.last().Text)
	assert.Equal(t, callbackReset, buttonData(t, sender.last()))
}

func TestPredictSameTeams(t *testing.T) {
	p := &MockPredictor{}
	b, sender := newTestBot(p)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("Chelsea"))
	b.HandleUpdate(ctx, textUpdate("chelsea"))
	b.HandleUpdate(ctx, callbackUpdate(callbackPredict))
	b.pending.Wait()

	assert.Equal(t, workflow.MsgSameTeams, sender.last().Text)
	assert.Equal(t, 0, p.Calls())
}

func TestBusyChat(t *testing.T) {
	p := &MockPredictor{Result: prediction.Result{Winner: "Draw", PredictedScore: "1-1"}, Release: make(chan struct{})}
	b, sender := newTestBot(p)
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("Arsenal"))
	b.HandleUpdate(ctx, textUpdate("Chelsea"))
	b.HandleUpdate(ctx, callbackUpdate(callbackPredict))
	assert.Equal(t, "Analyzing... Arsenal vs Chelsea", sender.last().Text)

	b.HandleUpdate(ctx, callbackUpdate(callbackPredict))
	assert.Equal(t, msgBusy, sender.last().Text)

	b.HandleUpdate(ctx, textUpdate("/reset"))
	assert.Equal(t, msgBusy, sender.last().Text)

	b.HandleUpdate(ctx, textUpdate("Leeds"))
	assert.Equal(t, msgBusy, sender.last().Text)

	close(p.Release)
	b.pending.Wait()

	assert.Contains(t, sender.last().Text, "Predicted Outcome: Draw")
	assert.Equal(t, 1, p.Calls())
}

func TestBlankAndUnknownInput(t *testing.T) {
	b, sender := newTestBot(&MockPredictor{})
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("   "))
	assert.Equal(t, msgEmptyText, sender.last().Text)

	b.HandleUpdate(ctx, textUpdate("/help"))
	assert.Contains(t, sender.last().Text, "Unknown command")

	n := sender.count()
	b.HandleUpdate(ctx, callbackUpdate("bogus"))
	assert.Equal(t, n, sender.count())
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	b, sender := newTestBot(&MockPredictor{})

	updates := make(chan tgbotapi.Update, 2)
	updates <- textUpdate("/start")
	updates <- textUpdate("Arsenal")
	close(updates)

	b.Run(context.Background(), updates)

	assert.Equal(t, 2, sender.count())
}
