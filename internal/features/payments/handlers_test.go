package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurostars.ru/telegram-bot/internal/session"
)

type fakeSessions struct {
	states map[int64]*session.TopUpState
}

func (f *fakeSessions) Get(_ context.Context, _ string, telegramID int64) (*session.TopUpState, error) {
	return f.states[telegramID], nil
}

func (f *fakeSessions) Set(_ context.Context, telegramID int64, state *session.TopUpState) error {
	f.states[telegramID] = state
	return nil
}

func (f *fakeSessions) Clear(_ context.Context, _ string, telegramID int64) error {
	delete(f.states, telegramID)
	return nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(_ string, _ int64, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func newWizardHandler() (*Handler, *fakeSessions, *fakeSender) {
	sessions := &fakeSessions{states: make(map[int64]*session.TopUpState)}
	sender := &fakeSender{}
	h := NewHandler(nil, nil, sessions, sender, 10, 10000)
	return h, sessions, sender
}

func TestHandleTopUpStart(t *testing.T) {
	h, sessions, sender := newWizardHandler()

	h.HandleTopUpStart(context.Background(), "mainbot", 1, 100)

	state := sessions.states[100]
	require.NotNil(t, state)
	assert.Equal(t, session.StepAwaitAmount, state.Step)
	assert.Equal(t, "mainbot", state.BotName)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "от 10 до 10000")
}

func TestContinueWizard_NoActiveSession(t *testing.T) {
	h, _, sender := newWizardHandler()

	handled := h.ContinueWizard(context.Background(), "mainbot", 1, 100, "500")

	assert.False(t, handled, "без активного визарда текст не наш")
	assert.Empty(t, sender.sent)
}

func TestContinueWizard_RejectsBadAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"не число", "пятьсот"},
		{"меньше минимума", "5"},
		{"больше максимума", "999999"},
		{"дробное", "10.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sessions, sender := newWizardHandler()
			h.HandleTopUpStart(context.Background(), "mainbot", 1, 100)
			sender.sent = nil

			handled := h.ContinueWizard(context.Background(), "mainbot", 1, 100, tt.text)

			assert.True(t, handled)
			require.Len(t, sender.sent, 1)
			assert.Contains(t, sender.sent[0], "от 10 до 10000")
			// сессия остаётся — пользователь может попробовать ещё раз
			assert.NotNil(t, sessions.states[100])
		})
	}
}

func TestHandleCancel(t *testing.T) {
	h, sessions, sender := newWizardHandler()
	h.HandleTopUpStart(context.Background(), "mainbot", 1, 100)

	h.HandleCancel(context.Background(), "mainbot", 1, 100)

	assert.Nil(t, sessions.states[100])
	assert.Contains(t, sender.sent[len(sender.sent)-1], "отменено")
}
