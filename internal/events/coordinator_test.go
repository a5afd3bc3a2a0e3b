package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"neurostars.ru/telegram-bot/internal/features/payments"
)

type fakePublisher struct {
	err       error
	published int
}

func (f *fakePublisher) Publish(_ context.Context, _ string, _ []byte) error {
	f.published++
	return f.err
}

type fakeDirect struct {
	err      error
	executed []payments.ProcessParams
}

func (f *fakeDirect) ExecuteDirect(_ context.Context, p payments.ProcessParams) error {
	f.executed = append(f.executed, p)
	return f.err
}

func params() payments.ProcessParams {
	return payments.ProcessParams{
		InvID:      "inv-1",
		TelegramID: 100,
		Amount:     50,
		Type:       payments.TypeMoneyExpense,
	}
}

func TestSubmit_BusPath(t *testing.T) {
	pub := &fakePublisher{}
	direct := &fakeDirect{}
	c := NewCoordinator(pub, direct, time.Second, true)

	ok := c.Submit(context.Background(), params())

	assert.True(t, ok)
	assert.Equal(t, 1, pub.published)
	assert.Empty(t, direct.executed, "при живой шине прямой путь не используется")
}

func TestSubmit_FallsBackToDirect(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	direct := &fakeDirect{}
	c := NewCoordinator(pub, direct, time.Second, true)

	ok := c.Submit(context.Background(), params())

	assert.True(t, ok)
	assert.Equal(t, 1, pub.published)
	assert.Len(t, direct.executed, 1)
	assert.Equal(t, "inv-1", direct.executed[0].InvID)
}

func TestSubmit_BothPathsFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	direct := &fakeDirect{err: errors.New("db down")}
	c := NewCoordinator(pub, direct, time.Second, true)

	ok := c.Submit(context.Background(), params())

	assert.False(t, ok)
}

func TestSubmit_BusDisabled(t *testing.T) {
	pub := &fakePublisher{}
	direct := &fakeDirect{}
	c := NewCoordinator(pub, direct, time.Second, false)

	ok := c.Submit(context.Background(), params())

	assert.True(t, ok)
	assert.Zero(t, pub.published, "при выключенной шине публикации быть не должно")
	assert.Len(t, direct.executed, 1)
}

func TestSubmit_NilPublisher(t *testing.T) {
	direct := &fakeDirect{}
	c := NewCoordinator(nil, direct, time.Second, true)

	ok := c.Submit(context.Background(), params())

	assert.True(t, ok)
	assert.Len(t, direct.executed, 1)
}
