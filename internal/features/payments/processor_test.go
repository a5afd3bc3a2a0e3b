package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus — ручной мок Submitter: запоминает операции и отвечает заданным исходом.
type fakeBus struct {
	submitted []ProcessParams
	result    bool
}

func (f *fakeBus) Submit(_ context.Context, p ProcessParams) bool {
	f.submitted = append(f.submitted, p)
	return f.result
}

func TestProcess_RejectsInvalidAmount(t *testing.T) {
	bus := &fakeBus{result: true}
	p := NewProcessor(bus)

	ok := p.Process(context.Background(), ProcessParams{
		TelegramID: 100,
		Amount:     0,
		Type:       TypeMoneyExpense,
	})

	assert.False(t, ok)
	assert.Empty(t, bus.submitted, "некорректная сумма не должна доходить до шины")
}

func TestProcess_RejectsUnknownType(t *testing.T) {
	bus := &fakeBus{result: true}
	p := NewProcessor(bus)

	ok := p.Process(context.Background(), ProcessParams{
		TelegramID: 100,
		Amount:     50,
		Type:       Type("TRANSFER"),
	})

	assert.False(t, ok)
	assert.Empty(t, bus.submitted)
}

func TestProcess_GeneratesInvIDWhenEmpty(t *testing.T) {
	bus := &fakeBus{result: true}
	p := NewProcessor(bus)

	ok := p.Process(context.Background(), ProcessParams{
		TelegramID: 100,
		Amount:     50,
		Type:       TypeMoneyExpense,
	})

	require.True(t, ok)
	require.Len(t, bus.submitted, 1)
	assert.NotEmpty(t, bus.submitted[0].InvID)
}

func TestProcess_KeepsCallerInvID(t *testing.T) {
	bus := &fakeBus{result: true}
	p := NewProcessor(bus)

	ok := p.Process(context.Background(), ProcessParams{
		InvID:      "inv-42",
		TelegramID: 100,
		Amount:     50,
		Type:       TypeMoneyIncome,
	})

	require.True(t, ok)
	require.Len(t, bus.submitted, 1)
	assert.Equal(t, "inv-42", bus.submitted[0].InvID)
}

func TestProcess_ReturnsFalseWhenBusRefuses(t *testing.T) {
	bus := &fakeBus{result: false}
	p := NewProcessor(bus)

	ok := p.Process(context.Background(), ProcessParams{
		TelegramID: 100,
		Amount:     50,
		Type:       TypeMoneyExpense,
	})

	assert.False(t, ok)
	assert.Len(t, bus.submitted, 1)
}

func TestRefund_BuildsIncomeOperation(t *testing.T) {
	bus := &fakeBus{result: true}
	p := NewProcessor(bus)

	ok := p.Refund(context.Background(), 100, 120, "mainbot", "text_to_video", "ошибка генерации")

	require.True(t, ok)
	require.Len(t, bus.submitted, 1)
	got := bus.submitted[0]
	assert.Equal(t, TypeMoneyIncome, got.Type)
	assert.Equal(t, int64(120), got.Amount)
	assert.Equal(t, int64(100), got.TelegramID)
	assert.Equal(t, "mainbot", got.BotName)
	assert.Contains(t, got.Description, "Возврат звёзд")
}

func TestDelta(t *testing.T) {
	assert.Equal(t, int64(50), ProcessParams{Amount: 50, Type: TypeMoneyIncome}.Delta())
	assert.Equal(t, int64(-50), ProcessParams{Amount: 50, Type: TypeMoneyExpense}.Delta())
}
