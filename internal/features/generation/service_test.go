package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/payments"
	"neurostars.ru/telegram-bot/internal/features/pricing"
)

type fakeCharger struct {
	processOK bool
	processed []payments.ProcessParams
	refunds   []int64
}

func (f *fakeCharger) Process(_ context.Context, p payments.ProcessParams) bool {
	f.processed = append(f.processed, p)
	return f.processOK
}

func (f *fakeCharger) Refund(_ context.Context, _, amount int64, _, _, _ string) bool {
	f.refunds = append(f.refunds, amount)
	return true
}

type fakeBalances struct {
	balance int64
	err     error
}

func (f *fakeBalances) GetBalance(_ context.Context, _ int64) (int64, error) {
	return f.balance, f.err
}

type fakeProvider struct {
	result *Result
	err    error
	jobs   []Job
}

func (f *fakeProvider) Generate(_ context.Context, job Job) (*Result, error) {
	f.jobs = append(f.jobs, job)
	return f.result, f.err
}

func newTestService(balance int64, chargeOK bool, prov *fakeProvider) (*Service, *fakeCharger) {
	charger := &fakeCharger{processOK: chargeOK}
	svc := NewService(pricing.NewCalculator(), &fakeBalances{balance: balance}, charger, prov)
	return svc, charger
}

func TestGenerate_Success(t *testing.T) {
	prov := &fakeProvider{result: &Result{URL: "https://cdn.example/img.png"}}
	svc, charger := newTestService(100, true, prov)

	res, err := svc.Generate(context.Background(), 100, pricing.ModeNeuroPhoto, "", "кот в сапогах", "mainbot")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/img.png", res.URL)

	require.Len(t, charger.processed, 1)
	got := charger.processed[0]
	assert.Equal(t, int64(5), got.Amount)
	assert.Equal(t, payments.TypeMoneyExpense, got.Type)
	assert.NotEmpty(t, got.InvID)
	assert.Empty(t, charger.refunds)

	require.Len(t, prov.jobs, 1)
	assert.Equal(t, "кот в сапогах", prov.jobs[0].Prompt)
}

func TestGenerate_UnknownModeNoCharge(t *testing.T) {
	prov := &fakeProvider{}
	svc, charger := newTestService(100, true, prov)

	_, err := svc.Generate(context.Background(), 100, pricing.Mode("3d_print"), "", "prompt", "mainbot")

	assert.ErrorIs(t, err, common.ErrUnknownMode)
	assert.Empty(t, charger.processed)
	assert.Empty(t, prov.jobs)
}

func TestGenerate_InsufficientBalance(t *testing.T) {
	prov := &fakeProvider{}
	// видео minimax стоит 120, на счёте 100
	svc, charger := newTestService(100, true, prov)

	_, err := svc.Generate(context.Background(), 100, pricing.ModeTextToVideo, "minimax", "prompt", "mainbot")

	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Empty(t, charger.processed, "без денег до списания доходить нельзя")
	assert.Empty(t, prov.jobs)
}

func TestGenerate_ChargeFailed(t *testing.T) {
	prov := &fakeProvider{}
	svc, charger := newTestService(100, false, prov)

	_, err := svc.Generate(context.Background(), 100, pricing.ModeNeuroPhoto, "", "prompt", "mainbot")

	assert.ErrorIs(t, err, common.ErrPaymentFailed)
	assert.Len(t, charger.processed, 1)
	assert.Empty(t, prov.jobs, "без списания генерацию не запускаем")
}

func TestGenerate_ProviderFailureRefunds(t *testing.T) {
	prov := &fakeProvider{err: common.ErrExternalService}
	svc, charger := newTestService(200, true, prov)

	_, err := svc.Generate(context.Background(), 100, pricing.ModeTextToVideo, "haiper", "prompt", "mainbot")

	assert.ErrorIs(t, err, common.ErrExternalService)
	require.Len(t, charger.processed, 1)
	// haiper стоит 90 — столько и возвращаем
	assert.Equal(t, []int64{90}, charger.refunds)
}

func TestQuote(t *testing.T) {
	svc, _ := newTestService(0, true, &fakeProvider{})

	quote, err := svc.Quote(pricing.ModeTextToSpeech, "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), quote.Stars)
}
