package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/payments"
)

const testPassword2 = "pass2"

type fakeReconciler struct {
	payment *payments.Payment
	already bool
	err     error
	calls   []string
}

func (f *fakeReconciler) CompleteTopUp(_ context.Context, invID string) (*payments.Payment, bool, error) {
	f.calls = append(f.calls, invID)
	return f.payment, f.already, f.err
}

type fakeNotifier struct {
	err      error
	messages []string
}

func (f *fakeNotifier) Notify(_ string, _ int64, text string) error {
	f.messages = append(f.messages, text)
	return f.err
}

func newTestServer(rec *fakeReconciler, not *fakeNotifier) *Server {
	return NewServer(":0", rec, not, testPassword2)
}

// postResult шлёт form-encoded result-вебхук, как его шлёт Robokassa.
func postResult(s *Server, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/robokassa-result",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.handleResult(w, req)
	return w
}

func signedForm(outSum, invID string) url.Values {
	form := url.Values{}
	form.Set("OutSum", outSum)
	form.Set("InvId", invID)
	form.Set("SignatureValue", ResultSignature(outSum, invID, testPassword2))
	return form
}

func TestHandleResult_Success(t *testing.T) {
	rec := &fakeReconciler{payment: &payments.Payment{
		InvID:      "000000042",
		TelegramID: 100,
		Amount:     150,
		BotName:    "mainbot",
	}}
	not := &fakeNotifier{}
	s := newTestServer(rec, not)

	w := postResult(s, signedForm("150.00", "000000042"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK000000042", w.Body.String())
	assert.Equal(t, []string{"000000042"}, rec.calls)
	require.Len(t, not.messages, 1)
	assert.Contains(t, not.messages[0], "150 звёзд")
}

func TestHandleResult_RepeatedWebhookIsIdempotent(t *testing.T) {
	rec := &fakeReconciler{
		payment: &payments.Payment{InvID: "000000042", TelegramID: 100, Amount: 150, BotName: "mainbot"},
		already: true,
	}
	not := &fakeNotifier{}
	s := newTestServer(rec, not)

	w := postResult(s, signedForm("150.00", "000000042"))

	// Повтор подтверждаем тем же "OK", но без повторного уведомления
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK000000042", w.Body.String())
	assert.Empty(t, not.messages)
}

func TestHandleResult_BadSignature(t *testing.T) {
	rec := &fakeReconciler{}
	s := newTestServer(rec, &fakeNotifier{})

	form := signedForm("150.00", "000000042")
	form.Set("SignatureValue", "DEADBEEF")
	w := postResult(s, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.calls, "с неверной подписью до БД доходить нельзя")
}

func TestHandleResult_MissingParams(t *testing.T) {
	rec := &fakeReconciler{}
	s := newTestServer(rec, &fakeNotifier{})

	form := url.Values{}
	form.Set("OutSum", "150.00")
	w := postResult(s, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.calls)
}

func TestHandleResult_UnknownInvoice(t *testing.T) {
	rec := &fakeReconciler{err: common.ErrPaymentNotFound}
	s := newTestServer(rec, &fakeNotifier{})

	w := postResult(s, signedForm("150.00", "999999999"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleResult_InternalError(t *testing.T) {
	rec := &fakeReconciler{err: errors.New("db down")}
	s := newTestServer(rec, &fakeNotifier{})

	w := postResult(s, signedForm("150.00", "000000042"))

	// 500 заставит провайдера повторить уведомление
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleResult_NotifyFailureStillOK(t *testing.T) {
	rec := &fakeReconciler{payment: &payments.Payment{
		InvID: "000000042", TelegramID: 100, Amount: 150, BotName: "mainbot",
	}}
	not := &fakeNotifier{err: errors.New("bot blocked by user")}
	s := newTestServer(rec, not)

	w := postResult(s, signedForm("150.00", "000000042"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK000000042", w.Body.String())
}

func TestHandleResult_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeReconciler{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/robokassa-result", nil)
	w := httptest.NewRecorder()
	s.handleResult(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
