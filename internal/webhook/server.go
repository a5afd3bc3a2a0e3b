// Package webhook — server.go принимает result-вебхуки Robokassa.
//
// Контракт провайдера: на успех отвечаем телом "OK<InvId>", иначе
// провайдер будет ретраить уведомление. Подпись проверяется ДО любого
// изменения состояния. Ни одна паника или ошибка не уходит в HTTP
// необработанной — все пути дают определённый статус.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/payments"
)

// Reconciler переводит PENDING-платёж в COMPLETED (см. payments.Repository).
type Reconciler interface {
	CompleteTopUp(ctx context.Context, invID string) (*payments.Payment, bool, error)
}

// Notifier шлёт пользователю сообщение через нужный бот.
// Уведомление best-effort: его неудача не влияет на ответ провайдеру.
type Notifier interface {
	Notify(botName string, telegramID int64, text string) error
}

// Server — HTTP-сервер вебхуков.
type Server struct {
	payments  Reconciler
	notifier  Notifier
	password2 string // пароль #2 — для подписи result-вебхука
	httpSrv   *http.Server
}

// NewServer создаёт сервер вебхуков.
func NewServer(addr string, payments Reconciler, notifier Notifier, password2 string) *Server {
	s := &Server{
		payments:  payments,
		notifier:  notifier,
		password2: password2,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/robokassa-result", s.handleResult)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start запускает сервер (блокирует до остановки).
func (s *Server) Start() error {
	log.WithField("addr", s.httpSrv.Addr).Info("Сервер вебхуков запущен")
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop останавливает сервер, дождавшись текущих запросов.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// handleResult обрабатывает result-вебхук Robokassa.
//
// Статусы:
//   - 200 "OK<InvId>" — платёж завершён сейчас или был завершён ранее (повтор)
//   - 400 — нет обязательных полей или неверная подпись
//   - 404 — инвойс неизвестен (мы такого платежа не создавали)
//   - 500 — внутренняя ошибка, провайдер повторит уведомление
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", fmt.Sprintf("%v", rec)).Error("ПАНИКА в обработчике вебхука")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	outSum := r.FormValue("OutSum")
	invID := r.FormValue("InvId")
	signature := r.FormValue("SignatureValue")

	entry := log.WithFields(log.Fields{
		"inv_id":  invID,
		"out_sum": outSum,
	})

	if outSum == "" || invID == "" || signature == "" {
		entry.Warn("Вебхук без обязательных полей")
		http.Error(w, "missing params", http.StatusBadRequest)
		return
	}

	// Подпись — единственная аутентификация вебхука,
	// проверяем до обращения к БД
	if !VerifyResultSignature(outSum, invID, s.password2, signature) {
		entry.Warn("Вебхук с неверной подписью")
		http.Error(w, "bad signature", http.StatusBadRequest)
		return
	}

	payment, already, err := s.payments.CompleteTopUp(r.Context(), invID)
	if errors.Is(err, common.ErrPaymentNotFound) {
		// Платёж, который мы не создавали, — повод для аудита, а не тихое 200
		entry.Warn("Вебхук для неизвестного инвойса")
		http.Error(w, "payment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		entry.WithError(err).Error("Ошибка завершения платежа")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if already {
		// Повтор вебхука: баланс уже начислен, уведомление уже уходило
		entry.Debug("Повторный вебхук, платёж уже завершён")
	} else {
		entry.WithFields(log.Fields{
			"user_id": payment.TelegramID,
			"amount":  payment.Amount,
		}).Info("Пополнение подтверждено")
		s.notify(payment)
	}

	// Формат ответа зафиксирован провайдером: иначе бесконечные ретраи
	fmt.Fprintf(w, "OK%s", invID)
}

// notify уведомляет пользователя о зачислении. Неудача — только в лог:
// задача вебхука — подтвердить провайдеру приём, а не доставить сообщение.
func (s *Server) notify(p *payments.Payment) {
	text := fmt.Sprintf("⭐ Баланс пополнен на %s!", common.FormatStars(p.Amount))
	if err := s.notifier.Notify(p.BotName, p.TelegramID, text); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":  p.TelegramID,
			"bot_name": p.BotName,
		}).Warn("Не удалось уведомить о пополнении")
	}
}
