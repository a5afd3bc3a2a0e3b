// Package events — coordinator.go решает, каким путём провести платёж.
//
// Основной путь — публикация в NATS: консьюмер (возможно, в другом
// процессе) проведёт операцию. Если шина недоступна или не ответила
// за отведённый таймаут, координатор прозрачно проводит операцию
// напрямую, в процессе. Для вызывающего кода это один вызов Submit.
//
// Дубль «шина успела позже, когда прямой путь уже отработал»
// гасится уникальностью inv_id в payments_v2.
package events

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/features/payments"
)

// SubjectPaymentProcess — сабжект платёжных операций в шине.
const SubjectPaymentProcess = "payment.process"

// DirectExecutor проводит операцию синхронно, минуя шину.
type DirectExecutor interface {
	ExecuteDirect(ctx context.Context, p payments.ProcessParams) error
}

// Coordinator — координатор с откатом на прямую обработку.
type Coordinator struct {
	pub     Publisher
	direct  DirectExecutor
	timeout time.Duration
	enabled bool
}

// NewCoordinator создаёт координатор.
// pub может быть nil (EVENTBUS_ENABLED=false) — тогда все операции
// идут прямым путём.
func NewCoordinator(pub Publisher, direct DirectExecutor, timeout time.Duration, enabled bool) *Coordinator {
	return &Coordinator{
		pub:     pub,
		direct:  direct,
		timeout: timeout,
		enabled: enabled && pub != nil,
	}
}

// Submit отправляет операцию на исполнение.
// Возвращает true, если операция проведена любым из путей.
func (c *Coordinator) Submit(ctx context.Context, p payments.ProcessParams) bool {
	entry := log.WithFields(log.Fields{
		"user_id": p.TelegramID,
		"amount":  p.Amount,
		"inv_id":  p.InvID,
	})

	if c.enabled {
		if err := c.publish(ctx, p); err == nil {
			entry.WithField("mode", "bus").Info("Платёж отправлен в шину")
			return true
		} else {
			entry.WithError(err).Warn("Шина недоступна, переходим на прямую обработку")
		}
	}

	if err := c.direct.ExecuteDirect(ctx, p); err != nil {
		entry.WithError(err).WithField("mode", "direct").Error("Прямая обработка не удалась")
		return false
	}
	entry.WithField("mode", "direct").Info("Платёж проведён напрямую")
	return true
}

// publish публикует операцию с ограниченным таймаутом,
// чтобы недоступная шина не подвешивала пользовательский запрос.
func (c *Coordinator) publish(ctx context.Context, p payments.ProcessParams) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.pub.Publish(pubCtx, SubjectPaymentProcess, data)
}
