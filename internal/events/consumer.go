// Package events — consumer.go исполняет платёжные события из шины.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/features/payments"
)

// Consumer подписывается на payment.process и проводит операции.
// Queue-группа гарантирует, что при нескольких инстансах событие
// обработает ровно один из них.
type Consumer struct {
	nc     *nats.Conn
	direct DirectExecutor
	sub    *nats.Subscription
}

// NewConsumer создаёт консьюмер платёжных событий.
func NewConsumer(nc *nats.Conn, direct DirectExecutor) *Consumer {
	return &Consumer{nc: nc, direct: direct}
}

// Start подписывается на сабжект. Ошибки обработки логируются:
// операция с этим inv_id либо будет повторена публикатором,
// либо уже проведена прямым путём.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.nc.QueueSubscribe(SubjectPaymentProcess, "payment-workers", func(msg *nats.Msg) {
		var p payments.ProcessParams
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			log.WithError(err).Error("Не удалось разобрать платёжное событие")
			return
		}

		if err := c.direct.ExecuteDirect(ctx, p); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id": p.TelegramID,
				"amount":  p.Amount,
				"inv_id":  p.InvID,
			}).Error("Ошибка обработки платёжного события")
			return
		}

		log.WithFields(log.Fields{
			"user_id": p.TelegramID,
			"inv_id":  p.InvID,
		}).Debug("Платёжное событие обработано")
	})
	if err != nil {
		return fmt.Errorf("ошибка подписки на %s: %w", SubjectPaymentProcess, err)
	}
	c.sub = sub
	log.WithField("subject", SubjectPaymentProcess).Info("Консьюмер платёжных событий запущен")
	return nil
}

// Stop отписывается от сабжекта.
func (c *Consumer) Stop() {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			log.WithError(err).Warn("Ошибка отписки от шины")
		}
	}
}
