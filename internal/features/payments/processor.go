// Package payments — processor.go содержит платёжный процессор.
//
// Процессор — единственная точка входа для изменения баланса из
// бизнес-логики. Наружу он никогда не роняет ошибку: любой исход
// превращается в bool, детали уходят в лог с контекстом, достаточным
// для ручной сверки (пользователь, сумма, инвойс).
package payments

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Submitter отправляет операцию на исполнение — через шину событий
// с автоматическим откатом на прямую обработку.
type Submitter interface {
	Submit(ctx context.Context, p ProcessParams) bool
}

// Processor проводит операции со звёздами.
type Processor struct {
	bus Submitter
}

// NewProcessor создаёт платёжный процессор.
func NewProcessor(bus Submitter) *Processor {
	return &Processor{bus: bus}
}

// Process проводит одну операцию. Возвращает true, если операция
// проведена (через шину или напрямую), false — если не проведена.
//
// Если InvID пуст, генерируется новый: такой вызов не защищён от
// повтора на стороне вызывающего. Для повторяемых операций вызывающий
// код обязан передавать стабильный InvID.
func (p *Processor) Process(ctx context.Context, params ProcessParams) bool {
	if params.Amount <= 0 {
		log.WithFields(log.Fields{
			"user_id": params.TelegramID,
			"amount":  params.Amount,
		}).Error("Платёж отклонён: некорректная сумма")
		return false
	}
	if params.Type != TypeMoneyIncome && params.Type != TypeMoneyExpense {
		log.WithFields(log.Fields{
			"user_id": params.TelegramID,
			"type":    params.Type,
		}).Error("Платёж отклонён: неизвестный тип операции")
		return false
	}
	if params.InvID == "" {
		params.InvID = uuid.NewString()
	}

	ok := p.bus.Submit(ctx, params)

	entry := log.WithFields(log.Fields{
		"user_id":  params.TelegramID,
		"amount":   params.Amount,
		"type":     params.Type,
		"inv_id":   params.InvID,
		"bot_name": params.BotName,
		"service":  params.ServiceType,
	})
	if ok {
		entry.Info("Операция проведена")
	} else {
		entry.Error("Операция НЕ проведена")
	}
	return ok
}

// Refund возвращает пользователю ранее списанные звёзды.
// Вызывается сервисами генерации, когда оплаченная операция упала
// после успешного списания. Best-effort: неудача логируется, но
// автоматически не повторяется.
func (p *Processor) Refund(ctx context.Context, telegramID, amount int64, botName, serviceType, reason string) bool {
	ok := p.Process(ctx, ProcessParams{
		TelegramID:  telegramID,
		Amount:      amount,
		Type:        TypeMoneyIncome,
		Description: "Возврат звёзд: " + reason,
		BotName:     botName,
		ServiceType: serviceType,
	})
	if !ok {
		log.WithFields(log.Fields{
			"user_id": telegramID,
			"amount":  amount,
			"reason":  reason,
		}).Error("Возврат не проведён — требуется ручная сверка")
	}
	return ok
}
