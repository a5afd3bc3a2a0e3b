// Package payments — models.go описывает платёжные записи (таблица payments_v2).
package payments

import "time"

// Status — состояние платёжной записи.
type Status string

const (
	StatusPending   Status = "PENDING"   // создан, ждём вебхук провайдера
	StatusCompleted Status = "COMPLETED" // проведён, баланс изменён
	StatusFailed    Status = "FAILED"    // протух или отклонён
)

// Type — направление движения звёзд.
type Type string

const (
	TypeMoneyIncome  Type = "MONEY_INCOME"  // пополнение, возврат, начисление
	TypeMoneyExpense Type = "MONEY_EXPENSE" // списание за генерацию
)

// Payment — одна запись в журнале платежей.
// inv_id уникален: по нему вебхук находит платёж, а повторная
// обработка одной операции превращается в no-op на уровне БД.
type Payment struct {
	ID          int64
	InvID       string
	TelegramID  int64
	Amount      int64 // всегда положительная, направление задаёт Type
	Status      Status
	Type        Type
	Description string
	ServiceType string
	BotName     string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// ProcessParams — параметры одной операции со звёздами.
// InvID задаёт вызывающий код; при повторной доставке (шина + прямой путь)
// операция с тем же InvID выполнится ровно один раз.
type ProcessParams struct {
	InvID       string `json:"inv_id"`
	TelegramID  int64  `json:"telegram_id"`
	Amount      int64  `json:"amount"`
	Type        Type   `json:"type"`
	Description string `json:"description"`
	BotName     string `json:"bot_name"`
	ServiceType string `json:"service_type"`
}

// Delta возвращает подписанное изменение баланса для операции.
func (p ProcessParams) Delta() int64 {
	if p.Type == TypeMoneyExpense {
		return -p.Amount
	}
	return p.Amount
}
