// Package generation — service.go связывает прайс, платёжный процессор
// и провайдера генерации.
//
// Порядок жёсткий: посчитать цену → списать звёзды → сгенерировать.
// Если генерация упала ПОСЛЕ успешного списания — вернуть звёзды.
package generation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/payments"
	"neurostars.ru/telegram-bot/internal/features/pricing"
)

// Charger — платёжный процессор глазами сервиса генерации.
type Charger interface {
	Process(ctx context.Context, p payments.ProcessParams) bool
	Refund(ctx context.Context, telegramID, amount int64, botName, serviceType, reason string) bool
}

// BalanceReader читает баланс для предварительной проверки.
type BalanceReader interface {
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
}

// Service выполняет платные генерации.
type Service struct {
	pricing  *pricing.Calculator
	balances BalanceReader
	charger  Charger
	provider Provider
}

// NewService создаёт сервис генерации.
func NewService(pricing *pricing.Calculator, balances BalanceReader, charger Charger, provider Provider) *Service {
	return &Service{
		pricing:  pricing,
		balances: balances,
		charger:  charger,
		provider: provider,
	}
}

// Generate проводит полный цикл платной генерации.
//
// Ошибки:
//   - common.ErrUnknownMode / ErrUnknownModel — цену посчитать нельзя, списания не было
//   - common.ErrInsufficientBalance — не хватает звёзд, списания не было
//   - common.ErrPaymentFailed — списание не прошло
//   - common.ErrExternalService — генерация упала, звёзды возвращены
func (s *Service) Generate(ctx context.Context, telegramID int64, mode pricing.Mode, model, prompt, botName string) (*Result, error) {
	quote, err := s.pricing.Calculate(mode, model, 1)
	if err != nil {
		return nil, err
	}

	// Предварительная проверка — чтобы отдать пользователю понятное
	// «не хватает звёзд» до похода в процессор. Настоящая защита от
	// гонки — условный UPDATE внутри списания.
	bal, err := s.balances.GetBalance(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if bal < quote.Stars {
		return nil, common.ErrInsufficientBalance
	}

	invID := uuid.NewString()
	ok := s.charger.Process(ctx, payments.ProcessParams{
		InvID:       invID,
		TelegramID:  telegramID,
		Amount:      quote.Stars,
		Type:        payments.TypeMoneyExpense,
		Description: fmt.Sprintf("Генерация %s", mode),
		ServiceType: string(mode),
		BotName:     botName,
	})
	if !ok {
		return nil, common.ErrPaymentFailed
	}

	result, err := s.provider.Generate(ctx, Job{Mode: mode, Model: model, Prompt: prompt})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": telegramID,
			"mode":    mode,
			"inv_id":  invID,
		}).Error("Генерация упала после списания, возвращаем звёзды")

		s.charger.Refund(ctx, telegramID, quote.Stars, botName, string(mode),
			fmt.Sprintf("ошибка генерации %s", mode))
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": telegramID,
		"mode":    mode,
		"stars":   quote.Stars,
	}).Info("Генерация выполнена")
	return result, nil
}

// Quote возвращает цену генерации без каких-либо списаний.
func (s *Service) Quote(mode pricing.Mode, model string) (pricing.Quote, error) {
	return s.pricing.Calculate(mode, model, 1)
}
