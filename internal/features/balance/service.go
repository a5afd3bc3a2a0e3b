// Package balance — service.go содержит бизнес-логику работы с балансом.
//
// Сервис только читает баланс. Все изменения идут через платёжный
// процессор (features/payments), чтобы каждое движение звёзд оставляло
// запись в журнале payments_v2; прямого пути «изменить баланс мимо
// журнала» в коде нет намеренно.
package balance

import (
	"context"
)

// Store — контракт хранилища баланса для чтения.
// Выделен в интерфейс, чтобы обработчики и тесты могли подменять хранилище.
type Store interface {
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
}

// Service отдаёт баланс звёзд.
type Service struct {
	store Store
}

// NewService создаёт новый сервис баланса.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetBalance возвращает текущий баланс пользователя.
func (s *Service) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	return s.store.GetBalance(ctx, telegramID)
}
