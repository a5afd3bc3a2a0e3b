// Package users — service.go содержит бизнес-логику работы с пользователями.
package users

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service управляет пользователями ботов.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис пользователей.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureUser регистрирует пользователя при первом контакте с ботом.
func (s *Service) EnsureUser(ctx context.Context, telegramID int64, username, firstName, botName string) error {
	err := s.repo.EnsureUser(ctx, telegramID, username, firstName, botName)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":  telegramID,
			"bot_name": botName,
		}).Warn("EnsureUser failed")
	}
	return err
}

// GetByTelegramID возвращает пользователя по telegram id.
func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// CountByBot возвращает число пользователей по ботам.
func (s *Service) CountByBot(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByBot(ctx)
}
