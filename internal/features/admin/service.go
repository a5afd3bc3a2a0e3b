// Package admin — service.go содержит логику админки.
//
// Админ логинится в личке бота по паролю (в конфиге лежит bcrypt-хеш),
// сессия живёт 24 часа. Начисление звёзд идёт через обычный платёжный
// процессор — админские операции попадают в тот же журнал payments_v2.
package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/payments"
	"neurostars.ru/telegram-bot/internal/features/users"
)

const (
	sessionLifetime  = 24 * time.Hour
	maxLoginAttempts = 5
	attemptsWindow   = time.Hour
)

// Service управляет админскими операциями.
type Service struct {
	adminIDs     []int64
	passwordHash string

	users     *users.Service
	payments  *payments.Repository
	processor *payments.Processor

	mu       sync.Mutex
	sessions map[int64]time.Time   // user_id → когда сессия истекает
	attempts map[int64][]time.Time // user_id → времена неудачных попыток
}

// NewService создаёт сервис админки.
func NewService(adminIDs []int64, passwordHash string, usersSvc *users.Service, paymentsRepo *payments.Repository, processor *payments.Processor) *Service {
	return &Service{
		adminIDs:     adminIDs,
		passwordHash: passwordHash,
		users:        usersSvc,
		payments:     paymentsRepo,
		processor:    processor,
		sessions:     make(map[int64]time.Time),
		attempts:     make(map[int64][]time.Time),
	}
}

// isAdmin проверяет, входит ли пользователь в список админов.
func (s *Service) isAdmin(userID int64) bool {
	for _, id := range s.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Login аутентифицирует админа по паролю.
func (s *Service) Login(userID int64, password string) error {
	if !s.isAdmin(userID) {
		return common.ErrNotAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Счётчик неудачных попыток за последний час
	cutoff := time.Now().Add(-attemptsWindow)
	var recent []time.Time
	for _, t := range s.attempts[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= maxLoginAttempts {
		s.attempts[userID] = recent
		return common.ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.attempts[userID] = append(recent, time.Now())
		return common.ErrWrongPassword
	}

	delete(s.attempts, userID)
	s.sessions[userID] = time.Now().Add(sessionLifetime)
	log.WithField("user_id", userID).Info("Админ авторизован")
	return nil
}

// CheckSession проверяет, что у админа есть живая сессия.
func (s *Service) CheckSession(userID int64) error {
	if !s.isAdmin(userID) {
		return common.ErrNotAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.sessions[userID]
	if !ok || time.Now().After(expires) {
		delete(s.sessions, userID)
		return common.ErrSessionExpired
	}
	return nil
}

// Grant начисляет звёзды пользователю от имени админа.
func (s *Service) Grant(ctx context.Context, adminID, targetID, amount int64) error {
	if err := s.CheckSession(adminID); err != nil {
		return err
	}
	if amount <= 0 {
		return common.ErrInvalidAmount
	}

	// Проверяем, что получатель существует (и узнаём его бот для журнала)
	target, err := s.users.GetByTelegramID(ctx, targetID)
	if err != nil {
		return err
	}

	ok := s.processor.Process(ctx, payments.ProcessParams{
		TelegramID:  targetID,
		Amount:      amount,
		Type:        payments.TypeMoneyIncome,
		Description: fmt.Sprintf("Начисление администратором %d", adminID),
		ServiceType: "admin_grant",
		BotName:     target.BotName,
	})
	if !ok {
		return common.ErrPaymentFailed
	}
	return nil
}

// Stats возвращает сводку по пользователям и обороту звёзд.
func (s *Service) Stats(ctx context.Context) (string, error) {
	counts, err := s.users.CountByBot(ctx)
	if err != nil {
		return "", err
	}
	income, expense, err := s.payments.Totals(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("📊 Статистика\n\nПользователи по ботам:\n")
	total := int64(0)
	for name, n := range counts {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", name, n))
		total += n
	}
	sb.WriteString(fmt.Sprintf("  всего: %d\n\n", total))
	sb.WriteString(fmt.Sprintf("Начислено звёзд: %d\nСписано звёзд: %d\n", income, expense))
	return sb.String(), nil
}
