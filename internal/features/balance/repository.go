// Package balance — repository.go читает и изменяет баланс звёзд в таблице users.
//
// Изменение баланса всегда выполняется ОДНИМ условным UPDATE
// (balance + delta >= 0), а не чтением с последующей записью:
// два параллельных списания у одного пользователя не могут
// прочитать один и тот же старый баланс и оба пройти.
package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neurostars.ru/telegram-bot/internal/common"
)

// Querier — минимальный контракт для выполнения запроса.
// Ему удовлетворяют и пул, и транзакция pgx, поэтому изменение баланса
// можно встроить в транзакцию платёжного репозитория.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository предоставляет методы для работы с балансом.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий баланса.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetBalance возвращает текущий баланс пользователя.
func (r *Repository) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	query := `SELECT balance FROM users WHERE telegram_id = $1`
	var balance int64
	err := r.db.QueryRow(ctx, query, telegramID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// ApplyDelta изменяет баланс на delta (может быть отрицательной) внутри
// переданного Querier — на практике это всегда транзакция платёжного
// репозитория, чтобы запись в журнал и изменение баланса были атомарны.
// Если после изменения баланс стал бы отрицательным — не изменяет ничего
// и возвращает ErrInsufficientBalance.
func (r *Repository) ApplyDelta(ctx context.Context, q Querier, telegramID int64, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance + $2, updated_at = NOW()
		WHERE telegram_id = $1 AND balance + $2 >= 0
		RETURNING balance
	`
	var newBalance int64
	err := q.QueryRow(ctx, query, telegramID, delta).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Ноль строк — либо пользователя нет, либо не хватает звёзд.
		exists, exErr := r.userExists(ctx, q, telegramID)
		if exErr != nil {
			return 0, exErr
		}
		if !exists {
			return 0, common.ErrUserNotFound
		}
		return 0, common.ErrInsufficientBalance
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка изменения баланса: %w", err)
	}
	return newBalance, nil
}

func (r *Repository) userExists(ctx context.Context, q Querier, telegramID int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1)`, telegramID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки пользователя: %w", err)
	}
	return exists, nil
}
