// Package users — repository.go выполняет все операции с таблицей users.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neurostars.ru/telegram-bot/internal/common"
)

// Repository предоставляет методы для работы с пользователями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий пользователей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureUser регистрирует пользователя при первом контакте.
// Повторный вызов обновляет username/first_name, баланс не трогает.
func (r *Repository) EnsureUser(ctx context.Context, telegramID int64, username, firstName, botName string) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, balance, bot_name)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, telegramID, username, firstName, botName)
	if err != nil {
		return fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}
	return nil
}

// GetByTelegramID возвращает пользователя по telegram id.
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	query := `
		SELECT id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
		       balance, subscription, bot_name, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`
	var u User
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.Balance, &u.Subscription, &u.BotName, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return &u, nil
}

// CountByBot возвращает число пользователей каждого бота (для админ-статистики).
func (r *Repository) CountByBot(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT bot_name, COUNT(*) FROM users GROUP BY bot_name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		counts[name] = n
	}
	return counts, nil
}
