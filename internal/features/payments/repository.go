// Package payments — repository.go выполняет все операции с таблицей payments_v2.
// Запись платежа и изменение баланса всегда идут в одной транзакции БД:
// либо происходит и то и другое, либо ничего.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/balance"
)

// Repository предоставляет методы для работы с платежами.
type Repository struct {
	db       *pgxpool.Pool
	balances *balance.Repository
}

// NewRepository создаёт новый репозиторий платежей.
func NewRepository(db *pgxpool.Pool, balances *balance.Repository) *Repository {
	return &Repository{db: db, balances: balances}
}

// ExecuteDirect проводит операцию синхронно («прямой путь»):
// вставляет COMPLETED-запись и меняет баланс в одной транзакции.
//
// Повторный вызов с тем же InvID — no-op без изменения баланса:
// вставка упирается в уникальный индекс inv_id и транзакция завершается
// ничего не сделав. Так шина и прямой путь не могут провести одну
// операцию дважды.
func (r *Repository) ExecuteDirect(ctx context.Context, p ProcessParams) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		INSERT INTO payments_v2
			(inv_id, telegram_id, amount, status, type, description, service_type, bot_name, completed_at)
		VALUES ($1, $2, $3, 'COMPLETED', $4, $5, $6, $7, NOW())
		ON CONFLICT (inv_id) DO NOTHING
	`, p.InvID, p.TelegramID, p.Amount, p.Type, p.Description, p.ServiceType, p.BotName)
	if err != nil {
		return fmt.Errorf("ошибка записи платежа: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Операция с этим InvID уже проведена — повтор считаем успехом
		return nil
	}

	if _, err := r.balances.ApplyDelta(ctx, tx, p.TelegramID, p.Delta()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CreatePending создаёт PENDING-запись пополнения, ожидающую вебхук.
// Возвращает false, если inv_id уже занят (вызывающий код генерирует новый).
func (r *Repository) CreatePending(ctx context.Context, p ProcessParams) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		INSERT INTO payments_v2
			(inv_id, telegram_id, amount, status, type, description, service_type, bot_name)
		VALUES ($1, $2, $3, 'PENDING', $4, $5, $6, $7)
		ON CONFLICT (inv_id) DO NOTHING
	`, p.InvID, p.TelegramID, p.Amount, p.Type, p.Description, p.ServiceType, p.BotName)
	if err != nil {
		return false, fmt.Errorf("ошибка создания платежа: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

const paymentColumns = `
	id, inv_id, telegram_id, amount, status, type,
	COALESCE(description, ''), COALESCE(service_type, ''), bot_name,
	created_at, completed_at
`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.InvID, &p.TelegramID, &p.Amount, &p.Status, &p.Type,
		&p.Description, &p.ServiceType, &p.BotName,
		&p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByInvID возвращает платёж по инвойсу.
func (r *Repository) GetByInvID(ctx context.Context, invID string) (*Payment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments_v2 WHERE inv_id = $1`, invID)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения платежа: %w", err)
	}
	return p, nil
}

// CompleteTopUp переводит PENDING-платёж в COMPLETED и начисляет звёзды.
// Переход выполняется условным UPDATE по статусу, поэтому случиться
// он может максимум один раз.
//
// Возвращает:
//   - платёж и already=false — переход произошёл сейчас, баланс начислен
//   - платёж и already=true — платёж уже был COMPLETED (повтор вебхука)
//   - common.ErrPaymentNotFound — инвойс неизвестен либо уже помечен FAILED
func (r *Repository) CompleteTopUp(ctx context.Context, invID string) (*Payment, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE payments_v2
		SET status = 'COMPLETED', completed_at = NOW()
		WHERE inv_id = $1 AND status = 'PENDING'
		RETURNING `+paymentColumns,
		invID)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Перехода не было: смотрим, что с платежом на самом деле
		existing, getErr := r.GetByInvID(ctx, invID)
		if getErr != nil {
			return nil, false, getErr
		}
		if existing.Status == StatusCompleted {
			return existing, true, nil
		}
		// FAILED (протух по крону): деньги провайдер подтвердил слишком поздно,
		// автоматически не начисляем — разбирается вручную по логу вебхука
		return nil, false, common.ErrPaymentNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка завершения платежа: %w", err)
	}

	if _, err := r.balances.ApplyDelta(ctx, tx, p.TelegramID, p.Amount); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return p, false, nil
}

// GetLastByUser возвращает последние N платежей пользователя.
func (r *Repository) GetLastByUser(ctx context.Context, telegramID int64, limit int) ([]*Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments_v2
		WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, telegramID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения платежей: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования платежа: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// SweepStalePending помечает протухшие PENDING-платежи как FAILED.
// Вызывается кроном; возвращает число помеченных записей.
func (r *Repository) SweepStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE payments_v2
		SET status = 'FAILED', completed_at = NOW()
		WHERE status = 'PENDING' AND created_at < $1
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки платежей: %w", err)
	}
	return ct.RowsAffected(), nil
}

// Totals возвращает суммы проведённых начислений и списаний (для статистики).
func (r *Repository) Totals(ctx context.Context) (income, expense int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'MONEY_INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'MONEY_EXPENSE'), 0)
		FROM payments_v2
		WHERE status = 'COMPLETED'
	`).Scan(&income, &expense)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта итогов: %w", err)
	}
	return income, expense, nil
}
