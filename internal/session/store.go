// Package session хранит состояние визарда пополнения в Redis.
//
// Шаги заданы явными константами, а не произвольными ключами:
// по состоянию всегда видно, какой ввод бот ждёт от пользователя.
// TTL защищает от брошенных визардов.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Step — шаг визарда пополнения.
type Step string

const (
	// StepAwaitAmount — бот спросил сумму, ждём число от пользователя
	StepAwaitAmount Step = "await_amount"
)

// TopUpState — состояние визарда одного пользователя в одном боте.
type TopUpState struct {
	Step      Step      `json:"step"`
	BotName   string    `json:"bot_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store — хранилище состояний визардов.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore подключается к Redis и возвращает хранилище.
func NewStore(addr, password string, db int, ttl time.Duration) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "topup:",
		ttl:    ttl,
	}
}

// Ping проверяет доступность Redis.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(botName string, telegramID int64) string {
	return fmt.Sprintf("%s%s:%d", s.prefix, botName, telegramID)
}

// Get возвращает состояние визарда или nil, если визард не начат.
func (s *Store) Get(ctx context.Context, botName string, telegramID int64) (*TopUpState, error) {
	data, err := s.client.Get(ctx, s.key(botName, telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}

	var state TopUpState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("ошибка разбора сессии: %w", err)
	}
	return &state, nil
}

// Set сохраняет состояние визарда с TTL.
func (s *Store) Set(ctx context.Context, telegramID int64, state *TopUpState) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.BotName, telegramID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи сессии: %w", err)
	}
	return nil
}

// Clear удаляет состояние визарда.
func (s *Store) Clear(ctx context.Context, botName string, telegramID int64) error {
	return s.client.Del(ctx, s.key(botName, telegramID)).Err()
}

// Close закрывает соединение с Redis.
func (s *Store) Close() error {
	return s.client.Close()
}
