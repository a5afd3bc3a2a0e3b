// Package users — models.go описывает структуры данных пользователей.
package users

import "time"

// User — пользователь одного из ботов.
// telegram_id уникален глобально, bot_name хранит, через какой бот
// пользователь пришёл (для уведомлений и статистики).
type User struct {
	ID           int64
	TelegramID   int64
	Username     string
	FirstName    string
	Balance      int64 // звёзды, меняется только через платёжный процессор
	Subscription *string
	BotName      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
