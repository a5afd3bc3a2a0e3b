// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения,
// а вебхуку — выбирать правильный HTTP-статус.
package common

import "errors"

// Ошибки баланса и платежей
var (
	// ErrInsufficientBalance — недостаточно звёзд на счёте
	ErrInsufficientBalance = errors.New("недостаточно звёзд на счёте")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrPaymentNotFound — платёж с таким инвойсом не найден
	ErrPaymentNotFound = errors.New("платёж не найден")
	// ErrPaymentFailed — платёж не прошёл ни через шину, ни напрямую
	ErrPaymentFailed = errors.New("не удалось провести платёж")
)

// Ошибки конфигурации генерации
var (
	// ErrUnknownMode — неизвестный режим генерации, цену посчитать нельзя
	ErrUnknownMode = errors.New("неизвестный режим генерации")
	// ErrUnknownModel — неизвестная модель для данного режима
	ErrUnknownModel = errors.New("неизвестная модель генерации")
	// ErrUnknownBot — бот с таким именем не зарегистрирован
	ErrUnknownBot = errors.New("бот не зарегистрирован")
)

// Ошибки вебхука Robokassa
var (
	// ErrBadSignature — подпись вебхука не совпала с ожидаемой
	ErrBadSignature = errors.New("неверная подпись запроса")
)

// Ошибки внешних сервисов
var (
	// ErrExternalService — внешний сервис (генерация, шина событий) недоступен
	ErrExternalService = errors.New("внешний сервис недоступен")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
