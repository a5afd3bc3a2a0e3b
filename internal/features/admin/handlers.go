// Package admin — handlers.go обрабатывает админские команды в личке бота.
package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
)

// Sender отправляет сообщение через нужный бот.
type Sender interface {
	Send(botName string, chatID int64, text string) error
}

// Handler обрабатывает админские команды.
type Handler struct {
	service *Service
	sender  Sender
}

// NewHandler создаёт обработчик админки.
func NewHandler(service *Service, sender Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleAdminMessage пытается обработать сообщение как админскую команду.
// Возвращает true, если сообщение было админской командой.
// Вызывается только для личных чатов.
func (h *Handler) HandleAdminMessage(ctx context.Context, botName string, chatID, userID int64, text string) bool {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(strings.TrimLeft(fields[0], "/!."))
	args := fields[1:]

	switch cmd {
	case "login":
		if len(args) != 1 {
			h.send(botName, chatID, "Использование: /login <пароль>")
			return true
		}
		h.handleLogin(botName, chatID, userID, args[0])
		return true

	case "выдать":
		if len(args) != 2 {
			h.send(botName, chatID, "Использование: выдать <telegram_id> <звёзды>")
			return true
		}
		h.handleGrant(ctx, botName, chatID, userID, args)
		return true

	case "стата", "статистика":
		h.handleStats(ctx, botName, chatID, userID)
		return true
	}

	return false
}

func (h *Handler) handleLogin(botName string, chatID, userID int64, password string) {
	err := h.service.Login(userID, password)
	switch {
	case err == nil:
		h.send(botName, chatID, "✅ Вы авторизованы на 24 часа")
	case errors.Is(err, common.ErrNotAdmin):
		// Чужим не рассказываем, что это была админская команда
	case errors.Is(err, common.ErrTooManyAttempts):
		h.send(botName, chatID, "Слишком много попыток, подождите час")
	case errors.Is(err, common.ErrWrongPassword):
		h.send(botName, chatID, "Неверный пароль")
	default:
		log.WithError(err).Error("Ошибка логина админа")
	}
}

func (h *Handler) handleGrant(ctx context.Context, botName string, chatID, userID int64, args []string) {
	targetID, err1 := strconv.ParseInt(args[0], 10, 64)
	amount, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		h.send(botName, chatID, "Нужно два числа: telegram_id и количество звёзд")
		return
	}

	err := h.service.Grant(ctx, userID, targetID, amount)
	switch {
	case err == nil:
		h.send(botName, chatID, "✅ Начислено "+common.FormatStars(amount))
	case errors.Is(err, common.ErrNotAdmin), errors.Is(err, common.ErrSessionExpired):
		h.send(botName, chatID, "Сначала авторизуйтесь: /login <пароль>")
	case errors.Is(err, common.ErrUserNotFound):
		h.send(botName, chatID, "Пользователь с таким telegram_id не найден")
	case errors.Is(err, common.ErrInvalidAmount):
		h.send(botName, chatID, "Сумма должна быть положительной")
	default:
		log.WithError(err).WithField("target_id", targetID).Error("Ошибка начисления")
		h.send(botName, chatID, "Не удалось начислить, смотрите логи")
	}
}

func (h *Handler) handleStats(ctx context.Context, botName string, chatID, userID int64) {
	if err := h.service.CheckSession(userID); err != nil {
		if !errors.Is(err, common.ErrNotAdmin) {
			h.send(botName, chatID, "Сначала авторизуйтесь: /login <пароль>")
		}
		return
	}

	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка сбора статистики")
		h.send(botName, chatID, "Не удалось собрать статистику")
		return
	}
	h.send(botName, chatID, stats)
}

func (h *Handler) send(botName string, chatID int64, text string) {
	if err := h.sender.Send(botName, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
