// Package balance — handlers.go обрабатывает команды баланса.
package balance

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
)

// Sender отправляет сообщение через нужный бот.
type Sender interface {
	Send(botName string, chatID int64, text string) error
}

// Handler обрабатывает команды, связанные с балансом.
type Handler struct {
	service *Service
	sender  Sender
}

// NewHandler создаёт обработчик баланса.
func NewHandler(service *Service, sender Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleBalance показывает текущий баланс пользователя.
func (h *Handler) HandleBalance(ctx context.Context, botName string, chatID, userID int64) {
	bal, err := h.service.GetBalance(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		h.send(botName, chatID, "Вы ещё не зарегистрированы — отправьте /start")
		return
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения баланса")
		h.send(botName, chatID, "Не удалось получить баланс, попробуйте позже")
		return
	}

	h.send(botName, chatID, fmt.Sprintf("⭐ Ваш баланс: %s", common.FormatStars(bal)))
}

func (h *Handler) send(botName string, chatID int64, text string) {
	if err := h.sender.Send(botName, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
