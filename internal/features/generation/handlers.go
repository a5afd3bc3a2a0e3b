// Package generation — handlers.go обрабатывает команды платной генерации.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/features/pricing"
)

// Sender отправляет сообщение через нужный бот.
type Sender interface {
	Send(botName string, chatID int64, text string) error
}

// Handler обрабатывает команды генерации.
type Handler struct {
	service *Service
	sender  Sender
	// модель видео по умолчанию, если пользователь не указал свою
	defaultVideoModel string
}

// NewHandler создаёт обработчик генерации.
func NewHandler(service *Service, sender Sender) *Handler {
	return &Handler{
		service:           service,
		sender:            sender,
		defaultVideoModel: "minimax",
	}
}

// HandlePhoto — команда "фото <описание>".
func (h *Handler) HandlePhoto(ctx context.Context, botName string, chatID, userID int64, args []string) {
	h.run(ctx, botName, chatID, userID, pricing.ModeNeuroPhoto, "", args)
}

// HandleVideo — команда "видео [модель] <описание>".
// Первый аргумент считается моделью, если она есть в прайсе.
func (h *Handler) HandleVideo(ctx context.Context, botName string, chatID, userID int64, args []string) {
	model := h.defaultVideoModel
	if len(args) > 0 {
		for _, known := range h.service.pricing.VideoModels() {
			if args[0] == known {
				model = args[0]
				args = args[1:]
				break
			}
		}
	}
	h.run(ctx, botName, chatID, userID, pricing.ModeTextToVideo, model, args)
}

// HandleSpeech — команда "озвучка <текст>".
func (h *Handler) HandleSpeech(ctx context.Context, botName string, chatID, userID int64, args []string) {
	h.run(ctx, botName, chatID, userID, pricing.ModeTextToSpeech, "", args)
}

// run — общий путь: валидация запроса, генерация, ответ пользователю.
func (h *Handler) run(ctx context.Context, botName string, chatID, userID int64, mode pricing.Mode, model string, args []string) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		h.send(botName, chatID, "Добавьте описание после команды, например: фото кот в скафандре")
		return
	}

	if quote, err := h.service.Quote(mode, model); err == nil {
		h.send(botName, chatID, fmt.Sprintf("Принято! Стоимость: %s. Генерирую...", common.FormatStars(quote.Stars)))
	}

	result, err := h.service.Generate(ctx, userID, mode, model, prompt, botName)
	if err != nil {
		h.send(botName, chatID, h.errorText(err))
		return
	}

	h.send(botName, chatID, fmt.Sprintf("✅ Готово: %s", result.URL))
}

// errorText переводит ошибки сервиса в понятные пользователю сообщения.
func (h *Handler) errorText(err error) string {
	switch {
	case errors.Is(err, common.ErrInsufficientBalance):
		return "Не хватает звёзд 😔 Пополните баланс командой «пополнить»"
	case errors.Is(err, common.ErrUserNotFound):
		return "Вы ещё не зарегистрированы — отправьте /start"
	case errors.Is(err, common.ErrUnknownMode), errors.Is(err, common.ErrUnknownModel):
		return "Такой режим или модель не поддерживается"
	case errors.Is(err, common.ErrPaymentFailed):
		return "Не удалось списать звёзды, попробуйте позже"
	case errors.Is(err, common.ErrExternalService):
		return "Генерация не удалась, звёзды возвращены на баланс. Попробуйте позже"
	default:
		log.WithError(err).Warn("Неожиданная ошибка генерации")
		return "Что-то пошло не так, попробуйте позже"
	}
}

func (h *Handler) send(botName string, chatID int64, text string) {
	if err := h.sender.Send(botName, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
