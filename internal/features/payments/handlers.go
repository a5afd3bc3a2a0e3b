// Package payments — handlers.go обрабатывает команды пополнения и истории.
//
// Пополнение — визард из одного шага: бот спрашивает сумму, пользователь
// отвечает числом, бот отдаёт платёжную ссылку. Состояние шага живёт
// в Redis (internal/session) и протухает по TTL.
package payments

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
	"neurostars.ru/telegram-bot/internal/session"
)

// Sender отправляет сообщение через нужный бот.
type Sender interface {
	Send(botName string, chatID int64, text string) error
}

// SessionStore хранит состояние визарда пополнения.
type SessionStore interface {
	Get(ctx context.Context, botName string, telegramID int64) (*session.TopUpState, error)
	Set(ctx context.Context, telegramID int64, state *session.TopUpState) error
	Clear(ctx context.Context, botName string, telegramID int64) error
}

// Handler обрабатывает команды пополнения и истории платежей.
type Handler struct {
	topup    *TopUpService
	repo     *Repository
	sessions SessionStore
	sender   Sender

	minStars int64
	maxStars int64
}

// NewHandler создаёт обработчик платежей.
func NewHandler(topup *TopUpService, repo *Repository, sessions SessionStore, sender Sender, minStars, maxStars int64) *Handler {
	return &Handler{
		topup:    topup,
		repo:     repo,
		sessions: sessions,
		sender:   sender,
		minStars: minStars,
		maxStars: maxStars,
	}
}

// HandleTopUpStart запускает визард пополнения.
func (h *Handler) HandleTopUpStart(ctx context.Context, botName string, chatID, userID int64) {
	err := h.sessions.Set(ctx, userID, &session.TopUpState{
		Step:    session.StepAwaitAmount,
		BotName: botName,
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка сохранения сессии")
		h.send(botName, chatID, "Не удалось начать пополнение, попробуйте позже")
		return
	}

	h.send(botName, chatID, fmt.Sprintf(
		"На сколько звёзд пополнить баланс? Введите число от %d до %d (1 звезда = 1 ₽)",
		h.minStars, h.maxStars,
	))
}

// ContinueWizard продолжает начатый визард. Возвращает true, если
// сообщение было шагом визарда и дальше его обрабатывать не нужно.
func (h *Handler) ContinueWizard(ctx context.Context, botName string, chatID, userID int64, text string) bool {
	state, err := h.sessions.Get(ctx, botName, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Ошибка чтения сессии")
		return false
	}
	if state == nil || state.Step != session.StepAwaitAmount {
		return false
	}

	stars, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || stars < h.minStars || stars > h.maxStars {
		h.send(botName, chatID, fmt.Sprintf(
			"Нужно целое число от %d до %d. Попробуйте ещё раз или отправьте /отмена",
			h.minStars, h.maxStars,
		))
		return true
	}

	payURL, invID, err := h.topup.InitTopUp(ctx, userID, stars, botName)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка создания пополнения")
		h.send(botName, chatID, "Не удалось создать платёж, попробуйте позже")
		h.clear(ctx, botName, userID)
		return true
	}

	h.clear(ctx, botName, userID)
	h.send(botName, chatID, fmt.Sprintf(
		"Счёт №%s на %s создан.\nОплатить: %s\n\nЗвёзды зачислятся автоматически после оплаты.",
		invID, common.FormatStars(stars), payURL,
	))
	return true
}

// HandleCancel прерывает визард пополнения.
func (h *Handler) HandleCancel(ctx context.Context, botName string, chatID, userID int64) {
	h.clear(ctx, botName, userID)
	h.send(botName, chatID, "Пополнение отменено")
}

// HandleTransactions показывает последние 10 платежей пользователя.
func (h *Handler) HandleTransactions(ctx context.Context, botName string, chatID, userID int64) {
	list, err := h.repo.GetLastByUser(ctx, userID, 10)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения платежей")
		h.send(botName, chatID, "Не удалось получить историю, попробуйте позже")
		return
	}

	if len(list) == 0 {
		h.send(botName, chatID, "📋 У вас пока нет операций")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d операций:\n\n", len(list)))
	for i, p := range list {
		sign := "+"
		if p.Type == TypeMoneyExpense {
			sign = "-"
		}
		status := ""
		if p.Status == StatusPending {
			status = " (ожидает оплаты)"
		} else if p.Status == StatusFailed {
			status = " (не прошла)"
		}
		sb.WriteString(fmt.Sprintf("%d. %s | %s%d %s | %s%s\n",
			i+1,
			common.FormatDateTime(p.CreatedAt),
			sign, p.Amount, common.PluralizeStars(p.Amount),
			p.Description, status,
		))
	}
	h.send(botName, chatID, sb.String())
}

func (h *Handler) clear(ctx context.Context, botName string, userID int64) {
	if err := h.sessions.Clear(ctx, botName, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Ошибка очистки сессии")
	}
}

func (h *Handler) send(botName string, chatID int64, text string) {
	if err := h.sender.Send(botName, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
