// Package bot содержит главный модуль ботов — инициализацию, запуск и остановку.
// bot.go запускает polling для каждого бота из реестра и маршрутизирует команды.
package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/bot/middleware"
	"neurostars.ru/telegram-bot/internal/config"
	"neurostars.ru/telegram-bot/internal/features/admin"
	"neurostars.ru/telegram-bot/internal/features/balance"
	"neurostars.ru/telegram-bot/internal/features/generation"
	"neurostars.ru/telegram-bot/internal/features/payments"
	"neurostars.ru/telegram-bot/internal/features/users"
)

// Bot — главная структура, объединяющая все боты и обработчики.
type Bot struct {
	registry *Registry
	cfg      *config.Config

	rateLimiter *middleware.RateLimiter

	userService *users.Service

	balanceHandler    *balance.Handler
	paymentsHandler   *payments.Handler
	generationHandler *generation.Handler
	adminHandler      *admin.Handler

	parser *CommandParser

	// общий на все боты ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр со всеми зависимостями.
func New(
	registry *Registry,
	cfg *config.Config,
	userService *users.Service,
	balanceHandler *balance.Handler,
	paymentsHandler *payments.Handler,
	generationHandler *generation.Handler,
	adminHandler *admin.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		registry:          registry,
		cfg:               cfg,
		rateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		userService:       userService,
		balanceHandler:    balanceHandler,
		paymentsHandler:   paymentsHandler,
		generationHandler: generationHandler,
		adminHandler:      adminHandler,
		parser:            NewCommandParser(),
		inflight:          make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling для всех ботов и блокирует до отмены контекста.
func (b *Bot) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, name := range b.registry.Names() {
		api, err := b.registry.Get(name)
		if err != nil {
			continue
		}
		wg.Add(1)
		go func(name string, api *tgbotapi.BotAPI) {
			defer wg.Done()
			b.poll(ctx, name, api)
		}(name, api)
	}

	log.WithFields(log.Fields{
		"bots":         len(b.registry.Names()),
		"max_inflight": cap(b.inflight),
	}).Info("Боты запущены и ожидают сообщения...")

	wg.Wait()
	b.rateLimiter.Close()
	log.Info("Все боты остановлены")
}

// poll крутит long polling одного бота.
func (b *Bot) poll(ctx context.Context, botName string, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			log.WithField("bot_name", botName).Info("Бот останавливается (ctx done)...")
			api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.WithField("bot_name", botName).Info("Канал updates закрыт")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, botName, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, botName string, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Text == "" {
		return
	}
	message := update.Message
	if message.From == nil || message.Chat == nil {
		return
	}

	middleware.LogMessage(botName, message)

	// Rate limiting
	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// EnsureUser — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.userService.EnsureUser(ctx, userID,
		message.From.UserName, message.From.FirstName, botName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureUser failed")
	}

	// В личке сначала пробуем админские команды
	if message.Chat.IsPrivate() {
		if b.adminHandler.HandleAdminMessage(ctx, botName, chatID, userID, message.Text) {
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)

	// Не команда — возможно, это шаг активного визарда пополнения
	if !isCommand {
		b.paymentsHandler.ContinueWizard(ctx, botName, chatID, userID, message.Text)
		return
	}

	b.routeCommand(ctx, botName, chatID, userID, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, botName string, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"bot_name": botName,
		"cmd":      cmd,
		"args":     args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		b.sendMessage(botName, chatID,
			"Привет! Я генерирую контент за звёзды ⭐\n\n"+
				"Команды:\n"+
				"  баланс — сколько звёзд на счёте\n"+
				"  пополнить — купить звёзды\n"+
				"  транзакции — история операций\n"+
				"  фото <описание> — картинка\n"+
				"  видео [модель] <описание> — видео\n"+
				"  озвучка <текст> — озвучка текста")

	case "баланс":
		b.balanceHandler.HandleBalance(ctx, botName, chatID, userID)

	case "транзакции":
		b.paymentsHandler.HandleTransactions(ctx, botName, chatID, userID)

	case "пополнить":
		b.paymentsHandler.HandleTopUpStart(ctx, botName, chatID, userID)

	case "отмена":
		b.paymentsHandler.HandleCancel(ctx, botName, chatID, userID)

	case "фото":
		b.generationHandler.HandlePhoto(ctx, botName, chatID, userID, args)

	case "видео":
		b.generationHandler.HandleVideo(ctx, botName, chatID, userID, args)

	case "озвучка":
		b.generationHandler.HandleSpeech(ctx, botName, chatID, userID, args)
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(botName string, chatID int64, text string) {
	if err := b.registry.Send(botName, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /
// и команды без префикса (баланс, пополнить, ...).
type CommandParser struct {
	validPrefixes []string
	bareCommands  map[string]bool
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
		bareCommands: map[string]bool{
			"баланс": true, "пополнить": true, "транзакции": true,
			"отмена": true, "фото": true, "видео": true, "озвучка": true,
			"стата": true, "выдать": true,
		},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if !hasPrefix && !p.bareCommands[command] {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
