// Package bot — registry.go хранит клиентов всех ботов.
//
// Реестр собирается один раз на старте и передаётся зависимостям явно —
// никакого глобального изменяемого состояния. По имени бота (bot_name
// в БД) реестр находит, через какой клиент слать сообщение: это нужно
// и обработчикам команд, и вебхуку для уведомлений о пополнении.
package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/common"
)

// Registry — реестр клиентов Telegram-ботов по имени.
type Registry struct {
	bots map[string]*tgbotapi.BotAPI
}

// NewRegistry авторизует все боты из конфигурации.
// Ошибка авторизации любого из ботов — фатальна: лучше не подняться
// вовсе, чем работать с половиной ботов.
func NewRegistry(tokens map[string]string, debug bool) (*Registry, error) {
	bots := make(map[string]*tgbotapi.BotAPI, len(tokens))
	for name, token := range tokens {
		api, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			return nil, fmt.Errorf("ошибка авторизации бота %q: %w", name, err)
		}
		api.Debug = debug
		bots[name] = api
		log.WithFields(log.Fields{
			"bot_name": name,
			"username": api.Self.UserName,
		}).Info("Бот авторизован")
	}
	return &Registry{bots: bots}, nil
}

// Get возвращает клиента бота по имени.
func (r *Registry) Get(name string) (*tgbotapi.BotAPI, error) {
	api, ok := r.bots[name]
	if !ok {
		return nil, common.ErrUnknownBot
	}
	return api, nil
}

// Names возвращает имена всех зарегистрированных ботов.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bots))
	for name := range r.bots {
		names = append(names, name)
	}
	return names
}

// Send отправляет текстовое сообщение через указанный бот.
func (r *Registry) Send(botName string, chatID int64, text string) error {
	api, err := r.Get(botName)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки через %s: %w", botName, err)
	}
	return nil
}

// Notify — то же, что Send; отдельное имя под контракт вебхука.
func (r *Registry) Notify(botName string, telegramID int64, text string) error {
	return r.Send(botName, telegramID, text)
}
