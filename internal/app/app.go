// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// шину событий, вебхук-сервер и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/bot"
	"neurostars.ru/telegram-bot/internal/config"
	"neurostars.ru/telegram-bot/internal/db/postgres"
	"neurostars.ru/telegram-bot/internal/events"
	"neurostars.ru/telegram-bot/internal/features/admin"
	"neurostars.ru/telegram-bot/internal/features/balance"
	"neurostars.ru/telegram-bot/internal/features/generation"
	"neurostars.ru/telegram-bot/internal/features/payments"
	"neurostars.ru/telegram-bot/internal/features/pricing"
	"neurostars.ru/telegram-bot/internal/features/users"
	"neurostars.ru/telegram-bot/internal/jobs"
	"neurostars.ru/telegram-bot/internal/session"
	"neurostars.ru/telegram-bot/internal/webhook"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Registry  *bot.Registry
	Scheduler *jobs.Scheduler
	Webhook   *webhook.Server
	DB        *pgxpool.Pool

	eventBus *events.NATSPublisher
	consumer *events.Consumer
	sessions *session.Store
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Реестр Telegram-ботов ===
	registry, err := bot.NewRegistry(cfg.BotTokens, cfg.AppEnv == "development")
	if err != nil {
		return nil, err
	}

	// === 3. Redis (состояние визарда пополнения) ===
	sessions := session.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	if err := sessions.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis недоступен: %w", err)
	}

	// === 4. Репозитории ===
	userRepo := users.NewRepository(pool)
	balanceRepo := balance.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool, balanceRepo)

	// === 5. Шина событий (основной путь платежей) ===
	// Недоступная на старте шина не фатальна: координатор уйдёт
	// на прямую обработку
	var eventBus *events.NATSPublisher
	var consumer *events.Consumer
	if cfg.EventBusEnabled {
		eventBus, err = events.Connect(cfg.EventBusURL)
		if err != nil {
			log.WithError(err).Warn("Шина событий недоступна, работаем в прямом режиме")
			eventBus = nil
		} else {
			consumer = events.NewConsumer(eventBus.Conn(), paymentRepo)
			if err := consumer.Start(ctx); err != nil {
				return nil, err
			}
		}
	}

	var pub events.Publisher
	if eventBus != nil {
		pub = eventBus
	}
	coordinator := events.NewCoordinator(pub, paymentRepo, cfg.EventBusPublishTimeout, cfg.EventBusEnabled)

	// === 6. Сервисы ===
	userService := users.NewService(userRepo)
	balanceService := balance.NewService(balanceRepo)
	processor := payments.NewProcessor(coordinator)
	calculator := pricing.NewCalculator()
	topupService := payments.NewTopUpService(paymentRepo,
		cfg.RobokassaLogin, cfg.RobokassaPassword1, cfg.RobokassaTestMode)
	provider := generation.NewReplicateProvider(
		cfg.GenerationAPIURL, cfg.GenerationAPIToken, cfg.GenerationTimeout)
	generationService := generation.NewService(calculator, balanceService, processor, provider)
	adminService := admin.NewService(cfg.AdminIDs, cfg.AdminPasswordHash,
		userService, paymentRepo, processor)

	// === 7. Обработчики ===
	balanceHandler := balance.NewHandler(balanceService, registry)
	paymentsHandler := payments.NewHandler(topupService, paymentRepo, sessions, registry,
		cfg.TopUpMinStars, cfg.TopUpMaxStars)
	generationHandler := generation.NewHandler(generationService, registry)
	adminHandler := admin.NewHandler(adminService, registry)

	// === 8. Собираем бота ===
	b := bot.New(
		registry, cfg,
		userService,
		balanceHandler,
		paymentsHandler,
		generationHandler,
		adminHandler,
	)

	// === 9. Вебхук Robokassa ===
	webhookSrv := webhook.NewServer(cfg.WebhookAddr, paymentRepo, registry, cfg.RobokassaPassword2)

	// === 10. Планировщик задач ===
	staleAfter := time.Duration(cfg.TopUpStaleHours) * time.Hour
	scheduler := jobs.NewScheduler(paymentRepo, staleAfter)

	return &App{
		Bot:       b,
		Registry:  registry,
		Scheduler: scheduler,
		Webhook:   webhookSrv,
		DB:        pool,
		eventBus:  eventBus,
		consumer:  consumer,
		sessions:  sessions,
	}, nil
}

// Close освобождает ресурсы приложения (кроме БД — её закрывает main).
func (a *App) Close() {
	if a.consumer != nil {
		a.consumer.Stop()
	}
	if a.eventBus != nil {
		a.eventBus.Close()
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия Redis")
		}
	}
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.RunMigrations(ctx, pool, "migrations"); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Payments},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    telegram_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255),
    balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
    subscription VARCHAR(64),
    bot_name VARCHAR(64) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id);
CREATE INDEX IF NOT EXISTS idx_users_bot_name ON users(bot_name);
`

var migration002Payments = `
CREATE TABLE IF NOT EXISTS payments_v2 (
    id BIGSERIAL PRIMARY KEY,
    inv_id VARCHAR(64) UNIQUE NOT NULL,
    telegram_id BIGINT NOT NULL REFERENCES users(telegram_id),
    amount BIGINT NOT NULL CHECK (amount > 0),
    status VARCHAR(16) NOT NULL,
    type VARCHAR(16) NOT NULL,
    description TEXT,
    service_type VARCHAR(64),
    bot_name VARCHAR(64) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_payments_v2_telegram_id ON payments_v2(telegram_id);
CREATE INDEX IF NOT EXISTS idx_payments_v2_status ON payments_v2(status);
CREATE INDEX IF NOT EXISTS idx_payments_v2_created_at ON payments_v2(created_at DESC);
`
