// Package config загружает конфигурацию приложения из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	// Боты задаются списком "имя=токен,имя=токен".
	// Имя бота — это bot_name в БД, по нему вебхук находит, через какой бот уведомлять.
	BotTokensRaw string            `envconfig:"BOT_TOKENS" required:"true"`
	BotTokens    map[string]string `envconfig:"-"` // заполним вручную

	AdminIDsRaw string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"neurostars"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно (суммарно на все боты).
	// Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Robokassa ---
	RobokassaLogin     string `envconfig:"ROBOKASSA_LOGIN" required:"true"`
	RobokassaPassword1 string `envconfig:"ROBOKASSA_PASSWORD1" required:"true"`
	RobokassaPassword2 string `envconfig:"ROBOKASSA_PASSWORD2" required:"true"`
	RobokassaTestMode  bool   `envconfig:"ROBOKASSA_TEST_MODE" default:"false"`

	// --- Webhook HTTP ---
	WebhookAddr string `envconfig:"WEBHOOK_ADDR" default:":8080"`

	// --- Шина событий (NATS) ---
	EventBusEnabled bool   `envconfig:"EVENTBUS_ENABLED" default:"true"`
	EventBusURL     string `envconfig:"EVENTBUS_URL" default:"nats://nats:4222"`
	// Сколько ждём подтверждения публикации, прежде чем уйти в прямую обработку
	EventBusPublishTimeout time.Duration `envconfig:"EVENTBUS_PUBLISH_TIMEOUT" default:"3s"`

	// --- Redis (состояние визарда пополнения) ---
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"15m"`

	// --- Генерация ---
	GenerationAPIURL   string        `envconfig:"GENERATION_API_URL" default:"https://api.replicate.com"`
	GenerationAPIToken string        `envconfig:"GENERATION_API_TOKEN" required:"true"`
	GenerationTimeout  time.Duration `envconfig:"GENERATION_TIMEOUT" default:"5m"`

	// --- Пополнение ---
	TopUpMinStars int64 `envconfig:"TOPUP_MIN_STARS" default:"10"`
	TopUpMaxStars int64 `envconfig:"TOPUP_MAX_STARS" default:"10000"`
	// Через сколько часов незавершённый PENDING-платёж считается протухшим
	TopUpStaleHours int `envconfig:"TOPUP_STALE_HOURS" default:"24"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if len(c.BotTokens) == 0 {
		return fmt.Errorf("BOT_TOKENS не задан или пуст")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.TopUpMinStars <= 0 || c.TopUpMaxStars < c.TopUpMinStars {
		return fmt.Errorf("некорректные TOPUP_MIN_STARS/TOPUP_MAX_STARS")
	}
	if c.EventBusPublishTimeout <= 0 {
		return fmt.Errorf("EVENTBUS_PUBLISH_TIMEOUT должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	tokens, err := parseBotTokens(cfg.BotTokensRaw)
	if err != nil {
		return nil, fmt.Errorf("BOT_TOKENS parse: %w", err)
	}
	cfg.BotTokens = tokens

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseBotTokens разбирает строку "имя=токен,имя=токен" в map.
func parseBotTokens(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name, token, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		token = strings.TrimSpace(token)
		if !ok || name == "" || token == "" {
			return nil, fmt.Errorf("ожидается имя=токен, получено %q", p)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("бот %q задан дважды", name)
		}
		out[name] = token
	}
	return out, nil
}
