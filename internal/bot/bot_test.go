package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"neurostars.ru/telegram-bot/internal/config"
)

func TestNew_InflightLimit(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		want       int
	}{
		{"значение из конфига", 16, 16},
		{"ноль подменяется дефолтом", 0, 64},
		{"отрицательное подменяется дефолтом", -5, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				BotMaxInflight:    tt.configured,
				RateLimitRequests: 10,
				RateLimitWindow:   time.Minute,
			}

			b := New(nil, cfg, nil, nil, nil, nil, nil)
			defer b.rateLimiter.Close()

			// действующий лимит — ёмкость канала; его же пишем в лог старта
			assert.Equal(t, tt.want, cap(b.inflight))
		})
	}
}
