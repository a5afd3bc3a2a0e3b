package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	const userID int64 = 100

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(userID), "запрос %d должен пройти", i+1)
	}
	assert.False(t, rl.Allow(userID), "четвёртый запрос в окне должен блокироваться")

	// другой пользователь считается отдельно
	assert.True(t, rl.Allow(200))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow(100))
	assert.False(t, rl.Allow(100))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow(100), "после окна лимит сбрасывается")
}
