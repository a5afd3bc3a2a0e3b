package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"neurostars.ru/telegram-bot/internal/common"
)

const adminID int64 = 42

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService([]int64{adminID}, string(hash), nil, nil, nil)
}

func TestLogin(t *testing.T) {
	s := newTestService(t, "s3cret")

	require.NoError(t, s.Login(adminID, "s3cret"))
	assert.NoError(t, s.CheckSession(adminID))
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestService(t, "s3cret")

	assert.ErrorIs(t, s.Login(adminID, "guess"), common.ErrWrongPassword)
	assert.ErrorIs(t, s.CheckSession(adminID), common.ErrSessionExpired)
}

func TestLogin_NotAdmin(t *testing.T) {
	s := newTestService(t, "s3cret")

	// не-админ получает ErrNotAdmin даже с верным паролем
	assert.ErrorIs(t, s.Login(999, "s3cret"), common.ErrNotAdmin)
	assert.ErrorIs(t, s.CheckSession(999), common.ErrNotAdmin)
}

func TestLogin_TooManyAttempts(t *testing.T) {
	s := newTestService(t, "s3cret")

	for i := 0; i < maxLoginAttempts; i++ {
		assert.ErrorIs(t, s.Login(adminID, "guess"), common.ErrWrongPassword)
	}

	// после пяти неудач блокируется даже верный пароль
	assert.ErrorIs(t, s.Login(adminID, "s3cret"), common.ErrTooManyAttempts)
}

func TestCheckSession_NoSession(t *testing.T) {
	s := newTestService(t, "s3cret")

	assert.ErrorIs(t, s.CheckSession(adminID), common.ErrSessionExpired)
}
