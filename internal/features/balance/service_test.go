package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurostars.ru/telegram-bot/internal/common"
)

type fakeStore struct {
	balances map[int64]int64
}

func (f *fakeStore) GetBalance(_ context.Context, telegramID int64) (int64, error) {
	bal, ok := f.balances[telegramID]
	if !ok {
		return 0, common.ErrUserNotFound
	}
	return bal, nil
}

func TestGetBalance(t *testing.T) {
	s := NewService(&fakeStore{balances: map[int64]int64{100: 50}})

	bal, err := s.GetBalance(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(50), bal)
}

func TestGetBalance_UnknownUser(t *testing.T) {
	s := NewService(&fakeStore{balances: map[int64]int64{}})

	_, err := s.GetBalance(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}
