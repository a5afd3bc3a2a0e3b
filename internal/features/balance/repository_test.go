package balance

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurostars.ru/telegram-bot/internal/common"
)

// fakeQuerier изображает таблицу users в памяти: разбирает те же два
// запроса, что шлёт репозиторий, с той же семантикой условного UPDATE.
type fakeQuerier struct {
	balances map[int64]int64
}

type fakeRow struct {
	err  error
	scan func(dest ...any)
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	r.scan(dest...)
	return nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "UPDATE users"):
		telegramID := args[0].(int64)
		delta := args[1].(int64)
		bal, ok := q.balances[telegramID]
		if !ok || bal+delta < 0 {
			return fakeRow{err: pgx.ErrNoRows}
		}
		q.balances[telegramID] = bal + delta
		newBalance := q.balances[telegramID]
		return fakeRow{scan: func(dest ...any) { *dest[0].(*int64) = newBalance }}

	case strings.Contains(sql, "SELECT EXISTS"):
		_, ok := q.balances[args[0].(int64)]
		return fakeRow{scan: func(dest ...any) { *dest[0].(*bool) = ok }}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func TestApplyDelta_RoundTrip(t *testing.T) {
	q := &fakeQuerier{balances: map[int64]int64{100: 70}}
	r := NewRepository(nil)
	ctx := context.Background()

	// +n, затем -n — баланс возвращается ровно к исходному
	bal, err := r.ApplyDelta(ctx, q, 100, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	bal, err = r.ApplyDelta(ctx, q, 100, -30)
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal)
	assert.Equal(t, int64(70), q.balances[100])
}

func TestApplyDelta_Insufficient(t *testing.T) {
	q := &fakeQuerier{balances: map[int64]int64{100: 50}}
	r := NewRepository(nil)

	_, err := r.ApplyDelta(context.Background(), q, 100, -51)

	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, int64(50), q.balances[100], "отклонённое списание не меняет баланс")
}

func TestApplyDelta_UnknownUser(t *testing.T) {
	q := &fakeQuerier{balances: map[int64]int64{}}
	r := NewRepository(nil)

	_, err := r.ApplyDelta(context.Background(), q, 999, -10)

	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestApplyDelta_DebitToZero(t *testing.T) {
	q := &fakeQuerier{balances: map[int64]int64{100: 50}}
	r := NewRepository(nil)

	bal, err := r.ApplyDelta(context.Background(), q, 100, -50)

	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}
