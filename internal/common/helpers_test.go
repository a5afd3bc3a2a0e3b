package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizeStars(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "звёзд"},
		{1, "звезда"},
		{2, "звезды"},
		{4, "звезды"},
		{5, "звёзд"},
		{10, "звёзд"},
		{11, "звёзд"},
		{12, "звёзд"},
		{14, "звёзд"},
		{20, "звёзд"},
		{21, "звезда"},
		{22, "звезды"},
		{25, "звёзд"},
		{100, "звёзд"},
		{101, "звезда"},
		{111, "звёзд"},
		{121, "звезда"},
		{1000, "звёзд"},
		{-1, "звезда"},
		{-22, "звезды"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PluralizeStars(tt.n), "n=%d", tt.n)
	}
}

func TestFormatStars(t *testing.T) {
	assert.Equal(t, "1 звезда", FormatStars(1))
	assert.Equal(t, "3 звезды", FormatStars(3))
	assert.Equal(t, "150 звёзд", FormatStars(150))
}

func TestFormatDateTime(t *testing.T) {
	// 12:00 UTC = 15:00 по Москве
	ts := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "07.03.2025 15:00", FormatDateTime(ts))
}
