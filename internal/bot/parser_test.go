package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		name      string
		text      string
		wantCmd   string
		wantArgs  []string
		isCommand bool
	}{
		{
			name:      "слэш-команда",
			text:      "/start",
			wantCmd:   "start",
			isCommand: true,
		},
		{
			name:      "восклицательный префикс",
			text:      "!баланс",
			wantCmd:   "баланс",
			isCommand: true,
		},
		{
			name:      "точечный префикс с аргументами",
			text:      ".фото кот в сапогах",
			wantCmd:   "фото",
			wantArgs:  []string{"кот", "в", "сапогах"},
			isCommand: true,
		},
		{
			name:      "команда без префикса",
			text:      "баланс",
			wantCmd:   "баланс",
			isCommand: true,
		},
		{
			name:      "команда без префикса в верхнем регистре",
			text:      "Пополнить",
			wantCmd:   "пополнить",
			isCommand: true,
		},
		{
			name:      "видео с моделью",
			text:      "видео minimax закат над морем",
			wantCmd:   "видео",
			wantArgs:  []string{"minimax", "закат", "над", "морем"},
			isCommand: true,
		},
		{
			name:      "обычный текст — не команда",
			text:      "привет как дела",
			isCommand: false,
		},
		{
			name:      "число — не команда (шаг визарда)",
			text:      "500",
			isCommand: false,
		},
		{
			name:      "пустая строка",
			text:      "",
			isCommand: false,
		},
		{
			name:      "пробелы вокруг",
			text:      "  !баланс  ",
			wantCmd:   "баланс",
			isCommand: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.isCommand, ok)
			if !tt.isCommand {
				return
			}
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
