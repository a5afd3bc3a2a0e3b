// Package pricing — calculator.go считает стоимость генерации в звёздах.
//
// Калькулятор детерминирован и не ходит ни в БД, ни в сеть:
// цену можно посчитать «на пробу» до того, как решим списывать.
package pricing

import (
	"neurostars.ru/telegram-bot/internal/common"
)

// Calculator считает стоимость операции по режиму и модели.
type Calculator struct {
	// базовая цена за одну единицу генерации по режиму
	basePrices map[Mode]int64
	// у видео-режимов цена зависит от модели
	videoModels map[string]int64
}

// NewCalculator создаёт калькулятор с прайсом по умолчанию.
func NewCalculator() *Calculator {
	return &Calculator{
		basePrices: map[Mode]int64{
			ModeNeuroPhoto:   5,
			ModeTextToSpeech: 10,
			ModeVoiceClone:   50,
			// видео-режимы считаются по модели, база не используется
			ModeTextToVideo:  0,
			ModeImageToVideo: 0,
		},
		videoModels: map[string]int64{
			"minimax":      120,
			"haiper":       90,
			"ray":          150,
			"i2vgen-xl":    80,
			"stable-video": 100,
		},
	}
}

// Calculate возвращает стоимость quantity операций режима mode.
// Для видео-режимов model обязательна, для остальных игнорируется.
//
// Ошибки:
//   - common.ErrUnknownMode — режим не из прайса
//   - common.ErrUnknownModel — видео-модель не из прайса
//   - common.ErrInvalidAmount — quantity <= 0
func (c *Calculator) Calculate(mode Mode, model string, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, common.ErrInvalidAmount
	}

	base, ok := c.basePrices[mode]
	if !ok {
		return Quote{}, common.ErrUnknownMode
	}

	if mode == ModeTextToVideo || mode == ModeImageToVideo {
		perUnit, ok := c.videoModels[model]
		if !ok {
			return Quote{}, common.ErrUnknownModel
		}
		return Quote{Stars: perUnit * int64(quantity)}, nil
	}

	return Quote{Stars: base * int64(quantity)}, nil
}

// VideoModels возвращает список известных видео-моделей (для подсказок в боте).
func (c *Calculator) VideoModels() []string {
	names := make([]string, 0, len(c.videoModels))
	for name := range c.videoModels {
		names = append(names, name)
	}
	return names
}
