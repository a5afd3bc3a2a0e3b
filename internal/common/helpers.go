// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование сумм, работа с временем.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeStars возвращает правильную форму слова «звезда» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "звезда" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "звезды" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "звёзд" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizeStars(1)  → "звезда"
//	PluralizeStars(3)  → "звезды"
//	PluralizeStars(5)  → "звёзд"
//	PluralizeStars(11) → "звёзд"
//	PluralizeStars(21) → "звезда"
func PluralizeStars(n int64) string {
	// Берём абсолютное значение для отрицательных чисел
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "звезда"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "звезды"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "звёзд"
}

// FormatStars форматирует сумму звёзд в читабельную строку.
// Пример: FormatStars(150) → "150 звёзд"
func FormatStars(amount int64) string {
	return fmt.Sprintf("%d %s", amount, PluralizeStars(amount))
}

// GetMoscowTime возвращает текущее время в часовом поясе Москвы (Europe/Moscow).
// Все пользовательские даты показываем по Москве.
func GetMoscowTime() time.Time {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Если не удалось загрузить — используем UTC+3 вручную
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return time.Now().In(loc)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time) string {
	loc, _ := time.LoadLocation("Europe/Moscow")
	return t.In(loc).Format("02.01.2006 15:04")
}
