// Package pricing — models.go описывает режимы генерации и результат расчёта цены.
package pricing

// Mode — режим генерации, за который списываются звёзды.
type Mode string

const (
	ModeNeuroPhoto   Mode = "neuro_photo"    // генерация изображения по описанию
	ModeTextToVideo  Mode = "text_to_video"  // видео по описанию
	ModeImageToVideo Mode = "image_to_video" // оживление картинки
	ModeTextToSpeech Mode = "text_to_speech" // озвучка текста
	ModeVoiceClone   Mode = "voice_clone"    // клонирование голоса
)

// Quote — результат расчёта цены. Нигде не сохраняется,
// живёт только от расчёта до списания.
type Quote struct {
	Stars int64
}
