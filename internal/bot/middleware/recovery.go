package middleware

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// RecoverFromPanic гасит панику в обработчике апдейта и пишет стек в лог.
// Вызывается через defer в начале каждой обработки: упавший апдейт
// не должен ронять горутины поллинга остальных ботов.
func RecoverFromPanic() {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"panic": fmt.Sprintf("%v", r),
			"stack": string(debug.Stack()),
		}).Error("ПАНИКА в обработчике — восстановлено")
	}
}
