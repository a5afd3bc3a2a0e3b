// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасная чистка протухших
// PENDING-платежей и ночная сводка по журналу.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"neurostars.ru/telegram-bot/internal/features/payments"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	payments   *payments.Repository
	staleAfter time.Duration
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(paymentsRepo *payments.Repository, staleAfter time.Duration) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		payments:   paymentsRepo,
		staleAfter: staleAfter,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Каждый час помечаем протухшие PENDING-платежи как FAILED:
	// пользователь так и не оплатил счёт, вебхука не будет
	s.cron.AddFunc("0 * * * *", func() {
		cutoff := time.Now().Add(-s.staleAfter)
		n, err := s.payments.SweepStalePending(ctx, cutoff)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка чистки платежей")
			return
		}
		if n > 0 {
			log.WithField("count", n).Info("[CRON] Протухшие платежи помечены FAILED")
		}
	})

	// Ночная сводка по журналу
	s.cron.AddFunc("0 3 * * *", func() {
		income, expense, err := s.payments.Totals(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка сводки")
			return
		}
		log.WithFields(log.Fields{
			"income":  income,
			"expense": expense,
		}).Info("[CRON] Сводка по звёздам")
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
