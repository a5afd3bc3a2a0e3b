// Package payments — topup.go инициирует пополнение через Robokassa.
//
// Создаёт PENDING-платёж с числовым инвойсом и собирает платёжную ссылку.
// Подтверждение приходит асинхронно на вебхук (internal/webhook),
// который и переводит платёж в COMPLETED.
package payments

import (
	"context"
	"crypto/md5"
	"fmt"
	"math/rand"
	"net/url"

	log "github.com/sirupsen/logrus"
)

const robokassaPayURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

// TopUpService инициирует пополнения.
type TopUpService struct {
	repo      *Repository
	login     string
	password1 string // пароль #1 — для подписи исходящей платёжной ссылки
	testMode  bool
}

// NewTopUpService создаёт сервис пополнений.
func NewTopUpService(repo *Repository, login, password1 string, testMode bool) *TopUpService {
	return &TopUpService{
		repo:      repo,
		login:     login,
		password1: password1,
		testMode:  testMode,
	}
}

// InitTopUp создаёт PENDING-платёж на stars звёзд и возвращает ссылку
// на оплату. Курс фиксированный: 1 звезда = 1 рубль.
func (s *TopUpService) InitTopUp(ctx context.Context, telegramID, stars int64, botName string) (payURL, invID string, err error) {
	// Инвойс числовой (требование Robokassa). Коллизию разруливает
	// уникальный индекс: не вставилось — пробуем другой номер.
	for attempt := 0; attempt < 5; attempt++ {
		invID = fmt.Sprintf("%09d", rand.Int63n(1_000_000_000))

		inserted, insErr := s.repo.CreatePending(ctx, ProcessParams{
			InvID:       invID,
			TelegramID:  telegramID,
			Amount:      stars,
			Type:        TypeMoneyIncome,
			Description: fmt.Sprintf("Пополнение на %d звёзд", stars),
			ServiceType: "top_up",
			BotName:     botName,
		})
		if insErr != nil {
			return "", "", insErr
		}
		if inserted {
			log.WithFields(log.Fields{
				"user_id":  telegramID,
				"stars":    stars,
				"inv_id":   invID,
				"bot_name": botName,
			}).Info("Создан PENDING-платёж пополнения")
			return s.buildPayURL(stars, invID), invID, nil
		}
	}
	return "", "", fmt.Errorf("не удалось подобрать свободный inv_id")
}

// buildPayURL собирает платёжную ссылку Robokassa.
// Подпись исходящей ссылки: md5("login:OutSum:InvId:пароль1").
func (s *TopUpService) buildPayURL(stars int64, invID string) string {
	outSum := fmt.Sprintf("%d.00", stars)
	sig := fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf(
		"%s:%s:%s:%s", s.login, outSum, invID, s.password1,
	))))

	q := url.Values{}
	q.Set("MerchantLogin", s.login)
	q.Set("OutSum", outSum)
	q.Set("InvId", invID)
	q.Set("SignatureValue", sig)
	if s.testMode {
		q.Set("IsTest", "1")
	}
	return robokassaPayURL + "?" + q.Encode()
}
