// Package events — publisher.go подключается к NATS и публикует события.
package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Publisher публикует событие в шину.
// Выделен в интерфейс, чтобы координатор можно было тестировать без NATS.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSPublisher — публикация через NATS.
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect подключается к NATS с переподключением и логированием обрывов.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("neurostars-bot"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS: соединение потеряно")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS: соединение восстановлено")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к NATS: %w", err)
	}
	log.WithField("url", url).Info("Подключение к NATS установлено")
	return &NATSPublisher{nc: nc}, nil
}

// Publish публикует сообщение и дожидается подтверждения сервера
// (flush) в пределах контекста. Без flush Publish кладёт сообщение
// в локальный буфер и «успех» ничего не значит.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("ошибка публикации в %s: %w", subject, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("ошибка подтверждения публикации: %w", err)
	}
	return nil
}

// Conn отдаёт соединение (нужно консьюмеру для подписки).
func (p *NATSPublisher) Conn() *nats.Conn {
	return p.nc
}

// Close закрывает соединение с NATS.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
