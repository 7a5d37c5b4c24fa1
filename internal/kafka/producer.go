// Package kafka публикует события об изменениях позиций и принимает позиции на импорт.
package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher отправляет события позиций в топик. Запись асинхронная:
// ошибки доставки только логируются и не влияют на запрос.
type Publisher struct {
	w   messageWriter
	log *zap.Logger
}

// NewPublisher создает асинхронного писателя в topic.
// Ключом сообщения служит id позиции, поэтому события одной позиции попадают в одну партицию.
func NewPublisher(brokers []string, topic string, log *zap.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("kafka publish failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return &Publisher{w: w, log: log}
}

// Publish кодирует событие и ставит его в очередь писателя.
func (p *Publisher) Publish(ctx context.Context, event models.ItemEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("encode item event", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ItemID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.OccurredAt,
	}
	if err := p.w.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Error("queue item event", zap.String("event_id", event.EventID), zap.Error(err))
	}
}

// Close дожидается отправки очереди и закрывает писателя.
func (p *Publisher) Close() error {
	return p.w.Close()
}
