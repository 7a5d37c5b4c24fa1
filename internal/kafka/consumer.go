package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/retry"
	"github.com/RoGogDBD/inventory/internal/service"
)

// Причины отправки в DLQ.
const (
	reasonDecode     = "decode"
	reasonValidation = "validation"
	reasonStore      = "store"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ItemCreator создает позицию из тела запроса.
type ItemCreator interface {
	CreateItem(ctx context.Context, p models.Payload) (models.Item, error)
}

// Importer читает позиции из топика импорта и создает их через сервис.
// Невалидные сообщения сразу уходят в DLQ, сбои хранилища повторяются и затем уходят в DLQ.
type Importer struct {
	r      messageReader
	dlq    messageWriter
	items  ItemCreator
	policy retry.Policy
	log    *zap.Logger
}

// NewImporter создает читателя группы cfg.GroupID и писателя DLQ.
func NewImporter(cfg config.KafkaConfig, items ItemCreator, log *zap.Logger) *Importer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.ImportTopic,
		GroupID: cfg.GroupID,
	})
	dlq := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	return newImporter(r, dlq, items, cfg, log)
}

func newImporter(r messageReader, dlq messageWriter, items ItemCreator, cfg config.KafkaConfig, log *zap.Logger) *Importer {
	return &Importer{
		r:     r,
		dlq:   dlq,
		items: items,
		policy: retry.Policy{
			MaxRetries:  cfg.DLQMaxRetries,
			Backoff:     retry.NewBackoff(cfg.DLQBackoff, cfg.DLQBackoffCap, cfg.DLQBackoffJitter),
			ShouldRetry: isRetriable,
		},
		log: log,
	}
}

// Run обрабатывает сообщения до отмены ctx. Смещение фиксируется после обработки
// каждого сообщения, включая отправленные в DLQ. Если сообщение не удалось ни создать,
// ни записать в DLQ, Run возвращает ошибку.
func (i *Importer) Run(ctx context.Context) error {
	defer func() {
		if err := i.r.Close(); err != nil {
			i.log.Warn("kafka reader close error", zap.Error(err))
		}
		if err := i.dlq.Close(); err != nil {
			i.log.Warn("kafka dlq writer close error", zap.Error(err))
		}
	}()

	for {
		m, err := i.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := i.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// смещение не фиксируется: после перезапуска сообщение будет прочитано снова
			return fmt.Errorf("handle import message at offset %d: %w", m.Offset, err)
		}

		if err := i.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			i.log.Error("kafka commit error", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// handle возвращает ошибку, только если сообщение не удалось ни создать, ни отправить в DLQ.
func (i *Importer) handle(ctx context.Context, m kafka.Message) error {
	var p models.Payload
	if err := json.Unmarshal(m.Value, &p); err != nil {
		i.log.Warn("invalid import message", zap.Int64("offset", m.Offset), zap.Error(err))
		return i.deadLetter(ctx, m, reasonDecode, err)
	}

	var item models.Item
	err := retry.Do(ctx, i.policy, func() error {
		var err error
		item, err = i.items.CreateItem(ctx, p)
		return err
	}, func(err error, attempt int, wait time.Duration) {
		i.log.Warn("retrying import",
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})

	var verr *service.ValidationError
	switch {
	case err == nil:
		i.log.Info("imported item", zap.Int64("id", item.ID), zap.Int64("offset", m.Offset))
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.As(err, &verr):
		i.log.Warn("import validation failed", zap.Int64("offset", m.Offset), zap.Strings("details", verr.Messages))
		return i.deadLetter(ctx, m, reasonValidation, err)
	default:
		i.log.Error("import failed after retries", zap.Int64("offset", m.Offset), zap.Error(err))
		return i.deadLetter(ctx, m, reasonStore, err)
	}
}

func (i *Importer) deadLetter(ctx context.Context, m kafka.Message, reason string, cause error) error {
	key := m.Key
	if len(key) == 0 {
		key = []byte(uuid.NewString())
	}
	dl := kafka.Message{
		Key:   key,
		Value: m.Value,
		Headers: append(slices.Clone(m.Headers),
			kafka.Header{Key: "dlq_reason", Value: []byte(reason)},
			kafka.Header{Key: "dlq_error", Value: []byte(cause.Error())},
			kafka.Header{Key: "original_topic", Value: []byte(m.Topic)},
			kafka.Header{Key: "original_partition", Value: []byte(strconv.Itoa(m.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(strconv.FormatInt(m.Offset, 10))},
		),
	}
	dlqPolicy := i.policy
	dlqPolicy.ShouldRetry = nil
	return retry.Do(ctx, dlqPolicy, func() error {
		return i.dlq.WriteMessages(ctx, dl)
	}, func(err error, attempt int, wait time.Duration) {
		i.log.Warn("retrying dlq write", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	})
}

func isRetriable(err error) bool {
	var verr *service.ValidationError
	return !errors.As(err, &verr)
}
