package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/telemetry"
	"github.com/RoGogDBD/inventory/internal/validation"
)

// CreateItem проверяет тело запроса и создает позицию.
// При нарушениях правил возвращает *ValidationError, хранилище не вызывается.
func (s *Service) CreateItem(ctx context.Context, p models.Payload) (models.Item, error) {
	ctx, op := s.begin(ctx, "create")

	fields, errs := validation.ValidateCreate(p)
	if len(errs) > 0 {
		op.end(ctx, telemetry.OutcomeInvalid)
		return models.Item{}, &ValidationError{Messages: errs}
	}

	item, err := s.store.Insert(ctx, fields, models.Timestamp(s.now()))
	if err != nil {
		return models.Item{}, fmt.Errorf("create item: %w", op.storeFailure(ctx, err))
	}

	op.end(ctx, telemetry.OutcomeOK)
	s.publish(ctx, models.EventItemCreated, item.ID, &item)
	return item, nil
}

// UpdateItem меняет переданные поля позиции id.
// Сначала проверяется наличие позиции, затем тело запроса.
func (s *Service) UpdateItem(ctx context.Context, id int64, p models.Payload) (models.Item, error) {
	ctx, op := s.begin(ctx, "update")

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Item{}, fmt.Errorf("update item %d: %w", id, op.storeFailure(ctx, err, zap.Int64("id", id)))
	}
	if existing == nil {
		op.end(ctx, telemetry.OutcomeNotFound)
		return models.Item{}, ErrNotFound
	}

	fields, errs := validation.ValidateUpdate(p)
	if len(errs) > 0 {
		op.end(ctx, telemetry.OutcomeInvalid)
		return models.Item{}, &ValidationError{Messages: errs}
	}

	item, err := s.store.Update(ctx, id, fields, models.Timestamp(s.now()))
	if err != nil {
		return models.Item{}, fmt.Errorf("update item %d: %w", id, op.storeFailure(ctx, err, zap.Int64("id", id)))
	}
	if item == nil {
		// удалена между проверкой и записью
		op.end(ctx, telemetry.OutcomeNotFound)
		return models.Item{}, ErrNotFound
	}

	op.end(ctx, telemetry.OutcomeOK)
	s.publish(ctx, models.EventItemUpdated, item.ID, item)
	return *item, nil
}

// DeleteItem удаляет позицию id. Идентификатор повторно не выдается.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	ctx, op := s.begin(ctx, "delete")

	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, op.storeFailure(ctx, err, zap.Int64("id", id)))
	}
	if !ok {
		op.end(ctx, telemetry.OutcomeNotFound)
		return ErrNotFound
	}

	op.end(ctx, telemetry.OutcomeOK)
	s.publish(ctx, models.EventItemDeleted, id, nil)
	return nil
}

func (s *Service) publish(ctx context.Context, typ models.EventType, id int64, item *models.Item) {
	s.publisher.Publish(ctx, models.ItemEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		ItemID:     id,
		Item:       item,
		OccurredAt: models.Timestamp(s.now()),
	})
}
