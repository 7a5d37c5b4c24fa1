// Package seed заполняет пустое хранилище примерами позиций.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
)

// SampleItems содержит позиции, которые появляются в новом хранилище.
var SampleItems = []map[string]any{
	{"name": "Laptop", "description": "High-performance laptop for development", "category": "Electronics", "price": 999.99, "quantity": 5},
	{"name": "Coffee Mug", "description": "Ceramic mug for hot beverages", "category": "Kitchen", "price": 12.99, "quantity": 20},
	{"name": "Python Book", "description": "Learn Python programming", "category": "Books", "price": 39.99, "quantity": 15},
	{"name": "Wireless Mouse", "description": "Ergonomic wireless mouse", "category": "Electronics", "price": 29.99, "quantity": 30},
	{"name": "Notebook", "description": "Spiral-bound notebook", "category": "Office", "price": 4.99, "quantity": 50},
}

// ItemCreator создает позицию с проверкой.
type ItemCreator interface {
	CreateItem(ctx context.Context, p models.Payload) (models.Item, error)
}

// Run добавляет SampleItems, если в store нет ни одной позиции. Повторный запуск ничего не меняет.
func Run(ctx context.Context, store repository.ItemStore, items ItemCreator, log *zap.Logger) error {
	existing, err := store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("check store before seeding: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("store is not empty, skipping seed", zap.Int("items", len(existing)))
		return nil
	}

	for i := range SampleItems {
		p, err := SamplePayload(i)
		if err != nil {
			return err
		}
		if _, err := items.CreateItem(ctx, p); err != nil {
			return fmt.Errorf("seed item %v: %w", SampleItems[i]["name"], err)
		}
	}
	log.Info("seeded sample items", zap.Int("count", len(SampleItems)))
	return nil
}

// SamplePayload возвращает тело запроса для SampleItems[i].
func SamplePayload(i int) (models.Payload, error) {
	p, err := models.NewPayload(SampleItems[i])
	if err != nil {
		return p, fmt.Errorf("build sample payload: %w", err)
	}
	return p, nil
}
