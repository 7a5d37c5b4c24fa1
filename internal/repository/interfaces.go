package repository

import (
	"context"
	"time"

	"github.com/RoGogDBD/inventory/internal/models"
)

// ItemStore описывает операции хранилища позиций.
// FindByID и Update возвращают (nil, nil), если позиции нет.
type ItemStore interface {
	Insert(ctx context.Context, fields models.ItemFields, now time.Time) (models.Item, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	FindAll(ctx context.Context) ([]models.Item, error)
	Update(ctx context.Context, id int64, fields models.ItemFields, now time.Time) (*models.Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// ItemSearcher выполняет фильтрацию, сортировку и пагинацию на стороне хранилища.
// Возвращает страницу и общее число записей после фильтрации.
type ItemSearcher interface {
	Search(ctx context.Context, q models.Query) ([]models.Item, int, error)
}
