package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/telemetry"
)

// ListItems возвращает страницу позиций с учетом фильтров и сортировки.
// Ошибку дает только сбой хранилища.
func (s *Service) ListItems(ctx context.Context, q models.Query) (models.ItemPage, error) {
	ctx, op := s.begin(ctx, "list")
	q = normalizeQuery(q)

	var (
		items []models.Item
		total int
		err   error
	)
	if s.searcher != nil {
		items, total, err = s.searcher.Search(ctx, q)
	} else {
		items, total, err = s.searchInMemory(ctx, q)
	}
	if err != nil {
		return models.ItemPage{}, fmt.Errorf("list items: %w", op.storeFailure(ctx, err))
	}

	op.end(ctx, telemetry.OutcomeOK)
	return models.ItemPage{
		Items:      items,
		Pagination: paginate(q, total),
		Filters:    effectiveFilters(q),
	}, nil
}

// GetItem возвращает позицию по id или ErrNotFound.
func (s *Service) GetItem(ctx context.Context, id int64) (models.Item, error) {
	ctx, op := s.begin(ctx, "get")

	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Item{}, fmt.Errorf("get item %d: %w", id, op.storeFailure(ctx, err, zap.Int64("id", id)))
	}
	if item == nil {
		op.end(ctx, telemetry.OutcomeNotFound)
		return models.Item{}, ErrNotFound
	}
	op.end(ctx, telemetry.OutcomeOK)
	return *item, nil
}

// ListCategories возвращает отсортированный список непустых категорий без повторов.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	ctx, op := s.begin(ctx, "categories")

	categories, err := s.store.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", op.storeFailure(ctx, err))
	}
	op.end(ctx, telemetry.OutcomeOK)
	return categories, nil
}

// searchInMemory применяет к FindAll те же правила, что хранилища с поиском применяют в SQL.
func (s *Service) searchInMemory(ctx context.Context, q models.Query) ([]models.Item, int, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := slices.DeleteFunc(slices.Clone(all), func(it models.Item) bool { return !matches(it, q) })
	slices.SortStableFunc(filtered, func(a, b models.Item) int {
		c := q.SortBy.Compare(a, b)
		if c == 0 {
			c = models.SortByID.Compare(a, b)
		}
		if q.SortOrder == models.Desc {
			return -c
		}
		return c
	})

	total := len(filtered)
	offset, ok := q.Offset()
	if !ok || offset >= total {
		return []models.Item{}, total, nil
	}
	end := offset + min(q.PerPage, total-offset)
	return filtered[offset:end], total, nil
}

func matches(it models.Item, q models.Query) bool {
	if q.Category != "" && it.Category != q.Category {
		return false
	}
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(it.Name), term) &&
			!strings.Contains(strings.ToLower(it.Description), term) {
			return false
		}
	}
	return true
}

func paginate(q models.Query, total int) models.Pagination {
	pages := 1
	if total > 0 {
		pages = (total-1)/q.PerPage + 1
	}
	return models.Pagination{
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalItems: total,
		TotalPages: pages,
		HasNext:    q.Page < pages,
		HasPrev:    q.Page > 1,
	}
}

func effectiveFilters(q models.Query) models.Filters {
	f := models.Filters{
		SortBy:    q.SortBy.String(),
		SortOrder: string(q.SortOrder),
	}
	if q.Category != "" {
		f.Category = &q.Category
	}
	if q.Search != "" {
		f.Search = &q.Search
	}
	return f
}
