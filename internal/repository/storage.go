package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/RoGogDBD/inventory/internal/models"
)

// MemStorage хранит позиции в памяти процесса.
// Идентификаторы выдаются монотонно и не переиспользуются после удаления.
type MemStorage struct {
	mu     sync.RWMutex
	items  map[int64]models.Item
	nextID int64
}

// NewMemStorage создает пустое хранилище в памяти.
func NewMemStorage() *MemStorage {
	return &MemStorage{items: make(map[int64]models.Item)}
}

func (s *MemStorage) Insert(_ context.Context, f models.ItemFields, now time.Time) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item := f.Apply(models.Item{ID: s.nextID, CreatedAt: now, UpdatedAt: now})
	s.items[item.ID] = item
	return item, nil
}

func (s *MemStorage) FindByID(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *MemStorage) FindAll(_ context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b models.Item) int { return models.SortByID.Compare(a, b) })
	return items, nil
}

func (s *MemStorage) Update(_ context.Context, id int64, f models.ItemFields, now time.Time) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	item = f.Apply(item)
	item.UpdatedAt = now
	if now.Before(item.CreatedAt) {
		item.UpdatedAt = item.CreatedAt
	}
	s.items[id] = item
	return &item, nil
}

func (s *MemStorage) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *MemStorage) DistinctCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, item := range s.items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	slices.Sort(categories)
	return categories, nil
}

func (s *MemStorage) Ping(context.Context) error {
	return nil
}

// Len возвращает число позиций.
func (s *MemStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
