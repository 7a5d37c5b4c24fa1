package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/RoGogDBD/inventory/internal/models"
)

// CachedStore кеширует позиции по id поверх другого хранилища.
// Записи обновляются при вставке и изменении и удаляются при удалении.
// Результат чтения попадает в кеш, только если за время чтения не завершилась ни одна запись
// и по этому id нет незавершенных записей.
type CachedStore struct {
	ItemStore
	lru *expirable.LRU[int64, models.Item]

	mu      sync.Mutex
	gen     uint64
	writing map[int64]*pendingWrites
}

// pendingWrites считает незавершенные записи по одному id.
// contended отмечает, что записи пересекались и порядок их применения неизвестен.
type pendingWrites struct {
	n         int
	contended bool
}

// NewCachedStore оборачивает store LRU-кешем на maxItems записей с временем жизни ttl (0 отключает ограничение).
func NewCachedStore(store ItemStore, maxItems int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		ItemStore: store,
		lru:       expirable.NewLRU[int64, models.Item](maxItems, nil, ttl),
		writing:   make(map[int64]*pendingWrites),
	}
}

func (c *CachedStore) Insert(ctx context.Context, f models.ItemFields, now time.Time) (models.Item, error) {
	since := c.generation()
	item, err := c.ItemStore.Insert(ctx, f, now)
	if err != nil {
		return item, err
	}
	c.fill(item, since)
	return item, nil
}

func (c *CachedStore) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	if item, ok := c.lru.Get(id); ok {
		return &item, nil
	}
	since := c.generation()
	item, err := c.ItemStore.FindByID(ctx, id)
	if err != nil || item == nil {
		return item, err
	}
	c.fill(*item, since)
	return item, nil
}

func (c *CachedStore) Update(ctx context.Context, id int64, f models.ItemFields, now time.Time) (*models.Item, error) {
	c.beginWrite(id)
	item, err := c.ItemStore.Update(ctx, id, f, now)
	if err != nil {
		c.endWrite(id, nil)
		return nil, err
	}
	c.endWrite(id, item)
	return item, nil
}

func (c *CachedStore) Delete(ctx context.Context, id int64) (bool, error) {
	c.beginWrite(id)
	ok, err := c.ItemStore.Delete(ctx, id)
	c.endWrite(id, nil)
	return ok, err
}

func (c *CachedStore) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// fill кладет прочитанную позицию в кеш, если с момента since ее не могли изменить.
func (c *CachedStore) fill(item models.Item, since uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.writing[item.ID]; c.gen == since && !busy {
		c.lru.Add(item.ID, item)
	}
}

func (c *CachedStore) beginWrite(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.writing[id]
	if !ok {
		w = &pendingWrites{}
		c.writing[id] = w
	}
	w.n++
	w.contended = w.contended || w.n > 1
	c.lru.Remove(id)
}

// endWrite завершает запись по id. Новое значение кешируется, только если параллельных записей не было.
func (c *CachedStore) endWrite(id int64, item *models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	w := c.writing[id]
	w.n--
	if w.n > 0 {
		c.lru.Remove(id)
		return
	}
	delete(c.writing, id)
	if item != nil && !w.contended {
		c.lru.Add(id, *item)
	} else {
		c.lru.Remove(id)
	}
}

// Search передает запрос обернутому хранилищу, если оно умеет искать.
func (c *CachedStore) Search(ctx context.Context, q models.Query) ([]models.Item, int, error) {
	s, ok := c.ItemStore.(ItemSearcher)
	if !ok {
		return nil, 0, errSearchUnsupported
	}
	return s.Search(ctx, q)
}

// Unwrap возвращает обернутое хранилище.
func (c *CachedStore) Unwrap() ItemStore {
	return c.ItemStore
}

// Len возвращает число закешированных записей.
func (c *CachedStore) Len() int {
	return c.lru.Len()
}
