package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/config/db"
	"github.com/RoGogDBD/inventory/internal/models"
)

func ptr[T any](v T) *T { return &v }

func fields(name, category string, price float64, qty int64) models.ItemFields {
	return models.ItemFields{
		Name:        ptr(name),
		Description: ptr(""),
		Category:    ptr(category),
		Price:       ptr(price),
		Quantity:    ptr(qty),
	}
}

type storeFactory func(t *testing.T) ItemStore

func storeFactories(t *testing.T) map[string]storeFactory {
	t.Helper()
	factories := map[string]storeFactory{
		"memory": func(t *testing.T) ItemStore { return NewMemStorage() },
		"sqlite": func(t *testing.T) ItemStore { return NewSQLiteStorage(db.NewTestDB(t)) },
		"cached": func(t *testing.T) ItemStore {
			return NewCachedStore(NewSQLiteStorage(db.NewTestDB(t)), 16, time.Minute)
		},
	}
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) ItemStore {
			ctx := context.Background()
			pool, err := db.NewPool(ctx, dsn, zap.NewNop())
			if err != nil {
				t.Fatalf("connect postgres: %v", err)
			}
			t.Cleanup(pool.Close)
			if _, err := pool.Exec(ctx, "TRUNCATE items RESTART IDENTITY"); err != nil {
				t.Fatalf("truncate items: %v", err)
			}
			return NewPostgresStorage(pool)
		}
	}
	return factories
}

func TestItemStoreContract(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("insert assigns id and equal timestamps", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				now := models.Timestamp(time.Now())

				item, err := store.Insert(ctx, fields("Laptop", "Electronics", 999.99, 5), now)
				if err != nil {
					t.Fatalf("Insert: %v", err)
				}
				if item.ID <= 0 {
					t.Fatalf("expected positive id, got %d", item.ID)
				}
				if !item.CreatedAt.Equal(now) || !item.UpdatedAt.Equal(item.CreatedAt) {
					t.Fatalf("unexpected timestamps: created %v updated %v now %v", item.CreatedAt, item.UpdatedAt, now)
				}

				got, err := store.FindByID(ctx, item.ID)
				if err != nil || got == nil {
					t.Fatalf("FindByID: %v %v", got, err)
				}
				if diff := cmp.Diff(item, *got); diff != "" {
					t.Fatalf("item mismatch (-inserted +found):\n%s", diff)
				}
			})

			t.Run("find missing returns nil", func(t *testing.T) {
				store := newStore(t)
				got, err := store.FindByID(context.Background(), 42)
				if err != nil || got != nil {
					t.Fatalf("expected nil, nil; got %v, %v", got, err)
				}
			})

			t.Run("update changes only given fields", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				created := models.Timestamp(time.Now())
				item, _ := store.Insert(ctx, fields("Mug", "Kitchen", 12.99, 20), created)

				later := created.Add(time.Second)
				updated, err := store.Update(ctx, item.ID, models.ItemFields{Price: ptr(10.0)}, later)
				if err != nil || updated == nil {
					t.Fatalf("Update: %v %v", updated, err)
				}
				if updated.Price != 10 || updated.Name != "Mug" || updated.Quantity != 20 || updated.Category != "Kitchen" {
					t.Fatalf("unexpected item after update: %+v", updated)
				}
				if !updated.CreatedAt.Equal(item.CreatedAt) || !updated.UpdatedAt.Equal(later) {
					t.Fatalf("unexpected timestamps: %+v", updated)
				}
			})

			t.Run("update never moves updated_at before created_at", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				created := models.Timestamp(time.Now())
				item, _ := store.Insert(ctx, fields("Clock", "", 1, 0), created)

				updated, err := store.Update(ctx, item.ID, models.ItemFields{Quantity: ptr(int64(3))}, created.Add(-time.Hour))
				if err != nil || updated == nil {
					t.Fatalf("Update: %v %v", updated, err)
				}
				if updated.UpdatedAt.Before(updated.CreatedAt) {
					t.Fatalf("updated_at %v before created_at %v", updated.UpdatedAt, updated.CreatedAt)
				}
			})

			t.Run("update missing returns nil", func(t *testing.T) {
				store := newStore(t)
				got, err := store.Update(context.Background(), 7, models.ItemFields{Price: ptr(1.0)}, time.Now())
				if err != nil || got != nil {
					t.Fatalf("expected nil, nil; got %v, %v", got, err)
				}
			})

			t.Run("delete removes and ids are not reused", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				now := models.Timestamp(time.Now())
				first, _ := store.Insert(ctx, fields("A", "", 1, 0), now)
				second, _ := store.Insert(ctx, fields("B", "", 1, 0), now)

				ok, err := store.Delete(ctx, second.ID)
				if err != nil || !ok {
					t.Fatalf("Delete: %v %v", ok, err)
				}
				ok, err = store.Delete(ctx, second.ID)
				if err != nil || ok {
					t.Fatalf("second Delete should report false: %v %v", ok, err)
				}
				if got, _ := store.FindByID(ctx, second.ID); got != nil {
					t.Fatalf("deleted item still found: %+v", got)
				}

				third, _ := store.Insert(ctx, fields("C", "", 1, 0), now)
				if third.ID == second.ID || third.ID == first.ID {
					t.Fatalf("id %d reused", third.ID)
				}
			})

			t.Run("distinct categories", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				now := models.Timestamp(time.Now())
				for _, c := range []string{"B", "A", "A", ""} {
					if _, err := store.Insert(ctx, fields("x", c, 1, 0), now); err != nil {
						t.Fatalf("Insert: %v", err)
					}
				}
				got, err := store.DistinctCategories(ctx)
				if err != nil {
					t.Fatalf("DistinctCategories: %v", err)
				}
				if diff := cmp.Diff([]string{"A", "B"}, got); diff != "" {
					t.Fatalf("categories mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("find all ordered by id", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				now := models.Timestamp(time.Now())
				for _, n := range []string{"z", "y", "x"} {
					store.Insert(ctx, fields(n, "", 1, 0), now)
				}
				all, err := store.FindAll(ctx)
				if err != nil {
					t.Fatalf("FindAll: %v", err)
				}
				if len(all) != 3 {
					t.Fatalf("expected 3 items, got %d", len(all))
				}
				for i := 1; i < len(all); i++ {
					if all[i-1].ID >= all[i].ID {
						t.Fatalf("items not ordered by id: %d then %d", all[i-1].ID, all[i].ID)
					}
				}
			})

			t.Run("concurrent writers get distinct ids and complete rows", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()
				now := models.Timestamp(time.Now())
				const workers = 16

				ids := make([]int64, workers)
				var wg sync.WaitGroup
				for w := range workers {
					wg.Add(1)
					go func() {
						defer wg.Done()
						name := fmt.Sprintf("item-%d", w)
						price := float64(w) + 0.5
						item, err := store.Insert(ctx, fields(name, "Bulk", price, int64(w)), now)
						if err != nil {
							t.Errorf("Insert %s: %v", name, err)
							return
						}
						ids[w] = item.ID

						for round := range 3 {
							got, err := store.FindByID(ctx, item.ID)
							if err != nil || got == nil {
								t.Errorf("FindByID %d: %v %v", item.ID, got, err)
								return
							}
							if got.Name != name || got.Category != "Bulk" || got.Price != price || got.CreatedAt.IsZero() {
								t.Errorf("incomplete row for %s: %+v", name, got)
								return
							}
							qty := int64(100 + round)
							if _, err := store.Update(ctx, item.ID, models.ItemFields{Quantity: &qty}, now.Add(time.Second)); err != nil {
								t.Errorf("Update %d: %v", item.ID, err)
								return
							}
						}
						if _, err := store.FindAll(ctx); err != nil {
							t.Errorf("FindAll: %v", err)
						}
					}()
				}
				wg.Wait()
				if t.Failed() {
					return
				}

				seen := map[int64]bool{}
				for _, id := range ids {
					if id <= 0 || seen[id] {
						t.Fatalf("ids are not distinct: %v", ids)
					}
					seen[id] = true
				}

				all, err := store.FindAll(ctx)
				if err != nil {
					t.Fatalf("FindAll: %v", err)
				}
				if len(all) != workers {
					t.Fatalf("expected %d items, got %d", workers, len(all))
				}
				for _, it := range all {
					got, err := store.FindByID(ctx, it.ID)
					if err != nil || got == nil {
						t.Fatalf("FindByID %d: %v %v", it.ID, got, err)
					}
					if got.Quantity != 102 || got.Category != "Bulk" {
						t.Fatalf("unexpected final row: %+v", got)
					}
				}
			})

			t.Run("ping", func(t *testing.T) {
				if err := newStore(t).Ping(context.Background()); err != nil {
					t.Fatalf("Ping: %v", err)
				}
			})
		})
	}
}

func TestSupportsSearch(t *testing.T) {
	tests := []struct {
		name  string
		store ItemStore
		want  bool
	}{
		{name: "memory", store: NewMemStorage(), want: false},
		{name: "cached memory", store: NewCachedStore(NewMemStorage(), 4, 0), want: false},
		{name: "sqlite", store: NewSQLiteStorage(db.NewTestDB(t)), want: true},
		{name: "cached sqlite", store: NewCachedStore(NewSQLiteStorage(db.NewTestDB(t)), 4, 0), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SupportsSearch(tt.store); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
