package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/repository/mocks"
	"github.com/RoGogDBD/inventory/internal/validation"
)

func payload(t *testing.T, values map[string]any) models.Payload {
	t.Helper()
	p, err := models.NewPayload(values)
	if err != nil {
		t.Fatalf("NewPayload: %v", err)
	}
	return p
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateItem(t *testing.T) {
	now := testBase
	pub := &mocks.PublisherMock{}
	svc := New(repository.NewMemStorage(), WithClock(fixedClock(now)), WithPublisher(pub))

	item, err := svc.CreateItem(context.Background(), payload(t, map[string]any{"name": "  Lamp ", "price": "19.5"}))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	want := models.Item{ID: 1, Name: "Lamp", Price: 19.5, CreatedAt: now, UpdatedAt: now}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}

	events := pub.Published()
	if len(events) != 1 || events[0].Type != models.EventItemCreated || events[0].ItemID != 1 || events[0].EventID == "" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestCreateItemValidationFailure(t *testing.T) {
	store := &mocks.ItemStoreMock{}
	pub := &mocks.PublisherMock{}
	svc := New(store, WithPublisher(pub))

	_, err := svc.CreateItem(context.Background(), payload(t, map[string]any{"name": "", "price": -1, "quantity": 2.5}))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{validation.MsgNameRequired, validation.MsgPriceNegative, validation.MsgQuantityInvalid}
	if diff := cmp.Diff(want, verr.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if store.InsertCalls != 0 {
		t.Fatalf("store must not be called, got %d inserts", store.InsertCalls)
	}
	if len(pub.Published()) != 0 {
		t.Fatal("no event expected for rejected create")
	}
}

func TestCreateItemStoreFailure(t *testing.T) {
	store := &mocks.ItemStoreMock{
		InsertFunc: func(context.Context, models.ItemFields, time.Time) (models.Item, error) {
			return models.Item{}, errors.New("constraint")
		},
	}
	pub := &mocks.PublisherMock{}
	svc := New(store, WithPublisher(pub))

	_, err := svc.CreateItem(context.Background(), payload(t, map[string]any{"name": "x", "price": 1}))
	var verr *ValidationError
	if err == nil || errors.As(err, &verr) {
		t.Fatalf("expected store failure, got %v", err)
	}
	if len(pub.Published()) != 0 {
		t.Fatal("no event expected for failed create")
	}
}

func TestUpdateItem(t *testing.T) {
	created := testBase
	clock := created
	pub := &mocks.PublisherMock{}
	svc := New(repository.NewMemStorage(), WithClock(func() time.Time { return clock }), WithPublisher(pub))
	ctx := context.Background()

	orig, err := svc.CreateItem(ctx, payload(t, map[string]any{"name": "Mug", "price": 12.99, "quantity": 20, "category": "Kitchen"}))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	clock = created.Add(time.Hour)
	got, err := svc.UpdateItem(ctx, orig.ID, payload(t, map[string]any{"price": 10, "id": 77, "created_at": "1999-01-01", "bogus": true}))
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	want := orig
	want.Price = 10
	want.UpdatedAt = clock
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}

	events := pub.Published()
	if len(events) != 2 || events[1].Type != models.EventItemUpdated || events[1].Item == nil || events[1].Item.Price != 10 {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestUpdateItemClockBehindCreation(t *testing.T) {
	clock := testBase
	svc := New(repository.NewMemStorage(), WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	orig, _ := svc.CreateItem(ctx, payload(t, map[string]any{"name": "Clock", "price": 1}))
	clock = testBase.Add(-time.Hour)

	got, err := svc.UpdateItem(ctx, orig.ID, payload(t, map[string]any{"quantity": "4"}))
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) || got.Quantity != 4 {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestUpdateItemErrors(t *testing.T) {
	svc := New(repository.NewMemStorage())
	ctx := context.Background()
	item, _ := svc.CreateItem(ctx, payload(t, map[string]any{"name": "Pen", "price": 1}))

	tests := []struct {
		name     string
		id       int64
		values   map[string]any
		wantNF   bool
		wantMsgs []string
	}{
		{name: "missing item with invalid body", id: 404, values: map[string]any{"price": "abc"}, wantNF: true},
		{name: "invalid price", id: item.ID, values: map[string]any{"price": "abc"}, wantMsgs: []string{validation.MsgPriceInvalid}},
		{name: "null name", id: item.ID, values: map[string]any{"name": nil}, wantMsgs: []string{validation.MsgNameRequired}},
		{name: "no known fields", id: item.ID, values: map[string]any{"colour": "red"}, wantMsgs: []string{validation.MsgNoFields}},
		{name: "non string category", id: item.ID, values: map[string]any{"category": 5, "quantity": -1}, wantMsgs: []string{validation.MsgQuantityInvalid, validation.MsgCategoryString}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateItem(ctx, tt.id, payload(t, tt.values))
			if tt.wantNF {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if diff := cmp.Diff(tt.wantMsgs, verr.Messages); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}

	after, _ := svc.GetItem(ctx, item.ID)
	if diff := cmp.Diff(item, after); diff != "" {
		t.Fatalf("rejected updates must not change the item (-before +after):\n%s", diff)
	}
}

func TestUpdateItemDeletedConcurrently(t *testing.T) {
	store := &mocks.ItemStoreMock{
		FindByIDFunc: func(_ context.Context, id int64) (*models.Item, error) { return &models.Item{ID: id}, nil },
		UpdateFunc: func(context.Context, int64, models.ItemFields, time.Time) (*models.Item, error) {
			return nil, nil
		},
	}
	_, err := New(store).UpdateItem(context.Background(), 3, payload(t, map[string]any{"name": "x"}))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.UpdateCalls != 1 {
		t.Fatalf("expected one update call, got %d", store.UpdateCalls)
	}
}

func TestDeleteItem(t *testing.T) {
	pub := &mocks.PublisherMock{}
	svc := New(repository.NewMemStorage(), WithPublisher(pub))
	ctx := context.Background()

	first, _ := svc.CreateItem(ctx, payload(t, map[string]any{"name": "a", "price": 1}))
	second, _ := svc.CreateItem(ctx, payload(t, map[string]any{"name": "b", "price": 1}))

	if err := svc.DeleteItem(ctx, second.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := svc.GetItem(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteItem(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	third, _ := svc.CreateItem(ctx, payload(t, map[string]any{"name": "c", "price": 1}))
	if third.ID == first.ID || third.ID == second.ID {
		t.Fatalf("id %d reused", third.ID)
	}

	var deletes int
	for _, e := range pub.Published() {
		if e.Type == models.EventItemDeleted {
			deletes++
			if e.ItemID != second.ID || e.Item != nil {
				t.Fatalf("unexpected delete event %+v", e)
			}
		}
	}
	if deletes != 1 {
		t.Fatalf("expected one delete event, got %d", deletes)
	}
}

func TestDeleteItemStoreFailure(t *testing.T) {
	store := &mocks.ItemStoreMock{
		DeleteFunc: func(context.Context, int64) (bool, error) { return false, errors.New("locked") },
	}
	err := New(store).DeleteItem(context.Background(), 1)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected store failure, got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Messages: []string{"a", "b"}}
	if err.Error() != "validation failed: a; b" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
