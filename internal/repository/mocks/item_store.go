package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/RoGogDBD/inventory/internal/models"
)

type ItemStoreMock struct {
	InsertFunc              func(ctx context.Context, f models.ItemFields, now time.Time) (models.Item, error)
	FindByIDFunc            func(ctx context.Context, id int64) (*models.Item, error)
	FindAllFunc             func(ctx context.Context) ([]models.Item, error)
	UpdateFunc              func(ctx context.Context, id int64, f models.ItemFields, now time.Time) (*models.Item, error)
	DeleteFunc              func(ctx context.Context, id int64) (bool, error)
	DistinctCategoriesFunc  func(ctx context.Context) ([]string, error)
	PingFunc                func(ctx context.Context) error
	InsertCalls             int
	FindByIDCalls           int
	FindAllCalls            int
	UpdateCalls             int
	DeleteCalls             int
	DistinctCategoriesCalls int
	PingCalls               int
}

func (m *ItemStoreMock) Insert(ctx context.Context, f models.ItemFields, now time.Time) (models.Item, error) {
	m.InsertCalls++
	if m.InsertFunc == nil {
		return models.Item{}, errors.New("InsertFunc not set")
	}
	return m.InsertFunc(ctx, f, now)
}

func (m *ItemStoreMock) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	m.FindByIDCalls++
	if m.FindByIDFunc == nil {
		return nil, errors.New("FindByIDFunc not set")
	}
	return m.FindByIDFunc(ctx, id)
}

func (m *ItemStoreMock) FindAll(ctx context.Context) ([]models.Item, error) {
	m.FindAllCalls++
	if m.FindAllFunc == nil {
		return nil, errors.New("FindAllFunc not set")
	}
	return m.FindAllFunc(ctx)
}

func (m *ItemStoreMock) Update(ctx context.Context, id int64, f models.ItemFields, now time.Time) (*models.Item, error) {
	m.UpdateCalls++
	if m.UpdateFunc == nil {
		return nil, errors.New("UpdateFunc not set")
	}
	return m.UpdateFunc(ctx, id, f, now)
}

func (m *ItemStoreMock) Delete(ctx context.Context, id int64) (bool, error) {
	m.DeleteCalls++
	if m.DeleteFunc == nil {
		return false, errors.New("DeleteFunc not set")
	}
	return m.DeleteFunc(ctx, id)
}

func (m *ItemStoreMock) DistinctCategories(ctx context.Context) ([]string, error) {
	m.DistinctCategoriesCalls++
	if m.DistinctCategoriesFunc == nil {
		return nil, errors.New("DistinctCategoriesFunc not set")
	}
	return m.DistinctCategoriesFunc(ctx)
}

func (m *ItemStoreMock) Ping(ctx context.Context) error {
	m.PingCalls++
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
