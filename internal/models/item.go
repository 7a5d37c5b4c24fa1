// Package models содержит доменные модели приложения.
package models

import "time"

// Item описывает позицию склада.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemFields содержит нормализованные значения полей для записи.
// nil означает, что поле не меняется.
type ItemFields struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Quantity    *int64
}

// Empty сообщает, что ни одно поле не задано.
func (f ItemFields) Empty() bool {
	return f.Name == nil && f.Description == nil && f.Category == nil && f.Price == nil && f.Quantity == nil
}

// Apply возвращает копию item с применёнными полями.
func (f ItemFields) Apply(item Item) Item {
	if f.Name != nil {
		item.Name = *f.Name
	}
	if f.Description != nil {
		item.Description = *f.Description
	}
	if f.Category != nil {
		item.Category = *f.Category
	}
	if f.Price != nil {
		item.Price = *f.Price
	}
	if f.Quantity != nil {
		item.Quantity = *f.Quantity
	}
	return item
}

// Timestamp приводит время к точности, которую хранят все хранилища.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
