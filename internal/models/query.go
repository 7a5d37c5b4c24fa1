package models

import (
	"cmp"
	"strings"
)

// SortField перечисляет поля, по которым разрешена сортировка.
type SortField int

const (
	SortByID SortField = iota
	SortByName
	SortByCategory
	SortByPrice
	SortByQuantity
	SortByCreatedAt
)

var sortFieldNames = [...]string{
	SortByID:        "id",
	SortByName:      "name",
	SortByCategory:  "category",
	SortByPrice:     "price",
	SortByQuantity:  "quantity",
	SortByCreatedAt: "created_at",
}

// SortFields возвращает все поля сортировки в порядке объявления.
func SortFields() []SortField {
	return []SortField{SortByID, SortByName, SortByCategory, SortByPrice, SortByQuantity, SortByCreatedAt}
}

// String возвращает имя поля в API и колонку в БД.
func (f SortField) String() string {
	if f < 0 || int(f) >= len(sortFieldNames) {
		return sortFieldNames[SortByID]
	}
	return sortFieldNames[f]
}

// ParseSortField возвращает поле по имени; неизвестное имя даёт SortByID.
func ParseSortField(s string) (SortField, bool) {
	for i, name := range sortFieldNames {
		if name == s {
			return SortField(i), true
		}
	}
	return SortByID, false
}

// Compare сравнивает две позиции по полю f.
func (f SortField) Compare(a, b Item) int {
	switch f {
	case SortByName:
		return strings.Compare(a.Name, b.Name)
	case SortByCategory:
		return strings.Compare(a.Category, b.Category)
	case SortByPrice:
		return cmp.Compare(a.Price, b.Price)
	case SortByQuantity:
		return cmp.Compare(a.Quantity, b.Quantity)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

// SortOrder задаёт направление сортировки.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query содержит нормализованные параметры выборки.
type Query struct {
	Page      int
	PerPage   int
	Category  string
	Search    string
	SortBy    SortField
	SortOrder SortOrder
}

// Offset возвращает смещение первой записи страницы и false при переполнении.
func (q Query) Offset() (int, bool) {
	if q.Page < 1 || q.PerPage < 1 {
		return 0, true
	}
	pages := q.Page - 1
	if pages > maxInt/q.PerPage {
		return 0, false
	}
	return pages * q.PerPage, true
}

const maxInt = int(^uint(0) >> 1)

// Pagination описывает метаданные страницы.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Filters отражает фактически применённые параметры.
type Filters struct {
	Category  *string `json:"category"`
	Search    *string `json:"search"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
}

// ItemPage описывает ответ на запрос списка.
type ItemPage struct {
	Items      []Item     `json:"items"`
	Pagination Pagination `json:"pagination"`
	Filters    Filters    `json:"filters"`
}
