package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/RoGogDBD/inventory/internal/models"
)

// Границы пагинации.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ParseQuery разбирает параметры списка. Некорректные значения заменяются умолчаниями,
// поэтому функция не возвращает ошибок.
func ParseQuery(v url.Values) models.Query {
	q := models.Query{
		Page:      DefaultPage,
		PerPage:   DefaultPerPage,
		SortBy:    models.SortByID,
		SortOrder: models.Asc,
	}

	if n, ok := parseInt(v.Get("page")); ok && n >= 1 {
		q.Page = n
	}
	if n, ok := parseInt(v.Get("per_page")); ok {
		q.PerPage = min(max(n, 1), MaxPerPage)
	}

	q.Category = strings.TrimSpace(v.Get("category"))
	q.Search = v.Get("search")

	if f, ok := models.ParseSortField(v.Get("sort_by")); ok {
		q.SortBy = f
	}
	if strings.EqualFold(strings.TrimSpace(v.Get("sort_order")), string(models.Desc)) {
		q.SortOrder = models.Desc
	}
	return q
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizeQuery приводит собранный вручную Query к допустимым границам.
func normalizeQuery(q models.Query) models.Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	q.PerPage = min(q.PerPage, MaxPerPage)
	if q.SortOrder != models.Desc {
		q.SortOrder = models.Asc
	}
	return q
}
