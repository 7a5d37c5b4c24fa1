// Package repository содержит реализации хранилища позиций.
package repository

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/RoGogDBD/inventory/internal/models"
)

const itemsTable = "items"

var itemColumns = []string{"id", "name", "description", "category", "price", "quantity", "created_at", "updated_at"}

// dialect описывает различия SQL между СУБД.
type dialect struct {
	placeholder sq.PlaceholderFormat
	// textOrder добавляется к текстовым колонкам в ORDER BY, чтобы порядок был побайтовым.
	textOrder string
	// lower приводит текст к нижнему регистру так же, как strings.ToLower.
	lower string
}

var (
	postgresDialect = dialect{placeholder: sq.Dollar, textOrder: ` COLLATE "C"`, lower: "LOWER"}
	sqliteDialect   = dialect{placeholder: sq.Question, textOrder: "", lower: sqliteLowerFunc}
)

func (d dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

func (d dialect) selectItems() sq.SelectBuilder {
	return d.builder().Select(itemColumns...).From(itemsTable)
}

func (d dialect) insertItem(f models.ItemFields, now time.Time) sq.InsertBuilder {
	return d.builder().Insert(itemsTable).
		Columns("name", "description", "category", "price", "quantity", "created_at", "updated_at").
		Values(deref(f.Name), deref(f.Description), deref(f.Category), deref(f.Price), deref(f.Quantity), now, now).
		Suffix("RETURNING " + strings.Join(itemColumns, ", "))
}

// updateItem меняет только переданные поля; updated_at не может стать меньше created_at.
func (d dialect) updateItem(id int64, f models.ItemFields, now time.Time) sq.UpdateBuilder {
	set := map[string]any{}
	if f.Name != nil {
		set["name"] = *f.Name
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.Category != nil {
		set["category"] = *f.Category
	}
	if f.Price != nil {
		set["price"] = *f.Price
	}
	if f.Quantity != nil {
		set["quantity"] = *f.Quantity
	}
	set["updated_at"] = sq.Expr("CASE WHEN created_at > ? THEN created_at ELSE ? END", now, now)

	return d.builder().Update(itemsTable).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(itemColumns, ", "))
}

func (d dialect) deleteItem(id int64) sq.DeleteBuilder {
	return d.builder().Delete(itemsTable).Where(sq.Eq{"id": id})
}

func (d dialect) distinctCategories() sq.SelectBuilder {
	return d.builder().Select("DISTINCT category").From(itemsTable).
		Where(sq.NotEq{"category": ""}).
		OrderBy("category" + d.textOrder)
}

// filters строит условия WHERE для запроса списка. Категория и поиск объединяются через AND.
func (d dialect) filters(q models.Query) sq.And {
	cond := sq.And{}
	if q.Category != "" {
		cond = append(cond, sq.Eq{"category": q.Category})
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		cond = append(cond, sq.Or{
			sq.Expr(d.lower+`(name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(d.lower+`(description) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	return cond
}

func (d dialect) countItems(q models.Query) sq.SelectBuilder {
	b := d.builder().Select("COUNT(*)").From(itemsTable)
	if cond := d.filters(q); len(cond) > 0 {
		b = b.Where(cond)
	}
	return b
}

func (d dialect) searchItems(q models.Query, offset int) sq.SelectBuilder {
	b := d.selectItems()
	if cond := d.filters(q); len(cond) > 0 {
		b = b.Where(cond)
	}
	return b.OrderBy(d.orderBy(q)...).
		Limit(uint64(q.PerPage)).
		Offset(uint64(offset))
}

// orderBy сортирует по выбранному полю, при равенстве по id в том же направлении.
func (d dialect) orderBy(q models.Query) []string {
	dir := " ASC"
	if q.SortOrder == models.Desc {
		dir = " DESC"
	}
	col := q.SortBy.String()
	switch q.SortBy {
	case models.SortByName, models.SortByCategory:
		col += d.textOrder
	case models.SortByID:
		return []string{"id" + dir}
	}
	return []string{col + dir, "id" + dir}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
