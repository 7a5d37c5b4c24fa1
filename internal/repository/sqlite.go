package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/RoGogDBD/inventory/internal/models"
)

// sqliteLowerFunc заменяет встроенный LOWER, который меняет регистр только у ASCII.
const sqliteLowerFunc = "go_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, goLower)
}

func goLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", sqliteLowerFunc, v)
	}
}

// SQLiteStorage хранит позиции в SQLite через database/sql.
type SQLiteStorage struct {
	db *sql.DB
	d  dialect
}

// NewSQLiteStorage создает хранилище поверх открытой базы.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db, d: sqliteDialect}
}

func (r *SQLiteStorage) Insert(ctx context.Context, f models.ItemFields, now time.Time) (models.Item, error) {
	query, args, err := r.d.insertItem(f, now).ToSql()
	if err != nil {
		return models.Item{}, fmt.Errorf("build insert: %w", err)
	}
	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (r *SQLiteStorage) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	query, args, err := r.d.selectItems().Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

func (r *SQLiteStorage) FindAll(ctx context.Context) ([]models.Item, error) {
	query, args, err := r.d.selectItems().OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return r.queryItems(ctx, query, args)
}

func (r *SQLiteStorage) Update(ctx context.Context, id int64, f models.ItemFields, now time.Time) (*models.Item, error) {
	query, args, err := r.d.updateItem(id, f, now).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (r *SQLiteStorage) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.d.deleteItem(id).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteStorage) DistinctCategories(ctx context.Context) ([]string, error) {
	query, args, err := r.d.distinctCategories().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteStorage) Search(ctx context.Context, q models.Query) ([]models.Item, int, error) {
	query, args, err := r.d.countItems(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	offset, ok := q.Offset()
	if !ok || offset >= total {
		return []models.Item{}, total, nil
	}

	query, args, err = r.d.searchItems(q, offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search: %w", err)
	}
	items, err := r.queryItems(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *SQLiteStorage) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteStorage) queryItems(ctx context.Context, query string, args []any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan items rows: %w", err)
	}
	return items, nil
}
