package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RoGogDBD/inventory/internal/models"
)

// PostgresStorage хранит позиции в PostgreSQL.
type PostgresStorage struct {
	pool *pgxpool.Pool
	d    dialect
}

// NewPostgresStorage создает хранилище поверх пула подключений.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool, d: postgresDialect}
}

func (r *PostgresStorage) Insert(ctx context.Context, f models.ItemFields, now time.Time) (models.Item, error) {
	query, args, err := r.d.insertItem(f, now).ToSql()
	if err != nil {
		return models.Item{}, fmt.Errorf("build insert: %w", err)
	}
	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (r *PostgresStorage) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	query, args, err := r.d.selectItems().Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

func (r *PostgresStorage) FindAll(ctx context.Context) ([]models.Item, error) {
	query, args, err := r.d.selectItems().OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return r.queryItems(ctx, query, args)
}

func (r *PostgresStorage) Update(ctx context.Context, id int64, f models.ItemFields, now time.Time) (*models.Item, error) {
	query, args, err := r.d.updateItem(id, f, now).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (r *PostgresStorage) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.d.deleteItem(id).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresStorage) DistinctCategories(ctx context.Context) ([]string, error) {
	query, args, err := r.d.distinctCategories().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return categories, nil
}

func (r *PostgresStorage) Search(ctx context.Context, q models.Query) ([]models.Item, int, error) {
	query, args, err := r.d.countItems(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
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

func (r *PostgresStorage) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresStorage) queryItems(ctx context.Context, query string, args []any) ([]models.Item, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

// rowScanner общий для pgx.Row, pgx.Rows и *sql.Row, *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.Price, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return models.Item{}, err
	}
	it.CreatedAt = it.CreatedAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()
	return it, nil
}
