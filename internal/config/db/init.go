// Package db содержит инициализацию подключения к базе данных.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // регистрация драйвера SQLite

	"github.com/RoGogDBD/inventory/internal/config"
)

// NewPool создает пул подключений к PostgreSQL с повторами и миграциями.
func NewPool(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	if err := config.WithConnectRetry(ctx, log, func() error {
		var err error
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	log.Info("connected to PostgreSQL")

	if err := config.WithConnectRetry(ctx, log, func() error {
		return RunPostgresMigrations(dsn, log)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations after retries: %w", err)
	}

	return pool, nil
}

// OpenSQLite открывает базу SQLite, настраивает pragma и применяет миграции.
// Одно соединение сериализует запись и сохраняет базу ":memory:" между запросами.
func OpenSQLite(path string, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := RunSQLiteMigrations(db, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("opened SQLite database", zap.String("path", path))
	return db, nil
}

// sqliteDSN задает единый текстовый формат времени, чтобы сравнение и сортировка строк совпадали с порядком времени.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_time_format=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite"
}
