package config

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/retry"
)

// connectPolicy задает повторы подключения к БД: 1s, 2s, 4s с потолком 5s.
var connectPolicy = retry.Policy{
	MaxRetries:  3,
	Backoff:     retry.NewBackoff(time.Second, 5*time.Second, false),
	ShouldRetry: isRetriableError,
}

// WithConnectRetry выполняет op, повторяя ошибки соединения PostgreSQL (класс 08).
func WithConnectRetry(ctx context.Context, log *zap.Logger, op func() error) error {
	return retry.Do(ctx, connectPolicy, op, func(err error, attempt int, wait time.Duration) {
		log.Warn("retriable database error",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectPolicy.MaxRetries),
			zap.Duration("wait", wait),
		)
	})
}

func isRetriableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
