// Package app связывает конфигурацию, хранилище, сервис и транспорт.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/config/db"
	"github.com/RoGogDBD/inventory/internal/handlers"
	"github.com/RoGogDBD/inventory/internal/kafka"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/seed"
	"github.com/RoGogDBD/inventory/internal/service"
	"github.com/RoGogDBD/inventory/internal/telemetry"
)

// App содержит все зависимости приложения
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	Store     repository.ItemStore
	Service   *service.Service
	Telemetry *telemetry.Providers

	dbPool    *pgxpool.Pool
	sqlDB     *sql.DB
	publisher *kafka.Publisher
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewApp создает новое приложение.
func NewApp(cfg *config.Config, log *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config: cfg,
		Log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Init выполняет инициализацию зависимостей приложения.
func (a *App) Init() error {
	providers, err := telemetry.Init(a.ctx, a.Config.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.Telemetry = providers

	if err := a.initStore(a.ctx); err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(a.Log),
		service.WithMetrics(providers.Metrics),
		service.WithTracer(providers.Tracer),
	}
	if a.Config.Kafka.Enabled() && a.Config.Kafka.EventsTopic != "" {
		a.publisher = kafka.NewPublisher(a.Config.Kafka.Brokers, a.Config.Kafka.EventsTopic, a.Log)
		opts = append(opts, service.WithPublisher(a.publisher))
		a.Log.Info("publishing item events", zap.String("topic", a.Config.Kafka.EventsTopic))
	}
	a.Service = service.New(a.Store, opts...)

	if a.Config.Seed.Enabled {
		if err := seed.Run(a.ctx, a.Store, a.Service, a.Log); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
	}

	if a.Config.Kafka.Enabled() && a.Config.Kafka.ImportTopic != "" {
		importer := kafka.NewImporter(a.Config.Kafka, a.Service, a.Log)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := importer.Run(a.ctx); err != nil {
				a.Log.Error("item importer stopped", zap.Error(err))
			}
		}()
		a.Log.Info("importing items", zap.String("topic", a.Config.Kafka.ImportTopic))
	}

	return nil
}

// initStore открывает хранилище выбранного драйвера и при необходимости оборачивает его кешем.
func (a *App) initStore(ctx context.Context) error {
	var store repository.ItemStore

	switch a.Config.Database.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, a.Config.Database.DSN, a.Log)
		if err != nil {
			return err
		}
		a.dbPool = pool
		store = repository.NewPostgresStorage(pool)
	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(a.Config.Database.DSN, a.Log)
		if err != nil {
			return err
		}
		a.sqlDB = sqlDB
		store = repository.NewSQLiteStorage(sqlDB)
	case config.DriverMemory:
		store = repository.NewMemStorage()
	default:
		return fmt.Errorf("unknown database driver %q", a.Config.Database.Driver)
	}
	a.Log.Info("storage initialized", zap.String("driver", a.Config.Database.Driver))

	if a.Config.Cache.Enabled {
		store = repository.NewCachedStore(store, a.Config.Cache.MaxItems, a.Config.Cache.TTL)
		a.Log.Info("item cache enabled",
			zap.Int("max_items", a.Config.Cache.MaxItems),
			zap.Duration("ttl", a.Config.Cache.TTL),
		)
	}

	a.Store = store
	return nil
}

// Handler возвращает HTTP-обработчик API.
func (a *App) Handler() http.Handler {
	opts := handlers.RouterOptions{MetricsPath: a.Config.Telemetry.MetricsPath}
	if a.Telemetry != nil {
		opts.MetricsHandler = a.Telemetry.MetricsHandler
	}
	return handlers.NewRouter(handlers.NewHandler(a.Service, a.Log), a.Log, opts)
}

// Close освобождает все ресурсы приложения
func (a *App) Close(ctx context.Context) {
	a.Log.Info("shutting down application")

	// остановит импорт из Kafka
	a.cancel()
	a.wg.Wait()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Log.Warn("kafka publisher close error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.Log.Info("database connection closed")
	}
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			a.Log.Warn("sqlite close error", zap.Error(err))
		}
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Log.Warn("telemetry shutdown error", zap.Error(err))
	}

	a.Log.Info("application shutdown complete")
}

// Context возвращает контекст приложения
func (a *App) Context() context.Context {
	return a.ctx
}
