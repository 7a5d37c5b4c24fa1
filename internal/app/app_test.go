package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
)

func testConfig(t *testing.T, driver, dsn string) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.Database.Driver = driver
	cfg.Database.DSN = dsn
	cfg.Telemetry.MetricsEnabled = false
	return cfg
}

func TestAppLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		driver     string
		dsn        func(t *testing.T) string
		cache      bool
		wantSearch bool
	}{
		{name: "memory", driver: config.DriverMemory, dsn: func(*testing.T) string { return "" }},
		{name: "sqlite file with cache", driver: config.DriverSQLite, dsn: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "inventory.db")
		}, cache: true, wantSearch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.driver, tt.dsn(t))
			cfg.Cache.Enabled = tt.cache

			a := NewApp(cfg, zap.NewNop())
			if err := a.Init(); err != nil {
				t.Fatalf("Init: %v", err)
			}
			defer a.Close(context.Background())

			if got := repository.SupportsSearch(a.Store); got != tt.wantSearch {
				t.Fatalf("expected search support %v, got %v", tt.wantSearch, got)
			}
			if _, ok := a.Store.(*repository.CachedStore); ok != tt.cache {
				t.Fatalf("expected cache %v", tt.cache)
			}

			rr := httptest.NewRecorder()
			a.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/categories", nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("unexpected status %d", rr.Code)
			}

			page, err := a.Service.ListItems(context.Background(), models.Query{Page: 1, PerPage: 100})
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if page.Pagination.TotalItems != 5 {
				t.Fatalf("expected seeded items, got %d", page.Pagination.TotalItems)
			}
		})
	}
}

func TestAppUnknownDriver(t *testing.T) {
	cfg := testConfig(t, "oracle", "x")
	a := NewApp(cfg, zap.NewNop())
	defer a.Close(context.Background())
	if err := a.Init(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
