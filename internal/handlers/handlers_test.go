package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/repository/mocks"
	"github.com/RoGogDBD/inventory/internal/seed"
	"github.com/RoGogDBD/inventory/internal/service"
)

func newTestRouter(t *testing.T, store repository.ItemStore) http.Handler {
	t.Helper()
	svc := service.New(store)
	return NewRouter(NewHandler(svc, zap.NewNop()), zap.NewNop(), RouterOptions{})
}

func newSeededRouter(t *testing.T) http.Handler {
	t.Helper()
	store := repository.NewMemStorage()
	if err := seed.Run(context.Background(), store, service.New(store), zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return newTestRouter(t, store)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var got map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, got
}

func TestItemEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name: "index", method: http.MethodGet, path: "/", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if _, ok := body["endpoints"]; !ok {
					t.Fatal("expected endpoints in index")
				}
			},
		},
		{
			name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["status"] != "healthy" || body["database"] != "connected" || body["timestamp"] == nil {
					t.Fatalf("unexpected health body %v", body)
				}
			},
		},
		{
			name: "list with malformed page", method: http.MethodGet, path: "/items?page=abc&per_page=2", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				pag := body["pagination"].(map[string]any)
				want := map[string]any{"page": 1.0, "per_page": 2.0, "total_items": 5.0, "total_pages": 3.0, "has_next": true, "has_prev": false}
				if diff := cmp.Diff(want, pag); diff != "" {
					t.Fatalf("pagination mismatch (-want +got):\n%s", diff)
				}
				if n := len(body["items"].([]any)); n != 2 {
					t.Fatalf("expected 2 items, got %d", n)
				}
				filters := body["filters"].(map[string]any)
				if filters["category"] != nil || filters["search"] != nil || filters["sort_by"] != "id" || filters["sort_order"] != "asc" {
					t.Fatalf("unexpected filters %v", filters)
				}
			},
		},
		{
			name: "list filtered and sorted", method: http.MethodGet, path: "/items?category=Electronics&sort_by=price&sort_order=DESC", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				items := body["items"].([]any)
				if len(items) != 2 || items[0].(map[string]any)["name"] != "Laptop" {
					t.Fatalf("unexpected items %v", items)
				}
				if body["filters"].(map[string]any)["category"] != "Electronics" {
					t.Fatalf("expected echoed category, got %v", body["filters"])
				}
			},
		},
		{
			name: "list search", method: http.MethodGet, path: "/items?search=MOUSE", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				items := body["items"].([]any)
				if len(items) != 1 || items[0].(map[string]any)["name"] != "Wireless Mouse" {
					t.Fatalf("unexpected items %v", items)
				}
			},
		},
		{
			name: "get", method: http.MethodGet, path: "/items/1", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["item"].(map[string]any)["name"] != "Laptop" {
					t.Fatalf("unexpected body %v", body)
				}
			},
		},
		{name: "get missing", method: http.MethodGet, path: "/items/999", wantStatus: http.StatusNotFound, check: wantError(msgItemNotFound)},
		{name: "get non numeric id", method: http.MethodGet, path: "/items/abc", wantStatus: http.StatusNotFound, check: wantError(msgEndpointNotFound)},
		{name: "unknown endpoint", method: http.MethodGet, path: "/orders", wantStatus: http.StatusNotFound, check: wantError(msgEndpointNotFound)},
		{name: "wrong method", method: http.MethodPatch, path: "/items/1", wantStatus: http.StatusMethodNotAllowed, check: wantError(msgMethodNotAllowed)},
		{name: "wrong method on categories", method: http.MethodPost, path: "/items/categories", wantStatus: http.StatusMethodNotAllowed, check: wantError(msgMethodNotAllowed)},
		{
			name: "categories", method: http.MethodGet, path: "/items/categories", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				want := []any{"Books", "Electronics", "Kitchen", "Office"}
				if diff := cmp.Diff(want, body["categories"]); diff != "" {
					t.Fatalf("categories mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{name: "create without body", method: http.MethodPost, path: "/items", wantStatus: http.StatusBadRequest, check: wantError(msgNoJSON)},
		{name: "create empty object", method: http.MethodPost, path: "/items", body: `{}`, wantStatus: http.StatusBadRequest, check: wantError(msgNoJSON)},
		{name: "create array", method: http.MethodPost, path: "/items", body: `[1]`, wantStatus: http.StatusBadRequest, check: wantError(msgNoJSON)},
		{name: "create malformed json", method: http.MethodPost, path: "/items", body: `{"name":`, wantStatus: http.StatusBadRequest, check: wantError(msgNoJSON)},
		{
			name: "create invalid", method: http.MethodPost, path: "/items", body: `{"name":"  ","quantity":-1}`, wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				want := map[string]any{
					"error":   msgValidationFailed,
					"details": []any{"'name' is required", "'price' is required", "'quantity' must be a non-negative integer"},
				}
				if diff := cmp.Diff(want, body); diff != "" {
					t.Fatalf("body mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "create", method: http.MethodPost, path: "/items", body: `{"name":" Desk Lamp ","price":"24.50","category":"Office"}`, wantStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				item := body["item"].(map[string]any)
				if body["message"] != "Item created successfully" || item["id"] != 6.0 || item["name"] != "Desk Lamp" ||
					item["price"] != 24.5 || item["quantity"] != 0.0 || item["description"] != "" {
					t.Fatalf("unexpected body %v", body)
				}
				if item["created_at"] != item["updated_at"] {
					t.Fatalf("timestamps differ at creation: %v", item)
				}
			},
		},
		{
			name: "update", method: http.MethodPut, path: "/items/2", body: `{"quantity":3,"id":99}`, wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				item := body["item"].(map[string]any)
				if body["message"] != "Item updated successfully" || item["id"] != 2.0 || item["quantity"] != 3.0 || item["name"] != "Coffee Mug" {
					t.Fatalf("unexpected body %v", body)
				}
			},
		},
		{name: "update no known fields", method: http.MethodPut, path: "/items/2", body: `{"colour":"red"}`, wantStatus: http.StatusBadRequest, check: wantError("No valid fields to update")},
		{name: "update missing", method: http.MethodPut, path: "/items/999", body: `{"price":1}`, wantStatus: http.StatusNotFound, check: wantError(msgItemNotFound)},
		{name: "update without body", method: http.MethodPut, path: "/items/1", wantStatus: http.StatusBadRequest, check: wantError(msgNoJSON)},
		{
			name: "delete", method: http.MethodDelete, path: "/items/3", wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if diff := cmp.Diff(map[string]any{"message": "Item deleted successfully"}, body); diff != "" {
					t.Fatalf("body mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{name: "delete missing", method: http.MethodDelete, path: "/items/999", wantStatus: http.StatusNotFound, check: wantError(msgItemNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSeededRouter(t)
			rr, body := do(t, h, tt.method, tt.path, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("unexpected status: %d, body %s", rr.Code, rr.Body.String())
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func wantError(msg string) func(t *testing.T, body map[string]any) {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		if diff := cmp.Diff(map[string]any{"error": msg}, body); diff != "" {
			t.Fatalf("body mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDeleteThenGet(t *testing.T) {
	h := newSeededRouter(t)

	if rr, _ := do(t, h, http.MethodDelete, "/items/4", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete: %d", rr.Code)
	}
	if rr, _ := do(t, h, http.MethodGet, "/items/4", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rr.Code)
	}
	if rr, _ := do(t, h, http.MethodDelete, "/items/4", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rr.Code)
	}
}

func TestStoreFailures(t *testing.T) {
	fail := errors.New("connection reset")
	store := &mocks.ItemStoreMock{
		FindAllFunc:            func(context.Context) ([]models.Item, error) { return nil, fail },
		FindByIDFunc:           func(context.Context, int64) (*models.Item, error) { return nil, fail },
		DeleteFunc:             func(context.Context, int64) (bool, error) { return false, fail },
		DistinctCategoriesFunc: func(context.Context) ([]string, error) { return nil, fail },
		PingFunc:               func(context.Context) error { return fail },
	}
	h := newTestRouter(t, store)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/items", ""},
		{http.MethodGet, "/items/1", ""},
		{http.MethodPut, "/items/1", `{"price":2}`},
		{http.MethodDelete, "/items/1", ""},
		{http.MethodGet, "/items/categories", ""},
		{http.MethodPost, "/items", `{"name":"x","price":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr, body := do(t, h, tt.method, tt.path, tt.body)
			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
			if diff := cmp.Diff(map[string]any{"error": msgInternal}, body); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("health", func(t *testing.T) {
		rr, body := do(t, h, http.MethodGet, "/health", "")
		if rr.Code != http.StatusInternalServerError || body["status"] != "unhealthy" {
			t.Fatalf("unexpected response %d %v", rr.Code, body)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	h := newSeededRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/items", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestSwaggerAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("items_operations_total 1\n"))
	})
	h := NewRouter(NewHandler(service.New(repository.NewMemStorage()), zap.NewNop()), zap.NewNop(),
		RouterOptions{MetricsHandler: metrics, MetricsPath: "/metrics"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"Inventory API"`) {
		t.Fatalf("unexpected swagger response %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "items_operations_total") {
		t.Fatalf("unexpected metrics response %d", rr.Code)
	}
}
