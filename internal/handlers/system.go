package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// apiIndex описывает API на корневом пути.
var apiIndex = map[string]any{
	"message": "Inventory CRUD API",
	"version": "1.0.0",
	"endpoints": map[string]string{
		"GET /":                   "API documentation",
		"GET /items":              "Get all items (supports pagination and filtering)",
		"GET /items/<id>":         "Get specific item by ID",
		"POST /items":             "Create new item",
		"PUT /items/<id>":         "Update existing item",
		"DELETE /items/<id>":      "Delete item",
		"GET /items/categories":   "Get all categories",
		"GET /health":             "Health check endpoint",
		"GET /swagger/index.html": "Swagger UI",
	},
	"sample_request": map[string]any{
		"name":        "Sample Item",
		"description": "This is a sample item",
		"category":    "Sample Category",
		"price":       19.99,
		"quantity":    10,
	},
}

// HealthResponse описывает состояние сервиса и хранилища.
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`
	Database  string    `json:"database,omitempty" example:"connected"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Index godoc
// @Summary  API description
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   / [get]
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiIndex)
}

// Health godoc
// @Summary  Health check
// @Tags     system
// @Produce  json
// @Success  200  {object}  HealthResponse
// @Failure  500  {object}  HealthResponse
// @Router   /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, HealthResponse{Status: "unhealthy", Error: err.Error(), Timestamp: now})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Database: "connected", Timestamp: now})
}

// NotFound отвечает на неизвестные пути.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgEndpointNotFound)
}

// MethodNotAllowed отвечает на неподдерживаемый метод известного пути.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
