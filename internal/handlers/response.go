package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/RoGogDBD/inventory/internal/models"
)

const (
	msgItemNotFound     = "Item not found"
	msgValidationFailed = "Validation failed"
	msgNoJSON           = "No JSON data provided"
	msgInternal         = "Internal server error"
	msgEndpointNotFound = "Endpoint not found"
	msgMethodNotAllowed = "Method not allowed"
)

// ErrorResponse описывает тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string   `json:"error" example:"Validation failed"`
	Details []string `json:"details,omitempty"`
}

// ItemResponse описывает тело ответа с позицией и/или сообщением.
type ItemResponse struct {
	Message string       `json:"message,omitempty" example:"Item created successfully"`
	Item    *models.Item `json:"item,omitempty"`
}

// CategoriesResponse содержит список категорий.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
