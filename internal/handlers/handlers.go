package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/service"
	"github.com/RoGogDBD/inventory/internal/validation"
)

const maxBodyBytes = 1 << 20

// ItemService описывает операции над позициями, которые нужны HTTP-слою.
type ItemService interface {
	ListItems(ctx context.Context, q models.Query) (models.ItemPage, error)
	GetItem(ctx context.Context, id int64) (models.Item, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateItem(ctx context.Context, p models.Payload) (models.Item, error)
	UpdateItem(ctx context.Context, id int64, p models.Payload) (models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type Handler struct {
	svc ItemService
	log *zap.Logger
}

func NewHandler(svc ItemService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// ListItems godoc
// @Summary      List items
// @Description  Paginated, filtered and sorted item list. Invalid parameters fall back to defaults.
// @Tags         items
// @Produce      json
// @Param        page        query  int     false  "Page number"        default(1)
// @Param        per_page    query  int     false  "Items per page"     default(10)  maximum(100)
// @Param        category    query  string  false  "Exact category"
// @Param        search      query  string  false  "Substring of name or description"
// @Param        sort_by     query  string  false  "Sort field"  Enums(id, name, category, price, quantity, created_at)
// @Param        sort_order  query  string  false  "Sort order"  Enums(asc, desc)
// @Success      200  {object}  models.ItemPage
// @Failure      500  {object}  ErrorResponse
// @Router       /items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListItems(r.Context(), service.ParseQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetItem godoc
// @Summary  Get item
// @Tags     items
// @Produce  json
// @Param    id   path      int  true  "Item ID"
// @Success  200  {object}  ItemResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  500  {object}  ErrorResponse
// @Router   /items/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Item: &item})
}

// CreateItem godoc
// @Summary  Create item
// @Tags     items
// @Accept   json
// @Produce  json
// @Param    item  body      models.Payload  true  "New item"
// @Success  201   {object}  ItemResponse
// @Failure  400   {object}  ErrorResponse
// @Failure  500   {object}  ErrorResponse
// @Router   /items [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	item, err := h.svc.CreateItem(r.Context(), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.log.Info("created item", zap.Int64("id", item.ID))
	writeJSON(w, http.StatusCreated, ItemResponse{Message: "Item created successfully", Item: &item})
}

// UpdateItem godoc
// @Summary      Update item
// @Description  Changes only the supplied fields. id and created_at are never changed.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Item ID"
// @Param        item  body      models.Payload  true  "Fields to change"
// @Success      200   {object}  ItemResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /items/{id} [put]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	item, err := h.svc.UpdateItem(r.Context(), id, p)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.log.Info("updated item", zap.Int64("id", item.ID))
	writeJSON(w, http.StatusOK, ItemResponse{Message: "Item updated successfully", Item: &item})
}

// DeleteItem godoc
// @Summary  Delete item
// @Tags     items
// @Produce  json
// @Param    id   path      int  true  "Item ID"
// @Success  200  {object}  ItemResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  500  {object}  ErrorResponse
// @Router   /items/{id} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	h.log.Info("deleted item", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, ItemResponse{Message: "Item deleted successfully"})
}

// ListCategories godoc
// @Summary  List categories
// @Tags     items
// @Produce  json
// @Success  200  {object}  CategoriesResponse
// @Failure  500  {object}  ErrorResponse
// @Router   /items/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// fail переводит ошибку сервиса в ответ. Сбои хранилища уже записаны в лог сервисом.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, msgItemNotFound)
	case errors.As(err, &verr):
		if len(verr.Messages) == 1 && verr.Messages[0] == validation.MsgNoFields {
			writeError(w, http.StatusBadRequest, validation.MsgNoFields)
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Details: verr.Messages})
	default:
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// decodePayload читает JSON-объект из тела. Пустое тело, невалидный JSON,
// не-объект и пустой объект дают 400 "No JSON data provided".
func decodePayload(w http.ResponseWriter, r *http.Request) (models.Payload, bool) {
	var p models.Payload
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoJSON)
		return p, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || len(obj) == 0 {
		writeError(w, http.StatusBadRequest, msgNoJSON)
		return p, false
	}
	if err := json.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, msgNoJSON)
		return p, false
	}
	return p, true
}
