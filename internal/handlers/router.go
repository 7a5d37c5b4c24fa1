package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/RoGogDBD/inventory/docs" // регистрация swagger-спецификации
	"github.com/RoGogDBD/inventory/internal/config"
)

// RouterOptions задаёт необязательные части роутера.
type RouterOptions struct {
	// MetricsHandler отдается по MetricsPath, если задан.
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter собирает chi-роутер API, обернутый трассировкой otelhttp.
// Маршруты позиций принимают только числовые id, поэтому /items/abc дает 404.
func NewRouter(h *Handler, log *zap.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	config.SetupMiddlewares(r, log)

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/", h.Index)
	r.Get("/health", h.Health)

	r.Get("/items", h.ListItems)
	r.Post("/items", h.CreateItem)
	r.Get("/items/categories", h.ListCategories)
	r.Get("/items/{id:[0-9]+}", h.GetItem)
	r.Put("/items/{id:[0-9]+}", h.UpdateItem)
	r.Delete("/items/{id:[0-9]+}", h.DeleteItem)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.MetricsHandler)
	}

	return otelhttp.NewHandler(r, "inventory-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
