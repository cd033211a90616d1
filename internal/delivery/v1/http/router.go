package http

import (
	"net/http"

	_ "github.com/DRSN-tech/storefront-assistant/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "storefront-assistant"

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(registry ToolRegistry, stateUC usecase.StateSyncUC) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)
	r.router.Use(PrometheusMiddleware)

	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.router.Handle("/metrics", promhttp.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerToolRoutes(v1, NewToolHandler(registry, r.logger))
		registerStateRoutes(v1, NewStateHandler(stateUC, r.logger))
	})
}

// Handler оборачивает маршрутизатор в трассировку входящих запросов.
func (r *Router) Handler() http.Handler {
	return otelhttp.NewHandler(r.router, serviceName)
}

func registerToolRoutes(router chi.Router, h *ToolHandler) {
	router.Route("/tools", func(tr chi.Router) {
		tr.Get("/", h.listTools)
		tr.Post("/{name}", h.invokeTool)
	})
}

func registerStateRoutes(router chi.Router, h *StateHandler) {
	router.Put("/state/{key}", h.saveState)
}
