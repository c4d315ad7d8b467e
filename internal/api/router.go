package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger checks a backing store. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the gin engine serving the API, health checks and metrics.
// db may be nil when no vocabulary store is configured.
func NewRouter(log *slog.Logger, handler *Handler, reg *prometheus.Registry, db Pinger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(ctx *gin.Context) {
		log.DebugContext(ctx.Request.Context(), "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if db != nil {
			if err := db.Ping(ctx.Request.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		ctx.String(status, body)

		log.DebugContext(ctx.Request.Context(), "Health checks completed", "status", status)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler.Register(router)

	return router
}
