// Package api exposes the bill store over HTTP for the REST client and the approver workflow.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MaxUploadSize bounds the size of an uploaded receipt.
const MaxUploadSize = models.MaxReceiptSize

// Backend is the store behind the API.
type Backend interface {
	store.BillStore
	UpdateStatus(ctx context.Context, id string, status models.BillStatus) (*models.Bill, error)
	Receipt(key string) ([]byte, error)
}

// Server holds the gin engine and its metrics registry.
type Server struct {
	backend  Backend
	engine   *gin.Engine
	registry *prometheus.Registry
	metrics  *httpMetrics
}

// NewServer builds the routes over backend.
func NewServer(backend Backend) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		backend:  backend,
		engine:   gin.New(),
		registry: registry,
		metrics:  newHTTPMetrics(registry),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.MaxMultipartMemory = MaxUploadSize
	r.Use(gin.Recovery(), requestLogger(), s.metrics.middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	r.GET("/bills", s.listBills)
	r.POST("/bills", s.createBill)
	r.PATCH("/bills/:id/status", s.updateStatus)

	r.GET("/receipts/:key", s.getReceipt)
	r.GET("/receipts/:key/preview", s.getReceiptPreview)
}

// Handler returns the engine wrapped with OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "billed.api")
}

// Registry returns the Prometheus registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}
