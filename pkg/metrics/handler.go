package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

// Handler serves the collector in the Prometheus text format
type Handler struct {
	collector *Collector
	logger    *logger.Logger
}

// NewHandler creates a new metrics handler
func NewHandler(collector *Collector, logger *logger.Logger) *Handler {
	return &Handler{
		collector: collector,
		logger:    logger,
	}
}

// RegisterRoutes registers GET /metrics
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Method("GET", "/metrics", promhttp.HandlerFor(h.collector.Registry(), promhttp.HandlerOpts{
		ErrorLog: promLogger{h.logger},
	}))
}

type promLogger struct {
	logger *logger.Logger
}

func (l promLogger) Println(v ...interface{}) {
	l.logger.Error("Metrics scrape failed", "error", v)
}
