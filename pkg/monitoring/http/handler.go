package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/http/response"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/monitoring"
)

// NodeStatusResponse is the JSON form of a node check
type NodeStatusResponse struct {
	Network      string `json:"network"`
	Node         string `json:"node"`
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	LastChecked  string `json:"lastChecked"`
	ResponseTime string `json:"responseTime,omitempty"`
	Error        string `json:"error,omitempty"`
	FailureCount int    `json:"failureCount,omitempty"`
	Since        string `json:"statusSince"`
}

type ListNodeStatusesResponse struct {
	Nodes []NodeStatusResponse `json:"nodes"`
	Total int                  `json:"total"`
}

// Handler handles HTTP requests for the monitoring service
type Handler struct {
	service *monitoring.Service
	logger  *logger.Logger
}

// NewHandler creates a new monitoring HTTP handler
func NewHandler(service *monitoring.Service, logger *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the monitoring routes with the provided router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/monitoring", func(r chi.Router) {
		r.Get("/nodes", response.Middleware(h.GetAllNodeStatuses))
		r.Get("/nodes/{network}/{node}", response.Middleware(h.GetNodeStatus))
		r.Post("/check", response.Middleware(h.CheckNow))
	})
}

func toResponse(c monitoring.NodeCheck) NodeStatusResponse {
	resp := NodeStatusResponse{
		Network:      c.Network,
		Node:         c.Node,
		Kind:         string(c.Kind),
		Status:       string(c.Status),
		LastChecked:  c.Timestamp.Format(time.RFC3339),
		Error:        c.Error,
		FailureCount: c.FailureCount,
		Since:        c.Since.Format(time.RFC3339),
	}
	if c.ResponseTime > 0 {
		resp.ResponseTime = c.ResponseTime.String()
	}
	return resp
}

// GetAllNodeStatuses returns the status of all monitored nodes
// @Summary List node health
// @Tags monitoring
// @Produce json
// @Param network query string false "Filter by network name"
// @Success 200 {object} ListNodeStatusesResponse
// @Router /monitoring/nodes [get]
func (h *Handler) GetAllNodeStatuses(w http.ResponseWriter, r *http.Request) error {
	checks := h.service.GetAllNodeStatuses(r.URL.Query().Get("network"))
	out := make([]NodeStatusResponse, 0, len(checks))
	for _, c := range checks {
		out = append(out, toResponse(c))
	}
	return response.WriteJSON(w, http.StatusOK, ListNodeStatusesResponse{Nodes: out, Total: len(out)})
}

// GetNodeStatus returns the status of a specific node
// @Summary Get node health
// @Tags monitoring
// @Produce json
// @Param network path string true "Network name"
// @Param node path string true "Node name"
// @Success 200 {object} NodeStatusResponse
// @Failure 404 {object} response.Response
// @Router /monitoring/nodes/{network}/{node} [get]
func (h *Handler) GetNodeStatus(w http.ResponseWriter, r *http.Request) error {
	check, err := h.service.GetNodeStatus(chi.URLParam(r, "network"), chi.URLParam(r, "node"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, toResponse(*check))
}

// CheckNow runs a health check pass and returns the fresh results
// @Summary Check node health now
// @Tags monitoring
// @Produce json
// @Success 200 {object} ListNodeStatusesResponse
// @Router /monitoring/check [post]
func (h *Handler) CheckNow(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.CheckNow(r.Context()); err != nil {
		h.logger.Error("Health check failed", "error", err)
		return err
	}
	return h.GetAllNodeStatuses(w, r)
}
