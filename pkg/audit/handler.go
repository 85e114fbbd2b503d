package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/http/response"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

// Handler serves the activity journal over HTTP
type Handler struct {
	service *AuditService
	logger  *logger.Logger
}

// NewHandler creates a new audit handler
func NewHandler(service *AuditService, logger *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the journal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", response.Middleware(h.ListLogs))
}

// ListLogs returns a page of journal entries
// @Summary List activity history
// @Tags history
// @Produce json
// @Param network query string false "Filter by network name"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20)"
// @Success 200 {object} ListLogsResponse
// @Router /history [get]
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) error {
	network := chi.URLParam(r, "name")
	if network == "" {
		network = r.URL.Query().Get("network")
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(r, "page_size", 20)
	if err != nil {
		return err
	}

	logs, err := h.service.ListLogs(r.Context(), network, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list activity logs", "error", err)
		return errors.NewPersistenceError("failed to list activity logs", err, nil)
	}
	return response.WriteJSON(w, http.StatusOK, logs)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.NewValidationError("invalid "+key, map[string]interface{}{key: raw})
	}
	return v, nil
}
