package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/automine"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	apihttp "github.com/nully0x/bitcoin-regtest-tui/pkg/http"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/http/response"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/service"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/lnd"
)

// HistoryLister pages through the activity journal
type HistoryLister interface {
	ListLogs(ctx context.Context, network string, page, pageSize int) (*audit.ListLogsResponse, error)
}

// AutoMiner manages per-network mining schedules
type AutoMiner interface {
	Enable(network, spec string, blocks int) (*automine.Schedule, error)
	Disable(network string) bool
	Get(network string) (automine.Schedule, bool)
}

// Handler handles HTTP requests for network operations
type Handler struct {
	networkService *service.NetworkService
	history        HistoryLister
	autoMiner      AutoMiner
	validate       *validator.Validate
	logger         *logger.Logger
}

// Option configures optional handler dependencies
type Option func(*Handler)

// WithHistory serves /networks/{name}/history from the journal
func WithHistory(history HistoryLister) Option {
	return func(h *Handler) { h.history = history }
}

// WithAutoMiner serves /networks/{name}/automine
func WithAutoMiner(autoMiner AutoMiner) Option {
	return func(h *Handler) { h.autoMiner = autoMiner }
}

// NewHandler creates a new network handler
func NewHandler(networkService *service.NetworkService, logger *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		networkService: networkService,
		validate:       validator.New(),
		logger:         logger.Named("api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the network routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/versions", response.Middleware(h.ListVersions))

	r.Route("/networks", func(r chi.Router) {
		r.Use(apihttp.ResourceMiddleware("networks", h.logger))

		r.Get("/", response.Middleware(h.ListNetworks))
		r.Post("/", response.Middleware(h.CreateNetwork))
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", response.Middleware(h.GetNetwork))
			r.Delete("/", response.Middleware(h.DeleteNetwork))
			r.Post("/start", response.Middleware(h.StartNetwork))
			r.Post("/stop", response.Middleware(h.StopNetwork))

			r.Post("/nodes", response.Middleware(h.AddNode))
			r.Get("/nodes/{node}", response.Middleware(h.GetNode))
			r.Delete("/nodes/{node}", response.Middleware(h.DeleteNode))
			r.Get("/nodes/{node}/logs", response.Middleware(h.NodeLogs))
			r.Get("/nodes/{node}/channels", response.Middleware(h.ListChannels))

			r.Post("/mine", response.Middleware(h.MineBlocks))
			r.Post("/fund", response.Middleware(h.FundWallet))
			r.Post("/channels", response.Middleware(h.OpenChannel))
			r.Post("/channels/close", response.Middleware(h.CloseChannel))
			r.Post("/payments", response.Middleware(h.SendPayment))
			r.Post("/sync/graph", response.Middleware(h.SyncGraph))
			r.Post("/sync/chain", response.Middleware(h.SyncChain))

			r.Get("/history", response.Middleware(h.History))
			r.Get("/automine", response.Middleware(h.GetAutoMine))
			r.Post("/automine", response.Middleware(h.EnableAutoMine))
			r.Delete("/automine", response.Middleware(h.DisableAutoMine))
		})
	})
}

// decode reads a JSON body into req and validates it
func (h *Handler) decode(r *http.Request, req interface{}) error {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		return errors.NewValidationError("invalid request body", map[string]interface{}{
			"detail": err.Error(),
			"code":   "INVALID_REQUEST_BODY",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		validationErrors := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, err := range verrs {
				validationErrors[err.Field()] = err.Tag()
			}
		}
		return errors.NewValidationError("validation failed", map[string]interface{}{
			"detail": "Request validation failed",
			"code":   "VALIDATION_ERROR",
			"errors": validationErrors,
		})
	}
	return nil
}

// @Summary List networks
// @Tags networks
// @Produce json
// @Success 200 {object} ListNetworksResponse
// @Router /networks [get]
func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) error {
	networks, err := h.networkService.ListNetworks(r.Context())
	if err != nil {
		return err
	}
	resp := ListNetworksResponse{
		Networks: make([]NetworkResponse, len(networks)),
		Total:    len(networks),
	}
	for i, n := range networks {
		resp.Networks[i] = mapNetworkToResponse(n)
	}
	return response.WriteJSON(w, http.StatusOK, resp)
}

// @Summary Create a network
// @Tags networks
// @Accept json
// @Produce json
// @Param request body CreateNetworkRequest true "Network creation request"
// @Success 201 {object} NetworkResponse
// @Failure 400 {object} response.Response "Validation error"
// @Failure 409 {object} response.Response "Network already exists"
// @Router /networks [post]
func (h *Handler) CreateNetwork(w http.ResponseWriter, r *http.Request) error {
	var req CreateNetworkRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	n, err := h.networkService.CreateNetwork(r.Context(), service.CreateNetworkParams{
		Name:           req.Name,
		LightningNodes: req.LightningNodes,
		AliasPrefix:    req.AliasPrefix,
		LndImage:       req.LndImage,
		BitcoinImage:   req.BitcoinImage,
	})
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusCreated, mapNetworkToResponse(n))
}

// @Summary Get a network
// @Tags networks
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} NetworkResponse
// @Failure 404 {object} response.Response "Network not found"
// @Router /networks/{name} [get]
func (h *Handler) GetNetwork(w http.ResponseWriter, r *http.Request) error {
	n, err := h.networkService.GetNetwork(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, mapNetworkToResponse(n))
}

// @Summary Delete a network
// @Tags networks
// @Param name path string true "Network name"
// @Success 204
// @Router /networks/{name} [delete]
func (h *Handler) DeleteNetwork(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "name")
	if err := h.networkService.DeleteNetwork(r.Context(), name); err != nil {
		return err
	}
	if h.autoMiner != nil {
		h.autoMiner.Disable(name)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// @Summary Start a network
// @Tags networks
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} NetworkResponse
// @Failure 502 {object} response.Response "Container runtime error"
// @Failure 504 {object} response.Response "Node did not become ready"
// @Router /networks/{name}/start [post]
func (h *Handler) StartNetwork(w http.ResponseWriter, r *http.Request) error {
	n, err := h.networkService.StartNetwork(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, mapNetworkToResponse(n))
}

// @Summary Stop a network
// @Tags networks
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} NetworkResponse
// @Router /networks/{name}/stop [post]
func (h *Handler) StopNetwork(w http.ResponseWriter, r *http.Request) error {
	n, err := h.networkService.StopNetwork(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, mapNetworkToResponse(n))
}

// @Summary Add a Lightning node
// @Tags nodes
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body AddNodeRequest false "Node implementation"
// @Success 201 {object} NodeResponse
// @Router /networks/{name}/nodes [post]
func (h *Handler) AddNode(w http.ResponseWriter, r *http.Request) error {
	var req AddNodeRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			return err
		}
	}
	impl, err := types.ParseLightningImpl(req.Implementation)
	if err != nil {
		return err
	}

	node, err := h.networkService.AddLightningNode(r.Context(), chi.URLParam(r, "name"), impl)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusCreated, NodeResponse{
		Name:        node.Name,
		Kind:        node.Kind,
		Running:     node.Running(),
		ContainerID: node.ContainerID,
	})
}

// @Summary Get node info
// @Tags nodes
// @Produce json
// @Param name path string true "Network name"
// @Param node path string true "Node name"
// @Success 200 {object} nodetypes.NodeInfo
// @Router /networks/{name}/nodes/{node} [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) error {
	info, err := h.networkService.NodeInfo(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "node"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, info)
}

// @Summary Delete a Lightning node
// @Tags nodes
// @Param name path string true "Network name"
// @Param node path string true "Node name"
// @Success 204
// @Failure 422 {object} response.Response "The bitcoin node cannot be deleted"
// @Router /networks/{name}/nodes/{node} [delete]
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) error {
	if err := h.networkService.DeleteNode(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "node")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// @Summary Get node logs
// @Tags nodes
// @Produce json
// @Param name path string true "Network name"
// @Param node path string true "Node name"
// @Param tail query int false "Number of lines (default: 100)"
// @Success 200 {object} LogsResponse
// @Router /networks/{name}/nodes/{node}/logs [get]
func (h *Handler) NodeLogs(w http.ResponseWriter, r *http.Request) error {
	tail := 100
	if raw := r.URL.Query().Get("tail"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return errors.NewValidationError("invalid tail parameter", map[string]interface{}{"tail": raw})
		}
		tail = v
	}

	nodeName := chi.URLParam(r, "node")
	logs, err := h.networkService.NodeLogs(r.Context(), chi.URLParam(r, "name"), nodeName, tail)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, LogsResponse{Node: nodeName, Logs: logs})
}

// @Summary List channels of a Lightning node
// @Tags channels
// @Produce json
// @Param name path string true "Network name"
// @Param node path string true "Node name"
// @Success 200 {array} nodetypes.ChannelInfo
// @Router /networks/{name}/nodes/{node}/channels [get]
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) error {
	channels, err := h.networkService.ListChannels(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "node"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, channels)
}

// @Summary Mine blocks
// @Tags chain
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body MineBlocksRequest true "Block count"
// @Success 200 {object} MineBlocksResponse
// @Router /networks/{name}/mine [post]
func (h *Handler) MineBlocks(w http.ResponseWriter, r *http.Request) error {
	var req MineBlocksRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	hashes, err := h.networkService.MineBlocks(r.Context(), chi.URLParam(r, "name"), req.Blocks)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, MineBlocksResponse{Hashes: hashes})
}

// @Summary Fund a Lightning wallet
// @Tags chain
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body FundWalletRequest true "Funding request"
// @Success 200 {object} TxResponse
// @Failure 422 {object} response.Response "Insufficient balance"
// @Router /networks/{name}/fund [post]
func (h *Handler) FundWallet(w http.ResponseWriter, r *http.Request) error {
	var req FundWalletRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	amount, err := btcutil.NewAmount(req.Amount)
	if err != nil {
		return errors.NewValidationError("invalid amount", map[string]interface{}{"amount": req.Amount})
	}

	txid, err := h.networkService.FundWallet(r.Context(), chi.URLParam(r, "name"), req.Node, amount, req.AutoMine)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, TxResponse{TxID: txid})
}

// @Summary Open a channel
// @Tags channels
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body OpenChannelRequest true "Channel request"
// @Success 201 {object} TxResponse
// @Router /networks/{name}/channels [post]
func (h *Handler) OpenChannel(w http.ResponseWriter, r *http.Request) error {
	var req OpenChannelRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	txid, err := h.networkService.OpenChannel(r.Context(), chi.URLParam(r, "name"), req.From, req.To, req.Capacity, req.PushAmount)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusCreated, TxResponse{TxID: txid})
}

// @Summary Close a channel
// @Tags channels
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body CloseChannelRequest true "Close request"
// @Success 200 {object} TxResponse
// @Router /networks/{name}/channels/close [post]
func (h *Handler) CloseChannel(w http.ResponseWriter, r *http.Request) error {
	var req CloseChannelRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	txid, err := h.networkService.CloseChannel(r.Context(), chi.URLParam(r, "name"), req.Node, req.ChannelPoint, req.Force)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, TxResponse{TxID: txid})
}

// @Summary Send a payment
// @Tags channels
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body SendPaymentRequest true "Payment request"
// @Success 200 {object} TxResponse
// @Router /networks/{name}/payments [post]
func (h *Handler) SendPayment(w http.ResponseWriter, r *http.Request) error {
	var req SendPaymentRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	hash, err := h.networkService.SendPayment(r.Context(), chi.URLParam(r, "name"), req.From, req.To, req.Amount, req.Memo)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, TxResponse{PaymentHash: hash})
}

// @Summary Connect all Lightning nodes to each other
// @Tags sync
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} SyncResponse
// @Router /networks/{name}/sync/graph [post]
func (h *Handler) SyncGraph(w http.ResponseWriter, r *http.Request) error {
	count, err := h.networkService.SyncGraph(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, SyncResponse{Count: count})
}

// @Summary Check that Lightning nodes see the chain tip
// @Tags sync
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} SyncResponse
// @Router /networks/{name}/sync/chain [post]
func (h *Handler) SyncChain(w http.ResponseWriter, r *http.Request) error {
	count, err := h.networkService.SyncChain(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, SyncResponse{Count: count})
}

// @Summary List a network's activity
// @Tags history
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} audit.ListLogsResponse
// @Router /networks/{name}/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) error {
	if h.history == nil {
		return errors.NewNotFoundError("activity history is disabled", nil)
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(r, "page_size", 20)
	if err != nil {
		return err
	}
	logs, err := h.history.ListLogs(r.Context(), chi.URLParam(r, "name"), page, pageSize)
	if err != nil {
		return errors.NewPersistenceError("failed to list activity logs", err, nil)
	}
	return response.WriteJSON(w, http.StatusOK, logs)
}

// @Summary Get the auto-mining schedule
// @Tags automine
// @Produce json
// @Param name path string true "Network name"
// @Success 200 {object} automine.Schedule
// @Router /networks/{name}/automine [get]
func (h *Handler) GetAutoMine(w http.ResponseWriter, r *http.Request) error {
	if h.autoMiner == nil {
		return errors.NewNotFoundError("auto-mining is disabled", nil)
	}
	name := chi.URLParam(r, "name")
	sched, ok := h.autoMiner.Get(name)
	if !ok {
		return errors.NewNotFoundError("no auto-mining schedule", map[string]interface{}{"network": name})
	}
	return response.WriteJSON(w, http.StatusOK, sched)
}

// @Summary Enable auto-mining
// @Tags automine
// @Accept json
// @Produce json
// @Param name path string true "Network name"
// @Param request body AutoMineRequest true "Schedule"
// @Success 200 {object} automine.Schedule
// @Router /networks/{name}/automine [post]
func (h *Handler) EnableAutoMine(w http.ResponseWriter, r *http.Request) error {
	if h.autoMiner == nil {
		return errors.NewNotFoundError("auto-mining is disabled", nil)
	}
	var req AutoMineRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	if req.Blocks == 0 {
		req.Blocks = 1
	}

	name := chi.URLParam(r, "name")
	// 404 for unknown networks rather than a schedule that removes itself
	if _, err := h.networkService.GetNetwork(r.Context(), name); err != nil {
		return err
	}
	sched, err := h.autoMiner.Enable(name, req.Schedule, req.Blocks)
	if err != nil {
		return err
	}
	return response.WriteJSON(w, http.StatusOK, sched)
}

// @Summary Disable auto-mining
// @Tags automine
// @Param name path string true "Network name"
// @Success 204
// @Router /networks/{name}/automine [delete]
func (h *Handler) DisableAutoMine(w http.ResponseWriter, r *http.Request) error {
	if h.autoMiner == nil {
		return errors.NewNotFoundError("auto-mining is disabled", nil)
	}
	name := chi.URLParam(r, "name")
	if !h.autoMiner.Disable(name) {
		return errors.NewNotFoundError("no auto-mining schedule", map[string]interface{}{"network": name})
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// @Summary List known node images
// @Tags versions
// @Produce json
// @Success 200 {object} VersionsResponse
// @Router /versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) error {
	return response.WriteJSON(w, http.StatusOK, VersionsResponse{
		Bitcoind: bitcoind.Versions,
		LND:      lnd.Versions,
	})
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
