package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/monitoring"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

type fakeProber struct {
	networks []*types.Network
	failing  map[string]bool
}

func (p *fakeProber) ListNetworks(ctx context.Context) ([]*types.Network, error) {
	return p.networks, nil
}

func (p *fakeProber) PingNode(ctx context.Context, network, node string) error {
	if p.failing[node] {
		return errors.NewRuntimeError("command failed in container", nil, nil)
	}
	return nil
}

func newRouter(t *testing.T) (*chi.Mux, *monitoring.Service) {
	t.Helper()
	n := types.NewNetwork("alice", "", "", "")
	n.Status = types.NetworkStatusRunning
	n.Nodes[0].ContainerID = "btc"
	prober := &fakeProber{networks: []*types.Network{n}, failing: map[string]bool{}}

	svc := monitoring.NewService(monitoring.DefaultConfig(), prober, logger.NewNop())
	r := chi.NewRouter()
	NewHandler(svc, logger.NewNop()).RegisterRoutes(r)
	return r, svc
}

func TestCheckAndList(t *testing.T) {
	r, _ := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/monitoring/nodes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var empty ListNodeStatusesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&empty))
	assert.Zero(t, empty.Total)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/monitoring/check", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list ListNodeStatusesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "alice", list.Nodes[0].Network)
	assert.Equal(t, types.BitcoinNodeName, list.Nodes[0].Node)
	assert.Equal(t, "up", list.Nodes[0].Status)
	assert.Equal(t, "bitcoind", list.Nodes[0].Kind)
}

func TestGetNodeStatus(t *testing.T) {
	r, svc := newRouter(t)
	require.NoError(t, svc.CheckNow(context.Background()))

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "monitored", path: "/monitoring/nodes/alice/bitcoin-1", want: http.StatusOK},
		{name: "unknown node", path: "/monitoring/nodes/alice/lnd-7", want: http.StatusNotFound},
		{name: "unknown network", path: "/monitoring/nodes/bob/bitcoin-1", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
