package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/store"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/lnd"
	nodetypes "github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
)

type request struct {
	ctx context.Context
	fn  func(ctx context.Context)
}

type result[T any] struct {
	val T
	err error
}

// NetworkService orchestrates regtest networks. A single goroutine owns the
// registry and runs one request at a time; callers block until their request
// completes or their context ends.
type NetworkService struct {
	rt       docker.Runtime
	store    *store.Store
	drivers  map[types.NodeKind]nodetypes.Driver
	logger   *logger.Logger
	cfg      Config
	journal  Journal
	observer Observer

	// owned by the loop goroutine
	networks map[string]*types.Network

	requests  chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewNetworkService loads persisted networks and starts the engine loop
func NewNetworkService(rt docker.Runtime, st *store.Store, logger *logger.Logger, opts ...Option) (*NetworkService, error) {
	s := &NetworkService{
		rt:    rt,
		store: st,
		drivers: map[types.NodeKind]nodetypes.Driver{
			types.NodeKindBitcoind: bitcoind.NewDriver(logger),
			types.NodeKindLND:      lnd.NewDriver(logger),
		},
		logger:   logger.Named("engine"),
		cfg:      DefaultConfig(),
		journal:  nopJournal{},
		observer: nopObserver{},
		networks: make(map[string]*types.Network),
		requests: make(chan request),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := st.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, n := range loaded {
		if _, dup := s.networks[n.Name]; dup {
			s.logger.Warn("Skipping network with duplicate name", "network", n.Name, "id", n.ID)
			continue
		}
		s.networks[n.Name] = n
		s.observer.SetNetworkStatus(n.Name, n.Status)
	}
	s.logger.Info("Loaded networks", "count", len(s.networks), "dir", st.Dir())

	go s.loop()
	return s, nil
}

func (s *NetworkService) loop() {
	defer close(s.stopped)
	for {
		select {
		case req := <-s.requests:
			req.fn(req.ctx)
		case <-s.done:
			return
		}
	}
}

// Close stops the engine loop once the request in flight finishes
func (s *NetworkService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped
}

func call[T any](ctx context.Context, s *NetworkService, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	reply := make(chan result[T], 1)
	req := request{ctx: ctx, fn: func(ctx context.Context) {
		v, err := fn(ctx)
		reply <- result[T]{val: v, err: err}
	}}

	select {
	case s.requests <- req:
	case <-s.done:
		return zero, errors.NewInternalError("engine is closed", nil, nil)
	case <-ctx.Done():
		return zero, errors.NewTimeoutError("request cancelled while waiting for the engine", ctx.Err(), nil)
	}

	select {
	case r := <-reply:
		return r.val, r.err
	case <-ctx.Done():
		return zero, errors.NewTimeoutError("request cancelled", ctx.Err(), nil)
	}
}

func (s *NetworkService) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := call(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// record reports a finished operation to metrics and the journal
func (s *NetworkService) record(operation, network, node string, start time.Time, err error, details map[string]interface{}) {
	duration := time.Since(start)
	s.observer.ObserveOperation(operation, duration, err)

	event := audit.NewEvent(network, operation).WithNode(node)
	event.Duration = duration
	if details != nil {
		event = event.WithDetails(details)
	}
	if err != nil {
		event = event.WithError(string(errors.TypeOf(err)), err)
		s.logger.Warn("Operation failed", "operation", operation, "network", network, "node", node, "error", err)
	} else {
		s.logger.Debug("Operation finished", "operation", operation, "network", network, "node", node, "duration", duration)
	}
	s.journal.LogEventAsync(event)
}

// lookup returns the registry entry. Only call from the loop goroutine.
func (s *NetworkService) lookup(name string) (*types.Network, error) {
	n, ok := s.networks[name]
	if !ok {
		return nil, errors.NewNotFoundError("network not found", map[string]interface{}{"network": name})
	}
	return n, nil
}

func (s *NetworkService) setStatus(n *types.Network, status types.NetworkStatus) {
	s.logger.Info("Network status changed", "network", n.Name, "from", n.Status, "to", status)
	n.Status = status
	n.Touch()
	s.observer.SetNetworkStatus(n.Name, status)
}

func (s *NetworkService) save(n *types.Network) error {
	n.Touch()
	return s.store.Save(n)
}

func (s *NetworkService) driver(kind types.NodeKind) (nodetypes.Driver, error) {
	d, ok := s.drivers[kind]
	if !ok {
		return nil, errors.NewValidationError("unsupported node kind", map[string]interface{}{"kind": kind})
	}
	return d, nil
}

// ListNetworks returns a snapshot of every network, oldest first
func (s *NetworkService) ListNetworks(ctx context.Context) ([]*types.Network, error) {
	return call(ctx, s, func(ctx context.Context) ([]*types.Network, error) {
		out := make([]*types.Network, 0, len(s.networks))
		for _, n := range s.networks {
			out = append(out, n.Clone())
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].Name < out[j].Name
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		return out, nil
	})
}

// GetNetwork returns a snapshot of one network
func (s *NetworkService) GetNetwork(ctx context.Context, name string) (*types.Network, error) {
	return call(ctx, s, func(ctx context.Context) (*types.Network, error) {
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		return n.Clone(), nil
	})
}

// CheckRuntime verifies that the container runtime answers
func (s *NetworkService) CheckRuntime(ctx context.Context) error {
	if err := s.rt.Ping(ctx); err != nil {
		return errors.NewRuntimeError("container runtime is not reachable; is Docker running?", err, nil)
	}
	return nil
}
