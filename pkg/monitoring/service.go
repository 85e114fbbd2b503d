package monitoring

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

// Prober is the part of the engine the monitor checks nodes through
type Prober interface {
	ListNetworks(ctx context.Context) ([]*types.Network, error)
	PingNode(ctx context.Context, network, node string) error
}

// Journal receives node down and recovery events
type Journal interface {
	LogEventAsync(event audit.Event)
}

// Observer exports node health, e.g. as a Prometheus gauge
type Observer interface {
	SetNodeHealth(network, node string, up bool)
	ForgetNode(network, node string)
}

type nopJournal struct{}

func (nopJournal) LogEventAsync(audit.Event) {}

type nopObserver struct{}

func (nopObserver) SetNodeHealth(string, string, bool) {}
func (nopObserver) ForgetNode(string, string)          {}

type nodeKey struct {
	network string
	node    string
}

// Service periodically pings every node of every running network
type Service struct {
	config   Config
	prober   Prober
	journal  Journal
	observer Observer
	logger   *logger.Logger

	nodes            map[nodeKey]*Node
	nodesMutex       sync.RWMutex
	lastCheckResults map[nodeKey]*NodeCheck
	resultsMutex     sync.RWMutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type Option func(*Service)

func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates a new monitoring service
func NewService(config Config, prober Prober, logger *logger.Logger, opts ...Option) *Service {
	s := &Service{
		config:           config.withDefaults(),
		prober:           prober,
		journal:          nopJournal{},
		observer:         nopObserver{},
		logger:           logger.Named("monitoring"),
		nodes:            make(map[nodeKey]*Node),
		lastCheckResults: make(map[nodeKey]*NodeCheck),
		stopChan:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins monitoring in the background until Stop or ctx ends
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)
}

// Stop stops monitoring and waits for the check in flight
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		if err := s.CheckNow(ctx); err != nil {
			s.logger.Warn("Node health check failed", "error", err)
		}
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CheckNow refreshes the monitored set from the engine and checks every
// node once.
func (s *Service) CheckNow(ctx context.Context) error {
	targets, err := s.syncTargets(ctx)
	if err != nil {
		return err
	}
	for _, node := range targets {
		s.checkNode(ctx, node)
	}
	return nil
}

// syncTargets adds nodes of running networks and drops everything else
func (s *Service) syncTargets(ctx context.Context) ([]*Node, error) {
	networks, err := s.prober.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}

	wanted := map[nodeKey]types.NodeKind{}
	for _, n := range networks {
		if n.Status != types.NetworkStatusRunning {
			continue
		}
		for _, node := range n.Nodes {
			if node.Running() {
				wanted[nodeKey{n.Name, node.Name}] = node.Kind
			}
		}
	}

	s.nodesMutex.Lock()
	var removed []nodeKey
	for key := range s.nodes {
		if _, ok := wanted[key]; !ok {
			delete(s.nodes, key)
			removed = append(removed, key)
		}
	}
	targets := make([]*Node, 0, len(wanted))
	for key, kind := range wanted {
		node, ok := s.nodes[key]
		if !ok {
			node = &Node{Network: key.network, Name: key.node, Kind: kind}
			s.nodes[key] = node
		}
		targets = append(targets, node)
	}
	s.nodesMutex.Unlock()

	s.resultsMutex.Lock()
	for _, key := range removed {
		delete(s.lastCheckResults, key)
	}
	s.resultsMutex.Unlock()
	for _, key := range removed {
		s.observer.ForgetNode(key.network, key.node)
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Network == targets[j].Network {
			return targets[i].Name < targets[j].Name
		}
		return targets[i].Network < targets[j].Network
	})
	return targets, nil
}

func (s *Service) checkNode(ctx context.Context, node *Node) {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	err := s.prober.PingNode(checkCtx, node.Network, node.Name)
	status := NodeStatusUp
	if err != nil {
		status = NodeStatusDown
	}
	s.handleNodeCheckResult(node, status, time.Since(start), err)
}

func (s *Service) handleNodeCheckResult(node *Node, status NodeStatus, responseTime time.Duration, err error) {
	now := time.Now()

	s.nodesMutex.Lock()
	previousStatus := node.Status
	previousFailures := node.FailureCount
	downSince := node.LastStatusChange
	node.LastChecked = now
	statusChanged := previousStatus != status
	if statusChanged {
		node.LastStatusChange = now
	}
	if status == NodeStatusDown {
		node.FailureCount++
	} else {
		node.FailureCount = 0
	}
	node.Status = status
	check := &NodeCheck{
		Network:      node.Network,
		Node:         node.Name,
		Kind:         node.Kind,
		Status:       status,
		ResponseTime: responseTime,
		FailureCount: node.FailureCount,
		Since:        node.LastStatusChange,
		Timestamp:    now,
	}
	failures := node.FailureCount
	s.nodesMutex.Unlock()

	if err != nil {
		check.Error = err.Error()
	}
	s.resultsMutex.Lock()
	s.lastCheckResults[nodeKey{node.Network, node.Name}] = check
	s.resultsMutex.Unlock()
	s.observer.SetNodeHealth(node.Network, node.Name, status == NodeStatusUp)

	switch {
	case status == NodeStatusDown && failures == s.config.FailureThreshold:
		s.logger.Warn("Node is down", "network", node.Network, "node", node.Name, "failures", failures, "error", err)
		event := audit.NewEvent(node.Network, "node_down").
			WithNode(node.Name).
			WithDetails(map[string]interface{}{"failures": failures}).
			WithError(string(errors.TypeOf(err)), err).
			WithSeverity(audit.SeverityCritical)
		s.journal.LogEventAsync(event)
	case status == NodeStatusUp && previousStatus == NodeStatusDown && previousFailures >= s.config.FailureThreshold:
		downtime := now.Sub(downSince)
		s.logger.Info("Node recovered", "network", node.Network, "node", node.Name, "downtime", downtime)
		event := audit.NewEvent(node.Network, "node_recovered").
			WithNode(node.Name).
			WithDetails(map[string]interface{}{
				"downtime":     formatDuration(downtime),
				"responseTime": responseTime.String(),
			})
		event.Duration = downtime
		s.journal.LogEventAsync(event)
	}
}

// GetNodeStatus returns the latest check of one node
func (s *Service) GetNodeStatus(network, node string) (*NodeCheck, error) {
	s.resultsMutex.RLock()
	defer s.resultsMutex.RUnlock()

	result, exists := s.lastCheckResults[nodeKey{network, node}]
	if !exists {
		return nil, errors.NewNotFoundError("node is not monitored", map[string]interface{}{
			"network": network,
			"node":    node,
		})
	}
	c := *result
	return &c, nil
}

// GetAllNodeStatuses returns the latest check of every node, optionally
// limited to one network.
func (s *Service) GetAllNodeStatuses(network string) []NodeCheck {
	s.resultsMutex.RLock()
	results := make([]NodeCheck, 0, len(s.lastCheckResults))
	for key, result := range s.lastCheckResults {
		if network != "" && key.network != network {
			continue
		}
		results = append(results, *result)
	}
	s.resultsMutex.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Network == results[j].Network {
			return results[i].Node < results[j].Node
		}
		return results[i].Network < results[j].Network
	})
	return results
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
