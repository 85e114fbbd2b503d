package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/common/ports"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/lnd"
	nodetypes "github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
)

// DockerNetworkName is the Docker network a regtest network's containers join
func DockerNetworkName(n *types.Network) string {
	return "regtest-" + n.ID.String()
}

func (p *CreateNetworkParams) normalize() error {
	if err := types.ValidateName(p.Name); err != nil {
		return err
	}
	if p.LightningNodes < 0 || p.LightningNodes > MaxLightningNodes {
		return errors.NewValidationError(fmt.Sprintf("lightning node count must be between 0 and %d", MaxLightningNodes), map[string]interface{}{
			"lightningNodes": p.LightningNodes,
		})
	}
	if p.AliasPrefix == "" {
		p.AliasPrefix = p.Name
	}
	if p.LndImage == "" {
		p.LndImage = lnd.DefaultImage
	}
	if p.BitcoinImage == "" {
		p.BitcoinImage = bitcoind.DefaultImage
	}
	if err := docker.ValidateImageRef(p.LndImage); err != nil {
		return err
	}
	return docker.ValidateImageRef(p.BitcoinImage)
}

// CreateNetwork registers a stopped network with one bitcoind node and the
// requested number of Lightning nodes.
func (s *NetworkService) CreateNetwork(ctx context.Context, params CreateNetworkParams) (*types.Network, error) {
	start := time.Now()
	if err := params.normalize(); err != nil {
		s.record("create", params.Name, "", start, err, nil)
		return nil, err
	}

	network, err := call(ctx, s, func(ctx context.Context) (*types.Network, error) {
		if _, exists := s.networks[params.Name]; exists {
			return nil, errors.NewConflictError("a network with this name already exists", map[string]interface{}{
				"network": params.Name,
			})
		}

		n := types.NewNetwork(params.Name, params.AliasPrefix, params.LndImage, params.BitcoinImage)
		for i := 0; i < params.LightningNodes; i++ {
			node := types.Node{
				ID:   uuid.New(),
				Name: n.NextLightningName(types.LightningImplLND),
				Kind: types.NodeKindLND,
			}
			if err := n.AddNode(node); err != nil {
				return nil, err
			}
		}
		if err := s.save(n); err != nil {
			return nil, err
		}

		s.networks[n.Name] = n
		s.observer.SetNetworkStatus(n.Name, n.Status)
		s.logger.Info("Created network", "network", n.Name, "id", n.ID, "lightningNodes", params.LightningNodes)
		return n.Clone(), nil
	})
	s.record("create", params.Name, "", start, err, map[string]interface{}{"lightningNodes": params.LightningNodes})
	return network, err
}

// StartNetwork brings up bitcoind and then every Lightning node, waiting for
// each daemon to answer RPC. Starting a running network does nothing.
func (s *NetworkService) StartNetwork(ctx context.Context, name string) (*types.Network, error) {
	start := time.Now()
	network, err := call(ctx, s, func(ctx context.Context) (*types.Network, error) {
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		if n.Status == types.NetworkStatusRunning {
			return n.Clone(), nil
		}
		if err := s.startNetwork(ctx, n); err != nil {
			return nil, err
		}
		return n.Clone(), nil
	})
	s.record("start", name, "", start, err, nil)
	return network, err
}

func (s *NetworkService) startNetwork(ctx context.Context, n *types.Network) error {
	s.setStatus(n, types.NetworkStatusStarting)
	if err := s.save(n); err != nil {
		return s.fail(n, err)
	}

	if _, err := s.rt.CreateNetwork(ctx, DockerNetworkName(n)); err != nil {
		return s.fail(n, err)
	}

	if err := s.startNode(ctx, n, n.BitcoinNode()); err != nil {
		return s.fail(n, err)
	}
	for _, node := range n.LightningNodes() {
		if err := s.startNode(ctx, n, node); err != nil {
			return s.fail(n, err)
		}
	}

	s.setStatus(n, types.NetworkStatusRunning)
	return s.save(n)
}

// startNode creates and starts one container and waits until it is ready.
// The node's ContainerID is set as soon as the container exists so a later
// stop can clean it up.
func (s *NetworkService) startNode(ctx context.Context, n *types.Network, node *types.Node) error {
	driver, err := s.driver(node.Kind)
	if err != nil {
		return err
	}

	portCfg, err := n.AllocatePorts(node.ID, node.Kind)
	if err != nil {
		return err
	}
	if busy := ports.Busy(portCfg.All()); len(busy) > 0 {
		s.logger.Warn("Host ports already in use, container start may fail", "network", n.Name, "node", node.Name, "ports", busy)
	}

	params := nodetypes.StartParams{
		Network:       n,
		Node:          *node,
		DockerNetwork: DockerNetworkName(n),
		Ports:         portCfg,
	}
	switch node.Kind {
	case types.NodeKindBitcoind:
		params.Image = n.BitcoinImage
	case types.NodeKindLND:
		backend := n.BitcoinNode()
		if backend == nil || !backend.Running() {
			return errors.NewDomainConfigError("bitcoin node not running", map[string]interface{}{"network": n.Name})
		}
		params.Image = n.LndImage
		params.Alias = fmt.Sprintf("%s-%d", n.AliasPrefix, n.LightningOrdinal(node.Name))
		params.BackendContainer = s.drivers[types.NodeKindBitcoind].ContainerName(*backend)
	}

	spec := driver.ContainerSpec(params)
	log := s.logger.With("network", n.Name, "node", node.Name, "container", spec.Name)

	if err := s.rt.EnsureImage(ctx, spec.Image); err != nil {
		return err
	}
	id, err := s.rt.CreateContainer(ctx, spec)
	if err != nil {
		return err
	}
	node.ContainerID = id
	if err := s.rt.StartContainer(ctx, id); err != nil {
		return err
	}
	log.Info("Container started, waiting for RPC", "image", spec.Image, "ports", portCfg.All())

	if err := driver.WaitReady(ctx, s.rt, id, s.cfg.Poll); err != nil {
		return err
	}
	if err := driver.AfterStart(ctx, s.rt, id); err != nil {
		return err
	}
	log.Info("Node ready")
	return nil
}

// fail flips the network to error and persists it, returning cause
func (s *NetworkService) fail(n *types.Network, cause error) error {
	s.logger.Error("Network operation failed", "network", n.Name, "status", n.Status, "error", cause)
	s.setStatus(n, types.NetworkStatusError)
	if err := s.save(n); err != nil {
		s.logger.Error("Failed to persist error status", "network", n.Name, "error", err)
	}
	return cause
}

// StopNetwork stops and removes the Lightning containers, then bitcoind, then
// the Docker network. Stopping a stopped network does nothing.
func (s *NetworkService) StopNetwork(ctx context.Context, name string) (*types.Network, error) {
	start := time.Now()
	network, err := call(ctx, s, func(ctx context.Context) (*types.Network, error) {
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		if n.Status == types.NetworkStatusStopped {
			return n.Clone(), nil
		}
		if err := s.stopNetwork(ctx, n); err != nil {
			return nil, err
		}
		return n.Clone(), nil
	})
	s.record("stop", name, "", start, err, nil)
	return network, err
}

func (s *NetworkService) stopNetwork(ctx context.Context, n *types.Network) error {
	s.setStatus(n, types.NetworkStatusStopping)
	if err := s.save(n); err != nil {
		return s.fail(n, err)
	}

	for _, node := range n.LightningNodes() {
		if err := s.stopNode(ctx, n, node); err != nil {
			return s.fail(n, err)
		}
	}
	if btc := n.BitcoinNode(); btc != nil {
		if err := s.stopNode(ctx, n, btc); err != nil {
			return s.fail(n, err)
		}
	}

	if err := s.rt.RemoveNetwork(ctx, DockerNetworkName(n)); err != nil {
		s.logger.Warn("Failed to remove Docker network", "network", n.Name, "error", err)
	}

	s.setStatus(n, types.NetworkStatusStopped)
	return s.save(n)
}

// stopNode stops and removes a node's container. A container that is already
// gone counts as stopped.
func (s *NetworkService) stopNode(ctx context.Context, n *types.Network, node *types.Node) error {
	if node.ContainerID == "" {
		return nil
	}
	log := s.logger.With("network", n.Name, "node", node.Name, "container", node.ContainerID)

	if err := s.rt.StopContainer(ctx, node.ContainerID, s.cfg.StopGrace); err != nil {
		if !errors.IsType(err, errors.NotFoundError) {
			return err
		}
		log.Debug("Container already gone")
	}
	if err := s.rt.RemoveContainer(ctx, node.ContainerID, true); err != nil && !errors.IsType(err, errors.NotFoundError) {
		return err
	}
	node.ContainerID = ""
	log.Info("Container removed")
	return nil
}

// DeleteNetwork stops a network if needed and forgets it. Deleting an unknown
// network does nothing.
func (s *NetworkService) DeleteNetwork(ctx context.Context, name string) error {
	start := time.Now()
	err := s.submit(ctx, func(ctx context.Context) error {
		n, ok := s.networks[name]
		if !ok {
			return nil
		}
		if n.Status != types.NetworkStatusStopped {
			if err := s.stopNetwork(ctx, n); err != nil {
				return err
			}
		}
		if err := s.store.Delete(n.ID); err != nil {
			return err
		}
		delete(s.networks, name)
		s.observer.ForgetNetwork(name)
		s.logger.Info("Deleted network", "network", name, "id", n.ID)
		return nil
	})
	s.record("delete", name, "", start, err, nil)
	return err
}

// AddLightningNode appends a Lightning node named after its implementation.
// On a running network the node is started right away.
func (s *NetworkService) AddLightningNode(ctx context.Context, name string, impl types.LightningImpl) (*types.Node, error) {
	start := time.Now()
	node, err := call(ctx, s, func(ctx context.Context) (*types.Node, error) {
		n, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		node := types.Node{
			ID:   uuid.New(),
			Name: n.NextLightningName(impl),
			Kind: impl.Kind(),
		}
		if err := n.AddNode(node); err != nil {
			return nil, err
		}
		added, _ := n.FindNode(node.Name)

		var startErr error
		if n.Status == types.NetworkStatusRunning {
			startErr = s.startNode(ctx, n, added)
		}
		if err := s.save(n); err != nil {
			return nil, err
		}
		if startErr != nil {
			return nil, startErr
		}
		s.logger.Info("Added node", "network", n.Name, "node", added.Name, "started", added.Running())
		out := *added
		return &out, nil
	})
	nodeName := ""
	if node != nil {
		nodeName = node.Name
	}
	s.record("add_node", name, nodeName, start, err, map[string]interface{}{"implementation": string(impl)})
	return node, err
}

// DeleteNode removes a Lightning node, stopping its container first. The
// bitcoind node cannot be deleted.
func (s *NetworkService) DeleteNode(ctx context.Context, name, nodeName string) error {
	start := time.Now()
	err := s.submit(ctx, func(ctx context.Context) error {
		n, err := s.lookup(name)
		if err != nil {
			return err
		}
		node, ok := n.FindNode(nodeName)
		if !ok {
			return errors.NewNotFoundError("node not found", map[string]interface{}{"network": name, "node": nodeName})
		}
		if node.Kind == types.NodeKindBitcoind {
			return errors.NewDomainConfigError("Cannot delete Bitcoin node. Delete the entire network instead.", map[string]interface{}{
				"network": name,
				"node":    nodeName,
			})
		}
		if err := s.stopNode(ctx, n, node); err != nil {
			return err
		}
		n.RemoveNode(nodeName)
		if err := s.save(n); err != nil {
			return err
		}
		s.logger.Info("Deleted node", "network", name, "node", nodeName)
		return nil
	})
	s.record("delete_node", name, nodeName, start, err, nil)
	return err
}
