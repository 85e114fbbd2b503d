package types

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/common/ports"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

// NetworkStatus represents the lifecycle state of a network
type NetworkStatus string

const (
	NetworkStatusStopped  NetworkStatus = "stopped"
	NetworkStatusStarting NetworkStatus = "starting"
	NetworkStatusRunning  NetworkStatus = "running"
	NetworkStatusStopping NetworkStatus = "stopping"
	NetworkStatusError    NetworkStatus = "error"
)

// NodeKind is the daemon a node runs
type NodeKind string

const (
	NodeKindBitcoind NodeKind = "bitcoind"
	NodeKindLND      NodeKind = "lnd"
)

// LightningImpl is a supported Lightning implementation
type LightningImpl string

const (
	LightningImplLND LightningImpl = "LND"
)

// ShortName is the lowercase prefix used in node names
func (l LightningImpl) ShortName() string {
	switch l {
	case LightningImplLND:
		return "lnd"
	}
	return ""
}

// Kind maps the implementation to its node kind
func (l LightningImpl) Kind() NodeKind {
	switch l {
	case LightningImplLND:
		return NodeKindLND
	}
	return ""
}

// ParseLightningImpl accepts "lnd" or "LND"
func ParseLightningImpl(s string) (LightningImpl, error) {
	switch s {
	case "lnd", "LND", "":
		return LightningImplLND, nil
	}
	return "", errors.NewValidationError("unsupported lightning implementation", map[string]interface{}{
		"implementation": s,
	})
}

// Container-side ports
const (
	BitcoindRPCPort      = 18443
	BitcoindP2PPort      = 18444
	BitcoindZMQBlockPort = 28334
	BitcoindZMQTxPort    = 28335

	LNDRESTPort = 8080
	LNDGRPCPort = 10009
	LNDP2PPort  = 9735
)

// Node is a single daemon in a network. ContainerID is empty while the node
// is not running.
type Node struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Kind        NodeKind  `json:"kind" yaml:"kind"`
	ContainerID string    `json:"containerId,omitempty" yaml:"container_id,omitempty"`
}

// Running reports whether the node has a container
func (n Node) Running() bool {
	return n.ContainerID != ""
}

type BitcoindPorts struct {
	RPC      int `json:"rpc" yaml:"rpc"`
	P2P      int `json:"p2p" yaml:"p2p"`
	ZMQBlock int `json:"zmqBlock" yaml:"zmq_block"`
	ZMQTx    int `json:"zmqTx" yaml:"zmq_tx"`
}

type LNDPorts struct {
	REST int `json:"rest" yaml:"rest"`
	GRPC int `json:"grpc" yaml:"grpc"`
	P2P  int `json:"p2p" yaml:"p2p"`
}

// PortConfig holds the host ports of one node. Exactly one of Bitcoind or
// LND is set, matching Kind.
type PortConfig struct {
	Kind     NodeKind       `json:"kind" yaml:"kind"`
	Bitcoind *BitcoindPorts `json:"bitcoind,omitempty" yaml:"bitcoind,omitempty"`
	LND      *LNDPorts      `json:"lnd,omitempty" yaml:"lnd,omitempty"`
}

// All returns every host port in the config
func (p PortConfig) All() []int {
	switch {
	case p.Bitcoind != nil:
		return []int{p.Bitcoind.RPC, p.Bitcoind.P2P, p.Bitcoind.ZMQBlock, p.Bitcoind.ZMQTx}
	case p.LND != nil:
		return []int{p.LND.REST, p.LND.GRPC, p.LND.P2P}
	}
	return nil
}

// Bindings maps container ports to host ports
func (p PortConfig) Bindings() map[int]int {
	switch {
	case p.Bitcoind != nil:
		return map[int]int{
			BitcoindRPCPort:      p.Bitcoind.RPC,
			BitcoindP2PPort:      p.Bitcoind.P2P,
			BitcoindZMQBlockPort: p.Bitcoind.ZMQBlock,
			BitcoindZMQTxPort:    p.Bitcoind.ZMQTx,
		}
	case p.LND != nil:
		return map[int]int{
			LNDRESTPort: p.LND.REST,
			LNDGRPCPort: p.LND.GRPC,
			LNDP2PPort:  p.LND.P2P,
		}
	}
	return map[int]int{}
}

func (p PortConfig) clone() PortConfig {
	c := PortConfig{Kind: p.Kind}
	if p.Bitcoind != nil {
		b := *p.Bitcoind
		c.Bitcoind = &b
	}
	if p.LND != nil {
		l := *p.LND
		c.LND = &l
	}
	return c
}

// Network is a named regtest topology: one bitcoind plus zero or more
// Lightning nodes sharing a Docker network.
type Network struct {
	ID           uuid.UUID                `json:"id" yaml:"id"`
	Name         string                   `json:"name" yaml:"name"`
	Status       NetworkStatus            `json:"status" yaml:"status"`
	Nodes        []Node                   `json:"nodes" yaml:"nodes"`
	LndImage     string                   `json:"lndImage" yaml:"lnd_image"`
	BitcoinImage string                   `json:"bitcoinImage" yaml:"bitcoin_image"`
	AliasPrefix  string                   `json:"aliasPrefix" yaml:"alias_prefix"`
	Ports        map[uuid.UUID]PortConfig `json:"ports" yaml:"ports"`
	CreatedAt    time.Time                `json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time                `json:"updatedAt" yaml:"updated_at"`
}

// BitcoinNodeName is the name of the mandatory full node
const BitcoinNodeName = "bitcoin-1"

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,62}$`)

// ValidateName checks that a network or node name is usable in container and
// file names.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return errors.NewValidationError("invalid name: use letters, digits, '.', '_' or '-' (max 63 chars)", map[string]interface{}{
			"name": name,
		})
	}
	return nil
}

// NewNetwork builds a stopped network holding only its bitcoind node.
func NewNetwork(name, aliasPrefix, lndImage, bitcoinImage string) *Network {
	now := time.Now().UTC()
	return &Network{
		ID:           uuid.New(),
		Name:         name,
		Status:       NetworkStatusStopped,
		LndImage:     lndImage,
		BitcoinImage: bitcoinImage,
		AliasPrefix:  aliasPrefix,
		Ports:        make(map[uuid.UUID]PortConfig),
		Nodes: []Node{{
			ID:   uuid.New(),
			Name: BitcoinNodeName,
			Kind: NodeKindBitcoind,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode appends a node. Names must be unique within the network.
func (n *Network) AddNode(node Node) error {
	if _, ok := n.FindNode(node.Name); ok {
		return errors.NewConflictError("node already exists", map[string]interface{}{
			"network": n.Name,
			"node":    node.Name,
		})
	}
	if node.Kind == NodeKindBitcoind && n.BitcoinNode() != nil {
		return errors.NewDomainConfigError("network already has a bitcoin node", map[string]interface{}{
			"network": n.Name,
		})
	}
	n.Nodes = append(n.Nodes, node)
	return nil
}

// FindNode returns the node with the given name
func (n *Network) FindNode(name string) (*Node, bool) {
	for i := range n.Nodes {
		if n.Nodes[i].Name == name {
			return &n.Nodes[i], true
		}
	}
	return nil, false
}

// BitcoinNode returns the network's bitcoind node, or nil
func (n *Network) BitcoinNode() *Node {
	for i := range n.Nodes {
		if n.Nodes[i].Kind == NodeKindBitcoind {
			return &n.Nodes[i]
		}
	}
	return nil
}

// LightningNodes returns pointers to the Lightning nodes in insertion order
func (n *Network) LightningNodes() []*Node {
	var out []*Node
	for i := range n.Nodes {
		if n.Nodes[i].Kind != NodeKindBitcoind {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// LightningOrdinal returns the 1-based position of a Lightning node among
// the network's Lightning nodes, or 0 if it is not one.
func (n *Network) LightningOrdinal(name string) int {
	for i, node := range n.LightningNodes() {
		if node.Name == name {
			return i + 1
		}
	}
	return 0
}

// RemoveNode deletes a node. Its port config stays in Ports so the block is
// never handed to a later node.
func (n *Network) RemoveNode(name string) (Node, bool) {
	for i := range n.Nodes {
		if n.Nodes[i].Name == name {
			removed := n.Nodes[i]
			n.Nodes = append(n.Nodes[:i], n.Nodes[i+1:]...)
			return removed, true
		}
	}
	return Node{}, false
}

// allocatedPorts returns every host port assigned in the network
func (n *Network) allocatedPorts() []int {
	var all []int
	for _, pc := range n.Ports {
		all = append(all, pc.All()...)
	}
	sort.Ints(all)
	return all
}

// AllocatePorts assigns a fresh port block to a node, or returns the block it
// already has.
func (n *Network) AllocatePorts(nodeID uuid.UUID, kind NodeKind) (PortConfig, error) {
	if pc, ok := n.Ports[nodeID]; ok {
		return pc, nil
	}
	if n.Ports == nil {
		n.Ports = make(map[uuid.UUID]PortConfig)
	}

	start := ports.NextBlockStart(n.allocatedPorts())
	var pc PortConfig
	switch kind {
	case NodeKindBitcoind:
		b := ports.Block(start, 4)
		pc = PortConfig{Kind: kind, Bitcoind: &BitcoindPorts{RPC: b[0], P2P: b[1], ZMQBlock: b[2], ZMQTx: b[3]}}
	case NodeKindLND:
		b := ports.Block(start, 3)
		pc = PortConfig{Kind: kind, LND: &LNDPorts{REST: b[0], GRPC: b[1], P2P: b[2]}}
	default:
		return PortConfig{}, errors.NewValidationError(fmt.Sprintf("unknown node kind %q", kind), nil)
	}
	n.Ports[nodeID] = pc
	return pc, nil
}

// NextLightningName returns "<short>-<count+1>", bumped until unused.
func (n *Network) NextLightningName(impl LightningImpl) string {
	count := 0
	for _, node := range n.Nodes {
		if node.Kind == impl.Kind() {
			count++
		}
	}
	for i := count + 1; ; i++ {
		name := fmt.Sprintf("%s-%d", impl.ShortName(), i)
		if _, taken := n.FindNode(name); !taken {
			return name
		}
	}
}

// Touch updates the modification timestamp
func (n *Network) Touch() {
	n.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy
func (n *Network) Clone() *Network {
	c := *n
	c.Nodes = append([]Node(nil), n.Nodes...)
	c.Ports = make(map[uuid.UUID]PortConfig, len(n.Ports))
	for id, pc := range n.Ports {
		c.Ports[id] = pc.clone()
	}
	return &c
}
