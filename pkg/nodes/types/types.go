package types

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

// BitcoindInfo is a snapshot of a full node
type BitcoindInfo struct {
	Chain                string         `json:"chain"`
	Blocks               int64          `json:"blocks"`
	BestBlockHash        string         `json:"bestBlockHash"`
	Difficulty           float64        `json:"difficulty"`
	InitialBlockDownload bool           `json:"initialBlockDownload"`
	Version              int32          `json:"version"`
	Subversion           string         `json:"subversion"`
	Connections          int32          `json:"connections"`
	Balance              btcutil.Amount `json:"balance"`
	// Endpoints holds host-reachable addresses keyed by "rpc", "p2p",
	// "zmqBlock", "zmqTx"
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

// ChannelInfo is one Lightning channel as reported by the node
type ChannelInfo struct {
	ChannelPoint  string         `json:"channelPoint"`
	RemotePubkey  string         `json:"remotePubkey"`
	Capacity      btcutil.Amount `json:"capacity"`
	LocalBalance  btcutil.Amount `json:"localBalance"`
	RemoteBalance btcutil.Amount `json:"remoteBalance"`
	Active        bool           `json:"active"`
}

// LightningInfo is a snapshot of a Lightning node
type LightningInfo struct {
	Pubkey             string         `json:"pubkey"`
	Alias              string         `json:"alias"`
	Version            string         `json:"version"`
	BlockHeight        int64          `json:"blockHeight"`
	BlockHash          string         `json:"blockHash"`
	SyncedToChain      bool           `json:"syncedToChain"`
	SyncedToGraph      bool           `json:"syncedToGraph"`
	NumActiveChannels  int            `json:"numActiveChannels"`
	NumPendingChannels int            `json:"numPendingChannels"`
	NumPeers           int            `json:"numPeers"`
	WalletBalance      btcutil.Amount `json:"walletBalance"`
	ChannelBalance     btcutil.Amount `json:"channelBalance"`
	Channels           []ChannelInfo  `json:"channels"`
	// Endpoints holds host-reachable addresses keyed by "rest", "grpc", "p2p"
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

// NodeInfo is what NodeInfo returns for any node kind. Exactly one of
// Bitcoind or Lightning is set for a running node.
type NodeInfo struct {
	Name        string            `json:"name"`
	Kind        nettypes.NodeKind `json:"kind"`
	ContainerID string            `json:"containerId,omitempty"`
	Running     bool              `json:"running"`
	Bitcoind    *BitcoindInfo     `json:"bitcoind,omitempty"`
	Lightning   *LightningInfo    `json:"lightning,omitempty"`
}

// StartParams carries what a driver needs to build a node's container
type StartParams struct {
	Network          *nettypes.Network
	Node             nettypes.Node
	DockerNetwork    string
	Image            string
	Alias            string
	BackendContainer string
	Ports            nettypes.PortConfig
}

// Driver holds the per-kind behaviour the engine needs to run a node
type Driver interface {
	Kind() nettypes.NodeKind
	// ContainerName is derived from the node ID so it survives restarts
	ContainerName(node nettypes.Node) string
	// PeerHost is the p2p address other containers on the network dial
	PeerHost(node nettypes.Node) string
	ContainerSpec(p StartParams) docker.ContainerSpec
	// Ping succeeds when the daemon answers a single RPC
	Ping(ctx context.Context, rt docker.Runtime, containerID string) error
	// WaitReady blocks until the daemon answers RPC or the poll times out
	WaitReady(ctx context.Context, rt docker.Runtime, containerID string, poll utils.PollConfig) error
	// AfterStart runs one-off setup once the daemon is ready
	AfterStart(ctx context.Context, rt docker.Runtime, containerID string) error
	Info(ctx context.Context, rt docker.Runtime, node nettypes.Node) (*NodeInfo, error)
}
