package lnd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

// DefaultImage is used when a network does not pin one
const DefaultImage = "polarlightning/lnd:0.18.5-beta"

// Versions lists the images known to work, newest first
var Versions = []string{
	"polarlightning/lnd:0.18.5-beta",
	"polarlightning/lnd:0.18.3-beta",
	"polarlightning/lnd:0.17.5-beta",
	"polarlightning/lnd:0.16.4-beta",
}

// Driver runs LND nodes against a bitcoind backend
type Driver struct {
	logger *logger.Logger
}

var _ types.Driver = (*Driver)(nil)

func NewDriver(logger *logger.Logger) *Driver {
	return &Driver{logger: logger.Named("lnd")}
}

func (d *Driver) Kind() nettypes.NodeKind {
	return nettypes.NodeKindLND
}

func (d *Driver) ContainerName(node nettypes.Node) string {
	return fmt.Sprintf("regtest-lnd-%s", node.ID)
}

// PeerHost is the address other containers on the network dial for p2p
func (d *Driver) PeerHost(node nettypes.Node) string {
	return fmt.Sprintf("%s:%d", d.ContainerName(node), nettypes.LNDP2PPort)
}

// Command is the lnd command line for a node backed by the given bitcoind
// container.
func Command(alias, backend string) []string {
	return []string{
		"lnd",
		"--noseedbackup",
		"--trickledelay=5000",
		"--alias=" + alias,
		"--debuglevel=info",
		"--bitcoin.active",
		"--bitcoin.regtest",
		"--bitcoin.node=bitcoind",
		"--bitcoind.rpchost=" + backend,
		"--bitcoind.rpcuser=" + bitcoind.RPCUser,
		"--bitcoind.rpcpass=" + bitcoind.RPCPassword,
		fmt.Sprintf("--bitcoind.zmqpubrawblock=tcp://%s:%d", backend, nettypes.BitcoindZMQBlockPort),
		fmt.Sprintf("--bitcoind.zmqpubrawtx=tcp://%s:%d", backend, nettypes.BitcoindZMQTxPort),
	}
}

func (d *Driver) ContainerSpec(p types.StartParams) docker.ContainerSpec {
	image := p.Image
	if image == "" {
		image = DefaultImage
	}
	return docker.ContainerSpec{
		Name:    d.ContainerName(p.Node),
		Image:   image,
		Cmd:     Command(p.Alias, p.BackendContainer),
		Network: p.DockerNetwork,
		Ports:   p.Ports.Bindings(),
		Labels: map[string]string{
			"io.regtest-tui.network": p.Network.Name,
			"io.regtest-tui.node":    p.Node.Name,
		},
	}
}

func (d *Driver) Ping(ctx context.Context, rt docker.Runtime, containerID string) error {
	return NewClientForContainer(rt, containerID).Ping(ctx)
}

func (d *Driver) WaitReady(ctx context.Context, rt docker.Runtime, containerID string, poll utils.PollConfig) error {
	return utils.WaitFor(ctx, poll, "lnd RPC readiness", func(ctx context.Context) error {
		return d.Ping(ctx, rt, containerID)
	})
}

func (d *Driver) AfterStart(ctx context.Context, rt docker.Runtime, containerID string) error {
	return nil
}

func (d *Driver) Info(ctx context.Context, rt docker.Runtime, node nettypes.Node) (*types.NodeInfo, error) {
	info := &types.NodeInfo{
		Name:        node.Name,
		Kind:        node.Kind,
		ContainerID: node.ContainerID,
		Running:     node.Running(),
	}
	if !node.Running() {
		return info, nil
	}

	client, err := NewClient(rt, node)
	if err != nil {
		return nil, err
	}
	getInfo, err := client.GetInfo(ctx)
	if err != nil {
		return nil, err
	}
	wallet, err := client.WalletBalance(ctx)
	if err != nil {
		return nil, err
	}
	channelBalance, err := client.ChannelBalance(ctx)
	if err != nil {
		return nil, err
	}
	channels, err := client.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	ln := &types.LightningInfo{
		Pubkey:             getInfo.IdentityPubkey,
		Alias:              getInfo.Alias,
		Version:            getInfo.Version,
		BlockHeight:        getInfo.BlockHeight,
		BlockHash:          getInfo.BlockHash,
		SyncedToChain:      getInfo.SyncedToChain,
		SyncedToGraph:      getInfo.SyncedToGraph,
		NumActiveChannels:  getInfo.NumActiveChannels,
		NumPendingChannels: getInfo.NumPendingChannels,
		NumPeers:           getInfo.NumPeers,
		WalletBalance:      wallet,
		ChannelBalance:     channelBalance,
		Channels:           channels,
	}

	if inspected, err := rt.InspectContainer(ctx, node.ContainerID); err != nil {
		d.logger.Warn("Failed to inspect lnd container", "node", node.Name, "error", err)
	} else {
		ln.Endpoints = endpoints(getInfo.IdentityPubkey, inspected.Ports)
	}

	info.Lightning = ln
	return info, nil
}

func endpoints(pubkey string, bindings map[int]int) map[string]string {
	out := map[string]string{}
	if port, ok := bindings[nettypes.LNDRESTPort]; ok {
		out["rest"] = "https://127.0.0.1:" + strconv.Itoa(port)
	}
	if port, ok := bindings[nettypes.LNDGRPCPort]; ok {
		out["grpc"] = "127.0.0.1:" + strconv.Itoa(port)
	}
	if port, ok := bindings[nettypes.LNDP2PPort]; ok {
		out["p2p"] = pubkey + "@127.0.0.1:" + strconv.Itoa(port)
	}
	return out
}
