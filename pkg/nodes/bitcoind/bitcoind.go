package bitcoind

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

// DefaultImage is used when a network does not pin one
const DefaultImage = "polarlightning/bitcoind:28.0"

// Versions lists the images known to work, newest first
var Versions = []string{
	"polarlightning/bitcoind:28.0",
	"polarlightning/bitcoind:27.0",
	"polarlightning/bitcoind:26.0",
}

// Driver runs Bitcoin Core nodes
type Driver struct {
	logger *logger.Logger
}

var _ types.Driver = (*Driver)(nil)

func NewDriver(logger *logger.Logger) *Driver {
	return &Driver{logger: logger.Named("bitcoind")}
}

func (d *Driver) Kind() nettypes.NodeKind {
	return nettypes.NodeKindBitcoind
}

func (d *Driver) ContainerName(node nettypes.Node) string {
	return fmt.Sprintf("regtest-btc-%s", node.ID)
}

func (d *Driver) PeerHost(node nettypes.Node) string {
	return fmt.Sprintf("%s:%d", d.ContainerName(node), nettypes.BitcoindP2PPort)
}

// Command is the bitcoind command line used inside the container
func Command() []string {
	return []string{
		"bitcoind",
		"-regtest",
		"-server",
		"-rpcuser=" + RPCUser,
		"-rpcpassword=" + RPCPassword,
		"-rpcallowip=0.0.0.0/0",
		"-rpcbind=0.0.0.0",
		fmt.Sprintf("-zmqpubrawblock=tcp://0.0.0.0:%d", nettypes.BitcoindZMQBlockPort),
		fmt.Sprintf("-zmqpubrawtx=tcp://0.0.0.0:%d", nettypes.BitcoindZMQTxPort),
		"-fallbackfee=0.00001",
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
		Cmd:     Command(),
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
	return utils.WaitFor(ctx, poll, "bitcoind RPC readiness", func(ctx context.Context) error {
		return d.Ping(ctx, rt, containerID)
	})
}

// AfterStart creates the default wallet. Recent Core versions start without
// one. createwallet errors never fail the start; only an existing wallet is
// expected, anything else is logged as a warning.
func (d *Driver) AfterStart(ctx context.Context, rt docker.Runtime, containerID string) error {
	client := NewClientForContainer(rt, containerID)
	err := client.CreateWallet(ctx, DefaultWallet)
	switch {
	case err == nil:
	case walletExists(err):
		d.logger.Debug("Default wallet already exists", "container", containerID)
	default:
		d.logger.Warn("Failed to create default wallet", "container", containerID, "error", err)
	}
	return nil
}

func walletExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "already loaded")
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
	chain, err := client.GetBlockchainInfo(ctx)
	if err != nil {
		return nil, err
	}
	netInfo, err := client.GetNetworkInfo(ctx)
	if err != nil {
		return nil, err
	}
	btc := &types.BitcoindInfo{
		Chain:                chain.Chain,
		Blocks:               int64(chain.Blocks),
		BestBlockHash:        chain.BestBlockHash,
		Difficulty:           chain.Difficulty,
		InitialBlockDownload: chain.InitialBlockDownload,
		Version:              netInfo.Version,
		Subversion:           netInfo.Subversion,
		Connections:          netInfo.Connections,
	}
	if balance, err := client.GetBalance(ctx); err != nil {
		d.logger.Warn("Failed to read bitcoind balance", "node", node.Name, "error", err)
	} else {
		btc.Balance = balance
	}

	if inspected, err := rt.InspectContainer(ctx, node.ContainerID); err != nil {
		d.logger.Warn("Failed to inspect bitcoind container", "node", node.Name, "error", err)
	} else {
		btc.Endpoints = endpoints(inspected.Ports)
	}

	info.Bitcoind = btc
	return info, nil
}

func endpoints(bindings map[int]int) map[string]string {
	out := map[string]string{}
	named := map[string]int{
		"rpc":      nettypes.BitcoindRPCPort,
		"p2p":      nettypes.BitcoindP2PPort,
		"zmqBlock": nettypes.BitcoindZMQBlockPort,
		"zmqTx":    nettypes.BitcoindZMQTxPort,
	}
	for key, containerPort := range named {
		if host, ok := bindings[containerPort]; ok {
			out[key] = "127.0.0.1:" + strconv.Itoa(host)
		}
	}
	return out
}
