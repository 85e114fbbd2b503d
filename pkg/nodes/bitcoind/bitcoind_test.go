package bitcoind

import (
	"context"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker/dockertest"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

var testPorts = nettypes.PortConfig{
	Kind:     nettypes.NodeKindBitcoind,
	Bitcoind: &nettypes.BitcoindPorts{RPC: 18443, P2P: 19444, ZMQBlock: 28334, ZMQTx: 29335},
}

func startParams() types.StartParams {
	n := nettypes.NewNetwork("alpha", "", "", "")
	return types.StartParams{
		Network: n,
		Node:    n.Nodes[0],
		Ports:   testPorts,
	}
}

// startNode creates and starts a bitcoind container on the fake runtime
func startNode(t *testing.T, rt *dockertest.Runtime) nettypes.Node {
	t.Helper()
	ctx := context.Background()
	p := startParams()
	spec := NewDriver(logger.NewNop()).ContainerSpec(p)
	id, err := rt.CreateContainer(ctx, spec)
	require.NoError(t, err)
	require.NoError(t, rt.StartContainer(ctx, id))

	node := p.Node
	node.ContainerID = id
	return node
}

func TestContainerSpec(t *testing.T) {
	d := NewDriver(logger.NewNop())
	p := startParams()
	spec := d.ContainerSpec(p)

	assert.Equal(t, "regtest-btc-"+p.Node.ID.String(), spec.Name)
	assert.Equal(t, DefaultImage, spec.Image)
	assert.Equal(t, "bitcoind", spec.Cmd[0])
	assert.Contains(t, spec.Cmd, "-rpcuser="+RPCUser)
	assert.Contains(t, spec.Cmd, "-zmqpubrawblock=tcp://0.0.0.0:28334")
	assert.Equal(t, 18443, spec.Ports[nettypes.BitcoindRPCPort])
	assert.Equal(t, "alpha", spec.Labels["io.regtest-tui.network"])
	assert.Equal(t, nettypes.BitcoinNodeName, spec.Labels["io.regtest-tui.node"])
	assert.Equal(t, spec.Name+":18444", d.PeerHost(p.Node))

	p.Image = "polarlightning/bitcoind:27.0"
	assert.Equal(t, "polarlightning/bitcoind:27.0", d.ContainerSpec(p).Image)
}

func TestNewClientNotRunning(t *testing.T) {
	_, err := NewClient(dockertest.New(), nettypes.Node{ID: uuid.New(), Name: "bitcoin-1"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
}

func TestWaitReadyAndWallet(t *testing.T) {
	ctx := context.Background()
	rt := dockertest.New()
	rt.Chain.WarmupCalls = 3
	node := startNode(t, rt)
	d := NewDriver(logger.NewNop())

	poll := utils.PollConfig{Interval: time.Millisecond, Timeout: time.Second}
	require.NoError(t, d.WaitReady(ctx, rt, node.ContainerID, poll))

	client, err := NewClient(rt, node)
	require.NoError(t, err)

	_, err = client.GetBalance(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
	assert.Contains(t, err.Error(), "No wallet loaded")

	require.NoError(t, d.AfterStart(ctx, rt, node.ContainerID))
	require.NoError(t, d.AfterStart(ctx, rt, node.ContainerID), "existing wallet is not an error")

	balance, err := client.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(0), balance)
}

func TestAfterStartWalletErrors(t *testing.T) {
	ctx := context.Background()
	rt := dockertest.New()
	node := startNode(t, rt)

	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDriver(&logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	rt.FailOn("Exec", "regtest-btc-"+node.ID.String(), errors.NewRuntimeError("wallet directory is not writable", nil, nil))
	require.NoError(t, d.AfterStart(ctx, rt, node.ContainerID))
	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Failed to create default wallet", warnings[0].Message)

	rt.ClearFailures()
	require.NoError(t, d.AfterStart(ctx, rt, node.ContainerID))
	require.NoError(t, d.AfterStart(ctx, rt, node.ContainerID))
	assert.Len(t, logs.FilterLevelExact(zapcore.WarnLevel).All(), 1, "an existing wallet is not a warning")
	assert.Equal(t, 1, logs.FilterMessage("Default wallet already exists").Len())
}

func TestMineBlocks(t *testing.T) {
	ctx := context.Background()
	rt := dockertest.New()
	node := startNode(t, rt)
	require.NoError(t, NewDriver(logger.NewNop()).AfterStart(ctx, rt, node.ContainerID))
	client, err := NewClient(rt, node)
	require.NoError(t, err)

	_, err = client.MineBlocks(ctx, 0, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ValidationError))

	hashes, err := client.MineBlocks(ctx, 5, "")
	require.NoError(t, err)
	assert.Len(t, hashes, 5)
	assert.Equal(t, int64(5), rt.Chain.Height())

	balance, err := client.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(250*btcutil.SatoshiPerBitcoin), balance)
}

func TestSendToAddress(t *testing.T) {
	ctx := context.Background()
	rt := dockertest.New()
	node := startNode(t, rt)
	require.NoError(t, NewDriver(logger.NewNop()).AfterStart(ctx, rt, node.ContainerID))
	client, err := NewClient(rt, node)
	require.NoError(t, err)

	_, err = client.SendToAddress(ctx, "not-an-address", btcutil.SatoshiPerBitcoin)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ValidationError))

	_, err = client.MineBlocks(ctx, 1, "")
	require.NoError(t, err)
	addr, err := client.GetNewAddress(ctx)
	require.NoError(t, err)

	txid, err := client.SendToAddress(ctx, addr, btcutil.SatoshiPerBitcoin)
	require.NoError(t, err)
	assert.Len(t, txid, 64)
	assert.Equal(t, 1, rt.Chain.MempoolSize())
}

func TestFormatBTC(t *testing.T) {
	tests := []struct {
		amount btcutil.Amount
		want   string
	}{
		{amount: 0, want: "0.00000000"},
		{amount: 1, want: "0.00000001"},
		{amount: btcutil.SatoshiPerBitcoin, want: "1.00000000"},
		{amount: 150_000_000, want: "1.50000000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBTC(tt.amount))
		})
	}
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	rt := dockertest.New()
	d := NewDriver(logger.NewNop())

	stopped := startParams().Node
	info, err := d.Info(ctx, rt, stopped)
	require.NoError(t, err)
	assert.False(t, info.Running)
	assert.Nil(t, info.Bitcoind)

	node := startNode(t, rt)
	require.NoError(t, d.AfterStart(ctx, rt, node.ContainerID))
	client, err := NewClient(rt, node)
	require.NoError(t, err)
	_, err = client.MineBlocks(ctx, 3, "")
	require.NoError(t, err)

	info, err = d.Info(ctx, rt, node)
	require.NoError(t, err)
	assert.True(t, info.Running)
	require.NotNil(t, info.Bitcoind)
	assert.Equal(t, "regtest", info.Bitcoind.Chain)
	assert.Equal(t, int64(3), info.Bitcoind.Blocks)
	assert.Equal(t, btcutil.Amount(150*btcutil.SatoshiPerBitcoin), info.Bitcoind.Balance)
	assert.Equal(t, "/Satoshi:28.0.0/", info.Bitcoind.Subversion)
	assert.Equal(t, map[string]string{
		"rpc":      "127.0.0.1:18443",
		"p2p":      "127.0.0.1:19444",
		"zmqBlock": "127.0.0.1:28334",
		"zmqTx":    "127.0.0.1:29335",
	}, info.Bitcoind.Endpoints)
}
