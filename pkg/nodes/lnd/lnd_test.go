package lnd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker/dockertest"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	nettypes "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/bitcoind"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

type testNet struct {
	rt      *dockertest.Runtime
	network *nettypes.Network
	btc     *bitcoind.Client
	backend string
}

func newTestNet(t *testing.T) *testNet {
	t.Helper()
	ctx := context.Background()
	rt := dockertest.New()
	n := nettypes.NewNetwork("alpha", "", "", "")
	btcDriver := bitcoind.NewDriver(logger.NewNop())

	spec := btcDriver.ContainerSpec(types.StartParams{Network: n, Node: n.Nodes[0]})
	id, err := rt.CreateContainer(ctx, spec)
	require.NoError(t, err)
	require.NoError(t, rt.StartContainer(ctx, id))
	require.NoError(t, btcDriver.AfterStart(ctx, rt, id))

	return &testNet{
		rt:      rt,
		network: n,
		btc:     bitcoind.NewClientForContainer(rt, id),
		backend: spec.Name,
	}
}

func (tn *testNet) startLND(t *testing.T, name string) (nettypes.Node, *Client) {
	t.Helper()
	ctx := context.Background()
	node := nettypes.Node{ID: uuid.New(), Name: name, Kind: nettypes.NodeKindLND}
	ports, err := tn.network.AllocatePorts(node.ID, node.Kind)
	require.NoError(t, err)

	spec := NewDriver(logger.NewNop()).ContainerSpec(types.StartParams{
		Network:          tn.network,
		Node:             node,
		Alias:            name,
		BackendContainer: tn.backend,
		Ports:            ports,
	})
	id, err := tn.rt.CreateContainer(ctx, spec)
	require.NoError(t, err)
	require.NoError(t, tn.rt.StartContainer(ctx, id))

	node.ContainerID = id
	client, err := NewClient(tn.rt, node)
	require.NoError(t, err)
	return node, client
}

// fund sends amount to the node wallet and confirms it
func (tn *testNet) fund(t *testing.T, client *Client, amount btcutil.Amount) {
	t.Helper()
	ctx := context.Background()
	_, err := tn.btc.MineBlocks(ctx, 1, "")
	require.NoError(t, err)
	addr, err := client.NewAddress(ctx)
	require.NoError(t, err)
	_, err = tn.btc.SendToAddress(ctx, addr, amount)
	require.NoError(t, err)
	_, err = tn.btc.MineBlocks(ctx, 1, "")
	require.NoError(t, err)
}

func TestContainerSpec(t *testing.T) {
	d := NewDriver(logger.NewNop())
	n := nettypes.NewNetwork("alpha", "", "", "")
	node := nettypes.Node{ID: uuid.New(), Name: "alice", Kind: nettypes.NodeKindLND}
	ports, err := n.AllocatePorts(node.ID, node.Kind)
	require.NoError(t, err)

	spec := d.ContainerSpec(types.StartParams{
		Network:          n,
		Node:             node,
		DockerNetwork:    "regtest-net",
		Alias:            "alice",
		BackendContainer: "regtest-btc-x",
		Ports:            ports,
	})

	assert.Equal(t, "regtest-lnd-"+node.ID.String(), spec.Name)
	assert.Equal(t, DefaultImage, spec.Image)
	assert.Equal(t, "regtest-net", spec.Network)
	assert.Equal(t, "lnd", spec.Cmd[0])
	assert.Contains(t, spec.Cmd, "--alias=alice")
	assert.Contains(t, spec.Cmd, "--bitcoind.rpchost=regtest-btc-x")
	assert.Contains(t, spec.Cmd, "--bitcoind.zmqpubrawblock=tcp://regtest-btc-x:28334")
	assert.Contains(t, spec.Cmd, "--bitcoind.rpcpass="+bitcoind.RPCPassword)
	assert.Equal(t, ports.LND.GRPC, spec.Ports[nettypes.LNDGRPCPort])
	assert.Equal(t, "alice", spec.Labels["io.regtest-tui.node"])
	assert.Equal(t, spec.Name+":9735", d.PeerHost(node))
}

func TestNewClientNotRunning(t *testing.T) {
	_, err := NewClient(dockertest.New(), nettypes.Node{ID: uuid.New(), Name: "alice"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
	assert.Contains(t, err.Error(), "LND node not running")
}

func TestWaitReady(t *testing.T) {
	tn := newTestNet(t)
	tn.rt.Chain.WarmupCalls = 2
	node, client := tn.startLND(t, "alice")

	poll := utils.PollConfig{Interval: time.Millisecond, Timeout: time.Second}
	require.NoError(t, NewDriver(logger.NewNop()).WaitReady(context.Background(), tn.rt, node.ContainerID, poll))

	pubkey, err := client.Pubkey(context.Background())
	require.NoError(t, err)
	assert.NoError(t, ValidatePubkey(pubkey))
}

func TestValidatePubkey(t *testing.T) {
	tests := []struct {
		name    string
		pubkey  string
		wantErr bool
	}{
		{name: "compressed key", pubkey: "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"},
		{name: "empty", pubkey: "", wantErr: true},
		{name: "not hex", pubkey: "zz", wantErr: true},
		{name: "wrong length", pubkey: "02abcd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePubkey(tt.pubkey)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ValidationError))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSplitChannelPoint(t *testing.T) {
	txid := strings.Repeat("ab", 32)
	tests := []struct {
		name      string
		point     string
		wantTxid  string
		wantIndex uint32
		wantErr   bool
	}{
		{name: "valid", point: txid + ":1", wantTxid: txid, wantIndex: 1},
		{name: "missing index", point: txid, wantErr: true},
		{name: "bad txid", point: "nothex:0", wantErr: true},
		{name: "bad index", point: txid + ":x", wantErr: true},
		{name: "negative index", point: txid + ":-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTxid, gotIndex, err := SplitChannelPoint(tt.point)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ValidationError))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTxid, gotTxid)
			assert.Equal(t, tt.wantIndex, gotIndex)
		})
	}
}

func TestChannelLifecycle(t *testing.T) {
	ctx := context.Background()
	tn := newTestNet(t)
	aliceNode, alice := tn.startLND(t, "alice")
	bobNode, bob := tn.startLND(t, "bob")
	d := NewDriver(logger.NewNop())

	tn.fund(t, alice, 2*btcutil.SatoshiPerBitcoin)
	balance, err := alice.WalletBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(2*btcutil.SatoshiPerBitcoin), balance)

	bobKey, err := bob.Pubkey(ctx)
	require.NoError(t, err)
	require.NoError(t, alice.Connect(ctx, bobKey, d.PeerHost(bobNode)))
	require.NoError(t, alice.Connect(ctx, bobKey, d.PeerHost(bobNode)), "reconnect is not an error")

	fundingTxid, err := alice.OpenChannel(ctx, bobKey, 1_000_000, 250_000)
	require.NoError(t, err)
	_, err = tn.btc.MineBlocks(ctx, 3, "")
	require.NoError(t, err)

	channels, err := alice.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, fundingTxid+":0", channels[0].ChannelPoint)
	assert.Equal(t, btcutil.Amount(1_000_000), channels[0].Capacity)
	assert.Equal(t, btcutil.Amount(750_000), channels[0].LocalBalance)
	assert.Equal(t, btcutil.Amount(250_000), channels[0].RemoteBalance)

	inv, err := bob.AddInvoice(ctx, 10_000, "coffee")
	require.NoError(t, err)
	hash, err := alice.PayInvoice(ctx, inv.PaymentRequest)
	require.NoError(t, err)
	assert.Equal(t, inv.RHash, hash)

	local, err := bob.ChannelBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(260_000), local)

	info, err := d.Info(ctx, tn.rt, aliceNode)
	require.NoError(t, err)
	require.NotNil(t, info.Lightning)
	assert.Equal(t, "alice", info.Lightning.Alias)
	assert.Equal(t, 1, info.Lightning.NumActiveChannels)
	assert.Equal(t, 1, info.Lightning.NumPeers)
	assert.True(t, strings.HasPrefix(info.Lightning.Endpoints["p2p"], info.Lightning.Pubkey+"@127.0.0.1:"))
	assert.Contains(t, info.Lightning.Endpoints["rest"], "https://127.0.0.1:")

	closingTxid, err := alice.CloseChannel(ctx, channels[0].ChannelPoint, false)
	require.NoError(t, err)
	assert.Len(t, closingTxid, 64)

	channels, err = alice.ListChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestPayInvoiceNoRoute(t *testing.T) {
	ctx := context.Background()
	tn := newTestNet(t)
	_, alice := tn.startLND(t, "alice")
	_, bob := tn.startLND(t, "bob")

	inv, err := bob.AddInvoice(ctx, 1_000, "")
	require.NoError(t, err)
	_, err = alice.PayInvoice(ctx, inv.PaymentRequest)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
}

func TestInfoStopped(t *testing.T) {
	node := nettypes.Node{ID: uuid.New(), Name: "alice", Kind: nettypes.NodeKindLND}
	info, err := NewDriver(logger.NewNop()).Info(context.Background(), dockertest.New(), node)
	require.NoError(t, err)
	assert.False(t, info.Running)
	assert.Nil(t, info.Lightning)
}
