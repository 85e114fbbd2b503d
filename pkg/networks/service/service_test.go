package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker/dockertest"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/store"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/lnd"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

var testConfig = Config{
	Poll:      utils.PollConfig{Interval: time.Millisecond, Timeout: 2 * time.Second},
	StopGrace: time.Second,
}

type testEnv struct {
	svc   *NetworkService
	rt    *dockertest.Runtime
	store *store.Store
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	rt := dockertest.New()
	st, err := store.New(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	svc, err := NewNetworkService(rt, st, logger.NewNop(), append([]Option{WithConfig(testConfig)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return &testEnv{svc: svc, rt: rt, store: st}
}

func (e *testEnv) create(t *testing.T, name string, lightningNodes int) *types.Network {
	t.Helper()
	n, err := e.svc.CreateNetwork(context.Background(), CreateNetworkParams{Name: name, LightningNodes: lightningNodes})
	require.NoError(t, err)
	return n
}

func (e *testEnv) running(t *testing.T, name string, lightningNodes int) *types.Network {
	t.Helper()
	e.create(t, name, lightningNodes)
	n, err := e.svc.StartNetwork(context.Background(), name)
	require.NoError(t, err)
	return n
}

func (e *testEnv) lndContainer(t *testing.T, network, node string) string {
	t.Helper()
	n, err := e.svc.GetNetwork(context.Background(), network)
	require.NoError(t, err)
	found, ok := n.FindNode(node)
	require.True(t, ok, "node %s missing", node)
	return lnd.NewDriver(logger.NewNop()).ContainerName(*found)
}

type recordingJournal struct {
	mu     sync.Mutex
	events []audit.Event
}

func (j *recordingJournal) LogEventAsync(event audit.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *recordingJournal) last() audit.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.events[len(j.events)-1]
}

func TestCreateNetwork(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "existing", 0)

	tests := []struct {
		name     string
		params   CreateNetworkParams
		wantErr  errors.ErrorType
		wantLnds int
	}{
		{name: "two lightning nodes", params: CreateNetworkParams{Name: "alice", LightningNodes: 2}, wantLnds: 2},
		{name: "bitcoin only", params: CreateNetworkParams{Name: "solo"}, wantLnds: 0},
		{name: "duplicate name", params: CreateNetworkParams{Name: "existing"}, wantErr: errors.ConflictError},
		{name: "invalid name", params: CreateNetworkParams{Name: "-bad name"}, wantErr: errors.ValidationError},
		{name: "too many nodes", params: CreateNetworkParams{Name: "big", LightningNodes: MaxLightningNodes + 1}, wantErr: errors.ValidationError},
		{name: "negative nodes", params: CreateNetworkParams{Name: "neg", LightningNodes: -1}, wantErr: errors.ValidationError},
		{name: "bad image", params: CreateNetworkParams{Name: "img", LndImage: "Not A:Valid::Ref"}, wantErr: errors.ValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := env.svc.CreateNetwork(context.Background(), tt.params)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.NetworkStatusStopped, n.Status)
			assert.Len(t, n.LightningNodes(), tt.wantLnds)
			require.NotNil(t, n.BitcoinNode())
			assert.Equal(t, types.BitcoinNodeName, n.BitcoinNode().Name)
			assert.Equal(t, tt.params.Name, n.AliasPrefix)

			stored, err := env.store.Load(n.ID)
			require.NoError(t, err)
			assert.Equal(t, n.Name, stored.Name)
			assert.Len(t, stored.Nodes, tt.wantLnds+1)
		})
	}
}

func TestStartStopIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, "alice", 2)

	n, err := env.svc.StartNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusRunning, n.Status)
	assert.Equal(t, 3, env.rt.RunningCount())
	assert.True(t, env.rt.HasNetwork(DockerNetworkName(n)))
	assert.Len(t, n.Ports, 3)
	for _, node := range n.Nodes {
		assert.NotEmpty(t, node.ContainerID, node.Name)
	}
	created := env.rt.CallCount("CreateContainer")
	assert.Equal(t, 3, created)

	n, err = env.svc.StartNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusRunning, n.Status)
	assert.Equal(t, created, env.rt.CallCount("CreateContainer"))
	assert.Equal(t, 3, env.rt.CallCount("StartContainer"))

	n, err = env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusStopped, n.Status)
	assert.Equal(t, 0, env.rt.RunningCount())
	assert.Empty(t, env.rt.Containers())
	assert.False(t, env.rt.HasNetwork(DockerNetworkName(n)))
	for _, node := range n.Nodes {
		assert.Empty(t, node.ContainerID, node.Name)
	}
	stopped := env.rt.CallCount("StopContainer")

	_, err = env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, stopped, env.rt.CallCount("StopContainer"))

	stored, err := env.store.Load(n.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusStopped, stored.Status)
	// ports survive a stop so the node keeps its endpoints
	assert.Len(t, stored.Ports, 3)
}

func TestStartKeepsPortsAcrossRestarts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.running(t, "alice", 1)

	_, err := env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	second, err := env.svc.StartNetwork(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first.Ports, second.Ports)
}

func TestStartBitcoindBeforeLightning(t *testing.T) {
	env := newTestEnv(t)
	n := env.running(t, "alice", 2)

	var started []string
	for _, c := range env.rt.Calls() {
		if c.Op == "StartContainer" {
			started = append(started, c.Target)
		}
	}
	require.Len(t, started, 3)
	assert.Equal(t, "regtest-btc-"+n.BitcoinNode().ID.String(), started[0])
}

func TestStartFailureMarksNetworkError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.create(t, "alice", 1)

	env.rt.FailOn("StartContainer", "", errors.NewRuntimeError("port is already allocated", nil, nil))
	_, err := env.svc.StartNetwork(ctx, "alice")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.RuntimeError))

	got, err := env.svc.GetNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusError, got.Status)
	stored, err := env.store.Load(n.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusError, stored.Status)

	env.rt.ClearFailures()
	got, err = env.svc.StartNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusRunning, got.Status)
}

func TestStartReadinessTimeout(t *testing.T) {
	env := newTestEnv(t, WithConfig(Config{
		Poll:      utils.PollConfig{Interval: time.Millisecond, Timeout: 20 * time.Millisecond},
		StopGrace: time.Second,
	}))
	env.rt.Chain.WarmupCalls = 1 << 20
	env.create(t, "alice", 1)

	_, err := env.svc.StartNetwork(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TimeoutError), "got %v", err)

	got, err := env.svc.GetNetwork(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusError, got.Status)
	// the bitcoind container exists and can be cleaned up by a stop
	assert.NotEmpty(t, got.BitcoinNode().ContainerID)

	_, err = env.svc.StopNetwork(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, env.rt.Containers())
}

func TestStartWaitsThroughWarmup(t *testing.T) {
	env := newTestEnv(t)
	env.rt.Chain.WarmupCalls = 3
	n := env.running(t, "alice", 1)
	assert.Equal(t, types.NetworkStatusRunning, n.Status)
}

func TestStopToleratesMissingContainers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.running(t, "alice", 1)

	// container removed behind our back
	require.NoError(t, env.rt.RemoveContainer(ctx, n.LightningNodes()[0].ContainerID, true))

	got, err := env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusStopped, got.Status)
}

func TestStopSwallowsNetworkRemovalFailure(t *testing.T) {
	env := newTestEnv(t)
	env.running(t, "alice", 1)
	env.rt.FailOn("RemoveNetwork", "", fmt.Errorf("network has active endpoints"))

	got, err := env.svc.StopNetwork(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusStopped, got.Status)
}

func TestStopFailureMarksNetworkError(t *testing.T) {
	env := newTestEnv(t)
	env.running(t, "alice", 1)
	env.rt.FailOn("StopContainer", "", errors.NewRuntimeError("daemon error", nil, nil))

	_, err := env.svc.StopNetwork(context.Background(), "alice")
	require.Error(t, err)

	got, err := env.svc.GetNetwork(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, types.NetworkStatusError, got.Status)
}

func TestDeleteBitcoinNodeRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, start := range []bool{false, true} {
		t.Run(fmt.Sprintf("running=%v", start), func(t *testing.T) {
			name := fmt.Sprintf("net-%v", start)
			env.create(t, name, 1)
			if start {
				_, err := env.svc.StartNetwork(ctx, name)
				require.NoError(t, err)
			}

			err := env.svc.DeleteNode(ctx, name, types.BitcoinNodeName)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.DomainConfigError))
			assert.Contains(t, err.Error(), "Delete the entire network instead")

			got, err := env.svc.GetNetwork(ctx, name)
			require.NoError(t, err)
			assert.Len(t, got.Nodes, 2)
			assert.Equal(t, start, got.BitcoinNode().Running())
		})
	}
}

func TestDeleteLightningNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.running(t, "alice", 2)
	lnd2, _ := n.FindNode("lnd-2")
	container := env.lndContainer(t, "alice", "lnd-2")
	require.Contains(t, env.rt.Containers(), container)

	require.NoError(t, env.svc.DeleteNode(ctx, "alice", "lnd-2"))

	assert.NotContains(t, env.rt.Containers(), container)
	stored, err := env.store.Load(n.ID)
	require.NoError(t, err)
	require.Len(t, stored.LightningNodes(), 1)
	assert.Equal(t, "lnd-1", stored.LightningNodes()[0].Name)
	assert.Contains(t, stored.Ports, lnd2.ID, "ports of deleted nodes stay reserved")

	err = env.svc.DeleteNode(ctx, "alice", "lnd-2")
	assert.True(t, errors.IsType(err, errors.NotFoundError))
}

func TestAddLightningNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, "alice", 1)

	node, err := env.svc.AddLightningNode(ctx, "alice", types.LightningImplLND)
	require.NoError(t, err)
	assert.Equal(t, "lnd-2", node.Name)
	assert.False(t, node.Running())

	n, err := env.svc.StartNetwork(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, n.LightningNodes(), 2)

	node, err = env.svc.AddLightningNode(ctx, "alice", types.LightningImplLND)
	require.NoError(t, err)
	assert.Equal(t, "lnd-3", node.Name)
	assert.True(t, node.Running())
	assert.Equal(t, 4, env.rt.RunningCount())

	stored, err := env.store.Load(n.ID)
	require.NoError(t, err)
	assert.Len(t, stored.LightningNodes(), 3)
	assert.Contains(t, stored.Ports, node.ID)

	// the new node's ports sit above every existing block
	newPorts := stored.Ports[node.ID].All()
	for id, pc := range stored.Ports {
		if id == node.ID {
			continue
		}
		for _, p := range pc.All() {
			assert.Less(t, p, newPorts[0])
		}
	}

	_, err = env.svc.AddLightningNode(ctx, "missing", types.LightningImplLND)
	assert.True(t, errors.IsType(err, errors.NotFoundError))
}

func TestAddAfterDeleteGetsFreshPorts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.running(t, "alice", 2)
	old, _ := n.FindNode("lnd-2")
	oldPorts := n.Ports[old.ID].All()
	require.NotEmpty(t, oldPorts)

	require.NoError(t, env.svc.DeleteNode(ctx, "alice", "lnd-2"))
	node, err := env.svc.AddLightningNode(ctx, "alice", types.LightningImplLND)
	require.NoError(t, err)
	assert.Equal(t, "lnd-2", node.Name)
	assert.True(t, node.Running())

	n, err = env.svc.GetNetwork(ctx, "alice")
	require.NoError(t, err)
	newPorts := n.Ports[node.ID].All()
	assert.Equal(t, []int{20030, 20031, 20032}, newPorts)
	for _, p := range newPorts {
		assert.NotContains(t, oldPorts, p)
	}
}

func TestDeleteNetwork(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.running(t, "alice", 2)

	require.NoError(t, env.svc.DeleteNetwork(ctx, "alice"))
	assert.Empty(t, env.rt.Containers())

	_, err := env.store.Load(n.ID)
	assert.True(t, errors.IsType(err, errors.NotFoundError))
	_, err = env.svc.GetNetwork(ctx, "alice")
	assert.True(t, errors.IsType(err, errors.NotFoundError))

	networks, err := env.svc.ListNetworks(ctx)
	require.NoError(t, err)
	assert.Empty(t, networks)

	require.NoError(t, env.svc.DeleteNetwork(ctx, "alice"))
}

func TestNetworksReloadFromStore(t *testing.T) {
	rt := dockertest.New()
	dir := t.TempDir()
	st, err := store.New(dir, logger.NewNop())
	require.NoError(t, err)

	first, err := NewNetworkService(rt, st, logger.NewNop(), WithConfig(testConfig))
	require.NoError(t, err)
	_, err = first.CreateNetwork(context.Background(), CreateNetworkParams{Name: "alice", LightningNodes: 1})
	require.NoError(t, err)
	_, err = first.CreateNetwork(context.Background(), CreateNetworkParams{Name: "bob"})
	require.NoError(t, err)
	first.Close()

	second, err := NewNetworkService(rt, st, logger.NewNop(), WithConfig(testConfig))
	require.NoError(t, err)
	defer second.Close()

	networks, err := second.ListNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, networks, 2)
	assert.Equal(t, "alice", networks[0].Name)
	assert.Equal(t, "bob", networks[1].Name)
}

func TestClosedServiceRejectsRequests(t *testing.T) {
	env := newTestEnv(t)
	env.svc.Close()

	_, err := env.svc.ListNetworks(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.InternalError))
}

func TestCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.svc.MineBlocks(ctx, "alice", 1)
	require.Error(t, err)
}

func TestCheckRuntime(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.CheckRuntime(context.Background()))

	env.rt.SetPingError(fmt.Errorf("Cannot connect to the Docker daemon"))
	err := env.svc.CheckRuntime(context.Background())
	assert.True(t, errors.IsType(err, errors.RuntimeError))
}

func TestJournalRecordsOperations(t *testing.T) {
	journal := &recordingJournal{}
	env := newTestEnv(t, WithJournal(journal))
	env.create(t, "alice", 1)

	last := journal.last()
	assert.Equal(t, "create", last.Operation)
	assert.Equal(t, audit.EventOutcomeSuccess, last.Outcome)

	_, err := env.svc.MineBlocks(context.Background(), "alice", 1)
	require.Error(t, err)
	last = journal.last()
	assert.Equal(t, "mine_blocks", last.Operation)
	assert.Equal(t, audit.EventOutcomeFailure, last.Outcome)
	assert.Equal(t, string(errors.DomainConfigError), last.ErrorType)
}

func TestMineBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, "stopped", 0)
	env.running(t, "alice", 0)

	before := env.rt.Chain.Height()
	hashes, err := env.svc.MineBlocks(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, hashes, 10)
	assert.Equal(t, before+10, env.rt.Chain.Height())
	assert.Equal(t, btcutil.Amount(10*50*btcutil.SatoshiPerBitcoin), env.rt.Chain.Balance())

	_, err = env.svc.MineBlocks(ctx, "alice", 0)
	assert.True(t, errors.IsType(err, errors.ValidationError))

	_, err = env.svc.MineBlocks(ctx, "stopped", 1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
	assert.Contains(t, err.Error(), "not running")

	_, err = env.svc.MineBlocks(ctx, "missing", 1)
	assert.True(t, errors.IsType(err, errors.NotFoundError))
}

func TestFundWalletInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.running(t, "alice", 1)

	_, err := env.svc.MineBlocks(ctx, "alice", 1)
	require.NoError(t, err)

	_, err = env.svc.FundWallet(ctx, "alice", "lnd-1", btcutil.Amount(100*btcutil.SatoshiPerBitcoin), false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
	assert.Contains(t, err.Error(), "Have: 50.00000000 BTC, Need: 100.00000000 BTC")

	assert.Zero(t, env.rt.Chain.MempoolSize())
	assert.Equal(t, btcutil.Amount(50*btcutil.SatoshiPerBitcoin), env.rt.Chain.Balance())
}

func TestFundWalletRejectsBitcoinNode(t *testing.T) {
	env := newTestEnv(t)
	env.running(t, "alice", 1)

	_, err := env.svc.FundWallet(context.Background(), "alice", types.BitcoinNodeName, btcutil.Amount(1000), false)
	assert.True(t, errors.IsType(err, errors.ValidationError))
}

func TestFundWalletAutoMine(t *testing.T) {
	env := newTestEnv(t)
	env.rt.Chain.SyncStep = 2
	ctx := context.Background()
	env.running(t, "alice", 1)

	_, err := env.svc.MineBlocks(ctx, "alice", 101)
	require.NoError(t, err)

	txid, err := env.svc.FundWallet(ctx, "alice", "lnd-1", btcutil.Amount(btcutil.SatoshiPerBitcoin), true)
	require.NoError(t, err)
	assert.Len(t, txid, 64)
	assert.Equal(t, int64(101+FundWalletBlocks), env.rt.Chain.Height())
	assert.Equal(t, btcutil.Amount(btcutil.SatoshiPerBitcoin), env.rt.Chain.WalletBalance(env.lndContainer(t, "alice", "lnd-1")))

	info, err := env.svc.NodeInfo(ctx, "alice", "lnd-1")
	require.NoError(t, err)
	require.NotNil(t, info.Lightning)
	assert.Equal(t, env.rt.Chain.Height(), info.Lightning.BlockHeight)
}

func TestFundWalletWithoutMiningLeavesTxPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.running(t, "alice", 1)
	_, err := env.svc.MineBlocks(ctx, "alice", 101)
	require.NoError(t, err)

	_, err = env.svc.FundWallet(ctx, "alice", "lnd-1", btcutil.Amount(1000000), false)
	require.NoError(t, err)
	assert.Equal(t, 1, env.rt.Chain.MempoolSize())
	assert.Zero(t, env.rt.Chain.WalletBalance(env.lndContainer(t, "alice", "lnd-1")))
}

func TestChannelThenPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.running(t, "alice", 2)

	_, err := env.svc.MineBlocks(ctx, "alice", 101)
	require.NoError(t, err)
	_, err = env.svc.FundWallet(ctx, "alice", "lnd-1", btcutil.Amount(btcutil.SatoshiPerBitcoin), true)
	require.NoError(t, err)

	push := int64(10000)
	fundingTxid, err := env.svc.OpenChannel(ctx, "alice", "lnd-1", "lnd-2", 250000, &push)
	require.NoError(t, err)
	assert.Len(t, fundingTxid, 64)

	// pending until confirmed
	channels, err := env.svc.ListChannels(ctx, "alice", "lnd-1")
	require.NoError(t, err)
	assert.Empty(t, channels)

	_, err = env.svc.MineBlocks(ctx, "alice", 3)
	require.NoError(t, err)

	channels, err = env.svc.ListChannels(ctx, "alice", "lnd-1")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, btcutil.Amount(250000), channels[0].Capacity)
	assert.Equal(t, btcutil.Amount(240000), channels[0].LocalBalance)
	assert.Equal(t, fundingTxid+":0", channels[0].ChannelPoint)

	hash, err := env.svc.SendPayment(ctx, "alice", "lnd-1", "lnd-2", 1000, "coffee")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	channels, err = env.svc.ListChannels(ctx, "alice", "lnd-2")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, btcutil.Amount(11000), channels[0].LocalBalance)

	closingTxid, err := env.svc.CloseChannel(ctx, "alice", "lnd-2", channels[0].ChannelPoint, false)
	require.NoError(t, err)
	assert.NotEmpty(t, closingTxid)
	assert.Equal(t, btcutil.Amount(11000), env.rt.Chain.WalletBalance(env.lndContainer(t, "alice", "lnd-2")))

	// no channel left, so no route
	_, err = env.svc.SendPayment(ctx, "alice", "lnd-1", "lnd-2", 1000, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
}

func TestOpenChannelValidation(t *testing.T) {
	env := newTestEnv(t)
	env.running(t, "alice", 2)
	ctx := context.Background()
	tooMuch := int64(300000)

	tests := []struct {
		name     string
		from, to string
		capacity int64
		push     *int64
		wantErr  errors.ErrorType
	}{
		{name: "same node", from: "lnd-1", to: "lnd-1", capacity: 100000, wantErr: errors.ValidationError},
		{name: "zero capacity", from: "lnd-1", to: "lnd-2", capacity: 0, wantErr: errors.ValidationError},
		{name: "push above capacity", from: "lnd-1", to: "lnd-2", capacity: 250000, push: &tooMuch, wantErr: errors.ValidationError},
		{name: "bitcoin node", from: "lnd-1", to: types.BitcoinNodeName, capacity: 100000, wantErr: errors.ValidationError},
		{name: "unknown node", from: "lnd-1", to: "lnd-9", capacity: 100000, wantErr: errors.NotFoundError},
		{name: "unfunded wallet", from: "lnd-1", to: "lnd-2", capacity: 100000, wantErr: errors.RuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.OpenChannel(ctx, "alice", tt.from, tt.to, tt.capacity, tt.push)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSyncGraph(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.running(t, "alice", 3)
	env.running(t, "solo", 1)

	count, err := env.svc.SyncGraph(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	for _, node := range []string{"lnd-1", "lnd-2", "lnd-3"} {
		assert.Len(t, env.rt.Chain.Peers(env.lndContainer(t, "alice", node)), 2, node)
	}

	// already connected peers are not an error
	count, err = env.svc.SyncGraph(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = env.svc.SyncGraph(ctx, "solo")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSyncGraphStoppedNetwork(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "alice", 2)

	_, err := env.svc.SyncGraph(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
}

func TestSyncChain(t *testing.T) {
	tests := []struct {
		name     string
		syncStep int64
		want     int
	}{
		{name: "all synced", syncStep: 0, want: 2},
		{name: "lagging", syncStep: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.rt.Chain.SyncStep = tt.syncStep
			ctx := context.Background()
			env.running(t, "alice", 2)
			_, err := env.svc.MineBlocks(ctx, "alice", 5)
			require.NoError(t, err)

			synced, err := env.svc.SyncChain(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, synced)
		})
	}
}

func TestSyncChainSkipsStoppedNodes(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "alice", 2)

	synced, err := env.svc.SyncChain(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, synced)
}

func TestNodeInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	n := env.running(t, "alice", 1)
	_, err := env.svc.MineBlocks(ctx, "alice", 3)
	require.NoError(t, err)

	info, err := env.svc.NodeInfo(ctx, "alice", types.BitcoinNodeName)
	require.NoError(t, err)
	require.NotNil(t, info.Bitcoind)
	assert.Nil(t, info.Lightning)
	assert.True(t, info.Running)
	assert.Equal(t, "regtest", info.Bitcoind.Chain)
	assert.EqualValues(t, 3, info.Bitcoind.Blocks)
	btcPorts := n.Ports[n.BitcoinNode().ID]
	assert.Equal(t, fmt.Sprintf("127.0.0.1:%d", btcPorts.Bitcoind.RPC), info.Bitcoind.Endpoints["rpc"])

	info, err = env.svc.NodeInfo(ctx, "alice", "lnd-1")
	require.NoError(t, err)
	require.NotNil(t, info.Lightning)
	assert.Equal(t, "alice-1", info.Lightning.Alias)
	assert.True(t, info.Lightning.SyncedToChain)
	lndPorts := n.Ports[n.LightningNodes()[0].ID]
	assert.Equal(t, fmt.Sprintf("https://127.0.0.1:%d", lndPorts.LND.REST), info.Lightning.Endpoints["rest"])

	_, err = env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	info, err = env.svc.NodeInfo(ctx, "alice", "lnd-1")
	require.NoError(t, err)
	assert.False(t, info.Running)
	assert.Nil(t, info.Lightning)
}

func TestNodeLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.running(t, "alice", 1)

	logs, err := env.svc.NodeLogs(ctx, "alice", "lnd-1", 1)
	require.NoError(t, err)
	assert.Contains(t, logs, "ready")

	_, err = env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	_, err = env.svc.NodeLogs(ctx, "alice", "lnd-1", 0)
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
}

func TestPingNode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.running(t, "alice", 1)

	require.NoError(t, env.svc.PingNode(ctx, "alice", types.BitcoinNodeName))
	require.NoError(t, env.svc.PingNode(ctx, "alice", "lnd-1"))

	err := env.svc.PingNode(ctx, "alice", "lnd-9")
	assert.True(t, errors.IsType(err, errors.NotFoundError))

	env.rt.FailOn("Exec", env.lndContainer(t, "alice", "lnd-1"), fmt.Errorf("connection refused"))
	assert.Error(t, env.svc.PingNode(ctx, "alice", "lnd-1"))
	env.rt.ClearFailures()

	_, err = env.svc.StopNetwork(ctx, "alice")
	require.NoError(t, err)
	err = env.svc.PingNode(ctx, "alice", "lnd-1")
	assert.True(t, errors.IsType(err, errors.DomainConfigError))
}
