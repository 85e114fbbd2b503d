package networks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

func TestCreateRunnerValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  CreateConfig
		wantErr bool
	}{
		{name: "named", config: CreateConfig{Name: "alice", LightningNodes: 2}},
		{name: "generated name", config: CreateConfig{LightningNodes: 0}},
		{name: "too many nodes", config: CreateConfig{Name: "big", LightningNodes: 21}, wantErr: true},
		{name: "negative nodes", config: CreateConfig{Name: "neg", LightningNodes: -1}, wantErr: true},
		{name: "bad name", config: CreateConfig{Name: "has space"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CreateRunner{Config: tt.config}
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, r.Config.Name)
		})
	}
}

func TestPrintNetwork(t *testing.T) {
	n := types.NewNetwork("alice", "alice", "lnd:1", "bitcoind:1")
	btc := n.BitcoinNode()
	n.Ports[btc.ID] = types.PortConfig{
		Kind:     types.NodeKindBitcoind,
		Bitcoind: &types.BitcoindPorts{RPC: 18443, P2P: 19444, ZMQBlock: 28334, ZMQTx: 29335},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintNetwork(&buf, false, n))
	out := buf.String()
	assert.Contains(t, out, "alice (stopped)")
	assert.Contains(t, out, "rpc=18443 p2p=19444")

	buf.Reset()
	require.NoError(t, printNetworks(&buf, false, []*types.Network{n}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "alice"))
}
