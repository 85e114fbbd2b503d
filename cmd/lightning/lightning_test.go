package lightning

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodetypes "github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/types"
)

func TestOpenConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  OpenConfig
		wantErr bool
	}{
		{name: "no push", config: OpenConfig{Capacity: 250000}},
		{name: "push", config: OpenConfig{Capacity: 250000, Push: 10000}},
		{name: "zero capacity", config: OpenConfig{}, wantErr: true},
		{name: "negative push", config: OpenConfig{Capacity: 1000, Push: -1}, wantErr: true},
		{name: "push equals capacity", config: OpenConfig{Capacity: 1000, Push: 1000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintChannels(t *testing.T) {
	channels := []nodetypes.ChannelInfo{{
		ChannelPoint:  "abcd:0",
		RemotePubkey:  "02ff",
		Capacity:      btcutil.Amount(250000),
		LocalBalance:  btcutil.Amount(240000),
		RemoteBalance: btcutil.Amount(10000),
		Active:        true,
	}}

	var buf bytes.Buffer
	require.NoError(t, PrintChannels(&buf, false, channels))
	assert.Contains(t, buf.String(), "abcd:0")
	assert.Contains(t, buf.String(), "240000")

	buf.Reset()
	require.NoError(t, PrintChannels(&buf, true, channels))
	assert.Contains(t, buf.String(), `"channelPoint": "abcd:0"`)
}
