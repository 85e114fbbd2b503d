package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

func TestWaitFor(t *testing.T) {
	fast := PollConfig{Interval: time.Millisecond, Timeout: 200 * time.Millisecond}

	tests := []struct {
		name      string
		readyOn   int
		cfg       PollConfig
		wantErr   bool
		wantCalls int
	}{
		{name: "ready immediately", readyOn: 1, cfg: fast, wantCalls: 1},
		{name: "ready after retries", readyOn: 4, cfg: fast, wantCalls: 4},
		{name: "never ready", readyOn: -1, cfg: PollConfig{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WaitFor(context.Background(), tt.cfg, "test readiness", func(ctx context.Context) error {
				calls++
				if tt.readyOn > 0 && calls >= tt.readyOn {
					return nil
				}
				return fmt.Errorf("not yet")
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.TimeoutError))
				assert.Contains(t, err.Error(), "not yet")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestWaitForContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, PollConfig{Interval: time.Hour, Timeout: time.Hour}, "cancelled wait", func(ctx context.Context) error {
		return fmt.Errorf("not yet")
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TimeoutError))
}

func TestWaitForCutsOffHungCheck(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := PollConfig{Interval: time.Millisecond, Timeout: 50 * time.Millisecond}
	start := time.Now()
	err := WaitFor(parent, cfg, "hung readiness", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TimeoutError))
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, elapsed, time.Second)
	assert.NoError(t, parent.Err())
}
