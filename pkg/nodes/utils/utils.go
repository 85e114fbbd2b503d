package utils

import (
	"context"
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

// PollConfig bounds a readiness wait
type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultPollConfig is used when no readiness settings are configured
var DefaultPollConfig = PollConfig{
	Interval: time.Second,
	Timeout:  60 * time.Second,
}

func (p PollConfig) withDefaults() PollConfig {
	if p.Interval <= 0 {
		p.Interval = DefaultPollConfig.Interval
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultPollConfig.Timeout
	}
	return p
}

// WaitFor calls check until it returns nil. Every check runs under a
// context bounded by the timeout, so a hung check is cut off too. It gives
// up with a TIMEOUT_ERROR carrying the last check error once the timeout
// elapses, or once ctx is cancelled.
func WaitFor(ctx context.Context, cfg PollConfig, what string, check func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()
	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		lastErr := check(waitCtx)
		if lastErr == nil {
			return nil
		}

		if waitCtx.Err() == nil {
			select {
			case <-waitCtx.Done():
			case <-ticker.C:
				continue
			}
		}
		if ctx.Err() != nil {
			return errors.NewTimeoutError(what+" cancelled", ctx.Err(), map[string]interface{}{
				"attempts": attempts,
			})
		}
		return errors.NewTimeoutError(what+" timed out", lastErr, map[string]interface{}{
			"timeout":  cfg.Timeout.String(),
			"attempts": attempts,
		})
	}
}
