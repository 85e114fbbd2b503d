package service

import (
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/audit"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/nodes/utils"
)

// CreateNetworkParams describes a new network
type CreateNetworkParams struct {
	Name           string
	LightningNodes int
	// AliasPrefix defaults to the network name
	AliasPrefix  string
	LndImage     string
	BitcoinImage string
}

// MaxLightningNodes caps the nodes created with a network
const MaxLightningNodes = 20

// FundWalletBlocks is how many blocks FundWallet mines when autoMine is set
const FundWalletBlocks = 6

// Config tunes the engine
type Config struct {
	// Poll bounds every readiness wait
	Poll utils.PollConfig
	// StopGrace is how long a container gets to exit before it is killed
	StopGrace time.Duration
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Poll:      utils.DefaultPollConfig,
		StopGrace: 10 * time.Second,
	}
}

// Journal records finished operations
type Journal interface {
	LogEventAsync(event audit.Event)
}

// Observer receives operation metrics
type Observer interface {
	ObserveOperation(operation string, duration time.Duration, err error)
	SetNetworkStatus(network string, status types.NetworkStatus)
	ForgetNetwork(network string)
}

type nopJournal struct{}

func (nopJournal) LogEventAsync(audit.Event) {}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, time.Duration, error) {}
func (nopObserver) SetNetworkStatus(string, types.NetworkStatus) {}
func (nopObserver) ForgetNetwork(string) {}

// Option configures a NetworkService
type Option func(*NetworkService)

// WithJournal records every operation in the activity journal
func WithJournal(j Journal) Option {
	return func(s *NetworkService) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithObserver reports operation metrics
func WithObserver(o Observer) Option {
	return func(s *NetworkService) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithConfig overrides the engine defaults
func WithConfig(cfg Config) Option {
	return func(s *NetworkService) {
		s.cfg = cfg
	}
}
