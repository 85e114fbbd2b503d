// Package automine mines blocks on running networks on a cron schedule.
package automine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

// Miner mines blocks on a named network
type Miner interface {
	MineBlocks(ctx context.Context, network string, blocks int) ([]string, error)
}

// DefaultSchedule is used when a schedule is enabled without a spec
const DefaultSchedule = "@every 30s"

// RunTimeout bounds a single mining run
const RunTimeout = time.Minute

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule is one network's mining schedule
type Schedule struct {
	Network string    `json:"network"`
	Spec    string    `json:"spec"`
	Blocks  int       `json:"blocks"`
	Next    time.Time `json:"next,omitempty"`
	LastRun time.Time `json:"lastRun,omitempty"`
	// LastError is the error of the most recent run, if it failed
	LastError string `json:"lastError,omitempty"`
}

type entry struct {
	id       cron.EntryID
	schedule Schedule
}

// Scheduler keeps at most one mining schedule per network
type Scheduler struct {
	miner   Miner
	cron    *cron.Cron
	logger  *logger.Logger
	mu      sync.Mutex
	entries map[string]*entry
}

// NewScheduler creates a scheduler; call Start to begin running schedules
func NewScheduler(miner Miner, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		miner:   miner,
		cron:    cron.New(cron.WithParser(parser)),
		logger:  logger.Named("automine"),
		entries: make(map[string]*entry),
	}
}

// Start runs the cron loop in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Enable mines blocks on network every time spec fires, replacing any
// existing schedule for it.
func (s *Scheduler) Enable(network, spec string, blocks int) (*Schedule, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if blocks <= 0 {
		return nil, errors.NewValidationError("block count must be positive", map[string]interface{}{"blocks": blocks})
	}
	if _, err := parser.Parse(spec); err != nil {
		return nil, errors.NewValidationError("invalid schedule", map[string]interface{}{
			"spec":  spec,
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[network]; ok {
		s.cron.Remove(e.id)
		delete(s.entries, network)
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.run(network, blocks)
	})
	if err != nil {
		return nil, errors.NewValidationError("invalid schedule", map[string]interface{}{"spec": spec, "error": err.Error()})
	}
	e := &entry{id: id, schedule: Schedule{Network: network, Spec: spec, Blocks: blocks}}
	s.entries[network] = e
	s.logger.Info("Enabled auto-mining", "network", network, "spec", spec, "blocks", blocks)

	out := s.snapshot(e)
	return &out, nil
}

// Disable removes a network's schedule. It reports whether one existed.
func (s *Scheduler) Disable(network string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[network]
	if !ok {
		return false
	}
	s.cron.Remove(e.id)
	delete(s.entries, network)
	s.logger.Info("Disabled auto-mining", "network", network)
	return true
}

// Get returns a network's schedule
func (s *Scheduler) Get(network string) (Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[network]
	if !ok {
		return Schedule{}, false
	}
	return s.snapshot(e), true
}

// List returns every schedule ordered by network name
func (s *Scheduler) List() []Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Schedule, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, s.snapshot(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Network < out[j].Network })
	return out
}

// snapshot must be called with mu held
func (s *Scheduler) snapshot(e *entry) Schedule {
	out := e.schedule
	out.Next = s.cron.Entry(e.id).Next
	return out
}

func (s *Scheduler) run(network string, blocks int) {
	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	hashes, err := s.miner.MineBlocks(ctx, network, blocks)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[network]
	if !ok {
		return
	}
	e.schedule.LastRun = time.Now().UTC()
	e.schedule.LastError = ""

	switch {
	case err == nil:
		s.logger.Debug("Auto-mined blocks", "network", network, "blocks", len(hashes))
	case errors.IsType(err, errors.NotFoundError):
		// network deleted
		s.cron.Remove(e.id)
		delete(s.entries, network)
		s.logger.Info("Network gone, auto-mining disabled", "network", network)
	default:
		e.schedule.LastError = err.Error()
		s.logger.Warn("Auto-mining failed", "network", network, "error", err)
	}
}
