package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/db"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

// AuditService writes the activity journal to sqlite
type AuditService struct {
	db       *db.Queries
	logger   *logger.Logger
	queue    chan Event
	workers  int
	wg       sync.WaitGroup
	stopChan chan struct{}
	once     sync.Once
}

// NewService creates a new audit service
func NewService(queries *db.Queries, logger *logger.Logger, cfg Config) *AuditService {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig().WorkerCount
	}
	if cfg.AsyncBufferSize <= 0 {
		cfg.AsyncBufferSize = DefaultConfig().AsyncBufferSize
	}

	s := &AuditService{
		db:       queries,
		logger:   logger.Named("audit"),
		queue:    make(chan Event, cfg.AsyncBufferSize),
		workers:  cfg.WorkerCount,
		stopChan: make(chan struct{}),
	}

	s.startWorkers()
	return s
}

func (s *AuditService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// LogEvent writes an event synchronously
func (s *AuditService) LogEvent(ctx context.Context, event Event) error {
	params, err := toParams(event)
	if err != nil {
		return err
	}
	_, err = s.db.CreateActivityLog(ctx, params)
	return err
}

// LogEventAsync queues an event without blocking. Events are dropped when
// the queue is full.
func (s *AuditService) LogEventAsync(event Event) {
	select {
	case <-s.stopChan:
		return
	default:
	}
	select {
	case s.queue <- event:
	default:
		s.logger.Warn("Activity journal queue full, dropping event", "network", event.Network, "operation", event.Operation)
	}
}

func (s *AuditService) worker() {
	defer s.wg.Done()

	for {
		select {
		case event := <-s.queue:
			s.write(event)
		case <-s.stopChan:
			// drain what is already queued
			for {
				select {
				case event := <-s.queue:
					s.write(event)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) write(event Event) {
	if err := s.LogEvent(context.Background(), event); err != nil {
		s.logger.Error("Failed to write activity log", "network", event.Network, "operation", event.Operation, "error", err)
	}
}

// Close stops the workers after flushing queued events
func (s *AuditService) Close() {
	s.once.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

// ListLogsResponse is a page of journal entries
type ListLogsResponse struct {
	Items      []Event `json:"items"`
	TotalCount int64   `json:"totalCount"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
}

// ListLogs returns entries newest first. An empty network lists all.
func (s *AuditService) ListLogs(ctx context.Context, network string, page, pageSize int) (*ListLogsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	logs, err := s.db.ListActivityLogs(ctx, &db.ListActivityLogsParams{
		Network: network,
		Limit:   int64(pageSize),
		Offset:  int64((page - 1) * pageSize),
	})
	if err != nil {
		return nil, err
	}
	total, err := s.db.CountActivityLogs(ctx, network)
	if err != nil {
		return nil, err
	}

	events := make([]Event, len(logs))
	for i, log := range logs {
		var details map[string]interface{}
		if log.Details.Valid && log.Details.String != "" {
			if err := json.Unmarshal([]byte(log.Details.String), &details); err != nil {
				return nil, err
			}
		}
		events[i] = Event{
			ID:           log.ID,
			Timestamp:    log.Timestamp,
			Network:      log.Network,
			Node:         log.Node.String,
			Operation:    log.Operation,
			Outcome:      EventOutcome(log.Outcome),
			Severity:     Severity(log.Severity),
			Duration:     time.Duration(log.DurationMs) * time.Millisecond,
			ErrorType:    log.ErrorType.String,
			ErrorMessage: log.ErrorMessage.String,
			Details:      details,
		}
	}

	return &ListLogsResponse{
		Items:      events,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Forget deletes a network's entries
func (s *AuditService) Forget(ctx context.Context, network string) error {
	return s.db.DeleteActivityLogsByNetwork(ctx, network)
}

func toParams(event Event) (*db.CreateActivityLogParams, error) {
	params := &db.CreateActivityLogParams{
		Timestamp:    event.Timestamp,
		Network:      event.Network,
		Node:         nullString(event.Node),
		Operation:    event.Operation,
		Outcome:      string(event.Outcome),
		Severity:     string(event.Severity),
		DurationMs:   event.Duration.Milliseconds(),
		ErrorType:    nullString(event.ErrorType),
		ErrorMessage: nullString(event.ErrorMessage),
	}
	if len(event.Details) > 0 {
		details, err := json.Marshal(event.Details)
		if err != nil {
			return nil, err
		}
		params.Details = sql.NullString{String: string(details), Valid: true}
	}
	return params, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
