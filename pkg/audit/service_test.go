package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/db"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

func newTestService(t *testing.T) *AuditService {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "regtest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	s := NewService(db.New(database), logger.NewNop(), DefaultConfig())
	t.Cleanup(s.Close)
	return s
}

func TestLogEventAndList(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	ok := NewEvent("alice", "mine_blocks").WithDetails(map[string]interface{}{"blocks": 3})
	ok.Duration = 40 * time.Millisecond
	require.NoError(t, s.LogEvent(ctx, ok))

	failed := NewEvent("alice", "open_channel").
		WithNode("lnd-1").
		WithError("DOMAIN_CONFIG_ERROR", fmt.Errorf("not enough funds"))
	failed.Timestamp = ok.Timestamp.Add(time.Second)
	require.NoError(t, s.LogEvent(ctx, failed))

	require.NoError(t, s.LogEvent(ctx, NewEvent("bob", "start")))

	page, err := s.ListLogs(ctx, "alice", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	require.Len(t, page.Items, 2)

	newest := page.Items[0]
	assert.Equal(t, "open_channel", newest.Operation)
	assert.Equal(t, EventOutcomeFailure, newest.Outcome)
	assert.Equal(t, SeverityWarning, newest.Severity)
	assert.Equal(t, "lnd-1", newest.Node)
	assert.Equal(t, "not enough funds", newest.ErrorMessage)

	oldest := page.Items[1]
	assert.Equal(t, EventOutcomeSuccess, oldest.Outcome)
	assert.Equal(t, 40*time.Millisecond, oldest.Duration)
	assert.EqualValues(t, 3, oldest.Details["blocks"])

	all, err := s.ListLogs(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalCount)

	require.NoError(t, s.Forget(ctx, "alice"))
	page, err = s.ListLogs(ctx, "alice", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestLogEventAsyncFlushesOnClose(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "regtest.db"))
	require.NoError(t, err)
	defer database.Close()

	queries := db.New(database)
	s := NewService(queries, logger.NewNop(), Config{AsyncBufferSize: 10, WorkerCount: 2})
	for i := 0; i < 5; i++ {
		s.LogEventAsync(NewEvent("alice", "sync_graph"))
	}
	s.Close()
	// events after close are ignored
	s.LogEventAsync(NewEvent("alice", "sync_graph"))

	count, err := queries.CountActivityLogs(context.Background(), "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestHandlerListLogs(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.LogEvent(context.Background(), NewEvent("alice", "start")))

	r := chi.NewRouter()
	NewHandler(s, logger.NewNop()).RegisterRoutes(r)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantCount  int64
	}{
		{name: "filtered", url: "/history?network=alice", wantStatus: http.StatusOK, wantCount: 1},
		{name: "other network", url: "/history?network=bob", wantStatus: http.StatusOK, wantCount: 0},
		{name: "bad page", url: "/history?page=zero", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp ListLogsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCount, resp.TotalCount)
		})
	}
}
