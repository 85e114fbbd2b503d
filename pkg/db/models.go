package db

import (
	"database/sql"
	"time"
)

type ActivityLog struct {
	ID           int64          `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Network      string         `json:"network"`
	Node         sql.NullString `json:"node"`
	Operation    string         `json:"operation"`
	Outcome      string         `json:"outcome"`
	Severity     string         `json:"severity"`
	DurationMs   int64          `json:"duration_ms"`
	ErrorType    sql.NullString `json:"error_type"`
	ErrorMessage sql.NullString `json:"error_message"`
	Details      sql.NullString `json:"details"`
}
