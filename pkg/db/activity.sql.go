package db

import (
	"context"
	"database/sql"
	"time"
)

const createActivityLog = `
INSERT INTO activity_logs (
    timestamp, network, node, operation, outcome, severity, duration_ms, error_type, error_message, details
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, timestamp, network, node, operation, outcome, severity, duration_ms, error_type, error_message, details
`

type CreateActivityLogParams struct {
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

func (q *Queries) CreateActivityLog(ctx context.Context, arg *CreateActivityLogParams) (*ActivityLog, error) {
	row := q.db.QueryRowContext(ctx, createActivityLog,
		arg.Timestamp,
		arg.Network,
		arg.Node,
		arg.Operation,
		arg.Outcome,
		arg.Severity,
		arg.DurationMs,
		arg.ErrorType,
		arg.ErrorMessage,
		arg.Details,
	)
	var i ActivityLog
	err := row.Scan(
		&i.ID,
		&i.Timestamp,
		&i.Network,
		&i.Node,
		&i.Operation,
		&i.Outcome,
		&i.Severity,
		&i.DurationMs,
		&i.ErrorType,
		&i.ErrorMessage,
		&i.Details,
	)
	return &i, err
}

const listActivityLogs = `
SELECT id, timestamp, network, node, operation, outcome, severity, duration_ms, error_type, error_message, details
FROM activity_logs
WHERE (? = '' OR network = ?)
ORDER BY timestamp DESC, id DESC
LIMIT ? OFFSET ?
`

type ListActivityLogsParams struct {
	Network string `json:"network"`
	Limit   int64  `json:"limit"`
	Offset  int64  `json:"offset"`
}

func (q *Queries) ListActivityLogs(ctx context.Context, arg *ListActivityLogsParams) ([]*ActivityLog, error) {
	rows, err := q.db.QueryContext(ctx, listActivityLogs,
		arg.Network,
		arg.Network,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*ActivityLog{}
	for rows.Next() {
		var i ActivityLog
		if err := rows.Scan(
			&i.ID,
			&i.Timestamp,
			&i.Network,
			&i.Node,
			&i.Operation,
			&i.Outcome,
			&i.Severity,
			&i.DurationMs,
			&i.ErrorType,
			&i.ErrorMessage,
			&i.Details,
		); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActivityLogs = `
SELECT COUNT(*) FROM activity_logs
WHERE (? = '' OR network = ?)
`

func (q *Queries) CountActivityLogs(ctx context.Context, network string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActivityLogs, network, network)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteActivityLogsByNetwork = `
DELETE FROM activity_logs WHERE network = ?
`

func (q *Queries) DeleteActivityLogsByNetwork(ctx context.Context, network string) error {
	_, err := q.db.ExecContext(ctx, deleteActivityLogsByNetwork, network)
	return err
}
