package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-move
// createdAtLayout is RFC3339 with a fixed nine-digit fraction, so that
// created_at values sort chronologically as text (ListMoves orders by it).
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LogMove writes a move attempt to the move_log table.
func LogMove(db *sql.DB, entry MoveAttempt) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO move_log (run_id, from_global, node_id, op_or_req_id, is_op, decision, reason, to_global, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.FromGlobal,
		entry.NodeID,
		entry.OpOrReqID,
		entry.IsOp,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.ToGlobal),
		entry.CreatedAt.Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("log move: %w", err)
	}
	return nil
}

// #endregion log-move

// #region list-moves
// ListMoves returns every move attempt recorded for runID, oldest first.
func ListMoves(db *sql.DB, runID string) ([]MoveAttempt, error) {
	rows, err := db.Query(
		`SELECT run_id, from_global, node_id, op_or_req_id, is_op, decision, reason, to_global, created_at
		 FROM move_log WHERE run_id = ? ORDER BY created_at ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var out []MoveAttempt
	for rows.Next() {
		var m MoveAttempt
		var reason, toGlobal sql.NullString
		var createdStr string
		if err := rows.Scan(&m.RunID, &m.FromGlobal, &m.NodeID, &m.OpOrReqID, &m.IsOp, &m.Decision, &reason, &toGlobal, &createdStr); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.Reason = reason.String
		m.ToGlobal = toGlobal.String
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, m)
	}
	return out, rows.Err()
}

// #endregion list-moves

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
