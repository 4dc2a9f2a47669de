package persist

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	label           TEXT NOT NULL,
	node_count      INTEGER NOT NULL,
	has_hard_reset  INTEGER NOT NULL,
	initial_global  TEXT NOT NULL,
	reachable_count INTEGER NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS global_states (
	run_id       TEXT NOT NULL,
	global_state TEXT NOT NULL,
	is_initial   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, global_state),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS move_edges (
	run_id        TEXT NOT NULL,
	from_global    TEXT NOT NULL,
	to_global      TEXT NOT NULL,
	node_id       TEXT NOT NULL,
	op_or_req_id  TEXT NOT NULL DEFAULT '',
	is_op         INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_move_edges_from ON move_edges(run_id, from_global);

CREATE TABLE IF NOT EXISTS plan_edges (
	run_id           TEXT NOT NULL,
	src_global       TEXT NOT NULL,
	dst_global       TEXT NOT NULL,
	cost             INTEGER NOT NULL,
	step_node_id     TEXT,
	step_op_or_req_id TEXT,
	step_is_op       INTEGER,
	PRIMARY KEY (run_id, src_global, dst_global),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS move_log (
	run_id        TEXT NOT NULL,
	from_global   TEXT NOT NULL,
	node_id       TEXT NOT NULL,
	op_or_req_id  TEXT NOT NULL DEFAULT '',
	is_op         INTEGER NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	to_global     TEXT,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_move_log_run ON move_log(run_id);
`

// #endregion schema

// #region store
// Store persists reachability and planning runs to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens dbPath and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region save-run
// createdAtLayout is RFC3339 with a fixed nine-digit fraction, so that
// created_at values sort chronologically as text (ListRuns orders by it).
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveRun records a completed reachability/planning analysis: the run's
// metadata, every reachable global state, every move edge between them, and
// the resulting plan matrix. It performs all four inserts in one
// transaction so a run is never partially visible.
func (s *Store) SaveRun(label string, initial *topology.Application, reachable map[topology.GlobalStateKey]*topology.Application, plans *topology.Plans) (string, error) {
	runID := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, label, node_count, has_hard_reset, initial_global, reachable_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, label, len(initial.Nodes), initial.HasHardReset, string(initial.GlobalState), len(reachable), now.Format(createdAtLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for key, app := range reachable {
		_, err = tx.Exec(
			`INSERT INTO global_states (run_id, global_state, is_initial) VALUES (?, ?, ?)`,
			runID, string(key), key == initial.GlobalState,
		)
		if err != nil {
			return "", fmt.Errorf("insert global state %s: %w", key, err)
		}

		for _, step := range topology.LegalMoves(app) {
			succ, err := topology.Apply(app, step)
			if err != nil {
				return "", fmt.Errorf("apply enumerated move on %s: %w", key, err)
			}
			_, err = tx.Exec(
				`INSERT INTO move_edges (run_id, from_global, to_global, node_id, op_or_req_id, is_op)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				runID, string(key), string(succ.GlobalState), string(step.NodeId), step.OpOrReqId, step.IsOp,
			)
			if err != nil {
				return "", fmt.Errorf("insert move edge: %w", err)
			}
		}
	}

	for src, row := range plans.Costs {
		for dst, cost := range row {
			step, hasStep := plans.Steps[src][dst]
			var nodeID, opOrReqID interface{}
			var isOp interface{}
			if hasStep {
				nodeID = string(step.NodeId)
				opOrReqID = step.OpOrReqId
				isOp = step.IsOp
			}
			_, err = tx.Exec(
				`INSERT INTO plan_edges (run_id, src_global, dst_global, cost, step_node_id, step_op_or_req_id, step_is_op)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				runID, string(src), string(dst), cost, nodeID, opOrReqID, isOp,
			)
			if err != nil {
				return "", fmt.Errorf("insert plan edge: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// #endregion save-run

// #region queries
// GetRun retrieves a run's metadata by id.
func (s *Store) GetRun(runID string) (Run, error) {
	var r Run
	var hasHardReset int
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, label, node_count, has_hard_reset, initial_global, reachable_count, created_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&r.RunID, &r.Label, &r.NodeCount, &hasHardReset, &r.InitialGlobal, &r.ReachableCount, &createdStr)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	r.HasHardReset = hasHardReset != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return r, nil
}

// ListRuns returns the most recently created runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, label, node_count, has_hard_reset, initial_global, reachable_count, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var hasHardReset int
		var createdStr string
		if err := rows.Scan(&r.RunID, &r.Label, &r.NodeCount, &hasHardReset, &r.InitialGlobal, &r.ReachableCount, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.HasHardReset = hasHardReset != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetPlanCost returns the recorded cost and step witness between src and
// dst for runID, or ok=false if the pair is unreachable or unrecorded.
func (s *Store) GetPlanCost(runID, src, dst string) (cost int, step StepRow, ok bool, err error) {
	var nodeID, opOrReqID sql.NullString
	var isOp sql.NullBool
	err = s.db.QueryRow(
		`SELECT cost, step_node_id, step_op_or_req_id, step_is_op
		 FROM plan_edges WHERE run_id = ? AND src_global = ? AND dst_global = ?`,
		runID, src, dst,
	).Scan(&cost, &nodeID, &opOrReqID, &isOp)
	if err == sql.ErrNoRows {
		return 0, StepRow{}, false, nil
	}
	if err != nil {
		return 0, StepRow{}, false, fmt.Errorf("get plan cost: %w", err)
	}
	if nodeID.Valid {
		step = StepRow{NodeID: nodeID.String, OpOrReqID: opOrReqID.String, IsOp: isOp.Bool}
	}
	return cost, step, true, nil
}

// ListGlobalStates returns every reachable global state recorded for runID.
func (s *Store) ListGlobalStates(runID string) ([]GlobalStateRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, global_state, is_initial FROM global_states WHERE run_id = ?`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list global states: %w", err)
	}
	defer rows.Close()

	var out []GlobalStateRow
	for rows.Next() {
		var g GlobalStateRow
		var isInitial int
		if err := rows.Scan(&g.RunID, &g.GlobalState, &isInitial); err != nil {
			return nil, fmt.Errorf("scan global state: %w", err)
		}
		g.IsInitial = isInitial != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

// #endregion queries
