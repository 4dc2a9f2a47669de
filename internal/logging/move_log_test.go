package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE move_log (
		run_id        TEXT NOT NULL,
		from_global   TEXT NOT NULL,
		node_id       TEXT NOT NULL,
		op_or_req_id  TEXT NOT NULL DEFAULT '',
		is_op         INTEGER NOT NULL,
		decision      TEXT NOT NULL,
		reason        TEXT,
		to_global     TEXT,
		created_at    TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-move-tests
func TestLogMove_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := MoveAttempt{
		RunID:      "run1",
		FromGlobal: "N=s0",
		NodeID:     "N",
		OpOrReqID:  "go",
		IsOp:       true,
		Decision:   "commit",
		Reason:     "within cost budget",
		ToGlobal:   "N=s1",
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogMove(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM move_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var runID, decision string
	db.QueryRow("SELECT run_id, decision FROM move_log").Scan(&runID, &decision)
	if runID != "run1" {
		t.Errorf("expected run_id 'run1', got %q", runID)
	}
	if decision != "commit" {
		t.Errorf("expected decision 'commit', got %q", decision)
	}
}

func TestLogMove_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := MoveAttempt{
		RunID:      "run2",
		FromGlobal: "N=s0",
		NodeID:     "N",
		OpOrReqID:  "go",
		IsOp:       true,
		Decision:   "reject",
	}

	before := time.Now().UTC()
	if err := LogMove(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM move_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogMove_RejectedMoveHasNoToGlobal(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := MoveAttempt{
		RunID:      "run3",
		FromGlobal: "N=s0",
		NodeID:     "N",
		OpOrReqID:  "go",
		IsOp:       true,
		Decision:   "reject",
		Reason:     "",
		ToGlobal:   "",
		CreatedAt:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogMove(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var reason, toGlobal sql.NullString
	db.QueryRow("SELECT reason, to_global FROM move_log").Scan(&reason, &toGlobal)
	if reason.Valid {
		t.Error("expected NULL reason for empty string")
	}
	if toGlobal.Valid {
		t.Error("expected NULL to_global for empty string")
	}
}

func TestLogMove_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // force error

	entry := MoveAttempt{RunID: "run4", FromGlobal: "N=s0", NodeID: "N", Decision: "commit"}
	if err := LogMove(db, entry); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-move-tests

// #region list-moves-tests
func TestListMoves_OrderedAndFiltered(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entries := []MoveAttempt{
		{RunID: "runA", FromGlobal: "N=s0", NodeID: "N", OpOrReqID: "go", IsOp: true, Decision: "commit", ToGlobal: "N=s1", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{RunID: "runA", FromGlobal: "N=s1", NodeID: "N", OpOrReqID: "back", IsOp: true, Decision: "reject", Reason: "unknown operation", CreatedAt: time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC)},
		{RunID: "runB", FromGlobal: "N=s0", NodeID: "N", OpOrReqID: "go", IsOp: true, Decision: "commit", ToGlobal: "N=s1", CreatedAt: time.Date(2026, 3, 1, 0, 0, 2, 0, time.UTC)},
	}
	for _, e := range entries {
		if err := LogMove(db, e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	moves, err := ListMoves(db, "runA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves for runA, got %d", len(moves))
	}
	if moves[0].OpOrReqID != "go" || moves[0].Decision != "commit" || moves[0].ToGlobal != "N=s1" {
		t.Errorf("unexpected first move: %+v", moves[0])
	}
	if moves[1].OpOrReqID != "back" || moves[1].Decision != "reject" || moves[1].Reason != "unknown operation" {
		t.Errorf("unexpected second move: %+v", moves[1])
	}
	if moves[1].ToGlobal != "" {
		t.Errorf("expected empty to_global for rejected move, got %q", moves[1].ToGlobal)
	}
}

func TestListMoves_EmptyRun(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	moves, err := ListMoves(db, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("expected no moves, got %d", len(moves))
	}
}

// #endregion list-moves-tests

// #region null-if-empty-tests
func TestNullIfEmpty_Empty(t *testing.T) {
	if result := nullIfEmpty(""); result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestNullIfEmpty_NonEmpty(t *testing.T) {
	if result := nullIfEmpty("hello"); result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
