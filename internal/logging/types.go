package logging

import "time"

// #region move-attempt
// MoveAttempt is a single row in the move_log table: a record of one move
// proposed against a reachable global state, the costpolicy decision it
// received, and the resulting state when committed.
type MoveAttempt struct {
	RunID      string
	FromGlobal string
	NodeID     string
	OpOrReqID  string
	IsOp       bool
	Decision   string // "commit" | "reject"
	Reason     string
	ToGlobal   string
	CreatedAt  time.Time
}

// #endregion move-attempt
