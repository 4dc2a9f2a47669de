package persist

import "time"

// #region run
// Run is one recorded analysis: the topology's shape (node count, whether
// hard reset is enabled) and when it was analyzed. RunID is the primary key
// shared by every table in this package.
type Run struct {
	RunID          string
	Label          string
	NodeCount      int
	HasHardReset   bool
	InitialGlobal  string
	ReachableCount int
	CreatedAt      time.Time
}

// #endregion run

// #region global-state-row
// GlobalStateRow is one reachable configuration of a run.
type GlobalStateRow struct {
	RunID       string
	GlobalState string
	IsInitial   bool
}

// #endregion global-state-row

// #region move-edge-row
// MoveEdgeRow is one legal move out of a reachable configuration: the
// global-state it leaves from, the one it arrives at, and the Step witness
// that performs it.
type MoveEdgeRow struct {
	RunID        string
	FromGlobal   string
	ToGlobal     string
	NodeID       string
	OpOrReqID    string
	IsOp         bool
}

// #endregion move-edge-row

// #region plan-edge-row
// PlanEdgeRow is one entry of a run's all-pairs shortest-path result: the
// minimum cost between src and dst, and the first-step witness, or no
// witness at all when src == dst.
type PlanEdgeRow struct {
	RunID      string
	SrcGlobal  string
	DstGlobal  string
	Cost       int
	StepNodeID string
	StepOpOrReqID string
	StepIsOp   bool
	HasStep    bool
}

// #endregion plan-edge-row

// #region step-row
// StepRow is the witness portion of a PlanEdgeRow, returned on its own by
// queries that only need the step, not the full row.
type StepRow struct {
	NodeID    string
	OpOrReqID string
	IsOp      bool
}

// #endregion step-row
