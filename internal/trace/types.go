package trace

import "github.com/danielpatrickdp/topology-analysis/internal/topology"

// #region step-record
// StepRecord captures the outcome of replaying one step against the current
// global state.
type StepRecord struct {
	Step       topology.Step
	Action     string // "commit" | "illegal"
	Reason     string
	FromGlobal topology.GlobalStateKey
	ToGlobal   topology.GlobalStateKey
}

// #endregion step-record

// #region summary
// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps   int
	Commits      int
	IllegalSteps int
	FinalGlobal  topology.GlobalStateKey
}

// #endregion summary
