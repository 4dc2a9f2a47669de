package costpolicy

import "github.com/danielpatrickdp/topology-analysis/internal/topology"

// #region veto-type
// VetoType enumerates hard veto categories a Policy can raise against a move.
type VetoType string

const (
	VetoHardReset  VetoType = "hard_reset"
	VetoNodeType   VetoType = "node_type"
	VetoRequirement VetoType = "requirement"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents one detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region config
// Config holds the thresholds and exclusions a Policy enforces. A zero-value
// Config vetoes nothing and costs every move at 1, matching BuildPlans's
// unit-cost behaviour exactly.
type Config struct {
	VetoHardResets   bool
	VetoedNodeTypes  map[string]struct{}
	VetoedReqs       map[topology.ReqId]struct{}
	ExtraHardResetCost int
	ExtraReqCost       map[topology.ReqId]int
	MaxCost            int // 0 means uncapped
}

// DefaultConfig returns a Config equivalent to unit-cost planning with no
// vetoes: running RecostPlans with it reproduces topology.BuildPlans.
func DefaultConfig() Config {
	return Config{}
}

// #endregion config

// #region decision
// Decision is the output of a Policy evaluating one move.
type Decision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal
	Cost        int
}

// #endregion decision
