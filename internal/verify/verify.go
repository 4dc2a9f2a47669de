package verify

import (
	"fmt"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region harness
// Harness runs runtime checks over a completed reachability/planning
// analysis, verifying the properties a correct Reachable/BuildPlans result
// must hold.
type Harness struct {
	config Config
}

// NewHarness creates a verification harness with the given configuration.
func NewHarness(config Config) *Harness {
	return &Harness{config: config}
}

// Run checks initial, reachable and plans against h's configured checks.
func (h *Harness) Run(initial *topology.Application, reachable map[topology.GlobalStateKey]*topology.Application, plans *topology.Plans) Result {
	var metrics []Metric
	passed := true
	var failReasons []string

	record := func(name string, violations int) {
		m := Metric{Name: name, Violations: violations, Pass: violations == 0}
		metrics = append(metrics, m)
		if !m.Pass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s: %d violation(s)", name, violations))
		}
	}

	if _, ok := reachable[initial.GlobalState]; !ok {
		record("initial_present", 1)
	} else {
		record("initial_present", 0)
	}

	if h.config.CheckClosure {
		record("closure", closureViolations(reachable))
	}
	if h.config.CheckCanonicalisation {
		record("canonicalisation", canonicalisationViolations(reachable))
	}
	if plans != nil {
		if h.config.CheckCostConsistency {
			record("cost_consistency", costConsistencyViolations(plans))
		}
		if h.config.CheckWitnessValidity {
			record("witness_validity", witnessValidityViolations(reachable, plans))
		}
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("verification failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("verification failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{Passed: passed, Metrics: metrics, Reason: reason}
}

// #endregion harness

// #region closure
// closureViolations counts successors of legal moves that are missing from
// reachable: every move the topology package considers legal from a reached
// state must itself land on a reached state.
func closureViolations(reachable map[topology.GlobalStateKey]*topology.Application) int {
	violations := 0
	for _, app := range reachable {
		for _, step := range topology.LegalMoves(app) {
			succ, err := topology.Apply(app, step)
			if err != nil {
				violations++
				continue
			}
			if _, ok := reachable[succ.GlobalState]; !ok {
				violations++
			}
		}
	}
	return violations
}

// #endregion closure

// #region canonicalisation
// canonicalisationViolations counts reachable entries whose map key does not
// match the GlobalState recorded on the Application itself.
func canonicalisationViolations(reachable map[topology.GlobalStateKey]*topology.Application) int {
	violations := 0
	for key, app := range reachable {
		if app.GlobalState != key {
			violations++
		}
	}
	return violations
}

// #endregion canonicalisation

// #region cost-consistency
// costConsistencyViolations counts triangle-inequality violations and
// nonzero self-costs in plans.
func costConsistencyViolations(plans *topology.Plans) int {
	violations := 0
	for src, row := range plans.Costs {
		if cost, ok := row[src]; ok && cost != 0 {
			violations++
		}
		for via, costSrcVia := range row {
			for dst, costViaDst := range plans.Costs[via] {
				costSrcDst, ok := plans.Costs[src][dst]
				if !ok {
					continue
				}
				if costSrcDst > costSrcVia+costViaDst {
					violations++
				}
			}
		}
	}
	return violations
}

// #endregion cost-consistency

// #region witness-validity
// witnessValidityViolations counts plan entries whose first-step witness
// does not actually reduce distance to dst by applying it from src.
func witnessValidityViolations(reachable map[topology.GlobalStateKey]*topology.Application, plans *topology.Plans) int {
	violations := 0
	for src, row := range plans.Costs {
		for dst, cost := range row {
			if cost == 0 {
				continue
			}
			step, ok := plans.Steps[src][dst]
			if !ok {
				violations++
				continue
			}
			current, ok := reachable[src]
			if !ok {
				violations++
				continue
			}
			succ, err := topology.Apply(current, step)
			if err != nil {
				violations++
				continue
			}
			if cost == 1 {
				if succ.GlobalState != dst {
					violations++
				}
				continue
			}
			remaining, ok := plans.Costs[succ.GlobalState][dst]
			if !ok || remaining != cost-1 {
				violations++
			}
		}
	}
	return violations
}

// #endregion witness-validity
