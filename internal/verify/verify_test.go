package verify

import (
	"testing"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region fixtures
func buildThreeCycleApp(t *testing.T) *topology.Application {
	t.Helper()
	states := map[topology.StateId]topology.State{
		"a": {IsAlive: true, Ops: map[topology.OpId]topology.Operation{"next": {To: "b", Reqs: [][]topology.ReqId{{}}}}},
		"b": {IsAlive: true, Ops: map[topology.OpId]topology.Operation{"next": {To: "c", Reqs: [][]topology.ReqId{{}}}}},
		"c": {IsAlive: true, Ops: map[topology.OpId]topology.Operation{"next": {To: "a", Reqs: [][]topology.ReqId{{}}}}},
	}
	spec, err := topology.NewNodeSpec("N", "a", "generic", nil, nil, map[topology.OpId]struct{}{"next": {}}, states)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app, err := topology.BuildApplication(map[topology.NodeId]*topology.NodeSpec{"N": spec}, nil, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return app
}

// #endregion fixtures

// #region all-pass
func TestHarness_Run_AllChecksPass(t *testing.T) {
	app := buildThreeCycleApp(t)
	reachable := topology.Reachable(app)
	plans := topology.BuildPlans(reachable)

	result := NewHarness(DefaultConfig()).Run(app, reachable, plans)
	if !result.Passed {
		t.Fatalf("expected all checks to pass, got %+v", result)
	}
	for _, m := range result.Metrics {
		if !m.Pass {
			t.Errorf("metric %s unexpectedly failed: %+v", m.Name, m)
		}
	}
}

// #endregion all-pass

// #region closure-catches-truncated-map
func TestHarness_Run_ClosureCatchesTruncatedReachableMap(t *testing.T) {
	app := buildThreeCycleApp(t)
	reachable := topology.Reachable(app)
	plans := topology.BuildPlans(reachable)

	truncated := map[topology.GlobalStateKey]*topology.Application{
		app.GlobalState: reachable[app.GlobalState],
	}

	result := NewHarness(DefaultConfig()).Run(app, truncated, plans)
	if result.Passed {
		t.Fatal("expected truncated reachable map to fail closure check")
	}

	found := false
	for _, m := range result.Metrics {
		if m.Name == "closure" {
			found = true
			if m.Pass {
				t.Error("expected closure metric to fail")
			}
		}
	}
	if !found {
		t.Fatal("expected a closure metric to be recorded")
	}
}

// #endregion closure-catches-truncated-map

// #region initial-missing
func TestHarness_Run_InitialMissingFromReachable(t *testing.T) {
	app := buildThreeCycleApp(t)
	reachable := topology.Reachable(app)
	plans := topology.BuildPlans(reachable)

	delete(reachable, app.GlobalState)

	result := NewHarness(DefaultConfig()).Run(app, reachable, plans)
	if result.Passed {
		t.Fatal("expected missing initial state to fail verification")
	}
}

// #endregion initial-missing

// #region disabled-checks-skip-metrics
func TestHarness_Run_DisabledChecksAreSkipped(t *testing.T) {
	app := buildThreeCycleApp(t)
	reachable := topology.Reachable(app)
	plans := topology.BuildPlans(reachable)

	result := NewHarness(Config{}).Run(app, reachable, plans)
	if !result.Passed {
		t.Fatalf("expected pass with every optional check disabled, got %+v", result)
	}
	for _, m := range result.Metrics {
		if m.Name != "initial_present" {
			t.Errorf("expected only initial_present metric, found %s", m.Name)
		}
	}
}

// #endregion disabled-checks-skip-metrics
