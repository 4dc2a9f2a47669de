package topology

import "testing"

// #region requirement-gating
// Scenario 2: node A offers cap "c" in "on", not in "off", with op "flip"
// toggling; node B requires "r" only in state "run", with op "start" from
// "s" to "run" gated on the single alternative {r}. Binding {r -> c}.
func buildRequirementGatingApp(t *testing.T) *Application {
	t.Helper()
	aSpec := mustNodeSpec(t, "A", "off",
		map[CapId]struct{}{"c": {}}, nil, map[OpId]struct{}{"flip": {}},
		map[StateId]State{
			"on":  {IsAlive: true, Caps: map[CapId]struct{}{"c": {}}, Ops: map[OpId]Operation{"flip": {To: "off", Reqs: [][]ReqId{{}}}}},
			"off": {IsAlive: true, Ops: map[OpId]Operation{"flip": {To: "on", Reqs: [][]ReqId{{}}}}},
		})

	bSpec := mustNodeSpec(t, "B", "s",
		nil, map[ReqId]struct{}{"r": {}}, map[OpId]struct{}{"start": {}},
		map[StateId]State{
			"s":   {IsAlive: true, Ops: map[OpId]Operation{"start": {To: "run", Reqs: [][]ReqId{{"r"}}}}},
			"run": {IsAlive: true, Reqs: map[ReqId]struct{}{"r": {}}},
		})

	app, err := BuildApplication(
		map[NodeId]*NodeSpec{"A": aSpec, "B": bSpec},
		map[ReqId]CapId{"r": "c"},
		nil, false,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return app
}

func TestApplication_RequirementGating(t *testing.T) {
	app := buildRequirementGatingApp(t)

	if app.CanPerformOp("B", "start") {
		t.Fatal("expected start to be illegal from (A=off, B=s): r is not offered")
	}
	reason := app.unsatisfiedOpConstraints("B", "start")
	if reason != "no requirement alternative satisfied" {
		t.Errorf("unexpected reason: %q", reason)
	}

	succ, err := app.PerformOp("A", "flip")
	if err != nil {
		t.Fatalf("unexpected error flipping A: %v", err)
	}
	if !succ.CanPerformOp("B", "start") {
		t.Fatal("expected start to be legal once A offers c")
	}
}

// #endregion requirement-gating

// #region fault-handler
// Scenario 3: same A/B, B's "run" state has a handler draining "r" back to
// "s". Flipping A off while B is running introduces a fault; handling it
// moves B back to "s".
func TestApplication_FaultHandler(t *testing.T) {
	aSpec := mustNodeSpec(t, "A", "on",
		map[CapId]struct{}{"c": {}}, nil, map[OpId]struct{}{"flip": {}},
		map[StateId]State{
			"on":  {IsAlive: true, Caps: map[CapId]struct{}{"c": {}}, Ops: map[OpId]Operation{"flip": {To: "off", Reqs: [][]ReqId{{}}}}},
			"off": {IsAlive: true, Ops: map[OpId]Operation{"flip": {To: "on", Reqs: [][]ReqId{{}}}}},
		})
	bSpec := mustNodeSpec(t, "B", "s",
		nil, map[ReqId]struct{}{"r": {}}, map[OpId]struct{}{"start": {}},
		map[StateId]State{
			"s":   {IsAlive: true, Ops: map[OpId]Operation{"start": {To: "run", Reqs: [][]ReqId{{"r"}}}}},
			"run": {IsAlive: true, Reqs: map[ReqId]struct{}{"r": {}}, Handlers: map[ReqId]StateId{"r": "s"}},
		})

	app, err := BuildApplication(
		map[NodeId]*NodeSpec{"A": aSpec, "B": bSpec},
		map[ReqId]CapId{"r": "c"},
		nil, false,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app, err = app.PerformOp("B", "start")
	if err != nil {
		t.Fatalf("unexpected error starting B: %v", err)
	}
	if app.Nodes["B"].CurrentStateId != "run" {
		t.Fatalf("expected B at run, got %s", app.Nodes["B"].CurrentStateId)
	}

	app, err = app.PerformOp("A", "flip")
	if err != nil {
		t.Fatalf("unexpected error flipping A off: %v", err)
	}
	if app.IsConsistent {
		t.Fatal("expected r to be faulted once A is off")
	}
	if !app.CanHandleFault("B", "r") {
		t.Fatal("expected handling r on B to be legal")
	}

	app, err = app.HandleFault("B", "r")
	if err != nil {
		t.Fatalf("unexpected error handling fault: %v", err)
	}
	if app.Nodes["B"].CurrentStateId != "s" {
		t.Errorf("expected B drained back to s, got %s", app.Nodes["B"].CurrentStateId)
	}
}

// #endregion fault-handler

// #region hard-reset
// Scenario 4: host H (alive in "up", dead in "down") contains guest G
// (always alive). Hard reset of G is legal only while H is down.
func buildHardResetApp(t *testing.T) (hSpec, gSpec *NodeSpec) {
	t.Helper()
	hSpec = mustNodeSpec(t, "H", "up", nil, nil, map[OpId]struct{}{"crash": {}, "boot": {}},
		map[StateId]State{
			"up":   {IsAlive: true, Ops: map[OpId]Operation{"crash": {To: "down", Reqs: [][]ReqId{{}}}}},
			"down": {IsAlive: false, Ops: map[OpId]Operation{"boot": {To: "up", Reqs: [][]ReqId{{}}}}},
		})
	gSpec = mustNodeSpec(t, "G", "idle", nil, nil, map[OpId]struct{}{"work": {}},
		map[StateId]State{
			"idle": {IsAlive: true, Ops: map[OpId]Operation{"work": {To: "busy", Reqs: [][]ReqId{{}}}}},
			"busy": {IsAlive: true},
		})
	return hSpec, gSpec
}

func TestApplication_HardResetGatedByContainer(t *testing.T) {
	hSpec, gSpec := buildHardResetApp(t)
	app, err := BuildApplication(
		map[NodeId]*NodeSpec{"H": hSpec, "G": gSpec},
		nil,
		map[NodeId]NodeId{"G": "H"},
		true,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app, err = app.PerformOp("G", "work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.CanHardReset("G") {
		t.Fatal("expected hard reset of G to be illegal while H is up")
	}

	app, err = app.PerformOp("H", "crash")
	if err != nil {
		t.Fatalf("unexpected error crashing H: %v", err)
	}
	if !app.CanHardReset("G") {
		t.Fatal("expected hard reset of G to be legal once H is down")
	}

	reset, err := app.DoHardReset("G")
	if err != nil {
		t.Fatalf("unexpected error resetting G: %v", err)
	}
	if reset.Nodes["G"].CurrentStateId != "idle" {
		t.Errorf("expected G reset to idle, got %s", reset.Nodes["G"].CurrentStateId)
	}
}

func TestApplication_HardResetIdempotentAtInitialState(t *testing.T) {
	hSpec, gSpec := buildHardResetApp(t)
	app, err := BuildApplication(
		map[NodeId]*NodeSpec{"H": hSpec, "G": gSpec},
		nil,
		map[NodeId]NodeId{"G": "H"},
		true,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app, err = app.PerformOp("H", "crash")
	if err != nil {
		t.Fatalf("unexpected error crashing H: %v", err)
	}

	// G is still at its initial state; resetting it must not change the
	// global state.
	before := app.GlobalState
	reset, err := app.DoHardReset("G")
	if err != nil {
		t.Fatalf("unexpected error resetting G: %v", err)
	}
	if reset.GlobalState != before {
		t.Errorf("expected hard reset at initial state to be a no-op, got %q -> %q", before, reset.GlobalState)
	}
}

// #endregion hard-reset

// #region containment-consistency
// Scenario 6: when H is down and G is alive in busy, G's ops are illegal
// with the liveness reason (only checked because hasHardReset is on).
func TestApplication_ContainmentInconsistencyBlocksOps(t *testing.T) {
	hSpec, gSpec := buildHardResetApp(t)
	app, err := BuildApplication(
		map[NodeId]*NodeSpec{"H": hSpec, "G": gSpec},
		nil,
		map[NodeId]NodeId{"G": "H"},
		true,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app, err = app.PerformOp("G", "work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app, err = app.PerformOp("H", "crash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.IsContainmentConsistent {
		t.Fatal("expected containment inconsistency: G busy (alive) while H is down")
	}

	reason := app.unsatisfiedOpConstraints("G", "work")
	if reason != "liveness constraint failing" {
		t.Errorf("expected liveness constraint failing, got %q", reason)
	}
}

// #endregion containment-consistency

// #region canonicalisation
func TestApplication_Canonicalisation(t *testing.T) {
	hSpec, gSpec := buildHardResetApp(t)
	a1, err := BuildApplication(map[NodeId]*NodeSpec{"H": hSpec, "G": gSpec}, nil, map[NodeId]NodeId{"G": "H"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := BuildApplication(map[NodeId]*NodeSpec{"H": hSpec, "G": gSpec}, nil, map[NodeId]NodeId{"G": "H"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1.GlobalState != a2.GlobalState {
		t.Errorf("expected identical global state keys, got %q and %q", a1.GlobalState, a2.GlobalState)
	}
	if a1.GlobalState != "G=idle|H=up" {
		t.Errorf("unexpected global state key: %q", a1.GlobalState)
	}
}

// #endregion canonicalisation
