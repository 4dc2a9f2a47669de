package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/topology-analysis/internal/builder"
	"github.com/danielpatrickdp/topology-analysis/internal/cipher"
	"github.com/danielpatrickdp/topology-analysis/internal/logging"
	"github.com/danielpatrickdp/topology-analysis/internal/persist"
	"github.com/danielpatrickdp/topology-analysis/internal/topology"
	"github.com/danielpatrickdp/topology-analysis/internal/trace"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	fromExchange := flag.Bool("exchange", false, "read an encrypted fixture from the exchange dir instead")
	dbPath := flag.String("db", "", "path to topology_analysis.db (DB mode)")
	topologyDir := flag.String("topology", "", "topology .hcl directory (DB mode)")
	session := flag.String("session", "", "controller session id to replay (DB mode)")
	flag.Parse()

	modes := 0
	for _, set := range []bool{*fixturePath != "", *fromExchange, *dbPath != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 || (*dbPath != "" && (*topologyDir == "" || *session == "")) {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --exchange")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/db --topology path/to/dir --session id")
		os.Exit(2)
	}

	if *dbPath != "" {
		os.Exit(runDBMode(*dbPath, *topologyDir, *session))
	}

	var f *trace.Fixture
	var err error
	if *fromExchange {
		f, err = loadFromExchange()
	} else {
		f, err = trace.LoadFixture(*fixturePath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	os.Exit(runFixtureMode(f))
}

// #endregion main

// #region fixture-mode

func runFixtureMode(f *trace.Fixture) int {
	specs, err := f.ToSpecs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build specs: %v\n", err)
		return 2
	}
	app, err := topology.BuildApplication(specs, f.ToBinding(), f.ToContainedBy(), f.HasHardReset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build application: %v\n", err)
		return 2
	}

	records := trace.Replay(app, f.ToSteps())

	fmt.Printf("%-4s| %-28s| %-8s| %s\n", "#", "Step", "Action", "State")
	fmt.Printf("%-4s+%-29s+%-9s+%s\n", "----", "-----------------------------", "---------", "--------------------")

	illegal := 0
	for i, r := range records {
		if r.Action != "commit" {
			illegal++
		}
		fmt.Printf("%-4d| %-28s| %-8s| %s\n", i+1, describeStep(r.Step), r.Action, r.ToGlobal)
	}

	fmt.Printf("\nSummary: %d steps, %d committed, %d illegal\n", len(records), len(records)-illegal, illegal)
	if len(records) > 0 {
		fmt.Printf("Final state: %s\n", records[len(records)-1].ToGlobal)
	}

	if illegal > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region db-mode

// runDBMode re-runs a controller session's logged move attempts against a
// fresh build of the same topology and diffs the recorded decision against
// the replayed one. Divergence means the topology files changed since the
// session was recorded.
func runDBMode(dbPath, topologyDir, session string) int {
	store, err := persist.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	attempts, err := logging.ListMoves(store.DB(), session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list moves: %v\n", err)
		return 2
	}
	if len(attempts) == 0 {
		fmt.Fprintf(os.Stderr, "no move attempts found for session %s\n", session)
		return 2
	}

	result, err := builder.LoadDir(topologyDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load topology: %v\n", err)
		return 2
	}
	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build application: %v\n", err)
		return 2
	}

	steps := make([]topology.Step, len(attempts))
	for i, a := range attempts {
		steps[i] = topology.Step{NodeId: topology.NodeId(a.NodeID), OpOrReqId: a.OpOrReqID, IsOp: a.IsOp}
	}
	records := trace.Replay(app, steps)

	fmt.Printf("%-4s| %-28s| %-8s| %-8s| %s\n", "#", "Step", "Recorded", "Replayed", "Match")
	fmt.Printf("%-4s+%-29s+%-9s+%-9s+%s\n", "----", "-----------------------------", "---------", "---------", "------")

	matches := 0
	for i, r := range records {
		recorded := attempts[i].Decision
		match := "DIFF"
		if actionsMatch(recorded, r.Action) {
			match = "OK"
			matches++
		}
		fmt.Printf("%-4d| %-28s| %-8s| %-8s| %s\n", i+1, describeStep(r.Step), recorded, r.Action, match)
	}

	diverge := len(records) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(records), matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

// actionsMatch compares a logged controller decision with a replayed
// action. The controller logs illegal attempts as "reject"; the replay
// harness calls them "illegal".
func actionsMatch(recorded, replayed string) bool {
	if recorded == replayed {
		return true
	}
	return recorded == "reject" && replayed == "illegal"
}

// #endregion db-mode

// #region helpers

func describeStep(s topology.Step) string {
	if s.IsOp {
		return fmt.Sprintf("op %s %s", s.NodeId, s.OpOrReqId)
	}
	if s.IsHardReset() {
		return fmt.Sprintf("reset %s", s.NodeId)
	}
	return fmt.Sprintf("fault %s %s", s.NodeId, s.OpOrReqId)
}

func loadFromExchange() (*trace.Fixture, error) {
	text, err := cipher.ReadImport()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("no fixture present in exchange dir %s", cipher.ExchangeDir)
	}
	var f trace.Fixture
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return nil, fmt.Errorf("parse exchanged fixture: %w", err)
	}
	cipher.ClearImport()
	return &f, nil
}

// #endregion helpers
