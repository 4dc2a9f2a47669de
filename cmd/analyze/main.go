package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/topology-analysis/internal/builder"
	"github.com/danielpatrickdp/topology-analysis/internal/persist"
	"github.com/danielpatrickdp/topology-analysis/internal/topology"
	"github.com/danielpatrickdp/topology-analysis/internal/verify"
)

// #region main
func main() {
	topologyDir := flag.String("topology", "", "directory of topology .hcl files")
	dbPath := flag.String("db", envOr("TOPOLOGY_DB", "topology_analysis.db"), "path to runs database")
	label := flag.String("label", "", "label recorded with this run")
	skipVerify := flag.Bool("skip-verify", false, "skip the post-analysis verification pass")
	flag.Parse()

	if *topologyDir == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze --topology path/to/dir [--db path] [--label name] [--skip-verify]")
		os.Exit(2)
	}

	fmt.Println("=== Topology Analysis ===")
	fmt.Printf("  Topology: %s | DB: %s\n", *topologyDir, *dbPath)

	result, err := builder.LoadDir(*topologyDir)
	if err != nil {
		log.Fatalf("load topology: %v", err)
	}

	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		log.Fatalf("build application: %v", err)
	}
	fmt.Printf("  Nodes: %d | Hard reset: %v\n", len(app.Nodes), app.HasHardReset)
	fmt.Printf("  Initial: %s\n", app.GlobalState)

	// Phase 1: reachability
	fmt.Println("\n--- Phase 1: Reachability ---")
	reachable := topology.Reachable(app)
	fmt.Printf("%d reachable global states.\n", len(reachable))

	// Phase 2: all-pairs shortest paths
	fmt.Println("\n--- Phase 2: Planning ---")
	plans := topology.BuildPlans(reachable)
	pairs := 0
	for _, row := range plans.Costs {
		pairs += len(row)
	}
	fmt.Printf("%d reachable (src, dst) pairs.\n", pairs)

	// Phase 3: verification
	if !*skipVerify {
		fmt.Println("\n--- Phase 3: Verification ---")
		harness := verify.NewHarness(verify.DefaultConfig())
		res := harness.Run(app, reachable, plans)
		for _, m := range res.Metrics {
			status := "ok"
			if !m.Pass {
				status = fmt.Sprintf("FAIL (%d violations)", m.Violations)
			}
			fmt.Printf("  %-20s %s\n", m.Name, status)
		}
		if !res.Passed {
			log.Fatalf("verification failed: %s", res.Reason)
		}
	}

	store, err := persist.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	runID, err := store.SaveRun(*label, app, reachable, plans)
	if err != nil {
		log.Fatalf("save run: %v", err)
	}
	fmt.Printf("\nSaved run %s.\n", runID)
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
