package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/topology-analysis/internal/persist"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to topology_analysis.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	src := flag.String("src", "", "plan query: source global state")
	dst := flag.String("dst", "", "plan query: destination global state")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/topology_analysis.db [--last N] [--run id [--src state --dst state]] [--json]")
		os.Exit(2)
	}
	if (*src == "") != (*dst == "") {
		fmt.Fprintln(os.Stderr, "--src and --dst must be given together")
		os.Exit(2)
	}

	store, err := persist.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *runID != "" && *src != "":
		err = runPlanQuery(store, *runID, *src, *dst, *jsonOut)
	case *runID != "":
		err = runDetailMode(store, *runID, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(store *persist.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	if jsonOut {
		return printJSON(runs)
	}

	fmt.Printf("%-10s  %-16s  %5s  %6s  %5s  %s\n",
		"Run", "Label", "Nodes", "States", "Reset", "Time")
	fmt.Printf("%-10s+-%-16s+-%5s+-%6s+-%5s+-%s\n",
		"----------", "----------------", "-----", "------", "-----", "--------------------")
	for _, r := range runs {
		label := r.Label
		if label == "" {
			label = "—"
		}
		fmt.Printf("%-10s  %-16s  %5d  %6d  %5v  %s\n",
			shortID(r.RunID), label, r.NodeCount, r.ReachableCount, r.HasHardReset,
			r.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Run          persist.Run              `json:"run"`
	GlobalStates []persist.GlobalStateRow `json:"global_states"`
}

func runDetailMode(store *persist.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	states, err := store.ListGlobalStates(runID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(detailOutput{Run: run, GlobalStates: states})
	}

	fmt.Printf("Run:        %s\n", run.RunID)
	fmt.Printf("Label:      %s\n", run.Label)
	fmt.Printf("Created:    %s\n", run.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Nodes:      %d\n", run.NodeCount)
	fmt.Printf("Hard reset: %v\n", run.HasHardReset)
	fmt.Printf("Initial:    %s\n", run.InitialGlobal)

	fmt.Printf("\nReachable global states (%d):\n", len(states))
	for _, s := range states {
		marker := " "
		if s.IsInitial {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, s.GlobalState)
	}
	return nil
}

// #endregion detail-mode

// #region plan-query

type planOutput struct {
	Src       string          `json:"src"`
	Dst       string          `json:"dst"`
	Reachable bool            `json:"reachable"`
	Cost      int             `json:"cost,omitempty"`
	Step      *persist.StepRow `json:"step,omitempty"`
}

func runPlanQuery(store *persist.Store, runID, src, dst string, jsonOut bool) error {
	cost, step, ok, err := store.GetPlanCost(runID, src, dst)
	if err != nil {
		return err
	}

	out := planOutput{Src: src, Dst: dst, Reachable: ok}
	if ok {
		out.Cost = cost
		if step.NodeID != "" {
			out.Step = &step
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	if !ok {
		fmt.Printf("%s -> %s: unreachable\n", src, dst)
		return nil
	}
	fmt.Printf("%s -> %s: cost=%d\n", src, dst, cost)
	if out.Step != nil {
		kind := "fault"
		if step.IsOp {
			kind = "op"
		} else if step.OpOrReqID == "" {
			kind = "reset"
		}
		fmt.Printf("first step: %s %s %s\n", kind, step.NodeID, step.OpOrReqID)
	}
	return nil
}

// #endregion plan-query

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
