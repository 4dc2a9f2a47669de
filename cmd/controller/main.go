package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/topology-analysis/internal/builder"
	"github.com/danielpatrickdp/topology-analysis/internal/costpolicy"
	"github.com/danielpatrickdp/topology-analysis/internal/logging"
	"github.com/danielpatrickdp/topology-analysis/internal/persist"
	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region main
func main() {
	dbPath := envOr("TOPOLOGY_DB", "topology_analysis.db")

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: controller path/to/topology-dir")
		os.Exit(2)
	}
	topologyDir := os.Args[1]

	result, err := builder.LoadDir(topologyDir)
	if err != nil {
		log.Fatalf("load topology: %v", err)
	}
	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		log.Fatalf("build application: %v", err)
	}

	store, err := persist.NewStore(dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	policy := costpolicy.NewPolicy(costpolicy.DefaultConfig())
	sessionID := uuid.New().String()

	fmt.Println("Topology Controller ready.")
	fmt.Printf("  Topology: %s | DB: %s | Session: %s\n", topologyDir, dbPath, sessionID[:8])
	fmt.Println("Commands: moves | state | op <node> <op> | fault <node> <req> | reset <node> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		switch fields := strings.Fields(line); fields[0] {
		case "state":
			fmt.Printf("%s  consistent=%v containment=%v faults=%d\n",
				app.GlobalState, app.IsConsistent, app.IsContainmentConsistent, len(app.Faults))
		case "moves":
			steps := topology.LegalMoves(app)
			if len(steps) == 0 {
				fmt.Println("no legal moves")
				continue
			}
			for _, s := range steps {
				fmt.Printf("  %s\n", describeStep(s))
			}
		case "op", "fault", "reset":
			step, err := parseStep(fields)
			if err != nil {
				fmt.Printf("bad command: %v\n", err)
				continue
			}
			app = attempt(store, policy, sessionID, app, step)
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

// #endregion main

// #region attempt
// attempt applies step to app if both the topology legality check and the
// cost policy allow it, logging the outcome either way. Returns the
// successor on commit, app unchanged otherwise.
func attempt(store *persist.Store, policy *costpolicy.Policy, sessionID string, app *topology.Application, step topology.Step) *topology.Application {
	entry := logging.MoveAttempt{
		RunID:      sessionID,
		FromGlobal: string(app.GlobalState),
		NodeID:     string(step.NodeId),
		OpOrReqID:  step.OpOrReqId,
		IsOp:       step.IsOp,
	}

	succ, err := topology.Apply(app, step)
	if err != nil {
		entry.Decision = "reject"
		entry.Reason = err.Error()
		logMove(store, entry)
		fmt.Printf("rejected: %v\n", err)
		return app
	}

	decision := policy.Evaluate(app, step, succ)
	entry.Decision = decision.Action
	entry.Reason = decision.Reason
	if decision.Action != "commit" {
		logMove(store, entry)
		fmt.Printf("rejected by policy: %s\n", decision.Reason)
		return app
	}

	entry.ToGlobal = string(succ.GlobalState)
	logMove(store, entry)
	fmt.Printf("committed: %s (cost=%d)\n", succ.GlobalState, decision.Cost)
	return succ
}

func logMove(store *persist.Store, entry logging.MoveAttempt) {
	if err := logging.LogMove(store.DB(), entry); err != nil {
		log.Printf("logging error: %v", err)
	}
}

// #endregion attempt

// #region helpers
func parseStep(fields []string) (topology.Step, error) {
	switch fields[0] {
	case "op":
		if len(fields) != 3 {
			return topology.Step{}, fmt.Errorf("op needs <node> <op>")
		}
		return topology.Step{NodeId: topology.NodeId(fields[1]), OpOrReqId: fields[2], IsOp: true}, nil
	case "fault":
		if len(fields) != 3 {
			return topology.Step{}, fmt.Errorf("fault needs <node> <req>")
		}
		return topology.Step{NodeId: topology.NodeId(fields[1]), OpOrReqId: fields[2]}, nil
	case "reset":
		if len(fields) != 2 {
			return topology.Step{}, fmt.Errorf("reset needs <node>")
		}
		return topology.Step{NodeId: topology.NodeId(fields[1])}, nil
	}
	return topology.Step{}, fmt.Errorf("unknown move %q", fields[0])
}

func describeStep(s topology.Step) string {
	if s.IsOp {
		return fmt.Sprintf("op %s %s", s.NodeId, s.OpOrReqId)
	}
	if s.IsHardReset() {
		return fmt.Sprintf("reset %s", s.NodeId)
	}
	return fmt.Sprintf("fault %s %s", s.NodeId, s.OpOrReqId)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
