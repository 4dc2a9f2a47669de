package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/topology-analysis/internal/builder"
	"github.com/danielpatrickdp/topology-analysis/internal/cipher"
	"github.com/danielpatrickdp/topology-analysis/internal/topology"
	"github.com/danielpatrickdp/topology-analysis/internal/trace"
)

// #region main

func main() {
	topologyDir := flag.String("topology", "", "directory of topology .hcl files")
	src := flag.String("src", "", "source global state (defaults to the initial state)")
	dst := flag.String("dst", "", "destination global state")
	outPath := flag.String("out", "", "output fixture JSON path")
	toExchange := flag.Bool("exchange", false, "write the fixture encrypted to the exchange dir instead")
	flag.Parse()

	if *topologyDir == "" || *dst == "" || (*outPath == "" && !*toExchange) {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --topology path/to/dir --dst state [--src state] (--out path/to/fixture.json | --exchange)")
		os.Exit(2)
	}

	if err := run(*topologyDir, *src, *dst, *outPath, *toExchange); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(topologyDir, src, dst, outPath string, toExchange bool) error {
	result, err := builder.LoadDir(topologyDir)
	if err != nil {
		return fmt.Errorf("load topology: %w", err)
	}
	app, err := topology.BuildApplication(result.Specs, result.Binding, result.ContainedBy, result.HasHardReset)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	if src == "" {
		src = string(app.GlobalState)
	}

	reachable := topology.Reachable(app)
	plans := topology.BuildPlans(reachable)

	steps, err := shortestPath(reachable, plans, topology.GlobalStateKey(src), topology.GlobalStateKey(dst))
	if err != nil {
		return err
	}

	fixture := fixtureFromResult(result, steps)
	fixture.Description = fmt.Sprintf("shortest path %s -> %s (%d steps)", src, dst, len(steps))

	if toExchange {
		data, err := json.MarshalIndent(fixture, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal fixture: %w", err)
		}
		if err := cipher.WriteExport(string(data)); err != nil {
			return fmt.Errorf("write exchange: %w", err)
		}
		fmt.Printf("Exported %d steps to exchange dir %s.\n", len(steps), cipher.ExchangeDir)
		return nil
	}

	if err := trace.SaveFixture(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("Exported %d steps to %s.\n", len(steps), outPath)
	return nil
}

// shortestPath follows the planner's first-step witnesses from src until
// dst is reached. Plans guarantee each witness reduces the remaining cost
// by one, so the walk takes exactly cost(src, dst) iterations.
func shortestPath(reachable map[topology.GlobalStateKey]*topology.Application, plans *topology.Plans, src, dst topology.GlobalStateKey) ([]topology.Step, error) {
	current, ok := reachable[src]
	if !ok {
		return nil, fmt.Errorf("source state %s is not reachable from the initial state", src)
	}
	if _, ok := plans.Costs[src][dst]; !ok {
		return nil, fmt.Errorf("destination %s is unreachable from %s", dst, src)
	}

	var steps []topology.Step
	for current.GlobalState != dst {
		step, ok := plans.Steps[current.GlobalState][dst]
		if !ok {
			return nil, fmt.Errorf("no step witness from %s to %s", current.GlobalState, dst)
		}
		succ, err := topology.Apply(current, step)
		if err != nil {
			return nil, fmt.Errorf("apply witness from %s: %w", current.GlobalState, err)
		}
		steps = append(steps, step)
		current = succ
	}
	return steps, nil
}

// #endregion extract

// #region output

// fixtureFromResult mirrors the parsed topology back into fixture DTOs so
// the exported file is self-contained: replay needs no access to the
// original HCL directory.
func fixtureFromResult(result *builder.Result, steps []topology.Step) *trace.Fixture {
	f := &trace.Fixture{
		HasHardReset: result.HasHardReset,
		Binding:      map[string]string{},
		ContainedBy:  map[string]string{},
	}

	for req, cap := range result.Binding {
		f.Binding[string(req)] = string(cap)
	}
	for node, container := range result.ContainedBy {
		f.ContainedBy[string(node)] = string(container)
	}

	nodeIds := make([]string, 0, len(result.Specs))
	for id := range result.Specs {
		nodeIds = append(nodeIds, string(id))
	}
	sort.Strings(nodeIds)

	for _, id := range nodeIds {
		spec := result.Specs[topology.NodeId(id)]
		f.Nodes = append(f.Nodes, trace.FixtureNode{
			ID:             id,
			InitialStateID: string(spec.InitialStateId),
			Type:           spec.Type,
			Caps:           sortedIds(spec.Caps),
			Reqs:           sortedIds(spec.Reqs),
			Ops:            sortedIds(spec.Ops),
			States:         fixtureStates(spec),
		})
	}

	for _, s := range steps {
		f.Steps = append(f.Steps, trace.FixtureStep{
			NodeID:    string(s.NodeId),
			OpOrReqID: s.OpOrReqId,
			IsOp:      s.IsOp,
		})
	}
	return f
}

func fixtureStates(spec *topology.NodeSpec) []trace.FixtureState {
	stateIds := make([]string, 0, len(spec.States))
	for id := range spec.States {
		stateIds = append(stateIds, string(id))
	}
	sort.Strings(stateIds)

	out := make([]trace.FixtureState, 0, len(stateIds))
	for _, id := range stateIds {
		st := spec.States[topology.StateId(id)]
		fs := trace.FixtureState{
			ID:      id,
			IsAlive: st.IsAlive,
			Caps:    sortedIds(st.Caps),
			Reqs:    sortedIds(st.Reqs),
		}
		for _, opId := range sortedIds(st.Ops) {
			op := st.Ops[topology.OpId(opId)]
			alts := make([][]string, len(op.Reqs))
			for i, alt := range op.Reqs {
				alts[i] = make([]string, len(alt))
				for j, req := range alt {
					alts[i][j] = string(req)
				}
			}
			fs.Ops = append(fs.Ops, trace.FixtureOp{ID: opId, To: string(op.To), Alternatives: alts})
		}
		for _, req := range sortedIds(st.Handlers) {
			fs.Handlers = append(fs.Handlers, trace.FixtureHandler{ReqID: req, To: string(st.Handlers[topology.ReqId(req)])})
		}
		out = append(out, fs)
	}
	return out
}

func sortedIds[K ~string, V any](m map[K]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// #endregion output
