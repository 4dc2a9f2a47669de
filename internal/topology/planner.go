package topology

import "sort"

// #region plans
// Plans holds the all-pairs shortest-path result over a reachability map:
// the minimum move count between every pair of reachable global states,
// and a first-step witness for one such shortest path. Unreachable pairs
// are omitted from both mappings entirely.
type Plans struct {
	Costs map[GlobalStateKey]map[GlobalStateKey]int
	Steps map[GlobalStateKey]map[GlobalStateKey]Step
}

const unreachable = -1

// #endregion plans

// BuildPlans runs Floyd-Warshall over the reachability map returned by
// Reachable, using unit cost per move and propagating first-step witnesses.
func BuildPlans(reachable map[GlobalStateKey]*Application) *Plans {
	keys := make([]GlobalStateKey, 0, len(reachable))
	for k := range reachable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	n := len(keys)
	idx := make(map[GlobalStateKey]int, n)
	for i, k := range keys {
		idx[k] = i
	}

	cost := make([][]int, n)
	step := make([][]*Step, n)
	for i := range cost {
		cost[i] = make([]int, n)
		step[i] = make([]*Step, n)
		for j := range cost[i] {
			if i == j {
				cost[i][j] = 0
			} else {
				cost[i][j] = unreachable
			}
		}
	}

	// #region phase-1-direct-edges
	for i, key := range keys {
		app := reachable[key]
		for _, mv := range legalMoves(app) {
			succ, err := mv.apply(app)
			if err != nil {
				continue
			}
			j, ok := idx[succ.GlobalState]
			if !ok {
				continue
			}
			const newCost = 1
			if cost[i][j] == unreachable || cost[i][j] > newCost {
				cost[i][j] = newCost
				s := mv.step
				step[i][j] = &s
			}
		}
	}
	// #endregion phase-1-direct-edges

	// #region phase-2-floyd-warshall
	for via := 0; via < n; via++ {
		for src := 0; src < n; src++ {
			if src == via || cost[src][via] == unreachable {
				continue
			}
			for dst := 0; dst < n; dst++ {
				if cost[via][dst] == unreachable {
					continue
				}
				newCost := cost[src][via] + cost[via][dst]
				if cost[src][dst] == unreachable || newCost < cost[src][dst] {
					cost[src][dst] = newCost
					step[src][dst] = step[src][via]
				}
			}
		}
	}
	// #endregion phase-2-floyd-warshall

	plans := &Plans{
		Costs: make(map[GlobalStateKey]map[GlobalStateKey]int, n),
		Steps: make(map[GlobalStateKey]map[GlobalStateKey]Step, n),
	}
	for i, srcKey := range keys {
		for j, dstKey := range keys {
			if cost[i][j] == unreachable {
				continue
			}
			if plans.Costs[srcKey] == nil {
				plans.Costs[srcKey] = map[GlobalStateKey]int{}
				plans.Steps[srcKey] = map[GlobalStateKey]Step{}
			}
			plans.Costs[srcKey][dstKey] = cost[i][j]
			if step[i][j] != nil {
				plans.Steps[srcKey][dstKey] = *step[i][j]
			}
		}
	}
	return plans
}
