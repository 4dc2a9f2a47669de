package costpolicy

import (
	"sort"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

const unreachable = -1

// #region recost-plans
// RecostPlans runs Floyd-Warshall over reachable the same way topology.BuildPlans
// does, except every edge is weighted and can be vetoed by policy instead of
// unit cost. A Config zero value reproduces topology.BuildPlans's result
// exactly, since every move then costs 1 and nothing is vetoed.
func RecostPlans(reachable map[topology.GlobalStateKey]*topology.Application, policy *Policy) *topology.Plans {
	keys := make([]topology.GlobalStateKey, 0, len(reachable))
	for k := range reachable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	n := len(keys)
	idx := make(map[topology.GlobalStateKey]int, n)
	for i, k := range keys {
		idx[k] = i
	}

	cost := make([][]int, n)
	step := make([][]*topology.Step, n)
	for i := range cost {
		cost[i] = make([]int, n)
		step[i] = make([]*topology.Step, n)
		for j := range cost[i] {
			if i == j {
				cost[i][j] = 0
			} else {
				cost[i][j] = unreachable
			}
		}
	}

	for i, key := range keys {
		app := reachable[key]
		for _, s := range topology.LegalMoves(app) {
			succ, err := topology.Apply(app, s)
			if err != nil {
				continue
			}
			j, ok := idx[succ.GlobalState]
			if !ok {
				continue
			}
			decision := policy.Evaluate(app, s, succ)
			if decision.Vetoed || decision.Action == "reject" {
				continue
			}
			newCost := decision.Cost
			if cost[i][j] == unreachable || cost[i][j] > newCost {
				cost[i][j] = newCost
				s := s
				step[i][j] = &s
			}
		}
	}

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

	plans := &topology.Plans{
		Costs: make(map[topology.GlobalStateKey]map[topology.GlobalStateKey]int, n),
		Steps: make(map[topology.GlobalStateKey]map[topology.GlobalStateKey]topology.Step, n),
	}
	for i, srcKey := range keys {
		for j, dstKey := range keys {
			if cost[i][j] == unreachable {
				continue
			}
			if plans.Costs[srcKey] == nil {
				plans.Costs[srcKey] = map[topology.GlobalStateKey]int{}
				plans.Steps[srcKey] = map[topology.GlobalStateKey]topology.Step{}
			}
			plans.Costs[srcKey][dstKey] = cost[i][j]
			if step[i][j] != nil {
				plans.Steps[srcKey][dstKey] = *step[i][j]
			}
		}
	}
	return plans
}

// #endregion recost-plans
