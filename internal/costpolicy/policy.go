package costpolicy

import (
	"fmt"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region policy
// Policy evaluates proposed moves against a Config: a hard veto pass first,
// then a cost assignment for moves that survive it.
type Policy struct {
	config Config
}

// NewPolicy creates a policy with the given configuration.
func NewPolicy(config Config) *Policy {
	return &Policy{config: config}
}

// Evaluate checks hard vetoes first, then assigns a cost to step applied
// from app (reaching succ).
func (p *Policy) Evaluate(app *topology.Application, step topology.Step, succ *topology.Application) Decision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	if p.config.VetoHardResets && step.IsHardReset() {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoHardReset,
			Reason: "hard resets disabled by policy",
		})
	}

	if !step.IsOp && !step.IsHardReset() {
		if _, vetoed := p.config.VetoedReqs[topology.ReqId(step.OpOrReqId)]; vetoed {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoRequirement,
				Reason: fmt.Sprintf("fault-handling %s is vetoed by policy", step.OpOrReqId),
			})
		}
	}

	if inst, ok := app.Nodes[step.NodeId]; ok {
		if _, vetoed := p.config.VetoedNodeTypes[inst.Spec.Type]; vetoed {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoNodeType,
				Reason: fmt.Sprintf("node type %q is vetoed by policy", inst.Spec.Type),
			})
		}
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	// --- Cost assignment ---
	cost := p.computeCost(step)
	if p.config.MaxCost > 0 && cost > p.config.MaxCost {
		return Decision{
			Action: "reject",
			Reason: fmt.Sprintf("cost %d exceeds cap %d", cost, p.config.MaxCost),
			Vetoed: false,
			Cost:   cost,
		}
	}

	return Decision{
		Action: "commit",
		Reason: fmt.Sprintf("within policy: cost=%d", cost),
		Cost:   cost,
	}
}

// #endregion policy

// #region cost
func (p *Policy) computeCost(step topology.Step) int {
	cost := 1
	if step.IsHardReset() {
		cost += p.config.ExtraHardResetCost
	} else if !step.IsOp {
		cost += p.config.ExtraReqCost[topology.ReqId(step.OpOrReqId)]
	}
	return cost
}

// #endregion cost
