package trace

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a topology replay fixture.
type Fixture struct {
	Description  string          `json:"description"`
	Nodes        []FixtureNode   `json:"nodes"`
	Binding      map[string]string `json:"binding"`       // req id -> cap id
	ContainedBy  map[string]string `json:"contained_by"`  // node id -> container node id
	HasHardReset bool            `json:"has_hard_reset"`
	Steps        []FixtureStep   `json:"steps"`
}

// FixtureNode mirrors topology.NodeSpec with JSON tags.
type FixtureNode struct {
	ID             string         `json:"id"`
	InitialStateID string         `json:"initial_state_id"`
	Type           string         `json:"type"`
	Caps           []string       `json:"caps"`
	Reqs           []string       `json:"reqs"`
	Ops            []string       `json:"ops"`
	States         []FixtureState `json:"states"`
}

// FixtureState mirrors topology.State with JSON tags.
type FixtureState struct {
	ID       string          `json:"id"`
	IsAlive  bool            `json:"is_alive"`
	Caps     []string        `json:"caps"`
	Reqs     []string        `json:"reqs"`
	Ops      []FixtureOp     `json:"ops"`
	Handlers []FixtureHandler `json:"handlers"`
}

// FixtureOp mirrors topology.Operation with JSON tags.
type FixtureOp struct {
	ID           string     `json:"id"`
	To           string     `json:"to"`
	Alternatives [][]string `json:"alternatives"` // non-empty; each entry is an alternative requirement set
}

// FixtureHandler mirrors one entry of topology.State.Handlers.
type FixtureHandler struct {
	ReqID string `json:"req_id"`
	To    string `json:"to"`
}

// FixtureStep mirrors topology.Step with JSON tags.
type FixtureStep struct {
	NodeID    string `json:"node_id"`
	OpOrReqID string `json:"op_or_req_id"`
	IsOp      bool   `json:"is_op"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes f to path as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader

// #region converters

func toSet[T ~string](ids []string) map[T]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		set[T(id)] = struct{}{}
	}
	return set
}

// ToSpecs converts f's nodes into validated topology.NodeSpec values.
func (f *Fixture) ToSpecs() (map[topology.NodeId]*topology.NodeSpec, error) {
	specs := make(map[topology.NodeId]*topology.NodeSpec, len(f.Nodes))
	for _, n := range f.Nodes {
		states := make(map[topology.StateId]topology.State, len(n.States))
		for _, s := range n.States {
			ops := make(map[topology.OpId]topology.Operation, len(s.Ops))
			for _, op := range s.Ops {
				alts := make([][]topology.ReqId, len(op.Alternatives))
				for i, alt := range op.Alternatives {
					reqs := make([]topology.ReqId, len(alt))
					for j, r := range alt {
						reqs[j] = topology.ReqId(r)
					}
					alts[i] = reqs
				}
				ops[topology.OpId(op.ID)] = topology.Operation{To: topology.StateId(op.To), Reqs: alts}
			}
			var handlers map[topology.ReqId]topology.StateId
			if len(s.Handlers) > 0 {
				handlers = make(map[topology.ReqId]topology.StateId, len(s.Handlers))
				for _, h := range s.Handlers {
					handlers[topology.ReqId(h.ReqID)] = topology.StateId(h.To)
				}
			}
			states[topology.StateId(s.ID)] = topology.State{
				IsAlive:  s.IsAlive,
				Caps:     toSet[topology.CapId](s.Caps),
				Reqs:     toSet[topology.ReqId](s.Reqs),
				Ops:      ops,
				Handlers: handlers,
			}
		}

		spec, err := topology.NewNodeSpec(
			topology.NodeId(n.ID),
			topology.StateId(n.InitialStateID),
			n.Type,
			toSet[topology.CapId](n.Caps),
			toSet[topology.ReqId](n.Reqs),
			toSet[topology.OpId](n.Ops),
			states,
		)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		specs[topology.NodeId(n.ID)] = spec
	}
	return specs, nil
}

// ToBinding converts f.Binding into a topology requirement-to-capability map.
func (f *Fixture) ToBinding() map[topology.ReqId]topology.CapId {
	if len(f.Binding) == 0 {
		return nil
	}
	out := make(map[topology.ReqId]topology.CapId, len(f.Binding))
	for req, cap := range f.Binding {
		out[topology.ReqId(req)] = topology.CapId(cap)
	}
	return out
}

// ToContainedBy converts f.ContainedBy into a topology containment map.
func (f *Fixture) ToContainedBy() map[topology.NodeId]topology.NodeId {
	if len(f.ContainedBy) == 0 {
		return nil
	}
	out := make(map[topology.NodeId]topology.NodeId, len(f.ContainedBy))
	for node, container := range f.ContainedBy {
		out[topology.NodeId(node)] = topology.NodeId(container)
	}
	return out
}

// ToSteps converts f.Steps into topology.Step values.
func (f *Fixture) ToSteps() []topology.Step {
	steps := make([]topology.Step, len(f.Steps))
	for i, s := range f.Steps {
		steps[i] = topology.Step{NodeId: topology.NodeId(s.NodeID), OpOrReqId: s.OpOrReqID, IsOp: s.IsOp}
	}
	return steps
}

// #endregion converters
