package topology

import "fmt"

// #region operation
// Operation is a transition offered from within a state: a destination
// state and a non-empty ordered list of requirement-alternative sets. The
// operation is enabled iff at least one alternative set is entirely
// satisfied in the current application (see Application.CanPerformOp).
type Operation struct {
	To   StateId
	Reqs [][]ReqId // non-empty; each element is an alternative requirement set
}

// #endregion operation

// #region state
// State describes one node state: its liveness for containment purposes,
// the capabilities it offers and requirements it demands while active, the
// operations it exposes, and its fault handlers.
type State struct {
	IsAlive  bool
	Caps     map[CapId]struct{}
	Reqs     map[ReqId]struct{}
	Ops      map[OpId]Operation
	Handlers map[ReqId]StateId
}

// #endregion state

// #region node-spec
// NodeSpec is the immutable, validated static description of one node: its
// initial state, an opaque type tag unused by the core, the declared union
// of every capability/requirement/operation id that may appear in any
// state, and the state table itself.
type NodeSpec struct {
	InitialStateId StateId
	Type           string
	Caps           map[CapId]struct{}
	Reqs           map[ReqId]struct{}
	Ops            map[OpId]struct{}
	States         map[StateId]State
}

// #endregion node-spec

// #region constructor
// NewNodeSpec validates and constructs a NodeSpec. Every structural
// invariant is checked here, failing fast with a *SpecInvalid naming the
// offending identifier and location.
func NewNodeSpec(id NodeId, initialStateId StateId, typ string, caps map[CapId]struct{}, reqs map[ReqId]struct{}, ops map[OpId]struct{}, states map[StateId]State) (*NodeSpec, error) {
	if _, ok := states[initialStateId]; !ok {
		return nil, specInvalid(fmt.Sprintf("node %s", id), fmt.Sprintf("initial state %q is not declared", initialStateId))
	}

	for stateId, st := range states {
		loc := fmt.Sprintf("node %s state %s", id, stateId)

		for cap := range st.Caps {
			if _, ok := caps[cap]; !ok {
				return nil, specInvalid(loc, fmt.Sprintf("capability %q not in node.caps", cap))
			}
		}
		for req := range st.Reqs {
			if _, ok := reqs[req]; !ok {
				return nil, specInvalid(loc, fmt.Sprintf("requirement %q not in node.reqs", req))
			}
		}
		for opId, op := range st.Ops {
			if _, ok := ops[opId]; !ok {
				return nil, specInvalid(loc, fmt.Sprintf("op %q not in node.ops", opId))
			}
			if len(op.Reqs) == 0 {
				return nil, specInvalid(fmt.Sprintf("%s op %s", loc, opId), "requirement-alternative list must be non-empty")
			}
			if _, ok := states[op.To]; !ok {
				return nil, specInvalid(fmt.Sprintf("%s op %s", loc, opId), fmt.Sprintf("destination state %q is not declared", op.To))
			}
			for _, alt := range op.Reqs {
				for _, req := range alt {
					if _, ok := reqs[req]; !ok {
						return nil, specInvalid(fmt.Sprintf("%s op %s", loc, opId), fmt.Sprintf("requirement %q not in node.reqs", req))
					}
				}
			}
		}
		for req, to := range st.Handlers {
			if _, ok := reqs[req]; !ok {
				return nil, specInvalid(loc, fmt.Sprintf("handler requirement %q not in node.reqs", req))
			}
			if _, ok := states[to]; !ok {
				return nil, specInvalid(fmt.Sprintf("%s handler %s", loc, req), fmt.Sprintf("target state %q is not declared", to))
			}
		}
	}

	return &NodeSpec{
		InitialStateId: initialStateId,
		Type:           typ,
		Caps:           caps,
		Reqs:           reqs,
		Ops:            ops,
		States:         states,
	}, nil
}

// #endregion constructor
