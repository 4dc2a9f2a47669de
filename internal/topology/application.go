package topology

import (
	"fmt"
	"sort"
	"strings"
)

// #region global-state
// GlobalStateKey is the canonical, stable identity of an Application
// snapshot: "node1=state1|node2=state2|...", tokens sorted lexicographically
// by the full "nodeId=stateId" string. It is the key used to deduplicate
// configurations in Reachable and to index the Planner's matrices.
type GlobalStateKey string

func computeGlobalState(nodes map[NodeId]*NodeInstance) GlobalStateKey {
	tokens := make([]string, 0, len(nodes))
	for _, nodeId := range sortedStringKeys(nodes) {
		tokens = append(tokens, fmt.Sprintf("%s=%s", nodeId, nodes[nodeId].CurrentStateId))
	}
	// tokens are built in sorted-nodeId order, which need not equal
	// sorted-token order once ids vary in length around the '=' separator;
	// sort explicitly to honor the full-token contract.
	sort.Strings(tokens)
	return GlobalStateKey(strings.Join(tokens, "|"))
}

// #endregion global-state

// #region reason
// Reason is a human-readable, stable explanation for why a move is
// illegal. ReasonOK is the empty-string sentinel meaning the move is legal.
type Reason string

const ReasonOK Reason = ""

// #endregion reason

// #region application
// Application is an immutable snapshot of a running topology: the set of
// NodeInstances, the static binding and containment relations, the
// hard-reset feature flag, and every fact derived from the nodes' current
// states. Every successor constructor returns a fresh Application; none of
// Application's methods mutate the receiver or anything it points to other
// than the one NodeInstance being replaced, which is itself replaced by a
// clone, never mutated in place.
type Application struct {
	Nodes        map[NodeId]*NodeInstance
	Binding      map[ReqId]CapId
	ContainedBy  map[NodeId]NodeId
	HasHardReset bool

	Reqs                    map[ReqId]struct{}
	Caps                    map[CapId]struct{}
	ReqNodeId               map[ReqId]NodeId
	CapNodeId               map[CapId]NodeId
	Faults                  map[ReqId]struct{}
	IsConsistent            bool
	IsContainmentConsistent bool
	GlobalState             GlobalStateKey
}

// #endregion application

// #region build
// BuildApplication validates the topology-level invariants (requirement
// and capability ids unique across nodes, binding total over every
// declared requirement) and constructs the initial Application, with
// every node at its spec's initial state.
func BuildApplication(specs map[NodeId]*NodeSpec, binding map[ReqId]CapId, containedBy map[NodeId]NodeId, hasHardReset bool) (*Application, error) {
	reqNodeId := map[ReqId]NodeId{}
	capNodeId := map[CapId]NodeId{}

	for _, nodeId := range sortedStringKeys(specs) {
		spec := specs[nodeId]
		for req := range spec.Reqs {
			if owner, ok := reqNodeId[req]; ok {
				return nil, specInvalid("application", fmt.Sprintf("requirement %q declared by both %s and %s", req, owner, nodeId))
			}
			reqNodeId[req] = nodeId
		}
		for cap := range spec.Caps {
			if owner, ok := capNodeId[cap]; ok {
				return nil, specInvalid("application", fmt.Sprintf("capability %q declared by both %s and %s", cap, owner, nodeId))
			}
			capNodeId[cap] = nodeId
		}
	}

	for _, req := range sortedStringKeys(reqNodeId) {
		cap, ok := binding[req]
		if !ok {
			return nil, specInvalid("application binding", fmt.Sprintf("requirement %q has no binding", req))
		}
		if _, ok := capNodeId[cap]; !ok {
			return nil, specInvalid("application binding", fmt.Sprintf("requirement %q is bound to undeclared capability %q", req, cap))
		}
	}
	for req := range binding {
		if _, ok := reqNodeId[req]; !ok {
			return nil, specInvalid("application binding", fmt.Sprintf("binding names undeclared requirement %q", req))
		}
	}

	nodes := make(map[NodeId]*NodeInstance, len(specs))
	for nodeId, spec := range specs {
		nodes[nodeId] = NewNodeInstance(spec)
	}

	app := &Application{
		Nodes:        nodes,
		Binding:      binding,
		ContainedBy:  containedBy,
		HasHardReset: hasHardReset,
		ReqNodeId:    reqNodeId,
		CapNodeId:    capNodeId,
	}
	app.deriveFacts()
	return app, nil
}

// #endregion build

// #region derive
// deriveFacts recomputes every field derived from the nodes' current
// states: the active requirement/capability union, faults, the two
// consistency flags, and the canonical global-state key. Called once at
// construction and once per successor.
func (a *Application) deriveFacts() {
	reqs := map[ReqId]struct{}{}
	caps := map[CapId]struct{}{}
	containmentConsistent := true

	for _, nodeId := range sortedStringKeys(a.Nodes) {
		inst := a.Nodes[nodeId]
		st := inst.currentState()
		for req := range st.Reqs {
			reqs[req] = struct{}{}
		}
		for cap := range st.Caps {
			caps[cap] = struct{}{}
		}
		if st.IsAlive {
			if containerId, ok := a.ContainedBy[nodeId]; ok {
				if containerInst, ok := a.Nodes[containerId]; ok {
					if !containerInst.currentState().IsAlive {
						containmentConsistent = false
					}
				}
			}
		}
	}

	faults := map[ReqId]struct{}{}
	for req := range reqs {
		if _, ok := caps[a.Binding[req]]; !ok {
			faults[req] = struct{}{}
		}
	}

	a.Reqs = reqs
	a.Caps = caps
	a.Faults = faults
	a.IsConsistent = len(faults) == 0
	a.IsContainmentConsistent = containmentConsistent
	a.GlobalState = computeGlobalState(a.Nodes)
}

// #endregion derive

// #region op-legality
// unsatisfiedOpConstraints reports why performOp(nodeId, opId) is illegal,
// or ReasonOK if it is legal. Check order is part of the contract: it
// determines which reason string a caller sees, and it is the reason the
// liveness check below is skipped entirely unless hasHardReset is set.
func (a *Application) unsatisfiedOpConstraints(nodeId NodeId, opId OpId) Reason {
	if !a.IsConsistent {
		return "faults pending"
	}
	if a.HasHardReset && !a.IsContainmentConsistent {
		return "liveness constraint failing"
	}
	inst, ok := a.Nodes[nodeId]
	if !ok {
		return "unknown node"
	}
	op, ok := inst.currentState().Ops[opId]
	if !ok {
		return "unknown operation"
	}
	if !a.anyAlternativeSatisfied(op.Reqs) {
		return "no requirement alternative satisfied"
	}
	return ReasonOK
}

func (a *Application) anyAlternativeSatisfied(alternatives [][]ReqId) bool {
	for _, alt := range alternatives {
		if a.alternativeSatisfied(alt) {
			return true
		}
	}
	return false
}

func (a *Application) alternativeSatisfied(alt []ReqId) bool {
	for _, req := range alt {
		if _, ok := a.Caps[a.Binding[req]]; !ok {
			return false
		}
	}
	return true
}

// CanPerformOp reports whether performing opId on nodeId is currently legal.
func (a *Application) CanPerformOp(nodeId NodeId, opId OpId) bool {
	return a.unsatisfiedOpConstraints(nodeId, opId) == ReasonOK
}

// #endregion op-legality

// #region handler-legality
// unsatisfiedHandlerConstraints reports why handleFault(nodeId, reqId) is
// illegal, or ReasonOK if it is legal. Deliberately has no "isConsistent"
// short-circuit: handlers exist precisely to drain faults, so requiring
// !isConsistent here would be backwards.
func (a *Application) unsatisfiedHandlerConstraints(nodeId NodeId, reqId ReqId) Reason {
	if _, faulted := a.Faults[reqId]; !faulted {
		return "requirement not faulted"
	}
	inst, ok := a.Nodes[nodeId]
	if !ok {
		return "unknown node"
	}
	if _, ok := inst.currentState().Handlers[reqId]; !ok {
		return "no handler for requirement"
	}
	return ReasonOK
}

// CanHandleFault reports whether handling reqId on nodeId is currently legal.
func (a *Application) CanHandleFault(nodeId NodeId, reqId ReqId) bool {
	return a.unsatisfiedHandlerConstraints(nodeId, reqId) == ReasonOK
}

// #endregion handler-legality

// #region hard-reset-legality
// unsatisfiedHardResetConstraints reports why doHardReset(nodeId) is
// illegal, or ReasonOK if it is legal. The container-liveness check is
// non-transitive by design: only the immediate container is consulted.
func (a *Application) unsatisfiedHardResetConstraints(nodeId NodeId) Reason {
	if !a.HasHardReset {
		return "hard reset disabled"
	}
	containerId, ok := a.ContainedBy[nodeId]
	if !ok {
		return "node has no container"
	}
	containerInst, ok := a.Nodes[containerId]
	if ok && containerInst.currentState().IsAlive {
		return "container is alive"
	}
	return ReasonOK
}

// CanHardReset reports whether hard-resetting nodeId is currently legal.
func (a *Application) CanHardReset(nodeId NodeId) bool {
	return a.unsatisfiedHardResetConstraints(nodeId) == ReasonOK
}

// #endregion hard-reset-legality

// #region successors
// successorWithNode returns a fresh Application identical to a except that
// nodeId's instance is replaced by next, with every derived field
// recomputed. Every other node entry is shared structurally, unchanged.
func (a *Application) successorWithNode(nodeId NodeId, next *NodeInstance) *Application {
	nodes := make(map[NodeId]*NodeInstance, len(a.Nodes))
	for id, inst := range a.Nodes {
		nodes[id] = inst
	}
	nodes[nodeId] = next

	succ := &Application{
		Nodes:        nodes,
		Binding:      a.Binding,
		ContainedBy:  a.ContainedBy,
		HasHardReset: a.HasHardReset,
		ReqNodeId:    a.ReqNodeId,
		CapNodeId:    a.CapNodeId,
	}
	succ.deriveFacts()
	return succ
}

// PerformOp applies opId on nodeId and returns the successor Application,
// or *IllegalApplicationMove if the legality predicate fails.
func (a *Application) PerformOp(nodeId NodeId, opId OpId) (*Application, error) {
	if reason := a.unsatisfiedOpConstraints(nodeId, opId); reason != ReasonOK {
		return nil, illegalApplicationMove(nodeId, string(reason))
	}
	next := a.Nodes[nodeId].clone()
	if _, err := next.performOp(nodeId, opId); err != nil {
		return nil, err
	}
	return a.successorWithNode(nodeId, next), nil
}

// HandleFault handles reqId on nodeId and returns the successor Application,
// or *IllegalApplicationMove if the legality predicate fails.
func (a *Application) HandleFault(nodeId NodeId, reqId ReqId) (*Application, error) {
	if reason := a.unsatisfiedHandlerConstraints(nodeId, reqId); reason != ReasonOK {
		return nil, illegalApplicationMove(nodeId, string(reason))
	}
	next := a.Nodes[nodeId].clone()
	if _, err := next.handleFault(nodeId, reqId); err != nil {
		return nil, err
	}
	return a.successorWithNode(nodeId, next), nil
}

// DoHardReset hard-resets nodeId and returns the successor Application, or
// *IllegalApplicationMove if the legality predicate fails.
func (a *Application) DoHardReset(nodeId NodeId) (*Application, error) {
	if reason := a.unsatisfiedHardResetConstraints(nodeId); reason != ReasonOK {
		return nil, illegalApplicationMove(nodeId, string(reason))
	}
	next := a.Nodes[nodeId].clone()
	next.doHardReset()
	return a.successorWithNode(nodeId, next), nil
}

// #endregion successors
