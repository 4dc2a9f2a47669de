package topology

// #region node-instance
// NodeInstance is a running node: a pointer to its immutable spec plus its
// current state id. Node-local moves never consult other nodes; whether an
// op or handler is "legal" in the application sense (requirements actually
// satisfied, faults actually pending) is decided one level up, by
// Application.
type NodeInstance struct {
	Spec           *NodeSpec
	CurrentStateId StateId
}

// NewNodeInstance starts a node at its spec's declared initial state.
func NewNodeInstance(spec *NodeSpec) *NodeInstance {
	return &NodeInstance{Spec: spec, CurrentStateId: spec.InitialStateId}
}

func (n *NodeInstance) currentState() State {
	return n.Spec.States[n.CurrentStateId]
}

// #endregion node-instance

// #region node-local-moves
// performOp moves the node along op, regardless of whether the
// application-level requirement check has been done — the caller
// (Application) is responsible for checking unsatisfiedOpConstraints first. It returns
// *IllegalNodeMove only if op is not declared in the current state, which
// indicates a caller bug rather than an application-level illegality.
func (n *NodeInstance) performOp(nodeId NodeId, op OpId) (StateId, error) {
	st := n.currentState()
	o, ok := st.Ops[op]
	if !ok {
		return "", illegalNodeMove(nodeId, "op not defined in current state")
	}
	n.CurrentStateId = o.To
	return o.To, nil
}

// handleFault moves the node along its handler for req, assuming the
// caller has already established the requirement is actually faulted.
func (n *NodeInstance) handleFault(nodeId NodeId, req ReqId) (StateId, error) {
	st := n.currentState()
	to, ok := st.Handlers[req]
	if !ok {
		return "", illegalNodeMove(nodeId, "no handler declared for requirement in current state")
	}
	n.CurrentStateId = to
	return to, nil
}

// doHardReset moves the node straight to its spec's initial state,
// unconditionally. Whether hard reset is permitted at all (container
// liveness, HasHardReset flag) is an application-level decision.
func (n *NodeInstance) doHardReset() StateId {
	n.CurrentStateId = n.Spec.InitialStateId
	return n.CurrentStateId
}

// #endregion node-local-moves

// #region clone
// clone returns an independent copy of n, sharing the immutable *NodeSpec
// but free to move without affecting n. Application successors clone the
// node that moves and share the others, never mutating in place, so that DFS/Floyd-Warshall
// exploration never corrupts a state another path still needs.
func (n *NodeInstance) clone() *NodeInstance {
	return &NodeInstance{Spec: n.Spec, CurrentStateId: n.CurrentStateId}
}

// #endregion clone
