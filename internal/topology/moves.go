package topology

// #region step
// Step is the canonical witness for one move: the node it acts on, and
// either an op id (IsOp true), a faulted requirement id (IsOp false,
// OpOrReqId non-empty), or nothing (IsOp false, OpOrReqId empty — a hard
// reset). This is the canonical wire format downstream tooling parses.
type Step struct {
	NodeId    NodeId
	OpOrReqId string
	IsOp      bool
}

// IsHardReset reports whether s represents a hard reset rather than an op
// or a fault-handle.
func (s Step) IsHardReset() bool {
	return !s.IsOp && s.OpOrReqId == ""
}

// #endregion step

// #region move
// move pairs a Step with the application-level mutation it performs, so
// that Reachable and Planner can share one enumeration order and one
// application function instead of duplicating the ops/handles/resets
// traversal.
type move struct {
	step  Step
	apply func(a *Application) (*Application, error)
}

// #endregion move

// #region legal-moves
// legalMoves enumerates every move legal from a, in the order the design
// fixes as contractually stable: every op on every node (nodes sorted,
// then ops sorted within a node), then every fault-handle on every node's
// currently-faulted requirements (nodes sorted, then reqs sorted), then
// every hard reset (nodes sorted). This single order is what both
// Reachable's "first arrival wins" rule and Planner's equal-cost witness
// tie-break rely on.
func legalMoves(a *Application) []move {
	var moves []move

	for _, nodeId := range sortedStringKeys(a.Nodes) {
		inst := a.Nodes[nodeId]
		for _, opId := range sortedStringKeys(inst.currentState().Ops) {
			nodeId, opId := nodeId, opId
			if a.CanPerformOp(nodeId, opId) {
				moves = append(moves, move{
					step:  Step{NodeId: nodeId, OpOrReqId: string(opId), IsOp: true},
					apply: func(app *Application) (*Application, error) { return app.PerformOp(nodeId, opId) },
				})
			}
		}
	}

	for _, nodeId := range sortedStringKeys(a.Nodes) {
		inst := a.Nodes[nodeId]
		for _, reqId := range sortedStringKeys(inst.currentState().Handlers) {
			nodeId, reqId := nodeId, reqId
			if a.CanHandleFault(nodeId, reqId) {
				moves = append(moves, move{
					step:  Step{NodeId: nodeId, OpOrReqId: string(reqId), IsOp: false},
					apply: func(app *Application) (*Application, error) { return app.HandleFault(nodeId, reqId) },
				})
			}
		}
	}

	for _, nodeId := range sortedStringKeys(a.Nodes) {
		nodeId := nodeId
		if a.CanHardReset(nodeId) {
			moves = append(moves, move{
				step:  Step{NodeId: nodeId, OpOrReqId: "", IsOp: false},
				apply: func(app *Application) (*Application, error) { return app.DoHardReset(nodeId) },
			})
		}
	}

	return moves
}

// #endregion legal-moves

// #region exported-enumeration
// LegalMoves returns the Step witness for every move legal from a, in the
// same fixed order legalMoves uses internally. External packages (persist,
// trace) that need to enumerate edges of the reachability graph without
// duplicating the legality logic use this instead of re-deriving it.
func LegalMoves(a *Application) []Step {
	internal := legalMoves(a)
	steps := make([]Step, len(internal))
	for i, mv := range internal {
		steps[i] = mv.step
	}
	return steps
}

// Apply performs step on a and returns the successor Application. It is the
// counterpart to LegalMoves for callers that enumerated steps externally
// and now need to walk the corresponding edge.
func Apply(a *Application, step Step) (*Application, error) {
	if step.IsOp {
		return a.PerformOp(step.NodeId, OpId(step.OpOrReqId))
	}
	if step.OpOrReqId == "" {
		return a.DoHardReset(step.NodeId)
	}
	return a.HandleFault(step.NodeId, ReqId(step.OpOrReqId))
}

// #endregion exported-enumeration
