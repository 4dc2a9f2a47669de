package topology

import "fmt"

// #region spec-invalid
// SpecInvalid reports a structural violation found while constructing a
// NodeSpec or an Application. It names the offending identifier and the
// location (which field/check) that rejected it.
type SpecInvalid struct {
	Location string // e.g. "node N state s0 op go"
	Reason   string
}

func (e *SpecInvalid) Error() string {
	return fmt.Sprintf("spec invalid: %s: %s", e.Location, e.Reason)
}

func specInvalid(location, reason string) error {
	return &SpecInvalid{Location: location, Reason: reason}
}

// #endregion spec-invalid

// #region illegal-node-move
// IllegalNodeMove reports an attempt to perform a node-local move
// (NodeInstance.performOp/handleFault) that the current state's op/handler map does not
// define, or a caller bug of similar shape.
type IllegalNodeMove struct {
	NodeId NodeId
	Reason string
}

func (e *IllegalNodeMove) Error() string {
	return fmt.Sprintf("illegal node move on %s: %s", e.NodeId, e.Reason)
}

func illegalNodeMove(nodeId NodeId, reason string) error {
	return &IllegalNodeMove{NodeId: nodeId, Reason: reason}
}

// #endregion illegal-node-move

// #region illegal-application-move
// IllegalApplicationMove reports an application-level move whose
// precondition failed. Reason is stable and testable — see
// unsatisfiedOpConstraints, unsatisfiedHandlerConstraints and
// unsatisfiedHardResetConstraints for the exact strings and their order.
type IllegalApplicationMove struct {
	NodeId NodeId
	Reason string
}

func (e *IllegalApplicationMove) Error() string {
	return fmt.Sprintf("illegal application move on %s: %s", e.NodeId, e.Reason)
}

func illegalApplicationMove(nodeId NodeId, reason string) error {
	return &IllegalApplicationMove{NodeId: nodeId, Reason: reason}
}

// #endregion illegal-application-move
