package builder

import "github.com/hashicorp/hcl/v2"

// #region document
// hclDocument is the top-level structure of one topology HCL file.
type hclDocument struct {
	Nodes        []*hclNode        `hcl:"node,block"`
	Bindings     []*hclBinding     `hcl:"binding,block"`
	Containments []*hclContainment `hcl:"contained_by,block"`
	HardReset    *bool             `hcl:"hard_reset_enabled,optional"`
}

// #endregion document

// #region node
// hclNode mirrors topology.NodeSpec for HCL decoding. Caps/Reqs/Ops are kept
// as raw expressions since HCL attribute lists decode more naturally through
// cty than a gohcl struct tag can express for a bare string set.
type hclNode struct {
	ID            string        `hcl:"id,label"`
	Type          string        `hcl:"type"`
	InitialState  string        `hcl:"initial_state"`
	Caps          hcl.Expression `hcl:"caps,optional"`
	Reqs          hcl.Expression `hcl:"reqs,optional"`
	Ops           hcl.Expression `hcl:"ops,optional"`
	States        []*hclState   `hcl:"state,block"`
}

// #endregion node

// #region state
type hclState struct {
	ID       string         `hcl:"id,label"`
	Alive    bool           `hcl:"alive"`
	Caps     hcl.Expression `hcl:"caps,optional"`
	Reqs     hcl.Expression `hcl:"reqs,optional"`
	Ops      []*hclOp       `hcl:"op,block"`
	Handlers []*hclHandler  `hcl:"handler,block"`
}

// #endregion state

// #region op
type hclOp struct {
	ID           string           `hcl:"id,label"`
	To           string           `hcl:"to"`
	Alternatives []*hclAlternative `hcl:"requires,block"`
}

// hclAlternative is one requirement-alternative set for an op: satisfying
// any one declared alternative is enough to enable the op.
type hclAlternative struct {
	Reqs hcl.Expression `hcl:"reqs,optional"`
}

// #endregion op

// #region handler
type hclHandler struct {
	ReqID string `hcl:"req_id,label"`
	To    string `hcl:"to"`
}

// #endregion handler

// #region binding
type hclBinding struct {
	Req string `hcl:"req"`
	Cap string `hcl:"cap"`
}

// #endregion binding

// #region containment
type hclContainment struct {
	Node      string `hcl:"node"`
	Container string `hcl:"container"`
}

// #endregion containment
