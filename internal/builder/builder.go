package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/danielpatrickdp/topology-analysis/internal/topology"
)

// #region result
// Result is a parsed topology ready for topology.BuildApplication. Each node
// spec has passed topology.NewNodeSpec's checks; the binding and containment
// are not checked until BuildApplication.
type Result struct {
	Specs        map[topology.NodeId]*topology.NodeSpec
	Binding      map[topology.ReqId]topology.CapId
	ContainedBy  map[topology.NodeId]topology.NodeId
	HasHardReset bool
}

// #endregion result

// #region load-dir
// LoadDir parses every .hcl file directly under dir and merges their node,
// binding, and containment declarations into one Result. Node ids must be
// unique across the whole directory.
func LoadDir(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hcl") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	result := &Result{
		Specs:       map[topology.NodeId]*topology.NodeSpec{},
		Binding:     map[topology.ReqId]topology.CapId{},
		ContainedBy: map[topology.NodeId]topology.NodeId{},
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		if err := loadFile(parser, file, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// #endregion load-dir

// #region load-file
func loadFile(parser *hclparse.Parser, path string, result *Result) error {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("parse %s: %w", path, diags)
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &doc); diags.HasErrors() {
		return fmt.Errorf("decode %s: %w", path, diags)
	}

	if doc.HardReset != nil && *doc.HardReset {
		result.HasHardReset = true
	}

	for _, n := range doc.Nodes {
		spec, err := nodeSpecFromHCL(n)
		if err != nil {
			return fmt.Errorf("%s: node %s: %w", path, n.ID, err)
		}
		if _, exists := result.Specs[topology.NodeId(n.ID)]; exists {
			return fmt.Errorf("%s: node %s declared more than once", path, n.ID)
		}
		result.Specs[topology.NodeId(n.ID)] = spec
	}

	for _, b := range doc.Bindings {
		result.Binding[topology.ReqId(b.Req)] = topology.CapId(b.Cap)
	}

	for _, c := range doc.Containments {
		result.ContainedBy[topology.NodeId(c.Node)] = topology.NodeId(c.Container)
	}

	return nil
}

// #endregion load-file

// #region node-conversion
func nodeSpecFromHCL(n *hclNode) (*topology.NodeSpec, error) {
	caps, err := evalStringList(n.Caps)
	if err != nil {
		return nil, fmt.Errorf("caps: %w", err)
	}
	reqs, err := evalStringList(n.Reqs)
	if err != nil {
		return nil, fmt.Errorf("reqs: %w", err)
	}
	ops, err := evalStringList(n.Ops)
	if err != nil {
		return nil, fmt.Errorf("ops: %w", err)
	}

	states := make(map[topology.StateId]topology.State, len(n.States))
	for _, s := range n.States {
		state, err := stateFromHCL(s)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", s.ID, err)
		}
		states[topology.StateId(s.ID)] = state
	}

	return topology.NewNodeSpec(
		topology.NodeId(n.ID),
		topology.StateId(n.InitialState),
		n.Type,
		toSet[topology.CapId](caps),
		toSet[topology.ReqId](reqs),
		toSet[topology.OpId](ops),
		states,
	)
}

func stateFromHCL(s *hclState) (topology.State, error) {
	caps, err := evalStringList(s.Caps)
	if err != nil {
		return topology.State{}, fmt.Errorf("caps: %w", err)
	}
	reqs, err := evalStringList(s.Reqs)
	if err != nil {
		return topology.State{}, fmt.Errorf("reqs: %w", err)
	}

	ops := make(map[topology.OpId]topology.Operation, len(s.Ops))
	for _, o := range s.Ops {
		op, err := opFromHCL(o)
		if err != nil {
			return topology.State{}, fmt.Errorf("op %s: %w", o.ID, err)
		}
		ops[topology.OpId(o.ID)] = op
	}

	var handlers map[topology.ReqId]topology.StateId
	if len(s.Handlers) > 0 {
		handlers = make(map[topology.ReqId]topology.StateId, len(s.Handlers))
		for _, h := range s.Handlers {
			handlers[topology.ReqId(h.ReqID)] = topology.StateId(h.To)
		}
	}

	return topology.State{
		IsAlive:  s.Alive,
		Caps:     toSet[topology.CapId](caps),
		Reqs:     toSet[topology.ReqId](reqs),
		Ops:      ops,
		Handlers: handlers,
	}, nil
}

func opFromHCL(o *hclOp) (topology.Operation, error) {
	var alternatives [][]topology.ReqId
	if len(o.Alternatives) == 0 {
		alternatives = [][]topology.ReqId{{}}
	} else {
		for _, alt := range o.Alternatives {
			reqs, err := evalStringList(alt.Reqs)
			if err != nil {
				return topology.Operation{}, fmt.Errorf("requires: %w", err)
			}
			alternative := make([]topology.ReqId, len(reqs))
			for i, r := range reqs {
				alternative[i] = topology.ReqId(r)
			}
			alternatives = append(alternatives, alternative)
		}
	}

	return topology.Operation{To: topology.StateId(o.To), Reqs: alternatives}, nil
}

// #endregion node-conversion

// #region helpers
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

// #endregion helpers
