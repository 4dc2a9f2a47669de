package builder

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// #region eval-string-list
// evalStringList evaluates expr against an empty context, converts the
// result (an HCL list literal evaluates to a tuple) to a list of strings,
// and decodes it into a Go string slice via gocty. A nil expr, or one that
// evaluates to null (gohcl's stand-in for an omitted attribute), decodes
// to nil.
func evalStringList(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluate list: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	var out []string
	if err := gocty.FromCtyValue(list, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// #endregion eval-string-list
