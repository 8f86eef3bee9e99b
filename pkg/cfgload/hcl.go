// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

var errHCLBody = errors.New("HCL body is not native syntax")

// hclItem is an attribute or a block positioned in the source.
type hclItem struct {
	offset int
	path   []string
	value  any
}

// decodeHCL maps attributes to leaves and blocks to subtrees keyed by the
// block type followed by its labels. Expressions are evaluated without
// variables or functions.
func decodeHCL(data []byte, o loadOptions) (cfgtree.Dict, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, o.filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errHCLBody
	}
	return hclBody(body)
}

func hclBody(body *hclsyntax.Body) (cfgtree.Dict, error) {
	items := make([]hclItem, 0, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		v, err := hclExpr(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		items = append(items, hclItem{offset: attr.SrcRange.Start.Byte, path: []string{name}, value: v})
	}
	for _, block := range body.Blocks {
		v, err := hclBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}
		path := append([]string{block.Type}, block.Labels...)
		items = append(items, hclItem{offset: block.TypeRange.Start.Byte, path: path, value: v})
	}
	// Attributes come from a map; source offsets restore declaration order.
	slices.SortFunc(items, func(a, b hclItem) int { return a.offset - b.offset })

	var d cfgtree.Dict
	for _, it := range items {
		d = insertPath(d, it.path, it.value)
	}
	if d == nil {
		d = cfgtree.Dict{}
	}
	return d, nil
}

// insertPath stores v under path, merging repeated blocks of the same type
// into one subtree.
func insertPath(d cfgtree.Dict, path []string, v any) cfgtree.Dict {
	key := path[0]
	for i, it := range d {
		if it.Key != key {
			continue
		}
		existing, isDict := it.Value.(cfgtree.Dict)
		if len(path) == 1 {
			if incoming, ok := v.(cfgtree.Dict); ok && isDict {
				d[i].Value = append(existing, incoming...)
			} else {
				d[i].Value = v
			}
			return d
		}
		d[i].Value = insertPath(existing, path[1:], v)
		return d
	}
	if len(path) == 1 {
		return append(d, cfgtree.Item{Key: key, Value: v})
	}
	return append(d, cfgtree.Item{Key: key, Value: insertPath(nil, path[1:], v)})
}

// hclExpr keeps the member order of object constructors, which cty values
// do not carry.
func hclExpr(expr hclsyntax.Expression) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		d := cfgtree.Dict{}
		for _, item := range e.Items {
			kv, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			if kv.IsNull() || !kv.IsKnown() || kv.Type() != cty.String {
				return nil, fmt.Errorf("object key at %s is not a string", item.KeyExpr.Range())
			}
			v, err := hclExpr(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			d = append(d, cfgtree.Item{Key: kv.AsString(), Value: v})
		}
		return d, nil
	case *hclsyntax.TupleConsExpr:
		out := make([]any, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, err := hclExpr(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	v, diags := expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToNative(v)
}

// ctyToNative converts a cty.Value into plain Go values. Whole numbers become
// int64; sets become cfgtree.Set.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsSetType():
		set := cfgtree.Set{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			set = append(set, cfgtree.ValueOf(item))
		}
		return set, nil

	case ty.IsListType() || ty.IsTupleType():
		out := make([]any, 0)
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		d := cfgtree.Dict{}
		for it := v.ElementIterator(); it.Next(); {
			key, ev := it.Element()
			item, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			d = append(d, cfgtree.Item{Key: key.AsString(), Value: item})
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported cty type: %s", ty.FriendlyName())
	}
}
