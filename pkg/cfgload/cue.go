// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"fmt"
	"math"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"
	"cuelang.org/go/cue/token"

	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/cueutil"
)

var cueKeywords = map[string]bool{
	"null": true, "true": true, "false": true,
	"if": true, "for": true, "in": true, "let": true, "import": true, "package": true,
}

// decodeCUE requires a concrete document. Definitions and hidden fields are
// not part of the tree.
func decodeCUE(data []byte, o loadOptions) (cfgtree.Dict, error) {
	v, err := cueutil.Compile(data, cueutil.WithFilename(o.filename), cueutil.WithMaxFileSize(o.maxFileSize))
	if err != nil {
		return nil, err
	}
	if v.Kind() != cue.StructKind {
		return nil, ErrNotAMapping
	}
	return cueStruct(v)
}

func cueStruct(v cue.Value) (cfgtree.Dict, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, err
	}
	d := cfgtree.Dict{}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		val, err := cueValue(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		d = append(d, cfgtree.Item{Key: label, Value: val})
	}
	return d, nil
}

func cueValue(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StructKind:
		return cueStruct(v)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		out := []any{}
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.BytesKind:
		return v.Bytes()
	default:
		return nil, fmt.Errorf("unsupported CUE value of kind %s", v.Kind())
	}
}

// EncodeCUE renders c as CUE source in tree order.
func EncodeCUE(c *cfgtree.Config) ([]byte, error) {
	decls, err := cueFields(c)
	if err != nil {
		return nil, err
	}
	return format.Node(&ast.File{Decls: decls})
}

func cueFields(c *cfgtree.Config) ([]ast.Decl, error) {
	decls := make([]ast.Decl, 0, c.Len())
	for k, v := range c.All() {
		expr, err := cueExpr(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		decls = append(decls, &ast.Field{Label: cueLabel(k), Value: expr})
	}
	return decls, nil
}

func cueExpr(v cfgtree.Value) (ast.Expr, error) {
	switch t := v.(type) {
	case *cfgtree.Config:
		decls, err := cueFields(t)
		if err != nil {
			return nil, err
		}
		return &ast.StructLit{Elts: decls}, nil
	case cfgtree.Mapping:
		lit := &ast.StructLit{}
		for _, e := range t.Entries() {
			expr, err := cueExpr(e.Value)
			if err != nil {
				return nil, err
			}
			lit.Elts = append(lit.Elts, &ast.Field{Label: cueLabel(cfgtree.Display(e.Key)), Value: expr})
		}
		return lit, nil
	case cfgtree.List, cfgtree.Tuple, cfgtree.Set:
		items := sequence(t)
		exprs := make([]ast.Expr, len(items))
		for i, item := range items {
			expr, err := cueExpr(item)
			if err != nil {
				return nil, err
			}
			exprs[i] = expr
		}
		return ast.NewList(exprs...), nil
	case cfgtree.Null:
		return ast.NewNull(), nil
	case cfgtree.Bool:
		return ast.NewBool(bool(t)), nil
	case cfgtree.Int:
		return ast.NewLit(token.INT, strconv.FormatInt(int64(t), 10)), nil
	case cfgtree.Float:
		f := float64(t)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("float %s has no CUE representation", cfgtree.FormatFloat(f))
		}
		return ast.NewLit(token.FLOAT, cfgtree.FormatFloat(f)), nil
	default:
		return ast.NewString(cfgtree.Display(v)), nil
	}
}

// cueLabel quotes keys that are not plain identifiers. Leading '_' and '#'
// would declare hidden fields and definitions.
func cueLabel(k string) ast.Label {
	if ast.IsValidIdent(k) && k[0] != '_' && k[0] != '#' && !cueKeywords[k] {
		return ast.NewIdent(k)
	}
	return ast.NewString(k)
}
