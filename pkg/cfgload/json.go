// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

var errInvalidJSON = errors.New("invalid JSON")

// decodeJSON iterates with gjson, which visits object members in document
// order.
func decodeJSON(data []byte) (cfgtree.Dict, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotAMapping
	}
	v, err := jsonValue(root)
	if err != nil {
		return nil, err
	}
	return v.(cfgtree.Dict), nil
}

func jsonValue(r gjson.Result) (any, error) {
	switch r.Type {
	case gjson.Null:
		return nil, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.String:
		return r.String(), nil
	case gjson.Number:
		return jsonNumber(r.Raw)
	}

	var err error
	switch {
	case r.IsObject():
		d := cfgtree.Dict{}
		r.ForEach(func(k, v gjson.Result) bool {
			var val any
			val, err = jsonValue(v)
			if err != nil {
				err = fmt.Errorf("%s: %w", k.String(), err)
				return false
			}
			d = append(d, cfgtree.Item{Key: k.String(), Value: val})
			return true
		})
		return d, err
	case r.IsArray():
		out := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			var val any
			val, err = jsonValue(v)
			if err != nil {
				return false
			}
			out = append(out, val)
			return true
		})
		return out, err
	}
	return nil, fmt.Errorf("%w: unexpected token %q", errInvalidJSON, r.Raw)
}

// jsonNumber keeps integers integral; gjson only offers float64.
func jsonNumber(raw string) (any, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", raw, err)
	}
	return f, nil
}

// EncodeJSON renders c as an indented JSON object in tree order.
func EncodeJSON(c *cfgtree.Config) ([]byte, error) {
	out, err := jsonObject(c)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(out, &pretty.Options{Width: 80, Indent: "  "}), nil
}

// jsonObject builds the document with sjson, which appends new members at
// the end of an object.
func jsonObject(c *cfgtree.Config) ([]byte, error) {
	out := []byte("{}")
	for k, v := range c.All() {
		var err error
		if out, err = jsonSet(out, jsonKey(k), v); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	return out, nil
}

func jsonSet(out []byte, path string, v cfgtree.Value) ([]byte, error) {
	switch t := v.(type) {
	case cfgtree.String, cfgtree.Opaque:
		return sjson.SetBytes(out, path, cfgtree.Display(t))
	case cfgtree.Bool:
		return sjson.SetBytes(out, path, bool(t))
	case cfgtree.Null:
		return sjson.SetBytes(out, path, nil)
	}
	raw, err := jsonRaw(v)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, path, raw)
}

func jsonRaw(v cfgtree.Value) ([]byte, error) {
	var err error
	switch t := v.(type) {
	case *cfgtree.Config:
		return jsonObject(t)
	case cfgtree.Mapping:
		out := []byte("{}")
		for _, e := range t.Entries() {
			if out, err = jsonSet(out, jsonKey(cfgtree.Display(e.Key)), e.Value); err != nil {
				return nil, err
			}
		}
		return out, nil
	case cfgtree.List, cfgtree.Tuple, cfgtree.Set:
		out := []byte("[]")
		for _, item := range sequence(t) {
			// "-1" appends to an array.
			if out, err = jsonSet(out, "-1", item); err != nil {
				return nil, err
			}
		}
		return out, nil
	case cfgtree.Float:
		f := float64(t)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("float %s has no JSON representation", cfgtree.FormatFloat(f))
		}
		// FormatFloat keeps a fractional part so the value reads back as a float.
		return []byte(cfgtree.FormatFloat(f)), nil
	case cfgtree.Int:
		return []byte(strconv.FormatInt(int64(t), 10)), nil
	default:
		return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

// jsonKey escapes sjson path syntax so k is used as one literal member name.
// A leading ':' stops numeric names from being read as array indexes.
func jsonKey(k string) string {
	var b strings.Builder
	if k != "" && strings.Trim(k, "0123456789") == "" {
		b.WriteByte(':')
	}
	for i, r := range k {
		if strings.ContainsRune(`.*?|#@\`, r) || (i == 0 && r == ':') {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
