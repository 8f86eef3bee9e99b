// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// decodeTOML unmarshals into Go maps, so keys are inserted sorted.
func decodeTOML(data []byte) (cfgtree.Dict, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return cfgtree.DictFromMap(tomlTables(m).(map[string]any)), nil
}

// tomlTables converts arrays of tables into []any of ordered Dicts so they
// become Mapping values rather than Go maps.
func tomlTables(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = tomlTables(child)
		}
		return t
	case []any:
		for i, item := range t {
			if m, ok := item.(map[string]any); ok {
				t[i] = cfgtree.DictFromMap(tomlTables(m).(map[string]any))
				continue
			}
			t[i] = tomlTables(item)
		}
		return t
	}
	return v
}

// EncodeTOML renders c as a TOML document. TOML has no null, so null leaves
// are omitted; nulls inside sequences are an error.
func EncodeTOML(c *cfgtree.Config) ([]byte, error) {
	doc, err := tomlDoc(c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tomlDoc(c *cfgtree.Config) (map[string]any, error) {
	m := make(map[string]any, c.Len())
	for k, v := range c.All() {
		if _, ok := v.(cfgtree.Null); ok {
			continue
		}
		tv, err := tomlValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		m[k] = tv
	}
	return m, nil
}

func tomlValue(v cfgtree.Value) (any, error) {
	switch t := v.(type) {
	case *cfgtree.Config:
		return tomlDoc(t)
	case cfgtree.Mapping:
		m := make(map[string]any, t.Len())
		for _, e := range t.Entries() {
			tv, err := tomlValue(e.Value)
			if err != nil {
				return nil, err
			}
			m[cfgtree.Display(e.Key)] = tv
		}
		return m, nil
	case cfgtree.List, cfgtree.Tuple, cfgtree.Set:
		items := sequence(t)
		out := make([]any, len(items))
		for i, item := range items {
			tv, err := tomlValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = tv
		}
		return out, nil
	case cfgtree.Null:
		return nil, fmt.Errorf("null has no TOML representation")
	case cfgtree.Opaque:
		return cfgtree.Display(t), nil
	}
	return cfgtree.Native(v), nil
}
