// SPDX-License-Identifier: MPL-2.0

package cfgstore

import (
	"fmt"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

type (
	wireConfig struct {
		UpdateMode  string      `msgpack:"update_mode"`
		ClobberMode string      `msgpack:"clobber_mode"`
		ReportMode  string      `msgpack:"report_mode"`
		Entries     []wireEntry `msgpack:"entries"`
	}

	wireEntry struct {
		Key   string    `msgpack:"key"`
		Value wireValue `msgpack:"value"`
	}

	// wireValue is a tagged union keyed by Kind. Only the field matching
	// Kind is meaningful.
	wireValue struct {
		Kind  string      `msgpack:"kind"`
		Str   string      `msgpack:"str,omitempty"`
		Int   int64       `msgpack:"int,omitempty"`
		Float float64     `msgpack:"float,omitempty"`
		Bool  bool        `msgpack:"bool,omitempty"`
		Keys  []wireValue `msgpack:"keys,omitempty"`
		Items []wireValue `msgpack:"items,omitempty"`
		Sub   *wireConfig `msgpack:"sub,omitempty"`
	}
)

func encodeConfig(c *cfgtree.Config) *wireConfig {
	w := &wireConfig{
		UpdateMode:  c.UpdateMode().String(),
		ClobberMode: c.ClobberMode().String(),
		ReportMode:  c.ReportMode().String(),
		Entries:     make([]wireEntry, 0, c.Len()),
	}
	for k, v := range c.All() {
		w.Entries = append(w.Entries, wireEntry{Key: k, Value: encodeValue(v)})
	}
	return w
}

func encodeValue(v cfgtree.Value) wireValue {
	w := wireValue{Kind: v.Kind().String()}
	switch t := v.(type) {
	case cfgtree.String:
		w.Str = string(t)
	case cfgtree.Int:
		w.Int = int64(t)
	case cfgtree.Float:
		w.Float = float64(t)
	case cfgtree.Bool:
		w.Bool = bool(t)
	case cfgtree.List:
		w.Items = encodeValues(t)
	case cfgtree.Tuple:
		w.Items = encodeValues(t)
	case cfgtree.Set:
		w.Items = encodeValues(t)
	case cfgtree.Mapping:
		for _, e := range t.Entries() {
			w.Keys = append(w.Keys, encodeValue(e.Key))
			w.Items = append(w.Items, encodeValue(e.Value))
		}
	case *cfgtree.Config:
		w.Sub = encodeConfig(t)
	case cfgtree.Opaque:
		w.Str = cfgtree.Display(t)
	}
	return w
}

func encodeValues(vs []cfgtree.Value) []wireValue {
	out := make([]wireValue, len(vs))
	for i, v := range vs {
		out[i] = encodeValue(v)
	}
	return out
}

func decodeConfig(w *wireConfig) (*cfgtree.Config, error) {
	update, err := cfgtree.ParseUpdateMode(w.UpdateMode)
	if err != nil {
		return nil, err
	}
	clobber, err := cfgtree.ParseClobberMode(w.ClobberMode)
	if err != nil {
		return nil, err
	}
	report, err := cfgtree.ParseReportMode(w.ReportMode)
	if err != nil {
		return nil, err
	}

	c := cfgtree.New(
		cfgtree.WithUpdateMode(update),
		cfgtree.WithClobberMode(clobber),
		cfgtree.WithReportMode(report),
	)
	for _, e := range w.Entries {
		v, err := decodeValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		if err := c.SetPath(cfgtree.Path{e.Key}, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func decodeValue(w wireValue) (cfgtree.Value, error) {
	switch w.Kind {
	case cfgtree.KindNull.String():
		return cfgtree.Null{}, nil
	case cfgtree.KindString.String():
		return cfgtree.String(w.Str), nil
	case cfgtree.KindInt.String():
		return cfgtree.Int(w.Int), nil
	case cfgtree.KindFloat.String():
		return cfgtree.Float(w.Float), nil
	case cfgtree.KindBool.String():
		return cfgtree.Bool(w.Bool), nil
	case cfgtree.KindList.String():
		items, err := decodeValues(w.Items)
		return cfgtree.List(items), err
	case cfgtree.KindTuple.String():
		items, err := decodeValues(w.Items)
		return cfgtree.Tuple(items), err
	case cfgtree.KindSet.String():
		items, err := decodeValues(w.Items)
		return cfgtree.Set(items), err
	case cfgtree.KindMapping.String():
		if len(w.Keys) != len(w.Items) {
			return nil, fmt.Errorf("mapping has %d keys but %d values", len(w.Keys), len(w.Items))
		}
		m := cfgtree.NewMapping()
		for i := range w.Keys {
			k, err := decodeValue(w.Keys[i])
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(w.Items[i])
			if err != nil {
				return nil, err
			}
			m = m.With(k, v)
		}
		return m, nil
	case cfgtree.KindConfig.String():
		if w.Sub == nil {
			return cfgtree.New(), nil
		}
		return decodeConfig(w.Sub)
	case cfgtree.KindOpaque.String():
		return cfgtree.Opaque{V: w.Str}, nil
	}
	return nil, fmt.Errorf("unknown value kind %q", w.Kind)
}

func decodeValues(ws []wireValue) ([]cfgtree.Value, error) {
	if ws == nil {
		return []cfgtree.Value{}, nil
	}
	out := make([]cfgtree.Value, len(ws))
	for i, w := range ws {
		v, err := decodeValue(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
