// SPDX-License-Identifier: MPL-2.0

package cfgload

import (
	"bytes"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// decodeYAML walks the node tree instead of decoding into maps so mapping
// order survives.
func decodeYAML(data []byte) (cfgtree.Dict, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfgtree.Dict{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotAMapping
	}
	return yamlMapping(root)
}

func yamlMapping(n *yaml.Node) (cfgtree.Dict, error) {
	d := make(cfgtree.Dict, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolveAlias(n.Content[i+1])
		// Merge keys splice the referenced mapping in place.
		if k.Tag == "!!merge" {
			merged, err := yamlMerge(v)
			if err != nil {
				return nil, err
			}
			d = append(d, merged...)
			continue
		}
		val, err := yamlValue(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", k.Line, err)
		}
		d = append(d, cfgtree.Item{Key: k.Value, Value: val})
	}
	return d, nil
}

func yamlMerge(n *yaml.Node) (cfgtree.Dict, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.SequenceNode:
		var out cfgtree.Dict
		for _, item := range n.Content {
			m, err := yamlMerge(resolveAlias(item))
			if err != nil {
				return nil, err
			}
			out = append(out, m...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value is not a mapping", n.Line)
	}
}

func yamlValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// EncodeYAML renders c as a YAML mapping in tree order.
func EncodeYAML(c *cfgtree.Config) ([]byte, error) {
	root, err := yamlNode(c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlNode(v cfgtree.Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case *cfgtree.Config:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, child := range t.All() {
			cn, err := yamlNode(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content, yamlString(k), cn)
		}
		return n, nil
	case cfgtree.Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range t.Entries() {
			cn, err := yamlNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, yamlString(cfgtree.Display(e.Key)), cn)
		}
		return n, nil
	case cfgtree.List, cfgtree.Tuple, cfgtree.Set:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range sequence(t) {
			cn, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, cn)
		}
		return n, nil
	case cfgtree.Opaque:
		return yamlString(cfgtree.Display(t)), nil
	case cfgtree.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(float64(t))}, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(cfgtree.Native(v)); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func yamlString(s string) *yaml.Node {
	n := &yaml.Node{}
	// Encoding a string cannot fail; it also picks quoting for values such
	// as "true" or "1" that would otherwise change type.
	_ = n.Encode(s)
	return n
}

// yamlFloat keeps a fractional part so integral floats do not read back as
// integers.
func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return cfgtree.FormatFloat(f)
}

// sequence returns the items of a List, Tuple or Set.
func sequence(v cfgtree.Value) []cfgtree.Value {
	switch t := v.(type) {
	case cfgtree.List:
		return t
	case cfgtree.Tuple:
		return t
	case cfgtree.Set:
		return t
	}
	return nil
}
