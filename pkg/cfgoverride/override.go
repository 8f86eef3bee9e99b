// SPDX-License-Identifier: MPL-2.0

package cfgoverride

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/runcfg/runcfg/pkg/cfgtree"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("malformed config override")

type (
	// Override is one parsed override entry.
	Override struct {
		Path  cfgtree.Path
		Value cfgtree.Value
	}

	// ParseError reports an override entry that cannot be parsed or evaluated.
	ParseError struct {
		Entry  string
		Reason string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config override %q: %s", e.Entry, e.Reason)
}

// Unwrap returns ErrParse so callers can use errors.Is for programmatic detection.
func (e *ParseError) Unwrap() error { return ErrParse }

// String renders the override back in entry form.
func (o Override) String() string {
	return o.Path.Tuple() + ",(" + cfgtree.Repr(o.Value) + ")"
}

// Parse parses a single override entry.
func Parse(entry string) (Override, error) {
	pathSrc, valueSrc, err := split(entry)
	if err != nil {
		return Override{}, &ParseError{Entry: entry, Reason: err.Error()}
	}
	path, err := evalPath(pathSrc)
	if err != nil {
		return Override{}, &ParseError{Entry: entry, Reason: err.Error()}
	}
	value, err := evalValue(valueSrc)
	if err != nil {
		return Override{}, &ParseError{Entry: entry, Reason: err.Error()}
	}
	return Override{Path: path, Value: value}, nil
}

// ParseAll parses every entry, stopping at the first malformed one.
func ParseAll(entries []string) ([]Override, error) {
	out := make([]Override, 0, len(entries))
	for _, e := range entries {
		o, err := Parse(e)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Apply parses entries and assigns each value into c, in order, following
// c's update and clobber modes. The overrides are first applied to a copy of
// c, so a malformed entry or a rejected assignment leaves c untouched.
func Apply(c *cfgtree.Config, entries []string) error {
	overrides, err := ParseAll(entries)
	if err != nil {
		return err
	}
	if err := assignAll(c.Copy(), overrides, entries); err != nil {
		return err
	}
	if err := assignAll(c, overrides, entries); err != nil {
		return err
	}
	for _, o := range overrides {
		slog.Debug("config override applied", "path", o.Path.String(), "value", cfgtree.Repr(o.Value))
	}
	return nil
}

func assignAll(c *cfgtree.Config, overrides []Override, entries []string) error {
	for i, o := range overrides {
		if err := c.SetPath(o.Path, o.Value); err != nil {
			return fmt.Errorf("apply config override %q: %w", entries[i], err)
		}
	}
	return nil
}

func evalPath(src string) (cfgtree.Path, error) {
	src = strings.TrimSuffix(strings.TrimSpace(src), ",")
	if src == "" {
		return nil, errors.New("empty key path")
	}
	out, err := expr.Eval("["+src+"]", nil)
	if err != nil {
		return nil, fmt.Errorf("evaluate key path: %w", err)
	}
	items, ok := out.([]any)
	if !ok {
		return nil, fmt.Errorf("key path evaluated to %T", out)
	}
	path := make(cfgtree.Path, 0, len(items))
	for i, item := range items {
		seg, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("key path segment %d is %T, want a quoted string", i, item)
		}
		path = append(path, seg)
	}
	if len(path) == 0 {
		return nil, errors.New("empty key path")
	}
	return path, nil
}

func evalValue(src string) (cfgtree.Value, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("empty value")
	}
	env := map[string]any{
		"True":  true,
		"False": false,
		"None":  nil,
	}
	program, err := expr.Compile(src,
		expr.Env(env),
		expr.Function("str", toStr),
		expr.Function("bool", toBool),
	)
	if err != nil {
		return nil, fmt.Errorf("compile value: %w", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate value: %w", err)
	}
	return cfgtree.ValueOf(out), nil
}

func toStr(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("str() takes 1 argument, got %d", len(params))
	}
	return cfgtree.Display(cfgtree.ValueOf(params[0])), nil
}

func toBool(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("bool() takes 1 argument, got %d", len(params))
	}
	switch v := params[0].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
		return v != "", nil
	case []any:
		return len(v) > 0, nil
	case map[string]any:
		return len(v) > 0, nil
	}
	return true, nil
}

// split separates an entry into the contents of its two parenthesized
// groups. Quotes are honored so parentheses and commas inside string
// literals do not count.
func split(entry string) (string, string, error) {
	s := strings.TrimSpace(entry)
	first, rest, err := group(s)
	if err != nil {
		return "", "", fmt.Errorf("key path: %w", err)
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ",") {
		return "", "", errors.New(`expected "," between key path and value`)
	}
	rest = strings.TrimSpace(rest[1:])
	second, tail, err := group(rest)
	if err != nil {
		return "", "", fmt.Errorf("value: %w", err)
	}
	if strings.TrimSpace(tail) != "" {
		return "", "", fmt.Errorf("unexpected trailing text %q", tail)
	}
	return first, second, nil
}

// group returns the contents of the parenthesized group at the start of s
// and the text following it.
func group(s string) (string, string, error) {
	if !strings.HasPrefix(s, "(") {
		return "", "", errors.New(`expected "("`)
	}
	depth := 0
	var quote rune
	escaped := false
	for i, r := range s {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				if r != ')' {
					return "", "", errors.New("unbalanced brackets")
				}
				return s[1:i], s[i+1:], nil
			}
			if depth < 0 {
				return "", "", errors.New("unbalanced brackets")
			}
		}
	}
	if quote != 0 {
		return "", "", errors.New("unterminated string literal")
	}
	return "", "", errors.New(`missing ")"`)
}
