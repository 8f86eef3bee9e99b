// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
)

type (
	// Config is an ordered tree of string keys to values. The zero value is
	// not usable; build one with New.
	Config struct {
		keys   []string
		values map[string]Value
		used   map[string]struct{}
		modes  modes
	}

	// Option configures a Config built by New.
	Option func(*Config)

	// GetOption configures a single lookup.
	GetOption func(*getOptions)

	getOptions struct {
		def      Value
		hasDef   bool
		markUsed bool
	}
)

// WithUpdateMode sets the update mode of the new Config.
func WithUpdateMode(m UpdateMode) Option {
	return func(c *Config) { c.modes.update = m }
}

// WithClobberMode sets the clobber mode of the new Config.
func WithClobberMode(m ClobberMode) Option {
	return func(c *Config) { c.modes.clobber = m }
}

// WithReportMode sets the report mode of the new Config.
func WithReportMode(m ReportMode) Option {
	return func(c *Config) { c.modes.report = m }
}

// WithDefault makes a lookup return v instead of reporting a missing key.
func WithDefault(v any) GetOption {
	return func(o *getOptions) {
		o.def = ValueOf(v)
		o.hasDef = true
	}
}

// MarkUsed records a successful lookup in the Config's used-key set.
func MarkUsed() GetOption {
	return func(o *getOptions) { o.markUsed = true }
}

// New returns an empty Config.
func New(opts ...Option) *Config {
	c := newWithModes(defaultModes())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newWithModes(m modes) *Config {
	return &Config{values: make(map[string]Value), modes: m}
}

// Kind returns KindConfig.
func (*Config) Kind() Kind { return KindConfig }

func (*Config) sealed() {}

// UpdateMode returns the update mode of this level of the tree.
func (c *Config) UpdateMode() UpdateMode { return c.modes.update }

// ClobberMode returns the clobber mode of this level of the tree.
func (c *Config) ClobberMode() ClobberMode { return c.modes.clobber }

// ReportMode returns the report mode of this level of the tree.
func (c *Config) ReportMode() ReportMode { return c.modes.report }

// Options returns the options that reproduce the policies of c.
func (c *Config) Options() []Option {
	return []Option{
		WithUpdateMode(c.modes.update),
		WithClobberMode(c.modes.clobber),
		WithReportMode(c.modes.report),
	}
}

// SetUpdateMode changes the update mode of c and every subtree below it.
func (c *Config) SetUpdateMode(m UpdateMode) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.eachSubtree(func(sub *Config) { sub.modes.update = m })
	return nil
}

// SetClobberMode changes the clobber mode of c and every subtree below it.
func (c *Config) SetClobberMode(m ClobberMode) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.eachSubtree(func(sub *Config) { sub.modes.clobber = m })
	return nil
}

// SetReportMode changes the report mode of c and every subtree below it.
func (c *Config) SetReportMode(m ReportMode) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.eachSubtree(func(sub *Config) { sub.modes.report = m })
	return nil
}

func (c *Config) eachSubtree(fn func(*Config)) {
	fn(c)
	for _, k := range c.keys {
		if sub, ok := c.values[k].(*Config); ok {
			sub.eachSubtree(fn)
		}
	}
}

// Len returns the number of keys at this level.
func (c *Config) Len() int { return len(c.keys) }

// Keys returns the keys at this level in insertion order.
func (c *Config) Keys() []string { return slices.Clone(c.keys) }

// Has reports whether key names a value, using the same resolution as Get.
func (c *Config) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// All yields the key/value pairs at this level in insertion order.
func (c *Config) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range c.keys {
			if !yield(k, c.values[k]) {
				return
			}
		}
	}
}

// Pairs yields the key/value pairs for canonical hashing.
func (c *Config) Pairs() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, k := range c.keys {
			if !yield(k, c.values[k]) {
				return
			}
		}
	}
}

// Get returns the value addressed by key. The key is first looked up
// literally, then as a dotted path. A missing key is handled according to the
// Config's ReportMode unless WithDefault is given.
func (c *Config) Get(key string, opts ...GetOption) (Value, error) {
	return c.GetPath(c.resolve(key), opts...)
}

// GetPath returns the value addressed by an explicit path. The empty path
// addresses c itself.
func (c *Config) GetPath(path Path, opts ...GetOption) (Value, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(path) == 0 {
		return c, nil
	}

	cur := c
	for i, seg := range path {
		v, ok := cur.values[seg]
		if !ok {
			return c.reportMissing(path, i, cur, o)
		}
		if i == len(path)-1 {
			if o.markUsed {
				cur.markUsed(seg)
			}
			return v, nil
		}
		sub, ok := v.(*Config)
		if !ok {
			return nil, &InvalidPathError{Path: path, Segment: i, Found: v.Kind()}
		}
		cur = sub
	}
	return cur, nil
}

// Lookup returns the value addressed by key and whether it exists. It never
// fails and never logs.
func (c *Config) Lookup(key string) (Value, bool) {
	return c.LookupPath(c.resolve(key))
}

// LookupPath is Lookup for an explicit path.
func (c *Config) LookupPath(path Path) (Value, bool) {
	if len(path) == 0 {
		return c, true
	}
	cur := c
	for i, seg := range path {
		v, ok := cur.values[seg]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if cur, ok = v.(*Config); !ok {
			return nil, false
		}
	}
	return nil, false
}

// GetConfig returns the subtree addressed by key. It returns nil without an
// error when the key is absent and the report mode does not fail.
func (c *Config) GetConfig(key string, opts ...GetOption) (*Config, error) {
	path := c.resolve(key)
	v, err := c.GetPath(path, opts...)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Config)
	if !ok {
		if IsMissing(v) {
			return nil, nil
		}
		return nil, &InvalidPathError{Path: path, Segment: len(path) - 1, Found: v.Kind()}
	}
	return sub, nil
}

// FindSubconfig returns the subtree addressed by key and whether it exists.
func (c *Config) FindSubconfig(key string) (*Config, bool) {
	v, ok := c.Lookup(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Config)
	return sub, ok
}

// Walk calls fn for every entry of the tree in depth-first insertion order.
// Subtrees are visited before their children. Walking stops at the first
// error, which is returned.
func (c *Config) Walk(fn func(Path, Value) error) error {
	return c.walk(nil, fn)
}

func (c *Config) walk(prefix Path, fn func(Path, Value) error) error {
	for k, v := range c.All() {
		p := prefix.Append(k)
		if err := fn(p, v); err != nil {
			return err
		}
		if sub, ok := v.(*Config); ok {
			if err := sub.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) reportMissing(path Path, seg int, at *Config, o getOptions) (Value, error) {
	if o.hasDef {
		return o.def, nil
	}
	switch c.modes.report {
	case ReportNone:
		return Missing, nil
	case ReportWarn:
		slog.Warn("config key not found", "key", path[seg], "path", path.String(), "available", at.Keys())
		return Missing, nil
	default:
		return nil, &KeyNotFoundError{Path: slices.Clone(path), Segment: seg, Available: at.Keys()}
	}
}

// Set assigns value at key, creating intermediate subtrees as needed. Dotted
// keys are resolved against existing content first; unmatched segments split
// on every dot. Go maps and Dicts become subtrees; a *Config is copied.
func (c *Config) Set(key string, value any) error {
	return c.SetPath(c.resolve(key), value)
}

// SetPath assigns value at an explicit path. The assignment follows the
// update and clobber modes of the Config that receives the final key.
func (c *Config) SetPath(path Path, value any) error {
	if len(path) == 0 {
		return &InvalidPathError{Path: path, Reason: "empty path"}
	}
	parent, err := c.ensureParent(path)
	if err != nil {
		return err
	}
	v := copyValue(convert(value, parent.modes, false))
	return parent.assign(path, v)
}

// AddSubconfig ensures key names a subtree and returns it. An existing
// subtree is returned unchanged; an existing leaf is an InvalidPathError
// whatever the clobber mode.
func (c *Config) AddSubconfig(key string) (*Config, error) {
	return c.AddSubconfigPath(c.resolve(key))
}

// AddSubconfigPath is AddSubconfig for an explicit path.
func (c *Config) AddSubconfigPath(path Path) (*Config, error) {
	if len(path) == 0 {
		return c, nil
	}
	parent, err := c.ensureParent(path)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	if existing, ok := parent.values[last]; ok {
		if sub, ok := existing.(*Config); ok {
			return sub, nil
		}
		return nil, &InvalidPathError{Path: slices.Clone(path), Segment: len(path) - 1, Found: existing.Kind()}
	}
	sub := parent.child()
	parent.put(last, sub)
	return sub, nil
}

// Delete removes the value at path and reports whether it existed.
func (c *Config) Delete(path Path) bool {
	if len(path) == 0 {
		return false
	}
	v, ok := c.LookupPath(path[:len(path)-1])
	if !ok {
		return false
	}
	parent, ok := v.(*Config)
	if !ok {
		return false
	}
	last := path[len(path)-1]
	if _, ok := parent.values[last]; !ok {
		return false
	}
	delete(parent.values, last)
	delete(parent.used, last)
	parent.keys = slices.DeleteFunc(parent.keys, func(k string) bool { return k == last })
	return true
}

// Update merges other into c key by key following c's policies.
func (c *Config) Update(other *Config) error {
	for k, v := range other.All() {
		if err := c.SetPath(Path{k}, v); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy of c with the same policies and used-key marks.
func (c *Config) Copy() *Config {
	out := newWithModes(c.modes)
	out.keys = slices.Clone(c.keys)
	for k, v := range c.values {
		out.values[k] = copyValue(v)
	}
	if c.used != nil {
		out.used = maps.Clone(c.used)
	}
	return out
}

// Equal reports whether c and other hold the same content in the same order.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	return Equal(c, other)
}

func (c *Config) child() *Config {
	return newWithModes(c.modes)
}

func (c *Config) put(key string, v Value) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = v
}

// ensureParent walks path[:len-1], creating missing subtrees with the modes
// of their parent.
func (c *Config) ensureParent(path Path) (*Config, error) {
	cur := c
	for i, seg := range path[:len(path)-1] {
		existing, ok := cur.values[seg]
		if !ok {
			sub := cur.child()
			cur.put(seg, sub)
			cur = sub
			continue
		}
		sub, ok := existing.(*Config)
		if !ok {
			return nil, &InvalidPathError{Path: slices.Clone(path), Segment: i, Found: existing.Kind()}
		}
		cur = sub
	}
	return cur, nil
}

func (c *Config) assign(path Path, v Value) error {
	key := path[len(path)-1]
	old, exists := c.values[key]
	if !exists {
		c.put(key, v)
		return nil
	}

	oldSub, oldIsSub := old.(*Config)
	newSub, newIsSub := v.(*Config)
	if oldIsSub != newIsSub {
		if c.modes.clobber == ClobberForbid {
			return &ReadOnlyConfigError{Path: slices.Clone(path), Mode: c.modes.update, Clobber: true, Old: old, New: v}
		}
		c.values[key] = v
		return nil
	}

	if oldIsSub {
		if c.modes.update == UpdateOverwrite {
			c.values[key] = newSub
			return nil
		}
		for k, nv := range newSub.All() {
			if err := oldSub.assign(path.Append(k), nv); err != nil {
				return err
			}
		}
		return nil
	}

	if c.modes.update == UpdateAssignOnce && !Equal(old, v) {
		return &ReadOnlyConfigError{Path: slices.Clone(path), Mode: c.modes.update, Old: old, New: v}
	}
	c.values[key] = v
	return nil
}

func (c *Config) markUsed(key string) {
	if c.used == nil {
		c.used = make(map[string]struct{})
	}
	c.used[key] = struct{}{}
}

// UsedPaths returns the paths marked by lookups with MarkUsed, in tree order.
func (c *Config) UsedPaths() []Path {
	var out []Path
	c.walkUsed(nil, func(p Path, used bool) {
		if used {
			out = append(out, p)
		}
	})
	return out
}

// UnusedPaths returns the leaf paths never marked used, directly or through
// an ancestor.
func (c *Config) UnusedPaths() []Path {
	var out []Path
	c.walkUsed(nil, func(p Path, used bool) {
		if !used {
			out = append(out, p)
		}
	})
	return out
}

// walkUsed visits every leaf (and every used subtree as a unit) with its
// used flag.
func (c *Config) walkUsed(prefix Path, fn func(Path, bool)) {
	for _, k := range c.keys {
		p := prefix.Append(k)
		_, used := c.used[k]
		sub, isSub := c.values[k].(*Config)
		if isSub && !used && sub.Len() > 0 {
			sub.walkUsed(p, fn)
			continue
		}
		fn(p, used)
	}
}

func (c *Config) toMapping() Mapping {
	m := Mapping{entries: make([]MappingEntry, 0, len(c.keys))}
	for _, k := range c.keys {
		v := c.values[k]
		if sub, ok := v.(*Config); ok {
			v = sub.toMapping()
		} else {
			v = copyValue(v)
		}
		m.entries = append(m.entries, MappingEntry{Key: String(k), Value: v})
	}
	return m
}
