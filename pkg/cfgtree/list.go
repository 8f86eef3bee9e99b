// SPDX-License-Identifier: MPL-2.0

package cfgtree

import (
	"slices"
	"strconv"
	"strings"

	"github.com/runcfg/runcfg/pkg/hashable"
)

type (
	// Entry is a Config with an optional display name.
	Entry struct {
		Name   string
		Config *Config
	}

	// ConfigList is an ordered collection of Configs that are pairwise
	// distinct by content. The zero value is an empty, valid list.
	ConfigList struct {
		entries []Entry
	}
)

// NewConfigList builds a ConfigList from unnamed configs.
func NewConfigList(configs ...*Config) (*ConfigList, error) {
	l := &ConfigList{}
	if err := l.SetConfigs(configs); err != nil {
		return nil, err
	}
	return l, nil
}

// NewNamedConfigList builds a ConfigList from named entries.
func NewNamedConfigList(entries ...Entry) (*ConfigList, error) {
	l := &ConfigList{}
	if err := l.SetEntries(entries); err != nil {
		return nil, err
	}
	return l, nil
}

// SetConfigs replaces the contents of l. On a duplicate the list is left
// unchanged.
func (l *ConfigList) SetConfigs(configs []*Config) error {
	entries := make([]Entry, len(configs))
	for i, c := range configs {
		entries[i] = Entry{Config: c}
	}
	return l.SetEntries(entries)
}

// SetEntries replaces the contents of l. On a duplicate the list is left
// unchanged.
func (l *ConfigList) SetEntries(entries []Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	l.entries = slices.Clone(entries)
	return nil
}

// Append adds e to the end of l unless its content duplicates an existing entry.
func (l *ConfigList) Append(e Entry) error {
	next := append(slices.Clone(l.entries), e)
	if err := validateEntries(next); err != nil {
		return err
	}
	l.entries = next
	return nil
}

// Validate reports the first pair of entries with equal content.
func (l *ConfigList) Validate() error {
	return validateEntries(l.entries)
}

// validateEntries buckets entries by the digest of their canonical
// projection. Within a bucket two entries are duplicates only when the
// projections and the renderings both match, since an empty subtree and an
// empty sequence project alike.
func validateEntries(entries []Entry) error {
	buckets := make(map[uint64][]int, len(entries))
	hashes := make([]hashable.Value, len(entries))
	for i, e := range entries {
		hashes[i] = hashable.Make(e.Config)
		sum := hashes[i].Sum64()
		for _, j := range buckets[sum] {
			if hashes[j] != hashes[i] {
				continue
			}
			rendered := e.Config.String()
			if entries[j].Config.String() != rendered {
				continue
			}
			return &DuplicateConfigError{
				First:      j,
				Second:     i,
				FirstName:  entries[j].Name,
				SecondName: e.Name,
				Rendered:   rendered,
			}
		}
		buckets[sum] = append(buckets[sum], i)
	}
	return nil
}

// Len returns the number of configs.
func (l *ConfigList) Len() int { return len(l.entries) }

// At returns the i-th config.
func (l *ConfigList) At(i int) *Config { return l.entries[i].Config }

// Entries returns a copy of the entries.
func (l *ConfigList) Entries() []Entry { return slices.Clone(l.entries) }

// Configs returns the configs in order.
func (l *ConfigList) Configs() []*Config {
	out := make([]*Config, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Config
	}
	return out
}

// Names returns the entry names in order. Unnamed entries yield "".
func (l *ConfigList) Names() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Name
	}
	return out
}

// Only returns the single config of a one-element list.
func (l *ConfigList) Only() (*Config, error) {
	switch len(l.entries) {
	case 0:
		return nil, ErrEmptyConfigList
	case 1:
		return l.entries[0].Config, nil
	default:
		return nil, ErrMultipleConfigs
	}
}

// String renders every config separated by a blank line, each preceded by
// its index and name.
func (l *ConfigList) String() string {
	var b strings.Builder
	for i, e := range l.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("# ")
		b.WriteString(strconv.Itoa(i))
		if e.Name != "" {
			b.WriteString(" ")
			b.WriteString(e.Name)
		}
		b.WriteByte('\n')
		b.WriteString(e.Config.String())
	}
	return b.String()
}
