// SPDX-License-Identifier: MPL-2.0

package cfgstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	typedSuffix   = ".all_values_picklable.msgpack"
	stringsSuffix = ".values_as_strings.msgpack"
	textSuffix    = ".txt"

	defaultFileMode fs.FileMode = 0o644
)

type (
	// SaveOption configures Save.
	SaveOption func(*saveOptions)

	saveOptions struct {
		fileMode fs.FileMode
	}
)

// WithFileMode sets the permissions of the written files.
func WithFileMode(mode fs.FileMode) SaveOption {
	return func(o *saveOptions) { o.fileMode = mode }
}

// TypedFileName returns the name of the typed snapshot for tag.
func TypedFileName(tag string) string { return tag + typedSuffix }

// StringsFileName returns the name of the stringified snapshot for tag.
func StringsFileName(tag string) string { return tag + stringsSuffix }

// TextFileName returns the name of the rendered config for tag.
func TextFileName(tag string) string { return tag + textSuffix }

// Save writes c under dir using tag as the file prefix. The directory is
// created if needed. Every file is written atomically and the version marker
// is written last.
func Save(c *cfgtree.Config, dir, tag string, opts ...SaveOption) error {
	o := saveOptions{fileMode: defaultFileMode}
	for _, opt := range opts {
		opt(&o)
	}
	if err := types.SnapshotTag(tag).Validate(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	typed, err := msgpack.Marshal(encodeConfig(c))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	strs, err := msgpack.Marshal(encodeConfig(c.StringifyLeaves()))
	if err != nil {
		return fmt.Errorf("encode stringified config: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{TypedFileName(tag), typed},
		{StringsFileName(tag), strs},
		{TextFileName(tag), []byte(c.String())},
		{VersionFileName, []byte(CurrentVersion)},
	}
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(dir, f.name), f.data, o.fileMode); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}
	slog.Debug("config saved", "dir", dir, "tag", tag, "version", CurrentVersion)
	return nil
}

// Load reads the config saved under dir with tag, honoring the layout
// version of dir. V2 layouts yield stringified leaves; when only a typed
// snapshot exists in a V2 layout it is stringified on load.
func Load(dir, tag string) (*cfgtree.Config, error) {
	version, err := ReadVersion(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("loading config", "dir", dir, "tag", tag, "version", version)

	switch version {
	case V2:
		c, err := readPayload(filepath.Join(dir, StringsFileName(tag)))
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		c, err = readPayload(filepath.Join(dir, TypedFileName(tag)))
		if err != nil {
			return nil, err
		}
		return c.StringifyLeaves(), nil
	case V3:
		return readPayload(filepath.Join(dir, TypedFileName(tag)))
	}
	return nil, &SerializationVersionError{Path: filepath.Join(dir, VersionFileName), Version: version}
}

func readPayload(path string) (*cfgtree.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config payload: %w", err)
	}
	var w wireConfig
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	c, err := decodeConfig(&w)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path.
func writeFileAtomic(path string, data []byte, mode fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
