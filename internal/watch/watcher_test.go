// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// recorder collects OnChange invocations.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// start runs w in the background and stops it at the end of the test.
func start(t *testing.T, w *Watcher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	// Give the event loop a moment to start draining fsnotify.
	time.Sleep(20 * time.Millisecond)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcher_DebouncesPatternEvents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Options{
		BaseDir:  dir,
		Patterns: []string{"**/*.yaml"},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	for _, name := range []string{"b.yaml", "a.yaml", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name), "x: 1\n")
		time.Sleep(10 * time.Millisecond)
	}
	rec.wait(t)
	time.Sleep(250 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("got %d callbacks, want 1: %v", len(calls), calls)
	}
	if diff := cmp.Diff([]string{"a.yaml", "b.yaml"}, calls[0]); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_ExplicitFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "experiment.cue")
	writeFile(t, target, "a: 1\n")

	rec := newRecorder()
	w, err := New(Options{
		BaseDir:  dir,
		Files:    []string{"experiment.cue"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	// A sibling in the same directory is not reported.
	writeFile(t, filepath.Join(dir, "other.cue"), "b: 1\n")
	writeFile(t, target, "a: 2\n")
	rec.wait(t)

	calls := rec.snapshot()
	if diff := cmp.Diff([][]string{{"experiment.cue"}}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Options{
		BaseDir:  dir,
		Patterns: []string{"**/*.toml"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "run.toml"), "a = 1\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-rec.fired:
			for _, call := range rec.snapshot() {
				if slices.Contains(call, "sub/run.toml") {
					return
				}
			}
		case <-deadline:
			t.Fatalf("sub/run.toml never reported: %v", rec.snapshot())
		}
	}
}

func TestWatcher_IgnoresDefaultsAndUserPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	w, err := New(Options{
		BaseDir:  dir,
		Patterns: []string{"**"},
		Ignore:   []string{"**/scratch.*"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	writeFile(t, filepath.Join(dir, "scratch.yaml"), "x")
	writeFile(t, filepath.Join(dir, "config.yaml.swp"), "x")
	writeFile(t, filepath.Join(dir, ".tag.msgpack.tmp-123"), "x")
	writeFile(t, filepath.Join(dir, "kept.yaml"), "x")
	rec.wait(t)

	for _, call := range rec.snapshot() {
		for _, p := range call {
			if p != "kept.yaml" {
				t.Errorf("ignored path %q was reported", p)
			}
		}
	}
}

func TestWatcher_CallbackErrorKeepsWatching(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan struct{}, 4)
	w, err := New(Options{
		BaseDir:  dir,
		Patterns: []string{"*.json"},
		Debounce: 30 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			fired <- struct{}{}
			return errors.New("bad config")
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	for range 2 {
		writeFile(t, filepath.Join(dir, "a.json"), "{}")
		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for callback")
		}
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Options{BaseDir: t.TempDir(), Patterns: []string{"*"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	start(t, w)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{"nothing to watch", Options{}},
		{"bad pattern", Options{Patterns: []string{"[a-"}}},
		{"bad ignore", Options{Patterns: []string{"*"}, Ignore: []string{"{a"}}},
		{"missing file directory", Options{Files: []string{"/does/not/exist/a.yaml"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.opts.BaseDir = t.TempDir()
			if _, err := New(tt.opts); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestDefaultIgnores_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() exposes the package slice")
	}
}

func TestMatchAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"a/.git/objects/x", true},
		{"conf.yaml.swp", true},
		{"conf.yaml~", true},
		{"sub/.DS_Store", true},
		{"sub/.run.msgpack.tmp-42", true},
		{"conf.yaml", false},
		{"gitconfig/a.yaml", false},
	}

	for _, tt := range tests {
		if got := matchAny(defaultIgnores, tt.rel); got != tt.want {
			t.Errorf("matchAny(defaults, %q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
