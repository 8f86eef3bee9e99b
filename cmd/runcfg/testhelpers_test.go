// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/runcfg/runcfg/internal/config"
)

// cliResult captures one command invocation.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree with args against in-memory writers.
// Repository settings are searched from dir with the environment ignored.
// Commands install the default slog logger, so callers must not run in
// parallel with each other.
func runCLI(t *testing.T, dir string, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app, err := NewApp(Dependencies{
		RepoOptions: config.LoadOptions{
			StartDir:  dir,
			IgnoreEnv: true,
			LookupEnv: func(string) (string, bool) { return "", false },
		},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err = root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
