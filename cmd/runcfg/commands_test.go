// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runcfg/runcfg/internal/testutil"
	"github.com/runcfg/runcfg/pkg/cfgload"
	"github.com/runcfg/runcfg/pkg/cfgstore"
	"github.com/runcfg/runcfg/pkg/cfgtree"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	smallRun = `model:
  name: small
  layers: 3
data:
  path: /data/shared/train.csv
`
	bigRun = `model:
  name: big
  layers: 3
data:
  path: /data/shared/train.csv
`
	repoSettings = `repo_info:
  repo_name: helpers
  github_repo_account: causify-ai
  github_host_name: github.com
  invalid_words:
  issue_prefix: HelpersTask
docker_info:
  docker_image_name: helpers
s3_bucket_info:
  unit_test_bucket_name: s3://cryptokaizen-unit-test
  html_bucket_name: s3://cryptokaizen-html
  html_ip: http://172.30.2.44
runnable_dir_info:
  dir_suffix: helpers
  use_helpers_as_nested_module: 0
container_registry_info:
  ecr: 623860924167.dkr.ecr.eu-north-1.amazonaws.com
  ghcr: ghcr.io/causify-ai
shared_data_dirs:
  - source: /data/shared
    target: /shared_data
`
)

// runFixtures writes the two experiment configs into a fresh directory.
func runFixtures(t *testing.T) (dir, small, big string) {
	t.Helper()
	dir = t.TempDir()
	small = testutil.MustWriteFile(t, filepath.Join(dir, "small.yaml"), smallRun)
	big = testutil.MustWriteFile(t, filepath.Join(dir, "big.yaml"), bigRun)
	return dir, small, big
}

func requireExitCode(t *testing.T, err error, want types.ExitCode) {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError with code %d", err, want)
	}
	if exitErr.Code != want {
		t.Errorf("exit code = %d, want %d", exitErr.Code, want)
	}
}

// The command tests below are not parallel: commands install the default
// slog logger.

func TestShowCommand(t *testing.T) {
	dir, small, _ := runFixtures(t)

	t.Run("rendered", func(t *testing.T) {
		res := runCLI(t, dir, "show", small)
		if res.err != nil {
			t.Fatalf("show error = %v\nstderr: %s", res.err, res.stderr)
		}
		want := "model:\n  name: small\n  layers: 3\ndata:\n  path: /data/shared/train.csv\n"
		if res.stdout != want {
			t.Errorf("stdout =\n%s\nwant\n%s", res.stdout, want)
		}
	})

	t.Run("flatten", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--flatten", small)
		if res.err != nil {
			t.Fatalf("show error = %v", res.err)
		}
		for _, line := range []string{"model.name = 'small'", "model.layers = 3"} {
			if !strings.Contains(res.stdout, line) {
				t.Errorf("stdout missing %q:\n%s", line, res.stdout)
			}
		}
	})

	t.Run("key", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--key", "model.name", small)
		if res.err != nil {
			t.Fatalf("show error = %v", res.err)
		}
		if res.stdout != "small\n" {
			t.Errorf("stdout = %q, want %q", res.stdout, "small\n")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--key", "model.dropout", small)
		requireExitCode(t, res.err, types.ExitFailure)
		if !errors.Is(res.err, cfgtree.ErrKeyNotFound) {
			t.Errorf("err = %v, want ErrKeyNotFound", res.err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		res := runCLI(t, dir, "show", filepath.Join(dir, "absent.yaml"))
		requireExitCode(t, res.err, types.ExitFailure)
		if !strings.Contains(res.stderr, "absent.yaml") {
			t.Errorf("stderr does not name the file:\n%s", res.stderr)
		}
	})
}

func TestShowCommand_Overrides(t *testing.T) {
	dir, small, _ := runFixtures(t)
	override := `("model","name"),("huge")`

	t.Run("assign once rejects a new value", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--set-config-value", override, small)
		requireExitCode(t, res.err, types.ExitFailure)
		if !errors.Is(res.err, cfgtree.ErrReadOnlyConfig) {
			t.Errorf("err = %v, want ErrReadOnlyConfig", res.err)
		}
	})

	t.Run("overwrite mode", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--update-mode", "overwrite", "--set-config-value", override, small)
		if res.err != nil {
			t.Fatalf("show error = %v\nstderr: %s", res.err, res.stderr)
		}
		if !strings.Contains(res.stdout, "name: huge") {
			t.Errorf("stdout does not carry the override:\n%s", res.stdout)
		}
	})

	t.Run("malformed override", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--set-config-value", `("model"`, small)
		requireExitCode(t, res.err, types.ExitUsage)
	})

	t.Run("invalid mode", func(t *testing.T) {
		res := runCLI(t, dir, "show", "--update-mode", "sometimes", small)
		requireExitCode(t, res.err, types.ExitUsage)
	})
}

func TestCompareCommands(t *testing.T) {
	dir, small, big := runFixtures(t)

	t.Run("intersect", func(t *testing.T) {
		res := runCLI(t, dir, "intersect", small, big)
		if res.err != nil {
			t.Fatalf("intersect error = %v", res.err)
		}
		if strings.Contains(res.stdout, "name:") || !strings.Contains(res.stdout, "layers: 3") {
			t.Errorf("stdout =\n%s\nwant only the shared leaves", res.stdout)
		}
	})

	t.Run("subtract", func(t *testing.T) {
		res := runCLI(t, dir, "subtract", small, big)
		if res.err != nil {
			t.Fatalf("subtract error = %v", res.err)
		}
		if !strings.Contains(res.stdout, "name: small") || strings.Contains(res.stdout, "layers") {
			t.Errorf("stdout =\n%s\nwant only the differing leaf", res.stdout)
		}
	})

	t.Run("diff", func(t *testing.T) {
		res := runCLI(t, dir, "diff", small, big)
		if res.err != nil {
			t.Fatalf("diff error = %v", res.err)
		}
		for _, s := range []string{"# 0", "# 1", "name: small", "name: big"} {
			if !strings.Contains(res.stdout, s) {
				t.Errorf("stdout missing %q:\n%s", s, res.stdout)
			}
		}
	})

	t.Run("diff exit code", func(t *testing.T) {
		res := runCLI(t, dir, "diff", "--exit-code", small, big)
		requireExitCode(t, res.err, types.ExitDifferent)
	})

	t.Run("diff exit code with an extra empty section", func(t *testing.T) {
		withSection := testutil.MustWriteFile(t, filepath.Join(dir, "section.yaml"), "x: 1\nk: {}\n")
		plain := testutil.MustWriteFile(t, filepath.Join(dir, "plain.yaml"), "x: 1\n")
		res := runCLI(t, dir, "diff", "--exit-code", withSection, plain)
		requireExitCode(t, res.err, types.ExitDifferent)
		if !strings.Contains(res.stdout, "k:") {
			t.Errorf("stdout missing the empty section:\n%s", res.stdout)
		}
	})

	t.Run("diff raw markdown", func(t *testing.T) {
		res := runCLI(t, dir, "diff", "--markdown", "--raw", small, big)
		if res.err != nil {
			t.Fatalf("diff error = %v", res.err)
		}
		if !strings.Contains(res.stdout, "#") || !strings.Contains(res.stdout, "model.name") {
			t.Errorf("stdout is not a Markdown report:\n%s", res.stdout)
		}
	})

	t.Run("duplicate inputs", func(t *testing.T) {
		copyPath := testutil.MustWriteFile(t, filepath.Join(dir, "copy.yaml"), smallRun)
		res := runCLI(t, dir, "diff", small, copyPath)
		requireExitCode(t, res.err, types.ExitFailure)
		if !errors.Is(res.err, cfgtree.ErrDuplicateConfig) {
			t.Errorf("err = %v, want ErrDuplicateConfig", res.err)
		}
	})
}

func TestTableCommand(t *testing.T) {
	dir, small, big := runFixtures(t)

	t.Run("csv diff", func(t *testing.T) {
		res := runCLI(t, dir, "table", "--diff", "--format", "csv", small, big)
		if res.err != nil {
			t.Fatalf("table error = %v", res.err)
		}
		lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
		if len(lines) != 3 {
			t.Fatalf("csv has %d lines, want header plus two rows:\n%s", len(lines), res.stdout)
		}
		if !strings.Contains(lines[0], "model.name") || strings.Contains(lines[0], "model.layers") {
			t.Errorf("header = %q, want only the differing column", lines[0])
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		res := runCLI(t, dir, "table", "--format", "xml", small, big)
		requireExitCode(t, res.err, types.ExitFailure)
	})
}

func TestSaveAndLoadCommands(t *testing.T) {
	dir, small, _ := runFixtures(t)
	out := filepath.Join(dir, "snapshot")

	res := runCLI(t, dir, "save", "--out-tag", "run0", small, out)
	if res.err != nil {
		t.Fatalf("save error = %v\nstderr: %s", res.err, res.stderr)
	}
	for _, name := range []string{cfgstore.TypedFileName("run0"), cfgstore.StringsFileName("run0"), cfgstore.TextFileName("run0")} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("snapshot file %s missing: %v", name, err)
		}
	}

	res = runCLI(t, dir, "load", "--tag", "run0", out)
	if res.err != nil {
		t.Fatalf("load error = %v\nstderr: %s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "# layout") || !strings.Contains(res.stdout, "name: small") {
		t.Errorf("load stdout =\n%s", res.stdout)
	}

	// Snapshot directories are accepted wherever a config file is.
	res = runCLI(t, dir, "show", "--tag", "run0", "--key", "model.layers", out)
	if res.err != nil {
		t.Fatalf("show snapshot error = %v", res.err)
	}
	if res.stdout != "3\n" {
		t.Errorf("show snapshot stdout = %q, want %q", res.stdout, "3\n")
	}

	res = runCLI(t, dir, "save", "--out-tag", "../escape", small, out)
	requireExitCode(t, res.err, types.ExitUsage)
}

func TestExportCommand(t *testing.T) {
	dir, small, _ := runFixtures(t)

	t.Run("stdout json", func(t *testing.T) {
		res := runCLI(t, dir, "export", "--format", "json", small)
		if res.err != nil {
			t.Fatalf("export error = %v", res.err)
		}
		c, err := cfgload.Decode([]byte(res.stdout), cfgload.FormatJSON)
		if err != nil {
			t.Fatalf("Decode(exported json) error = %v\n%s", err, res.stdout)
		}
		v, err := c.Get("model.name")
		if err != nil || cfgtree.Display(v) != "small" {
			t.Errorf("model.name = %v (err %v), want small", v, err)
		}
	})

	t.Run("file format from extension", func(t *testing.T) {
		out := filepath.Join(dir, "small.toml")
		res := runCLI(t, dir, "export", "-o", out, small)
		if res.err != nil {
			t.Fatalf("export error = %v", res.err)
		}
		if got := testutil.MustReadFile(t, out); !strings.Contains(got, "[model]") {
			t.Errorf("TOML export =\n%s", got)
		}
	})

	t.Run("hcl is read only", func(t *testing.T) {
		res := runCLI(t, dir, "export", "--format", "hcl", small)
		requireExitCode(t, res.err, types.ExitUsage)
	})
}

func TestValidateCommand(t *testing.T) {
	dir, small, big := runFixtures(t)

	res := runCLI(t, dir, "validate", small, big)
	if res.err != nil {
		t.Fatalf("validate error = %v", res.err)
	}
	if got := strings.Count(res.stdout, "✓"); got != 2 {
		t.Errorf("validate printed %d checks, want 2:\n%s", got, res.stdout)
	}
}

func TestRepoCommands(t *testing.T) {
	dir, small, _ := runFixtures(t)
	testutil.MustWriteFile(t, filepath.Join(dir, "repo_config.yaml"), repoSettings)

	t.Run("show", func(t *testing.T) {
		res := runCLI(t, dir, "repo", "show")
		if res.err != nil {
			t.Fatalf("repo show error = %v\nstderr: %s", res.err, res.stderr)
		}
		if !strings.Contains(res.stdout, "/data/shared -> /shared_data") {
			t.Errorf("stdout missing the shared dir mapping:\n%s", res.stdout)
		}
	})

	t.Run("registry", func(t *testing.T) {
		res := runCLI(t, dir, "repo", "show", "--registry", "ghcr")
		if res.err != nil {
			t.Fatalf("repo show error = %v", res.err)
		}
		if res.stdout != "ghcr.io/causify-ai\n" {
			t.Errorf("stdout = %q", res.stdout)
		}
	})

	t.Run("rewrite paths from settings", func(t *testing.T) {
		res := runCLI(t, dir, "rewrite-paths", small)
		if res.err != nil {
			t.Fatalf("rewrite-paths error = %v", res.err)
		}
		if !strings.Contains(res.stdout, "path: /shared_data/train.csv") {
			t.Errorf("stdout =\n%s", res.stdout)
		}
	})

	t.Run("rewrite paths from flag", func(t *testing.T) {
		res := runCLI(t, t.TempDir(), "rewrite-paths", "--map", "/data/shared=/mnt/data", small)
		if res.err != nil {
			t.Fatalf("rewrite-paths error = %v", res.err)
		}
		if !strings.Contains(res.stdout, "path: /mnt/data/train.csv") {
			t.Errorf("stdout =\n%s", res.stdout)
		}
	})

	t.Run("explicit settings path", func(t *testing.T) {
		res := runCLI(t, t.TempDir(), "--repo-config", filepath.Join(dir, "repo_config.yaml"), "repo", "show", "--registry", "ecr")
		if res.err != nil {
			t.Fatalf("repo show error = %v", res.err)
		}
		if !strings.HasPrefix(res.stdout, "623860924167.dkr.ecr") {
			t.Errorf("stdout = %q", res.stdout)
		}
	})
}

func TestDocsCommand(t *testing.T) {
	dir := t.TempDir()

	res := runCLI(t, dir, "docs")
	if res.err != nil {
		t.Fatalf("docs error = %v", res.err)
	}
	for _, want := range []string{"Key not found!", "Exit codes:", types.ExitDifferent.Meaning()} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("docs list missing %q:\n%s", want, res.stdout)
		}
	}

	res = runCLI(t, dir, "docs", "--style", "notty", "3")
	if res.err != nil {
		t.Fatalf("docs 3 error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "Key not found") {
		t.Errorf("docs 3 stdout:\n%s", res.stdout)
	}

	res = runCLI(t, dir, "docs", "999")
	requireExitCode(t, res.err, types.ExitFailure)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		res := runCLI(t, t.TempDir(), "completion", shell)
		if res.err != nil {
			t.Fatalf("completion %s error = %v", shell, res.err)
		}
		if !strings.Contains(res.stdout, "runcfg") {
			t.Errorf("completion %s output does not mention the program", shell)
		}
	}
}
