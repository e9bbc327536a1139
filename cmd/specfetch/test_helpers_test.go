package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"specfetch/internal/config"
	"specfetch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"SPECFETCH_ARCHIVE_URL", "SPECFETCH_MAST_URL", "SPECFETCH_SIMBAD_URL"} {
		t.Setenv(key, "")
	}

	configPath := filepath.Join(base, "specfetch.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[archive]
base_url = %q
user_agent = %q

[mast]
base_url = %q

[simbad]
base_url = %q

[paths]
data_dir = %q
output_dir = %q

[pipeline]
parallelism = %d

[history]
enabled = %t

[logging]
level = "error"
`,
		cfg.Archive.BaseURL,
		cfg.Archive.UserAgent,
		cfg.MAST.BaseURL,
		cfg.SIMBAD.BaseURL,
		cfg.Paths.DataDir,
		cfg.Paths.OutputDir,
		cfg.Pipeline.Parallelism,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
