package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Courses: 2")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Catalog.APIKey = "opendata-secret-1234"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "opendata-secret") {
		t.Fatalf("secret leaked in output: %s", out)
	}
	requireContains(t, out, "****1234")
	requireContains(t, out, "CS246")
	requireContains(t, out, env.cfg.Paths.DownloadDir)
}

func TestInvalidConfigFailsBeforeCommandRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Watcher.DebounceMillis = -1
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"journal", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "debounce_ms") {
		t.Fatalf("expected debounce validation error, got %v", err)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "****",
		"abcdefgh":   "****efgh",
		"  padded9 ": "****ded9",
	}
	for input, want := range tests {
		if got := maskSecret(input); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", input, got, want)
		}
	}
}
