package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"nimbus/internal/config"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"WATERLOO_API_KEY", "OPENROUTER_API_KEY", "GPT_API_KEY"} {
		if value, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearKeyEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "nimbus", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}

	if want := filepath.Join(tempHome, "Downloads"); cfg.Paths.DownloadDir != want {
		t.Fatalf("unexpected download dir: got %q want %q", cfg.Paths.DownloadDir, want)
	}
	wantJournal := filepath.Join(tempHome, ".local", "share", "nimbus", "commands.jsonl")
	if cfg.Paths.JournalPath != wantJournal {
		t.Fatalf("unexpected journal path: got %q want %q", cfg.Paths.JournalPath, wantJournal)
	}
	if cfg.Term.Current != "1A" {
		t.Fatalf("unexpected default term: %q", cfg.Term.Current)
	}
	if cfg.Watcher.DebounceMillis != 1000 {
		t.Fatalf("unexpected debounce: %d", cfg.Watcher.DebounceMillis)
	}
	if cfg.LLM.Enabled {
		t.Fatal("expected LLM fallback disabled by default")
	}
	if cfg.Catalog.APIKey != "" {
		t.Fatalf("expected empty catalog key, got %q", cfg.Catalog.APIKey)
	}
}

func TestLoadCustomPathNormalizesCourses(t *testing.T) {
	clearKeyEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nimbus.toml")

	type course struct {
		Name string `toml:"name"`
	}
	type payload struct {
		Paths struct {
			DownloadDir string `toml:"download_dir"`
			BaseDir     string `toml:"base_dir"`
			StateDir    string `toml:"state_dir"`
		} `toml:"paths"`
		Term struct {
			Current string `toml:"current"`
		} `toml:"term"`
		Courses []course `toml:"courses"`
	}
	custom := payload{}
	custom.Paths.DownloadDir = filepath.Join(tempDir, "dl")
	custom.Paths.BaseDir = filepath.Join(tempDir, "uni")
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Term.Current = " 2a "
	custom.Courses = []course{{Name: "cs 246"}, {Name: "MATH239"}, {Name: "CS246"}, {Name: "  "}}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Term.Current != "2A" {
		t.Fatalf("expected term 2A, got %q", cfg.Term.Current)
	}
	if len(cfg.Courses) != 2 || cfg.Courses[0].Name != "CS246" || cfg.Courses[1].Name != "MATH239" {
		t.Fatalf("unexpected courses: %+v", cfg.Courses)
	}
	wantDir := filepath.Join(tempDir, "uni", "2A", "CS246")
	if got := cfg.CourseDir(cfg.Courses[0]); got != wantDir {
		t.Fatalf("CourseDir = %q, want %q", got, wantDir)
	}
	if got := cfg.CourseDirs()["MATH239"]; got != filepath.Join(tempDir, "uni", "2A", "MATH239") {
		t.Fatalf("CourseDirs missing MATH239: %q", got)
	}
	if cfg.Paths.JournalPath != filepath.Join(tempDir, "state", "commands.jsonl") {
		t.Fatalf("journal path should default under state dir, got %q", cfg.Paths.JournalPath)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	clearKeyEnv(t)
	configPath := filepath.Join(t.TempDir(), "nimbus.toml")
	contents := "[catalog]\napi_key = \"file-catalog\"\n\n[llm]\napi_key = \"file-llm\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WATERLOO_API_KEY", "env-catalog")
	t.Setenv("GPT_API_KEY", "env-gpt")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Catalog.APIKey != "env-catalog" {
		t.Errorf("expected catalog key from env, got %q", cfg.Catalog.APIKey)
	}
	if cfg.LLM.APIKey != "env-gpt" {
		t.Errorf("expected LLM key from GPT_API_KEY, got %q", cfg.LLM.APIKey)
	}

	t.Setenv("OPENROUTER_API_KEY", "env-openrouter")
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-openrouter" {
		t.Errorf("expected OPENROUTER_API_KEY to take precedence, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nimbus.toml")
	if err := os.WriteFile(configPath, []byte("[paths\ndownload_dir = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Courses) == 0 {
		t.Fatal("expected sample config to list example courses")
	}
	if cfg.Watcher.DebounceMillis != 1000 {
		t.Fatalf("unexpected sample debounce: %d", cfg.Watcher.DebounceMillis)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Paths.DownloadDir = "/tmp/nimbus/downloads"
		cfg.Paths.BaseDir = "/tmp/nimbus/uni"
		cfg.Paths.JournalPath = "/tmp/nimbus/state/commands.jsonl"
		return cfg
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}

	cfg = base()
	cfg.Watcher.DebounceMillis = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive debounce")
	}

	cfg = base()
	cfg.Watcher.QueueSize = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative queue size")
	}

	cfg = base()
	cfg.Watcher.Ignore = []string{"[unterminated"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed ignore pattern")
	}

	cfg = base()
	cfg.Paths.JournalPath = "/tmp/nimbus/downloads/commands.jsonl"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when journal lives inside the watched directory")
	}

	cfg = base()
	cfg.Term.StartYear = 2025
	cfg.Term.EndYear = 2024
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted term years")
	}

	cfg = base()
	cfg.LLM.Enabled = true
	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when LLM enabled without API key")
	}

	cfg = base()
	cfg.LLM.Enabled = true
	cfg.LLM.APIKey = "key"
	cfg.LLM.MinConfidence = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range confidence")
	}
}
