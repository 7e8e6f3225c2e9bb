package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	BaseDir     string `toml:"base_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
	JournalPath string `toml:"journal_path"`
}

// Term describes the academic term the course directories belong to.
type Term struct {
	Current   string `toml:"current"`
	StartYear int    `toml:"start_year"`
	EndYear   int    `toml:"end_year"`
	Coop      bool   `toml:"coop"`
}

// Course is one configured course. Name is the canonical uppercase code
// (e.g. CS246); list order decides ties during classification.
type Course struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Catalog contains configuration for the course catalog lookup.
type Catalog struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Watcher contains configuration for the debounced filesystem watcher.
type Watcher struct {
	DebounceMillis int      `toml:"debounce_ms"`
	QueueSize      int      `toml:"queue_size"`
	Recursive      bool     `toml:"recursive"`
	Ignore         []string `toml:"ignore"`
}

// LLM contains settings for the optional chat completion fallback classifier.
type LLM struct {
	Enabled        bool    `toml:"enabled"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MinConfidence  float64 `toml:"min_confidence"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic         string `toml:"ntfy_topic"`
	RequestTimeout    int    `toml:"request_timeout"`
	CommandRecorded   bool   `toml:"command_recorded"`
	IndeterminateOnly bool   `toml:"indeterminate_only"`
	Review            bool   `toml:"review"`
}

// Review contains configuration for the review pass.
type Review struct {
	History bool `toml:"history"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for nimbus.
//
// Configuration sections by subsystem:
//   - Paths: watched downloads, course tree root, state, logs, journal
//   - Term: current term used to build course directories
//   - Courses: ordered course list used by the classifier
//   - Catalog: course catalog lookup used by `nimbus courses lookup`
//   - Watcher: debounce window and queue sizing
//   - LLM: optional fallback classifier
//   - Notifications: ntfy push notification settings
//   - Review: review pass behaviour
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Term          Term          `toml:"term"`
	Courses       []Course      `toml:"courses"`
	Catalog       Catalog       `toml:"catalog"`
	Watcher       Watcher       `toml:"watcher"`
	LLM           LLM           `toml:"llm"`
	Notifications Notifications `toml:"notifications"`
	Review        Review        `toml:"review"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/nimbus/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("nimbus.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories plus the journal's
// parent. The download and course directories are never created here; term
// provisioning happens outside nimbus.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, filepath.Dir(c.Paths.JournalPath)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CourseDir returns the directory files for course are filed into:
// base_dir/<current term>/<course code>.
func (c *Config) CourseDir(course Course) string {
	return filepath.Join(c.Paths.BaseDir, c.Term.Current, course.Name)
}

// CourseDirs maps each course code to its directory, preserving nothing about
// order; use Courses for ordered iteration.
func (c *Config) CourseDirs() map[string]string {
	dirs := make(map[string]string, len(c.Courses))
	for _, course := range c.Courses {
		dirs[course.Name] = c.CourseDir(course)
	}
	return dirs
}

// LockPath returns the single-instance lock used by the monitor.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "nimbus.lock")
}

// PIDPath is where a running monitor records its process id.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "nimbus.pid")
}

// HistoryPath returns the review history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the connection settings for the fallback classifier.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
