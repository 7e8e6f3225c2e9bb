package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"nimbus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The download directory exists; course directories are created only by
// WithCourseDirs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.BaseDir = filepath.Join(base, "university")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Paths.JournalPath = filepath.Join(base, "state", "commands.jsonl")
	cfgVal.Term.Current = "2A"
	cfgVal.Courses = []config.Course{
		{Name: "CS246", Description: "Object-Oriented Software Development"},
		{Name: "MATH239", Description: "Introduction to Combinatorics"},
	}
	cfgVal.Catalog.BaseURL = "http://127.0.0.1:0"
	cfgVal.Watcher.DebounceMillis = 50

	if err := os.MkdirAll(cfgVal.Paths.DownloadDir, 0o755); err != nil {
		t.Fatalf("mkdir downloads: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCourses replaces the configured course list.
func WithCourses(courses ...config.Course) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Courses = append([]config.Course(nil), courses...)
	}
}

// WithNtfyTopic points notifications at topic (usually an httptest URL).
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithCourseDirs creates base_dir/term/<course> for every configured course.
func WithCourseDirs() ConfigOption {
	return func(b *configBuilder) {
		for _, course := range b.cfg.Courses {
			if err := os.MkdirAll(b.cfg.CourseDir(course), 0o755); err != nil {
				b.t.Fatalf("mkdir course dir: %v", err)
			}
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DownloadDir)
}
