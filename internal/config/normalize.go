package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"nimbus/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTerm()
	c.normalizeCourses()
	c.normalizeCatalog()
	c.normalizeWatcher()
	c.normalizeLLM()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(strings.TrimSpace(c.Paths.DownloadDir)); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.BaseDir, err = expandPath(strings.TrimSpace(c.Paths.BaseDir)); err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		c.Paths.JournalPath = filepath.Join(c.Paths.StateDir, defaultJournalName)
	}
	if c.Paths.JournalPath, err = expandPath(c.Paths.JournalPath); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTerm() {
	c.Term.Current = strings.ToUpper(strings.TrimSpace(c.Term.Current))
	if c.Term.Current == "" {
		c.Term.Current = defaultTerm
	}
}

// normalizeCourses canonicalizes course codes and drops later duplicates so the
// first configured entry keeps its priority.
func (c *Config) normalizeCourses() {
	if len(c.Courses) == 0 {
		return
	}
	courses := make([]Course, 0, len(c.Courses))
	seen := make(map[string]struct{}, len(c.Courses))
	for _, course := range c.Courses {
		code := textutil.CourseCode(course.Name)
		if code == "" {
			continue
		}
		if _, exists := seen[code]; exists {
			continue
		}
		seen[code] = struct{}{}
		courses = append(courses, Course{
			Name:        code,
			Description: strings.TrimSpace(course.Description),
		})
	}
	c.Courses = courses
}

func (c *Config) normalizeCatalog() {
	if value, ok := lookupFirstEnv("WATERLOO_API_KEY"); ok {
		c.Catalog.APIKey = value
	}
	c.Catalog.APIKey = strings.TrimSpace(c.Catalog.APIKey)
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.DebounceMillis == 0 {
		c.Watcher.DebounceMillis = defaultDebounceMillis
	}
	if c.Watcher.QueueSize == 0 {
		c.Watcher.QueueSize = defaultWatcherQueueSize
	}
	if len(c.Watcher.Ignore) == 0 {
		return
	}
	patterns := make([]string, 0, len(c.Watcher.Ignore))
	for _, pattern := range c.Watcher.Ignore {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	c.Watcher.Ignore = patterns
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if value, ok := lookupFirstEnv("OPENROUTER_API_KEY", "GPT_API_KEY"); ok {
		c.LLM.APIKey = value
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
