package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTerm(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		return errors.New("paths.download_dir must be set")
	}
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		return errors.New("paths.base_dir must be set")
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		return errors.New("paths.journal_path must be set")
	}
	if isWithin(c.Paths.DownloadDir, c.Paths.JournalPath) {
		return fmt.Errorf("paths.journal_path %q must not live inside paths.download_dir", c.Paths.JournalPath)
	}
	return nil
}

func (c *Config) validateTerm() error {
	if c.Term.StartYear != 0 && c.Term.EndYear != 0 && c.Term.EndYear < c.Term.StartYear {
		return errors.New("term.end_year must not be before term.start_year")
	}
	if strings.ContainsAny(c.Term.Current, `/\`) {
		return fmt.Errorf("term.current %q must be a single path segment", c.Term.Current)
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if c.Watcher.DebounceMillis <= 0 {
		return errors.New("watcher.debounce_ms must be positive")
	}
	if c.Watcher.QueueSize <= 0 {
		return errors.New("watcher.queue_size must be positive")
	}
	for _, pattern := range c.Watcher.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("watcher.ignore pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !c.LLM.Enabled {
		return nil
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.api_key must be set when llm.enabled is true (or set OPENROUTER_API_KEY)")
	}
	if c.LLM.MinConfidence < 0 || c.LLM.MinConfidence > 1 {
		return errors.New("llm.min_confidence must be between 0 and 1")
	}
	return nil
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
