package preflight

import (
	"context"
	"strings"

	"nimbus/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckCourseDirectories(cfg)...)

	if cfg.LLM.Enabled {
		results = append(results, CheckLLM(ctx, "Fallback LLM", cfg.GetLLM()))
	}

	if strings.TrimSpace(cfg.Catalog.APIKey) != "" {
		results = append(results, CheckCatalog(ctx, cfg.Catalog))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
