package config

import "os"

const (
	defaultDownloadDir       = "~/Downloads"
	defaultBaseDir           = "~/University"
	defaultStateDir          = "~/.local/share/nimbus"
	defaultLogDir            = "~/.local/share/nimbus/logs"
	defaultJournalName       = "commands.jsonl"
	defaultTerm              = "1A"
	defaultCatalogBaseURL    = "https://openapi.data.uwaterloo.ca/v3"
	defaultCatalogTimeout    = 15
	defaultDebounceMillis    = 1000
	defaultWatcherQueueSize  = 64
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/nimbus"
	defaultLLMTitle          = "nimbus course classifier"
	defaultLLMTimeoutSeconds = 30
	defaultLLMMinConfidence  = 0.7
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
)

var defaultIgnorePatterns = []string{
	"*.crdownload",
	"*.part",
	"*.download",
	"*.tmp",
	".DS_Store",
	".~lock.*",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			BaseDir:     defaultBaseDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Term: Term{
			Current: defaultTerm,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			TimeoutSeconds: defaultCatalogTimeout,
		},
		Watcher: Watcher{
			DebounceMillis: defaultDebounceMillis,
			QueueSize:      defaultWatcherQueueSize,
			Recursive:      true,
			Ignore:         append([]string(nil), defaultIgnorePatterns...),
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MinConfidence:  defaultLLMMinConfidence,
		},
		Notifications: Notifications{
			RequestTimeout:  defaultNotifyTimeout,
			CommandRecorded: true,
			Review:          true,
		},
		Review: Review{
			History: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func lookupFirstEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
	}
	return "", false
}
