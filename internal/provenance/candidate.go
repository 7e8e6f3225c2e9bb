package provenance

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"nimbus/internal/logging"
	"nimbus/internal/services"
	"nimbus/internal/watcher"
)

const stageNormalize = "normalize"

// Candidate is a downloaded file with a known origin URL.
type Candidate struct {
	Name string
	URL  string
	Path string
}

// Normalizer filters watcher events and attaches provenance.
type Normalizer struct {
	reader Reader
	ignore []string
	logger *slog.Logger
}

// NewNormalizer builds a Normalizer. Files whose base name matches one of the
// ignore globs (partial downloads, Finder metadata) are skipped.
func NewNormalizer(reader Reader, ignore []string, logger *slog.Logger) *Normalizer {
	if reader == nil {
		reader = XattrReader{}
	}
	return &Normalizer{
		reader: reader,
		ignore: append([]string(nil), ignore...),
		logger: logging.NewComponentLogger(logger, "normalizer"),
	}
}

// Normalize returns a Candidate for created or modified regular files that
// carry an origin URL. ok is false for every event that should be ignored:
// other event kinds, directories, ignored names, vanished files, absent
// attributes, and attributes whose decoded shape is not a URL list. A
// malformed plist payload is an error wrapping services.ErrDecodeFailed.
func (n *Normalizer) Normalize(event watcher.Event) (Candidate, bool, error) {
	if event.Op != watcher.OpCreated && event.Op != watcher.OpModified {
		return Candidate{}, false, nil
	}
	name := filepath.Base(event.Path)
	if n.ignored(name) {
		n.logger.Debug("ignoring file by pattern", logging.String(logging.FieldEventPath, event.Path))
		return Candidate{}, false, nil
	}

	info, err := os.Stat(event.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Candidate{}, false, nil
		}
		return Candidate{}, false, services.Wrap(services.ErrTransientEvent, stageNormalize, "stat", event.Path, err)
	}
	if !info.Mode().IsRegular() {
		return Candidate{}, false, nil
	}

	attr, ok, err := n.reader.Read(event.Path)
	if err != nil {
		return Candidate{}, false, services.Wrap(services.ErrTransientEvent, stageNormalize, "read attribute", event.Path, err)
	}
	if !ok {
		return Candidate{}, false, nil
	}

	url, ok, err := originURL(attr)
	if err != nil || !ok {
		return Candidate{}, false, err
	}
	return Candidate{Name: name, URL: url, Path: event.Path}, true, nil
}

func originURL(attr Attribute) (string, bool, error) {
	switch attr.Encoding {
	case EncodingURL:
		url := strings.TrimSpace(string(attr.Data))
		return url, url != "", nil
	case EncodingPlist:
		value, err := DecodeWhereFroms(attr.Data)
		if err != nil {
			return "", false, err
		}
		url, ok := FirstURL(value)
		return url, ok, nil
	default:
		return "", false, nil
	}
}

func (n *Normalizer) ignored(name string) bool {
	for _, pattern := range n.ignore {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
