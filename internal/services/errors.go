package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFatalSetup marks failures that abort a monitor run, such as a watch
	// that cannot be established on the download directory.
	ErrFatalSetup = errors.New("fatal setup error")
	// ErrTransientEvent marks per-event failures; the event is dropped and the
	// loop continues.
	ErrTransientEvent = errors.New("transient event error")
	// ErrDecodeFailed marks a provenance attribute that is not a valid binary
	// property list.
	ErrDecodeFailed = errors.New("decode failed")
	// ErrJournalIO marks journal append, drain, release, or clear failures.
	ErrJournalIO = errors.New("journal io error")
	// ErrApply marks a rename that failed while applying a reviewed command.
	ErrApply         = errors.New("apply error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap tags err with marker and prefixes it with the non-empty parts of
// stage, operation and message, e.g. "apply error: review: move: /dst: ...".
// A nil marker means ErrTransientEvent; a nil err yields just the tagged
// message.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransientEvent
	}
	var parts []string
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	detail := strings.Join(parts, ": ")
	switch {
	case detail == "" && err == nil:
		return marker
	case detail == "":
		return fmt.Errorf("%w: %w", marker, err)
	case err == nil:
		return fmt.Errorf("%w: %s", marker, detail)
	default:
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
}

// IsFatal reports whether err should terminate the monitor run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalSetup)
}
