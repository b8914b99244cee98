package services

import (
	"errors"
	"fmt"
	"strings"

	"recfix/internal/history"
)

var (
	ErrMissingInput    = errors.New("missing input")
	ErrUnreadableFile  = errors.New("unreadable file")
	ErrEmptySource     = errors.New("empty source")
	ErrMalformed       = errors.New("malformed after sanitization")
	ErrMissingIDColumn = errors.New("missing id column")
	ErrWriteFailed     = errors.New("write failed")
	ErrConfiguration   = errors.New("configuration error")
	ErrConversion      = errors.New("conversion error")
)

// Wrap builds an error message that includes file and operation context while
// tagging it with the provided marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, file, operation, message string, err error) error {
	detail := buildDetail(file, operation, message)
	if marker == nil {
		marker = ErrConversion
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a conversion error to the status recorded in history.
// An empty source is skipped rather than failed.
func FailureStatus(err error) history.Status {
	if errors.Is(err, ErrEmptySource) {
		return history.StatusSkipped
	}
	return history.StatusFailed
}

// IsFatal reports whether err should make the process exit non-zero.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrEmptySource)
}

func buildDetail(file, operation, message string) string {
	parts := make([]string, 0, 3)
	if file = strings.TrimSpace(file); file != "" {
		parts = append(parts, file)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
