package service

import (
	"errors"
	"fmt"
)

// ErrSourceNotConfigured is returned when a remote source is used without configuration.
var ErrSourceNotConfigured = errors.New("source not configured")

// SourceError reports a failure of a remote spreadsheet source (S3, Google Drive).
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source failed: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
