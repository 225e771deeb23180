package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord marks an out-of-domain engine input.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrIngestion marks a spreadsheet that could not be read at all.
	ErrIngestion = errors.New("ingestion failed")
	// ErrNarrativeUnavailable marks a failed or disabled narrative call. Never fatal.
	ErrNarrativeUnavailable = errors.New("narrative unavailable")
)

// InvalidRecordError reports why a single record cannot be processed by the engine.
type InvalidRecordError struct {
	Code   string
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid record %s: %s %s", e.Code, e.Field, e.Reason)
}

func (e *InvalidRecordError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// IngestionError is terminal for a batch. Layout describes the expected column layout.
type IngestionError struct {
	Source string
	Layout string
	Err    error
}

func (e *IngestionError) Error() string {
	msg := "failed to read spreadsheet"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Layout != "" {
		msg += " (expected layout: " + e.Layout + ")"
	}
	return msg
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}
