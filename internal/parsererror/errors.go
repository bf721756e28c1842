// Package parsererror defines the typed error values used by the pipeline.
// RowError marks a single skippable record; ConfigError is fatal and aborts
// the run before any output is produced.
package parsererror

import "fmt"

// ParseError represents an error during parsing of a single field.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowError represents a malformed input row that was skipped with a
// diagnostic instead of aborting the run.
type RowError struct {
	ReservationID string
	Reason        string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("skipped reservation '%s': %s", e.ReservationID, e.Reason)
}

// ValidationError represents a format validation failure on an input file.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// ConfigError represents a fatal configuration problem: a missing fallback
// table, an unreadable input directory, or no input records for an entity.
type ConfigError struct {
	Item   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Item, e.Reason)
}
