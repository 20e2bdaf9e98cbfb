package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across wiregen.
// Use these constants instead of raw strings to ensure consistency.
const (
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldOperation = "operation"

	// Generation inputs
	FieldLanguage  = "language"
	FieldEncoding  = "encoding"
	FieldModule    = "module"
	FieldContainer = "container"
	FieldCycle     = "cycle"

	// Files and paths
	FieldFile     = "file"
	FieldPath     = "path"
	FieldRegistry = "registry"

	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	installer := rust.New(logger.ComponentLogger("typegen.rust"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// RunLogger returns a logger tagged with the run identifier of one
// generation invocation.
func RunLogger(parent *zap.SugaredLogger, runID string) *zap.SugaredLogger {
	return parent.With(FieldRunID, runID)
}
