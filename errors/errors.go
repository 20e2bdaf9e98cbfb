// Package errors provides error handling for wiregen.
//
// This package re-exports github.com/cockroachdb/errors so that stack traces,
// hints and marks travel with every failure from registry decoding through
// backend installation.
//
// Usage:
//
//	// Wrap with context
//	if err := installer.InstallModule(plan, cfg); err != nil {
//	    return errors.Wrapf(err, "rust: install module %s", cfg.ModuleName())
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "run `wiregen languages` to list backends")
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnresolvedReference) {
//	    // report the offending container
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors shared across wiregen.
// Use these with errors.Is(); wrap them with errors.Wrap() or errors.Mark()
// to add context while preserving the identity.
var (
	// ErrUnresolvedReference indicates a type reference names neither a
	// registry container nor an external definition
	ErrUnresolvedReference = New("unresolved reference")

	// ErrMalformedFormat indicates a registry document or format value does
	// not have the shape of the format model
	ErrMalformedFormat = New("malformed format")

	// ErrInstallation indicates a backend could not materialize its output
	ErrInstallation = New("installation failed")

	// ErrUnsupportedLanguage indicates no backend is registered for a language
	ErrUnsupportedLanguage = New("unsupported language")

	// ErrInvalidConfig indicates generation or CLI settings failed validation
	ErrInvalidConfig = New("invalid configuration")

	// ErrOutOfDate indicates previously generated output differs from a fresh run
	ErrOutOfDate = New("generated code is out of date")
)

// IsUnresolvedReference checks if an error is or wraps ErrUnresolvedReference
func IsUnresolvedReference(err error) bool {
	return err != nil && Is(err, ErrUnresolvedReference)
}

// IsMalformed checks if an error is or wraps ErrMalformedFormat
func IsMalformed(err error) bool {
	return err != nil && Is(err, ErrMalformedFormat)
}

// IsInstallationError checks if an error is or wraps ErrInstallation
func IsInstallationError(err error) bool {
	return err != nil && Is(err, ErrInstallation)
}

// WrapInstallation marks err as an installation failure of the named backend
// operation. The original cause stays reachable through errors.Is.
func WrapInstallation(err error, language, operation string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrapf(err, "%s: %s", language, operation), ErrInstallation)
}

// NewInvalidConfigError creates an invalid-configuration error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}
