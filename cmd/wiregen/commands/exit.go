package commands

import "github.com/teranos/wiregen/errors"

// Process exit codes. Scripts can tell a bad registry from a failing disk.
const (
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitInstallation = 3
	ExitOutOfDate    = 4
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	// input errors first: a backend rejecting the registry is still marked
	// as an installation failure
	case errors.IsMalformed(err), errors.IsUnresolvedReference(err),
		errors.Is(err, errors.ErrInvalidConfig), errors.Is(err, errors.ErrUnsupportedLanguage):
		return ExitInvalidInput
	case errors.IsInstallationError(err):
		return ExitInstallation
	case errors.Is(err, errors.ErrOutOfDate):
		return ExitOutOfDate
	default:
		return ExitFailure
	}
}
