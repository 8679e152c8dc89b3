package telemock

import "github.com/joomcode/errorx"

// Errors is the namespace for every typed error the emulator surfaces.
// Protocol input is never rejected; only programmatic misuse by a test or
// scenario author produces one of these.
var (
	Errors = errorx.NewNamespace("telemock")

	// ErrGroupNotFound is returned when a scenario references a group id
	// that was never created.
	ErrGroupNotFound = Errors.NewType("group_not_found", errorx.NotFound())

	// ErrUnsupportedFormat is returned when a config or export file has an
	// extension the emulator does not understand.
	ErrUnsupportedFormat = Errors.NewType("unsupported_format")
)
