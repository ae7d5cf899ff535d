// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown list, index out of range).
	UserError = 1

	// AuthError indicates missing or invalid credentials.
	AuthError = 2

	// StorageError indicates the store could not be opened or read.
	StorageError = 3

	// TransportError indicates a failed remote call or server.
	TransportError = 4
)
