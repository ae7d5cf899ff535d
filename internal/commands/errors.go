package commands

import (
	"errors"
	"fmt"
	"io"

	"vtodo/internal/exitcode"
	"vtodo/internal/service"
)

// reportErr prints err in the CLI's "error: ..." form and maps it to an exit
// code. Missing lists get a "did you mean" hint when svc knows a close name.
func reportErr(errOut io.Writer, svc service.Service, list string, err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v%s\n", err, listHint(svc, list))
		return exitcode.UserError
	case errors.Is(err, service.ErrOutOfRange),
		errors.Is(err, service.ErrProtected),
		errors.Is(err, service.ErrInvalidArgument):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
		return exitcode.StorageError
	}
}

// listHint returns " (did you mean: X?)" for a missing list name.
func listHint(svc service.Service, name string) string {
	if svc == nil || name == "" {
		return ""
	}
	name = service.NormalizeName(name)
	if s := closest(name, svc.ListNames().Lists); s != "" {
		return fmt.Sprintf(" (did you mean: %s?)", s)
	}
	return ""
}

// requireList checks that name (when given) exists, printing the same error
// the store would.
func requireList(errOut io.Writer, svc service.Service, name string) (int, bool) {
	if name == "" {
		return exitcode.Success, true
	}
	name = service.NormalizeName(name)
	for _, n := range svc.ListNames().Lists {
		if n == name {
			return exitcode.Success, true
		}
	}
	return reportErr(errOut, svc, name, service.ListNotFound(name)), false
}
