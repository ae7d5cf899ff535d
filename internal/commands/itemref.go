package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrItemRefRequired indicates no item number was provided.
var ErrItemRefRequired = errors.New("item number required")

// ParseItemNumber parses a 1-based item number as shown by the list command
// and returns the 0-based index.
func ParseItemNumber(arg string) (int, error) {
	if arg == "" {
		return 0, ErrItemRefRequired
	}
	if !isAllDigits(arg) {
		return 0, fmt.Errorf("invalid item number: %s", arg)
	}
	num, err := strconv.Atoi(arg)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("invalid item number: %s", arg)
	}
	return num - 1, nil
}

// parseItemArgs parses exactly n item numbers from args.
func parseItemArgs(args []string, n int) ([]int, error) {
	if len(args) < n {
		return nil, ErrItemRefRequired
	}
	if len(args) > n {
		return nil, fmt.Errorf("unexpected argument: %s", args[n])
	}
	idx := make([]int, n)
	for i := range n {
		v, err := ParseItemNumber(args[i])
		if err != nil {
			return nil, err
		}
		idx[i] = v
	}
	return idx, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
