// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"vtodo/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// ActiveMarker is appended to the active list name.
	ActiveMarker = " [active]"
)

// FormatItem formats one item line.
// Format: "{N:>4}  [x] {TEXT}\n" (4-wide right-aligned 1-based number, two
// spaces, done box, text)
func FormatItem(w io.Writer, num int, item service.Item) {
	box := "[ ]"
	if item.Done {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, box, normalizeText(item.Text))
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, name string, active bool) {
	title := normalizeText(name)
	if active {
		title += ActiveMarker
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list name for the lists command.
func FormatListName(w io.Writer, name string, active bool) {
	title := normalizeText(name)
	if active {
		title += ActiveMarker
	}
	fmt.Fprintln(w, title)
}

// normalizeText keeps every entry on one line.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
