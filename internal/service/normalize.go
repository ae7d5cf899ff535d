package service

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a list name and converts it to NFC, so names typed on a
// keyboard and names produced by speech-to-text compare equal. Case is kept.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NormalizeText applies the same normalisation to an item label.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
