package services

import (
	"fmt"
	"strings"
)

// BibPrefix derives the bib prefix from the category name by substring match.
// Unknown distances fall back to "0".
func BibPrefix(categoryName string) string {
	name := strings.ToLower(categoryName)
	switch {
	case strings.Contains(name, "10k"):
		return "10"
	case strings.Contains(name, "5k"):
		return "5"
	case strings.Contains(name, "3k"):
		return "3"
	default:
		return "0"
	}
}

// FormatBib joins the category prefix with a zero-padded 4-digit sequence.
// Suffixes may collide across prefixes; the full bib string never does.
func FormatBib(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}
