package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colorize applies an ANSI color to the text using lipgloss.
func Colorize(text, color string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return style.Render(text)
}

// Stars renders a mean rating as filled/empty stars with the count,
// e.g. "★★★★☆ (12)". A mod with no ratings renders as "unrated".
func Stars(rating float64, count int64) string {
	if count == 0 {
		return "unrated"
	}
	filled := int(rating + 0.5)
	if filled > 5 {
		filled = 5
	}
	return fmt.Sprintf("%s%s (%d)",
		strings.Repeat("★", filled),
		strings.Repeat("☆", 5-filled),
		count,
	)
}

// FileSize renders a byte count the way the listing views expect.
func FileSize(bytes int64) string {
	const mib = 1024 * 1024
	if bytes >= mib {
		return fmt.Sprintf("%.1f MB", float64(bytes)/mib)
	}
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}
