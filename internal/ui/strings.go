package ui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// truncate cuts value to at most limit runes, ending in "..." when cut.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads s to width terminal cells. Titles such as "Gymnopédie" or
// "月の光" are measured by display width, not bytes.
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// plural returns "1 minute" / "2 minutes".
func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(practice.DateLayout, strings.TrimSpace(s))
}

// inlineError renders an error for display under a form, dropping the
// validation sentinel prefix.
func inlineError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if errors.Is(err, practice.ErrValidation) {
		msg = strings.TrimPrefix(msg, practice.ErrValidation.Error()+": ")
	}
	return msg
}
