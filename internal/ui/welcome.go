package ui

import (
	"fmt"
	"strings"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

// renderWelcome is the dashboard banner for a signed-in user.
func renderWelcome(p practice.Profile, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.Greeting()))
	b.WriteString("  ")
	b.WriteString(styles.Muted.Render(p.Email))
	b.WriteString("\n")

	parts := []string{
		styles.Success.Render(fmt.Sprintf("%d-day streak", p.CurrentStreakDays)),
		styles.Muted.Render(fmt.Sprintf("longest %d", p.LongestStreakDays)),
		styles.Text.Render(plural(p.TotalPieces, "piece")),
		styles.Text.Render(plural(p.TotalSessions, "session")),
		styles.Text.Render(plural(p.TotalMinutes, "minute")),
	}
	b.WriteString(strings.Join(parts, styles.Faint.Render(" · ")))
	if p.LastPracticeDate != nil {
		b.WriteString(styles.Faint.Render("  last practiced " + *p.LastPracticeDate))
	}
	return b.String()
}

// renderLoggedOut is the call to action shown when no profile could be
// loaded. status carries the raw load error, if any.
func renderLoggedOut(loginURL, status string, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Piano Practice Tracker"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render("You are not signed in. Open the login page in a browser:"))
	b.WriteString("\n\n  ")
	b.WriteString(styles.Accent.Render(loginURL))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("Then run `practice-tracker login` and paste your session cookie."))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("c copy URL · r retry · q quit"))
	if status != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Danger.Render(status))
	}
	return b.String()
}
