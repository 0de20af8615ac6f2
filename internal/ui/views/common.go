package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// Settings persists small pieces of UI state between runs
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Navigation messages handled by the App
type (
	// BackToBoard returns to the board from any other view
	BackToBoard struct{}

	// OpenTask shows the detail view for a task
	OpenTask struct{ TaskID string }

	// OpenChat shows the chat view, optionally with a thread already open
	OpenChat struct{ TaskID string }

	// OpenSettings shows the reference list editor
	OpenSettings struct{}

	// StoreChanged is sent after any store publishes a new snapshot
	StoreChanged struct{}
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// helpLine renders "key desc • key desc" pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// resultStatus describes a no-op result for the status bar; "" when applied
func resultStatus(res store.Result, what string) string {
	switch res {
	case store.NotFound:
		return what + ": no longer exists"
	case store.Rejected:
		return what + ": nothing to save"
	}
	return ""
}

// saveStatus reports a pending persistence problem
func saveStatus(err error) string {
	if err == nil {
		return ""
	}
	return "not saved: " + err.Error()
}

// popup centers a bordered box in the content area
func popup(s *styles.Styles, width, height int, content string) string {
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

// confirmDialog is the shared yes/no prompt
func confirmDialog(s *styles.Styles, width, height int, title, subject string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(styles.Truncate(subject, 50)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return popup(s, width, height, content)
}
