package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch {
	case m.loading:
		content = tuistyles.BorderStyle.Render("⠋ Calculating...")
	case m.err != nil:
		content = tuistyles.ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err))
	default:
		switch m.currentScene {
		case SceneCategories:
			content = m.categoriesModel.View()
		case SceneForm:
			if m.formModel != nil {
				content = m.formModel.View()
			}
		case SceneResult:
			content = m.resultModel.View()
		case SceneHelp:
			content = m.renderHelp()
		default:
			content = "Unknown scene"
		}
	}
	return m.renderApp(content)
}

func (m Model) contentHeight() int {
	return max(m.height-4, 1) // title (2) + status (1) + padding (1)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	container := lipgloss.NewStyle().
		Height(m.contentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		container,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	breadcrumb := m.currentScene.String()
	if m.formModel != nil && m.currentScene != SceneCategories {
		breadcrumb = fmt.Sprintf("%s / %s", m.formModel.Category(), breadcrumb)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		tuistyles.TitleStyle.UnsetMarginBottom().Render("KTAX - Korean Income Tax Calculator"),
		tuistyles.SubtitleStyle.Render(breadcrumb),
	)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	var shortcuts []string
	switch m.currentScene {
	case SceneForm:
		shortcuts = []string{formatShortcut("enter", "calculate"), formatShortcut("esc", "categories"), formatShortcut("ctrl+c", "quit")}
	case SceneResult:
		shortcuts = []string{formatShortcut("↑/↓", "scroll"), formatShortcut("esc", "edit"), formatShortcut("?", "help"), formatShortcut("q", "quit")}
	default:
		shortcuts = []string{formatShortcut("enter", "select"), formatShortcut("?", "help"), formatShortcut("q", "quit")}
	}
	return tuistyles.StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, " • "))
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return tuistyles.StatusKeyStyle.Render(key) + " " + desc
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	helpText := `
KTAX - Korean Income Tax Calculator

KEYBOARD SHORTCUTS:
  ?        Show this help
  ESC      Go back
  q/Ctrl+C Quit (Ctrl+C only while editing)

CATEGORIES:
  ↑/↓      Move between categories
  Enter    Open the input form

INPUT FORM:
  Tab/↓    Next field
  Shift+Tab/↑ Previous field
  Enter    Calculate
  Amounts accept separators (50,000,000), dates are YYYY-MM-DD,
  flags are true/false. Empty fields are zero.

RESULT:
  ↑/↓ PgUp/PgDn  Scroll
  ESC      Edit the input again
`
	return tuistyles.BorderStyle.Render(helpText)
}
