package scenes

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/output"
	"github.com/taxlab/ktax/internal/tui/tuimsg"
)

// ResultModel shows a rendered result in a scrollable viewport
type ResultModel struct {
	result   domain.Result
	viewport viewport.Model
}

// NewResultModel creates a new result scene
func NewResultModel() *ResultModel {
	return &ResultModel{viewport: viewport.New(80, 20)}
}

// SetSize updates the viewport dimensions
func (m *ResultModel) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(height, 1)
}

// SetResult replaces the displayed result
func (m *ResultModel) SetResult(title string, res domain.Result) {
	m.result = res
	m.viewport.SetContent(output.RenderResult(title, res))
	m.viewport.GotoTop()
}

// Result returns the displayed result
func (m *ResultModel) Result() domain.Result { return m.result }

// Update handles scrolling; esc returns to the form
func (m *ResultModel) Update(msg tea.Msg) (*ResultModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, key.NewBinding(key.WithKeys("esc", "e"))) {
		return m, func() tea.Msg { return tuimsg.BackMsg{} }
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the viewport
func (m *ResultModel) View() string {
	return m.viewport.View()
}
