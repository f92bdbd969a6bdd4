package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/tuimsg"
	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

var categoryDescriptions = map[domain.Category]string{
	domain.CategoryEarnedIncome:        "Year-end settlement of a wage earner",
	domain.CategoryComprehensiveIncome: "Annual return over all income sources",
	domain.CategoryCapitalGains:        "Transfer income tax on one asset sale",
	domain.CategoryWithholding:         "Tax withheld from a single payment",
}

// CategoriesModel is the category picker
type CategoriesModel struct {
	selected int
	width    int
	height   int
}

// NewCategoriesModel creates a new category picker
func NewCategoriesModel() *CategoriesModel {
	return &CategoriesModel{}
}

// SetSize updates the model dimensions
func (m *CategoriesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the highlighted category
func (m *CategoriesModel) Selected() domain.Category {
	return domain.Categories[m.selected]
}

// Update handles messages for the picker
func (m *CategoriesModel) Update(msg tea.Msg) (*CategoriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if m.selected < len(domain.Categories)-1 {
				m.selected++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			category := m.Selected()
			return m, func() tea.Msg { return tuimsg.CategorySelectedMsg{Category: category} }
		}
	}
	return m, nil
}

// View renders the picker
func (m *CategoriesModel) View() string {
	var b strings.Builder
	b.WriteString(tuistyles.SectionStyle.Render("Choose a tax category") + "\n\n")
	for i, c := range domain.Categories {
		line := fmt.Sprintf("%-22s %s", c, categoryDescriptions[c])
		if i == m.selected {
			b.WriteString(tuistyles.SelectedItemStyle.Render("› "+line) + "\n")
		} else {
			b.WriteString(tuistyles.UnselectedItemStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n" + tuistyles.HelpStyle.Render("↑/↓ move • enter open form"))
	return tuistyles.BorderStyle.Render(b.String())
}
