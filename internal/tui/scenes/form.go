// Package scenes implements the screens of the interactive calculator.
package scenes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/transform"
	"github.com/taxlab/ktax/internal/tui/tuimsg"
	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

var groupedNumber = regexp.MustCompile(`^-?[0-9][0-9,_]*$`)

// FormModel edits the payload of one request. Fields are the payload's YAML
// keys, so the form follows the input types without a per-category layout.
type FormModel struct {
	id       string
	category domain.Category
	fields   []string
	inputs   []textinput.Model
	focus    int
	err      error
	width    int
	height   int
}

// NewFormModel creates a form for category, prefilled from req when it is a
// request of the same category.
func NewFormModel(category domain.Category, req *domain.Request) *FormModel {
	blank := emptyRequest(category)
	if req == nil || req.Category != category {
		req = &blank
	}
	fields := append([]string{"tax_year"}, transform.Fields(&blank)...)
	values := currentValues(req)

	m := &FormModel{
		id:       req.ID,
		category: category,
		fields:   fields,
		inputs:   make([]textinput.Model, len(fields)),
	}
	for i, name := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder(name)
		ti.CharLimit = 20
		ti.Width = 24
		ti.SetValue(values[name])
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	return m
}

// Category returns the category being edited
func (m *FormModel) Category() domain.Category { return m.category }

// Fields returns the field names in display order
func (m *FormModel) Fields() []string { return m.fields }

// Err returns the last submit error, if any
func (m *FormModel) Err() error { return m.err }

// SetErr shows an error under the form
func (m *FormModel) SetErr(err error) { m.err = err }

// SetSize updates the model dimensions
func (m *FormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetValue sets a field by name
func (m *FormModel) SetValue(field, value string) bool {
	for i, name := range m.fields {
		if name == field {
			m.inputs[i].SetValue(value)
			return true
		}
	}
	return false
}

// Request decodes the form into a request. Values are YAML scalars: amounts
// may use thousands separators, dates are YYYY-MM-DD and flags true/false.
func (m *FormModel) Request() (domain.Request, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, name := range m.fields {
		value := strings.TrimSpace(m.inputs[i].Value())
		if value == "" {
			continue
		}
		if groupedNumber.MatchString(value) {
			value = strings.NewReplacer(",", "", "_", "").Replace(value)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}

	req := domain.Request{ID: m.id, Category: m.category}
	var err error
	switch m.category {
	case domain.CategoryEarnedIncome:
		req.Earned, err = decode[domain.EarnedIncomeInput](node)
	case domain.CategoryComprehensiveIncome:
		req.Comprehensive, err = decode[domain.ComprehensiveIncomeInput](node)
	case domain.CategoryCapitalGains:
		req.CapitalGains, err = decode[domain.CapitalGainsInput](node)
	case domain.CategoryWithholding:
		req.Withholding, err = decode[domain.WithholdingInput](node)
	default:
		err = fmt.Errorf("unknown category %q", m.category)
	}
	return req, err
}

func decode[T any](node *yaml.Node) (*T, error) {
	var in T
	if err := node.Decode(&in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return &in, nil
}

// Update handles messages for the form scene
func (m *FormModel) Update(msg tea.Msg) (*FormModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			return m, func() tea.Msg { return tuimsg.BackMsg{} }

		case key.Matches(msg, key.NewBinding(key.WithKeys("tab", "down"))):
			return m, m.setFocus(m.focus + 1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+tab", "up"))):
			return m, m.setFocus(m.focus - 1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter", "ctrl+s"))):
			req, err := m.Request()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			return m, func() tea.Msg { return tuimsg.SubmitMsg{Request: req} }
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *FormModel) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = (i%n + n) % n
	return m.inputs[m.focus].Focus()
}

// View renders the form
func (m *FormModel) View() string {
	var b strings.Builder
	b.WriteString(tuistyles.SectionStyle.Render(fmt.Sprintf("%s input", m.category)) + "\n\n")
	for i, name := range m.fields {
		label := tuistyles.UnselectedItemStyle.Render("  " + name)
		if i == m.focus {
			label = tuistyles.SelectedItemStyle.Render("› " + name)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(30).Render(label),
			m.inputs[i].View(),
		) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + tuistyles.ErrorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + tuistyles.HelpStyle.Render("tab/↓ next • shift+tab/↑ previous • enter calculate • esc back"))
	return tuistyles.ActiveBorderStyle.Render(b.String())
}

func emptyRequest(category domain.Category) domain.Request {
	req := domain.Request{Category: category}
	switch category {
	case domain.CategoryEarnedIncome:
		req.Earned = &domain.EarnedIncomeInput{}
	case domain.CategoryComprehensiveIncome:
		req.Comprehensive = &domain.ComprehensiveIncomeInput{}
	case domain.CategoryCapitalGains:
		req.CapitalGains = &domain.CapitalGainsInput{}
	case domain.CategoryWithholding:
		req.Withholding = &domain.WithholdingInput{IncomeType: domain.IncomeTypeEarned}
	}
	return req
}

// fieldKind classifies a payload field for parsing hints and prefill
type fieldKind int

const (
	kindAmount fieldKind = iota
	kindCount
	kindYear
	kindFlag
	kindDate
	kindChoice
)

func kindOf(field string) fieldKind {
	switch field {
	case "tax_year":
		return kindYear
	case "income_type":
		return kindChoice
	case "dependents", "children", "disabled_count", "elderly_count", "residence_years":
		return kindCount
	case "residential", "one_house_one_family", "foreigner_exempt", "non_resident",
		"multi_house", "adjustment_area", "reconstruction_area", "apply_basic_deduction":
		return kindFlag
	}
	if strings.HasSuffix(field, "_date") {
		return kindDate
	}
	return kindAmount
}

// currentValues renders the request payload as form strings. Zero values stay
// empty so the placeholders show.
func currentValues(req *domain.Request) map[string]string {
	values := map[string]string{}
	payload, err := req.Payload()
	if err != nil {
		return values
	}
	data, err := yaml.Marshal(payload)
	if err != nil {
		return values
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return values
	}
	for k, v := range raw {
		switch v := v.(type) {
		case time.Time:
			if !v.IsZero() {
				values[k] = v.Format("2006-01-02")
			}
		case int:
			if v == 0 {
				continue
			}
			if kindOf(k) == kindAmount {
				values[k] = domain.Won(v).String()
			} else {
				values[k] = strconv.Itoa(v)
			}
		case bool:
			if v {
				values[k] = "true"
			}
		case string:
			values[k] = v
		}
	}
	return values
}

func placeholder(field string) string {
	switch kindOf(field) {
	case kindYear:
		return "latest"
	case kindChoice:
		return "earned|business|other|interest|dividend"
	case kindCount:
		return "0"
	case kindFlag:
		return "false"
	case kindDate:
		return "YYYY-MM-DD"
	default:
		return "0 KRW"
	}
}
