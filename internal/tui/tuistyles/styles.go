// Package tuistyles holds the shared lipgloss palette used by the console
// report and the interactive form.
package tuistyles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// Colors
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7FB3E6"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#F0A050"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF9A9A"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9E9E9E"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#4A4A4A"}
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Width(34)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Align(lipgloss.Right).
				Width(24)

	TotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	WarningStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorDanger)

	InfoStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActiveBorderStyle = BorderStyle.
				BorderForeground(ColorPrimary)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SelectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	UnselectedItemStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// FormatWon renders an amount with separators and the currency unit
func FormatWon(w domain.Won) string {
	return w.String() + " KRW"
}

// FormatRate renders a fractional rate as a percentage, e.g. 0.0849 as "8.49%"
func FormatRate(rate decimal.Decimal) string {
	return rate.Shift(2).StringFixed(2) + "%"
}

// MetricTrendStyle colors a delta by direction. A tax increase is bad news.
func MetricTrendStyle(increase bool) lipgloss.Style {
	if increase {
		return lipgloss.NewStyle().Foreground(ColorDanger)
	}
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}
