package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

// ConsoleFormatter renders the detailed human-readable report
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(&buf)
		}
		title := string(e.Category)
		if e.ID != "" {
			title = fmt.Sprintf("%s: %s", e.ID, title)
		}
		if e.Result == nil {
			fmt.Fprintln(&buf, tuistyles.TitleStyle.Render(strings.ToUpper(title)))
			fmt.Fprintln(&buf, tuistyles.ErrorStyle.Render("ERROR: "+e.Error))
			continue
		}
		buf.WriteString(RenderResult(title, e.Result))
	}
	return buf.Bytes(), nil
}

// RenderResult renders one result as a styled report block
func RenderResult(title string, res domain.Result) string {
	o := res.Base()
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", tuistyles.TitleStyle.Render(fmt.Sprintf("%s (TAX YEAR %d)", strings.ToUpper(title), o.TaxYear)))

	fmt.Fprintln(&b, tuistyles.SectionStyle.Render("SUMMARY"))
	for _, l := range Highlights(res) {
		fmt.Fprintln(&b, metric(l.Label, l.Value))
	}
	fmt.Fprintln(&b, metric("Taxable amount", tuistyles.FormatWon(o.TaxableAmount)))
	fmt.Fprintln(&b, metric("National tax", tuistyles.FormatWon(o.NationalTax)))
	fmt.Fprintln(&b, metric("Local tax", tuistyles.FormatWon(o.LocalTax)))
	fmt.Fprintln(&b, lipgloss.JoinHorizontal(lipgloss.Top,
		tuistyles.MetricLabelStyle.Render("TOTAL TAX"),
		tuistyles.TotalStyle.Inherit(tuistyles.MetricValueStyle).Render(tuistyles.FormatWon(o.TotalTax))))
	marginal, effective := Rates(res)
	if o.Category != domain.CategoryWithholding {
		fmt.Fprintln(&b, metric("Marginal rate", tuistyles.FormatRate(marginal)))
	}
	fmt.Fprintln(&b, metric("Effective rate", tuistyles.FormatRate(effective)))
	if additional, refund := Settlement(res); refund > 0 {
		fmt.Fprintln(&b, metric("Refund", tuistyles.FormatWon(refund)))
	} else if additional > 0 {
		fmt.Fprintln(&b, metric("Additional payment", tuistyles.FormatWon(additional)))
	}
	fmt.Fprintln(&b)

	if len(o.AppliedRates) > 0 {
		fmt.Fprintln(&b, tuistyles.SectionStyle.Render("APPLIED RATES"))
		rows := make([][]string, 0, len(o.AppliedRates))
		for _, ar := range o.AppliedRates {
			rows = append(rows, []string{
				fmt.Sprintf("%s - %s", ar.IncomeRange.From, ar.IncomeRange.To),
				tuistyles.FormatRate(ar.MarginalRate),
				ar.TaxContributed.String(),
			})
		}
		fmt.Fprintln(&b, grid([]string{"Income range", "Rate", "Tax"}, rows))
	}

	fmt.Fprintln(&b, tuistyles.SectionStyle.Render("CALCULATION BREAKDOWN"))
	rows := make([][]string, 0, len(o.Breakdown.Steps))
	for _, s := range o.Breakdown.Steps {
		detail := s.Description
		if s.Formula != "" {
			detail = strings.TrimSpace(detail + " [" + s.Formula + "]")
		}
		rows = append(rows, []string{s.Label, s.Amount.String(), detail})
	}
	fmt.Fprintln(&b, grid([]string{"Step", "Amount", "Detail"}, rows))

	if len(o.Warnings) > 0 {
		fmt.Fprintln(&b, tuistyles.SectionStyle.Render("WARNINGS"))
		for _, w := range o.Warnings {
			fmt.Fprintln(&b, tuistyles.WarningStyle.Render(fmt.Sprintf("! %s: %s (%s -> %s)", w.Field, w.Message, w.Original, w.Applied)))
		}
	}
	if len(o.Advisories) > 0 {
		fmt.Fprintln(&b, tuistyles.SectionStyle.Render("NOTICES"))
		for _, a := range o.Advisories {
			fmt.Fprintln(&b, tuistyles.InfoStyle.Render(fmt.Sprintf("• [%s] %s", a.Kind, a.Message)))
		}
	}
	return b.String()
}

func metric(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tuistyles.MetricLabelStyle.Render(label),
		tuistyles.MetricValueStyle.Render(value))
}

func grid(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tuistyles.TableHeaderStyle
			}
			if col == 1 {
				return tuistyles.TableCellStyle.Align(lipgloss.Right)
			}
			return tuistyles.TableCellStyle
		}).
		String()
}

// ConsoleLiteFormatter renders one table row per entry
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(entries []Entry) ([]byte, error) {
	rows := make([][]string, 0, len(entries))
	var total domain.Won
	failed := 0
	for _, e := range entries {
		if e.Result == nil {
			failed++
			rows = append(rows, []string{e.ID, string(e.Category), "-", "-", "error: " + e.Error})
			continue
		}
		o := e.Result.Base()
		_, effective := Rates(e.Result)
		total += o.TotalTax
		rows = append(rows, []string{e.ID, string(o.Category), o.TaxableAmount.String(), o.TotalTax.String(), tuistyles.FormatRate(effective)})
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, tuistyles.TitleStyle.Render("TAX CALCULATION SUMMARY"))
	fmt.Fprintln(&buf, grid([]string{"ID", "Category", "Taxable", "Total tax", "Effective"}, rows))
	fmt.Fprintf(&buf, "%s  %s\n",
		tuistyles.TotalStyle.Render("Total tax: "+tuistyles.FormatWon(total)),
		tuistyles.SubtitleStyle.Render(fmt.Sprintf("%d calculated, %d failed", len(entries)-failed, failed)))
	return buf.Bytes(), nil
}
