package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

// TableFormatter formats solver results as console text
type TableFormatter struct{}

// Format generates the report for a solve result
func (tf *TableFormatter) Format(result *SolveResult) string {
	var sb strings.Builder
	req := result.Request

	sb.WriteString("BREAK-EVEN SOLVER RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Field:        %s\n", req.Field))
	sb.WriteString(fmt.Sprintf("Goal:         %s reaches %s\n", req.Goal, formatTarget(req.Goal, req.Target)))
	sb.WriteString(fmt.Sprintf("Bounds:       %s to %s KRW\n", req.Bounds.Min, req.Bounds.Max))
	sb.WriteString(fmt.Sprintf("Status:       %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:   %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:  %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("SOLVED AMOUNT\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%s = %s KRW\n", req.Field, result.Solved.Amount))
	tf.writePoint(&sb, result.Solved)
	sb.WriteString("\n")

	sb.WriteString("CHANGE FROM CURRENT\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Current %s: %s KRW\n", req.Field, result.Current.Amount))
	sb.WriteString(fmt.Sprintf("Amount:         %s KRW\n", tf.delta(result.Solved.Amount-result.Current.Amount)))
	sb.WriteString(fmt.Sprintf("Total Tax:      %s KRW\n", tf.delta(result.Solved.TotalTax-result.Current.TotalTax)))
	sb.WriteString(fmt.Sprintf("After Tax:      %s KRW\n", tf.delta(result.Solved.AfterTax-result.Current.AfterTax)))
	sb.WriteString("\n")

	return sb.String()
}

// FormatSweep generates a table of evaluated amounts
func (tf *TableFormatter) FormatSweep(sweep *SweepResult) string {
	t := table.New().
		Headers(sweep.Field, "Total Tax", "After Tax", "Marginal", "Effective")
	for _, p := range sweep.Points {
		t.Row(p.Amount.String(), p.TotalTax.String(), p.AfterTax.String(),
			tuistyles.FormatRate(p.MarginalRate), tuistyles.FormatRate(p.EffectiveRate))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("TAX SWEEP OVER %s\n", strings.ToUpper(sweep.Field)))
	sb.WriteString(t.Render() + "\n")
	return sb.String()
}

func (tf *TableFormatter) writePoint(sb *strings.Builder, p Point) {
	sb.WriteString(fmt.Sprintf("Total Tax:      %s KRW\n", p.TotalTax))
	sb.WriteString(fmt.Sprintf("After Tax:      %s KRW\n", p.AfterTax))
	sb.WriteString(fmt.Sprintf("Marginal Rate:  %s\n", tuistyles.FormatRate(p.MarginalRate)))
	sb.WriteString(fmt.Sprintf("Effective Rate: %s\n", tuistyles.FormatRate(p.EffectiveRate)))
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for a solve result or a sweep
func (jf *JSONFormatter) Format(v any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) delta(d domain.Won) string {
	if d > 0 {
		return "+" + d.String()
	}
	return d.String()
}

// ParseTarget reads a goal target: a won amount with optional separators, or
// a percentage such as "15%" or a fraction such as "0.15" for effective_rate.
func ParseTarget(goal Goal, s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", "_", "").Replace(strings.TrimSpace(s))
	pct := strings.HasSuffix(s, "%")
	v, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid target %q: %w", s, err)
	}
	if goal == GoalEffectiveRate {
		if pct {
			v = v.Div(decimal.NewFromInt(100))
		}
		return v, nil
	}
	if pct {
		return decimal.Zero, fmt.Errorf("target for %s is an amount, not a percentage", goal)
	}
	return v, nil
}
