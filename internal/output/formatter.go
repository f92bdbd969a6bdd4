// Package output renders tax results as console reports, JSON, YAML or CSV.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/batch"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

// Entry is one calculation to render. Error is set when the calculation
// failed and Result is nil.
type Entry struct {
	ID       string          `yaml:"id,omitempty" json:"id,omitempty"`
	Category domain.Category `yaml:"category" json:"category"`
	Result   domain.Result   `yaml:"result,omitempty" json:"result,omitempty"`
	Error    string          `yaml:"error,omitempty" json:"error,omitempty"`
}

// Formatter renders a list of entries
type Formatter interface {
	Name() string
	Format(entries []Entry) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(entries []Entry) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(entries []Entry) ([]byte, error) { return f.F(entries) }

var formatters = map[string]Formatter{}

func register(f Formatter) { formatters[f.Name()] = f }

func init() {
	register(ConsoleFormatter{})
	register(ConsoleLiteFormatter{})
	register(JSONFormatter{})
	register(YAMLFormatter{})
	register(CSVFormatter{})
}

// GetFormatterByName returns the named formatter or nil
func GetFormatterByName(name string) Formatter {
	return formatters[name]
}

// Names lists the registered formatter names
func Names() []string {
	names := lo.Keys(formatters)
	sort.Strings(names)
	return names
}

// Single wraps one successful result
func Single(id string, res domain.Result) []Entry {
	return []Entry{{ID: id, Result: res, Category: res.Base().Category}}
}

// FromReport converts a batch report, keeping input order
func FromReport(report *batch.Report) []Entry {
	return lo.Map(report.Items, func(it batch.Item, _ int) Entry {
		return Entry{ID: it.ID, Result: it.Result, Error: it.Error, Category: it.Category}
	})
}

// Render formats entries with the named formatter
func Render(name string, entries []Entry) ([]byte, error) {
	f := GetFormatterByName(name)
	if f == nil {
		return nil, fmt.Errorf("unsupported format: %s (available: %v)", name, Names())
	}
	return f.Format(entries)
}

// WriteFormatted renders entries and writes them to a timestamped report
// file in dir, returning the file name.
func WriteFormatted(f Formatter, entries []Entry, dir, ext string) (string, error) {
	data, err := f.Format(entries)
	if err != nil {
		return "", err
	}
	filename := filepath.Join(dir, fmt.Sprintf("tax_report_%s.%s", time.Now().Format("20060102_150405"), ext))
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", filename, err)
	}
	return filename, nil
}

// Line is one labelled headline figure
type Line struct {
	Label string
	Value string
}

// Rates returns the marginal and effective rate a result reports, zero for
// categories that have none.
func Rates(res domain.Result) (marginal, effective decimal.Decimal) {
	switch r := res.(type) {
	case *domain.EarnedIncomeResult:
		return r.MarginalRate, r.EffectiveRate
	case *domain.ComprehensiveIncomeResult:
		return r.MarginalRate, r.EffectiveRate
	case *domain.CapitalGainsResult:
		return r.MarginalRate, r.EffectiveRate
	case *domain.WithholdingResult:
		return r.Rate, domain.Rate(r.TotalTax, r.Payment)
	default:
		return decimal.Zero, decimal.Zero
	}
}

// Settlement returns the additional payment and refund, zero when the
// category does not reconcile.
func Settlement(res domain.Result) (additional, refund domain.Won) {
	switch r := res.(type) {
	case *domain.ComprehensiveIncomeResult:
		return r.AdditionalPayment, r.Refund
	case *domain.CapitalGainsResult:
		return r.AdditionalPayment, r.Refund
	default:
		return 0, 0
	}
}

// Highlights lists the category-specific headline figures of a result
func Highlights(res domain.Result) []Line {
	won := tuistyles.FormatWon
	pct := tuistyles.FormatRate
	var lines []Line
	switch r := res.(type) {
	case *domain.EarnedIncomeResult:
		lines = []Line{
			{"Gross salary", won(r.GrossSalary)},
			{"Earned income deduction", won(r.EarnedIncomeDeduction)},
			{"Personal deduction", won(r.PersonalDeduction)},
			{lo.Ternary(r.UsedItemized, "Itemized deductions", "Standard deduction"), won(r.SpecialDeduction)},
			{"Calculated tax", won(r.CalculatedTax)},
			{"Tax credits", won(r.TotalCredits)},
			{"Net monthly estimate", won(r.NetMonthlyEstimate)},
		}
	case *domain.ComprehensiveIncomeResult:
		lines = []Line{{"Gross total income", won(r.GrossIncome)}}
		for _, s := range r.IncomeSources {
			lines = append(lines, Line{"  " + s.Label, won(s.Net)})
		}
		lines = append(lines,
			Line{"Personal deduction", won(r.PersonalDeduction)},
			Line{"Pension contribution deduction", won(r.PensionDeduction)},
			Line{lo.Ternary(r.UsedItemized, "Itemized deductions", "Standard deduction"), won(r.SpecialDeduction)},
			Line{"Calculated tax", won(r.CalculatedTax)},
			Line{"Tax credits", won(r.TotalCredits)},
		)
	case *domain.CapitalGainsResult:
		lines = []Line{
			{"Holding period", fmt.Sprintf("%d years %d months", r.HoldingYears, r.HoldingMonths)},
			{"Transfer gain", won(r.TransferGain)},
		}
		if r.Exemption.Exempt {
			lines = append(lines, Line{"Exemption", string(r.Exemption.Reason)})
			break
		}
		lines = append(lines,
			Line{"Long-term holding rate", pct(r.LongTermHoldingRate)},
			Line{"Long-term holding deduction", won(r.LongTermHoldingDeduction)},
			Line{"Basic deduction", won(r.BasicDeduction)},
			Line{"Base tax", won(r.BaseTax)},
		)
		if r.Surcharge.Kind != domain.SurchargeNone {
			lines = append(lines, Line{fmt.Sprintf("Surcharge (%s)", r.Surcharge.Kind), won(r.Surcharge.Amount)})
		}
	case *domain.WithholdingResult:
		lines = []Line{
			{"Income type", string(r.IncomeType)},
			{"Payment", won(r.Payment)},
		}
		if r.IncomeType == domain.IncomeTypeEarned {
			lines = append(lines, Line{"Table amount", won(r.TableAmount)})
		} else {
			lines = append(lines, Line{"Withholding rate", pct(r.Rate)})
		}
		if r.BasicDeduction > 0 {
			lines = append(lines, Line{"Basic deduction", won(r.BasicDeduction)})
		}
		lines = append(lines, Line{"Net payment", won(r.NetPayment)})
	}
	return lines
}
