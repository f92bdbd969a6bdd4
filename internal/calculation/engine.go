package calculation

import (
	"fmt"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/ratetable"
)

// Engine resolves the rate table for an input's tax year and hands the input
// to the matching category calculator. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	Rates  *ratetable.Store
	Logger Logger
}

// NewEngine creates an engine over the embedded rate tables
func NewEngine() (*Engine, error) {
	store, err := ratetable.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load rate tables: %w", err)
	}
	return NewEngineWithStore(store), nil
}

// NewEngineWithStore creates an engine over a caller-supplied store
func NewEngineWithStore(store *ratetable.Store) *Engine {
	return &Engine{Rates: store, Logger: NopLogger{}}
}

// SetLogger sets the logger for the engine. A nil logger disables logging.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

func (e *Engine) table(category domain.Category, year int) (*domain.RateTable, error) {
	rt, err := e.Rates.Table(year)
	if err != nil {
		e.Logger.Warnf("%s: %v", category, err)
		return nil, err
	}
	e.Logger.Debugf("%s: using %d rate table", category, rt.Metadata.TaxYear)
	return rt, nil
}

func (e *Engine) done(category domain.Category, o *domain.Outcome) {
	e.Logger.Debugf("%s: taxable %s, total tax %s, %d warnings", category, o.TaxableAmount, o.TotalTax, len(o.Warnings))
}

// CalculateEarnedIncome settles a wage earner's year
func (e *Engine) CalculateEarnedIncome(in domain.EarnedIncomeInput) (*domain.EarnedIncomeResult, error) {
	rt, err := e.table(domain.CategoryEarnedIncome, in.TaxYear)
	if err != nil {
		return nil, err
	}
	res, err := NewEarnedIncomeCalculator(rt).Calculate(in)
	if err != nil {
		return nil, err
	}
	e.done(domain.CategoryEarnedIncome, &res.Outcome)
	return res, nil
}

// CalculateComprehensiveIncome computes a comprehensive-income return
func (e *Engine) CalculateComprehensiveIncome(in domain.ComprehensiveIncomeInput) (*domain.ComprehensiveIncomeResult, error) {
	rt, err := e.table(domain.CategoryComprehensiveIncome, in.TaxYear)
	if err != nil {
		return nil, err
	}
	res, err := NewComprehensiveIncomeCalculator(rt).Calculate(in)
	if err != nil {
		return nil, err
	}
	e.done(domain.CategoryComprehensiveIncome, &res.Outcome)
	return res, nil
}

// CalculateCapitalGains computes the tax on one transfer
func (e *Engine) CalculateCapitalGains(in domain.CapitalGainsInput) (*domain.CapitalGainsResult, error) {
	rt, err := e.table(domain.CategoryCapitalGains, in.TaxYear)
	if err != nil {
		return nil, err
	}
	res, err := NewCapitalGainsCalculator(rt).Calculate(in)
	if err != nil {
		return nil, err
	}
	e.done(domain.CategoryCapitalGains, &res.Outcome)
	return res, nil
}

// CalculateWithholding computes the tax withheld from one payment
func (e *Engine) CalculateWithholding(in domain.WithholdingInput) (*domain.WithholdingResult, error) {
	rt, err := e.table(domain.CategoryWithholding, in.TaxYear)
	if err != nil {
		return nil, err
	}
	res, err := NewWithholdingCalculator(rt).Calculate(in)
	if err != nil {
		return nil, err
	}
	e.done(domain.CategoryWithholding, &res.Outcome)
	return res, nil
}

// Calculate dispatches a category-tagged request
func (e *Engine) Calculate(req domain.Request) (domain.Result, error) {
	payload, err := req.Payload()
	if err != nil {
		return nil, err
	}
	var (
		res     domain.Result
		calcErr error
	)
	switch in := payload.(type) {
	case domain.EarnedIncomeInput:
		res, calcErr = unwrap[*domain.EarnedIncomeResult](e.CalculateEarnedIncome(in))
	case domain.ComprehensiveIncomeInput:
		res, calcErr = unwrap[*domain.ComprehensiveIncomeResult](e.CalculateComprehensiveIncome(in))
	case domain.CapitalGainsInput:
		res, calcErr = unwrap[*domain.CapitalGainsResult](e.CalculateCapitalGains(in))
	case domain.WithholdingInput:
		res, calcErr = unwrap[*domain.WithholdingResult](e.CalculateWithholding(in))
	default:
		return nil, fmt.Errorf("request %q: unsupported payload %T", req.ID, payload)
	}
	if calcErr != nil {
		return nil, calcErr
	}
	return res, nil
}

// unwrap keeps a failed typed result from becoming a non-nil interface
func unwrap[T domain.Result](r T, err error) (domain.Result, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}
