// Package breakeven searches one amount of a request for the value at which a
// tax metric reaches a target, e.g. the salary that leaves 40,000,000 KRW
// after tax.
package breakeven

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// Goal defines which metric the solver drives to the target
type Goal string

const (
	GoalTotalTax      Goal = "total_tax"      // national plus local tax
	GoalAfterTax      Goal = "after_tax"      // gross amount less total tax
	GoalEffectiveRate Goal = "effective_rate" // total tax over gross, as a fraction
)

// Goals lists every supported goal
var Goals = []Goal{GoalTotalTax, GoalAfterTax, GoalEffectiveRate}

// ParseGoal accepts a goal name
func ParseGoal(s string) (Goal, error) {
	for _, g := range Goals {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown goal %q (want one of %v)", s, Goals)
}

// DefaultMaxAmount bounds the search when no upper bound is given
const DefaultMaxAmount domain.Won = 10_000_000_000

// Bounds limit the searched amount, both inclusive
type Bounds struct {
	Min domain.Won `json:"min"`
	Max domain.Won `json:"max"`
}

// DefaultBounds returns the search range used when none is given
func DefaultBounds() Bounds {
	return Bounds{Min: 0, Max: DefaultMaxAmount}
}

// Validate checks if the bounds are internally consistent
func (b Bounds) Validate() error {
	if b.Min < 0 {
		return &BreakEvenError{Operation: "validate_bounds", Message: "min cannot be negative"}
	}
	if b.Min > b.Max {
		return &BreakEvenError{
			Operation: "validate_bounds",
			Message:   fmt.Sprintf("min %s cannot be greater than max %s", b.Min, b.Max),
		}
	}
	return nil
}

// SolveRequest defines the parameters of one search
type SolveRequest struct {
	Base          domain.Request  `json:"-"`
	Field         string          `json:"field"`  // payload amount to vary, e.g. "annual_salary"
	Goal          Goal            `json:"goal"`
	Target        decimal.Decimal `json:"target"` // won for tax goals, fraction for effective_rate
	Bounds        Bounds          `json:"bounds"`
	MaxIterations int             `json:"-"`
}

// Point is a calculated amount with its headline metrics
type Point struct {
	Amount        domain.Won      `json:"amount"`
	TotalTax      domain.Won      `json:"total_tax"`
	AfterTax      domain.Won      `json:"after_tax"`
	MarginalRate  decimal.Decimal `json:"marginal_rate"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Result        domain.Result   `json:"-"`
}

// Metric returns the point's value for a goal
func (p Point) Metric(goal Goal) decimal.Decimal {
	switch goal {
	case GoalAfterTax:
		return p.AfterTax.Decimal()
	case GoalEffectiveRate:
		return p.EffectiveRate
	default:
		return p.TotalTax.Decimal()
	}
}

// SolveResult contains the outcome of a search
type SolveResult struct {
	Request         SolveRequest `json:"request"`
	Success         bool         `json:"success"`
	Iterations      int          `json:"iterations"`
	ConvergenceInfo string       `json:"convergence_info"`
	Increasing      bool         `json:"increasing"` // whether the metric rises with the amount

	// Solved is the smallest amount at which the target is met
	Solved Point `json:"solved"`
	// Current is the request as given
	Current Point `json:"current"`
}

// SweepResult is a grid of evaluated amounts
type SweepResult struct {
	Field  string  `json:"field"`
	Points []Point `json:"points"`
}

// SolverOptions configures the solver
type SolverOptions struct {
	GridResolution int        // Points evaluated by a sweep
	Tolerance      domain.Won // Width of the final bracketing interval
	MaxIterations  int        // Maximum bisection steps
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		GridResolution: 11,
		Tolerance:      1,
		MaxIterations:  64,
	}
}

// BreakEvenError represents errors from the solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
