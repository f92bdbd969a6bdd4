package breakeven

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/compare"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/transform"
)

// Solver bisects a request amount against a tax metric. Tax is monotone in
// every amount, so the target is crossed at most once inside the bounds.
type Solver struct {
	CalcEngine *calculation.Engine
	Options    SolverOptions
	metrics    *compare.MetricsCalculator
}

// NewSolver creates a new solver
func NewSolver(calcEngine *calculation.Engine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
		metrics:    compare.NewMetricsCalculator(),
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.Engine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Solve finds the smallest amount of req.Field within the bounds at which the
// goal metric reaches the target. For a metric that falls as the amount
// rises, reaching means falling to the target or below.
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	if err := req.Bounds.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseGoal(string(req.Goal)); err != nil {
		return nil, &BreakEvenError{Operation: "solve", Message: err.Error()}
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	tolerance := max(s.Options.Tolerance, 1)

	amount, err := transform.Amount(&req.Base, req.Field)
	if err != nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "unknown amount", Cause: err}
	}
	current, err := s.Evaluate(ctx, req.Base, req.Field, amount)
	if err != nil {
		return nil, err
	}
	low, err := s.Evaluate(ctx, req.Base, req.Field, req.Bounds.Min)
	if err != nil {
		return nil, err
	}
	high, err := s.Evaluate(ctx, req.Base, req.Field, req.Bounds.Max)
	if err != nil {
		return nil, err
	}

	increasing := high.Metric(req.Goal).GreaterThanOrEqual(low.Metric(req.Goal))
	reached := func(p Point) bool {
		if increasing {
			return p.Metric(req.Goal).GreaterThanOrEqual(req.Target)
		}
		return p.Metric(req.Goal).LessThanOrEqual(req.Target)
	}

	result := &SolveResult{Request: req, Increasing: increasing, Current: current}

	if reached(low) {
		result.Success = true
		result.Solved = low
		result.ConvergenceInfo = "Target met at the lower bound"
		return result, nil
	}
	if !reached(high) {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message: fmt.Sprintf("%s cannot reach %s between %s and %s (%s at the upper bound)",
				req.Goal, formatTarget(req.Goal, req.Target), req.Bounds.Min, req.Bounds.Max,
				formatTarget(req.Goal, high.Metric(req.Goal))),
		}
	}

	// low never reaches the target and high always does
	for result.Iterations < req.MaxIterations && high.Amount-low.Amount > tolerance {
		result.Iterations++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mid, err := s.Evaluate(ctx, req.Base, req.Field, low.Amount+(high.Amount-low.Amount)/2)
		if err != nil {
			return nil, err
		}
		if reached(mid) {
			high = mid
		} else {
			low = mid
		}
	}

	result.Solved = high
	if high.Amount-low.Amount > tolerance {
		result.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
		return result, nil
	}
	result.Success = true
	result.ConvergenceInfo = fmt.Sprintf("Converged within %s KRW", tolerance)
	return result, nil
}

// Evaluate calculates base with field set to amount
func (s *Solver) Evaluate(ctx context.Context, base domain.Request, field string, amount domain.Won) (Point, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, err
	}
	req, err := transform.ApplyTransforms(&base, []transform.RequestTransform{
		&transform.SetAmount{Field: field, Value: amount},
	})
	if err != nil {
		return Point{}, &BreakEvenError{Operation: "evaluate", Message: "failed to apply amount", Cause: err}
	}

	res, err := s.CalcEngine.Calculate(*req)
	if err != nil {
		return Point{}, &BreakEvenError{
			Operation: "evaluate",
			Message:   fmt.Sprintf("failed to calculate at %s", amount),
			Cause:     err,
		}
	}
	m := s.metrics.CalculateMetrics(req.ID, res)
	return Point{
		Amount:        amount,
		TotalTax:      m.TotalTax,
		AfterTax:      m.AfterTax,
		MarginalRate:  m.MarginalRate,
		EffectiveRate: m.EffectiveRate,
		Result:        res,
	}, nil
}

// Sweep evaluates field at evenly spaced amounts across the bounds, both
// ends included.
func (s *Solver) Sweep(ctx context.Context, base domain.Request, field string, bounds Bounds) (*SweepResult, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	n := max(s.Options.GridResolution, 2)
	span := bounds.Max - bounds.Min

	sweep := &SweepResult{Field: field, Points: make([]Point, 0, n)}
	for i := 0; i < n; i++ {
		amount := bounds.Min + domain.FloorWon(span.Decimal().Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(int64(n-1))))
		p, err := s.Evaluate(ctx, base, field, amount)
		if err != nil {
			return nil, err
		}
		sweep.Points = append(sweep.Points, p)
	}
	return sweep, nil
}

func formatTarget(goal Goal, v decimal.Decimal) string {
	if goal == GoalEffectiveRate {
		return v.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	}
	return domain.FloorWon(v).String() + " KRW"
}
