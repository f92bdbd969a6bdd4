// Package batch runs many tax requests over a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/taxlab/ktax/internal/advisory"
	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/domain"
)

// DefaultWorkers is used when no positive worker count is configured
const DefaultWorkers = 4

// Calculator is the part of the engine the runner needs
type Calculator interface {
	Calculate(req domain.Request) (domain.Result, error)
}

// Item is the outcome of one request. Exactly one of Result and Error is set.
type Item struct {
	Index    int             `yaml:"index" json:"index"`
	ID       string          `yaml:"id,omitempty" json:"id,omitempty"`
	Category domain.Category `yaml:"category" json:"category"`
	Result   domain.Result   `yaml:"result,omitempty" json:"result,omitempty"`
	Error    string          `yaml:"error,omitempty" json:"error,omitempty"`

	err error
}

// Err returns the failure for this item, if any
func (i Item) Err() error { return i.err }

// Report holds every item in input order
type Report struct {
	RunID     string        `yaml:"run_id" json:"run_id"`
	StartedAt time.Time     `yaml:"started_at" json:"started_at"`
	Duration  time.Duration `yaml:"duration" json:"duration"`
	Items     []Item        `yaml:"items" json:"items"`
	Succeeded int           `yaml:"succeeded" json:"succeeded"`
	Failed    int           `yaml:"failed" json:"failed"`
	TotalTax  domain.Won    `yaml:"total_tax" json:"total_tax"`
}

// Runner fans requests out to the calculator
type Runner struct {
	calc      Calculator
	decorator advisory.Decorator
	workers   int
	logger    calculation.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithWorkers bounds the number of concurrent calculations
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithDecorator attaches advisories to every successful result
func WithDecorator(d advisory.Decorator) Option {
	return func(r *Runner) {
		if d != nil {
			r.decorator = d
		}
	}
}

// WithLogger sets the progress logger
func WithLogger(l calculation.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner over calc
func NewRunner(calc Calculator, opts ...Option) *Runner {
	r := &Runner{
		calc:      calc,
		decorator: advisory.None{},
		workers:   DefaultWorkers,
		logger:    calculation.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run calculates every request. A failing request is recorded on its item and
// never stops the others. Cancelling ctx stops new work; items not started are
// marked with the context error and Run returns that error with the partial
// report.
func (r *Runner) Run(ctx context.Context, reqs []domain.Request) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Items:     make([]Item, len(reqs)),
	}
	r.logger.Infof("batch %s: %d requests, %d workers", report.RunID, len(reqs), r.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, req := range reqs {
		report.Items[i] = Item{Index: i, ID: req.ID, Category: req.Category}
		if err := gctx.Err(); err != nil {
			report.Items[i].fail(err)
			continue
		}
		i, req := i, req
		g.Go(func() error {
			item := &report.Items[i]
			if err := gctx.Err(); err != nil {
				item.fail(err)
				return nil
			}
			res, err := r.calc.Calculate(req)
			if err != nil {
				r.logger.Warnf("batch %s: item %d (%s): %v", report.RunID, i, req.ID, err)
				item.fail(err)
				return nil
			}
			r.decorator.Decorate(res)
			item.Result = res
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	succeeded := lo.Filter(report.Items, func(it Item, _ int) bool { return it.err == nil })
	report.Succeeded = len(succeeded)
	report.Failed = len(report.Items) - report.Succeeded
	report.TotalTax = lo.SumBy(succeeded, func(it Item) domain.Won { return it.Result.Base().TotalTax })
	r.logger.Infof("batch %s: %d succeeded, %d failed", report.RunID, report.Succeeded, report.Failed)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("batch %s cancelled: %w", report.RunID, err)
	}
	return report, nil
}

func (i *Item) fail(err error) {
	i.err = err
	i.Error = err.Error()
}

// Failures returns the failed items
func (r *Report) Failures() []Item {
	return lo.Filter(r.Items, func(it Item, _ int) bool { return it.err != nil || it.Error != "" })
}

// ValidationFailures counts the items rejected as invalid input
func (r *Report) ValidationFailures() int {
	return lo.CountBy(r.Items, func(it Item) bool {
		var ve *domain.ValidationError
		return errors.As(it.err, &ve)
	})
}
