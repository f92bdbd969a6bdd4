package transform

import (
	"fmt"
	"reflect"
	"time"

	"github.com/taxlab/ktax/internal/domain"
)

var (
	wonType   = reflect.TypeOf(domain.Won(0))
	intType   = reflect.TypeOf(0)
	boolType  = reflect.TypeOf(false)
	typeOfInc = reflect.TypeOf(domain.IncomeType(""))
)

// SetAmount replaces a won amount, e.g. pension_savings.
type SetAmount struct {
	Field string
	Value domain.Won
}

func (s *SetAmount) Name() string { return "set_amount" }

func (s *SetAmount) Description() string {
	return fmt.Sprintf("Set %s to %s", s.Field, s.Value)
}

func (s *SetAmount) Validate(base *domain.Request) error {
	if s.Value < 0 {
		return NewTransformError(s.Name(), "validate", fmt.Sprintf("%s cannot be negative, got %s", s.Field, s.Value), nil)
	}
	if _, err := field(base, s.Field, wonType); err != nil {
		return NewTransformError(s.Name(), "validate", "unknown amount", err)
	}
	return nil
}

func (s *SetAmount) Apply(base *domain.Request) (*domain.Request, error) {
	modified := Clone(base)
	f, err := field(modified, s.Field, wonType)
	if err != nil {
		return nil, NewTransformError(s.Name(), "apply", "unknown amount", err)
	}
	f.SetInt(int64(s.Value))
	return modified, nil
}

// AdjustAmount adds Delta to a won amount, flooring the result at zero.
type AdjustAmount struct {
	Field string
	Delta domain.Won
}

func (a *AdjustAmount) Name() string { return "adjust_amount" }

func (a *AdjustAmount) Description() string {
	if a.Delta < 0 {
		return fmt.Sprintf("Reduce %s by %s", a.Field, -a.Delta)
	}
	return fmt.Sprintf("Increase %s by %s", a.Field, a.Delta)
}

func (a *AdjustAmount) Validate(base *domain.Request) error {
	if _, err := field(base, a.Field, wonType); err != nil {
		return NewTransformError(a.Name(), "validate", "unknown amount", err)
	}
	return nil
}

func (a *AdjustAmount) Apply(base *domain.Request) (*domain.Request, error) {
	modified := Clone(base)
	f, err := field(modified, a.Field, wonType)
	if err != nil {
		return nil, NewTransformError(a.Name(), "apply", "unknown amount", err)
	}
	f.SetInt(max(f.Int()+int64(a.Delta), 0))
	return modified, nil
}

// AdjustCount changes a head count such as dependents or children.
type AdjustCount struct {
	Field string
	Delta int
}

func (a *AdjustCount) Name() string { return "adjust_count" }

func (a *AdjustCount) Description() string {
	return fmt.Sprintf("Change %s by %+d", a.Field, a.Delta)
}

func (a *AdjustCount) Validate(base *domain.Request) error {
	f, err := field(base, a.Field, intType)
	if err != nil {
		return NewTransformError(a.Name(), "validate", "unknown count", err)
	}
	if f.Int()+int64(a.Delta) < 0 {
		return NewTransformError(a.Name(), "validate", fmt.Sprintf("%s would become negative", a.Field), nil)
	}
	return nil
}

func (a *AdjustCount) Apply(base *domain.Request) (*domain.Request, error) {
	modified := Clone(base)
	f, err := field(modified, a.Field, intType)
	if err != nil {
		return nil, NewTransformError(a.Name(), "apply", "unknown count", err)
	}
	f.SetInt(f.Int() + int64(a.Delta))
	return modified, nil
}

// SetFlag sets a boolean condition such as multi_house.
type SetFlag struct {
	Field string
	Value bool
}

func (s *SetFlag) Name() string { return "set_flag" }

func (s *SetFlag) Description() string {
	return fmt.Sprintf("Set %s to %t", s.Field, s.Value)
}

func (s *SetFlag) Validate(base *domain.Request) error {
	if _, err := field(base, s.Field, boolType); err != nil {
		return NewTransformError(s.Name(), "validate", "unknown flag", err)
	}
	return nil
}

func (s *SetFlag) Apply(base *domain.Request) (*domain.Request, error) {
	modified := Clone(base)
	f, err := field(modified, s.Field, boolType)
	if err != nil {
		return nil, NewTransformError(s.Name(), "apply", "unknown flag", err)
	}
	f.SetBool(s.Value)
	return modified, nil
}

// PostponeSale moves a transfer's sale date later by Months, lengthening the
// holding period.
type PostponeSale struct {
	Months int
}

func (p *PostponeSale) Name() string { return "postpone_sale" }

func (p *PostponeSale) Description() string {
	return fmt.Sprintf("Postpone the sale by %d months", p.Months)
}

func (p *PostponeSale) Validate(base *domain.Request) error {
	if base.CapitalGains == nil {
		return NewTransformError(p.Name(), "validate", "request has no capital_gains payload", nil)
	}
	if p.Months <= 0 {
		return NewTransformError(p.Name(), "validate", fmt.Sprintf("months must be positive, got %d", p.Months), nil)
	}
	if base.CapitalGains.SaleDate.IsZero() {
		return NewTransformError(p.Name(), "validate", "sale date is not set", nil)
	}
	return nil
}

func (p *PostponeSale) Apply(base *domain.Request) (*domain.Request, error) {
	modified := Clone(base)
	if modified.CapitalGains == nil {
		return nil, NewTransformError(p.Name(), "apply", "request has no capital_gains payload", nil)
	}
	modified.CapitalGains.SaleDate = addMonths(modified.CapitalGains.SaleDate, p.Months)
	return modified, nil
}

// addMonths keeps the day of month, clamping to the last day when the target
// month is shorter.
func addMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), last), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// SetIncomeType switches the withholding strategy of a payment.
type SetIncomeType struct {
	IncomeType domain.IncomeType
}

func (s *SetIncomeType) Name() string { return "set_income_type" }

func (s *SetIncomeType) Description() string {
	return fmt.Sprintf("Treat the payment as %s income", s.IncomeType)
}

func (s *SetIncomeType) Validate(base *domain.Request) error {
	if _, err := field(base, "income_type", typeOfInc); err != nil {
		return NewTransformError(s.Name(), "validate", "not a withholding request", err)
	}
	switch s.IncomeType {
	case domain.IncomeTypeEarned, domain.IncomeTypeBusiness, domain.IncomeTypeOther,
		domain.IncomeTypeInterest, domain.IncomeTypeDividend:
		return nil
	default:
		return NewTransformError(s.Name(), "validate", fmt.Sprintf("unknown income type %q", s.IncomeType), nil)
	}
}

func (s *SetIncomeType) Apply(base *domain.Request) (*domain.Request, error) {
	modified := Clone(base)
	if modified.Withholding == nil {
		return nil, NewTransformError(s.Name(), "apply", "not a withholding request", nil)
	}
	modified.Withholding.IncomeType = s.IncomeType
	return modified, nil
}
