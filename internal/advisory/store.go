package advisory

import (
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/ratetable"
)

// ByYear decorates each result with the advisor built from its own tax
// year's rate table.
type ByYear struct {
	advisors map[int]*Advisor
}

// ForStore builds one advisor per table in the store
func ForStore(store *ratetable.Store) *ByYear {
	advisors := make(map[int]*Advisor)
	for _, year := range store.Years() {
		rt, err := store.Table(year)
		if err != nil {
			continue
		}
		advisors[year] = New(rt)
	}
	return &ByYear{advisors: advisors}
}

// Decorate implements Decorator
func (b *ByYear) Decorate(res domain.Result) {
	if res == nil {
		return
	}
	if a, ok := b.advisors[res.Base().TaxYear]; ok {
		a.Decorate(res)
	}
}

// None is a Decorator that attaches nothing
type None struct{}

// Decorate implements Decorator
func (None) Decorate(domain.Result) {}
