package transform

import (
	"sort"
	"strings"

	"github.com/taxlab/ktax/internal/domain"
)

// TemplateRegistry manages named what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template is a named collection of transforms for one category
type Template struct {
	Name        string
	Description string
	Category    domain.Category
	Transforms  []RequestTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns the sorted template names, optionally limited to a category
func (tr *TemplateRegistry) List(category domain.Category) []string {
	names := make([]string, 0, len(tr.templates))
	for name, t := range tr.templates {
		if category == "" || t.Category == category {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates builds the common what-if templates. Contribution
// amounts come from the rate table so a template always targets the cap in
// force.
func CreateBuiltInTemplates(rt *domain.RateTable) *TemplateRegistry {
	registry := NewTemplateRegistry()
	pensionCap := rt.Credits.PensionSavings.ContributionCap
	housingCap := rt.Credits.HousingFund.ContributionCap

	registry.Register(Template{
		Name:        "max_pension_savings",
		Description: "Contribute the full pension savings credit cap",
		Category:    domain.CategoryEarnedIncome,
		Transforms:  []RequestTransform{&SetAmount{Field: "pension_savings", Value: pensionCap}},
	})
	registry.Register(Template{
		Name:        "max_housing_fund",
		Description: "Contribute the full housing fund credit cap",
		Category:    domain.CategoryEarnedIncome,
		Transforms:  []RequestTransform{&SetAmount{Field: "housing_fund", Value: housingCap}},
	})
	registry.Register(Template{
		Name:        "max_contributions",
		Description: "Contribute the full pension savings and housing fund caps",
		Category:    domain.CategoryEarnedIncome,
		Transforms: []RequestTransform{
			&SetAmount{Field: "pension_savings", Value: pensionCap},
			&SetAmount{Field: "housing_fund", Value: housingCap},
		},
	})
	registry.Register(Template{
		Name:        "add_dependent",
		Description: "Claim one more dependent",
		Category:    domain.CategoryEarnedIncome,
		Transforms:  []RequestTransform{&AdjustCount{Field: "dependents", Delta: 1}},
	})
	registry.Register(Template{
		Name:        "comprehensive_max_pension_savings",
		Description: "Contribute the full pension savings credit cap",
		Category:    domain.CategoryComprehensiveIncome,
		Transforms:  []RequestTransform{&SetAmount{Field: "pension_savings", Value: pensionCap}},
	})
	registry.Register(Template{
		Name:        "add_child",
		Description: "Claim one more child who is also a dependent",
		Category:    domain.CategoryComprehensiveIncome,
		Transforms: []RequestTransform{
			&AdjustCount{Field: "dependents", Delta: 1},
			&AdjustCount{Field: "children", Delta: 1},
		},
	})
	registry.Register(Template{
		Name:        "hold_1yr",
		Description: "Postpone the sale by one year",
		Category:    domain.CategoryCapitalGains,
		Transforms:  []RequestTransform{&PostponeSale{Months: 12}},
	})
	registry.Register(Template{
		Name:        "hold_3yr",
		Description: "Postpone the sale by three years",
		Category:    domain.CategoryCapitalGains,
		Transforms:  []RequestTransform{&PostponeSale{Months: 36}},
	})
	registry.Register(Template{
		Name:        "single_house",
		Description: "Sell as the household's only residential house",
		Category:    domain.CategoryCapitalGains,
		Transforms: []RequestTransform{
			&SetFlag{Field: "multi_house", Value: false},
			&SetFlag{Field: "residential", Value: true},
			&SetFlag{Field: "one_house_one_family", Value: true},
		},
	})
	registry.Register(Template{
		Name:        "other_basic_deduction",
		Description: "Apply the basic deduction to an other-income payment",
		Category:    domain.CategoryWithholding,
		Transforms: []RequestTransform{
			&SetIncomeType{IncomeType: domain.IncomeTypeOther},
			&SetFlag{Field: "apply_basic_deduction", Value: true},
		},
	})
	registry.Register(Template{
		Name:        "as_business",
		Description: "Treat the payment as business income",
		Category:    domain.CategoryWithholding,
		Transforms:  []RequestTransform{&SetIncomeType{IncomeType: domain.IncomeTypeBusiness}},
	})

	return registry
}
