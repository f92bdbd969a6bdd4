package compare

import (
	"context"
	"fmt"

	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/transform"
)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
	TransformRegistry *transform.TransformRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TransformRegistry: transform.NewTransformRegistry(),
	}
}

// CompareOptions configures a what-if comparison
type CompareOptions struct {
	BaseScenarioName string   // Display name of the base request
	Templates        []string // Built-in template names to apply
	Transforms       []string // Ad-hoc transform specs, each one alternative
}

// Compare calculates the base request and one alternative per template and
// per transform spec.
func (ce *CompareEngine) Compare(ctx context.Context, base domain.Request, options CompareOptions) (*ComparisonSet, error) {
	baseName := scenarioName(options.BaseScenarioName, base.ID, "base")
	baseResult, err := ce.calculate(ctx, baseName, base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}

	rt, err := ce.CalcEngine.Rates.Table(baseResult.Result.Base().TaxYear)
	if err != nil {
		return nil, err
	}
	templates := transform.CreateBuiltInTemplates(rt)

	alternatives := []ComparisonResult{}
	for _, templateName := range options.Templates {
		template, ok := templates.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}
		if template.Category != base.Category {
			return nil, fmt.Errorf("template %s applies to %s, not %s", templateName, template.Category, base.Category)
		}
		modified, err := transform.ApplyTransforms(&base, template.Transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}
		alt, err := ce.alternative(ctx, baseName+"_"+template.Name, template.Description, *modified, baseResult)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, alt)
	}

	for _, spec := range options.Transforms {
		t, err := ce.TransformRegistry.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		modified, err := transform.ApplyTransforms(&base, []transform.RequestTransform{t})
		if err != nil {
			return nil, err
		}
		alt, err := ce.alternative(ctx, baseName+"_"+t.Name(), t.Description(), *modified, baseResult)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, alt)
	}

	return ce.set(baseName, baseResult, alternatives), nil
}

// CompareRequests compares explicit alternative requests of the same category
func (ce *CompareEngine) CompareRequests(ctx context.Context, base domain.Request, alternatives []domain.Request) (*ComparisonSet, error) {
	baseName := scenarioName("", base.ID, "base")
	baseResult, err := ce.calculate(ctx, baseName, base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}

	results := []ComparisonResult{}
	for i, req := range alternatives {
		name := scenarioName("", req.ID, fmt.Sprintf("alternative_%d", i+1))
		if req.Category != base.Category {
			return nil, fmt.Errorf("scenario %s is %s but the base is %s", name, req.Category, base.Category)
		}
		alt, err := ce.alternative(ctx, name, "", req, baseResult)
		if err != nil {
			return nil, err
		}
		results = append(results, alt)
	}
	return ce.set(baseName, baseResult, results), nil
}

func (ce *CompareEngine) alternative(ctx context.Context, name, description string, req domain.Request, base ComparisonResult) (ComparisonResult, error) {
	alt, err := ce.calculate(ctx, name, req)
	if err != nil {
		return ComparisonResult{}, fmt.Errorf("failed to calculate scenario %s: %w", name, err)
	}
	alt.Description = description
	return ce.MetricsCalculator.CalculateComparison(alt, base), nil
}

func (ce *CompareEngine) calculate(ctx context.Context, name string, req domain.Request) (ComparisonResult, error) {
	if err := ctx.Err(); err != nil {
		return ComparisonResult{}, err
	}
	res, err := ce.CalcEngine.Calculate(req)
	if err != nil {
		return ComparisonResult{}, err
	}
	return ce.MetricsCalculator.CalculateMetrics(name, res), nil
}

func (ce *CompareEngine) set(baseName string, base ComparisonResult, alternatives []ComparisonResult) *ComparisonSet {
	compSet := &ComparisonSet{
		BaseScenarioName:   baseName,
		BaseResult:         &base,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet
}

func scenarioName(explicit, id, fallback string) string {
	switch {
	case explicit != "":
		return explicit
	case id != "":
		return id
	default:
		return fallback
	}
}
