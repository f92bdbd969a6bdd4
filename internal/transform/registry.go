package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/taxlab/ktax/internal/domain"
)

// TransformRegistry creates transforms from string parameters, for the CLI.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory creates a transform from parameters.
type TransformFactory func(params map[string]string) (RequestTransform, error)

// NewTransformRegistry creates a registry with every built-in transform.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}
	registry.Register("set_amount", createSetAmount)
	registry.Register("adjust_amount", createAdjustAmount)
	registry.Register("adjust_count", createAdjustCount)
	registry.Register("set_flag", createSetFlag)
	registry.Register("postpone_sale", createPostponeSale)
	registry.Register("set_income_type", createSetIncomeType)
	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (RequestTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}
	return factory(params)
}

// List returns the sorted names of all registered transforms.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses "name:key=value,key=value", for example
// "set_amount:field=pension_savings,value=6000000".
func (r *TransformRegistry) ParseTransformSpec(spec string) (RequestTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

func requireParams(name string, params map[string]string, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("%s requires '%s' parameter", name, k)
		}
	}
	return nil
}

// ParseWon reads an amount that may use "_" or "," as digit separators
func ParseWon(s string) (domain.Won, error) {
	v, err := strconv.ParseInt(strings.NewReplacer("_", "", ",", "").Replace(strings.TrimSpace(s)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return domain.Won(v), nil
}

func createSetAmount(params map[string]string) (RequestTransform, error) {
	if err := requireParams("set_amount", params, "field", "value"); err != nil {
		return nil, err
	}
	value, err := ParseWon(params["value"])
	if err != nil {
		return nil, err
	}
	return &SetAmount{Field: params["field"], Value: value}, nil
}

func createAdjustAmount(params map[string]string) (RequestTransform, error) {
	if err := requireParams("adjust_amount", params, "field", "delta"); err != nil {
		return nil, err
	}
	delta, err := ParseWon(params["delta"])
	if err != nil {
		return nil, err
	}
	return &AdjustAmount{Field: params["field"], Delta: delta}, nil
}

func createAdjustCount(params map[string]string) (RequestTransform, error) {
	if err := requireParams("adjust_count", params, "field", "delta"); err != nil {
		return nil, err
	}
	delta, err := strconv.Atoi(params["delta"])
	if err != nil {
		return nil, fmt.Errorf("invalid delta value: %w", err)
	}
	return &AdjustCount{Field: params["field"], Delta: delta}, nil
}

func createSetFlag(params map[string]string) (RequestTransform, error) {
	if err := requireParams("set_flag", params, "field", "value"); err != nil {
		return nil, err
	}
	value, err := strconv.ParseBool(params["value"])
	if err != nil {
		return nil, fmt.Errorf("invalid flag value: %w", err)
	}
	return &SetFlag{Field: params["field"], Value: value}, nil
}

func createPostponeSale(params map[string]string) (RequestTransform, error) {
	if err := requireParams("postpone_sale", params, "months"); err != nil {
		return nil, err
	}
	months, err := strconv.Atoi(params["months"])
	if err != nil {
		return nil, fmt.Errorf("invalid months value: %w", err)
	}
	return &PostponeSale{Months: months}, nil
}

func createSetIncomeType(params map[string]string) (RequestTransform, error) {
	if err := requireParams("set_income_type", params, "type"); err != nil {
		return nil, err
	}
	return &SetIncomeType{IncomeType: domain.IncomeType(params["type"])}, nil
}
