// Package transform builds what-if variants of a tax request. Transforms are
// composable edits applied to a copy of the base request.
package transform

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/taxlab/ktax/internal/domain"
)

// RequestTransform defines the interface for all request transformations.
type RequestTransform interface {
	// Apply returns a modified copy of base. base is never changed.
	Apply(base *domain.Request) (*domain.Request, error)

	// Name returns a short identifier, e.g. "set_amount".
	Name() string

	// Description returns a human-readable description of the edit.
	Description() string

	// Validate checks the parameters against base without applying.
	Validate(base *domain.Request) error
}

// ApplyTransforms applies transforms in order, each receiving the output of
// the previous one.
func ApplyTransforms(base *domain.Request, transforms []RequestTransform) (*domain.Request, error) {
	if base == nil {
		return nil, fmt.Errorf("base request cannot be nil")
	}
	current := Clone(base)
	for i, t := range transforms {
		if t == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}
		if err := t.Validate(current); err != nil {
			return nil, fmt.Errorf("transform %s validation failed: %w", t.Name(), err)
		}
		next, err := t.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("transform %s failed: %w", t.Name(), err)
		}
		current = next
	}
	return current, nil
}

// Clone deep-copies a request. Every payload is a flat value struct.
func Clone(req *domain.Request) *domain.Request {
	out := *req
	if req.Earned != nil {
		in := *req.Earned
		out.Earned = &in
	}
	if req.Comprehensive != nil {
		in := *req.Comprehensive
		out.Comprehensive = &in
	}
	if req.CapitalGains != nil {
		in := *req.CapitalGains
		out.CapitalGains = &in
	}
	if req.Withholding != nil {
		in := *req.Withholding
		out.Withholding = &in
	}
	return &out
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}

// payload returns the addressable input struct of the request's category
func payload(req *domain.Request) (reflect.Value, error) {
	var p any
	switch req.Category {
	case domain.CategoryEarnedIncome:
		p = req.Earned
	case domain.CategoryComprehensiveIncome:
		p = req.Comprehensive
	case domain.CategoryCapitalGains:
		p = req.CapitalGains
	case domain.CategoryWithholding:
		p = req.Withholding
	}
	v := reflect.ValueOf(p)
	if !v.IsValid() || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("request has no %s payload", req.Category)
	}
	return v.Elem(), nil
}

// field looks up a payload field by its document name, e.g. "pension_savings".
func field(req *domain.Request, name string, kind reflect.Type) (reflect.Value, error) {
	v, err := payload(req)
	if err != nil {
		return reflect.Value{}, err
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag != name {
			continue
		}
		f := v.Field(i)
		if f.Type() != kind {
			return reflect.Value{}, fmt.Errorf("field %s of %s is %s, not %s", name, req.Category, f.Type(), kind)
		}
		return f, nil
	}
	return reflect.Value{}, fmt.Errorf("%s has no field %s", req.Category, name)
}

// Fields lists the editable field names of a request's payload
func Fields(req *domain.Request) []string {
	v, err := payload(req)
	if err != nil {
		return nil
	}
	t := v.Type()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag != "" && tag != "tax_year" {
			names = append(names, tag)
		}
	}
	return names
}

// Amount reads a won amount of the request's payload by its document name
func Amount(req *domain.Request, name string) (domain.Won, error) {
	f, err := field(req, name, reflect.TypeOf(domain.Won(0)))
	if err != nil {
		return 0, err
	}
	return domain.Won(f.Int()), nil
}
