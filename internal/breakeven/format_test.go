package breakeven

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTableFormatter_Format(t *testing.T) {
	solver := newSolver(t)
	result, err := solver.Solve(context.Background(), SolveRequest{
		Base:   otherIncomeRequest(true),
		Field:  "payment",
		Goal:   GoalTotalTax,
		Target: decimal.NewFromInt(154_000),
		Bounds: DefaultBounds(),
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	out := (&TableFormatter{}).Format(result)
	for _, want := range []string{
		"BREAK-EVEN SOLVER RESULTS",
		"Goal:         total_tax reaches 154,000 KRW",
		"✓ Converged",
		"payment = 1,000,000 KRW",
		"Current payment: 500,000 KRW",
		"Amount:         +500,000 KRW",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	js, err := (&JSONFormatter{Pretty: true}).Format(result)
	if err != nil {
		t.Fatalf("JSON format failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(js), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	solved := decoded["solved"].(map[string]any)
	if solved["amount"] != float64(1_000_000) {
		t.Errorf("Expected solved amount 1000000, got %v", solved["amount"])
	}
}

func TestTableFormatter_FormatSweep(t *testing.T) {
	solver := newSolver(t)
	solver.Options.GridResolution = 3
	sweep, err := solver.Sweep(context.Background(), otherIncomeRequest(false), "payment", Bounds{Min: 0, Max: 1_000_000})
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	out := (&TableFormatter{}).FormatSweep(sweep)
	for _, want := range []string{"TAX SWEEP OVER PAYMENT", "1,000,000", "220,000", "110,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
