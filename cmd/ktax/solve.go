package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taxlab/ktax/internal/breakeven"
	"github.com/taxlab/ktax/internal/config"
	"github.com/taxlab/ktax/internal/transform"
)

func (a *app) solveCmd() *cobra.Command {
	var (
		field    string
		goal     string
		target   string
		minValue string
		maxValue string
		sweep    int
	)

	cmd := &cobra.Command{
		Use:   "solve [input-file]",
		Short: "Find the amount at which a tax metric reaches a target",
		Long: `Search one amount of a request for the smallest value at which a goal
metric reaches the target. Goals: total_tax, after_tax, effective_rate.
With --sweep the amount is instead evaluated at evenly spaced points.

Examples:
  ktax solve salary.yaml --field annual_salary --goal after_tax --target 40,000,000
  ktax solve salary.yaml --field annual_salary --goal effective_rate --target 15%
  ktax solve fee.yaml --field payment --sweep 11 --max 10,000,000
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := config.NewInputParser().LoadRequest(args[0])
			if err != nil {
				return err
			}
			if field == "" {
				return fmt.Errorf("--field is required (one of: %s)", strings.Join(transform.Fields(req), ", "))
			}

			bounds := breakeven.DefaultBounds()
			if minValue != "" {
				if bounds.Min, err = transform.ParseWon(minValue); err != nil {
					return fmt.Errorf("invalid --min: %w", err)
				}
			}
			if maxValue != "" {
				if bounds.Max, err = transform.ParseWon(maxValue); err != nil {
					return fmt.Errorf("invalid --max: %w", err)
				}
			}

			solver := breakeven.NewDefaultSolver(a.engine)
			if sweep > 0 {
				solver.Options.GridResolution = sweep
				result, err := solver.Sweep(cmd.Context(), *req, field, bounds)
				if err != nil {
					return fmt.Errorf("sweep failed: %w", err)
				}
				return a.printSolve(cmd, result, func(tf *breakeven.TableFormatter) string { return tf.FormatSweep(result) })
			}

			g, err := breakeven.ParseGoal(goal)
			if err != nil {
				return err
			}
			if target == "" {
				return fmt.Errorf("--target is required")
			}
			t, err := breakeven.ParseTarget(g, target)
			if err != nil {
				return err
			}
			result, err := solver.Solve(cmd.Context(), breakeven.SolveRequest{
				Base:   *req,
				Field:  field,
				Goal:   g,
				Target: t,
				Bounds: bounds,
			})
			if err != nil {
				return fmt.Errorf("solve failed: %w", err)
			}
			return a.printSolve(cmd, result, func(tf *breakeven.TableFormatter) string { return tf.Format(result) })
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Amount field to vary, e.g. annual_salary")
	cmd.Flags().StringVar(&goal, "goal", string(breakeven.GoalTotalTax), "Metric to reach: total_tax, after_tax, effective_rate")
	cmd.Flags().StringVar(&target, "target", "", "Target value: an amount, or a rate such as 15% for effective_rate")
	cmd.Flags().StringVar(&minValue, "min", "", "Lower bound of the search (default 0)")
	cmd.Flags().StringVar(&maxValue, "max", "", "Upper bound of the search (default 10,000,000,000)")
	cmd.Flags().IntVar(&sweep, "sweep", 0, "Evaluate this many evenly spaced amounts instead of solving")
	return cmd
}

func (a *app) printSolve(cmd *cobra.Command, result any, table func(*breakeven.TableFormatter) string) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(a.cfg.Format) {
	case "json":
		data, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, data)
	case "table", "console", "console-lite", "":
		fmt.Fprint(out, table(&breakeven.TableFormatter{}))
	default:
		return fmt.Errorf("unknown output format: %s (valid: console, json)", a.cfg.Format)
	}
	return nil
}
