package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taxlab/ktax/internal/compare"
	"github.com/taxlab/ktax/internal/config"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/transform"
)

func (a *app) compareCmd() *cobra.Command {
	var (
		baseName      string
		templates     []string
		whatIfs       []string
		listTemplates bool
	)

	cmd := &cobra.Command{
		Use:   "compare [base-file] [alternative-file...]",
		Short: "Compare a base request against what-if alternatives",
		Long: `Compare a base request against alternatives of the same category.
Alternatives come from other request files, built-in templates or ad-hoc
transforms.

Examples:
  ktax compare salary.yaml --template max_pension_savings,add_dependent
  ktax compare salary.yaml --what-if set_amount:field=annual_salary,value=60000000
  ktax compare house.yaml house_2026.yaml --format csv
  ktax compare --list-templates
`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listTemplates {
				return a.printTemplates(cmd)
			}
			if len(args) == 0 {
				return fmt.Errorf("base input file required for comparison (use --list-templates to see available templates)")
			}

			parser := config.NewInputParser()
			base, err := parser.LoadRequest(args[0])
			if err != nil {
				return err
			}

			ce := compare.NewCompareEngine(a.engine)
			var compSet *compare.ComparisonSet
			if len(args) > 1 {
				if len(templates) > 0 || len(whatIfs) > 0 {
					return fmt.Errorf("alternative files cannot be combined with --template or --what-if")
				}
				alts := make([]domain.Request, 0, len(args)-1)
				for _, path := range args[1:] {
					alt, err := parser.LoadRequest(path)
					if err != nil {
						return err
					}
					alts = append(alts, *alt)
				}
				compSet, err = ce.CompareRequests(cmd.Context(), *base, alts)
			} else {
				if len(templates) == 0 && len(whatIfs) == 0 {
					return fmt.Errorf("--template or --what-if is required when no alternative files are given")
				}
				compSet, err = ce.Compare(cmd.Context(), *base, compare.CompareOptions{
					BaseScenarioName: baseName,
					Templates:        templates,
					Transforms:       whatIfs,
				})
			}
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			compSet.InputPath = args[0]
			return a.printComparison(cmd, compSet)
		},
	}

	cmd.Flags().StringVar(&baseName, "base-name", "", "Display name of the base scenario (default: the request id)")
	cmd.Flags().StringSliceVar(&templates, "template", nil, "Comma-separated built-in templates to compare")
	cmd.Flags().StringArrayVar(&whatIfs, "what-if", nil, "Transform spec name:key=value,...; repeat for more alternatives")
	cmd.Flags().BoolVar(&listTemplates, "list-templates", false, "List the built-in templates and transforms")
	return cmd
}

func (a *app) printComparison(cmd *cobra.Command, compSet *compare.ComparisonSet) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(a.cfg.Format) {
	case "csv":
		formatter := &compare.CSVFormatter{}
		data, err := formatter.Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format CSV: %w", err)
		}
		fmt.Fprint(out, data)
	case "json":
		formatter := &compare.JSONFormatter{Pretty: true}
		data, err := formatter.Format(compSet)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, data)
	case "console-lite":
		formatter := &compare.TableFormatter{}
		fmt.Fprintln(out, formatter.FormatCompact(compSet))
	case "table", "console", "":
		formatter := &compare.TableFormatter{}
		fmt.Fprint(out, formatter.Format(compSet))
	default:
		return fmt.Errorf("unknown output format: %s (valid: console, console-lite, csv, json)", a.cfg.Format)
	}
	return nil
}

func (a *app) printTemplates(cmd *cobra.Command) error {
	rt, err := a.store.Table(0)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	registry := transform.CreateBuiltInTemplates(rt)

	fmt.Fprintln(out, "Available templates:")
	for _, category := range domain.Categories {
		names := registry.List(category)
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n  %s\n", category)
		for _, name := range names {
			t, _ := registry.Get(name)
			fmt.Fprintf(out, "    %-36s %s\n", t.Name, t.Description)
		}
	}

	fmt.Fprintln(out, "\nAvailable transforms (--what-if name:key=value,...):")
	for _, name := range transform.NewTransformRegistry().List() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}
