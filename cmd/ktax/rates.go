package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/tuistyles"
)

func (a *app) ratesCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show the rate table for a tax year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.store.Table(year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch a.cfg.Format {
			case "yaml":
				return yaml.NewEncoder(out).Encode(rt)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rt)
			default:
				printRates(out, rt, a.store.Years())
				return nil
			}
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Tax year (default: the latest configured year)")
	return cmd
}

func printRates(out io.Writer, rt *domain.RateTable, years []int) {
	fmt.Fprintf(out, "RATE TABLE %d\n", rt.Metadata.TaxYear)
	fmt.Fprintln(out, strings.Repeat("=", 64))
	if rt.Metadata.Description != "" {
		fmt.Fprintln(out, rt.Metadata.Description)
	}
	if rt.Metadata.LastUpdated != "" {
		fmt.Fprintf(out, "Last updated: %s\n", rt.Metadata.LastUpdated)
	}
	fmt.Fprintf(out, "Configured years: %v\n\n", years)

	fmt.Fprintf(out, "%-34s %8s %20s\n", "Taxable base", "Rate", "Progressive deduction")
	fmt.Fprintln(out, strings.Repeat("-", 64))
	for _, b := range rt.IncomeTax.Brackets {
		upper := "and above"
		if b.Max != nil {
			upper = "to " + b.Max.String()
		}
		fmt.Fprintf(out, "%-34s %8s %20s\n", b.Min.String()+" "+upper, tuistyles.FormatRate(b.Rate), b.ProgressiveDeduction.String())
	}
	fmt.Fprintln(out, strings.Repeat("-", 64))
	fmt.Fprintf(out, "Local income tax: %s of national tax\n", tuistyles.FormatRate(rt.IncomeTax.LocalTaxRate))
}
