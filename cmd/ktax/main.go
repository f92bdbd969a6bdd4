package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taxlab/ktax/internal/advisory"
	"github.com/taxlab/ktax/internal/batch"
	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/config"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/output"
	"github.com/taxlab/ktax/internal/ratetable"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app is the state shared by every command once flags are parsed
type app struct {
	cfg       *config.Config
	store     *ratetable.Store
	engine    *calculation.Engine
	decorator advisory.Decorator
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "ktax",
		Short: "Korean income tax calculator CLI",
		Long: `Statutory Korean income tax calculations for earned income, comprehensive
income, capital gains and withholding, driven by versioned rate tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format ("+strings.Join(output.Names(), ", ")+")")
	flags.StringVar(&cfg.RatesFile, "rates", cfg.RatesFile, "Rate table YAML that replaces or adds its tax year")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Write the report to a timestamped file in this directory")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent calculations for batch runs")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&cfg.NoAdvice, "no-advice", cfg.NoAdvice, "Omit advisory notices from results")

	rootCmd.AddCommand(a.calculateCmd())
	rootCmd.AddCommand(a.batchCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.compareCmd())
	rootCmd.AddCommand(a.solveCmd())
	rootCmd.AddCommand(a.ratesCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// setup validates the settings and builds the engine
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cmd.ErrOrStderr(), a.cfg.LogLevel); err != nil {
		return err
	}

	store, err := ratetable.Default()
	if err != nil {
		return fmt.Errorf("failed to load rate tables: %w", err)
	}
	if a.cfg.RatesFile != "" {
		override, err := ratetable.LoadFile(a.cfg.RatesFile)
		if err != nil {
			return err
		}
		if store, err = store.WithOverride(override); err != nil {
			return err
		}
		engineLog.Infof("using %d rate table from %s", override.Metadata.TaxYear, a.cfg.RatesFile)
	}

	a.store = store
	a.engine = calculation.NewEngineWithStore(store)
	a.engine.SetLogger(engineLog)
	a.decorator = advisory.ForStore(store)
	if a.cfg.NoAdvice {
		a.decorator = advisory.None{}
	}
	return nil
}

// emit renders entries to stdout, or to a report file when --output-dir is set
func (a *app) emit(cmd *cobra.Command, entries []output.Entry) error {
	f := output.GetFormatterByName(a.cfg.Format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s (available: %v)", a.cfg.Format, output.Names())
	}
	if a.cfg.OutputDir != "" {
		filename, err := output.WriteFormatted(f, entries, a.cfg.OutputDir, extension(a.cfg.Format))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
		return nil
	}
	data, err := f.Format(entries)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func extension(format string) string {
	switch format {
	case "json", "yaml", "csv":
		return format
	default:
		return "txt"
	}
}

func (a *app) calculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Calculate the tax for one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := config.NewInputParser().LoadRequest(args[0])
			if err != nil {
				return err
			}
			res, err := a.engine.Calculate(*req)
			if err != nil {
				return err
			}
			a.decorator.Decorate(res)
			return a.emit(cmd, output.Single(req.ID, res))
		},
	}
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [input-file]",
		Short: "Calculate every request in a batch document concurrently",
		Long: `Calculate every request listed under "requests:" in a YAML or JSON file.
A failing request is reported in place and does not stop the others; the
command exits non-zero when any request failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := config.NewInputParser().LoadRequests(args[0])
			if err != nil {
				return err
			}
			runner := batch.NewRunner(a.engine,
				batch.WithWorkers(a.cfg.Workers),
				batch.WithDecorator(a.decorator),
				batch.WithLogger(batchLog),
			)
			report, err := runner.Run(cmd.Context(), reqs)
			if err != nil {
				return err
			}
			if err := a.emit(cmd, output.FromReport(report)); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d requests failed", report.Failed, len(report.Items))
			}
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a request or batch document without printing results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := config.NewInputParser().LoadRequests(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			invalid := 0
			for i, req := range reqs {
				name := req.ID
				if name == "" {
					name = fmt.Sprintf("request %d", i)
				}
				res, err := a.engine.Calculate(req)
				var ve *domain.ValidationError
				switch {
				case errors.As(err, &ve):
					invalid++
					fmt.Fprintf(out, "✗ %s: %v\n", name, ve)
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "✓ %s (%s)\n", name, req.Category)
					for _, w := range res.Base().Warnings {
						fmt.Fprintf(out, "  ⚠ %s: %s\n", w.Field, w.Message)
					}
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d requests are invalid", invalid, len(reqs))
			}
			fmt.Fprintf(out, "Input file %s is valid\n", args[0])
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ktax %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
