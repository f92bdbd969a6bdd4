package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/taxlab/ktax/internal/advisory"
	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/config"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/ratetable"
	"github.com/taxlab/ktax/internal/tui"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	logrus.SetLevel(logrus.ErrorLevel)
	if path := os.Getenv("KTAX_TUI_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Error: cannot open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logrus.SetOutput(f)
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(level)
		}
	} else {
		logrus.SetOutput(io.Discard)
	}

	store, err := ratetable.Default()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.RatesFile != "" {
		override, err := ratetable.LoadFile(cfg.RatesFile)
		if err == nil {
			store, err = store.WithOverride(override)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	engine := calculation.NewEngineWithStore(store)
	engine.SetLogger(logrus.WithField("module", "engine"))

	var decorator advisory.Decorator = advisory.ForStore(store)
	if cfg.NoAdvice {
		decorator = advisory.None{}
	}

	// Optional request file to start from
	var initial *domain.Request
	if len(os.Args) > 1 {
		initial, err = config.NewInputParser().LoadRequest(os.Args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(
		tui.NewModel(engine, decorator, initial),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
