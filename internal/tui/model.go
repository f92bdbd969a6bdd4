// Package tui is the interactive calculator: pick a category, fill in the
// form, and read the result.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taxlab/ktax/internal/advisory"
	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/scenes"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	engine    *calculation.Engine
	decorator advisory.Decorator

	// Scene models
	categoriesModel *scenes.CategoriesModel
	formModel       *scenes.FormModel
	resultModel     *scenes.ResultModel

	// Request the form starts from, if one was loaded
	initial *domain.Request

	err     error
	loading bool
}

// NewModel creates a new application model. A non-nil initial request opens
// its form directly.
func NewModel(engine *calculation.Engine, decorator advisory.Decorator, initial *domain.Request) Model {
	if decorator == nil {
		decorator = advisory.None{}
	}
	m := Model{
		currentScene:    SceneCategories,
		engine:          engine,
		decorator:       decorator,
		categoriesModel: scenes.NewCategoriesModel(),
		resultModel:     scenes.NewResultModel(),
		initial:         initial,
		width:           80,
		height:          24,
	}
	if initial != nil {
		m.formModel = scenes.NewFormModel(initial.Category, initial)
		m.currentScene = SceneForm
	}
	return m
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return nil
}

// calculateCmd returns a command that calculates and decorates a request
func calculateCmd(engine *calculation.Engine, decorator advisory.Decorator, req domain.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.Calculate(req)
		if err != nil {
			return CalculationCompleteMsg{Request: req, Err: err}
		}
		decorator.Decorate(res)
		return CalculationCompleteMsg{Request: req, Result: res}
	}
}
