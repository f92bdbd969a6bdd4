package tui

import (
	"github.com/taxlab/ktax/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneCategories Scene = iota
	SceneForm
	SceneResult
	SceneHelp
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// CalculationCompleteMsg signals a calculation has finished
type CalculationCompleteMsg struct {
	Request domain.Request
	Result  domain.Result
	Err     error
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneCategories:
		return "Categories"
	case SceneForm:
		return "Input"
	case SceneResult:
		return "Result"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
