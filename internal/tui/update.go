package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/tui/scenes"
	"github.com/taxlab/ktax/internal/tui/tuimsg"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.categoriesModel.SetSize(m.width, m.contentHeight())
		m.resultModel.SetSize(m.width, m.contentHeight())
		if m.formModel != nil {
			m.formModel.SetSize(m.width, m.contentHeight())
		}
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case tuimsg.CategorySelectedMsg:
		if m.formModel == nil || m.formModel.Category() != msg.Category {
			m.formModel = scenes.NewFormModel(msg.Category, m.initial)
			m.formModel.SetSize(m.width, m.contentHeight())
		}
		return m.navigate(SceneForm)

	case tuimsg.SubmitMsg:
		m.loading = true
		return m, calculateCmd(m.engine, m.decorator, msg.Request)

	case tuimsg.BackMsg:
		switch m.currentScene {
		case SceneResult:
			return m.navigate(SceneForm)
		default:
			return m.navigate(SceneCategories)
		}

	case CalculationCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			if domain.IsValidationError(msg.Err) && m.formModel != nil {
				m.formModel.SetErr(msg.Err)
				return m, nil
			}
			m.err = msg.Err
			return m, nil
		}
		title := string(msg.Result.Base().Category)
		if msg.Request.ID != "" {
			title = msg.Request.ID
		}
		m.resultModel.SetResult(title, msg.Result)
		return m.navigate(SceneResult)
	}

	return m.updateCurrentScene(msg)
}

func (m Model) navigate(scene Scene) (tea.Model, tea.Cmd) {
	m.previousScene = m.currentScene
	m.currentScene = scene
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		// any key dismisses the error
		m.err = nil
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		// q is text while the form is focused
		if m.currentScene != SceneForm {
			return m, tea.Quit
		}

	case "?":
		if m.currentScene != SceneForm {
			return m.navigate(SceneHelp)
		}

	case "esc":
		if m.currentScene == SceneHelp {
			return m.navigate(m.previousScene)
		}
	}

	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneCategories:
		m.categoriesModel, cmd = m.categoriesModel.Update(msg)
	case SceneForm:
		if m.formModel != nil {
			m.formModel, cmd = m.formModel.Update(msg)
		}
	case SceneResult:
		m.resultModel, cmd = m.resultModel.Update(msg)
	}
	return m, cmd
}
