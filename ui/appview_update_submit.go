package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	appmodel "springboard/model"
)

func (a AppView) handleSubmitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.is(msg, "focus_next"), a.is(msg, "focus_prev"),
		msg.String() == "enter" && a.submitFocus == fieldName:
		a.toggleSubmitField()
		return a, nil

	case a.is(msg, "check_duplicates"):
		return a, a.withSpinner(a.dataModel.CheckDuplicates(a.nameInput.Value(), a.descInput.Value()))

	case a.is(msg, "submit_api"), msg.String() == "enter":
		return a, a.withSpinner(a.dataModel.SubmitAPI(a.nameInput.Value(), a.descInput.Value()))

	case a.is(msg, "clear_input"):
		if a.submitFocus == fieldName {
			a.nameInput.Reset()
		} else {
			a.descInput.Reset()
		}
		return a, nil

	case msg.String() == "esc":
		a.dataModel.ShowPanel(appmodel.PanelChat)
		a.focusActivePanel()
		return a, nil
	}

	return a.updateFocusedInput(msg)
}

func (a *AppView) toggleSubmitField() {
	if a.submitFocus == fieldName {
		a.submitFocus = fieldDescription
		a.nameInput.Blur()
		a.descInput.Focus()
		return
	}
	a.submitFocus = fieldName
	a.descInput.Blur()
	a.nameInput.Focus()
}

// withSpinner starts the spinner alongside a request command.
func (a AppView) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, a.spinner.Tick)
}
