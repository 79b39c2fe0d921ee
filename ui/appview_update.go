package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	appmodel "springboard/model"
)

const flashDuration = 2 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case flashClearMsg:
		if msg.seq == a.flashSeq {
			a.flash = ""
		}
		return a, nil

	case searchResultMsg:
		a.dataModel.HandleSearchResult(msg)
		a.updateViewportContent(true)
		return a, nil

	case detailLoadedMsg:
		a.dataModel.HandleDetail(msg)
		a.updateViewportContent(false)
		return a, nil

	case cardLikedMsg:
		a.dataModel.HandleCardLiked(msg)
		a.updateViewportContent(false)
		return a, nil

	case catalogLoadedMsg:
		a.dataModel.HandleCatalog(msg)
		a.selectedAPI = clampIndex(a.selectedAPI, len(a.dataModel.Catalog.Entries))
		return a, nil

	case catalogLikedMsg:
		a.dataModel.HandleCatalogLiked(msg)
		return a, nil

	case duplicateReportMsg:
		a.dataModel.HandleDuplicateReport(msg)
		return a, nil

	case submitResultMsg:
		return a, a.dataModel.HandleSubmitResult(msg)

	case redirectMsg:
		cmd := a.dataModel.HandleRedirect()
		a.nameInput.Reset()
		a.descInput.Reset()
		a.focusActivePanel()
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Everything else (cursor blink) goes to the focused input
	return a.updateFocusedInput(msg)
}

// busy reports whether a spinner should be animating.
func (a AppView) busy() bool {
	phase := a.dataModel.Submission.Phase
	return !a.dataModel.Chat.SendEnabled() ||
		phase == appmodel.SubmitChecking ||
		phase == appmodel.SubmitSubmitting
}

func (a AppView) is(msg tea.KeyMsg, action string) bool {
	return msg.String() == a.keys.GetActionKey(action)
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// PRIORITY 0: pending alert swallows everything but quit
	if a.dataModel.Alert != "" {
		switch {
		case msg.String() == "enter", msg.String() == "esc":
			a.dataModel.DismissAlert()
		case a.is(msg, "quit"), msg.String() == "ctrl+c":
			a.dataModel.Quitting = true
			return a, tea.Quit
		}
		return a, nil
	}

	// PRIORITY 1: always-global shortcuts
	switch {
	case a.is(msg, "quit"), msg.String() == "ctrl+c":
		a.dataModel.Quitting = true
		return a, tea.Quit

	case a.is(msg, "help"):
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	switch {
	case a.is(msg, "switch_panel"):
		if a.dataModel.Panel == appmodel.PanelChat {
			a.dataModel.ShowPanel(appmodel.PanelSubmit)
		} else {
			a.dataModel.ShowPanel(appmodel.PanelChat)
		}
		a.focusActivePanel()
		return a, nil

	case a.is(msg, "refresh_apis"):
		return a, a.dataModel.RefreshCatalog()
	}

	if a.dataModel.Panel == appmodel.PanelSubmit {
		return a.handleSubmitKey(msg)
	}
	return a.handleChatKey(msg)
}

func (a AppView) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.dataModel.Panel == appmodel.PanelSubmit && a.submitFocus == fieldName:
		a.nameInput, cmd = a.nameInput.Update(msg)
	case a.dataModel.Panel == appmodel.PanelSubmit:
		a.descInput, cmd = a.descInput.Update(msg)
	case a.historyFilterMode:
		a.historyFilterInput, cmd = a.historyFilterInput.Update(msg)
	case a.focus == FocusInput:
		a.prompt, cmd = a.prompt.Update(msg)
	}
	return a, cmd
}

func (a *AppView) setFlash(text string) tea.Cmd {
	a.flashSeq++
	a.flash = text
	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{seq: seq}
	})
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
