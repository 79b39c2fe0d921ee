package ui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func (a AppView) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// History filter input owns the keyboard while active
	if a.historyFilterMode {
		return a.handleHistoryFilterMode(msg)
	}

	switch {
	case a.is(msg, "new_chat"):
		a.dataModel.NewChat()
		a.selectedCard = 0
		a.selectedSession = 0
		a.updateViewportContent(true)
		return a, nil

	case a.is(msg, "focus_next"):
		a.cycleFocus(1)
		return a, nil

	case a.is(msg, "focus_prev"):
		a.cycleFocus(-1)
		return a, nil

	case a.is(msg, "scroll_down"):
		a.viewport.LineDown(1)
		return a, nil

	case a.is(msg, "scroll_up"):
		a.viewport.LineUp(1)
		return a, nil

	case a.is(msg, "half_page_down"):
		a.viewport.HalfViewDown()
		return a, nil

	case a.is(msg, "half_page_up"):
		a.viewport.HalfViewUp()
		return a, nil

	case a.is(msg, "yank_api_name"):
		return a, a.yankAPIName()
	}

	switch a.focus {
	case FocusResults:
		return a.handleResultsKey(msg)
	case FocusHistory:
		return a.handleHistoryKey(msg)
	case FocusCatalog:
		return a.handleCatalogKey(msg)
	}
	return a.handlePromptKey(msg)
}

func (a *AppView) cycleFocus(step int) {
	idx := 0
	for i, f := range chatFocusOrder {
		if f == a.focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(chatFocusOrder)) % len(chatFocusOrder)
	a.focus = chatFocusOrder[idx]

	if a.focus == FocusInput {
		a.prompt.Focus()
	} else {
		a.prompt.Blur()
	}
	a.updateViewportContent(false)
}

func (a AppView) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "enter":
		cmd := a.dataModel.SubmitPrompt(a.prompt.Value())
		if cmd == nil {
			return a, nil
		}
		a.prompt.Reset()
		a.updateViewportContent(true)
		return a, a.withSpinner(cmd)

	case a.is(msg, "clear_input"):
		a.prompt.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

func (a AppView) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	refs := a.dataModel.Chat.CardRefs()
	if len(refs) == 0 {
		return a, nil
	}
	a.selectedCard = clampIndex(a.selectedCard, len(refs))
	ref := refs[a.selectedCard]

	switch {
	case a.is(msg, "list_down"), a.is(msg, "list_down_arrow"):
		a.selectedCard = clampIndex(a.selectedCard+1, len(refs))
		a.updateViewportContent(false)

	case a.is(msg, "list_up"), a.is(msg, "list_up_arrow"):
		a.selectedCard = clampIndex(a.selectedCard-1, len(refs))
		a.updateViewportContent(false)

	case a.is(msg, "toggle"):
		cmd := a.dataModel.ToggleCard(ref)
		a.updateViewportContent(false)
		return a, cmd

	case a.is(msg, "like"):
		cmd := a.dataModel.LikeCard(ref)
		a.updateViewportContent(false)
		return a, cmd
	}
	return a, nil
}

func (a AppView) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := a.historyList()

	switch {
	case a.is(msg, "filter_history"):
		a.historyFilterMode = true
		a.historyFilterInput.Focus()
		return a, nil

	case msg.String() == "esc" && a.historyFilterInput.Value() != "":
		a.historyFilterInput.Reset()
		a.selectedSession = 0
		return a, nil
	}

	if len(sessions) == 0 {
		return a, nil
	}

	switch {
	case a.is(msg, "list_down"), a.is(msg, "list_down_arrow"):
		a.selectedSession = clampIndex(a.selectedSession+1, len(sessions))

	case a.is(msg, "list_up"), a.is(msg, "list_up_arrow"):
		a.selectedSession = clampIndex(a.selectedSession-1, len(sessions))

	case a.is(msg, "toggle"):
		id := sessions[clampIndex(a.selectedSession, len(sessions))].ID
		a.dataModel.LoadSession(id)
		a.selectedCard = 0
		a.updateViewportContent(true)
	}
	return a, nil
}

func (a AppView) handleHistoryFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.historyFilterMode = false
		a.historyFilterInput.Blur()
		a.historyFilterInput.Reset()
		a.selectedSession = 0
		return a, nil

	case "enter":
		// Keep the filter, go back to navigating the list
		a.historyFilterMode = false
		a.historyFilterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.historyFilterInput, cmd = a.historyFilterInput.Update(msg)
	a.selectedSession = 0
	return a, cmd
}

func (a AppView) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := a.dataModel.Catalog.Entries
	if len(entries) == 0 {
		return a, nil
	}
	a.selectedAPI = clampIndex(a.selectedAPI, len(entries))

	switch {
	case a.is(msg, "list_down"), a.is(msg, "list_down_arrow"):
		a.selectedAPI = clampIndex(a.selectedAPI+1, len(entries))

	case a.is(msg, "list_up"), a.is(msg, "list_up_arrow"):
		a.selectedAPI = clampIndex(a.selectedAPI-1, len(entries))

	case a.is(msg, "toggle"):
		a.dataModel.ToggleCatalogEntry(a.selectedAPI)

	case a.is(msg, "like"):
		return a, a.dataModel.LikeCatalogEntry(a.selectedAPI)
	}
	return a, nil
}

// yankAPIName copies the API name under the cursor to the clipboard.
func (a *AppView) yankAPIName() tea.Cmd {
	var name string
	switch a.focus {
	case FocusResults:
		refs := a.dataModel.Chat.CardRefs()
		if len(refs) > 0 {
			if card := a.dataModel.Chat.Card(refs[clampIndex(a.selectedCard, len(refs))]); card != nil {
				name = card.Candidate.APIName
			}
		}
	case FocusCatalog:
		entries := a.dataModel.Catalog.Entries
		if len(entries) > 0 {
			name = entries[clampIndex(a.selectedAPI, len(entries))].API.Name
		}
	}
	if name == "" {
		return nil
	}

	if err := clipboard.WriteAll(name); err != nil {
		a.dataModel.Logger.Warn().Err(err).Msg("clipboard write failed")
		return a.setFlash("Clipboard unavailable")
	}
	return a.setFlash("Copied " + name)
}
