package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"springboard/config"
	appmodel "springboard/model"
	"springboard/storage"
)

const (
	minSidebarWidth = 24
	maxSidebarWidth = 36
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model
	keys      *config.KeyBindingsConfig

	// UI Components
	viewport viewport.Model
	prompt   textinput.Model
	spinner  spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp bool
	focus    Focus

	// Result cards (index into dataModel.Chat.CardRefs())
	selectedCard int

	// History sidebar
	historyFilterMode  bool
	historyFilterInput textinput.Model
	selectedSession    int

	// API catalog
	selectedAPI int

	// Submission Panel
	nameInput   textinput.Model
	descInput   textinput.Model
	submitFocus submitField

	// Transient status bar message (clipboard feedback)
	flash    string
	flashSeq int

	markdown *markdownCache
}

func NewAppView(dataModel *appmodel.Model) AppView {
	keys := config.DefaultKeybindings()
	if dataModel.Config != nil && dataModel.Config.Keybindings != nil {
		keys = dataModel.Config.Keybindings
	}

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.Placeholder = "Describe the API you are looking for..."
	prompt.CharLimit = 0

	historyFilterInput := textinput.New()
	historyFilterInput.Prompt = "Filter: "
	historyFilterInput.CharLimit = 64

	nameInput := textinput.New()
	nameInput.Prompt = "Name: "
	nameInput.Placeholder = "API name"
	nameInput.CharLimit = 120

	descInput := textinput.New()
	descInput.Prompt = "Description: "
	descInput.Placeholder = "What does it do?"
	descInput.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := AppView{
		dataModel:          dataModel,
		keys:               keys,
		viewport:           viewport.New(0, 0),
		prompt:             prompt,
		spinner:            sp,
		historyFilterInput: historyFilterInput,
		nameInput:          nameInput,
		descInput:          descInput,
		markdown:           newMarkdownCache(),
	}
	a.focusActivePanel()
	return a
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.dataModel.RefreshCatalog(),
	)
}

// Model exposes the data model, mainly for tests and the CLI.
func (a AppView) Model() *appmodel.Model {
	return a.dataModel
}

// focusActivePanel gives keyboard focus to the primary input of the panel.
func (a *AppView) focusActivePanel() {
	a.prompt.Blur()
	a.nameInput.Blur()
	a.descInput.Blur()
	a.historyFilterInput.Blur()
	a.historyFilterMode = false

	if a.dataModel.Panel == appmodel.PanelSubmit {
		a.submitFocus = fieldName
		a.nameInput.Focus()
		return
	}
	a.focus = FocusInput
	a.prompt.Focus()
}

func (a AppView) sidebarWidth() int {
	w := a.width / 3
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	return w
}

func (a AppView) mainWidth() int {
	w := a.width - a.sidebarWidth() - 1
	if w < 20 {
		w = 20
	}
	return w
}

func (a *AppView) layout() {
	// Title (1), separator (1), prompt (1), status bar (1)
	a.viewport.Width = a.mainWidth()
	a.viewport.Height = a.height - 4
	if a.viewport.Height < 1 {
		a.viewport.Height = 1
	}
	a.prompt.Width = a.mainWidth() - 4
	a.nameInput.Width = a.width - 20
	a.descInput.Width = a.width - 20
}

// historyList is the sidebar list after the fuzzy filter.
func (a AppView) historyList() []storage.SessionSummary {
	sessions := a.dataModel.Store.ListSessionsByRecency()
	if a.historyFilterInput.Value() == "" {
		return sessions
	}
	return storage.FilterSessions(sessions, a.historyFilterInput.Value())
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading Springboard..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Alert (needs acknowledgement)
	// 2. Help
	if a.dataModel.Alert != "" {
		return RenderAcknowledgeModal("Springboard", a.dataModel.Alert, ModalTypeError, a.width, a.height)
	}
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.dataModel.Panel == appmodel.PanelSubmit {
		return a.renderSubmitPanel()
	}
	return a.renderChatPanel()
}

func (a AppView) renderChatPanel() string {
	mainWidth := a.mainWidth()

	title := TitleStyle.Render("Springboard")
	if a.dataModel.Chat.SessionID != "" {
		if session, err := a.dataModel.Store.GetSession(a.dataModel.Chat.SessionID); err == nil {
			title += DimStyle.Render(" • " + truncate(session.Title, mainWidth-16))
		}
	}

	separator := BorderStyle.Render(strings.Repeat("─", mainWidth))

	promptLine := a.prompt.View()
	if !a.dataModel.Chat.SendEnabled() {
		promptLine = fmt.Sprintf("%s %s", a.spinner.View(), DimStyle.Render("Searching..."))
	}

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		a.viewport.View(),
		separator,
		promptLine,
		a.renderStatusBar(mainWidth),
	)

	sidebar := lipgloss.NewStyle().
		Width(a.sidebarWidth()).
		Height(a.height).
		MaxHeight(a.height).
		BorderRight(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(a.renderSidebar())

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (a AppView) renderStatusBar(width int) string {
	if a.flash != "" {
		return OKStyle.Render(truncate(a.flash, width))
	}

	var parts []string
	switch a.focus {
	case FocusInput:
		parts = []string{"Enter", "Send", "Tab", "Focus"}
	case FocusResults:
		parts = []string{"j/k", "Move", "Enter", "Open", "l", "Like", a.keys.DisplayActionKey("yank_api_name"), "Copy"}
	case FocusHistory:
		parts = []string{"j/k", "Move", "Enter", "Load", "/", "Filter"}
	case FocusCatalog:
		parts = []string{"j/k", "Move", "Enter", "Open", "l", "Like"}
	}
	parts = append(parts, a.keys.DisplayActionKey("help"), "Help")
	return StatusStyle.Render("["+a.focus.String()+"] ") + FormatFooter(parts...)
}
