package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	appmodel "springboard/model"
)

func (a AppView) renderSubmitPanel() string {
	s := a.dataModel.Submission
	width := a.width - 10
	if width > 80 {
		width = 80
	}

	title := TitleStyle.Render("Submit a new API")

	fields := lipgloss.JoinVertical(
		lipgloss.Left,
		a.nameInput.View(),
		"",
		a.descInput.View(),
	)

	controls := lipgloss.JoinHorizontal(
		lipgloss.Left,
		renderControl(a.keys.DisplayActionKey("check_duplicates")+" Check duplicates", s.CheckEnabled()),
		"   ",
		renderControl(a.keys.DisplayActionKey("submit_api")+" Submit API", s.SubmitEnabled()),
	)

	status := a.renderSubmitStatus(s.Status, width)

	footer := FormatFooter(
		"Tab", "Next field",
		a.keys.DisplayActionKey("switch_panel"), "Chat",
		a.keys.DisplayActionKey("help"), "Help",
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		fields,
		"",
		controls,
		"",
		status,
		"",
		footer,
	)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Width(width).Render(content))
}

func renderControl(label string, enabled bool) string {
	if !enabled {
		return DisabledStyle.Render("[" + label + "]")
	}
	return AssistantStyle.Bold(true).Render("[" + label + "]")
}

func (a AppView) renderSubmitStatus(status appmodel.Status, width int) string {
	if status.Text == "" {
		return ""
	}

	style := StatusStyle
	switch status.Kind {
	case appmodel.StatusOK:
		style = OKStyle
	case appmodel.StatusWarn:
		style = WarnStyle
	case appmodel.StatusErr:
		style = ErrStyle
	}

	text := status.Text
	if a.busy() && status.Kind == appmodel.StatusPlain {
		text = a.spinner.View() + " " + text
	}

	lines := []string{style.Render(wordWrap(text, width))}
	for _, api := range status.Similar {
		item := "  • " + TitleStyle.Render(api.APIName) + " — " + api.Description
		lines = append(lines, wordWrap(item, width))
	}
	if status.Note != "" {
		lines = append(lines, DimStyle.Render(wordWrap(status.Note, width)))
	}
	return strings.Join(lines, "\n")
}
