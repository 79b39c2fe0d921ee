package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.keys

	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	name := "Springboard"
	if v := a.dataModel.Version; v != "" {
		name += " " + v
	}
	title := green.Render(name + " - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	legend := DimStyle.Render(fmt.Sprintf("Primary modifier: %s   Secondary modifier: %s",
		kb.PrimaryDisplay(), kb.SecondaryDisplay()))

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		fmt.Sprintf("• %-13s New chat", kb.DisplayActionKey("new_chat")),
		fmt.Sprintf("• %-13s Chat / Submit panel", kb.DisplayActionKey("switch_panel")),
		fmt.Sprintf("• %-13s Refresh API list", kb.DisplayActionKey("refresh_apis")),
		fmt.Sprintf("• %-13s Next pane", kb.DisplayActionKey("focus_next")),
		fmt.Sprintf("• %-13s Previous pane", kb.DisplayActionKey("focus_prev")),
		fmt.Sprintf("• %-13s Toggle this help", kb.DisplayActionKey("help")),
		fmt.Sprintf("• %-13s Quit", kb.DisplayActionKey("quit")),
	)

	chatNavigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Navigation"),
		fmt.Sprintf("• %-13s Scroll down 1 line", kb.DisplayActionKey("scroll_down")),
		fmt.Sprintf("• %-13s Scroll up 1 line", kb.DisplayActionKey("scroll_up")),
		fmt.Sprintf("• %-13s Half page down", kb.DisplayActionKey("half_page_down")),
		fmt.Sprintf("• %-13s Half page up", kb.DisplayActionKey("half_page_up")),
		fmt.Sprintf("• %-13s Clear input", kb.DisplayActionKey("clear_input")),
	)

	listActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Results, History, APIs"),
		fmt.Sprintf("• %-13s Move down / up", kb.DisplayActionKey("list_down")+"/"+kb.DisplayActionKey("list_up")),
		fmt.Sprintf("• %-13s Open / close, load chat", kb.DisplayActionKey("toggle")),
		fmt.Sprintf("• %-13s Like", kb.DisplayActionKey("like")),
		fmt.Sprintf("• %-13s Filter history", kb.DisplayActionKey("filter_history")),
		fmt.Sprintf("• %-13s Copy API name", kb.DisplayActionKey("yank_api_name")),
	)

	submitActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Submit Panel"),
		fmt.Sprintf("• %-13s Check duplicates", kb.DisplayActionKey("check_duplicates")),
		fmt.Sprintf("• %-13s Submit API", kb.DisplayActionKey("submit_api")),
		"• Esc           Back to chat",
	)

	column1 := lipgloss.JoinVertical(lipgloss.Left, globalActions, "", submitActions)
	column2 := lipgloss.JoinVertical(lipgloss.Left, chatNavigation, "", listActions)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		legend,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(100)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
