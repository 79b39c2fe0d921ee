package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	appmodel "springboard/model"
)

func (a AppView) renderSidebar() string {
	width := a.sidebarWidth() - 1
	historyHeight := a.height / 2
	catalogHeight := a.height - historyHeight

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHistory(width, historyHeight),
		a.renderCatalog(width, catalogHeight),
	)
}

func sectionHeader(title string, focused bool, width int) string {
	if focused {
		return HighlightStyle.Render(truncate("● "+title, width))
	}
	return TitleStyle.Render(truncate("  "+title, width))
}

// window returns the [start, end) slice of n rows to show so that selected
// stays visible within height rows.
func window(selected, n, height int) (int, int) {
	if height <= 0 {
		return 0, 0
	}
	if n <= height {
		return 0, n
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

func (a AppView) renderHistory(width, height int) string {
	focused := a.focus == FocusHistory
	lines := []string{sectionHeader("History", focused, width)}

	if a.historyFilterMode || a.historyFilterInput.Value() != "" {
		lines = append(lines, truncate(a.historyFilterInput.View(), width))
	}

	sessions := a.historyList()
	if len(sessions) == 0 {
		lines = append(lines, DimStyle.Render("  No chats"))
	}

	selected := clampIndex(a.selectedSession, len(sessions))
	start, end := window(selected, len(sessions), height-len(lines))
	for i := start; i < end; i++ {
		s := sessions[i]
		marker := "  "
		if s.ID == a.dataModel.Chat.SessionID {
			marker = "• "
		}
		line := truncate(marker+s.Title, width)
		switch {
		case focused && i == selected:
			line = SelectedStyle.Render(line)
		case s.ID == a.dataModel.Chat.SessionID:
			line = AssistantStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

func (a AppView) renderCatalog(width, height int) string {
	catalog := a.dataModel.Catalog
	focused := a.focus == FocusCatalog
	lines := []string{sectionHeader("APIs", focused, width)}

	switch {
	case catalog.Failed:
		lines = append(lines, DimStyle.Render("  "+appmodel.CatalogFallbackText))
	case catalog.Loading && len(catalog.Entries) == 0:
		lines = append(lines, DimStyle.Render("  Loading..."))
	}

	var rows []string
	selectedRow := 0
	for i, entry := range catalog.Entries {
		if focused && i == clampIndex(a.selectedAPI, len(catalog.Entries)) {
			selectedRow = len(rows)
		}
		rows = append(rows, a.renderCatalogEntry(entry, i, width)...)
	}

	start, end := window(selectedRow, len(rows), height-len(lines))
	lines = append(lines, rows[start:end]...)

	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

// renderCatalogEntry draws a pill and, when open, its like row and
// description.
func (a AppView) renderCatalogEntry(entry *appmodel.CatalogEntry, i, width int) []string {
	open := a.dataModel.Catalog.Expanded == i
	chevron := "▸"
	if open {
		chevron = "▾"
	}

	pill := truncate(fmt.Sprintf("  %s %s", chevron, entry.API.Name), width)
	if a.focus == FocusCatalog && i == clampIndex(a.selectedAPI, len(a.dataModel.Catalog.Entries)) {
		pill = SelectedStyle.Render(pill)
	}
	if !open {
		return []string{pill}
	}

	likes := entry.API.Likes
	rows := []string{pill, "    " + renderLike(entry.API.Liked, entry.LikeInFlight, &likes)}
	for _, line := range strings.Split(wordWrap(entry.Description(), width-4), "\n") {
		rows = append(rows, "    "+DimStyle.Render(line))
	}
	return rows
}
