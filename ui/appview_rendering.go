package ui

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	appmodel "springboard/model"
	"springboard/storage"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	chat := &a.dataModel.Chat
	if len(chat.Transcript) == 0 {
		a.viewport.SetContent("No messages yet. Describe the API you need!")
		return
	}

	width := a.viewport.Width
	if width <= 0 {
		width = 80
	}

	var content strings.Builder
	selectedLine := -1
	cardIdx := 0

	for _, entry := range chat.Transcript {
		if entry.Results != nil {
			for i, card := range entry.Results.Cards {
				ref := appmodel.CardRef{List: entry.Results.ID, Card: i}
				selected := a.focus == FocusResults && cardIdx == a.selectedCard
				if selected {
					selectedLine = strings.Count(content.String(), "\n")
				}
				content.WriteString(a.renderCard(card, chat.IsExpanded(ref), selected, width))
				cardIdx++
			}
			content.WriteString("\n")
			continue
		}

		timestamp := DimStyle.Render(entry.Timestamp.Format("[15:04]"))

		switch entry.Role {
		case storage.RoleUser:
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), entry.Content))
		case storage.RoleAssistant:
			content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, AssistantStyle.Render("Springboard"), wordWrap(entry.Content, width)))
		default:
			content.WriteString(fmt.Sprintf("%s %s\n\n", timestamp, DimStyle.Render(entry.Content)))
		}
	}

	a.viewport.SetContent(content.String())
	switch {
	case gotoBottom:
		a.viewport.GotoBottom()
	case selectedLine >= 0:
		a.ensureLineVisible(selectedLine)
	}
}

func (a *AppView) ensureLineVisible(line int) {
	if line < a.viewport.YOffset {
		a.viewport.SetYOffset(line)
		return
	}
	if line >= a.viewport.YOffset+a.viewport.Height {
		a.viewport.SetYOffset(line - a.viewport.Height + 1)
	}
}

// renderCard draws one result card: a header row, plus the detail and like
// control when it is the open card.
func (a AppView) renderCard(card *appmodel.ResultCard, expanded, selected bool, width int) string {
	chevron := "▸"
	if expanded {
		chevron = "▾"
	}

	header := fmt.Sprintf("  %s 🔹 %s — %s", chevron, card.Candidate.APIName, card.Candidate.Description)
	header = truncate(header, width)
	if selected {
		header = SelectedStyle.Render(header)
	}

	if !expanded {
		return header + "\n"
	}

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString("      " + TitleStyle.Render(card.Candidate.APIName) + "\n")

	switch card.State {
	case appmodel.DetailLoaded:
		body := a.markdown.render(card.Detail.Description, width-6)
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			b.WriteString("      " + line + "\n")
		}
		b.WriteString("      " + renderLike(card.Liked, card.LikeInFlight, card.Likes) + "\n")
	case appmodel.DetailFailed:
		b.WriteString("      " + ErrStyle.Render(card.Body()) + "\n")
	default:
		b.WriteString("      " + DimStyle.Render(card.Body()) + "\n")
	}
	return b.String()
}

// renderLike draws the like control and, when known, the count.
func renderLike(liked, inFlight bool, likes *int) string {
	var control string
	switch {
	case inFlight:
		control = DisabledStyle.Render("♡ Liking…")
	case liked:
		control = LikedStyle.Render("♥︎ Liked")
	default:
		control = "♡ Like"
	}
	if likes == nil {
		return control
	}
	return fmt.Sprintf("%s  %s", control, DimStyle.Render(fmt.Sprintf("%d likes", *likes)))
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render("┃")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// markdownCache memoizes rendered detail descriptions per width. Shared by
// every copy of the AppView.
type markdownCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMarkdownCache() *markdownCache {
	return &markdownCache{entries: make(map[string]string)}
}

func (c *markdownCache) render(content string, width int) string {
	if width < 10 {
		width = 10
	}
	key := fmt.Sprintf("%d\x00%s", width, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if rendered, ok := c.entries[key]; ok {
		return rendered
	}
	rendered := renderMarkdown(content, width)
	c.entries[key] = rendered
	return rendered
}

func renderMarkdown(content string, width int) string {
	// Strip markdown link syntax [text](url) → just url
	content = mdLinkRegex.ReplaceAllString(content, "$2")

	// Disable autolink so terminal emulators handle URL detection
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	// Inline code: blue background → red text
	return inlineCodeRegex.ReplaceAllString(string(rendered), "\x1b[31m$1\x1b[0m")
}
