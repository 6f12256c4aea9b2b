package tui

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/search"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// linesPerItem is the number of terminal lines each list entry occupies.
const linesPerItem = 2

// item is one list entry: a user on the dashboard or a search hit.
type item struct {
	key    string // user name, or chat key for hits
	seq    int    // hit message, -1 for users
	tag    string
	title  string
	detail string
}

func userItem(user string, count int) item {
	tag := "user"
	if user == parse.Overall {
		tag = "all"
	}
	return item{
		key:    user,
		seq:    -1,
		tag:    tag,
		title:  user,
		detail: fmt.Sprintf("%d messages", count),
	}
}

func resultItem(r search.Result) item {
	// "2023-02-01T10:00:00Z" -> "02-01"
	date := r.Ts
	if len(date) >= 10 {
		date = date[5:10]
	}
	return item{
		key:    r.ChatKey,
		seq:    r.Seq,
		tag:    date,
		title:  r.ChatName + " / " + r.User,
		detail: r.Snippet,
	}
}

// renderList renders the left panel with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.items) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
		return empty
	}

	var lines []string
	for i, it := range m.items {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatItem(it, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatItem formats a single entry as two lines:
//
//	line 1: [>] tag  title
//	line 2:    detail (dimmed)
func formatItem(it item, width int, selected bool) []string {
	tag := runewidth.FillRight(it.tag, 5)
	if it.tag == "all" {
		tag = styleListOverall.Render(tag)
	} else {
		tag = styleListTag.Render(tag)
	}

	title := strings.ReplaceAll(it.title, "\n", " ")
	titleMax := width - 2 - 5 - 2
	if titleMax < 0 {
		titleMax = 0
	}
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	line1 := fmt.Sprintf("%s %s", tag, title)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	detail := strings.ReplaceAll(it.detail, "\n", " ")
	detail = strings.ReplaceAll(detail, "\t", " ")
	detail = strings.ReplaceAll(detail, ">>>", "")
	detail = strings.ReplaceAll(detail, "<<<", "")
	detailMax := width - 4
	if detailMax < 0 {
		detailMax = 0
	}
	if runewidth.StringWidth(detail) > detailMax {
		detail = runewidth.Truncate(detail, detailMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
