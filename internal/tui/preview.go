package tui

import (
	"fmt"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/chart"
	"github.com/Zuo-Peng/chatlens/internal/index"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/render"
	"github.com/Zuo-Peng/chatlens/internal/report"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	hitLine int
	summary *analyze.Summary // dashboard only
	err     error
}

// loadSummaryCmd analyzes the messages of user and renders the dashboard text.
func loadSummaryCmd(a *analyze.Analyzer, msgs []parse.Message, user string, width int) tea.Cmd {
	return func() tea.Msg {
		s, err := a.Summarize(msgs, user)
		if err != nil {
			return previewRenderedMsg{key: user, err: err}
		}
		return previewRenderedMsg{
			key:     user,
			content: render.Summary(s, render.SummaryOptions{Width: width, Color: true}),
			summary: s,
		}
	}
}

// loadConversationCmd renders the chat around a search hit.
func loadConversationCmd(db *index.DB, it item, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, it.key, render.Options{
			HitSeq:  it.seq,
			Context: -1,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			key:     previewCacheKey(it),
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

type reportWrittenMsg struct {
	path string
	err  error
}

// writeReportCmd renders the charts for s and writes the PDF to path.
func writeReportCmd(charts *chart.Renderer, opts report.Options, s *analyze.Summary, path string) tea.Cmd {
	return func() tea.Msg {
		images, err := charts.All(s)
		if err != nil {
			return reportWrittenMsg{err: fmt.Errorf("render charts: %w", err)}
		}
		if err := report.WriteFile(path, s, images, opts); err != nil {
			return reportWrittenMsg{err: err}
		}
		return reportWrittenMsg{path: path}
	}
}

func previewCacheKey(it item) string {
	if it.seq < 0 {
		return it.key
	}
	return fmt.Sprintf("%s:%d", it.key, it.seq)
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
