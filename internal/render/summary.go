package render

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/mattn/go-runewidth"
)

const (
	barRune   = "\u2588"
	labelW    = 16
	maxDaily  = 31
	defaultW  = 80
	minBarLen = 10
)

// heatShades go from empty to the busiest cell.
var heatShades = []string{"\u00b7", "\u2591", "\u2592", "\u2593", "\u2588"}

type SummaryOptions struct {
	Width int  // total width; 0 = 80
	Color bool // emit ANSI styling
}

type summaryWriter struct {
	b     strings.Builder
	width int
	color bool
}

func (w *summaryWriter) style(code, s string) string {
	if !w.color {
		return s
	}
	return code + s + colorReset
}

func (w *summaryWriter) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteString("\n")
}

func (w *summaryWriter) heading(title string) {
	w.b.WriteString("\n")
	w.line("%s", w.style(colorBold, title))
	w.line("%s", w.style(colorDim, strings.Repeat("-", runewidth.StringWidth(title))))
}

// fitLabel truncates or pads label to exactly n display columns.
func fitLabel(label string, n int) string {
	label = strings.ReplaceAll(label, "\n", " ")
	return runewidth.FillRight(runewidth.Truncate(label, n, "~"), n)
}

func (w *summaryWriter) bars(rows []analyze.Count) {
	max := 0
	for _, r := range rows {
		if r.Count > max {
			max = r.Count
		}
	}
	barW := w.width - labelW - 10
	if barW < minBarLen {
		barW = minBarLen
	}
	for _, r := range rows {
		n := 0
		if max > 0 {
			n = r.Count * barW / max
		}
		if n == 0 && r.Count > 0 {
			n = 1
		}
		w.line("  %s %s %d", fitLabel(r.Label, labelW), w.style(colorBoldRed, strings.Repeat(barRune, n)), r.Count)
	}
}

func timelineRows(points []analyze.TimelinePoint) []analyze.Count {
	rows := make([]analyze.Count, len(points))
	for i, p := range points {
		rows[i] = analyze.Count{Label: p.Label, Count: p.Count}
	}
	return rows
}

// Summary renders every section of a summary as terminal text, in report
// order.
func Summary(s *analyze.Summary, opts SummaryOptions) string {
	w := &summaryWriter{width: opts.Width, color: opts.Color}
	if w.width <= 0 {
		w.width = defaultW
	}

	w.line("%s", w.style(colorBold, "WhatsApp Chat Analysis: "+s.User))
	w.line("Date Range: %s to %s", s.From, s.To)

	w.heading("Top Statistics")
	w.line("  %s %d", fitLabel("Total Messages", labelW), s.Stats.Messages)
	w.line("  %s %d", fitLabel("Total Words", labelW), s.Stats.Words)
	w.line("  %s %d", fitLabel("Media Shared", labelW), s.Stats.Media)
	w.line("  %s %d", fitLabel("Links Shared", labelW), s.Stats.Links)
	w.line("  %s %.2f chars", fitLabel("Avg Length", labelW), s.AvgLength)

	w.heading("Monthly Timeline")
	w.bars(timelineRows(s.Monthly))

	w.heading("Daily Timeline")
	daily := s.Daily
	if len(daily) > maxDaily {
		w.line("  %s", w.style(colorDim, fmt.Sprintf("(last %d of %d days)", maxDaily, len(daily))))
		daily = daily[len(daily)-maxDaily:]
	}
	w.bars(timelineRows(daily))

	w.heading("Most Busy Day")
	w.bars(s.WeekActivity)

	w.heading("Most Busy Month")
	w.bars(s.MonthActivity)

	w.heading("Weekly Activity Heatmap")
	w.heatmap(s.Heatmap)

	if s.IsOverall() && len(s.BusyUsers) > 0 {
		w.heading("Most Busy Users")
		w.bars(s.BusyUsers)
		for _, u := range s.UserShares {
			w.line("  %s %6.2f%%", fitLabel(u.User, labelW), u.Percent)
		}
	}

	w.heading("Most Active Hours")
	hours := make([]analyze.Count, len(s.ActiveHours))
	for i, h := range s.ActiveHours {
		hours[i] = analyze.Count{Label: fmt.Sprintf("%02d:00", h.Hour), Count: h.Count}
	}
	w.bars(hours)

	w.heading("Most Common Words")
	w.bars(s.CommonWords)

	w.heading("Emoji Analysis")
	if len(s.Emojis) == 0 {
		w.line("  %s", w.style(colorDim, "(no emoji)"))
	}
	w.bars(s.Emojis)

	w.heading("Sentiment Analysis")
	w.bars([]analyze.Count{
		{Label: "Positive", Count: s.Sentiment.Positive},
		{Label: "Negative", Count: s.Sentiment.Negative},
		{Label: "Neutral", Count: s.Sentiment.Neutral},
	})

	if len(s.Personality) > 0 {
		w.heading("Personality Summary")
		for _, p := range s.Personality {
			w.line("  %s : %s", w.style(colorBold, p.User), strings.Join(p.Tags, ", "))
		}
	}

	w.heading("Chat Insights")
	for _, l := range s.Insights.Lines() {
		w.line("  * %s", l)
	}
	return w.b.String()
}

func (w *summaryWriter) heatmap(h analyze.Heatmap) {
	if len(h.Days) == 0 {
		return
	}
	max := h.Max()
	var hdr strings.Builder
	hdr.WriteString("  " + strings.Repeat(" ", 10))
	for _, p := range h.Periods {
		hdr.WriteString(fitLabel(strings.SplitN(p, "-", 2)[0], 3))
	}
	w.line("%s", w.style(colorDim, hdr.String()))

	for d, day := range h.Days {
		var row strings.Builder
		row.WriteString("  " + fitLabel(day, 10))
		for _, v := range h.Cells[d] {
			shade := 0
			if max > 0 && v > 0 {
				shade = 1 + v*(len(heatShades)-2)/max
			}
			row.WriteString(heatShades[shade] + heatShades[shade] + " ")
		}
		w.line("%s", row.String())
	}
}
