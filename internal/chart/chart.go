// Package chart draws the dashboard and report charts as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart names, in report order.
const (
	MonthlyTimeline = "monthly-timeline"
	DailyTimeline   = "daily-timeline"
	BusyDay         = "busy-day"
	BusyMonth       = "busy-month"
	Heatmap         = "heatmap"
	BusyUsers       = "busy-users"
	ActiveHours     = "active-hours"
	CommonWords     = "common-words"
	Emoji           = "emoji"
	Sentiment       = "sentiment"
)

// ErrNoData is returned for a chart whose series is empty.
var ErrNoData = errors.New("chart has no data")

const maxTimelineTicks = 12

var (
	colorGreen  = drawing.Color{R: 46, G: 139, B: 87, A: 255}
	colorPurple = drawing.Color{R: 128, G: 0, B: 128, A: 255}
	colorOrange = drawing.Color{R: 255, G: 140, B: 0, A: 255}
	colorRed    = drawing.Color{R: 200, G: 40, B: 40, A: 255}
	colorGray   = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	colorBlue   = drawing.Color{R: 50, G: 100, B: 200, A: 255}
)

// Image is one rendered chart.
type Image struct {
	Name  string
	Title string
	PNG   []byte
}

type Renderer struct {
	Font   *truetype.Font // nil = go-chart default font
	Width  int
	Height int
}

// Default returns a Renderer using the go-chart built-in font.
func Default() *Renderer {
	return &Renderer{Width: 1024, Height: 512}
}

// NewRenderer loads the TTF at fontPath, if any.
func NewRenderer(fontPath string) (*Renderer, error) {
	r := Default()
	if fontPath == "" {
		return r, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read chart font: %w", err)
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse chart font %s: %w", fontPath, err)
	}
	r.Font = font
	return r, nil
}

// All renders every chart that has data for s, in report order. The busy
// users chart is only drawn for the all-users view.
func (r *Renderer) All(s *analyze.Summary) ([]Image, error) {
	var images []Image
	for _, name := range Names(s) {
		img, err := r.Render(s, name)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// Names lists the charts that apply to s.
func Names(s *analyze.Summary) []string {
	names := []string{MonthlyTimeline, DailyTimeline, BusyDay, BusyMonth, Heatmap}
	if s.IsOverall() {
		names = append(names, BusyUsers)
	}
	return append(names, ActiveHours, CommonWords, Emoji, Sentiment)
}

// Title is the caption used for a chart in reports.
func Title(name string) string {
	switch name {
	case MonthlyTimeline:
		return "Monthly Timeline"
	case DailyTimeline:
		return "Daily Timeline"
	case BusyDay:
		return "Most Busy Day"
	case BusyMonth:
		return "Most Busy Month"
	case Heatmap:
		return "Weekly Activity Heatmap"
	case BusyUsers:
		return "Most Busy Users"
	case ActiveHours:
		return "Most Active Hours"
	case CommonWords:
		return "Most Common Words"
	case Emoji:
		return "Emoji Analysis"
	case Sentiment:
		return "Sentiment Analysis"
	}
	return name
}

// Render draws one chart by name.
func (r *Renderer) Render(s *analyze.Summary, name string) (Image, error) {
	var (
		png []byte
		err error
	)
	switch name {
	case MonthlyTimeline:
		png, err = r.timeline(s.Monthly, colorGreen)
	case DailyTimeline:
		png, err = r.timeline(s.Daily, colorPurple)
	case BusyDay:
		png, err = r.bars(s.WeekActivity, colorPurple)
	case BusyMonth:
		png, err = r.bars(s.MonthActivity, colorOrange)
	case Heatmap:
		png, err = r.heatmap(s.Heatmap)
	case BusyUsers:
		png, err = r.bars(s.BusyUsers, colorRed)
	case ActiveHours:
		rows := make([]analyze.Count, len(s.ActiveHours))
		for i, h := range s.ActiveHours {
			rows[i] = analyze.Count{Label: fmt.Sprintf("%02d", h.Hour), Count: h.Count}
		}
		png, err = r.bars(rows, colorBlue)
	case CommonWords:
		png, err = r.bars(s.CommonWords, colorBlue)
	case Emoji:
		png, err = r.pie(s.Emojis)
	case Sentiment:
		png, err = r.sentiment(s.Sentiment)
	default:
		return Image{}, fmt.Errorf("unknown chart %q", name)
	}
	if err != nil {
		return Image{}, err
	}
	return Image{Name: name, Title: Title(name), PNG: png}, nil
}

func (r *Renderer) style(size float64) chart.Style {
	s := chart.Style{FontSize: size}
	if r.Font != nil {
		s.Font = r.Font
	}
	return s
}

func render(c interface {
	Render(chart.RendererProvider, io.Writer) error
}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// spanTicks brackets ticks with unlabeled ticks at lo and hi. go-chart
// takes an axis range from its ticks when any are given, and refuses a
// range of zero width.
func spanTicks(ticks []chart.Tick, lo, hi float64) []chart.Tick {
	out := make([]chart.Tick, 0, len(ticks)+2)
	if len(ticks) == 0 || ticks[0].Value > lo {
		out = append(out, chart.Tick{Value: lo})
	}
	out = append(out, ticks...)
	if len(ticks) == 0 || ticks[len(ticks)-1].Value < hi {
		out = append(out, chart.Tick{Value: hi})
	}
	return out
}

func maxCount(rows []analyze.Count) float64 {
	m := 1.0
	for _, c := range rows {
		if float64(c.Count) > m {
			m = float64(c.Count)
		}
	}
	return m
}

// bars draws a bar chart; bar i takes colors[i%len(colors)].
func (r *Renderer) bars(rows []analyze.Count, colors ...drawing.Color) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	values := make([]chart.Value, len(rows))
	for i, c := range rows {
		color := colors[i%len(colors)]
		values[i] = chart.Value{
			Label: c.Label,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	barWidth := r.Width / (len(rows)*2 + 2)
	xStyle := r.style(10)
	if len(rows) > 6 {
		xStyle.TextRotationDegrees = 90
	}
	bc := chart.BarChart{
		Font:       r.Font,
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 80}},
		XAxis:      xStyle,
		YAxis: chart.YAxis{
			Style: r.style(10),
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount(rows) * 1.1},
		},
		Bars: values,
	}
	return render(bc)
}

func (r *Renderer) timeline(points []analyze.TimelinePoint, color drawing.Color) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	maxY := 1.0
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = float64(p.Count)
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	lo, hi := 0.0, float64(len(points)-1)
	if len(points) == 1 {
		// a lone bucket is drawn as a short level segment around its tick
		lo, hi = -0.5, 0.5
		xs = []float64{lo, hi}
		ys = []float64{ys[0], ys[0]}
	}

	step := (len(points) + maxTimelineTicks - 1) / maxTimelineTicks
	var ticks []chart.Tick
	for i := 0; i < len(points); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: points[i].Label})
	}

	xStyle := r.style(9)
	xStyle.TextRotationDegrees = 90
	graph := chart.Chart{
		Font:       r.Font,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 30, Bottom: 90}},
		XAxis: chart.XAxis{
			Style: xStyle,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: spanTicks(ticks, lo, hi),
		},
		YAxis: chart.YAxis{
			Style: r.style(10),
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   chart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 3},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return render(graph)
}

func (r *Renderer) pie(rows []analyze.Count) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	values := make([]chart.Value, len(rows))
	for i, c := range rows {
		values[i] = chart.Value{Label: fmt.Sprintf("%s %d", c.Label, c.Count), Value: float64(c.Count)}
	}
	pc := chart.PieChart{
		Font:   r.Font,
		Width:  r.Height,
		Height: r.Height,
		Values: values,
	}
	return render(pc)
}

func (r *Renderer) sentiment(t analyze.SentimentTally) ([]byte, error) {
	if t.Total() == 0 {
		return nil, ErrNoData
	}
	rows := []analyze.Count{
		{Label: "Positive", Count: t.Positive},
		{Label: "Negative", Count: t.Negative},
		{Label: "Neutral", Count: t.Neutral},
	}
	return r.bars(rows, colorGreen, colorRed, colorGray)
}
