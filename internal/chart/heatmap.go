package chart

import (
	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// heatColor shades from pale yellow (quiet) to dark red (busiest).
func heatColor(v, max int) drawing.Color {
	if max <= 0 || v <= 0 {
		return drawing.Color{R: 255, G: 255, B: 224, A: 255}
	}
	f := float64(v) / float64(max)
	return drawing.Color{
		R: uint8(255 - 100*f),
		G: uint8(230 - 220*f),
		B: uint8(120 - 110*f),
		A: 255,
	}
}

// heatmap draws one cell per weekday and hour bucket. The axes come from an
// invisible series spanning the grid; the cells are a custom element.
func (r *Renderer) heatmap(h analyze.Heatmap) ([]byte, error) {
	rows, cols := len(h.Days), len(h.Periods)
	if rows == 0 || cols == 0 {
		return nil, ErrNoData
	}
	max := h.Max()

	xTicks := make([]chart.Tick, 0, cols+1)
	for i, p := range h.Periods {
		xTicks = append(xTicks, chart.Tick{Value: float64(i) + 0.5, Label: p})
	}
	yTicks := make([]chart.Tick, 0, rows)
	for j := rows - 1; j >= 0; j-- {
		// first day on top
		yTicks = append(yTicks, chart.Tick{Value: float64(rows-j) - 0.5, Label: h.Days[j]})
	}

	xStyle := r.style(9)
	xStyle.TextRotationDegrees = 90
	graph := chart.Chart{
		Font:       r.Font,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 30, Bottom: 60}},
		XAxis: chart.XAxis{
			Style: xStyle,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(cols)},
			Ticks: spanTicks(xTicks, 0, float64(cols)),
		},
		YAxis: chart.YAxis{
			Style: r.style(10),
			Range: &chart.ContinuousRange{Min: 0, Max: float64(rows)},
			Ticks: spanTicks(yTicks, 0, float64(rows)),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: 0,
					StrokeColor: drawing.ColorTransparent,
					FillColor:   drawing.ColorTransparent,
				},
				XValues: []float64{0, float64(cols)},
				YValues: []float64{0, float64(rows)},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		func(rd chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
			cellW := float64(canvasBox.Width()) / float64(cols)
			cellH := float64(canvasBox.Height()) / float64(rows)
			for j := range h.Days {
				for i := range h.Periods {
					left := canvasBox.Left + int(float64(i)*cellW)
					right := canvasBox.Left + int(float64(i+1)*cellW)
					top := canvasBox.Top + int(float64(j)*cellH)
					bottom := canvasBox.Top + int(float64(j+1)*cellH)

					rd.SetFillColor(heatColor(h.Cells[j][i], max))
					rd.SetStrokeColor(drawing.ColorWhite)
					rd.SetStrokeWidth(1)
					rd.MoveTo(left, top)
					rd.LineTo(right, top)
					rd.LineTo(right, bottom)
					rd.LineTo(left, bottom)
					rd.LineTo(left, top)
					rd.FillStroke()
				}
			}
		},
	}
	return render(graph)
}
