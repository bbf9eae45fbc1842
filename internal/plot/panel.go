package plot

import (
	"fmt"
	"image"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	panelWidth  = 1000
	panelHeight = 400

	// right margin reserved for the date legend
	legendWidth = 120
)

var (
	gridMajorColor = drawing.Color{A: 77}
	gridMinorColor = drawing.Color{A: 51}
	invisible      = drawing.Color{R: 255, G: 255, B: 255, A: 0}
)

// buildChart assembles the go-chart panel for a computed layout. Grid lines
// are supplied explicitly: majors solid at every tick, minors dotted at the
// layout's minor positions.
func buildChart(p *panelLayout) chart.Chart {
	series := make([]chart.Series, 0, len(p.segments)+1)
	for _, seg := range p.segments {
		style := chart.Style{
			StrokeColor: seg.color,
			StrokeWidth: 2,
		}
		if len(seg.xs) == 1 {
			// a single point draws no line segment; show a dot instead
			style.DotWidth = 4
			style.DotColor = seg.color
		}
		series = append(series, chart.ContinuousSeries{
			Name:    seg.label,
			XValues: seg.xs,
			YValues: seg.ys,
			Style:   style,
		})
	}
	if len(series) == 0 {
		// Render rejects charts without series; an empty panel carries an
		// invisible one spanning the default ranges.
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{p.xMin, p.xMax},
			YValues: []float64{p.yMin, p.yMax},
			Style:   chart.Style{StrokeColor: invisible, StrokeWidth: 1},
		})
	}

	rotation := 90.0
	if p.strategy == StrategyMultiday {
		rotation = 45.0
	}

	xGrid := make([]chart.GridLine, 0, len(p.majors)+len(p.minorXs))
	for _, tick := range p.majors {
		xGrid = append(xGrid, chart.GridLine{Value: tick.Value})
	}
	for _, x := range p.minorXs {
		xGrid = append(xGrid, chart.GridLine{IsMinor: true, Value: x})
	}

	yt := yTicks(p.yMin, p.yMax)
	yGrid := make([]chart.GridLine, 0, len(yt))
	for _, tick := range yt {
		yGrid = append(yGrid, chart.GridLine{Value: tick.Value})
	}

	return chart.Chart{
		Title:  p.measure,
		Width:  panelWidth,
		Height: panelHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 15, Left: 15, Right: legendWidth, Bottom: 15},
		},
		XAxis: chart.XAxis{
			Name:           p.xLabel,
			Ticks:          p.majors,
			Range:          &chart.ContinuousRange{Min: p.xMin, Max: p.xMax},
			TickStyle:      chart.Style{TextRotationDegrees: rotation},
			GridMajorStyle: chart.Style{StrokeColor: gridMajorColor, StrokeWidth: 1},
			GridMinorStyle: chart.Style{StrokeColor: gridMinorColor, StrokeWidth: 1, StrokeDashArray: []float64{1, 3}},
			GridLines:      xGrid,
		},
		YAxis: chart.YAxis{
			Name:           p.yLabel,
			Ticks:          yt,
			Range:          &chart.ContinuousRange{Min: p.yMin, Max: p.yMax},
			GridMajorStyle: chart.Style{StrokeColor: gridMajorColor, StrokeWidth: 1},
			GridMinorStyle: chart.Style{Hidden: true},
			GridLines:      yGrid,
		},
		Series:   series,
		Elements: []chart.Renderable{dateLegend(p)},
	}
}

// dateLegend draws one swatch and date label per day segment in the margin
// right of the plot area, under a "Date" heading, so the legend never
// overlaps plotted data.
func dateLegend(p *panelLayout) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		if len(p.segments) == 0 {
			return
		}

		style := chart.Style{FontSize: 10, FontColor: chart.DefaultTextColor}.InheritFrom(defaults)
		r.SetFont(style.GetFont())
		r.SetFontColor(style.GetFontColor())
		r.SetFontSize(style.GetFontSize())

		x := cb.Right + 14
		y := cb.Top + 6

		title := r.MeasureText("Date")
		r.Text("Date", x, y+title.Height())
		y += title.Height() + 10

		for _, seg := range p.segments {
			r.SetStrokeColor(seg.color)
			r.SetStrokeWidth(3)
			r.MoveTo(x, y+4)
			r.LineTo(x+18, y+4)
			r.Stroke()
			r.Text(seg.label, x+24, y+8)
			y += 16
		}
	}
}

// renderPanel rasterizes one layout into an image.
func renderPanel(p *panelLayout) (image.Image, error) {
	graph := buildChart(p)
	iw := &chart.ImageWriter{}
	if err := graph.Render(chart.PNG, iw); err != nil {
		return nil, fmt.Errorf("render panel %s: %w", p.measure, err)
	}
	img, err := iw.Image()
	if err != nil {
		return nil, fmt.Errorf("render panel %s: %w", p.measure, err)
	}
	return img, nil
}
