// Package plot renders a station's per-measure readings as stacked chart
// panels. Each panel picks one of two strategies from the number of distinct
// calendar days it covers: spans of more than two days plot full timestamps
// with one colored line per day, while shorter spans share a time-of-day
// axis and stitch each day's line into the next so the series reads as a
// continuous trace across midnight.
package plot

import (
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"floodwatch/internal/errs"
	"floodwatch/internal/modules/monitor/types"
)

// Strategy selects how a panel lays out its x axis.
type Strategy int

const (
	// StrategyIntraday overlays up to two days on a shared time-of-day axis.
	StrategyIntraday Strategy = iota
	// StrategyMultiday plots full timestamps with one line per calendar day.
	StrategyMultiday
)

const secondsPerDay = 86400

type point struct {
	t time.Time
	v float64
}

// segment is one calendar day's run of points in plot order. Under the
// intraday strategy the final point may be stitched in from the following
// day so the line carries across midnight instead of breaking.
type segment struct {
	day      time.Time
	label    string
	color    drawing.Color
	xs       []float64
	ys       []float64
	times    []time.Time
	stitched bool
}

// panelLayout is the resolved geometry for one measure's panel, independent
// of the drawing backend.
type panelLayout struct {
	measure  string
	yLabel   string
	xLabel   string
	strategy Strategy
	days     []time.Time
	segments []segment
	majors   []chart.Tick
	minorXs  []float64

	xMin, xMax float64
	yMin, yMax float64
}

// buildPanel parses and sorts one measure's readings, groups them by
// calendar day, selects the rendering strategy, and computes segments,
// ticks and axis ranges. Readings keep their relative order when timestamps
// tie. A timestamp that does not parse is a hard error: dropping the point
// silently would misrepresent the series.
func buildPanel(measure string, readings []types.Reading) (*panelLayout, error) {
	p := &panelLayout{
		measure: measure,
		yLabel:  types.Quantity(measure),
	}

	pts := make([]point, 0, len(readings))
	for _, r := range readings {
		t, err := time.Parse(time.RFC3339, r.DateTime)
		if err != nil {
			return nil, errs.Newf(errs.DataFormat, "plot.Render",
				"measure %s: parse timestamp %q: %v", measure, r.DateTime, err)
		}
		pts = append(pts, point{t: t, v: r.Value})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].t.Before(pts[j].t) })

	p.days = distinctDays(pts)
	if len(p.days) > 2 {
		p.strategy = StrategyMultiday
		p.xLabel = "Date & Time"
		p.buildMultiday(pts)
	} else {
		p.strategy = StrategyIntraday
		p.xLabel = "Time"
		p.buildIntraday(pts)
	}

	if len(p.segments) == 0 {
		p.majors = defaultIntradayTicks()
		p.xMin, p.xMax = 0, secondsPerDay
		p.yMin, p.yMax = 0, 1
		return p, nil
	}

	p.computeRanges()
	return p, nil
}

// buildMultiday emits one segment per day carrying full timestamps on the
// x axis.
func (p *panelLayout) buildMultiday(pts []point) {
	for i, day := range p.days {
		seg := segment{
			day:   day,
			label: day.Format("2006-01-02"),
			color: ColorForRank(i, len(p.days)),
		}
		for _, pt := range pts {
			if !dayOf(pt.t).Equal(day) {
				continue
			}
			seg.xs = append(seg.xs, chart.TimeToFloat64(pt.t))
			seg.ys = append(seg.ys, pt.v)
			seg.times = append(seg.times, pt.t)
		}
		p.segments = append(p.segments, seg)
	}
	p.majors, p.minorXs = multidayTicks(pts[0].t, pts[len(pts)-1].t)
}

// buildIntraday emits one segment per day positioned by time of day, so
// both days of a two-day window line up vertically. Every segment except
// the last gets the following day's first reading appended; when that
// reading's time of day would move the line backwards it is shifted one
// day right, carrying the trace off the far edge instead of breaking it.
func (p *panelLayout) buildIntraday(pts []point) {
	for i, day := range p.days {
		seg := segment{
			day:   day,
			label: day.Format("2006-01-02"),
			color: ColorForRank(i, len(p.days)),
		}
		for _, pt := range pts {
			if !dayOf(pt.t).Equal(day) {
				continue
			}
			seg.xs = append(seg.xs, secondsOfDay(pt.t))
			seg.ys = append(seg.ys, pt.v)
			seg.times = append(seg.times, pt.t)
		}

		if i < len(p.days)-1 {
			next := firstOfDay(pts, p.days[i+1])
			x := secondsOfDay(next.t)
			if x <= seg.xs[len(seg.xs)-1] {
				x += secondsPerDay
			}
			seg.xs = append(seg.xs, x)
			seg.ys = append(seg.ys, next.v)
			seg.times = append(seg.times, next.t)
			seg.stitched = true
		}
		p.segments = append(p.segments, seg)
	}
	p.majors, p.minorXs = intradayTicks(p.segments)
}

func (p *panelLayout) computeRanges() {
	first := true
	for _, seg := range p.segments {
		for i, x := range seg.xs {
			y := seg.ys[i]
			if first {
				p.xMin, p.xMax = x, x
				p.yMin, p.yMax = y, y
				first = false
				continue
			}
			if x < p.xMin {
				p.xMin = x
			}
			if x > p.xMax {
				p.xMax = x
			}
			if y < p.yMin {
				p.yMin = y
			}
			if y > p.yMax {
				p.yMax = y
			}
		}
	}

	xPad := (p.xMax - p.xMin) * 0.05
	if xPad == 0 {
		xPad = 900
		if p.strategy == StrategyMultiday {
			xPad = float64(15 * time.Minute)
		}
	}
	p.xMin -= xPad
	p.xMax += xPad

	yPad := (p.yMax - p.yMin) * 0.05
	if yPad == 0 {
		yPad = 0.5
	}
	p.yMin -= yPad
	p.yMax += yPad
}

// chronologicalValues flattens the segments back into one ascending value
// series, dropping stitched points so no reading appears twice.
func (p *panelLayout) chronologicalValues() []float64 {
	var out []float64
	for _, seg := range p.segments {
		ys := seg.ys
		if seg.stitched {
			ys = ys[:len(ys)-1]
		}
		out = append(out, ys...)
	}
	return out
}

func firstOfDay(pts []point, day time.Time) point {
	for _, pt := range pts {
		if dayOf(pt.t).Equal(day) {
			return pt
		}
	}
	return point{}
}

func distinctDays(pts []point) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, pt := range pts {
		d := dayOf(pt.t)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func secondsOfDay(t time.Time) float64 {
	u := t.UTC()
	return float64(u.Hour()*3600 + u.Minute()*60 + u.Second())
}
