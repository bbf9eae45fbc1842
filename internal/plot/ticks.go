package plot

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	maxMultidayTicks = 8
	intradayMinorDiv = 4
)

var multidayTickSteps = []time.Duration{
	time.Hour,
	2 * time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
	7 * 24 * time.Hour,
}

// intradayTicks places a major tick at every distinct plotted position that
// falls on a top of the hour, labelled with that hour, and subdivides each
// gap between adjacent majors with evenly spaced minor positions. Readings
// rarely land on a regular grid, so ticks come from the data rather than
// from a fixed schedule.
func intradayTicks(segments []segment) (majors []chart.Tick, minorXs []float64) {
	labels := make(map[float64]string)
	for _, seg := range segments {
		for i, x := range seg.xs {
			t := seg.times[i]
			if t.UTC().Minute() != 0 {
				continue
			}
			if _, ok := labels[x]; !ok {
				labels[x] = t.UTC().Format("15:04")
			}
		}
	}

	xs := make([]float64, 0, len(labels))
	for x := range labels {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	majors = make([]chart.Tick, 0, len(xs))
	for _, x := range xs {
		majors = append(majors, chart.Tick{Value: x, Label: labels[x]})
	}
	return majors, subdivide(majors, intradayMinorDiv)
}

// multidayTicks spaces major ticks at the smallest regular step that stays
// within the tick budget, aligned to whole steps since the window's first
// midnight. Minor positions sit halfway between adjacent majors.
func multidayTicks(min, max time.Time) (majors []chart.Tick, minorXs []float64) {
	base := dayOf(min)
	step := multidayTickSteps[len(multidayTickSteps)-1]
	for _, candidate := range multidayTickSteps {
		if tickCount(base, min, max, candidate) <= maxMultidayTicks {
			step = candidate
			break
		}
	}

	offset := min.Sub(base)
	first := base.Add(((offset + step - 1) / step) * step)
	for t := first; !t.After(max); t = t.Add(step) {
		majors = append(majors, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.UTC().Format("2006-01-02 15:04"),
		})
	}
	return majors, subdivide(majors, 2)
}

func tickCount(base, min, max time.Time, step time.Duration) int {
	offset := min.Sub(base)
	first := base.Add(((offset + step - 1) / step) * step)
	if first.After(max) {
		return 0
	}
	return int(max.Sub(first)/step) + 1
}

// subdivide returns div-1 evenly spaced positions inside each gap between
// adjacent major ticks.
func subdivide(majors []chart.Tick, div int) []float64 {
	var minors []float64
	for i := 0; i+1 < len(majors); i++ {
		gap := (majors[i+1].Value - majors[i].Value) / float64(div)
		for j := 1; j < div; j++ {
			minors = append(minors, majors[i].Value+float64(j)*gap)
		}
	}
	return minors
}

// yTicks covers [min, max] with around five ticks at a round step, labelled
// with just enough decimals to show the step exactly.
func yTicks(min, max float64) []chart.Tick {
	span := max - min
	if span <= 0 {
		return []chart.Tick{{Value: min, Label: strconv.FormatFloat(min, 'f', 2, 64)}}
	}

	step, decimals := niceStep(span, 5)
	first := math.Ceil(min/step) * step

	var ticks []chart.Tick
	for i := 0; ; i++ {
		v := first + float64(i)*step
		if v > max+step/1000 {
			break
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', decimals, 64)})
	}
	if len(ticks) < 2 {
		return []chart.Tick{
			{Value: min, Label: strconv.FormatFloat(min, 'f', 2, 64)},
			{Value: max, Label: strconv.FormatFloat(max, 'f', 2, 64)},
		}
	}
	return ticks
}

func niceStep(span float64, target int) (step float64, decimals int) {
	raw := span / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		step = m * mag
		if span/step <= float64(target) {
			break
		}
	}
	return step, stepDecimals(step)
}

func stepDecimals(step float64) int {
	for d := 0; d <= 6; d++ {
		scaled := step * math.Pow(10, float64(d))
		if math.Abs(scaled-math.Round(scaled)) < 1e-9*math.Max(1, scaled) {
			return d
		}
	}
	return 6
}

// defaultIntradayTicks labels an otherwise empty panel's axis at six hour
// intervals.
func defaultIntradayTicks() []chart.Tick {
	ticks := make([]chart.Tick, 0, 5)
	for h := 0; h <= 24; h += 6 {
		ticks = append(ticks, chart.Tick{Value: float64(h * 3600), Label: fmt.Sprintf("%02d:00", h%24)})
	}
	return ticks
}
