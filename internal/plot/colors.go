package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ColorForRank maps a day's rank among the panel's distinct days onto a
// rainbow spectrum running violet (first day) to red (last day). The result
// depends only on rank and total, so the same position always gets the same
// color regardless of which dates are involved.
func ColorForRank(rank, total int) drawing.Color {
	t := 0.0
	if total > 1 {
		t = float64(rank) / float64(total-1)
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	r, g, b := hueToRGB(270 * (1 - t))
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

// hueToRGB converts a hue in degrees to 8-bit RGB at full saturation and
// value.
func hueToRGB(hue float64) (uint8, uint8, uint8) {
	h := math.Mod(hue, 360) / 60
	x := 1 - math.Abs(math.Mod(h, 2)-1)

	var r, g, b float64
	switch int(h) {
	case 0:
		r, g, b = 1, x, 0
	case 1:
		r, g, b = x, 1, 0
	case 2:
		r, g, b = 0, 1, x
	case 3:
		r, g, b = 0, x, 1
	case 4:
		r, g, b = x, 0, 1
	default:
		r, g, b = 1, 0, x
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}
