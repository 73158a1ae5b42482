package render

import (
	"fmt"
	"math"

	"github.com/i474232898/goes-imagery/internal/imagery"
)

// rect is an axes box in canvas pixels, origin top-left.
type rect struct {
	X, Y, W, H float64
}

// plateCarree maps lon/lat linearly onto an axes box.
type plateCarree struct {
	extent imagery.Extent
	box    rect
}

func (p plateCarree) X(lon float64) float64 {
	return p.box.X + (lon-p.extent.LonMin())/(p.extent.LonMax()-p.extent.LonMin())*p.box.W
}

func (p plateCarree) Y(lat float64) float64 {
	return p.box.Y + (p.extent.LatMax()-lat)/(p.extent.LatMax()-p.extent.LatMin())*p.box.H
}

// layout positions the map axes inside the canvas, keeping one degree of
// longitude the same length as one degree of latitude.
type layout struct {
	width, height int
	scale         float64
	axes          rect
}

func computeLayout(f *Figure) layout {
	w := int(math.Round(f.Width * f.DPI))
	h := int(math.Round(f.Height * f.DPI))
	scale := f.DPI / 100

	left, right := 95*scale, 95*scale
	top, bottom := 75*scale, 85*scale
	availW := float64(w) - left - right
	availH := float64(h) - top - bottom

	spanLon := f.Extent.LonMax() - f.Extent.LonMin()
	spanLat := f.Extent.LatMax() - f.Extent.LatMin()
	aspect := 1.0
	if spanLon > 0 && spanLat > 0 {
		aspect = spanLon / spanLat
	}

	axW, axH := availW, availW/aspect
	if axH > availH {
		axH = availH
		axW = availH * aspect
	}
	return layout{
		width:  w,
		height: h,
		scale:  scale,
		axes: rect{
			X: left + (availW-axW)/2,
			Y: top + (availH-axH)/2,
			W: axW,
			H: axH,
		},
	}
}

// gridSteps are candidate tick spacings in degrees, finest first.
var gridSteps = []float64{
	1.0 / 60, 2.0 / 60, 5.0 / 60, 10.0 / 60, 15.0 / 60, 30.0 / 60,
	1, 2, 2.5, 5, 10, 15, 20, 30, 45, 60, 90,
}

const maxGridIntervals = 6

func gridStep(span float64) float64 {
	for _, s := range gridSteps {
		if span/s <= maxGridIntervals {
			return s
		}
	}
	return gridSteps[len(gridSteps)-1]
}

// gridTicks returns multiples of a round step that fall within [lo, hi],
// widened by a small tolerance so edge values survive pixel-centre extents.
func gridTicks(lo, hi float64) []float64 {
	span := hi - lo
	if span <= 0 {
		return nil
	}
	step := gridStep(span)
	tol := span * 5e-3
	first := int(math.Ceil((lo - tol) / step))
	last := int(math.Floor((hi + tol) / step))

	ticks := make([]float64, 0, last-first+1)
	for k := first; k <= last; k++ {
		v := float64(k) * step
		// Snap to the arc second to keep labels exact.
		ticks = append(ticks, math.Round(v*3600)/3600)
	}
	return ticks
}

// formatDMS renders a coordinate as degrees, minutes and seconds with a
// hemisphere suffix, dropping zero minutes and seconds.
func formatDMS(v float64, pos, neg string) string {
	total := int(math.Round(math.Abs(v) * 3600))
	deg, mins, secs := total/3600, (total%3600)/60, total%60

	s := fmt.Sprintf("%d°", deg)
	if mins != 0 || secs != 0 {
		s += fmt.Sprintf("%d′", mins)
	}
	if secs != 0 {
		s += fmt.Sprintf("%d″", secs)
	}

	switch {
	case total == 0:
		return s
	case pos == "E" && total == 180*3600:
		return s
	case v > 0:
		return s + pos
	default:
		return s + neg
	}
}

func formatLon(v float64) string { return formatDMS(v, "E", "W") }
func formatLat(v float64) string { return formatDMS(v, "N", "S") }
