package imagery

import (
	"fmt"
	"image"
	"sort"
)

// Raster is a labeled pixel array with axes (band, y, x).
//
// X holds ascending longitudes and Y descending latitudes of pixel centres,
// so row 0 is the northern edge. Values are stored band-major.
type Raster struct {
	Bands  []int
	X      []float64
	Y      []float64
	Values []uint8
}

// NewRaster allocates a zeroed raster covering box at width×height pixels,
// with pixel-centre coordinates derived from the box.
func NewRaster(bands []int, width, height int, box BoundingBox) *Raster {
	r := &Raster{
		Bands:  append([]int(nil), bands...),
		X:      make([]float64, width),
		Y:      make([]float64, height),
		Values: make([]uint8, len(bands)*width*height),
	}
	dx := box.Width() / float64(width)
	dy := box.Height() / float64(height)
	for i := range r.X {
		r.X[i] = box.LonMin + (float64(i)+0.5)*dx
	}
	for j := range r.Y {
		r.Y[j] = box.LatMax - (float64(j)+0.5)*dy
	}
	return r
}

// Shape returns the number of bands, rows and columns.
func (r *Raster) Shape() (bands, height, width int) {
	return len(r.Bands), len(r.Y), len(r.X)
}

func (r *Raster) index(b, y, x int) int {
	return (b*len(r.Y)+y)*len(r.X) + x
}

// At returns the value at band position b, row y, column x.
func (r *Raster) At(b, y, x int) uint8 {
	return r.Values[r.index(b, y, x)]
}

// Set stores v at band position b, row y, column x.
func (r *Raster) Set(b, y, x int, v uint8) {
	r.Values[r.index(b, y, x)] = v
}

// Extent returns the coordinate range of the pixel centres.
func (r *Raster) Extent() Extent {
	if len(r.X) == 0 || len(r.Y) == 0 {
		return Extent{}
	}
	return Extent{r.X[0], r.X[len(r.X)-1], r.Y[len(r.Y)-1], r.Y[0]}
}

// SelectBand returns a single-band copy of the band labeled label.
func (r *Raster) SelectBand(label int) (*Raster, error) {
	for i, b := range r.Bands {
		if b != label {
			continue
		}
		plane := len(r.X) * len(r.Y)
		out := &Raster{
			Bands:  []int{label},
			X:      r.X,
			Y:      r.Y,
			Values: make([]uint8, plane),
		}
		copy(out.Values, r.Values[i*plane:(i+1)*plane])
		return out, nil
	}
	return nil, fmt.Errorf("band %d not present in %v", label, r.Bands)
}

// ConcatBands stacks rasters sharing the same grid along the band axis.
// The result keeps the bands in argument order, relabeled 1..n.
func ConcatBands(parts ...*Raster) (*Raster, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("concat: no rasters")
	}
	first := parts[0]
	out := &Raster{X: first.X, Y: first.Y}
	for _, p := range parts {
		if len(p.X) != len(first.X) || len(p.Y) != len(first.Y) {
			return nil, fmt.Errorf("concat: grid %dx%d does not match %dx%d",
				len(p.X), len(p.Y), len(first.X), len(first.Y))
		}
		out.Values = append(out.Values, p.Values...)
		for range p.Bands {
			out.Bands = append(out.Bands, len(out.Bands)+1)
		}
	}
	return out, nil
}

// Select crops the raster to the coordinate ranges of box, inclusive on both
// ends. Latitude is walked from LatMax down to LatMin to follow the row order.
func (r *Raster) Select(box BoundingBox) (*Raster, error) {
	x0 := sort.Search(len(r.X), func(i int) bool { return r.X[i] >= box.LonMin })
	x1 := sort.Search(len(r.X), func(i int) bool { return r.X[i] > box.LonMax })
	y0 := sort.Search(len(r.Y), func(j int) bool { return r.Y[j] <= box.LatMax })
	y1 := sort.Search(len(r.Y), func(j int) bool { return r.Y[j] < box.LatMin })
	if x1 <= x0 || y1 <= y0 {
		return nil, &EmptySelectionError{Box: box, Coverage: r.Extent()}
	}

	w, h := x1-x0, y1-y0
	out := &Raster{
		Bands:  append([]int(nil), r.Bands...),
		X:      append([]float64(nil), r.X[x0:x1]...),
		Y:      append([]float64(nil), r.Y[y0:y1]...),
		Values: make([]uint8, len(r.Bands)*w*h),
	}
	for b := range r.Bands {
		for y := 0; y < h; y++ {
			src := r.index(b, y0+y, x0)
			dst := out.index(b, y, 0)
			copy(out.Values[dst:dst+w], r.Values[src:src+w])
		}
	}
	return out, nil
}

// Image transposes a 3-band raster to (y, x, band) order as an opaque NRGBA
// image whose first row is the northern edge.
func (r *Raster) Image() (*image.NRGBA, error) {
	if len(r.Bands) < 3 {
		return nil, &InsufficientBandsError{Have: len(r.Bands), Want: 3}
	}
	w, h := len(r.X), len(r.Y)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(x, y)
			img.Pix[o] = r.At(0, y, x)
			img.Pix[o+1] = r.At(1, y, x)
			img.Pix[o+2] = r.At(2, y, x)
			img.Pix[o+3] = 0xff
		}
	}
	return img, nil
}
