// Package render turns composited rasters into annotated map figures.
package render

import (
	"image"

	"github.com/paulmach/orb"

	"github.com/i474232898/goes-imagery/internal/imagery"
)

// Origin places the first image row at the top or bottom of the axes.
type Origin string

const (
	OriginUpper Origin = "upper"
	OriginLower Origin = "lower"
)

const (
	DefaultFigureWidth = 15.0 // inches
	DefaultDPI         = 100.0
	DefaultGridAlpha   = 0.25
)

// Options controls figure geometry.
type Options struct {
	Width     float64 // inches
	DPI       float64
	GridAlpha float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultFigureWidth
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.GridAlpha <= 0 || o.GridAlpha > 1 {
		o.GridAlpha = DefaultGridAlpha
	}
	return o
}

// Gridlines describes the graticule drawn over the map.
type Gridlines struct {
	Lons  []float64
	Lats  []float64
	Alpha float64
	// DMS formats labels as degrees/minutes/seconds.
	DMS bool
	// Labels on top, bottom, left and right.
	Sides [4]bool
}

// Figure is an in-memory map figure: one plate-carrée axis with an image
// layer, coastlines, gridlines and a title. Nothing is rasterised until the
// figure is encoded.
type Figure struct {
	Width  float64 // inches
	Height float64 // inches
	DPI    float64

	Title     string
	QueryTime string
	XLabel    string
	YLabel    string

	Extent imagery.Extent
	Origin Origin
	Image  *image.NRGBA

	Coastlines []orb.LineString
	Gridlines  Gridlines
}

// Size returns the figure width and height in inches.
func (f *Figure) Size() (width, height float64) {
	return f.Width, f.Height
}

// PixelSize returns the canvas size in pixels.
func (f *Figure) PixelSize() (width, height int) {
	l := computeLayout(f)
	return l.width, l.height
}

// Render crops composite to display, reorders it to (y, x, band) and builds
// the annotated figure for d. A display box that selects no pixels fails with
// imagery.ErrEmptySelection.
func Render(d imagery.Descriptor, queryTime string, composite *imagery.Raster, display imagery.BoundingBox, opts Options) (*Figure, error) {
	if err := display.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	crop, err := composite.Select(display)
	if err != nil {
		return nil, err
	}
	img, err := crop.Image()
	if err != nil {
		return nil, err
	}

	extent := crop.Extent()
	coast, err := coastlinesWithin(orb.Bound{
		Min: orb.Point{extent.LonMin(), extent.LatMin()},
		Max: orb.Point{extent.LonMax(), extent.LatMax()},
	})
	if err != nil {
		return nil, err
	}

	width := opts.Width
	height := (display.LatMin - display.LatMax) / (display.LonMin - display.LonMax) * width

	return &Figure{
		Width:      width,
		Height:     height,
		DPI:        opts.DPI,
		Title:      d.Title,
		QueryTime:  queryTime,
		XLabel:     "Longitude",
		YLabel:     "Latitude",
		Extent:     extent,
		Origin:     OriginUpper,
		Image:      img,
		Coastlines: coast,
		Gridlines: Gridlines{
			Lons:  gridTicks(extent.LonMin(), extent.LonMax()),
			Lats:  gridTicks(extent.LatMin(), extent.LatMax()),
			Alpha: opts.GridAlpha,
			DMS:   true,
			Sides: [4]bool{true, true, true, true},
		},
	}, nil
}
