package imagery

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
)

var validate = validator.New()

// BoundingBox is a rectangular lon/lat region in EPSG:4326 degrees.
type BoundingBox struct {
	LonMin float64 `json:"lonMin" validate:"gte=-180,lte=180"`
	LonMax float64 `json:"lonMax" validate:"gte=-180,lte=180,gtfield=LonMin"`
	LatMin float64 `json:"latMin" validate:"gte=-90,lte=90"`
	LatMax float64 `json:"latMax" validate:"gte=-90,lte=90,gtfield=LatMin"`
}

var (
	// QueryBoundingBox is the wide context region requested from the API.
	QueryBoundingBox = BoundingBox{LonMin: -70, LonMax: 5, LatMin: -25, LatMax: 25}

	// DisplayBoundingBox is the region cropped out for the rendered figure.
	DisplayBoundingBox = BoundingBox{LonMin: -50, LonMax: 0, LatMin: 0, LatMax: 25}
)

// Validate checks coordinate ranges and ordering.
func (b BoundingBox) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid bounding box %s: %w", b, err)
	}
	return nil
}

// Bound converts the box to an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.LonMin, b.LatMin},
		Max: orb.Point{b.LonMax, b.LatMax},
	}
}

// Contains reports whether other lies entirely inside b.
func (b BoundingBox) Contains(other BoundingBox) bool {
	bound := b.Bound()
	return bound.Contains(orb.Point{other.LonMin, other.LatMin}) &&
		bound.Contains(orb.Point{other.LonMax, other.LatMax})
}

// Width is the longitude span in degrees.
func (b BoundingBox) Width() float64 {
	return b.LonMax - b.LonMin
}

// Height is the latitude span in degrees.
func (b BoundingBox) Height() float64 {
	return b.LatMax - b.LatMin
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
}

// Extent is the coordinate range an image occupies on a map axis,
// in the order lon min, lon max, lat min, lat max.
type Extent [4]float64

func (e Extent) LonMin() float64 { return e[0] }
func (e Extent) LonMax() float64 { return e[1] }
func (e Extent) LatMin() float64 { return e[2] }
func (e Extent) LatMax() float64 { return e[3] }
