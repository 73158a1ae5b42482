package imagery

// rgbBands are the source band labels used for red, green and blue.
var rgbBands = []int{1, 2, 3}

// Composite selects bands 1, 2 and 3 in that order and stacks them into an
// RGB raster. Extra bands (such as alpha) are dropped.
func Composite(r *Raster) (*Raster, error) {
	if len(r.Bands) < len(rgbBands) {
		return nil, &InsufficientBandsError{Have: len(r.Bands), Want: len(rgbBands)}
	}

	parts := make([]*Raster, 0, len(rgbBands))
	for _, label := range rgbBands {
		band, err := r.SelectBand(label)
		if err != nil {
			return nil, &InsufficientBandsError{Have: len(r.Bands), Want: len(rgbBands)}
		}
		parts = append(parts, band)
	}
	return ConcatBands(parts...)
}
