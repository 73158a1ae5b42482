package providers

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/i474232898/goes-imagery/internal/common"
	"github.com/i474232898/goes-imagery/internal/imagery"
)

// decodeRaster parses an image payload into a raster georeferenced on box.
// The snapshot API returns exactly the requested grid, so pixel-centre
// coordinates follow from the box and the decoded dimensions.
func decodeRaster(body []byte, contentType string, box imagery.BoundingBox) (*imagery.Raster, error) {
	if common.IsTextContentType(contentType) {
		return nil, &imagery.DecodeError{
			ContentType: contentType,
			Err:         fmt.Errorf("payload is not an image: %s", common.Snippet(body, 200)),
		}
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, &imagery.DecodeError{ContentType: contentType, Err: err}
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, &imagery.DecodeError{ContentType: contentType, Err: fmt.Errorf("empty image %dx%d", w, h)}
	}

	n := bandCount(img)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i + 1
	}
	r := imagery.NewRaster(labels, w, h, box)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r.Set(0, y, x, src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.RGBA:
		// Opaque RGBA needs no un-premultiplication.
		if n == 3 {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					o := src.PixOffset(b.Min.X+x, b.Min.Y+y)
					r.Set(0, y, x, src.Pix[o])
					r.Set(1, y, x, src.Pix[o+1])
					r.Set(2, y, x, src.Pix[o+2])
				}
			}
			break
		}
		fillGeneric(r, img, n)
	default:
		fillGeneric(r, img, n)
	}
	return r, nil
}

// bandCount maps the decoded colour model onto band count:
// gray 1, opaque colour 3 (RGB), colour with alpha 4 (RGBA).
func bandCount(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func fillGeneric(r *imagery.Raster, img image.Image, n int) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if n == 1 {
				r.Set(0, y, x, color.GrayModel.Convert(c).(color.Gray).Y)
				continue
			}
			nc := color.NRGBAModel.Convert(c).(color.NRGBA)
			r.Set(0, y, x, nc.R)
			r.Set(1, y, x, nc.G)
			r.Set(2, y, x, nc.B)
			if n == 4 {
				r.Set(3, y, x, nc.A)
			}
		}
	}
}
