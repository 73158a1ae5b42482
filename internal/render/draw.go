package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/i474232898/goes-imagery/internal/imagery"
)

var (
	errNoImage       = errors.New("figure has no image layer")
	errInvalidFigure = errors.New("figure has no drawable size")
)

var regularFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func fontFace(points, scale float64) (font.Face, error) {
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points * scale}), nil
}

// Draw rasterises the figure onto a new canvas.
func (f *Figure) Draw() (image.Image, error) {
	if f.Image == nil {
		return nil, errNoImage
	}
	if f.Width <= 0 || f.Height <= 0 || f.DPI <= 0 {
		return nil, fmt.Errorf("%w: %gx%g in at %g dpi", errInvalidFigure, f.Width, f.Height, f.DPI)
	}
	if f.Extent.LonMax() <= f.Extent.LonMin() || f.Extent.LatMax() <= f.Extent.LatMin() {
		return nil, fmt.Errorf("%w: degenerate extent %v", errInvalidFigure, f.Extent)
	}

	l := computeLayout(f)
	proj := plateCarree{extent: f.Extent, box: l.axes}

	dc := gg.NewContext(l.width, l.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	f.drawImage(dc, l)

	dc.DrawRectangle(l.axes.X, l.axes.Y, l.axes.W, l.axes.H)
	dc.Clip()
	f.drawCoastlines(dc, l, proj)
	f.drawGridlines(dc, l, proj)
	dc.ResetClip()

	dc.SetDash()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.2 * l.scale)
	dc.DrawRectangle(l.axes.X, l.axes.Y, l.axes.W, l.axes.H)
	dc.Stroke()

	if err := f.drawLabels(dc, l, proj); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func (f *Figure) drawImage(dc *gg.Context, l layout) {
	w := int(math.Round(l.axes.W))
	h := int(math.Round(l.axes.H))
	if w <= 0 || h <= 0 {
		return
	}

	src := image.Image(f.Image)
	if f.Origin == OriginLower {
		src = flipRows(f.Image)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	dc.DrawImage(dst, int(math.Round(l.axes.X)), int(math.Round(l.axes.Y)))
}

func (f *Figure) drawCoastlines(dc *gg.Context, l layout, proj plateCarree) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1 * l.scale)
	for _, ls := range f.Coastlines {
		if len(ls) < 2 {
			continue
		}
		dc.NewSubPath()
		dc.MoveTo(proj.X(ls[0][0]), proj.Y(ls[0][1]))
		for _, p := range ls[1:] {
			dc.LineTo(proj.X(p[0]), proj.Y(p[1]))
		}
	}
	dc.Stroke()
}

func (f *Figure) drawGridlines(dc *gg.Context, l layout, proj plateCarree) {
	g := f.Gridlines
	dc.SetRGBA(0.5, 0.5, 0.5, g.Alpha)
	dc.SetLineWidth(1 * l.scale)
	dc.SetDash(4*l.scale, 3*l.scale)
	for _, lon := range g.Lons {
		x := proj.X(lon)
		dc.DrawLine(x, l.axes.Y, x, l.axes.Y+l.axes.H)
	}
	for _, lat := range g.Lats {
		y := proj.Y(lat)
		dc.DrawLine(l.axes.X, y, l.axes.X+l.axes.W, y)
	}
	dc.Stroke()
}

func (f *Figure) drawLabels(dc *gg.Context, l layout, proj plateCarree) error {
	tickFace, err := fontFace(10, l.scale)
	if err != nil {
		return err
	}
	labelFace, err := fontFace(12, l.scale)
	if err != nil {
		return err
	}
	titleFace, err := fontFace(16, l.scale)
	if err != nil {
		return err
	}

	g := f.Gridlines
	lonText, latText := fmtDecimal, fmtDecimal
	if g.DMS {
		lonText, latText = formatLon, formatLat
	}
	pad := 6 * l.scale
	ax := l.axes

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(tickFace)
	for _, lon := range g.Lons {
		x := proj.X(lon)
		if g.Sides[0] {
			dc.DrawStringAnchored(lonText(lon), x, ax.Y-pad, 0.5, 0)
		}
		if g.Sides[1] {
			dc.DrawStringAnchored(lonText(lon), x, ax.Y+ax.H+pad, 0.5, 1)
		}
	}
	for _, lat := range g.Lats {
		y := proj.Y(lat)
		if g.Sides[2] {
			dc.DrawStringAnchored(latText(lat), ax.X-pad, y, 1, 0.35)
		}
		if g.Sides[3] {
			dc.DrawStringAnchored(latText(lat), ax.X+ax.W+pad, y, 0, 0.35)
		}
	}

	dc.SetFontFace(labelFace)
	if f.XLabel != "" {
		dc.DrawStringAnchored(f.XLabel, ax.X+ax.W/2, ax.Y+ax.H+42*l.scale, 0.5, 1)
	}
	if f.YLabel != "" {
		x, y := ax.X-62*l.scale, ax.Y+ax.H/2
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), x, y)
		dc.DrawStringAnchored(f.YLabel, x, y, 0.5, 0.5)
		dc.Pop()
	}

	if f.Title != "" {
		dc.SetFontFace(titleFace)
		dc.DrawStringAnchored(f.Title, ax.X+ax.W/2, ax.Y-30*l.scale, 0.5, 0)
	}
	return nil
}

func fmtDecimal(v float64) string {
	return fmt.Sprintf("%g°", v)
}

func flipRows(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		s := src.PixOffset(b.Min.X, b.Min.Y+y)
		d := dst.PixOffset(b.Min.X, b.Max.Y-1-y)
		copy(dst.Pix[d:d+rowLen], src.Pix[s:s+rowLen])
	}
	return dst
}

// WritePNG draws the figure and encodes it as PNG.
func (f *Figure) WritePNG(w io.Writer) error {
	img, err := f.Draw()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG draws the figure and writes it to path. The image is written to a
// temporary file in the same directory and renamed into place, so a failed
// render never leaves a partial file at path.
func (f *Figure) SavePNG(path string) error {
	img, err := f.Draw()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

// WriteRasterPNG encodes the first three bands of r as an RGB PNG.
func WriteRasterPNG(w io.Writer, r *imagery.Raster) error {
	img, err := r.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
