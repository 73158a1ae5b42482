package scheduler

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/pipeline"
	"github.com/i474232898/goes-imagery/internal/render"
)

type mockRenderer struct {
	calls int
	getFn func(ctx context.Context, product imagery.Product, now time.Time) (*pipeline.Result, error)
}

func (m *mockRenderer) GetImage(ctx context.Context, product imagery.Product, now time.Time) (*pipeline.Result, error) {
	m.calls++
	return m.getFn(ctx, product, now)
}

func testFigure(t *testing.T) *render.Figure {
	t.Helper()
	raster := imagery.NewRaster([]int{1, 2, 3}, 150, 60, imagery.QueryBoundingBox)
	d, _ := imagery.Lookup(imagery.ProductInfrared)
	fig, err := render.Render(d, "2024-01-01T11:30:00Z", raster, imagery.DisplayBoundingBox, render.Options{DPI: 20})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return fig
}

func TestRefresh_WritesOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "goes_snapshot.png")
	fig := testFigure(t)

	var gotProduct imagery.Product
	var gotNow time.Time
	m := &mockRenderer{
		getFn: func(ctx context.Context, product imagery.Product, now time.Time) (*pipeline.Result, error) {
			gotProduct, gotNow = product, now
			return &pipeline.Result{QueryTime: "2024-01-01T11:30:00Z", Figure: fig}, nil
		},
	}
	s := New(imagery.ProductInfrared, out, time.Minute, time.Second, m)
	s.now = func() time.Time { return time.Date(2024, 1, 1, 12, 7, 0, 0, time.UTC) }

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotProduct != imagery.ProductInfrared || gotNow.Location() != time.UTC {
		t.Fatalf("unexpected call %s at %v", gotProduct, gotNow)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
}

func TestRefresh_FailureKeepsPreviousFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "goes_snapshot.png")
	if err := os.WriteFile(out, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &mockRenderer{
		getFn: func(ctx context.Context, product imagery.Product, now time.Time) (*pipeline.Result, error) {
			return nil, &imagery.FetchError{URL: "u", StatusCode: 503, Status: "503 Service Unavailable"}
		},
	}
	s := New(imagery.ProductGeoColor, out, time.Minute, time.Second, m)

	err := s.Refresh(context.Background())
	if !errors.Is(err, imagery.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil || string(b) != "previous" {
		t.Fatalf("previous output was modified: %q, %v", b, err)
	}
}

func TestStart_DisabledInterval(t *testing.T) {
	m := &mockRenderer{}
	s := New(imagery.ProductInfrared, "unused.png", 0, time.Second, m)

	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
	if m.calls != 0 {
		t.Fatalf("expected no runs, got %d", m.calls)
	}
}
