package httpapi

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/pipeline"
	"github.com/i474232898/goes-imagery/internal/store"
)

type mockFetcher struct {
	calls   int
	fetchFn func(ctx context.Context, d imagery.Descriptor, queryTime string, box imagery.BoundingBox) (*imagery.Raster, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, d imagery.Descriptor, queryTime string, box imagery.BoundingBox) (*imagery.Raster, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, d, queryTime, box)
	}
	return imagery.NewRaster([]int{1, 2, 3}, 204, 91, box), nil
}

func newTestApp(t *testing.T, f *mockFetcher) *fiber.App {
	t.Helper()

	cfg := pipeline.DefaultConfig()
	cfg.Render.DPI = 20
	svc, err := pipeline.NewService(f, store.NewMemoryStore(10, time.Hour), cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, svc)
	return app
}

func doGet(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func TestProducts(t *testing.T) {
	app := newTestApp(t, &mockFetcher{})

	resp := doGet(t, app, "/api/v1/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Products []imagery.Descriptor `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Products) != 5 || body.Products[0].Product != imagery.ProductInfrared {
		t.Fatalf("unexpected catalog %+v", body.Products)
	}
}

func TestImagery_PNG(t *testing.T) {
	f := &mockFetcher{}
	app := newTestApp(t, f)

	resp := doGet(t, app, "/api/v1/imagery/infrared?at=2024-01-01T12:07:00Z")
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, b)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
	if qt := resp.Header.Get("X-Query-Time"); qt != "2024-01-01T11:30:00Z" {
		t.Errorf("unexpected query time header %q", qt)
	}
	if resp.Header.Get("X-Run-ID") == "" {
		t.Error("missing run id header")
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}

	// Unix seconds are accepted as well.
	resp = doGet(t, app, "/api/v1/imagery/visible?at=1704110820")
	if qt := resp.Header.Get("X-Query-Time"); resp.StatusCode != http.StatusOK || qt != "2024-01-01T11:30:00Z" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, qt)
	}
}

func TestImagery_BadTime(t *testing.T) {
	f := &mockFetcher{}
	app := newTestApp(t, f)

	resp := doGet(t, app, "/api/v1/imagery/infrared?at=yesterday")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if f.calls != 0 {
		t.Fatalf("fetcher called %d times for a bad request", f.calls)
	}
}

func TestImagery_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		target string
		err    error
		raster *imagery.Raster
		want   int
	}{
		{name: "unknown product", target: "/api/v1/imagery/radar", want: http.StatusNotFound},
		{name: "fetch", target: "/api/v1/imagery/geocolor", err: &imagery.FetchError{URL: "u", StatusCode: 500, Status: "500 Internal Server Error"}, want: http.StatusBadGateway},
		{name: "timeout", target: "/api/v1/imagery/geocolor", err: &imagery.FetchTimeoutError{URL: "u", Timeout: time.Second}, want: http.StatusGatewayTimeout},
		{name: "decode", target: "/api/v1/imagery/geocolor", err: &imagery.DecodeError{ContentType: "text/xml"}, want: http.StatusBadGateway},
		{name: "bands", target: "/api/v1/imagery/geocolor", raster: imagery.NewRaster([]int{1}, 20, 10, imagery.QueryBoundingBox), want: http.StatusBadGateway},
		{name: "empty selection", target: "/api/v1/imagery/geocolor", raster: imagery.NewRaster([]int{1, 2, 3}, 20, 10, imagery.BoundingBox{LonMin: 100, LonMax: 120, LatMin: -40, LatMax: -20}), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &mockFetcher{
				fetchFn: func(ctx context.Context, d imagery.Descriptor, queryTime string, box imagery.BoundingBox) (*imagery.Raster, error) {
					if tc.err != nil {
						return nil, tc.err
					}
					return tc.raster, nil
				},
			}
			app := newTestApp(t, f)

			resp := doGet(t, app, tc.target)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestImageryRaw(t *testing.T) {
	f := &mockFetcher{}
	app := newTestApp(t, f)

	resp := doGet(t, app, "/api/v1/imagery/infrared/raw")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
	if f.calls != 0 {
		t.Fatalf("fetcher called %d times for a product without raw data", f.calls)
	}

	resp = doGet(t, app, "/api/v1/imagery/wv/raw?at=2024-01-01T12:07:00Z")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 204 || b.Dy() != 91 {
		t.Fatalf("expected the full composite, got %v", b)
	}

	resp = doGet(t, app, "/api/v1/imagery/radar/raw")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestRuns(t *testing.T) {
	app := newTestApp(t, &mockFetcher{})

	resp := doGet(t, app, "/api/v1/runs")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d before any run, got %d", http.StatusNotFound, resp.StatusCode)
	}

	doGet(t, app, "/api/v1/imagery/infrared")
	doGet(t, app, "/api/v1/imagery/visible")

	resp = doGet(t, app, "/api/v1/runs?product=infrared&limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var body struct {
		Runs []pipeline.RunRecord `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 1 || body.Runs[0].Product != "infrared" || !body.Runs[0].Succeeded() {
		t.Fatalf("unexpected runs %+v", body.Runs)
	}

	for _, target := range []string{"/api/v1/runs?product=radar", "/api/v1/runs?limit=-1", "/api/v1/runs?limit=many"} {
		if resp := doGet(t, app, target); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestRuns_ProductNamesSurviveLaterRequests(t *testing.T) {
	app := newTestApp(t, &mockFetcher{})

	for _, target := range []string{
		"/api/v1/imagery/infrared",
		"/api/v1/imagery/visible",
		"/api/v1/products",
		"/api/v1/runs?product=geocolor",
	} {
		doGet(t, app, target)
	}

	resp := doGet(t, app, "/api/v1/runs")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var body struct {
		Runs []pipeline.RunRecord `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 2 || body.Runs[0].Product != "infrared" || body.Runs[1].Product != "visible" {
		t.Fatalf("stored product names changed: %+v", body.Runs)
	}

	for _, p := range []string{"infrared", "visible"} {
		if resp := doGet(t, app, "/api/v1/runs?product="+p); resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", p, http.StatusOK, resp.StatusCode)
		}
	}
}
