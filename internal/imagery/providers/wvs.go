package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/goes-imagery/internal/imagery"
)

const (
	// DefaultWVSBaseURL is the NASA Worldview Snapshots endpoint.
	DefaultWVSBaseURL = "https://wvs.earthdata.nasa.gov/api/v1/snapshot"

	snapshotWidth  = 2048
	snapshotHeight = 910
)

// WVSFetcher implements imagery.Fetcher for the Worldview Snapshots API.
type WVSFetcher struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
}

func NewWVSFetcher(client *http.Client, baseURL string, timeout time.Duration) *WVSFetcher {
	if baseURL == "" {
		baseURL = DefaultWVSBaseURL
	}
	return &WVSFetcher{
		name:    "wvs",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Timeout: timeout,
		},
	}
}

// SnapshotURL builds the GetSnapshot query for a layer, time and box.
// BBOX follows the EPSG:4326 axis order: lat_min,lon_min,lat_max,lon_max.
func (p *WVSFetcher) SnapshotURL(layer, queryTime string, box imagery.BoundingBox) string {
	return fmt.Sprintf(
		"%s?REQUEST=GetSnapshot&TIME=%s&BBOX=%s,%s,%s,%s&CRS=EPSG:4326&LAYERS=%s&WRAP=x&FORMAT=image/tiff&WIDTH=%d&HEIGHT=%d",
		p.baseURL,
		url.QueryEscape(queryTime),
		formatCoord(box.LatMin), formatCoord(box.LonMin),
		formatCoord(box.LatMax), formatCoord(box.LonMax),
		url.QueryEscape(layer),
		snapshotWidth, snapshotHeight,
	)
}

// Fetch performs one GET against the snapshot API and decodes the result.
func (p *WVSFetcher) Fetch(ctx context.Context, d imagery.Descriptor, queryTime string, box imagery.BoundingBox) (*imagery.Raster, error) {
	u := p.SnapshotURL(d.Layer, queryTime, box)

	start := time.Now()
	body, contentType, err := fetchBody(ctx, p.httpCfg, u)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("provider", p.name).
		Str("layer", d.Layer).
		Str("time", queryTime).
		Int("bytes", len(body)).
		Str("content_type", contentType).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot downloaded")

	return decodeRaster(body, contentType, box)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
