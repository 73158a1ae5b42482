package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/i474232898/goes-imagery/internal/imagery"
)

// HTTPClientConfig bundles the HTTP client and the per-request time bound.
type HTTPClientConfig struct {
	Client  *http.Client
	Timeout time.Duration
}

// maxBodyBytes caps the payload read from the API.
const maxBodyBytes = 64 << 20

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid http client configuration")
	errBodyTooLarge  = errors.New("response body too large")
)

// fetchBody performs a single GET and returns the body and its content type.
// It never retries. Non-2xx statuses become *imagery.FetchError and exceeded
// deadlines become *imagery.FetchTimeoutError.
func fetchBody(ctx context.Context, cfg HTTPClientConfig, u string) ([]byte, string, error) {
	if cfg.Client == nil {
		return nil, "", errNoHTTPClient
	}
	if cfg.Timeout <= 0 {
		return nil, "", errInvalidConfig
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", &imagery.FetchError{URL: u, Err: err}
	}

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, "", classifyTransportError(u, cfg.Timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, "", &imagery.FetchError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, "", classifyTransportError(u, cfg.Timeout, err)
	}
	if len(body) > maxBodyBytes {
		return nil, "", &imagery.FetchError{URL: u, Err: fmt.Errorf("%w: over %d bytes", errBodyTooLarge, maxBodyBytes)}
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func classifyTransportError(u string, timeout time.Duration, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &imagery.FetchTimeoutError{URL: u, Timeout: timeout, Err: err}
	}
	return &imagery.FetchError{URL: u, Err: err}
}
