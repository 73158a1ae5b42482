package imagery

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrFetch             = errors.New("imagery fetch failed")
	ErrFetchTimeout      = errors.New("imagery fetch timed out")
	ErrDecode            = errors.New("imagery decode failed")
	ErrInsufficientBands = errors.New("insufficient raster bands")
	ErrEmptySelection    = errors.New("empty raster selection")
)

// UnknownProductError is returned for product keys outside the catalog.
type UnknownProductError struct {
	Key string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownProduct, e.Key)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrUnknownProduct }

// FetchError reports a failed request or a non-success HTTP status.
// StatusCode is zero when the request never got a response.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: %s returned %s", ErrFetch, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", ErrFetch, e.URL, e.Err)
	default:
		return fmt.Sprintf("%v: %s", ErrFetch, e.URL)
	}
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }
func (e *FetchError) Unwrap() error        { return e.Err }

// FetchTimeoutError reports a request that exceeded its time bound.
type FetchTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *FetchTimeoutError) Error() string {
	return fmt.Sprintf("%v: %s after %s", ErrFetchTimeout, e.URL, e.Timeout)
}

func (e *FetchTimeoutError) Is(target error) bool { return target == ErrFetchTimeout }
func (e *FetchTimeoutError) Unwrap() error        { return e.Err }

// DecodeError reports a payload that is not a readable raster.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("%v (content type %q): %v", ErrDecode, e.ContentType, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
func (e *DecodeError) Unwrap() error        { return e.Err }

// InsufficientBandsError is returned when a raster has fewer bands than needed.
type InsufficientBandsError struct {
	Have int
	Want int
}

func (e *InsufficientBandsError) Error() string {
	return fmt.Sprintf("%v: have %d, want at least %d", ErrInsufficientBands, e.Have, e.Want)
}

func (e *InsufficientBandsError) Is(target error) bool { return target == ErrInsufficientBands }

// EmptySelectionError is returned when a crop selects no pixels, usually
// because the display box does not overlap the raster's coverage.
type EmptySelectionError struct {
	Box      BoundingBox
	Coverage Extent
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("%v: box %s outside coverage [%g, %g, %g, %g]",
		ErrEmptySelection, e.Box, e.Coverage[0], e.Coverage[1], e.Coverage[2], e.Coverage[3])
}

func (e *EmptySelectionError) Is(target error) bool { return target == ErrEmptySelection }
