package imagery

import "context"

// Fetcher retrieves a decoded raster for a product at a query time over box.
type Fetcher interface {
	Fetch(ctx context.Context, d Descriptor, queryTime string, box BoundingBox) (*Raster, error)
}
