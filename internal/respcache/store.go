package respcache

import (
	"context"

	"maploader/internal/resource"
)

// Store caches terminal responses by resource URL. Stale entries stay
// retrievable: the loader uses them as revalidation priors.
type Store interface {
	Get(ctx context.Context, url string) (resource.Response, bool, error)
	Set(ctx context.Context, url string, resp resource.Response) error
	Delete(ctx context.Context, url string) error
	Close() error
}
