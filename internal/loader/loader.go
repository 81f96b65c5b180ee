package loader

import (
	"context"
	"sync"
	"time"

	"maploader/internal/fetch"
	"maploader/internal/obs"
	"maploader/internal/resource"
	"maploader/internal/respcache"
)

// Fetcher is the slice of fetch.Context the loader needs.
type Fetcher interface {
	CreateRequest(res resource.Resource, callback fetch.Callback, prior *resource.Response) *fetch.Request
}

type Options struct {
	Cache   respcache.Store
	Fetcher Fetcher
	Logger  obs.Logger
	Metrics *obs.Metrics
	// Now overrides the freshness clock in tests.
	Now func() time.Time
}

// Loader serves resources cache-first. A fresh cached response never
// touches the network; a stale one rides along as the revalidation
// prior. Concurrent loads of one URL coalesce onto a single in-flight
// request.
type Loader struct {
	cache   respcache.Store
	fetcher Fetcher
	log     obs.Logger
	metrics *obs.Metrics
	now     func() time.Time

	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	callbacks []fetch.Callback
}

func New(opts Options) *Loader {
	l := &Loader{
		cache:   opts.Cache,
		fetcher: opts.Fetcher,
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		flights: make(map[string]*flight),
	}
	if l.log == nil {
		l.log = obs.NewNop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Load delivers the resource through callback exactly once. The
// callback may fire synchronously (fresh cache hit) or later on the
// fetch context's loop.
func (l *Loader) Load(ctx context.Context, res resource.Resource, callback fetch.Callback) {
	var prior *resource.Response
	if l.cache != nil {
		cached, ok, err := l.cache.Get(ctx, res.URL)
		if err != nil {
			l.log.Warn("cache lookup failed", "url", res.URL, "error", err)
		}
		if ok && cached.Status == resource.StatusSuccessful {
			if cached.IsFresh(l.now()) {
				l.metrics.RecordCacheLookup("hit")
				l.log.Debug("cache hit", "url", res.URL)
				callback(cached, fetch.HintFull)
				return
			}
			l.metrics.RecordCacheLookup("stale")
			snapshot := cached
			prior = &snapshot
		} else {
			l.metrics.RecordCacheLookup("miss")
		}
	}

	l.mu.Lock()
	if f, ok := l.flights[res.URL]; ok {
		f.callbacks = append(f.callbacks, callback)
		l.mu.Unlock()
		return
	}
	f := &flight{callbacks: []fetch.Callback{callback}}
	l.flights[res.URL] = f
	l.mu.Unlock()

	l.fetcher.CreateRequest(res, func(resp resource.Response, hint fetch.Hint) {
		l.storeBack(res.URL, resp)

		l.mu.Lock()
		callbacks := f.callbacks
		delete(l.flights, res.URL)
		l.mu.Unlock()

		for _, cb := range callbacks {
			cb(resp, hint)
		}
	}, prior)
}

func (l *Loader) storeBack(url string, resp resource.Response) {
	if l.cache == nil || resp.Status != resource.StatusSuccessful {
		return
	}
	if err := l.cache.Set(context.Background(), url, resp); err != nil {
		l.metrics.RecordCacheStoreFailure()
		l.log.Warn("cache store failed", "url", url, "error", err)
	}
}
