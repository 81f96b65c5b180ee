package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maploader/internal/fetch"
	"maploader/internal/resource"
	"maploader/internal/respcache"
	"maploader/internal/testutil"
	"maploader/internal/transport"
)

type delivery struct {
	resp resource.Response
	hint fetch.Hint
}

func newLoaderWith(t *testing.T, cache respcache.Store, tr transport.Transport) *Loader {
	t.Helper()
	fetchCtx := fetch.NewContext(fetch.Options{Transport: tr})
	t.Cleanup(fetchCtx.Close)
	return New(Options{Cache: cache, Fetcher: fetchCtx})
}

func collectOne(t *testing.T, deliveries chan delivery) delivery {
	t.Helper()
	select {
	case d := <-deliveries:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
		return delivery{}
	}
}

func TestLoadFreshHitSkipsNetwork(t *testing.T) {
	cache := respcache.NewMemoryStore(0)
	cached := resource.Response{
		Status:  resource.StatusSuccessful,
		Data:    []byte("cached"),
		Expires: time.Now().Add(time.Hour),
	}
	require.NoError(t, cache.Set(context.Background(), "https://example.com/t", cached))

	tr := testutil.NewScriptedTransport(true)
	ldr := newLoaderWith(t, cache, tr)

	deliveries := make(chan delivery, 1)
	ldr.Load(context.Background(), resource.Resource{URL: "https://example.com/t"}, func(resp resource.Response, hint fetch.Hint) {
		deliveries <- delivery{resp, hint}
	})

	d := collectOne(t, deliveries)
	assert.Equal(t, []byte("cached"), d.resp.Data)
	assert.Equal(t, fetch.HintFull, d.hint)
	assert.Empty(t, tr.Calls())
}

func TestLoadMissFetchesAndStores(t *testing.T) {
	cache := respcache.NewMemoryStore(0)
	tr := testutil.NewScriptedTransport(true, transport.Outcome{
		Kind:    transport.ResultSuccessful,
		Data:    []byte("fresh"),
		Etag:    `"v1"`,
		Expires: time.Now().Add(time.Hour),
	})
	ldr := newLoaderWith(t, cache, tr)

	deliveries := make(chan delivery, 1)
	ldr.Load(context.Background(), resource.Resource{URL: "https://example.com/t"}, func(resp resource.Response, hint fetch.Hint) {
		deliveries <- delivery{resp, hint}
	})

	d := collectOne(t, deliveries)
	assert.Equal(t, []byte("fresh"), d.resp.Data)

	stored, ok, err := cache.Get(context.Background(), "https://example.com/t")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), stored.Data)
	assert.Equal(t, `"v1"`, stored.Etag)
}

func TestLoadStaleHitRevalidates(t *testing.T) {
	cache := respcache.NewMemoryStore(0)
	stale := resource.Response{
		Status:   resource.StatusSuccessful,
		Data:     []byte("cached"),
		Etag:     `"v1"`,
		Modified: time.Date(2026, 2, 23, 9, 30, 0, 0, time.UTC),
		Expires:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, cache.Set(context.Background(), "https://example.com/t", stale))

	newExpires := time.Now().Add(time.Hour).Truncate(time.Second)
	tr := testutil.NewScriptedTransport(true, transport.Outcome{
		Kind:    transport.ResultNotModified,
		Etag:    `"v1"`,
		Expires: newExpires,
	})
	ldr := newLoaderWith(t, cache, tr)

	deliveries := make(chan delivery, 1)
	ldr.Load(context.Background(), resource.Resource{URL: "https://example.com/t"}, func(resp resource.Response, hint fetch.Hint) {
		deliveries <- delivery{resp, hint}
	})

	d := collectOne(t, deliveries)
	assert.Equal(t, fetch.HintRefresh, d.hint)
	assert.Equal(t, []byte("cached"), d.resp.Data)
	assert.Equal(t, newExpires, d.resp.Expires)

	// The stale prior rode along as the revalidation condition.
	calls := tr.Calls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Request.Prior)
	assert.Equal(t, `"v1"`, calls[0].Request.Prior.Etag)

	// The cached entry got its expiry renewed.
	stored, ok, err := cache.Get(context.Background(), "https://example.com/t")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("cached"), stored.Data)
	assert.Equal(t, newExpires, stored.Expires)
}

func TestLoadErrorNotCached(t *testing.T) {
	cache := respcache.NewMemoryStore(0)
	tr := testutil.NewScriptedTransport(true, transport.Outcome{
		Kind:    transport.ResultPermanentError,
		Message: "HTTP status code 404",
	})
	ldr := newLoaderWith(t, cache, tr)

	deliveries := make(chan delivery, 1)
	ldr.Load(context.Background(), resource.Resource{URL: "https://example.com/t"}, func(resp resource.Response, hint fetch.Hint) {
		deliveries <- delivery{resp, hint}
	})

	d := collectOne(t, deliveries)
	assert.Equal(t, resource.StatusError, d.resp.Status)

	_, ok, err := cache.Get(context.Background(), "https://example.com/t")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadCoalescesConcurrentLoads(t *testing.T) {
	cache := respcache.NewMemoryStore(0)
	tr := testutil.NewScriptedTransport(false)
	ldr := newLoaderWith(t, cache, tr)

	deliveries := make(chan delivery, 2)
	callback := func(resp resource.Response, hint fetch.Hint) {
		deliveries <- delivery{resp, hint}
	}
	res := resource.Resource{URL: "https://example.com/t"}
	ldr.Load(context.Background(), res, callback)

	testutil.Eventually(t, time.Second, 5*time.Millisecond, func() error {
		if len(tr.Calls()) != 1 {
			return errors.New("first load not in flight")
		}
		return nil
	})
	ldr.Load(context.Background(), res, callback)

	tr.Calls()[0].Complete(transport.Outcome{Kind: transport.ResultSuccessful, Data: []byte("once")})

	first := collectOne(t, deliveries)
	second := collectOne(t, deliveries)
	assert.Equal(t, []byte("once"), first.resp.Data)
	assert.Equal(t, []byte("once"), second.resp.Data)
	assert.Len(t, tr.Calls(), 1)
}

func TestLoadWithoutCache(t *testing.T) {
	tr := testutil.NewScriptedTransport(true, transport.Outcome{
		Kind: transport.ResultSuccessful,
		Data: []byte("direct"),
	})
	ldr := newLoaderWith(t, nil, tr)

	deliveries := make(chan delivery, 1)
	ldr.Load(context.Background(), resource.Resource{URL: "https://example.com/t"}, func(resp resource.Response, hint fetch.Hint) {
		deliveries <- delivery{resp, hint}
	})

	d := collectOne(t, deliveries)
	assert.Equal(t, []byte("direct"), d.resp.Data)
}
