package fetch

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maploader/internal/resource"
	"maploader/internal/testutil"
	"maploader/internal/transport"
)

func TestFetchOverHTTP(t *testing.T) {
	var requests atomic.Int64
	url, closeUpstream := testutil.StartUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.Header().Set("Cache-Control", "max-age=60")
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte("tile-bytes"))
	}))
	defer closeUpstream()

	ctx := NewContext(Options{Transport: transport.NewHTTP(transport.Options{}, nil)})
	defer ctx.Close()

	deliveries := make(chan delivery, 1)
	ctx.CreateRequest(resource.Resource{Kind: resource.KindTile, URL: url}, func(resp resource.Response, hint Hint) {
		deliveries <- delivery{resp, hint}
	}, nil)

	first := collectOne(t, deliveries)
	require.Equal(t, resource.StatusSuccessful, first.resp.Status)
	assert.Equal(t, []byte("tile-bytes"), first.resp.Data)
	assert.Equal(t, `"v1"`, first.resp.Etag)
	assert.Equal(t, HintFull, first.hint)

	// Revalidate with the first response as prior; the origin answers
	// 304 and the engine carries the cached body forward.
	ctx.CreateRequest(resource.Resource{Kind: resource.KindTile, URL: url}, func(resp resource.Response, hint Hint) {
		deliveries <- delivery{resp, hint}
	}, &first.resp)

	second := collectOne(t, deliveries)
	assert.Equal(t, HintRefresh, second.hint)
	assert.Equal(t, []byte("tile-bytes"), second.resp.Data)
	assert.Equal(t, `"v1"`, second.resp.Etag)
	assert.WithinDuration(t, time.Now().Add(time.Minute), second.resp.Expires, 10*time.Second)
	assert.Equal(t, int64(2), requests.Load())
}

func TestFetchOverHTTPPermanentError(t *testing.T) {
	url, closeUpstream := testutil.StartUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer closeUpstream()

	ctx := NewContext(Options{Transport: transport.NewHTTP(transport.Options{}, nil)})
	defer ctx.Close()

	deliveries := make(chan delivery, 1)
	ctx.CreateRequest(resource.Resource{URL: url}, func(resp resource.Response, hint Hint) {
		deliveries <- delivery{resp, hint}
	}, nil)

	d := collectOne(t, deliveries)
	assert.Equal(t, resource.StatusError, d.resp.Status)
	assert.Equal(t, "HTTP status code 404", d.resp.Message)
}
