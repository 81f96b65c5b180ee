package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"maploader/internal/obs"
	"maploader/internal/resource"
)

// HTTPTransport issues fetches over net/http. Each call runs on its own
// goroutine; done fires from there.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	log       obs.Logger
}

var _ Transport = (*HTTPTransport)(nil)

func NewHTTP(opts Options, log obs.Logger) *HTTPTransport {
	if log == nil {
		log = obs.NewNop()
	}
	return &HTTPTransport{
		client:    &http.Client{Transport: newRoundTripper(opts)},
		userAgent: opts.UserAgent,
		log:       log,
	}
}

type httpHandle struct {
	cancel context.CancelFunc
}

func (h *httpHandle) Cancel() {
	h.cancel()
}

func (t *HTTPTransport) Issue(req Request, done func(Outcome)) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		done(t.roundTrip(ctx, req))
	}()
	return &httpHandle{cancel: cancel}
}

func (t *HTTPTransport) roundTrip(ctx context.Context, req Request) Outcome {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Resource.URL, nil)
	if err != nil {
		return Outcome{Kind: ResultPermanentError, Message: err.Error()}
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	resource.AddConditionHeaders(httpReq.Header, req.Prior)

	t.log.Debug("issuing request", "url", req.Resource.URL, "kind", req.Resource.Kind.String())
	resp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return Outcome{Kind: ResultCanceled, Message: "request canceled"}
		}
		return Outcome{Kind: ClassifyError(err), Message: err.Error()}
	}
	defer resp.Body.Close()

	expires, modified, etag := resource.ParseCacheHeaders(resp.Header, time.Now())
	out := Outcome{
		StatusCode: resp.StatusCode,
		Etag:       etag,
		Modified:   modified,
		Expires:    expires,
	}

	switch out.Kind = ClassifyStatus(resp.StatusCode); out.Kind {
	case ResultSuccessful:
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			if ctx.Err() == context.Canceled {
				return Outcome{Kind: ResultCanceled, Message: "request canceled"}
			}
			return Outcome{Kind: ClassifyError(readErr), Message: readErr.Error()}
		}
		out.Data = data
	case ResultNotModified:
		// No body by definition; the caller merges its prior response.
	default:
		out.Message = fmt.Sprintf("HTTP status code %d", resp.StatusCode)
	}
	return out
}
