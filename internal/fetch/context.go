package fetch

import (
	"maploader/internal/obs"
	"maploader/internal/resource"
	"maploader/internal/transport"
)

// Hint tells the consumer how to apply a delivered response: Full
// replaces cached data, Refresh only extends the cached entry's expiry.
type Hint uint8

const (
	HintFull Hint = iota
	HintRefresh
)

func (h Hint) String() string {
	if h == HintRefresh {
		return "refresh"
	}
	return "full"
}

// Callback receives the terminal result of a request. It is invoked
// exactly once, on the context's loop.
type Callback func(resource.Response, Hint)

type Options struct {
	Transport transport.Transport
	Logger    obs.Logger
	Metrics   *obs.Metrics
	// Timers overrides the loop's real timers; tests inject a manual
	// factory here.
	Timers TimerFactory
}

// Context owns the transport configuration and the run loop, and tracks
// every live request so a reachability signal can reach them all.
type Context struct {
	loop      *Loop
	transport transport.Transport
	log       obs.Logger
	metrics   *obs.Metrics
	timers    TimerFactory
	requests  map[*Request]struct{}
}

func NewContext(opts Options) *Context {
	c := &Context{
		loop:      NewLoop(),
		transport: opts.Transport,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		timers:    opts.Timers,
		requests:  make(map[*Request]struct{}),
	}
	if c.log == nil {
		c.log = obs.NewNop()
	}
	if c.timers == nil {
		c.timers = c.loop.afterFunc
	}
	return c
}

// CreateRequest registers a request and starts its first attempt. It
// always succeeds. prior, when non-nil, is the cached response to
// revalidate; the request only ever reads it.
func (c *Context) CreateRequest(res resource.Resource, callback Callback, prior *resource.Response) *Request {
	r := newRequest(c, res, callback, prior)
	c.loop.Post(func() {
		c.requests[r] = struct{}{}
		r.start()
	})
	return r
}

// OnNetworkReachable re-arms every request waiting out a fixed
// connectivity delay. Requests in an exponential backoff keep waiting.
func (c *Context) OnNetworkReachable() {
	c.loop.Post(func() {
		c.log.Debug("network reachable, re-arming pending retries", "requests", len(c.requests))
		for r := range c.requests {
			r.retryNow()
		}
	})
}

// Close tears down the loop. Outstanding requests are not cancelled
// implicitly; callers cancel them first.
func (c *Context) Close() {
	c.loop.Close()
}
