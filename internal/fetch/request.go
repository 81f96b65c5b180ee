package fetch

import (
	"time"

	"maploader/internal/resource"
	"maploader/internal/transport"
)

// State of a request. Completed and Cancelled are terminal; a request
// never leaves them.
type State uint8

const (
	StateIdle State = iota
	StateInFlight
	StateRetrying
	StateCompleted
	StateCancelled
)

// Strategy describes how a pending retry waits.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	// StrategyExponential doubles the delay per attempt and cannot be
	// preempted.
	StrategyExponential
	// StrategyPreempt waits a fixed delay that a reachability signal
	// may cut short.
	StrategyPreempt
)

func (s Strategy) String() string {
	switch s {
	case StrategyExponential:
		return "exponential"
	case StrategyPreempt:
		return "preempt"
	default:
		return "immediate"
	}
}

const (
	maxAttempts          = 4
	connectionRetryDelay = 30 * time.Second
)

// Request drives one logical fetch through retries to a single terminal
// delivery. All fields are loop-confined; only Cancel may be called from
// outside, and it posts itself onto the loop.
type Request struct {
	ctx      *Context
	resource resource.Resource
	callback Callback
	prior    *resource.Response

	state     State
	strategy  Strategy
	attempts  int
	handle    transport.Handle
	timer     Timer
	cancelled bool
	createdAt time.Time
}

func newRequest(c *Context, res resource.Resource, callback Callback, prior *resource.Response) *Request {
	return &Request{
		ctx:       c,
		resource:  res,
		callback:  callback,
		prior:     prior,
		state:     StateIdle,
		createdAt: time.Now(),
	}
}

// Cancel stops the request. With a transport call outstanding the
// request survives until that call's completion handler runs; it then
// sees the cancelled flag and destroys the request without delivering.
// With nothing outstanding the request dies immediately, also without
// delivering.
func (r *Request) Cancel() {
	r.ctx.loop.Post(r.cancelOnLoop)
}

func (r *Request) cancelOnLoop() {
	if r.state == StateCompleted || r.state == StateCancelled {
		return
	}
	r.cancelled = true
	r.state = StateCancelled
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.handle != nil {
		// Completion handler performs the destruction.
		r.handle.Cancel()
		return
	}
	r.destroy()
}

// start issues the next transport attempt. Invariant: never more than
// one outstanding call per request.
func (r *Request) start() {
	if r.state == StateCompleted || r.state == StateCancelled {
		return
	}
	if r.handle != nil {
		// Stale timer fire; the attempt it scheduled is already running.
		return
	}
	r.attempts++
	r.state = StateInFlight
	r.strategy = StrategyNone
	r.timer = nil
	r.ctx.metrics.RecordFetchAttempt(r.resource.Kind.String())
	r.ctx.log.Debug("starting attempt",
		"url", r.resource.URL,
		"attempt", r.attempts,
		"revalidating", r.prior != nil,
	)

	req := transport.Request{Resource: r.resource, Prior: r.prior}
	r.handle = r.ctx.transport.Issue(req, func(out transport.Outcome) {
		// Sole cross-thread handoff: the transport's execution context
		// posts the completion onto the owning loop.
		r.ctx.loop.Post(func() {
			r.complete(out)
		})
	})
}

func (r *Request) complete(out transport.Outcome) {
	r.handle = nil
	if r.cancelled || out.Kind == transport.ResultCanceled {
		r.destroy()
		return
	}
	r.decide(out)
}

func (r *Request) decide(out transport.Outcome) {
	switch {
	case out.Kind == transport.ResultSingularError && r.attempts < maxAttempts:
		r.ctx.log.Debug("retrying immediately", "url", r.resource.URL, "error", out.Message)
		r.ctx.metrics.RecordFetchRetry(StrategyNone.String())
		r.state = StateRetrying
		r.start()
	case out.Kind == transport.ResultTemporaryError && r.attempts < maxAttempts:
		delay := time.Duration(1<<uint(r.attempts-1)) * time.Second
		r.ctx.log.Debug("retrying with backoff", "url", r.resource.URL, "delay", delay, "error", out.Message)
		r.ctx.metrics.RecordFetchRetry(StrategyExponential.String())
		r.state = StateRetrying
		r.strategy = StrategyExponential
		r.timer = r.ctx.timers(delay, r.start)
	case out.Kind == transport.ResultConnectionError && r.attempts < maxAttempts:
		r.ctx.log.Debug("retrying on connectivity", "url", r.resource.URL, "delay", connectionRetryDelay, "error", out.Message)
		r.ctx.metrics.RecordFetchRetry(StrategyPreempt.String())
		r.state = StateRetrying
		r.strategy = StrategyPreempt
		r.timer = r.ctx.timers(connectionRetryDelay, r.start)
	default:
		r.finish(out)
	}
}

// retryNow is the reachability trigger. It only acts on a pending
// fixed-delay wait; exponential backoffs run their course.
func (r *Request) retryNow() {
	if r.state != StateRetrying || r.strategy != StrategyPreempt {
		return
	}
	if r.timer != nil {
		r.timer.Reset(0)
	}
}

func (r *Request) finish(out transport.Outcome) {
	resp, hint := r.buildResponse(out)
	r.state = StateCompleted
	r.ctx.metrics.RecordFetchCompleted(
		resp.Status.String(),
		hint.String(),
		r.resource.Kind.String(),
		time.Since(r.createdAt).Seconds(),
	)
	if resp.Status == resource.StatusError {
		r.ctx.log.Warn("fetch failed", "url", r.resource.URL, "attempts", r.attempts, "message", resp.Message)
	}
	callback := r.callback
	r.callback = nil
	r.destroy()
	if callback != nil {
		callback(resp, hint)
	}
}

func (r *Request) buildResponse(out transport.Outcome) (resource.Response, Hint) {
	switch out.Kind {
	case transport.ResultSuccessful:
		return resource.Response{
			Status:   resource.StatusSuccessful,
			Data:     out.Data,
			Etag:     out.Etag,
			Modified: out.Modified,
			Expires:  out.Expires,
		}, HintFull
	case transport.ResultNotModified:
		if r.prior != nil {
			// A revalidated response never invents body data: it
			// carries the prior bytes and validators forward, with
			// only the expiry renewed.
			return resource.Response{
				Status:   resource.StatusSuccessful,
				Data:     r.prior.Data,
				Etag:     r.prior.Etag,
				Modified: r.prior.Modified,
				Expires:  out.Expires,
			}, HintRefresh
		}
		// Unsolicited 304; degrade to a successful empty body.
		return resource.Response{
			Status:   resource.StatusSuccessful,
			Etag:     out.Etag,
			Modified: out.Modified,
			Expires:  out.Expires,
		}, HintFull
	default:
		return resource.Response{
			Status:   resource.StatusError,
			Message:  out.Message,
			Etag:     out.Etag,
			Modified: out.Modified,
			Expires:  out.Expires,
		}, HintFull
	}
}

func (r *Request) destroy() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	delete(r.ctx.requests, r)
}
