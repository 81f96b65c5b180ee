package testutil

import (
	"sync"

	"maploader/internal/transport"
)

// ScriptedTransport plays back a fixed sequence of outcomes, one per
// issued call. With AutoComplete set, each call completes synchronously
// from Issue; otherwise the test completes calls by hand.
type ScriptedTransport struct {
	mu           sync.Mutex
	script       []transport.Outcome
	calls        []*ScriptedCall
	autoComplete bool
}

type ScriptedCall struct {
	Request transport.Request

	mu        sync.Mutex
	done      func(transport.Outcome)
	cancelled bool
	completed bool
}

func NewScriptedTransport(autoComplete bool, script ...transport.Outcome) *ScriptedTransport {
	return &ScriptedTransport{script: script, autoComplete: autoComplete}
}

var _ transport.Transport = (*ScriptedTransport)(nil)

func (t *ScriptedTransport) Issue(req transport.Request, done func(transport.Outcome)) transport.Handle {
	call := &ScriptedCall{Request: req, done: done}

	t.mu.Lock()
	t.calls = append(t.calls, call)
	var next transport.Outcome
	autoComplete := t.autoComplete && len(t.script) > 0
	if autoComplete {
		next = t.script[0]
		t.script = t.script[1:]
	}
	t.mu.Unlock()

	if autoComplete {
		call.Complete(next)
	}
	return call
}

// Calls returns a snapshot of every issued call so far.
func (t *ScriptedTransport) Calls() []*ScriptedCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*ScriptedCall(nil), t.calls...)
}

func (c *ScriptedCall) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
}

func (c *ScriptedCall) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

func (c *ScriptedCall) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Complete delivers the outcome. A cancelled call delivers a Canceled
// outcome instead, matching real transport behavior.
func (c *ScriptedCall) Complete(out transport.Outcome) {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return
	}
	c.completed = true
	if c.cancelled {
		out = transport.Outcome{Kind: transport.ResultCanceled, Message: "request canceled"}
	}
	done := c.done
	c.mu.Unlock()
	done(out)
}
