package transport

import (
	"time"

	"maploader/internal/resource"
)

// ResultKind is the closed classification every adapter maps its
// platform-specific failures into. Retry policy keys off it alone.
type ResultKind uint8

const (
	ResultSuccessful ResultKind = iota
	ResultNotModified
	ResultCanceled
	// ResultSingularError covers failures worth retrying immediately,
	// such as timeouts.
	ResultSingularError
	// ResultConnectionError covers connectivity-class failures: lost
	// connection, unreachable host, DNS resolution.
	ResultConnectionError
	// ResultTemporaryError covers server-side failures (HTTP 5xx).
	ResultTemporaryError
	ResultPermanentError
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccessful:
		return "successful"
	case ResultNotModified:
		return "not-modified"
	case ResultCanceled:
		return "canceled"
	case ResultSingularError:
		return "singular-error"
	case ResultConnectionError:
		return "connection-error"
	case ResultTemporaryError:
		return "temporary-error"
	case ResultPermanentError:
		return "permanent-error"
	default:
		return "unknown"
	}
}

// Retryable reports whether the kind may be retried at all. Whether it
// actually is depends on the attempt budget.
func (k ResultKind) Retryable() bool {
	switch k {
	case ResultSingularError, ResultConnectionError, ResultTemporaryError:
		return true
	default:
		return false
	}
}

// Outcome is the result of one transport call. Cache metadata is parsed
// from headers whenever the call produced any.
type Outcome struct {
	Kind       ResultKind
	StatusCode int
	Message    string
	Data       []byte
	Etag       string
	Modified   time.Time
	Expires    time.Time
}

// Request describes one transport call. Prior, when set, is the cached
// response to revalidate against; the adapter derives the conditional
// headers from it. Prior is shared and never mutated.
type Request struct {
	Resource resource.Resource
	Prior    *resource.Response
}

// Handle refers to an in-flight call. Cancel requests cooperative
// cancellation; the call's done function still runs exactly once.
type Handle interface {
	Cancel()
}

// Transport is the single capability the fetch engine needs. Issue
// starts the call and returns immediately; done is invoked exactly once
// from the transport's own execution context.
type Transport interface {
	Issue(req Request, done func(Outcome)) Handle
}
