package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// ClassifyError maps a Go transport error into the shared result
// taxonomy. Order matters: cancellation and timeouts are checked before
// the broader connectivity classes.
func ClassifyError(err error) ResultKind {
	if err == nil {
		return ResultPermanentError
	}
	if errors.Is(err, context.Canceled) {
		return ResultCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ResultSingularError
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ResultSingularError
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ResultConnectionError
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ResultConnectionError
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ENETDOWN) {
		return ResultConnectionError
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ResultConnectionError
	}
	return ResultPermanentError
}

// ClassifyStatus maps an HTTP status code into the shared taxonomy.
// NotModified is reported raw; the caller decides whether a prior
// response exists to satisfy it.
func ClassifyStatus(status int) ResultKind {
	switch {
	case status == 200:
		return ResultSuccessful
	case status == 304:
		return ResultNotModified
	case status >= 500 && status < 600:
		return ResultTemporaryError
	default:
		return ResultPermanentError
	}
}
