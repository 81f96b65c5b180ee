package testutil

import (
	"testing"
	"time"
)

// Eventually polls fn on interval until it returns nil, failing the
// test with fn's last error once timeout elapses. fn runs at least
// once.
func Eventually(t *testing.T, timeout, interval time.Duration, fn func() error) {
	t.Helper()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		err := fn()
		if err == nil {
			return
		}
		select {
		case <-deadline.C:
			t.Fatalf("condition not met after %s: %v", timeout, err)
		case <-tick.C:
		}
	}
}
