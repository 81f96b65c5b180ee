package resource

import "time"

// Status distinguishes a usable payload from a failed fetch.
type Status uint8

const (
	StatusSuccessful Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusError {
		return "error"
	}
	return "successful"
}

// Response is an immutable snapshot of one fetch result. A revalidated
// response carries the Data, Etag and Modified of the response it
// confirmed; only Expires is taken from the fresh headers.
type Response struct {
	Status   Status
	Message  string
	Modified time.Time
	Expires  time.Time
	Etag     string
	Data     []byte
}

// IsFresh reports whether the response can still be served without
// revalidation. A zero Expires means no expiry was advertised, which
// counts as stale.
func (r *Response) IsFresh(now time.Time) bool {
	if r == nil {
		return false
	}
	return !r.Expires.IsZero() && now.Before(r.Expires)
}
