package resource

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseCacheHeaders extracts expiry and validator metadata from response
// headers. A max-age directive takes precedence over an Expires header.
func ParseCacheHeaders(h http.Header, now time.Time) (expires, modified time.Time, etag string) {
	if maxAge, ok := parseMaxAge(h.Get("Cache-Control")); ok {
		expires = now.Add(maxAge)
	} else if raw := h.Get("Expires"); raw != "" {
		if parsed, err := http.ParseTime(raw); err == nil {
			expires = parsed
		}
	}
	if raw := h.Get("Last-Modified"); raw != "" {
		if parsed, err := http.ParseTime(raw); err == nil {
			modified = parsed
		}
	}
	etag = h.Get("ETag")
	return expires, modified, etag
}

// AddConditionHeaders attaches the revalidation condition derived from a
// previously cached response. An entity tag wins over a modification
// time.
func AddConditionHeaders(h http.Header, prior *Response) {
	if prior == nil {
		return
	}
	if prior.Etag != "" {
		h.Set("If-None-Match", prior.Etag)
		return
	}
	if !prior.Modified.IsZero() {
		h.Set("If-Modified-Since", prior.Modified.UTC().Format(http.TimeFormat))
	}
}

func parseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(directive), "=")
		if !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}
