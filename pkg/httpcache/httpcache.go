package httpcache

import (
	"net/http"
	"time"
)

// Entry is a cached HTTP response: everything needed to replay it to a
// later client without invoking the origin handler.
type Entry struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// KeyFunc derives the cache key for a request. Returning an empty string
// exempts the request from caching.
type KeyFunc func(r *http.Request) string

// DefaultKey keys responses by method, host, and full request URI, so
// GET and HEAD responses for the same resource are cached independently
// and query strings produce distinct entries.
func DefaultKey(r *http.Request) string {
	return r.Method + " " + r.Host + r.URL.RequestURI()
}
