package httpcache

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/cachekit/pkg/ttlcache"
)

// MiddlewareOption configures middleware behavior.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	keyFunc  KeyFunc
	skipFunc func(r *http.Request) bool
	statuses map[int]struct{}
	coalesce time.Duration
}

// WithKeyFunc sets a custom cache key derivation function.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.keyFunc = fn
	}
}

// WithSkipFunc sets a predicate that exempts matching requests from
// caching entirely.
func WithSkipFunc(fn func(r *http.Request) bool) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipFunc = fn
	}
}

// WithCacheableStatuses replaces the set of response status codes that
// may be cached. The default is 200 only.
func WithCacheableStatuses(statuses ...int) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.statuses = make(map[int]struct{}, len(statuses))
		for _, status := range statuses {
			c.statuses[status] = struct{}{}
		}
	}
}

// WithRequestCoalescing makes concurrent misses for the same key wait up
// to waitTimeout for a single origin invocation instead of each hitting
// the origin. Waiters that time out fall back to invoking the origin
// directly, uncached. A non-positive timeout leaves coalescing off.
func WithRequestCoalescing(waitTimeout time.Duration) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.coalesce = waitTimeout
	}
}

// Middleware returns router-agnostic middleware that memoizes responses
// in cache. Only GET and HEAD requests with cacheable statuses are
// stored; requests and responses marked no-store bypass the cache, as do
// responses that set cookies. Served entries carry an X-Cache header
// with HIT or MISS and an Age header on hits.
func Middleware(cache *ttlcache.Cache[*Entry], opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if cache == nil {
		panic("httpcache.Middleware: cache is required")
	}

	config := &middlewareConfig{
		keyFunc:  DefaultKey,
		statuses: map[int]struct{}{http.StatusOK: {}},
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.keyFunc == nil {
		panic("httpcache.Middleware: key function is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cacheableRequest(r) || (config.skipFunc != nil && config.skipFunc(r)) {
				next.ServeHTTP(w, r)
				return
			}

			key := config.keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if entry, ok := cache.Get(key); ok {
				serveEntry(w, r, entry, "HIT")
				return
			}

			if config.coalesce > 0 {
				serveCoalesced(cache, config, next, w, r, key)
				return
			}

			// Tee the origin response to the client while capturing it,
			// then store it if it turned out cacheable.
			w.Header().Set("X-Cache", "MISS")
			rec := &teeRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			entry := rec.snapshot()
			if config.storable(entry) {
				_ = cache.Set(key, entry)
			}
		})
	}
}

// serveCoalesced funnels concurrent misses for key through a single
// origin invocation. The caller that wins the per-key lock runs the
// origin into a buffer and serves its own capture; the others serve the
// stored entry. A caller that times out waiting runs the origin
// directly and its response is not stored.
func serveCoalesced(cache *ttlcache.Cache[*Entry], config *middlewareConfig, next http.Handler, w http.ResponseWriter, r *http.Request, key string) {
	var fresh *Entry
	entry, err := cache.GetOrSyncAdd(key, func(string) *Entry {
		rec := newBufferRecorder()
		next.ServeHTTP(rec, r)
		fresh = rec.snapshot()
		if !config.storable(fresh) {
			// Returning the zero value keeps it out of the cache; the
			// capture is still served below.
			return nil
		}
		return fresh
	}, config.coalesce)

	switch {
	case fresh != nil:
		serveEntry(w, r, fresh, "MISS")
	case err == nil && entry != nil:
		serveEntry(w, r, entry, "HIT")
	default:
		// Lock wait timed out: serve the origin directly, uncached.
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(w, r)
	}
}

// storable reports whether a captured response may enter the cache.
func (c *middlewareConfig) storable(entry *Entry) bool {
	if _, ok := c.statuses[entry.Status]; !ok {
		return false
	}
	return cacheableResponse(entry.Header)
}

// cacheableRequest limits caching to safe methods whose sender did not
// opt out.
func cacheableRequest(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return !strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-store")
}

// cacheableResponse rejects responses the origin marked private or
// no-store, and anything that sets cookies.
func cacheableResponse(header http.Header) bool {
	cc := strings.ToLower(header.Get("Cache-Control"))
	if strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
		return false
	}
	return header.Get("Set-Cookie") == ""
}

// serveEntry replays a captured response. HEAD requests get headers and
// status only.
func serveEntry(w http.ResponseWriter, r *http.Request, entry *Entry, verdict string) {
	for name, values := range entry.Header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.Header().Set("X-Cache", verdict)
	if verdict == "HIT" {
		age := int(time.Since(entry.StoredAt).Seconds())
		if age < 0 {
			age = 0
		}
		w.Header().Set("Age", strconv.Itoa(age))
	}

	w.WriteHeader(entry.Status)
	if r.Method != http.MethodHead {
		w.Write(entry.Body)
	}
}

// teeRecorder forwards writes to the client while capturing status and
// body, so streaming behavior is preserved on the first (uncached) pass.
type teeRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (t *teeRecorder) WriteHeader(status int) {
	if t.status == 0 {
		t.status = status
	}
	t.ResponseWriter.WriteHeader(status)
}

func (t *teeRecorder) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	t.body.Write(p)
	return t.ResponseWriter.Write(p)
}

func (t *teeRecorder) snapshot() *Entry {
	status := t.status
	if status == 0 {
		status = http.StatusOK
	}

	header := t.ResponseWriter.Header().Clone()
	delete(header, "X-Cache")

	return &Entry{
		Status:   status,
		Header:   header,
		Body:     bytes.Clone(t.body.Bytes()),
		StoredAt: time.Now(),
	}
}

// bufferRecorder captures a response without a client behind it, for the
// coalesced path where the capture is replayed after the fact.
type bufferRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferRecorder() *bufferRecorder {
	return &bufferRecorder{header: make(http.Header)}
}

func (b *bufferRecorder) Header() http.Header {
	return b.header
}

func (b *bufferRecorder) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferRecorder) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferRecorder) snapshot() *Entry {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}

	return &Entry{
		Status:   status,
		Header:   b.header.Clone(),
		Body:     bytes.Clone(b.body.Bytes()),
		StoredAt: time.Now(),
	}
}
