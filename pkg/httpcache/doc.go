// Package httpcache provides router-agnostic HTTP middleware that
// memoizes responses in a ttlcache.Cache, replaying them until the
// cache's expiration sweeps them out.
//
// Only GET and HEAD requests are considered, and only responses with
// cacheable status codes (200 by default) are stored. Requests sent with
// Cache-Control: no-store bypass the cache, and responses marked
// no-store or private, or carrying Set-Cookie, are never stored. Served
// responses carry an X-Cache header (HIT or MISS); hits also report
// their Age.
//
// # Usage
//
//	cache := ttlcache.New[*httpcache.Entry](
//		ttlcache.WithExpiration(time.Minute),
//	)
//	defer cache.Close()
//
//	r := chi.NewRouter()
//	r.Use(httpcache.Middleware(cache))
//	r.Get("/reports/{id}", reportHandler)
//
// Expensive endpoints can additionally coalesce concurrent misses, so a
// burst of identical requests costs one origin invocation:
//
//	r.Use(httpcache.Middleware(cache,
//		httpcache.WithRequestCoalescing(2*time.Second),
//	))
//
// The cache key defaults to method + host + request URI; WithKeyFunc
// overrides it, and returning "" exempts a request. WithSkipFunc exempts
// requests by predicate, keeping authenticated or per-user routes out of
// the shared cache.
package httpcache
