package ttlcache

import "log/slog"

// OnExpiration registers fn to be called with the key and value of every
// entry the sweeper evicts. It returns an unsubscribe function.
//
// Handlers run synchronously on the sweeper goroutine, one entry at a
// time. A handler may use the cache (including writing the key back) but
// must not call Close, which waits for the sweeper to finish. Handlers
// are isolated from each other: a panic is logged and the remaining
// handlers and evictions still run.
func (c *Cache[V]) OnExpiration(fn func(key string, value V)) func() {
	if fn == nil {
		panic("ttlcache: OnExpiration: nil handler")
	}

	c.listenerMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

// notifyExpiration fans an evicted entry out to the registered handlers.
func (c *Cache[V]) notifyExpiration(key string, value V) {
	c.listenerMu.RLock()
	if len(c.listeners) == 0 {
		c.listenerMu.RUnlock()
		return
	}
	handlers := make([]func(string, V), 0, len(c.listeners))
	for _, fn := range c.listeners {
		handlers = append(handlers, fn)
	}
	c.listenerMu.RUnlock()

	for _, fn := range handlers {
		c.dispatchExpiration(fn, key, value)
	}
}

// dispatchExpiration invokes one handler with panic isolation so a
// misbehaving handler cannot take down the sweep or its siblings.
func (c *Cache[V]) dispatchExpiration(fn func(string, V), key string, value V) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("expiration handler panicked",
				slog.String("cache_id", c.id.String()),
				slog.String("key", key),
				slog.Any("panic", r))
		}
	}()

	fn(key, value)
}
