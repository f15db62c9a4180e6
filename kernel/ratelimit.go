package kernel

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxWarningsPerKey caps repeated logging for the same (kind, key) pair.
const maxWarningsPerKey = 8

// warningLimiter rate-limits a warning log line per key, bounded to a
// fixed number of distinct keys so a guest that spams many distinct bad
// handler registrations or missing-function addresses cannot grow this
// state without bound. Backed by an LRU rather than a plain map.
type warningLimiter struct {
	mu    sync.Mutex
	cache *lru.Cache[string, int]
}

func newWarningLimiter(size int) *warningLimiter {
	cache, err := lru.New[string, int](size)
	if err != nil {
		// Only fails for size <= 0, which none of this package's callers pass.
		panic(err)
	}
	return &warningLimiter{cache: cache}
}

// Allow reports whether a warning for key should be logged, and bumps its
// count. Returns false once key has been seen maxWarningsPerKey times.
func (w *warningLimiter) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, _ := w.cache.Get(key)
	if n >= maxWarningsPerKey {
		return false
	}
	w.cache.Add(key, n+1)
	return true
}
