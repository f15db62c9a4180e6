package recomp

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Func is the native-function ABI every recompiled guest function and
// interrupt handler stub implements. Callers must hold the execution
// gate before invoking it.
type Func func(rdram []byte, ctx *Context, rt any)

// Resolver lazily produces a Func for a guest address not yet present in
// the registry — e.g. a trampoline the binary-translation front-end JITs
// on first call. A registry built with a nil Resolver only ever serves
// addresses registered up front via Register.
type Resolver func(addr uint32) (Func, bool)

// Registry maps guest entry addresses to native callables (C2).
type Registry struct {
	mu       sync.RWMutex
	funcs    map[uint32]Func
	resolver Resolver
	sf       singleflight.Group
}

// NewRegistry creates an empty registry. resolver may be nil.
func NewRegistry(resolver Resolver) *Registry {
	return &Registry{
		funcs:    make(map[uint32]Func),
		resolver: resolver,
	}
}

// Register installs fn as the native callable for addr, overwriting any
// previous entry.
func (r *Registry) Register(addr uint32, fn Func) {
	r.mu.Lock()
	r.funcs[addr] = fn
	r.mu.Unlock()
}

// HasFunction reports whether addr has a registered callable, without
// invoking the lazy resolver, so a caller can check presence without
// paying resolution cost.
func (r *Registry) HasFunction(addr uint32) bool {
	r.mu.RLock()
	_, ok := r.funcs[addr]
	r.mu.RUnlock()
	return ok
}

// LookupFunction returns the native callable registered for addr. If
// absent and a Resolver was configured, concurrent first-lookups of the
// same address are coalesced via singleflight so only one caller pays the
// resolution cost; the resolved function (if any) is cached for later
// lookups.
func (r *Registry) LookupFunction(addr uint32) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[addr]
	r.mu.RUnlock()
	if ok {
		return fn, true
	}
	if r.resolver == nil {
		return nil, false
	}

	key := strconv.FormatUint(uint64(addr), 16)
	v, err, _ := r.sf.Do(key, func() (any, error) {
		resolved, found := r.resolver(addr)
		if !found {
			return nil, nil
		}
		r.mu.Lock()
		r.funcs[addr] = resolved
		r.mu.Unlock()
		return resolved, nil
	})
	if err != nil || v == nil {
		return nil, false
	}
	return v.(Func), true
}
