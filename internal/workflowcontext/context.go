// Package workflowcontext implements the mutable keyed store threaded
// through one workflow run (spec §4.1). Typed getters never panic or
// return an error on absent or mistyped values; they fall back to the
// caller-supplied default or the zero value.
package workflowcontext

import (
	"sync"

	"github.com/alexisbeaulieu97/workflowengine/internal/coerce"
)

// Context is the per-run keyed store. The zero value is not usable; use
// New.
type Context struct {
	mu       sync.RWMutex
	values   map[string]any
	metadata map[string]any
}

// New creates an empty Context.
func New() *Context {
	return &Context{
		values:   make(map[string]any),
		metadata: make(map[string]any),
	}
}

// Get returns the raw value stored under key, or nil if absent.
func (c *Context) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// Set stores value under key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// HasValue reports whether key exists and its value is non-nil.
func (c *Context) HasValue(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return ok && v != nil
}

// IsEmpty reports whether the value at key is nil, an empty string, or an
// empty collection/map; any other non-nil value reports false. A missing
// key is treated as empty.
func (c *Context) IsEmpty(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return coerce.IsEmpty(c.values[key])
}

// GetString returns the string coercion of key, or def if absent/uncoercible.
func (c *Context) GetString(key, def string) string {
	if v, ok := coerce.String(c.Get(key)); ok {
		return v
	}
	return def
}

// GetInt returns the int coercion of key, or def if absent/uncoercible.
func (c *Context) GetInt(key string, def int) int {
	if v, ok := coerce.Int(c.Get(key)); ok {
		return v
	}
	return def
}

// GetInt64 returns the int64 coercion of key, or def if absent/uncoercible.
func (c *Context) GetInt64(key string, def int64) int64 {
	if v, ok := coerce.Int64(c.Get(key)); ok {
		return v
	}
	return def
}

// GetFloat64 returns the float64 coercion of key, or def if absent/uncoercible.
func (c *Context) GetFloat64(key string, def float64) float64 {
	if v, ok := coerce.Float64(c.Get(key)); ok {
		return v
	}
	return def
}

// GetBool returns the bool coercion of key, or def if absent/uncoercible.
func (c *Context) GetBool(key string, def bool) bool {
	if v, ok := coerce.Bool(c.Get(key)); ok {
		return v
	}
	return def
}

// GetStringSlice returns the []string coercion of key, or def if absent.
func (c *Context) GetStringSlice(key string, def []string) []string {
	if v, ok := coerce.StringSlice(c.Get(key)); ok {
		return v
	}
	return def
}

// GetStringMap returns the map[string]any coercion of key, or def if absent.
func (c *Context) GetStringMap(key string, def map[string]any) map[string]any {
	if v, ok := coerce.StringMap(c.Get(key)); ok {
		return v
	}
	return def
}

// Metadata returns the raw metadata value at key, or nil if absent. The
// metadata mapping is isolated from the main value mapping.
func (c *Context) Metadata(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metadata[key]
}

// SetMetadata stores value under key in the isolated metadata mapping.
func (c *Context) SetMetadata(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[key] = value
}

// PutAll merges delta into the main value mapping, overwriting on key
// collision.
func (c *Context) PutAll(delta map[string]any) {
	if len(delta) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range delta {
		c.values[k] = v
	}
}

// Snapshot returns a shallow copy of the main value mapping, safe for a
// caller to range over without holding the Context's lock.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Copy returns an independent Context with shallow copies of both the main
// and metadata mappings: mutations to the copy's mapping structure do not
// affect the original, though aliased element values (e.g. a shared slice)
// are not deep-cloned.
func (c *Context) Copy() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := New()
	for k, v := range c.values {
		out.values[k] = v
	}
	for k, v := range c.metadata {
		out.metadata[k] = v
	}
	return out
}
