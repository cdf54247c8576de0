package domain

import (
	"maps"
	"slices"
	"strings"
)

// Environment is an immutable snapshot of process environment variables.
// Every mutating operation returns a new snapshot and leaves the receiver untouched.
type Environment struct {
	vars map[string]string
}

// NewEnvironment creates an Environment from a map. The map is copied.
func NewEnvironment(vars map[string]string) Environment {
	return Environment{vars: maps.Clone(vars)}
}

// ParseEnvironment creates an Environment from "KEY=VALUE" entries as returned by os.Environ.
// Entries without a separator are ignored; later duplicates win.
func ParseEnvironment(entries []string) Environment {
	vars := make(map[string]string, len(entries))
	for _, entry := range entries {
		k, v, ok := strings.Cut(entry, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return Environment{vars: vars}
}

// Lookup returns the value of key and whether it is set at all.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key, or the empty string when unset.
func (e Environment) Get(key string) string {
	return e.vars[key]
}

// GetOr returns the value of key, or def when unset.
func (e Environment) GetOr(key, def string) string {
	if v, ok := e.vars[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is set, regardless of its value.
func (e Environment) Has(key string) bool {
	_, ok := e.vars[key]
	return ok
}

// Len returns the number of variables.
func (e Environment) Len() int {
	return len(e.vars)
}

// With returns a copy of the environment with key set to value.
func (e Environment) With(key, value string) Environment {
	next := make(map[string]string, len(e.vars)+1)
	maps.Copy(next, e.vars)
	next[key] = value
	return Environment{vars: next}
}

// WithDefault returns a copy with key set to value only if key is not already set.
func (e Environment) WithDefault(key, value string) Environment {
	if e.Has(key) {
		return e
	}
	return e.With(key, value)
}

// Merge returns a copy overlaid with vars. Keys in vars win on collision.
func (e Environment) Merge(vars map[string]string) Environment {
	next := make(map[string]string, len(e.vars)+len(vars))
	maps.Copy(next, e.vars)
	maps.Copy(next, vars)
	return Environment{vars: next}
}

// Keys returns all variable names in sorted order.
func (e Environment) Keys() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// Map returns a copy of the underlying variables.
func (e Environment) Map() map[string]string {
	return maps.Clone(e.vars)
}

// Slice returns the environment as sorted "KEY=VALUE" entries suitable for exec.Cmd.Env.
func (e Environment) Slice() []string {
	keys := e.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}
