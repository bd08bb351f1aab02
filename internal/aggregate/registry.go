package aggregate

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds named reducers.
type Registry struct {
	reducers map[string]Reducer
}

// NewRegistry creates an empty reducer registry.
func NewRegistry() *Registry {
	return &Registry{reducers: make(map[string]Reducer)}
}

// Register adds a reducer under its own name. Panics on duplicate name.
func (r *Registry) Register(red Reducer) {
	r.add(red.Name(), red)
}

// Alias makes an existing reducer reachable under another name. Panics if
// name is unknown or alias is taken.
func (r *Registry) Alias(alias, name string) {
	red := r.Get(name)
	if red == nil {
		panic("alias for unknown reducer: " + name)
	}
	r.add(alias, red)
}

func (r *Registry) add(name string, red Reducer) {
	key := strings.ToLower(name)
	if _, ok := r.reducers[key]; ok {
		panic("duplicate reducer: " + key)
	}
	r.reducers[key] = red
}

// Get returns the reducer for name, or nil.
func (r *Registry) Get(name string) Reducer {
	return r.reducers[strings.ToLower(name)]
}

// Names returns all registered names, aliases included, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.reducers))
	for name := range r.reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports every spec entry naming an unknown reducer.
func (r *Registry) Validate(spec Spec) error {
	var unknown []string
	for _, field := range spec.Fields() {
		if r.Get(spec[field]) == nil {
			unknown = append(unknown, fmt.Sprintf("%s: %q", field, spec[field]))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown aggregation function (%s)", strings.Join(unknown, ", "))
	}
	return nil
}

// DefaultRegistry returns a registry with all built-in reducers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Sum{})
	r.Register(Count{})
	r.Register(Median{})
	r.Register(Avg{})
	r.Register(Min{})
	r.Register(Max{})
	r.Alias("size", "count")
	return r
}
