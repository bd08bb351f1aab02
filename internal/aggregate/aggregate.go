// Package aggregate reduces a row set into per-group summary values.
//
// Aggregation always runs over the rows it is given, so callers pass the
// currently visible (already filtered) rows. Nothing here fails: missing
// data degrades to NoValue at the group level.
package aggregate

import (
	"sort"

	"github.com/fundview-dev/fundview/internal/model"
)

// Spec maps a field name to the name of the reducer applied to it.
type Spec map[string]string

// Fields returns the spec's fields sorted by name.
func (s Spec) Fields() []string {
	fields := make([]string, 0, len(s))
	for f := range s {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Group is the aggregate of one partition of rows.
type Group struct {
	Key    string
	HasKey bool // false for the group of rows whose key is NoValue
	Rows   int
	Values map[string]Value
}

// Value returns the aggregate for field.
func (g Group) Value(field string) Value {
	return g.Values[field]
}

// Result holds groups in first-appearance order.
type Result struct {
	GroupBy string
	Groups  []Group
	index   map[string]int
	noValue int
}

// Group returns the group for a key.
func (r *Result) Group(key string) (Group, bool) {
	i, ok := r.index[key]
	if !ok {
		return Group{}, false
	}
	return r.Groups[i], true
}

// NoValueGroup returns the group of rows that had no key.
func (r *Result) NoValueGroup() (Group, bool) {
	if r.noValue < 0 {
		return Group{}, false
	}
	return r.Groups[r.noValue], true
}

// Engine evaluates specs against a reducer registry.
type Engine struct {
	registry *Registry
}

// NewEngine creates an Engine. A nil registry means DefaultRegistry.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{registry: registry}
}

// Registry returns the engine's reducers.
func (e *Engine) Registry() *Registry {
	return e.registry
}

var defaultEngine = NewEngine(nil)

// Aggregate groups rows with the built-in reducers.
func Aggregate(rows []model.Row, groupBy string, spec Spec) *Result {
	return defaultEngine.Aggregate(rows, groupBy, spec)
}

// Totals reduces all rows as one group with the built-in reducers.
func Totals(rows []model.Row, spec Spec) Group {
	return defaultEngine.Totals(rows, spec)
}

// Aggregate partitions rows by the exact string value of groupBy and
// reduces each spec field per group.
func (e *Engine) Aggregate(rows []model.Row, groupBy string, spec Spec) *Result {
	res := &Result{GroupBy: groupBy, index: make(map[string]int), noValue: -1}

	members := make(map[int][]model.Row)
	for _, row := range rows {
		key, ok := row.Text(groupBy)
		var gi int
		switch {
		case !ok && res.noValue >= 0:
			gi = res.noValue
		case !ok:
			gi = len(res.Groups)
			res.noValue = gi
			res.Groups = append(res.Groups, Group{})
		default:
			i, seen := res.index[key]
			if !seen {
				i = len(res.Groups)
				res.index[key] = i
				res.Groups = append(res.Groups, Group{Key: key, HasKey: true})
			}
			gi = i
		}
		members[gi] = append(members[gi], row)
	}

	for i := range res.Groups {
		g := e.reduce(members[i], spec)
		g.Key = res.Groups[i].Key
		g.HasKey = res.Groups[i].HasKey
		res.Groups[i] = g
	}
	return res
}

// Totals reduces all rows as a single group.
func (e *Engine) Totals(rows []model.Row, spec Spec) Group {
	return e.reduce(rows, spec)
}

func (e *Engine) reduce(rows []model.Row, spec Spec) Group {
	g := Group{Rows: len(rows), Values: make(map[string]Value, len(spec))}
	for field, fn := range spec {
		red := e.registry.Get(fn)
		if red == nil {
			g.Values[field] = Value{}
			continue
		}
		values := make([]Value, len(rows))
		for i, row := range rows {
			values[i] = row.Number(field)
		}
		g.Values[field] = red.Reduce(values)
	}
	return g
}
