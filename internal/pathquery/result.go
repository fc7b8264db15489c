package pathquery

import (
	"strings"

	"github.com/jacoelho/treepath/internal/document"
)

// Result is the materialized outcome of an evaluation. Values is set for
// ResultValue and ResultBoth, Paths for ResultPath and ResultBoth, and
// Pairs for ResultBoth. Populated slices are empty rather than nil when
// nothing matched.
type Result struct {
	Type   ResultType
	Values []any
	Paths  []string
	Pairs  []Pair
}

// Pair is a matched value with its canonical path.
type Pair struct {
	Path  string `json:"path" yaml:"path"`
	Value any    `json:"value" yaml:"value"`
}

// Len returns the number of matches.
func (r *Result) Len() int {
	switch r.Type {
	case ResultPath:
		return len(r.Paths)
	default:
		return len(r.Values)
	}
}

// Items returns the entries selected by Type: values, path strings or pairs.
func (r *Result) Items() []any {
	var items []any
	switch r.Type {
	case ResultPath:
		items = make([]any, len(r.Paths))
		for i, p := range r.Paths {
			items[i] = p
		}
	case ResultBoth:
		items = make([]any, len(r.Pairs))
		for i, p := range r.Pairs {
			items[i] = p
		}
	default:
		items = make([]any, len(r.Values))
		copy(items, r.Values)
	}
	return items
}

// FormatPath renders keys as a canonical path such as $['store']['book'][0].
func FormatPath(keys []document.Key) string {
	var b strings.Builder
	b.Grow(1 + len(keys)*8)
	b.WriteByte('$')
	for _, k := range keys {
		b.WriteString(k.String())
	}
	return b.String()
}

// materialize formats already collected matches without touching the
// document again.
func materialize(t ResultType, matches []match) *Result {
	r := &Result{Type: t}

	if t != ResultPath {
		r.Values = make([]any, len(matches))
		for i, m := range matches {
			r.Values[i] = m.value
		}
	}

	if t != ResultValue {
		r.Paths = make([]string, len(matches))
		for i, m := range matches {
			r.Paths[i] = FormatPath(m.path)
		}
	}

	if t == ResultBoth {
		r.Pairs = make([]Pair, len(matches))
		for i := range matches {
			r.Pairs[i] = Pair{Path: r.Paths[i], Value: r.Values[i]}
		}
	}

	return r
}
