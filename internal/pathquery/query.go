package pathquery

import (
	"fmt"
	"slices"
	"strings"
)

// Query is a compiled path query. It holds no reference to any document
// and is safe for concurrent use.
type Query struct {
	source string
	steps  []Step
	opts   []Option
}

// Compile normalizes and classifies query. Options given here become the
// defaults of every evaluation of the returned Query.
func Compile(query string, opts ...Option) (*Query, error) {
	cfg := newConfig(opts)

	raw, err := Normalize(query)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		step, err := Classify(raw[i], cfg.compiler)
		if err != nil {
			return nil, err
		}

		// '..' followed by a member is a keyed descent.
		if _, ok := step.(DescentStep); ok && i+1 < len(raw) {
			next, err := Classify(raw[i+1], cfg.compiler)
			if err != nil {
				return nil, err
			}
			if member, ok := next.(MemberStep); ok {
				key := member.Key
				step = DescentStep{Key: &key}
				i++
			}
		}

		steps = append(steps, step)
	}

	return &Query{
		source: query,
		steps:  steps,
		opts:   slices.Clone(opts),
	}, nil
}

// MustCompile is like Compile but panics if the query cannot be compiled.
func MustCompile(query string, opts ...Option) *Query {
	q, err := Compile(query, opts...)
	if err != nil {
		panic(fmt.Sprintf("pathquery: Compile(%q): %v", query, err))
	}
	return q
}

// Validate reports whether query compiles.
func Validate(query string, opts ...Option) error {
	_, err := Compile(query, opts...)
	return err
}

// Evaluate compiles query and evaluates it against doc.
func Evaluate(doc any, query string, opts ...Option) (*Result, error) {
	q, err := Compile(query, opts...)
	if err != nil {
		return nil, err
	}
	return q.Evaluate(doc)
}

// Evaluate runs the query against doc. Options override the ones given to
// Compile. The document is only read.
func (q *Query) Evaluate(doc any, opts ...Option) (*Result, error) {
	cfg := newConfig(append(slices.Clip(q.opts), opts...))
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	matches, err := newWalker(doc, cfg).run(q.steps)
	if err != nil {
		return nil, err
	}

	return materialize(cfg.resultType, matches), nil
}

// Steps returns a copy of the classified steps.
func (q *Query) Steps() []Step {
	return slices.Clone(q.steps)
}

// Source returns the text the query was compiled from.
func (q *Query) Source() string {
	return q.source
}

// String returns the canonical form of the query, which compiles to the
// same steps.
func (q *Query) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range q.steps {
		b.WriteString(s.String())
	}
	return b.String()
}
