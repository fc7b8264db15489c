// Package conformance compares path query results with an independent
// RFC 9535 JSONPath implementation.
//
// The query dialects overlap but are not identical: scripts, sort steps,
// regex operators and negative slice steps on the engine side, function
// extensions on the RFC side. Queries the RFC grammar rejects are reported
// as unsupported rather than as divergences.
package conformance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jacoelho/treepath/internal/document"
	"github.com/theory/jsonpath"
)

// Report is the outcome of a comparison. Values are compared as multisets,
// ignoring order.
type Report struct {
	Query     string
	Supported bool
	Reason    string // why the query is unsupported
	Missing   []any  // selected by RFC 9535 only
	Extra     []any  // selected by the engine only
}

// Agrees reports whether both implementations selected the same values.
func (r Report) Agrees() bool {
	return !r.Supported || (len(r.Missing) == 0 && len(r.Extra) == 0)
}

func (r Report) String() string {
	switch {
	case !r.Supported:
		return fmt.Sprintf("%s: not an RFC 9535 query: %s", r.Query, r.Reason)
	case r.Agrees():
		return fmt.Sprintf("%s: agrees with RFC 9535", r.Query)
	default:
		return fmt.Sprintf("%s: %d values only in RFC 9535, %d values only in this engine", r.Query, len(r.Missing), len(r.Extra))
	}
}

// Check evaluates query with RFC 9535 semantics against doc and compares
// the selected values with values, the engine's result for the same query.
func Check(doc any, query string, values []any) (Report, error) {
	report := Report{Query: query}

	rfcQuery := strings.TrimSpace(query)
	if !strings.HasPrefix(rfcQuery, "$") {
		rfcQuery = "$." + rfcQuery
	}

	path, err := jsonpath.Parse(rfcQuery)
	if err != nil {
		report.Reason = err.Error()
		return report, nil
	}
	report.Supported = true

	input, err := toJSONValue(document.Plain(doc))
	if err != nil {
		return report, fmt.Errorf("conformance: convert document: %w", err)
	}

	want, err := countValues(path.Select(input))
	if err != nil {
		return report, err
	}
	got, err := countValues(values)
	if err != nil {
		return report, err
	}

	report.Missing = difference(want, got)
	report.Extra = difference(got, want)
	return report, nil
}

// toJSONValue round trips v through encoding/json so numbers have the
// float64 representation RFC 9535 implementations expect.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

type multiset struct {
	counts map[string]int
	values map[string]any
	order  []string
}

func countValues(values []any) (multiset, error) {
	m := multiset{
		counts: make(map[string]int, len(values)),
		values: make(map[string]any, len(values)),
	}
	for _, v := range values {
		key, err := canonical(v)
		if err != nil {
			return multiset{}, err
		}
		if m.counts[key] == 0 {
			m.order = append(m.order, key)
			m.values[key] = v
		}
		m.counts[key]++
	}
	return m, nil
}

// canonical encodes v with sorted keys and normalized numbers so equal
// values from either side produce the same key.
func canonical(v any) (string, error) {
	normalized, err := toJSONValue(document.Plain(v))
	if err != nil {
		return "", fmt.Errorf("conformance: encode value: %w", err)
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("conformance: encode value: %w", err)
	}
	return string(data), nil
}

// difference returns the values of a not matched by b, one per surplus
// occurrence.
func difference(a, b multiset) []any {
	var out []any
	for _, key := range a.order {
		for range a.counts[key] - b.counts[key] {
			out = append(out, a.values[key])
		}
	}
	return out
}
