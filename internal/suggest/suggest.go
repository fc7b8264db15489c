// Package suggest explains empty query results by pointing at member names
// that do not occur in the document, with close matches that do.
package suggest

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/pathquery"
	"github.com/jacoelho/treepath/internal/stack"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	maxSuggestions = 3
	maxDistance    = 2
)

// Hint is a member name used by a query that appears nowhere in the
// document.
type Hint struct {
	Key         string
	Suggestions []string
}

func (h Hint) String() string {
	if len(h.Suggestions) == 0 {
		return "member " + document.QuoteName(h.Key) + " does not occur in the document"
	}
	quoted := make([]string, len(h.Suggestions))
	for i, s := range h.Suggestions {
		quoted[i] = document.QuoteName(s)
	}
	return "member " + document.QuoteName(h.Key) + " does not occur in the document, did you mean " + strings.Join(quoted, " or ") + "?"
}

// Missing returns a hint for every member name in steps that is not a key
// of any object in doc, in the order the names appear in the query.
func Missing(doc any, steps []pathquery.Step) []Hint {
	names := queryNames(steps)
	if len(names) == 0 {
		return nil
	}

	present := documentKeys(doc)
	candidates := make([]string, 0, len(present))
	for k := range present {
		candidates = append(candidates, k)
	}
	slices.Sort(candidates)

	var hints []Hint
	for _, name := range names {
		if _, ok := present[name]; ok {
			continue
		}
		hints = append(hints, Hint{Key: name, Suggestions: closest(name, candidates)})
	}
	return hints
}

// queryNames collects the distinct member names addressed by steps.
func queryNames(steps []pathquery.Step) []string {
	var names []string
	add := func(k document.Key) {
		if !k.IsIndex && !slices.Contains(names, k.Name) {
			names = append(names, k.Name)
		}
	}

	for _, step := range steps {
		switch s := step.(type) {
		case pathquery.MemberStep:
			add(s.Key)
		case pathquery.UnionStep:
			for _, k := range s.Keys {
				add(k)
			}
		case pathquery.DescentStep:
			if s.Key != nil {
				add(*s.Key)
			}
		}
	}
	return names
}

// documentKeys returns every object key in doc.
func documentKeys(doc any) map[string]struct{} {
	keys := make(map[string]struct{})
	pending := stack.New[any]()
	pending.Push(doc)

	for !pending.IsEmpty() {
		node, _ := pending.Pop()
		isObject := document.KindOf(node) == document.KindObject
		for k, v := range document.Children(node) {
			if isObject {
				keys[k.Name] = struct{}{}
			}
			if document.KindOf(v) != document.KindScalar {
				pending.Push(v)
			}
		}
	}
	return keys
}

// closest ranks candidates that contain name as a fuzzy subsequence or are
// within a small edit distance of it.
func closest(name string, candidates []string) []string {
	type scored struct {
		target   string
		distance int
	}

	var found []scored
	seen := make(map[string]bool)
	for _, r := range fuzzy.RankFindFold(name, candidates) {
		found = append(found, scored{target: r.Target, distance: r.Distance})
		seen[r.Target] = true
	}

	lower := strings.ToLower(name)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d <= maxDistance {
			found = append(found, scored{target: c, distance: d})
		}
	}

	slices.SortStableFunc(found, func(a, b scored) int {
		return cmp.Or(cmp.Compare(a.distance, b.distance), strings.Compare(a.target, b.target))
	})

	out := make([]string, 0, min(len(found), maxSuggestions))
	for _, s := range found[:min(len(found), maxSuggestions)] {
		out = append(out, s.target)
	}
	return out
}
