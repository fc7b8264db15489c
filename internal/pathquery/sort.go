package pathquery

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/expr"
	"github.com/jacoelho/treepath/internal/number"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Ranks order values of different types in a sort step.
const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
	rankContainer
	rankUndefined
)

// sorter orders matches for sort steps. A collator keeps internal buffers,
// so each evaluation gets its own sorter.
type sorter struct {
	collator *collate.Collator
}

func newSorter(tag *language.Tag) *sorter {
	s := &sorter{}
	if tag != nil {
		s.collator = collate.New(*tag)
	}
	return s
}

type sortEntry struct {
	m    match
	keys []any
}

// sort returns current reordered by keys. The order of ties is preserved.
func (s *sorter) sort(current []match, keys []SortKey, root any, logger *slog.Logger) []match {
	entries := make([]sortEntry, len(current))
	for i, m := range current {
		values := make([]any, len(keys))
		for j, k := range keys {
			v, err := k.Expr.Evaluate(m.value, root)
			if err != nil {
				logger.Debug("sort key undefined",
					slog.String("expression", k.Expr.String()),
					slog.String("error", err.Error()),
				)
				v = expr.Undefined
			}
			values[j] = v
		}
		entries[i] = sortEntry{m: m, keys: values}
	}

	slices.SortStableFunc(entries, func(a, b sortEntry) int {
		for j, k := range keys {
			if c := s.compareKey(a.keys[j], b.keys[j], k.Descending); c != 0 {
				return c
			}
		}
		return 0
	})

	out := make([]match, len(entries))
	for i, e := range entries {
		out[i] = e.m
	}
	return out
}

// compareKey orders two key values. Undefined sorts last in either
// direction.
func (s *sorter) compareKey(a, b any, descending bool) int {
	ra, rb := rank(a), rank(b)
	if ra == rankUndefined || rb == rankUndefined {
		return cmp.Compare(ra, rb)
	}

	c := cmp.Compare(ra, rb)
	if c == 0 {
		c = s.compareSameRank(ra, a, b)
	}
	if descending {
		return -c
	}
	return c
}

func (s *sorter) compareSameRank(r int, a, b any) int {
	switch r {
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		ad, _ := number.ToDecimal(a)
		bd, _ := number.ToDecimal(b)
		return ad.Cmp(bd)
	case rankString:
		as, bs := a.(string), b.(string)
		if s.collator != nil {
			return s.collator.CompareString(as, bs)
		}
		return strings.Compare(as, bs)
	default:
		return 0
	}
}

func rank(v any) int {
	switch {
	case v == nil:
		return rankNull
	case expr.IsUndefined(v):
		return rankUndefined
	case number.IsNumber(v):
		return rankNumber
	}

	switch v.(type) {
	case bool:
		return rankBool
	case string:
		return rankString
	}
	if document.KindOf(v) != document.KindScalar {
		return rankContainer
	}
	return rankUndefined
}
