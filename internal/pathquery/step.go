package pathquery

import (
	"strconv"
	"strings"

	"github.com/jacoelho/treepath/internal/document"
)

// StepKind identifies the traversal rule of a step.
type StepKind uint8

const (
	KindMember StepKind = iota
	KindWildcard
	KindUnion
	KindSlice
	KindDescent
	KindFilter
	KindScript
	KindSort
)

var stepKindNames = [...]string{
	KindMember:   "member",
	KindWildcard: "wildcard",
	KindUnion:    "union",
	KindSlice:    "slice",
	KindDescent:  "descent",
	KindFilter:   "filter",
	KindScript:   "script",
	KindSort:     "sort",
}

func (k StepKind) String() string {
	if int(k) < len(stepKindNames) {
		return stepKindNames[k]
	}
	return "StepKind(" + strconv.Itoa(int(k)) + ")"
}

// Step is one classified location step. String returns the canonical
// bracket form, which classifies back to an equivalent step.
type Step interface {
	Kind() StepKind
	String() string
}

// MemberStep selects the child addressed by Key.
type MemberStep struct {
	Key document.Key
}

func (MemberStep) Kind() StepKind   { return KindMember }
func (s MemberStep) String() string { return s.Key.String() }

// WildcardStep selects every immediate child.
type WildcardStep struct{}

func (WildcardStep) Kind() StepKind { return KindWildcard }
func (WildcardStep) String() string { return "[*]" }

// UnionStep selects the children addressed by Keys, in the listed order.
type UnionStep struct {
	Keys []document.Key
}

func (UnionStep) Kind() StepKind { return KindUnion }

func (s UnionStep) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		segment := k.String()
		parts[i] = segment[1 : len(segment)-1]
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// SliceStep selects a range of sequence elements.
type SliceStep struct {
	Slice Slice
}

func (SliceStep) Kind() StepKind   { return KindSlice }
func (s SliceStep) String() string { return "[" + s.Slice.String() + "]" }

// DescentStep selects the match and all of its descendants in pre-order.
// With a Key it instead selects, for every one of those nodes, the child
// addressed by Key.
type DescentStep struct {
	Key *document.Key
}

func (DescentStep) Kind() StepKind { return KindDescent }

func (s DescentStep) String() string {
	if s.Key != nil {
		return descentText + s.Key.String()
	}
	return descentText
}

// FilterStep keeps the children for which Predicate is truthy.
type FilterStep struct {
	Predicate Expression
}

func (FilterStep) Kind() StepKind   { return KindFilter }
func (s FilterStep) String() string { return "[?(" + s.Predicate.String() + ")]" }

// ScriptStep computes the key, index or slice to select from an expression.
type ScriptStep struct {
	Script Expression
}

func (ScriptStep) Kind() StepKind   { return KindScript }
func (s ScriptStep) String() string { return "[(" + s.Script.String() + ")]" }

// SortKey is one ordering directive of a sort step.
type SortKey struct {
	Expr       Expression
	Descending bool
}

func (k SortKey) String() string {
	if k.Descending {
		return `\` + k.Expr.String()
	}
	return "/" + k.Expr.String()
}

// SortStep reorders the current matches without changing which are
// selected. Later keys break ties of earlier ones.
type SortStep struct {
	Keys []SortKey
}

func (SortStep) Kind() StepKind { return KindSort }

func (s SortStep) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		parts[i] = k.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Slice holds optional signed bounds with the usual start:end:step meaning.
type Slice struct {
	Start *int
	End   *int
	Step  *int
}

func (s Slice) String() string {
	var b strings.Builder
	if s.Start != nil {
		b.WriteString(strconv.Itoa(*s.Start))
	}
	b.WriteByte(':')
	if s.End != nil {
		b.WriteString(strconv.Itoa(*s.End))
	}
	if s.Step != nil {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(*s.Step))
	}
	return b.String()
}

// Indices returns the indices selected from a sequence of the given
// length. Negative bounds count from the end and out of range bounds are
// clamped, so every index is in [0, length). A negative step walks
// backwards from start.
func (s Slice) Indices(length int) []int {
	step := 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 || length <= 0 {
		return nil
	}

	if step > 0 {
		start := clampBound(s.Start, 0, length, 0, length)
		end := clampBound(s.End, length, length, 0, length)
		if start >= end {
			return nil
		}
		out := make([]int, 0, (end-start+step-1)/step)
		for i := start; i < end; i += step {
			out = append(out, i)
		}
		return out
	}

	start := clampBound(s.Start, length-1, length, -1, length-1)
	end := clampBound(s.End, -1, length, -1, length-1)
	if start <= end {
		return nil
	}
	out := make([]int, 0, (start-end-step-1)/(-step))
	for i := start; i > end; i += step {
		out = append(out, i)
	}
	return out
}

// clampBound resolves an optional bound: a missing bound takes def,
// negative bounds count from the end, and the result is kept in [lo, hi].
func clampBound(bound *int, def, length, lo, hi int) int {
	if bound == nil {
		return def
	}
	v := *bound
	if v < 0 {
		v += length
	}
	return max(lo, min(v, hi))
}
