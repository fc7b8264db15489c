package document

import (
	"encoding/json"
	"iter"
	"maps"
	"reflect"
	"slices"

	"github.com/jacoelho/treepath/internal/number"
	"github.com/shopspring/decimal"
)

// Kind classifies a node of a host tree.
type Kind uint8

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// KindOf reports whether v is a keyed collection, an ordered sequence or a leaf.
func KindOf(v any) Kind {
	switch v.(type) {
	case *Object, map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindScalar
	}
}

// Child looks key up in node. For sequences, integer keys are accepted in
// either form and negative indices count from the end. The returned key is
// the one that addresses the child canonically.
func Child(node any, key Key) (any, Key, bool) {
	switch n := node.(type) {
	case *Object:
		name := key.memberName()
		v, ok := n.Get(name)
		return v, Name(name), ok
	case map[string]any:
		name := key.memberName()
		v, ok := n[name]
		return v, Name(name), ok
	case []any:
		idx, ok := key.sequenceIndex()
		if !ok {
			return nil, Key{}, false
		}
		if idx < 0 {
			idx += len(n)
		}
		if idx < 0 || idx >= len(n) {
			return nil, Key{}, false
		}
		return n[idx], Index(idx), true
	default:
		return nil, Key{}, false
	}
}

// Children enumerates the immediate children of node in enumeration order:
// insertion order for *Object, ascending key order for map[string]any and
// ascending index for sequences. Scalars have no children.
func Children(node any) iter.Seq2[Key, any] {
	return func(yield func(Key, any) bool) {
		switch n := node.(type) {
		case *Object:
			for k, v := range n.All() {
				if !yield(Name(k), v) {
					return
				}
			}
		case map[string]any:
			for _, k := range slices.Sorted(maps.Keys(n)) {
				if !yield(Name(k), n[k]) {
					return
				}
			}
		case []any:
			for i, v := range n {
				if !yield(Index(i), v) {
					return
				}
			}
		}
	}
}

type identity struct {
	ptr uintptr
	n   int
}

// Identity returns a comparable value identifying a container instance.
// Scalars and empty sequences have no identity.
func Identity(node any) (any, bool) {
	switch n := node.(type) {
	case *Object:
		if n == nil {
			return nil, false
		}
		return identity{ptr: reflect.ValueOf(n).Pointer()}, true
	case map[string]any:
		if n == nil {
			return nil, false
		}
		return identity{ptr: reflect.ValueOf(n).Pointer()}, true
	case []any:
		if len(n) == 0 {
			return nil, false
		}
		return identity{ptr: reflect.ValueOf(n).Pointer(), n: len(n)}, true
	default:
		return nil, false
	}
}

// Lookup follows keys from node using plain member and index lookups.
func Lookup(node any, keys ...Key) (any, bool) {
	current := node
	for _, k := range keys {
		next, _, ok := Child(current, k)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Plain converts a tree into map[string]any, []any and plain Go numbers,
// the shape expected by libraries that know nothing about *Object.
func Plain(node any) any {
	switch n := node.(type) {
	case *Object:
		out := make(map[string]any, n.Len())
		for k, v := range n.All() {
			out[k] = Plain(v)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = Plain(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Plain(v)
		}
		return out
	case json.Number, decimal.Decimal:
		if v, ok := number.Plain(n); ok {
			return v
		}
		return node
	default:
		return node
	}
}
