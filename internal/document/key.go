package document

import (
	"strconv"
	"strings"
)

// Key is a single location token: a member name or a sequence index.
type Key struct {
	Name    string
	Index   int
	IsIndex bool
}

// Name builds a member key.
func Name(name string) Key {
	return Key{Name: name}
}

// Index builds a sequence index key.
func Index(index int) Key {
	return Key{Index: index, IsIndex: true}
}

// String renders the canonical bracket segment, e.g. ['title'] or [3].
func (k Key) String() string {
	if k.IsIndex {
		return "[" + strconv.Itoa(k.Index) + "]"
	}
	return "[" + QuoteName(k.Name) + "]"
}

// QuoteName single-quotes a member name, escaping quotes and backslashes.
func QuoteName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '\'' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('\'')
	return b.String()
}

// memberName is the name used to look a key up in a keyed collection.
func (k Key) memberName() string {
	if k.IsIndex {
		return strconv.Itoa(k.Index)
	}
	return k.Name
}

// sequenceIndex is the index used to look a key up in an ordered sequence.
func (k Key) sequenceIndex() (int, bool) {
	if k.IsIndex {
		return k.Index, true
	}
	n, err := strconv.Atoi(k.Name)
	if err != nil {
		return 0, false
	}
	return n, true
}
