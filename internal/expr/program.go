// Package expr implements the small expression language used inside path
// filters and scripts.
//
// Expressions can only see two values: the current node, written @, and the
// document root, written $. There are no other identifiers, no function
// calls and no assignment, so evaluation cannot reach or change anything
// outside the document.
//
//	@.price > 10 && @.category == 'fiction'
//	@.title =~ /^the/i
//	$.limits.max - @.used >= 0
//	@.length - 1
package expr

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	source string
	root   node
}

// Compile parses source into a Program.
func Compile(source string) (*Program, error) {
	root, err := parse(source)
	if err != nil {
		return nil, err
	}
	return &Program{source: source, root: root}, nil
}

// Evaluate runs the program with @ bound to current and $ bound to root.
// Numbers in the result are decimal.Decimal values.
func (p *Program) Evaluate(current, root any) (any, error) {
	return evaluate(p.root, scope{current: current, root: root})
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

func (p *Program) String() string {
	return p.source
}
