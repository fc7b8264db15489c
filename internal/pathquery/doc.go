// Package pathquery selects nodes of a decoded document with path queries
// such as $.store.book[?(@.price > 10)].title.
//
// A query is compiled once into a sequence of steps and can then be
// evaluated against any number of documents, concurrently if needed.
// Documents are trees of *document.Object or map[string]any, []any and
// scalars. They are never modified.
//
// Supported steps:
//
//	.name ['name'] [0] [-1]   member of an object or element of an array
//	.* [*]                    every child
//	['a','b'] [0,2]           union of members
//	[start:end:step]          array slice, bounds optional and signed
//	..                        the match and all its descendants
//	..name                    every member called name, at any depth
//	[?(expr)]                 children for which expr is truthy
//	[(expr)]                  member, index or slice computed by expr
//	[/expr] [\expr]           sort ascending or descending by expr
//
// Expressions only see @ and $. Filters bind @ to the candidate child.
// Scripts are evaluated once per step, with @ bound to the root, or to the
// current matches when evaluating with EvalResult.
//
// Only malformed queries and invalid option combinations are reported as
// errors. An expression that fails for one candidate drops that candidate,
// and a step that does not apply to a node selects nothing from it.
package pathquery
