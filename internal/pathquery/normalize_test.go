package pathquery

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []RawStep
	}{
		{
			name:  "dot_notation",
			query: "$.store.book[*].title",
			want: []RawStep{
				{Text: "store", Pos: 2},
				{Text: "book", Pos: 8},
				{Text: "*", Bracketed: true, Pos: 12},
				{Text: "title", Pos: 16},
			},
		},
		{
			name:  "recursive_descent_is_its_own_step",
			query: "$..price",
			want: []RawStep{
				{Text: "..", Pos: 1},
				{Text: "price", Pos: 3},
			},
		},
		{
			name:  "descent_before_bracket",
			query: "$..[0]",
			want: []RawStep{
				{Text: "..", Pos: 1},
				{Text: "0", Bracketed: true, Pos: 3},
			},
		},
		{
			name:  "quoted_delimiters_are_kept",
			query: `$['a b']["c]"]`,
			want: []RawStep{
				{Text: "'a b'", Bracketed: true, Pos: 1},
				{Text: `"c]"`, Bracketed: true, Pos: 8},
			},
		},
		{
			name:  "escaped_quote",
			query: `$['it\'s']`,
			want: []RawStep{
				{Text: `'it\'s'`, Bracketed: true, Pos: 1},
			},
		},
		{
			name:  "root_marker_is_optional",
			query: "store.book",
			want: []RawStep{
				{Text: "store", Pos: 0},
				{Text: "book", Pos: 6},
			},
		},
		{
			name:  "nested_filter_is_one_step",
			query: "$[?(@.a[0] == ')')]",
			want: []RawStep{
				{Text: "?(@.a[0] == ')')", Bracketed: true, Pos: 1},
			},
		},
		{
			name:  "regex_delimiters_are_kept",
			query: `$.store.book[?(@.title =~ /]/)]`,
			want: []RawStep{
				{Text: "store", Pos: 2},
				{Text: "book", Pos: 8},
				{Text: "?(@.title =~ /]/)", Bracketed: true, Pos: 12},
			},
		},
		{
			name:  "escaped_slash_in_regex",
			query: `$[?(@ !~ /a\/[(]/i)]`,
			want: []RawStep{
				{Text: `?(@ !~ /a\/[(]/i)`, Bracketed: true, Pos: 1},
			},
		},
		{
			name:  "division_is_not_a_regex",
			query: "$[?(@.a / 2 > 1)]",
			want: []RawStep{
				{Text: "?(@.a / 2 > 1)", Bracketed: true, Pos: 1},
			},
		},
		{
			name:  "surrounding_whitespace",
			query: "  $.a[ 1:2 ] ",
			want: []RawStep{
				{Text: "a", Pos: 4},
				{Text: "1:2", Bracketed: true, Pos: 5},
			},
		},
		{
			name:  "root_only",
			query: "$",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.query)
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.query, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "blank", query: "   "},
		{name: "trailing_dot", query: "$."},
		{name: "trailing_descent", query: "$.."},
		{name: "triple_dot", query: "$...a"},
		{name: "unclosed_bracket", query: "$["},
		{name: "empty_brackets", query: "$[]"},
		{name: "stray_close", query: "$.a]"},
		{name: "mismatched_paren", query: "$[?(@.a]"},
		{name: "unterminated_quote", query: "$['abc]"},
		{name: "stray_paren", query: "$.a)"},
		{name: "unterminated_regex", query: "$[?(@.a =~ /])]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Normalize(tt.query)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Normalize(%q) error = %v, want ErrSyntax", tt.query, err)
			}
		})
	}
}
