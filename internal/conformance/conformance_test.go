package conformance

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/pathquery"
)

const storeJSON = `{
  "store": {
    "book": [
      { "category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95 },
      { "category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99 },
      { "category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99 },
      { "category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99 }
    ],
    "bicycle": { "color": "red", "price": 399 }
  }
}`

func TestCheckAgrees(t *testing.T) {
	t.Parallel()

	doc, err := document.DecodeJSON(strings.NewReader(storeJSON))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	queries := []string{
		"$.store.book[*].author",
		"$..author",
		"$.store.*",
		"$.store..price",
		"$..book[2]",
		"$..book[-1:]",
		"$..book[0,1]",
		"$..book[:2]",
		"$..book[?(@.isbn)]",
		"$..book[?(@.price < 10)]",
		"$..*",
		"store.bicycle.color",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			t.Parallel()

			result, err := pathquery.Evaluate(doc, query)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			report, err := Check(doc, query, result.Values)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !report.Supported {
				t.Fatalf("query reported unsupported: %s", report.Reason)
			}
			if !report.Agrees() {
				t.Errorf("%s\nmissing: %v\nextra: %v", report, report.Missing, report.Extra)
			}
		})
	}
}

func TestCheckReportsDivergence(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"a": []any{1, 2, 2, 3}}

	report, err := Check(doc, "$.a[*]", []any{1, 2, 4})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Agrees() {
		t.Fatal("Agrees() = true, want divergence")
	}
	if diff := cmp.Diff([]any{float64(2), float64(3)}, report.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{4}, report.Extra); diff != "" {
		t.Errorf("Extra mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckUnsupported(t *testing.T) {
	t.Parallel()

	report, err := Check(map[string]any{}, "$.a[(@.length - 1)]", nil)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Supported || report.Reason == "" {
		t.Errorf("report = %+v, want unsupported with a reason", report)
	}
	if !report.Agrees() {
		t.Error("unsupported queries are not divergences")
	}
	if !strings.Contains(report.String(), "not an RFC 9535 query") {
		t.Errorf("String() = %q", report.String())
	}
}
