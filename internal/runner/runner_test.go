package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacoelho/treepath/internal/config"
	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/exit"
	"github.com/jacoelho/treepath/internal/output"
	"github.com/jacoelho/treepath/internal/pathquery"
)

const storeJSON = `{
  "store": {
    "book": [
      {"title": "Sayings of the Century", "author": "Nigel Rees", "price": 8.95},
      {"title": "Moby Dick", "author": "Herman Melville", "isbn": "0-553-21311-3", "price": 8.99},
      {"title": "The Lord of the Rings", "author": "J. R. R. Tolkien", "isbn": "0-395-19395-8", "price": 22.99}
    ],
    "bicycle": {"color": "red", "price": 399}
  }
}`

const storeYAML = `store:
  book:
    - title: Sayings of the Century
      price: 8.95
    - title: Moby Dick
      price: 8.99
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newConfig(query string, files ...string) *config.Config {
	return &config.Config{
		Query:       query,
		Files:       files,
		Engine:      config.EngineNative,
		InputFormat: document.FormatAuto,
		Output:      output.FormatLines,
		NoColor:     true,
	}
}

type run struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, cfg *config.Config, stdin string) run {
	t.Helper()

	r, result := New(cfg)
	if result != nil {
		t.Fatalf("New() exit result = %d %q", result.ExitCode, result.Message)
	}

	var stdout, stderr bytes.Buffer
	r.SetInput(strings.NewReader(stdin))
	r.SetOutput(&stdout)
	r.SetErrorOutput(&stderr)

	code := r.Run(context.Background())
	return run{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun(t *testing.T) {
	t.Parallel()

	jsonFile := writeFile(t, "store.json", storeJSON)
	yamlFile := writeFile(t, "store.yaml", storeYAML)

	tests := []struct {
		name       string
		cfg        func() *config.Config
		stdin      string
		wantCode   int
		wantStdout string
	}{
		{
			name: "json_file",
			cfg: func() *config.Config {
				return newConfig("$.store.book[*].author", jsonFile)
			},
			wantStdout: "Nigel Rees\nHerman Melville\nJ. R. R. Tolkien\n",
		},
		{
			name: "yaml_file",
			cfg: func() *config.Config {
				return newConfig("$..title", yamlFile)
			},
			wantStdout: "Sayings of the Century\nMoby Dick\n",
		},
		{
			name: "stdin_sniffed",
			cfg: func() *config.Config {
				return newConfig("$.store.bicycle.color")
			},
			stdin:      storeJSON,
			wantStdout: "red\n",
		},
		{
			name: "stdin_yaml_by_flag",
			cfg: func() *config.Config {
				cfg := newConfig("$.store.book[-1:].price", "-")
				cfg.InputFormat = document.FormatYAML
				return cfg
			},
			stdin:      storeYAML,
			wantStdout: "8.99\n",
		},
		{
			name: "paths",
			cfg: func() *config.Config {
				cfg := newConfig("$.store.book[?(@.price < 10)]", jsonFile)
				cfg.ResultType = pathquery.ResultPath
				return cfg
			},
			wantStdout: "$['store']['book'][0]\n$['store']['book'][1]\n",
		},
		{
			name: "several_files",
			cfg: func() *config.Config {
				return newConfig("$.store.book[0].price", jsonFile, yamlFile)
			},
			wantStdout: "8.95\n8.95\n",
		},
		{
			name: "cel_engine",
			cfg: func() *config.Config {
				cfg := newConfig("$.store.book[?(has(@.isbn) && @.price > 10)].title", jsonFile)
				cfg.Engine = config.EngineCEL
				return cfg
			},
			wantStdout: "The Lord of the Rings\n",
		},
		{
			name: "sorted",
			cfg: func() *config.Config {
				return newConfig("$.store.book[*][\\@.price].author", jsonFile)
			},
			wantStdout: "J. R. R. Tolkien\nHerman Melville\nNigel Rees\n",
		},
		{
			name: "no_match_succeeds_by_default",
			cfg: func() *config.Config {
				return newConfig("$.store.toy", jsonFile)
			},
		},
		{
			name: "no_match_with_exit_status",
			cfg: func() *config.Config {
				cfg := newConfig("$.store.toy", jsonFile)
				cfg.ExitStatus = true
				return cfg
			},
			wantCode: exit.CodeNoMatch,
		},
		{
			name: "malformed_document",
			cfg: func() *config.Config {
				return newConfig("$.a", writeFile(t, "bad.json", `{"a":`))
			},
			wantCode: exit.CodeInput,
		},
		{
			name: "node_limit",
			cfg: func() *config.Config {
				cfg := newConfig("$..*", jsonFile)
				cfg.MaxNodes = 3
				return cfg
			},
			wantCode: exit.CodeInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := execute(t, tt.cfg(), tt.stdin)
			if got.code != tt.wantCode {
				t.Fatalf("Run() = %d, want %d (stderr %q)", got.code, tt.wantCode, got.stderr)
			}
			if tt.wantCode == exit.CodeOK && got.stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", got.stdout, tt.wantStdout)
			}
		})
	}
}

func TestRunSuggestsMissingMembers(t *testing.T) {
	t.Parallel()

	got := execute(t, newConfig("$.store.book[*].titel", writeFile(t, "store.json", storeJSON)), "")

	if got.code != exit.CodeOK {
		t.Fatalf("Run() = %d, stderr %q", got.code, got.stderr)
	}
	if got.stdout != "" {
		t.Errorf("stdout = %q, want empty", got.stdout)
	}
	if !strings.Contains(got.stderr, "did you mean 'title'") {
		t.Errorf("stderr = %q, want a suggestion for 'title'", got.stderr)
	}
}

func TestRunJSONOutput(t *testing.T) {
	t.Parallel()

	cfg := newConfig("$.store.bicycle", writeFile(t, "store.json", storeJSON))
	cfg.Output = output.FormatJSON
	cfg.ResultType = pathquery.ResultBoth

	got := execute(t, cfg, "")
	want := `[
  {
    "path": "$['store']['bicycle']",
    "value": {
      "color": "red",
      "price": 399
    }
  }
]
`
	if got.stdout != want {
		t.Errorf("stdout = %s, want %s", got.stdout, want)
	}
}

func TestRunCrossCheck(t *testing.T) {
	t.Parallel()

	jsonFile := writeFile(t, "store.json", storeJSON)

	tests := []struct {
		name       string
		query      string
		wantStderr string
	}{
		{name: "agrees", query: "$..book[?(@.price < 10)].title", wantStderr: "agrees with RFC 9535"},
		{name: "paths_checked_by_value", query: "$.store.*", wantStderr: "agrees with RFC 9535"},
		{name: "script_unsupported", query: "$.store.book[(1)]", wantStderr: "not an RFC 9535 query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newConfig(tt.query, jsonFile)
			cfg.RFC9535 = true
			if tt.name == "paths_checked_by_value" {
				cfg.ResultType = pathquery.ResultPath
			}

			got := execute(t, cfg, "")
			if got.code != exit.CodeOK {
				t.Fatalf("Run() = %d, stderr %q", got.code, got.stderr)
			}
			if !strings.Contains(got.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", got.stderr, tt.wantStderr)
			}
		})
	}
}

func TestRunDebugLogsSteps(t *testing.T) {
	t.Parallel()

	cfg := newConfig("$.store.bicycle.color", writeFile(t, "store.json", storeJSON))
	cfg.Debug = true

	got := execute(t, cfg, "")
	for _, want := range []string{"run_id=", "msg=\"step applied\"", "msg=\"document evaluated\""} {
		if !strings.Contains(got.stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, got.stderr)
		}
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	cfg := newConfig("$..book[-1:].title")
	cfg.Explain = true

	got := execute(t, cfg, "")
	if got.code != exit.CodeOK {
		t.Fatalf("Run() = %d, stderr %q", got.code, got.stderr)
	}

	want := "1  descent  ..['book']\n" +
		"2  slice    [-1:]\n" +
		"3  member   ['title']\n" +
		"canonical: $..['book'][-1:]['title']\n"
	if got.stdout != want {
		t.Errorf("stdout = %q, want %q", got.stdout, want)
	}
}

func TestNewRejectsMalformedQuery(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"$.a[", "$.a[?(@.b >)]", "$.a[^(@.x)]"} {
		_, result := New(newConfig(query))
		if result == nil {
			t.Errorf("New(%q) expected exit result", query)
			continue
		}
		if result.ExitCode != exit.CodeUsage {
			t.Errorf("New(%q) ExitCode = %d, want %d", query, result.ExitCode, exit.CodeUsage)
		}
	}
}

func TestRunInterrupted(t *testing.T) {
	t.Parallel()

	r, result := New(newConfig("$.a", writeFile(t, "doc.json", `{"a":1}`)))
	if result != nil {
		t.Fatal(result.Message)
	}
	r.SetOutput(&bytes.Buffer{})
	r.SetErrorOutput(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := r.Run(ctx); code != exit.CodeInterrupted {
		t.Errorf("Run() = %d, want %d", code, exit.CodeInterrupted)
	}
}
