package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/exit"
	"github.com/jacoelho/treepath/internal/output"
	"github.com/jacoelho/treepath/internal/pathquery"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// Expression engines selectable with --engine.
const (
	EngineNative = "native"
	EngineCEL    = "cel"
)

const stdinName = "-"

var (
	ErrNoQuery         = errors.New("no query provided")
	ErrUnknownEngine   = errors.New("unknown expression engine")
	ErrInvalidMaxNodes = errors.New("max-nodes must not be negative")
)

// Config represents the complete configuration for the treepath tool.
type Config struct {
	Query string
	Files []string // "-" reads stdin

	ResultType pathquery.ResultType
	EvalType   pathquery.EvalType
	Engine     string
	Collation  *language.Tag
	MaxNodes   int

	InputFormat document.Format
	Output      output.Format
	NoColor     bool

	RFC9535    bool
	ExitStatus bool
	Debug      bool

	// Explain prints the compiled steps instead of evaluating.
	Explain bool
}

// Inputs returns the files to read, stdin when none were named.
func (c *Config) Inputs() []string {
	if len(c.Files) == 0 {
		return []string{stdinName}
	}
	return c.Files
}

// IsStdin reports whether name refers to standard input.
func IsStdin(name string) bool {
	return name == stdinName
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Query) == "" {
		return ErrNoQuery
	}

	switch c.Engine {
	case EngineNative, EngineCEL:
	default:
		return fmt.Errorf("%w %q (want native or cel)", ErrUnknownEngine, c.Engine)
	}

	if c.MaxNodes < 0 {
		return ErrInvalidMaxNodes
	}

	if c.ResultType == pathquery.ResultPath && c.EvalType == pathquery.EvalResult {
		return fmt.Errorf("%w: result type %s cannot be combined with eval type %s", pathquery.ErrUsage, c.ResultType, c.EvalType)
	}

	if c.RFC9535 && c.EvalType == pathquery.EvalResult {
		return fmt.Errorf("%w: --rfc9535 requires eval type VALUE", pathquery.ErrUsage)
	}

	if c.Explain {
		return nil
	}

	for _, file := range c.Files {
		if IsStdin(file) {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("document %s not found: %w", file, err)
		}
	}

	return nil
}

// flags holds raw flag values before they are parsed into Config.
type flags struct {
	resultType  string
	evalType    string
	inputFormat string
	output      string
	engine      string
	collate     string
	maxNodes    int
	rfc9535     bool
	exitStatus  bool
	noColor     bool
	debug       bool
}

func (f *flags) config(query string, files []string, explain bool) (*Config, error) {
	resultType, err := pathquery.ParseResultType(f.resultType)
	if err != nil {
		return nil, err
	}
	evalType, err := pathquery.ParseEvalType(f.evalType)
	if err != nil {
		return nil, err
	}
	inputFormat, err := document.ParseFormat(f.inputFormat)
	if err != nil {
		return nil, err
	}
	out, err := output.ParseFormat(f.output)
	if err != nil {
		return nil, err
	}

	var collation *language.Tag
	if f.collate != "" {
		tag, err := language.Parse(f.collate)
		if err != nil {
			return nil, fmt.Errorf("invalid collation %q: %w", f.collate, err)
		}
		collation = &tag
	}

	return &Config{
		Query:       query,
		Files:       files,
		ResultType:  resultType,
		EvalType:    evalType,
		Engine:      strings.ToLower(f.engine),
		Collation:   collation,
		MaxNodes:    f.maxNodes,
		InputFormat: inputFormat,
		Output:      out,
		NoColor:     f.noColor,
		RFC9535:     f.rfc9535,
		ExitStatus:  f.exitStatus,
		Debug:       f.debug,
		Explain:     explain,
	}, nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n", ErrNoQuery)
	}

	var (
		f      flags
		cfg    *Config
		buffer bytes.Buffer
	)

	build := func(query string, files []string, explain bool) error {
		c, err := f.config(query, files, explain)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	}

	root := &cobra.Command{
		Use:   "treepath [flags] QUERY [FILE...]",
		Short: "Query JSON, YAML and CBOR documents with path expressions",
		Example: `  treepath '$.store.book[*].author' store.json
  treepath --result-type PATH '$..price' store.yaml
  treepath '$.store.book[?(@.price < 10)].title' < store.json
  treepath --engine cel '$.items[?(@.tags.exists(t, t == "x"))]' items.json
  treepath explain '$..book[-1:]'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return build(args[0], args[1:], false)
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&f.resultType, "result-type", "VALUE", "Result shape: VALUE, PATH or BOTH")
	pf.StringVar(&f.evalType, "eval-type", "VALUE", "Filter and script context: VALUE or RESULT")
	pf.StringVar(&f.engine, "engine", EngineNative, "Expression engine for filters, scripts and sort keys: native or cel")
	pf.StringVar(&f.collate, "collate", "", "BCP 47 language tag used to order strings in sort steps")
	pf.IntVar(&f.maxNodes, "max-nodes", 0, "Abort after producing this many matches (0 for unlimited)")
	pf.BoolVar(&f.debug, "debug", false, "Enable debug logging of each evaluation step")

	rf := root.Flags()
	rf.StringVar(&f.inputFormat, "input-format", string(document.FormatAuto), "Document format: auto, json, yaml or cbor")
	rf.StringVarP(&f.output, "output", "o", string(output.FormatJSON), "Output format: json, yaml or lines")
	rf.BoolVar(&f.rfc9535, "rfc9535", false, "Cross-check values against an RFC 9535 implementation")
	rf.BoolVarP(&f.exitStatus, "exit-status", "e", false, "Exit with status 1 when the query matches nothing")
	rf.BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(&cobra.Command{
		Use:   "explain QUERY",
		Short: "Print the compiled steps of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return build(args[0], nil, true)
		},
	})

	root.SetArgs(args[1:])
	root.SetOut(&buffer)
	root.SetErr(&buffer)

	if err := root.Execute(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, root.UsageString())
	}

	// help was printed, nothing ran
	if cfg == nil {
		return nil, exit.Success(buffer.String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n", err)
	}

	return cfg, nil
}
