package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jacoelho/treepath/internal/celexpr"
	"github.com/jacoelho/treepath/internal/config"
	"github.com/jacoelho/treepath/internal/conformance"
	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/exit"
	"github.com/jacoelho/treepath/internal/output"
	"github.com/jacoelho/treepath/internal/pathquery"
	"github.com/jacoelho/treepath/internal/suggest"
)

type Runner struct {
	config    *config.Config
	query     *pathquery.Query
	runID     string
	input     io.Reader
	output    io.Writer
	errOutput io.Writer
}

// New compiles the configured query. Malformed queries are usage errors.
func New(cfg *config.Config) (*Runner, *exit.Result) {
	compiler, err := newCompiler(cfg.Engine)
	if err != nil {
		return nil, exit.Usagef("Error creating expression engine: %v\n", err)
	}

	opts := []pathquery.Option{
		pathquery.WithCompiler(compiler),
		pathquery.WithResultType(cfg.ResultType),
		pathquery.WithEvalType(cfg.EvalType),
		pathquery.WithNodeLimit(cfg.MaxNodes),
	}
	if cfg.Collation != nil {
		opts = append(opts, pathquery.WithCollation(*cfg.Collation))
	}

	query, err := pathquery.Compile(cfg.Query, opts...)
	if err != nil {
		return nil, exit.Usagef("Error: %v\n", err)
	}

	return &Runner{
		config:    cfg,
		query:     query,
		runID:     uuid.NewString(),
		input:     os.Stdin,
		output:    os.Stdout,
		errOutput: os.Stderr,
	}, nil
}

func newCompiler(engine string) (pathquery.ExpressionCompiler, error) {
	switch engine {
	case config.EngineCEL:
		return celexpr.NewCompiler()
	default:
		return pathquery.NativeCompiler{}, nil
	}
}

func (r *Runner) SetInput(in io.Reader) {
	r.input = in
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
}

func (r *Runner) payloadWriter() io.Writer {
	if r.output == nil {
		return io.Discard
	}
	return r.output
}

func (r *Runner) errorWriter() io.Writer {
	if r.errOutput == nil {
		return io.Discard
	}
	return r.errOutput
}

func (r *Runner) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errorWriter(), format, args...)
}

func (r *Runner) logger() *slog.Logger {
	level := slog.LevelWarn
	if r.config.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(r.errorWriter(), &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run_id", r.runID)
}

// Run evaluates the query against every input and returns the process
// exit code.
func (r *Runner) Run(ctx context.Context) int {
	if r.config.Explain {
		return r.explain()
	}

	logger := r.logger()
	writer := output.NewWriter(r.payloadWriter(), r.config.Output, r.config.NoColor)
	matched := false

	for _, name := range r.config.Inputs() {
		if err := ctx.Err(); err != nil {
			r.logf("Interrupted before %s\n", name)
			return exit.CodeInterrupted
		}

		start := time.Now()
		doc, err := r.decode(name)
		if err != nil {
			r.logf("Error: %s: %v\n", name, err)
			return exit.CodeInput
		}

		result, err := r.query.Evaluate(doc, pathquery.WithLogger(logger.With("component", "pathquery", "input", name)))
		if err != nil {
			r.logf("Error: %s: %v\n", name, err)
			return evaluationExitCode(err)
		}

		logger.Debug("document evaluated",
			"input", name,
			"matches", result.Len(),
			"elapsed", time.Since(start),
		)

		if err := writer.Write(result); err != nil {
			r.logf("Error formatting results: %v\n", err)
			return exit.CodeInput
		}

		if result.Len() > 0 {
			matched = true
		} else {
			for _, hint := range suggest.Missing(doc, r.query.Steps()) {
				r.logf("%s: %s\n", name, hint)
			}
		}

		if r.config.RFC9535 {
			if err := r.crossCheck(doc, result, logger); err != nil {
				r.logf("Error: %s: %v\n", name, err)
				return exit.CodeInput
			}
		}
	}

	if !matched && r.config.ExitStatus {
		return exit.CodeNoMatch
	}
	return exit.CodeOK
}

func evaluationExitCode(err error) int {
	if errors.Is(err, pathquery.ErrUsage) {
		return exit.CodeUsage
	}
	return exit.CodeInput
}

// decode reads a whole input so the format can be sniffed from its name
// and content.
func (r *Runner) decode(name string) (any, error) {
	var (
		data []byte
		err  error
	)
	if config.IsStdin(name) {
		data, err = io.ReadAll(r.input)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	format := r.config.InputFormat
	if format == document.FormatAuto {
		if config.IsStdin(name) {
			name = ""
		}
		format = document.DetectFormat(name, data)
	}

	return document.Decode(bytes.NewReader(data), format)
}

// crossCheck compares the selected values with an RFC 9535 evaluation of
// the same query.
func (r *Runner) crossCheck(doc any, result *pathquery.Result, logger *slog.Logger) error {
	values := result.Values
	if result.Type == pathquery.ResultPath {
		valueResult, err := r.query.Evaluate(doc, pathquery.WithResultType(pathquery.ResultValue), pathquery.WithLogger(logger))
		if err != nil {
			return err
		}
		values = valueResult.Values
	}

	report, err := conformance.Check(doc, r.config.Query, values)
	if err != nil {
		return fmt.Errorf("rfc 9535 cross-check: %w", err)
	}

	if !report.Agrees() {
		logger.Warn("rfc 9535 divergence",
			"query", report.Query,
			"missing", len(report.Missing),
			"extra", len(report.Extra),
		)
	}
	r.logf("%s\n", report)
	return nil
}
