// Package output writes query results as JSON, YAML or plain lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/number"
	"github.com/jacoelho/treepath/internal/pathquery"
	"github.com/shopspring/decimal"
)

// Format selects how results are written.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatLines Format = "lines"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatLines:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, yaml or lines)", s)
	}
}

// Writer renders results. Paths are highlighted in lines output when the
// terminal supports colour and noColor is not set.
type Writer struct {
	w      io.Writer
	format Format
	path   *color.Color
}

func NewWriter(w io.Writer, format Format, noColor bool) *Writer {
	path := color.New(color.FgCyan)
	if noColor {
		path.DisableColor()
	}
	return &Writer{w: w, format: format, path: path}
}

// Write renders one result.
func (w *Writer) Write(result *pathquery.Result) error {
	switch w.format {
	case FormatYAML:
		return w.writeYAML(result)
	case FormatLines:
		return w.writeLines(result)
	default:
		return w.writeJSON(result)
	}
}

func (w *Writer) writeJSON(result *pathquery.Result) error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result.Items()); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}

func (w *Writer) writeYAML(result *pathquery.Result) error {
	items := result.Items()
	for i, item := range items {
		items[i] = yamlValue(item)
	}

	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode yaml output: %w", err)
	}
	_, err = w.w.Write(data)
	return err
}

func (w *Writer) writeLines(result *pathquery.Result) error {
	switch result.Type {
	case pathquery.ResultPath:
		for _, p := range result.Paths {
			if _, err := fmt.Fprintln(w.w, w.path.Sprint(p)); err != nil {
				return err
			}
		}
	case pathquery.ResultBoth:
		for _, pair := range result.Pairs {
			value, err := line(pair.Value)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w.w, "%s\t%s\n", w.path.Sprint(pair.Path), value); err != nil {
				return err
			}
		}
	default:
		for _, v := range result.Values {
			value, err := line(v)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w.w, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// line renders strings raw and everything else as compact JSON.
func line(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

// yamlValue converts a result item into values the YAML encoder renders
// faithfully: ordered objects become MapSlices and decoder specific number
// types become plain Go numbers.
func yamlValue(v any) any {
	switch t := v.(type) {
	case pathquery.Pair:
		return yaml.MapSlice{
			{Key: "path", Value: t.Path},
			{Key: "value", Value: yamlValue(t.Value)},
		}
	case *document.Object:
		out := make(yaml.MapSlice, 0, t.Len())
		for k, child := range t.All() {
			out = append(out, yaml.MapItem{Key: k, Value: yamlValue(child)})
		}
		return out
	case map[string]any:
		out := make(yaml.MapSlice, 0, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			out = append(out, yaml.MapItem{Key: k, Value: yamlValue(t[k])})
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = yamlValue(child)
		}
		return out
	case json.Number, decimal.Decimal:
		if n, ok := number.Plain(t); ok {
			return n
		}
		return fmt.Sprint(t)
	default:
		return v
	}
}
