package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"
)

// ErrMalformed indicates input that could not be decoded into a tree.
var ErrMalformed = errors.New("document: malformed input")

// Format names a serialized document encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unknown document format %q", s)
	}
}

// DetectFormat guesses the encoding from the file name, falling back to the
// first bytes of the content.
func DetectFormat(name string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	}

	if len(head) > 0 {
		b := head[0]
		// CBOR arrays, maps and the self-describe tag.
		if (b >= 0x80 && b <= 0xbf) || b == 0xd9 {
			return FormatCBOR
		}
	}

	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads a single document in the given format.
// FormatAuto sniffs the content.
func Decode(r io.Reader, format Format) (any, error) {
	if format == FormatAuto || format == "" {
		br := bufio.NewReader(r)
		head, _ := br.Peek(64)
		format = DetectFormat("", head)
		r = br
	}

	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	case FormatCBOR:
		return DecodeCBOR(r)
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// DecodeJSON decodes one JSON value. Objects become *Object, numbers json.Number.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty JSON input", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	value, err := decodeJSONValue(dec, tok)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformed)
	}
	return value, nil
}

func decodeJSONValue(dec *json.Decoder, tok json.Token) (any, error) {
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch d {
	case '{':
		obj := NewObject(4)
		for {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if end, ok := keyTok.(json.Delim); ok && end == '}' {
				return obj, nil
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("%w: object key is not a string", ErrMalformed)
			}

			valueTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			value, err := decodeJSONValue(dec, valueTok)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
	case '[':
		arr := make([]any, 0)
		for {
			elemTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if end, ok := elemTok.(json.Delim); ok && end == ']' {
				return arr, nil
			}
			value, err := decodeJSONValue(dec, elemTok)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, d)
	}
}

// DecodeYAML decodes the first YAML document, keeping mapping order.
func DecodeYAML(r io.Reader) (any, error) {
	dec := yaml.NewDecoder(r, yaml.UseOrderedMap())

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty YAML input", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromYAML(raw), nil
}

func fromYAML(v any) any {
	switch n := v.(type) {
	case yaml.MapSlice:
		obj := NewObject(len(n))
		for _, item := range n {
			obj.Set(keyString(item.Key), fromYAML(item.Value))
		}
		return obj
	case map[string]any:
		obj := NewObject(len(n))
		for k, child := range Children(n) {
			obj.Set(k.Name, fromYAML(child))
		}
		return obj
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = fromYAML(item)
		}
		return out
	default:
		return v
	}
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("document: invalid CBOR decode options: %v", err))
	}
	return dm
}()

// DecodeCBOR decodes one CBOR data item. Maps must have text keys.
func DecodeCBOR(r io.Reader) (any, error) {
	var raw any
	if err := cborDecMode.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CBOR input", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return raw, nil
}
