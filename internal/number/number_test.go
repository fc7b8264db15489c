package number

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		ok    bool
		want  string
	}{
		{name: "int", input: int(10), ok: true, want: "10"},
		{name: "uint64", input: uint64(math.MaxUint64), ok: true, want: "18446744073709551615"},
		{name: "float64", input: 12.5, ok: true, want: "12.5"},
		{name: "json_number", input: json.Number("42"), ok: true, want: "42"},
		{name: "decimal", input: decimal.RequireFromString("0.25"), ok: true, want: "0.25"},
		{name: "large_exponent", input: json.Number("1e300"), ok: true, want: "1e300"},
		{name: "trailing_zeros_rounded", input: json.Number("1." + strings.Repeat("0", 500)), ok: true, want: "1"},
		{name: "huge_exponent", input: json.Number("1e50000000"), ok: false},
		{name: "huge_negative_exponent_underflows", input: json.Number("1e-50000000"), ok: true, want: "0"},
		{name: "huge_decimal", input: decimal.New(1, 50000000), ok: false},
		{name: "bad_json_number", input: json.Number("x"), ok: false},
		{name: "non_numeric", input: "x", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ToDecimal(tt.input)
			if ok != tt.ok {
				t.Fatalf("ToDecimal(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("ToDecimal(%v) value = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestToDecimalIsExact(t *testing.T) {
	t.Parallel()

	a, ok := ToDecimal(json.Number("0.1"))
	if !ok {
		t.Fatal("ToDecimal(0.1) not a number")
	}
	b, _ := ToDecimal(json.Number("0.2"))
	if !a.Add(b).Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("0.1 + 0.2 = %s, want 0.3", a.Add(b))
	}

	for _, v := range []any{math.NaN(), math.Inf(1), "1", nil, true} {
		if _, ok := ToDecimal(v); ok {
			t.Errorf("ToDecimal(%v) ok = true, want false", v)
		}
	}
}

func TestToInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input any
		want  int
		ok    bool
	}{
		{input: int64(7), want: 7, ok: true},
		{input: json.Number("-2"), want: -2, ok: true},
		{input: 3.0, want: 3, ok: true},
		{input: 4.2},
		{input: "4"},
		{input: float64(math.MaxInt64)},
	}

	for _, tt := range tests {
		got, ok := ToInt(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ToInt(%v) = (%d, %t), want (%d, %t)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input any
		want  any
		ok    bool
	}{
		{input: json.Number("42"), want: int64(42), ok: true},
		{input: json.Number("4.5"), want: 4.5, ok: true},
		{input: decimal.NewFromInt(-3), want: int64(-3), ok: true},
		{input: "x"},
	}

	for _, tt := range tests {
		got, ok := Plain(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Plain(%v) = (%v, %t), want (%v, %t)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
