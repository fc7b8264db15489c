package number

import (
	"encoding/json"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// maxExponent bounds the decimal exponent of a number. Arithmetic and
// comparison rescale operands to a common exponent, so larger magnitudes
// would allocate coefficients with millions of digits.
const maxExponent = 400

// ToDecimal converts supported numeric values to an exact decimal.
// NaN and infinities are not numbers for this purpose. A json.Number with
// an exponent beyond maxExponent is rounded to float64 and rejected when
// that overflows.
func ToDecimal(value any) (decimal.Decimal, bool) {
	switch current := value.(type) {
	case decimal.Decimal:
		return bounded(current)
	case int:
		return decimal.NewFromInt(int64(current)), true
	case int8:
		return decimal.NewFromInt(int64(current)), true
	case int16:
		return decimal.NewFromInt(int64(current)), true
	case int32:
		return decimal.NewFromInt(int64(current)), true
	case int64:
		return decimal.NewFromInt(current), true
	case uint:
		return fromUint(uint64(current)), true
	case uint8:
		return decimal.NewFromInt(int64(current)), true
	case uint16:
		return decimal.NewFromInt(int64(current)), true
	case uint32:
		return decimal.NewFromInt(int64(current)), true
	case uint64:
		return fromUint(current), true
	case float32:
		return fromFloat(float64(current))
	case float64:
		return fromFloat(current)
	case json.Number:
		parsed, err := decimal.NewFromString(current.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		if d, ok := bounded(parsed); ok {
			return d, true
		}
		f, err := current.Float64()
		if err != nil {
			return decimal.Decimal{}, false
		}
		return fromFloat(f)
	default:
		return decimal.Decimal{}, false
	}
}

func bounded(d decimal.Decimal) (decimal.Decimal, bool) {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, false
	}
	return d, true
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}

// IsNumber reports whether value is one of the supported numeric types.
func IsNumber(value any) bool {
	_, ok := ToDecimal(value)
	return ok
}

// ToInt converts integral numeric values into int, rejecting fractions.
func ToInt(value any) (int, bool) {
	d, ok := ToDecimal(value)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// Plain converts json.Number and decimal.Decimal into int64 when integral
// and float64 otherwise.
func Plain(value any) (any, bool) {
	d, ok := ToDecimal(value)
	if !ok {
		return nil, false
	}
	if d.IsInteger() && d.GreaterThanOrEqual(decimal.NewFromInt(math.MinInt64)) && d.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		return d.IntPart(), true
	}
	return d.InexactFloat64(), true
}
