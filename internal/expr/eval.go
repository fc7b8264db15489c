package expr

import (
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/number"
	"github.com/shopspring/decimal"
)

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined is the value of a member that does not exist.
var Undefined any = undefinedValue{}

// IsUndefined reports whether v is the result of reading a missing member.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

type scope struct {
	current any
	root    any
}

func evaluate(n node, env scope) (any, error) {
	switch current := n.(type) {
	case literalNode:
		return current.value, nil
	case currentNode:
		return env.current, nil
	case rootNode:
		return env.root, nil
	case memberNode:
		target, err := evaluate(current.target, env)
		if err != nil {
			return nil, err
		}
		return member(target, current.name)
	case indexNode:
		target, err := evaluate(current.target, env)
		if err != nil {
			return nil, err
		}
		index, err := evaluate(current.index, env)
		if err != nil {
			return nil, err
		}
		return element(target, index)
	case unaryNode:
		right, err := evaluate(current.right, env)
		if err != nil {
			return nil, err
		}
		switch current.op {
		case tokenNot:
			return !Truthy(right), nil
		case tokenMinus:
			d, ok := number.ToDecimal(right)
			if !ok {
				return nil, evaluationError("cannot negate %s", describe(right))
			}
			return d.Neg(), nil
		default:
			return nil, evaluationError("unsupported unary operator %s", current.op)
		}
	case matchNode:
		target, err := evaluate(current.target, env)
		if err != nil {
			return nil, err
		}
		s, ok := target.(string)
		if !ok {
			return false, nil
		}
		return current.re.MatchString(s) != current.negate, nil
	case binaryNode:
		return evaluateBinary(current, env)
	default:
		return nil, evaluationError("unsupported expression node %T", n)
	}
}

func evaluateBinary(n binaryNode, env scope) (any, error) {
	left, err := evaluate(n.left, env)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenAnd:
		if !Truthy(left) {
			return false, nil
		}
		right, err := evaluate(n.right, env)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	case tokenOr:
		if Truthy(left) {
			return true, nil
		}
		right, err := evaluate(n.right, env)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	right, err := evaluate(n.right, env)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenEqual:
		return strictEqual(left, right), nil
	case tokenNotEqual:
		return !strictEqual(left, right), nil
	case tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual:
		cmp, ok := order(left, right)
		if !ok {
			return false, nil
		}
		switch n.op {
		case tokenLess:
			return cmp < 0, nil
		case tokenLessEqual:
			return cmp <= 0, nil
		case tokenGreater:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case tokenPlus:
		return add(left, right)
	case tokenMinus, tokenStar, tokenSlash, tokenPercent:
		return arithmetic(n.op, left, right)
	default:
		return nil, evaluationError("unsupported binary operator %s", n.op)
	}
}

// member reads a named property. Reading from null or undefined fails,
// reading a missing property yields Undefined.
func member(target any, name string) (any, error) {
	if target == nil || IsUndefined(target) {
		return nil, evaluationError("cannot read property %q of %s", name, describe(target))
	}

	switch t := target.(type) {
	case []any:
		if name == "length" {
			return decimal.NewFromInt(int64(len(t))), nil
		}
	case string:
		if name == "length" {
			return decimal.NewFromInt(int64(utf8.RuneCountInString(t))), nil
		}
		return Undefined, nil
	}

	if document.KindOf(target) == document.KindScalar {
		return Undefined, nil
	}

	value, _, ok := document.Child(target, document.Name(name))
	if !ok {
		return Undefined, nil
	}
	return value, nil
}

// element reads target[index]. Numeric indices address sequences and
// string indices behave like member access.
func element(target any, index any) (any, error) {
	if s, ok := index.(string); ok {
		return member(target, s)
	}

	i, ok := number.ToInt(index)
	if !ok {
		return nil, evaluationError("invalid index %s", describe(index))
	}

	if target == nil || IsUndefined(target) {
		return nil, evaluationError("cannot read index %d of %s", i, describe(target))
	}

	switch t := target.(type) {
	case []any:
		if i < 0 || i >= len(t) {
			return Undefined, nil
		}
		return t[i], nil
	default:
		return member(target, strconv.Itoa(i))
	}
}

func add(left, right any) (any, error) {
	ld, lok := number.ToDecimal(left)
	rd, rok := number.ToDecimal(right)
	if lok && rok {
		return ld.Add(rd), nil
	}

	_, lstr := left.(string)
	_, rstr := right.(string)
	if lstr || rstr {
		ls, err := stringify(left)
		if err != nil {
			return nil, err
		}
		rs, err := stringify(right)
		if err != nil {
			return nil, err
		}
		return ls + rs, nil
	}

	return nil, evaluationError("cannot add %s and %s", describe(left), describe(right))
}

func arithmetic(op tokenType, left, right any) (any, error) {
	ld, lok := number.ToDecimal(left)
	rd, rok := number.ToDecimal(right)
	if !lok || !rok {
		return nil, evaluationError("operator %s requires numbers, got %s and %s", op, describe(left), describe(right))
	}

	switch op {
	case tokenMinus:
		return ld.Sub(rd), nil
	case tokenStar:
		return ld.Mul(rd), nil
	case tokenSlash:
		if rd.IsZero() {
			return nil, evaluationError("division by zero")
		}
		return ld.Div(rd), nil
	case tokenPercent:
		if rd.IsZero() {
			return nil, evaluationError("modulo by zero")
		}
		return ld.Mod(rd), nil
	default:
		return nil, evaluationError("unsupported arithmetic operator %s", op)
	}
}

// strictEqual compares without type coercion: values of different kinds
// are never equal.
func strictEqual(left, right any) bool {
	if IsUndefined(left) || IsUndefined(right) {
		return IsUndefined(left) && IsUndefined(right)
	}
	if left == nil || right == nil {
		return left == nil && right == nil
	}

	if ld, ok := number.ToDecimal(left); ok {
		rd, ok := number.ToDecimal(right)
		return ok && ld.Equal(rd)
	}

	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	}

	if document.KindOf(left) != document.KindScalar && document.KindOf(left) == document.KindOf(right) {
		return reflect.DeepEqual(document.Plain(left), document.Plain(right))
	}

	return reflect.DeepEqual(left, right)
}

// order compares two numbers or two strings. Other combinations are unordered.
func order(left, right any) (int, bool) {
	if ld, ok := number.ToDecimal(left); ok {
		rd, ok := number.ToDecimal(right)
		if !ok {
			return 0, false
		}
		return ld.Cmp(rd), true
	}

	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch {
		case ls < rs:
			return -1, true
		case ls > rs:
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

// Truthy applies the usual scripting notion of truth: null, undefined,
// false, zero and the empty string are false, everything else is true.
func Truthy(v any) bool {
	if v == nil || IsUndefined(v) {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	if d, ok := number.ToDecimal(v); ok {
		return !d.IsZero()
	}
	return true
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "null", nil
	case undefinedValue:
		return "undefined", nil
	}
	if d, ok := number.ToDecimal(v); ok {
		return d.String(), nil
	}
	return "", evaluationError("cannot convert %s to string", describe(v))
}

func describe(v any) string {
	switch {
	case v == nil:
		return "null"
	case IsUndefined(v):
		return "undefined"
	case number.IsNumber(v):
		return "number"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	return document.KindOf(v).String()
}
