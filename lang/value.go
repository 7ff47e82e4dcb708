package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Kind identifies the variant of a [Value].
type Kind int

const (
	KindBool Kind = iota
	KindStr
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"

	case KindStr:
		return "Str"

	default:
		return "Unknown"
	}
}

// Value is an immutable runtime value. The only implementations are
// [Bool] and [Str].
type Value interface {
	Kind() Kind
	// Truth converts the value to a boolean: a Bool is itself, a Str is
	// true iff it is non-empty.
	Truth() bool
	// String returns the string form used by concatenation.
	String() string

	value()
}

// Bool is a boolean [Value].
type Bool bool

// Str is a string [Value].
type Str string

func (Bool) Kind() Kind { return KindBool }
func (Str) Kind() Kind  { return KindStr }

func (b Bool) Truth() bool { return bool(b) }
func (s Str) Truth() bool  { return s != "" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (s Str) String() string  { return string(s) }

func (Bool) value() {}
func (Str) value()  {}

// LogValue implements slog.LogValuer.
func (b Bool) LogValue() slog.Value { return slog.BoolValue(bool(b)) }

// LogValue implements slog.LogValuer.
func (s Str) LogValue() slog.Value { return slog.StringValue(string(s)) }

// Equal implements the comparison used by == and !=. Two strings compare
// case-insensitively; any other pairing compares the operands' truth
// values.
func Equal(a, b Value) bool {
	as, aok := a.(Str)
	bs, bok := b.(Str)

	if aok && bok {
		return strings.EqualFold(string(as), string(bs))
	}

	return a.Truth() == b.Truth()
}

// MakeValue converts a native bool or string into a [Value]. It returns
// false for any other type.
func MakeValue(v any) (Value, bool) {
	switch x := v.(type) {
	case Value:
		return x, true

	case bool:
		return Bool(x), true

	case string:
		return Str(x), true

	default:
		return nil, false
	}
}
