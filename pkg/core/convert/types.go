package convert

import (
	"fmt"
	"strconv"
	"time"
)

// TypeTag is the declared SQL data type of a proto-test column, as recorded
// in the fixture registry. Tags drive conversion dispatch.
type TypeTag string

// Known type tags. Anything else is treated as an opaque string.
const (
	TagNull     TypeTag = "null"
	TagBoolean  TypeTag = "boolean"
	TagByte     TypeTag = "byte"
	TagShort    TypeTag = "short"
	TagInteger  TypeTag = "integer"
	TagLong     TypeTag = "long"
	TagDouble   TypeTag = "double"
	TagFloat    TypeTag = "float"
	TagDate     TypeTag = "date"
	TagTime     TypeTag = "time"
	TagDatetime TypeTag = "datetime"
	TagInterval TypeTag = "interval"
	TagString   TypeTag = "string"
)

// Kind discriminates the variants of a canonical Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDate
	KindTime
	KindDatetime
	KindString
)

// String - human-readable kind name for diagnostics
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDatetime:
		return "datetime"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Value is the canonical in-memory form a driver result is compared
// against. Exactly one field besides Kind is meaningful. All temporal
// values are normalized to UTC before they are stored here, so Equal is
// plain structural equality.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Time  time.Time
	Str   string
}

// NullValue - the absent value
func NullValue() Value { return Value{Kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IntValue wraps an integer (byte/short/integer/long all collapse to int64).
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a floating-point number (float/double collapse to float64).
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// DateValue keeps only the civil date component, at midnight UTC.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// TimeValue keeps only the time-of-day component, on the zero date.
// The TIME wire struct carries no fractional seconds, so they are dropped.
func TimeValue(t time.Time) Value {
	h, min, s := t.Clock()
	return Value{Kind: KindTime, Time: time.Date(1, time.January, 1, h, min, s, 0, time.UTC)}
}

// DatetimeValue keeps the full instant, normalized to UTC.
func DatetimeValue(t time.Time) Value {
	return Value{Kind: KindDatetime, Time: t.UTC()}
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal - structural equality between canonical values
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindDate, KindTime, KindDatetime:
		return v.Time.Equal(other.Time)
	case KindString:
		return v.Str == other.Str
	default:
		return false
	}
}

// String - string representation for assertion messages
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "<null>"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindTime:
		return v.Time.Format("15:04:05")
	case KindDatetime:
		return v.Time.Format(time.RFC3339Nano)
	case KindString:
		return v.Str
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

// ConversionError - a literal failed to lex under the rules of a known tag
type ConversionError struct {
	Tag     TypeTag
	Literal string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q as %s: %v", e.Literal, e.Tag, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
