package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// referenceDate is prepended to bare time-of-day literals so that they can
// be parsed as full timestamps. Plain time parsing would pin the value to a
// year that cannot round-trip through epoch math, and the timezone offset a
// TIME literal carries must be resolved through full timestamp arithmetic.
const referenceDate = "1970-02-02T"

// Timestamp layouts accepted for date/time/datetime literals. The
// fractional-second directive is optional in Go layouts, so each shape
// covers literals with and without a fraction.
const (
	layoutOffset = "2006-01-02T15:04:05.999999999-07:00"
	layoutNaive  = "2006-01-02T15:04:05.999999999"
)

// Converter maps (declared type, literal string) fixture pairs onto the
// canonical value the driver under test is required to produce. It is the
// reference oracle for the driver's conversion and timezone rules: pure,
// deterministic, no side effects.
type Converter struct{}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert produces the canonical instance of tag out of the literal.
//
// Unrecognized tags pass through as plain strings: the oracle is permissive
// for unknown tags and strict for known ones. A literal that does not lex
// under a known tag yields a *ConversionError.
func (c *Converter) Convert(tag TypeTag, literal string) (Value, error) {
	switch tag {
	case TagNull:
		// The literal is ignored entirely.
		return NullValue(), nil

	case TagBoolean:
		switch strings.ToLower(literal) {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, &ConversionError{Tag: tag, Literal: literal,
			Err: fmt.Errorf("not a boolean literal")}

	case TagByte, TagShort, TagInteger:
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return Value{}, &ConversionError{Tag: tag, Literal: literal, Err: err}
		}
		return IntValue(n), nil

	case TagLong:
		n, err := strconv.ParseInt(strings.TrimRight(literal, "lL"), 10, 64)
		if err != nil {
			return Value{}, &ConversionError{Tag: tag, Literal: literal, Err: err}
		}
		return IntValue(n), nil

	case TagDouble:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return Value{}, &ConversionError{Tag: tag, Literal: literal, Err: err}
		}
		return FloatValue(f), nil

	case TagFloat:
		f, err := strconv.ParseFloat(strings.TrimRight(literal, "fF"), 64)
		if err != nil {
			return Value{}, &ConversionError{Tag: tag, Literal: literal, Err: err}
		}
		return FloatValue(f), nil

	case TagDate, TagTime, TagDatetime:
		return c.convertTemporal(tag, literal)

	default:
		// string, keyword/text and anything unrecognized: opaque passthrough.
		return StringValue(literal), nil
	}
}

// convertTemporal parses an ISO-8601-like literal and projects it onto the
// requested temporal kind, applying the driver's local-to-UTC conversion.
func (c *Converter) convertTemporal(tag TypeTag, literal string) (Value, error) {
	val := literal
	if tag == TagTime {
		// Parse TIME as a full timestamp on a fixed reference date, so the
		// timezone offset resolves through real epoch math.
		val = referenceDate + val
	}
	// Zulu suffix is normalized to an explicit zero offset.
	val = strings.ReplaceAll(val, "Z", "+00:00")

	parsed, err := parseTimestamp(val)
	if err != nil {
		return Value{}, &ConversionError{Tag: tag, Literal: literal, Err: err}
	}

	utc := toUTC(parsed)

	if tag != TagDatetime {
		// Only TIMESTAMP carries fractional seconds on the wire.
		utc = utc.Truncate(time.Second)
	}

	switch tag {
	case TagDate:
		return DateValue(utc), nil
	case TagTime:
		return TimeValue(utc), nil
	default:
		return DatetimeValue(utc), nil
	}
}

// parseTimestamp accepts an offset-qualified timestamp, falling back to a
// naive one interpreted as UTC.
func parseTimestamp(val string) (time.Time, error) {
	t, err := time.Parse(layoutOffset, val)
	if err == nil {
		return t, nil
	}
	return time.Parse(layoutNaive, val)
}

// toUTC converts a parsed timestamp to its UTC equivalent. Pre-epoch
// instants take the fallback path: the wall-clock fields are relabelled as
// UTC without an offset round-trip, matching drivers on platforms whose
// timestamp range does not reach below 1970.
func toUTC(t time.Time) time.Time {
	if t.Unix() < 0 {
		y, mo, d := t.Date()
		h, mi, s := t.Clock()
		return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
	}
	return t.UTC()
}

// FromDriver canonicalizes a scalar fetched through the row source.
// Integer widths collapse to int64 and floats to float64, mirroring what
// database/sql drivers hand back.
func FromDriver(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case time.Time:
		return DatetimeValue(x), nil
	case string:
		return StringValue(x), nil
	case []byte:
		return StringValue(string(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported driver value type %T", v)
	}
}

// FromDriverAs canonicalizes a driver scalar for comparison against an
// expectation of the given tag. Temporal columns arrive as full timestamps
// regardless of their SQL type, so date and time expectations require the
// same projection the converter applies to fixture literals.
func FromDriverAs(tag TypeTag, v any) (Value, error) {
	val, err := FromDriver(v)
	if err != nil {
		return Value{}, err
	}
	if val.Kind != KindDatetime {
		return val, nil
	}
	switch tag {
	case TagDate:
		return DateValue(val.Time), nil
	case TagTime:
		return TimeValue(val.Time), nil
	default:
		return val, nil
	}
}
