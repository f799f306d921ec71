package convert

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestConvertScalars(t *testing.T) {
	tests := []struct {
		name     string
		tag      TypeTag
		literal  string
		expected Value
	}{
		{"null ignores literal", TagNull, "anything", NullValue()},
		{"boolean upper", TagBoolean, "TRUE", BoolValue(true)},
		{"boolean mixed", TagBoolean, "False", BoolValue(false)},
		{"byte", TagByte, "-128", IntValue(-128)},
		{"short", TagShort, "32767", IntValue(32767)},
		{"integer", TagInteger, "42", IntValue(42)},
		{"long strips suffix", TagLong, "42L", IntValue(42)},
		{"long lower suffix", TagLong, "9007199254740992l", IntValue(9007199254740992)},
		{"double", TagDouble, "3.14159", FloatValue(3.14159)},
		{"float strips suffix", TagFloat, "3.5f", FloatValue(3.5)},
		{"float upper suffix", TagFloat, "-0.25F", FloatValue(-0.25)},
		{"string passthrough", TagString, "hello, world", StringValue("hello, world")},
		{"unknown tag passthrough", TypeTag("geo_point"), "POINT(1 2)", StringValue("POINT(1 2)")},
	}

	c := NewConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.tag, tt.literal)
			if err != nil {
				t.Fatalf("Convert(%s, %q) failed: %v", tt.tag, tt.literal, err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Convert(%s, %q) mismatch (-want +got):\n%s", tt.tag, tt.literal, diff)
			}
		})
	}
}

func TestConvertTemporal(t *testing.T) {
	tests := []struct {
		name     string
		tag      TypeTag
		literal  string
		expected Value
	}{
		{
			name:     "time boundary zulu",
			tag:      TagTime,
			literal:  "23:59:59Z",
			expected: TimeValue(time.Date(1, time.January, 1, 23, 59, 59, 0, time.UTC)),
		},
		{
			name:     "time with offset converts to utc",
			tag:      TagTime,
			literal:  "12:00:00+02:00",
			expected: TimeValue(time.Date(1, time.January, 1, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:     "time drops fractional seconds",
			tag:      TagTime,
			literal:  "10:20:30.123Z",
			expected: TimeValue(time.Date(1, time.January, 1, 10, 20, 30, 0, time.UTC)),
		},
		{
			name:     "datetime keeps fraction",
			tag:      TagDatetime,
			literal:  "2019-07-17T12:00:00.123Z",
			expected: DatetimeValue(time.Date(2019, time.July, 17, 12, 0, 0, 123000000, time.UTC)),
		},
		{
			name:     "datetime offset normalized",
			tag:      TagDatetime,
			literal:  "2019-07-17T14:30:00+02:00",
			expected: DatetimeValue(time.Date(2019, time.July, 17, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:    "pre-epoch datetime takes fallback path",
			tag:     TagDatetime,
			literal: "1969-12-31T23:59:59.5Z",
			expected: DatetimeValue(
				time.Date(1969, time.December, 31, 23, 59, 59, 500000000, time.UTC)),
		},
		{
			name:     "date keeps only the date component",
			tag:      TagDate,
			literal:  "2019-07-17T03:10:25Z",
			expected: DateValue(time.Date(2019, time.July, 17, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "pre-epoch date",
			tag:      TagDate,
			literal:  "1931-01-02T00:00:00Z",
			expected: DateValue(time.Date(1931, time.January, 2, 0, 0, 0, 0, time.UTC)),
		},
	}

	c := NewConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.tag, tt.literal)
			if err != nil {
				t.Fatalf("Convert(%s, %q) failed: %v", tt.tag, tt.literal, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Convert(%s, %q) = %s, want %s", tt.tag, tt.literal, got, tt.expected)
			}
		})
	}
}

func TestConvertIsDeterministic(t *testing.T) {
	c := NewConverter()
	pairs := []struct {
		tag     TypeTag
		literal string
	}{
		{TagInteger, "42"},
		{TagDatetime, "2019-07-17T12:00:00.123Z"},
		{TagTime, "23:59:59Z"},
		{TagString, "stable"},
	}
	for _, p := range pairs {
		first, err := c.Convert(p.tag, p.literal)
		if err != nil {
			t.Fatalf("Convert(%s, %q) failed: %v", p.tag, p.literal, err)
		}
		second, err := c.Convert(p.tag, p.literal)
		if err != nil {
			t.Fatalf("Convert(%s, %q) failed on reinvocation: %v", p.tag, p.literal, err)
		}
		if !first.Equal(second) {
			t.Errorf("Convert(%s, %q) not deterministic: %s vs %s", p.tag, p.literal, first, second)
		}
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		tag     TypeTag
		literal string
	}{
		{TagBoolean, "yes"},
		{TagInteger, "42L"},
		{TagLong, "abc"},
		{TagDouble, "1.2.3"},
		{TagFloat, "xf"},
		{TagDatetime, "not-a-timestamp"},
		{TagTime, "25:61:00Z"},
	}
	c := NewConverter()
	for _, tt := range tests {
		_, err := c.Convert(tt.tag, tt.literal)
		if err == nil {
			t.Errorf("Convert(%s, %q): expected error, got none", tt.tag, tt.literal)
			continue
		}
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Errorf("Convert(%s, %q): error is %T, want *ConversionError", tt.tag, tt.literal, err)
		}
	}
}

func TestFromDriverAs(t *testing.T) {
	ts := time.Date(2019, time.July, 17, 3, 10, 25, 0, time.UTC)

	got, err := FromDriverAs(TagDate, ts)
	if err != nil {
		t.Fatalf("FromDriverAs(date) failed: %v", err)
	}
	want := DateValue(ts)
	if !got.Equal(want) {
		t.Errorf("FromDriverAs(date) = %s, want %s", got, want)
	}

	got, err = FromDriverAs(TagTime, ts)
	if err != nil {
		t.Fatalf("FromDriverAs(time) failed: %v", err)
	}
	want = TimeValue(ts)
	if !got.Equal(want) {
		t.Errorf("FromDriverAs(time) = %s, want %s", got, want)
	}

	got, err = FromDriverAs(TagLong, int64(42))
	if err != nil {
		t.Fatalf("FromDriverAs(long) failed: %v", err)
	}
	if !got.Equal(IntValue(42)) {
		t.Errorf("FromDriverAs(long) = %s, want 42", got)
	}

	if _, err := FromDriver(struct{}{}); err == nil {
		t.Error("FromDriver(struct{}{}): expected error for unsupported type")
	}
}
