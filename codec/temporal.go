package codec

import (
	"fmt"
	"time"

	schemabind "github.com/reoring/schemabind"
)

// Precision records how much of a partial date or date-time was given.
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionTime
)

var dateLayouts = []struct {
	layout    string
	precision Precision
}{
	{"2006", PrecisionYear},
	{"2006-01", PrecisionMonth},
	{"2006-01-02", PrecisionDay},
}

// ParsePartial parses a date with year, month or day precision, or a full
// RFC 3339 date-time. Partial dates are returned at midnight UTC of their
// first day.
func ParsePartial(s string) (time.Time, Precision, error) {
	for _, l := range dateLayouts {
		if len(s) == len(l.layout) {
			if t, err := time.Parse(l.layout, s); err == nil {
				return t, l.precision, nil
			}
		}
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return time.Time{}, 0, err
	}
	return t, PrecisionTime, nil
}

// FormatPartial renders t at the given precision.
func FormatPartial(t time.Time, p Precision) string {
	switch p {
	case PrecisionYear:
		return t.Format("2006")
	case PrecisionMonth:
		return t.Format("2006-01")
	case PrecisionDay:
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339Nano)
}

type temporalCodec struct {
	format string
	decode func(string) (time.Time, error)
	encode func(time.Time) string
}

func (c temporalCodec) Decode(a string) (time.Time, error) {
	t, err := c.decode(a)
	if err != nil {
		return time.Time{}, schemabind.Issues{{
			Code:    schemabind.CodeInvalidFormat,
			Message: fmt.Sprintf("invalid %s %q", c.format, a),
			Hint:    c.format,
			Cause:   err,
			Offset:  -1,
			Params:  map[string]any{"format": c.format},
		}}
	}
	return t, nil
}

func (c temporalCodec) Encode(b time.Time) (string, error) { return c.encode(b), nil }

// Date converts between date strings (YYYY, YYYY-MM or YYYY-MM-DD) and
// time.Time. Encoding always emits day precision.
func Date() schemabind.Codec[string, time.Time] {
	return temporalCodec{
		format: "date",
		decode: func(s string) (time.Time, error) {
			t, p, err := ParsePartial(s)
			if err == nil && p == PrecisionTime {
				return time.Time{}, fmt.Errorf("time of day not allowed")
			}
			return t, err
		},
		encode: func(t time.Time) string { return FormatPartial(t, PrecisionDay) },
	}
}

// DateTime converts between date-time strings and time.Time. Partial dates
// are accepted; a time of day must carry a zone offset. Encoding keeps the
// offset of the value.
func DateTime() schemabind.Codec[string, time.Time] {
	return temporalCodec{
		format: "dateTime",
		decode: func(s string) (time.Time, error) {
			t, _, err := ParsePartial(s)
			return t, err
		},
		encode: func(t time.Time) string { return FormatPartial(t, PrecisionTime) },
	}
}

// Instant converts between RFC 3339 instants (seconds and zone required) and
// time.Time. Encoding normalizes to UTC.
func Instant() schemabind.Codec[string, time.Time] {
	return temporalCodec{
		format: "instant",
		decode: parseRFC3339,
		encode: formatRFC3339Canonical,
	}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
