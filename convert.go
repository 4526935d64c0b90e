package sqltx

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// timeLayouts lists the timestamp formats drivers commonly hand back as
// text, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParamAs reads back a parameter value and converts it to T. The value
// is returned as-is when it already has type T; otherwise a small set
// of deterministic conversions applies (bytes and strings to each
// other, driver numerics across int64, int and float64, integers to
// bool, timestamp text to time.Time, numeric text to numbers). Anything
// else, including NULL, fails with ErrConversion.
func ParamAs[T any](cmd *Command, name string) (T, error) {
	var zero T

	v, err := cmd.Param(name)
	if err != nil {
		return zero, err
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	if v == nil {
		return zero, fmt.Errorf("%w: parameter %q is NULL, want %T", ErrConversion, name, zero)
	}
	if err := coerce(v, &zero); err != nil {
		return zero, fmt.Errorf("%w: parameter %q: %v", ErrConversion, name, err)
	}
	return zero, nil
}

// coerce converts v into the value dst points at. Only conversions that
// cannot silently lose information are attempted.
func coerce(v any, dst any) error {
	switch d := dst.(type) {
	case *string:
		return coerceString(v, d)
	case *[]byte:
		if s, ok := v.(string); ok {
			*d = []byte(s)
			return nil
		}
	case *int64:
		return coerceInt64(v, d)
	case *int:
		var n int64
		if err := coerceInt64(v, &n); err != nil {
			return err
		}
		*d = int(n)
		return nil
	case *float64:
		return coerceFloat64(v, d)
	case *bool:
		return coerceBool(v, d)
	case *time.Time:
		return coerceTime(v, d)
	default:
		return fmt.Errorf("unsupported target type %T", dst)
	}
	return fmt.Errorf("cannot convert %T to %T", v, dst)
}

func coerceString(v any, d *string) error {
	switch s := v.(type) {
	case []byte:
		*d = string(s)
	case int64:
		*d = strconv.FormatInt(s, 10)
	case int:
		*d = strconv.Itoa(s)
	case float64:
		*d = strconv.FormatFloat(s, 'g', -1, 64)
	case bool:
		*d = strconv.FormatBool(s)
	default:
		return fmt.Errorf("cannot convert %T to string", v)
	}
	return nil
}

func coerceInt64(v any, d *int64) error {
	switch n := v.(type) {
	case int64:
		*d = n
	case int:
		*d = int64(n)
	case int32:
		*d = int64(n)
	case float64:
		if n != math.Trunc(n) {
			return fmt.Errorf("float64 %v has a fractional part", n)
		}
		*d = int64(n)
	case string:
		return parseInt64(n, d)
	case []byte:
		return parseInt64(string(n), d)
	default:
		return fmt.Errorf("cannot convert %T to int64", v)
	}
	return nil
}

func parseInt64(s string, d *int64) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing %q as int64: %v", s, err)
	}
	*d = n
	return nil
}

func coerceFloat64(v any, d *float64) error {
	switch n := v.(type) {
	case float64:
		*d = n
	case int64:
		*d = float64(n)
	case int:
		*d = float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return fmt.Errorf("parsing %q as float64: %v", n, err)
		}
		*d = f
	case []byte:
		return coerceFloat64(string(n), d)
	default:
		return fmt.Errorf("cannot convert %T to float64", v)
	}
	return nil
}

func coerceBool(v any, d *bool) error {
	switch b := v.(type) {
	case int64:
		*d = b != 0
	case int:
		*d = b != 0
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return fmt.Errorf("parsing %q as bool: %v", b, err)
		}
		*d = parsed
	default:
		return fmt.Errorf("cannot convert %T to bool", v)
	}
	return nil
}

func coerceTime(v any, d *time.Time) error {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return fmt.Errorf("cannot convert %T to time.Time", v)
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			*d = t
			return nil
		}
	}
	return fmt.Errorf("unable to parse timestamp %q", s)
}
