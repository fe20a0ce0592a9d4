package metrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMissing     = errors.New("metrics: value is missing")
	ErrNotNumeric  = errors.New("metrics: value is not numeric")
	ErrNotInteger  = errors.New("metrics: value is not an integer")
	ErrNotFinite   = errors.New("metrics: value is not finite")
	ErrZeroHeight  = errors.New("metrics: height must not be zero")
)

// Reading is the outcome of parsing one raw field: either a value or the
// reason it could not be parsed.
type Reading[T int | float64] struct {
	Value T
	Err   error
}

func (r Reading[T]) Ok() bool {
	return r.Err == nil
}

// Ptr returns the parsed value, or nil when parsing failed.
func (r Reading[T]) Ptr() *T {
	if r.Err != nil {
		return nil
	}
	v := r.Value
	return &v
}

func failed[T int | float64](err error) Reading[T] {
	return Reading[T]{Err: err}
}

// ParseDecimal reads a decimal number. Surrounding whitespace is ignored.
// Hexadecimal literals, NaN and infinities are rejected.
func ParseDecimal(raw string) Reading[float64] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return failed[float64](ErrMissing)
	}
	if strings.ContainsAny(s, "xX") {
		return failed[float64](fmt.Errorf("%w: %q", ErrNotNumeric, s))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return failed[float64](fmt.Errorf("%w: %q", ErrNotNumeric, s))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return failed[float64](fmt.Errorf("%w: %q", ErrNotFinite, s))
	}
	return Reading[float64]{Value: v}
}

// ParseInteger reads a base-10 integer. "120.0" is not an integer.
func ParseInteger(raw string) Reading[int] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return failed[int](ErrMissing)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return failed[int](fmt.Errorf("%w: %q", ErrNotInteger, s))
	}
	return Reading[int]{Value: v}
}
