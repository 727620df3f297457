package model

import (
	"math"
	"strconv"
)

// numberLike matches json.Number without importing encoding/json here.
type numberLike interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

func normalizeNumber(n numberLike) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// ToFloat64 converts a numeric scalar to float64.
// ToFloat64 将数值标量转换为 float64。
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case float32:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ToInt64 converts a numeric scalar to int64, truncating floats toward zero.
// Values outside the int64 range, NaN and Inf report false.
// ToInt64 将数值标量转换为 int64，超出范围时返回 false。
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		// -2^63 is exact in float64; 2^63 is the first value past MaxInt64.
		if math.IsNaN(n) || n < -(1<<63) || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
