package rules

import (
	"errors"
	"fmt"
	"math"
)

// ErrResultType indicates an expression produced a value of the wrong kind.
var ErrResultType = errors.New("rules: unexpected result type")

// ToFloat64 converts an evaluator result to float64.
func ToFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case nil:
		return math.NaN(), fmt.Errorf("%w: <nil>", ErrResultType)
	default:
		return math.NaN(), fmt.Errorf("%w: %T", ErrResultType, value)
	}
}

// ToBool converts an evaluator result to bool.
func ToBool(value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %T", ErrResultType, value)
	}
	return b, nil
}
