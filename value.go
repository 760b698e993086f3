package simdata

import "github.com/goliatone/go-simdata/internal/vec"

type valueKind uint8

const (
	valueUnset valueKind = iota
	valueScalar
	valueArray
)

// Value is the input accepted by field setters: a scalar, a sequence, or
// nothing. Scalars broadcast to the full data length for standard_deviation
// and noise_floor only.
type Value struct {
	kind   valueKind
	scalar float64
	values []float64
}

// Unset clears an optional field. Only standard_deviation and noise_floor may
// be unset.
var Unset = Value{}

// Scalar returns a Value that broadcasts s to every datum.
func Scalar(s float64) Value {
	return Value{kind: valueScalar, scalar: s}
}

// Values wraps a full-length sequence. A nil slice is a zero-length sequence,
// not Unset.
func Values(v []float64) Value {
	return Value{kind: valueArray, values: v}
}

// Array is Values for inline literals.
func Array(v ...float64) Value {
	return Values(v)
}

// IsUnset reports whether v carries nothing.
func (v Value) IsUnset() bool { return v.kind == valueUnset }

// IsScalar reports whether v is a scalar.
func (v Value) IsScalar() bool { return v.kind == valueScalar }

// resolve turns v into a detached vector of length n, broadcasting scalars when
// allowed. Unset resolves to nil.
func (v Value) resolve(field Field, n int, broadcast bool) ([]float64, error) {
	switch v.kind {
	case valueUnset:
		return nil, nil
	case valueScalar:
		if !broadcast {
			return nil, &ValidationError{
				Field:  string(field),
				Got:    1,
				Want:   n,
				Reason: "a scalar cannot be broadcast; provide a full-length sequence",
			}
		}
		return vec.Fill(n, v.scalar), nil
	default:
		if err := validateLength(field, len(v.values), n); err != nil {
			return nil, err
		}
		if v.values == nil {
			return []float64{}, nil
		}
		return vec.Clone(v.values), nil
	}
}
