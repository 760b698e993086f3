package simdata

import "github.com/goliatone/go-simdata/pkg/activity"

// Accessors kept for callers written against the older dictionary-style API.
// Each one delegates to its replacement and reports the call through the
// deprecation logger and the activity hooks.

// Std returns the standard deviation.
//
// Deprecated: use StandardDeviation.
func (d *Data) Std() []float64 {
	d.deprecated("Std", "StandardDeviation")
	return d.StandardDeviation()
}

// SetStd assigns the standard deviation.
//
// Deprecated: use SetStandardDeviation.
func (d *Data) SetStd(value Value) error {
	d.deprecated("SetStd", "SetStandardDeviation")
	return d.SetStandardDeviation(value)
}

// Eps returns the noise floor.
//
// Deprecated: use NoiseFloor.
func (d *Data) Eps() []float64 {
	d.deprecated("Eps", "NoiseFloor")
	return d.NoiseFloor()
}

// SetEps assigns the noise floor.
//
// Deprecated: use SetNoiseFloor.
func (d *Data) SetEps(value Value) error {
	d.deprecated("SetEps", "SetNoiseFloor")
	return d.SetNoiseFloor(value)
}

// Get returns the observed data recorded by the pair in key.
//
// Deprecated: use Slice(FieldObserved, src, rx) or the IndexMap.
func (d *Data) Get(key Key) ([]float64, error) {
	d.deprecated("Get", "Slice")
	return d.Slice(FieldObserved, key.Source, key.Receiver)
}

// Set overwrites the observed data recorded by the pair in key.
//
// Deprecated: use SetSlice(FieldObserved, src, rx, values) or the IndexMap.
func (d *Data) Set(key Key, values []float64) error {
	d.deprecated("Set", "SetSlice")
	return d.SetSlice(FieldObserved, key.Source, key.Receiver, values)
}

// ToVector returns dobs.
//
// Deprecated: use Observed.
func (d *Data) ToVector() []float64 {
	d.deprecated("ToVector", "Observed")
	return d.Observed()
}

// FromVector always fails with ErrDeprecated.
//
// Deprecated: address data by source and receiver through the IndexMap.
func (d *Data) FromVector([]float64) error {
	return ErrDeprecated
}

func (d *Data) deprecated(accessor, replacement string) {
	d.deprecationLogger().LogDeprecation(DeprecationEvent{
		DataID:      d.id,
		Accessor:    accessor,
		Replacement: replacement,
	})
	input := d.eventInput("")
	input.Accessor = accessor
	d.emit(activity.BuildDeprecatedAccessEvent(input))
}
