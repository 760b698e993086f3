package simdata

import (
	"github.com/goliatone/go-simdata/internal/vec"
	"gonum.org/v1/gonum/mat"
)

// Uncertainty returns standard_deviation .* |dobs| + noise_floor. An unset
// term contributes nothing; with both unset it fails with ErrState.
func (d *Data) Uncertainty() ([]float64, error) {
	if d.standardDeviation == nil && d.noiseFloor == nil {
		return nil, ErrState
	}
	return vec.Uncertainty(d.standardDeviation, d.dobs, d.noiseFloor), nil
}

// UncertaintyVec is Uncertainty as a gonum vector, nil when there is no data.
func (d *Data) UncertaintyVec() (*mat.VecDense, error) {
	u, err := d.Uncertainty()
	if err != nil {
		return nil, err
	}
	if len(u) == 0 {
		return nil, nil
	}
	return mat.NewVecDense(len(u), u), nil
}

// SetUncertainty assigns a total uncertainty. The breakdown is dropped:
// standard_deviation becomes all zeros and value becomes the noise floor, so a
// later Uncertainty returns exactly value. On error neither field changes.
func (d *Data) SetUncertainty(value Value) error {
	if value.IsUnset() {
		return &ValidationError{Field: string(FieldNoiseFloor), Reason: "uncertainty cannot be unset"}
	}
	if d.survey == nil {
		return ErrNoSurvey
	}
	floor, err := value.resolve(FieldNoiseFloor, d.survey.NumData(), true)
	if err != nil {
		return err
	}
	d.standardDeviation = vec.Fill(len(floor), 0)
	d.noiseFloor = floor
	d.emitFieldUpdated(FieldStandardDeviation, nil)
	d.emitFieldUpdated(FieldNoiseFloor, nil)
	return nil
}
