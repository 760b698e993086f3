package simdata

import (
	"github.com/goliatone/go-simdata/internal/vec"
	"github.com/goliatone/go-simdata/pkg/activity"
	"gonum.org/v1/gonum/floats"
)

// SyntheticData is Data plus the noiseless signal dclean that produced dobs.
// dclean follows the same length rule as dobs and is reachable through the
// generic field and range accessors as FieldClean.
type SyntheticData struct {
	*Data
	dclean []float64
}

// NewSynthetic builds the base data from opts, then validates dclean. A nil
// dclean is filled with NaN.
func NewSynthetic(s Survey, dclean []float64, opts ...Option) (*SyntheticData, error) {
	base, err := newData(s, applyOptions(opts), KindSynthetic)
	if err != nil {
		return nil, err
	}
	sd := &SyntheticData{Data: base}
	base.extra = map[Field]*[]float64{FieldClean: &sd.dclean}

	clean := Values(dclean)
	if dclean == nil {
		clean = Values(vec.NaN(s.NumData()))
	}
	if err := base.store(FieldClean, clean); err != nil {
		return nil, err
	}
	base.emit(activity.BuildDataCreatedEvent(base.eventInput("")))
	return sd, nil
}

// Clean returns a copy of dclean.
func (s *SyntheticData) Clean() []float64 { return vec.Clone(s.dclean) }

// SetClean replaces dclean. values must hold exactly one entry per datum.
func (s *SyntheticData) SetClean(values []float64) error {
	return s.SetField(FieldClean, Values(values))
}

// Noise returns dobs - dclean per datum.
func (s *SyntheticData) Noise() []float64 {
	return floats.SubTo(make([]float64, len(s.dobs)), s.dobs, s.dclean)
}
