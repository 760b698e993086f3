// Package simdata stores observed data for survey-based simulations: the flat
// vector of observations, the per-datum standard deviation and noise floor
// that make up its uncertainty, and an index map that ties (source, receiver)
// pairs of a survey to contiguous ranges of the flat vector.
//
// Every write is validated against the survey's datum count, so dobs,
// standard_deviation and noise_floor always share the survey's length:
//
//	data, err := simdata.New(sv, simdata.WithObserved(dobs))
//	data.SetStandardDeviation(simdata.Scalar(0.05))
//	data.SetNoiseFloor(simdata.Scalar(1e-12))
//	uncert, err := data.Uncertainty() // 0.05*|dobs| + 1e-12
//
// Data is not safe for concurrent use.
package simdata

import (
	"fmt"

	"github.com/goliatone/go-simdata/internal/vec"
	"github.com/goliatone/go-simdata/pkg/activity"
	"github.com/goliatone/go-simdata/pkg/rules"
	"github.com/goliatone/go-simdata/survey"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Field names one of the per-datum vectors.
type Field string

const (
	FieldObserved          Field = "dobs"
	FieldStandardDeviation Field = "standard_deviation"
	FieldNoiseFloor        Field = "noise_floor"
	FieldClean             Field = "dclean"
)

// Kind tells observed and synthetic data apart.
type Kind int

const (
	KindObserved Kind = iota
	KindSynthetic
)

func (k Kind) String() string {
	switch k {
	case KindObserved:
		return "observed"
	case KindSynthetic:
		return "synthetic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Data holds the observed data of a survey and its uncertainty terms.
type Data struct {
	id     uuid.UUID
	kind   Kind
	survey Survey

	dobs              []float64
	standardDeviation []float64
	noiseFloor        []float64
	// extra holds fields contributed by wrapping types, e.g. dclean.
	extra map[Field]*[]float64

	index *IndexMap

	cfg       dataConfig
	emitter   *activity.Emitter
	evaluator rules.Evaluator
}

type fieldSpec struct {
	ref       *[]float64
	broadcast bool
	optional  bool
}

// New constructs observed data for s. Without options dobs is filled with NaN
// and both uncertainty terms with zeros.
func New(s Survey, opts ...Option) (*Data, error) {
	d, err := newData(s, applyOptions(opts), KindObserved)
	if err != nil {
		return nil, err
	}
	d.emit(activity.BuildDataCreatedEvent(d.eventInput("")))
	return d, nil
}

func newData(s Survey, cfg dataConfig, kind Kind) (*Data, error) {
	if s == nil {
		return nil, ErrNoSurvey
	}
	id := cfg.id
	if id == uuid.Nil {
		id = uuid.New()
	}
	d := &Data{
		id:     id,
		kind:   kind,
		survey: s,
		cfg:    cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.activityChannel,
		}),
	}

	n := s.NumData()
	observed := Values(cfg.observed)
	if cfg.observed == nil {
		observed = Values(vec.NaN(n))
	}
	if err := d.store(FieldObserved, observed); err != nil {
		return nil, err
	}

	std := Values(vec.Fill(n, 0))
	if cfg.standardDeviation != nil {
		std = *cfg.standardDeviation
	}
	if err := d.store(FieldStandardDeviation, std); err != nil {
		return nil, err
	}

	floor := Values(vec.Fill(n, 0))
	if cfg.noiseFloor != nil {
		floor = *cfg.noiseFloor
	}
	if err := d.store(FieldNoiseFloor, floor); err != nil {
		return nil, err
	}
	return d, nil
}

// ID returns the instance identifier.
func (d *Data) ID() uuid.UUID { return d.id }

// Kind reports whether the data is observed or synthetic.
func (d *Data) Kind() Kind { return d.kind }

// Survey returns the attached survey.
func (d *Data) Survey() Survey { return d.survey }

// NumData returns the length of dobs.
func (d *Data) NumData() int { return len(d.dobs) }

// Fields lists the fields this instance carries.
func (d *Data) Fields() []Field {
	fields := []Field{FieldObserved, FieldStandardDeviation, FieldNoiseFloor}
	if _, ok := d.extra[FieldClean]; ok {
		fields = append(fields, FieldClean)
	}
	return fields
}

// Observed returns a copy of dobs.
func (d *Data) Observed() []float64 { return vec.Clone(d.dobs) }

// SetObserved replaces dobs. values must hold exactly one entry per datum.
func (d *Data) SetObserved(values []float64) error {
	return d.SetField(FieldObserved, Values(values))
}

// ObservedVec returns dobs as a gonum vector, or nil when there is no data.
func (d *Data) ObservedVec() *mat.VecDense {
	if len(d.dobs) == 0 {
		return nil
	}
	return mat.NewVecDense(len(d.dobs), vec.Clone(d.dobs))
}

// StandardDeviation returns a copy of the relative uncertainty, nil when unset.
func (d *Data) StandardDeviation() []float64 { return vec.Clone(d.standardDeviation) }

// SetStandardDeviation replaces the relative uncertainty. A scalar applies to
// every datum.
func (d *Data) SetStandardDeviation(value Value) error {
	return d.SetField(FieldStandardDeviation, value)
}

// NoiseFloor returns a copy of the absolute uncertainty floor, nil when unset.
func (d *Data) NoiseFloor() []float64 { return vec.Clone(d.noiseFloor) }

// SetNoiseFloor replaces the absolute uncertainty floor. A scalar applies to
// every datum.
func (d *Data) SetNoiseFloor(value Value) error {
	return d.SetField(FieldNoiseFloor, value)
}

// Field returns a copy of the named field.
func (d *Data) Field(field Field) ([]float64, error) {
	spec, err := d.spec(field)
	if err != nil {
		return nil, err
	}
	return vec.Clone(*spec.ref), nil
}

// SetField validates value and replaces the named field. On error the field
// keeps its previous contents.
func (d *Data) SetField(field Field, value Value) error {
	if err := d.store(field, value); err != nil {
		return err
	}
	d.emitFieldUpdated(field, nil)
	return nil
}

func (d *Data) spec(field Field) (fieldSpec, error) {
	switch field {
	case FieldObserved:
		return fieldSpec{ref: &d.dobs}, nil
	case FieldStandardDeviation:
		return fieldSpec{ref: &d.standardDeviation, broadcast: true, optional: true}, nil
	case FieldNoiseFloor:
		return fieldSpec{ref: &d.noiseFloor, broadcast: true, optional: true}, nil
	}
	if ref, ok := d.extra[field]; ok {
		return fieldSpec{ref: ref}, nil
	}
	return fieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// store runs the shared validation path and assigns without emitting events.
func (d *Data) store(field Field, value Value) error {
	if d.survey == nil {
		return ErrNoSurvey
	}
	spec, err := d.spec(field)
	if err != nil {
		return err
	}
	if value.IsUnset() {
		if !spec.optional {
			return &ValidationError{Field: string(field), Reason: "is required and cannot be unset"}
		}
		*spec.ref = nil
		return nil
	}
	values, err := value.resolve(field, d.survey.NumData(), spec.broadcast)
	if err != nil {
		return err
	}
	*spec.ref = values
	return nil
}

// IndexMap returns the cached index map, building it on first use.
func (d *Data) IndexMap() (*IndexMap, error) {
	if d.survey == nil {
		return nil, ErrNoSurvey
	}
	if d.index == nil {
		m, err := BuildIndexMap(d.survey)
		if err != nil {
			return nil, err
		}
		d.index = m
	}
	return d.index, nil
}

// ResetIndex drops the cached index map; the next index access rebuilds it.
func (d *Data) ResetIndex() {
	d.index = nil
}

// SetSurvey attaches a different survey with the same datum count and replaces
// the cached index map with one built from s. An inconsistent survey fails
// with ErrInconsistentSurvey and leaves the current survey attached.
func (d *Data) SetSurvey(s Survey) error {
	if s == nil {
		return ErrNoSurvey
	}
	if s.NumData() != len(d.dobs) {
		return &ValidationError{
			Field:  "survey",
			Got:    s.NumData(),
			Want:   len(d.dobs),
			Reason: fmt.Sprintf("survey nD = %d does not match the %d data held", s.NumData(), len(d.dobs)),
		}
	}
	m, err := BuildIndexMap(s)
	if err != nil {
		return err
	}
	d.survey = s
	d.index = m
	d.emit(activity.BuildSurveyChangedEvent(d.eventInput("")))
	return nil
}

// Range returns the range of the flat vector recorded by (src, rx).
func (d *Data) Range(src survey.SourceID, rx survey.ReceiverID) (Range, error) {
	m, err := d.IndexMap()
	if err != nil {
		return Range{}, err
	}
	return m.Range(src, rx)
}

// Slice returns a copy of field over the range recorded by (src, rx).
func (d *Data) Slice(field Field, src survey.SourceID, rx survey.ReceiverID) ([]float64, error) {
	r, err := d.Range(src, rx)
	if err != nil {
		return nil, err
	}
	return d.SliceRange(field, r)
}

// SetSlice overwrites field over the range recorded by (src, rx).
func (d *Data) SetSlice(field Field, src survey.SourceID, rx survey.ReceiverID, values []float64) error {
	r, err := d.Range(src, rx)
	if err != nil {
		return err
	}
	return d.SetSliceRange(field, r, values)
}

// SliceRange returns a copy of field over r.
func (d *Data) SliceRange(field Field, r Range) ([]float64, error) {
	current, err := d.ranged(field, r)
	if err != nil {
		return nil, err
	}
	return vec.Clone(current[r.Begin:r.End]), nil
}

// SetSliceRange overwrites field over r in place. values must hold exactly
// r.Len() entries.
func (d *Data) SetSliceRange(field Field, r Range, values []float64) error {
	current, err := d.ranged(field, r)
	if err != nil {
		return err
	}
	if len(values) != r.Len() {
		return &ValidationError{Field: string(field), Got: len(values), Want: r.Len(), Range: &r}
	}
	copy(current[r.Begin:r.End], values)
	d.emitFieldUpdated(field, &r)
	return nil
}

func (d *Data) ranged(field Field, r Range) ([]float64, error) {
	spec, err := d.spec(field)
	if err != nil {
		return nil, err
	}
	current := *spec.ref
	if current == nil {
		return nil, &ValidationError{Field: string(field), Reason: "is unset; assign the whole field before addressing a range"}
	}
	if r.Begin < 0 || r.End < r.Begin || r.End > len(current) {
		return nil, &ValidationError{
			Field:  string(field),
			Got:    r.Len(),
			Want:   len(current),
			Range:  &r,
			Reason: fmt.Sprintf("range %s lies outside [0,%d)", r, len(current)),
		}
	}
	return current, nil
}
