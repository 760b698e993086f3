// Package survey models the source/receiver layout a data vector is recorded
// against. Sources and receivers live in flat arenas and are addressed by dense
// integer IDs assigned in insertion order, so callers can key derived
// structures on IDs instead of object identity.
package survey

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSource indicates a SourceID that was never issued by the survey.
	ErrUnknownSource = errors.New("survey: unknown source")
	// ErrUnknownReceiver indicates a ReceiverID that was never issued by the survey.
	ErrUnknownReceiver = errors.New("survey: unknown receiver")
	// ErrNegativeCount indicates a receiver declared with a negative datum count.
	ErrNegativeCount = errors.New("survey: receiver datum count must be non-negative")
)

// SourceID identifies a source within one survey.
type SourceID int

// ReceiverID identifies a receiver within one survey. IDs are unique across all
// sources of the survey.
type ReceiverID int

// Receiver records NumData values for the source it belongs to.
type Receiver struct {
	ID      ReceiverID
	Source  SourceID
	Name    string
	NumData int
}

// Source emits a signal observed by an ordered list of receivers.
type Source struct {
	ID        SourceID
	Name      string
	Receivers []Receiver
}

// Survey is an immutable, ordered collection of sources and receivers.
type Survey struct {
	sources   []Source
	receivers []Receiver
	nD        int
}

// NumData returns the total number of data, the sum of every receiver's count.
func (s *Survey) NumData() int {
	if s == nil {
		return 0
	}
	return s.nD
}

// Sources returns the sources in survey order. The returned slice and the
// nested receiver slices are copies.
func (s *Survey) Sources() []Source {
	if s == nil || len(s.sources) == 0 {
		return nil
	}
	out := make([]Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = cloneSource(src)
	}
	return out
}

// NumSources returns the number of sources.
func (s *Survey) NumSources() int {
	if s == nil {
		return 0
	}
	return len(s.sources)
}

// NumReceivers returns the number of receivers across all sources.
func (s *Survey) NumReceivers() int {
	if s == nil {
		return 0
	}
	return len(s.receivers)
}

// Source looks up a source by ID.
func (s *Survey) Source(id SourceID) (Source, error) {
	if s == nil || id < 0 || int(id) >= len(s.sources) {
		return Source{}, fmt.Errorf("%w: %d", ErrUnknownSource, id)
	}
	return cloneSource(s.sources[id]), nil
}

// Receiver looks up a receiver by ID.
func (s *Survey) Receiver(id ReceiverID) (Receiver, error) {
	if s == nil || id < 0 || int(id) >= len(s.receivers) {
		return Receiver{}, fmt.Errorf("%w: %d", ErrUnknownReceiver, id)
	}
	return s.receivers[id], nil
}

// SourceByName returns the first source registered under name.
func (s *Survey) SourceByName(name string) (Source, bool) {
	if s == nil {
		return Source{}, false
	}
	for _, src := range s.sources {
		if src.Name == name {
			return cloneSource(src), true
		}
	}
	return Source{}, false
}

// ReceiverByName returns the first receiver of src registered under name.
func (s *Survey) ReceiverByName(src SourceID, name string) (Receiver, bool) {
	if s == nil || src < 0 || int(src) >= len(s.sources) {
		return Receiver{}, false
	}
	for _, rx := range s.sources[src].Receivers {
		if rx.Name == name {
			return rx, true
		}
	}
	return Receiver{}, false
}

func cloneSource(src Source) Source {
	out := src
	if len(src.Receivers) > 0 {
		out.Receivers = append([]Receiver(nil), src.Receivers...)
	}
	return out
}
