package simdata

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-simdata/survey"
)

// Survey is the read-only view of a survey the data model consumes.
// *survey.Survey satisfies it.
type Survey interface {
	NumData() int
	Sources() []survey.Source
}

// Range is a half-open span [Begin, End) of the flat data vector.
type Range struct {
	Begin int
	End   int
}

// Len returns the number of data in the range.
func (r Range) Len() int { return r.End - r.Begin }

// Contains reports whether flat index i lies inside the range.
func (r Range) Contains(i int) bool { return i >= r.Begin && i < r.End }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Begin, r.End) }

// Key addresses one (source, receiver) pair.
type Key struct {
	Source   survey.SourceID
	Receiver survey.ReceiverID
}

// Entry is one (source, receiver) pair with its range, in survey order.
type Entry struct {
	Key
	SourceName   string
	ReceiverName string
	Range        Range
}

// IndexMap maps (source, receiver) pairs to contiguous ranges of the flat data
// vector. Ranges are assigned walking sources in order and receivers in order
// within each source, so together they tile [0, NumData()).
type IndexMap struct {
	entries []Entry
	lookup  map[survey.SourceID]map[survey.ReceiverID]int
	nD      int
}

// BuildIndexMap walks s once and assigns ranges. It fails when the receiver
// counts do not add up to s.NumData() or a receiver repeats within a source.
func BuildIndexMap(s Survey) (*IndexMap, error) {
	if s == nil {
		return nil, ErrNoSurvey
	}
	m := &IndexMap{
		lookup: map[survey.SourceID]map[survey.ReceiverID]int{},
	}
	offset := 0
	for _, src := range s.Sources() {
		receivers, ok := m.lookup[src.ID]
		if !ok {
			receivers = make(map[survey.ReceiverID]int, len(src.Receivers))
			m.lookup[src.ID] = receivers
		}
		for _, rx := range src.Receivers {
			if _, dup := receivers[rx.ID]; dup {
				return nil, fmt.Errorf("%w: receiver %d repeats under source %d", ErrInconsistentSurvey, rx.ID, src.ID)
			}
			if rx.NumData < 0 {
				return nil, fmt.Errorf("%w: receiver %d has negative datum count %d", ErrInconsistentSurvey, rx.ID, rx.NumData)
			}
			begin := offset
			offset += rx.NumData
			receivers[rx.ID] = len(m.entries)
			m.entries = append(m.entries, Entry{
				Key:          Key{Source: src.ID, Receiver: rx.ID},
				SourceName:   src.Name,
				ReceiverName: rx.Name,
				Range:        Range{Begin: begin, End: offset},
			})
		}
	}
	if offset != s.NumData() {
		return nil, fmt.Errorf("%w: receivers sum to %d, survey reports nD = %d", ErrInconsistentSurvey, offset, s.NumData())
	}
	m.nD = offset
	return m, nil
}

// NumData returns the length of the vector the map tiles.
func (m *IndexMap) NumData() int {
	if m == nil {
		return 0
	}
	return m.nD
}

// Range returns the range recorded for (src, rx).
func (m *IndexMap) Range(src survey.SourceID, rx survey.ReceiverID) (Range, error) {
	entry, err := m.Lookup(Key{Source: src, Receiver: rx})
	if err != nil {
		return Range{}, err
	}
	return entry.Range, nil
}

// Lookup returns the entry recorded for key.
func (m *IndexMap) Lookup(key Key) (Entry, error) {
	if m == nil {
		return Entry{}, ErrNoSurvey
	}
	receivers, ok := m.lookup[key.Source]
	if !ok {
		return Entry{}, fmt.Errorf("%w: source %d", ErrUnknownKey, key.Source)
	}
	i, ok := receivers[key.Receiver]
	if !ok {
		return Entry{}, fmt.Errorf("%w: receiver %d under source %d", ErrUnknownKey, key.Receiver, key.Source)
	}
	return m.entries[i], nil
}

// Source returns the ranges of every receiver of src.
func (m *IndexMap) Source(src survey.SourceID) (map[survey.ReceiverID]Range, error) {
	if m == nil {
		return nil, ErrNoSurvey
	}
	receivers, ok := m.lookup[src]
	if !ok {
		return nil, fmt.Errorf("%w: source %d", ErrUnknownKey, src)
	}
	out := make(map[survey.ReceiverID]Range, len(receivers))
	for rx, i := range receivers {
		out[rx] = m.entries[i].Range
	}
	return out, nil
}

// Entries returns every pair in survey order.
func (m *IndexMap) Entries() []Entry {
	if m == nil || len(m.entries) == 0 {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

// Locate returns the entry whose range holds flat index i. Receivers with no
// data own no index.
func (m *IndexMap) Locate(i int) (Entry, bool) {
	if m == nil || i < 0 || i >= m.nD {
		return Entry{}, false
	}
	j := sort.Search(len(m.entries), func(k int) bool {
		return m.entries[k].Range.End > i
	})
	if j == len(m.entries) {
		return Entry{}, false
	}
	return m.entries[j], true
}
