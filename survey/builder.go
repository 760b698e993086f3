package survey

import "fmt"

// Builder assembles a Survey. IDs are handed out as sources and receivers are
// added; Build freezes the result.
type Builder struct {
	sources   []Source
	receivers []Receiver
	err       error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddSource appends a source and returns its ID.
func (b *Builder) AddSource(name string) SourceID {
	id := SourceID(len(b.sources))
	b.sources = append(b.sources, Source{ID: id, Name: name})
	return id
}

// AddReceiver appends a receiver recording nD data to src.
func (b *Builder) AddReceiver(src SourceID, name string, nD int) (ReceiverID, error) {
	if src < 0 || int(src) >= len(b.sources) {
		return -1, fmt.Errorf("%w: %d", ErrUnknownSource, src)
	}
	if nD < 0 {
		return -1, fmt.Errorf("%w: receiver %q has %d", ErrNegativeCount, name, nD)
	}
	rx := Receiver{
		ID:      ReceiverID(len(b.receivers)),
		Source:  src,
		Name:    name,
		NumData: nD,
	}
	b.receivers = append(b.receivers, rx)
	b.sources[src].Receivers = append(b.sources[src].Receivers, rx)
	return rx.ID, nil
}

// MustAddReceiver is AddReceiver for static layouts; the first failure is
// reported by Build.
func (b *Builder) MustAddReceiver(src SourceID, name string, nD int) ReceiverID {
	id, err := b.AddReceiver(src, name, nD)
	if err != nil && b.err == nil {
		b.err = err
	}
	return id
}

// Build returns the frozen survey. The builder may keep being used; later
// additions do not affect surveys already built.
func (b *Builder) Build() (*Survey, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &Survey{
		sources:   make([]Source, len(b.sources)),
		receivers: append([]Receiver(nil), b.receivers...),
	}
	for i, src := range b.sources {
		s.sources[i] = cloneSource(src)
	}
	for _, rx := range s.receivers {
		s.nD += rx.NumData
	}
	return s, nil
}
