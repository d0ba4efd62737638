package observer

// CompositeSink fans an event out to every wrapped sink.
type CompositeSink struct {
	items []Sink
}

// NewCompositeSink builds a CompositeSink from items, dropping any nil.
func NewCompositeSink(items ...Sink) *CompositeSink {
	return &CompositeSink{items: filterSinks(items)}
}

// Add appends sinks.
func (s *CompositeSink) Add(items ...Sink) {
	s.items = append(s.items, filterSinks(items)...)
}

func (s *CompositeSink) Emit(e Event) {
	for _, sink := range s.items {
		sink.Emit(e)
	}
}

func filterSinks(items []Sink) []Sink {
	out := make([]Sink, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

var _ Sink = (*CompositeSink)(nil)
