package encoding

import (
	"fmt"

	"github.com/cstockton/go-hepmc/event"
)

// maxVertexHint caps the capacity reserved from the declared vertex count.
const maxVertexHint = 1 << 12

// state assembles records into events. An event is complete when the next event
// record arrives or the stream ends, so at most one event is held at a time.
type state struct {
	ev    *event.Event
	line  int // line of the E record of ev
	cur   int // index of the current vertex in ev.Vertices, -1 for none
	seen  map[Tag]bool
	count int // completed events
}

func newState() *state {
	return &state{cur: -1, seen: make(map[Tag]bool)}
}

// visit applies rec read from the given line. When rec begins a new event the
// event in progress is returned along with the line it started on.
func (s *state) visit(rec Record, line int) (*event.Event, int, error) {
	if r, ok := rec.(EventRecord); ok {
		ev, evLine := s.finish()
		s.begin(r, line)
		return ev, evLine, nil
	}
	if s.ev == nil {
		return nil, 0, &OutOfContextError{
			Line: line, Tag: rec.Tag(), Msg: `appears before any event record`}
	}

	var err error
	switch r := rec.(type) {
	case VertexRecord:
		s.visitVertex(r)
	case ParticleRecord:
		err = s.visitParticle(r, line)
	case WeightsRecord:
		s.ev.Weights = r.Weights
	default:
		err = s.visitHeader(rec, line)
	}
	return nil, 0, err
}

func (s *state) begin(r EventRecord, line int) {
	s.ev = &event.Event{
		Number:              r.Number,
		MPI:                 r.MPI,
		Scale:               r.Scale,
		AlphaQCD:            r.AlphaQCD,
		AlphaQED:            r.AlphaQED,
		SignalProcessID:     r.SignalProcessID,
		SignalProcessVertex: r.SignalProcessVertex,
		Beams:               r.Beams,
		RandomStates:        r.RandomStates,
		Weights:             r.Weights,
	}
	if n := min(r.NumVertices, maxVertexHint); n > 0 {
		s.ev.Vertices = make([]event.Vertex, 0, n)
	}
	s.line, s.cur = line, -1
	clear(s.seen)
}

func (s *state) visitVertex(r VertexRecord) {
	s.ev.Vertices = append(s.ev.Vertices, event.Vertex{
		Barcode:    r.Barcode,
		Status:     r.Status,
		Position:   r.Position,
		Weights:    r.Weights,
		NumOrphans: r.NumOrphans,
		NumOut:     r.NumOut,
	})
	s.cur = len(s.ev.Vertices) - 1
}

// visitParticle attaches a particle to the current vertex. A particle flowing
// into the current vertex is one of its orphan incoming particles, every other
// particle was produced there.
func (s *state) visitParticle(r ParticleRecord, line int) error {
	if s.cur < 0 {
		return &OutOfContextError{
			Line: line, Tag: TagParticle, Msg: `appears before any vertex record`}
	}
	v := &s.ev.Vertices[s.cur]
	if r.EndVertex == v.Barcode {
		v.In = append(v.In, r.Particle)
	} else {
		v.Out = append(v.Out, r.Particle)
	}
	return nil
}

func (s *state) visitHeader(rec Record, line int) error {
	tag := rec.Tag()
	if s.cur >= 0 {
		return &OutOfContextError{Line: line, Tag: tag,
			Msg: fmt.Sprintf(`appears after the first vertex of event %d`, s.ev.Number)}
	}
	if s.seen[tag] {
		return &OutOfContextError{Line: line, Tag: tag,
			Msg: fmt.Sprintf(`appears more than once in event %d`, s.ev.Number)}
	}
	s.seen[tag] = true

	switch r := rec.(type) {
	case UnitsRecord:
		s.ev.Units = r.Units
	case CrossSectionRecord:
		xs := r.CrossSection
		s.ev.CrossSection = &xs
	case PdfInfoRecord:
		pdf := r.PdfInfo
		s.ev.PdfInfo = &pdf
	case HeavyIonRecord:
		hi := r.HeavyIon
		s.ev.HeavyIon = &hi
	case WeightNamesRecord:
		s.ev.WeightNames = r.Names
	default:
		return fmt.Errorf(`record %v may not be visited`, tag)
	}
	return nil
}

// finish returns the event in progress, if any, and counts it.
func (s *state) finish() (*event.Event, int) {
	ev, line := s.ev, s.line
	if ev != nil {
		s.count++
	}
	s.ev, s.line, s.cur = nil, 0, -1
	return ev, line
}

// discard drops the event in progress after an error.
func (s *state) discard() {
	s.ev, s.line, s.cur = nil, 0, -1
}

// pending reports whether an event is in progress.
func (s *state) pending() bool {
	return s.ev != nil
}
