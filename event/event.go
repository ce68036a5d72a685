// Package event defines the in-memory model of HepMC events: vertices,
// particles, units and the optional metadata blocks, with structural validation.
package event

import (
	"fmt"
	"slices"
)

// Event is a single collision record: scalar metadata plus a graph of vertices
// and the particles flowing between them. Vertices own the particles they
// produce, every other relationship is expressed with barcodes and resolved
// through an Index.
type Event struct {

	// Number is the event number as declared in the event record.
	Number int `json:"number"`

	// MPI is the number of multi parton interactions, -1 when not set.
	MPI int `json:"mpi"`

	// Scale, AlphaQCD and AlphaQED are the event scale and couplings, -1 when
	// not set by the generator.
	Scale    float64 `json:"scale"`
	AlphaQCD float64 `json:"alpha_qcd"`
	AlphaQED float64 `json:"alpha_qed"`

	// SignalProcessID identifies the generator process.
	SignalProcessID int `json:"signal_process_id"`

	// SignalProcessVertex is the barcode of the signal process vertex, or 0
	// when the event does not name one.
	SignalProcessVertex int `json:"signal_process_vertex"`

	// Beams holds the barcodes of the two beam particles, 0 when absent.
	Beams [2]int `json:"beams"`

	// RandomStates are the generator random state seeds.
	RandomStates []int64 `json:"random_states,omitempty"`

	// Weights are the event weights in declaration order. WeightNames, when
	// present, maps positionally onto Weights.
	Weights     []float64 `json:"weights,omitempty"`
	WeightNames []string  `json:"weight_names,omitempty"`

	Units        Units         `json:"units"`
	CrossSection *CrossSection `json:"cross_section,omitempty"`
	PdfInfo      *PdfInfo      `json:"pdf_info,omitempty"`
	HeavyIon     *HeavyIon     `json:"heavy_ion,omitempty"`

	// Vertices in the order they were declared.
	Vertices []Vertex `json:"vertices"`
}

// Weight is a single event weight, Name is empty for positional weights.
type Weight struct {
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value"`
}

// NamedWeights returns the weights of e paired with their names. Names are left
// empty when the event carries no weight names or the counts disagree.
func (e *Event) NamedWeights() []Weight {
	out := make([]Weight, len(e.Weights))
	named := len(e.WeightNames) == len(e.Weights)
	for i, v := range e.Weights {
		out[i].Value = v
		if named {
			out[i].Name = e.WeightNames[i]
		}
	}
	return out
}

// Weight returns the weight with the given name and a boolean true, or zero and
// false if no such weight exists.
func (e *Event) Weight(name string) (float64, bool) {
	if len(e.WeightNames) != len(e.Weights) {
		return 0, false
	}
	if idx := slices.Index(e.WeightNames, name); idx >= 0 {
		return e.Weights[idx], true
	}
	return 0, false
}

// AddVertex appends v to the event and returns a pointer to the stored copy,
// valid until the next call to AddVertex.
func (e *Event) AddVertex(v Vertex) *Vertex {
	e.Vertices = append(e.Vertices, v)
	return &e.Vertices[len(e.Vertices)-1]
}

// NumParticles returns the number of particles defined in this event.
func (e *Event) NumParticles() (n int) {
	for i := range e.Vertices {
		n += len(e.Vertices[i].In) + len(e.Vertices[i].Out)
	}
	return
}

// Copy will return a deep copy of this event.
func (e *Event) Copy() *Event {
	evt := new(Event)
	*evt = *e
	evt.RandomStates = slices.Clone(e.RandomStates)
	evt.Weights = slices.Clone(e.Weights)
	evt.WeightNames = slices.Clone(e.WeightNames)
	if e.CrossSection != nil {
		xs := *e.CrossSection
		evt.CrossSection = &xs
	}
	if e.PdfInfo != nil {
		pdf := *e.PdfInfo
		evt.PdfInfo = &pdf
	}
	if e.HeavyIon != nil {
		hi := *e.HeavyIon
		evt.HeavyIon = &hi
	}
	if e.Vertices != nil {
		evt.Vertices = make([]Vertex, len(e.Vertices))
		for i := range e.Vertices {
			evt.Vertices[i] = e.Vertices[i].copy()
		}
	}
	return evt
}

// Reset will reset this event for reuse, retaining allocated slices.
func (e *Event) Reset() {
	rnd, ws, names, vs := e.RandomStates[:0], e.Weights[:0], e.WeightNames[:0], e.Vertices[:0]
	*e = Event{RandomStates: rnd, Weights: ws, WeightNames: names, Vertices: vs}
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf(`event.Event(#%d vertices=%d particles=%d)`,
		e.Number, len(e.Vertices), e.NumParticles())
}

// Vertex is an interaction point within an event. It owns the particles it
// produces and the orphan incoming particles declared directly after it.
type Vertex struct {

	// Barcode is a negative integer unique within the event.
	Barcode int `json:"barcode"`

	Status   int        `json:"status"`
	Position FourVector `json:"position"`

	// Weights are optional per-vertex weights.
	Weights []float64 `json:"weights,omitempty"`

	// NumOrphans and NumOut are the incoming orphan and outgoing particle
	// counts declared by the vertex record. A well formed vertex has
	// len(In) == NumOrphans and len(Out) == NumOut.
	NumOrphans int `json:"num_orphans"`
	NumOut     int `json:"num_out"`

	// In holds incoming particles that have no production vertex within the
	// event, such as beam particles. Their EndVertex is this vertex.
	In []Particle `json:"in,omitempty"`

	// Out holds the particles produced at this vertex.
	Out []Particle `json:"out,omitempty"`
}

// AddIn appends an orphan incoming particle, setting its EndVertex to v and
// updating NumOrphans.
func (v *Vertex) AddIn(p Particle) {
	p.EndVertex = v.Barcode
	v.In = append(v.In, p)
	v.NumOrphans = len(v.In)
}

// AddOut appends an outgoing particle and updates NumOut.
func (v *Vertex) AddOut(p Particle) {
	v.Out = append(v.Out, p)
	v.NumOut = len(v.Out)
}

func (v Vertex) copy() Vertex {
	v.Weights = slices.Clone(v.Weights)
	v.In = copyParticles(v.In)
	v.Out = copyParticles(v.Out)
	return v
}

// String implements fmt.Stringer.
func (v Vertex) String() string {
	return fmt.Sprintf(`event.Vertex(%d in=%d out=%d)`, v.Barcode, len(v.In), len(v.Out))
}

// Particle is a particle flowing out of the vertex that owns it and, unless it
// is in its final state, into the vertex named by EndVertex.
type Particle struct {

	// Barcode is a positive integer unique within the event.
	Barcode int `json:"barcode"`

	// PDG is the particle data group id.
	PDG int `json:"pdg"`

	Momentum FourVector `json:"momentum"`

	// Mass is the generated mass.
	Mass float64 `json:"mass"`

	Status       int          `json:"status"`
	Polarization Polarization `json:"polarization"`

	// EndVertex is the barcode of the vertex this particle flows into, 0 for
	// final state particles.
	EndVertex int `json:"end_vertex"`

	// Flows are the color flow codes in declaration order.
	Flows []Flow `json:"flows,omitempty"`
}

// Final reports whether the particle does not flow into any vertex.
func (p *Particle) Final() bool {
	return p.EndVertex == 0
}

// Flow returns the flow code for idx and a boolean true, or zero and false if
// the particle has no flow with that index.
func (p *Particle) Flow(idx int) (int, bool) {
	for _, f := range p.Flows {
		if f.Index == idx {
			return f.Code, true
		}
	}
	return 0, false
}

// String implements fmt.Stringer.
func (p Particle) String() string {
	return fmt.Sprintf(`event.Particle(%d pdg=%d status=%d)`, p.Barcode, p.PDG, p.Status)
}

func copyParticles(ps []Particle) []Particle {
	if ps == nil {
		return nil
	}
	out := make([]Particle, len(ps))
	for i, p := range ps {
		p.Flows = slices.Clone(p.Flows)
		out[i] = p
	}
	return out
}

// Flow is one color flow entry of a particle.
type Flow struct {
	Index int `json:"index"`
	Code  int `json:"code"`
}

// Polarization angles of a particle.
type Polarization struct {
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}
