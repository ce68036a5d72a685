package event

// Index maps the barcodes of one Event to its vertices and particles. Graph
// relationships are never stored as pointers, they are resolved through an
// Index built from the completed event. An Index is invalidated by any change to
// the Vertices of the event it was built from.
type Index struct {
	ev        *Event
	vertices  map[int]int
	particles map[int]location
	incoming  map[int][]int
	dup       *Violation
}

type location struct {
	vertex, pos int
	in          bool
}

// NewIndex builds an Index over e. Duplicate barcodes keep their first
// declaration; the first duplicate found is reported by Index.Err.
func NewIndex(e *Event) *Index {
	ix := &Index{
		ev:        e,
		vertices:  make(map[int]int, len(e.Vertices)),
		particles: make(map[int]location, e.NumParticles()),
	}
	for i := range e.Vertices {
		v := &e.Vertices[i]
		ix.addVertex(i, v.Barcode)
		for j := range v.In {
			ix.addParticle(location{i, j, true}, v.In[j].Barcode)
		}
		for j := range v.Out {
			ix.addParticle(location{i, j, false}, v.Out[j].Barcode)
		}
	}
	return ix
}

// Err returns the first duplicate barcode violation seen while building the
// index, or nil.
func (ix *Index) Err() error {
	if ix.dup == nil {
		return nil
	}
	return ix.dup
}

// Vertex returns the vertex with the given barcode and a boolean true, or nil
// and false if the event has no such vertex.
func (ix *Index) Vertex(barcode int) (*Vertex, bool) {
	pos, ok := ix.vertices[barcode]
	if !ok {
		return nil, false
	}
	return &ix.ev.Vertices[pos], true
}

// Particle returns the particle with the given barcode and a boolean true, or
// nil and false if the event has no such particle.
func (ix *Index) Particle(barcode int) (*Particle, bool) {
	loc, ok := ix.particles[barcode]
	if !ok {
		return nil, false
	}
	v := &ix.ev.Vertices[loc.vertex]
	if loc.in {
		return &v.In[loc.pos], true
	}
	return &v.Out[loc.pos], true
}

// Production returns the vertex that produced the particle with the given
// barcode. Orphan incoming particles have no production vertex.
func (ix *Index) Production(barcode int) (*Vertex, bool) {
	loc, ok := ix.particles[barcode]
	if !ok || loc.in {
		return nil, false
	}
	return &ix.ev.Vertices[loc.vertex], true
}

// End returns the vertex p flows into, or nil and false for final state
// particles and dangling references.
func (ix *Index) End(p *Particle) (*Vertex, bool) {
	if p.EndVertex == 0 {
		return nil, false
	}
	return ix.Vertex(p.EndVertex)
}

// Incoming returns the barcodes of every particle flowing into the vertex with
// the given barcode, in declaration order.
func (ix *Index) Incoming(barcode int) []int {
	if ix.incoming == nil {
		ix.buildIncoming()
	}
	return ix.incoming[barcode]
}

// Outgoing returns the barcodes of the particles produced at the vertex with
// the given barcode.
func (ix *Index) Outgoing(barcode int) []int {
	v, ok := ix.Vertex(barcode)
	if !ok {
		return nil
	}
	out := make([]int, len(v.Out))
	for i := range v.Out {
		out[i] = v.Out[i].Barcode
	}
	return out
}

func (ix *Index) buildIncoming() {
	ix.incoming = make(map[int][]int)
	Walk(ix.ev, ParticleFunc(func(_ *Vertex, p *Particle, _ bool) error {
		if p.EndVertex != 0 {
			ix.incoming[p.EndVertex] = append(ix.incoming[p.EndVertex], p.Barcode)
		}
		return nil
	}))
}

func (ix *Index) addVertex(pos, barcode int) {
	if _, ok := ix.vertices[barcode]; ok {
		ix.duplicate(DuplicateVertex, barcode)
		return
	}
	ix.vertices[barcode] = pos
}

func (ix *Index) addParticle(loc location, barcode int) {
	if _, ok := ix.particles[barcode]; ok {
		ix.duplicate(DuplicateParticle, barcode)
		return
	}
	ix.particles[barcode] = loc
}

func (ix *Index) duplicate(kind ViolationKind, barcode int) {
	if ix.dup == nil {
		ix.dup = &Violation{Kind: kind, Barcode: barcode}
	}
}
