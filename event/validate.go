package event

import "fmt"

// ViolationKind identifies which structural invariant an event breaks.
type ViolationKind byte

const (
	DuplicateVertex ViolationKind = iota + 1
	DuplicateParticle
	BadVertexBarcode
	BadParticleBarcode
	OrphanCountMismatch
	OutCountMismatch
	MisplacedOrphan
	DanglingEndVertex
	DanglingSignalVertex
	WeightNameMismatch
	SelfLoop
)

var violationNames = [...]string{
	DuplicateVertex:      `DuplicateVertex`,
	DuplicateParticle:    `DuplicateParticle`,
	BadVertexBarcode:     `BadVertexBarcode`,
	BadParticleBarcode:   `BadParticleBarcode`,
	OrphanCountMismatch:  `OrphanCountMismatch`,
	OutCountMismatch:     `OutCountMismatch`,
	MisplacedOrphan:      `MisplacedOrphan`,
	DanglingEndVertex:    `DanglingEndVertex`,
	DanglingSignalVertex: `DanglingSignalVertex`,
	WeightNameMismatch:   `WeightNameMismatch`,
	SelfLoop:             `SelfLoop`,
}

// String implements fmt.Stringer.
func (k ViolationKind) String() string {
	if int(k) < len(violationNames) && violationNames[k] != `` {
		return violationNames[k]
	}
	return fmt.Sprintf(`ViolationKind(%d)`, byte(k))
}

// Violation describes the first structural invariant an event breaks.
type Violation struct {
	Kind ViolationKind

	// Barcode of the offending vertex or particle, 0 for event level
	// violations.
	Barcode int

	// Msg optionally adds detail such as declared and actual counts.
	Msg string
}

// Error implements error.
func (v *Violation) Error() string {
	var s string
	switch v.Kind {
	case DuplicateVertex:
		s = fmt.Sprintf(`vertex barcode %d is not unique`, v.Barcode)
	case DuplicateParticle:
		s = fmt.Sprintf(`particle barcode %d is not unique`, v.Barcode)
	case BadVertexBarcode:
		s = fmt.Sprintf(`vertex barcode %d must be negative`, v.Barcode)
	case BadParticleBarcode:
		s = fmt.Sprintf(`particle barcode %d must be positive`, v.Barcode)
	case OrphanCountMismatch:
		s = fmt.Sprintf(`vertex %d orphan count mismatch`, v.Barcode)
	case OutCountMismatch:
		s = fmt.Sprintf(`vertex %d outgoing count mismatch`, v.Barcode)
	case MisplacedOrphan:
		s = fmt.Sprintf(`orphan particle %d does not flow into its vertex`, v.Barcode)
	case DanglingEndVertex:
		s = fmt.Sprintf(`particle %d flows into an unknown vertex`, v.Barcode)
	case DanglingSignalVertex:
		s = fmt.Sprintf(`signal process vertex %d is unknown`, v.Barcode)
	case WeightNameMismatch:
		s = `weight names do not match weights`
	case SelfLoop:
		s = fmt.Sprintf(`particle %d flows into the vertex producing it`, v.Barcode)
	default:
		s = v.Kind.String()
	}
	if v.Msg != `` {
		s += `: ` + v.Msg
	}
	return s
}

// Validate returns the first structural invariant violation of e as a
// *Violation, or nil. Vertices and particles are checked in declaration order
// before cross references are resolved. Validate never modifies e.
func (e *Event) Validate() error {
	if n := len(e.WeightNames); n > 0 && n != len(e.Weights) {
		return &Violation{
			Kind: WeightNameMismatch,
			Msg:  fmt.Sprintf(`%d names for %d weights`, n, len(e.Weights)),
		}
	}

	vd := &validator{
		vertices:  make(map[int]struct{}, len(e.Vertices)),
		particles: make(map[int]struct{}, e.NumParticles()),
	}
	if err := Walk(e, vd); err != nil {
		return err
	}
	for _, p := range vd.refs {
		if _, ok := vd.vertices[p.end]; !ok {
			return &Violation{
				Kind:    DanglingEndVertex,
				Barcode: p.barcode,
				Msg:     fmt.Sprintf(`vertex %d`, p.end),
			}
		}
	}
	if sp := e.SignalProcessVertex; sp != 0 {
		if _, ok := vd.vertices[sp]; !ok {
			return &Violation{Kind: DanglingSignalVertex, Barcode: sp}
		}
	}
	return nil
}

type endRef struct {
	barcode, end int
}

type validator struct {
	vertices  map[int]struct{}
	particles map[int]struct{}
	refs      []endRef
}

func (vd *validator) VisitVertex(v *Vertex) error {
	if v.Barcode >= 0 {
		return &Violation{Kind: BadVertexBarcode, Barcode: v.Barcode}
	}
	if _, ok := vd.vertices[v.Barcode]; ok {
		return &Violation{Kind: DuplicateVertex, Barcode: v.Barcode}
	}
	vd.vertices[v.Barcode] = struct{}{}

	if got := len(v.In); got != v.NumOrphans {
		return &Violation{
			Kind:    OrphanCountMismatch,
			Barcode: v.Barcode,
			Msg:     fmt.Sprintf(`declared %d, found %d`, v.NumOrphans, got),
		}
	}
	if got := len(v.Out); got != v.NumOut {
		return &Violation{
			Kind:    OutCountMismatch,
			Barcode: v.Barcode,
			Msg:     fmt.Sprintf(`declared %d, found %d`, v.NumOut, got),
		}
	}
	return nil
}

func (vd *validator) VisitParticle(v *Vertex, p *Particle, incoming bool) error {
	if p.Barcode <= 0 {
		return &Violation{Kind: BadParticleBarcode, Barcode: p.Barcode}
	}
	if _, ok := vd.particles[p.Barcode]; ok {
		return &Violation{Kind: DuplicateParticle, Barcode: p.Barcode}
	}
	vd.particles[p.Barcode] = struct{}{}

	// Orphans are declared by the counts of the vertex they flow into, so
	// their reference is always to v.
	if incoming {
		if p.EndVertex != v.Barcode {
			return &Violation{Kind: MisplacedOrphan, Barcode: p.Barcode}
		}
		return nil
	}
	// An outgoing particle written after its own vertex reads back as an orphan.
	if p.EndVertex == v.Barcode {
		return &Violation{Kind: SelfLoop, Barcode: p.Barcode}
	}
	if p.EndVertex != 0 {
		vd.refs = append(vd.refs, endRef{p.Barcode, p.EndVertex})
	}
	return nil
}
