package encoding

import (
	"fmt"
	"strings"

	"github.com/cstockton/go-hepmc/event"
)

// Record is a single parsed line of the format. Each record knows its tag and
// how to append its canonical text form, without the trailing newline.
type Record interface {
	Tag() Tag
	Append(b []byte) []byte
}

// Banner is a line beginning with event.BannerPrefix. Banners carry no event
// data, the Decoder inspects them only for the version and end of listing.
type Banner struct {
	Text string
}

// EventRecord is the E line that begins every event.
type EventRecord struct {
	Number              int
	MPI                 int
	Scale               float64
	AlphaQCD            float64
	AlphaQED            float64
	SignalProcessID     int
	SignalProcessVertex int

	// NumVertices is the declared vertex count, it is only used as a capacity
	// hint and is not checked against the vertices that follow.
	NumVertices  int
	Beams        [2]int
	RandomStates []int64
	Weights      []float64
}

// VertexRecord is a V line.
type VertexRecord struct {
	Barcode    int
	Status     int
	Position   event.FourVector
	NumOrphans int
	NumOut     int
	Weights    []float64
}

// ParticleRecord is a P line.
type ParticleRecord struct {
	event.Particle
}

// WeightsRecord is a W line replacing the weight values of the current event.
type WeightsRecord struct {
	Weights []float64
}

// WeightNamesRecord is an N line.
type WeightNamesRecord struct {
	Names []string
}

// UnitsRecord is a U line.
type UnitsRecord struct {
	event.Units
}

// CrossSectionRecord is a C line.
type CrossSectionRecord struct {
	event.CrossSection
}

// PdfInfoRecord is an F line.
type PdfInfoRecord struct {
	event.PdfInfo
}

// HeavyIonRecord is an H line.
type HeavyIonRecord struct {
	event.HeavyIon
}

func (Banner) Tag() Tag             { return TagNone }
func (EventRecord) Tag() Tag        { return TagEvent }
func (VertexRecord) Tag() Tag       { return TagVertex }
func (ParticleRecord) Tag() Tag     { return TagParticle }
func (WeightsRecord) Tag() Tag      { return TagWeights }
func (WeightNamesRecord) Tag() Tag  { return TagWeightNames }
func (UnitsRecord) Tag() Tag        { return TagUnits }
func (CrossSectionRecord) Tag() Tag { return TagCrossSection }
func (PdfInfoRecord) Tag() Tag      { return TagPdfInfo }
func (HeavyIonRecord) Tag() Tag     { return TagHeavyIon }

// ParseRecord parses a single line into a Record. The lineNr is only used for
// error reporting. Blank lines return a nil Record and nil error. Any failure is
// returned as a *MalformedLineError.
func ParseRecord(line string, lineNr int) (Record, error) {
	tok, off := nextToken(line, 0)
	if tok == `` {
		return nil, nil
	}
	if strings.HasPrefix(tok, event.BannerPrefix) {
		return Banner{Text: strings.TrimSpace(line)}, nil
	}
	if len(tok) != 1 || !Tag(tok[0]).Valid() {
		return nil, &MalformedLineError{
			Line: lineNr,
			Msg:  fmt.Sprintf(`unknown record tag %q`, tok),
			Text: line,
		}
	}

	tag := Tag(tok[0])
	f := newFields(tag, line, off, lineNr)
	var rec Record
	switch tag {
	case TagEvent:
		rec = parseEvent(f)
	case TagVertex:
		rec = parseVertex(f)
	case TagParticle:
		rec = parseParticle(f)
	case TagWeights:
		rec = WeightsRecord{Weights: f.floats(`weight`, f.count(`weight count`, 1))}
	case TagWeightNames:
		rec = parseWeightNames(f)
	case TagUnits:
		rec = parseUnits(f)
	case TagCrossSection:
		rec = CrossSectionRecord{event.CrossSection{
			Value: f.float(`cross section`),
			Error: f.float(`cross section error`),
		}}
	case TagPdfInfo:
		rec = parsePdfInfo(f)
	case TagHeavyIon:
		rec = parseHeavyIon(f)
	}
	if err := f.done(); err != nil {
		return nil, err
	}
	return rec, nil
}

func parseEvent(f *fields) EventRecord {
	r := EventRecord{
		Number:              f.int(`event number`),
		MPI:                 f.int(`mpi`),
		Scale:               f.float(`scale`),
		AlphaQCD:            f.float(`alpha qcd`),
		AlphaQED:            f.float(`alpha qed`),
		SignalProcessID:     f.int(`signal process id`),
		SignalProcessVertex: f.int(`signal process vertex`),
		NumVertices:         f.int(`vertex count`),
	}
	r.Beams[0] = f.int(`beam`)
	r.Beams[1] = f.int(`beam`)
	if n := f.optCount(`random state count`, 1); n > 0 {
		r.RandomStates = make([]int64, n)
		for i := range r.RandomStates {
			r.RandomStates[i] = f.int64(`random state`)
		}
	}
	r.Weights = f.floats(`weight`, f.optCount(`weight count`, 1))
	return r
}

func parseVertex(f *fields) VertexRecord {
	r := VertexRecord{
		Barcode: f.int(`barcode`),
		Status:  f.int(`status`),
		Position: event.FourVector{
			f.float(`x`), f.float(`y`), f.float(`z`), f.float(`t`),
		},
		NumOrphans: f.int(`orphan count`),
		NumOut:     f.int(`outgoing count`),
	}
	r.Weights = f.floats(`weight`, f.count(`weight count`, 1))
	return r
}

func parseParticle(f *fields) ParticleRecord {
	var r ParticleRecord
	p := &r.Particle
	p.Barcode = f.int(`barcode`)
	p.PDG = f.int(`pdg id`)
	p.Momentum = event.FourVector{
		f.float(`px`), f.float(`py`), f.float(`pz`), f.float(`e`),
	}
	p.Mass = f.float(`mass`)
	p.Status = f.int(`status`)
	p.Polarization.Theta = f.float(`theta`)
	p.Polarization.Phi = f.float(`phi`)
	p.EndVertex = f.int(`end vertex`)
	if n := f.count(`flow count`, 2); n > 0 {
		p.Flows = make([]event.Flow, n)
		for i := range p.Flows {
			p.Flows[i].Index = f.int(`flow index`)
			p.Flows[i].Code = f.int(`flow code`)
		}
	}
	return r
}

func parseWeightNames(f *fields) WeightNamesRecord {
	var r WeightNamesRecord
	if n := f.count(`weight name count`, 1); n > 0 {
		r.Names = make([]string, n)
		for i := range r.Names {
			r.Names[i] = f.quoted(`weight name`)
		}
	}
	return r
}

func parseUnits(f *fields) UnitsRecord {
	var (
		r   UnitsRecord
		err error
	)
	if tok, ok := f.next(); ok {
		if r.Momentum, err = event.ParseMomentumUnit(tok); err != nil {
			f.fail(`%v`, err)
		}
	}
	if tok, ok := f.next(); ok {
		if r.Length, err = event.ParseLengthUnit(tok); err != nil {
			f.fail(`%v`, err)
		}
	}
	return r
}

func parsePdfInfo(f *fields) PdfInfoRecord {
	var r PdfInfoRecord
	p := &r.PdfInfo
	p.PartonID[0] = f.int(`parton id`)
	p.PartonID[1] = f.int(`parton id`)
	p.X[0] = f.float(`x`)
	p.X[1] = f.float(`x`)
	p.Scale = f.float(`scale`)
	p.XF[0] = f.float(`xf`)
	p.XF[1] = f.float(`xf`)
	p.PdfID[0] = f.optInt(`pdf id`)
	p.PdfID[1] = f.optInt(`pdf id`)
	return r
}

func parseHeavyIon(f *fields) HeavyIonRecord {
	var r HeavyIonRecord
	h := &r.HeavyIon
	h.NcollHard = f.int(`hard collisions`)
	h.NpartProj = f.int(`projectile participants`)
	h.NpartTarg = f.int(`target participants`)
	h.Ncoll = f.int(`collisions`)
	h.SpectatorNeutrons = f.int(`spectator neutrons`)
	h.SpectatorProtons = f.int(`spectator protons`)
	h.NNwoundedCollisions = f.int(`N-Nwounded collisions`)
	h.NwoundedNCollisions = f.int(`Nwounded-N collisions`)
	h.NwoundedNwoundedCollisions = f.int(`Nwounded-Nwounded collisions`)
	h.ImpactParameter = f.optFloat(`impact parameter`)
	h.EventPlaneAngle = f.optFloat(`event plane angle`)
	h.Eccentricity = f.optFloat(`eccentricity`)
	h.SigmaInelNN = f.optFloat(`sigma inel NN`)
	return r
}
