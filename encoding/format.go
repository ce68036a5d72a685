package encoding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cstockton/go-hepmc/event"
)

// appendFloat writes the shortest representation of v that parses back to the
// exact same bits.
func appendFloat(b []byte, v float64) []byte {
	return strconv.AppendFloat(b, v, 'g', -1, 64)
}

func appendInt(b []byte, v int) []byte {
	return strconv.AppendInt(b, int64(v), 10)
}

func appendTag(b []byte, t Tag) []byte {
	return append(b, byte(t))
}

func appendInts(b []byte, vs ...int) []byte {
	for _, v := range vs {
		b = appendInt(append(b, ' '), v)
	}
	return b
}

func appendFloats(b []byte, vs ...float64) []byte {
	for _, v := range vs {
		b = appendFloat(append(b, ' '), v)
	}
	return b
}

// appendCounted writes len(vs) followed by each value.
func appendCounted(b []byte, vs []float64) []byte {
	b = appendInts(b, len(vs))
	return appendFloats(b, vs...)
}

// Append implements Record.
func (r Banner) Append(b []byte) []byte {
	return append(b, r.Text...)
}

// Append implements Record.
func (r EventRecord) Append(b []byte) []byte {
	b = appendTag(b, TagEvent)
	b = appendInts(b, r.Number, r.MPI)
	b = appendFloats(b, r.Scale, r.AlphaQCD, r.AlphaQED)
	b = appendInts(b, r.SignalProcessID, r.SignalProcessVertex, r.NumVertices,
		r.Beams[0], r.Beams[1], len(r.RandomStates))
	for _, v := range r.RandomStates {
		b = strconv.AppendInt(append(b, ' '), v, 10)
	}
	return appendCounted(b, r.Weights)
}

// Append implements Record.
func (r VertexRecord) Append(b []byte) []byte {
	b = appendTag(b, TagVertex)
	b = appendInts(b, r.Barcode, r.Status)
	b = appendFloats(b, r.Position[:]...)
	b = appendInts(b, r.NumOrphans, r.NumOut)
	return appendCounted(b, r.Weights)
}

// Append implements Record.
func (r ParticleRecord) Append(b []byte) []byte {
	p := &r.Particle
	b = appendTag(b, TagParticle)
	b = appendInts(b, p.Barcode, p.PDG)
	b = appendFloats(b, p.Momentum[:]...)
	b = appendFloats(b, p.Mass)
	b = appendInts(b, p.Status)
	b = appendFloats(b, p.Polarization.Theta, p.Polarization.Phi)
	b = appendInts(b, p.EndVertex, len(p.Flows))
	for _, fl := range p.Flows {
		b = appendInts(b, fl.Index, fl.Code)
	}
	return b
}

// Append implements Record.
func (r WeightsRecord) Append(b []byte) []byte {
	return appendCounted(appendTag(b, TagWeights), r.Weights)
}

// Append implements Record. Names can not contain a double quote.
func (r WeightNamesRecord) Append(b []byte) []byte {
	b = appendInts(appendTag(b, TagWeightNames), len(r.Names))
	for _, name := range r.Names {
		b = append(b, ' ', '"')
		b = append(b, name...)
		b = append(b, '"')
	}
	return b
}

// Append implements Record.
func (r UnitsRecord) Append(b []byte) []byte {
	b = append(appendTag(b, TagUnits), ' ')
	b = append(b, r.Momentum.String()...)
	b = append(b, ' ')
	return append(b, r.Length.String()...)
}

// Append implements Record.
func (r CrossSectionRecord) Append(b []byte) []byte {
	return appendFloats(appendTag(b, TagCrossSection), r.Value, r.Error)
}

// Append implements Record.
func (r PdfInfoRecord) Append(b []byte) []byte {
	p := &r.PdfInfo
	b = appendInts(appendTag(b, TagPdfInfo), p.PartonID[0], p.PartonID[1])
	b = appendFloats(b, p.X[0], p.X[1], p.Scale, p.XF[0], p.XF[1])
	return appendInts(b, p.PdfID[0], p.PdfID[1])
}

// Append implements Record.
func (r HeavyIonRecord) Append(b []byte) []byte {
	h := &r.HeavyIon
	b = appendInts(appendTag(b, TagHeavyIon),
		h.NcollHard, h.NpartProj, h.NpartTarg, h.Ncoll,
		h.SpectatorNeutrons, h.SpectatorProtons,
		h.NNwoundedCollisions, h.NwoundedNCollisions, h.NwoundedNwoundedCollisions)
	return appendFloats(b, h.ImpactParameter, h.EventPlaneAngle, h.Eccentricity, h.SigmaInelNN)
}

// eventRecord returns the E record for ev. Weights are left off when they are
// written on a separate W line.
func eventRecord(ev *event.Event, weights bool) EventRecord {
	r := EventRecord{
		Number:              ev.Number,
		MPI:                 ev.MPI,
		Scale:               ev.Scale,
		AlphaQCD:            ev.AlphaQCD,
		AlphaQED:            ev.AlphaQED,
		SignalProcessID:     ev.SignalProcessID,
		SignalProcessVertex: ev.SignalProcessVertex,
		NumVertices:         len(ev.Vertices),
		Beams:               ev.Beams,
		RandomStates:        ev.RandomStates,
	}
	if weights {
		r.Weights = ev.Weights
	}
	return r
}

// vertexRecord returns the V record for v. The counts written are always the
// number of particles that follow so the output is self consistent.
func vertexRecord(v *event.Vertex) VertexRecord {
	return VertexRecord{
		Barcode:    v.Barcode,
		Status:     v.Status,
		Position:   v.Position,
		NumOrphans: len(v.In),
		NumOut:     len(v.Out),
		Weights:    v.Weights,
	}
}

// AppendEvent appends every record of ev to b, each terminated by a newline.
// When weightLine is true the weights are written on a W line instead of the E
// line. If ev can not be represented b is returned unchanged with an error
// matching ErrUnencodable.
func AppendEvent(b []byte, ev *event.Event, weightLine bool) ([]byte, error) {
	if err := encodable(ev); err != nil {
		return b, err
	}
	_ = eachRecord(ev, weightLine, func(r Record) error {
		b = append(r.Append(b), '\n')
		return nil
	})
	return b, nil
}

// encodable returns an error for the values of ev a U or N line can not hold.
func encodable(ev *event.Event) error {
	if u := ev.Units; u != (event.Units{}) && !u.IsSet() {
		return fmt.Errorf(`%w: event %d: units %q %q must be set together`,
			ErrUnencodable, ev.Number, u.Momentum, u.Length)
	}
	for _, name := range ev.WeightNames {
		if strings.ContainsAny(name, "\"\r\n") {
			return fmt.Errorf(`%w: event %d: weight name %q may not contain a quote or line break`,
				ErrUnencodable, ev.Number, name)
		}
	}
	return nil
}

// eachRecord calls fn with each record of ev in the order they are written,
// stopping at the first error.
func eachRecord(ev *event.Event, weightLine bool, fn func(Record) error) error {
	inline := !weightLine
	if err := fn(eventRecord(ev, inline)); err != nil {
		return err
	}
	var hdr []Record
	if ev.Units.IsSet() {
		hdr = append(hdr, UnitsRecord{ev.Units})
	}
	if ev.CrossSection != nil {
		hdr = append(hdr, CrossSectionRecord{*ev.CrossSection})
	}
	if ev.PdfInfo != nil {
		hdr = append(hdr, PdfInfoRecord{*ev.PdfInfo})
	}
	if ev.HeavyIon != nil {
		hdr = append(hdr, HeavyIonRecord{*ev.HeavyIon})
	}
	if len(ev.WeightNames) > 0 {
		hdr = append(hdr, WeightNamesRecord{ev.WeightNames})
	}
	if !inline && len(ev.Weights) > 0 {
		hdr = append(hdr, WeightsRecord{ev.Weights})
	}
	for _, r := range hdr {
		if err := fn(r); err != nil {
			return err
		}
	}

	for i := range ev.Vertices {
		v := &ev.Vertices[i]
		if err := fn(vertexRecord(v)); err != nil {
			return err
		}
		for j := range v.In {
			if err := fn(ParticleRecord{v.In[j]}); err != nil {
				return err
			}
		}
		for j := range v.Out {
			if err := fn(ParticleRecord{v.Out[j]}); err != nil {
				return err
			}
		}
	}
	return nil
}
