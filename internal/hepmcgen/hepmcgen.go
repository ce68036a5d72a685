// Package hepmcgen generates random, structurally valid events for tests,
// benchmarks and sample data.
package hepmcgen

import (
	"math"
	"math/rand/v2"

	"github.com/cstockton/go-hepmc/event"
)

// Generator produces events from a seeded source so the same seed always yields
// the same events.
type Generator struct {
	rng *rand.Rand

	// Upper bounds for the size of generated events.
	MaxVertices int
	MaxIn       int
	MaxOut      int
	MaxWeights  int
	MaxFlows    int
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		MaxVertices: 6,
		MaxIn:       2,
		MaxOut:      5,
		MaxWeights:  10,
		MaxFlows:    2,
	}
}

// Events returns n events numbered from 0.
func (g *Generator) Events(n int) []*event.Event {
	out := make([]*event.Event, n)
	for i := range out {
		out[i] = g.Event()
		out[i].Number = i
	}
	return out
}

// Event returns a new event that passes event.Validate.
func (g *Generator) Event() *event.Event {
	r := g.rng
	ev := &event.Event{
		Number:          r.IntN(1 << 20),
		MPI:             r.IntN(20) - 1,
		Scale:           g.float(),
		AlphaQCD:        0.1 + 0.02*r.Float64(),
		AlphaQED:        1. / 137.,
		SignalProcessID: r.IntN(1000),
		Units:           g.units(),
	}
	if n := r.IntN(4); n > 0 {
		ev.RandomStates = make([]int64, n)
		for i := range ev.RandomStates {
			ev.RandomStates[i] = r.Int64() - math.MaxInt64/2
		}
	}
	if n := r.IntN(g.MaxWeights + 1); n > 0 {
		ev.Weights = g.floats(n)
		if r.IntN(2) == 0 {
			ev.WeightNames = make([]string, n)
			for i := range ev.WeightNames {
				ev.WeightNames[i] = g.name()
			}
		}
	}
	if r.IntN(2) == 0 {
		ev.CrossSection = &event.CrossSection{Value: g.float(), Error: g.float()}
	}
	if r.IntN(2) == 0 {
		ev.PdfInfo = &event.PdfInfo{
			PartonID: [2]int{r.IntN(43) - 21, r.IntN(43) - 21},
			X:        [2]float64{r.Float64(), r.Float64()},
			Scale:    g.float(),
			XF:       [2]float64{g.float(), g.float()},
			PdfID:    [2]int{r.IntN(400000), r.IntN(400000)},
		}
	}
	if r.IntN(4) == 0 {
		ev.HeavyIon = &event.HeavyIon{
			NcollHard:                  r.IntN(100),
			NpartProj:                  r.IntN(200),
			NpartTarg:                  r.IntN(200),
			Ncoll:                      r.IntN(1000),
			SpectatorNeutrons:          r.IntN(100),
			SpectatorProtons:           r.IntN(100),
			NNwoundedCollisions:        r.IntN(100),
			NwoundedNCollisions:        r.IntN(100),
			NwoundedNwoundedCollisions: r.IntN(100),
			ImpactParameter:            g.float(),
			EventPlaneAngle:            r.Float64() * 2 * math.Pi,
			Eccentricity:               r.Float64(),
			SigmaInelNN:                g.float(),
		}
	}

	nv := 1 + r.IntN(g.MaxVertices)
	ev.Vertices = make([]event.Vertex, 0, nv)
	barcode := 0
	for i := 0; i < nv; i++ {
		v := ev.AddVertex(event.Vertex{
			Barcode:  -(i + 1),
			Status:   r.IntN(100),
			Position: event.FourVector{g.float(), g.float(), g.float(), g.float()},
		})
		if n := r.IntN(3); n > 0 {
			v.Weights = g.floats(n)
		}
		for j := r.IntN(g.MaxIn + 1); j > 0; j-- {
			barcode++
			v.AddIn(g.particle(barcode))
		}
		for j := r.IntN(g.MaxOut + 1); j > 0; j-- {
			barcode++
			p := g.particle(barcode)
			if nv > 1 && r.IntN(2) == 0 {
				p.EndVertex = g.otherVertex(i, nv)
			}
			v.AddOut(p)
		}
	}
	if r.IntN(2) == 0 {
		ev.SignalProcessVertex = -(1 + r.IntN(nv))
	}
	if barcode > 1 {
		ev.Beams = [2]int{1, 2}
	}
	return ev
}

// otherVertex returns the barcode of a random vertex other than the one at
// index i, particles never flow into the vertex that produced them.
func (g *Generator) otherVertex(i, n int) int {
	j := g.rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return -(j + 1)
}

func (g *Generator) particle(barcode int) event.Particle {
	r := g.rng
	p := event.Particle{
		Barcode:  barcode,
		PDG:      r.IntN(2*2212+1) - 2212,
		Momentum: event.FourVector{g.float(), g.float(), g.float(), g.float()},
		Mass:     math.Abs(g.float()),
		Status:   r.IntN(100),
		Polarization: event.Polarization{
			Theta: r.Float64() * math.Pi,
			Phi:   r.Float64() * 2 * math.Pi,
		},
	}
	if n := r.IntN(g.MaxFlows + 1); n > 0 {
		p.Flows = make([]event.Flow, n)
		for i := range p.Flows {
			p.Flows[i] = event.Flow{Index: i + 1, Code: 500 + r.IntN(100)}
		}
	}
	return p
}

func (g *Generator) units() event.Units {
	u := event.Units{Momentum: event.GEV, Length: event.MM}
	switch g.rng.IntN(4) {
	case 0:
		return event.Units{}
	case 1:
		u.Momentum = event.MEV
	case 2:
		u.Length = event.CM
	}
	return u
}

// float returns a finite value spread over many orders of magnitude.
func (g *Generator) float() float64 {
	r := g.rng
	switch r.IntN(8) {
	case 0:
		return 0
	case 1:
		return -1
	case 2:
		return float64(r.IntN(10000))
	}
	return r.NormFloat64() * math.Pow(10, float64(r.IntN(25)-12))
}

func (g *Generator) floats(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = g.float()
	}
	return out
}

const nameChars = `abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_. =`

// name returns a random weight name, which may contain spaces.
func (g *Generator) name() string {
	b := make([]byte, 1+g.rng.IntN(16))
	for i := range b {
		b[i] = nameChars[g.rng.IntN(len(nameChars))]
	}
	return string(b)
}
