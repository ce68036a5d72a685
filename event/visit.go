package event

import "errors"

// SkipVertex may be returned from VisitVertex to skip the particles of that
// vertex.
var SkipVertex = errors.New(`skip vertex`)

// Visitor is called by Walk for every vertex and particle of an event in the
// order they are declared. For each vertex the incoming orphans are visited
// before the outgoing particles.
type Visitor interface {
	VisitVertex(v *Vertex) error
	VisitParticle(v *Vertex, p *Particle, incoming bool) error
}

// Walk visits every element of e with vis, stopping at the first error.
func Walk(e *Event, vis Visitor) error {
	for i := range e.Vertices {
		v := &e.Vertices[i]
		if err := vis.VisitVertex(v); err != nil {
			if err == SkipVertex {
				continue
			}
			return err
		}
		for j := range v.In {
			if err := vis.VisitParticle(v, &v.In[j], true); err != nil {
				return err
			}
		}
		for j := range v.Out {
			if err := vis.VisitParticle(v, &v.Out[j], false); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParticleFunc adapts a func to a Visitor that only observes particles.
type ParticleFunc func(v *Vertex, p *Particle, incoming bool) error

func (fn ParticleFunc) VisitVertex(*Vertex) error { return nil }

func (fn ParticleFunc) VisitParticle(v *Vertex, p *Particle, incoming bool) error {
	return fn(v, p, incoming)
}
