// Package encoding implements a streaming Decoder and Encoder for the HepMC2
// IO_GenEvent text format. For a higher level interface see the parent hepmc
// package.
//
// Overview
//
// An IO_GenEvent stream is a sequence of lines. Each line is a record whose
// first token is a single letter tag, followed by whitespace separated fields.
// Events begin with an E record and continue until the next E record or the end
// of the stream:
//
//   HepMC::Version 2.06.09
//   HepMC::IO_GenEvent-START_EVENT_LISTING
//   E 0 -1 -1 -1 -1 1 0 1 1 0 0 0
//   U GEV MM
//   V -1 0 0 0 0 0 1 1 0
//   P 1 2212 0 0 7000 7000 0.938 4 0 0 -1 0
//   P 2 21 0 0 10 10 0 1 0 0 0 0
//   HepMC::IO_GenEvent-END_EVENT_LISTING
//
// Lines starting with HepMC:: are banners and carry no event data. The Decoder
// assembles records into a complete *event.Event one event at a time, so memory
// is bounded by the largest single event and not the stream.
//
// Errors
//
// Problems confined to one event, such as a malformed line, a record out of
// context or a structural invariant violation, are returned from the Decode call
// for that event only. The Decoder then skips ahead to the next E record and may
// continue to be used. Failures of the underlying transport are permanent.
//
// Transports
//
// Both the Decoder and Encoder speak to a LineSource or LineSink. Blocking
// adapters wrap an io.Reader or io.Writer, while the channel based adapters let
// a caller suspend on a context without blocking a thread on I/O. The codec
// logic is shared between the two.
package encoding

import (
	"fmt"

	"github.com/cstockton/go-hepmc/event"
)

// Tag identifies the kind of a record by the letter it begins with.
type Tag byte

// Record tags, the values are the letter written at the start of the line.
const (
	TagNone         Tag = 0
	TagEvent        Tag = 'E'
	TagVertex       Tag = 'V'
	TagParticle     Tag = 'P'
	TagWeights      Tag = 'W'
	TagWeightNames  Tag = 'N'
	TagUnits        Tag = 'U'
	TagCrossSection Tag = 'C'
	TagPdfInfo      Tag = 'F'
	TagHeavyIon     Tag = 'H'
)

// Valid returns true if t is a known record tag, false otherwise.
func (t Tag) Valid() bool {
	_, ok := schemas[t]
	return ok
}

// Name returns the human readable name of the record, such as "vertex".
func (t Tag) Name() string {
	if s, ok := schemas[t]; ok {
		return s.name
	}
	return `unknown`
}

// Header reports whether records with this tag belong to the event header,
// which must precede the first vertex of an event.
func (t Tag) Header() bool {
	switch t {
	case TagUnits, TagCrossSection, TagPdfInfo, TagHeavyIon, TagWeightNames:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf(`Tag(%q)`, byte(t))
	}
	return string(rune(t))
}

// Latest is the format version written by the Encoder.
const Latest = event.Latest

type schema struct {
	name string

	// fixed is the number of tokens after the tag that must always be present.
	// Optional trailing fields and counted lists such as weights and flows are
	// added to it while reading.
	fixed int
}

var schemas = map[Tag]schema{
	TagEvent:        {`event`, 10},
	TagVertex:       {`vertex`, 9},
	TagParticle:     {`particle`, 12},
	TagWeights:      {`weights`, 1},
	TagWeightNames:  {`weight names`, 1},
	TagUnits:        {`units`, 2},
	TagCrossSection: {`cross section`, 2},
	TagPdfInfo:      {`pdf info`, 7},
	TagHeavyIon:     {`heavy ion`, 9},
}

const (
	// Guards against a bad file causing a huge allocation from a single count
	// field. Counts are additionally bounded by the tokens present on the line.
	maxCount = 1e6
)
