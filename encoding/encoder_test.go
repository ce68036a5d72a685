package encoding

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cstockton/go-hepmc/event"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSink is a LineSink that keeps every line written to it.
type recordSink struct {
	lines   []string
	flushes int

	// failAt is the line number WriteLine fails on with err, 0 for never.
	failAt   int
	err      error
	flushErr error
	panics   bool
}

func (s *recordSink) WriteLine(ctx context.Context, line []byte) error {
	if s.panics {
		panic(`recordSink: panics`)
	}
	if len(s.lines)+1 == s.failAt {
		return s.err
	}
	s.lines = append(s.lines, string(line))
	return nil
}

func (s *recordSink) Flush(ctx context.Context) error {
	s.flushes++
	return s.flushErr
}

func testMinimalEvent() *event.Event {
	ev := &event.Event{
		MPI:             -1,
		Scale:           -1,
		AlphaQCD:        -1,
		AlphaQED:        -1,
		SignalProcessID: 1,
		Beams:           [2]int{1, 0},
		Units:           event.Units{Momentum: event.GEV, Length: event.MM},
	}
	v := ev.AddVertex(event.Vertex{Barcode: -1})
	v.AddOut(event.Particle{
		Barcode:  1,
		PDG:      22,
		Momentum: event.FourVector{0, 0, 10, 10},
		Status:   1,
	})
	return ev
}

// testFullEvent returns an event using every record type.
func testFullEvent() *event.Event {
	ev := &event.Event{
		Number:              9,
		MPI:                 3,
		Scale:               91.1876,
		AlphaQCD:            0.118,
		AlphaQED:            0.0078125,
		SignalProcessID:     20,
		SignalProcessVertex: -2,
		Beams:               [2]int{1, 2},
		RandomStates:        []int64{7, -8},
		Weights:             []float64{1, 0.5},
		WeightNames:         []string{`nominal`, `alt var`},
		Units:               event.Units{Momentum: event.MEV, Length: event.CM},
		CrossSection:        &event.CrossSection{Value: 1.5, Error: 0.25},
		PdfInfo: &event.PdfInfo{
			PartonID: [2]int{21, -1}, X: [2]float64{0.5, 0.25}, Scale: 10,
			XF: [2]float64{1, 2}, PdfID: [2]int{3, 4},
		},
		HeavyIon: &event.HeavyIon{NcollHard: 1, Ncoll: 2, ImpactParameter: 0.5},
	}
	v := ev.AddVertex(event.Vertex{Barcode: -1, Status: 1})
	v.AddIn(event.Particle{Barcode: 1, PDG: 2212, Momentum: event.FourVector{0, 0, 7000, 7000}, Status: 4})
	v.AddOut(event.Particle{Barcode: 3, PDG: 21, Momentum: event.FourVector{0, 0, 5, 5}, Status: 3,
		EndVertex: -2, Flows: []event.Flow{{Index: 1, Code: 501}}})
	v = ev.AddVertex(event.Vertex{Barcode: -2, Position: event.FourVector{0.5, 0, 0, 1e-12}, Weights: []float64{2}})
	v.AddIn(event.Particle{Barcode: 2, PDG: 2212, Momentum: event.FourVector{0, 0, -7000, 7000}, Status: 4})
	v.AddOut(event.Particle{Barcode: 4, PDG: 25, Momentum: event.FourVector{1, 2, 3, 125}, Mass: 125, Status: 1,
		Polarization: event.Polarization{Theta: 0.25, Phi: 1.5}})
	return ev
}

const testFullEventText = `E 9 3 91.1876 0.118 0.0078125 20 -2 2 1 2 2 7 -8 2 1 0.5
U MEV CM
C 1.5 0.25
F 21 -1 0.5 0.25 10 1 2 3 4
H 1 0 0 2 0 0 0 0 0 0.5 0 0 0
N 2 "nominal" "alt var"
V -1 1 0 0 0 0 1 1 0
P 1 2212 0 0 7000 7000 0 4 0 0 -1 0
P 3 21 0 0 5 5 0 3 0 0 -2 1 1 501
V -2 0 0.5 0 0 1e-12 1 1 1 2
P 2 2212 0 0 -7000 7000 0 4 0 0 -2 0
P 4 25 1 2 3 125 125 1 0.25 1.5 0 0
`

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(testMinimalEvent()))
	assert.Equal(t, 1, enc.Count())
	require.NoError(t, enc.Close())

	exp := lines(
		`HepMC::Version 2.06.09`,
		`HepMC::IO_GenEvent-START_EVENT_LISTING`,
		`E 0 -1 -1 -1 -1 1 0 1 1 0 0 0`,
		`U GEV MM`,
		`V -1 0 0 0 0 0 0 1 0`,
		`P 1 22 0 0 10 10 0 1 0 0 0 0`,
		`HepMC::IO_GenEvent-END_EVENT_LISTING`,
	)
	assert.Equal(t, exp, buf.String())

	t.Run(`Full`, func(t *testing.T) {
		sink := new(recordSink)
		enc := NewSinkEncoder(sink, WithHeader(nil))
		require.NoError(t, enc.Encode(testFullEvent()))
		require.NoError(t, enc.Close())
		assert.Equal(t, testFullEventText+event.BannerEnd, strings.Join(sink.lines, "\n"))
		assert.Equal(t, 1, sink.flushes)
		assert.Same(t, sink, enc.Sink())
	})
	t.Run(`WeightLine`, func(t *testing.T) {
		sink := new(recordSink)
		enc := NewSinkEncoder(sink, WithHeader(nil), WithWeightLine(true))
		defer enc.Close()
		require.NoError(t, enc.Encode(testFullEvent()))
		require.GreaterOrEqual(t, len(sink.lines), 7)
		assert.Equal(t, `E 9 3 91.1876 0.118 0.0078125 20 -2 2 1 2 2 7 -8 0`, sink.lines[0])
		assert.Equal(t, `N 2 "nominal" "alt var"`, sink.lines[5])
		assert.Equal(t, `W 2 1 0.5`, sink.lines[6])
		assert.Equal(t, `V -1 1 0 0 0 0 1 1 0`, sink.lines[7])
	})
	t.Run(`Header`, func(t *testing.T) {
		var buf bytes.Buffer
		enc := NewEncoder(&buf, WithHeader([]string{`HepMC::Version 2.06.05`, event.BannerStart}))
		require.NoError(t, enc.Close())
		assert.Equal(t, lines(`HepMC::Version 2.06.05`, event.BannerStart, event.BannerEnd), buf.String())
	})
	t.Run(`Empty`, func(t *testing.T) {
		var buf bytes.Buffer
		enc := NewEncoder(&buf)
		require.NoError(t, enc.Close())
		assert.Equal(t, lines(Latest.Header(), event.BannerStart, event.BannerEnd), buf.String())
		assert.Equal(t, 0, enc.Count())
	})
	t.Run(`InOrder`, func(t *testing.T) {
		// Incoming particles are written before outgoing ones regardless of
		// the order they were added.
		ev := &event.Event{}
		v := ev.AddVertex(event.Vertex{Barcode: -1})
		v.AddOut(event.Particle{Barcode: 2, Status: 1})
		v.AddIn(event.Particle{Barcode: 1, Status: 4})

		b, err := AppendEvent(nil, ev, false)
		require.NoError(t, err)
		exp := lines(
			`E 0 0 0 0 0 0 0 1 0 0 0 0`,
			`V -1 0 0 0 0 0 1 1 0`,
			`P 1 0 0 0 0 0 0 4 0 0 -1 0`,
			`P 2 0 0 0 0 0 0 1 0 0 0 0`,
		)
		assert.Equal(t, exp, string(b))
	})
	t.Run(`Counts`, func(t *testing.T) {
		// The counts written always match the particles that follow.
		ev := testMinimalEvent()
		ev.Vertices[0].NumOut = 5
		ev.Vertices[0].NumOrphans = 2
		b, err := AppendEvent(nil, ev, false)
		require.NoError(t, err)
		assert.Contains(t, string(b), "\nV -1 0 0 0 0 0 0 1 0\n")
	})
}

func TestEncoderErrors(t *testing.T) {
	t.Run(`NilEvent`, func(t *testing.T) {
		enc := NewSinkEncoder(new(recordSink))
		require.Error(t, enc.Encode(nil))
		require.NoError(t, enc.Err())
	})
	t.Run(`Closed`, func(t *testing.T) {
		sink := new(recordSink)
		enc := NewSinkEncoder(sink)
		require.NoError(t, enc.Close())
		require.NoError(t, enc.Close())
		assert.Equal(t, 1, sink.flushes, `exp Close to only finish once`)
		assert.Equal(t, ErrClosed, enc.Encode(testMinimalEvent()))
	})
	t.Run(`Context`, func(t *testing.T) {
		sink := new(recordSink)
		enc := NewSinkEncoder(sink)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, enc.EncodeContext(ctx, testMinimalEvent()), context.Canceled)
		require.NoError(t, enc.Err())
		assert.Empty(t, sink.lines)

		require.NoError(t, enc.Encode(testMinimalEvent()))
		assert.Equal(t, 1, enc.Count())
	})
	t.Run(`Unencodable`, func(t *testing.T) {
		tests := []struct {
			name string
			mod  func(ev *event.Event)
			exp  string
		}{
			{`MomentumOnly`, func(ev *event.Event) {
				ev.Units = event.Units{Momentum: event.GEV}
			}, `event can not be encoded: event 0: units "GEV" "" must be set together`},
			{`LengthOnly`, func(ev *event.Event) {
				ev.Units = event.Units{Length: event.CM}
			}, `event can not be encoded: event 0: units "" "CM" must be set together`},
			{`QuotedWeightName`, func(ev *event.Event) {
				ev.Weights, ev.WeightNames = []float64{1}, []string{`a"b`}
			}, `event can not be encoded: event 0: weight name "a\"b" may not contain a quote or line break`},
			{`MultiLineWeightName`, func(ev *event.Event) {
				ev.Weights, ev.WeightNames = []float64{1}, []string{"a\nb"}
			}, `event can not be encoded: event 0: weight name "a\nb" may not contain a quote or line break`},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				ev := testMinimalEvent()
				test.mod(ev)

				sink := new(recordSink)
				enc := NewSinkEncoder(sink)
				defer enc.Close()

				err := enc.Encode(ev)
				require.ErrorIs(t, err, ErrUnencodable)
				assert.Equal(t, test.exp, err.Error())
				assert.Empty(t, sink.lines, `exp nothing written for a rejected event`)
				require.NoError(t, enc.Err(), `exp rejected events to not be permanent`)

				require.NoError(t, enc.Encode(testMinimalEvent()))
				assert.Equal(t, 1, enc.Count())

				b, err := AppendEvent([]byte(`x`), ev, false)
				require.ErrorIs(t, err, ErrUnencodable)
				assert.Equal(t, `x`, string(b))
			})
		}
	})
	t.Run(`Sink`, func(t *testing.T) {
		boom := errors.New(`boom`)
		sink := &recordSink{failAt: 4, err: boom}
		enc := NewSinkEncoder(sink)

		err := enc.Encode(testMinimalEvent())
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 4, te.Line)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, ErrTransport)
		assert.Equal(t, 0, enc.Count())

		assert.Equal(t, err, enc.Encode(testMinimalEvent()), `exp sink errors to be permanent`)
		assert.Equal(t, err, enc.Close())
		assert.Equal(t, err, enc.Err())
		assert.Len(t, sink.lines, 3)
		assert.Equal(t, 0, sink.flushes)
	})
	t.Run(`Flush`, func(t *testing.T) {
		boom := errors.New(`boom`)
		sink := &recordSink{flushErr: boom}
		enc := NewSinkEncoder(sink)
		require.NoError(t, enc.Encode(testMinimalEvent()))

		err := enc.Close()
		require.ErrorIs(t, err, boom)
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 7, te.Line)
	})
}

func TestEncoderAbandon(t *testing.T) {
	t.Run(`Footer`, func(t *testing.T) {
		sink := new(recordSink)
		enc := NewSinkEncoder(sink)
		require.NoError(t, enc.Encode(testMinimalEvent()))
		enc.cleanup.Stop()

		abandon(enc.st)
		require.NotEmpty(t, sink.lines)
		assert.Equal(t, event.BannerEnd, sink.lines[len(sink.lines)-1])
		assert.Equal(t, 1, sink.flushes)
	})
	t.Run(`Closed`, func(t *testing.T) {
		sink := new(recordSink)
		enc := NewSinkEncoder(sink)
		require.NoError(t, enc.Close())
		n := len(sink.lines)

		abandon(enc.st)
		assert.Len(t, sink.lines, n)
		assert.Equal(t, 1, sink.flushes)
	})
	t.Run(`Failed`, func(t *testing.T) {
		sink := &recordSink{failAt: 1, err: errors.New(`boom`)}
		enc := NewSinkEncoder(sink)
		require.Error(t, enc.Encode(testMinimalEvent()))
		enc.cleanup.Stop()

		abandon(enc.st)
		assert.Equal(t, 0, sink.flushes)
	})
	t.Run(`Panic`, func(t *testing.T) {
		sink := &recordSink{panics: true}
		enc := NewSinkEncoder(sink)
		enc.cleanup.Stop()
		assert.NotPanics(t, func() { abandon(enc.st) })
	})
}

func TestEncoderRoundTrip(t *testing.T) {
	opt := cmpopts.EquateEmpty()
	for _, f := range testLoadFiles(t).Valid() {
		t.Run(f.Name, func(t *testing.T) {
			var evs []*event.Event
			for ev, err := range NewDecoder(bytes.NewReader(f.Data)).Events(context.Background()) {
				require.NoError(t, err)
				evs = append(evs, ev)
			}

			var buf bytes.Buffer
			enc := NewEncoder(&buf)
			for _, ev := range evs {
				require.NoError(t, enc.Encode(ev))
			}
			require.NoError(t, enc.Close())

			var got []*event.Event
			for ev, err := range NewDecoder(&buf).Events(context.Background()) {
				require.NoError(t, err)
				got = append(got, ev)
			}
			if diff := cmp.Diff(evs, got, opt); diff != `` {
				t.Fatalf("exp events (-exp +got):\n%s", diff)
			}
		})
	}
	t.Run(`SelfLoop`, func(t *testing.T) {
		// An outgoing particle flowing into its own vertex would read back as
		// an orphan incoming particle.
		ev := testMinimalEvent()
		ev.Vertices[0].Out[0].EndVertex = -1

		var v *event.Violation
		require.ErrorAs(t, ev.Validate(), &v)
		assert.Equal(t, event.SelfLoop, v.Kind)
	})
}
