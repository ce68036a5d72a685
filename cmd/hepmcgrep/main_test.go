package main

import (
	"testing"

	"github.com/cstockton/go-hepmc/event"
	"github.com/cstockton/go-hepmc/internal/hepmcgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePDG(t *testing.T) {
	ids, err := parsePDG(`13, -13,,22`)
	require.NoError(t, err)
	assert.Equal(t, []int{13, -13, 22}, ids)

	ids, err = parsePDG(``)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parsePDG(`mu`)
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	ev := &event.Event{}
	v := ev.AddVertex(event.Vertex{Barcode: -1})
	v.AddIn(event.Particle{Barcode: 1, PDG: 2212, Status: 4})
	v.AddOut(event.Particle{Barcode: 2, PDG: 23, Status: 62, EndVertex: -2})
	v = ev.AddVertex(event.Vertex{Barcode: -2})
	v.AddOut(event.Particle{Barcode: 3, PDG: 13, Status: 1})

	defer func(status int, final bool) {
		flagStatus, flagFinal = status, final
	}(flagStatus, flagFinal)

	tests := []struct {
		ids    []int
		status int
		final  bool
		exp    bool
	}{
		{nil, -1, false, true},
		{[]int{13}, -1, false, true},
		{[]int{11, -11}, -1, false, false},
		{[]int{23}, -1, true, false},
		{[]int{23}, 62, false, true},
		{[]int{2212}, 1, false, false},
		{nil, 1, true, true},
	}
	for _, test := range tests {
		flagStatus, flagFinal = test.status, test.final
		assert.Equal(t, test.exp, matcher(test.ids)(ev), `test %+v`, test)
	}
}

func TestMatcherGenerated(t *testing.T) {
	defer func(status int, final bool) {
		flagStatus, flagFinal = status, final
	}(flagStatus, flagFinal)
	flagStatus, flagFinal = -1, false

	matchAll := matcher(nil)
	for _, ev := range hepmcgen.New(5).Events(20) {
		assert.Equal(t, ev.NumParticles() > 0, matchAll(ev))
	}
}
