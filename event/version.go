package event

import (
	"fmt"
	"strings"
)

// Version information:
//
//   Version2_06 - HepMC 2.06 - IO_GenEvent
//     Adds units, cross section and weight name records.
//
const (

	// Version2_06 is the IO_GenEvent flavor written by HepMC 2.06.
	Version2_06 Version = 1

	// Latest always points to the newest supported version for convenience.
	Latest = Version2_06
)

// Banner lines surrounding a stream of events.
const (
	BannerPrefix = `HepMC::`
	BannerStart  = `HepMC::IO_GenEvent-START_EVENT_LISTING`
	BannerEnd    = `HepMC::IO_GenEvent-END_EVENT_LISTING`
)

// Version of the format declared in the header of a stream.
type Version byte

// Valid returns true if this version object is from a valid header, false
// otherwise.
func (v Version) Valid() bool {
	return Version2_06 <= v && v <= Latest
}

// Release returns the full HepMC release this version is written as.
func (v Version) Release() string {
	switch v {
	case Version2_06:
		return `2.06.09`
	}
	return ``
}

// Header returns the version banner line for v.
func (v Version) Header() string {
	return BannerPrefix + `Version ` + v.Release()
}

// ParseVersion parses a version banner line such as "HepMC::Version 2.06.09".
// Any 2.x release is read as Latest since the text grammar did not change.
func ParseVersion(line string) (Version, error) {
	rel, ok := strings.CutPrefix(strings.TrimSpace(line), BannerPrefix+`Version `)
	if !ok {
		return 0, fmt.Errorf(`malformed version banner %q`, line)
	}
	if !strings.HasPrefix(strings.TrimSpace(rel), `2.`) {
		return 0, fmt.Errorf(`unsupported version %q`, rel)
	}
	return Latest, nil
}

// String implements fmt.Stringer.
func (v Version) String() string {
	if !v.Valid() {
		return `Version(none)`
	}
	return fmt.Sprintf(`Version(%v)`, v.Release())
}
