package event

import (
	"fmt"
	"math"
	"strings"
)

// MomentumUnit is the unit of momenta and masses within an event.
type MomentumUnit byte

const (
	// MomentumNone means the event does not declare a momentum unit.
	MomentumNone MomentumUnit = iota
	MEV
	GEV
)

// ParseMomentumUnit returns the unit for the given token, accepting the upper
// case spelling written by encoders as well as the MeV / GeV forms.
func ParseMomentumUnit(s string) (MomentumUnit, error) {
	switch strings.ToUpper(s) {
	case `MEV`:
		return MEV, nil
	case `GEV`:
		return GEV, nil
	}
	return MomentumNone, fmt.Errorf(`unknown momentum unit %q`, s)
}

// Valid returns true if u names a unit.
func (u MomentumUnit) Valid() bool {
	return u == MEV || u == GEV
}

// String implements fmt.Stringer.
func (u MomentumUnit) String() string {
	switch u {
	case MEV:
		return `MEV`
	case GEV:
		return `GEV`
	}
	return ``
}

// MarshalText implements encoding.TextMarshaler.
func (u MomentumUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, empty text is
// MomentumNone.
func (u *MomentumUnit) UnmarshalText(b []byte) (err error) {
	if len(b) == 0 {
		*u = MomentumNone
		return nil
	}
	*u, err = ParseMomentumUnit(string(b))
	return
}

// LengthUnit is the unit of vertex positions within an event.
type LengthUnit byte

const (
	// LengthNone means the event does not declare a length unit.
	LengthNone LengthUnit = iota
	MM
	CM
)

// ParseLengthUnit returns the unit for the given token.
func ParseLengthUnit(s string) (LengthUnit, error) {
	switch strings.ToUpper(s) {
	case `MM`:
		return MM, nil
	case `CM`:
		return CM, nil
	}
	return LengthNone, fmt.Errorf(`unknown length unit %q`, s)
}

// Valid returns true if u names a unit.
func (u LengthUnit) Valid() bool {
	return u == MM || u == CM
}

// String implements fmt.Stringer.
func (u LengthUnit) String() string {
	switch u {
	case MM:
		return `MM`
	case CM:
		return `CM`
	}
	return ``
}

// MarshalText implements encoding.TextMarshaler.
func (u LengthUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, empty text is LengthNone.
func (u *LengthUnit) UnmarshalText(b []byte) (err error) {
	if len(b) == 0 {
		*u = LengthNone
		return nil
	}
	*u, err = ParseLengthUnit(string(b))
	return
}

// Units pairs the momentum and length unit of an event.
type Units struct {
	Momentum MomentumUnit `json:"momentum"`
	Length   LengthUnit   `json:"length"`
}

// IsSet reports whether both units are declared. Events without units do not
// emit a units record.
func (u Units) IsSet() bool {
	return u.Momentum.Valid() && u.Length.Valid()
}

// String implements fmt.Stringer.
func (u Units) String() string {
	if !u.IsSet() {
		return `Units(none)`
	}
	return u.Momentum.String() + ` ` + u.Length.String()
}

// FourVector holds x, y, z, t for positions and px, py, pz, e for momenta.
type FourVector [4]float64

// NewFourVector returns a FourVector from its components.
func NewFourVector(x, y, z, t float64) FourVector {
	return FourVector{x, y, z, t}
}

func (v FourVector) X() float64  { return v[0] }
func (v FourVector) Y() float64  { return v[1] }
func (v FourVector) Z() float64  { return v[2] }
func (v FourVector) T() float64  { return v[3] }
func (v FourVector) Px() float64 { return v[0] }
func (v FourVector) Py() float64 { return v[1] }
func (v FourVector) Pz() float64 { return v[2] }
func (v FourVector) E() float64  { return v[3] }

// Pt returns the transverse component.
func (v FourVector) Pt() float64 {
	return math.Hypot(v[0], v[1])
}

// M2 returns the squared invariant, t² - x² - y² - z².
func (v FourVector) M2() float64 {
	return v[3]*v[3] - v[0]*v[0] - v[1]*v[1] - v[2]*v[2]
}

// IsZero reports whether all components are zero.
func (v FourVector) IsZero() bool {
	return v == FourVector{}
}

// CrossSection is the generator cross section and its error in pb.
type CrossSection struct {
	Value float64 `json:"value"`
	Error float64 `json:"error"`
}

// String implements fmt.Stringer.
func (xs CrossSection) String() string {
	return fmt.Sprintf(`%v ± %v pb`, xs.Value, xs.Error)
}

// PdfInfo describes the parton distribution functions of the hard process.
type PdfInfo struct {
	PartonID [2]int     `json:"parton_id"`
	X        [2]float64 `json:"x"`
	Scale    float64    `json:"scale"`
	XF       [2]float64 `json:"xf"`

	// PdfID are the LHAPDF set ids, zero when not declared.
	PdfID [2]int `json:"pdf_id"`
}

// HeavyIon carries the heavy ion collision parameters. Fields missing from
// older writers are left at zero.
type HeavyIon struct {
	NcollHard                  int     `json:"ncoll_hard"`
	NpartProj                  int     `json:"npart_proj"`
	NpartTarg                  int     `json:"npart_targ"`
	Ncoll                      int     `json:"ncoll"`
	SpectatorNeutrons          int     `json:"spectator_neutrons"`
	SpectatorProtons           int     `json:"spectator_protons"`
	NNwoundedCollisions        int     `json:"n_nwounded_collisions"`
	NwoundedNCollisions        int     `json:"nwounded_n_collisions"`
	NwoundedNwoundedCollisions int     `json:"nwounded_nwounded_collisions"`
	ImpactParameter            float64 `json:"impact_parameter"`
	EventPlaneAngle            float64 `json:"event_plane_angle"`
	Eccentricity               float64 `json:"eccentricity"`
	SigmaInelNN                float64 `json:"sigma_inel_nn"`
}
