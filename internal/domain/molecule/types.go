package molecule

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// BondOrder
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the multiplicity of a covalent bond.  KCF only encodes the
// three integral orders.
type BondOrder int

const (
	BondSingle BondOrder = 1
	BondDouble BondOrder = 2
	BondTriple BondOrder = 3
)

// bondOrders is indexed by the KCF order field minus one.
var bondOrders = [...]BondOrder{BondSingle, BondDouble, BondTriple}

// BondOrderFromInt maps a KCF order field (1, 2 or 3) to a BondOrder.
func BondOrderFromInt(n int) (BondOrder, bool) {
	if n < 1 || n > len(bondOrders) {
		return 0, false
	}
	return bondOrders[n-1], true
}

// Valence returns the bond's contribution to an endpoint's explicit valence.
func (o BondOrder) Valence() int { return int(o) }

func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "SINGLE"
	case BondDouble:
		return "DOUBLE"
	case BondTriple:
		return "TRIPLE"
	default:
		return fmt.Sprintf("BondOrder(%d)", int(o))
	}
}

// ParseBondOrder is the inverse of BondOrder.String.
func ParseBondOrder(s string) (BondOrder, error) {
	switch strings.ToUpper(s) {
	case "SINGLE":
		return BondSingle, nil
	case "DOUBLE":
		return BondDouble, nil
	case "TRIPLE":
		return BondTriple, nil
	}
	return 0, fmt.Errorf("molecule: unknown bond order %q", s)
}

// ─────────────────────────────────────────────────────────────────────────────
// BondDir
// ─────────────────────────────────────────────────────────────────────────────

// BondDir records the 2D depiction of a bond.  Wedge and dash directions are
// anchored at the bond's Begin atom (the narrow end).
type BondDir int

const (
	DirNone BondDir = iota
	DirBeginWedge
	DirBeginDash
	DirUnknown
	DirEitherDouble
)

var bondDirNames = [...]string{"NONE", "BEGINWEDGE", "BEGINDASH", "UNKNOWN", "EITHERDOUBLE"}

func (d BondDir) String() string {
	if d < 0 || int(d) >= len(bondDirNames) {
		return fmt.Sprintf("BondDir(%d)", int(d))
	}
	return bondDirNames[d]
}

// ParseBondDir is the inverse of BondDir.String.
func ParseBondDir(s string) (BondDir, error) {
	for i, name := range bondDirNames {
		if strings.EqualFold(name, s) {
			return BondDir(i), nil
		}
	}
	return DirNone, fmt.Errorf("molecule: unknown bond direction %q", s)
}

// ─────────────────────────────────────────────────────────────────────────────
// BondStereo
// ─────────────────────────────────────────────────────────────────────────────

// BondStereo describes double-bond geometry.  Only the undetermined flag is
// ever produced from KCF input.
type BondStereo int

const (
	StereoNone BondStereo = iota
	StereoAny
)

func (s BondStereo) String() string {
	switch s {
	case StereoNone:
		return "STEREONONE"
	case StereoAny:
		return "STEREOANY"
	default:
		return fmt.Sprintf("BondStereo(%d)", int(s))
	}
}

// ParseBondStereo is the inverse of BondStereo.String.
func ParseBondStereo(s string) (BondStereo, error) {
	switch strings.ToUpper(s) {
	case "", "STEREONONE":
		return StereoNone, nil
	case "STEREOANY":
		return StereoAny, nil
	}
	return StereoNone, fmt.Errorf("molecule: unknown bond stereo %q", s)
}

// ─────────────────────────────────────────────────────────────────────────────
// ChiralTag
// ─────────────────────────────────────────────────────────────────────────────

// ChiralTag is the tetrahedral parity of an atom.  CW and CCW describe the
// order of the remaining neighbours viewed from the first neighbour (in bond
// declaration order) towards the centre; an implicit hydrogen counts as the
// last neighbour.
type ChiralTag int

const (
	ChiralUnspecified ChiralTag = iota
	ChiralTetrahedralCW
	ChiralTetrahedralCCW
)

func (c ChiralTag) String() string {
	switch c {
	case ChiralUnspecified:
		return "CHI_UNSPECIFIED"
	case ChiralTetrahedralCW:
		return "CHI_TETRAHEDRAL_CW"
	case ChiralTetrahedralCCW:
		return "CHI_TETRAHEDRAL_CCW"
	default:
		return fmt.Sprintf("ChiralTag(%d)", int(c))
	}
}

// ParseChiralTag is the inverse of ChiralTag.String.
func ParseChiralTag(s string) (ChiralTag, error) {
	switch strings.ToUpper(s) {
	case "", "CHI_UNSPECIFIED":
		return ChiralUnspecified, nil
	case "CHI_TETRAHEDRAL_CW":
		return ChiralTetrahedralCW, nil
	case "CHI_TETRAHEDRAL_CCW":
		return ChiralTetrahedralCCW, nil
	}
	return ChiralUnspecified, fmt.Errorf("molecule: unknown chiral tag %q", s)
}

// Invert swaps CW and CCW; unspecified stays unspecified.
func (c ChiralTag) Invert() ChiralTag {
	switch c {
	case ChiralTetrahedralCW:
		return ChiralTetrahedralCCW
	case ChiralTetrahedralCCW:
		return ChiralTetrahedralCW
	default:
		return c
	}
}

//Personal.AI order the ending
