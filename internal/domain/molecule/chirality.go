package molecule

import "math"

// chiralVolumeEpsilon is the smallest signed volume treated as a defined
// parity.  Below it the neighbours are coplanar (or overlapping) and the
// centre is left unspecified.
const chiralVolumeEpsilon = 1e-3

// AssignChiralityFromBondDirs derives tetrahedral parity from wedge and dash
// bonds.  A centre is considered when a single wedge or dash bond starts at
// it and it has three or four explicit neighbours; with three, the missing
// substituent is placed opposite the sum of the others.  Chirality tags of
// all other atoms are reset to unspecified.
//
// The graph must have a conformer attached.
func (g *Graph) AssignChiralityFromBondDirs() {
	for _, a := range g.Atoms {
		a.Chirality = ChiralUnspecified
	}
	if g.conformer == nil {
		return
	}
	for _, a := range g.Atoms {
		a.Chirality = g.parityFromDepiction(a.Index)
	}
}

func (g *Graph) parityFromDepiction(center int) ChiralTag {
	bonds := g.AtomBonds(center)
	if len(bonds) < 3 || len(bonds) > 4 {
		return ChiralUnspecified
	}

	anchored := false
	for _, b := range bonds {
		if b.Begin != center {
			continue
		}
		switch b.Direction {
		case DirUnknown:
			// A squiggly bond on the centre means the parity is unknown.
			return ChiralUnspecified
		case DirBeginWedge, DirBeginDash:
			if b.Order == BondSingle {
				anchored = true
			}
		}
	}
	if !anchored {
		return ChiralUnspecified
	}

	origin := g.conformer.Position(center)
	vecs := make([]Point3D, 0, 4)
	for _, b := range bonds {
		d := g.conformer.Position(b.OtherAtom(center)).Sub(origin)
		d.Z = 0
		l := d.Length()
		if l == 0 {
			return ChiralUnspecified
		}
		d = d.Scale(1 / l)
		if b.Begin == center && b.Order == BondSingle {
			switch b.Direction {
			case DirBeginWedge:
				d.Z = 1
			case DirBeginDash:
				d.Z = -1
			}
		}
		vecs = append(vecs, d)
	}
	if len(vecs) == 3 {
		sum := vecs[0].Add(vecs[1]).Add(vecs[2])
		vecs = append(vecs, sum.Scale(-1))
	}

	v0 := vecs[0]
	vol := vecs[1].Sub(v0).Dot(vecs[2].Sub(v0).Cross(vecs[3].Sub(v0)))
	switch {
	case math.Abs(vol) < chiralVolumeEpsilon:
		return ChiralUnspecified
	case vol < 0:
		return ChiralTetrahedralCCW
	default:
		return ChiralTetrahedralCW
	}
}

// ChiralCenters returns the positions of atoms with a defined parity.
func (g *Graph) ChiralCenters() []int {
	var out []int
	for _, a := range g.Atoms {
		if a.Chirality != ChiralUnspecified {
			out = append(out, a.Index)
		}
	}
	return out
}

//Personal.AI order the ending
