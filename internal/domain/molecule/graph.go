// Package molecule holds the in-memory molecular graph produced by the KCF
// parser: atoms, bonds, a single 2D conformer and the derived ring,
// chirality and implicit-hydrogen annotations.
//
// Atoms and bonds are addressed by a dense zero-based position assigned in
// insertion order.  Format-specific identifiers (the KCF atom index and
// KEGG atom type) are ordinary typed fields on Atom.
package molecule

import (
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// Atom is a single graph vertex.
type Atom struct {
	// Index is the dense graph position.
	Index int

	// Element is the element symbol, or "*" for a generic attachment point.
	Element string

	FormalCharge     int
	RadicalElectrons int

	// KCFIndex is the index the atom was declared with in its source record.
	// It is unique within a record but not necessarily contiguous.
	KCFIndex int

	// KCFType is the KEGG atom type, e.g. "O6a" or after refinement "O6a2".
	KCFType string

	Chirality ChiralTag

	// ImplicitHydrogens is filled by ComputeImplicitHydrogens.
	ImplicitHydrogens int
}

// Bond is a single graph edge between two dense atom positions.
type Bond struct {
	Index     int
	Begin     int
	End       int
	Order     BondOrder
	Direction BondDir
	Stereo    BondStereo
}

// OtherAtom returns the endpoint of b that is not atom.
func (b *Bond) OtherAtom(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// Contains reports whether atom is an endpoint of b.
func (b *Bond) Contains(atom int) bool {
	return b.Begin == atom || b.End == atom
}

type bondKey struct{ lo, hi int }

func keyFor(a, b int) bondKey {
	if a > b {
		a, b = b, a
	}
	return bondKey{lo: a, hi: b}
}

// Graph is a molecular graph.  The zero value is not usable; call NewGraph.
type Graph struct {
	Name  string
	Atoms []*Atom
	Bonds []*Bond

	conformer *Conformer
	rings     *RingInfo

	// incident lists bond positions per atom, in bond insertion order.
	incident [][]int
	byPair   map[bondKey]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{byPair: make(map[bondKey]int)}
}

// NumAtoms returns the number of atoms.
func (g *Graph) NumAtoms() int { return len(g.Atoms) }

// NumBonds returns the number of bonds.
func (g *Graph) NumBonds() int { return len(g.Bonds) }

// AddAtom appends a copy of a and returns the stored atom with its dense
// Index assigned.
func (g *Graph) AddAtom(a Atom) *Atom {
	a.Index = len(g.Atoms)
	stored := &a
	g.Atoms = append(g.Atoms, stored)
	g.incident = append(g.incident, nil)
	return stored
}

// Atom returns the atom at position i, or nil when out of range.
func (g *Graph) Atom(i int) *Atom {
	if i < 0 || i >= len(g.Atoms) {
		return nil
	}
	return g.Atoms[i]
}

// Bond returns the bond at position i, or nil when out of range.
func (g *Graph) Bond(i int) *Bond {
	if i < 0 || i >= len(g.Bonds) {
		return nil
	}
	return g.Bonds[i]
}

// AddBond appends a bond between two existing atoms.  Self bonds and a second
// bond between the same pair are rejected.
func (g *Graph) AddBond(begin, end int, order BondOrder) (*Bond, error) {
	if g.Atom(begin) == nil || g.Atom(end) == nil {
		return nil, errors.New(errors.ErrCodeValidation, "bond references a missing atom").
			WithDetailf("begin=%d end=%d atoms=%d", begin, end, len(g.Atoms))
	}
	if begin == end {
		return nil, errors.New(errors.ErrCodeValidation, "bond joins an atom to itself").
			WithDetailf("atom=%d", begin)
	}
	key := keyFor(begin, end)
	if prev, dup := g.byPair[key]; dup {
		return nil, errors.New(errors.ErrCodeValidation, "duplicate bond").
			WithDetailf("atoms %d-%d already joined by bond %d", begin, end, prev)
	}
	b := &Bond{Index: len(g.Bonds), Begin: begin, End: end, Order: order}
	g.Bonds = append(g.Bonds, b)
	g.byPair[key] = b.Index
	g.incident[begin] = append(g.incident[begin], b.Index)
	g.incident[end] = append(g.incident[end], b.Index)
	// Any previously computed ring data is stale now.
	g.rings = nil
	return b, nil
}

// AtomBonds returns the bonds incident to atom i in insertion order.
func (g *Graph) AtomBonds(i int) []*Bond {
	if i < 0 || i >= len(g.incident) {
		return nil
	}
	out := make([]*Bond, 0, len(g.incident[i]))
	for _, bi := range g.incident[i] {
		out = append(out, g.Bonds[bi])
	}
	return out
}

// Neighbors returns the atoms bonded to atom i, ordered like AtomBonds.
func (g *Graph) Neighbors(i int) []int {
	bonds := g.AtomBonds(i)
	out := make([]int, len(bonds))
	for k, b := range bonds {
		out[k] = b.OtherAtom(i)
	}
	return out
}

// Degree returns the number of explicit bonds on atom i.
func (g *Graph) Degree(i int) int {
	if i < 0 || i >= len(g.incident) {
		return 0
	}
	return len(g.incident[i])
}

// BondBetween returns the bond joining a and b, if any.
func (g *Graph) BondBetween(a, b int) (*Bond, bool) {
	bi, ok := g.byPair[keyFor(a, b)]
	if !ok {
		return nil, false
	}
	return g.Bonds[bi], true
}

// SetConformer attaches c.  It must cover exactly the graph's atoms and every
// position must have been set.
func (g *Graph) SetConformer(c *Conformer) error {
	if c == nil {
		return errors.New(errors.ErrCodeValidation, "nil conformer")
	}
	if c.NumAtoms() != len(g.Atoms) {
		return errors.New(errors.ErrCodeValidation, "conformer size does not match atom count").
			WithDetailf("conformer=%d atoms=%d", c.NumAtoms(), len(g.Atoms))
	}
	if missing := c.Missing(); len(missing) > 0 {
		return errors.New(errors.ErrCodeValidation, "conformer has unset positions").
			WithDetailf("positions %v", missing)
	}
	g.conformer = c
	return nil
}

// Conformer returns the attached conformer, or nil.
func (g *Graph) Conformer() *Conformer { return g.conformer }

// Rings returns the ring information computed by FindRings, or nil when ring
// perception has not run since the last bond was added.
func (g *Graph) Rings() *RingInfo { return g.rings }

// BondCounts tallies the bonds on atom i by order.
func (g *Graph) BondCounts(i int) (single, double, triple int) {
	for _, b := range g.AtomBonds(i) {
		switch b.Order {
		case BondSingle:
			single++
		case BondDouble:
			double++
		case BondTriple:
			triple++
		}
	}
	return single, double, triple
}

//Personal.AI order the ending
