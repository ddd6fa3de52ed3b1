package molecule

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// RingInfo is the result of ring perception: a smallest set of smallest rings
// expressed both as atom cycles (in path order) and as bond sets.
type RingInfo struct {
	AtomRings [][]int
	BondRings [][]int

	atomMembership []int
	bondMembership []int
	atomMinSize    []int
}

// NumRings returns the number of perceived rings.
func (r *RingInfo) NumRings() int { return len(r.AtomRings) }

// NumAtomRings returns how many rings contain atom i.
func (r *RingInfo) NumAtomRings(i int) int {
	if i < 0 || i >= len(r.atomMembership) {
		return 0
	}
	return r.atomMembership[i]
}

// NumBondRings returns how many rings contain bond i.
func (r *RingInfo) NumBondRings(i int) int {
	if i < 0 || i >= len(r.bondMembership) {
		return 0
	}
	return r.bondMembership[i]
}

// IsAtomInRing reports whether atom i is a ring member.
func (r *RingInfo) IsAtomInRing(i int) bool { return r.NumAtomRings(i) > 0 }

// IsBondInRing reports whether bond i is a ring member.
func (r *RingInfo) IsBondInRing(i int) bool { return r.NumBondRings(i) > 0 }

// MinAtomRingSize returns the size of the smallest ring containing atom i,
// or 0 when the atom is acyclic.
func (r *RingInfo) MinAtomRingSize(i int) int {
	if i < 0 || i >= len(r.atomMinSize) {
		return 0
	}
	return r.atomMinSize[i]
}

// IsAtomInRingOfSize reports whether atom i belongs to a ring of exactly size
// atoms.
func (r *RingInfo) IsAtomInRingOfSize(i, size int) bool {
	for _, ring := range r.AtomRings {
		if len(ring) != size {
			continue
		}
		for _, a := range ring {
			if a == i {
				return true
			}
		}
	}
	return false
}

// ringCandidate is a cycle found through one bond, kept with its bond set as
// a GF(2) vector for the independence test.
type ringCandidate struct {
	atoms []int
	bonds []int
	bits  bitset
}

// FindRings perceives rings over the current bond graph and stores the
// result on g.
//
// The cycle rank (bonds - atoms + components) is taken from a spanning forest
// of the bond graph.  Candidate rings are the shortest cycles through each
// bond; they are sorted by size and accepted greedily while linearly
// independent of the rings already chosen, which yields a smallest set of
// smallest rings.
func (g *Graph) FindRings() (*RingInfo, error) {
	info := &RingInfo{
		atomMembership: make([]int, len(g.Atoms)),
		bondMembership: make([]int, len(g.Bonds)),
		atomMinSize:    make([]int, len(g.Atoms)),
	}

	bg := graph.New(graph.IntHash)
	for _, a := range g.Atoms {
		if err := bg.AddVertex(a.Index); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "ring perception: add atom")
		}
	}
	for _, b := range g.Bonds {
		if err := bg.AddEdge(b.Begin, b.End, graph.EdgeWeight(1)); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "ring perception: add bond")
		}
	}

	forest, err := graph.MinimumSpanningTree(bg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "ring perception: spanning forest")
	}
	treeEdges, err := forest.Size()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "ring perception: spanning forest size")
	}
	rank := len(g.Bonds) - treeEdges
	if rank <= 0 {
		g.rings = info
		return info, nil
	}

	candidates, err := g.ringCandidates(bg)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].bonds) < len(candidates[j].bonds)
	})

	basis := make(gf2Basis)
	for _, c := range candidates {
		if len(info.AtomRings) == rank {
			break
		}
		if !basis.insert(c.bits) {
			continue
		}
		info.AtomRings = append(info.AtomRings, c.atoms)
		info.BondRings = append(info.BondRings, c.bonds)
	}

	for r, ring := range info.AtomRings {
		size := len(ring)
		for _, a := range ring {
			info.atomMembership[a]++
			if info.atomMinSize[a] == 0 || size < info.atomMinSize[a] {
				info.atomMinSize[a] = size
			}
		}
		for _, b := range info.BondRings[r] {
			info.bondMembership[b]++
		}
	}

	g.rings = info
	return info, nil
}

// ringCandidates returns, for every bond that closes a cycle, the shortest
// cycle through it.  Duplicate cycles are collapsed.
func (g *Graph) ringCandidates(bg graph.Graph[int, int]) ([]ringCandidate, error) {
	seen := make(map[string]bool)
	var out []ringCandidate
	for _, b := range g.Bonds {
		if err := bg.RemoveEdge(b.Begin, b.End); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "ring perception: detach bond")
		}
		path, pathErr := graph.ShortestPath(bg, b.Begin, b.End)
		if err := bg.AddEdge(b.Begin, b.End, graph.EdgeWeight(1)); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "ring perception: reattach bond")
		}
		// No alternative path means the bond is not part of any cycle.
		if pathErr != nil || len(path) < 3 {
			continue
		}

		bonds := make([]int, 0, len(path))
		for k := 0; k+1 < len(path); k++ {
			pb, ok := g.BondBetween(path[k], path[k+1])
			if !ok {
				return nil, errors.Internal("ring perception: path step without bond")
			}
			bonds = append(bonds, pb.Index)
		}
		bonds = append(bonds, b.Index)

		bits := newBitset(len(g.Bonds))
		for _, bi := range bonds {
			bits.set(bi)
		}
		key := bits.key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ringCandidate{atoms: path, bonds: bonds, bits: bits})
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GF(2) bond vectors
// ─────────────────────────────────────────────────────────────────────────────

type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int) { b[i/64] |= 1 << (uint(i) % 64) }

func (b bitset) clone() bitset { return append(bitset(nil), b...) }

func (b bitset) lowest() int {
	for wi, w := range b {
		if w == 0 {
			continue
		}
		for bit := 0; bit < 64; bit++ {
			if w&(1<<uint(bit)) != 0 {
				return wi*64 + bit
			}
		}
	}
	return -1
}

func (b bitset) xor(o bitset) {
	for i := range b {
		b[i] ^= o[i]
	}
}

func (b bitset) key() string {
	buf := make([]byte, 0, len(b)*8)
	for _, w := range b {
		for s := 0; s < 64; s += 8 {
			buf = append(buf, byte(w>>uint(s)))
		}
	}
	return string(buf)
}

// gf2Basis holds reduced bond vectors keyed by their lowest set bit.
type gf2Basis map[int]bitset

// insert reduces v against the basis and adds the remainder when it is
// non-zero.  It reports whether v was independent of the basis.
func (m gf2Basis) insert(v bitset) bool {
	r := v.clone()
	for {
		p := r.lowest()
		if p < 0 {
			return false
		}
		bv, ok := m[p]
		if !ok {
			m[p] = r
			return true
		}
		r.xor(bv)
	}
}

//Personal.AI order the ending
