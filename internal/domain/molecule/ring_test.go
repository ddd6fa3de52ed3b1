package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRings_Acyclic(t *testing.T) {
	g := chain(t, 5)
	info, err := g.FindRings()
	require.NoError(t, err)

	assert.Equal(t, 0, info.NumRings())
	for i := 0; i < 5; i++ {
		assert.False(t, info.IsAtomInRing(i))
		assert.Equal(t, 0, info.MinAtomRingSize(i))
	}
	assert.Same(t, info, g.Rings())
}

func TestFindRings_EmptyGraph(t *testing.T) {
	info, err := NewGraph().FindRings()
	require.NoError(t, err)
	assert.Equal(t, 0, info.NumRings())
}

func TestFindRings_Benzene(t *testing.T) {
	g := ring(t, 6)
	info, err := g.FindRings()
	require.NoError(t, err)

	require.Equal(t, 1, info.NumRings())
	assert.Len(t, info.AtomRings[0], 6)
	assert.Len(t, info.BondRings[0], 6)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, info.AtomRings[0])
	for i := 0; i < 6; i++ {
		assert.True(t, info.IsAtomInRing(i))
		assert.True(t, info.IsBondInRing(i))
		assert.Equal(t, 6, info.MinAtomRingSize(i))
		assert.True(t, info.IsAtomInRingOfSize(i, 6))
	}
}

func TestFindRings_NaphthaleneGivesTwoSixRings(t *testing.T) {
	// Two fused six-membered rings sharing the 0-5 bond.
	g := ring(t, 6)
	for i := 0; i < 4; i++ {
		g.AddAtom(Atom{Element: "C"})
	}
	pairs := [][2]int{{5, 6}, {6, 7}, {7, 8}, {8, 9}, {9, 0}}
	for _, p := range pairs {
		_, err := g.AddBond(p[0], p[1], BondSingle)
		require.NoError(t, err)
	}

	info, err := g.FindRings()
	require.NoError(t, err)

	require.Equal(t, 2, info.NumRings())
	for _, r := range info.AtomRings {
		assert.Len(t, r, 6, "fused system must not yield the 10-membered envelope")
	}
	assert.Equal(t, 2, info.NumAtomRings(0))
	assert.Equal(t, 2, info.NumAtomRings(5))
	assert.Equal(t, 1, info.NumAtomRings(3))

	shared, ok := g.BondBetween(0, 5)
	require.True(t, ok)
	assert.Equal(t, 2, info.NumBondRings(shared.Index))
}

func TestFindRings_SpiroAndSubstituent(t *testing.T) {
	// Cyclopropane (0,1,2) spiro-joined at atom 0 to cyclobutane (0,3,4,5),
	// with a methyl (6) on atom 4.
	g := NewGraph()
	for i := 0; i < 7; i++ {
		g.AddAtom(Atom{Element: "C"})
	}
	for _, p := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {3, 4}, {4, 5}, {5, 0}, {4, 6}} {
		_, err := g.AddBond(p[0], p[1], BondSingle)
		require.NoError(t, err)
	}

	info, err := g.FindRings()
	require.NoError(t, err)

	require.Equal(t, 2, info.NumRings())
	assert.Equal(t, 3, info.MinAtomRingSize(0))
	assert.Equal(t, 2, info.NumAtomRings(0))
	assert.Equal(t, 4, info.MinAtomRingSize(4))
	assert.False(t, info.IsAtomInRing(6))
	assert.False(t, info.IsBondInRing(7))
}

func TestFindRings_DisconnectedComponents(t *testing.T) {
	g := ring(t, 5)
	base := g.NumAtoms()
	for i := 0; i < 3; i++ {
		g.AddAtom(Atom{Element: "N"})
	}
	for _, p := range [][2]int{{base, base + 1}, {base + 1, base + 2}, {base + 2, base}} {
		_, err := g.AddBond(p[0], p[1], BondSingle)
		require.NoError(t, err)
	}

	info, err := g.FindRings()
	require.NoError(t, err)
	assert.Equal(t, 2, info.NumRings())
	assert.Equal(t, 5, info.MinAtomRingSize(0))
	assert.Equal(t, 3, info.MinAtomRingSize(base))
}

func TestAddBond_InvalidatesRings(t *testing.T) {
	g := chain(t, 4)
	_, err := g.FindRings()
	require.NoError(t, err)
	require.NotNil(t, g.Rings())

	_, err = g.AddBond(3, 0, BondSingle)
	require.NoError(t, err)
	assert.Nil(t, g.Rings())
}

func TestGF2Basis_RejectsDependentCycle(t *testing.T) {
	basis := make(gf2Basis)
	a, b := newBitset(70), newBitset(70)
	a.set(0)
	a.set(1)
	b.set(0)
	b.set(65)

	assert.True(t, basis.insert(a))
	assert.True(t, basis.insert(b))

	sum := newBitset(70)
	sum.set(1)
	sum.set(65)
	assert.False(t, basis.insert(sum), "a xor b is dependent")
	assert.False(t, basis.insert(a), "duplicates are dependent")
}

//Personal.AI order the ending
