package gnnsom

import (
	"github.com/turtacn/kcfgraph/internal/domain/molecule"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// ---------------------------------------------------------------------------
// Graph inputs
// ---------------------------------------------------------------------------

// GraphInput is the pair of tensors every module consumes.
type GraphInput struct {
	// X is [num_atoms, feature_count].
	X *Tensor
	// EdgeIndex holds source and target rows; every bond appears in both
	// directions.
	EdgeIndex [2][]int
}

// Featurizer encodes atoms by one-hot KEGG atom type followed by a few
// scalar descriptors.  Types outside the vocabulary share one extra slot.
type Featurizer struct {
	vocab map[string]int
	size  int
}

// scalarFeatures is the number of descriptors appended after the one-hot
// block: formal charge, radical electrons, implicit hydrogens, degree and
// ring membership.
const scalarFeatures = 5

// NewFeaturizer builds a featurizer over the given atom type vocabulary.
func NewFeaturizer(kcfTypes []string) (*Featurizer, error) {
	f := &Featurizer{vocab: make(map[string]int, len(kcfTypes))}
	for _, t := range kcfTypes {
		if _, dup := f.vocab[t]; dup {
			return nil, errors.New(errors.ErrCodeModelConfigInvalid, "duplicate atom type in vocabulary").
				WithDetailf("%q", t)
		}
		f.vocab[t] = len(f.vocab)
	}
	f.size = len(f.vocab) + 1
	return f, nil
}

// FeatureCount is the width of X and the featureCount to Build with.
func (f *Featurizer) FeatureCount() int { return f.size + scalarFeatures }

// Encode turns a parsed graph into model input.  Ring membership needs
// ring perception to have run; it reads as zero otherwise.
func (f *Featurizer) Encode(g *molecule.Graph) *GraphInput {
	n := g.NumAtoms()
	width := f.FeatureCount()
	x := NewTensor(n, width)
	rings := g.Rings()

	for _, a := range g.Atoms {
		row := x.Data[a.Index*width : (a.Index+1)*width]
		slot, ok := f.vocab[a.KCFType]
		if !ok {
			slot = f.size - 1
		}
		row[slot] = 1
		row[f.size] = float32(a.FormalCharge)
		row[f.size+1] = float32(a.RadicalElectrons)
		row[f.size+2] = float32(a.ImplicitHydrogens)
		row[f.size+3] = float32(g.Degree(a.Index))
		if rings != nil && rings.IsAtomInRing(a.Index) {
			row[f.size+4] = 1
		}
	}

	in := &GraphInput{X: x}
	for _, b := range g.Bonds {
		in.EdgeIndex[0] = append(in.EdgeIndex[0], b.Begin, b.End)
		in.EdgeIndex[1] = append(in.EdgeIndex[1], b.End, b.Begin)
	}
	return in
}

//Personal.AI order the ending
