// Package molecule defines the wire view of a parsed molecular graph.  The
// same DTOs are rendered by the CLI, returned by the HTTP API, published by
// the stream worker and stored in the graph cache, so every field carries
// both json and msgpack tags and enums travel by name.
package molecule

import (
	"github.com/turtacn/kcfgraph/internal/domain/molecule"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// AtomDTO
// ─────────────────────────────────────────────────────────────────────────────

// AtomDTO is one atom of a GraphDTO.
type AtomDTO struct {
	Index             int     `json:"index" msgpack:"index"`
	KCFIndex          int     `json:"kcf_index" msgpack:"kcf_index"`
	KCFType           string  `json:"kcf_type" msgpack:"kcf_type"`
	Element           string  `json:"element" msgpack:"element"`
	FormalCharge      int     `json:"formal_charge,omitempty" msgpack:"formal_charge,omitempty"`
	RadicalElectrons  int     `json:"radical_electrons,omitempty" msgpack:"radical_electrons,omitempty"`
	ImplicitHydrogens int     `json:"implicit_hydrogens" msgpack:"implicit_hydrogens"`
	Chirality         string  `json:"chirality" msgpack:"chirality"`
	X                 float64 `json:"x" msgpack:"x"`
	Y                 float64 `json:"y" msgpack:"y"`
	InRing            bool    `json:"in_ring" msgpack:"in_ring"`
}

// ─────────────────────────────────────────────────────────────────────────────
// BondDTO
// ─────────────────────────────────────────────────────────────────────────────

// BondDTO is one bond of a GraphDTO.  Begin and End are atom positions, not
// KCF indices.
type BondDTO struct {
	Index     int    `json:"index" msgpack:"index"`
	Begin     int    `json:"begin" msgpack:"begin"`
	End       int    `json:"end" msgpack:"end"`
	Order     string `json:"order" msgpack:"order"`
	Direction string `json:"direction" msgpack:"direction"`
	Stereo    string `json:"stereo" msgpack:"stereo"`
	InRing    bool   `json:"in_ring" msgpack:"in_ring"`
}

// ─────────────────────────────────────────────────────────────────────────────
// GraphDTO
// ─────────────────────────────────────────────────────────────────────────────

// GraphDTO is the complete view of a parsed record.
type GraphDTO struct {
	Entry    string    `json:"entry,omitempty" msgpack:"entry,omitempty"`
	Name     string    `json:"name" msgpack:"name"`
	NumAtoms int       `json:"num_atoms" msgpack:"num_atoms"`
	NumBonds int       `json:"num_bonds" msgpack:"num_bonds"`
	NumRings int       `json:"num_rings" msgpack:"num_rings"`
	Rings    [][]int   `json:"rings,omitempty" msgpack:"rings,omitempty"`
	Atoms    []AtomDTO `json:"atoms" msgpack:"atoms"`
	Bonds    []BondDTO `json:"bonds" msgpack:"bonds"`
}

// FromGraph builds the DTO of g.  entry is the record's ENTRY identifier and
// may be empty.
func FromGraph(g *molecule.Graph, entry string) *GraphDTO {
	dto := &GraphDTO{
		Entry:    entry,
		Name:     g.Name,
		NumAtoms: g.NumAtoms(),
		NumBonds: g.NumBonds(),
		Atoms:    make([]AtomDTO, 0, g.NumAtoms()),
		Bonds:    make([]BondDTO, 0, g.NumBonds()),
	}

	rings := g.Rings()
	if rings != nil {
		dto.NumRings = rings.NumRings()
		for _, r := range rings.AtomRings {
			dto.Rings = append(dto.Rings, append([]int(nil), r...))
		}
	}
	conf := g.Conformer()

	for _, a := range g.Atoms {
		ad := AtomDTO{
			Index:             a.Index,
			KCFIndex:          a.KCFIndex,
			KCFType:           a.KCFType,
			Element:           a.Element,
			FormalCharge:      a.FormalCharge,
			RadicalElectrons:  a.RadicalElectrons,
			ImplicitHydrogens: a.ImplicitHydrogens,
			Chirality:         a.Chirality.String(),
		}
		if conf != nil {
			p := conf.Position(a.Index)
			ad.X, ad.Y = p.X, p.Y
		}
		if rings != nil {
			ad.InRing = rings.IsAtomInRing(a.Index)
		}
		dto.Atoms = append(dto.Atoms, ad)
	}

	for _, b := range g.Bonds {
		bd := BondDTO{
			Index:     b.Index,
			Begin:     b.Begin,
			End:       b.End,
			Order:     b.Order.String(),
			Direction: b.Direction.String(),
			Stereo:    b.Stereo.String(),
		}
		if rings != nil {
			bd.InRing = rings.IsBondInRing(b.Index)
		}
		dto.Bonds = append(dto.Bonds, bd)
	}
	return dto
}

// ToGraph rebuilds a graph from the DTO.  Rings are perceived again rather
// than trusted from the payload; every other annotation is restored as is.
func (d *GraphDTO) ToGraph() (*molecule.Graph, error) {
	g := molecule.NewGraph()
	g.Name = d.Name
	conf := molecule.NewConformer(len(d.Atoms))

	for i, ad := range d.Atoms {
		if ad.Index != i {
			return nil, errors.New(errors.ErrCodeValidation, "atoms are not in position order").
				WithDetailf("atom %d has index %d", i, ad.Index)
		}
		chi, err := molecule.ParseChiralTag(ad.Chirality)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid atom chirality")
		}
		g.AddAtom(molecule.Atom{
			Element:           ad.Element,
			FormalCharge:      ad.FormalCharge,
			RadicalElectrons:  ad.RadicalElectrons,
			KCFIndex:          ad.KCFIndex,
			KCFType:           ad.KCFType,
			Chirality:         chi,
			ImplicitHydrogens: ad.ImplicitHydrogens,
		})
		if err := conf.SetPosition(i, molecule.Point3D{X: ad.X, Y: ad.Y}); err != nil {
			return nil, err
		}
	}

	for _, bd := range d.Bonds {
		order, err := molecule.ParseBondOrder(bd.Order)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid bond order")
		}
		dir, err := molecule.ParseBondDir(bd.Direction)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid bond direction")
		}
		stereo, err := molecule.ParseBondStereo(bd.Stereo)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid bond stereo")
		}
		b, err := g.AddBond(bd.Begin, bd.End, order)
		if err != nil {
			return nil, err
		}
		b.Direction = dir
		b.Stereo = stereo
	}

	if err := g.SetConformer(conf); err != nil {
		return nil, err
	}
	if _, err := g.FindRings(); err != nil {
		return nil, err
	}
	return g, nil
}

//Personal.AI order the ending
