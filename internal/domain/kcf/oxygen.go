package kcf

import (
	"github.com/turtacn/kcfgraph/internal/domain/molecule"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// ambiguousOxygenTypes are KEGG oxygen types whose meaning depends on how the
// oxygen is bonded.
var ambiguousOxygenTypes = map[string]bool{
	"O6a": true,
	"O7a": true,
	"O7x": true,
	"O1c": true,
}

// refinedOxygenType returns the refined KEGG type for an oxygen with the
// given bond tally.  Any tally other than "one double, no single" or "only
// single" keeps the source type.
func refinedOxygenType(kcfType string, single, double int) string {
	switch {
	case double == 1 && single == 0:
		// KEGG labels some P=O oxygens as the hydroxyl type O1c.
		if kcfType == "O1c" {
			return "O3b"
		}
		return kcfType + "2"
	case double == 0 && single >= 1:
		return kcfType + "1"
	default:
		return kcfType
	}
}

// refineOxygenTypes rewrites the ambiguous oxygen types from bond topology.
func refineOxygenTypes(g *molecule.Graph) error {
	for _, a := range g.Atoms {
		if !ambiguousOxygenTypes[a.KCFType] {
			continue
		}
		single, double, triple := g.BondCounts(a.Index)
		if triple > 0 {
			return errors.FormatViolation("oxygen atom has a triple bond").
				WithDetailf("kcf atom %d (%s)", a.KCFIndex, a.KCFType)
		}
		a.KCFType = refinedOxygenType(a.KCFType, single, double)
	}
	return nil
}

//Personal.AI order the ending
