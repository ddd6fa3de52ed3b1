package molecule

// elementSymbols is indexed by atomic number; index 0 is the generic atom.
var elementSymbols = [...]string{
	"*",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for z, sym := range elementSymbols {
		m[sym] = z
	}
	return m
}()

// AtomicNumber returns the atomic number of an element symbol.  The generic
// atom "*" is 0; unknown symbols report false.
func AtomicNumber(symbol string) (int, bool) {
	z, ok := atomicNumbers[symbol]
	return z, ok
}

// defaultValences lists the allowed valences per atomic number, ascending.
// Elements absent from the table get no implicit hydrogens.
var defaultValences = map[int][]int{
	1:  {1},
	5:  {3},
	6:  {4},
	7:  {3},
	8:  {2},
	9:  {1},
	14: {4},
	15: {3, 5, 7},
	16: {2, 4, 6},
	17: {1},
	33: {3, 5, 7},
	34: {2, 4, 6},
	35: {1},
	52: {2, 4, 6},
	53: {1, 3, 5},
}

// ExplicitValence is the sum of bond orders on atom i plus its radical
// electrons.
func (g *Graph) ExplicitValence(i int) int {
	a := g.Atom(i)
	if a == nil {
		return 0
	}
	v := a.RadicalElectrons
	for _, b := range g.AtomBonds(i) {
		v += b.Order.Valence()
	}
	return v
}

// implicitHydrogens follows the isoelectronic rule: a charged atom takes the
// valences of the element its charge makes it isoelectronic with (N+ like C,
// O- like F).  The smallest allowed valence not below the explicit valence
// is filled with hydrogens.
func implicitHydrogens(element string, charge, explicit int) int {
	z, ok := AtomicNumber(element)
	if !ok || z == 0 {
		return 0
	}
	vals, ok := defaultValences[z-charge]
	if !ok {
		return 0
	}
	for _, v := range vals {
		if v >= explicit {
			return v - explicit
		}
	}
	// Hypervalent beyond the table; this pass is not a sanitiser.
	return 0
}

// ComputeImplicitHydrogens fills Atom.ImplicitHydrogens for every atom.
func (g *Graph) ComputeImplicitHydrogens() {
	for _, a := range g.Atoms {
		a.ImplicitHydrogens = implicitHydrogens(a.Element, a.FormalCharge, g.ExplicitValence(a.Index))
	}
}

// TotalHydrogens counts implicit hydrogens plus explicit neighbouring
// hydrogen atoms of atom i.
func (g *Graph) TotalHydrogens(i int) int {
	a := g.Atom(i)
	if a == nil {
		return 0
	}
	n := a.ImplicitHydrogens
	for _, nb := range g.Neighbors(i) {
		if g.Atoms[nb].Element == "H" {
			n++
		}
	}
	return n
}

//Personal.AI order the ending
