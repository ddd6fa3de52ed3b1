package kcf

import (
	"strconv"
	"strings"

	"github.com/turtacn/kcfgraph/internal/domain/molecule"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Charge / radical tags
// ─────────────────────────────────────────────────────────────────────────────

// tagKind says what an atom tag sets.
type tagKind int

const (
	tagCharge tagKind = iota
	tagRadical
)

// atomTag is a parsed "#[count](+|-|^)" field.
type atomTag struct {
	kind  tagKind
	value int
}

func (t atomTag) apply(a *molecule.Atom) {
	switch t.kind {
	case tagCharge:
		a.FormalCharge = t.value
	case tagRadical:
		a.RadicalElectrons = t.value
	}
}

// parseTag reads a charge or radical tag.  The count defaults to 1:
// "#+" is +1, "#3-" is -3, "#^" is one radical electron.
func parseTag(field string) (atomTag, error) {
	if len(field) < 2 || field[0] != '#' {
		return atomTag{}, errors.FormatViolation("malformed charge or radical tag").WithDetailf("%q", field)
	}
	sign := field[len(field)-1]
	digits := field[1 : len(field)-1]

	count := 1
	if digits != "" {
		for _, r := range digits {
			if r < '0' || r > '9' {
				return atomTag{}, errors.FormatViolation("malformed charge or radical count").WithDetailf("%q", field)
			}
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return atomTag{}, errors.FormatViolation("malformed charge or radical count").
				WithDetailf("%q", field).WithCause(err)
		}
		count = n
	}

	switch sign {
	case '+':
		return atomTag{kind: tagCharge, value: count}, nil
	case '-':
		return atomTag{kind: tagCharge, value: -count}, nil
	case '^':
		return atomTag{kind: tagRadical, value: count}, nil
	default:
		return atomTag{}, errors.FormatViolation("unknown charge or radical sign").WithDetailf("%q", field)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom lines
// ─────────────────────────────────────────────────────────────────────────────

// genericElements are KEGG placeholders for an unspecified substituent.
var genericElements = map[string]bool{"R": true, "R#": true, "X": true}

// atomLine is one parsed "index type element x y [tag]" line.
type atomLine struct {
	index   int
	kcfType string
	element string
	x, y    float64
	tag     *atomTag
}

// normalizeElement maps KEGG element shorthands onto a symbol plus an
// implied tag.  An implied tag conflicts with an explicit one.
func normalizeElement(element string, explicit *atomTag) (string, *atomTag, error) {
	var implied *atomTag
	switch {
	case element == "H+":
		element, implied = "H", &atomTag{kind: tagCharge, value: 1}
	case element == "OH":
		element, implied = "O", &atomTag{kind: tagCharge, value: -1}
	case genericElements[element]:
		return "*", explicit, nil
	}
	if implied == nil {
		return element, explicit, nil
	}
	if explicit != nil {
		return "", nil, errors.FormatViolation("element shorthand charge conflicts with explicit tag")
	}
	return element, implied, nil
}

func parseAtomLine(content string) (atomLine, error) {
	fields := strings.Fields(content)
	if len(fields) < 5 {
		return atomLine{}, errors.FormatViolation("atom line needs index, type, element, x and y").
			WithDetailf("got %d fields", len(fields))
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return atomLine{}, errors.FormatViolation("atom index is not an integer").WithCause(err)
	}
	x, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return atomLine{}, errors.FormatViolation("atom x coordinate is not a number").WithCause(err)
	}
	y, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return atomLine{}, errors.FormatViolation("atom y coordinate is not a number").WithCause(err)
	}

	var tag *atomTag
	if len(fields) > 5 {
		t, err := parseTag(fields[5])
		if err != nil {
			return atomLine{}, err
		}
		tag = &t
	}

	element, tag, err := normalizeElement(fields[2], tag)
	if err != nil {
		return atomLine{}, err
	}
	if _, known := molecule.AtomicNumber(element); !known {
		return atomLine{}, errors.FormatViolation("unknown element symbol").WithDetailf("%q", fields[2])
	}

	return atomLine{
		index:   index,
		kcfType: fields[1],
		element: element,
		x:       x,
		y:       y,
		tag:     tag,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond lines
// ─────────────────────────────────────────────────────────────────────────────

// bondLine is one parsed "index atom1 atom2 order [direction]" line.  The
// atom fields are still KCF indices.
type bondLine struct {
	index     int
	atom1     int
	atom2     int
	order     molecule.BondOrder
	direction molecule.BondDir
	stereo    molecule.BondStereo
}

// bondDirection resolves the optional direction token for a bond order.
func bondDirection(token string, order molecule.BondOrder) (molecule.BondDir, molecule.BondStereo, error) {
	switch {
	case token == "":
		return molecule.DirNone, molecule.StereoNone, nil
	case token == "#Up":
		return molecule.DirBeginWedge, molecule.StereoNone, nil
	case token == "#Down":
		return molecule.DirBeginDash, molecule.StereoNone, nil
	case token == "#Either" && order == molecule.BondSingle:
		return molecule.DirUnknown, molecule.StereoNone, nil
	case token == "#Either" && order == molecule.BondDouble:
		// Undetermined double-bond geometry sets both attributes.
		return molecule.DirEitherDouble, molecule.StereoAny, nil
	default:
		return molecule.DirNone, molecule.StereoNone, errors.FormatViolation("unknown bond direction").
			WithDetailf("token %q with order %d", token, int(order))
	}
}

func parseBondLine(content string) (bondLine, error) {
	fields := strings.Fields(content)
	if len(fields) < 4 {
		return bondLine{}, errors.FormatViolation("bond line needs index, atom1, atom2 and order").
			WithDetailf("got %d fields", len(fields))
	}

	ints := make([]int, 4)
	names := [...]string{"bond index", "first atom", "second atom", "bond order"}
	for i := range ints {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return bondLine{}, errors.FormatViolation(names[i] + " is not an integer").WithCause(err)
		}
		ints[i] = n
	}

	order, ok := molecule.BondOrderFromInt(ints[3])
	if !ok {
		return bondLine{}, errors.FormatViolation("unknown bond order").WithDetailf("%d", ints[3])
	}

	token := ""
	if len(fields) > 4 {
		token = fields[4]
	}
	dir, stereo, err := bondDirection(token, order)
	if err != nil {
		return bondLine{}, err
	}

	return bondLine{
		index:     ints[0],
		atom1:     ints[1],
		atom2:     ints[2],
		order:     order,
		direction: dir,
		stereo:    stereo,
	}, nil
}

//Personal.AI order the ending
