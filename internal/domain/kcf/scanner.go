package kcf

import (
	"strings"
)

// labelWidth is the fixed width of the KCF label column.
const labelWidth = 12

// Section labels that drive the scanner.
const (
	labelEntry    = "ENTRY"
	labelCompound = "COMPOUND"
	labelAtom     = "ATOM"
	labelBond     = "BOND"
	// recordTerminator ends a record in multi-record files.
	recordTerminator = "///"
)

// splitLine separates the label column from the content.  Both are trimmed.
func splitLine(line string) (label, content string) {
	if len(line) <= labelWidth {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:labelWidth]), strings.TrimSpace(line[labelWidth:])
}

// scanState is the reading mode of the line scanner.
type scanState int

const (
	stateIdle scanState = iota
	stateAtoms
	stateBonds
)

func (s scanState) String() string {
	switch s {
	case stateAtoms:
		return "reading-atoms"
	case stateBonds:
		return "reading-bonds"
	default:
		return "idle"
	}
}

// lineKind tells the parser what to do with a line.
type lineKind int

const (
	lineIgnored lineKind = iota
	lineEntry
	lineCompound
	lineAtomHeader
	lineBondHeader
	lineAtom
	lineBond
)

// next is the single transition function of the scanner.  A non-empty label
// always closes the open mode; ATOM and BOND open their own mode; an empty
// label is a continuation line of whatever mode is open.
func next(s scanState, label string) (scanState, lineKind) {
	switch label {
	case "":
		switch s {
		case stateAtoms:
			return s, lineAtom
		case stateBonds:
			return s, lineBond
		default:
			return s, lineIgnored
		}
	case labelAtom:
		return stateAtoms, lineAtomHeader
	case labelBond:
		return stateBonds, lineBondHeader
	case labelCompound:
		return stateIdle, lineCompound
	case labelEntry:
		return stateIdle, lineEntry
	default:
		return stateIdle, lineIgnored
	}
}

//Personal.AI order the ending
