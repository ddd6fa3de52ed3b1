// Package kcf parses KEGG Chemical Function records into molecular graphs.
//
// A record is line oriented: a 12-character label column followed by free
// content.  COMPOUND carries the name, ATOM and BOND open sections whose
// continuation lines (empty label) describe atoms and bonds, and every other
// label closes the open section.  Parsing is all-or-nothing: any malformed
// field aborts with an error for which errors.IsFormatViolation is true and
// no partial graph is returned.
//
// After the lines are read the parser perceives rings, derives chirality from
// wedge and dash bonds, refines the ambiguous KEGG oxygen types and fills in
// implicit hydrogen counts.
//
// A Parser holds no mutable state; one value can be shared by any number of
// goroutines.
package kcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/kcfgraph/internal/domain/molecule"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// maxLineBytes bounds a single record line.
const maxLineBytes = 1 << 20

// Record is a parsed record together with the header values that are not
// part of the graph itself.
type Record struct {
	Graph *molecule.Graph

	// Entry is the first token of the ENTRY line (e.g. "C00031"), if any.
	Entry string

	// DeclaredAtoms and DeclaredBonds are the counts from the section
	// headers.  The bond count is informational and is not checked against
	// the bonds actually read.
	DeclaredAtoms int
	DeclaredBonds int
}

// Option configures a Parser.
type Option func(*Parser)

// WithoutStereo skips chirality inference.  Bond directions are still
// recorded on the bonds.
func WithoutStereo() Option {
	return func(p *Parser) { p.stereo = false }
}

// WithoutImplicitHydrogens skips the implicit hydrogen pass.
func WithoutImplicitHydrogens() Option {
	return func(p *Parser) { p.implicitH = false }
}

// Parser converts KCF text into molecular graphs.
type Parser struct {
	stereo    bool
	implicitH bool
}

// NewParser returns a Parser with every post-pass enabled unless an option
// turns it off.
func NewParser(opts ...Option) *Parser {
	p := &Parser{stereo: true, implicitH: true}
	for _, o := range opts {
		o(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses one record with the default parser.
func Parse(text string) (*molecule.Graph, error) {
	return defaultParser.Parse(text)
}

// ParseReader reads r to the end and parses it as one record.
func ParseReader(r io.Reader) (*molecule.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "read KCF input")
	}
	return defaultParser.Parse(string(data))
}

// Parse parses one record into a graph.
func (p *Parser) Parse(text string) (*molecule.Graph, error) {
	rec, err := p.ParseRecord(text)
	if err != nil {
		return nil, err
	}
	return rec.Graph, nil
}

// recordBuilder is the per-call construction state.
type recordBuilder struct {
	rec       *Record
	graph     *molecule.Graph
	conformer *molecule.Conformer
	// byKCFIndex translates KCF atom indices to dense graph positions.
	byKCFIndex  map[int]int
	nameSet     bool
	sawAtomHead bool
	sawBondHead bool
}

// lineError decorates a parse error with its position in the record.
func lineError(err error, lineNo int, raw string) error {
	var ae *errors.AppError
	if errors.As(err, &ae) && ae.Code == errors.ErrCodeKCFFormatViolation {
		detail := fmt.Sprintf("line %d: %q", lineNo, strings.TrimRight(raw, " "))
		if ae.Detail != "" {
			detail += ": " + ae.Detail
		}
		return ae.WithDetail(detail)
	}
	return errors.FormatViolation("malformed record").
		WithDetailf("line %d: %q", lineNo, raw).WithCause(err)
}

// ParseRecord parses one record and returns the graph with its header values.
func (p *Parser) ParseRecord(text string) (*Record, error) {
	b := &recordBuilder{
		rec:        &Record{},
		graph:      molecule.NewGraph(),
		byKCFIndex: make(map[int]int),
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	state := stateIdle
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r")
		label, content := splitLine(raw)

		var kind lineKind
		state, kind = next(state, label)
		if err := b.handle(kind, content); err != nil {
			return nil, lineError(err, lineNo, raw)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.FormatViolation("unreadable record").WithCause(err)
	}

	if err := b.finish(); err != nil {
		return nil, err
	}
	if err := p.postProcess(b.graph); err != nil {
		return nil, err
	}
	b.rec.Graph = b.graph
	return b.rec, nil
}

func (b *recordBuilder) handle(kind lineKind, content string) error {
	switch kind {
	case lineEntry:
		if b.rec.Entry == "" {
			if f := strings.Fields(content); len(f) > 0 {
				b.rec.Entry = f[0]
			}
		}
	case lineCompound:
		if !b.nameSet {
			b.graph.Name = content
			b.nameSet = true
		}
	case lineAtomHeader:
		return b.atomHeader(content)
	case lineBondHeader:
		return b.bondHeader(content)
	case lineAtom:
		return b.atom(content)
	case lineBond:
		return b.bond(content)
	}
	return nil
}

func (b *recordBuilder) atomHeader(content string) error {
	if b.sawAtomHead {
		return errors.FormatViolation("second ATOM section")
	}
	n, err := strconv.Atoi(firstField(content))
	if err != nil || n < 0 {
		return errors.FormatViolation("ATOM count is not a non-negative integer").WithCause(err)
	}
	b.sawAtomHead = true
	b.rec.DeclaredAtoms = n
	b.conformer = molecule.NewConformer(n)
	return nil
}

func (b *recordBuilder) bondHeader(content string) error {
	if b.sawBondHead {
		return errors.FormatViolation("second BOND section")
	}
	n, err := strconv.Atoi(firstField(content))
	if err != nil || n < 0 {
		return errors.FormatViolation("BOND count is not a non-negative integer").WithCause(err)
	}
	b.sawBondHead = true
	b.rec.DeclaredBonds = n
	return nil
}

func (b *recordBuilder) atom(content string) error {
	al, err := parseAtomLine(content)
	if err != nil {
		return err
	}
	if _, dup := b.byKCFIndex[al.index]; dup {
		return errors.FormatViolation("duplicate atom index").WithDetailf("%d", al.index)
	}
	if b.graph.NumAtoms() >= b.conformer.NumAtoms() {
		return errors.FormatViolation("more atom lines than declared").
			WithDetailf("declared %d", b.rec.DeclaredAtoms)
	}

	atom := molecule.Atom{
		Element:  al.element,
		KCFIndex: al.index,
		KCFType:  al.kcfType,
	}
	if al.tag != nil {
		al.tag.apply(&atom)
	}
	stored := b.graph.AddAtom(atom)
	b.byKCFIndex[al.index] = stored.Index

	if err := b.conformer.SetPosition(stored.Index, molecule.Point3D{X: al.x, Y: al.y}); err != nil {
		return errors.FormatViolation("atom position out of range").WithCause(err)
	}
	return nil
}

func (b *recordBuilder) bond(content string) error {
	bl, err := parseBondLine(content)
	if err != nil {
		return err
	}
	begin, ok := b.byKCFIndex[bl.atom1]
	if !ok {
		return errors.FormatViolation("bond references an undeclared atom").WithDetailf("%d", bl.atom1)
	}
	end, ok := b.byKCFIndex[bl.atom2]
	if !ok {
		return errors.FormatViolation("bond references an undeclared atom").WithDetailf("%d", bl.atom2)
	}

	bond, err := b.graph.AddBond(begin, end, bl.order)
	if err != nil {
		return errors.FormatViolation("invalid bond").WithCause(err)
	}
	bond.Direction = bl.direction
	bond.Stereo = bl.stereo
	return nil
}

// finish attaches the conformer once every line has been read.
func (b *recordBuilder) finish() error {
	if !b.sawAtomHead {
		return errors.FormatViolation("record has no ATOM section")
	}
	if err := b.graph.SetConformer(b.conformer); err != nil {
		return errors.FormatViolation("fewer atom lines than declared").
			WithDetailf("declared %d, read %d", b.rec.DeclaredAtoms, b.graph.NumAtoms()).
			WithCause(err)
	}
	return nil
}

// postProcess runs the passes that need the complete graph, in order.
func (p *Parser) postProcess(g *molecule.Graph) error {
	if _, err := g.FindRings(); err != nil {
		return err
	}
	if p.stereo {
		g.AssignChiralityFromBondDirs()
	}
	if err := refineOxygenTypes(g); err != nil {
		return err
	}
	if p.implicitH {
		g.ComputeImplicitHydrogens()
	}
	return nil
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

//Personal.AI order the ending
