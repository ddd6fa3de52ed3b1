package molecule

import (
	"math"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// Point3D is a position in depiction space.  KCF coordinates are planar, so
// Z is always 0 for parsed records.
type Point3D struct {
	X, Y, Z float64
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D { return Point3D{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }

// Add returns p + q.
func (p Point3D) Add(q Point3D) Point3D { return Point3D{p.X + q.X, p.Y + q.Y, p.Z + q.Z} }

// Scale returns p * f.
func (p Point3D) Scale(f float64) Point3D { return Point3D{p.X * f, p.Y * f, p.Z * f} }

// Dot is the scalar product.
func (p Point3D) Dot(q Point3D) float64 { return p.X*q.X + p.Y*q.Y + p.Z*q.Z }

// Cross is the vector product.
func (p Point3D) Cross(q Point3D) Point3D {
	return Point3D{
		X: p.Y*q.Z - p.Z*q.Y,
		Y: p.Z*q.X - p.X*q.Z,
		Z: p.X*q.Y - p.Y*q.X,
	}
}

// Length is the Euclidean norm.
func (p Point3D) Length() float64 { return math.Sqrt(p.Dot(p)) }

// Conformer is a fixed-size table of atom positions.  It is sized up front
// from the declared atom count and filled positionally.
type Conformer struct {
	positions []Point3D
	set       []bool
}

// NewConformer allocates a conformer for n atoms.
func NewConformer(n int) *Conformer {
	if n < 0 {
		n = 0
	}
	return &Conformer{
		positions: make([]Point3D, n),
		set:       make([]bool, n),
	}
}

// NumAtoms returns the size the conformer was allocated with.
func (c *Conformer) NumAtoms() int { return len(c.positions) }

// SetPosition stores p for atom i.
func (c *Conformer) SetPosition(i int, p Point3D) error {
	if i < 0 || i >= len(c.positions) {
		return errors.New(errors.ErrCodeValidation, "atom position out of conformer range").
			WithDetailf("position=%d size=%d", i, len(c.positions))
	}
	c.positions[i] = p
	c.set[i] = true
	return nil
}

// Position returns the stored position of atom i (zero when unset or out of
// range).
func (c *Conformer) Position(i int) Point3D {
	if i < 0 || i >= len(c.positions) {
		return Point3D{}
	}
	return c.positions[i]
}

// Missing lists positions that were never set.
func (c *Conformer) Missing() []int {
	var out []int
	for i, ok := range c.set {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

// Complete reports whether every position has been set.
func (c *Conformer) Complete() bool { return len(c.Missing()) == 0 }

// Is3D reports whether any atom lies off the z=0 plane.
func (c *Conformer) Is3D() bool {
	for _, p := range c.positions {
		if p.Z != 0 {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
