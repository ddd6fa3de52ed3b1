package gnnsom

import (
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// Tensor is a dense row-major float32 array.
type Tensor struct {
	Shape []int     `msgpack:"shape" json:"shape"`
	Data  []float32 `msgpack:"data" json:"data"`
}

func shapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// NewTensor allocates a zero tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	return &Tensor{Shape: append([]int(nil), shape...), Data: make([]float32, shapeSize(shape))}
}

// Validate checks that Data matches Shape.
func (t *Tensor) Validate() error {
	if t == nil {
		return errors.New(errors.ErrCodeModelStateInvalid, "nil tensor")
	}
	for _, d := range t.Shape {
		if d < 0 {
			return errors.New(errors.ErrCodeModelStateInvalid, "negative tensor dimension").
				WithDetailf("shape %v", t.Shape)
		}
	}
	if len(t.Data) != shapeSize(t.Shape) {
		return errors.New(errors.ErrCodeModelStateInvalid, "tensor data does not match shape").
			WithDetailf("shape %v holds %d values, got %d", t.Shape, shapeSize(t.Shape), len(t.Data))
	}
	return nil
}

// SameShape reports whether t has exactly the given shape.
func (t *Tensor) SameShape(shape []int) bool {
	if len(t.Shape) != len(shape) {
		return false
	}
	for i := range shape {
		if t.Shape[i] != shape[i] {
			return false
		}
	}
	return true
}

// Index0 returns a copy of the i-th slice along the first dimension.
func (t *Tensor) Index0(i int) (*Tensor, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if len(t.Shape) == 0 || i < 0 || i >= t.Shape[0] {
		return nil, errors.New(errors.ErrCodeModelStateInvalid, "tensor index out of range").
			WithDetailf("index %d, shape %v", i, t.Shape)
	}
	rest := t.Shape[1:]
	stride := shapeSize(rest)
	out := &Tensor{Shape: append([]int(nil), rest...), Data: make([]float32, stride)}
	copy(out.Data, t.Data[i*stride:(i+1)*stride])
	return out, nil
}

// Transpose2D returns the transpose of a matrix.
func (t *Tensor) Transpose2D() (*Tensor, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if len(t.Shape) != 2 {
		return nil, errors.New(errors.ErrCodeModelStateInvalid, "transpose needs a matrix").
			WithDetailf("shape %v", t.Shape)
	}
	rows, cols := t.Shape[0], t.Shape[1]
	out := NewTensor(cols, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Data[c*rows+r] = t.Data[r*cols+c]
		}
	}
	return out, nil
}

// At returns the element at the given coordinates.  It panics on a bad
// index like a slice access would.
func (t *Tensor) At(idx ...int) float32 {
	if len(idx) != len(t.Shape) {
		panic("gnnsom: tensor rank mismatch")
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.Shape[i] {
			panic("gnnsom: tensor index out of range")
		}
		off = off*t.Shape[i] + v
	}
	return t.Data[off]
}

//Personal.AI order the ending
