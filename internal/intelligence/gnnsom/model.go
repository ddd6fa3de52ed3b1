// Package gnnsom builds the site-of-metabolism graph network description and
// manages its parameter state.
//
// The network is a feed-forward stack of Chebyshev spectral graph
// convolutions.  Every hidden convolution is followed by a ReLU and a
// dropout; the last convolution projects each node to one scalar.  Modules
// are numbered in stack order, so with depth 2 the convolutions sit at
// module_0, module_3 and module_6.
package gnnsom

import (
	"fmt"
	"strings"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// ---------------------------------------------------------------------------
// Convolution kinds
// ---------------------------------------------------------------------------

// ConvKind selects the convolution operator and its polynomial order.
type ConvKind string

const (
	ConvCheb    ConvKind = "cheb"
	ConvCheb10K ConvKind = "cheb10k"
	ConvCheb15K ConvKind = "cheb15k"
)

var convOrders = map[ConvKind]int{
	ConvCheb:    5,
	ConvCheb10K: 10,
	ConvCheb15K: 15,
}

// ParseConvKind resolves a selector name.
func ParseConvKind(s string) (ConvKind, error) {
	k := ConvKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := convOrders[k]; !ok {
		return "", errors.New(errors.ErrCodeUnsupportedConvKind, "unsupported convolution kind").
			WithDetailf("%q", s)
	}
	return k, nil
}

// Order returns the Chebyshev polynomial order K, or 0 for an unknown kind.
func (k ConvKind) Order() int { return convOrders[k] }

// ConvKinds lists the supported selectors in ascending order.
func ConvKinds() []ConvKind { return []ConvKind{ConvCheb, ConvCheb10K, ConvCheb15K} }

// ---------------------------------------------------------------------------
// Model configuration
// ---------------------------------------------------------------------------

// DefaultDropout is the dropout probability after hidden convolutions.
const DefaultDropout = 0.5

// Signature is the forward signature of every module in the stack.
const Signature = "x, edge_index"

// ModelConfig holds the builder inputs.
type ModelConfig struct {
	Conv         ConvKind `json:"conv" yaml:"conv" mapstructure:"conv"`
	Width        int      `json:"width" yaml:"width" mapstructure:"width"`
	Depth        int      `json:"depth" yaml:"depth" mapstructure:"depth"`
	FeatureCount int      `json:"feature_count" yaml:"feature_count" mapstructure:"feature_count"`
}

// Validate checks the configuration for consistency.
func (c ModelConfig) Validate() error {
	if c.Conv.Order() == 0 {
		return errors.New(errors.ErrCodeUnsupportedConvKind, "unsupported convolution kind").
			WithDetailf("%q", string(c.Conv))
	}
	if c.Width <= 0 {
		return errors.New(errors.ErrCodeModelConfigInvalid, "width must be positive")
	}
	if c.Depth < 0 {
		return errors.New(errors.ErrCodeModelConfigInvalid, "depth must not be negative")
	}
	if c.FeatureCount <= 0 {
		return errors.New(errors.ErrCodeModelConfigInvalid, "feature count must be positive")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Modules
// ---------------------------------------------------------------------------

// ModuleKind is the operator a stack entry applies.
type ModuleKind int

const (
	ModuleChebConv ModuleKind = iota
	ModuleReLU
	ModuleDropout
)

func (k ModuleKind) String() string {
	switch k {
	case ModuleChebConv:
		return "ChebConv"
	case ModuleReLU:
		return "ReLU"
	case ModuleDropout:
		return "Dropout"
	default:
		return "Unknown"
	}
}

// Module is one entry of the stack.  In, Out and K are set for
// convolutions only; P is set for dropout only.
type Module struct {
	Index int
	Kind  ModuleKind
	In    int
	Out   int
	K     int
	P     float64
}

// Name is the module's prefix in a state dictionary.
func (m Module) Name() string { return fmt.Sprintf("module_%d", m.Index) }

func (m Module) String() string {
	switch m.Kind {
	case ModuleChebConv:
		return fmt.Sprintf("(%s): ChebConv(%d, %d, K=%d)", m.Name(), m.In, m.Out, m.K)
	case ModuleReLU:
		return fmt.Sprintf("(%s): ReLU(inplace=True)", m.Name())
	case ModuleDropout:
		return fmt.Sprintf("(%s): Dropout(p=%g)", m.Name(), m.P)
	}
	return m.Name()
}

// Model is the layer description produced by Build.
type Model struct {
	Config  ModelConfig
	Modules []Module
}

// Build lays out the stack for the given selector, hidden width, number of
// hidden layers and input feature count.  Layer sizes are
// [featureCount, width × depth, 1].
func Build(conv ConvKind, width, depth, featureCount int) (*Model, error) {
	cfg := ModelConfig{Conv: conv, Width: width, Depth: depth, FeatureCount: featureCount}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sizes := make([]int, 0, depth+2)
	sizes = append(sizes, featureCount)
	for i := 0; i < depth; i++ {
		sizes = append(sizes, width)
	}
	sizes = append(sizes, 1)

	m := &Model{Config: cfg}
	last := len(sizes) - 2
	for i := 0; i <= last; i++ {
		m.push(Module{Kind: ModuleChebConv, In: sizes[i], Out: sizes[i+1], K: conv.Order()})
		if i < last {
			m.push(Module{Kind: ModuleReLU})
			m.push(Module{Kind: ModuleDropout, P: DefaultDropout})
		}
	}
	return m, nil
}

func (m *Model) push(mod Module) {
	mod.Index = len(m.Modules)
	m.Modules = append(m.Modules, mod)
}

// Convolutions returns the convolution modules in stack order.
func (m *Model) Convolutions() []Module {
	var out []Module
	for _, mod := range m.Modules {
		if mod.Kind == ModuleChebConv {
			out = append(out, mod)
		}
	}
	return out
}

// ParameterSpec names one learnable tensor and its shape.
type ParameterSpec struct {
	Name  string
	Shape []int
}

// Parameters lists every learnable tensor the model expects, in stack
// order.  A convolution of order K has K linear maps of shape [out, in] and
// one bias of shape [out].
func (m *Model) Parameters() []ParameterSpec {
	var out []ParameterSpec
	for _, conv := range m.Convolutions() {
		for k := 0; k < conv.K; k++ {
			out = append(out, ParameterSpec{
				Name:  fmt.Sprintf("%s.lins.%d.weight", conv.Name(), k),
				Shape: []int{conv.Out, conv.In},
			})
		}
		out = append(out, ParameterSpec{Name: conv.Name() + ".bias", Shape: []int{conv.Out}})
	}
	return out
}

// NumParameters is the total number of scalars across Parameters.
func (m *Model) NumParameters() int {
	total := 0
	for _, p := range m.Parameters() {
		total += shapeSize(p.Shape)
	}
	return total
}

// String renders the stack one module per line.
func (m *Model) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sequential(%s,\n", Signature)
	for _, mod := range m.Modules {
		sb.WriteString("  ")
		sb.WriteString(mod.String())
		sb.WriteByte('\n')
	}
	sb.WriteString(")")
	return sb.String()
}

//Personal.AI order the ending
