package gnnsom

import (
	"strings"
	"testing"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

func TestParseConvKind(t *testing.T) {
	cases := map[string]int{"cheb": 5, "cheb10k": 10, "CHEB15K": 15, " cheb ": 5}
	for name, order := range cases {
		k, err := ParseConvKind(name)
		if err != nil {
			t.Fatalf("ParseConvKind(%q): %v", name, err)
		}
		if k.Order() != order {
			t.Errorf("%q: expected order %d, got %d", name, order, k.Order())
		}
	}
}

func TestParseConvKind_Unknown(t *testing.T) {
	_, err := ParseConvKind("gcn")
	if !errors.IsCode(err, errors.ErrCodeUnsupportedConvKind) {
		t.Fatalf("expected unsupported conv kind, got %v", err)
	}
}

func TestBuild_Layout(t *testing.T) {
	m, err := Build(ConvCheb, 16, 2, 8)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Modules) != 7 {
		t.Fatalf("expected 7 modules, got %d", len(m.Modules))
	}
	wantKinds := []ModuleKind{
		ModuleChebConv, ModuleReLU, ModuleDropout,
		ModuleChebConv, ModuleReLU, ModuleDropout,
		ModuleChebConv,
	}
	for i, k := range wantKinds {
		if m.Modules[i].Kind != k {
			t.Errorf("module %d: expected %s, got %s", i, k, m.Modules[i].Kind)
		}
		if m.Modules[i].Index != i {
			t.Errorf("module %d has index %d", i, m.Modules[i].Index)
		}
	}

	convs := m.Convolutions()
	sizes := [][2]int{{8, 16}, {16, 16}, {16, 1}}
	for i, c := range convs {
		if c.In != sizes[i][0] || c.Out != sizes[i][1] || c.K != 5 {
			t.Errorf("conv %d: got (%d, %d, K=%d)", i, c.In, c.Out, c.K)
		}
	}
	if m.Modules[2].P != DefaultDropout {
		t.Errorf("expected dropout %v, got %v", DefaultDropout, m.Modules[2].P)
	}
}

func TestBuild_ZeroDepth(t *testing.T) {
	m, err := Build(ConvCheb10K, 32, 0, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Modules) != 1 {
		t.Fatalf("expected a single projection, got %d modules", len(m.Modules))
	}
	c := m.Modules[0]
	if c.In != 4 || c.Out != 1 || c.K != 10 {
		t.Errorf("unexpected projection %s", c)
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	cases := []struct {
		name                   string
		conv                   ConvKind
		width, depth, features int
		code                   errors.ErrorCode
	}{
		{"unknown conv", "gat", 8, 1, 4, errors.ErrCodeUnsupportedConvKind},
		{"zero width", ConvCheb, 0, 1, 4, errors.ErrCodeModelConfigInvalid},
		{"negative depth", ConvCheb, 8, -1, 4, errors.ErrCodeModelConfigInvalid},
		{"zero features", ConvCheb, 8, 1, 0, errors.ErrCodeModelConfigInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.conv, tc.width, tc.depth, tc.features)
			if !errors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestModel_Parameters(t *testing.T) {
	m, err := Build(ConvCheb, 3, 1, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	params := m.Parameters()
	// two convolutions, five linear maps and one bias each
	if len(params) != 12 {
		t.Fatalf("expected 12 parameters, got %d", len(params))
	}
	if params[0].Name != "module_0.lins.0.weight" {
		t.Errorf("unexpected first parameter %q", params[0].Name)
	}
	if got := params[0].Shape; got[0] != 3 || got[1] != 2 {
		t.Errorf("expected [3 2], got %v", got)
	}
	if params[5].Name != "module_0.bias" || params[5].Shape[0] != 3 {
		t.Errorf("unexpected bias %+v", params[5])
	}
	if params[6].Name != "module_3.lins.0.weight" {
		t.Errorf("expected second conv at module_3, got %q", params[6].Name)
	}
	// 5*3*2 + 3 + 5*1*3 + 1
	if m.NumParameters() != 49 {
		t.Errorf("expected 49 scalars, got %d", m.NumParameters())
	}
}

func TestModel_String(t *testing.T) {
	m, _ := Build(ConvCheb, 4, 1, 2)
	s := m.String()
	for _, want := range []string{
		"Sequential(x, edge_index,",
		"(module_0): ChebConv(2, 4, K=5)",
		"(module_1): ReLU(inplace=True)",
		"(module_2): Dropout(p=0.5)",
		"(module_3): ChebConv(4, 1, K=5)",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

//Personal.AI order the ending
