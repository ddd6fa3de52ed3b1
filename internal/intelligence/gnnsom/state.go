package gnnsom

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// StateDict maps parameter names to tensors.
type StateDict map[string]*Tensor

// Names returns the parameter names in sorted order.
func (s StateDict) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Legacy naming
// ---------------------------------------------------------------------------

// LegacyLibraryPrefix marks graph library versions whose module naming
// differs from the one legacy state files were written with.
const LegacyLibraryPrefix = "2."

// NeedsTranslation reports whether a state saved under the legacy naming
// must be translated before loading into the given library version.
func NeedsTranslation(libraryVersion string) bool {
	return strings.HasPrefix(libraryVersion, LegacyLibraryPrefix)
}

// parseLegacyName splits "nns.<i>.weight" or "nns.<i>.bias".
func parseLegacyName(name string) (index int, leaf string, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] != "nns" {
		return 0, "", false
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil || i < 0 {
		return 0, "", false
	}
	if parts[2] != "weight" && parts[2] != "bias" {
		return 0, "", false
	}
	return i, parts[2], true
}

// TranslateLegacyState rewrites a flat legacy state into the nested naming.
// A legacy weight of shape [K, in, out] becomes K transposed matrices
// module_<i>.lins.<k>.weight of shape [out, in]; a legacy bias is renamed to
// module_<i>.bias.  Names outside the legacy scheme are rejected.
func TranslateLegacyState(state StateDict) (StateDict, error) {
	out := make(StateDict, len(state))
	for _, name := range state.Names() {
		t := state[name]
		idx, leaf, ok := parseLegacyName(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeModelStateInvalid, "unexpected legacy parameter name").
				WithDetailf("%q", name)
		}
		if err := t.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeModelStateInvalid, "invalid legacy parameter "+name)
		}
		prefix := fmt.Sprintf("module_%d", idx)

		if leaf == "bias" {
			out[prefix+".bias"] = t
			continue
		}
		if len(t.Shape) != 3 {
			return nil, errors.New(errors.ErrCodeModelStateInvalid, "legacy weight must be [K, in, out]").
				WithDetailf("%s has shape %v", name, t.Shape)
		}
		for k := 0; k < t.Shape[0]; k++ {
			slice, err := t.Index0(k)
			if err != nil {
				return nil, err
			}
			w, err := slice.Transpose2D()
			if err != nil {
				return nil, err
			}
			out[fmt.Sprintf("%s.lins.%d.weight", prefix, k)] = w
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadState validates state against m and returns the dictionary the model
// runs with.  When libraryVersion selects the legacy naming the state is
// translated first.  Loading is strict: a missing, unexpected or
// mis-shaped parameter fails the whole load.
func LoadState(m *Model, state StateDict, libraryVersion string) (StateDict, error) {
	if NeedsTranslation(libraryVersion) {
		translated, err := TranslateLegacyState(state)
		if err != nil {
			return nil, err
		}
		state = translated
	}

	var missing, mismatched []string
	expected := make(map[string]bool)
	for _, p := range m.Parameters() {
		expected[p.Name] = true
		t, ok := state[p.Name]
		switch {
		case !ok:
			missing = append(missing, p.Name)
		case t.Validate() != nil || !t.SameShape(p.Shape):
			mismatched = append(mismatched, fmt.Sprintf("%s: want %v got %v", p.Name, p.Shape, t.Shape))
		}
	}
	var unexpected []string
	for _, name := range state.Names() {
		if !expected[name] {
			unexpected = append(unexpected, name)
		}
	}

	if len(missing)+len(unexpected)+len(mismatched) > 0 {
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "missing keys: "+strings.Join(missing, ", "))
		}
		if len(unexpected) > 0 {
			parts = append(parts, "unexpected keys: "+strings.Join(unexpected, ", "))
		}
		if len(mismatched) > 0 {
			parts = append(parts, "size mismatch: "+strings.Join(mismatched, "; "))
		}
		return nil, errors.New(errors.ErrCodeModelStateMismatch, "error loading state").
			WithDetail(strings.Join(parts, " | "))
	}

	loaded := make(StateDict, len(state))
	for k, v := range state {
		loaded[k] = v
	}
	return loaded, nil
}

// InitState returns a freshly initialised state for m: Glorot-uniform
// weights and zero biases.  The same seed always yields the same state.
func InitState(m *Model, seed int64) StateDict {
	rng := rand.New(rand.NewSource(seed))
	state := make(StateDict)
	for _, p := range m.Parameters() {
		t := NewTensor(p.Shape...)
		if len(p.Shape) == 2 {
			limit := math.Sqrt(6.0 / float64(p.Shape[0]+p.Shape[1]))
			for i := range t.Data {
				t.Data[i] = float32((rng.Float64()*2 - 1) * limit)
			}
		}
		state[p.Name] = t
	}
	return state
}

//Personal.AI order the ending
