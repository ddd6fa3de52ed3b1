package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/turtacn/kcfgraph/internal/intelligence/gnnsom"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

const acetateFile = testdataDir + "/C00033.kcf"

// brokenBond references an atom the record never declares.
const brokenBond = `ENTRY       C99999                      Compound
ATOM        2
            1   C1a C    0.0000    0.0000
            2   C1a C    1.0000    0.0000
BOND        1
            1     1   9 1
///
`

func TestParseCmd_SingleFile(t *testing.T) {
	out, _, err := execute(t, "", "parse", acetateFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := "C00033.kcf  entry=C00033 atoms=4 bonds=3 rings=0"
	if !strings.Contains(out, want) {
		t.Errorf("expected %q in output, got %q", want, out)
	}
}

func TestParseCmd_MultiRecordFile(t *testing.T) {
	out, _, err := execute(t, "", "parse", filepath.Join(testdataDir, "multi.kcf"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, name := range []string{"multi.kcf#1", "multi.kcf#2"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected record %q in output:\n%s", name, out)
		}
	}
}

func TestParseCmd_Stdin(t *testing.T) {
	data, err := os.ReadFile(acetateFile)
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, string(data), "parse", "-")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.HasPrefix(out, "stdin  entry=C00033") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestParseCmd_JSONObject(t *testing.T) {
	out, _, err := execute(t, "", "-o", "json", "parse", acetateFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var res struct {
		Name  string `json:"name"`
		Graph struct {
			Entry    string `json:"entry"`
			NumAtoms int    `json:"num_atoms"`
			NumBonds int    `json:"num_bonds"`
		} `json:"graph"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, out)
	}
	if res.Name != "C00033.kcf" || res.Graph.Entry != "C00033" || res.Graph.NumAtoms != 4 || res.Graph.NumBonds != 3 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestParseCmd_Table(t *testing.T) {
	out, _, err := execute(t, "", "-o", "table", "parse", acetateFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out, "Atoms") || !strings.Contains(out, "C00033") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestParseCmd_FormatViolation(t *testing.T) {
	_, _, err := execute(t, brokenBond, "parse")
	if !errors.IsCode(err, errors.ErrCodeKCFFormatViolation) {
		t.Fatalf("expected a format violation, got %v", err)
	}
}

func TestParseCmd_PartialFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.kcf")
	if err := os.WriteFile(bad, []byte(brokenBond), 0o600); err != nil {
		t.Fatal(err)
	}
	out, errOut, err := execute(t, "", "parse", acetateFile, bad)
	if !errors.IsCode(err, errors.ErrCodeKCFBatchFailed) {
		t.Fatalf("expected batch failure, got %v", err)
	}
	if !strings.Contains(out, "entry=C00033") {
		t.Errorf("good record missing from output %q", out)
	}
	if !strings.Contains(errOut, "bad.kcf") || !strings.Contains(errOut, "KCF_001") {
		t.Errorf("bad record missing from errors %q", errOut)
	}
}

func TestParseCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "absent.kcf"))
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseCmd_EmptyInput(t *testing.T) {
	_, _, err := execute(t, "  \n///\n", "parse")
	if !errors.IsCode(err, errors.ErrCodeKCFEmptyRecord) {
		t.Fatalf("expected empty record error, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// batch
// ─────────────────────────────────────────────────────────────────────────────

func batchDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestBatchCmd_AllSucceed(t *testing.T) {
	acetate, err := os.ReadFile(acetateFile)
	if err != nil {
		t.Fatal(err)
	}
	dir := batchDir(t, map[string]string{"a.kcf": string(acetate), "notes.txt": "ignored"})

	out, _, err := execute(t, "", "batch", dir, "--concurrency", "2")
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if !strings.Contains(out, "1 succeeded, 0 failed, 0 skipped") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestBatchCmd_ReportsFailures(t *testing.T) {
	acetate, err := os.ReadFile(acetateFile)
	if err != nil {
		t.Fatal(err)
	}
	dir := batchDir(t, map[string]string{"a.kcf": string(acetate), "b.kcf": brokenBond})

	out, _, err := execute(t, "", "batch", dir)
	if !errors.IsCode(err, errors.ErrCodeKCFBatchFailed) {
		t.Fatalf("expected batch failure, got %v", err)
	}
	if !strings.Contains(out, "FAILED") || !strings.Contains(out, "1 succeeded, 1 failed") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestBatchCmd_RejectsConcurrency(t *testing.T) {
	_, _, err := execute(t, "", "batch", t.TempDir(), "--concurrency", "0")
	if !errors.IsCode(err, errors.CodeInvalidParam) {
		t.Fatalf("expected invalid param, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// model
// ─────────────────────────────────────────────────────────────────────────────

func TestModelBuildCmd_Layout(t *testing.T) {
	out, _, err := execute(t, "", "model", "build", "--conv", "cheb", "--width", "3", "--depth", "1", "--features", "2")
	if err != nil {
		t.Fatalf("model build failed: %v", err)
	}
	for _, want := range []string{
		"(module_0): ChebConv(2, 3, K=5)",
		"(module_1): ReLU(inplace=True)",
		"(module_2): Dropout(p=0.5)",
		"(module_3): ChebConv(3, 1, K=5)",
		"parameters: 49",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestModelBuildCmd_WritesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.state")
	_, _, err := execute(t, "", "model", "build", "--conv", "cheb10k", "--width", "4", "--depth", "2",
		"--features", "3", "--out", path, "--seed", "7")
	if err != nil {
		t.Fatalf("model build failed: %v", err)
	}
	f, err := gnnsom.ReadStateFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if f.Model == nil || f.Model.Conv != gnnsom.ConvCheb10K || f.Model.Depth != 2 {
		t.Errorf("unexpected recorded config %+v", f.Model)
	}
	w := f.Params["module_0.lins.9.weight"]
	if w == nil || !w.SameShape([]int{4, 3}) {
		t.Errorf("unexpected first weight %+v", w)
	}
}

func TestModelBuildCmd_InvalidConv(t *testing.T) {
	_, _, err := execute(t, "", "model", "build", "--conv", "gcn")
	if !errors.IsCode(err, errors.ErrCodeUnsupportedConvKind) {
		t.Fatalf("expected unsupported conv kind, got %v", err)
	}
}

func TestModelBuildCmd_AtomTypes(t *testing.T) {
	types := filepath.Join(t.TempDir(), "types.txt")
	if err := os.WriteFile(types, []byte("# vocabulary\nC1a\nC6a\nO6a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := execute(t, "", "model", "build", "--atom-types", types, "--features", "4")
	if !errors.IsCode(err, errors.CodeInvalidParam) {
		t.Fatalf("expected mutually exclusive flags to fail, got %v", err)
	}
	out, _, err := execute(t, "", "-o", "json", "model", "build", "--atom-types", types, "--depth", "0")
	if err != nil {
		t.Fatalf("model build failed: %v", err)
	}
	var report struct {
		Config gnnsom.ModelConfig `json:"config"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	fz, err := gnnsom.NewFeaturizer([]string{"C1a", "C6a", "O6a"})
	if err != nil {
		t.Fatal(err)
	}
	if report.Config.FeatureCount != fz.FeatureCount() {
		t.Errorf("feature count %d, want %d", report.Config.FeatureCount, fz.FeatureCount())
	}
}

// legacyStateFile writes a state in the flat nns.<i> naming for m.
func legacyStateFile(t *testing.T, m *gnnsom.Model) string {
	t.Helper()
	params := gnnsom.StateDict{}
	for _, conv := range m.Convolutions() {
		idx := strings.TrimPrefix(conv.Name(), "module_")
		params["nns."+idx+".weight"] = gnnsom.NewTensor(conv.K, conv.In, conv.Out)
		params["nns."+idx+".bias"] = gnnsom.NewTensor(conv.Out)
	}
	path := filepath.Join(t.TempDir(), "legacy.state")
	cfg := m.Config
	if err := gnnsom.WriteStateFile(path, &gnnsom.StateFile{LibraryVersion: "2.0.4", Model: &cfg, Params: params}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestModelConvertCmd_TranslatesLegacyState(t *testing.T) {
	m, err := gnnsom.Build(gnnsom.ConvCheb, 3, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	in := legacyStateFile(t, m)
	out := filepath.Join(t.TempDir(), "current.state")

	if _, _, err := execute(t, "", "model", "convert", in, out); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	f, err := gnnsom.ReadStateFile(out)
	if err != nil {
		t.Fatalf("read converted state: %v", err)
	}
	if f.LibraryVersion != "" {
		t.Errorf("converted state must not be translated again, got version %q", f.LibraryVersion)
	}
	if _, err := gnnsom.LoadState(m, f.Params, "1.7.2"); err != nil {
		t.Errorf("converted state does not load untranslated: %v", err)
	}
}

func TestModelConvertCmd_StrictLoad(t *testing.T) {
	m, err := gnnsom.Build(gnnsom.ConvCheb, 3, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	in := legacyStateFile(t, m)
	out := filepath.Join(t.TempDir(), "current.state")

	// Without translation the legacy names are unexpected keys.
	_, _, err = execute(t, "", "model", "convert", in, out, "--library-version", "1.7.2")
	if !errors.IsCode(err, errors.ErrCodeModelStateMismatch) {
		t.Fatalf("expected state mismatch, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output should be written on a failed load")
	}
}

func TestModelConvertCmd_RemoteNeedsMinIO(t *testing.T) {
	m, err := gnnsom.Build(gnnsom.ConvCheb, 3, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	in := legacyStateFile(t, m)
	_, _, err = execute(t, "", "model", "convert", in, objectScheme+"models/current.state")
	if !errors.IsCode(err, errors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
}

//Personal.AI order the ending
