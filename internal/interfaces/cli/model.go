package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/intelligence/gnnsom"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// objectScheme prefixes state locations in the MinIO model bucket.
const objectScheme = "minio://"

// modelFlags selects the layer stack. Unset flags fall back to the state
// file's recorded config, then to the model section of the config file.
type modelFlags struct {
	conv      string
	width     int
	depth     int
	features  int
	typesFile string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.conv, "conv", "", "convolution kind: "+strings.Join(convNames(), ", "))
	fs.IntVar(&f.width, "width", 0, "hidden layer width")
	fs.IntVar(&f.depth, "depth", 0, "number of hidden layers")
	fs.IntVar(&f.features, "features", 0, "input feature count")
	fs.StringVar(&f.typesFile, "atom-types", "", "file of KEGG atom types, one per line; derives --features")
}

func convNames() []string {
	kinds := gnnsom.ConvKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// resolve merges flags over base and the config file defaults.
func (f *modelFlags) resolve(cmd *cobra.Command, cfg config.ModelConfig, base *gnnsom.ModelConfig) (gnnsom.ModelConfig, error) {
	out := gnnsom.ModelConfig{
		Conv:         gnnsom.ConvKind(cfg.Conv),
		Width:        cfg.Width,
		Depth:        cfg.Depth,
		FeatureCount: cfg.FeatureCount,
	}
	if base != nil {
		out = *base
	}

	flags := cmd.Flags()
	if flags.Changed("conv") {
		kind, err := gnnsom.ParseConvKind(f.conv)
		if err != nil {
			return out, err
		}
		out.Conv = kind
	}
	if flags.Changed("width") {
		out.Width = f.width
	}
	if flags.Changed("depth") {
		out.Depth = f.depth
	}
	if flags.Changed("features") {
		out.FeatureCount = f.features
	}
	if f.typesFile != "" {
		if flags.Changed("features") {
			return out, errors.InvalidParam("--features and --atom-types are mutually exclusive")
		}
		n, err := featureCountFromTypes(f.typesFile)
		if err != nil {
			return out, err
		}
		out.FeatureCount = n
	}
	return out, out.Validate()
}

func featureCountFromTypes(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeNotFound, "read atom type vocabulary").WithDetail(path)
	}
	var types []string
	for _, line := range strings.Split(string(data), "\n") {
		if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "#") {
			types = append(types, t)
		}
	}
	fz, err := gnnsom.NewFeaturizer(types)
	if err != nil {
		return 0, err
	}
	return fz.FeatureCount(), nil
}

func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Build graph models and convert their state files",
	}
	cmd.AddCommand(newModelBuildCmd(), newModelConvertCmd())
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// model build
// ─────────────────────────────────────────────────────────────────────────────

func newModelBuildCmd() *cobra.Command {
	var (
		mf   modelFlags
		out  string
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Lay out a Chebyshev graph model and optionally write an initial state",
		Example: "  kcfgraph model build --conv cheb --width 64 --depth 3 --features 32\n" +
			"  kcfgraph model build --conv cheb10k --out minio://models/cheb10k.state",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			mc, err := mf.resolve(cmd, cliCtx.Config.Model, nil)
			if err != nil {
				return err
			}
			model, err := gnnsom.Build(mc.Conv, mc.Width, mc.Depth, mc.FeatureCount)
			if err != nil {
				return err
			}

			if out != "" {
				ctx, cancel := commandContext(cmd, cliCtx)
				defer cancel()
				state := &gnnsom.StateFile{Model: &model.Config, Params: gnnsom.InitState(model, seed)}
				if err := writeState(ctx, cliCtx, out, state); err != nil {
					return err
				}
				cliCtx.Logger.Info("initial model state written",
					logging.String("location", out),
					logging.Int("parameters", model.NumParameters()))
			}
			return PrintResult(cmd, modelReport{model})
		},
	}
	mf.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "write a freshly initialised state to a file or "+objectScheme+"<key>")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed of the initial state")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// model convert
// ─────────────────────────────────────────────────────────────────────────────

func newModelConvertCmd() *cobra.Command {
	var (
		mf             modelFlags
		libraryVersion string
	)
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Translate a legacy state file to the current parameter naming",
		Long: "Load a state file against the selected model. When --library-version starts\n" +
			"with \"2.\", legacy nns.<i> parameters are split per polynomial order first.\n" +
			"The load is strict: missing, unexpected or mis-shaped parameters fail.\n" +
			"Either location may be a local path or " + objectScheme + "<key>.",
		Example: "  kcfgraph model convert old.state new.state --library-version 2.0.4 --conv cheb --width 64 --depth 3",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			in, err := readState(ctx, cliCtx, args[0])
			if err != nil {
				return err
			}
			mc, err := mf.resolve(cmd, cliCtx.Config.Model, in.Model)
			if err != nil {
				return err
			}
			model, err := gnnsom.Build(mc.Conv, mc.Width, mc.Depth, mc.FeatureCount)
			if err != nil {
				return err
			}

			version := cliCtx.Config.Model.LibraryVersion
			switch {
			case cmd.Flags().Changed("library-version"):
				version = libraryVersion
			case in.LibraryVersion != "":
				version = in.LibraryVersion
			}
			loaded, err := gnnsom.LoadState(model, in.Params, version)
			if err != nil {
				return err
			}

			// The output is in the current naming and must not be translated again.
			out := &gnnsom.StateFile{Model: &model.Config, Params: loaded}
			if err := writeState(ctx, cliCtx, args[1], out); err != nil {
				return err
			}
			cliCtx.Logger.Info("model state converted",
				logging.String("from", args[0]),
				logging.String("to", args[1]),
				logging.Bool("translated", gnnsom.NeedsTranslation(version)))
			return PrintResult(cmd, modelReport{model})
		},
	}
	mf.register(cmd)
	cmd.Flags().StringVar(&libraryVersion, "library-version", "",
		"graph library version the state is loaded into (default from config)")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// State locations
// ─────────────────────────────────────────────────────────────────────────────

func readState(ctx context.Context, cliCtx *CLIContext, location string) (*gnnsom.StateFile, error) {
	key, remote := strings.CutPrefix(location, objectScheme)
	if !remote {
		return gnnsom.ReadStateFile(location)
	}
	b, err := openBackends(cliCtx.Config, cliCtx.Logger, false)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	store, err := b.modelStore()
	if err != nil {
		return nil, err
	}
	return store.GetState(ctx, key)
}

func writeState(ctx context.Context, cliCtx *CLIContext, location string, f *gnnsom.StateFile) error {
	key, remote := strings.CutPrefix(location, objectScheme)
	if !remote {
		return gnnsom.WriteStateFile(location, f)
	}
	b, err := openBackends(cliCtx.Config, cliCtx.Logger, false)
	if err != nil {
		return err
	}
	defer b.Close()
	store, err := b.modelStore()
	if err != nil {
		return err
	}
	return store.PutState(ctx, key, f)
}

// modelReport renders a model layout.
type modelReport struct {
	model *gnnsom.Model
}

func (r modelReport) String() string {
	return fmt.Sprintf("%s\nparameters: %d", r.model.String(), r.model.NumParameters())
}

func (r modelReport) TableHeaders() []string {
	return []string{"Parameter", "Shape"}
}

func (r modelReport) TableRows() [][]string {
	var rows [][]string
	for _, p := range r.model.Parameters() {
		dims := make([]string, len(p.Shape))
		for i, d := range p.Shape {
			dims[i] = strconv.Itoa(d)
		}
		rows = append(rows, []string{p.Name, "[" + strings.Join(dims, ", ") + "]"})
	}
	return rows
}

// MarshalJSON reports the config, the parameter specs and their total.
func (r modelReport) MarshalJSON() ([]byte, error) {
	type param struct {
		Name  string `json:"name"`
		Shape []int  `json:"shape"`
	}
	params := make([]param, 0, len(r.model.Parameters()))
	for _, p := range r.model.Parameters() {
		params = append(params, param{Name: p.Name, Shape: p.Shape})
	}
	return json.Marshal(struct {
		Config        gnnsom.ModelConfig `json:"config"`
		Modules       []string           `json:"modules"`
		Parameters    []param            `json:"parameters"`
		NumParameters int                `json:"num_parameters"`
	}{
		Config:        r.model.Config,
		Modules:       moduleLines(r.model),
		Parameters:    params,
		NumParameters: r.model.NumParameters(),
	})
}

func moduleLines(m *gnnsom.Model) []string {
	lines := make([]string, len(m.Modules))
	for i, mod := range m.Modules {
		lines[i] = mod.String()
	}
	return lines
}

//Personal.AI order the ending
