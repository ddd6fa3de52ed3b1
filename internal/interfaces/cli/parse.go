package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	appkcf "github.com/turtacn/kcfgraph/internal/application/kcf"
	"github.com/turtacn/kcfgraph/internal/config"
	domainKCF "github.com/turtacn/kcfgraph/internal/domain/kcf"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// parserFlags are the per-invocation parser switches shared by parse,
// batch and fetch.
type parserFlags struct {
	noStereo    bool
	noHydrogens bool
}

func (f *parserFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noStereo, "no-stereo", false, "skip chirality and bond stereo assignment")
	cmd.Flags().BoolVar(&f.noHydrogens, "no-hydrogens", false, "skip implicit hydrogen assignment")
}

// apply switches off post-passes on top of the configured defaults.
func (f *parserFlags) apply(cfg config.ParserConfig) config.ParserConfig {
	if f.noStereo {
		cfg.NoStereo = true
	}
	if f.noHydrogens {
		cfg.NoImplicitHydrogens = true
	}
	return cfg
}

// ─────────────────────────────────────────────────────────────────────────────
// parse
// ─────────────────────────────────────────────────────────────────────────────

func NewParseCmd() *cobra.Command {
	var pf parserFlags
	cmd := &cobra.Command{
		Use:   "parse [file|-]...",
		Short: "Parse KCF records into molecular graphs",
		Long: "Parse one or more KCF files. Files holding several records separated by\n" +
			"\"///\" are split. With no argument, or \"-\", records are read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runParse(cmd, cliCtx, &pf, args)
		},
	}
	pf.register(cmd)
	return cmd
}

func runParse(cmd *cobra.Command, cliCtx *CLIContext, pf *parserFlags, args []string) error {
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg := *cliCtx.Config
	cfg.Parser = pf.apply(cfg.Parser)
	// One-shot parses never need the network record source.
	cfg.MinIO.Enabled = false
	b, err := openBackends(&cfg, cliCtx.Logger, false)
	if err != nil {
		return err
	}
	defer b.Close()
	svc := b.service(&cfg)

	var (
		report parseReport
		failed int
	)
	for _, in := range inputs {
		res, err := svc.Parse(ctx, in)
		if err != nil {
			if len(inputs) == 1 {
				return err
			}
			failed++
			PrintError(cmd, fmt.Errorf("%s: %w", in.Name, err))
			continue
		}
		report = append(report, res)
	}

	if len(report) > 0 {
		if err := printReport(cmd, cliCtx, report); err != nil {
			return err
		}
	}
	if failed > 0 {
		return errors.New(errors.ErrCodeKCFBatchFailed, "some records failed to parse").
			WithDetailf("%d of %d", failed, len(inputs))
	}
	return nil
}

// readInputs loads every named file ("-" is stdin) and splits it into
// records named "<file>" or "<file>#<n>".
func readInputs(stdin io.Reader, args []string) ([]appkcf.ParseInput, error) {
	var inputs []appkcf.ParseInput
	for _, arg := range args {
		name, source := filepath.Base(arg), prometheus.SourceFile
		var (
			records []string
			err     error
		)
		if arg == "-" {
			name, source = "stdin", prometheus.SourceStdin
			records, err = domainKCF.SplitRecords(stdin)
		} else {
			records, err = splitFile(arg)
		}
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, errors.New(errors.ErrCodeKCFEmptyRecord, "no KCF record found").WithDetail(arg)
		}
		for n, text := range records {
			in := appkcf.ParseInput{Name: name, Text: text, Source: source}
			if len(records) > 1 {
				in.Name = name + "#" + strconv.Itoa(n+1)
			}
			inputs = append(inputs, in)
		}
	}
	return inputs, nil
}

// printReport prints a lone JSON result as an object rather than a list.
func printReport(cmd *cobra.Command, cliCtx *CLIContext, report parseReport) error {
	if len(report) == 1 && cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, report[0])
	}
	return PrintResult(cmd, report)
}

func splitFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("record file not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "open record file").WithDetail(path)
	}
	defer f.Close()
	return domainKCF.SplitRecords(f)
}

// parseReport renders parse results.
type parseReport []*appkcf.ParseResult

func (r parseReport) String() string {
	var sb strings.Builder
	for i, res := range r {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(summarize(res))
	}
	return sb.String()
}

func (r parseReport) TableHeaders() []string {
	return []string{"Name", "Entry", "Atoms", "Bonds", "Rings", "Cached", "Duration"}
}

func (r parseReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, res := range r {
		rows = append(rows, resultRow(res))
	}
	return rows
}

func resultRow(res *appkcf.ParseResult) []string {
	g := res.Graph
	return []string{
		res.Name,
		g.Entry,
		strconv.Itoa(g.NumAtoms),
		strconv.Itoa(g.NumBonds),
		strconv.Itoa(g.NumRings),
		strconv.FormatBool(res.Cached),
		res.Duration.Round(time.Microsecond).String(),
	}
}

func summarize(res *appkcf.ParseResult) string {
	g := res.Graph
	line := fmt.Sprintf("%s  entry=%s atoms=%d bonds=%d rings=%d", res.Name, g.Entry, g.NumAtoms, g.NumBonds, g.NumRings)
	if res.Cached {
		line += " (cached)"
	}
	return line
}

// ─────────────────────────────────────────────────────────────────────────────
// batch
// ─────────────────────────────────────────────────────────────────────────────

func NewBatchCmd() *cobra.Command {
	var (
		pf          parserFlags
		concurrency int
		failFast    bool
		pattern     string
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Parse every KCF file of a directory in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			cfg := *cliCtx.Config
			cfg.Parser = pf.apply(cfg.Parser)
			cfg.MinIO.Enabled = false
			if cmd.Flags().Changed("concurrency") {
				if concurrency < 1 {
					return errors.InvalidParam("--concurrency must be at least 1")
				}
				cfg.Batch.Concurrency = concurrency
			}
			if failFast {
				cfg.Batch.FailFast = true
			}
			if pattern != "" {
				cfg.Batch.FilePattern = pattern
			}

			b, err := openBackends(&cfg, cliCtx.Logger, false)
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := b.service(&cfg).ParseDirectory(ctx, args[0])
			if res != nil {
				if perr := PrintResult(cmd, batchReport{res}); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				cliCtx.Logger.Warn("batch finished with failures",
					logging.String("batch_id", res.BatchID),
					logging.Int("failed", res.Failed))
				return errors.New(errors.ErrCodeKCFBatchFailed, "some records failed to parse").
					WithDetailf("%d of %d", res.Failed, len(res.Items))
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", config.DefaultBatchConcurrency, "records parsed in parallel")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first malformed record")
	cmd.Flags().StringVar(&pattern, "pattern", "", "file glob inside <dir> (default from config: *.kcf)")
	return cmd
}

// batchReport renders a batch result.
type batchReport struct {
	*appkcf.BatchResult
}

func (r batchReport) String() string {
	var sb strings.Builder
	for _, item := range r.Items {
		switch {
		case item.Result != nil:
			sb.WriteString(summarize(item.Result))
		case item.Error != "":
			fmt.Fprintf(&sb, "%s  %s %s", item.Name, color.RedString("FAILED"), item.Error)
		default:
			fmt.Fprintf(&sb, "%s  %s", item.Name, color.YellowString("SKIPPED"))
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "batch %s: %d succeeded, %d failed, %d skipped in %s",
		r.BatchID, r.Succeeded, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
	return sb.String()
}

func (r batchReport) TableHeaders() []string {
	return append(parseReport(nil).TableHeaders(), "Error")
}

func (r batchReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Result != nil {
			rows = append(rows, append(resultRow(item.Result), ""))
			continue
		}
		msg := item.Error
		if msg == "" {
			msg = "skipped"
		}
		rows = append(rows, []string{item.Name, "", "", "", "", "", "", msg})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// fetch
// ─────────────────────────────────────────────────────────────────────────────

func NewFetchCmd() *cobra.Command {
	var pf parserFlags
	cmd := &cobra.Command{
		Use:   "fetch <object-key>",
		Short: "Parse a record stored in the MinIO record bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			cfg := *cliCtx.Config
			cfg.Parser = pf.apply(cfg.Parser)
			b, err := openBackends(&cfg, cliCtx.Logger, false)
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := b.service(&cfg).ParseObject(ctx, args[0])
			if err != nil {
				return err
			}
			return printReport(cmd, cliCtx, parseReport{res})
		},
	}
	pf.register(cmd)
	return cmd
}

//Personal.AI order the ending
