package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kcfgraph",
		Short: "kcfgraph converts KEGG Chemical Function records into molecular graphs",
		Long: "kcfgraph parses KEGG Chemical Function (KCF) records into molecular graphs with\n" +
			"ring perception, stereo and implicit hydrogens. It runs as a one-shot\n" +
			"CLI, an HTTP API or a Kafka stream worker, and builds the graph models\n" +
			"that consume the parsed graphs.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./kcfgraph.yaml if present)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "operation timeout for one-shot commands (0 = none)")

	cmd.AddCommand(
		NewParseCmd(),
		NewBatchCmd(),
		NewFetchCmd(),
		NewModelCmd(),
		NewServeCmd(),
		NewWorkerCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config and the logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.InvalidParam("unknown output format").WithDetailf("%q (expected text, json or table)", opts.OutputFormat)
	}

	path := resolveConfigPath(opts.ConfigPath)
	cfg, err := config.Load(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "config initialization failed")
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "logger initialization failed")
	}
	logging.SetDefault(logger)

	if opts.NoColor {
		color.NoColor = true
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// resolveConfigPath returns the explicit path, or the first default file
// that exists, or "" for environment-only configuration.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	searchPaths := []string{"./kcfgraph.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".kcfgraph", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/kcfgraph/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// initLogger creates a logger that writes to stderr so parse output on
// stdout stays machine readable.
func initLogger(cfg *config.Config) (logging.Logger, error) {
	format := cfg.Log.Format
	if format == "" {
		format = "console"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext applies the --timeout flag to the command context.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// Execute is the main entry point for the CLI application.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		// Fallback to JSON if context unavailable.
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs data as a simple string representation to stdout.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// tableProvider is implemented by results that render as rows.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// printTable outputs data as a table if it implements tableProvider,
// otherwise falls back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err.Error())
}

// FormatTable renders headers and rows as an aligned borderless table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("-")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range rows {
		padded := make([]string, len(headers))
		copy(padded, row)
		table.Append(padded)
	}
	table.Render()
	return sb.String()
}

//Personal.AI order the ending
