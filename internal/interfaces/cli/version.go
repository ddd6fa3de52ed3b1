package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("kcfgraph %s (commit: %s, built: %s, %s)", b.Version, b.Commit, b.BuildDate, b.GoVersion)
}

// NewVersionCmd prints the build information. It needs no configuration.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Config is not loaded for version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
			if f := cmd.Flag("output"); f != nil && f.Value.String() == "json" {
				return printJSON(cmd, info)
			}
			return printText(cmd, info)
		},
	}
}

//Personal.AI order the ending
