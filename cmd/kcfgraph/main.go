// Command kcfgraph parses KCF records into molecular graphs and serves the
// parser over HTTP and Kafka.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/kcfgraph/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
