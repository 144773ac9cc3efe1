// Command civictl is the civictrackd server entrypoint: a small cobra
// tree wrapping config load, database connect, service wiring, and the
// HTTP listener — the same split cmd/bd uses between its persistent root
// flags and its leaf subcommands, generalized from a local-first CLI to
// a stateless API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/civictrack/civictrackd/internal/appconfig"
)

var rootCtx context.Context
var rootCancel context.CancelFunc

var rootCmd = &cobra.Command{
	Use:   "civictl",
	Short: "civictrackd server and operational tooling",
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*appconfig.Config, error) {
	return appconfig.Load(nil)
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
