// Command poolnav browses the objects of one or more virtualization pools as
// a navigation tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "v0.1.0-dev"

// options are the persistent flags shared by every command.
type options struct {
	configPath      string
	connectionsPath string
	logLevel        string
	logFormat       string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var metricsAddr string

	rootCmd := &cobra.Command{
		Use:   "poolnav",
		Short: "Navigate virtualization pools as a tree",
		Long: `poolnav ` + Version + `
Browse hosts, VMs, templates and storage of your pools in three views:

  Infrastructure  pools, hosts and the VMs homed on them
  Objects         every object, grouped by type
  Organization    objects grouped by folder, tags or custom fields

Connections are read from .poolnav/connections.yaml, found by walking up
from the current directory. Inventory files are reloaded when they change.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, metricsAddr)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (default: nearest .poolnav/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.connectionsPath, "connections", "", "Connections file path (default: nearest .poolnav/connections.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: console, json, auto")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(
		newDumpCmd(opts),
		newExportCmd(opts),
		newConvertCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}
