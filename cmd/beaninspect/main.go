// Command beaninspect reports how the container would classify classes
// described in YAML or JSON descriptor files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by ldflags during build).
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s %v\n", colorize(red, "error:"), err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "beaninspect",
		Short: "Inspect configuration unit classification",
		Long: `Inspect how class descriptors are classified.

Classes carrying the Configuration marker are full units; classes with a
component-style marker or bean methods are lite units. Units are listed in
the order the container visits them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := defaultColorConfig(out)
			if noColor {
				cfg.NoColor = true
			}
			configureColors(cfg)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newClassifyCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "beaninspect "+version)
			fmt.Fprintln(out, "Commit: "+commit)
			fmt.Fprintln(out, "Built: "+buildDate)
		},
	}
}
