// Package main runs a logos application with the demo module.
//
//	$ logos --command hello --name Ada
//	$ logos --env .env.local --command serve
//	$ logos --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/logos/demo"
	"github.com/km-arc/logos/framework/app"
)

// newRootCmd builds the command line for args. The application always sees
// args unchanged, so the command dispatcher and the selected command read
// flags cobra does not know about.
func newRootCmd(args []string) *cobra.Command {
	var (
		envFiles []string
		modules  []string
	)

	run := func(cmd *cobra.Command) error {
		k, err := app.New(
			app.WithEnvFiles(envFiles...),
			app.WithModules(modules...),
			app.WithArguments(args),
			app.WithOutput(cmd.OutOrStdout()),
			app.WithLogOutput(cmd.ErrOrStderr()),
		)
		if err != nil {
			return err
		}
		return k.Run(cmd.Context())
	}

	cmd := &cobra.Command{
		Use:   "logos --command <name> [flags]",
		Short: "Run a command registered by the application modules",
		Long: `Assembles the application from its modules and dispatches to the
resource app.command.<name> selected with --command. Flags not listed here
are passed through to the command.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
	cmd.Flags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env when present)")
	cmd.Flags().StringSliceVar(&modules, "module", []string{demo.Name}, "application modules, lowest layer first")

	// Cobra answers --help itself; the application adds its command list.
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
		fmt.Fprintln(cmd.OutOrStdout())
		if err := run(cmd); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		}
	})

	cmd.SetArgs(args)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Args[1:]).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
