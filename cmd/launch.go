package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clusterdock/clusterdock/internal/cluster"
	"github.com/clusterdock/clusterdock/pkg/logger"
	"github.com/clusterdock/clusterdock/pkg/term"
)

func newLaunchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "launch [-- controller args...]",
		Short: "Launch the cluster controller container",
		Long: `Launch resolves the controller image, stages the topology image's
filesystem through an ephemeral donor container when one is configured,
and runs the privileged, host-networked controller in the foreground.
Arguments after -- are forwarded verbatim to the controller's entry
process. The command's exit code is the controller's exit code.`,
		Run: func(cmd *cobra.Command, args []string) {
			a := getApp()

			// A signal during the foreground run cancels the attach but
			// still lets the deferred donor reaping inside Launch run.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			restore := func() {}
			if term.IsTerminal() {
				term.SetRawMode()
				restore = term.RestoreTerminal
			}

			launcher := cluster.NewLauncher(a.Engine, a.Config, a.Resolver)
			exitCode, err := launcher.Launch(ctx, args)
			restore()

			if err != nil {
				logger.Error("Launch failed", "error", err)
				os.Exit(1)
			}
			if exitCode != 0 {
				color.Red("Cluster controller exited with code %d", exitCode)
			}
			os.Exit(exitCode)
		},
	}
}
