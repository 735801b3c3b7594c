package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clusterdock/clusterdock/internal/cluster"
	"github.com/clusterdock/clusterdock/pkg/logger"
	"github.com/clusterdock/clusterdock/pkg/term"
)

func newSSHCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ssh <hostname> [command...]",
		Short: "Open an interactive session into a cluster node",
		Long: `ssh resolves a logical node by its configured hostname among running
containers and opens a login session inside it. Trailing arguments run
as the remote command; without them an interactive shell results.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := getApp()
			hostname := args[0]
			command := args[1:]

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			restore := func() {}
			if term.IsTerminal() && len(command) == 0 {
				term.SetRawMode()
				restore = term.RestoreTerminal
			}

			session := cluster.NewSession(a.Engine, a.Config, a.Resolver)
			exitCode, err := session.Open(ctx, hostname, command)
			restore()

			if err != nil {
				if errors.Is(err, cluster.ErrNodeNotFound) {
					logger.Error("No running node matches hostname", "hostname", hostname)
				} else {
					logger.Error("Session failed", "error", err)
				}
				os.Exit(1)
			}
			os.Exit(exitCode)
		},
	}
}
