package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clusterdock/clusterdock/internal/cluster"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

func newCleanCommand() *cobra.Command {
	var force bool

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove all containers and non-default networks on the host",
		Long: `clean tears down everything a previous cluster left behind: every
container on the host (with its anonymous volumes) and every network
except bridge, host, and none.`,
		Run: func(cmd *cobra.Command, args []string) {
			if !force {
				color.Yellow("clean removes ALL containers on this host, not just cluster nodes.")
				color.Yellow("Re-run with --force to proceed.")
				return
			}

			a := getApp()
			if err := cluster.CleanHost(context.Background(), a.Engine); err != nil {
				logger.Fatal("Cleanup failed", "error", err)
			}
			color.Green("Host cleaned")
		},
	}

	cleanCmd.Flags().BoolVarP(&force, "force", "f", false, "actually remove containers and networks")
	return cleanCmd
}
