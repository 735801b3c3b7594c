package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clusterdock/clusterdock/internal/cluster"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

func newPortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "port <hostname> <container-port>",
		Short: "Show the host port a node's container port is published to",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := getApp()
			hostname := args[0]

			containerPort, err := strconv.Atoi(args[1])
			if err != nil {
				logger.Fatal("Container port must be a number", "port", args[1])
			}

			ctx := context.Background()
			node, err := cluster.ResolveNode(ctx, a.Engine, hostname)
			if err != nil {
				if errors.Is(err, cluster.ErrNodeNotFound) {
					logger.Fatal("No running node matches hostname", "hostname", hostname)
				}
				logger.Fatal("Failed to resolve node", "error", err)
			}

			hostPort, err := a.Engine.GetContainerPort(ctx, node.ContainerID, containerPort)
			if err != nil {
				logger.Fatal("Failed to look up port binding", "error", err)
			}

			fmt.Println(hostPort)
		},
	}
}
