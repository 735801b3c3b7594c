package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/clusterdock/clusterdock/internal/cluster"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

func newNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List running cluster nodes and their hostnames",
		Run: func(cmd *cobra.Command, args []string) {
			a := getApp()

			nodes, err := cluster.ListNodes(context.Background(), a.Engine)
			if err != nil {
				logger.Fatal("Failed to list nodes", "error", err)
			}

			if len(nodes) == 0 {
				color.Yellow("No running containers found")
				return
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HOSTNAME\tCONTAINER ID\tNAME\tIMAGE\tSTATUS\tPORTS")
			for _, n := range nodes {
				id := n.ID
				if len(id) > 12 {
					id = id[:12]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					n.Hostname, id, n.Name, n.Image, n.Status, formatPorts(n.Ports))
			}
			w.Flush()
		},
	}
}

func formatPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ",")
}
