package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

// ErrNodeNotFound is returned when no running container is configured
// with the requested hostname.
var ErrNodeNotFound = errors.New("node not found")

// Node is a logical cluster member backed by a running container. The
// engine's running-container list is the authoritative source; nodes
// are never persisted.
type Node struct {
	ContainerID string
	Hostname    string
}

// ResolveNode scans running containers and returns the first whose
// configured hostname matches exactly. Hostnames are assumed unique
// among running containers. A miss is a hard error, never a guess at
// an unrelated container.
func ResolveNode(ctx context.Context, eng engine.Engine, hostname string) (*Node, error) {
	containers, err := eng.ListContainers(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		info, err := eng.InspectContainer(ctx, c.ID)
		if err != nil {
			logger.Warn("Failed to inspect container during node resolution", "id", c.ID, "error", err)
			continue
		}
		if info.Hostname == hostname {
			return &Node{ContainerID: info.ID, Hostname: hostname}, nil
		}
	}

	return nil, fmt.Errorf("%w: no running container has hostname %q", ErrNodeNotFound, hostname)
}

// ListNodes returns the inspected view of every running container,
// hostname included.
func ListNodes(ctx context.Context, eng engine.Engine) ([]*engine.ContainerInfo, error) {
	containers, err := eng.ListContainers(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var nodes []*engine.ContainerInfo
	for _, c := range containers {
		info, err := eng.InspectContainer(ctx, c.ID)
		if err != nil {
			logger.Warn("Failed to inspect container", "id", c.ID, "error", err)
			continue
		}
		nodes = append(nodes, info)
	}
	return nodes, nil
}
