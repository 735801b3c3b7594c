package cluster

import (
	"context"
	"fmt"

	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

// Engine-owned networks that must survive a host cleanup.
var defaultNetworks = map[string]bool{
	"bridge": true,
	"host":   true,
	"none":   true,
}

// CleanHost kills every running container, removes every container on
// the host (with anonymous volumes), and removes every non-default
// network. Individual failures are logged and skipped so one wedged
// container cannot stop the sweep.
func CleanHost(ctx context.Context, eng engine.Engine) error {
	running, err := eng.ListContainers(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list running containers: %w", err)
	}
	for _, c := range running {
		if err := eng.KillContainer(ctx, c.ID); err != nil {
			logger.Warn("Failed to kill container", "id", c.ID, "error", err)
		}
	}

	containers, err := eng.ListContainers(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		if err := eng.RemoveContainer(ctx, c.ID, true, true); err != nil {
			logger.Warn("Failed to remove container", "id", c.ID, "error", err)
			continue
		}
		logger.Info("Removed container", "id", shortID(c.ID), "name", c.Name)
	}

	networks, err := eng.ListNetworks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}

	for _, n := range networks {
		if defaultNetworks[n.Name] {
			continue
		}
		if err := eng.RemoveNetwork(ctx, n.ID); err != nil {
			logger.Warn("Failed to remove network", "name", n.Name, "error", err)
			continue
		}
		logger.Info("Removed network", "name", n.Name)
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
