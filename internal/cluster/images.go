package cluster

import (
	"context"

	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

// SyncStatus reports how a best-effort image sync ended.
type SyncStatus int

const (
	// SyncSynced means the image is present locally after the call.
	SyncSynced SyncStatus = iota
	// SyncSkipped means the pull policy disabled syncing.
	SyncSkipped
	// SyncFailed means the pull failed; a pre-loaded local image may
	// still allow the launch to proceed.
	SyncFailed
)

func (s SyncStatus) String() string {
	switch s {
	case SyncSynced:
		return "synced"
	case SyncSkipped:
		return "skipped"
	case SyncFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// syncImage ensures an image is present locally under a pull-if-missing
// policy. Failures degrade gracefully: they are reported in the status
// and logged, never fatal, so downstream launch failure remains the
// effective signal.
func syncImage(ctx context.Context, eng engine.Engine, imageRef string, pull bool) SyncStatus {
	if !pull {
		logger.Debug("Image sync skipped by pull policy", "image", imageRef)
		return SyncSkipped
	}

	exists, err := eng.ImageExists(ctx, imageRef)
	if err != nil {
		logger.Warn("Failed to check local images; attempting pull", "image", imageRef, "error", err)
	} else if exists {
		logger.Debug("Image already present", "image", imageRef)
		return SyncSynced
	}

	if err := eng.PullImage(ctx, imageRef); err != nil {
		logger.Warn("Image pull failed; continuing", "image", imageRef, "error", err)
		return SyncFailed
	}
	return SyncSynced
}
