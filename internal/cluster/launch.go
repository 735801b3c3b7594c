// Package cluster implements the launch and node-access pipelines on
// top of the engine capability interface.
package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clusterdock/clusterdock/internal/config"
	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/internal/registry"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

// Fixed mount points of the controller container. The engine socket is
// required for the controller to manage host-level containers; hosts
// and localtime keep cluster-wide name/time consistency.
const (
	engineSocketPath  = "/var/run/docker.sock"
	hostsFilePath     = "/etc/hosts"
	localtimeFilePath = "/etc/localtime"
	scratchVolumePath = "/tmp/clusterdock"
	targetMountPath   = "/root/clusterdock/target"
)

// ComponentLabel marks containers owned by clusterdock and names the
// role they play.
const (
	ComponentLabel      = "io.clusterdock.component"
	ComponentController = "controller"
	ComponentTopology   = "topology"
)

// Environment entries forwarded into the controller container.
const (
	envRegistryInsecure = "CLUSTERDOCK_REGISTRY_INSECURE"
	envRegistryUsername = "CLUSTERDOCK_REGISTRY_USERNAME"
	envRegistryPassword = "CLUSTERDOCK_REGISTRY_PASSWORD"
)

// donorRemoveTimeout bounds the deferred donor removal so a wedged
// engine cannot hang process exit forever.
const donorRemoveTimeout = 30 * time.Second

// ImageResolver yields the controller image reference, skipping remote
// resolution when an override is present.
type ImageResolver interface {
	ControllerImage(ctx context.Context, override string) (string, registry.Status)
}

// Donor is the ephemeral container staging a topology image's
// filesystem for the controller via a volumes-from relation. At most
// one exists per invocation.
type Donor struct {
	ID          string
	SourceImage string
}

// Launcher runs the cluster launch pipeline.
type Launcher struct {
	engine   engine.Engine
	cfg      *config.Config
	resolver ImageResolver
}

// NewLauncher wires a launcher against an engine, a config built at
// entry, and an image resolver.
func NewLauncher(eng engine.Engine, cfg *config.Config, resolver ImageResolver) *Launcher {
	return &Launcher{
		engine:   eng,
		cfg:      cfg,
		resolver: resolver,
	}
}

// Launch runs the full pipeline: resolve the controller image, sync
// images, compose mounts and environment, stage the topology donor if
// one is configured, and run the privileged host-networked controller
// in the foreground. Returns the controller's exit code.
//
// The donor, if created, is removed on every exit path once the
// foreground run has returned, whether or not it succeeded.
func (l *Launcher) Launch(ctx context.Context, args []string) (int, error) {
	imageRef, status := l.resolver.ControllerImage(ctx, l.cfg.Image)
	logger.Debug("Controller image resolved", "image", imageRef, "resolution", status.String())
	if status == registry.StatusFailed {
		logger.Warn("Registry resolution failed; continuing with composed reference", "image", imageRef)
	}

	syncImage(ctx, l.engine, imageRef, l.cfg.Pull)
	if l.cfg.TopologyImage != "" {
		syncImage(ctx, l.engine, l.cfg.TopologyImage, l.cfg.Pull)
	}

	spec, donor, err := l.composeSpec(ctx, imageRef, args)
	if err != nil {
		return -1, err
	}
	if donor != nil {
		defer l.reapDonor(donor)
	}

	logger.Info("Launching cluster controller", "image", imageRef)
	exitCode, err := l.engine.RunAttached(ctx, spec)
	if err != nil {
		return -1, fmt.Errorf("cluster launch failed: %w", err)
	}
	return exitCode, nil
}

// composeSpec assembles the launch spec from optional fragments: an
// absent input omits its fragment entirely, it never contributes an
// empty-valued entry.
func (l *Launcher) composeSpec(ctx context.Context, imageRef string, args []string) (*engine.ContainerSpec, *Donor, error) {
	mounts := []engine.Mount{
		{Source: engineSocketPath, Target: engineSocketPath},
		{Source: hostsFilePath, Target: hostsFilePath},
		{Source: localtimeFilePath, Target: localtimeFilePath},
		{Target: scratchVolumePath}, // anonymous scratch volume
	}
	if l.cfg.TargetDir != "" {
		mounts = append(mounts, engine.Mount{Source: l.cfg.TargetDir, Target: targetMountPath})
	}

	var env []string
	if l.cfg.RegistryInsecure {
		env = append(env, envRegistryInsecure+"=true")
	}
	if l.cfg.RegistryUsername != "" {
		env = append(env, envRegistryUsername+"="+l.cfg.RegistryUsername)
	}
	if l.cfg.RegistryPassword != "" {
		env = append(env, envRegistryPassword+"="+l.cfg.RegistryPassword)
	}

	spec := &engine.ContainerSpec{
		Image:       imageRef,
		Name:        containerName("clusterdock"),
		Cmd:         args,
		Env:         env,
		Mounts:      mounts,
		Privileged:  true,
		NetworkMode: "host",
		TTY:         true,
		Labels:      map[string]string{ComponentLabel: ComponentController},
	}

	var donor *Donor
	if l.cfg.TopologyImage != "" {
		d, err := l.createDonor(ctx)
		if err != nil {
			return nil, nil, err
		}
		donor = d
		spec.VolumesFrom = []string{donor.ID}
	}

	return spec, donor, nil
}

// createDonor creates the topology donor container. No command runs
// inside it; it exists only to hold the image's volumes. Creation
// failure is fatal and aborts the pipeline before launch.
func (l *Launcher) createDonor(ctx context.Context) (*Donor, error) {
	id, err := l.engine.CreateContainer(ctx, &engine.ContainerSpec{
		Image:  l.cfg.TopologyImage,
		Name:   containerName("clusterdock-topology"),
		Labels: map[string]string{ComponentLabel: ComponentTopology},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create topology donor from %s: %w", l.cfg.TopologyImage, err)
	}

	logger.Debug("Topology donor created", "id", id, "image", l.cfg.TopologyImage)
	return &Donor{ID: id, SourceImage: l.cfg.TopologyImage}, nil
}

// reapDonor removes the donor and its anonymous volumes. It uses a
// fresh context so cancellation of the launch context cannot leave the
// donor behind.
func (l *Launcher) reapDonor(donor *Donor) {
	ctx, cancel := context.WithTimeout(context.Background(), donorRemoveTimeout)
	defer cancel()

	if err := l.engine.RemoveContainer(ctx, donor.ID, true, true); err != nil {
		logger.Warn("Failed to remove topology donor", "id", donor.ID, "error", err)
		return
	}
	logger.Debug("Topology donor removed", "id", donor.ID)
}

func containerName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
