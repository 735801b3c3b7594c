package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/clusterdock/clusterdock/pkg/logger"
)

// DockerEngine implements the Engine interface using the Docker API.
type DockerEngine struct {
	client *client.Client
}

var _ Engine = (*DockerEngine)(nil)

// NewDockerEngine creates a Docker engine instance from the local
// environment (DOCKER_HOST et al.).
func NewDockerEngine() (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &DockerEngine{
		client: cli,
	}, nil
}

// NewDockerEngineWithClient creates a Docker engine instance with a
// custom client (for testing).
func NewDockerEngineWithClient(cli *client.Client) *DockerEngine {
	return &DockerEngine{
		client: cli,
	}
}

// CreateContainer creates a new container without starting it.
func (d *DockerEngine) CreateContainer(ctx context.Context, spec *ContainerSpec) (string, error) {
	containerConfig, hostConfig := d.buildConfigs(spec)

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	logger.Debug("Container created", "id", resp.ID, "name", spec.Name, "image", spec.Image)
	return resp.ID, nil
}

// StartContainer starts a container.
func (d *DockerEngine) StartContainer(ctx context.Context, containerID string) error {
	if err := d.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", containerID, err)
	}

	logger.Debug("Container started", "id", containerID)
	return nil
}

// KillContainer kills a running container.
func (d *DockerEngine) KillContainer(ctx context.Context, containerID string) error {
	if err := d.client.ContainerKill(ctx, containerID, "KILL"); err != nil {
		return fmt.Errorf("failed to kill container %s: %w", containerID, err)
	}

	logger.Debug("Container killed", "id", containerID)
	return nil
}

// RemoveContainer removes a container, optionally with force and its
// anonymous volumes.
func (d *DockerEngine) RemoveContainer(ctx context.Context, containerID string, force, removeVolumes bool) error {
	err := d.client.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         force,
		RemoveVolumes: removeVolumes,
	})
	if err != nil {
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}

	logger.Debug("Container removed", "id", containerID, "force", force)
	return nil
}

// RunAttached creates a container, wires the caller's stdio to its
// TTY, starts it, and blocks until its main process terminates.
func (d *DockerEngine) RunAttached(ctx context.Context, spec *ContainerSpec) (int, error) {
	containerConfig, hostConfig := d.buildConfigs(spec)
	containerConfig.OpenStdin = true
	containerConfig.AttachStdin = true
	containerConfig.AttachStdout = true
	containerConfig.AttachStderr = true

	resp, err := d.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return -1, fmt.Errorf("failed to create container: %w", err)
	}

	hijack, err := d.client.ContainerAttach(ctx, resp.ID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to attach to container %s: %w", resp.ID, err)
	}
	defer hijack.Close()

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return -1, fmt.Errorf("failed to start container %s: %w", resp.ID, err)
	}

	logger.Debug("Container running attached", "id", resp.ID, "image", spec.Image)

	go func() {
		_, _ = io.Copy(hijack.Conn, os.Stdin)
		_ = hijack.CloseWrite()
	}()

	outputDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(os.Stdout, hijack.Reader)
		close(outputDone)
	}()

	statusCh, errCh := d.client.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return -1, fmt.Errorf("failed waiting for container %s: %w", resp.ID, err)
		}
		return -1, fmt.Errorf("container wait ended without status for %s", resp.ID)
	case status := <-statusCh:
		<-outputDone
		return int(status.StatusCode), nil
	}
}

// ListContainers lists containers.
func (d *DockerEngine) ListContainers(ctx context.Context, all bool) ([]*ContainerInfo, error) {
	containers, err := d.client.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []*ContainerInfo
	for _, c := range containers {
		// Extract published ports
		var ports []int
		for _, port := range c.Ports {
			if port.PublicPort > 0 {
				ports = append(ports, int(port.PublicPort))
			}
		}

		// Get the primary name (remove leading slash)
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		result = append(result, &ContainerInfo{
			ID:     c.ID,
			Image:  c.Image,
			Name:   name,
			Status: c.Status,
			Ports:  ports,
			Labels: c.Labels,
		})
	}

	return result, nil
}

// InspectContainer inspects a container. The configured hostname comes
// from the container config, not from DNS.
func (d *DockerEngine) InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error) {
	resp, err := d.client.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}

	// Extract published ports
	var ports []int
	if resp.NetworkSettings != nil && resp.NetworkSettings.Ports != nil {
		for _, bindings := range resp.NetworkSettings.Ports {
			for _, binding := range bindings {
				if binding.HostPort != "" {
					if port, err := strconv.Atoi(binding.HostPort); err == nil {
						ports = append(ports, port)
					}
				}
			}
		}
	}

	return &ContainerInfo{
		ID:       resp.ID,
		Image:    resp.Config.Image,
		Name:     strings.TrimPrefix(resp.Name, "/"),
		Hostname: resp.Config.Hostname,
		Status:   resp.State.Status,
		Ports:    ports,
		Labels:   resp.Config.Labels,
	}, nil
}

// PullImage pulls an image, discarding the transport progress stream.
func (d *DockerEngine) PullImage(ctx context.Context, imageRef string) error {
	logger.Info("Pulling image", "image", imageRef)

	reader, err := d.client.ImagePull(ctx, imageRef, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	defer reader.Close()

	// Read the response to completion (this is required for the pull to complete)
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to read pull response for image %s: %w", imageRef, err)
	}

	logger.Info("Image pulled", "image", imageRef)
	return nil
}

// ImageExists reports whether an image is present on the host. The
// engine hides a docker.io/ registry prefix in repo tags, so the
// reference is normalized before comparison.
func (d *DockerEngine) ImageExists(ctx context.Context, imageRef string) (bool, error) {
	images, err := d.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to list images: %w", err)
	}

	want := NormalizeImageRef(imageRef)
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == want {
				return true, nil
			}
		}
	}
	return false, nil
}

// ExecInteractive runs cmd inside a running container with the
// caller's stdio attached to a TTY, returning the command's exit code.
func (d *DockerEngine) ExecInteractive(ctx context.Context, containerID string, cmd []string) (int, error) {
	execResp, err := d.client.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		Tty:          true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to create exec in container %s: %w", containerID, err)
	}

	hijack, err := d.client.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{Tty: true})
	if err != nil {
		return -1, fmt.Errorf("failed to attach to exec in container %s: %w", containerID, err)
	}
	defer hijack.Close()

	go func() {
		_, _ = io.Copy(hijack.Conn, os.Stdin)
		_ = hijack.CloseWrite()
	}()

	if _, err := io.Copy(os.Stdout, hijack.Reader); err != nil {
		return -1, fmt.Errorf("failed streaming exec output from container %s: %w", containerID, err)
	}

	inspect, err := d.client.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return -1, fmt.Errorf("failed to inspect exec in container %s: %w", containerID, err)
	}

	return inspect.ExitCode, nil
}

// ListNetworks lists networks known to the engine.
func (d *DockerEngine) ListNetworks(ctx context.Context) ([]*NetworkInfo, error) {
	networks, err := d.client.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}

	var result []*NetworkInfo
	for _, n := range networks {
		result = append(result, &NetworkInfo{
			ID:     n.ID,
			Name:   n.Name,
			Driver: n.Driver,
		})
	}

	return result, nil
}

// RemoveNetwork removes a network.
func (d *DockerEngine) RemoveNetwork(ctx context.Context, networkID string) error {
	if err := d.client.NetworkRemove(ctx, networkID); err != nil {
		return fmt.Errorf("failed to remove network %s: %w", networkID, err)
	}

	logger.Debug("Network removed", "id", networkID)
	return nil
}

// Ping checks if the engine is responsive.
func (d *DockerEngine) Ping(ctx context.Context) error {
	if _, err := d.client.Ping(ctx); err != nil {
		return fmt.Errorf("Docker ping failed: %w", err)
	}
	return nil
}

// buildConfigs translates a ContainerSpec into Docker container and
// host configs. Mounts with a source become binds; sourceless mounts
// become anonymous volumes.
func (d *DockerEngine) buildConfigs(spec *ContainerSpec) (*container.Config, *container.HostConfig) {
	var binds []string
	volumes := make(map[string]struct{})
	for _, m := range spec.Mounts {
		if m.Source == "" {
			volumes[m.Target] = struct{}{}
			continue
		}
		binds = append(binds, fmt.Sprintf("%s:%s", m.Source, m.Target))
	}

	containerConfig := &container.Config{
		Image:   spec.Image,
		Cmd:     spec.Cmd,
		Env:     spec.Env,
		Labels:  spec.Labels,
		Tty:     spec.TTY,
		Volumes: volumes,
	}

	hostConfig := &container.HostConfig{
		Binds:       binds,
		VolumesFrom: spec.VolumesFrom,
		Privileged:  spec.Privileged,
		NetworkMode: container.NetworkMode(spec.NetworkMode),
	}

	return containerConfig, hostConfig
}

// NormalizeImageRef strips a leading docker.io/ prefix so references
// compare equal to the repo tags the engine reports.
func NormalizeImageRef(imageRef string) string {
	return strings.TrimPrefix(imageRef, "docker.io/")
}

// GetContainerPort returns the host port to which a container's
// internal port is published.
func (d *DockerEngine) GetContainerPort(ctx context.Context, containerID string, internalPort int) (int, error) {
	resp, err := d.client.ContainerInspect(ctx, containerID)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}

	if resp.NetworkSettings == nil || resp.NetworkSettings.Ports == nil {
		return 0, fmt.Errorf("no port mappings found for container %s", containerID)
	}

	containerPort := nat.Port(fmt.Sprintf("%d/tcp", internalPort))
	bindings, exists := resp.NetworkSettings.Ports[containerPort]
	if !exists || len(bindings) == 0 {
		return 0, fmt.Errorf("port %d not mapped for container %s", internalPort, containerID)
	}

	hostPort, err := strconv.Atoi(bindings[0].HostPort)
	if err != nil {
		return 0, fmt.Errorf("invalid host port for container %s: %w", containerID, err)
	}

	return hostPort, nil
}
