// Package engine defines the container-engine capability surface the
// pipelines run against. The Docker adapter implements it; tests
// substitute a fake.
package engine

import "context"

// Mount describes one mount entry of a container spec. An empty
// Source declares an anonymous volume at Target.
type Mount struct {
	Source string
	Target string
}

// ContainerSpec holds everything needed to create a container.
type ContainerSpec struct {
	Image       string
	Name        string
	Cmd         []string
	Env         []string
	Mounts      []Mount
	VolumesFrom []string
	Privileged  bool
	NetworkMode string
	Labels      map[string]string
	TTY         bool
}

// ContainerInfo is the engine-independent view of a container.
type ContainerInfo struct {
	ID       string
	Image    string
	Name     string
	Hostname string
	Status   string
	Ports    []int
	Labels   map[string]string
}

// NetworkInfo is the engine-independent view of a network.
type NetworkInfo struct {
	ID     string
	Name   string
	Driver string
}

// Engine is the control surface consumed by the launch and node-access
// pipelines. It is a coordination contract only; the engine itself
// owns all container state.
type Engine interface {
	CreateContainer(ctx context.Context, spec *ContainerSpec) (string, error)
	StartContainer(ctx context.Context, containerID string) error
	KillContainer(ctx context.Context, containerID string) error
	RemoveContainer(ctx context.Context, containerID string, force, removeVolumes bool) error

	// RunAttached creates the container, attaches the caller's stdio to
	// its TTY, starts it, and blocks until its main process exits.
	// Returns the container's exit code.
	RunAttached(ctx context.Context, spec *ContainerSpec) (int, error)

	ListContainers(ctx context.Context, all bool) ([]*ContainerInfo, error)
	InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error)

	PullImage(ctx context.Context, imageRef string) error
	ImageExists(ctx context.Context, imageRef string) (bool, error)

	// ExecInteractive runs cmd inside a running container with the
	// caller's stdio attached, returning the command's exit code.
	ExecInteractive(ctx context.Context, containerID string, cmd []string) (int, error)

	// GetContainerPort returns the host port to which a container's
	// internal port is published.
	GetContainerPort(ctx context.Context, containerID string, internalPort int) (int, error)

	ListNetworks(ctx context.Context) ([]*NetworkInfo, error)
	RemoveNetwork(ctx context.Context, networkID string) error

	Ping(ctx context.Context) error
}
