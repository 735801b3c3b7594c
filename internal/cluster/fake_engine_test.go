package cluster

import (
	"context"
	"fmt"

	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/internal/registry"
)

// fakeEngine records every engine call so pipeline tests can assert on
// exactly what was composed and cleaned up.
type fakeEngine struct {
	created     []*engine.ContainerSpec
	createErrOn string // image ref that fails creation
	nextID      int

	removed []removal

	pulled      []string
	pullErr     error
	localImages map[string]bool
	listImgErr  error

	runSpec   *engine.ContainerSpec
	runCalled bool
	runExit   int
	runErr    error

	running    []*engine.ContainerInfo
	stopped    []*engine.ContainerInfo
	killed     []string
	infos      map[string]*engine.ContainerInfo
	listErr    error
	inspectErr map[string]error

	execCalls []execCall
	execExit  int
	execErr   error

	networks        []*engine.NetworkInfo
	removedNetworks []string

	ports map[string]map[int]int
}

type removal struct {
	id            string
	force         bool
	removeVolumes bool
}

type execCall struct {
	containerID string
	cmd         []string
}

var _ engine.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		localImages: make(map[string]bool),
		infos:       make(map[string]*engine.ContainerInfo),
		inspectErr:  make(map[string]error),
		ports:       make(map[string]map[int]int),
	}
}

func (f *fakeEngine) CreateContainer(_ context.Context, spec *engine.ContainerSpec) (string, error) {
	if f.createErrOn != "" && spec.Image == f.createErrOn {
		return "", fmt.Errorf("create failed for %s", spec.Image)
	}
	f.nextID++
	id := fmt.Sprintf("container-%d", f.nextID)
	f.created = append(f.created, spec)
	return id, nil
}

func (f *fakeEngine) StartContainer(context.Context, string) error { return nil }

func (f *fakeEngine) KillContainer(_ context.Context, id string) error {
	f.killed = append(f.killed, id)
	return nil
}

func (f *fakeEngine) RemoveContainer(_ context.Context, id string, force, removeVolumes bool) error {
	f.removed = append(f.removed, removal{id: id, force: force, removeVolumes: removeVolumes})
	return nil
}

func (f *fakeEngine) RunAttached(_ context.Context, spec *engine.ContainerSpec) (int, error) {
	f.runCalled = true
	f.runSpec = spec
	if f.runErr != nil {
		return -1, f.runErr
	}
	return f.runExit, nil
}

func (f *fakeEngine) ListContainers(_ context.Context, all bool) ([]*engine.ContainerInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if all {
		return append(append([]*engine.ContainerInfo{}, f.running...), f.stopped...), nil
	}
	return f.running, nil
}

func (f *fakeEngine) InspectContainer(_ context.Context, id string) (*engine.ContainerInfo, error) {
	if err := f.inspectErr[id]; err != nil {
		return nil, err
	}
	info, ok := f.infos[id]
	if !ok {
		return nil, fmt.Errorf("no such container: %s", id)
	}
	return info, nil
}

func (f *fakeEngine) PullImage(_ context.Context, imageRef string) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	f.pulled = append(f.pulled, imageRef)
	f.localImages[imageRef] = true
	return nil
}

func (f *fakeEngine) ImageExists(_ context.Context, imageRef string) (bool, error) {
	if f.listImgErr != nil {
		return false, f.listImgErr
	}
	return f.localImages[engine.NormalizeImageRef(imageRef)], nil
}

func (f *fakeEngine) ExecInteractive(_ context.Context, containerID string, cmd []string) (int, error) {
	if f.execErr != nil {
		return -1, f.execErr
	}
	f.execCalls = append(f.execCalls, execCall{containerID: containerID, cmd: cmd})
	return f.execExit, nil
}

func (f *fakeEngine) GetContainerPort(_ context.Context, containerID string, internalPort int) (int, error) {
	if bindings, ok := f.ports[containerID]; ok {
		if hostPort, ok := bindings[internalPort]; ok {
			return hostPort, nil
		}
	}
	return 0, fmt.Errorf("port %d not mapped for container %s", internalPort, containerID)
}

func (f *fakeEngine) ListNetworks(context.Context) ([]*engine.NetworkInfo, error) {
	return f.networks, nil
}

func (f *fakeEngine) RemoveNetwork(_ context.Context, networkID string) error {
	f.removedNetworks = append(f.removedNetworks, networkID)
	return nil
}

func (f *fakeEngine) Ping(context.Context) error { return nil }

// addRunning registers a running container with a configured hostname.
func (f *fakeEngine) addRunning(id, hostname string) {
	info := &engine.ContainerInfo{
		ID:       id,
		Hostname: hostname,
		Status:   "running",
	}
	f.running = append(f.running, info)
	f.infos[id] = info
}

// fakeResolver satisfies ImageResolver without touching the network.
type fakeResolver struct {
	image  string
	status registry.Status
}

func (r *fakeResolver) ControllerImage(_ context.Context, override string) (string, registry.Status) {
	if override != "" {
		return override, registry.StatusSkipped
	}
	return r.image, r.status
}
