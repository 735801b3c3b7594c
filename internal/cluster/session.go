package cluster

import (
	"context"

	"github.com/clusterdock/clusterdock/internal/config"
	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

// The session logs in over ssh addressed at the container's own
// loopback interface rather than exec'ing a shell directly: the login
// path sources profile and environment files, which a bare exec skips.
var sshCommand = []string{
	"ssh",
	"-o", "StrictHostKeyChecking=no",
	"-o", "UserKnownHostsFile=/dev/null",
	"-q",
	"root@localhost",
}

// Session runs the node-access pipeline. It shares registry resolution
// and image sync with the launch pipeline, then resolves the node and
// opens an interactive session into it.
type Session struct {
	engine   engine.Engine
	cfg      *config.Config
	resolver ImageResolver
}

// NewSession wires a session pipeline against an engine, config, and
// image resolver.
func NewSession(eng engine.Engine, cfg *config.Config, resolver ImageResolver) *Session {
	return &Session{
		engine:   eng,
		cfg:      cfg,
		resolver: resolver,
	}
}

// Open resolves hostname to a running container and opens an
// interactive session inside it. Trailing command tokens are passed as
// the remote command; without them an interactive shell results. The
// session's exit status is returned.
func (s *Session) Open(ctx context.Context, hostname string, command []string) (int, error) {
	imageRef, status := s.resolver.ControllerImage(ctx, s.cfg.Image)
	logger.Debug("Controller image resolved", "image", imageRef, "resolution", status.String())
	syncImage(ctx, s.engine, imageRef, s.cfg.Pull)

	node, err := ResolveNode(ctx, s.engine, hostname)
	if err != nil {
		return -1, err
	}

	cmd := make([]string, 0, len(sshCommand)+len(command))
	cmd = append(cmd, sshCommand...)
	cmd = append(cmd, command...)

	logger.Debug("Opening session", "hostname", hostname, "container", shortID(node.ContainerID))
	return s.engine.ExecInteractive(ctx, node.ContainerID, cmd)
}
