// Package app wires the configuration, engine client, and registry
// resolver handed to every command.
package app

import (
	"github.com/clusterdock/clusterdock/internal/config"
	"github.com/clusterdock/clusterdock/internal/engine"
	"github.com/clusterdock/clusterdock/internal/registry"
	"github.com/clusterdock/clusterdock/pkg/logger"
)

// App holds the shared dependencies of the CLI commands.
type App struct {
	Config   *config.Config
	Engine   engine.Engine
	Resolver *registry.Resolver
}

// New loads configuration, applies the log level, and connects to the
// local container engine.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().SetLogLevel(cfg.LogLevel)

	eng, err := engine.NewDockerEngine()
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Engine:   eng,
		Resolver: registry.NewResolver(cfg.ConstantsURL),
	}, nil
}
