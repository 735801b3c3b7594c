// Package config builds the immutable launch configuration once at
// process entry. Components receive it by value and never read the
// process environment themselves.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConstantsURL is the well-known document holding registry
// coordinates (docker_registry_url, cloudera_namespace).
const DefaultConstantsURL = "https://raw.githubusercontent.com/clusterdock/clusterdock/master/clusterdock.cfg"

// DefaultConfigFile is searched in the working directory when no
// --config flag is given.
const DefaultConfigFile = "clusterdock.yaml"

// Config holds every input recognized by the launch and node-access
// pipelines.
type Config struct {
	// Image, when set, is used verbatim and skips registry resolution.
	Image string `yaml:"image"`

	// Pull controls the pull-if-missing policy for required images.
	Pull bool `yaml:"pull"`

	// TargetDir is an optional host directory bind-mounted into the
	// controller container.
	TargetDir string `yaml:"target_dir"`

	// TopologyImage is an optional image whose filesystem is staged
	// into the launch through an ephemeral donor container.
	TopologyImage string `yaml:"topology_image"`

	// Registry credentials forwarded to the controller environment.
	// Absent fields contribute no environment entries.
	RegistryInsecure bool   `yaml:"registry_insecure"`
	RegistryUsername string `yaml:"registry_username"`
	RegistryPassword string `yaml:"registry_password"`

	ConstantsURL string `yaml:"constants_url"`
	LogLevel     string `yaml:"log_level"`
}

// Load reads the optional YAML config file, then applies CLUSTERDOCK_*
// environment overrides. Environment wins over file, file over defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Pull:         true,
		ConstantsURL: DefaultConstantsURL,
		LogLevel:     "info",
	}

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; environment and defaults cover everything.
	default:
		return nil, fmt.Errorf("unable to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.ConstantsURL == "" {
		cfg.ConstantsURL = DefaultConstantsURL
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*dst = parsed
			}
		}
	}

	setString("CLUSTERDOCK_IMAGE", &cfg.Image)
	setBool("CLUSTERDOCK_PULL", &cfg.Pull)
	setString("CLUSTERDOCK_TARGET_DIR", &cfg.TargetDir)
	setString("CLUSTERDOCK_TOPOLOGY_IMAGE", &cfg.TopologyImage)
	setBool("CLUSTERDOCK_REGISTRY_INSECURE", &cfg.RegistryInsecure)
	setString("CLUSTERDOCK_REGISTRY_USERNAME", &cfg.RegistryUsername)
	setString("CLUSTERDOCK_REGISTRY_PASSWORD", &cfg.RegistryPassword)
	setString("CLUSTERDOCK_CONSTANTS_URL", &cfg.ConstantsURL)
	setString("CLUSTERDOCK_LOG_LEVEL", &cfg.LogLevel)
}
