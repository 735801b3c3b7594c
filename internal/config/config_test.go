package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusterdock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit config path must exist")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Pull)
	assert.Equal(t, DefaultConstantsURL, cfg.ConstantsURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Image)
	assert.Empty(t, cfg.TopologyImage)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
image: myorg/controller:1.0
pull: false
target_dir: /home/user/data
topology_image: myorg/topo:1.0
registry_insecure: true
registry_username: admin
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myorg/controller:1.0", cfg.Image)
	assert.False(t, cfg.Pull)
	assert.Equal(t, "/home/user/data", cfg.TargetDir)
	assert.Equal(t, "myorg/topo:1.0", cfg.TopologyImage)
	assert.True(t, cfg.RegistryInsecure)
	assert.Equal(t, "admin", cfg.RegistryUsername)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset file keys keep their defaults.
	assert.Equal(t, DefaultConstantsURL, cfg.ConstantsURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
image: from-file/controller:1.0
pull: true
`)

	t.Setenv("CLUSTERDOCK_IMAGE", "from-env/controller:2.0")
	t.Setenv("CLUSTERDOCK_PULL", "false")
	t.Setenv("CLUSTERDOCK_TARGET_DIR", "/env/target")
	t.Setenv("CLUSTERDOCK_REGISTRY_PASSWORD", "hunter2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env/controller:2.0", cfg.Image)
	assert.False(t, cfg.Pull)
	assert.Equal(t, "/env/target", cfg.TargetDir)
	assert.Equal(t, "hunter2", cfg.RegistryPassword)
}

func TestLoad_InvalidBoolEnvKeepsPrevious(t *testing.T) {
	t.Setenv("CLUSTERDOCK_PULL", "not-a-bool")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Pull)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "image: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}
