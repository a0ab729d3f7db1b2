package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYaml(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name+".yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const baseYaml = `app:
  profile: "local"
  log-level: "debug"
server:
  address: "127.0.0.1"
  port: "7001"
raft:
  node-id: 1
  raft-port: "7101"
  peers:
    1: "127.0.0.1:7101"
  election-timeout-base: 150
  election-timeout-delta: 150
  heartbeat-interval: 60
  rpc-timeout: 100
`

func TestLoadBaseAndProfile(t *testing.T) {
	baseDir, profileDir := t.TempDir(), t.TempDir()
	writeYaml(t, baseDir, "application", baseYaml)
	writeYaml(t, profileDir, "application-local", "server:\n  port: \"9001\"\n")

	cfg, err := Load(baseDir, profileDir)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.App.Profile)
	assert.Equal(t, "127.0.0.1:9001", cfg.Server.ListenAddr(), "profile overrides the base port")
	assert.Equal(t, uint64(1), cfg.Raft.NodeID)
	assert.Equal(t, 150*time.Millisecond, cfg.Raft.ElectionBase())
	assert.Equal(t, 60*time.Millisecond, cfg.Raft.Heartbeat())
	assert.False(t, cfg.Raft.MultiNode())
}

func TestLoadMissingProfile(t *testing.T) {
	baseDir, profileDir := t.TempDir(), t.TempDir()
	writeYaml(t, baseDir, "application", "server:\n  port: \"7001\"\n")

	_, err := Load(baseDir, profileDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}

func TestLoadMissingBaseFile(t *testing.T) {
	_, err := Load(t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application.yml not found")
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("JSONVAULT_PORT", "7501")

	baseDir, profileDir := t.TempDir(), t.TempDir()
	yaml := `app:
  profile: "local"
server:
  address: "127.0.0.1"
  port: "${JSONVAULT_PORT}"
raft:
  node-id: 1
  peers:
    1: "127.0.0.1:7101"
`
	writeYaml(t, baseDir, "application", yaml)
	writeYaml(t, profileDir, "application-local", "")

	cfg, err := Load(baseDir, profileDir)
	require.NoError(t, err)
	assert.Equal(t, "7501", cfg.Server.Port)
}

func TestLoadRejectsUnsetEnvVariable(t *testing.T) {
	baseDir, profileDir := t.TempDir(), t.TempDir()
	writeYaml(t, baseDir, "application", "server:\n  port: \"${JSONVAULT_UNSET_VAR}\"\n")

	_, err := Load(baseDir, profileDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSONVAULT_UNSET_VAR")
}

func TestLoadValidatesPeerList(t *testing.T) {
	baseDir, profileDir := t.TempDir(), t.TempDir()
	yaml := `app:
  profile: "local"
server:
  port: "7001"
raft:
  node-id: 2
  peers:
    1: "127.0.0.1:7101"
`
	writeYaml(t, baseDir, "application", yaml)
	writeYaml(t, profileDir, "application-local", "")

	_, err := Load(baseDir, profileDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peers")
}
