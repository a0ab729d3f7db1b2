// Package configuration loads the layered yaml configuration: a base
// application.yml selects a profile, and application-<profile>.yml
// overrides it field by field. ${VAR} references are expanded from the
// environment and missing variables are an error, not an empty string.
package configuration

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// Load reads the base configuration from baseDir and overlays the
// profile file from profileDir.
func Load(baseDir, profileDir string) (*Properties, error) {
	baseRaw, err := loadAndExpandYaml(baseDir, "application")
	if err != nil {
		return nil, fmt.Errorf("load base config: %w", err)
	}

	var cfg Properties
	if err := yaml.Unmarshal([]byte(baseRaw), &cfg); err != nil {
		return nil, fmt.Errorf("parse base config: %w", err)
	}

	if cfg.App.Profile == "" || profileDir == "" {
		return nil, errors.New("profile and profile dir are required")
	}
	slog.Info("profile selected", "profile", cfg.App.Profile)

	profileRaw, err := loadAndExpandYaml(profileDir, "application-"+cfg.App.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(profileRaw), &cfg); err != nil {
		return nil, fmt.Errorf("parse profile config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Properties) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Raft.NodeID == 0 {
		return errors.New("raft.node-id is required and must be nonzero")
	}
	if _, ok := cfg.Raft.Peers[cfg.Raft.NodeID]; !ok {
		return fmt.Errorf("raft.peers must include this node's id %d", cfg.Raft.NodeID)
	}
	return nil
}
