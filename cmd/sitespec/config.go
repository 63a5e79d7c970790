package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds the contents of .sitespec/config.yaml.
type ProjectConfig struct {
	Version    string `yaml:"version"`
	TokensPath string `yaml:"tokens_path"`
	LinksPath  string `yaml:"links_path"`
}

// loadProjectConfig reads .sitespec/config.yaml under root.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ".sitespec", "config.yaml"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveTokensPath returns the token source path, applying the fallback
// chain:
//  1. Explicit --tokens flag value (non-empty override)
//  2. tokens_path from .sitespec/config.yaml
//  3. Default: site/tokens.yaml under the root
func resolveTokensPath(root, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg, err := loadProjectConfig(root); err == nil && cfg != nil && cfg.TokensPath != "" {
		return filepath.Join(root, cfg.TokensPath)
	}
	return filepath.Join(root, "site", "tokens.yaml")
}

// resolveLinksPath is the same chain for the link graph source, defaulting
// to site/links.yaml under the root.
func resolveLinksPath(root, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg, err := loadProjectConfig(root); err == nil && cfg != nil && cfg.LinksPath != "" {
		return filepath.Join(root, cfg.LinksPath)
	}
	return filepath.Join(root, "site", "links.yaml")
}

// themeStatePath is where the persisted theme selection lives.
func themeStatePath(root string) string {
	return filepath.Join(root, ".sitespec", "theme.json")
}
