package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// LoadTOML loads .dsrefs.toml from projectRoot. It returns nil, nil when the
// file does not exist.
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, TOMLFileName)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", TOMLFileName, err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, projectRoot)
	return cfg, nil
}

// parseTOML decodes onto the defaults so absent keys keep their default value.
func parseTOML(content []byte) (*Config, error) {
	cfg := Default("")
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return cfg, nil
}
