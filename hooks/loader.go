package hooks

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const hooksFileName = "hooks.yaml"
const hooksDir = ".checkin"

// Config is the contents of .checkin/hooks.yaml.
type Config struct {
	Before       []HookConfig `yaml:"before,omitempty"`
	AfterSuccess []HookConfig `yaml:"after_success,omitempty"`
	AfterFailure []HookConfig `yaml:"after_failure,omitempty"`
}

// HookConfig defines a single shell hook.
type HookConfig struct {
	Run string `yaml:"run"`
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return c == nil || len(c.Before)+len(c.AfterSuccess)+len(c.AfterFailure) == 0
}

// Load reads and parses .checkin/hooks.yaml from the given repo path.
// Returns nil, nil if the file does not exist.
func Load(repoPath string) (*Config, error) {
	fp := filepath.Join(repoPath, hooksDir, hooksFileName)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	return &cfg, nil
}
