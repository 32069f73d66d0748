// Package config holds the persisted commit settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhubert/checkin/paths"
)

// Config holds the two user-facing commit settings.
type Config struct {
	// OfferMoveOnPartialCommit offers to move the default list's remaining
	// changes into another list after a partial commit of the default list.
	OfferMoveOnPartialCommit bool `json:"offer_move_on_partial_commit"`

	// MoveToFailedList controls the move-to-failed-changelist prompt.
	MoveToFailedList Confirmation `json:"move_to_failed_list_confirmation"`

	mu       sync.RWMutex
	filePath string
}

// Default returns a config with default values and no backing file.
func Default() *Config {
	return &Config{
		OfferMoveOnPartialCommit: true,
		MoveToFailedList:         AskEachTime,
	}
}

// Load reads the config from the default location, or returns defaults if
// the file does not exist.
func Load() (*Config, error) {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from path, or returns defaults bound to path
// if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.MoveToFailedList.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidConfirmation, c.MoveToFailedList)
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filePath == "" {
		return fmt.Errorf("config has no file path")
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.filePath, data, 0644)
}

// SetFilePath sets the config file path (for testing).
func (c *Config) SetFilePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filePath = path
}

// FilePath returns the backing file path.
func (c *Config) FilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// GetOfferMoveOnPartialCommit returns whether partial default-list commits
// offer to move the remaining changes.
func (c *Config) GetOfferMoveOnPartialCommit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.OfferMoveOnPartialCommit
}

// SetOfferMoveOnPartialCommit sets the partial-commit move offer.
func (c *Config) SetOfferMoveOnPartialCommit(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OfferMoveOnPartialCommit = enabled
}

// GetMoveToFailedList returns the failed-list confirmation setting.
func (c *Config) GetMoveToFailedList() Confirmation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MoveToFailedList
}

// SetMoveToFailedList sets the failed-list confirmation setting.
func (c *Config) SetMoveToFailedList(v Confirmation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MoveToFailedList = v
}

// replace copies the persisted fields of other into c.
func (c *Config) replace(other *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OfferMoveOnPartialCommit = other.OfferMoveOnPartialCommit
	c.MoveToFailedList = other.MoveToFailedList
}
