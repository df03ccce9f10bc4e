// internal/config/config.go
//
// Game settings loading.
//
// Initialization behavior (Init):
//   1. If MEMORY_SETTINGS_FILE is set, that YAML file is laid over the
//      embedded defaults (keys it omits keep their default value).
//   2. Otherwise the embedded assets/settings.yaml is used as-is.
//
// Environment variables:
//   MEMORY_SETTINGS_FILE=/path/to/settings.yaml
//
// Constraints:
//   • The result must pass game.Settings.Validate.
//   • Initialization is run once (sync.Once).

package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/memory/assets"
	"github.com/robalobadob/memory/internal/game"
)

var (
	initOnce sync.Once
	current  game.Settings
	initErr  error
)

// Init loads settings exactly once.
func Init() error {
	initOnce.Do(func() {
		current, initErr = Load(os.Getenv("MEMORY_SETTINGS_FILE"))
	})
	return initErr
}

// Settings returns the settings loaded by Init, or the built-in defaults
// when Init has not succeeded.
func Settings() game.Settings {
	if err := Init(); err != nil {
		return game.DefaultSettings()
	}
	return current
}

// Load builds settings from the embedded defaults plus the optional file at
// path (empty path means defaults only).
func Load(path string) (game.Settings, error) {
	base, err := Embedded()
	if err != nil {
		return game.Settings{}, err
	}
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return game.Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	return Parse(data, base)
}

// Embedded parses the settings.yaml compiled into the binary.
func Embedded() (game.Settings, error) {
	data, err := assets.DefaultSettings()
	if err != nil {
		return game.Settings{}, fmt.Errorf("read embedded settings: %w", err)
	}
	return Parse(data, game.DefaultSettings())
}

// Parse lays the YAML document data over base and validates the result.
func Parse(data []byte, base game.Settings) (game.Settings, error) {
	s := base
	s.Symbols = append([]string(nil), base.Symbols...)
	if err := yaml.Unmarshal(data, &s); err != nil {
		return game.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return game.Settings{}, err
	}
	return s, nil
}
