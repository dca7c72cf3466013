// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: JSON configuration store with typed access helpers.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config stores configuration as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for one configuration section.
type Section map[string]interface{}

// Load reads the config file, creating it with defaults on first run.
// Missing keys are filled in from defaults so older files keep working
// after new settings appear.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := defaultConfig()
		if werr := write(path, cfg); werr != nil {
			return cfg, werr
		}
		return cfg, nil
	}
	if err != nil {
		return defaultConfig(), err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	mergeDefaults(cfg, defaultConfig())
	return cfg, nil
}

// Save writes the config back to disk.
func Save(cfg Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return write(path, cfg)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func mergeDefaults(cfg, defaults Config) {
	for key, dv := range defaults {
		ev, ok := cfg[key]
		if !ok {
			cfg[key] = dv
			continue
		}
		dsec, dok := asSection(dv)
		esec, eok := asSection(ev)
		if dok && eok {
			for k, v := range dsec {
				if _, ok := esec[k]; !ok {
					esec[k] = v
				}
			}
			cfg[key] = esec
		}
	}
}

func asSection(v interface{}) (Section, bool) {
	switch s := v.(type) {
	case Section:
		return s, true
	case map[string]interface{}:
		return Section(s), true
	}
	return nil, false
}

// GetSection returns the named section or nil if missing.
func (c Config) GetSection(name string) Section {
	if c == nil {
		return nil
	}
	if raw, ok := c[name]; ok {
		if s, ok := asSection(raw); ok {
			return s
		}
	}
	return nil
}

// GetString retrieves a string value from the config.
func (c Config) GetString(key, defaultValue string) string {
	if val, ok := c[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetInt retrieves an integer value from the config.
func (c Config) GetInt(key string, defaultValue int) int {
	if val, ok := c[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case string:
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from the config.
func (c Config) GetBool(key string, defaultValue bool) bool {
	if val, ok := c[key]; ok {
		switch v := val.(type) {
		case bool:
			return v
		case string:
			if parsed, err := strconv.ParseBool(v); err == nil {
				return parsed
			}
		}
	}
	return defaultValue
}
