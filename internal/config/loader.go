package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/visamcp"
	projectConfigDir = ".visamcp"
	configFileName   = "config.yaml"
)

// Load builds the visamcp configuration by layering default, user, project,
// and environment settings. Environment variables always win.
func Load() (Config, error) {
	// 1. Start with the default configuration
	cfg := DefaultConfig()

	// 2. Overlay the user-specific configuration, if present
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional; record the problem and carry on.
		fmt.Fprintf(os.Stderr, "Warning: could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userCfg, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			cfg = mergeConfigs(cfg, userCfg)
		}
	}

	// 3. Overlay the project-specific configuration, if present
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectCfg, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			cfg = mergeConfigs(cfg, projectCfg)
		}
	}

	// 4. Environment variables override everything
	applyEnvOverrides(&cfg)

	return cfg, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Only fields that
// are set in the overlay replace the base values.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.UserID != "" {
		merged.UserID = overlay.UserID
	}
	if overlay.Password != "" {
		merged.Password = overlay.Password
	}
	if overlay.CertPath != "" {
		merged.CertPath = overlay.CertPath
	}
	if overlay.KeyPath != "" {
		merged.KeyPath = overlay.KeyPath
	}
	if overlay.CAPath != "" {
		merged.CAPath = overlay.CAPath
	}
	if overlay.Environment != "" {
		merged.Environment = overlay.Environment
	}
	if overlay.BaseURL != "" {
		merged.BaseURL = overlay.BaseURL
	}
	if overlay.Server.Transport != "" {
		merged.Server.Transport = overlay.Server.Transport
	}
	if overlay.Server.Host != "" {
		merged.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}

	return merged
}

// applyEnvOverrides applies VISA_* environment variables on top of the
// file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VISA_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("VISA_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("VISA_CERT_PATH"); v != "" {
		cfg.CertPath = v
	}
	if v := os.Getenv("VISA_KEY_PATH"); v != "" {
		cfg.KeyPath = v
	}
	if v := os.Getenv("VISA_CA_PATH"); v != "" {
		cfg.CAPath = v
	}
	if v := os.Getenv("VISA_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("VISA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("VISAMCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("VISAMCP_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("VISAMCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// GetUserConfigDir returns the user configuration directory path.
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
