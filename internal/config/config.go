package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the configuration file structure.
type Config struct {
	// TiffPath is the default directory searched for TIFF files when no
	// input is given on the command line.
	TiffPath string `json:"tiff_path"`
	// DefaultScale is applied to exported pages when no -scale flag is
	// given; zero means no rescaling.
	DefaultScale float64 `json:"default_scale"`
}

// Load loads configuration from the config.json file in the working
// directory. A missing file yields the zero config.
func Load() (*Config, error) {
	configPath := "config.json"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	if config.DefaultScale < 0 {
		return nil, fmt.Errorf("config: default_scale %v is negative", config.DefaultScale)
	}

	return &config, nil
}

// ResolveInputPath resolves the input path, using tiff_path from config
// when the input is a bare name.
func ResolveInputPath(inputPath string, config *Config) string {
	if filepath.IsAbs(inputPath) || strings.Contains(inputPath, string(filepath.Separator)) {
		return inputPath
	}

	if config != nil && config.TiffPath != "" {
		return filepath.Join(config.TiffPath, inputPath)
	}

	return inputPath
}
