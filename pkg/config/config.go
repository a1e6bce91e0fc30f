// Package config handles workspace configuration for camera-mapper.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (camera-mapper.yaml).
// Command-line flags override any value set here.
type Config struct {
	// Device selection
	Devices         []string `yaml:"devices"`         // Device IPs or serials
	HardwareVersion string   `yaml:"hardwareVersion"` // Calibration override key

	// Mapping settings
	Calibration string `yaml:"calibration"` // Calibration YAML path
	Output      string `yaml:"output"`      // Output directory for maps
	Timeout     int    `yaml:"timeout"`     // Per-device limit in seconds
	Retries     int    `yaml:"retries"`     // Attempts per control
	SettleMS    int    `yaml:"settleMs"`    // Tap-to-screenshot delay

	// Tooling
	Tesseract string `yaml:"tesseract"` // Tesseract binary path
	LogFile   string `yaml:"logFile"`   // Log destination
	Verbose   bool   `yaml:"verbose"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
