package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration: the plate description,
// the lighting programs and their well assignments, and the host-side
// monitor settings. On real hardware the program tables are generated ahead
// of time and baked into the firmware image; host tools compile them from
// this file instead (see Compile).
type Config struct {
	Plate       Plate        `yaml:"plate"`
	Serial      Serial       `yaml:"serial"`
	Mock        Mock         `yaml:"mock"`
	Programs    []Program    `yaml:"programs"`
	Default     string       `yaml:"default_program"`
	Assignments []Assignment `yaml:"assignments"`
}

// Plate describes the physical plate build.
type Plate struct {
	Colors     int  `yaml:"colors"`     // 1, 2 or 3
	Correction bool `yaml:"correction"` // apply per-channel intensity correction
	// Factors holds per-channel correction fractions in [0, 1], indexed
	// by physical channel. Channels beyond the list default to 1.0.
	Factors []float64 `yaml:"correction_factors,omitempty"`
}

// Serial contains serial port configuration for the plate's diagnostic
// channel.
type Serial struct {
	Port string `yaml:"port"`
}

// Mock contains simulated-plate configuration.
type Mock struct {
	TickInterval time.Duration `yaml:"tick_interval"` // wall time between simulated ticks
	Speed        float64       `yaml:"speed"`         // simulated ms per wall-clock ms
}

// Step is one timed phase of a program. Zero pulse halves mean "not
// pulsed, always on".
type Step struct {
	Duration  time.Duration `yaml:"duration"`
	PulseOn   time.Duration `yaml:"pulse_on"`
	PulseOff  time.Duration `yaml:"pulse_off"`
	Intensity uint16        `yaml:"intensity"` // 0-4095
}

// Program is a named, ordered sequence of steps.
type Program struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Assignment binds one (well, color) output to a program by name. Outputs
// without an assignment run the default program.
type Assignment struct {
	Well    int    `yaml:"well"` // 0-95
	Color   int    `yaml:"color"`
	Program string `yaml:"program"`
}

// Default returns a default configuration with sensible values: a 3-color
// plate running a gentle demo program on every output.
func Default() *Config {
	return &Config{
		Plate: Plate{
			Colors:     3,
			Correction: false,
		},
		Serial: Serial{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
		},
		Mock: Mock{
			TickInterval: 100 * time.Millisecond,
			Speed:        1.0,
		},
		Programs: []Program{
			{
				Name: "demo",
				Steps: []Step{
					{Duration: time.Minute, PulseOn: time.Second, PulseOff: time.Second, Intensity: 2000},
					{Duration: time.Minute, Intensity: 500},
				},
			},
		},
		Default: "demo",
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if
// missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Plate.Colors == 0 {
		c.Plate.Colors = def.Plate.Colors
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.Mock.TickInterval == 0 {
		c.Mock.TickInterval = def.Mock.TickInterval
	}
	if c.Mock.Speed == 0 {
		c.Mock.Speed = def.Mock.Speed
	}

	if len(c.Programs) == 0 {
		c.Programs = def.Programs
		if c.Default == "" {
			c.Default = def.Default
		}
	}
}
