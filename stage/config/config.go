package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"probestage/stage"
)

// LoadConfig parses a JSON configuration string and returns a StageConfig
func LoadConfig(jsonData []byte) (*stage.StageConfig, error) {
	var config stage.StageConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*stage.StageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *stage.StageConfig) {
	if config.JogFeedRate == 0 {
		config.JogFeedRate = 5.0 // 5 mm/s
	}

	// Axial along motor-3, lateral motor-1, elevational motor-2
	if config.Probe.Mapping == (stage.AxisMapping{}) {
		config.Probe.Mapping = stage.AxisMapping{Ax: stage.AxisMotor3, Lat: stage.AxisMotor1, Elev: stage.AxisMotor2}
	}

	if config.Serial.Baud == 0 {
		config.Serial.Baud = 115200
	}
	if config.Serial.ReadTimeoutMS == 0 {
		config.Serial.ReadTimeoutMS = 2000
	}

	if config.Axes == nil {
		config.Axes = make(map[string]stage.AxisConfig)
	}
	for _, name := range []string{"x", "y", "z"} {
		axis := config.Axes[name]
		if axis.StepsPerMM == 0 {
			axis.StepsPerMM = 1600.0 // 1/16 microstepping on a 2 mm lead screw
		}
		if axis.MaxVelocity == 0 {
			axis.MaxVelocity = 10.0
		}
		config.Axes[name] = axis
	}
}

// Validate checks that a configuration describes a usable stage.
// All problems are reported together.
func Validate(config *stage.StageConfig) error {
	var problems []string

	if config.Limits.XLen <= 0 || config.Limits.YLen <= 0 || config.Limits.ZLen <= 0 {
		problems = append(problems, fmt.Sprintf("stage limits must be positive, got %+v", config.Limits))
	}

	for _, name := range slices.Sorted(maps.Keys(config.Axes)) {
		axis := config.Axes[name]
		if axis.StepsPerMM <= 0 {
			problems = append(problems, fmt.Sprintf("axis %s: steps per mm must be positive, got %g", name, axis.StepsPerMM))
		}
		if axis.MaxVelocity <= 0 {
			problems = append(problems, fmt.Sprintf("axis %s: max velocity must be positive, got %g", name, axis.MaxVelocity))
		}
	}

	m := config.Probe.Mapping
	if !m.Ax.Valid() || !m.Lat.Valid() || !m.Elev.Valid() {
		problems = append(problems, fmt.Sprintf("probe mapping labels must be 1, 2 or 3, got %s", m))
	} else if !m.Unique() {
		problems = append(problems, fmt.Sprintf("probe mapping labels must be distinct, got %s", m))
	}

	if config.JogFeedRate <= 0 {
		problems = append(problems, fmt.Sprintf("jog feed rate must be positive, got %g", config.JogFeedRate))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// DefaultStageConfig returns a default configuration for a 3-axis probe stage
func DefaultStageConfig() *stage.StageConfig {
	return &stage.StageConfig{
		Limits: stage.StageLimits{
			XLen: 50.0,
			YLen: 50.0,
			ZLen: 50.0,
		},
		Axes: map[string]stage.AxisConfig{
			"x": {
				StepsPerMM:  1600.0,
				MaxVelocity: 10.0,
			},
			"y": {
				StepsPerMM:  1600.0,
				MaxVelocity: 10.0,
			},
			"z": {
				StepsPerMM:  1600.0,
				MaxVelocity: 5.0,
			},
		},
		Probe: stage.ProbeConfig{
			Mapping: stage.AxisMapping{Ax: stage.AxisMotor3, Lat: stage.AxisMotor1, Elev: stage.AxisMotor2},
		},
		Serial: stage.SerialConfig{
			Baud:          115200,
			ReadTimeoutMS: 2000,
		},
		JogFeedRate: 5.0,
	}
}
