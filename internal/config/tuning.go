// Package config loads optional JSON tuning for the geometry tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig holds the tunable parameters for the footprint tools.
// Fields omitted from the JSON file retain their defaults, so partial
// configs are safe.
type TuningConfig struct {
	// Reference data
	DatabasePath *string `json:"database_path,omitempty"`

	// Offset-field generation
	OffsetRMS       *float64 `json:"offset_rms,omitempty"`
	OffsetExponent  *float64 `json:"offset_exponent,omitempty"`
	OffsetGridSize  *int     `json:"offset_grid_size,omitempty"`
	OffsetSmoothing *float64 `json:"offset_smoothing,omitempty"`

	// Footprint queries: overrides the radius derived from the positioner
	// table when set.
	TileRadiusDeg *float64 `json:"tile_radius_deg,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset; the Get*
// methods supply defaults.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.OffsetRMS != nil && *c.OffsetRMS <= 0 {
		return fmt.Errorf("offset_rms must be positive, got %f", *c.OffsetRMS)
	}
	if c.OffsetGridSize != nil && *c.OffsetGridSize < 2 {
		return fmt.Errorf("offset_grid_size must be at least 2, got %d", *c.OffsetGridSize)
	}
	if c.OffsetSmoothing != nil && *c.OffsetSmoothing < 0 {
		return fmt.Errorf("offset_smoothing must be non-negative, got %f", *c.OffsetSmoothing)
	}
	if c.TileRadiusDeg != nil && *c.TileRadiusDeg <= 0 {
		return fmt.Errorf("tile_radius_deg must be positive, got %f", *c.TileRadiusDeg)
	}
	return nil
}

// GetDatabasePath returns the configured reference database path, or ""
// when the SKYMODEL_DB environment variable should be used instead.
func (c *TuningConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return ""
	}
	return *c.DatabasePath
}

// GetOffsetRMS returns the offset_rms value or the default.
func (c *TuningConfig) GetOffsetRMS() float64 {
	if c.OffsetRMS == nil {
		return 1.0
	}
	return *c.OffsetRMS
}

// GetOffsetExponent returns the offset_exponent value or the default.
func (c *TuningConfig) GetOffsetExponent() float64 {
	if c.OffsetExponent == nil {
		return -1.0
	}
	return *c.OffsetExponent
}

// GetOffsetGridSize returns the offset_grid_size value or the default.
func (c *TuningConfig) GetOffsetGridSize() int {
	if c.OffsetGridSize == nil {
		return 256
	}
	return *c.OffsetGridSize
}

// GetOffsetSmoothing returns the offset_smoothing value or the default.
func (c *TuningConfig) GetOffsetSmoothing() float64 {
	if c.OffsetSmoothing == nil {
		return 0.05
	}
	return *c.OffsetSmoothing
}

// GetTileRadiusDeg returns the tile_radius_deg override, or 0 when the
// radius should come from the positioner table.
func (c *TuningConfig) GetTileRadiusDeg() float64 {
	if c.TileRadiusDeg == nil {
		return 0
	}
	return *c.TileRadiusDeg
}
