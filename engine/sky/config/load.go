package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// ErrUnknownField is returned when a configuration document contains a field the Config does not have.
var ErrUnknownField = errors.New("config: unknown field")

// Load decodes a JSON document on top of Default and validates the result.
// Layer and body arrays in the document replace the defaults entirely: entries start from zero
// values, not from the default layer or body in the same slot.
// Recovered fields are logged and returned.
//
// Parameters:
//   - r: the JSON document
//
// Returns:
//   - Config: the decoded and validated configuration
//   - []Warning: the fields Validate recovered
//   - error: an error if the document is not valid JSON or has unknown fields
func Load(r io.Reader) (Config, []Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, nil, fmt.Errorf("failed to read sky config: %w", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Config{}, nil, fmt.Errorf("failed to decode sky config: %w", err)
	}

	cfg := Default()
	if _, ok := keys["layers"]; ok {
		cfg.Layers = [MaxLayers]AtmosphereLayer{}
	}
	if _, ok := keys["bodies"]; ok {
		cfg.Bodies = [MaxBodies]CelestialBody{}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return Config{}, nil, fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return Config{}, nil, fmt.Errorf("failed to decode sky config: %w", err)
	}
	warnings := cfg.Validate()
	for _, w := range warnings {
		log.Printf("[SkyConfig] %s", w)
	}
	return cfg, warnings, nil
}

// LoadFile reads and decodes the JSON configuration at path.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the decoded and validated configuration
//   - []Warning: the fields Validate recovered
//   - error: an error if the file cannot be read or decoded
func LoadFile(path string) (Config, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("failed to open sky config: %w", err)
	}
	defer f.Close()
	return Load(f)
}
