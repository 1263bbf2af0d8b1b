package flock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig must validate, got: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"min speed above max", func(c *Config) { c.MinSpeed = 10; c.MaxSpeed = 5 }, "minSpeed"},
		{"steering not below influence", func(c *Config) { c.SteeringDistance = c.InfluenceDistance }, "strictly less"},
		{"steering above influence", func(c *Config) { c.SteeringDistance = c.InfluenceDistance + 1 }, "strictly less"},
		{"zero width", func(c *Config) { c.ScreenWidth = 0 }, "dimensions"},
		{"negative height", func(c *Config) { c.ScreenHeight = -100 }, "dimensions"},
		{"zero boids", func(c *Config) { c.NumBoids = 0 }, "numBoids"},
		{"zero groups", func(c *Config) { c.NumGroups = 0 }, "numGroups"},
		{"zero margin", func(c *Config) { c.Margin = 0 }, "margin"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewWorldRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 0
	if _, err := NewWorld(cfg); err == nil {
		t.Fatal("NewWorld must refuse to start with an invalid config")
	}
}

// writeFile is a small fixture helper.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "numBoids": { "type": "integer", "minimum": 1 },
    "maxSpeed": { "type": "number" },
    "minSpeed": { "type": "number" }
  },
  "additionalProperties": true
}`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json", testSchema)

	t.Run("valid file over defaults", func(t *testing.T) {
		file := writeFile(t, dir, "ok.json", `{"numBoids": 42, "maxSpeed": 8}`)
		cfg, err := LoadConfig(file, schema)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.NumBoids != 42 {
			t.Errorf("NumBoids = %d; want 42", cfg.NumBoids)
		}
		if cfg.MaxSpeed != 8 {
			t.Errorf("MaxSpeed = %g; want 8", cfg.MaxSpeed)
		}
		// Unspecified fields keep their defaults.
		if cfg.InfluenceDistance != DefaultConfig().InfluenceDistance {
			t.Errorf("InfluenceDistance = %g; want default", cfg.InfluenceDistance)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		file := writeFile(t, dir, "bad_schema.json", `{"numBoids": 0}`)
		if _, err := LoadConfig(file, schema); err == nil {
			t.Fatal("expected schema validation error")
		}
	})

	t.Run("engine invariant violation", func(t *testing.T) {
		// Passes the schema but breaks minSpeed <= maxSpeed.
		file := writeFile(t, dir, "bad_speeds.json", `{"minSpeed": 9, "maxSpeed": 3}`)
		if _, err := LoadConfig(file, schema); err == nil {
			t.Fatal("expected invariant validation error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(dir, "nope.json"), schema); err == nil {
			t.Fatal("expected read error")
		}
	})
}
