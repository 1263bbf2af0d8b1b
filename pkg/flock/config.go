package flock

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Config holds every tunable of the simulation. It is a plain in-memory
// structure; the JSON form exists only for loading it from a file.
type Config struct {
	// World dimensions (pixels)
	ScreenWidth  float64 `json:"screenWidth"`
	ScreenHeight float64 `json:"screenHeight"`

	// Population
	NumBoids  int `json:"numBoids"`
	NumGroups int `json:"numGroups"` // boids only flock with their own group

	// Speed bounds, enforced after every integration step
	MaxSpeed float64 `json:"maxSpeed"`
	MinSpeed float64 `json:"minSpeed"`

	// Rule weights
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`
	EvasionWeight    float64 `json:"evasionWeight"` // wall avoidance push
	TargetWeight     float64 `json:"targetWeight"`
	LeaderWeight     float64 `json:"leaderWeight"`

	// Distance from a wall below which evasion kicks in
	Margin float64 `json:"margin"`

	// Interaction radii. Separation reacts inside SteeringDistance,
	// alignment/cohesion inside InfluenceDistance. Steering must stay
	// strictly below influence: close threats before flockmates.
	SteeringDistance  float64 `json:"steeringDistance"`
	InfluenceDistance float64 `json:"influenceDistance"`

	// Workers > 1 fans the rule evaluation phase over that many goroutines.
	// 0 or 1 keeps the tick fully sequential.
	Workers int `json:"workers"`

	// Seed drives all randomness (spawn placement, leader pick) so runs
	// are reproducible.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the parameters of the reference simulation.
func DefaultConfig() *Config {
	return &Config{
		ScreenWidth:       1400,
		ScreenHeight:      1000,
		NumBoids:          800,
		NumGroups:         7,
		MaxSpeed:          6.0,
		MinSpeed:          5.0,
		SeparationWeight:  0.1,
		AlignmentWeight:   0.05,
		CohesionWeight:    0.005,
		EvasionWeight:     1.3,
		TargetWeight:      0.0005,
		LeaderWeight:      0.0005,
		Margin:            140, // screenWidth / 10
		SteeringDistance:  25,
		InfluenceDistance: 75,
		Workers:           0,
		Seed:              1,
	}
}

// Validate fails fast on configurations the simulation must never start with.
func (c *Config) Validate() error {
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("screen dimensions must be positive, got %gx%g", c.ScreenWidth, c.ScreenHeight)
	}
	if c.NumBoids <= 0 {
		return fmt.Errorf("numBoids must be positive, got %d", c.NumBoids)
	}
	if c.NumGroups <= 0 {
		return fmt.Errorf("numGroups must be positive, got %d", c.NumGroups)
	}
	if c.MinSpeed < 0 || c.MaxSpeed <= 0 {
		return fmt.Errorf("speed bounds must be positive, got min=%g max=%g", c.MinSpeed, c.MaxSpeed)
	}
	if c.MinSpeed > c.MaxSpeed {
		return fmt.Errorf("minSpeed %g exceeds maxSpeed %g", c.MinSpeed, c.MaxSpeed)
	}
	if c.SteeringDistance <= 0 || c.InfluenceDistance <= 0 {
		return fmt.Errorf("interaction radii must be positive, got steering=%g influence=%g",
			c.SteeringDistance, c.InfluenceDistance)
	}
	if c.SteeringDistance >= c.InfluenceDistance {
		return fmt.Errorf("steeringDistance %g must be strictly less than influenceDistance %g",
			c.SteeringDistance, c.InfluenceDistance)
	}
	if c.Margin <= 0 {
		return fmt.Errorf("margin must be positive, got %g", c.Margin)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against the
// schema, then against the simulation's own invariants.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Start from defaults so fields absent from the file keep sane values.
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
