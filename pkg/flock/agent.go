package flock

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// GroupID is the discrete category tag of a boid. Boids only align with and
// seek the center of boids sharing their group; it is rendered as a color.
type GroupID int

// Agent is one boid: position, velocity and group tag. Agents live for the
// whole run; the Store owns them and only the tick integration mutates them.
type Agent struct {
	Pos   geometry.Vector2D
	Vel   geometry.Vector2D
	Group GroupID
}

// Store is the flat arena holding every agent. The spatial grid and the rule
// evaluator refer to agents by index into this slice, never by pointer, so
// rebuilding the index allocates nothing per agent.
type Store struct {
	agents []Agent
}

// NewStore spawns cfg.NumBoids agents with randomized state drawn from rng:
// positions inside the wall margins, headings uniform on the circle at the
// midpoint of the speed bounds, groups assigned round-robin.
func NewStore(cfg *Config, rng *rand.Rand) *Store {
	agents := make([]Agent, cfg.NumBoids)
	cruise := (cfg.MinSpeed + cfg.MaxSpeed) / 2
	for i := range agents {
		agents[i] = Agent{
			Pos: geometry.Vector2D{
				X: cfg.Margin + rng.Float64()*(cfg.ScreenWidth-2*cfg.Margin),
				Y: cfg.Margin + rng.Float64()*(cfg.ScreenHeight-2*cfg.Margin),
			},
			Vel:   geometry.NewVectorPolar(cruise, rng.Float64()*2*math.Pi),
			Group: GroupID(i % cfg.NumGroups),
		}
	}
	return &Store{agents: agents}
}

// Len returns the number of agents. Fixed for the lifetime of the run.
func (s *Store) Len() int {
	return len(s.agents)
}

// At returns the agent at index i for in-place mutation by the integrator.
func (s *Store) At(i int) *Agent {
	return &s.agents[i]
}
