package flock

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// NoLeader marks the leader slot as empty.
const NoLeader = -1

// Toggles is the global behavior state handed to the rule evaluator. It is a
// small immutable-per-tick value, not ambient state: the evaluator stays a
// pure function of agent, neighbors and toggles.
//
// Holding the leader as a single index (instead of a per-agent flag) makes
// "at most one leader" true by construction.
type Toggles struct {
	WallEvasion bool
	HasTarget   bool
	Target      geometry.Vector2D
	Leader      int // agent index, or NoLeader
}

// Steer computes the velocity delta for agent i this tick by summing the
// weighted contributions of every active rule. It mutates nothing.
//
// A single grid query at InfluenceDistance covers both radii: the config
// guarantees SteeringDistance < InfluenceDistance, and the grid cell width is
// at least InfluenceDistance, so no candidate is missed.
func Steer(i int, store *Store, grid *Grid, cfg *Config, tog Toggles) geometry.Vector2D {
	me := store.At(i)

	var (
		sep     geometry.Vector2D
		velSum  geometry.Vector2D
		posSum  geometry.Vector2D
		flockN  float64
		steerSq = cfg.SteeringDistance * cfg.SteeringDistance
	)

	for idx := range grid.Within(me.Pos, cfg.InfluenceDistance) {
		if idx == i {
			continue
		}
		other := store.At(idx)
		distSq := me.Pos.DistanceSquaredTo(other.Pos)

		// Separation reacts to every group, but only to close threats.
		if distSq < steerSq {
			sep = sep.Add(me.Pos.Sub(other.Pos))
		}

		// Alignment and cohesion only consider flockmates of the same group.
		if other.Group == me.Group {
			velSum = velSum.Add(other.Vel)
			posSum = posSum.Add(other.Pos)
			flockN++
		}
	}

	delta := sep.Mul(cfg.SeparationWeight)

	if flockN > 0 {
		avgVel := velSum.Mul(1 / flockN)
		avgPos := posSum.Mul(1 / flockN)
		delta = delta.Add(avgVel.Sub(me.Vel).Mul(cfg.AlignmentWeight))
		delta = delta.Add(avgPos.Sub(me.Pos).Mul(cfg.CohesionWeight))
	}

	if tog.WallEvasion {
		delta = delta.Add(evadeWalls(me.Pos, cfg))
	}

	if tog.HasTarget {
		delta = delta.Add(tog.Target.Sub(me.Pos).Mul(cfg.TargetWeight))
	}

	if tog.Leader != NoLeader && tog.Leader != i {
		leaderPos := store.At(tog.Leader).Pos
		delta = delta.Add(leaderPos.Sub(me.Pos).Mul(cfg.LeaderWeight))
	}

	return delta
}

// evadeWalls pushes away from every screen edge closer than Margin. The push
// ramps from zero at the margin boundary up to the full evasion weight at the
// wall, so boids turn harder the deeper they fly into the margin.
func evadeWalls(pos geometry.Vector2D, cfg *Config) geometry.Vector2D {
	var dir geometry.Vector2D
	dir.X += edgePush(pos.X, cfg)                   // left wall, push right
	dir.X -= edgePush(cfg.ScreenWidth-pos.X, cfg)   // right wall, push left
	dir.Y += edgePush(pos.Y, cfg)                   // top wall, push down
	dir.Y -= edgePush(cfg.ScreenHeight-pos.Y, cfg)  // bottom wall, push up
	return dir
}

// edgePush returns the evasion strength for a perpendicular wall distance d.
func edgePush(d float64, cfg *Config) float64 {
	if d >= cfg.Margin {
		return 0
	}
	if d < 0 {
		// Brief excursion past the wall: push at full strength.
		d = 0
	}
	return cfg.EvasionWeight * (cfg.Margin - d) / cfg.Margin
}
