package flock

import (
	"math/rand/v2"
	"sync"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// AgentState is a read-only view of one boid, for rendering and inspection.
type AgentState struct {
	Pos    geometry.Vector2D
	Vel    geometry.Vector2D
	Group  GroupID
	Leader bool
}

// command is a deferred state change. User interaction never touches the
// world directly: it queues a command that Tick applies at the next tick
// boundary, so a rule evaluation can never observe a half-updated toggle.
type command func(*World)

// World owns the whole simulation: the agent store, the spatial grid, the
// global toggles and the RNG. It is not safe for concurrent use; one
// goroutine drives it, matching the one-tick-at-a-time model.
type World struct {
	cfg     *Config
	store   *Store
	grid    *Grid
	rng     *rand.Rand
	tog     Toggles
	pending []command

	// deltas is the scratch buffer for the evaluation phase, one slot per
	// agent, reused across ticks.
	deltas []geometry.Vector2D

	ticks uint64
}

// NewWorld validates cfg and builds a fully initialized simulation.
// Wall evasion starts enabled; there is no target and no leader.
func NewWorld(cfg *Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	store := NewStore(cfg, rng)
	w := &World{
		cfg:    cfg,
		store:  store,
		grid:   NewGrid(cfg, store),
		rng:    rng,
		tog:    Toggles{WallEvasion: true, Leader: NoLeader},
		deltas: make([]geometry.Vector2D, store.Len()),
	}
	return w, nil
}

// Config returns the live configuration. Mutating weights between ticks is
// allowed (the UI sliders do); mutating structural fields is not.
func (w *World) Config() *Config {
	return w.cfg
}

// Toggles returns the toggle state as of the last tick boundary.
func (w *World) Toggles() Toggles {
	return w.tog
}

// Ticks returns how many ticks have been run.
func (w *World) Ticks() uint64 {
	return w.ticks
}

// SetTarget queues a "set target" event: from the next tick on, every boid
// steers toward p until the target is cleared.
func (w *World) SetTarget(p geometry.Vector2D) {
	w.pending = append(w.pending, func(w *World) {
		w.tog.HasTarget = true
		w.tog.Target = p
	})
}

// ClearTarget queues a "clear target" event.
func (w *World) ClearTarget() {
	w.pending = append(w.pending, func(w *World) {
		w.tog.HasTarget = false
		w.tog.Target = geometry.Vector2D{}
	})
}

// ToggleWallEvasion queues a flip of the wall-evasion flag. While evasion is
// off, positions wrap around the screen edges instead of being steered back.
func (w *World) ToggleWallEvasion() {
	w.pending = append(w.pending, func(w *World) {
		w.tog.WallEvasion = !w.tog.WallEvasion
	})
}

// ToggleLeader queues a flip of leader mode. Turning it on picks one boid at
// random (from the world's seeded RNG); the pick stays stable until the mode
// is turned off again, which releases it with no per-agent residue.
func (w *World) ToggleLeader() {
	w.pending = append(w.pending, func(w *World) {
		if w.tog.Leader == NoLeader {
			w.tog.Leader = w.rng.IntN(w.store.Len())
		} else {
			w.tog.Leader = NoLeader
		}
	})
}

// Tick advances the simulation by one step:
//
//  1. apply queued user events (tick boundary),
//  2. rebuild the spatial grid from current positions,
//  3. evaluate every agent's steering delta against that consistent snapshot,
//  4. integrate sequentially: velocity, speed clamp, position, boundary.
//
// The evaluation phase only reads; all writes happen in phase 4. That is what
// makes the optional worker fan-out race-free.
func (w *World) Tick() {
	for _, cmd := range w.pending {
		cmd(w)
	}
	w.pending = w.pending[:0]

	w.grid.Rebuild()

	w.evaluate()

	for i := 0; i < w.store.Len(); i++ {
		w.integrate(i)
	}
	w.ticks++
}

// evaluate fills w.deltas from the tick-start snapshot, optionally fanned out
// over cfg.Workers goroutines. Each worker owns a disjoint index range, so
// the only shared state is read-only.
func (w *World) evaluate() {
	n := w.store.Len()
	workers := w.cfg.Workers
	if workers <= 1 {
		for i := 0; i < n; i++ {
			w.deltas[i] = Steer(i, w.store, w.grid, w.cfg, w.tog)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				w.deltas[i] = Steer(i, w.store, w.grid, w.cfg, w.tog)
			}
		}(start, end)
	}
	wg.Wait()
}

// integrate applies agent i's delta and enforces the physical bounds.
func (w *World) integrate(i int) {
	a := w.store.At(i)
	a.Vel = a.Vel.Add(w.deltas[i])

	if a.Vel.LenSqr() < geometry.Epsilon {
		// A stopped boid has no heading to rescale along; give it one.
		a.Vel = geometry.Vector2D{X: w.cfg.MinSpeed}
	} else {
		a.Vel = a.Vel.ClampLen(w.cfg.MinSpeed, w.cfg.MaxSpeed)
	}

	a.Pos = a.Pos.Add(a.Vel)

	// With wall evasion on, the steering rule owns the boundary and brief
	// excursions past a wall are tolerated. With it off, the world is a
	// torus and positions always reduce into [0,W) x [0,H).
	if !w.tog.WallEvasion {
		a.Pos = a.Pos.Wrap(w.cfg.ScreenWidth, w.cfg.ScreenHeight)
	}
}

// Snapshot appends the state of every agent to dst and returns it. The caller
// owns the result; reusing dst across frames avoids reallocation.
func (w *World) Snapshot(dst []AgentState) []AgentState {
	for i := 0; i < w.store.Len(); i++ {
		a := w.store.At(i)
		dst = append(dst, AgentState{
			Pos:    a.Pos,
			Vel:    a.Vel,
			Group:  a.Group,
			Leader: i == w.tog.Leader,
		})
	}
	return dst
}
