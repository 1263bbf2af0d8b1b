package flock

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// checkSpeedBounds asserts MinSpeed <= |v| <= MaxSpeed for every agent.
func checkSpeedBounds(t *testing.T, w *World) {
	t.Helper()
	cfg := w.Config()
	for i := 0; i < w.store.Len(); i++ {
		speed := w.store.At(i).Vel.Len()
		if speed < cfg.MinSpeed-1e-9 || speed > cfg.MaxSpeed+1e-9 {
			t.Fatalf("tick %d: agent %d speed %g outside [%g, %g]",
				w.Ticks(), i, speed, cfg.MinSpeed, cfg.MaxSpeed)
		}
	}
}

func newTestWorld(t *testing.T, cfg *Config) *World {
	t.Helper()
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestWorldSpeedClampInvariant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 200
	w := newTestWorld(t, cfg)

	for i := 0; i < 50; i++ {
		w.Tick()
		checkSpeedBounds(t, w)
	}
}

func TestWorldWrapIsTotal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 200
	w := newTestWorld(t, cfg)
	w.ToggleWallEvasion() // off: the world becomes a torus

	for i := 0; i < 100; i++ {
		w.Tick()
		for j := 0; j < w.store.Len(); j++ {
			p := w.store.At(j).Pos
			if p.X < 0 || p.X >= cfg.ScreenWidth || p.Y < 0 || p.Y >= cfg.ScreenHeight {
				t.Fatalf("tick %d: agent %d at %s outside [0,%g)x[0,%g)",
					i, j, p, cfg.ScreenWidth, cfg.ScreenHeight)
			}
		}
	}
}

func TestWorldCommandsApplyAtTickBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 10
	w := newTestWorld(t, cfg)

	target := geometry.Vector2D{X: 100, Y: 200}
	w.SetTarget(target)
	if w.Toggles().HasTarget {
		t.Fatal("target visible before the tick boundary")
	}

	w.Tick()
	tog := w.Toggles()
	if !tog.HasTarget || !tog.Target.Eq(target) {
		t.Fatalf("after tick, toggles = %+v; want target %s", tog, target)
	}

	w.ClearTarget()
	if !w.Toggles().HasTarget {
		t.Fatal("clear applied before the tick boundary")
	}
	w.Tick()
	if w.Toggles().HasTarget {
		t.Fatal("target still set after clear took effect")
	}
}

func TestWorldLeaderToggle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 50
	w := newTestWorld(t, cfg)

	w.ToggleLeader()
	w.Tick()
	leader := w.Toggles().Leader
	if leader == NoLeader {
		t.Fatal("leader mode on but no leader chosen")
	}
	if leader < 0 || leader >= w.store.Len() {
		t.Fatalf("leader index %d out of range", leader)
	}

	// The pick stays stable while the mode is on.
	for i := 0; i < 20; i++ {
		w.Tick()
		if got := w.Toggles().Leader; got != leader {
			t.Fatalf("leader changed from %d to %d while mode stayed on", leader, got)
		}
	}

	// Exactly one agent is flagged in the snapshot.
	flagged := 0
	for _, s := range w.Snapshot(nil) {
		if s.Leader {
			flagged++
		}
	}
	if flagged != 1 {
		t.Fatalf("%d agents flagged as leader; want exactly 1", flagged)
	}

	// Toggling off returns to NoLeader with no residue.
	w.ToggleLeader()
	w.Tick()
	if got := w.Toggles().Leader; got != NoLeader {
		t.Fatalf("leader = %d after toggle off; want NoLeader", got)
	}
	for _, s := range w.Snapshot(nil) {
		if s.Leader {
			t.Fatal("residual leader flag in snapshot after toggle off")
		}
	}
}

func TestWorldTargetApproach(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 1
	cfg.MinSpeed = 0
	cfg.MaxSpeed = 6
	cfg.SeparationWeight = 0
	cfg.AlignmentWeight = 0
	cfg.CohesionWeight = 0
	cfg.EvasionWeight = 0
	cfg.TargetWeight = 0.01
	w := newTestWorld(t, cfg)
	w.ToggleWallEvasion() // no wall push interfering

	// Pin the boid down for a deterministic straight-line run.
	a := w.store.At(0)
	a.Pos = geometry.Vector2D{X: 150, Y: 150}
	a.Vel = geometry.Vector2D{}
	target := geometry.Vector2D{X: 1200, Y: 800}
	w.SetTarget(target)

	prev := a.Pos.DistanceTo(target)
	for i := 0; i < 1000; i++ {
		w.Tick()
		dist := a.Pos.DistanceTo(target)
		if dist <= 2*cfg.MaxSpeed {
			return // arrived, within one overshoot step
		}
		if dist >= prev {
			t.Fatalf("tick %d: distance to target grew from %g to %g", i, prev, dist)
		}
		prev = dist
	}
	t.Fatalf("boid never reached the target; final distance %g", prev)
}

func TestWorldAlignmentConvergence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScreenWidth = 10000
	cfg.ScreenHeight = 10000
	cfg.NumBoids = 10
	cfg.NumGroups = 1
	cfg.MinSpeed = 1
	cfg.MaxSpeed = 10
	cfg.SeparationWeight = 0
	cfg.AlignmentWeight = 0.05
	cfg.CohesionWeight = 0
	cfg.EvasionWeight = 0
	cfg.SteeringDistance = 10
	cfg.InfluenceDistance = 400
	w := newTestWorld(t, cfg)
	w.ToggleWallEvasion()

	// Tight cluster in the middle, headings varied over a half-circle so the
	// group average is a real direction and not a symmetric zero.
	for i := 0; i < w.store.Len(); i++ {
		a := w.store.At(i)
		a.Pos = geometry.Vector2D{
			X: 5000 + float64(i%5)*20,
			Y: 5000 + float64(i/5)*20,
		}
		a.Vel = geometry.NewVectorPolar(4, (float64(i)-4.5)*0.25)
	}

	for i := 0; i < 300; i++ {
		w.Tick()
	}

	// All headings must have converged to (nearly) the same direction.
	ref := w.store.At(0).Vel.Angle()
	for i := 1; i < w.store.Len(); i++ {
		diff := math.Abs(angleDiff(w.store.At(i).Vel.Angle(), ref))
		if diff > 0.2 {
			t.Errorf("agent %d heading differs from agent 0 by %.3f rad", i, diff)
		}
	}
}

// angleDiff returns the signed difference between two angles in (-Pi, Pi].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func TestWorldZeroVelocityGetsDefaultHeading(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 1
	cfg.MinSpeed = 2
	cfg.SeparationWeight = 0
	cfg.AlignmentWeight = 0
	cfg.CohesionWeight = 0
	cfg.EvasionWeight = 0
	w := newTestWorld(t, cfg)
	w.ToggleWallEvasion()

	a := w.store.At(0)
	a.Vel = geometry.Vector2D{}
	w.Tick()

	want := geometry.Vector2D{X: cfg.MinSpeed}
	if !a.Vel.Eq(want) {
		t.Fatalf("velocity after tick = %s; want default heading %s", a.Vel, want)
	}
}

func TestWorldReproducibleRuns(t *testing.T) {
	run := func(workers int) []AgentState {
		cfg := DefaultConfig()
		cfg.NumBoids = 150
		cfg.Seed = 12345
		cfg.Workers = workers
		w, err := NewWorld(cfg)
		if err != nil {
			panic(err)
		}
		w.ToggleLeader()
		for i := 0; i < 30; i++ {
			w.Tick()
		}
		return w.Snapshot(nil)
	}

	serial := run(0)
	again := run(0)
	parallel := run(4)

	for i := range serial {
		if !serial[i].Pos.Eq(again[i].Pos) || !serial[i].Vel.Eq(again[i].Vel) {
			t.Fatalf("agent %d differs between two equally seeded runs", i)
		}
		if !serial[i].Pos.Eq(parallel[i].Pos) || !serial[i].Vel.Eq(parallel[i].Vel) {
			t.Fatalf("agent %d differs between serial and parallel evaluation", i)
		}
		if serial[i].Leader != parallel[i].Leader {
			t.Fatalf("agent %d leader flag differs between serial and parallel runs", i)
		}
	}
}

func BenchmarkWorldTick(b *testing.B) {
	cfg := DefaultConfig()
	cfg.NumBoids = 1000
	w, err := NewWorld(cfg)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick()
	}
}

func BenchmarkWorldTickParallel(b *testing.B) {
	cfg := DefaultConfig()
	cfg.NumBoids = 1000
	cfg.Workers = 4
	w, err := NewWorld(cfg)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick()
	}
}
