package flock

import (
	"math/rand/v2"
	"testing"
)

func TestNewStoreSpawn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 100
	cfg.NumGroups = 7
	store := NewStore(cfg, rand.New(rand.NewPCG(7, 7)))

	if store.Len() != 100 {
		t.Fatalf("Len() = %d; want 100", store.Len())
	}

	groupCounts := make(map[GroupID]int)
	for i := 0; i < store.Len(); i++ {
		a := store.At(i)

		// Spawn positions sit inside the wall margins.
		if a.Pos.X < cfg.Margin || a.Pos.X > cfg.ScreenWidth-cfg.Margin ||
			a.Pos.Y < cfg.Margin || a.Pos.Y > cfg.ScreenHeight-cfg.Margin {
			t.Errorf("agent %d spawned outside margins at %s", i, a.Pos)
		}

		// Initial speed is the midpoint of the bounds.
		cruise := (cfg.MinSpeed + cfg.MaxSpeed) / 2
		if speed := a.Vel.Len(); speed < cruise-1e-6 || speed > cruise+1e-6 {
			t.Errorf("agent %d initial speed = %g; want %g", i, speed, cruise)
		}

		groupCounts[a.Group]++
	}

	// Round-robin group assignment spreads 100 boids over 7 groups.
	if len(groupCounts) != 7 {
		t.Errorf("got %d distinct groups; want 7", len(groupCounts))
	}
	for g, n := range groupCounts {
		if n < 14 || n > 15 {
			t.Errorf("group %d has %d boids; want 14 or 15", g, n)
		}
	}
}

func TestNewStoreReproducible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBoids = 50

	a := NewStore(cfg, rand.New(rand.NewPCG(3, 3)))
	b := NewStore(cfg, rand.New(rand.NewPCG(3, 3)))

	for i := 0; i < a.Len(); i++ {
		if !a.At(i).Pos.Eq(b.At(i).Pos) || !a.At(i).Vel.Eq(b.At(i).Vel) {
			t.Fatalf("agent %d differs between equally seeded stores", i)
		}
	}
}
