package flock

import (
	"iter"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

type cellKey struct {
	x, y int
}

// Grid is a uniform spatial hash over the plane, rebuilt from scratch every
// tick. Cells do not persist membership across ticks: they are a derived
// index over the Store, not a source of truth.
//
// The cell width is fixed at construction to the largest interaction radius,
// so any query with radius <= cellSize only has to inspect the 3x3 block of
// cells around the query point to be complete. Larger radii widen the block.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
	store    *Store
}

// NewGrid builds an empty grid over store with cell width
// max(SteeringDistance, InfluenceDistance).
func NewGrid(cfg *Config, store *Store) *Grid {
	return &Grid{
		cellSize: math.Max(cfg.SteeringDistance, cfg.InfluenceDistance),
		cells:    make(map[cellKey][]int),
		store:    store,
	}
}

// CellSize returns the fixed cell width.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) cellOf(x, y float64) cellKey {
	// math.Floor, not int(): wall-evading boids may briefly sit at slightly
	// negative coordinates and truncation would fold cell -1 onto cell 0.
	return cellKey{
		x: int(math.Floor(x / g.cellSize)),
		y: int(math.Floor(y / g.cellSize)),
	}
}

// Rebuild reindexes every agent under its current position. O(n).
// Cell slices are reset to length 0 but keep their capacity, so after the
// first few ticks a rebuild allocates almost nothing.
func (g *Grid) Rebuild() {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := 0; i < g.store.Len(); i++ {
		p := g.store.At(i).Pos
		key := g.cellOf(p.X, p.Y)
		g.cells[key] = append(g.cells[key], i)
	}
}

// Within returns the indices of all agents whose position lies within radius
// of pos (inclusive). The sequence is lazy and restartable; iteration order
// follows the grid cells and must be treated as unordered.
func (g *Grid) Within(pos geometry.Vector2D, radius float64) iter.Seq[int] {
	return func(yield func(int) bool) {
		radiusSq := radius * radius
		min := g.cellOf(pos.X-radius, pos.Y-radius)
		max := g.cellOf(pos.X+radius, pos.Y+radius)

		for cx := min.x; cx <= max.x; cx++ {
			for cy := min.y; cy <= max.y; cy++ {
				for _, idx := range g.cells[cellKey{x: cx, y: cy}] {
					if g.store.At(idx).Pos.DistanceSquaredTo(pos) <= radiusSq {
						if !yield(idx) {
							return
						}
					}
				}
			}
		}
	}
}
