// Package systems provides the simulation systems: spatial indexing, FIRA
// flocking, predator-prey decisions, population lifecycle, and movement
// integration.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// Bounds is the axis-aligned world volume. X/Z are horizontal half-extents
// around the origin; Y runs from FloorY up to SurfaceY (both negative, the
// surface sits near y=0).
type Bounds struct {
	HalfX    float32
	HalfZ    float32
	FloorY   float32
	SurfaceY float32
}

// cellKey identifies one grid cell by its integer cell coordinate.
type cellKey struct {
	x, y, z int32
}

// SpatialGrid is a uniform-cell spatial hash over 3D positions. It answers
// "which entities are near point p" in time proportional to the cells
// visited, independent of total entity count.
//
// The grid is rebuilt from authoritative positions every tick (Clear + Insert
// for every live entity); no incremental cell-membership updates are relied
// upon between ticks.
type SpatialGrid struct {
	cellSize float32
	bounds   Bounds

	cells      map[cellKey][]ecs.Entity
	membership map[ecs.Entity]cellKey

	// queryBuf backs Neighbors results; valid until the next Neighbors call.
	queryBuf []ecs.Entity
}

// GridStats summarizes grid occupancy for diagnostics.
type GridStats struct {
	Cells         int
	TotalEntities int
	AvgOccupancy  float32
	MaxOccupancy  int
}

// NewSpatialGrid creates a grid with the given cell edge length. The bounds
// clamp insertion coordinates: an entity that has drifted outside the world
// still lands in a boundary cell and stays queryable.
func NewSpatialGrid(cellSize float32, bounds Bounds) *SpatialGrid {
	if cellSize <= 0 {
		panic("systems: grid cell size must be positive")
	}
	return &SpatialGrid{
		cellSize:   cellSize,
		bounds:     bounds,
		cells:      make(map[cellKey][]ecs.Entity, 1024),
		membership: make(map[ecs.Entity]cellKey, 4096),
	}
}

// Clear empties all cells and the entity membership index.
func (g *SpatialGrid) Clear() {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for e := range g.membership {
		delete(g.membership, e)
	}
}

// Insert adds an entity at the given position. The position is clamped to
// the world bounds before the cell coordinate is computed. If the entity is
// already present it is moved, so an entity is never a member of two cells.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y, z float32) {
	if _, ok := g.membership[e]; ok {
		g.Remove(e)
	}

	key := g.keyFor(x, y, z)
	g.cells[key] = append(g.cells[key], e)
	g.membership[e] = key
}

// Remove deletes an entity from its recorded cell. No-op if absent. Cells
// left empty are dropped so stats and iteration stay proportional to use.
func (g *SpatialGrid) Remove(e ecs.Entity) {
	key, ok := g.membership[e]
	if !ok {
		return
	}
	delete(g.membership, e)

	bucket := g.cells[key]
	for i, other := range bucket {
		if other == e {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.cells, key)
	} else {
		g.cells[key] = bucket
	}
}

// Rebuild clears the grid and inserts every entity at its position from the
// parallel coordinate slices. This is the per-tick call pattern; partial
// updates are never used for correctness.
func (g *SpatialGrid) Rebuild(entities []ecs.Entity, x, y, z []float32) {
	g.Clear()
	for i, e := range entities {
		g.Insert(e, x[i], y[i], z[i])
	}
}

// NeighborsInto appends every entity in the cell cube covering radius around
// (x, y, z) to dst and returns the extended slice, excluding exclude if it is
// a live entity handle.
//
// This is a coarse cell-level filter: results may lie outside the true
// Euclidean radius (they never miss anything inside it). Callers that need an
// exact radius must re-check distances against actual positions.
func (g *SpatialGrid) NeighborsInto(dst []ecs.Entity, x, y, z, radius float32, exclude ecs.Entity) []ecs.Entity {
	radiusInCells := int32(math.Ceil(float64(radius / g.cellSize)))
	center := g.keyFor(x, y, z)

	for dx := -radiusInCells; dx <= radiusInCells; dx++ {
		for dy := -radiusInCells; dy <= radiusInCells; dy++ {
			for dz := -radiusInCells; dz <= radiusInCells; dz++ {
				key := cellKey{center.x + dx, center.y + dy, center.z + dz}
				for _, e := range g.cells[key] {
					if e == exclude {
						continue
					}
					dst = append(dst, e)
				}
			}
		}
	}

	return dst
}

// Neighbors is like NeighborsInto but uses a single grid-owned buffer. The
// result is valid only until the next Neighbors call; callers must consume it
// before querying again.
func (g *SpatialGrid) Neighbors(x, y, z, radius float32, exclude ecs.Entity) []ecs.Entity {
	g.queryBuf = g.NeighborsInto(g.queryBuf[:0], x, y, z, radius, exclude)
	return g.queryBuf
}

// Stats returns occupancy diagnostics. Not used for correctness.
func (g *SpatialGrid) Stats() GridStats {
	s := GridStats{Cells: len(g.cells)}
	for _, bucket := range g.cells {
		s.TotalEntities += len(bucket)
		if len(bucket) > s.MaxOccupancy {
			s.MaxOccupancy = len(bucket)
		}
	}
	if s.Cells > 0 {
		s.AvgOccupancy = float32(s.TotalEntities) / float32(s.Cells)
	}
	return s
}

// CellSize returns the configured cell edge length.
func (g *SpatialGrid) CellSize() float32 {
	return g.cellSize
}

// keyFor maps a world position to its cell coordinate, clamping to bounds
// first so out-of-world positions resolve to boundary cells.
func (g *SpatialGrid) keyFor(x, y, z float32) cellKey {
	x = clamp32(x, -g.bounds.HalfX, g.bounds.HalfX)
	y = clamp32(y, g.bounds.FloorY, g.bounds.SurfaceY)
	z = clamp32(z, -g.bounds.HalfZ, g.bounds.HalfZ)

	return cellKey{
		x: int32(math.Floor(float64(x / g.cellSize))),
		y: int32(math.Floor(float64(y / g.cellSize))),
		z: int32(math.Floor(float64(z / g.cellSize))),
	}
}
