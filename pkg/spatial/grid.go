package spatial

import (
	"math"
	"sync"

	"github.com/urbanflow/cityroute/pkg/geom"
)

// DefaultCellSize is the grid cell edge length used when no size is configured.
const DefaultCellSize = 10.0

// cellKey is an integer grid coordinate.
type cellKey struct {
	X, Y, Z int
}

// GridIndex buckets node ids into uniform grid cells for O(1) amortized
// nearest-node candidate lookups. A node's cell membership must be moved
// whenever its position changes; stale membership is a correctness bug, not a
// tolerated approximation.
type GridIndex struct {
	cellSize float64
	cells    map[cellKey]map[uint64]struct{}
	count    int
	mu       sync.RWMutex
}

// NewGridIndex creates a grid index with the given cell size. Non-positive
// sizes fall back to DefaultCellSize.
func NewGridIndex(cellSize float64) *GridIndex {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &GridIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[uint64]struct{}),
	}
}

// CellSize returns the configured cell edge length.
func (gi *GridIndex) CellSize() float64 {
	return gi.cellSize
}

func (gi *GridIndex) keyFor(pos geom.Point) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X / gi.cellSize)),
		Y: int(math.Floor(pos.Y / gi.cellSize)),
		Z: int(math.Floor(pos.Z / gi.cellSize)),
	}
}

// Insert adds id to the cell containing pos.
func (gi *GridIndex) Insert(id uint64, pos geom.Point) {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	gi.insertLocked(id, pos)
}

func (gi *GridIndex) insertLocked(id uint64, pos geom.Point) {
	key := gi.keyFor(pos)
	cell, exists := gi.cells[key]
	if !exists {
		cell = make(map[uint64]struct{})
		gi.cells[key] = cell
	}
	if _, present := cell[id]; !present {
		cell[id] = struct{}{}
		gi.count++
	}
}

// Remove deletes id from the cell containing pos. Unknown memberships are a
// no-op.
func (gi *GridIndex) Remove(id uint64, pos geom.Point) {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	gi.removeLocked(id, pos)
}

func (gi *GridIndex) removeLocked(id uint64, pos geom.Point) {
	key := gi.keyFor(pos)
	cell, exists := gi.cells[key]
	if !exists {
		return
	}
	if _, present := cell[id]; !present {
		return
	}
	delete(cell, id)
	gi.count--
	if len(cell) == 0 {
		delete(gi.cells, key)
	}
}

// Move relocates id's cell membership from oldPos to newPos. Positions in the
// same cell leave the index untouched.
func (gi *GridIndex) Move(id uint64, oldPos, newPos geom.Point) {
	gi.mu.Lock()
	defer gi.mu.Unlock()

	oldKey := gi.keyFor(oldPos)
	newKey := gi.keyFor(newPos)
	if oldKey == newKey {
		return
	}
	gi.removeLocked(id, oldPos)
	gi.insertLocked(id, newPos)
}

// faceOffsets are the 6 face-adjacent cell offsets probed after the home cell.
var faceOffsets = [6]cellKey{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// NearbyIDs returns the ids in the cell containing pos and its 6
// face-adjacent cells. An empty result does not prove there is no nearby
// node; callers needing certainty must fall back to a full scan.
func (gi *GridIndex) NearbyIDs(pos geom.Point) []uint64 {
	gi.mu.RLock()
	defer gi.mu.RUnlock()

	home := gi.keyFor(pos)
	ids := make([]uint64, 0, 8)

	collect := func(key cellKey) {
		for id := range gi.cells[key] {
			ids = append(ids, id)
		}
	}

	collect(home)
	for _, off := range faceOffsets {
		collect(cellKey{X: home.X + off.X, Y: home.Y + off.Y, Z: home.Z + off.Z})
	}
	return ids
}

// AllIDs returns every indexed id.
func (gi *GridIndex) AllIDs() []uint64 {
	gi.mu.RLock()
	defer gi.mu.RUnlock()

	ids := make([]uint64, 0, gi.count)
	for _, cell := range gi.cells {
		for id := range cell {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of indexed ids.
func (gi *GridIndex) Len() int {
	gi.mu.RLock()
	defer gi.mu.RUnlock()
	return gi.count
}

// Clear drops all memberships. Used by full graph rebuilds, which run with
// exclusive access.
func (gi *GridIndex) Clear() {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	gi.cells = make(map[cellKey]map[uint64]struct{})
	gi.count = 0
}
