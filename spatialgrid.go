package impulse

import (
	"math"
	"sort"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it
type Cell struct {
	bodyIndices []int
}

// Pair is two bodies that may be touching
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hashed grid for the broad phase. Planes are unbounded, they are
// kept out of the cells and paired with every other body.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	unbounded []int
}

// NewSpatialGrid creates a grid of cells with the given edge length. numCells is rounded
// up to a power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the body index to every cell its bounding volume touches
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	if body.Shape.Kind() == actor.ShapeKindPlane {
		sg.unbounded = append(sg.unbounded, bodyIndex)
		return
	}

	sg.forEachCell(body, func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.unbounded = sg.unbounded[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns each candidate pair once, ordered by the first body index. Pairs of
// two inactive bodies (static or asleep) are skipped.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make(map[int]bool)

	for bodyIdx, bodyA := range bodies {
		if bodyA.Shape.Kind() == actor.ShapeKindPlane {
			continue
		}
		clear(seen)

		sg.forEachCell(bodyA, func(cellIdx int) {
			for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
				// hashed cells can hold bodies from far away, and a body can share several cells
				if otherIdx <= bodyIdx || seen[otherIdx] {
					continue
				}
				seen[otherIdx] = true

				bodyB := bodies[otherIdx]
				if !isActive(bodyA) && !isActive(bodyB) {
					continue
				}
				if bodyA.Shape.BoundingVolume().Overlaps(bodyB.Shape.BoundingVolume()) {
					pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
				}
			}
		})

		for _, planeIdx := range sg.unbounded {
			plane := bodies[planeIdx]
			if !isActive(bodyA) && !isActive(plane) {
				continue
			}
			pairs = append(pairs, Pair{BodyA: bodyA, BodyB: plane})
		}
	}

	return pairs
}

func (sg *SpatialGrid) forEachCell(body *actor.RigidBody, fn func(cellIdx int)) {
	bounds := body.Shape.BoundingVolume().Bounds()
	minCell := sg.worldToCell(bounds.Min)
	maxCell := sg.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// isActive reports whether the body can move this step
func isActive(body *actor.RigidBody) bool {
	return body.BodyType == actor.BodyTypeDynamic && body.IsAwake && body.HasFiniteMass()
}
