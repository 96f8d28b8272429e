package gjk

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Expanding Polytope Algorithm.
//
// Once GJK has enclosed the origin in a tetrahedron, EPA grows that tetrahedron into a
// polytope approximating the Minkowski difference, always pushing out its face closest
// to the origin. When no support point moves that face any further, its normal and
// distance give the minimum translation separating the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)

const (
	EPAMaxIterations = 32
	// the closest face has converged when a new support point improves it by less than this
	EPAConvergenceTolerance = 0.001
	// faces nearer to the origin than this are treated as degenerate
	EPAMinFaceDistance = 0.0001
	// normal components under this magnitude are snapped to zero
	NormalSnapThreshold = 1e-8

	polytopeInitialCapacity = 16
)

var (
	ErrDegenerateSimplex = errors.New("gjk: simplex does not enclose a volume")
	ErrNotConverged      = errors.New("gjk: penetration search did not converge")
)

// Penetration runs EPA from a simplex produced by a successful Intersect on the same
// pair. normal is the unit direction, in Minkowski space A - B, of the closest boundary
// point: moving A by -normal*depth makes the shapes touch.
func Penetration(a, b Supporter, simplex *Simplex) (normal mgl64.Vec3, depth float64, err error) {
	if simplex.Count < 4 {
		return mgl64.Vec3{}, 0, ErrDegenerateSimplex
	}

	p := polytopePool.Get().(*polytope)
	defer polytopePool.Put(p)
	p.build(simplex)

	for range EPAMaxIterations {
		if len(p.faces) == 0 {
			break
		}

		closest := p.closestFace()
		face := p.faces[closest]

		support := MinkowskiSupport(a, b, face.normal)
		if support.Dot(face.normal)-face.distance < EPAConvergenceTolerance {
			return face.normal, face.distance, nil
		}

		p.expand(support, closest)
	}

	return mgl64.Vec3{}, 0, fmt.Errorf("%w after %d iterations", ErrNotConverged, EPAMaxIterations)
}

type polytopeFace struct {
	points   [3]mgl64.Vec3
	normal   mgl64.Vec3
	distance float64
}

type polytopeEdge struct {
	a, b  mgl64.Vec3
	count int
}

// polytope keeps its buffers between runs through polytopePool
type polytope struct {
	faces   []polytopeFace
	edges   []polytopeEdge
	visible []bool
	// interior stays inside every later polytope, the initial tetrahedron being contained in all of them
	interior mgl64.Vec3
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &polytope{
			faces:   make([]polytopeFace, 0, polytopeInitialCapacity),
			edges:   make([]polytopeEdge, 0, polytopeInitialCapacity),
			visible: make([]bool, 0, polytopeInitialCapacity),
		}
	},
}

func (p *polytope) build(simplex *Simplex) {
	p.faces = p.faces[:0]

	a, b, c, d := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]
	p.interior = a.Add(b).Add(c).Add(d).Mul(0.25)

	p.faces = append(p.faces,
		newPolytopeFace(a, b, c, p.interior),
		newPolytopeFace(a, c, d, p.interior),
		newPolytopeFace(a, d, b, p.interior),
		newPolytopeFace(b, d, c, p.interior),
	)
}

func (p *polytope) closestFace() int {
	closest := 0
	for i := 1; i < len(p.faces); i++ {
		if p.faces[i].distance < p.faces[closest].distance {
			closest = i
		}
	}
	return closest
}

// expand replaces every face the support point can see by a fan joining the horizon
// edges to the point.
func (p *polytope) expand(support mgl64.Vec3, closest int) {
	p.visible = p.visible[:0]
	visibleCount := 0
	for _, face := range p.faces {
		seen := support.Sub(face.points[0]).Dot(face.normal) > 0
		p.visible = append(p.visible, seen)
		if seen {
			visibleCount++
		}
	}

	// never remove the whole polytope
	if visibleCount == len(p.faces) || visibleCount == 0 {
		for i := range p.visible {
			p.visible[i] = i == closest
		}
	}

	p.edges = p.edges[:0]
	for i, face := range p.faces {
		if !p.visible[i] {
			continue
		}
		for j := range 3 {
			p.addEdge(face.points[j], face.points[(j+1)%3])
		}
	}

	kept := p.faces[:0]
	for i, face := range p.faces {
		if !p.visible[i] {
			kept = append(kept, face)
		}
	}
	p.faces = kept

	// horizon edges belong to exactly one visible face
	for _, edge := range p.edges {
		if edge.count == 1 {
			p.faces = append(p.faces, newPolytopeFace(edge.a, edge.b, support, p.interior))
		}
	}
}

func (p *polytope) addEdge(a, b mgl64.Vec3) {
	if compareVec3(a, b) > 0 {
		a, b = b, a
	}
	for i := range p.edges {
		if p.edges[i].a == a && p.edges[i].b == b {
			p.edges[i].count++
			return
		}
	}
	p.edges = append(p.edges, polytopeEdge{a: a, b: b, count: 1})
}

// newPolytopeFace orients the triangle normal away from interior and measures the
// distance of its plane to the origin.
func newPolytopeFace(a, b, c, interior mgl64.Vec3) polytopeFace {
	face := polytopeFace{points: [3]mgl64.Vec3{a, b, c}}

	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < NormalSnapThreshold {
		face.normal = mgl64.Vec3{0, 1, 0}
		face.distance = EPAMinFaceDistance
		return face
	}
	normal = normal.Mul(1.0 / length)

	if normal.Dot(interior.Sub(a)) > 0 {
		normal = normal.Mul(-1)
	}

	distance := a.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}

	face.normal = snapNormalToAxis(normal)
	face.distance = math.Max(distance, EPAMinFaceDistance)
	return face
}

// snapNormalToAxis zeroes near-zero components and renormalizes, which keeps
// axis-aligned contacts free of tangential noise.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := range 3 {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length < NormalSnapThreshold {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1.0 / length)
}

// compareVec3 orders vectors lexicographically
func compareVec3(a, b mgl64.Vec3) int {
	for i := range 3 {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
