package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind tags the closed set of collision shape variants
type ShapeKind int

const (
	ShapeKindSphere ShapeKind = iota
	ShapeKindBox
	ShapeKindConvexHull
	ShapeKindPlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeKindSphere:
		return "sphere"
	case ShapeKindBox:
		return "box"
	case ShapeKindConvexHull:
		return "convex hull"
	case ShapeKindPlane:
		return "plane"
	}
	return "unknown"
}

// Shape is the capability set shared by every collision shape variant.
// Callers select the concrete variant with a type switch.
type Shape interface {
	Kind() ShapeKind
	// Update refreshes world-space data (vertices, bounds) for the given transform
	Update(transform Transform)
	BoundingVolume() BoundingVolume
	// ComputeMass calculates the mass of the shape for a given density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// Support returns the furthest local point along a local direction
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// Polyhedral is implemented by shapes exposing a convex polyhedron
type Polyhedral interface {
	Shape
	Polyhedron() *Polyhedron
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	poly        *Polyhedron
	aabb        AABB
}

func (b *Box) Kind() ShapeKind {
	return ShapeKindBox
}

// Polyhedron lazily builds the box corners, faces and edges
func (b *Box) Polyhedron() *Polyhedron {
	if b.poly == nil {
		b.poly = boxPolyhedron(b.HalfExtents)
	}
	return b.poly
}

func (b *Box) Update(transform Transform) {
	poly := b.Polyhedron()
	poly.Update(transform)
	b.aabb = FitAABB(poly.WorldVertices())
}

func (b *Box) BoundingVolume() BoundingVolume {
	return b.aabb
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	return boxInertia(b.HalfExtents, mass)
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// I = (m/12) * (dimension1² + dimension2²) per axis
func boxInertia(halfExtents mgl64.Vec3, mass float64) mgl64.Mat3 {
	x := halfExtents.X() * 2
	y := halfExtents.Y() * 2
	z := halfExtents.Z() * 2

	factor := mass / 12.0
	return mgl64.Mat3{
		factor * (y*y + z*z), 0, 0,
		0, factor * (x*x + z*z), 0,
		0, 0, factor * (x*x + y*y),
	}
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	bounds BoundingSphere
}

func (s *Sphere) Kind() ShapeKind {
	return ShapeKindSphere
}

func (s *Sphere) Update(transform Transform) {
	s.bounds = BoundingSphere{Center: transform.Position, Radius: s.Radius}
}

func (s *Sphere) BoundingVolume() BoundingVolume {
	return s.bounds
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

// ConvexHull is an arbitrary convex polyhedron given by its vertices and
// counter-clockwise face loops.
type ConvexHull struct {
	poly *Polyhedron
	aabb AABB
}

// NewConvexHull builds a hull from local vertices and face index loops
func NewConvexHull(vertices []mgl64.Vec3, faces [][]int) *ConvexHull {
	return &ConvexHull{poly: NewPolyhedron(vertices, faces)}
}

func (h *ConvexHull) Kind() ShapeKind {
	return ShapeKindConvexHull
}

func (h *ConvexHull) Polyhedron() *Polyhedron {
	return h.poly
}

func (h *ConvexHull) Update(transform Transform) {
	h.poly.Update(transform)
	h.aabb = FitAABB(h.poly.WorldVertices())
}

func (h *ConvexHull) BoundingVolume() BoundingVolume {
	return h.aabb
}

// ComputeMass integrates the volume as a fan of tetrahedra from the first vertex
func (h *ConvexHull) ComputeMass(density float64) float64 {
	vertices := h.poly.LocalVertices()
	apex := vertices[0]

	var volume float64
	for _, face := range h.poly.Faces() {
		if len(face.Indices) < 3 {
			continue
		}
		a := vertices[face.Indices[0]].Sub(apex)
		for i := 1; i+1 < len(face.Indices); i++ {
			b := vertices[face.Indices[i]].Sub(apex)
			c := vertices[face.Indices[i+1]].Sub(apex)
			volume += a.Dot(b.Cross(c)) / 6.0
		}
	}

	return density * math.Abs(volume)
}

// ComputeInertia approximates the hull by its local bounding box
func (h *ConvexHull) ComputeInertia(mass float64) mgl64.Mat3 {
	bounds := FitAABB(h.poly.LocalVertices())
	return boxInertia(bounds.Max.Sub(bounds.Min).Mul(0.5), mass)
}

func (h *ConvexHull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return h.poly.supportLocal(direction)
}

// Plane represents an infinite half-space collision shape.
// Points with Normal·p < Offset are inside (colliding), so only one side of
// the plane is solid. Normal must be normalized.
type Plane struct {
	Normal mgl64.Vec3
	Offset float64
	aabb   AABB
}

func (p *Plane) Kind() ShapeKind {
	return ShapeKindPlane
}

// Update ignores the transform, planes are expressed in world space
func (p *Plane) Update(transform Transform) {
	const thickness = 1.0 // detection depth below the surface
	const infinity = 1e10

	planePoint := p.Normal.Mul(p.Offset)

	lo := planePoint.Sub(p.Normal.Mul(thickness))
	hi := planePoint
	for i := range 3 {
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
	}

	// Extend to infinity along every axis not aligned with the normal
	for i := range 3 {
		if math.Abs(p.Normal[i]) < 1.0 {
			lo[i] = -infinity
			hi[i] = infinity
		}
	}

	p.aabb = AABB{Min: lo, Max: hi}
}

func (p *Plane) BoundingVolume() BoundingVolume {
	return p.aabb
}

// ComputeMass always returns an infinite mass, planes are static
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// Support treats the plane as a 2000x0.5x2000 slab below its surface
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	const halfWidth = 1000.0
	const depth = 0.5

	t1, t2 := TangentBasis(p.Normal)
	point := p.Normal.Mul(p.Offset)
	if direction.Dot(p.Normal) <= 0 {
		point = point.Sub(p.Normal.Mul(depth))
	}
	if direction.Dot(t1) < 0 {
		point = point.Sub(t1.Mul(halfWidth))
	} else {
		point = point.Add(t1.Mul(halfWidth))
	}
	if direction.Dot(t2) < 0 {
		point = point.Sub(t2.Mul(halfWidth))
	} else {
		point = point.Add(t2.Mul(halfWidth))
	}

	return point
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
