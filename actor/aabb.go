package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoundingVolume is the closed set of bounding volume variants: AABB and BoundingSphere.
// Use a type switch to select the concrete variant.
type BoundingVolume interface {
	// Bounds returns the enclosing axis-aligned box
	Bounds() AABB
	Overlaps(other BoundingVolume) bool
	isBoundingVolume()
}

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (a AABB) isBoundingVolume() {}

func (a AABB) Bounds() AABB {
	return a
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if the AABB overlaps another bounding volume
func (a AABB) Overlaps(other BoundingVolume) bool {
	switch o := other.(type) {
	case AABB:
		return a.overlapsAABB(o)
	case BoundingSphere:
		return o.overlapsAABB(a)
	}
	return false
}

func (a AABB) overlapsAABB(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// ClosestPoint clamps point into the box
func (a AABB) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(point.X(), a.Min.X(), a.Max.X()),
		mgl64.Clamp(point.Y(), a.Min.Y(), a.Max.Y()),
		mgl64.Clamp(point.Z(), a.Min.Z(), a.Max.Z()),
	}
}

// BoundingSphere is a center and radius enclosing a shape
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

func (s BoundingSphere) isBoundingVolume() {}

func (s BoundingSphere) Bounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s BoundingSphere) Overlaps(other BoundingVolume) bool {
	switch o := other.(type) {
	case BoundingSphere:
		distance := s.Center.Sub(o.Center).LenSqr()
		radii := s.Radius + o.Radius
		return distance <= radii*radii
	case AABB:
		return s.overlapsAABB(o)
	}
	return false
}

func (s BoundingSphere) overlapsAABB(box AABB) bool {
	return box.ClosestPoint(s.Center).Sub(s.Center).LenSqr() <= s.Radius*s.Radius
}

// FitAABB returns the smallest AABB containing every point
func FitAABB(points []mgl64.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for i := range 3 {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}

	return AABB{Min: lo, Max: hi}
}

// FitBoundingSphere returns a sphere centred on the points' average that contains all of them.
// It is not minimal.
func FitBoundingSphere(points []mgl64.Vec3) BoundingSphere {
	if len(points) == 0 {
		return BoundingSphere{}
	}

	var center mgl64.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / float64(len(points)))

	var radiusSqr float64
	for _, p := range points {
		radiusSqr = math.Max(radiusSqr, p.Sub(center).LenSqr())
	}

	return BoundingSphere{Center: center, Radius: math.Sqrt(radiusSqr)}
}
