// Package gjk implements the Gilbert-Johnson-Keerthi overlap test.
//
// Two convex shapes overlap when their Minkowski difference A - B contains the origin.
// GJK never builds the difference: it only queries support points, growing a simplex of
// up to 4 points towards the origin until it either encloses it or proves that no support
// point can pass it.
//
// The collision pipeline uses GJK for pairs where one side is a sphere, since a sphere
// has no polyhedron for the separating axis test. Penetration (EPA) then measures
// sphere contacts facing a hull edge or corner, where no single face gives the normal.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	maxIterations = 32
	// below this squared length a direction or a simplex feature is treated as zero
	degenerateEpsilon = 1e-10
)

// Supporter is any convex set able to return its furthest world point along a direction.
// *actor.RigidBody implements it.
type Supporter interface {
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
}

// Simplex holds 1 to 4 points of the Minkowski difference, the newest one last.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns support(A, d) - support(B, -d)
func MinkowskiSupport(a, b Supporter, direction mgl64.Vec3) mgl64.Vec3 {
	return a.SupportWorld(direction).Sub(b.SupportWorld(direction.Mul(-1)))
}

// GJK reports whether the two bodies overlap. The search starts along the line joining
// their centres. On success the simplex is left enclosing the origin.
func GJK(a, b *actor.RigidBody, simplex *Simplex) bool {
	return Intersect(a, b, b.Transform.Position.Sub(a.Transform.Position), simplex)
}

// Overlap runs GJK with a simplex borrowed from SimplexPool
func Overlap(a, b *actor.RigidBody) bool {
	simplex := SimplexPool.Get().(*Simplex)
	defer SimplexPool.Put(simplex)
	simplex.Reset()

	return GJK(a, b, simplex)
}

// Intersect is GJK on arbitrary support mappings, seeded with an initial direction.
// Touching shapes count as overlapping.
func Intersect(a, b Supporter, direction mgl64.Vec3, simplex *Simplex) bool {
	if direction.LenSqr() < degenerateEpsilon {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < degenerateEpsilon*degenerateEpsilon {
		return true
	}

	for range maxIterations {
		point := MinkowskiSupport(a, b, direction)

		// the newest point does not reach the origin: a separating plane exists
		if point.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = point
		simplex.Count++

		if nextSimplex(simplex, &direction) {
			return true
		}
	}

	return false
}

// nextSimplex keeps the feature of the simplex closest to the origin and points the
// direction at the origin from it. It reports whether the origin is enclosed.
func nextSimplex(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

// line handles the segment [b, a], a being the newest point
func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < degenerateEpsilon {
		if ao.LenSqr() < degenerateEpsilon {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perpendicular := ab.Cross(ao).Cross(ab)
	if perpendicular.LenSqr() < degenerateEpsilon {
		// origin on the segment
		return true
	}

	*direction = perpendicular
	return false
}

// triangle handles [c, b, a], a being the newest point
func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	// collinear points collapse to a segment
	if abc.LenSqr() < degenerateEpsilon {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if abc.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// keep the winding so that the next tetrahedron faces outward
		simplex.set(b, c, a)
		*direction = abc.Mul(-1)
	}

	return false
}

// tetrahedron handles [d, c, b, a], a being the newest point. It is the only case able
// to enclose the origin.
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c, d := simplex.Points[3], simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// each face normal is flipped away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < degenerateEpsilon || acd.LenSqr() < degenerateEpsilon || adb.LenSqr() < degenerateEpsilon {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
		return triangle(simplex, direction)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
		return triangle(simplex, direction)
	}

	return true
}

func outward(normal, towardOpposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(towardOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
