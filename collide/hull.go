package collide

import (
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const parallelDirectionEpsilon = 1e-6

type axisKind int

const (
	faceOfOne axisKind = iota
	faceOfTwo
	edgePair
)

// hullAxis is a candidate contact axis between two polyhedra
type hullAxis struct {
	kind axisKind
	// normal points from the second hull toward the first one
	normal      mgl64.Vec3
	penetration float64
	// edges generating an edgePair axis
	edgeOne, edgeTwo int
}

// HullAndHull generates one contact between two convex polyhedra (boxes or hulls) along
// the axis of least penetration among their face normals and edge cross products. It
// generalises BoxAndBox to arbitrary convex polyhedra.
func HullAndHull(one, two *actor.RigidBody, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	polyOne := one.Shape.(actor.Polyhedral).Polyhedron()
	polyTwo := two.Shape.(actor.Polyhedral).Polyhedron()
	if !polyOne.Ready() || !polyTwo.Ready() {
		return 0
	}

	best, bestSingle, ok := hullAndHullAxis(polyOne, polyTwo)
	if !ok {
		return 0
	}

	var point mgl64.Vec3
	switch best.kind {
	case faceOfOne:
		point = deepestVertex(polyTwo.WorldVertices(), best.normal)
	case faceOfTwo:
		point = deepestVertex(polyOne.WorldVertices(), best.normal.Mul(-1))
	default:
		midOne, dirOne, halfOne := supportingEdge(polyOne, best.edgeOne, best.normal.Mul(-1))
		midTwo, dirTwo, halfTwo := supportingEdge(polyTwo, best.edgeTwo, best.normal)
		point = contactPoint(midOne, dirOne, halfOne, midTwo, dirTwo, halfTwo, bestSingle.kind == faceOfTwo)
	}

	contact := data.next()
	contact.ContactNormal = best.normal
	contact.Penetration = best.penetration
	contact.ContactPoint = point
	contact.SetBodyData(one, two, data.Friction, data.Restitution)

	data.addContacts(1)
	return 1
}

// hullAndHullAxis returns the axis of least penetration and the best face axis. ok is
// false when an axis separates the polyhedra.
func hullAndHullAxis(one, two *actor.Polyhedron) (best, bestSingle hullAxis, ok bool) {
	best.penetration = math.MaxFloat64

	tryAxis := func(axis mgl64.Vec3, candidate hullAxis) bool {
		normal, penetration := overlapOnAxis(one, two, axis)
		if penetration < 0 {
			return false
		}
		if penetration < best.penetration {
			candidate.normal = normal
			candidate.penetration = penetration
			best = candidate
		}
		return true
	}

	for i := range one.Faces() {
		if normal, valid := one.FaceNormal(i); valid && !tryAxis(normal, hullAxis{kind: faceOfOne}) {
			return best, bestSingle, false
		}
	}
	for i := range two.Faces() {
		if normal, valid := two.FaceNormal(i); valid && !tryAxis(normal, hullAxis{kind: faceOfTwo}) {
			return best, bestSingle, false
		}
	}

	bestSingle = best

	for i := range one.Edges() {
		directionOne := one.EdgeDirection(i).Normalize()
		for j := range two.Edges() {
			axis := directionOne.Cross(two.EdgeDirection(j).Normalize())
			if axis.LenSqr() < degenerateAxisEpsilon {
				continue
			}
			if !tryAxis(axis.Normalize(), hullAxis{kind: edgePair, edgeOne: i, edgeTwo: j}) {
				return best, bestSingle, false
			}
		}
	}

	if best.penetration == math.MaxFloat64 {
		panic("collide: no contact axis found for overlapping hulls")
	}

	return best, bestSingle, true
}

// overlapOnAxis projects both polyhedra on the unit axis. The normal is the axis
// oriented from two toward one on the side where they overlap the least.
func overlapOnAxis(one, two *actor.Polyhedron, axis mgl64.Vec3) (mgl64.Vec3, float64) {
	loOne, hiOne := one.Project(axis)
	loTwo, hiTwo := two.Project(axis)

	// two above one along the axis
	above := hiOne - loTwo
	// two below one along the axis
	below := hiTwo - loOne

	if above < below {
		return axis.Mul(-1), above
	}
	return axis, below
}

func deepestVertex(vertices []mgl64.Vec3, direction mgl64.Vec3) mgl64.Vec3 {
	best := vertices[0]
	bestDot := best.Dot(direction)
	for _, v := range vertices[1:] {
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// supportingEdge returns the midpoint, unit direction and half length of the edge
// parallel to edge index that lies furthest along toward
func supportingEdge(poly *actor.Polyhedron, index int, toward mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, float64) {
	vertices := poly.WorldVertices()
	direction := poly.EdgeDirection(index).Normalize()

	best := index
	bestDot := math.Inf(-1)
	for i, edge := range poly.Edges() {
		if poly.EdgeDirection(i).Normalize().Cross(direction).LenSqr() > parallelDirectionEpsilon {
			continue
		}
		midpoint := vertices[edge.A].Add(vertices[edge.B]).Mul(0.5)
		if d := midpoint.Dot(toward); d > bestDot {
			best, bestDot = i, d
		}
	}

	edge := poly.Edges()[best]
	a, b := vertices[edge.A], vertices[edge.B]
	edgeDirection := b.Sub(a)
	length := edgeDirection.Len()

	return a.Add(b).Mul(0.5), edgeDirection.Mul(1.0 / length), length / 2
}
