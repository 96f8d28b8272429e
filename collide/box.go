package collide

import (
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// cross products shorter than this come from (nearly) parallel edges
	degenerateAxisEpsilon = 1e-4
	// edge closest-approach denominators below this mean parallel edges
	parallelEdgeEpsilon = 1e-4
	// edgeAxisOffset is the index of the first edge-edge axis in the 15 box-box axes
	edgeAxisOffset = 6
)

// BoxAndSphere generates one contact when the sphere touches the box. The box is the
// first body of the contact.
func BoxAndSphere(box, sphere *actor.RigidBody, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	shape := box.Shape.(*actor.Box)
	radius := sphere.Shape.(*actor.Sphere).Radius
	half := shape.HalfExtents

	centre := sphere.Transform.Position
	relCentre := box.Transform.InverseTransformPoint(centre)

	for i := range 3 {
		if math.Abs(relCentre[i])-radius > half[i] {
			return 0
		}
	}

	var closest mgl64.Vec3
	for i := range 3 {
		closest[i] = mgl64.Clamp(relCentre[i], -half[i], half[i])
	}

	distanceSqr := closest.Sub(relCentre).LenSqr()
	if distanceSqr > radius*radius {
		return 0
	}

	var normal, point mgl64.Vec3
	var penetration float64
	if distanceSqr > 0 {
		point = box.Transform.TransformPoint(closest)
		normal = point.Sub(centre).Normalize()
		penetration = radius - math.Sqrt(distanceSqr)
	} else {
		// centre inside the box: push out through the nearest face
		axis := 0
		depth := half[0] - math.Abs(relCentre[0])
		for i := 1; i < 3; i++ {
			if d := half[i] - math.Abs(relCentre[i]); d < depth {
				axis, depth = i, d
			}
		}
		sign := 1.0
		if relCentre[axis] < 0 {
			sign = -1.0
		}

		face := relCentre
		face[axis] = sign * half[axis]
		point = box.Transform.TransformPoint(face)
		normal = box.Transform.Axis(axis).Mul(-sign)
		penetration = radius + depth
	}

	contact := data.next()
	contact.ContactNormal = normal
	contact.ContactPoint = point
	contact.Penetration = penetration
	contact.SetBodyData(box, sphere, data.Friction, data.Restitution)

	data.addContacts(1)
	return 1
}

// BoxAndBox generates one contact between two oriented boxes, along the axis of least
// penetration among the 15 candidate axes: 3 face axes of each box and 9 edge-edge
// cross products. The caller must only call it for boxes known to overlap.
func BoxAndBox(one, two *actor.RigidBody, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	boxOne := one.Shape.(*actor.Box)
	boxTwo := two.Shape.(*actor.Box)

	toCentre := two.Transform.Position.Sub(one.Transform.Position)

	best, bestSingleAxis, penetration, separated := boxAndBoxAxis(one, two, boxOne, boxTwo, toCentre)
	if separated {
		return 0
	}

	contact := data.next()
	switch {
	case best < 3:
		// a vertex of box two on a face of box one
		fillPointFaceBoxBox(contact, one, two, boxTwo, toCentre, best, penetration)
	case best < edgeAxisOffset:
		// a vertex of box one on a face of box two
		fillPointFaceBoxBox(contact, two, one, boxOne, toCentre.Mul(-1), best-3, penetration)
	default:
		fillEdgeEdgeBoxBox(contact, one, two, boxOne, boxTwo, toCentre, best-edgeAxisOffset, bestSingleAxis, penetration)
	}
	contact.Friction, contact.Restitution = data.Friction, data.Restitution

	data.addContacts(1)
	return 1
}

// boxAndBoxAxis finds the axis of least penetration. Axes 0-2 are the axes of box one,
// 3-5 those of box two, 6+i*3+j the cross product of axis i of one with axis j of two.
// bestSingleAxis is the best of the 6 face axes. Near-parallel edge pairs are skipped.
func boxAndBoxAxis(one, two *actor.RigidBody, boxOne, boxTwo *actor.Box, toCentre mgl64.Vec3) (best, bestSingleAxis int, penetration float64, separated bool) {
	best = -1
	penetration = math.MaxFloat64

	tryAxis := func(axis mgl64.Vec3, index int) bool {
		if axis.LenSqr() < degenerateAxisEpsilon {
			return true
		}
		axis = axis.Normalize()

		overlap := penetrationOnAxis(one, two, boxOne, boxTwo, axis, toCentre)
		if overlap < 0 {
			return false
		}
		if overlap < penetration {
			penetration = overlap
			best = index
		}
		return true
	}

	for i := range 3 {
		if !tryAxis(one.Transform.Axis(i), i) {
			return 0, 0, 0, true
		}
	}
	for i := range 3 {
		if !tryAxis(two.Transform.Axis(i), i+3) {
			return 0, 0, 0, true
		}
	}

	bestSingleAxis = best

	for i := range 3 {
		for j := range 3 {
			axis := one.Transform.Axis(i).Cross(two.Transform.Axis(j))
			if !tryAxis(axis, edgeAxisOffset+i*3+j) {
				return 0, 0, 0, true
			}
		}
	}

	if best < 0 {
		panic("collide: no contact axis found for overlapping boxes")
	}

	return best, bestSingleAxis, penetration, false
}

// transformToAxis returns the half length of the box projected onto axis
func transformToAxis(body *actor.RigidBody, box *actor.Box, axis mgl64.Vec3) float64 {
	return box.HalfExtents.X()*math.Abs(axis.Dot(body.Transform.Axis(0))) +
		box.HalfExtents.Y()*math.Abs(axis.Dot(body.Transform.Axis(1))) +
		box.HalfExtents.Z()*math.Abs(axis.Dot(body.Transform.Axis(2)))
}

// penetrationOnAxis returns how much the boxes overlap along axis, negative when
// the axis separates them
func penetrationOnAxis(one, two *actor.RigidBody, boxOne, boxTwo *actor.Box, axis, toCentre mgl64.Vec3) float64 {
	oneProject := transformToAxis(one, boxOne, axis)
	twoProject := transformToAxis(two, boxTwo, axis)
	distance := math.Abs(toCentre.Dot(axis))

	return oneProject + twoProject - distance
}

// fillPointFaceBoxBox sets the contact for the vertex of box two deepest in the face
// of box one given by axis
func fillPointFaceBoxBox(contact *constraint.Contact, one, two *actor.RigidBody, boxTwo *actor.Box, toCentre mgl64.Vec3, axis int, penetration float64) {
	normal := one.Transform.Axis(axis)
	if normal.Dot(toCentre) > 0 {
		normal = normal.Mul(-1)
	}

	vertex := boxTwo.HalfExtents
	for i := range 3 {
		if two.Transform.Axis(i).Dot(normal) < 0 {
			vertex[i] = -vertex[i]
		}
	}

	contact.ContactNormal = normal
	contact.Penetration = penetration
	contact.ContactPoint = two.Transform.TransformPoint(vertex)
	contact.Bodies = [2]*actor.RigidBody{one, two}
}

// fillEdgeEdgeBoxBox sets the contact at the closest approach of the two touching edges
func fillEdgeEdgeBoxBox(contact *constraint.Contact, one, two *actor.RigidBody, boxOne, boxTwo *actor.Box, toCentre mgl64.Vec3, best, bestSingleAxis int, penetration float64) {
	oneAxisIndex := best / 3
	twoAxisIndex := best % 3
	oneAxis := one.Transform.Axis(oneAxisIndex)
	twoAxis := two.Transform.Axis(twoAxisIndex)

	axis := oneAxis.Cross(twoAxis).Normalize()
	if axis.Dot(toCentre) > 0 {
		axis = axis.Mul(-1)
	}

	// pick the edge of each box facing the other one, as its midpoint
	ptOnOneEdge := boxOne.HalfExtents
	ptOnTwoEdge := boxTwo.HalfExtents
	for i := range 3 {
		if i == oneAxisIndex {
			ptOnOneEdge[i] = 0
		} else if one.Transform.Axis(i).Dot(axis) > 0 {
			ptOnOneEdge[i] = -ptOnOneEdge[i]
		}

		if i == twoAxisIndex {
			ptOnTwoEdge[i] = 0
		} else if two.Transform.Axis(i).Dot(axis) < 0 {
			ptOnTwoEdge[i] = -ptOnTwoEdge[i]
		}
	}

	ptOnOneEdge = one.Transform.TransformPoint(ptOnOneEdge)
	ptOnTwoEdge = two.Transform.TransformPoint(ptOnTwoEdge)

	vertex := contactPoint(
		ptOnOneEdge, oneAxis, boxOne.HalfExtents[oneAxisIndex],
		ptOnTwoEdge, twoAxis, boxTwo.HalfExtents[twoAxisIndex],
		bestSingleAxis > 2,
	)

	contact.ContactNormal = axis
	contact.Penetration = penetration
	contact.ContactPoint = vertex
	contact.Bodies = [2]*actor.RigidBody{one, two}
}

// contactPoint returns the midpoint of the closest approach between two edges given by
// their midpoints, unit directions and half lengths. For parallel edges, or when the
// closest approach lies outside either edge, it falls back to the midpoint of edge one
// when useOne is set, of edge two otherwise.
func contactPoint(pOne, dOne mgl64.Vec3, oneSize float64, pTwo, dTwo mgl64.Vec3, twoSize float64, useOne bool) mgl64.Vec3 {
	fallback := pTwo
	if useOne {
		fallback = pOne
	}

	smOne := dOne.LenSqr()
	smTwo := dTwo.LenSqr()
	dpOneTwo := dTwo.Dot(dOne)

	toSt := pOne.Sub(pTwo)
	dpStaOne := dOne.Dot(toSt)
	dpStaTwo := dTwo.Dot(toSt)

	denom := smOne*smTwo - dpOneTwo*dpOneTwo
	if math.Abs(denom) < parallelEdgeEpsilon {
		return fallback
	}

	mua := (dpOneTwo*dpStaTwo - smTwo*dpStaOne) / denom
	mub := (smOne*dpStaTwo - dpOneTwo*dpStaOne) / denom

	if mua > oneSize || mua < -oneSize || mub > twoSize || mub < -twoSize {
		return fallback
	}

	cOne := pOne.Add(dOne.Mul(mua))
	cTwo := pTwo.Add(dTwo.Mul(mub))

	return cOne.Mul(0.5).Add(cTwo.Mul(0.5))
}
