package impulse

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/collide"
	"github.com/akmonengine/impulse/constraint"
	"github.com/akmonengine/impulse/gjk"
	"github.com/akmonengine/impulse/sat"
)

// BroadPhase rebuilds the grid from the bodies and returns the candidate pairs
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody) []Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	return spatialGrid.FindPairs(bodies)
}

// GenerateContacts writes the contacts between two bodies into data and returns how many
// were written. The pair friction and restitution are combined from both materials.
// Unsupported shape pairs, such as two planes, produce no contact.
func GenerateContacts(a, b *actor.RigidBody, data *collide.ContactData) int {
	count, _ := generateContacts(a, b, data)
	return count
}

func generateContacts(a, b *actor.RigidBody, data *collide.ContactData) (int, bool) {
	data.Friction = constraint.ComputeFriction(a.Material, b.Material)
	data.Restitution = constraint.ComputeRestitution(a.Material, b.Material)

	// order the pair so that a has the lowest kind, halving the cases below
	if a.Shape.Kind() > b.Shape.Kind() {
		a, b = b, a
	}

	switch shapeA := a.Shape.(type) {
	case *actor.Sphere:
		switch shapeB := b.Shape.(type) {
		case *actor.Sphere:
			return collide.SphereAndSphere(a, b, data), true
		case *actor.Box:
			return collide.BoxAndSphere(b, a, data), true
		case *actor.ConvexHull:
			return collide.SphereAndHull(a, b, data), true
		case *actor.Plane:
			return collide.SphereAndHalfSpace(a, shapeB, data), true
		}
	case *actor.Box:
		switch shapeB := b.Shape.(type) {
		case *actor.Box:
			if !sat.TestIntersection(shapeA.Polyhedron(), shapeB.Polyhedron()) {
				return 0, true
			}
			return collide.BoxAndBox(a, b, data), true
		case *actor.ConvexHull:
			return collide.HullAndHull(a, b, data), true
		case *actor.Plane:
			return collide.BoxAndHalfSpace(a, shapeB, data), true
		}
	case *actor.ConvexHull:
		switch shapeB := b.Shape.(type) {
		case *actor.ConvexHull:
			return collide.HullAndHull(a, b, data), true
		case *actor.Plane:
			return collide.HullAndHalfSpace(a, shapeB, data), true
		}
	}

	return 0, false
}

// Intersects reports whether two bodies overlap, without generating contacts. It is used
// for triggers.
func Intersects(a, b *actor.RigidBody) bool {
	if a.Shape.Kind() > b.Shape.Kind() {
		a, b = b, a
	}

	if plane, ok := b.Shape.(*actor.Plane); ok {
		return intersectsPlane(a, plane)
	}

	polyA, okA := a.Shape.(actor.Polyhedral)
	polyB, okB := b.Shape.(actor.Polyhedral)
	if okA && okB {
		return sat.TestIntersection(polyA.Polyhedron(), polyB.Polyhedron())
	}

	if sphereA, ok := a.Shape.(*actor.Sphere); ok {
		if sphereB, ok := b.Shape.(*actor.Sphere); ok {
			radii := sphereA.Radius + sphereB.Radius
			return a.Transform.Position.Sub(b.Transform.Position).LenSqr() <= radii*radii
		}
	}

	return gjk.Overlap(a, b)
}

func intersectsPlane(body *actor.RigidBody, plane *actor.Plane) bool {
	switch shape := body.Shape.(type) {
	case *actor.Sphere:
		return body.Transform.Position.Dot(plane.Normal)-shape.Radius <= plane.Offset
	case actor.Polyhedral:
		poly := shape.Polyhedron()
		if !poly.Ready() {
			return false
		}
		lo, _ := poly.Project(plane.Normal)
		return lo <= plane.Offset
	}
	return false
}
