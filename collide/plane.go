package collide

import (
	"github.com/akmonengine/impulse/actor"
)

// BoxAndHalfSpace generates one contact per box corner lying on the solid side of the
// plane, at most 4 for a box resting on a face
func BoxAndHalfSpace(box *actor.RigidBody, plane *actor.Plane, data *ContactData) int {
	return polyhedronAndHalfSpace(box, box.Shape.(*actor.Box).Polyhedron(), plane, data)
}

// HullAndHalfSpace generates one contact per hull vertex lying on the solid side of the plane
func HullAndHalfSpace(hull *actor.RigidBody, plane *actor.Plane, data *ContactData) int {
	return polyhedronAndHalfSpace(hull, hull.Shape.(actor.Polyhedral).Polyhedron(), plane, data)
}

func polyhedronAndHalfSpace(body *actor.RigidBody, poly *actor.Polyhedron, plane *actor.Plane, data *ContactData) int {
	if !data.HasMoreContacts() || !poly.Ready() {
		return 0
	}

	lo, _ := poly.Project(plane.Normal)
	if lo > plane.Offset+data.Tolerance {
		return 0
	}

	count := 0
	for _, vertex := range poly.WorldVertices() {
		distance := vertex.Dot(plane.Normal)
		if distance > plane.Offset+data.Tolerance {
			continue
		}

		contact := data.next()
		contact.ContactPoint = vertex
		contact.ContactNormal = plane.Normal
		contact.Penetration = plane.Offset - distance
		contact.SetBodyData(body, nil, data.Friction, data.Restitution)
		data.addContacts(1)
		count++

		if !data.HasMoreContacts() {
			break
		}
	}

	return count
}
