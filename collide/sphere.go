package collide

import (
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereAndSphere generates one contact when the spheres overlap. Coincident centres
// give no contact, there is no meaningful normal.
func SphereAndSphere(one, two *actor.RigidBody, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	sphereOne := one.Shape.(*actor.Sphere)
	sphereTwo := two.Shape.(*actor.Sphere)

	positionOne := one.Transform.Position
	positionTwo := two.Transform.Position

	midline := positionOne.Sub(positionTwo)
	size := midline.Len()
	if size <= 0 || size >= sphereOne.Radius+sphereTwo.Radius {
		return 0
	}

	contact := data.next()
	contact.ContactNormal = midline.Mul(1.0 / size)
	contact.ContactPoint = positionTwo.Add(midline.Mul(0.5))
	contact.Penetration = sphereOne.Radius + sphereTwo.Radius - size
	contact.SetBodyData(one, two, data.Friction, data.Restitution)

	data.addContacts(1)
	return 1
}

// SphereAndHalfSpace generates one contact when the sphere crosses into the solid side
// of the plane
func SphereAndHalfSpace(sphere *actor.RigidBody, plane *actor.Plane, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	shape := sphere.Shape.(*actor.Sphere)
	position := sphere.Transform.Position

	distance := plane.Normal.Dot(position) - shape.Radius - plane.Offset
	if distance >= 0 {
		return 0
	}

	contact := data.next()
	contact.ContactNormal = plane.Normal
	contact.Penetration = -distance
	contact.ContactPoint = position.Sub(plane.Normal.Mul(distance + shape.Radius))
	contact.SetBodyData(sphere, nil, data.Friction, data.Restitution)

	data.addContacts(1)
	return 1
}

// SphereAndTruePlane treats the plane as two-sided: the sphere is pushed back to
// whichever side its centre is on
func SphereAndTruePlane(sphere *actor.RigidBody, plane *actor.Plane, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	shape := sphere.Shape.(*actor.Sphere)
	position := sphere.Transform.Position

	centreDistance := plane.Normal.Dot(position) - plane.Offset
	if centreDistance*centreDistance > shape.Radius*shape.Radius {
		return 0
	}

	normal := plane.Normal
	penetration := -centreDistance
	if centreDistance < 0 {
		normal = normal.Mul(-1)
		penetration = -penetration
	}
	penetration += shape.Radius

	contact := data.next()
	contact.ContactNormal = normal
	contact.Penetration = penetration
	contact.ContactPoint = position.Sub(plane.Normal.Mul(centreDistance))
	contact.SetBodyData(sphere, nil, data.Friction, data.Restitution)

	data.addContacts(1)
	return 1
}

// SphereAndHull generates one contact between a sphere and a convex hull. GJK confirms
// the overlap. When the centre lies outside a single face plane that face gives the
// normal, otherwise the centre faces an edge or a corner and EPA measures the contact.
func SphereAndHull(sphere, hull *actor.RigidBody, data *ContactData) int {
	if !data.HasMoreContacts() {
		return 0
	}
	shape := sphere.Shape.(*actor.Sphere)
	poly := hull.Shape.(actor.Polyhedral).Polyhedron()
	if !poly.Ready() {
		return 0
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()
	if !gjk.GJK(sphere, hull, simplex) {
		return 0
	}

	centre := sphere.Transform.Position
	vertices := poly.WorldVertices()

	bestDistance := math.Inf(-1)
	var bestNormal mgl64.Vec3
	outside := 0
	for i, face := range poly.Faces() {
		normal, ok := poly.FaceNormal(i)
		if !ok {
			continue
		}
		distance := normal.Dot(centre.Sub(vertices[face.Indices[0]]))
		if distance > 0 {
			outside++
		}
		if distance > bestDistance {
			bestDistance = distance
			bestNormal = normal
		}
	}
	if math.IsInf(bestDistance, -1) {
		return 0
	}

	penetration := shape.Radius - bestDistance
	point := centre.Sub(bestNormal.Mul(bestDistance))

	if outside > 1 {
		// the Minkowski normal points from the sphere into the hull
		if normal, depth, err := gjk.Penetration(sphere, hull, simplex); err == nil {
			bestNormal = normal.Mul(-1)
			penetration = depth
			point = centre.Add(normal.Mul(shape.Radius - depth))
		}
	}

	if penetration <= 0 {
		return 0
	}

	contact := data.next()
	contact.ContactNormal = bestNormal
	contact.Penetration = penetration
	contact.ContactPoint = point
	contact.SetBodyData(sphere, hull, data.Friction, data.Restitution)

	data.addContacts(1)
	return 1
}
