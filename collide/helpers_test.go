package collide

import (
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func createSphere(position mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: radius},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createBox(position, halfExtents mgl64.Vec3, rotation mgl64.Quat) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, rotation),
		&actor.Box{HalfExtents: halfExtents},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createCubeHull(position mgl64.Vec3, rotation mgl64.Quat) *actor.RigidBody {
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		vertices[i] = mgl64.Vec3{-1, -1, -1}
		if i&1 != 0 {
			vertices[i][0] = 1
		}
		if i&2 != 0 {
			vertices[i][1] = 1
		}
		if i&4 != 0 {
			vertices[i][2] = 1
		}
	}
	hull := actor.NewConvexHull(vertices, [][]int{
		{1, 3, 7, 5}, {0, 4, 6, 2}, {2, 6, 7, 3}, {0, 1, 5, 4}, {4, 5, 7, 6}, {0, 2, 3, 1},
	})

	return actor.NewRigidBody(actor.NewTransformAt(position, rotation), hull, actor.BodyTypeDynamic, 1.0)
}

// createTetrahedron places the corner at the local origin on position, with the
// opposite face pointing up
func createTetrahedron(position mgl64.Vec3) *actor.RigidBody {
	hull := actor.NewConvexHull(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	)
	rotation := mgl64.QuatBetweenVectors(mgl64.Vec3{1, 1, 1}.Normalize(), mgl64.Vec3{0, 1, 0})

	return actor.NewRigidBody(actor.NewTransformAt(position, rotation), hull, actor.BodyTypeDynamic, 1.0)
}

func fullContactData() *ContactData {
	data := NewContactData(1)
	data.addContacts(1)
	return data
}

func assertVec3InDelta(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, expected[i], actual[i], delta, msgAndArgs...)
	}
}
