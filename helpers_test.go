package impulse

import (
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func createTestBox(position mgl64.Vec3, halfExtents mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: halfExtents},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createTestSphere(position mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: radius},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createTestTetrahedron(position mgl64.Vec3, size float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		NewTetrahedron(size),
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createTestPlane() *actor.RigidBody {
	return NewGround(mgl64.Vec3{0, 1, 0}, 0)
}

func assertVec3InDelta(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, expected[i], actual[i], delta, msgAndArgs...)
	}
}

// pairSet returns the pairs as normalized keys, to compare them without ordering
func pairSet(pairs []Pair) map[pairKey]int {
	set := make(map[pairKey]int, len(pairs))
	for _, pair := range pairs {
		set[makePairKey(pair.BodyA, pair.BodyB)]++
	}
	return set
}
