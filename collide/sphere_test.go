package collide

import (
	"math"
	"testing"

	"cogentcore.org/core/base/randx"
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereAndSphere(t *testing.T) {
	tests := []struct {
		name                string
		positionTwo         mgl64.Vec3
		radiusOne           float64
		radiusTwo           float64
		expectedCount       int
		expectedPenetration float64
		expectedNormal      mgl64.Vec3
		expectedPoint       mgl64.Vec3
	}{
		{"overlapping along X", mgl64.Vec3{1.5, 0, 0}, 1, 1, 1, 0.5, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0.75, 0, 0}},
		{"overlapping along Y", mgl64.Vec3{0, -2, 0}, 1, 1.5, 1, 0.5, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}},
		{"touching", mgl64.Vec3{2, 0, 0}, 1, 1, 0, 0, mgl64.Vec3{}, mgl64.Vec3{}},
		{"separated", mgl64.Vec3{3, 0, 0}, 1, 1, 0, 0, mgl64.Vec3{}, mgl64.Vec3{}},
		{"coincident centres", mgl64.Vec3{0, 0, 0}, 1, 1, 0, 0, mgl64.Vec3{}, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			one := createSphere(mgl64.Vec3{0, 0, 0}, tt.radiusOne)
			two := createSphere(tt.positionTwo, tt.radiusTwo)
			data := NewContactData(4)

			require.Equal(t, tt.expectedCount, SphereAndSphere(one, two, data))
			if tt.expectedCount == 0 {
				assert.Equal(t, 0, data.Count())
				return
			}

			contact := data.Slice()[0]
			assert.InDelta(t, tt.expectedPenetration, contact.Penetration, 1e-12)
			assertVec3InDelta(t, tt.expectedNormal, contact.ContactNormal, 1e-12)
			assertVec3InDelta(t, tt.expectedPoint, contact.ContactPoint, 1e-12)
		})
	}
}

func TestSphereAndSphere_RandomPairs(t *testing.T) {
	rnd := randx.NewSysRand(5)

	for i := range 500 {
		r1, r2 := 0.1+rnd.Float64(), 0.1+rnd.Float64()
		direction := mgl64.Vec3{rnd.Float64() - 0.5, rnd.Float64() - 0.5, rnd.Float64() - 0.5}
		if direction.LenSqr() < 1e-6 {
			continue
		}
		direction = direction.Normalize()
		distance := rnd.Float64() * 3

		one := createSphere(mgl64.Vec3{1, 2, 3}, r1)
		two := createSphere(mgl64.Vec3{1, 2, 3}.Add(direction.Mul(distance)), r2)
		data := NewContactData(1)

		count := SphereAndSphere(one, two, data)
		if distance <= 0 || distance >= r1+r2 {
			require.Equal(t, 0, count, "case %d", i)
			continue
		}

		require.Equal(t, 1, count, "case %d", i)
		contact := data.Slice()[0]
		assert.InDelta(t, r1+r2-distance, contact.Penetration, 1e-9, "case %d", i)
		// from two toward one
		assertVec3InDelta(t, direction.Mul(-1), contact.ContactNormal, 1e-9, "case %d", i)
	}
}

func TestSphereAndHalfSpace(t *testing.T) {
	ground := &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Offset: 0}

	t.Run("resting sphere", func(t *testing.T) {
		sphere := createSphere(mgl64.Vec3{0, 0.5, 0}, 1)
		data := NewContactData(4)

		require.Equal(t, 1, SphereAndHalfSpace(sphere, ground, data))
		contact := data.Slice()[0]
		assert.InDelta(t, 0.5, contact.Penetration, 1e-12)
		assertVec3InDelta(t, mgl64.Vec3{0, 1, 0}, contact.ContactNormal, 1e-12)
		assertVec3InDelta(t, mgl64.Vec3{0, 0, 0}, contact.ContactPoint, 1e-12)
		assert.Same(t, sphere, contact.Bodies[0])
		assert.Nil(t, contact.Bodies[1])
	})

	t.Run("positive side", func(t *testing.T) {
		for _, height := range []float64{1.0, 1.5, 10} {
			assert.Equal(t, 0, SphereAndHalfSpace(createSphere(mgl64.Vec3{3, height, -2}, 1), ground, NewContactData(4)))
		}
	})

	t.Run("just crossing", func(t *testing.T) {
		const epsilon = 1e-4
		data := NewContactData(4)

		require.Equal(t, 1, SphereAndHalfSpace(createSphere(mgl64.Vec3{0, 1 - epsilon, 0}, 1), ground, data))
		assert.InDelta(t, epsilon, data.Slice()[0].Penetration, 1e-12)
	})

	t.Run("tilted plane with offset", func(t *testing.T) {
		plane := &actor.Plane{Normal: mgl64.Vec3{1, 1, 0}.Normalize(), Offset: 1}
		centre := plane.Normal.Mul(1.5)
		data := NewContactData(4)

		require.Equal(t, 1, SphereAndHalfSpace(createSphere(centre, 1), plane, data))
		contact := data.Slice()[0]
		assert.InDelta(t, 0.5, contact.Penetration, 1e-12)
		assertVec3InDelta(t, plane.Normal, contact.ContactPoint, 1e-12)
	})
}

func TestSphereAndTruePlane(t *testing.T) {
	plane := &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Offset: 0}

	tests := []struct {
		name                string
		height              float64
		expectedCount       int
		expectedNormal      mgl64.Vec3
		expectedPenetration float64
	}{
		{"above", 0.5, 1, mgl64.Vec3{0, 1, 0}, 0.5},
		{"below", -0.25, 1, mgl64.Vec3{0, -1, 0}, 0.75},
		{"out of reach above", 1.5, 0, mgl64.Vec3{}, 0},
		{"out of reach below", -1.5, 0, mgl64.Vec3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := NewContactData(4)
			require.Equal(t, tt.expectedCount, SphereAndTruePlane(createSphere(mgl64.Vec3{0, tt.height, 0}, 1), plane, data))
			if tt.expectedCount == 0 {
				return
			}

			contact := data.Slice()[0]
			assertVec3InDelta(t, tt.expectedNormal, contact.ContactNormal, 1e-12)
			assert.InDelta(t, tt.expectedPenetration, contact.Penetration, 1e-12)
			assert.InDelta(t, 0.0, contact.ContactPoint.Y(), 1e-12)
		})
	}
}

func TestSphereAndHull(t *testing.T) {
	box := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent())

	t.Run("on top face", func(t *testing.T) {
		sphere := createSphere(mgl64.Vec3{0.2, 1.3, -0.1}, 0.5)
		data := NewContactData(4)

		require.Equal(t, 1, SphereAndHull(sphere, box, data))
		contact := data.Slice()[0]
		assert.InDelta(t, 0.2, contact.Penetration, 1e-9)
		assertVec3InDelta(t, mgl64.Vec3{0, 1, 0}, contact.ContactNormal, 1e-9)
		assertVec3InDelta(t, mgl64.Vec3{0.2, 1, -0.1}, contact.ContactPoint, 1e-9)
		assert.Same(t, sphere, contact.Bodies[0])
		assert.Same(t, box, contact.Bodies[1])
	})

	t.Run("hull shape", func(t *testing.T) {
		hull := createCubeHull(mgl64.Vec3{0, 0, 0}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0}))
		sphere := createSphere(mgl64.Vec3{0, -1.3, 0}, 0.5)
		data := NewContactData(4)

		require.Equal(t, 1, SphereAndHull(sphere, hull, data))
		assert.InDelta(t, 0.2, data.Slice()[0].Penetration, 1e-9)
		assertVec3InDelta(t, mgl64.Vec3{0, -1, 0}, data.Slice()[0].ContactNormal, 1e-9)
	})

	t.Run("separated", func(t *testing.T) {
		assert.Equal(t, 0, SphereAndHull(createSphere(mgl64.Vec3{0, 1.6, 0}, 0.5), box, NewContactData(4)))
		assert.Equal(t, 0, SphereAndHull(createSphere(mgl64.Vec3{1.4, 1.4, 0}, 0.5), box, NewContactData(4)))
	})

	t.Run("near an edge", func(t *testing.T) {
		data := NewContactData(4)
		require.Equal(t, 1, SphereAndHull(createSphere(mgl64.Vec3{1.3, 1.3, 0}, 0.5), box, data))

		// closest hull point is (1, 1, 0), 0.3*sqrt(2) away from the centre
		contact := data.Slice()[0]
		assert.InDelta(t, 0.5-0.3*math.Sqrt2, contact.Penetration, 1e-2)
		assertVec3InDelta(t, mgl64.Vec3{math.Sqrt2 / 2, math.Sqrt2 / 2, 0}, contact.ContactNormal, 5e-2)
		assertVec3InDelta(t, mgl64.Vec3{1, 1, 0}, contact.ContactPoint, 5e-2)
	})
}
