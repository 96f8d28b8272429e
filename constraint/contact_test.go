package constraint

import (
	"math"
	"testing"

	"cogentcore.org/core/base/randx"
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60.0

// Helper function to create a dynamic unit sphere
func createDynamicBody(position mgl64.Vec3, velocity mgl64.Vec3, density float64) *actor.RigidBody {
	rb := actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: 1.0},
		actor.BodyTypeDynamic,
		density,
	)
	rb.Velocity = velocity

	return rb
}

// Helper function to create a dynamic box with half extents of 1
func createDynamicBox(position mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func createStaticBody(position mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		actor.BodyTypeStatic,
		0.0,
	)
}

func TestCalculateInternals_SwapsMissingFirstBody(t *testing.T) {
	body := createDynamicBody(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 1.0)
	contact := Contact{
		Bodies:        [2]*actor.RigidBody{nil, body},
		ContactPoint:  mgl64.Vec3{0, 0, 0},
		ContactNormal: mgl64.Vec3{0, -1, 0},
	}

	contact.CalculateInternals(dt)

	assert.Same(t, body, contact.Bodies[0])
	assert.Nil(t, contact.Bodies[1])
	assertVec3InDelta(t, mgl64.Vec3{0, 1, 0}, contact.ContactNormal, 1e-12)
	assertVec3InDelta(t, mgl64.Vec3{0, -1, 0}, contact.RelativeContactPosition(0), 1e-12)
}

func TestCalculateInternals_PanicsWithoutBodies(t *testing.T) {
	contact := Contact{ContactNormal: mgl64.Vec3{0, 1, 0}}

	assert.Panics(t, func() {
		contact.CalculateInternals(dt)
	})
}

func TestCalculateInternals_BasisIsOrthonormal(t *testing.T) {
	body := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{}, 1.0)
	rnd := randx.NewSysRand(3)

	normals := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-1, 0, 0}, {0, -1, 0}, {1, 1, 1}}
	for range 50 {
		normals = append(normals, mgl64.Vec3{rnd.Float64() - 0.5, rnd.Float64() - 0.5, rnd.Float64() - 0.5})
	}

	for _, normal := range normals {
		if normal.LenSqr() < 1e-6 {
			continue
		}
		normal = normal.Normalize()
		contact := Contact{Bodies: [2]*actor.RigidBody{body, nil}, ContactNormal: normal}
		contact.CalculateInternals(dt)

		basis := contact.ContactToWorld()
		assertVec3InDelta(t, normal, basis.Col(0), 1e-12)
		assert.True(t, basis.Transpose().Mul3(basis).ApproxEqualThreshold(mgl64.Ident3(), 1e-9), "normal %v", normal)
		assert.InDelta(t, 1.0, basis.Det(), 1e-9, "normal %v", normal)
	}
}

func TestCalculateInternals_ClosingVelocityIsNegative(t *testing.T) {
	falling := createDynamicBody(mgl64.Vec3{0, 0.9, 0}, mgl64.Vec3{0, -3, 0}, 1.0)
	contact := Contact{
		Bodies:        [2]*actor.RigidBody{falling, nil},
		ContactPoint:  mgl64.Vec3{0, -0.1, 0},
		ContactNormal: mgl64.Vec3{0, 1, 0},
	}

	contact.CalculateInternals(dt)
	assert.InDelta(t, -3.0, contact.ContactVelocity().X(), 1e-12)

	// two bodies: velocity of the first relative to the second
	other := createDynamicBody(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 1, 0}, 1.0)
	contact.Bodies[1] = other
	contact.CalculateInternals(dt)
	assert.InDelta(t, -4.0, contact.ContactVelocity().X(), 1e-12)
}

func TestCalculateDesiredDeltaVelocity(t *testing.T) {
	tests := []struct {
		name         string
		velocity     mgl64.Vec3
		acceleration mgl64.Vec3
		restitution  float64
		expected     float64
	}{
		{"inelastic", mgl64.Vec3{0, -2, 0}, mgl64.Vec3{}, 0.0, 2.0},
		{"bouncing", mgl64.Vec3{0, -2, 0}, mgl64.Vec3{}, 0.5, 3.0},
		{"slow contact does not bounce", mgl64.Vec3{0, -0.2, 0}, mgl64.Vec3{}, 0.9, 0.2},
		{"velocity from gravity is not bounced", mgl64.Vec3{0, -2, 0}, mgl64.Vec3{0, -60, 0}, 0.5, 2.5},
		{"separating", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 0.0, -1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := createDynamicBody(mgl64.Vec3{0, 1, 0}, tt.velocity, 1.0)
			body.LastFrameAcceleration = tt.acceleration
			contact := Contact{
				Bodies:        [2]*actor.RigidBody{body, nil},
				ContactPoint:  mgl64.Vec3{0, 0, 0},
				ContactNormal: mgl64.Vec3{0, 1, 0},
				Restitution:   tt.restitution,
			}

			contact.CalculateInternals(dt)
			assert.InDelta(t, tt.expected, contact.DesiredDeltaVelocity(), 1e-9)
		})
	}
}

func TestMatchAwakeState(t *testing.T) {
	t.Run("awake body wakes sleeping body", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 1.0)
		b := createDynamicBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}, 1.0)
		b.SetAwake(false)

		contact := Contact{Bodies: [2]*actor.RigidBody{a, b}}
		contact.MatchAwakeState()
		assert.True(t, b.IsAwake)

		a.SetAwake(false)
		contact.MatchAwakeState()
		assert.True(t, a.IsAwake)
	})

	t.Run("missing body never wakes", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{}, 1.0)
		a.SetAwake(false)

		contact := Contact{Bodies: [2]*actor.RigidBody{a, nil}}
		contact.MatchAwakeState()
		assert.False(t, a.IsAwake)
	})

	t.Run("immovable body never wakes", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{}, 1.0)
		a.SetAwake(false)
		ground := createStaticBody(mgl64.Vec3{0, -2, 0})

		contact := Contact{Bodies: [2]*actor.RigidBody{a, ground}}
		contact.MatchAwakeState()
		assert.False(t, a.IsAwake)
	})

	t.Run("both asleep stay asleep", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{}, mgl64.Vec3{}, 1.0)
		b := createDynamicBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}, 1.0)
		a.SetAwake(false)
		b.SetAwake(false)

		contact := Contact{Bodies: [2]*actor.RigidBody{a, b}}
		contact.MatchAwakeState()
		assert.False(t, a.IsAwake)
		assert.False(t, b.IsAwake)
	})
}

func TestApplyVelocityChange_HeadOn(t *testing.T) {
	tests := []struct {
		name     string
		friction float64
	}{
		{"frictionless", 0.0},
		{"frictional", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, 1.0)
			b := createDynamicBody(mgl64.Vec3{1.8, 0, 0}, mgl64.Vec3{-2, 0, 0}, 1.0)
			contact := Contact{
				Bodies:        [2]*actor.RigidBody{a, b},
				ContactPoint:  mgl64.Vec3{0.9, 0, 0},
				ContactNormal: mgl64.Vec3{-1, 0, 0},
				Friction:      tt.friction,
			}

			contact.CalculateInternals(dt)
			require.InDelta(t, -4.0, contact.ContactVelocity().X(), 1e-12)

			var velocityChange, rotationChange [2]mgl64.Vec3
			contact.ApplyVelocityChange(&velocityChange, &rotationChange)

			// equal masses stop each other, momentum is conserved
			assertVec3InDelta(t, mgl64.Vec3{}, a.Velocity, 1e-9)
			assertVec3InDelta(t, mgl64.Vec3{}, b.Velocity, 1e-9)
			assertVec3InDelta(t, velocityChange[0].Mul(-1), velocityChange[1], 1e-9)
			assertVec3InDelta(t, mgl64.Vec3{}, rotationChange[0], 1e-9)
		})
	}
}

func TestApplyVelocityChange_StaticSecondBodyIsUnchanged(t *testing.T) {
	box := createDynamicBox(mgl64.Vec3{0, 1.9, 0})
	box.Velocity = mgl64.Vec3{1, -2, 0}
	ground := createStaticBody(mgl64.Vec3{0, 0, 0})

	contact := Contact{
		Bodies:        [2]*actor.RigidBody{box, ground},
		ContactPoint:  mgl64.Vec3{0.5, 0.9, 0.5},
		ContactNormal: mgl64.Vec3{0, 1, 0},
		Friction:      0.3,
	}
	contact.CalculateInternals(dt)

	var velocityChange, rotationChange [2]mgl64.Vec3
	contact.ApplyVelocityChange(&velocityChange, &rotationChange)

	assert.Equal(t, mgl64.Vec3{}, ground.Velocity)
	assert.Equal(t, mgl64.Vec3{}, ground.AngularVelocity)
	assert.Equal(t, mgl64.Vec3{}, velocityChange[1])
	assert.NotEqual(t, mgl64.Vec3{}, rotationChange[0])
}

func TestApplyVelocityChange_ImmovablePairDoesNothing(t *testing.T) {
	a := createStaticBody(mgl64.Vec3{0, 0, 0})
	b := createStaticBody(mgl64.Vec3{1.5, 0, 0})
	contact := Contact{
		Bodies:        [2]*actor.RigidBody{a, b},
		ContactPoint:  mgl64.Vec3{0.75, 0, 0},
		ContactNormal: mgl64.Vec3{-1, 0, 0},
		Friction:      0.5,
	}
	contact.CalculateInternals(dt)

	velocityChange := [2]mgl64.Vec3{{1, 1, 1}, {1, 1, 1}}
	var rotationChange [2]mgl64.Vec3
	contact.ApplyVelocityChange(&velocityChange, &rotationChange)

	assert.Equal(t, [2]mgl64.Vec3{}, velocityChange)
}

func TestApplyVelocityChange_NeverLeavesBodiesClosing(t *testing.T) {
	rnd := randx.NewSysRand(99)
	random := func(scale float64) mgl64.Vec3 {
		return mgl64.Vec3{rnd.Float64() - 0.5, rnd.Float64() - 0.5, rnd.Float64() - 0.5}.Mul(2 * scale)
	}

	for i := range 400 {
		a := createDynamicBox(mgl64.Vec3{0, 1, 0})
		a.Velocity = random(3)
		a.AngularVelocity = random(2)

		var b *actor.RigidBody
		if i%2 == 0 {
			b = createDynamicBody(mgl64.Vec3{0, -1, 0}, random(3), 2.0)
			b.AngularVelocity = random(2)
		}

		friction := 0.0
		if i%4 >= 2 {
			friction = rnd.Float64() * 0.6
		}

		contact := Contact{
			Bodies:        [2]*actor.RigidBody{a, b},
			ContactPoint:  mgl64.Vec3{rnd.Float64() - 0.5, 0, rnd.Float64() - 0.5},
			ContactNormal: mgl64.Vec3{0, 1, 0},
			Friction:      friction,
		}
		contact.CalculateInternals(dt)
		if contact.ContactVelocity().X() > -0.01 {
			continue
		}

		var velocityChange, rotationChange [2]mgl64.Vec3
		contact.ApplyVelocityChange(&velocityChange, &rotationChange)
		contact.CalculateInternals(dt)

		require.GreaterOrEqual(t, contact.ContactVelocity().X(), -1e-9, "case %d (friction %v)", i, friction)
	}
}

func TestApplyPositionChange_ResolvesPenetration(t *testing.T) {
	tests := []struct {
		name               string
		densityA, densityB float64
	}{
		{"equal masses", 1.0, 1.0},
		{"heavier second body", 1.0, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, tt.densityA)
			b := createDynamicBody(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{}, tt.densityB)
			contact := Contact{
				Bodies:        [2]*actor.RigidBody{a, b},
				ContactPoint:  mgl64.Vec3{0.75, 0, 0},
				ContactNormal: mgl64.Vec3{-1, 0, 0},
				Penetration:   0.5,
			}
			contact.CalculateInternals(dt)

			var linearChange, angularChange [2]mgl64.Vec3
			contact.ApplyPositionChange(&linearChange, &angularChange, contact.Penetration)

			separation := linearChange[0].Dot(contact.ContactNormal) - linearChange[1].Dot(contact.ContactNormal)
			assert.InDelta(t, 0.5, separation, 1e-12)
			assert.InDelta(t, 2.0, b.Transform.Position.X()-a.Transform.Position.X(), 1e-12)

			// shares are proportional to the inverse masses
			ratio := linearChange[0].Len() / linearChange[1].Len()
			assert.InDelta(t, a.InverseMass/b.InverseMass, ratio, 1e-9)
		})
	}
}

func TestApplyPositionChange_WithRotation(t *testing.T) {
	box := createDynamicBox(mgl64.Vec3{0, 0.9, 0})
	contact := Contact{
		Bodies:        [2]*actor.RigidBody{box, nil},
		ContactPoint:  mgl64.Vec3{0.5, -0.1, 0},
		ContactNormal: mgl64.Vec3{0, 1, 0},
		Penetration:   0.1,
	}
	contact.CalculateInternals(dt)
	relative := contact.RelativeContactPosition(0)

	var linearChange, angularChange [2]mgl64.Vec3
	contact.ApplyPositionChange(&linearChange, &angularChange, contact.Penetration)

	require.NotEqual(t, mgl64.Vec3{}, angularChange[0])
	moved := linearChange[0].Add(angularChange[0].Cross(relative)).Dot(contact.ContactNormal)
	assert.InDelta(t, 0.1, moved, 1e-12)
}

func TestApplyPositionChange_AngularLimit(t *testing.T) {
	body := createDynamicBox(mgl64.Vec3{0, 0.9, 0})
	body.InverseInertiaLocal = mgl64.Ident3().Mul(100)
	body.CalculateDerivedData()

	contact := Contact{
		Bodies:        [2]*actor.RigidBody{body, nil},
		ContactPoint:  mgl64.Vec3{0.2, -0.1, 0},
		ContactNormal: mgl64.Vec3{0, 1, 0},
		Penetration:   0.1,
	}
	contact.CalculateInternals(dt)
	relative := contact.RelativeContactPosition(0)

	var linearChange, angularChange [2]mgl64.Vec3
	contact.ApplyPositionChange(&linearChange, &angularChange, contact.Penetration)

	angularMove := angularChange[0].Cross(relative).Dot(contact.ContactNormal)
	assert.InDelta(t, 0.2*0.2, angularMove, 1e-9)
	assert.InDelta(t, 0.1-0.04, linearChange[0].Dot(contact.ContactNormal), 1e-9)
}

func TestApplyPositionChange_SleepingBodyRefreshesDerivedData(t *testing.T) {
	body := createDynamicBox(mgl64.Vec3{0, 0.9, 0})
	body.SetAwake(false)

	contact := Contact{
		Bodies:        [2]*actor.RigidBody{body, nil},
		ContactPoint:  mgl64.Vec3{0, -0.1, 0},
		ContactNormal: mgl64.Vec3{0, 1, 0},
		Penetration:   0.1,
	}
	contact.CalculateInternals(dt)

	var linearChange, angularChange [2]mgl64.Vec3
	contact.ApplyPositionChange(&linearChange, &angularChange, contact.Penetration)

	assert.InDelta(t, 1.0, body.Transform.Position.Y(), 1e-12)
	assert.InDelta(t, 1.0, body.TransformMatrix().Col(3).Y(), 1e-12)
	assert.InDelta(t, 0.0, body.Shape.BoundingVolume().Bounds().Min.Y(), 1e-12)
}

func assertVec3InDelta(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, expected[i], actual[i], delta, msgAndArgs...)
	}
}

func TestApplyVelocityChange_SeparatingFrictionalContactStaysFinite(t *testing.T) {
	box := createDynamicBox(mgl64.Vec3{0, 1, 0})
	box.Velocity = mgl64.Vec3{0, 2, 0}

	contact := Contact{
		Bodies:        [2]*actor.RigidBody{box, nil},
		ContactPoint:  mgl64.Vec3{0, 0, 0},
		ContactNormal: mgl64.Vec3{0, 1, 0},
		Friction:      0.5,
	}
	contact.CalculateInternals(dt)
	require.InDelta(t, -2.0, contact.DesiredDeltaVelocity(), 1e-12)

	var velocityChange, rotationChange [2]mgl64.Vec3
	contact.ApplyVelocityChange(&velocityChange, &rotationChange)

	for i := range 3 {
		assert.False(t, math.IsNaN(box.Velocity[i]), "velocity %d", i)
		assert.False(t, math.IsNaN(box.AngularVelocity[i]), "angular velocity %d", i)
	}
	assertVec3InDelta(t, mgl64.Vec3{0, 0, 0}, box.Velocity, 1e-12)
	assertVec3InDelta(t, mgl64.Vec3{0, 0, 0}, box.AngularVelocity, 1e-12)
}

func TestApplyPositionChange_RotationRefreshesAwakeBody(t *testing.T) {
	box := createDynamicBox(mgl64.Vec3{0, 0.9, 0})
	contact := Contact{
		Bodies:        [2]*actor.RigidBody{box, nil},
		ContactPoint:  mgl64.Vec3{0.5, -0.1, 0},
		ContactNormal: mgl64.Vec3{0, 1, 0},
		Penetration:   0.1,
	}
	contact.CalculateInternals(dt)

	var linearChange, angularChange [2]mgl64.Vec3
	contact.ApplyPositionChange(&linearChange, &angularChange, contact.Penetration)
	require.True(t, box.IsAwake)
	require.NotEqual(t, mgl64.Vec3{}, angularChange[0])

	expected := box.Transform.Matrix()
	actual := box.TransformMatrix()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], 1e-12, "matrix element %d", i)
	}
}
