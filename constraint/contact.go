package constraint

import (
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// below this closing speed restitution is ignored, so resting contacts do not jitter
	velocityLimit = 0.25
	// caps the rotation used to resolve penetration, in radians per unit of lever arm
	angularLimit = 0.2
	// tangential impulses under this magnitude never enter the sliding branch
	planarImpulseEpsilon = 1e-12
)

// Contact joins two bodies at a point. Bodies[1] may be nil for contacts against
// immovable scenery.
//
// ContactNormal points from Bodies[1] toward Bodies[0]. The contact velocity is the
// velocity of Bodies[0] relative to Bodies[1] expressed in the contact basis, so a
// negative X component means the bodies are closing.
type Contact struct {
	Bodies [2]*actor.RigidBody

	ContactPoint  mgl64.Vec3
	ContactNormal mgl64.Vec3
	Penetration   float64

	Friction    float64
	Restitution float64

	contactToWorld          mgl64.Mat3
	contactVelocity         mgl64.Vec3
	desiredDeltaVelocity    float64
	relativeContactPosition [2]mgl64.Vec3
}

// SetBodyData fills the bodies and material coefficients
func (c *Contact) SetBodyData(one, two *actor.RigidBody, friction, restitution float64) {
	c.Bodies = [2]*actor.RigidBody{one, two}
	c.Friction = friction
	c.Restitution = restitution
}

// ContactToWorld returns the basis whose columns are the normal and the two tangents
func (c *Contact) ContactToWorld() mgl64.Mat3 {
	return c.contactToWorld
}

func (c *Contact) ContactVelocity() mgl64.Vec3 {
	return c.contactVelocity
}

func (c *Contact) DesiredDeltaVelocity() float64 {
	return c.desiredDeltaVelocity
}

// RelativeContactPosition returns the contact point relative to the centre of body i
func (c *Contact) RelativeContactPosition(i int) mgl64.Vec3 {
	return c.relativeContactPosition[i]
}

// CalculateInternals prepares the derived data needed by the resolution methods. It must
// run again whenever either body moved since the last call.
func (c *Contact) CalculateInternals(dt float64) {
	if c.Bodies[0] == nil {
		c.swapBodies()
	}
	if c.Bodies[0] == nil {
		panic("constraint: contact has no body")
	}

	c.calculateContactBasis()

	c.relativeContactPosition[0] = c.ContactPoint.Sub(c.Bodies[0].Transform.Position)
	if c.Bodies[1] != nil {
		c.relativeContactPosition[1] = c.ContactPoint.Sub(c.Bodies[1].Transform.Position)
	}

	c.contactVelocity = c.calculateLocalVelocity(0, dt)
	if c.Bodies[1] != nil {
		c.contactVelocity = c.contactVelocity.Sub(c.calculateLocalVelocity(1, dt))
	}

	c.CalculateDesiredDeltaVelocity(dt)
}

// CalculateDesiredDeltaVelocity computes the change of closing velocity that the
// velocity phase must produce. The velocity built up by last frame's acceleration is
// not bounced back, and slow contacts do not bounce at all.
func (c *Contact) CalculateDesiredDeltaVelocity(dt float64) {
	var velocityFromAcc float64
	if c.Bodies[0].IsAwake {
		velocityFromAcc += c.Bodies[0].LastFrameAcceleration.Mul(dt).Dot(c.ContactNormal)
	}
	if c.Bodies[1] != nil && c.Bodies[1].IsAwake {
		velocityFromAcc -= c.Bodies[1].LastFrameAcceleration.Mul(dt).Dot(c.ContactNormal)
	}

	restitution := c.Restitution
	if math.Abs(c.contactVelocity.X()) < velocityLimit {
		restitution = 0
	}

	c.desiredDeltaVelocity = -c.contactVelocity.X() - restitution*(c.contactVelocity.X()-velocityFromAcc)
}

// MatchAwakeState wakes a sleeping body touched by an awake one. Contacts against a
// missing or immovable body never wake anything.
func (c *Contact) MatchAwakeState() {
	one, two := c.Bodies[0], c.Bodies[1]
	if one == nil || two == nil || !one.HasFiniteMass() || !two.HasFiniteMass() {
		return
	}

	if one.IsAwake != two.IsAwake {
		if one.IsAwake {
			two.SetAwake(true)
		} else {
			one.SetAwake(true)
		}
	}
}

// ApplyVelocityChange applies the impulse that produces the desired delta velocity.
// The velocity and rotation changes of each body are written to the given arrays.
func (c *Contact) ApplyVelocityChange(velocityChange, rotationChange *[2]mgl64.Vec3) {
	var inverseInertia [2]mgl64.Mat3
	inverseInertia[0] = c.Bodies[0].InverseInertiaWorld()
	if c.Bodies[1] != nil {
		inverseInertia[1] = c.Bodies[1].InverseInertiaWorld()
	}

	var impulseContact mgl64.Vec3
	var ok bool
	if c.Friction == 0 {
		impulseContact, ok = c.calculateFrictionlessImpulse(inverseInertia)
	} else {
		impulseContact, ok = c.calculateFrictionImpulse(inverseInertia)
	}

	velocityChange[0], velocityChange[1] = mgl64.Vec3{}, mgl64.Vec3{}
	rotationChange[0], rotationChange[1] = mgl64.Vec3{}, mgl64.Vec3{}
	if !ok {
		return
	}

	impulse := c.contactToWorld.Mul3x1(impulseContact)

	rotationChange[0] = inverseInertia[0].Mul3x1(c.relativeContactPosition[0].Cross(impulse))
	velocityChange[0] = impulse.Mul(c.Bodies[0].InverseMass)
	c.Bodies[0].AddVelocity(velocityChange[0])
	c.Bodies[0].AddRotation(rotationChange[0])

	if c.Bodies[1] != nil {
		// the second body receives the reaction
		rotationChange[1] = inverseInertia[1].Mul3x1(impulse.Cross(c.relativeContactPosition[1]))
		velocityChange[1] = impulse.Mul(-c.Bodies[1].InverseMass)
		c.Bodies[1].AddVelocity(velocityChange[1])
		c.Bodies[1].AddRotation(rotationChange[1])
	}
}

// ApplyPositionChange moves both bodies apart along the normal to resolve the given
// penetration. The correction is shared according to each body's linear and angular
// inertia; rotation is capped and its excess moved to the linear part.
func (c *Contact) ApplyPositionChange(linearChange, angularChange *[2]mgl64.Vec3, penetration float64) {
	var angularMove, linearMove, angularInertia, linearInertia [2]float64
	var totalInertia float64

	for i, body := range c.Bodies {
		if body == nil {
			continue
		}
		inverseInertia := body.InverseInertiaWorld()

		angularInertiaWorld := inverseInertia.Mul3x1(c.relativeContactPosition[i].Cross(c.ContactNormal)).Cross(c.relativeContactPosition[i])
		angularInertia[i] = angularInertiaWorld.Dot(c.ContactNormal)
		linearInertia[i] = body.InverseMass

		totalInertia += linearInertia[i] + angularInertia[i]
	}

	linearChange[0], linearChange[1] = mgl64.Vec3{}, mgl64.Vec3{}
	angularChange[0], angularChange[1] = mgl64.Vec3{}, mgl64.Vec3{}
	if totalInertia <= 0 {
		return
	}

	for i, body := range c.Bodies {
		if body == nil {
			continue
		}

		sign := 1.0
		if i == 1 {
			sign = -1.0
		}
		angularMove[i] = sign * penetration * (angularInertia[i] / totalInertia)
		linearMove[i] = sign * penetration * (linearInertia[i] / totalInertia)

		// limit the rotation by the lever arm perpendicular to the normal
		relative := c.relativeContactPosition[i]
		projection := relative.Add(c.ContactNormal.Mul(-relative.Dot(c.ContactNormal)))
		maxMagnitude := angularLimit * projection.Len()

		if angularMove[i] < -maxMagnitude {
			total := angularMove[i] + linearMove[i]
			angularMove[i] = -maxMagnitude
			linearMove[i] = total - angularMove[i]
		} else if angularMove[i] > maxMagnitude {
			total := angularMove[i] + linearMove[i]
			angularMove[i] = maxMagnitude
			linearMove[i] = total - angularMove[i]
		}

		if angularMove[i] != 0 {
			direction := body.InverseInertiaWorld().Mul3x1(relative.Cross(c.ContactNormal))
			angularChange[i] = direction.Mul(angularMove[i] / angularInertia[i])
		}
		linearChange[i] = c.ContactNormal.Mul(linearMove[i])

		body.Transform.Position = body.Transform.Position.Add(linearChange[i])
		body.Transform.Rotation = actor.AddScaledVector(body.Transform.Rotation, angularChange[i], 1.0)
		body.Transform.InverseRotation = body.Transform.Rotation.Inverse()

		// a rotation changes the world inertia read by the next iterations; a pure
		// translation of an awake body is picked up by the world after resolution
		if !body.IsAwake || angularChange[i] != (mgl64.Vec3{}) {
			body.CalculateDerivedData()
		}
	}
}

func (c *Contact) swapBodies() {
	c.ContactNormal = c.ContactNormal.Mul(-1)
	c.Bodies[0], c.Bodies[1] = c.Bodies[1], c.Bodies[0]
}

// calculateContactBasis builds an orthonormal basis with the contact normal as X. The
// first tangent is built from whichever of the world X or Y axes is further from the
// normal.
func (c *Contact) calculateContactBasis() {
	n := c.ContactNormal
	var tangent0, tangent1 mgl64.Vec3

	if math.Abs(n.X()) > math.Abs(n.Y()) {
		s := 1.0 / math.Sqrt(n.Z()*n.Z()+n.X()*n.X())

		tangent0 = mgl64.Vec3{n.Z() * s, 0, -n.X() * s}
		tangent1 = mgl64.Vec3{
			n.Y() * tangent0.X(),
			n.Z()*tangent0.X() - n.X()*tangent0.Z(),
			-n.Y() * tangent0.X(),
		}
	} else {
		s := 1.0 / math.Sqrt(n.Z()*n.Z()+n.Y()*n.Y())

		tangent0 = mgl64.Vec3{0, -n.Z() * s, n.Y() * s}
		tangent1 = mgl64.Vec3{
			n.Y()*tangent0.Z() - n.Z()*tangent0.Y(),
			-n.X() * tangent0.Z(),
			n.X() * tangent0.Y(),
		}
	}

	c.contactToWorld = mgl64.Mat3FromCols(n, tangent0, tangent1)
}

// calculateLocalVelocity returns the velocity of the contact point on body i in contact
// space, plus the planar velocity gained from last frame's acceleration
func (c *Contact) calculateLocalVelocity(i int, dt float64) mgl64.Vec3 {
	body := c.Bodies[i]
	worldToContact := c.contactToWorld.Transpose()

	velocity := body.AngularVelocity.Cross(c.relativeContactPosition[i]).Add(body.Velocity)
	contactVelocity := worldToContact.Mul3x1(velocity)

	accVelocity := worldToContact.Mul3x1(body.LastFrameAcceleration.Mul(dt))
	accVelocity[0] = 0

	return contactVelocity.Add(accVelocity)
}

// calculateFrictionlessImpulse solves the normal impulse alone. ok is false when neither
// body can move.
func (c *Contact) calculateFrictionlessImpulse(inverseInertia [2]mgl64.Mat3) (mgl64.Vec3, bool) {
	deltaVelocity := c.Bodies[0].InverseMass +
		inverseInertia[0].Mul3x1(c.relativeContactPosition[0].Cross(c.ContactNormal)).Cross(c.relativeContactPosition[0]).Dot(c.ContactNormal)

	if c.Bodies[1] != nil {
		deltaVelocity += c.Bodies[1].InverseMass +
			inverseInertia[1].Mul3x1(c.relativeContactPosition[1].Cross(c.ContactNormal)).Cross(c.relativeContactPosition[1]).Dot(c.ContactNormal)
	}

	if deltaVelocity <= 0 {
		return mgl64.Vec3{}, false
	}

	return mgl64.Vec3{c.desiredDeltaVelocity / deltaVelocity, 0, 0}, true
}

// calculateFrictionImpulse solves the full 3x3 impulse that removes the tangential
// velocity and applies the desired normal change, then clamps it to the friction cone
func (c *Contact) calculateFrictionImpulse(inverseInertia [2]mgl64.Mat3) (mgl64.Vec3, bool) {
	inverseMass := c.Bodies[0].InverseMass

	// velocity change per unit impulse, in world space
	impulseToTorque := skewSymmetric(c.relativeContactPosition[0])
	deltaVelWorld := impulseToTorque.Mul3(inverseInertia[0]).Mul3(impulseToTorque).Mul(-1)

	if c.Bodies[1] != nil {
		impulseToTorque = skewSymmetric(c.relativeContactPosition[1])
		deltaVelWorld = deltaVelWorld.Add(impulseToTorque.Mul3(inverseInertia[1]).Mul3(impulseToTorque).Mul(-1))
		inverseMass += c.Bodies[1].InverseMass
	}

	deltaVelocity := c.contactToWorld.Transpose().Mul3(deltaVelWorld).Mul3(c.contactToWorld)
	deltaVelocity = deltaVelocity.Add(mgl64.Diag3(mgl64.Vec3{inverseMass, inverseMass, inverseMass}))

	if math.Abs(deltaVelocity.Det()) < 1e-12 {
		return mgl64.Vec3{}, false
	}
	impulseMatrix := deltaVelocity.Inv()

	velKill := mgl64.Vec3{c.desiredDeltaVelocity, -c.contactVelocity.Y(), -c.contactVelocity.Z()}
	impulseContact := impulseMatrix.Mul3x1(velKill)

	planarImpulse := math.Sqrt(impulseContact.Y()*impulseContact.Y() + impulseContact.Z()*impulseContact.Z())
	// a zero tangential impulse has no direction to slide along
	if planarImpulse > planarImpulseEpsilon && planarImpulse > impulseContact.X()*c.Friction {
		// sliding: the tangential impulse follows the friction cone
		impulseContact[1] /= planarImpulse
		impulseContact[2] /= planarImpulse

		normalResponse := deltaVelocity.At(0, 0) +
			deltaVelocity.At(0, 1)*c.Friction*impulseContact.Y() +
			deltaVelocity.At(0, 2)*c.Friction*impulseContact.Z()
		impulseContact[0] = c.desiredDeltaVelocity / normalResponse
		impulseContact[1] *= c.Friction * impulseContact.X()
		impulseContact[2] *= c.Friction * impulseContact.X()
	}

	return impulseContact, true
}

// skewSymmetric returns the matrix M such that M*x == v.Cross(x)
func skewSymmetric(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v.Z(), v.Y()},
		mgl64.Vec3{v.Z(), 0, -v.X()},
		mgl64.Vec3{-v.Y(), v.X(), 0},
	)
}
