package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

type Material struct {
	Density     float64
	Restitution float64 // 0= no rebound, 1= perfect restitution
	Friction    float64 // 0= frictionless contacts

	LinearDamping  float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping float64 // 0.0 - 1.0, typical: 0.05
}

// RigidBody represents a rigid body in the physics simulation.
// Mass and inertia are stored as inverses: an InverseMass of zero is an
// immovable body.
type RigidBody struct {
	Id interface{}

	// Spatial properties
	Transform Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)
	// Acceleration is a constant acceleration applied every step on top of gravity
	Acceleration mgl64.Vec3
	// LastFrameAcceleration is the total linear acceleration of the previous integration
	LastFrameAcceleration mgl64.Vec3

	// Angular motion
	AngularVelocity mgl64.Vec3 // Rotation speed (rad/s)

	InverseMass         float64
	InverseInertiaLocal mgl64.Mat3

	inverseInertiaWorld mgl64.Mat3
	transformMatrix     mgl64.Mat4

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsAwake    bool
	CanSleep   bool
	SleepTimer float64

	// Physical properties
	Material  Material
	BodyType  BodyType // Dynamic or Static
	IsTrigger bool

	// Collision shape
	Shape Shape
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}

	rb := &RigidBody{
		Transform: transform,
		Shape:     shape,
		BodyType:  bodyType,
		IsAwake:   true,
		CanSleep:  true,
	}

	if bodyType == BodyTypeStatic {
		rb.InverseMass = 0
		rb.InverseInertiaLocal = mgl64.Mat3{}
	} else {
		rb.Material.Density = density
		rb.SetMass(shape.ComputeMass(density))
	}

	rb.CalculateDerivedData()

	return rb
}

// SetMass sets the mass and recomputes the local inertia from the shape.
// A non-positive or infinite mass makes the body immovable.
func (rb *RigidBody) SetMass(mass float64) {
	if mass <= 0 || math.IsInf(mass, 1) {
		rb.InverseMass = 0
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}

	rb.InverseMass = 1.0 / mass
	inertia := rb.Shape.ComputeInertia(mass)
	if inertia.Det() == 0 {
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}
	rb.InverseInertiaLocal = inertia.Inv()
}

// Mass returns the mass, infinite for immovable bodies
func (rb *RigidBody) Mass() float64 {
	if rb.InverseMass == 0 {
		return math.Inf(1)
	}
	return 1.0 / rb.InverseMass
}

func (rb *RigidBody) HasFiniteMass() bool {
	return rb.InverseMass > 0
}

// CalculateDerivedData refreshes the transform matrix, the world inverse
// inertia tensor and the shape world data from position and orientation.
func (rb *RigidBody) CalculateDerivedData() {
	rb.Transform.Rotation = rb.Transform.Rotation.Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
	rb.transformMatrix = rb.Transform.Matrix()

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Basis()
	rb.inverseInertiaWorld = R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())

	if rb.Shape != nil {
		rb.Shape.Update(rb.Transform)
	}
}

// Integrate advances the body by dt using semi-implicit Euler
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || !rb.IsAwake || !rb.HasFiniteMass() {
		return
	}

	// ========== LINEAR INTEGRATION ==========
	rb.LastFrameAcceleration = gravity.Add(rb.Acceleration).Add(rb.accumulatedForce.Mul(rb.InverseMass))
	rb.Velocity = rb.Velocity.Add(rb.LastFrameAcceleration.Mul(dt))

	// ========== ANGULAR INTEGRATION ==========
	angularAccel := rb.inverseInertiaWorld.Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))

	// ========== DAMPING ==========
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	// ========== UPDATE POSITION & QUATERNION ==========
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))
	rb.Transform.Rotation = AddScaledVector(rb.Transform.Rotation, rb.AngularVelocity, dt)

	rb.CalculateDerivedData()
	rb.ClearForces()
}

// TrySleep sends the body to sleep once its velocities stay under velocityThreshold
// for timeThreshold seconds. It reports whether the body fell asleep on this call.
func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) bool {
	if !rb.IsAwake || !rb.CanSleep || rb.BodyType == BodyTypeStatic {
		return false
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.SetAwake(false)
			return true
		}
	} else {
		rb.SleepTimer = 0.0
	}

	return false
}

// SetAwake wakes the body up, or puts it to sleep and zeroes its velocities
func (rb *RigidBody) SetAwake(awake bool) {
	rb.SleepTimer = 0.0
	if awake {
		rb.IsAwake = true
		return
	}

	rb.IsAwake = false
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
	rb.ClearForces()
}

// AddForce applies a force at the centre of mass
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.SetAwake(true)

		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddForceAtPoint applies a force at a world-space point, producing a torque
func (rb *RigidBody) AddForceAtPoint(force, point mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.SetAwake(true)

		arm := point.Sub(rb.Transform.Position)
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
		rb.accumulatedTorque = rb.accumulatedTorque.Add(arm.Cross(force))
	}
}

// AddForceAtBodyPoint applies a force at a point given in body space
func (rb *RigidBody) AddForceAtBodyPoint(force, point mgl64.Vec3) {
	rb.AddForceAtPoint(force, rb.Transform.TransformPoint(point))
}

// AddTorque applies a torque around the centre of mass
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.SetAwake(true)

		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) AccumulatedForce() mgl64.Vec3 {
	return rb.accumulatedForce
}

func (rb *RigidBody) AccumulatedTorque() mgl64.Vec3 {
	return rb.accumulatedTorque
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

func (rb *RigidBody) AddVelocity(delta mgl64.Vec3) {
	rb.Velocity = rb.Velocity.Add(delta)
}

func (rb *RigidBody) AddRotation(delta mgl64.Vec3) {
	rb.AngularVelocity = rb.AngularVelocity.Add(delta)
}

// SupportWorld returns the furthest world point of the shape along a world direction
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localDirection := rb.Transform.InverseTransformDirection(direction)
	localSupport := rb.Shape.Support(localDirection)
	return rb.Transform.TransformPoint(localSupport)
}

// InverseInertiaWorld returns the world-space inverse inertia tensor computed
// by the last CalculateDerivedData call
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	return rb.inverseInertiaWorld
}

// InertiaWorld returns I_world = R * I_local * R^T, zero for immovable bodies
func (rb *RigidBody) InertiaWorld() mgl64.Mat3 {
	if !rb.HasFiniteMass() {
		return mgl64.Mat3{}
	}
	R := rb.Transform.Basis()
	inertia := rb.Shape.ComputeInertia(rb.Mass())
	return R.Mul3(inertia).Mul3(R.Transpose())
}

// TransformMatrix returns the body-to-world matrix computed by the last CalculateDerivedData call
func (rb *RigidBody) TransformMatrix() mgl64.Mat4 {
	return rb.transformMatrix
}

// AddScaledVector rotates q by the angular displacement vector*scale.
// The result is normalized.
func AddScaledVector(q mgl64.Quat, vector mgl64.Vec3, scale float64) mgl64.Quat {
	delta := mgl64.Quat{W: 0, V: vector.Mul(scale)}
	qDot := delta.Mul(q).Scale(0.5)
	return q.Add(qDot).Normalize()
}
