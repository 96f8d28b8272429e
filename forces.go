package impulse

import (
	"slices"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ForceGenerator adds forces to a rigid body once per step, before integration
type ForceGenerator interface {
	UpdateForce(body *actor.RigidBody, dt float64)
}

// Gravity applies an extra acceleration, scaled by mass, on top of the world gravity.
// Sleeping and immovable bodies are skipped so it never wakes them up.
type Gravity struct {
	Gravity mgl64.Vec3
}

func (g *Gravity) UpdateForce(body *actor.RigidBody, dt float64) {
	if !body.IsAwake || !body.HasFiniteMass() {
		return
	}
	body.AddForce(g.Gravity.Mul(body.Mass()))
}

// Spring connects a point of the body to a point of Other, both in body space. It only
// pushes the body it is registered for.
type Spring struct {
	ConnectionPoint      mgl64.Vec3
	Other                *actor.RigidBody
	OtherConnectionPoint mgl64.Vec3
	SpringConstant       float64
	RestLength           float64
}

func (s *Spring) UpdateForce(body *actor.RigidBody, dt float64) {
	point := body.Transform.TransformPoint(s.ConnectionPoint)
	otherPoint := s.Other.Transform.TransformPoint(s.OtherConnectionPoint)

	d := point.Sub(otherPoint)
	length := d.Len()
	if length == 0 {
		return
	}

	force := d.Mul(-s.SpringConstant * (length - s.RestLength) / length)
	body.AddForceAtPoint(force, point)
}

type registration struct {
	body      *actor.RigidBody
	generator ForceGenerator
}

// ForceRegistry holds which generators act on which bodies
type ForceRegistry struct {
	registrations []registration
}

func (r *ForceRegistry) Add(body *actor.RigidBody, generator ForceGenerator) {
	r.registrations = append(r.registrations, registration{body: body, generator: generator})
}

// Remove unregisters the pair, it reports whether the pair was registered
func (r *ForceRegistry) Remove(body *actor.RigidBody, generator ForceGenerator) bool {
	i := slices.IndexFunc(r.registrations, func(reg registration) bool {
		return reg.body == body && reg.generator == generator
	})
	if i < 0 {
		return false
	}
	r.registrations = slices.Delete(r.registrations, i, i+1)
	return true
}

// RemoveBody unregisters every generator acting on the body
func (r *ForceRegistry) RemoveBody(body *actor.RigidBody) {
	r.registrations = slices.DeleteFunc(r.registrations, func(reg registration) bool {
		return reg.body == body
	})
}

func (r *ForceRegistry) Clear() {
	r.registrations = r.registrations[:0]
}

func (r *ForceRegistry) Len() int {
	return len(r.registrations)
}

// UpdateForces calls every registered generator in registration order
func (r *ForceRegistry) UpdateForces(dt float64) {
	for _, reg := range r.registrations {
		reg.generator.UpdateForce(reg.body, dt)
	}
}
