package particle

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// ForceGenerator adds a force to a particle once per step
type ForceGenerator interface {
	UpdateForce(p *Particle, dt float64)
}

// Gravity applies a constant acceleration, scaled by mass. Immovable particles are skipped.
type Gravity struct {
	Gravity mgl64.Vec3
}

func (g *Gravity) UpdateForce(p *Particle, dt float64) {
	if !p.HasFiniteMass() {
		return
	}
	p.AddForce(g.Gravity.Mul(p.Mass()))
}

// Drag opposes the velocity with K1*|v| + K2*|v|²
type Drag struct {
	K1, K2 float64
}

func (d *Drag) UpdateForce(p *Particle, dt float64) {
	speed := p.Velocity.Len()
	if speed == 0 {
		return
	}
	coefficient := d.K1*speed + d.K2*speed*speed
	p.AddForce(p.Velocity.Mul(-coefficient / speed))
}

// Spring pulls the particle toward Other with Hooke's law. It only acts on the particle
// it is registered for, register a second Spring to act on Other.
type Spring struct {
	Other          *Particle
	SpringConstant float64
	RestLength     float64
}

func (s *Spring) UpdateForce(p *Particle, dt float64) {
	p.AddForce(springForce(p.Position, s.Other.Position, s.SpringConstant, s.RestLength))
}

// AnchoredSpring connects the particle to a fixed point
type AnchoredSpring struct {
	Anchor         mgl64.Vec3
	SpringConstant float64
	RestLength     float64
}

func (s *AnchoredSpring) UpdateForce(p *Particle, dt float64) {
	p.AddForce(springForce(p.Position, s.Anchor, s.SpringConstant, s.RestLength))
}

func springForce(position, other mgl64.Vec3, k, restLength float64) mgl64.Vec3 {
	d := position.Sub(other)
	length := d.Len()
	if length == 0 {
		return mgl64.Vec3{}
	}
	return d.Mul(-k * (length - restLength) / length)
}

type registration struct {
	particle  *Particle
	generator ForceGenerator
}

// ForceRegistry holds which generators act on which particles
type ForceRegistry struct {
	registrations []registration
}

func (r *ForceRegistry) Add(p *Particle, generator ForceGenerator) {
	r.registrations = append(r.registrations, registration{particle: p, generator: generator})
}

// Remove unregisters the pair, it reports whether the pair was registered
func (r *ForceRegistry) Remove(p *Particle, generator ForceGenerator) bool {
	i := slices.IndexFunc(r.registrations, func(reg registration) bool {
		return reg.particle == p && reg.generator == generator
	})
	if i < 0 {
		return false
	}
	r.registrations = slices.Delete(r.registrations, i, i+1)
	return true
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
		reg.generator.UpdateForce(reg.particle, dt)
	}
}
