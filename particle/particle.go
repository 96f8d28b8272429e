// Package particle implements point masses integrated with semi-implicit Euler, the
// force generators acting on them and a distance constraint between two particles.
package particle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is a point mass. Mass is stored as its inverse: an InverseMass of zero is an
// immovable particle.
type Particle struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	// Acceleration is a constant acceleration applied every step, usually gravity
	Acceleration mgl64.Vec3
	// Damping removes this fraction of the velocity per second, 0 keeps all of it
	Damping     float64
	InverseMass float64

	accumulatedForce mgl64.Vec3
}

// New creates a particle of the given mass at rest. A non-positive or infinite mass
// makes it immovable.
func New(position mgl64.Vec3, mass float64) *Particle {
	p := &Particle{Position: position}
	p.SetMass(mass)
	return p
}

func (p *Particle) SetMass(mass float64) {
	if mass <= 0 || math.IsInf(mass, 1) {
		p.InverseMass = 0
		return
	}
	p.InverseMass = 1.0 / mass
}

// Mass returns the mass, infinite for immovable particles
func (p *Particle) Mass() float64 {
	if p.InverseMass == 0 {
		return math.Inf(1)
	}
	return 1.0 / p.InverseMass
}

func (p *Particle) HasFiniteMass() bool {
	return p.InverseMass > 0
}

func (p *Particle) AddForce(force mgl64.Vec3) {
	p.accumulatedForce = p.accumulatedForce.Add(force)
}

func (p *Particle) AccumulatedForce() mgl64.Vec3 {
	return p.accumulatedForce
}

func (p *Particle) ClearForces() {
	p.accumulatedForce = mgl64.Vec3{}
}

// Integrate advances the particle by dt: the velocity is updated first, then the
// position with the new velocity. Accumulated forces are cleared.
func (p *Particle) Integrate(dt float64) {
	if dt <= 0 {
		panic("particle: integration step must be positive")
	}
	if !p.HasFiniteMass() {
		p.ClearForces()
		return
	}

	acceleration := p.Acceleration.Add(p.accumulatedForce.Mul(p.InverseMass))
	p.Velocity = p.Velocity.Add(acceleration.Mul(dt))
	p.Velocity = p.Velocity.Mul(math.Exp(-p.Damping * dt))
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	p.ClearForces()
}
