package constraint

import "github.com/go-gl/mathgl/mgl64"

// Resolver removes penetration then closing velocity from a set of contacts. Each
// iteration refreshes every contact against the current body state and resolves the
// worst one, so resolving a contact is visible to all the others sharing its bodies.
type Resolver struct {
	VelocityIterations int
	PositionIterations int

	// contacts with a smaller desired velocity change are left alone
	VelocityEpsilon float64
	// contacts with a smaller penetration are left alone
	PositionEpsilon float64

	velocityIterationsUsed int
	positionIterationsUsed int
}

// NewResolver creates a resolver running up to iterations passes in each phase
func NewResolver(iterations int, velocityEpsilon, positionEpsilon float64) *Resolver {
	return &Resolver{
		VelocityIterations: iterations,
		PositionIterations: iterations,
		VelocityEpsilon:    velocityEpsilon,
		PositionEpsilon:    positionEpsilon,
	}
}

// Valid reports whether the resolver settings allow any work
func (r *Resolver) Valid() bool {
	return r.VelocityIterations > 0 && r.PositionIterations > 0 &&
		r.VelocityEpsilon >= 0 && r.PositionEpsilon >= 0
}

func (r *Resolver) VelocityIterationsUsed() int {
	return r.velocityIterationsUsed
}

func (r *Resolver) PositionIterationsUsed() int {
	return r.positionIterationsUsed
}

// ResolveContacts resolves interpenetration then velocity for the contacts
func (r *Resolver) ResolveContacts(contacts []Contact, dt float64) {
	r.velocityIterationsUsed = 0
	r.positionIterationsUsed = 0
	if len(contacts) == 0 || !r.Valid() {
		return
	}

	r.adjustPositions(contacts, dt)
	r.adjustVelocities(contacts, dt)
}

func (r *Resolver) prepareContacts(contacts []Contact, dt float64) {
	for i := range contacts {
		contacts[i].CalculateInternals(dt)
	}
}

// adjustPositions resolves the deepest contact first. Penetrations of contacts sharing a
// moved body are updated from the applied changes, since geometry is not regenerated.
func (r *Resolver) adjustPositions(contacts []Contact, dt float64) {
	var linearChange, angularChange [2]mgl64.Vec3

	for r.positionIterationsUsed < r.PositionIterations {
		r.prepareContacts(contacts, dt)

		worst := -1
		maxPenetration := r.PositionEpsilon
		for i := range contacts {
			if contacts[i].Penetration > maxPenetration {
				maxPenetration = contacts[i].Penetration
				worst = i
			}
		}
		if worst < 0 {
			break
		}

		resolved := &contacts[worst]
		resolved.MatchAwakeState()
		resolved.ApplyPositionChange(&linearChange, &angularChange, maxPenetration)

		for i := range contacts {
			for b := range 2 {
				if contacts[i].Bodies[b] == nil {
					continue
				}
				for d := range 2 {
					if contacts[i].Bodies[b] != resolved.Bodies[d] {
						continue
					}
					deltaPosition := linearChange[d].Add(angularChange[d].Cross(contacts[i].relativeContactPosition[b]))
					sign := 1.0
					if b == 0 {
						sign = -1.0
					}
					contacts[i].Penetration += sign * deltaPosition.Dot(contacts[i].ContactNormal)
				}
			}
		}

		r.positionIterationsUsed++
	}
}

// adjustVelocities resolves the contact needing the largest velocity change first
func (r *Resolver) adjustVelocities(contacts []Contact, dt float64) {
	var velocityChange, rotationChange [2]mgl64.Vec3

	for r.velocityIterationsUsed < r.VelocityIterations {
		r.prepareContacts(contacts, dt)

		worst := -1
		maxVelocity := r.VelocityEpsilon
		for i := range contacts {
			if contacts[i].desiredDeltaVelocity > maxVelocity {
				maxVelocity = contacts[i].desiredDeltaVelocity
				worst = i
			}
		}
		if worst < 0 {
			break
		}

		contacts[worst].MatchAwakeState()
		contacts[worst].ApplyVelocityChange(&velocityChange, &rotationChange)

		r.velocityIterationsUsed++
	}
}
