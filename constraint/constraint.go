// Package constraint resolves contacts between rigid bodies with sequential impulses.
//
// A Contact is prepared by CalculateInternals, then its penetration is removed by
// ApplyPositionChange and its closing velocity by ApplyVelocityChange. The Resolver
// drives both phases over a whole contact set, worst contact first.
package constraint

import (
	"math"

	"github.com/akmonengine/impulse/actor"
)

// ComputeRestitution combines two materials by averaging
func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

// ComputeFriction combines two materials with the geometric mean, so a frictionless
// material makes the contact frictionless
func ComputeFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.Friction * matB.Friction)
}
