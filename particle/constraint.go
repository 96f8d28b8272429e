package particle

// DistanceConstraint keeps two particles Length apart. Each Apply moves them along the
// line joining them by Stiffness times the length error, split by inverse mass.
type DistanceConstraint struct {
	A, B      *Particle
	Length    float64
	Stiffness float64 // 0 does nothing, 1 fully corrects in one call
}

// Apply corrects the positions once. It reports false when nothing could move: both
// particles immovable or on top of each other.
func (c *DistanceConstraint) Apply() bool {
	totalInverseMass := c.A.InverseMass + c.B.InverseMass
	if totalInverseMass <= 0 {
		return false
	}

	delta := c.B.Position.Sub(c.A.Position)
	distance := delta.Len()
	if distance == 0 {
		return false
	}

	direction := delta.Mul(1.0 / distance)
	correction := direction.Mul((distance - c.Length) * c.Stiffness / totalInverseMass)

	c.A.Position = c.A.Position.Add(correction.Mul(c.A.InverseMass))
	c.B.Position = c.B.Position.Sub(correction.Mul(c.B.InverseMass))
	return true
}

// Violation returns the current distance minus Length
func (c *DistanceConstraint) Violation() float64 {
	return c.B.Position.Sub(c.A.Position).Len() - c.Length
}
