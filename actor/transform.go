package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a position and orientation in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a transform at the given position and orientation
func NewTransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	rotation = rotation.Normalize()
	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}

// Matrix returns the affine matrix combining rotation and translation.
// Only the upper 3x4 block is meaningful, the last row is always (0, 0, 0, 1).
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).Mul4(t.Rotation.Mat4())
}

// Basis returns the rotation part as a 3x3 matrix, columns are the local axes in world space
func (t Transform) Basis() mgl64.Mat3 {
	return t.Rotation.Mat4().Mat3()
}

// Axis returns the world-space direction of local axis i (0, 1 or 2), or the position for i == 3
func (t Transform) Axis(i int) mgl64.Vec3 {
	switch i {
	case 0:
		return t.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
	case 1:
		return t.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
	case 2:
		return t.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
	case 3:
		return t.Position
	}
	panic("actor: axis index out of range")
}

// TransformPoint converts a local point to world space
func (t Transform) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// InverseTransformPoint converts a world point to local space
func (t Transform) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	return t.inverse().Rotate(world.Sub(t.Position))
}

// TransformDirection rotates a local direction into world space
func (t Transform) TransformDirection(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local)
}

// InverseTransformDirection rotates a world direction into local space
func (t Transform) InverseTransformDirection(world mgl64.Vec3) mgl64.Vec3 {
	return t.inverse().Rotate(world)
}

// inverse tolerates transforms built as literals without InverseRotation
func (t Transform) inverse() mgl64.Quat {
	if t.InverseRotation == (mgl64.Quat{}) {
		return t.Rotation.Inverse()
	}
	return t.InverseRotation
}
