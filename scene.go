package impulse

import (
	"math"

	"cogentcore.org/core/base/randx"
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// shape weights used by RandomBodies: spheres, boxes, tetrahedra
var randomShapeWeights = []float64{0.4, 0.4, 0.2}

var defaultMaterial = actor.Material{
	Density:        1,
	Restitution:    0.2,
	Friction:       0.4,
	LinearDamping:  0.01,
	AngularDamping: 0.05,
}

// NewGround creates a static half-space body, solid below the plane
func NewGround(normal mgl64.Vec3, offset float64) *actor.RigidBody {
	body := actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Plane{Normal: normal.Normalize(), Offset: offset},
		actor.BodyTypeStatic,
		0,
	)
	body.Material = defaultMaterial
	return body
}

// NewTetrahedron returns a regular tetrahedron hull centred on the origin, with its
// vertices at distance size*sqrt(3)
func NewTetrahedron(size float64) *actor.ConvexHull {
	return actor.NewConvexHull(
		[]mgl64.Vec3{
			{size, size, size},
			{size, -size, -size},
			{-size, size, -size},
			{-size, -size, size},
		},
		[][]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}},
	)
}

// RandomBodies creates n dynamic bodies at random positions inside region, with random
// shapes, sizes and orientations. The same rnd seed always gives the same scene.
func RandomBodies(rnd randx.Rand, n int, region actor.AABB) []*actor.RigidBody {
	bodies := make([]*actor.RigidBody, 0, n)
	extent := region.Max.Sub(region.Min)

	for i := range n {
		position := mgl64.Vec3{
			region.Min.X() + rnd.Float64()*extent.X(),
			region.Min.Y() + rnd.Float64()*extent.Y(),
			region.Min.Z() + rnd.Float64()*extent.Z(),
		}
		size := func() float64 { return 0.25 + rnd.Float64()*0.5 }

		var shape actor.Shape
		switch randx.PChoose64(randomShapeWeights, rnd) {
		case 0:
			shape = &actor.Sphere{Radius: size()}
		case 1:
			shape = &actor.Box{HalfExtents: mgl64.Vec3{size(), size(), size()}}
		default:
			shape = NewTetrahedron(size())
		}

		body := actor.NewRigidBody(
			actor.NewTransformAt(position, randomRotation(rnd)),
			shape,
			actor.BodyTypeDynamic,
			defaultMaterial.Density,
		)
		body.Material = defaultMaterial
		body.Id = i
		bodies = append(bodies, body)
	}

	return bodies
}

// randomRotation draws a uniformly distributed orientation
func randomRotation(rnd randx.Rand) mgl64.Quat {
	u1, u2, u3 := rnd.Float64(), rnd.Float64(), rnd.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)

	return mgl64.Quat{
		W: a * math.Sin(2*math.Pi*u2),
		V: mgl64.Vec3{
			a * math.Cos(2*math.Pi*u2),
			b * math.Sin(2*math.Pi*u3),
			b * math.Cos(2*math.Pi*u3),
		},
	}.Normalize()
}
