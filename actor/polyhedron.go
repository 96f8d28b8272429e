package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

const uniqueVertexEpsilon = 1e-9

// Face is an ordered loop of indices into the owning polyhedron vertex buffer.
// Vertices are wound counter-clockwise when seen from outside, so the normal
// computed from the first edges points outward.
type Face struct {
	Indices []int
}

// Normal computes the outward unit normal of the face from the given vertex buffer.
// ok is false when the face has fewer than 3 unique, non-collinear vertices.
func (f Face) Normal(vertices []mgl64.Vec3) (normal mgl64.Vec3, ok bool) {
	if len(f.Indices) < 3 {
		return mgl64.Vec3{}, false
	}

	origin := vertices[f.Indices[0]]
	second := -1
	for i := 1; i < len(f.Indices); i++ {
		if vertices[f.Indices[i]].Sub(origin).LenSqr() >= uniqueVertexEpsilon {
			second = i
			break
		}
	}
	if second < 0 {
		return mgl64.Vec3{}, false
	}

	// duplicates of origin or of the second vertex give a zero cross product
	edge := vertices[f.Indices[second]].Sub(origin)
	for _, index := range f.Indices[second+1:] {
		n := edge.Cross(vertices[index].Sub(origin))
		if n.LenSqr() > uniqueVertexEpsilon {
			return n.Normalize(), true
		}
	}

	return mgl64.Vec3{}, false
}

// Centroid returns the average of the face vertices
func (f Face) Centroid(vertices []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	if len(f.Indices) == 0 {
		return sum
	}
	for _, index := range f.Indices {
		sum = sum.Add(vertices[index])
	}
	return sum.Mul(1.0 / float64(len(f.Indices)))
}

// Vertex returns the i-th vertex of the face, wrapping around the loop
func (f Face) Vertex(vertices []mgl64.Vec3, i int) mgl64.Vec3 {
	return vertices[f.Indices[i%len(f.Indices)]]
}

// Edge joins two vertices of the owning polyhedron
type Edge struct {
	A, B int
}

// Direction returns the (unnormalized) vector from A to B
func (e Edge) Direction(vertices []mgl64.Vec3) mgl64.Vec3 {
	return vertices[e.B].Sub(vertices[e.A])
}

// Polyhedron is a convex hull stored as an owned vertex buffer plus faces and
// edges referencing it by index. The local buffer never changes after
// construction; the world buffer is refreshed by Update every frame.
type Polyhedron struct {
	local []mgl64.Vec3
	world []mgl64.Vec3
	faces []Face
	edges []Edge
	ready bool
}

// NewPolyhedron builds a polyhedron from local vertices and face index loops.
// Edges are derived from the faces, each shared edge is kept once.
func NewPolyhedron(vertices []mgl64.Vec3, faces [][]int) *Polyhedron {
	p := &Polyhedron{
		local: append([]mgl64.Vec3(nil), vertices...),
		world: make([]mgl64.Vec3, len(vertices)),
		faces: make([]Face, 0, len(faces)),
	}

	seen := make(map[Edge]bool)
	for _, indices := range faces {
		face := Face{Indices: append([]int(nil), indices...)}
		p.faces = append(p.faces, face)

		for i := range indices {
			a, b := indices[i], indices[(i+1)%len(indices)]
			key := Edge{A: min(a, b), B: max(a, b)}
			if a == b || seen[key] {
				continue
			}
			seen[key] = true
			p.edges = append(p.edges, Edge{A: a, B: b})
		}
	}

	return p
}

// Update recomputes world vertices from the transform and marks the data ready
func (p *Polyhedron) Update(transform Transform) {
	for i, v := range p.local {
		p.world[i] = transform.TransformPoint(v)
	}
	p.ready = true
}

// Ready reports whether world-space data has been computed at least once
func (p *Polyhedron) Ready() bool {
	return p != nil && p.ready && len(p.faces) > 0
}

func (p *Polyhedron) LocalVertices() []mgl64.Vec3 {
	return p.local
}

func (p *Polyhedron) WorldVertices() []mgl64.Vec3 {
	return p.world
}

func (p *Polyhedron) Faces() []Face {
	return p.faces
}

func (p *Polyhedron) Edges() []Edge {
	return p.edges
}

// FaceNormal returns the world-space outward normal of face i
func (p *Polyhedron) FaceNormal(i int) (mgl64.Vec3, bool) {
	return p.faces[i].Normal(p.world)
}

// EdgeDirection returns the world-space direction of edge i
func (p *Polyhedron) EdgeDirection(i int) mgl64.Vec3 {
	return p.edges[i].Direction(p.world)
}

// Project returns the interval covered by the world vertices along axis
func (p *Polyhedron) Project(axis mgl64.Vec3) (lo, hi float64) {
	lo, hi = p.world[0].Dot(axis), p.world[0].Dot(axis)
	for _, v := range p.world[1:] {
		d := v.Dot(axis)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi
}

// supportLocal returns the local vertex furthest along direction
func (p *Polyhedron) supportLocal(direction mgl64.Vec3) mgl64.Vec3 {
	best := p.local[0]
	bestDot := best.Dot(direction)
	for _, v := range p.local[1:] {
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// boxPolyhedron builds the 8 corners, 6 faces and 12 edges of a box.
// Corner i has sign bit 0 on X, bit 1 on Y and bit 2 on Z (set = positive).
func boxPolyhedron(halfExtents mgl64.Vec3) *Polyhedron {
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		v := halfExtents.Mul(-1)
		if i&1 != 0 {
			v[0] = halfExtents[0]
		}
		if i&2 != 0 {
			v[1] = halfExtents[1]
		}
		if i&4 != 0 {
			v[2] = halfExtents[2]
		}
		vertices[i] = v
	}

	return NewPolyhedron(vertices, [][]int{
		{1, 3, 7, 5}, // +X
		{0, 4, 6, 2}, // -X
		{2, 6, 7, 3}, // +Y
		{0, 1, 5, 4}, // -Y
		{4, 5, 7, 6}, // +Z
		{0, 2, 3, 1}, // -Z
	})
}
