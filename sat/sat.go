// Package sat implements the Separating Axis Theorem intersection test for convex polyhedra.
//
// Two convex polyhedra are disjoint if and only if a plane separates them. The candidate
// separating planes are limited to:
//   - planes supporting a face of either polyhedron (face normal axes)
//   - planes containing an edge of each polyhedron (edge cross product axes)
//
// The test walks these candidates and stops at the first one that separates the shapes.
// Vertex classification against a candidate plane exits as soon as vertices are found on
// both sides, which keeps the common "not separating" case cheap.
//
// References:
//   - Eberly: "Intersection of Convex Objects: The Method of Separating Axes" (2008)
//   - Ericson: "Real-Time Collision Detection", ch. 4.4 and 5.2 (2005)
package sat

import (
	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// degenerateAxisEpsilon rejects cross products of (nearly) parallel edges
const degenerateAxisEpsilon = 1e-10

// WhichSide classifies vertices against the plane through p with normal d.
//
// Returns:
//   - +1 if every vertex projects with t = d·(v-p) > 0
//   - -1 if every vertex projects with t < 0
//   - 0 as soon as vertices on both sides are found
//
// Vertices lying exactly on the plane (t == 0) are ignored. When every vertex is on the
// plane, the result is 0.
func WhichSide(vertices []mgl64.Vec3, p, d mgl64.Vec3) int {
	positive, negative := 0, 0

	for _, v := range vertices {
		t := d.Dot(v.Sub(p))
		if t > 0 {
			positive++
		} else if t < 0 {
			negative++
		}

		if positive > 0 && negative > 0 {
			return 0
		}
	}

	if positive > 0 {
		return 1
	}
	if negative > 0 {
		return -1
	}
	return 0
}

// TestIntersection reports whether two convex polyhedra intersect.
//
// Algorithm:
//  1. For every face of A, if B lies entirely on the outer side of the face plane, the
//     shapes are separated
//  2. Same for every face of B against A
//  3. For every pair of edges (eA, eB), the plane through eA with normal eA × eB separates
//     the shapes if A and B lie strictly on opposite sides of it
//  4. No separating plane found: the shapes intersect
//
// Shapes touching along a plane (vertices exactly on it) count as separated. Faces whose
// normal cannot be computed (fewer than 3 unique vertices) are skipped.
//
// A polyhedron whose world data has not been computed yet is treated as not colliding.
//
// Cost: O(F_A·V_B + F_B·V_A + E_A·E_B·(V_A+V_B)) in the worst case.
func TestIntersection(a, b *actor.Polyhedron) bool {
	if !a.Ready() || !b.Ready() {
		return false
	}

	if separatedByFace(a, b) || separatedByFace(b, a) {
		return false
	}

	verticesA := a.WorldVertices()
	verticesB := b.WorldVertices()
	edgesA := a.Edges()
	edgesB := b.Edges()

	for i, edgeA := range edgesA {
		directionA := a.EdgeDirection(i)
		p := verticesA[edgeA.A]

		for j := range edgesB {
			axis := directionA.Cross(b.EdgeDirection(j))
			if axis.LenSqr() < degenerateAxisEpsilon {
				continue
			}

			sideA := WhichSide(verticesA, p, axis)
			if sideA == 0 {
				continue
			}
			sideB := WhichSide(verticesB, p, axis)
			if sideB == 0 {
				continue
			}

			if sideA*sideB < 0 {
				return false
			}
		}
	}

	return true
}

// separatedByFace tests every face plane of reference against the vertices of other
func separatedByFace(reference, other *actor.Polyhedron) bool {
	vertices := reference.WorldVertices()
	otherVertices := other.WorldVertices()

	for i, face := range reference.Faces() {
		normal, ok := reference.FaceNormal(i)
		if !ok {
			continue
		}

		if WhichSide(otherVertices, vertices[face.Indices[0]], normal) > 0 {
			return true
		}
	}

	return false
}
