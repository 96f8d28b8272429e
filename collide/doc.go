// Package collide generates contacts between pairs of colliding rigid bodies.
//
// Every generator writes into a ContactData and returns the number of contacts it
// added. A full buffer is not an error: generators return 0 immediately, or stop early
// with the count produced so far.
//
// Contact normals point from the second body toward the first one. Contacts against
// a half-space have no second body.
//
// References:
//   - Millington: "Game Physics Engine Development" (2010), ch. 13
//   - Ericson: "Real-Time Collision Detection" (2005), ch. 5
package collide
