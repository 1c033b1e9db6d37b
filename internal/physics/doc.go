// Package physics is a small rigid-body engine for spheres, boxes and
// infinite planes.
//
// A [World] owns [Body] values and advances them with a fixed-step
// integrator that catches up with real time:
//
//	world := physics.NewWorld()
//	world.AddBody(floor)
//	world.AddBody(ball)
//	world.Step(1.0/60, frameDelta, 3)
//
// Contacts are found with a sweep-and-prune broadphase followed by
// shape-specific narrowphase tests, then resolved with a sequential impulse
// solver using the friction and restitution of the matching
// [ContactMaterial].
//
// Bodies report the start of a contact through [Body.OnCollide]. The event
// carries the [Contact], whose [Contact.ImpactVelocityAlongNormal] is the
// closing speed at the moment the bodies met.
//
// # Sleeping
//
// With [World.AllowSleep] set, a dynamic body that stays slower than its
// SleepSpeedLimit for SleepTimeLimit seconds is put to sleep and skipped by
// the integrator until a moving body hits it.
package physics
