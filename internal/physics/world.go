package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultGravity    = -9.82
	DefaultIterations = 10
)

type pairKey struct {
	lo, hi int
}

func keyOf(a, b *Body) pairKey {
	if a.id > b.id {
		a, b = b, a
	}
	return pairKey{lo: a.id, hi: b.id}
}

// World owns the bodies and advances them in fixed steps.
type World struct {
	Gravity    mgl64.Vec3
	AllowSleep bool
	Iterations int

	DefaultContactMaterial *ContactMaterial

	bodies           []*Body
	contactMaterials map[materialPair]*ContactMaterial
	broadphase       sweepAndPrune
	solver           solver

	touching     map[pairKey]bool
	prevTouching map[pairKey]bool

	nextID      int
	accumulator float64
	time        float64
	stepCount   int
}

// NewWorld returns an empty world with default gravity, solver iterations
// and a frictional, non-bouncy default contact material.
func NewWorld() *World {
	return &World{
		Gravity:                mgl64.Vec3{0, DefaultGravity, 0},
		Iterations:             DefaultIterations,
		DefaultContactMaterial: &ContactMaterial{Friction: 0.3, Restitution: 0},
		contactMaterials:       make(map[materialPair]*ContactMaterial),
		touching:               make(map[pairKey]bool),
		prevTouching:           make(map[pairKey]bool),
		nextID:                 1,
	}
}

// SetGravity replaces the gravity vector. Sleeping bodies stay asleep.
func (w *World) SetGravity(g mgl64.Vec3) {
	w.Gravity = g
}

// AddContactMaterial registers cm for its material pair, replacing any
// earlier entry for the same pair.
func (w *World) AddContactMaterial(cm *ContactMaterial) {
	w.contactMaterials[pairOf(cm.A, cm.B)] = cm
}

// ContactMaterialFor returns the contact material registered for the two
// materials, or the world default.
func (w *World) ContactMaterialFor(a, b *Material) *ContactMaterial {
	if cm, ok := w.contactMaterials[pairOf(a, b)]; ok {
		return cm
	}
	return w.DefaultContactMaterial
}

// AddBody adds b to the simulation and assigns it an ID if it has none.
// IDs are never reused within a world.
func (w *World) AddBody(b *Body) {
	if b.id == 0 {
		b.id = w.nextID
		w.nextID++
	}
	w.bodies = append(w.bodies, b)
}

// RemoveBody detaches b from the world. It reports whether b was present.
func (w *World) RemoveBody(b *Body) bool {
	for i, other := range w.bodies {
		if other != b {
			continue
		}
		w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
		for k := range w.touching {
			if k.lo == b.id || k.hi == b.id {
				delete(w.touching, k)
			}
		}
		for k := range w.prevTouching {
			if k.lo == b.id || k.hi == b.id {
				delete(w.prevTouching, k)
			}
		}
		return true
	}
	return false
}

// Bodies returns a copy of the bodies in insertion order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) NumBodies() int { return len(w.bodies) }

// Time is the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// StepCount is the number of fixed steps taken.
func (w *World) StepCount() int { return w.stepCount }

// Step advances the world by as many fixed steps of dt as fit in the time
// accumulated so far, at most maxSubSteps. Time that could not be simulated
// is dropped down to less than one step. It returns the number of steps taken.
func (w *World) Step(dt, timeSinceLastCalled float64, maxSubSteps int) int {
	if dt <= 0 {
		return 0
	}
	w.accumulator += timeSinceLastCalled
	substeps := 0
	for w.accumulator >= dt && substeps < maxSubSteps {
		w.internalStep(dt)
		w.accumulator -= dt
		substeps++
	}
	w.accumulator = math.Mod(w.accumulator, dt)
	return substeps
}

// StepFixed advances exactly one step of dt.
func (w *World) StepFixed(dt float64) {
	w.internalStep(dt)
}

func (w *World) internalStep(dt float64) {
	for _, b := range w.bodies {
		if b.IsStatic() || b.IsSleeping() {
			continue
		}
		b.ApplyForce(w.Gravity.Mul(b.mass))
		b.integrate(dt)
	}

	var contacts []*Contact
	for _, p := range w.broadphase.pairs(w.bodies) {
		found := collide(p.a, p.b)
		if len(found) == 0 {
			continue
		}
		cm := w.ContactMaterialFor(p.a.Material, p.b.Material)
		for _, c := range found {
			c.friction = cm.Friction
			c.restitution = cm.Restitution
		}
		contacts = append(contacts, found...)
	}

	w.prevTouching, w.touching = w.touching, w.prevTouching
	for k := range w.touching {
		delete(w.touching, k)
	}

	var wake []*Body
	for _, c := range contacts {
		k := keyOf(c.A, c.B)
		if !w.touching[k] {
			w.touching[k] = true
			if !w.prevTouching[k] {
				c.A.dispatchCollide(CollideEvent{Target: c.A, Other: c.B, Contact: c})
				c.B.dispatchCollide(CollideEvent{Target: c.B, Other: c.A, Contact: c})
			}
		}
		if w.AllowSleep {
			wake = appendWake(wake, c.A, c.B)
			wake = appendWake(wake, c.B, c.A)
		}
	}
	for _, b := range wake {
		b.WakeUp()
	}

	w.solver.iterations = w.Iterations
	w.solver.solve(contacts, dt)

	for _, b := range w.bodies {
		if b.IsStatic() || b.IsSleeping() {
			continue
		}
		b.advance(dt)
	}

	w.time += dt
	w.stepCount++

	if w.AllowSleep {
		for _, b := range w.bodies {
			b.sleepTick(w.time)
		}
	}
}

// appendWake queues sleeper when mover is awake and fast enough to disturb it.
func appendWake(queue []*Body, mover, sleeper *Body) []*Body {
	if mover.IsStatic() || mover.IsSleeping() || !sleeper.IsSleeping() {
		return queue
	}
	speedSq := mover.Velocity.Dot(mover.Velocity) + mover.AngularVelocity.Dot(mover.AngularVelocity)
	limit := mover.SleepSpeedLimit
	if speedSq >= 2*limit*limit {
		queue = append(queue, sleeper)
	}
	return queue
}
