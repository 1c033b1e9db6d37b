package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BodyType int

const (
	BodyTypeDynamic BodyType = iota
	BodyTypeStatic
)

type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

const (
	DefaultLinearDamping   = 0.01
	DefaultAngularDamping  = 0.01
	DefaultSleepSpeedLimit = 0.1
	DefaultSleepTimeLimit  = 1.0
)

// CollideEvent is delivered to a body's listeners when it starts touching
// another body. Target is the body the listener is attached to.
type CollideEvent struct {
	Target  *Body
	Other   *Body
	Contact *Contact
}

type CollideFunc func(CollideEvent)

type ListenerID uint64

type BodyOptions struct {
	Mass       float64
	Shape      Shape
	Material   *Material
	Position   mgl64.Vec3
	Quaternion mgl64.Quat
}

type Body struct {
	id       int
	Type     BodyType
	Shape    Shape
	Material *Material

	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64

	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64

	mass       float64
	invMass    float64
	invInertia mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3

	sleepState  SleepState
	sleepySince float64

	listeners    map[ListenerID]CollideFunc
	listenerSeq  ListenerID
	listenerKeys []ListenerID
}

// NewBody builds a body from opts. A mass of zero makes the body static.
func NewBody(opts BodyOptions) *Body {
	q := opts.Quaternion
	if q == (mgl64.Quat{}) {
		q = mgl64.QuatIdent()
	}
	b := &Body{
		Shape:           opts.Shape,
		Material:        opts.Material,
		Position:        opts.Position,
		Quaternion:      q,
		LinearDamping:   DefaultLinearDamping,
		AngularDamping:  DefaultAngularDamping,
		AllowSleep:      true,
		SleepSpeedLimit: DefaultSleepSpeedLimit,
		SleepTimeLimit:  DefaultSleepTimeLimit,
		listeners:       make(map[ListenerID]CollideFunc),
	}
	b.SetMass(opts.Mass)
	return b
}

// ID is assigned by World.AddBody; zero until then.
func (b *Body) ID() int { return b.id }

func (b *Body) Mass() float64 { return b.mass }

// SetMass updates mass and inertia; a non-positive mass makes the body static.
func (b *Body) SetMass(m float64) {
	if m <= 0 {
		b.Type = BodyTypeStatic
		b.mass = 0
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		return
	}
	b.Type = BodyTypeDynamic
	b.mass = m
	b.invMass = 1 / m
	b.invInertia = mgl64.Vec3{}
	if b.Shape != nil {
		in := b.Shape.Inertia(m)
		for i := 0; i < 3; i++ {
			if in[i] > 0 {
				b.invInertia[i] = 1 / in[i]
			}
		}
	}
}

// IsStatic reports whether the body has infinite mass.
func (b *Body) IsStatic() bool { return b.Type == BodyTypeStatic }

func (b *Body) SleepState() SleepState { return b.sleepState }

func (b *Body) IsSleeping() bool { return b.sleepState == Sleeping }

// WakeUp puts the body back into the simulation.
func (b *Body) WakeUp() {
	b.sleepState = Awake
}

// Sleep freezes the body and zeroes its velocities and accumulated forces.
func (b *Body) Sleep() {
	b.sleepState = Sleeping
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// ApplyForce accumulates a force at the center of mass for the next step.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	b.force = b.force.Add(f)
}

// VelocityAt returns the velocity of the world point p rigidly attached to b.
func (b *Body) VelocityAt(p mgl64.Vec3) mgl64.Vec3 {
	r := p.Sub(b.Position)
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

// AABB is the world-space bounding box of the body's shape.
func (b *Body) AABB() AABB {
	return b.Shape.AABB(b.Position, b.Quaternion)
}

// OnCollide subscribes fn to collide events and returns a handle for
// RemoveCollideListener.
func (b *Body) OnCollide(fn CollideFunc) ListenerID {
	b.listenerSeq++
	id := b.listenerSeq
	b.listeners[id] = fn
	b.listenerKeys = append(b.listenerKeys, id)
	return id
}

// RemoveCollideListener unsubscribes the listener with the given id. It
// reports whether one was removed.
func (b *Body) RemoveCollideListener(id ListenerID) bool {
	if _, ok := b.listeners[id]; !ok {
		return false
	}
	delete(b.listeners, id)
	for i, k := range b.listenerKeys {
		if k == id {
			b.listenerKeys = append(b.listenerKeys[:i], b.listenerKeys[i+1:]...)
			break
		}
	}
	return true
}

func (b *Body) ListenerCount() int { return len(b.listeners) }

func (b *Body) dispatchCollide(ev CollideEvent) {
	for _, id := range b.listenerKeys {
		if fn, ok := b.listeners[id]; ok {
			fn(ev)
		}
	}
}

func (b *Body) invInertiaWorld() mgl64.Mat3 {
	r := b.Quaternion.Mat4().Mat3()
	return r.Mul3(mgl64.Diag3(b.invInertia)).Mul3(r.Transpose())
}

func (b *Body) sleepTick(now float64) {
	if !b.AllowSleep || b.IsStatic() {
		return
	}
	speedSq := b.Velocity.Dot(b.Velocity) + b.AngularVelocity.Dot(b.AngularVelocity)
	limitSq := b.SleepSpeedLimit * b.SleepSpeedLimit
	switch {
	case b.sleepState == Awake && speedSq < limitSq:
		b.sleepState = Sleepy
		b.sleepySince = now
	case b.sleepState == Sleepy && speedSq > limitSq:
		b.WakeUp()
	case b.sleepState == Sleepy && now-b.sleepySince > b.SleepTimeLimit:
		b.Sleep()
	}
}

func (b *Body) integrate(dt float64) {
	b.Velocity = b.Velocity.Add(b.force.Mul(b.invMass * dt))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld().Mul3x1(b.torque).Mul(dt))

	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
}

func (b *Body) advance(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	w := mgl64.Quat{W: 0, V: b.AngularVelocity}
	dq := w.Mul(b.Quaternion).Scale(0.5 * dt)
	b.Quaternion = b.Quaternion.Add(dq).Normalize()
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}
