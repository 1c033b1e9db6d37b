package metrics

import (
	"math"

	"github.com/san-kum/physbox/internal/physics"
)

// TotalEnergy is the kinetic plus potential energy of bodies, with the
// floor at zero height.
func TotalEnergy(bodies []*physics.Body, gravity float64) float64 {
	total := 0.0
	g := math.Abs(gravity)
	for _, b := range bodies {
		if b.IsStatic() {
			continue
		}
		m := b.Mass()
		ke := 0.5 * m * b.Velocity.Dot(b.Velocity)
		if sh, ok := b.Shape.(*physics.Sphere); ok {
			i := sh.Inertia(m)[0]
			ke += 0.5 * i * b.AngularVelocity.Dot(b.AngularVelocity)
		}
		total += ke + m*g*b.Position.Y()
	}
	return total
}

// Energy reports the energy at the last sample.
type Energy struct {
	name    string
	last    float64
	peak    float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s Sample) {
	e.last = TotalEnergy(s.Bodies, s.Gravity)
	if e.samples == 0 || e.last > e.peak {
		e.peak = e.last
	}
	e.samples++
}

func (e *Energy) Value() float64 { return e.last }

func (e *Energy) Peak() float64 { return e.peak }

func (e *Energy) Reset() {
	e.last = 0
	e.peak = 0
	e.samples = 0
}

// Dissipated is the share of the peak energy lost by the last sample.
type Dissipated struct {
	Energy
}

func NewDissipated() *Dissipated {
	return &Dissipated{Energy: Energy{name: "dissipated"}}
}

func (d *Dissipated) Value() float64 {
	if d.peak == 0 {
		return 0
	}
	return (d.peak - d.last) / math.Abs(d.peak)
}
