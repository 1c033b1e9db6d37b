package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapePlane:
		return "plane"
	default:
		return "unknown"
	}
}

// Shape is the collision geometry attached to a Body, expressed in the
// body's local frame.
type Shape interface {
	Kind() ShapeKind
	// Inertia returns the diagonal of the local inertia tensor for mass m.
	Inertia(m float64) mgl64.Vec3
	// AABB returns the world-space bounds for the given transform.
	AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB
}

type Sphere struct {
	Radius float64
}

func (s *Sphere) Kind() ShapeKind { return ShapeSphere }

func (s *Sphere) Inertia(m float64) mgl64.Vec3 {
	i := 2.0 / 5.0 * m * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) AABB(pos mgl64.Vec3, _ mgl64.Quat) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
}

type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Kind() ShapeKind { return ShapeBox }

func (b *Box) Inertia(m float64) mgl64.Vec3 {
	x, y, z := 2*b.HalfExtents.X(), 2*b.HalfExtents.Y(), 2*b.HalfExtents.Z()
	return mgl64.Vec3{
		m / 12 * (y*y + z*z),
		m / 12 * (x*x + z*z),
		m / 12 * (x*x + y*y),
	}
}

func (b *Box) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	r := rot.Mat4().Mat3()
	var ext mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ext[i] += math.Abs(r.At(i, j)) * b.HalfExtents[j]
		}
	}
	return AABB{Min: pos.Sub(ext), Max: pos.Add(ext)}
}

// Vertices returns the eight corners of the box in world space.
func (b *Box) Vertices(pos mgl64.Vec3, rot mgl64.Quat) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := b.HalfExtents
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()}
				out[i] = pos.Add(rot.Rotate(local))
				i++
			}
		}
	}
	return out
}

// Plane is infinite; its local normal is +Z.
type Plane struct{}

func (p *Plane) Kind() ShapeKind { return ShapePlane }

func (p *Plane) Inertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

func (p *Plane) AABB(mgl64.Vec3, mgl64.Quat) AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{-inf, -inf, -inf},
		Max: mgl64.Vec3{inf, inf, inf},
	}
}

// Normal returns the plane normal in world space.
func (p *Plane) Normal(rot mgl64.Quat) mgl64.Vec3 {
	return rot.Rotate(mgl64.Vec3{0, 0, 1})
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}
