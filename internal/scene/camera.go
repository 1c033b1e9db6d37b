package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Camera struct {
	FOV      float64
	Aspect   float64
	Near     float64
	Far      float64
	Position mgl64.Vec3
	Target   mgl64.Vec3

	projection mgl64.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float64) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.UpdateProjectionMatrix()
	return c
}

func (c *Camera) UpdateProjectionMatrix() {
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl64.Mat4 { return c.projection }

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, mgl64.Vec3{0, 1, 0})
}

// Viewport is the output surface size the renderer draws into.
type Viewport struct {
	Width      int
	Height     int
	PixelRatio float64
}

// MaxPixelRatio caps the device pixel ratio forwarded to renderers.
const MaxPixelRatio = 2.0

// Resize updates the camera aspect and returns the viewport a renderer
// should use.
func (c *Camera) Resize(width, height int, devicePixelRatio float64) Viewport {
	if height > 0 {
		c.Aspect = float64(width) / float64(height)
		c.UpdateProjectionMatrix()
	}
	return Viewport{
		Width:      width,
		Height:     height,
		PixelRatio: math.Min(devicePixelRatio, MaxPixelRatio),
	}
}

// OrbitControls rotates the camera around its target. Input moves a goal
// angle; Update eases the camera towards it.
type OrbitControls struct {
	Camera        *Camera
	EnableDamping bool
	DampingFactor float64
	MinPolar      float64
	MaxPolar      float64

	azimuth, polar, radius float64
	goalAzimuth, goalPolar float64
}

func NewOrbitControls(c *Camera) *OrbitControls {
	o := &OrbitControls{
		Camera:        c,
		DampingFactor: 0.05,
		MinPolar:      0.01,
		MaxPolar:      math.Pi - 0.01,
	}
	o.sync()
	return o
}

func (o *OrbitControls) sync() {
	off := o.Camera.Position.Sub(o.Camera.Target)
	o.radius = off.Len()
	if o.radius == 0 {
		return
	}
	o.azimuth = math.Atan2(off.X(), off.Z())
	o.polar = math.Acos(mgl64.Clamp(off.Y()/o.radius, -1, 1))
	o.goalAzimuth, o.goalPolar = o.azimuth, o.polar
}

// Rotate nudges the goal angles by the given radians.
func (o *OrbitControls) Rotate(dAzimuth, dPolar float64) {
	o.goalAzimuth += dAzimuth
	o.goalPolar = mgl64.Clamp(o.goalPolar+dPolar, o.MinPolar, o.MaxPolar)
}

func (o *OrbitControls) Update() {
	if o.EnableDamping {
		o.azimuth += (o.goalAzimuth - o.azimuth) * o.DampingFactor
		o.polar += (o.goalPolar - o.polar) * o.DampingFactor
	} else {
		o.azimuth, o.polar = o.goalAzimuth, o.goalPolar
	}
	sinP := math.Sin(o.polar)
	off := mgl64.Vec3{
		o.radius * sinP * math.Sin(o.azimuth),
		o.radius * math.Cos(o.polar),
		o.radius * sinP * math.Cos(o.azimuth),
	}
	o.Camera.Position = o.Camera.Target.Add(off)
}
