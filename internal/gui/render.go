package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physbox/internal/scene"
)

func vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}

// axisAngle splits a unit quaternion into a rotation axis and an angle in
// degrees for rlgl.
func axisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	w := mgl64.Clamp(q.W, -1, 1)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-6 {
		return mgl64.Vec3{0, 1, 0}, 0
	}
	return q.V.Mul(1 / s), mgl64.RadToDeg(angle)
}

func drawMesh(m *scene.Mesh) {
	switch m.Geometry.Kind {
	case scene.GeometryPlane:
		drawFloor(m)
	case scene.GeometrySphere:
		drawSphere(m)
	case scene.GeometryBox:
		drawBox(m)
	}
}

func drawFloor(m *scene.Mesh) {
	size := rl.NewVector2(float32(m.Geometry.Width), float32(m.Geometry.Height))
	rl.DrawPlane(vec3(m.Position), size, ColFloor)
	half := float32(m.Geometry.Width / 2)
	for i := -5; i <= 5; i++ {
		p := float32(i) * half / 5
		rl.DrawLine3D(rl.NewVector3(p, 0.001, -half), rl.NewVector3(p, 0.001, half), ColTextDim)
		rl.DrawLine3D(rl.NewVector3(-half, 0.001, p), rl.NewVector3(half, 0.001, p), ColTextDim)
	}
}

func drawSphere(m *scene.Mesh) {
	r := float32(m.Scale.X())
	rings := int32(m.Geometry.Segments)
	rl.DrawSphereEx(vec3(m.Position), r, rings, rings, ColBody)
	rl.DrawSphereWires(vec3(m.Position), r*1.001, rings/2, rings/2, ColTextDim)
}

func drawBox(m *scene.Mesh) {
	axis, deg := axisAngle(m.Quaternion)
	sx, sy, sz := float32(m.Scale.X()), float32(m.Scale.Y()), float32(m.Scale.Z())

	rl.PushMatrix()
	rl.Translatef(float32(m.Position.X()), float32(m.Position.Y()), float32(m.Position.Z()))
	rl.Rotatef(float32(deg), float32(axis.X()), float32(axis.Y()), float32(axis.Z()))
	zero := rl.NewVector3(0, 0, 0)
	rl.DrawCube(zero, sx, sy, sz, ColBody)
	rl.DrawCubeWires(zero, sx, sy, sz, ColTextDim)
	rl.PopMatrix()
}
