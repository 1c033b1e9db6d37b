package sandbox

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/scene"
)

// CreateSphere spawns a sphere of mass 1 at position.
func (s *Session) CreateSphere(radius float64, position mgl64.Vec3) *ManagedObject {
	mesh := scene.NewMesh(s.sphereGeometry, s.sphereMaterial)
	mesh.Scale = mgl64.Vec3{radius, radius, radius}
	mesh.CastShadow = true
	mesh.Position = position

	body := physics.NewBody(physics.BodyOptions{
		Mass:     1,
		Shape:    &physics.Sphere{Radius: radius},
		Material: s.Material,
		Position: position,
	})
	return s.spawn(KindSphere, mesh, body)
}

// CreateBox spawns a box of mass 1 with the given full size at position.
func (s *Session) CreateBox(size, position mgl64.Vec3) *ManagedObject {
	mesh := scene.NewMesh(s.boxGeometry, s.boxMaterial)
	mesh.Scale = size
	mesh.CastShadow = true
	mesh.Position = position

	body := physics.NewBody(physics.BodyOptions{
		Mass:     1,
		Shape:    &physics.Box{HalfExtents: size.Mul(0.5)},
		Material: s.Material,
		Position: position,
	})
	return s.spawn(KindBox, mesh, body)
}

// CreateRandomSphere spawns a sphere with a radius drawn from
// (rand+SphereRadiusOffset)*SphereRadiusScale at a random spawn position.
func (s *Session) CreateRandomSphere() *ManagedObject {
	sp := s.cfg.Spawn
	radius := (s.rng.Float64() + sp.SphereRadiusOffset) * sp.SphereRadiusScale
	pos := s.randomPosition()
	log.Printf("[Session] random sphere r=%.3f at (%.2f, %.2f, %.2f)", radius, pos.X(), pos.Y(), pos.Z())
	return s.CreateSphere(radius, pos)
}

// CreateRandomBox spawns a box whose three extents are drawn independently
// from (rand+BoxSizeOffset)*BoxSizeScale.
func (s *Session) CreateRandomBox() *ManagedObject {
	sp := s.cfg.Spawn
	size := mgl64.Vec3{
		(s.rng.Float64() + sp.BoxSizeOffset) * sp.BoxSizeScale,
		(s.rng.Float64() + sp.BoxSizeOffset) * sp.BoxSizeScale,
		(s.rng.Float64() + sp.BoxSizeOffset) * sp.BoxSizeScale,
	}
	pos := s.randomPosition()
	log.Printf("[Session] random box %.2fx%.2fx%.2f at (%.2f, %.2f, %.2f)",
		size.X(), size.Y(), size.Z(), pos.X(), pos.Y(), pos.Z())
	return s.CreateBox(size, pos)
}

func (s *Session) randomPosition() mgl64.Vec3 {
	sp := s.cfg.Spawn
	return mgl64.Vec3{
		(s.rng.Float64() - 0.5) * sp.Spread,
		(s.rng.Float64() + sp.HeightOffset) * sp.HeightScale,
		(s.rng.Float64() - 0.5) * sp.Spread,
	}
}

func (s *Session) spawn(kind Kind, mesh *scene.Mesh, body *physics.Body) *ManagedObject {
	o := &ManagedObject{Kind: kind, Mesh: mesh, Body: body}
	o.listener = body.OnCollide(s.onCollide)
	s.Scene.Add(mesh)
	s.World.AddBody(body)
	s.Registry.Add(o)
	return o
}
