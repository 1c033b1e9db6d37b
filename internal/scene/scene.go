// Package scene holds the visual half of the sandbox: meshes, lights, the
// environment map and the camera. It does no drawing itself; frontends read
// it, usually through [Scene.Snapshot].
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

type GeometryKind string

const (
	GeometrySphere GeometryKind = "sphere"
	GeometryBox    GeometryKind = "box"
	GeometryPlane  GeometryKind = "plane"
)

// Geometry is shared between meshes. Spheres and boxes are unit sized and
// scaled per mesh; planes carry their own width and height.
type Geometry struct {
	Kind     GeometryKind
	Width    float64
	Height   float64
	Segments int
}

func UnitSphere() *Geometry { return &Geometry{Kind: GeometrySphere, Width: 1, Height: 1, Segments: 20} }
func UnitBox() *Geometry    { return &Geometry{Kind: GeometryBox, Width: 1, Height: 1, Segments: 1} }

func NewPlaneGeometry(w, h float64) *Geometry {
	return &Geometry{Kind: GeometryPlane, Width: w, Height: h, Segments: 1}
}

type Material struct {
	Color           string
	Metalness       float64
	Roughness       float64
	EnvMapIntensity float64
	UseEnvMap       bool
}

type Mesh struct {
	ID            int
	Geometry      *Geometry
	Material      *Material
	Position      mgl64.Vec3
	Quaternion    mgl64.Quat
	Scale         mgl64.Vec3
	CastShadow    bool
	ReceiveShadow bool
}

func NewMesh(g *Geometry, m *Material) *Mesh {
	return &Mesh{
		Geometry:   g,
		Material:   m,
		Quaternion: mgl64.QuatIdent(),
		Scale:      mgl64.Vec3{1, 1, 1},
	}
}

type LightKind string

const (
	LightAmbient     LightKind = "ambient"
	LightDirectional LightKind = "directional"
)

// ShadowCamera bounds the orthographic shadow frustum of a directional light.
type ShadowCamera struct {
	Left, Right, Top, Bottom, Far float64
}

type Light struct {
	Kind          LightKind
	Color         string
	Intensity     float64
	Position      mgl64.Vec3
	CastShadow    bool
	ShadowMapSize int
	Shadow        ShadowCamera
}

// EnvironmentMap lists the six cube faces in px, nx, py, ny, pz, nz order.
type EnvironmentMap struct {
	Faces [6]string
}

type Scene struct {
	EnvMap *EnvironmentMap

	meshes []*Mesh
	lights []*Light
	nextID int
	// revision changes whenever meshes are added or removed.
	revision int
}

func New() *Scene {
	return &Scene{nextID: 1}
}

// Add inserts m and assigns it an id if it has none. Adding a mesh that is
// already present is a no-op.
func (s *Scene) Add(m *Mesh) {
	if s.Contains(m) {
		return
	}
	if m.ID == 0 {
		m.ID = s.nextID
		s.nextID++
	}
	s.meshes = append(s.meshes, m)
	s.revision++
}

func (s *Scene) Remove(m *Mesh) bool {
	for i, other := range s.meshes {
		if other == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			s.revision++
			return true
		}
	}
	return false
}

func (s *Scene) Contains(m *Mesh) bool {
	for _, other := range s.meshes {
		if other == m {
			return true
		}
	}
	return false
}

func (s *Scene) AddLight(l *Light) {
	s.lights = append(s.lights, l)
	s.revision++
}

func (s *Scene) Meshes() []*Mesh {
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

func (s *Scene) Lights() []*Light {
	out := make([]*Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *Scene) Len() int { return len(s.meshes) }

func (s *Scene) Revision() int { return s.revision }
