package scene

// MeshState is the JSON view of a mesh.
type MeshState struct {
	ID            int          `json:"id"`
	Geometry      GeometryKind `json:"geometry"`
	Width         float64      `json:"width,omitempty"`
	Height        float64      `json:"height,omitempty"`
	Position      [3]float64   `json:"position"`
	Quaternion    [4]float64   `json:"quaternion"`
	Scale         [3]float64   `json:"scale"`
	Color         string       `json:"color,omitempty"`
	Metalness     float64      `json:"metalness"`
	Roughness     float64      `json:"roughness"`
	EnvMap        float64      `json:"envMapIntensity"`
	CastShadow    bool         `json:"castShadow"`
	ReceiveShadow bool         `json:"receiveShadow"`
}

// Transform is the per-frame part of a mesh.
type Transform struct {
	ID         int        `json:"id"`
	Position   [3]float64 `json:"position"`
	Quaternion [4]float64 `json:"quaternion"`
}

type LightState struct {
	Kind          LightKind    `json:"kind"`
	Color         string       `json:"color"`
	Intensity     float64      `json:"intensity"`
	Position      [3]float64   `json:"position"`
	CastShadow    bool         `json:"castShadow"`
	ShadowMapSize int          `json:"shadowMapSize,omitempty"`
	Shadow        ShadowCamera `json:"shadowCamera"`
}

type CameraState struct {
	FOV      float64    `json:"fov"`
	Aspect   float64    `json:"aspect"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

type Snapshot struct {
	Revision int          `json:"revision"`
	EnvMap   []string     `json:"envMap,omitempty"`
	Meshes   []MeshState  `json:"meshes"`
	Lights   []LightState `json:"lights"`
	Camera   CameraState  `json:"camera"`
}

func (m *Mesh) State() MeshState {
	st := MeshState{
		ID:            m.ID,
		Geometry:      m.Geometry.Kind,
		Position:      m.Position,
		Quaternion:    quat(m),
		Scale:         m.Scale,
		CastShadow:    m.CastShadow,
		ReceiveShadow: m.ReceiveShadow,
	}
	if m.Geometry.Kind == GeometryPlane {
		st.Width, st.Height = m.Geometry.Width, m.Geometry.Height
	}
	if m.Material != nil {
		st.Color = m.Material.Color
		st.Metalness = m.Material.Metalness
		st.Roughness = m.Material.Roughness
		if m.Material.UseEnvMap {
			st.EnvMap = m.Material.EnvMapIntensity
		}
	}
	return st
}

func (m *Mesh) Transform() Transform {
	return Transform{ID: m.ID, Position: m.Position, Quaternion: quat(m)}
}

// quat orders components x, y, z, w as three.js expects.
func quat(m *Mesh) [4]float64 {
	q := m.Quaternion
	return [4]float64{q.V.X(), q.V.Y(), q.V.Z(), q.W}
}

func (s *Scene) Snapshot(c *Camera) Snapshot {
	snap := Snapshot{
		Revision: s.revision,
		Meshes:   make([]MeshState, 0, len(s.meshes)),
		Lights:   make([]LightState, 0, len(s.lights)),
	}
	if s.EnvMap != nil {
		snap.EnvMap = s.EnvMap.Faces[:]
	}
	for _, m := range s.meshes {
		snap.Meshes = append(snap.Meshes, m.State())
	}
	for _, l := range s.lights {
		snap.Lights = append(snap.Lights, LightState{
			Kind:          l.Kind,
			Color:         l.Color,
			Intensity:     l.Intensity,
			Position:      l.Position,
			CastShadow:    l.CastShadow,
			ShadowMapSize: l.ShadowMapSize,
			Shadow:        l.Shadow,
		})
	}
	if c != nil {
		snap.Camera = CameraState{
			FOV:      c.FOV,
			Aspect:   c.Aspect,
			Near:     c.Near,
			Far:      c.Far,
			Position: c.Position,
			Target:   c.Target,
		}
	}
	return snap
}

// Transforms returns the current transform of every mesh in scene order.
func (s *Scene) Transforms() []Transform {
	out := make([]Transform, 0, len(s.meshes))
	for _, m := range s.meshes {
		out = append(out, m.Transform())
	}
	return out
}
