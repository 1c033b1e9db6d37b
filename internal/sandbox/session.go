package sandbox

import (
	"context"
	"log"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physbox/internal/audio"
	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/scene"
)

const commandBuffer = 256

// Session owns the world, the scene and the objects spawned into them.
// Everything except Submit must be called from one goroutine.
type Session struct {
	World    *physics.World
	Scene    *scene.Scene
	Camera   *scene.Camera
	Controls Controls
	Gate     *audio.Gate
	Registry *Registry

	Floor     *physics.Body
	FloorMesh *scene.Mesh
	Material  *physics.Material

	cfg       *config.Config
	clock     Clock
	renderer  Renderer
	rng       *rand.Rand
	observers []Observer
	commands  chan Command

	sphereGeometry *scene.Geometry
	boxGeometry    *scene.Geometry
	sphereMaterial *scene.Material
	boxMaterial    *scene.Material

	prevElapsed float64
	frame       int
	sounds      int
}

// New builds an empty session: ground plane, lights, camera and the contact
// material, with no objects spawned (see SpawnStartup). A nil cfg means
// config.DefaultConfig and a nil clock means a WallClock.
func New(cfg *config.Config, clock Clock) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if clock == nil {
		clock = NewWallClock()
	}
	s := &Session{
		Scene:    scene.New(),
		Registry: &Registry{},
		cfg:      cfg,
		clock:    clock,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		commands: make(chan Command, commandBuffer),
	}
	s.Gate = audio.NewGate(nil)
	s.Gate.MinInterval = cfg.Sound.MinInterval
	s.Gate.MinImpact = cfg.Sound.MinImpact
	s.Gate.VolumeScale = cfg.Sound.VolumeScale

	s.buildWorld()
	s.buildScene()
	return s
}

func (s *Session) buildWorld() {
	w := physics.NewWorld()
	w.AllowSleep = s.cfg.Physics.AllowSleep
	w.Iterations = s.cfg.Physics.Iterations
	w.SetGravity(mgl64.Vec3{0, s.cfg.Physics.Gravity, 0})

	s.Material = physics.NewMaterial("default")
	cm := physics.NewContactMaterial(s.Material, s.Material, s.cfg.Material.Friction, s.cfg.Material.Restitution)
	w.AddContactMaterial(cm)
	w.DefaultContactMaterial = cm

	s.Floor = physics.NewBody(physics.BodyOptions{
		Mass:       0,
		Shape:      &physics.Plane{},
		Material:   s.Material,
		Quaternion: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{-1, 0, 0}),
	})
	w.AddBody(s.Floor)
	s.World = w
}

func (s *Session) buildScene() {
	s.Scene.EnvMap = &scene.EnvironmentMap{Faces: [6]string{
		"/textures/environmentMaps/0/px.png",
		"/textures/environmentMaps/0/nx.png",
		"/textures/environmentMaps/0/py.png",
		"/textures/environmentMaps/0/ny.png",
		"/textures/environmentMaps/0/pz.png",
		"/textures/environmentMaps/0/nz.png",
	}}

	s.FloorMesh = scene.NewMesh(scene.NewPlaneGeometry(10, 10), &scene.Material{
		Color:           "#777777",
		Metalness:       0.3,
		Roughness:       0.4,
		EnvMapIntensity: 0.5,
		UseEnvMap:       true,
	})
	s.FloorMesh.Quaternion = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
	s.FloorMesh.ReceiveShadow = true
	s.Scene.Add(s.FloorMesh)

	s.Scene.AddLight(&scene.Light{Kind: scene.LightAmbient, Color: "#ffffff", Intensity: 0.7})
	s.Scene.AddLight(&scene.Light{
		Kind:          scene.LightDirectional,
		Color:         "#ffffff",
		Intensity:     0.2,
		Position:      mgl64.Vec3{5, 5, 5},
		CastShadow:    true,
		ShadowMapSize: 1024,
		Shadow:        scene.ShadowCamera{Left: -7, Right: 7, Top: 7, Bottom: -7, Far: 15},
	})

	aspect := 1.0
	if s.cfg.Window.Height > 0 {
		aspect = float64(s.cfg.Window.Width) / float64(s.cfg.Window.Height)
	}
	s.Camera = scene.NewPerspectiveCamera(75, aspect, 0.1, 100)
	s.Camera.Position = mgl64.Vec3{-3, 3, 3}
	controls := scene.NewOrbitControls(s.Camera)
	controls.EnableDamping = true
	s.Controls = controls

	s.sphereGeometry = scene.UnitSphere()
	s.boxGeometry = scene.UnitBox()
	s.sphereMaterial = &scene.Material{Metalness: 0.3, Roughness: 0.4, EnvMapIntensity: 1, UseEnvMap: true}
	s.boxMaterial = &scene.Material{Metalness: 0.3, Roughness: 0.4, EnvMapIntensity: 1, UseEnvMap: true}
}

func (s *Session) Config() *config.Config { return s.cfg }

func (s *Session) Clock() Clock { return s.clock }

// Orbit returns the orbit controls when the session uses them.
func (s *Session) Orbit() *scene.OrbitControls {
	o, _ := s.Controls.(*scene.OrbitControls)
	return o
}

// SetRenderer sets the renderer Tick draws with. Nil disables drawing.
func (s *Session) SetRenderer(r Renderer) { s.renderer = r }

// SetPlayer sets the sound the gate plays on impact.
func (s *Session) SetPlayer(p audio.Player) {
	if !s.cfg.Sound.Enabled {
		p = nil
	}
	s.Gate.Player = p
}

// AddObserver registers o to receive every frame after it is stepped.
func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// FrameIndex counts the frames ticked so far.
func (s *Session) FrameIndex() int { return s.frame }

// Sounds counts impacts that got past the gate.
func (s *Session) Sounds() int { return s.sounds }

// Gravity returns the current vertical gravity in m/s².
func (s *Session) Gravity() float64 { return s.World.Gravity.Y() }

// SetGravity sets the vertical gravity, clamped and snapped to the slider
// range. It returns the value applied.
func (s *Session) SetGravity(y float64) float64 {
	y = config.ClampGravity(y)
	s.World.SetGravity(mgl64.Vec3{0, y, 0})
	return y
}

// Resize updates the camera for a new output size and forwards the
// viewport to the renderer.
func (s *Session) Resize(width, height int, devicePixelRatio float64) scene.Viewport {
	vp := s.Camera.Resize(width, height, devicePixelRatio)
	if r, ok := s.renderer.(Resizer); ok {
		r.SetViewport(vp)
	}
	return vp
}

// SpawnStartup creates the configured initial objects.
func (s *Session) SpawnStartup() {
	for _, sp := range s.cfg.Startup.Spheres {
		s.CreateSphere(sp.Radius, mgl64.Vec3(sp.Position))
	}
	for i := 0; i < s.cfg.Startup.RandomBoxes; i++ {
		s.CreateRandomBox()
	}
	for i := 0; i < s.cfg.Startup.RandomSpheres; i++ {
		s.CreateRandomSphere()
	}
}

// ResetAll removes every spawned object from the world and the scene.
func (s *Session) ResetAll() int {
	objects := s.Registry.Drain()
	for _, o := range objects {
		o.Body.RemoveCollideListener(o.listener)
		s.World.RemoveBody(o.Body)
		s.Scene.Remove(o.Mesh)
	}
	if len(objects) > 0 {
		log.Printf("[Session] reset %d objects", len(objects))
	}
	return len(objects)
}

// Tick runs one frame: step the world by the time since the last frame,
// copy body transforms onto meshes, update the controls and render.
func (s *Session) Tick() Frame {
	elapsed := s.clock.Elapsed()
	delta := elapsed - s.prevElapsed
	s.prevElapsed = elapsed

	n := s.World.Step(s.cfg.Physics.FixedStep, delta, s.cfg.Physics.MaxSubSteps)

	s.Registry.Each(func(o *ManagedObject) {
		o.Mesh.Position = o.Body.Position
		o.Mesh.Quaternion = o.Body.Quaternion
	})

	if s.Controls != nil {
		s.Controls.Update()
	}
	if s.renderer != nil {
		s.renderer.Render(s.Scene, s.Camera)
	}

	f := Frame{Index: s.frame, Elapsed: elapsed, Delta: delta, Substeps: n}
	s.frame++
	for _, o := range s.observers {
		o.OnFrame(s, f)
	}
	return f
}

// Submit queues cmd for the loop goroutine. It reports false when the
// queue is full and the command was dropped.
func (s *Session) Submit(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		log.Printf("[Session] command queue full, dropping command")
		return false
	}
}

// ApplyPending runs every queued command.
func (s *Session) ApplyPending() {
	for {
		select {
		case cmd := <-s.commands:
			cmd(s)
		default:
			return
		}
	}
}

// Run ticks once per frame signal until ctx is done or frames closes.
// Queued commands run between frames.
func (s *Session) Run(ctx context.Context, frames <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-s.commands:
			cmd(s)
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			s.ApplyPending()
			s.Tick()
		}
	}
}

func (s *Session) onCollide(ev physics.CollideEvent) {
	if s.Gate.OnCollision(ev.Contact.ImpactVelocityAlongNormal(), s.clock.Now()) {
		s.sounds++
	}
}
