package sandbox_test

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physbox/internal/audio"
	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/sandbox"
	"github.com/san-kum/physbox/internal/scene"
)

type fakeRenderer struct {
	renders  int
	viewport scene.Viewport
}

func (r *fakeRenderer) Render(*scene.Scene, *scene.Camera) { r.renders++ }
func (r *fakeRenderer) SetViewport(v scene.Viewport)      { r.viewport = v }

func advance(s *sandbox.Session, clock *sandbox.ManualClock, seconds float64) {
	frames := int(seconds * 60)
	for i := 0; i < frames; i++ {
		clock.Advance(1.0 / 60.0)
		s.Tick()
	}
}

var _ = Describe("Session", func() {
	var (
		s     *sandbox.Session
		clock *sandbox.ManualClock
		rec   *audio.Recorder
	)

	BeforeEach(func() {
		clock = sandbox.NewManualClock()
		s = sandbox.New(config.DefaultConfig(), clock)
		rec = &audio.Recorder{}
		s.SetPlayer(rec)
	})

	It("starts with only the floor", func() {
		Expect(s.Registry.Len()).To(Equal(0))
		Expect(s.World.NumBodies()).To(Equal(1))
		Expect(s.Floor.IsStatic()).To(BeTrue())
		Expect(s.Scene.Contains(s.FloorMesh)).To(BeTrue())
		Expect(s.Scene.Lights()).To(HaveLen(2))
	})

	Describe("creating objects", func() {
		It("registers a sphere at the requested position", func() {
			p := mgl64.Vec3{1, 2, 3}
			o := s.CreateSphere(0.5, p)

			Expect(s.Registry.Len()).To(Equal(1))
			Expect(o.Kind).To(Equal(sandbox.KindSphere))
			Expect(o.Mesh.Position).To(Equal(p))
			Expect(o.Body.Position).To(Equal(p))
			Expect(o.Mesh.Scale).To(Equal(mgl64.Vec3{0.5, 0.5, 0.5}))
			Expect(o.Body.Mass()).To(Equal(1.0))
			Expect(o.Body.ListenerCount()).To(Equal(1))
			Expect(s.Scene.Contains(o.Mesh)).To(BeTrue())
		})

		It("gives boxes half extents of half the size", func() {
			o := s.CreateBox(mgl64.Vec3{1, 2, 0.5}, mgl64.Vec3{0, 4, 0})
			box, ok := o.Body.Shape.(*physics.Box)
			Expect(ok).To(BeTrue())
			Expect(box.HalfExtents).To(Equal(mgl64.Vec3{0.5, 1, 0.25}))
			Expect(o.Mesh.Scale).To(Equal(mgl64.Vec3{1, 2, 0.5}))
		})

		It("draws random boxes from the configured ranges", func() {
			for i := 0; i < 50; i++ {
				o := s.CreateRandomBox()
				for _, c := range o.Mesh.Scale {
					Expect(c).To(BeNumerically(">=", 0.015))
					Expect(c).To(BeNumerically("<", 1.515))
				}
				p := o.Body.Position
				Expect(p.X()).To(BeNumerically(">=", -1.5))
				Expect(p.X()).To(BeNumerically("<", 1.5))
				Expect(p.Y()).To(BeNumerically(">=", 2))
				Expect(p.Y()).To(BeNumerically("<", 4))
				Expect(p.Z()).To(BeNumerically(">=", -1.5))
				Expect(p.Z()).To(BeNumerically("<", 1.5))
			}
			Expect(s.Registry.Len()).To(Equal(50))
		})

		It("draws random spheres from the configured ranges", func() {
			for i := 0; i < 50; i++ {
				o := s.CreateRandomSphere()
				r := o.Body.Shape.(*physics.Sphere).Radius
				Expect(r).To(BeNumerically(">=", 0.04))
				Expect(r).To(BeNumerically("<", 0.44))
			}
		})

		It("is reproducible for a given seed", func() {
			other := sandbox.New(config.DefaultConfig(), sandbox.NewManualClock())
			a := s.CreateRandomBox()
			b := other.CreateRandomBox()
			Expect(a.Mesh.Scale).To(Equal(b.Mesh.Scale))
			Expect(a.Body.Position).To(Equal(b.Body.Position))
		})
	})

	Describe("ResetAll", func() {
		It("removes every object and detaches listeners", func() {
			objs := []*sandbox.ManagedObject{
				s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0}),
				s.CreateBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 3, 0}),
				s.CreateRandomSphere(),
			}

			Expect(s.ResetAll()).To(Equal(3))
			Expect(s.Registry.Len()).To(Equal(0))
			Expect(s.World.NumBodies()).To(Equal(1))
			Expect(s.Scene.Len()).To(Equal(1))
			for _, o := range objs {
				Expect(o.Body.ListenerCount()).To(Equal(0))
				Expect(s.Scene.Contains(o.Mesh)).To(BeFalse())
			}
		})

		It("is idempotent", func() {
			s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			s.ResetAll()
			Expect(s.ResetAll()).To(Equal(0))
			Expect(s.World.NumBodies()).To(Equal(1))
			Expect(s.Scene.Contains(s.FloorMesh)).To(BeTrue())
			Expect(s.Scene.Lights()).To(HaveLen(2))
		})

		It("lets the simulation continue afterwards", func() {
			s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			advance(s, clock, 0.5)
			s.ResetAll()
			o := s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			advance(s, clock, 0.2)
			Expect(o.Body.Position.Y()).To(BeNumerically("<", 3))
		})
	})

	Describe("the frame loop", func() {
		It("settles the startup spheres on the floor", func() {
			s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			s.CreateSphere(0.5, mgl64.Vec3{2, 3, 3})
			advance(s, clock, 5)

			s.Registry.Each(func(o *sandbox.ManagedObject) {
				Expect(o.Body.Position.Y()).To(BeNumerically("~", 0.5, 0.02))
				Expect(o.Mesh.Position).To(Equal(o.Body.Position))
				Expect(o.Mesh.Quaternion).To(Equal(o.Body.Quaternion))
			})
			Expect(rec.Plays()).To(BeNumerically(">=", 1))
			Expect(s.Sounds()).To(Equal(rec.Plays()))

			rest := map[*sandbox.ManagedObject]float64{}
			s.Registry.Each(func(o *sandbox.ManagedObject) { rest[o] = o.Body.Position.Y() })
			for i := 0; i < 4; i++ {
				advance(s, clock, 0.5)
				s.Registry.Each(func(o *sandbox.ManagedObject) {
					Expect(o.Body.Velocity.Len()).To(BeNumerically("<", 0.01))
					Expect(o.Body.Position.Y()).To(BeNumerically("~", rest[o], 0.001))
				})
			}
		})

		It("stacks a box on an equal box and keeps it there", func() {
			lower := s.CreateBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0.5, 0})
			upper := s.CreateBox(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 2, 0})
			advance(s, clock, 5)

			Expect(lower.Body.Position.Y()).To(BeNumerically("~", 0.5, 0.03))
			Expect(upper.Body.Position.Y()).To(BeNumerically("~", 1.5, 0.03))

			y := upper.Body.Position.Y()
			advance(s, clock, 2)
			Expect(upper.Body.Position.Y()).To(BeNumerically("~", y, 0.01))
			Expect(upper.Body.Velocity.Len()).To(BeNumerically("<", 0.05))
		})

		It("rests a bar across another bar", func() {
			s.CreateBox(mgl64.Vec3{1.5, 0.2, 0.2}, mgl64.Vec3{0, 0.1, 0})
			upper := s.CreateBox(mgl64.Vec3{0.2, 0.2, 1.5}, mgl64.Vec3{0, 0.8, 0})
			advance(s, clock, 5)

			Expect(upper.Body.Position.Y()).To(BeNumerically("~", 0.3, 0.03))
		})

		It("plays no sound for a body resting on the floor", func() {
			s.CreateSphere(0.5, mgl64.Vec3{0, 0.5, 0})
			advance(s, clock, 1)
			Expect(rec.Plays()).To(Equal(0))
		})

		It("renders once per tick", func() {
			r := &fakeRenderer{}
			s.SetRenderer(r)
			advance(s, clock, 0.5)
			Expect(r.renders).To(Equal(30))
			Expect(s.FrameIndex()).To(Equal(30))
		})

		It("catches up at most three steps per frame", func() {
			s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			clock.Advance(1)
			f := s.Tick()
			Expect(f.Substeps).To(Equal(3))
			Expect(s.World.StepCount()).To(Equal(3))
		})

		It("notifies observers after each frame", func() {
			var seen []int
			s.AddObserver(sandbox.ObserverFunc(func(_ *sandbox.Session, f sandbox.Frame) {
				seen = append(seen, f.Index)
			}))
			advance(s, clock, 3.0/60.0)
			Expect(seen).To(Equal([]int{0, 1, 2}))
		})

		It("applies submitted commands on the loop", func() {
			frames := make(chan struct{}, 1)
			Expect(s.Submit(func(s *sandbox.Session) { s.CreateRandomBox() })).To(BeTrue())
			frames <- struct{}{}
			close(frames)

			Expect(s.Run(context.Background(), frames)).To(Succeed())
			Expect(s.Registry.Len()).To(Equal(1))
			Expect(s.FrameIndex()).To(Equal(1))
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(s.Run(ctx, make(chan struct{}))).To(MatchError(context.Canceled))
		})
	})

	Describe("gravity", func() {
		DescribeTable("clamps and snaps slider values",
			func(in, want float64) {
				Expect(s.SetGravity(in)).To(BeNumerically("~", want, 1e-9))
				Expect(s.Gravity()).To(BeNumerically("~", want, 1e-9))
			},
			Entry("default", -9.82, -9.82),
			Entry("below range", -50.0, -20.0),
			Entry("above range", 9.0, 5.0),
			Entry("fine step", -3.00004, -3.0),
		)

		It("makes bodies rise when positive", func() {
			s.SetGravity(5)
			o := s.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			advance(s, clock, 0.5)
			Expect(o.Body.Position.Y()).To(BeNumerically(">", 3))
		})
	})

	Describe("Resize", func() {
		It("updates the camera and forwards the viewport", func() {
			r := &fakeRenderer{}
			s.SetRenderer(r)
			vp := s.Resize(1000, 500, 3)
			Expect(s.Camera.Aspect).To(Equal(2.0))
			Expect(vp.PixelRatio).To(Equal(2.0))
			Expect(r.viewport).To(Equal(vp))
		})
	})

	It("spawns the configured startup objects", func() {
		s.SpawnStartup()
		Expect(s.Registry.Len()).To(Equal(3))
		objs := s.Registry.Objects()
		Expect(objs[0].Body.Position).To(Equal(mgl64.Vec3{0, 3, 0}))
		Expect(objs[1].Body.Position).To(Equal(mgl64.Vec3{2, 3, 3}))
		Expect(objs[2].Kind).To(Equal(sandbox.KindBox))
	})
})

var _ = Describe("Registry", func() {
	It("drains in insertion order", func() {
		r := &sandbox.Registry{}
		a := &sandbox.ManagedObject{Kind: sandbox.KindBox}
		b := &sandbox.ManagedObject{Kind: sandbox.KindSphere}
		r.Add(a)
		r.Add(b)

		Expect(r.Objects()).To(Equal([]*sandbox.ManagedObject{a, b}))
		Expect(r.Drain()).To(Equal([]*sandbox.ManagedObject{a, b}))
		Expect(r.Len()).To(Equal(0))
		Expect(r.Drain()).To(BeEmpty())
	})
})
