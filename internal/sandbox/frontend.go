package sandbox

import "github.com/san-kum/physbox/internal/scene"

// Renderer presents the scene once per frame.
type Renderer interface {
	Render(s *scene.Scene, c *scene.Camera)
}

// Resizer is implemented by renderers that track the output surface.
type Resizer interface {
	SetViewport(v scene.Viewport)
}

type Controls interface {
	Update()
}

type Frame struct {
	Index    int
	Elapsed  float64
	Delta    float64
	Substeps int
}

type Observer interface {
	OnFrame(s *Session, f Frame)
}

type ObserverFunc func(s *Session, f Frame)

func (fn ObserverFunc) OnFrame(s *Session, f Frame) { fn(s, f) }

// Command mutates the session. Commands run on the goroutine that owns it.
type Command func(*Session)
