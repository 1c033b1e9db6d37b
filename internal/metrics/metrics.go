package metrics

import (
	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/sandbox"
)

// Sample is what a metric sees after each frame.
type Sample struct {
	Time    float64
	Gravity float64
	Bodies  []*physics.Body
	Sounds  int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observe adapts metrics to a session observer. Only spawned bodies are
// sampled; the floor is left out.
func Observe(ms ...Metric) sandbox.Observer {
	return sandbox.ObserverFunc(func(s *sandbox.Session, f sandbox.Frame) {
		objs := s.Registry.Objects()
		bodies := make([]*physics.Body, len(objs))
		for i, o := range objs {
			bodies[i] = o.Body
		}
		sample := Sample{
			Time:    s.World.Time(),
			Gravity: s.Gravity(),
			Bodies:  bodies,
			Sounds:  s.Sounds(),
		}
		for _, m := range ms {
			m.Observe(sample)
		}
	})
}

// Values collects the current value of every metric by name.
func Values(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
