package storage

import (
	"math"

	"github.com/san-kum/physbox/internal/sandbox"
)

type ObjectInfo struct {
	Kind string     `json:"kind"`
	Size [3]float64 `json:"size"`
}

// Recording collects object positions once per frame. It is a session
// observer. Every object ever seen gets its own column; frames where an
// object does not exist read as NaN.
type Recording struct {
	Objects   []ObjectInfo
	Times     []float64
	Positions [][]float64

	columns map[*sandbox.ManagedObject]int
}

func NewRecording() *Recording {
	return &Recording{columns: make(map[*sandbox.ManagedObject]int)}
}

// OnFrame appends one row of positions for the objects currently in the
// session.
func (r *Recording) OnFrame(s *sandbox.Session, _ sandbox.Frame) {
	if r.columns == nil {
		r.columns = make(map[*sandbox.ManagedObject]int)
	}
	objs := s.Registry.Objects()
	for _, o := range objs {
		if _, ok := r.columns[o]; ok {
			continue
		}
		r.columns[o] = len(r.Objects)
		r.Objects = append(r.Objects, ObjectInfo{
			Kind: string(o.Kind),
			Size: o.Mesh.Scale,
		})
	}

	row := make([]float64, 3*len(r.Objects))
	for i := range row {
		row[i] = math.NaN()
	}
	for _, o := range objs {
		p := o.Body.Position
		c := 3 * r.columns[o]
		row[c], row[c+1], row[c+2] = p.X(), p.Y(), p.Z()
	}
	r.Times = append(r.Times, s.World.Time())
	r.Positions = append(r.Positions, row)
}

// Heights returns the y series of object i, one value per frame.
func Heights(states [][]float64, i int) []float64 {
	out := make([]float64, 0, len(states))
	for _, row := range states {
		if 3*i+1 < len(row) {
			out = append(out, row[3*i+1])
		}
	}
	return out
}
