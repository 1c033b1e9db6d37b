package export

import (
	"fmt"
	"os"

	"github.com/san-kum/physbox/internal/storage"
)

// HeightSeries turns loaded run states into one height-over-time series per
// object.
func HeightSeries(meta *storage.RunMetadata, states [][]float64, times []float64) []Series {
	out := make([]Series, 0, len(meta.Objects))
	for i, obj := range meta.Objects {
		hs := storage.Heights(states, i)
		s := Series{Name: fmt.Sprintf("%s %d", obj.Kind, i)}
		for j, h := range hs {
			if j < len(times) {
				s.Points = append(s.Points, Point{X: times[j], Y: h})
			}
		}
		out = append(out, s)
	}
	return out
}

// RunSVG renders the heights of a stored run to path.
func RunSVG(st *storage.Store, runID, path string, width, height int) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	svg := PlotSVG(HeightSeries(meta, states, times), width, height)
	if svg == "" {
		return fmt.Errorf("no data to export")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
