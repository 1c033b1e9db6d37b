package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
)

// Value is a float that encodes NaN as null.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(v), 'g', -1, 64)), nil
}

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Frames    int         `json:"frames"`
	Times     []float64   `json:"times"`
	Positions [][]Value   `json:"positions"`
}

// Export loads a run and builds its JSON export.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	positions := make([][]Value, len(states))
	for i, row := range states {
		positions[i] = make([]Value, len(row))
		for j, v := range row {
			positions[i][j] = Value(v)
		}
	}
	return &ExportData{
		Run:       *meta,
		Frames:    len(times),
		Times:     times,
		Positions: positions,
	}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
