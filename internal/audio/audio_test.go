package audio

import (
	"math"
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	t0 := time.Unix(1000, 0)
	ms := time.Millisecond

	type hit struct {
		impact float64
		at     time.Duration
	}
	tests := []struct {
		name    string
		hits    []hit
		plays   int
		volumes []float64
	}{
		{"single strong hit", []hit{{5, 0}}, 1, []float64{0.5}},
		{"volume capped", []hit{{20, 0}}, 1, []float64{1}},
		{"at threshold is silent", []hit{{0.6, 0}}, 0, nil},
		{"just above threshold", []hit{{0.61, 0}}, 1, []float64{0.061}},
		{"cooldown suppresses", []hit{{5, 0}, {7, 10 * ms}}, 1, []float64{0.5}},
		{"cooldown expires", []hit{{5, 0}, {7, 50 * ms}}, 2, []float64{0.5, 0.7}},
		{"weak hit does not start cooldown", []hit{{0.3, 0}, {5, 10 * ms}}, 1, []float64{0.5}},
		{"suppressed hit does not extend cooldown", []hit{{5, 0}, {5, 40 * ms}, {5, 60 * ms}}, 2, []float64{0.5, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			g := NewGate(rec)
			for _, h := range tt.hits {
				g.OnCollision(h.impact, t0.Add(h.at))
			}
			if rec.Plays() != tt.plays {
				t.Fatalf("expected %d plays, got %d", tt.plays, rec.Plays())
			}
			if rec.Rewinds() != tt.plays {
				t.Errorf("each play should rewind first: %d rewinds", rec.Rewinds())
			}
			got := rec.Volumes()
			for i, v := range tt.volumes {
				if math.Abs(got[i]-v) > 1e-9 {
					t.Errorf("play %d: expected volume %f, got %f", i, v, got[i])
				}
			}
		})
	}
}

func TestGateFirstCollisionAtZeroTime(t *testing.T) {
	rec := &Recorder{}
	g := NewGate(rec)
	if !g.OnCollision(2, time.Time{}.Add(time.Millisecond)) {
		t.Error("first qualifying collision should play")
	}
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	g := NewGate(Multi{a, b})
	g.OnCollision(3, time.Unix(0, 0))
	if a.Plays() != 1 || b.Plays() != 1 {
		t.Errorf("expected both players to play, got %d and %d", a.Plays(), b.Plays())
	}
}
