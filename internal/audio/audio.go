// Package audio turns collision events into impact sounds.
package audio

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultMinInterval = 50 * time.Millisecond
	DefaultMinImpact   = 0.6
	DefaultVolumeScale = 0.1
)

// Player is a single reusable sound.
type Player interface {
	Rewind()
	SetVolume(v float64)
	Play()
}

// Gate rate-limits a Player and scales its volume by impact speed.
type Gate struct {
	Player      Player
	MinInterval time.Duration
	MinImpact   float64
	VolumeScale float64

	lastPlay time.Time
}

func NewGate(p Player) *Gate {
	return &Gate{
		Player:      p,
		MinInterval: DefaultMinInterval,
		MinImpact:   DefaultMinImpact,
		VolumeScale: DefaultVolumeScale,
	}
}

// OnCollision plays the sound when impact exceeds MinImpact and the last
// play was at least MinInterval ago. It reports whether it played.
func (g *Gate) OnCollision(impact float64, now time.Time) bool {
	if !g.lastPlay.IsZero() && now.Sub(g.lastPlay) < g.MinInterval {
		return false
	}
	if impact <= g.MinImpact {
		return false
	}
	g.lastPlay = now
	if g.Player == nil {
		return true
	}
	g.Player.Rewind()
	g.Player.SetVolume(Volume(impact, g.VolumeScale))
	g.Player.Play()
	return true
}

func (g *Gate) LastPlay() time.Time { return g.lastPlay }

func Volume(impact, scale float64) float64 {
	return math.Min(impact*scale, 1)
}

// Recorder is a Player that only remembers what it was asked to play.
type Recorder struct {
	mu      sync.Mutex
	volume  float64
	rewinds int
	volumes []float64
}

func (r *Recorder) Rewind() {
	r.mu.Lock()
	r.rewinds++
	r.mu.Unlock()
}

func (r *Recorder) SetVolume(v float64) {
	r.mu.Lock()
	r.volume = v
	r.mu.Unlock()
}

func (r *Recorder) Play() {
	r.mu.Lock()
	r.volumes = append(r.volumes, r.volume)
	r.mu.Unlock()
}

func (r *Recorder) Plays() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.volumes)
}

func (r *Recorder) Rewinds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rewinds
}

// Volumes returns the volume of every play in order.
func (r *Recorder) Volumes() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.volumes))
	copy(out, r.volumes)
	return out
}

// Multi fans one sound out to several players.
type Multi []Player

func (m Multi) Rewind() {
	for _, p := range m {
		p.Rewind()
	}
}

func (m Multi) SetVolume(v float64) {
	for _, p := range m {
		p.SetVolume(v)
	}
}

func (m Multi) Play() {
	for _, p := range m {
		p.Play()
	}
}
