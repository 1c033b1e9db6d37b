// Package speaker plays a synthesized knock through the default output
// device. It implements audio.Player for frontends without their own mixer.
package speaker

import (
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 512

	knockFreq  = 180.0
	knockDecay = 18.0
	knockLen   = 0.25
)

type Speaker struct {
	stream *portaudio.Stream

	mu     sync.Mutex
	volume float64
	// playing is the volume of the sound currently sounding.
	playing float64
	t       float64
	gen     int
	active  bool

	filter float64
	levels Levels
}

// New returns a silent speaker. Call Start to open the output stream.
func New() *Speaker {
	return &Speaker{volume: 1, t: knockLen}
}

// Start opens the default output device and begins streaming.
func (s *Speaker) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, s.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start stream: %w", err)
	}
	s.stream = stream
	s.active = true
	return nil
}

// Stop closes the stream and releases portaudio.
func (s *Speaker) Stop() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}
	if s.active {
		portaudio.Terminate()
		s.active = false
	}
}

// Rewind silences the knock currently sounding.
func (s *Speaker) Rewind() {
	s.mu.Lock()
	s.t = knockLen
	s.gen++
	s.mu.Unlock()
}

// SetVolume sets the volume of the next Play, clamped to [0, 1].
func (s *Speaker) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = math.Max(0, math.Min(v, 1))
	s.mu.Unlock()
}

// Play starts the knock from the beginning.
func (s *Speaker) Play() {
	s.mu.Lock()
	s.t = 0
	s.gen++
	s.playing = s.volume
	s.mu.Unlock()
}

// Knock returns the knock sample at time t seconds after the start.
func Knock(t float64) float64 {
	if t < 0 || t >= knockLen {
		return 0
	}
	env := math.Exp(-knockDecay * t)
	body := math.Sin(2 * math.Pi * knockFreq * t)
	click := math.Sin(2*math.Pi*knockFreq*3.1*t) * math.Exp(-knockDecay*4*t)
	return env * (0.8*body + 0.2*click)
}

func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

func (s *Speaker) process(out [][]float32) {
	dt := 1.0 / float64(SampleRate)

	s.mu.Lock()
	t, vol, gen := s.t, s.playing, s.gen
	s.mu.Unlock()

	for i := range out[0] {
		s.filter = lpf(Knock(t)*vol, 2400, dt, s.filter)
		out[0][i] = float32(s.filter)
		out[1][i] = float32(s.filter)
		if t < knockLen {
			t += dt
		}
	}

	bands := Bands(out[0], SampleRate)

	s.mu.Lock()
	// Play or Rewind during the callback wins.
	if s.gen == gen {
		s.t = t
	}
	s.levels = s.levels.smooth(bands)
	s.mu.Unlock()
}

// Levels returns the smoothed band levels of recent output.
func (s *Speaker) Levels() Levels {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels
}

// BandLevels returns Levels as bass, mid and high.
func (s *Speaker) BandLevels() [3]float64 {
	l := s.Levels()
	return [3]float64{l.Bass, l.Mid, l.High}
}
