// Package experiment runs the sandbox headless for a fixed number of frames.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/physbox/internal/audio"
	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/metrics"
	"github.com/san-kum/physbox/internal/sandbox"
	"github.com/san-kum/physbox/internal/storage"
)

type Options struct {
	Frames        int
	ExtraBoxes    int
	ExtraSpheres  int
	SkipStartup   bool
	FrameObserver sandbox.Observer
}

type Result struct {
	Seed      int64
	Frames    int
	Recording *storage.Recording
	Metrics   map[string]float64
	Volumes   []float64
}

type Experiment struct {
	cfg     *config.Config
	opts    Options
	clock   *sandbox.ManualClock
	session *sandbox.Session
	sound   *audio.Recorder
	metrics []metrics.Metric
	rec     *storage.Recording
}

// New prepares a headless run of cfg driven by a manual clock.
func New(cfg *config.Config, opts Options) *Experiment {
	clock := sandbox.NewManualClock()
	s := sandbox.New(cfg, clock)
	e := &Experiment{
		cfg:     cfg,
		opts:    opts,
		clock:   clock,
		session: s,
		sound:   &audio.Recorder{},
		metrics: []metrics.Metric{metrics.NewEnergy(), metrics.NewDissipated(), metrics.NewSettle(), metrics.NewImpacts()},
		rec:     storage.NewRecording(),
	}
	s.SetPlayer(e.sound)
	s.AddObserver(metrics.Observe(e.metrics...))
	s.AddObserver(e.rec)
	if opts.FrameObserver != nil {
		s.AddObserver(opts.FrameObserver)
	}
	return e
}

// Session returns the underlying session for adding observers.
func (e *Experiment) Session() *sandbox.Session { return e.session }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	frames := e.opts.Frames
	if frames <= 0 {
		frames = e.cfg.Frames()
	}
	if frames <= 0 {
		return nil, fmt.Errorf("%w: nothing to run", config.ErrInvalid)
	}

	s := e.session
	if !e.opts.SkipStartup {
		s.SpawnStartup()
	}
	for i := 0; i < e.opts.ExtraBoxes; i++ {
		s.CreateRandomBox()
	}
	for i := 0; i < e.opts.ExtraSpheres; i++ {
		s.CreateRandomSphere()
	}

	frameTime := 1.0 / float64(e.cfg.Window.FPS)
	result := &Result{Seed: e.cfg.Seed, Recording: e.rec}
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			result.Metrics = metrics.Values(e.metrics...)
			return result, ctx.Err()
		default:
		}
		e.clock.Advance(frameTime)
		s.Tick()
		result.Frames++
	}

	result.Metrics = metrics.Values(e.metrics...)
	result.Volumes = e.sound.Volumes()
	return result, nil
}
