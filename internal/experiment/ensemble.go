package experiment

import (
	"context"
	"sync"

	"github.com/san-kum/physbox/internal/config"
)

// Ensemble runs the same configuration with consecutive seeds in parallel.
type Ensemble struct {
	cfg       *config.Config
	opts      Options
	numRuns   int
	seedStart int64
}

func NewEnsemble(cfg *config.Config, opts Options, numRuns int) *Ensemble {
	return &Ensemble{cfg: cfg, opts: opts, numRuns: numRuns, seedStart: cfg.Seed}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := *e.cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			opts := e.opts
			opts.FrameObserver = nil
			results[idx], errs[idx] = New(&cfgCopy, opts).Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Mean averages one metric across results.
func Mean(results []*Result, name string) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Metrics[name]
	}
	return sum / float64(len(results))
}
