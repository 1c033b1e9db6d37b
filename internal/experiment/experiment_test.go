package experiment

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"testing"

	"github.com/san-kum/physbox/internal/config"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRunDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 5

	res, err := New(cfg, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Frames != 300 {
		t.Errorf("expected 300 frames, got %d", res.Frames)
	}
	if len(res.Recording.Objects) != 3 {
		t.Errorf("expected 3 recorded objects, got %d", len(res.Recording.Objects))
	}
	if len(res.Recording.Times) != 300 {
		t.Errorf("expected 300 recorded frames, got %d", len(res.Recording.Times))
	}
	if res.Metrics["impacts"] < 1 {
		t.Errorf("expected at least one impact sound, got %f", res.Metrics["impacts"])
	}
	if len(res.Volumes) != int(res.Metrics["impacts"]) {
		t.Errorf("volumes %d do not match impacts %f", len(res.Volumes), res.Metrics["impacts"])
	}
	for _, v := range res.Volumes {
		if v <= 0.06 || v > 1 {
			t.Errorf("volume %f out of range", v)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 2

	a, err := New(cfg, Options{ExtraBoxes: 2}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(cfg, Options{ExtraBoxes: 2}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	last := len(a.Recording.Positions) - 1
	for i, v := range a.Recording.Positions[last] {
		if math.Abs(v-b.Recording.Positions[last][i]) > 1e-12 {
			t.Fatalf("runs diverged at component %d: %f vs %f", i, v, b.Recording.Positions[last][i])
		}
	}
}

func TestSpheresSettle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Startup.RandomBoxes = 0
	cfg.Duration = 5

	res, err := New(cfg, Options{}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	settle := res.Metrics["settle_time"]
	if settle <= 0 || settle > 5 {
		t.Errorf("expected spheres to settle within 5s, got %f", settle)
	}
	last := res.Recording.Positions[len(res.Recording.Positions)-1]
	for i := 0; i < 2; i++ {
		if y := last[3*i+1]; math.Abs(y-0.5) > 0.02 {
			t.Errorf("sphere %d rests at y=%f", i, y)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(config.DefaultConfig(), Options{Frames: 10}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Frames != 0 {
		t.Error("expected an empty partial result")
	}
}

func TestRunNothing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 0
	if _, err := New(cfg, Options{}).Run(context.Background()); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 1
	cfg.Seed = 10

	results, err := NewEnsemble(cfg, Options{}, 4).Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != 10+int64(i) {
			t.Errorf("result %d: expected seed %d, got %d", i, 10+i, r.Seed)
		}
	}
	if Mean(results, "impacts") < 1 {
		t.Error("expected impacts in every run")
	}
	if cfg.Seed != 10 {
		t.Error("ensemble mutated the base config")
	}
}
