package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGravity     = -9.82
	DefaultFixedStep   = 1.0 / 60.0
	DefaultMaxSubSteps = 3
	DefaultIterations  = 10
	DefaultFriction    = 0.1
	DefaultRestitution = 0.5
	DefaultMinImpact   = 0.6
	DefaultVolumeScale = 0.1
	DefaultMinInterval = 50 * time.Millisecond
	DefaultFPS         = 60
	DefaultDuration    = 10.0

	GravityMin  = -20.0
	GravityMax  = 5.0
	GravityStep = 0.0001
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Physics  PhysicsConfig  `yaml:"physics"`
	Material MaterialConfig `yaml:"material"`
	Sound    SoundConfig    `yaml:"sound"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Startup  StartupConfig  `yaml:"startup"`
	Server   ServerConfig   `yaml:"server"`
	Window   WindowConfig   `yaml:"window"`
	Seed     int64          `yaml:"seed"`
	Duration float64        `yaml:"duration"`
}

type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity"`
	FixedStep   float64 `yaml:"fixed_step"`
	MaxSubSteps int     `yaml:"max_sub_steps"`
	Iterations  int     `yaml:"iterations"`
	AllowSleep  bool    `yaml:"allow_sleep"`
}

// MaterialConfig is the contact behaviour between two default materials.
type MaterialConfig struct {
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

type SoundConfig struct {
	Asset       string        `yaml:"asset"`
	MinInterval time.Duration `yaml:"min_interval"`
	MinImpact   float64       `yaml:"min_impact"`
	VolumeScale float64       `yaml:"volume_scale"`
	Enabled     bool          `yaml:"enabled"`
}

// SpawnConfig shapes random objects: a uniform draw u in [0,1) becomes
// (u+offset)*scale for sizes, (u-0.5)*spread for x and z, and
// (u+height_offset)*height_scale for y.
type SpawnConfig struct {
	SphereRadiusOffset float64 `yaml:"sphere_radius_offset"`
	SphereRadiusScale  float64 `yaml:"sphere_radius_scale"`
	BoxSizeOffset      float64 `yaml:"box_size_offset"`
	BoxSizeScale       float64 `yaml:"box_size_scale"`
	Spread             float64 `yaml:"spread"`
	HeightOffset       float64 `yaml:"height_offset"`
	HeightScale        float64 `yaml:"height_scale"`
}

type SphereSpec struct {
	Radius   float64    `yaml:"radius"`
	Position [3]float64 `yaml:"position,flow"`
}

type StartupConfig struct {
	Spheres       []SphereSpec `yaml:"spheres"`
	RandomBoxes   int          `yaml:"random_boxes"`
	RandomSpheres int          `yaml:"random_spheres"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			Gravity:     DefaultGravity,
			FixedStep:   DefaultFixedStep,
			MaxSubSteps: DefaultMaxSubSteps,
			Iterations:  DefaultIterations,
			AllowSleep:  true,
		},
		Material: MaterialConfig{
			Friction:    DefaultFriction,
			Restitution: DefaultRestitution,
		},
		Sound: SoundConfig{
			Asset:       "sounds/hit.mp3",
			MinInterval: DefaultMinInterval,
			MinImpact:   DefaultMinImpact,
			VolumeScale: DefaultVolumeScale,
			Enabled:     true,
		},
		Spawn: SpawnConfig{
			SphereRadiusOffset: 0.1,
			SphereRadiusScale:  0.4,
			BoxSizeOffset:      0.01,
			BoxSizeScale:       1.5,
			Spread:             3,
			HeightOffset:       1,
			HeightScale:        2,
		},
		Startup: StartupConfig{
			Spheres: []SphereSpec{
				{Radius: 0.5, Position: [3]float64{0, 3, 0}},
				{Radius: 0.5, Position: [3]float64{2, 3, 3}},
			},
			RandomBoxes: 1,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "web",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			FPS:    DefaultFPS,
		},
		Seed:     1,
		Duration: DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Physics.FixedStep <= 0:
		return fmt.Errorf("%w: physics.fixed_step must be positive", ErrInvalid)
	case c.Physics.MaxSubSteps < 1:
		return fmt.Errorf("%w: physics.max_sub_steps must be at least 1", ErrInvalid)
	case c.Physics.Iterations < 1:
		return fmt.Errorf("%w: physics.iterations must be at least 1", ErrInvalid)
	case c.Physics.Gravity < GravityMin || c.Physics.Gravity > GravityMax:
		return fmt.Errorf("%w: physics.gravity %g outside [%g, %g]", ErrInvalid, c.Physics.Gravity, GravityMin, GravityMax)
	case c.Material.Friction < 0 || c.Material.Restitution < 0:
		return fmt.Errorf("%w: material coefficients must not be negative", ErrInvalid)
	case c.Sound.MinInterval < 0:
		return fmt.Errorf("%w: sound.min_interval must not be negative", ErrInvalid)
	case c.Window.FPS <= 0:
		return fmt.Errorf("%w: window.fps must be positive", ErrInvalid)
	case c.Duration < 0:
		return fmt.Errorf("%w: duration must not be negative", ErrInvalid)
	}
	for i, s := range c.Startup.Spheres {
		if s.Radius <= 0 {
			return fmt.Errorf("%w: startup.spheres[%d] radius must be positive", ErrInvalid, i)
		}
	}
	return nil
}

// Frames is the number of frames a headless run of Duration seconds takes.
func (c *Config) Frames() int {
	return int(c.Duration*float64(c.Window.FPS) + 0.5)
}

// ClampGravity limits g to the slider range and snaps it to GravityStep.
func ClampGravity(g float64) float64 {
	if g < GravityMin {
		g = GravityMin
	}
	if g > GravityMax {
		g = GravityMax
	}
	steps := (g - GravityMin) / GravityStep
	return GravityMin + float64(int64(steps+0.5))*GravityStep
}
