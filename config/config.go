// Package config provides configuration loading and access for the renderer
// and the trainer.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/neural"
	"github.com/pthm-cable/retroterm/screen"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig      `yaml:"screen"`
	Scene     SceneConfig       `yaml:"scene"`
	Landscape LandscapeConfig   `yaml:"landscape"`
	Brain     BrainConfig       `yaml:"brain"`
	Evolution EvolutionConfig   `yaml:"evolution"`
	Pong      arcade.PongConfig `yaml:"pong"`
	Storage   StorageConfig     `yaml:"storage"`
	Telemetry TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig sizes the character grid and the desktop window around it.
type ScreenConfig struct {
	Cols       int    `yaml:"cols"`
	Rows       int    `yaml:"rows"`
	CellWidth  int    `yaml:"cell_width"`  // window pixels per column
	CellHeight int    `yaml:"cell_height"` // window pixels per row
	TargetFPS  int    `yaml:"target_fps"`
	Title      string `yaml:"title"`
}

// SceneConfig holds camera, background and demo mesh parameters.
type SceneConfig struct {
	CameraDistance float64 `yaml:"camera_distance"`
	Foreground     []int   `yaml:"foreground"` // RGB
	Background     []int   `yaml:"background"` // RGB

	TileWidth  float64 `yaml:"tile_width"`
	TileHeight float64 `yaml:"tile_height"`
	SpeedX     float64 `yaml:"speed_x"`
	SpeedY     float64 `yaml:"speed_y"`
	WiggleAmp  float64 `yaml:"wiggle_amp"`
	WiggleFreq float64 `yaml:"wiggle_freq"`
	Tint       float64 `yaml:"tint"`

	CubeRadius float64 `yaml:"cube_radius"`
	CubeGlyphs string  `yaml:"cube_glyphs"`
	HexRadius  float64 `yaml:"hex_radius"`
	HexHeight  float64 `yaml:"hex_height"`
	HexGlyphs  string  `yaml:"hex_glyphs"`
	SpinSpeed  float64 `yaml:"spin_speed"`
	BobAmp     float64 `yaml:"bob_amp"`
	BobFreq    float64 `yaml:"bob_freq"`
}

// LandscapeConfig controls the animated terrain mesh.
type LandscapeConfig struct {
	GridSize  int     `yaml:"grid_size"`
	Spacing   float64 `yaml:"spacing"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Speed     float64 `yaml:"speed"`
	Noise     bool    `yaml:"noise"` // simplex noise instead of sine swell
	Seed      int64   `yaml:"seed"`
	Ramp      string  `yaml:"ramp"` // glyphs, lowest first
	Tilt      float64 `yaml:"tilt"` // rotation about X, radians
	OffsetY   float64 `yaml:"offset_y"`
	OffsetZ   float64 `yaml:"offset_z"`
}

// BrainConfig shapes the networks. Input and output sizes come from the game.
type BrainConfig struct {
	Hidden        []int   `yaml:"hidden_layers"`
	LearningRate  float32 `yaml:"learning_rate"`
	MutationSigma float32 `yaml:"mutation_sigma"`
	NudgeSigma    float32 `yaml:"nudge_sigma"`
}

// EvolutionConfig controls the trainer.
type EvolutionConfig struct {
	Population     int     `yaml:"population"`
	MinPopulation  int     `yaml:"min_population"`
	ShrinkStep     int     `yaml:"shrink_step"`
	EliteFraction  float64 `yaml:"elite_fraction"`
	RandomFraction float64 `yaml:"random_fraction"`
	MutationRate   float64 `yaml:"mutation_rate"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	Workers        int     `yaml:"workers"` // 0 = GOMAXPROCS
	Seed           int64   `yaml:"seed"`
	MaxGenerations int     `yaml:"max_generations"` // 0 = until cancelled
}

// StorageConfig selects where champions are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file, sqlite
	Path    string `yaml:"path"`
	Name    string `yaml:"name"` // record name for the champion
}

// TelemetryConfig controls logging and experiment output.
type TelemetryConfig struct {
	OutputDir          string `yaml:"output_dir"`
	LogEvery           int    `yaml:"log_every"` // generations between log lines
	PerfWindow         int    `yaml:"perf_window"`
	HallOfFameSize     int    `yaml:"hall_of_fame_size"`
	PlateauGenerations int    `yaml:"plateau_generations"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Topology        neural.Topology // brain shape for the configured game
	ForegroundColor screen.Color
	BackgroundColor screen.Color
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects settings the trainer or renderer cannot run with.
func (c *Config) Validate() error {
	e := c.Evolution
	switch {
	case e.Population < 1:
		return fmt.Errorf("config: evolution.population must be positive, got %d", e.Population)
	case e.MinPopulation < 1 || e.MinPopulation > e.Population:
		return fmt.Errorf("config: evolution.min_population must be in [1, %d], got %d", e.Population, e.MinPopulation)
	case e.EliteFraction < 0 || e.EliteFraction > 1:
		return fmt.Errorf("config: evolution.elite_fraction must be in [0, 1], got %v", e.EliteFraction)
	case e.RandomFraction < 0 || e.RandomFraction > 1:
		return fmt.Errorf("config: evolution.random_fraction must be in [0, 1], got %v", e.RandomFraction)
	case e.ShrinkStep < 0:
		return fmt.Errorf("config: evolution.shrink_step must not be negative, got %d", e.ShrinkStep)
	}
	p := c.Pong
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("config: pong arena must be positive, got %vx%v", p.Width, p.Height)
	case p.PaddleHeight <= 0 || p.PaddleHeight > p.Height:
		return fmt.Errorf("config: pong.paddle_height must be in (0, %v], got %v", p.Height, p.PaddleHeight)
	case p.BallSpeed <= 0:
		return fmt.Errorf("config: pong.ball_speed must be positive, got %v", p.BallSpeed)
	case p.MaxTicks < 1:
		return fmt.Errorf("config: pong.max_ticks must be positive, got %d", p.MaxTicks)
	case p.PointsToWin < 1:
		return fmt.Errorf("config: pong.points_to_win must be positive, got %d", p.PointsToWin)
	}
	for i, n := range c.Brain.Hidden {
		if n < 1 {
			return fmt.Errorf("config: brain.hidden_layers[%d] must be positive, got %d", i, n)
		}
	}
	if c.Screen.Cols < 1 || c.Screen.Rows < 1 {
		return fmt.Errorf("config: screen must be at least 1x1, got %dx%d", c.Screen.Cols, c.Screen.Rows)
	}
	if c.Landscape.GridSize < 2 {
		return fmt.Errorf("config: landscape.grid_size must be at least 2, got %d", c.Landscape.GridSize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Topology = neural.Topology{
		Inputs:       arcade.PongInputs,
		Hidden:       c.Brain.Hidden,
		Outputs:      arcade.PongActions,
		LearningRate: c.Brain.LearningRate,
	}
	c.Derived.ForegroundColor = rgb(c.Scene.Foreground, screen.Keep)
	c.Derived.BackgroundColor = rgb(c.Scene.Background, screen.Keep)
}

// rgb converts a three-element list to a colour, or returns def.
func rgb(c []int, def screen.Color) screen.Color {
	if len(c) != 3 {
		return def
	}
	clamp := func(v int) uint8 {
		return uint8(max(0, min(255, v)))
	}
	return screen.RGB(clamp(c[0]), clamp(c[1]), clamp(c[2]))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
