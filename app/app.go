// Package app wires the renderer and the trainer into an interactive
// character-grid display shared by the terminal and desktop views.
package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/scene"
	"github.com/pthm-cable/retroterm/screen"
	"github.com/pthm-cable/retroterm/telemetry"
	"github.com/pthm-cable/retroterm/trainer"
)

// Mode selects what the grid shows.
type Mode int

const (
	ModeDemo Mode = iota // spinning meshes over the landscape
	ModePong             // the current champion playing a live match
)

func (m Mode) String() string {
	if m == ModePong {
		return "pong"
	}
	return "demo"
}

// ParseMode converts a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "demo":
		return ModeDemo, nil
	case "pong":
		return ModePong, nil
	}
	return ModeDemo, fmt.Errorf("unknown mode %q (want demo or pong)", s)
}

// ticksPerFrame is how many match ticks run per displayed frame.
const ticksPerFrame = 2

// Source is the read-only view of a running trainer. All methods must be
// safe to call while the trainer runs on another goroutine.
type Source interface {
	Champion() (trainer.Champion, bool)
	LastReport() (trainer.Report, bool)
	Phase() trainer.Phase
}

// App owns the character grid and everything drawn into it. It is not safe
// for concurrent use; views call Update and Draw from one goroutine.
type App struct {
	cfg    *config.Config
	grid   *screen.Grid
	scene  *scene.Scene
	world  *World
	land   *scene.Landscape
	source Source
	frames telemetry.FrameClock

	mode Mode
	time float64

	pong      arcade.PongConfig
	match     *arcade.Pong
	matchGen  int
	matchSeed int64
}

// New builds the demo scene sized from cfg. source may be nil when no
// trainer is running.
func New(cfg *config.Config, source Source) *App {
	grid := screen.NewGrid(cfg.Screen.Cols, cfg.Screen.Rows)
	fg, bg := cfg.Derived.ForegroundColor, cfg.Derived.BackgroundColor

	chequered := scene.NewChequered(fg, bg)
	sc := cfg.Scene
	chequered.TileW, chequered.TileH = sc.TileWidth, sc.TileHeight
	chequered.SpeedX, chequered.SpeedY = sc.SpeedX, sc.SpeedY
	chequered.WiggleAmp, chequered.WiggleFreq = sc.WiggleAmp, sc.WiggleFreq
	chequered.Tint = sc.Tint

	a := &App{
		cfg:      cfg,
		grid:     grid,
		scene:    scene.New(grid, chequered),
		world:    NewWorld(),
		source:   source,
		pong:     cfg.Pong,
		matchGen: -1,
	}
	a.scene.Camera().Distance = sc.CameraDistance
	a.build()
	return a
}

func (a *App) build() {
	sc := a.cfg.Scene
	lc := a.cfg.Landscape

	height := scene.WaveHeight(lc.Amplitude, lc.Frequency, lc.Speed)
	if lc.Noise {
		height = scene.NoiseHeight(lc.Seed, lc.Amplitude, lc.Frequency, lc.Speed)
	}
	a.land = scene.NewLandscape(lc.GridSize, lc.Spacing, height, scene.HeightRamp(lc.Ramp, -lc.Amplitude, lc.Amplitude))
	a.land.Rotation = vec3.T{lc.Tilt, 0, 0}
	a.land.Position = vec3.T{0, lc.OffsetY, lc.OffsetZ}
	a.land.Update(0)
	a.scene.Add(a.land.Mesh)

	cube := scene.NewCube(sc.CubeRadius, scene.GlyphMaterials(sc.CubeGlyphs))
	cube.Position = vec3.T{-0.9, 0.2, 0}
	a.scene.Add(cube)
	a.world.Animate(cube, vec3.T{sc.SpinSpeed, sc.SpinSpeed * 0.7, 0}, sc.BobAmp, sc.BobFreq, 0)

	hex := scene.NewHexPrism(sc.HexRadius, sc.HexHeight, scene.GlyphMaterials(sc.HexGlyphs))
	hex.Position = vec3.T{0.9, 0.2, 0.5}
	a.scene.Add(hex)
	a.world.Animate(hex, vec3.T{sc.SpinSpeed * 0.5, -sc.SpinSpeed, sc.SpinSpeed * 0.3}, sc.BobAmp, sc.BobFreq, math.Pi)
}

// Grid returns the grid the app draws into.
func (a *App) Grid() *screen.Grid { return a.grid }

// Scene returns the demo scene.
func (a *App) Scene() *scene.Scene { return a.scene }

// World returns the animation world.
func (a *App) World() *World { return a.world }

// Mode returns the current display mode.
func (a *App) Mode() Mode { return a.mode }

// SetMode switches the display mode.
func (a *App) SetMode(m Mode) { a.mode = m }

// ToggleMode flips between demo and pong.
func (a *App) ToggleMode() {
	if a.mode == ModeDemo {
		a.mode = ModePong
	} else {
		a.mode = ModeDemo
	}
}

// Resize changes the grid size; the scene camera follows on the next frame.
func (a *App) Resize(cols, rows int) {
	a.grid.Resize(cols, rows)
}

// Time returns the animation clock in seconds.
func (a *App) Time() float64 { return a.time }

// Match returns the live match, or nil before the first champion.
func (a *App) Match() *arcade.Pong { return a.match }

// Update advances animation and the live match by dt seconds.
func (a *App) Update(dt float64) {
	a.time += dt
	a.frames.Tick()

	switch a.mode {
	case ModeDemo:
		a.world.Update(a.time, dt)
		a.land.Update(a.time)
	case ModePong:
		a.updateMatch()
	}
}

// updateMatch restarts the match whenever it ends or a newer champion is
// available.
func (a *App) updateMatch() {
	if a.source == nil {
		return
	}
	champ, ok := a.source.Champion()
	if !ok {
		return
	}
	if a.match == nil || a.match.Done() || champ.Generation != a.matchGen {
		a.matchSeed++
		a.match = arcade.NewPong(a.pong, champ.Brain.Clone(), a.matchSeed)
		a.matchGen = champ.Generation
	}
	for i := 0; i < ticksPerFrame && !a.match.Done(); i++ {
		a.match.Tick()
	}
}

// Draw renders the current mode and the status line into the grid.
func (a *App) Draw() {
	switch a.mode {
	case ModeDemo:
		a.scene.Render(a.time)
	case ModePong:
		a.drawPong()
	}
	a.drawStatus()
}

func (a *App) drawPong() {
	fg, bg := a.cfg.Derived.ForegroundColor, a.cfg.Derived.BackgroundColor
	a.grid.Fill(' ', fg, bg)

	w, h := a.grid.Size()
	h-- // status line
	if w < 4 || h < 3 {
		return
	}
	for x := 0; x < w; x++ {
		a.grid.SetCell(x, 0, '-', fg, bg)
		a.grid.SetCell(x, h-1, '-', fg, bg)
	}
	for y := 1; y < h-1; y += 2 {
		a.grid.SetCell(w/2, y, ':', fg, bg)
	}

	if a.match == nil {
		msg := "waiting for a champion"
		a.grid.WriteString((w-len(msg))/2, h/2, msg, fg, bg)
		return
	}

	s := a.match.State()
	sx := float64(w-1) / s.Width
	sy := float64(h-3) / s.Height
	cell := func(x, y float64) (int, int) {
		return int(math.Round(x * sx)), 1 + int(math.Round(y*sy))
	}

	for _, p := range [][2]float64{{s.LeftX, s.LeftY}, {s.RightX, s.RightY}} {
		x, top := cell(p[0], p[1]-s.PaddleHeight/2)
		_, bottom := cell(p[0], p[1]+s.PaddleHeight/2)
		for y := max(top, 1); y <= min(bottom, h-2); y++ {
			a.grid.SetCell(x, y, '|', fg, bg)
		}
	}
	bx, by := cell(s.BallX, s.BallY)
	a.grid.SetCell(bx, by, 'O', fg, bg)

	left, right := a.match.Score()
	score := fmt.Sprintf(" %d : %d ", left, right)
	a.grid.WriteString((w-len(score))/2, 0, score, fg, bg)
}

// Status returns the one-line summary shown at the bottom of the grid.
func (a *App) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] fps %.0f", a.mode, a.frames.FPS())

	if a.mode == ModeDemo {
		st := a.scene.Stats()
		fmt.Fprintf(&b, " | tris %d cells %d", st.Triangles, st.Painted)
	}
	if a.source == nil {
		return b.String()
	}

	if r, ok := a.source.LastReport(); ok {
		fmt.Fprintf(&b, " | gen %d pop %d best %.1f mean %.1f", r.Generation, r.Population, r.Best, r.Mean)
	}
	if c, ok := a.source.Champion(); ok {
		fmt.Fprintf(&b, " | champion %.1f (gen %d)", c.Rating, c.Generation)
	}
	fmt.Fprintf(&b, " | %s", a.source.Phase())
	return b.String()
}

func (a *App) drawStatus() {
	w, h := a.grid.Size()
	if h == 0 {
		return
	}
	bg := a.cfg.Derived.BackgroundColor
	for x := 0; x < w; x++ {
		a.grid.SetCell(x, h-1, ' ', bg, a.cfg.Derived.ForegroundColor)
	}
	a.grid.WriteString(0, h-1, a.Status(), bg, a.cfg.Derived.ForegroundColor)
}
