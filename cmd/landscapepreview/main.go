// Landscape preview tool - interactive terrain tuning with sliders.
//
// Usage: go run ./cmd/landscapepreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/scene"
	"github.com/pthm-cable/retroterm/screen"
	"github.com/pthm-cable/retroterm/ui"
)

const panelWidth = 320

// terrainParams holds the landscape settings being tuned.
type terrainParams struct {
	Amplitude float32
	Frequency float32
	Speed     float32
	Tilt      float32
	OffsetY   float32
	OffsetZ   float32
	Distance  float32
	Noise     bool
	Seed      int64
}

func paramsFromConfig(cfg *config.Config) terrainParams {
	lc := cfg.Landscape
	return terrainParams{
		Amplitude: float32(lc.Amplitude),
		Frequency: float32(lc.Frequency),
		Speed:     float32(lc.Speed),
		Tilt:      float32(lc.Tilt),
		OffsetY:   float32(lc.OffsetY),
		OffsetZ:   float32(lc.OffsetZ),
		Distance:  float32(cfg.Scene.CameraDistance),
		Noise:     lc.Noise,
		Seed:      lc.Seed,
	}
}

// build replaces the landscape in sc with one made from p.
func build(sc *scene.Scene, old *scene.Landscape, cfg *config.Config, p terrainParams) *scene.Landscape {
	if old != nil {
		sc.Remove(old.Mesh)
	}
	amp, freq, speed := float64(p.Amplitude), float64(p.Frequency), float64(p.Speed)
	height := scene.WaveHeight(amp, freq, speed)
	if p.Noise {
		height = scene.NoiseHeight(p.Seed, amp, freq, speed)
	}
	land := scene.NewLandscape(cfg.Landscape.GridSize, cfg.Landscape.Spacing, height,
		scene.HeightRamp(cfg.Landscape.Ramp, -amp, amp))
	land.Rotation = vec3.T{float64(p.Tilt), 0, 0}
	land.Position = vec3.T{0, float64(p.OffsetY), float64(p.OffsetZ)}
	sc.Add(land.Mesh)
	sc.Camera().Distance = float64(p.Distance)
	return land
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	grid := screen.NewGrid(cfg.Screen.Cols, cfg.Screen.Rows)
	sc := scene.New(grid, scene.Solid{Base: scene.Base{Foreground: cfg.Derived.ForegroundColor, Background: cfg.Derived.BackgroundColor}})
	cells := ui.NewGridPainter(cfg.Screen.CellWidth, cfg.Screen.CellHeight,
		cfg.Derived.ForegroundColor, cfg.Derived.BackgroundColor)
	gridW, gridH := cells.Size(grid)

	rl.InitWindow(gridW+panelWidth, max(gridH, 560), "Landscape Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := paramsFromConfig(cfg)
	params := defaults
	land := build(sc, nil, cfg, params)

	var t float64
	animating := true
	needsRebuild := false

	for !rl.WindowShouldClose() {
		if animating {
			t += float64(rl.GetFrameTime())
		}
		if needsRebuild {
			land = build(sc, land, cfg, params)
			needsRebuild = false
		}
		land.Update(t)
		sc.Render(t)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		cells.Draw(grid, 0, 0)

		// Control panel
		panelX := float32(gridW + 10)
		panelY := float32(10)
		rl.DrawText("Landscape Parameters", int32(panelX), int32(panelY), 20, rl.LightGray)
		panelY += 35

		slider := func(label string, value *float32, lo, hi float32) {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 90, Height: 20},
				"", "",
				*value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf("%.2f", *value), int32(panelX+panelWidth-80), int32(panelY+2), 16, rl.LightGray)
			if v != *value {
				*value = v
				needsRebuild = true
			}
			panelY += 32
		}
		slider("Amplitude", &params.Amplitude, 0, 1.5)
		slider("Frequency", &params.Frequency, 0.1, 6)
		slider("Speed", &params.Speed, 0, 4)
		slider("Tilt (radians)", &params.Tilt, -1.5, 1.5)
		slider("Offset Y", &params.OffsetY, -3, 3)
		slider("Offset Z", &params.OffsetZ, -3, 6)
		slider("Camera distance", &params.Distance, 1.5, 12)

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, toggleText(params.Noise, "Use Waves", "Use Noise")) {
			params.Noise = !params.Noise
			needsRebuild = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 150, Y: panelY, Width: 140, Height: 30}, "Random Seed") {
			params.Seed = rand.Int63()
			needsRebuild = true
		}
		panelY += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, toggleText(animating, "Pause", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 150, Y: panelY, Width: 140, Height: 30}, "Reset All") {
			params = defaults
			t = 0
			needsRebuild = true
		}
		panelY += 45

		st := sc.Stats()
		rl.DrawText(fmt.Sprintf("Triangles: %d  Cells: %d", st.Triangles, st.Painted), int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 20
		rl.DrawText(fmt.Sprintf("Seed: %d  Time: %.1f", params.Seed, t), int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 20
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(panelY), 14, rl.Gray)

		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(params.yaml())
		}

		rl.EndDrawing()
	}
}

// yaml renders the params as a config.yaml fragment.
func (p terrainParams) yaml() string {
	return fmt.Sprintf(`landscape:
  amplitude: %.3f
  frequency: %.3f
  speed: %.3f
  tilt: %.3f
  offset_y: %.3f
  offset_z: %.3f
  noise: %t
  seed: %d
scene:
  camera_distance: %.3f
`, p.Amplitude, p.Frequency, p.Speed, p.Tilt, p.OffsetY, p.OffsetZ, p.Noise, p.Seed, p.Distance)
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
