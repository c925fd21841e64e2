package ui

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/retroterm/app"
	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/config"
)

const panelWidth = 260

// Window draws the app grid as coloured cells with one glyph each.
type Window struct {
	app    *app.App
	cfg    *config.Config
	source app.Source
	hud    *HUD
	cells  GridPainter
}

// NewWindow creates a window view. source may be nil.
func NewWindow(a *app.App, cfg *config.Config, source app.Source) *Window {
	cells := NewGridPainter(cfg.Screen.CellWidth, cfg.Screen.CellHeight,
		cfg.Derived.ForegroundColor, cfg.Derived.BackgroundColor)
	gridW, _ := cells.Size(a.Grid())
	return &Window{
		app:    a,
		cfg:    cfg,
		source: source,
		hud:    NewHUD(gridW, 0, panelWidth),
		cells:  cells,
	}
}

// Run opens the window and draws until it is closed or ctx is cancelled.
// It must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) {
	gridW, height := w.cells.Size(w.app.Grid())
	width := gridW + panelWidth

	rl.InitWindow(width, height, w.cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(w.cfg.Screen.TargetFPS))

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if rl.IsKeyPressed(rl.KeyM) || rl.IsKeyPressed(rl.KeyTab) {
			w.app.ToggleMode()
		}

		w.app.Update(float64(rl.GetFrameTime()))
		w.app.Draw()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		w.cells.Draw(w.app.Grid(), 0, 0)
		if w.hud.Draw(w.hudData(), height) {
			w.app.ToggleMode()
		}
		rl.EndDrawing()
	}
}

func (w *Window) hudData() HUDData {
	data := HUDData{
		Mode:          w.app.Mode(),
		FPS:           rl.GetFPS(),
		MaxPopulation: w.cfg.Evolution.Population,
	}
	if w.source != nil {
		data.Report, data.HasReport = w.source.LastReport()
		data.Champion, data.HasChampion = w.source.Champion()
		data.Phase = w.source.Phase()
	}
	if m := w.app.Match(); m != nil && w.app.Mode() == app.ModePong {
		net := m.Brain().Network()
		data.Network = NetworkView{
			Net:          net,
			Activations:  net.Trace(arcade.EncodePong(m.State())),
			InputLabels:  arcade.PongInputLabels,
			OutputLabels: arcade.PongActionLabels,
		}
	}
	return data
}
