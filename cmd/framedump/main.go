// Frame dump tool - renders one frame of the demo scene to a PNG or text
// file for inspection.
//
// Usage: go run ./cmd/framedump -time 2.5 -out frame.png
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/retroterm/app"
	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/screen"
	"github.com/pthm-cable/retroterm/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "frame.png", "Output path (.png, or .txt for glyphs only)")
	at := flag.Float64("time", 0, "Scene time in seconds")
	step := flag.Float64("step", 1.0/30, "Animation step in seconds")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Step up to the requested time so animation state matches a live run.
	a := app.New(cfg, nil)
	for a.Time()+*step <= *at {
		a.Update(*step)
	}
	if rest := *at - a.Time(); rest > 0 {
		a.Update(rest)
	}
	a.Draw()

	if strings.HasSuffix(*outPath, ".txt") {
		if err := os.WriteFile(*outPath, []byte(gridText(a.Grid())), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write text: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Frame written to: %s\n", *outPath)
		return
	}

	cells := ui.NewGridPainter(cfg.Screen.CellWidth, cfg.Screen.CellHeight,
		cfg.Derived.ForegroundColor, cfg.Derived.BackgroundColor)
	width, height := cells.Size(a.Grid())

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(width, height, "Frame Dump")
	defer rl.CloseWindow()

	target := rl.LoadRenderTexture(width, height)
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	cells.Draw(a.Grid(), 0, 0)
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Frame rendered to: %s (%dx%d)\n", *outPath, width, height)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}

// gridText returns the glyphs of g, one line per row.
func gridText(g *screen.Grid) string {
	w, h := g.Size()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := g.At(x, y).Glyph
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
