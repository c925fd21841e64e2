package app

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/neural"
	"github.com/pthm-cable/retroterm/scene"
	"github.com/pthm-cable/retroterm/trainer"
)

type fakeSource struct {
	champ  trainer.Champion
	ok     bool
	report trainer.Report
}

func (f *fakeSource) Champion() (trainer.Champion, bool) { return f.champ, f.ok }
func (f *fakeSource) LastReport() (trainer.Report, bool) { return f.report, f.ok }
func (f *fakeSource) Phase() trainer.Phase               { return trainer.PhaseBreed }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Screen.Cols, cfg.Screen.Rows = 80, 24
	return cfg
}

func championSource(t *testing.T, cfg *config.Config, generation int) *fakeSource {
	t.Helper()
	b, err := neural.NewBrain(cfg.Derived.Topology, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	src := &fakeSource{champ: trainer.Champion{Brain: b, Rating: 12.5, Generation: generation}, ok: true}
	src.report.Generation = generation
	src.report.Population = 40
	return src
}

func bottomRow(a *App) string {
	w, h := a.Grid().Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(a.Grid().At(x, h-1).Glyph)
	}
	return b.String()
}

func countGlyph(a *App, glyph rune) int {
	n := 0
	w, h := a.Grid().Size()
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			if a.Grid().At(x, y).Glyph == glyph {
				n++
			}
		}
	}
	return n
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeDemo, false},
		{"demo", ModeDemo, false},
		{"pong", ModePong, false},
		{"tetris", ModeDemo, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNewBuildsScene(t *testing.T) {
	a := New(testConfig(t), nil)

	if n := len(a.Scene().Objects()); n != 3 {
		t.Errorf("scene has %d objects, want landscape, cube and hex prism", n)
	}
	if a.World().Len() != 2 {
		t.Errorf("world animates %d meshes, want 2", a.World().Len())
	}
	if w, h := a.Grid().Size(); w != 80 || h != 24 {
		t.Errorf("grid = %dx%d, want 80x24", w, h)
	}
	if a.Scene().Camera().Distance != 5 {
		t.Errorf("camera distance = %v", a.Scene().Camera().Distance)
	}
}

func TestDemoFrame(t *testing.T) {
	a := New(testConfig(t), nil)
	a.Update(0.1)
	a.Draw()

	st := a.Scene().Stats()
	if st.Objects != 3 || st.Painted == 0 {
		t.Errorf("frame stats = %+v, want 3 objects and painted cells", st)
	}
	if row := bottomRow(a); !strings.HasPrefix(row, "[demo]") {
		t.Errorf("status row = %q", row)
	}
}

func TestWorldUpdate(t *testing.T) {
	w := NewWorld()
	m := scene.NewCube(1, scene.GlyphMaterials("abcdef"))
	m.Position = vec3.T{0, 2, 0}
	w.Animate(m, vec3.T{1, 0, 0.5}, 0.5, 2, 0)

	w.Update(0.25, 0.1)
	if math.Abs(m.Rotation[0]-0.1) > 1e-12 || math.Abs(m.Rotation[2]-0.05) > 1e-12 {
		t.Errorf("rotation = %v", m.Rotation)
	}
	if want := 2 + 0.5*math.Sin(0.5); math.Abs(m.Position[1]-want) > 1e-12 {
		t.Errorf("y = %v, want %v", m.Position[1], want)
	}

	// Bobbing is around the original height, not the last position.
	w.Update(math.Pi, 0)
	if want := 2 + 0.5*math.Sin(2*math.Pi); math.Abs(m.Position[1]-want) > 1e-9 {
		t.Errorf("y = %v, want %v", m.Position[1], want)
	}
}

func TestPongModeWaitsForChampion(t *testing.T) {
	a := New(testConfig(t), &fakeSource{})
	a.SetMode(ModePong)
	a.Update(0.1)
	a.Draw()

	if a.Match() != nil {
		t.Error("match started without a champion")
	}
	found := false
	for y := 0; y < 23; y++ {
		var b strings.Builder
		for x := 0; x < 80; x++ {
			b.WriteRune(a.Grid().At(x, y).Glyph)
		}
		if strings.Contains(b.String(), "waiting for a champion") {
			found = true
		}
	}
	if !found {
		t.Error("waiting message not drawn")
	}
}

func TestPongModePlaysChampion(t *testing.T) {
	cfg := testConfig(t)
	src := championSource(t, cfg, 3)
	a := New(cfg, src)
	a.SetMode(ModePong)

	a.Update(0.1)
	a.Draw()

	m := a.Match()
	if m == nil {
		t.Fatal("no match started")
	}
	if m.Ticks() != ticksPerFrame {
		t.Errorf("match ticks = %d, want %d", m.Ticks(), ticksPerFrame)
	}
	if m.Brain() == src.champ.Brain {
		t.Error("match drives the trainer's champion directly")
	}
	if countGlyph(a, 'O') != 1 {
		t.Errorf("ball drawn %d times", countGlyph(a, 'O'))
	}
	if countGlyph(a, '|') == 0 {
		t.Error("no paddles drawn")
	}

	row := bottomRow(a)
	for _, want := range []string{"[pong]", "gen 3", "champion 12.5", "breed"} {
		if !strings.Contains(row, want) {
			t.Errorf("status %q missing %q", row, want)
		}
	}

	// Same champion keeps the match; a newer one restarts it.
	a.Update(0.1)
	if a.Match() != m {
		t.Error("match restarted without a new champion")
	}
	src.champ.Generation = 4
	a.Update(0.1)
	if a.Match() == m {
		t.Error("match not restarted for new champion")
	}
}

func TestToggleMode(t *testing.T) {
	a := New(testConfig(t), nil)
	a.ToggleMode()
	if a.Mode() != ModePong {
		t.Errorf("mode = %v after toggle", a.Mode())
	}
	a.ToggleMode()
	if a.Mode() != ModeDemo {
		t.Errorf("mode = %v after second toggle", a.Mode())
	}
}

func TestTerminalView(t *testing.T) {
	scr := tcell.NewSimulationScreen("")
	if err := scr.Init(); err != nil {
		t.Fatal(err)
	}
	defer scr.Fini()
	scr.SetSize(60, 20)

	a := New(testConfig(t), nil)
	v := NewTerminalView(a, scr, 30)
	if w, h := a.Grid().Size(); w != 60 || h != 20 {
		t.Fatalf("grid = %dx%d, want terminal size 60x20", w, h)
	}

	v.Frame(0.1)
	if r, _, _, _ := scr.GetContent(0, 19); r != '[' {
		t.Errorf("status cell = %q, want '['", r)
	}

	if v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone)) {
		t.Error("'m' closed the view")
	}
	if a.Mode() != ModePong {
		t.Error("'m' did not toggle mode")
	}

	scr.SetSize(40, 12)
	v.HandleEvent(tcell.NewEventResize(40, 12))
	if w, h := a.Grid().Size(); w != 40 || h != 12 {
		t.Errorf("grid = %dx%d after resize", w, h)
	}

	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("'q' did not close the view")
	}
}
