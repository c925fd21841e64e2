package screen

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestGridSetCellKeep(t *testing.T) {
	g := NewGrid(4, 3)
	red := RGB(255, 0, 0)
	blue := RGB(0, 0, 255)

	g.SetCell(1, 1, '#', red, blue)
	g.SetCell(1, 1, '*', Keep, Keep)

	c := g.At(1, 1)
	if c.Glyph != '*' {
		t.Errorf("glyph = %q, want '*'", c.Glyph)
	}
	if c.Fg != red || c.Bg != blue {
		t.Errorf("Keep overwrote colours: fg=%v bg=%v", c.Fg, c.Bg)
	}
}

func TestGridOutOfRange(t *testing.T) {
	g := NewGrid(2, 2)
	g.SetCell(-1, 0, 'x', Keep, Keep)
	g.SetCell(2, 0, 'x', Keep, Keep)
	g.SetCell(0, 5, 'x', Keep, Keep)

	count := 0
	g.Each(func(x, y int, c Cell) {
		if c.Glyph == 'x' {
			count++
		}
	})
	if count != 0 {
		t.Errorf("out-of-range writes landed in %d cells", count)
	}
	if c := g.At(9, 9); c.Glyph != 0 {
		t.Errorf("At out of range = %+v, want zero cell", c)
	}
}

func TestGridWriteStringClips(t *testing.T) {
	g := NewGrid(5, 1)
	g.WriteString(2, 0, "hello", Keep, Keep)

	want := "  hel"
	got := make([]rune, 0, 5)
	for x := 0; x < 5; x++ {
		got = append(got, g.At(x, 0).Glyph)
	}
	if string(got) != want {
		t.Errorf("row = %q, want %q", string(got), want)
	}
}

func TestLerp(t *testing.T) {
	black := RGB(0, 0, 0)
	white := RGB(200, 100, 50)

	if Lerp(black, white, 0) != black {
		t.Error("Lerp(t=0) should return a")
	}
	if Lerp(black, white, 1) != white {
		t.Error("Lerp(t=1) should return b")
	}
	r, g, b := Lerp(black, white, 0.5).RGB()
	if r != 100 || g != 50 || b != 25 {
		t.Errorf("Lerp(0.5) = (%d,%d,%d), want (100,50,25)", r, g, b)
	}
}

func TestTerminalBlit(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer sim.Fini()
	sim.SetSize(3, 2)

	g := NewGrid(3, 2)
	g.SetCell(2, 1, '@', RGB(10, 20, 30), RGB(1, 2, 3))

	term := NewTerminal(sim)
	term.Blit(g)
	term.Show()

	cells, w, _ := sim.GetContents()
	c := cells[1*w+2]
	if len(c.Runes) == 0 || c.Runes[0] != '@' {
		t.Fatalf("cell runes = %v, want '@'", c.Runes)
	}
	fg, bg, _ := c.Style.Decompose()
	if fg != RGB(10, 20, 30) || bg != RGB(1, 2, 3) {
		t.Errorf("style = (%v, %v), want blitted colours", fg, bg)
	}
}

func TestTerminalSetCellKeepsStyle(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer sim.Fini()
	sim.SetSize(2, 2)

	term := NewTerminal(sim)
	bg := RGB(5, 5, 5)
	term.SetCell(0, 0, ' ', RGB(9, 9, 9), bg)
	term.SetCell(0, 0, '#', RGB(200, 0, 0), Keep)

	glyph, _, style, _ := sim.GetContent(0, 0)
	if glyph != '#' {
		t.Errorf("glyph = %q, want '#'", glyph)
	}
	_, gotBg, _ := style.Decompose()
	if gotBg != bg {
		t.Errorf("background = %v, want %v", gotBg, bg)
	}
}
