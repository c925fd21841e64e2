package app

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/retroterm/screen"
)

// TerminalView presents the app grid on a tcell screen.
type TerminalView struct {
	app  *App
	term *screen.Terminal
	fps  int
	last time.Time
}

// NewTerminalView wraps an initialised tcell screen. The grid is resized to
// match the terminal.
func NewTerminalView(a *App, scr tcell.Screen, fps int) *TerminalView {
	if fps <= 0 {
		fps = 30
	}
	v := &TerminalView{app: a, term: screen.NewTerminal(scr), fps: fps}
	a.Resize(scr.Size())
	return v
}

// HandleEvent applies one terminal event and reports whether the view
// should close.
func (v *TerminalView) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.app.Resize(ev.Size())
		v.term.Screen().Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return true
		case ev.Rune() == 'm', ev.Key() == tcell.KeyTab:
			v.app.ToggleMode()
		}
	}
	return false
}

// Frame advances the app by dt seconds and shows the result.
func (v *TerminalView) Frame(dt float64) {
	v.app.Update(dt)
	v.app.Draw()
	v.term.Blit(v.app.Grid())
	v.term.Show()
}

// Run draws frames until ctx is cancelled or the user quits. The caller
// owns the screen and must Fini it afterwards.
func (v *TerminalView) Run(ctx context.Context) error {
	scr := v.term.Screen()
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go scr.ChannelEvents(events, quit)

	ticker := time.NewTicker(time.Second / time.Duration(v.fps))
	defer ticker.Stop()
	v.last = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || v.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			v.Frame(now.Sub(v.last).Seconds())
			v.last = now
		}
	}
}
