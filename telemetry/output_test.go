package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/retroterm/config"
)

func init() {
	config.MustInit("")
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Every method is a no-op on nil
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 0; i < 3; i++ {
		s := GenerationStats{Generation: i, Population: 10, Best: float64(i)}
		if err := om.WriteGeneration(s); err != nil {
			t.Fatalf("WriteGeneration: %v", err)
		}
	}
	if err := om.WritePerf(NewPerfCollector(5).Stats(), 2); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkPlateau, Generation: 2, Description: "flat"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("generations.csv has %d lines, want header + 3:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "generation,population") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "generation,population") != 1 {
		t.Error("header written more than once")
	}

	for _, name := range []string{"perf.csv", "bookmarks.csv", "config.yaml"} {
		if st, err := os.Stat(filepath.Join(dir, name)); err != nil || st.Size() == 0 {
			t.Errorf("%s missing or empty: %v", name, err)
		}
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestHallOfFame(t *testing.T) {
	hof := NewHallOfFame(3)

	for i, r := range []float64{2, 5, 1, 4, 3} {
		hof.Consider(HallEntry{Generation: i, Rating: r})
	}

	if hof.Size() != 3 {
		t.Fatalf("size = %d, want 3", hof.Size())
	}
	want := []float64{5, 4, 3}
	for i, e := range hof.Entries() {
		if e.Rating != want[i] {
			t.Errorf("entry %d rating = %v, want %v", i, e.Rating, want[i])
		}
	}

	if hof.Consider(HallEntry{Rating: 0.5}) {
		t.Error("low entry accepted into a full hall")
	}
	best, ok := hof.Best()
	if !ok || best.Generation != 1 {
		t.Errorf("best = %+v, %v", best, ok)
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	hof := NewHallOfFame(5)
	hof.Consider(HallEntry{Generation: 3, Rating: 7.5, Game: "pong", Brain: []byte{1, 2, 3}})
	hof.Consider(HallEntry{Generation: 9, Rating: 9, Game: "pong", Brain: []byte{4, 5}})
	if err := om.WriteHallOfFame(hof); err != nil {
		t.Fatalf("WriteHallOfFame: %v", err)
	}

	back, err := LoadHallOfFameFromFile(filepath.Join(dir, "hall_of_fame.json"), 5)
	if err != nil {
		t.Fatalf("LoadHallOfFameFromFile: %v", err)
	}
	if back.Size() != 2 {
		t.Fatalf("size = %d, want 2", back.Size())
	}
	best, _ := back.Best()
	if best.Generation != 9 || string(best.Brain) != string([]byte{4, 5}) {
		t.Errorf("best = %+v", best)
	}
}
