package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Breakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(GenerationStats{Generation: i, Population: 20, NextPopulation: 20, Best: 4})
	}

	bookmarks := bd.Check(GenerationStats{Generation: 5, Population: 20, NextPopulation: 20, Best: 12, Improved: true})
	if !hasBookmark(bookmarks, BookmarkBreakthrough) {
		t.Error("expected breakthrough bookmark")
	}

	// A big best without a new champion is not a breakthrough
	bookmarks = bd.Check(GenerationStats{Generation: 6, Population: 20, NextPopulation: 20, Best: 30})
	if hasBookmark(bookmarks, BookmarkBreakthrough) {
		t.Error("breakthrough without improvement")
	}
}

func TestBookmarkDetector_Plateau(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.PlateauGenerations = 3

	fired := 0
	for i := 1; i <= 6; i++ {
		bms := bd.Check(GenerationStats{Generation: i, Population: 10, NextPopulation: 10, Stagnation: i})
		if hasBookmark(bms, BookmarkPlateau) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("plateau fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_Shrink(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(GenerationStats{Population: 20, NextPopulation: 20}); hasBookmark(bms, BookmarkShrink) {
		t.Error("shrink fired without shrinking")
	}
	if bms := bd.Check(GenerationStats{Population: 20, NextPopulation: 18}); !hasBookmark(bms, BookmarkShrink) {
		t.Error("expected population_shrink bookmark")
	}
}

func TestBookmarkDetector_Converged(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 8; i++ {
		bms := bd.Check(GenerationStats{Generation: i, Population: 10, NextPopulation: 10, Mean: 10, Std: 0.1})
		if hasBookmark(bms, BookmarkConverged) {
			fired++
			if i != 4 {
				t.Errorf("converged fired at generation %d, want 4", i)
			}
		}
	}
	if fired != 1 {
		t.Errorf("converged fired %d times, want 1", fired)
	}
}
