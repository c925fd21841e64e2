package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBreakthrough BookmarkType = "breakthrough"
	BookmarkPlateau      BookmarkType = "plateau"
	BookmarkShrink       BookmarkType = "population_shrink"
	BookmarkConverged    BookmarkType = "converged"
)

// Bookmark marks an interesting generation.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector spots breakthroughs and plateaus in the generation series.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	// PlateauGenerations is the stagnation count that triggers a plateau.
	PlateauGenerations int

	convergedCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:            make([]GenerationStats, historySize),
		historySize:        historySize,
		PlateauGenerations: 20,
	}
}

// Check analyzes the latest generation and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(GenerationStats) *Bookmark{
		bd.checkBreakthrough,
		bd.checkPlateau,
		bd.checkShrink,
		bd.checkConverged,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkBreakthrough fires when a new champion beats the rolling average of
// generation bests by a wide margin.
func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || !stats.Improved {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Best
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.Best > avg*2 {
		return &Bookmark{
			Type:        BookmarkBreakthrough,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Best %.2f is %.1fx recent average (%.2f)", stats.Best, stats.Best/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPlateau(stats GenerationStats) *Bookmark {
	if bd.PlateauGenerations <= 0 || stats.Stagnation != bd.PlateauGenerations {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPlateau,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("No new champion for %d generations (best ever %.2f)", stats.Stagnation, stats.BestEver),
	}
}

func (bd *BookmarkDetector) checkShrink(stats GenerationStats) *Bookmark {
	if stats.NextPopulation == 0 || stats.NextPopulation >= stats.Population {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkShrink,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Population shrunk from %d to %d", stats.Population, stats.NextPopulation),
	}
}

// checkConverged fires once when ratings stay tightly clustered for five
// generations in a row.
func (bd *BookmarkDetector) checkConverged(stats GenerationStats) *Bookmark {
	if stats.Population < 4 || stats.Mean <= 0 {
		bd.convergedCount = 0
		return nil
	}

	if stats.Std < 0.05*stats.Mean {
		bd.convergedCount++
	} else {
		bd.convergedCount = 0
	}

	if bd.convergedCount == 5 {
		return &Bookmark{
			Type:        BookmarkConverged,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Ratings converged around %.2f (std %.3f)", stats.Mean, stats.Std),
		}
	}
	return nil
}
