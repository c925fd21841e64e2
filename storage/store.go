// Package storage persists champion brains between runs.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotInitialized is returned by stores used before Init.
var ErrNotInitialized = errors.New("storage: store is not initialized")

// Record is one saved champion. Data is the brain's serialised form and is
// opaque to the store.
type Record struct {
	Name       string    `yaml:"name"`
	Generation int       `yaml:"generation"`
	Rating     float64   `yaml:"rating"`
	SavedAt    time.Time `yaml:"saved_at"`
	Data       []byte    `yaml:"-"`
}

// Store saves the latest champion under a name and keeps a history of every
// save.
type Store interface {
	Init(ctx context.Context) error
	// SaveBrain replaces the champion stored under rec.Name.
	SaveBrain(ctx context.Context, rec Record) error
	LoadBrain(ctx context.Context, name string) (Record, bool, error)
	// History lists every save of name, oldest first. Data is left nil.
	History(ctx context.Context, name string) ([]Record, error)
}

func cloneRecord(rec Record) Record {
	rec.Data = append([]byte(nil), rec.Data...)
	return rec
}
