package storage

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	latest      map[string]Record
	history     map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.latest = make(map[string]Record)
	s.history = make(map[string][]Record)
	return nil
}

func (s *MemoryStore) SaveBrain(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.latest[rec.Name] = cloneRecord(rec)

	meta := rec
	meta.Data = nil
	s.history[rec.Name] = append(s.history[rec.Name], meta)
	return nil
}

func (s *MemoryStore) LoadBrain(_ context.Context, name string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return Record{}, false, ErrNotInitialized
	}
	rec, ok := s.latest[name]
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *MemoryStore) History(_ context.Context, name string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return append([]Record(nil), s.history[name]...), nil
}
