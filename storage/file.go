package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps each champion as <name>.brain next to a <name>.yaml
// sidecar holding its metadata and save history.
type FileStore struct {
	dir string

	mu          sync.Mutex
	initialized bool
}

type sidecar struct {
	Latest  Record   `yaml:"latest"`
	Size    int      `yaml:"size"`
	History []Record `yaml:"history"`
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		return errors.New("file store directory is required")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	s.initialized = true
	return nil
}

func (s *FileStore) SaveBrain(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(rec.Name); err != nil {
		return err
	}

	meta, _, err := s.readSidecar(rec.Name)
	if err != nil {
		return err
	}

	if err := writeAtomic(s.path(rec.Name, ".brain"), rec.Data); err != nil {
		return fmt.Errorf("write brain %s: %w", rec.Name, err)
	}

	entry := rec
	entry.Data = nil
	meta.Latest = entry
	meta.Size = len(rec.Data)
	meta.History = append(meta.History, entry)

	out, err := yaml.Marshal(&meta)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path(rec.Name, ".yaml"), out); err != nil {
		return fmt.Errorf("write sidecar %s: %w", rec.Name, err)
	}
	return nil
}

func (s *FileStore) LoadBrain(_ context.Context, name string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(name); err != nil {
		return Record{}, false, err
	}

	meta, ok, err := s.readSidecar(name)
	if err != nil || !ok {
		return Record{}, false, err
	}

	data, err := os.ReadFile(s.path(name, ".brain"))
	if err != nil {
		return Record{}, false, fmt.Errorf("read brain %s: %w", name, err)
	}
	if len(data) != meta.Size {
		return Record{}, false, fmt.Errorf("brain %s is %d bytes, sidecar says %d", name, len(data), meta.Size)
	}

	rec := meta.Latest
	rec.Data = data
	return rec, true, nil
}

func (s *FileStore) History(_ context.Context, name string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(name); err != nil {
		return nil, err
	}
	meta, _, err := s.readSidecar(name)
	return meta.History, err
}

func (s *FileStore) check(name string) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("invalid brain name %q", name)
	}
	return nil
}

func (s *FileStore) path(name, ext string) string {
	return filepath.Join(s.dir, name+ext)
}

func (s *FileStore) readSidecar(name string) (sidecar, bool, error) {
	var meta sidecar
	data, err := os.ReadFile(s.path(name, ".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, err
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, false, fmt.Errorf("parse sidecar %s: %w", name, err)
	}
	return meta, true, nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
