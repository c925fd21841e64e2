package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// championMigrations upgrade the schema one step each; the database's
// user_version records how many have been applied.
var championMigrations = []string{
	`CREATE TABLE champions (
		name TEXT PRIMARY KEY,
		generation INTEGER NOT NULL,
		rating REAL NOT NULL,
		saved_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE TABLE champion_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		generation INTEGER NOT NULL,
		rating REAL NOT NULL,
		saved_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS champion_history_name ON champion_history (name, id);`,
}

// SQLiteStore keeps the latest champion per name plus an append-only rating
// history in a single SQLite file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and brings its schema up to date. Calling it on an
// open store is a no-op.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if s.path == "" {
		return errors.New("storage: sqlite champion store needs a path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open champions %s: %w", s.path, err)
	}
	// One writer at a time; concurrent saves queue here instead of failing
	// with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrateChampions(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("migrate champions %s: %w", s.path, err)
	}
	s.db = db
	return nil
}

// migrateChampions applies every migration past the stored user_version in
// one transaction.
func migrateChampions(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version > len(championMigrations) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", version, len(championMigrations))
	}
	if version == len(championMigrations) {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for i, stmt := range championMigrations[version:] {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", version+i+1, err)
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, len(championMigrations))); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveBrain(ctx context.Context, rec Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	savedAt := rec.SavedAt.UTC().UnixMicro()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO champions (name, generation, rating, saved_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			generation = excluded.generation,
			rating = excluded.rating,
			saved_at = excluded.saved_at,
			payload = excluded.payload
	`, rec.Name, rec.Generation, rec.Rating, savedAt, rec.Data)
	if err != nil {
		return fmt.Errorf("save champion %s: %w", rec.Name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO champion_history (name, generation, rating, saved_at)
		VALUES (?, ?, ?, ?)
	`, rec.Name, rec.Generation, rec.Rating, savedAt)
	if err != nil {
		return fmt.Errorf("append history %s: %w", rec.Name, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadBrain(ctx context.Context, name string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return Record{}, false, ErrNotInitialized
	}

	rec := Record{Name: name}
	var savedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT generation, rating, saved_at, payload FROM champions WHERE name = ?
	`, name).Scan(&rec.Generation, &rec.Rating, &savedAt, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load champion %s: %w", name, err)
	}
	rec.SavedAt = time.UnixMicro(savedAt).UTC()
	return rec, true, nil
}

// History returns every saved rating for name, oldest first.
func (s *SQLiteStore) History(ctx context.Context, name string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT generation, rating, saved_at FROM champion_history
		WHERE name = ? ORDER BY id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("champion history %s: %w", name, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec := Record{Name: name}
		var savedAt int64
		if err := rows.Scan(&rec.Generation, &rec.Rating, &savedAt); err != nil {
			return nil, err
		}
		rec.SavedAt = time.UnixMicro(savedAt).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database. The store can be re-opened with Init.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}
