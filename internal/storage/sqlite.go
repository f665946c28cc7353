// Package storage keeps a library of named beam configurations in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/section"
)

// ErrPresetNotFound is returned when no preset has the requested name.
var ErrPresetNotFound = errors.New("preset not found")

// Store manages the SQLite database connection for the preset library.
type Store struct {
	db *sql.DB
}

// Preset is a named configuration.
type Preset struct {
	Name      string             `json:"name" yaml:"name"`
	Config    beam.Configuration `json:"config" yaml:"config"`
	UpdatedAt time.Time          `json:"updated_at" yaml:"updated_at"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS presets (
			name TEXT PRIMARY KEY,
			length REAL NOT NULL,
			load_position REAL NOT NULL,
			load REAL NOT NULL,
			material TEXT NOT NULL,
			section TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreset stores cfg under name, replacing any preset with the same name.
// Material aliases are stored under their preset name.
func (s *Store) SavePreset(name string, cfg beam.Configuration) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: preset name is empty", beam.ErrInvalidInput)
	}
	if canonical, err := material.Canonical(cfg.Material); err == nil {
		cfg.Material = canonical
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO presets (name, length, load_position, load, material, section, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET
			length = excluded.length,
			load_position = excluded.load_position,
			load = excluded.load,
			material = excluded.material,
			section = excluded.section,
			updated_at = CURRENT_TIMESTAMP`,
		name, cfg.Length, cfg.LoadPosition, cfg.Load, cfg.Material, cfg.Section.String(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save preset: %w", err)
	}
	return nil
}

// Preset returns the preset called name.
func (s *Store) Preset(name string) (Preset, error) {
	row := s.db.QueryRow(
		`SELECT name, length, load_position, load, material, section, updated_at
		 FROM presets WHERE name = ?`,
		strings.TrimSpace(name),
	)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p, err
}

// ListPresets returns all presets ordered by name.
func (s *Store) ListPresets() ([]Preset, error) {
	rows, err := s.db.Query(
		`SELECT name, length, load_position, load, material, section, updated_at
		 FROM presets ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return presets, nil
}

// DeletePreset removes the preset called name.
func (s *Store) DeletePreset(name string) error {
	res, err := s.db.Exec("DELETE FROM presets WHERE name = ?", strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("storage: cannot delete preset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot delete preset: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(sc scanner) (Preset, error) {
	var (
		p         Preset
		kind      string
		updatedAt any
	)
	err := sc.Scan(&p.Name, &p.Config.Length, &p.Config.LoadPosition, &p.Config.Load,
		&p.Config.Material, &kind, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, err
	}
	if err != nil {
		return Preset{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	p.Config.Section, err = section.ParseKind(kind)
	if err != nil {
		return Preset{}, fmt.Errorf("storage: preset %q: %w", p.Name, err)
	}

	// Parse the datetime - handle both time.Time and string
	switch v := updatedAt.(type) {
	case time.Time:
		p.UpdatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			p.UpdatedAt = parsed
		}
	}
	return p, nil
}
