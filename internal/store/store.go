// Package store keeps named dialog definitions in a sqlite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no definition has the requested name.
var ErrNotFound = errors.New("dialog not found")

const schema = `
CREATE TABLE IF NOT EXISTS dialogs (
    name TEXT PRIMARY KEY,
    options TEXT NOT NULL DEFAULT '{}',
    html TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL
);
`

// Definition is a stored dialog: option values plus optional body markup
// that replaces the content option when served.
type Definition struct {
	Name      string         `json:"name" yaml:"name"`
	Options   map[string]any `json:"options" yaml:"options"`
	HTML      string         `json:"html,omitempty" yaml:"html,omitempty"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"-"`
}

// Store wraps the database connection
type Store struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Enable WAL mode so the server can read while the CLI writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s, err := New(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection and creates the schema.
func New(conn *sql.DB) (*Store, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{conn: conn, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Put inserts or replaces a definition.
func (s *Store) Put(def *Definition) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return errors.New("dialog name is required")
	}
	opts := def.Options
	if opts == nil {
		opts = map[string]any{}
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("encode options for %s: %w", name, err)
	}
	def.Name = name
	def.UpdatedAt = s.now().UTC()

	_, err = s.conn.Exec(`
		INSERT INTO dialogs (name, options, html, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			options = excluded.options,
			html = excluded.html,
			updated_at = excluded.updated_at
	`, name, string(data), def.HTML, def.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

// Get returns the definition named name.
func (s *Store) Get(name string) (*Definition, error) {
	row := s.conn.QueryRow(`SELECT name, options, html, updated_at FROM dialogs WHERE name = ?`, name)
	def, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return def, nil
}

// List returns every definition ordered by name.
func (s *Store) List() ([]Definition, error) {
	rows, err := s.conn.Query(`SELECT name, options, html, updated_at FROM dialogs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list dialogs: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// Delete removes the definition named name.
func (s *Store) Delete(name string) error {
	res, err := s.conn.Exec(`DELETE FROM dialogs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return nil
}

// SearchResult is a definition matched by Search.
type SearchResult struct {
	Definition
	Score   int
	Matched []int // byte offsets in Name of the matched characters
}

// Search fuzzy-matches query against definition names, best match first.
// An empty query returns every definition.
func (s *Store) Search(query string) ([]SearchResult, error) {
	defs, err := s.List()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		results := make([]SearchResult, len(defs))
		for i, d := range defs {
			results[i] = SearchResult{Definition: d}
		}
		return results, nil
	}

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	matches := fuzzy.Find(query, names)
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			Definition: defs[m.Index],
			Score:      m.Score,
			Matched:    m.MatchedIndexes,
		})
	}
	// fuzzy sorts by score; keep equal scores alphabetical
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row scanner) (*Definition, error) {
	var (
		def     Definition
		options string
		updated string
	)
	if err := row.Scan(&def.Name, &options, &def.HTML, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(options), &def.Options); err != nil {
		return nil, fmt.Errorf("decode options for %s: %w", def.Name, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		def.UpdatedAt = t
	}
	return &def, nil
}
