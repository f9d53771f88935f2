// Package specstore is the spec table's durable half: binary
// persistence of summaries, keyed by (kind, format_version), where
// deserialization rejects mismatches and returns absent rather than an
// error. The source compiler has no cache of its own to ground this on,
// so the schema and the "absent on mismatch" discipline follow the
// requirement directly; the SQLite wiring itself (schema-on-open,
// prepared statements, one *sql.DB shared behind a mutex) is grounded
// on theRebelliousNerd-codenerd's embedded-store idiom
// (internal/store/local_core.go, embedded_store.go).
package specstore

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/biabductor/biabductor/internal/lockutil"
	"github.com/biabductor/biabductor/internal/summary"
)

// FormatVersion is bumped whenever Summary's on-disk shape changes in a
// way that would make an old blob unsafe to gob-decode into the new
// struct. A row whose format_version column doesn't match the running
// binary's FormatVersion is treated as though it didn't exist — never
// an error, never a partial value, just "deserialization rejects
// mismatches and returns absent".
const FormatVersion = 1

// Kind values distinguish payload families within one database
// ("payload: list Spec | TypeState").
const (
	KindSpecs     = "specs"
	KindTypeState = "typestate"
)

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
	proc_name      TEXT NOT NULL,
	kind           TEXT NOT NULL,
	format_version INTEGER NOT NULL,
	data           BLOB NOT NULL,
	PRIMARY KEY (proc_name, kind, format_version)
);
`

// Store is a single SQLite-backed summary database, normally one file
// under --results-dir per analysis run. Safe for concurrent use: every
// method takes mu, mirroring theRebelliousNerd-codenerd's own
// single-writer-at-a-time access pattern around its embedded stores.
type Store struct {
	db *sql.DB
	mu lockutil.Mutex
}

// Open creates (if absent) and opens a summary database at path. An
// empty path opens an in-memory database, useful for tests and for a
// one-shot CLI invocation that never needs results to outlive the
// process.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("specstore: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("specstore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Put persists sum under (proc, kind) at the running FormatVersion,
// replacing whatever was there before. kind distinguishes payload
// families sharing one database.
func (s *Store) Put(proc, kind string, sum *summary.Summary) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sum); err != nil {
		return fmt.Errorf("specstore: encode %s/%s: %w", proc, kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO summaries (proc_name, kind, format_version, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT (proc_name, kind, format_version) DO UPDATE SET data = excluded.data`,
		proc, kind, FormatVersion, buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("specstore: put %s/%s: %w", proc, kind, err)
	}
	return nil
}

// Get looks up the summary for (proc, kind) at the running FormatVersion.
// A row at a different format_version, or no row at all, is reported
// identically as "absent" (ok == false) rather than as an error: // is explicit that a version mismatch is not a fault, just a cache miss.
func (s *Store) Get(proc, kind string) (*summary.Summary, bool, error) {
	s.mu.Lock()
	row := s.db.QueryRow(
		`SELECT data FROM summaries WHERE proc_name = ? AND kind = ? AND format_version = ?`,
		proc, kind, FormatVersion,
	)
	var data []byte
	err := row.Scan(&data)
	s.mu.Unlock()

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("specstore: get %s/%s: %w", proc, kind, err)
	}

	var sum summary.Summary
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sum); err != nil {
		return nil, false, fmt.Errorf("specstore: decode %s/%s: %w", proc, kind, err)
	}
	return &sum, true, nil
}

// LoadAll returns every summary currently stored under kind at the
// running FormatVersion, keyed by procedure name — the bulk read
// internal/orchestrate uses to seed a Registry from a prior run, and
// internal/orchestrate's --reactive Reload hook uses to pick up
// externally-written summaries.
func (s *Store) LoadAll(kind string) (map[string]*summary.Summary, error) {
	s.mu.Lock()
	rows, err := s.db.Query(
		`SELECT proc_name, data FROM summaries WHERE kind = ? AND format_version = ?`,
		kind, FormatVersion,
	)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("specstore: load all %s: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[string]*summary.Summary)
	for rows.Next() {
		var proc string
		var data []byte
		if err := rows.Scan(&proc, &data); err != nil {
			return nil, fmt.Errorf("specstore: scan %s: %w", kind, err)
		}
		var sum summary.Summary
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sum); err != nil {
			return nil, fmt.Errorf("specstore: decode %s/%s: %w", proc, kind, err)
		}
		out[proc] = &sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("specstore: iterate %s: %w", kind, err)
	}
	return out, nil
}

// Delete removes a stored summary, if any, regardless of its
// format_version — used by --results-dir cleanup and by tests that want
// to force a fresh Get to miss.
func (s *Store) Delete(proc, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM summaries WHERE proc_name = ? AND kind = ?`, proc, kind)
	if err != nil {
		return fmt.Errorf("specstore: delete %s/%s: %w", proc, kind, err)
	}
	return nil
}
