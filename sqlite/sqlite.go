// Package sqlite provides SQLite-based storage implementations for evidex services.
//
// The store is a single local file holding the relational tables and an
// FTS5 index over page text. Writes go through one connection; reads use a
// separate pool that only ever observes committed state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SchemaVersion is stored in the meta table.
const SchemaVersion = 1

// DB represents a SQLite database handle.
type DB struct {
	db   *sql.DB // writer
	ro   *sql.DB // readers
	path string

	// ReadConns is the size of the reader pool for file-based databases.
	ReadConns int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{
		path:      path,
		ReadConns: 4,
		Now:       time.Now,
	}
}

// Path returns the database path.
func (db *DB) Path() string {
	return db.path
}

// Open opens the database connections and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait 5 seconds before failing on lock contention.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL lets readers proceed while a write transaction is open and shows
	// them only committed pages. Not supported for in-memory databases.
	if !db.inMemory() {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// An in-memory database exists per connection, so readers share the writer.
	if db.inMemory() {
		db.ro = conn
		return nil
	}

	ro, err := sql.Open("sqlite3", db.readerDSN())
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open reader pool: %w", err)
	}
	if db.ReadConns > 0 {
		ro.SetMaxOpenConns(db.ReadConns)
	}
	if err := ro.Ping(); err != nil {
		ro.Close()
		conn.Close()
		return fmt.Errorf("failed to connect reader pool: %w", err)
	}
	db.ro = ro

	return nil
}

func (db *DB) inMemory() bool {
	return db.path == ":memory:" || db.path == ""
}

// readerDSN builds a URI whose pragmas apply to every pooled reader connection.
func (db *DB) readerDSN() string {
	u := url.URL{Scheme: "file", Opaque: (&url.URL{Path: db.path}).EscapedPath()}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "foreign_keys(1)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Close closes the database connections.
func (db *DB) Close() error {
	var err error
	if db.ro != nil && db.ro != db.db {
		err = db.ro.Close()
	}
	if db.db != nil {
		if cerr := db.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// QueryRowContext executes a read query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.ro.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a read query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.ro.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement on the writer connection.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a write transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

func (db *DB) now() time.Time {
	if db.Now == nil {
		return time.Now().UTC()
	}
	return db.Now().UTC()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			content_hash TEXT NOT NULL DEFAULT '',
			mime_type TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			ingested_at TEXT NOT NULL,
			page_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK (status IN ('OK', 'FAILED')),
			failure_reason TEXT NOT NULL DEFAULT '',
			tool_version TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			page_number INTEGER NOT NULL CHECK (page_number >= 1),
			text TEXT NOT NULL,
			extraction_method TEXT NOT NULL CHECK (extraction_method IN ('NATIVE', 'OCR')),
			confidence REAL NOT NULL DEFAULT 1.0,
			low_confidence INTEGER NOT NULL DEFAULT 0,
			UNIQUE (document_id, page_number)
		);

		CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL CHECK (type IN ('PERSON', 'ORG', 'PLACE', 'DATE')),
			canonical_text TEXT NOT NULL,
			UNIQUE (type, canonical_text)
		);

		CREATE TABLE IF NOT EXISTS entity_mentions (
			id INTEGER PRIMARY KEY,
			entity_id TEXT NOT NULL REFERENCES entities(id),
			document_id TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			surface_text TEXT NOT NULL,
			CHECK (start_offset >= 0 AND end_offset > start_offset),
			FOREIGN KEY (document_id, page_number)
				REFERENCES pages(document_id, page_number) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS assets (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL CHECK (type IN ('AIRCRAFT_REG', 'IMO')),
			canonical_text TEXT NOT NULL,
			UNIQUE (type, canonical_text)
		);

		CREATE TABLE IF NOT EXISTS asset_mentions (
			id INTEGER PRIMARY KEY,
			asset_id TEXT NOT NULL REFERENCES assets(id),
			document_id TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			surface_text TEXT NOT NULL,
			CHECK (start_offset >= 0 AND end_offset > start_offset),
			FOREIGN KEY (document_id, page_number)
				REFERENCES pages(document_id, page_number) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_entity_mentions_entity ON entity_mentions(entity_id);
		CREATE INDEX IF NOT EXISTS idx_asset_mentions_asset ON asset_mentions(asset_id);
		CREATE INDEX IF NOT EXISTS idx_asset_mentions_page ON asset_mentions(document_id, page_number);
		CREATE INDEX IF NOT EXISTS idx_entity_mentions_page ON entity_mentions(document_id, page_number);
		CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

		CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
			text,
			content='pages',
			content_rowid='id',
			tokenize='unicode61 remove_diacritics 0'
		);

		CREATE TRIGGER IF NOT EXISTS pages_ai AFTER INSERT ON pages BEGIN
			INSERT INTO pages_fts(rowid, text) VALUES (new.id, new.text);
		END;

		CREATE TRIGGER IF NOT EXISTS pages_ad AFTER DELETE ON pages BEGIN
			INSERT INTO pages_fts(pages_fts, rowid, text) VALUES ('delete', old.id, old.text);
		END;

		CREATE TRIGGER IF NOT EXISTS pages_au AFTER UPDATE ON pages BEGIN
			INSERT INTO pages_fts(pages_fts, rowid, text) VALUES ('delete', old.id, old.text);
			INSERT INTO pages_fts(rowid, text) VALUES (new.id, new.text);
		END;
	`

	if _, err := db.db.Exec(schema); err != nil {
		return err
	}

	_, err := db.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprintf("%d", SchemaVersion))
	return err
}
