package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sorrel/kioku/internal/models"
)

// SQLiteStore implements NoteStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		title TEXT,
		tags TEXT,
		links TEXT,
		content TEXT NOT NULL,
		created TEXT,
		modified TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id TEXT PRIMARY KEY,
		note_id TEXT NOT NULL,
		title TEXT,
		section TEXT,
		text TEXT NOT NULL,
		tags TEXT,
		links TEXT,
		position INTEGER NOT NULL,
		FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_note_id ON chunks(note_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_note_position ON chunks(note_id, position);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertNote inserts or replaces a note by ID.
func (s *SQLiteStore) UpsertNote(ctx context.Context, note *models.Note) error {
	tags, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	links, err := json.Marshal(note.Links)
	if err != nil {
		return fmt.Errorf("failed to marshal links: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, tags, links, content, created, modified, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, tags = excluded.tags, links = excluded.links,
		   content = excluded.content, created = excluded.created,
		   modified = excluded.modified, updated_at = excluded.updated_at`,
		note.ID, note.Title, string(tags), string(links), note.Content,
		note.Created, note.Modified, time.Now(),
	)
	return err
}

// GetNote returns a note by ID.
func (s *SQLiteStore) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	var tags, links string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, tags, links, content, created, modified FROM notes WHERE id = ?`, id,
	).Scan(&note.ID, &note.Title, &tags, &links, &note.Content, &note.Created, &note.Modified)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: note %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalList(tags, &note.Tags); err != nil {
		return nil, err
	}
	if err := unmarshalList(links, &note.Links); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns notes ordered by ID with offset and limit.
func (s *SQLiteStore) ListNotes(ctx context.Context, offset, limit int) ([]*models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, tags, links, content, created, modified
		 FROM notes ORDER BY id LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		var note models.Note
		var tags, links string
		if err := rows.Scan(&note.ID, &note.Title, &tags, &links, &note.Content, &note.Created, &note.Modified); err != nil {
			return nil, err
		}
		_ = unmarshalList(tags, &note.Tags)
		_ = unmarshalList(links, &note.Links)
		notes = append(notes, &note)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note and its chunks.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE note_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceChunks swaps the chunks of a note in one transaction.
func (s *SQLiteStore) ReplaceChunks(ctx context.Context, noteID string, chunks []models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE note_id = ?`, noteID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (chunk_id, note_id, title, section, text, tags, links, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		tags, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		links, err := json.Marshal(c.Links)
		if err != nil {
			return fmt.Errorf("failed to marshal links: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.ChunkID, c.NoteID, c.Title, c.Section, c.Text,
			string(tags), string(links), c.Position); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStore) GetChunk(ctx context.Context, chunkID string) (*models.Chunk, error) {
	var c models.Chunk
	var tags, links string
	err := s.db.QueryRowContext(ctx,
		`SELECT chunk_id, note_id, title, section, text, tags, links, position
		 FROM chunks WHERE chunk_id = ?`, chunkID,
	).Scan(&c.ChunkID, &c.NoteID, &c.Title, &c.Section, &c.Text, &tags, &links, &c.Position)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: chunk %s", ErrNotFound, chunkID)
	}
	if err != nil {
		return nil, err
	}
	_ = unmarshalList(tags, &c.Tags)
	_ = unmarshalList(links, &c.Links)
	return &c, nil
}

// GetChunksByNote returns all chunks of a note ordered by position.
func (s *SQLiteStore) GetChunksByNote(ctx context.Context, noteID string) ([]models.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT chunk_id, note_id, title, section, text, tags, links, position
		 FROM chunks WHERE note_id = ? ORDER BY position`, noteID)
}

// ListChunks returns every chunk ordered by note and position.
func (s *SQLiteStore) ListChunks(ctx context.Context) ([]models.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT chunk_id, note_id, title, section, text, tags, links, position
		 FROM chunks ORDER BY note_id, position`)
}

func (s *SQLiteStore) queryChunks(ctx context.Context, query string, args ...any) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var tags, links string
		if err := rows.Scan(&c.ChunkID, &c.NoteID, &c.Title, &c.Section, &c.Text, &tags, &links, &c.Position); err != nil {
			return nil, err
		}
		_ = unmarshalList(tags, &c.Tags)
		_ = unmarshalList(links, &c.Links)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountNotes returns the total number of notes.
func (s *SQLiteStore) CountNotes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func unmarshalList(raw string, dst *[]string) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
