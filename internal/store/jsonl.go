package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sorrel/kioku/internal/models"
)

// jsonlScanBuffer caps a single JSONL line at 4 MiB, enough for any
// realistic note.
const jsonlScanBuffer = 4 * 1024 * 1024

// WriteNotesJSONL writes notes to path as line-delimited JSON, atomically:
// the file is written next to the target and renamed into place.
func WriteNotesJSONL(path string, notes []models.Note) error {
	return writeJSONL(path, len(notes), func(enc *json.Encoder, i int) error {
		return enc.Encode(&notes[i])
	})
}

// ReadNotesJSONL reads a notes exchange file.
func ReadNotesJSONL(path string) ([]models.Note, error) {
	var notes []models.Note
	err := readJSONL(path, func(line []byte) error {
		var n models.Note
		if err := json.Unmarshal(line, &n); err != nil {
			return err
		}
		notes = append(notes, n)
		return nil
	})
	return notes, err
}

// WriteChunksJSONL writes chunks to path as line-delimited JSON, atomically.
func WriteChunksJSONL(path string, chunks []models.Chunk) error {
	return writeJSONL(path, len(chunks), func(enc *json.Encoder, i int) error {
		return enc.Encode(&chunks[i])
	})
}

// ReadChunksJSONL reads a chunks exchange file.
func ReadChunksJSONL(path string) ([]models.Chunk, error) {
	var chunks []models.Chunk
	err := readJSONL(path, func(line []byte) error {
		var c models.Chunk
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		chunks = append(chunks, c)
		return nil
	})
	return chunks, err
}

func writeJSONL(path string, n int, encode func(*json.Encoder, int) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := 0; i < n; i++ {
		if err := encode(enc, i); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode line %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSONL(path string, decode func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), jsonlScanBuffer)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := decode([]byte(line)); err != nil {
			return fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}
