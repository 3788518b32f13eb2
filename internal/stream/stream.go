// Package stream persists issues as newline-delimited JSON while a scan is
// running, so a category's full result set never has to stay resident in
// memory. Each category owns exactly one writer per run.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bytemomo/remora/internal/domain"
)

// Writer appends issues to a per-category NDJSON file. The previous run's
// file is removed on open. Every record is written as one intact line; a
// record that fails to marshal is rejected before anything hits the file.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	bw     *bufio.Writer
	path   string
	closed bool
}

// StreamPath returns the stream file location for one category.
func StreamPath(dir string, cat domain.Category) string {
	return filepath.Join(dir, string(cat)+"-issues.ndjson")
}

// NewWriter opens a fresh stream file for one category, removing any file
// left over from a prior run.
func NewWriter(dir string, cat domain.Category) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create stream dir: %w", err)
	}
	path := StreamPath(dir, cat)
	_ = os.Remove(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", path, err)
	}
	return &Writer{f: f, bw: bufio.NewWriter(f), path: path}, nil
}

// Write appends one issue. Safe for concurrent use by scan tasks.
func (w *Writer) Write(issue domain.Issue) error {
	data, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("marshal issue: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("stream %s already closed", w.path)
	}
	if _, err := w.bw.Write(data); err != nil {
		return fmt.Errorf("write stream %s: %w", w.path, err)
	}
	return nil
}

// Path returns the file the writer appends to.
func (w *Writer) Path() string { return w.path }

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("flush stream %s: %w", w.path, err)
	}
	return w.f.Close()
}

// Replay reads a stream file line by line, invoking fn for every decoded
// issue. Blank lines are skipped; a malformed line stops the replay so a
// truncated file is noticed rather than silently shortened.
func Replay(path string, fn func(domain.Issue) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open stream %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var issue domain.Issue
		if err := json.Unmarshal(raw, &issue); err != nil {
			return fmt.Errorf("decode stream %s line %d: %w", path, line, err)
		}
		if err := fn(issue); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read stream %s: %w", path, err)
	}
	return nil
}
