package stream

import (
	"os"
	"sync"
	"testing"

	"bytemomo/remora/internal/domain"
)

func sampleIssue(file string, line int) domain.Issue {
	return domain.Issue{
		Category: domain.CategorySecurity,
		Type:     "eval-usage",
		File:     file,
		Line:     line,
		Severity: domain.SeverityHigh,
		Message:  "eval() usage detected",
		Source:   domain.SourcePattern,
	}
}

func TestWriteReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, domain.CategorySecurity)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if err := w.Write(sampleIssue("a.js", i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var got []domain.Issue
	err = Replay(w.Path(), func(issue domain.Issue) error {
		got = append(got, issue)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(got))
	}
	if got[0].Line != 1 || got[2].Line != 3 {
		t.Errorf("issues replayed out of order: %+v", got)
	}
}

func TestNewWriterRemovesPriorRun(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, domain.CategoryTesting)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(sampleIssue("old.js", 1)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2, err := NewWriter(dir, domain.CategoryTesting)
	if err != nil {
		t.Fatal(err)
	}
	if err := w2.Close(); err != nil {
		t.Fatal(err)
	}

	count := 0
	if err := Replay(w2.Path(), func(domain.Issue) error { count++; return nil }); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected fresh stream, found %d records from prior run", count)
	}
}

func TestConcurrentWritesKeepLinesIntact(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, domain.CategoryPerformance)
	if err != nil {
		t.Fatal(err)
	}

	const writers = 8
	const perWriter = 50
	var wg sync.WaitGroup
	for g := 0; g < writers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = w.Write(sampleIssue("f.js", g*perWriter+i+1))
			}
		}(g)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	count := 0
	err = Replay(w.Path(), func(issue domain.Issue) error {
		if verr := issue.Validate(); verr != nil {
			t.Errorf("corrupt record replayed: %v", verr)
		}
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if count != writers*perWriter {
		t.Errorf("expected %d records, got %d", writers*perWriter, count)
	}
}

func TestWriteAfterClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, domain.CategoryDependency)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(sampleIssue("a.js", 1)); err == nil {
		t.Fatal("expected error writing to closed stream")
	}
}

func TestReplayMissingFile(t *testing.T) {
	err := Replay("/nonexistent/stream.ndjson", func(domain.Issue) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing stream file")
	}
	if _, statErr := os.Stat("/nonexistent/stream.ndjson"); statErr == nil {
		t.Fatal("test precondition broken")
	}
}
