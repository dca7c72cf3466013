// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "history.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndexAndSearch(t *testing.T) {
	ix := openTestIndex(t)

	now := time.Now()
	ix.IndexLine(now, "make: *** [all] Error 2")
	ix.IndexLine(now.Add(time.Second), "total 48K drwxr-xr-x")
	ix.IndexLine(now.Add(2*time.Second), "compilation finished without errors")
	ix.Flush()

	results, err := ix.Search("Error", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(results), results)
	}
	if results[0].Text != "make: *** [all] Error 2" {
		t.Errorf("result = %q", results[0].Text)
	}
}

func TestSearchSubstringWithSpaces(t *testing.T) {
	ix := openTestIndex(t)
	ix.IndexLine(time.Now(), "ls -la /tmp")
	ix.Flush()

	results, err := ix.Search("ls -la", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestShortQueryFallsBackToLike(t *testing.T) {
	ix := openTestIndex(t)
	ix.IndexLine(time.Now(), "cd /home")
	ix.Flush()

	results, err := ix.Search("cd", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearchNewestFirst(t *testing.T) {
	ix := openTestIndex(t)
	base := time.Now()
	ix.IndexLine(base, "match older")
	ix.IndexLine(base.Add(time.Minute), "match newer")
	ix.Flush()

	results, err := ix.Search("match", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "match newer" {
		t.Errorf("first result = %q, want the newer line", results[0].Text)
	}
}

func TestBlankLinesSkipped(t *testing.T) {
	ix := openTestIndex(t)
	ix.IndexLine(time.Now(), "   ")
	ix.IndexLine(time.Now(), "")
	ix.Flush()

	results, err := ix.Search("   ", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("blank lines should not be indexed, got %+v", results)
	}
}

func TestCloseFlushesPending(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	ix, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ix.IndexLine(time.Now(), "persisted on close")
	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	results, err := reopened.Search("persisted", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results after reopen, want 1", len(results))
	}
}
