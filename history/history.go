// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: history/history.go
// Summary: SQLite-backed searchable log of committed terminal lines.
// Usage: Fed from the run log's line-commit hook; queried by the UI.
// Notes: The in-memory run log only keeps a window; this is the durable
// record. Losing it degrades search, never the live stream.

package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Config tunes the index.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string
	// BatchSize is how many lines accumulate before an async flush.
	BatchSize int
	// BatchTimeout flushes a partial batch after this long.
	BatchTimeout time.Duration
	// QueueSize is the async indexing channel capacity. When the queue
	// is full lines are dropped rather than stalling the stream.
	QueueSize int
}

// DefaultConfig returns the standard tuning for a database at path.
func DefaultConfig(path string) Config {
	return Config{
		DBPath:       path,
		BatchSize:    100,
		BatchTimeout: 2 * time.Second,
		QueueSize:    1024,
	}
}

// Result is a single search match.
type Result struct {
	Timestamp time.Time
	Text      string
}

type entry struct {
	ts   time.Time
	text string
}

// Index is the SQLite full-text index. IndexLine is cheap and non-blocking;
// writes happen on a background goroutine in batched transactions.
type Index struct {
	db      *sql.DB
	queue   chan entry
	flushCh chan chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	cfg     Config

	mu sync.RWMutex // guards db access between flusher and queries
}

const schema = `
CREATE TABLE IF NOT EXISTS lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts INTEGER NOT NULL,
    content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lines_ts ON lines(ts);

CREATE VIRTUAL TABLE IF NOT EXISTS lines_fts USING fts5(
    content,
    content='lines',
    content_rowid='id',
    tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS lines_ai AFTER INSERT ON lines BEGIN
    INSERT INTO lines_fts(rowid, content) VALUES (new.id, new.content);
END;
CREATE TRIGGER IF NOT EXISTS lines_ad AFTER DELETE ON lines BEGIN
    INSERT INTO lines_fts(lines_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;
`

// Open creates or opens the index database and starts the flusher.
func Open(cfg Config) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := cfg.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	ix := &Index{
		db:      db,
		queue:   make(chan entry, cfg.QueueSize),
		flushCh: make(chan chan struct{}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		cfg:     cfg,
	}
	go ix.flusher()
	return ix, nil
}

// IndexLine queues a committed line for indexing. Empty lines are skipped;
// a full queue drops the line instead of blocking the consumer.
func (ix *Index) IndexLine(ts time.Time, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	select {
	case ix.queue <- entry{ts: ts, text: text}:
	default:
	}
}

// Search returns lines containing query as a substring, newest first.
// Queries shorter than a trigram fall back to LIKE.
func (ix *Index) Search(query string, limit int) ([]Result, error) {
	if query == "" {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if len(query) < 3 {
		pattern := "%" + strings.NewReplacer("%", `\%`, "_", `\_`).Replace(query) + "%"
		rows, err = ix.db.Query(`
			SELECT ts, content FROM lines
			WHERE content LIKE ? ESCAPE '\'
			ORDER BY ts DESC LIMIT ?`, pattern, limit)
	} else {
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		rows, err = ix.db.Query(`
			SELECT l.ts, l.content
			FROM lines_fts JOIN lines l ON l.id = lines_fts.rowid
			WHERE lines_fts MATCH ?
			ORDER BY l.ts DESC LIMIT ?`, quoted, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var ts int64
		var r Result
		if err := rows.Scan(&ts, &r.Text); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(0, ts)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Flush blocks until everything queued so far is on disk.
func (ix *Index) Flush() {
	done := make(chan struct{})
	select {
	case ix.flushCh <- done:
		<-done
	case <-ix.doneCh:
	}
}

// Close flushes pending lines and closes the database.
func (ix *Index) Close() error {
	select {
	case <-ix.stopCh:
	default:
		close(ix.stopCh)
	}
	<-ix.doneCh
	return ix.db.Close()
}

// flusher batches queued lines into transactions.
func (ix *Index) flusher() {
	defer close(ix.doneCh)

	batch := make([]entry, 0, ix.cfg.BatchSize)
	timer := time.NewTimer(ix.cfg.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ix.writeBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-ix.queue:
			batch = append(batch, e)
			if len(batch) >= ix.cfg.BatchSize {
				flush()
				timer.Reset(ix.cfg.BatchTimeout)
			}
		case <-timer.C:
			flush()
			timer.Reset(ix.cfg.BatchTimeout)
		case done := <-ix.flushCh:
			for drained := false; !drained; {
				select {
				case e := <-ix.queue:
					batch = append(batch, e)
				default:
					drained = true
				}
			}
			flush()
			close(done)
		case <-ix.stopCh:
			for {
				select {
				case e := <-ix.queue:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (ix *Index) writeBatch(batch []entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.Begin()
	if err != nil {
		log.Printf("History: begin batch: %v", err)
		return
	}
	stmt, err := tx.Prepare("INSERT INTO lines (ts, content) VALUES (?, ?)")
	if err != nil {
		log.Printf("History: prepare insert: %v", err)
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.ts.UnixNano(), e.text); err != nil {
			log.Printf("History: insert line: %v", err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("History: commit batch: %v", err)
	}
}
