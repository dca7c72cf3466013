// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/run.go
// Summary: Styled text runs and the append-only run log.

package parser

import "strings"

// Format is a snapshot of the pen state stamped onto a run: a resolved
// foreground color and the underline flag.
type Format struct {
	Fg        RGBA
	Underline bool
}

// StyledRun is a contiguous span of text sharing one format snapshot.
// Runs are never modified after they are appended.
type StyledRun struct {
	Text   string
	Format Format
}

// LineFunc is invoked when a line feed commits a line. text is the line's
// content without the terminator; plain reports whether every run on the
// line still carried the default format.
type LineFunc func(text string, plain bool)

// RunLog is the ordered, append-only sequence of styled runs produced by
// the parser. It belongs to the consumer goroutine; it is not safe for
// concurrent use.
type RunLog struct {
	runs       []StyledRun
	defFormat  Format
	lineStart  int // index of the first run of the in-progress line
	maxRuns    int // 0 means unbounded
	onLine     LineFunc
	quietDrops int
}

// NewRunLog creates a run log. def is the format considered "unstyled" for
// line-commit reporting. maxRuns bounds in-memory retention; when exceeded,
// whole lines are evicted from the front. Zero keeps everything.
func NewRunLog(def Format, maxRuns int) *RunLog {
	return &RunLog{defFormat: def, maxRuns: maxRuns}
}

// OnLineCommit registers a callback fired each time a line feed completes
// a line.
func (l *RunLog) OnLineCommit(fn LineFunc) { l.onLine = fn }

// Runs returns the current run sequence. The slice is owned by the log and
// must not be mutated.
func (l *RunLog) Runs() []StyledRun { return l.runs }

// Dropped reports how many runs have been evicted from the front of the
// log since creation.
func (l *RunLog) Dropped() int { return l.quietDrops }

// appendText adds literal text under the given format. Consecutive text
// runs with the same format coalesce, so the run sequence depends only on
// the byte stream, not on how reads happened to chunk it.
func (l *RunLog) appendText(text string, f Format) {
	if text == "" {
		return
	}
	if n := len(l.runs); n > l.lineStart {
		last := &l.runs[n-1]
		if last.Format == f && !isBreak(last.Text) {
			last.Text += text
			return
		}
	}
	l.runs = append(l.runs, StyledRun{Text: text, Format: f})
}

// appendBreak adds a line-terminator run (exactly "\r" or "\n"). A "\n"
// commits the in-progress line.
func (l *RunLog) appendBreak(b byte, f Format) {
	l.runs = append(l.runs, StyledRun{Text: string(rune(b)), Format: f})
	if b != '\n' {
		return
	}
	l.commitLine(len(l.runs) - 1)
	l.lineStart = len(l.runs)
	l.evict()
}

func (l *RunLog) commitLine(end int) {
	if l.onLine == nil {
		return
	}
	var sb strings.Builder
	plain := true
	for _, r := range l.runs[l.lineStart:end] {
		if r.Text == "\r" {
			continue
		}
		sb.WriteString(r.Text)
		if r.Format != l.defFormat {
			plain = false
		}
	}
	l.onLine(sb.String(), plain)
}

// evict drops whole lines from the front while the log exceeds its cap.
func (l *RunLog) evict() {
	if l.maxRuns <= 0 {
		return
	}
	for len(l.runs) > l.maxRuns {
		cut := -1
		for i := 0; i < l.lineStart; i++ {
			if l.runs[i].Text == "\n" {
				cut = i
				break
			}
		}
		if cut < 0 {
			return
		}
		n := cut + 1
		l.runs = l.runs[n:]
		l.lineStart -= n
		l.quietDrops += n
	}
}

func isBreak(text string) bool {
	return text == "\n" || text == "\r"
}
