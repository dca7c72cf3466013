// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"reflect"
	"testing"
)

func newTestParser(maxRuns int) (*Parser, *RunLog) {
	pal := DefaultPalette()
	log := NewRunLog(Format{Fg: pal[SlotDefault]}, maxRuns)
	return NewParser(pal, log), log
}

func feed(chunks ...[]byte) []StyledRun {
	p, log := newTestParser(0)
	for _, c := range chunks {
		p.Feed(c)
	}
	return log.Runs()
}

func texts(runs []StyledRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Text
	}
	return out
}

func TestSGRColors(t *testing.T) {
	pal := DefaultPalette()
	tests := []struct {
		name   string
		input  string
		verify func(*testing.T, []StyledRun)
	}{
		{
			name:  "base red",
			input: "\x1b[31mhi",
			verify: func(t *testing.T, runs []StyledRun) {
				if len(runs) != 1 {
					t.Fatalf("expected 1 run, got %d", len(runs))
				}
				if runs[0].Text != "hi" {
					t.Errorf("text = %q", runs[0].Text)
				}
				if runs[0].Format.Fg != pal[SlotRed] {
					t.Errorf("fg = %v, want red", runs[0].Format.Fg)
				}
			},
		},
		{
			name:  "bright red",
			input: "\x1b[91mhi",
			verify: func(t *testing.T, runs []StyledRun) {
				if runs[0].Format.Fg != pal[SlotBrightRed] {
					t.Errorf("fg = %v, want bright red", runs[0].Format.Fg)
				}
			},
		},
		{
			name:  "reset restores default and clears underline",
			input: "\x1b[4m\x1b[32mX\x1b[0mY",
			verify: func(t *testing.T, runs []StyledRun) {
				if len(runs) != 2 {
					t.Fatalf("expected 2 runs, got %d", len(runs))
				}
				if runs[0].Format.Fg != pal[SlotGreen] || !runs[0].Format.Underline {
					t.Errorf("X format = %+v, want green underlined", runs[0].Format)
				}
				if runs[1].Format.Fg != pal[SlotDefault] || runs[1].Format.Underline {
					t.Errorf("Y format = %+v, want default", runs[1].Format)
				}
			},
		},
		{
			name:  "underline on and off",
			input: "\x1b[4ma\x1b[24mb",
			verify: func(t *testing.T, runs []StyledRun) {
				if !runs[0].Format.Underline {
					t.Error("a should be underlined")
				}
				if runs[1].Format.Underline {
					t.Error("b should not be underlined")
				}
			},
		},
		{
			name:  "multiple params applied left to right",
			input: "\x1b[31;32mhi",
			verify: func(t *testing.T, runs []StyledRun) {
				if runs[0].Format.Fg != pal[SlotGreen] {
					t.Errorf("fg = %v, want green (last param wins)", runs[0].Format.Fg)
				}
			},
		},
		{
			name:  "unknown code is a no-op",
			input: "\x1b[31m\x1b[5mhi",
			verify: func(t *testing.T, runs []StyledRun) {
				if runs[0].Format.Fg != pal[SlotRed] {
					t.Errorf("fg = %v, want red preserved", runs[0].Format.Fg)
				}
			},
		},
		{
			name:  "unparsable segment skipped",
			input: "\x1b[xx;33mhi",
			verify: func(t *testing.T, runs []StyledRun) {
				if runs[0].Format.Fg != pal[SlotYellow] {
					t.Errorf("fg = %v, want yellow", runs[0].Format.Fg)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, feed([]byte(tt.input)))
		})
	}
}

func TestUnknownSequenceDiscarded(t *testing.T) {
	pal := DefaultPalette()
	runs := feed([]byte("\x1b[31mpre\x1b[2Jok"))
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d: %q", len(runs), texts(runs))
	}
	// The clear-screen sequence contributes no run and leaves the pen alone.
	if runs[1].Text != "ok" || runs[1].Format.Fg != pal[SlotRed] {
		t.Errorf("got run %q with %+v, want \"ok\" still red", runs[1].Text, runs[1].Format)
	}
}

func TestLineBreaksPreserved(t *testing.T) {
	runs := feed([]byte("a\nb"))
	want := []string{"a", "\n", "b"}
	if !reflect.DeepEqual(texts(runs), want) {
		t.Errorf("runs = %q, want %q", texts(runs), want)
	}
}

func TestCRLFEmitsSeparateRuns(t *testing.T) {
	runs := feed([]byte("a\r\nb"))
	want := []string{"a", "\r", "\n", "b"}
	if !reflect.DeepEqual(texts(runs), want) {
		t.Errorf("runs = %q, want %q", texts(runs), want)
	}
}

func TestSequenceSplitAcrossFeeds(t *testing.T) {
	pal := DefaultPalette()
	runs := feed([]byte("\x1b[3"), []byte("1mhi"))
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d: %q", len(runs), texts(runs))
	}
	if runs[0].Text != "hi" || runs[0].Format.Fg != pal[SlotRed] {
		t.Errorf("got %q %+v, want \"hi\" in red", runs[0].Text, runs[0].Format)
	}
}

func TestUnterminatedSequenceNeverFlushedAsText(t *testing.T) {
	runs := feed([]byte("ok\x1b[31"))
	if len(runs) != 1 || runs[0].Text != "ok" {
		t.Fatalf("runs = %q, want just \"ok\"", texts(runs))
	}
}

func TestSplitInvariance(t *testing.T) {
	stream := []byte("plain \x1b[32mgreen\x1b[0m\r\n\x1b[2Jé€\x1b[91;4mbright\nlast")

	whole := feed(stream)

	// Every two-chunk partition.
	for cut := 0; cut <= len(stream); cut++ {
		got := feed(stream[:cut], stream[cut:])
		if !reflect.DeepEqual(got, whole) {
			t.Fatalf("cut at %d: runs %q differ from whole-stream %q",
				cut, texts(got), texts(whole))
		}
	}

	// Byte at a time.
	chunks := make([][]byte, len(stream))
	for i := range stream {
		chunks[i] = stream[i : i+1]
	}
	if got := feed(chunks...); !reflect.DeepEqual(got, whole) {
		t.Fatalf("byte-wise feed %q differs from whole-stream %q",
			texts(got), texts(whole))
	}
}

func TestMultiByteCharacterSplitAcrossFeeds(t *testing.T) {
	eur := []byte("€") // 3 bytes
	runs := feed(eur[:1], eur[1:])
	if len(runs) != 1 || runs[0].Text != "€" {
		t.Errorf("runs = %q, want single \"€\"", texts(runs))
	}
}

func TestInvalidBytesReplaced(t *testing.T) {
	runs := feed([]byte{'a', 0xff, 'b'})
	if len(runs) != 1 || runs[0].Text != "a�b" {
		t.Errorf("runs = %q, want a<replacement>b", texts(runs))
	}
}

func TestAdjacentTextCoalesces(t *testing.T) {
	runs := feed([]byte("ab"), []byte("cd"))
	if len(runs) != 1 || runs[0].Text != "abcd" {
		t.Errorf("runs = %q, want single \"abcd\"", texts(runs))
	}
}

func TestFormatPersistsAcrossFeeds(t *testing.T) {
	pal := DefaultPalette()
	p, log := newTestParser(0)
	p.Feed([]byte("\x1b[34m"))
	p.Feed([]byte("later"))
	runs := log.Runs()
	if len(runs) != 1 || runs[0].Format.Fg != pal[SlotBlue] {
		t.Errorf("runs = %+v, want \"later\" in blue", runs)
	}
}

func TestLineCommitCallback(t *testing.T) {
	pal := DefaultPalette()
	log := NewRunLog(Format{Fg: pal[SlotDefault]}, 0)
	p := NewParser(pal, log)

	type commit struct {
		text  string
		plain bool
	}
	var commits []commit
	log.OnLineCommit(func(text string, plain bool) {
		commits = append(commits, commit{text, plain})
	})

	p.Feed([]byte("plain line\r\n\x1b[31mred line\x1b[0m\nopen"))

	want := []commit{
		{"plain line", true},
		{"red line", false},
	}
	if !reflect.DeepEqual(commits, want) {
		t.Errorf("commits = %+v, want %+v", commits, want)
	}
}

func TestEvictionDropsWholeLines(t *testing.T) {
	p, log := newTestParser(4)
	p.Feed([]byte("one\ntwo\nthree\n"))
	runs := log.Runs()
	if len(runs) > 4 {
		t.Fatalf("log holds %d runs, cap is 4", len(runs))
	}
	// Whatever survives must start at a line boundary.
	if runs[0].Text == "\n" {
		t.Errorf("log starts with a dangling terminator: %q", texts(runs))
	}
	if log.Dropped() == 0 {
		t.Error("expected some runs to be evicted")
	}
}
