// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: highlight/highlight.go
// Summary: Display-time colorizer for unstyled command output.
// Usage: The UI asks for spans when drawing lines whose runs all carry the
// default format. Shell-styled output is never touched, and the run log
// itself is never modified.

package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"

	"github.com/YetAnotherMechanicusEnjoyer/YATE/term/parser"
)

// Span marks a byte range of a line to draw in a palette slot.
type Span struct {
	Start, End int
	Slot       parser.Slot
}

// windowSize is how many recent plain lines feed content detection.
const windowSize = 12

// Colorizer detects the format of recent output and produces token spans.
// It belongs to the UI goroutine; no locking.
type Colorizer struct {
	window    []string
	lexerName string
}

// New creates an idle colorizer.
func New() *Colorizer {
	return &Colorizer{}
}

// Reset forgets the detection window, e.g. when the output style changes.
func (c *Colorizer) Reset() {
	c.window = c.window[:0]
	c.lexerName = ""
}

// Observe feeds a committed plain line into the detection window.
func (c *Colorizer) Observe(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	c.window = append(c.window, line)
	if len(c.window) > windowSize {
		c.window = c.window[1:]
	}
	c.lexerName = Detect(c.window)
}

// Line returns spans for one line under the currently detected lexer.
// Nil means draw the line as-is.
func (c *Colorizer) Line(text string) []Span {
	if c.lexerName == "" {
		return nil
	}
	return Spans(text, c.lexerName)
}

// Detect picks a lexer name for a block of output lines. go-enry's
// content classifier gets the first shot; chroma's own analyser is the
// fallback. Empty means nothing recognizable.
func Detect(lines []string) string {
	content := strings.Join(lines, "\n")
	if strings.TrimSpace(content) == "" {
		return ""
	}

	if lang := enry.GetLanguage("", []byte(content)); lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l.Config().Name
		}
	}
	if l := lexers.Analyse(content); l != nil {
		return l.Config().Name
	}
	return ""
}

// Spans tokenizes text with the named lexer and maps token categories to
// palette slots. Tokens that carry no mapping produce no span.
func Spans(text, lexerName string) []Span {
	if text == "" || lexerName == "" {
		return nil
	}
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		return nil
	}

	var spans []Span
	offset := 0
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		n := len(tok.Value)
		if slot, ok := slotForToken(tok.Type); ok && n > 0 {
			spans = append(spans, Span{Start: offset, End: offset + n, Slot: slot})
		}
		offset += n
	}
	return spans
}

func slotForToken(tt chroma.TokenType) (parser.Slot, bool) {
	switch {
	case tt == chroma.Error || tt == chroma.GenericError:
		return parser.SlotRed, true
	case tt.InCategory(chroma.Keyword):
		return parser.SlotMagenta, true
	case tt.InSubCategory(chroma.LiteralString):
		return parser.SlotGreen, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return parser.SlotYellow, true
	case tt.InCategory(chroma.Comment):
		return parser.SlotBrightBlack, true
	case tt == chroma.NameFunction || tt == chroma.NameTag || tt == chroma.NameAttribute:
		return parser.SlotCyan, true
	}
	return 0, false
}
