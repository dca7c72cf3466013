// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/parser.go
// Summary: Incremental byte stream parser turning PTY output into styled runs.
// Usage: Fed by the consumer tick with whatever the output buffer held.
// Notes: Only SGR sequences are interpreted; everything else is consumed
// and discarded so it cannot corrupt the text that follows.

package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const esc = 0x1b

// Parser consumes raw PTY bytes and appends styled runs to a RunLog. Its
// state (pen format, partial escape sequence, pending text) carries across
// Feed calls, so escape sequences and multi-byte characters split across
// reads reassemble correctly.
type Parser struct {
	palette Palette
	cur     Format
	partial []byte // in-progress escape sequence, ESC onward
	pending []byte // literal bytes not yet flushed into a run
	log     *RunLog
}

// NewParser creates a parser stamping runs with colors from the given
// resolved palette.
func NewParser(palette Palette, log *RunLog) *Parser {
	return &Parser{
		palette: palette,
		cur:     Format{Fg: palette[SlotDefault]},
		log:     log,
	}
}

// Format returns the pen state currently in effect.
func (p *Parser) Format() Format { return p.cur }

// Feed processes one chunk of PTY output. Chunk boundaries are set by OS
// read granularity, so Feed makes no assumptions about where sequences or
// characters start and end.
func (p *Parser) Feed(data []byte) {
	for _, b := range data {
		switch {
		case b == esc:
			p.flushPending(false)
			p.partial = append(p.partial, b)
		case b == '[' && len(p.partial) > 0 && p.partial[len(p.partial)-1] == esc:
			p.partial = append(p.partial, b)
		case b == '\n' || b == '\r':
			p.flushPending(false)
			p.log.appendBreak(b, p.cur)
		case len(p.partial) > 0:
			p.partial = append(p.partial, b)
			if isASCIIAlpha(b) {
				if b == 'm' {
					p.applySGR(p.partial)
				}
				p.partial = p.partial[:0]
			}
		default:
			p.pending = append(p.pending, b)
		}
	}
	p.flushPending(true)
}

// flushPending emits accumulated literal text as a run. At the end of a
// feed an incomplete trailing UTF-8 sequence is held back so a character
// split across reads is not mangled into replacement runes.
func (p *Parser) flushPending(endOfFeed bool) {
	buf := p.pending
	var tail []byte
	if endOfFeed {
		if n := incompleteTail(buf); n > 0 {
			tail = buf[len(buf)-n:]
			buf = buf[:len(buf)-n]
		}
	}
	if len(buf) > 0 {
		p.log.appendText(decodeLossy(buf), p.cur)
	}
	if len(tail) > 0 {
		p.pending = append(p.pending[:0], tail...)
	} else {
		p.pending = p.pending[:0]
	}
}

// applySGR interprets a terminated SGR sequence. seq holds the full bytes
// from ESC through the final 'm'. Parameters are applied left to right;
// anything unsupported or unparsable is skipped.
func (p *Parser) applySGR(seq []byte) {
	s := string(seq)
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return
	}
	for _, part := range strings.Split(s[start+1:len(s)-1], ";") {
		code, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		switch {
		case code == 0:
			p.cur = Format{Fg: p.palette[SlotDefault]}
		case code == 4:
			p.cur.Underline = true
		case code == 24:
			p.cur.Underline = false
		default:
			if slot, ok := slotForSGR(code); ok {
				p.cur.Fg = p.palette[slot]
			}
		}
	}
}

func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// decodeLossy converts raw bytes to a string, replacing invalid UTF-8
// rather than failing.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// incompleteTail reports how many trailing bytes of p form a valid but
// incomplete prefix of a multi-byte UTF-8 character.
func incompleteTail(p []byte) int {
	n := len(p)
	for i := 1; i <= 3 && i <= n; i++ {
		b := p[n-i]
		if b&0xC0 == 0x80 {
			continue // continuation byte, keep looking for the lead
		}
		var want int
		switch {
		case b&0x80 == 0x00:
			want = 1
		case b&0xE0 == 0xC0:
			want = 2
		case b&0xF0 == 0xE0:
			want = 3
		case b&0xF8 == 0xF0:
			want = 4
		default:
			return 0 // invalid lead byte, nothing worth holding
		}
		if want > i {
			return i
		}
		return 0
	}
	return 0
}
