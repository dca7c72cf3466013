// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/screen.go
// Summary: tcell front end: renders the run log and forwards input.
// Usage: Owns the consumer side of the pipeline; the event loop tick
// drains the output buffer through the parser and redraws.

package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/YetAnotherMechanicusEnjoyer/YATE/highlight"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/history"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/term"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/term/parser"
)

// Cell pixel estimates for the PTY resize call, matching a typical
// monospace raster.
const (
	cellPxWidth  = 8
	cellPxHeight = 16
)

// Fallback redraw interval. Output normally arrives via the refresh
// channel; the ticker only covers the idle cases.
const tickInterval = 250 * time.Millisecond

// UI drives the terminal display. It is the consumer context: the parser
// and run log are only touched from Run's goroutine.
type UI struct {
	screen tcell.Screen
	sess   *term.Session
	out    *term.Buffer
	par    *parser.Parser
	runs   *parser.RunLog
	pal    parser.Palette
	color  *highlight.Colorizer
	hist   *history.Index // nil when history is disabled

	refresh <-chan struct{} // woken by the reader goroutine

	scrollOff int // wrapped rows scrolled up from the bottom

	searching bool
	query     []rune
	results   []history.Result
}

// New initializes the tcell screen around an already-started session.
// color and hist may be nil.
func New(sess *term.Session, out *term.Buffer, par *parser.Parser,
	runs *parser.RunLog, pal parser.Palette,
	color *highlight.Colorizer, hist *history.Index,
	refresh <-chan struct{}) (*UI, error) {

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	u := &UI{
		screen:  screen,
		sess:    sess,
		out:     out,
		par:     par,
		runs:    runs,
		pal:     pal,
		color:   color,
		hist:    hist,
		refresh: refresh,
	}

	cols, rows := screen.Size()
	sess.Resize(rows, cols, cols*cellPxWidth, rows*cellPxHeight)
	return u, nil
}

// Close restores the terminal.
func (u *UI) Close() {
	u.screen.Fini()
}

// Run is the main event and rendering loop. It returns when the user
// quits; a dead shell just leaves the display idle.
func (u *UI) Run() error {
	eventChan := make(chan tcell.Event)
	go func() {
		for {
			eventChan <- u.screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if u.handleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				cols, rows := ev.Size()
				u.sess.Resize(rows, cols, cols*cellPxWidth, rows*cellPxHeight)
				u.screen.Sync()
			}
			u.draw()
		case <-u.refresh:
			u.drain()
			u.draw()
		case <-ticker.C:
			u.drain()
			u.draw()
		}
	}
}

// drain moves everything the reader has buffered through the parser.
func (u *UI) drain() {
	if data := u.out.Take(); len(data) > 0 {
		u.par.Feed(data)
	}
}

// handleKey processes one key event. Returns true to quit.
func (u *UI) handleKey(ev *tcell.EventKey) bool {
	if u.searching {
		u.handleSearchKey(ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlF:
		if u.hist != nil {
			u.searching = true
			u.query = u.query[:0]
			u.results = nil
		}
		return false
	case tcell.KeyPgUp:
		_, h := u.screen.Size()
		u.scrollOff += h / 2
		return false
	case tcell.KeyPgDn:
		_, h := u.screen.Size()
		u.scrollOff -= h / 2
		if u.scrollOff < 0 {
			u.scrollOff = 0
		}
		return false
	}

	if b := bytesForKey(ev); b != nil {
		// Best-effort: a dead shell simply stops responding.
		_, _ = u.sess.Write(b)
		u.scrollOff = 0
	}
	return false
}

func (u *UI) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlF:
		u.searching = false
		u.results = nil
	case tcell.KeyEnter:
		u.runSearch()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(u.query) > 0 {
			u.query = u.query[:len(u.query)-1]
		}
	case tcell.KeyRune:
		u.query = append(u.query, ev.Rune())
	}
}

func (u *UI) runSearch() {
	if u.hist == nil {
		return
	}
	u.hist.Flush()
	_, h := u.screen.Size()
	results, err := u.hist.Search(string(u.query), h-2)
	if err != nil {
		// Search degrades; the stream is unaffected.
		u.results = nil
		return
	}
	u.results = results
}

// styledCell is one renderable cell of a wrapped row.
type styledCell struct {
	r     rune
	style tcell.Style
	width int
}

// logicalLine groups the runs between two line feeds.
type logicalLine struct {
	runs  []parser.StyledRun
	plain bool
}

func (u *UI) draw() {
	u.screen.Clear()
	w, h := u.screen.Size()
	if w <= 0 || h <= 0 {
		u.screen.Show()
		return
	}

	viewH := h
	if u.searching {
		viewH = h - 1
	}

	rows := u.visibleRows(w, viewH+u.scrollOff)
	if len(rows) < viewH+u.scrollOff {
		// Scrolled past the top; clamp.
		u.scrollOff = len(rows) - viewH
		if u.scrollOff < 0 {
			u.scrollOff = 0
		}
	}
	top := len(rows) - viewH - u.scrollOff
	if top < 0 {
		top = 0
	}

	y := 0
	for i := top; i < len(rows) && y < viewH; i++ {
		x := 0
		for _, c := range rows[i] {
			u.screen.SetContent(x, y, c.r, nil, c.style)
			x += c.width
		}
		y++
	}

	if u.searching {
		u.drawSearch(w, h)
	}
	u.screen.Show()
}

func (u *UI) drawSearch(w, h int) {
	prompt := "search: " + string(u.query)
	bar := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range prompt {
		u.screen.SetContent(x, h-1, r, nil, bar)
		x += runewidth.RuneWidth(r)
	}
	for ; x < w; x++ {
		u.screen.SetContent(x, h-1, ' ', nil, bar)
	}

	// Result list over the top of the viewport, newest first.
	res := tcell.StyleDefault.Foreground(u.slotColor(parser.SlotBrightYellow))
	for i, r := range u.results {
		if i >= h-1 {
			break
		}
		x := 0
		for _, ch := range r.Text {
			if x >= w {
				break
			}
			u.screen.SetContent(x, i, ch, nil, res)
			x += runewidth.RuneWidth(ch)
		}
	}
}

// visibleRows wraps logical lines from the end of the run log until it has
// need rows, so a long session does not pay for its whole scrollback on
// every frame.
func (u *UI) visibleRows(width, need int) [][]styledCell {
	lines := u.logicalLines()
	var rows [][]styledCell
	for i := len(lines) - 1; i >= 0 && len(rows) < need; i-- {
		rows = append(u.wrapLine(lines[i], width), rows...)
	}
	if len(rows) > need {
		rows = rows[len(rows)-need:]
	}
	return rows
}

func (u *UI) logicalLines() []logicalLine {
	all := u.runs.Runs()
	def := parser.Format{Fg: u.pal[parser.SlotDefault]}

	lines := []logicalLine{{plain: true}}
	for _, r := range all {
		switch r.Text {
		case "\n":
			lines = append(lines, logicalLine{plain: true})
		case "\r":
			// Carriage returns carry no layout information here.
		default:
			cur := &lines[len(lines)-1]
			cur.runs = append(cur.runs, r)
			if r.Format != def {
				cur.plain = false
			}
		}
	}
	return lines
}

// wrapLine renders one logical line into width-bounded rows. Plain lines
// may pick up display-only highlight spans; the run log itself is never
// modified.
func (u *UI) wrapLine(line logicalLine, width int) [][]styledCell {
	var spans []highlight.Span
	if line.plain && u.color != nil {
		var text string
		for _, r := range line.runs {
			text += r.Text
		}
		spans = u.color.Line(text)
	}

	rows := [][]styledCell{{}}
	rowWidth := 0
	offset := 0 // byte offset across the whole line, for span lookup

	for _, run := range line.runs {
		base := u.styleFor(run.Format)
		for _, r := range run.Text {
			style := base
			if s, ok := spanAt(spans, offset); ok {
				style = tcell.StyleDefault.Foreground(u.slotColor(s.Slot))
			}
			offset += len(string(r))

			cw := runewidth.RuneWidth(r)
			if cw == 0 {
				continue
			}
			if rowWidth+cw > width {
				rows = append(rows, []styledCell{})
				rowWidth = 0
			}
			last := len(rows) - 1
			rows[last] = append(rows[last], styledCell{r: r, style: style, width: cw})
			rowWidth += cw
		}
	}
	return rows
}

func spanAt(spans []highlight.Span, offset int) (highlight.Span, bool) {
	for _, s := range spans {
		if offset >= s.Start && offset < s.End {
			return s, true
		}
	}
	return highlight.Span{}, false
}

func (u *UI) styleFor(f parser.Format) tcell.Style {
	return tcell.StyleDefault.
		Foreground(rgbaColor(f.Fg)).
		Underline(f.Underline)
}

func (u *UI) slotColor(s parser.Slot) tcell.Color {
	return rgbaColor(u.pal[s])
}

func rgbaColor(c parser.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
