// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/input.go
// Summary: Keystroke to PTY byte-sequence mapping.

package tui

import "github.com/gdamore/tcell/v2"

// bytesForKey translates a key event into the bytes forwarded to the
// shell. Printable text goes through byte-for-byte; a fixed set of control
// keys map to fixed sequences. Anything else produces nothing.
func bytesForKey(ev *tcell.EventKey) []byte {
	switch ev.Key() {
	case tcell.KeyEnter:
		return []byte("\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyTab:
		return []byte("\t")
	case tcell.KeyEsc:
		return []byte("\x1b")
	case tcell.KeyRune:
		return []byte(string(ev.Rune()))
	}
	return nil
}
