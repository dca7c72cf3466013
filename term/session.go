// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session.go
// Summary: PTY session: spawns the shell and owns the master descriptor.

package term

import (
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// Session wraps an OS-level PTY and the shell process running inside it.
// The reader goroutine consumes output through Reader; keystrokes go in
// through Write. The session lives for the whole terminal lifetime and is
// resized in place, never recreated.
type Session struct {
	ptmx *os.File
	cmd  *exec.Cmd

	writeMu sync.Mutex // serializes the input path, independent of reads
	mu      sync.Mutex
	closed  bool
}

// Start spawns command inside a new PTY with the given initial size. An
// empty command falls back to $SHELL, then /bin/sh.
func Start(command string, rows, cols int) (*Session, error) {
	if command == "" {
		command = os.Getenv("SHELL")
	}
	if command == "" {
		command = "/bin/sh"
	}

	cmd := exec.Command(command)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, err
	}

	return &Session{ptmx: ptmx, cmd: cmd}, nil
}

// Write forwards bytes to the child's stdin. Input forwarding is
// best-effort; callers drop the error.
func (s *Session) Write(p []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.ptmx.Write(p)
}

// Resize informs the PTY of a new window size, in cells and pixels.
// Resize is advisory; failures are swallowed and the next size change
// retries implicitly.
func (s *Session) Resize(rows, cols, pxWidth, pxHeight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	_ = pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
		X:    uint16(pxWidth),
		Y:    uint16(pxHeight),
	})
}

// Reader returns the byte source the reader goroutine drains. Reads block
// until the child produces output or exits.
func (s *Session) Reader() io.Reader { return s.ptmx }

// Close tears the session down: kills the child, closes the master, and
// reaps the process.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	err := s.ptmx.Close()
	_ = s.cmd.Wait()
	return err
}
