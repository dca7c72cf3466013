// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/reader.go
// Summary: Blocking read loop feeding PTY output into the shared buffer.

package term

import (
	"io"
	"log"
	"time"
)

const (
	// readChunkSize bounds a single blocking read from the PTY.
	readChunkSize = 1024
	// readIdle caps CPU spin between reads; it also bounds the extra
	// delivery latency a chunk can pick up.
	readIdle = time.Millisecond
)

// ReadLoop reads from src until EOF or error, appending every chunk to
// out. Run it on its own goroutine; it is the only appender. Once it
// returns nothing is ever appended again, and the consumer just keeps
// seeing an empty buffer.
//
// After each append a token is sent on refresh without blocking, so a
// consumer can wake on output instead of polling. refresh may be nil.
func ReadLoop(src io.Reader, out *Buffer, refresh chan<- struct{}) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			out.Append(buf[:n])
			if refresh != nil {
				select {
				case refresh <- struct{}{}:
				default:
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Term: PTY read failed: %v", err)
			}
			return
		}
		if n == 0 {
			// A zero-byte read without an error still means the
			// stream is done.
			return
		}
		time.Sleep(readIdle)
	}
}
