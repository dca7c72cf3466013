// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/buffer.go
// Summary: Lock-guarded byte queue between the reader goroutine and the consumer.

package term

import "sync"

// Buffer bridges the reader goroutine (sole appender) and the consumer
// (sole drainer). Bytes come out in the order they went in, each exactly
// once: Take swaps the whole backlog out under the lock.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// Append copies p onto the end of the backlog.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	b.data = append(b.data, p...)
	b.mu.Unlock()
}

// Take removes and returns everything currently buffered. The caller owns
// the returned slice. An empty buffer yields nil, which is the normal idle
// case for a polling consumer.
func (b *Buffer) Take() []byte {
	b.mu.Lock()
	data := b.data
	b.data = nil
	b.mu.Unlock()
	return data
}

// Len reports how many bytes are waiting.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
