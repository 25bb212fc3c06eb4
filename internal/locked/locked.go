// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package locked provides concurrency-safe helpers.
package locked

import (
	"bytes"
	"sync"
)

// BytesBuffer is a locked bytes.Buffer.
type BytesBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *BytesBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *BytesBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Value is a value of type T that may be read and replaced concurrently.
// The zero Value holds the zero value of T.
type Value[T any] struct {
	mu  sync.RWMutex
	val T
}

// Load returns the current value.
func (v *Value[T]) Load() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.val
}

// Store replaces the current value with val.
func (v *Value[T]) Store(val T) {
	v.mu.Lock()
	v.val = val
	v.mu.Unlock()
}

// Swap replaces the current value with val and returns the previous value.
func (v *Value[T]) Swap(val T) (old T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	old, v.val = v.val, val
	return old
}
