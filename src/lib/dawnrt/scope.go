// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawnrt

import (
	"runtime"
	"unsafe"
)

// Scope owns the memory pinned for the duration of one API call. The zero
// value is ready to use.
type Scope struct {
	pinner   runtime.Pinner
	n        int
	released bool
}

// Len gives the number of acquisitions made in the scope.
func (s *Scope) Len() int {
	return s.n
}

// Released returns whether Release was called.
func (s *Scope) Released() bool {
	return s.released
}

// Release unpins everything acquired in the scope. It is idempotent.
func (s *Scope) Release() {
	if s.released {
		return
	}
	s.pinner.Unpin()
	s.released = true
}

func (s *Scope) pin(p any) {
	if s.released {
		panic("dawnrt: acquisition in a released scope")
	}
	s.pinner.Pin(p)
	s.n++
}

// New copies v into scope-owned memory and gives its address.
func New[T any](s *Scope, v T) *T {
	p := new(T)
	*p = v
	s.pin(p)
	return p
}

// Ref pins the value p points to and gives p back. A nil pointer is
// returned as is.
func Ref[T any](s *Scope, p *T) *T {
	if p == nil {
		return nil
	}
	s.pin(p)
	return p
}

// Pin pins the memory p points to and gives p back. Addresses outside the
// Go heap, like mapped buffer ranges, are returned as they are.
func Pin(s *Scope, p unsafe.Pointer) unsafe.Pointer {
	if p == nil {
		return nil
	}
	s.pin(p)
	return p
}

// SliceData pins the backing array of xs and gives the address of its first
// element, or nil for an empty slice.
func SliceData[T any](s *Scope, xs []T) *T {
	if len(xs) == 0 {
		return nil
	}
	p := &xs[0]
	s.pin(p)
	return p
}

// Map builds a scope-owned array holding f of each element of xs and gives
// the address of its first element, or nil for an empty slice.
func Map[T, R any](s *Scope, xs []T, f func(T) R) *R {
	if len(xs) == 0 {
		return nil
	}
	out := make([]R, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	p := &out[0]
	s.pin(p)
	return p
}

// Bytes pins b and gives the address of its first byte, or nil for an empty
// slice.
func Bytes(s *Scope, b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	p := &b[0]
	s.pin(p)
	return unsafe.Pointer(p)
}

// CString copies str into a scope-owned, NUL-terminated buffer.
func CString(s *Scope, str string) *byte {
	buf := make([]byte, len(str)+1)
	copy(buf, str)
	p := &buf[0]
	s.pin(p)
	return p
}

// CStrings builds a scope-owned array of NUL-terminated copies of strs, or
// gives nil for an empty slice.
func CStrings(s *Scope, strs []string) **byte {
	return Map(s, strs, func(str string) *byte {
		return CString(s, str)
	})
}
