// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawnrt

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// handles maps integer keys to the values owned across the C boundary.
var (
	handles    sync.Map
	nextHandle atomic.Uintptr
	live       atomic.Int64
)

// OwnedOpaque is an owning reference to a Go value that travels through C
// as an integer handle in a void* slot. Like runtime/cgo.Handle, the handle
// is not a Go pointer; generated code converts it on the C side. The value
// stays reachable until Release.
type OwnedOpaque[T any] struct {
	handle uintptr
}

// NewOwnedOpaque takes ownership of v.
func NewOwnedOpaque[T any](v T) OwnedOpaque[T] {
	h := nextHandle.Add(1)
	handles.Store(h, v)
	live.Add(1)
	return OwnedOpaque[T]{handle: h}
}

// IntoRaw gives the handle standing for the value. Ownership moves to
// whoever holds the handle. Handles are never zero.
func (o OwnedOpaque[T]) IntoRaw() uintptr {
	return o.handle
}

// FromRaw reclaims ownership of the value behind a handle made by IntoRaw.
func FromRaw[T any](raw uintptr) OwnedOpaque[T] {
	o := OwnedOpaque[T]{handle: raw}
	o.Value()
	return o
}

// Peek gives the value behind a handle without taking ownership. It returns
// false for a zero or released handle.
func Peek[T any](raw uintptr) (T, bool) {
	var zero T
	v, ok := handles.Load(raw)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Value gives the owned value. It panics if the value was released.
func (o OwnedOpaque[T]) Value() T {
	v, ok := handles.Load(o.handle)
	if !ok {
		panic(fmt.Sprintf("dawnrt: opaque handle %#x is not live", o.handle))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("dawnrt: opaque handle %#x holds %T, not %T", o.handle, v, t))
	}
	return t
}

// Release gives up ownership of the value. Releasing twice panics.
func (o OwnedOpaque[T]) Release() {
	if _, ok := handles.LoadAndDelete(o.handle); !ok {
		panic(fmt.Sprintf("dawnrt: opaque handle %#x released twice", o.handle))
	}
	live.Add(-1)
}

// Live gives the number of values currently owned across the boundary.
func Live() int {
	return int(live.Load())
}

// Slot names where the API keeps a multi-use closure, such as the logging
// callback of one device. Owner is the raw address of the object holding
// the callback, or zero for process-wide callbacks.
type Slot struct {
	Owner uintptr
	Name  string
}

// slots maps each Slot to the OwnedOpaque it currently holds.
var slots sync.Map

type releaser interface {
	Release()
}

// Keep records o as the closure held by slot and releases the closure the
// slot held before. It must only be called once the API has stopped using
// the previous closure.
func Keep[T any](slot Slot, o OwnedOpaque[T]) {
	if prev, ok := slots.Swap(slot, o); ok {
		prev.(releaser).Release()
	}
}

// Drop releases the closure held by slot, if any.
func Drop(slot Slot) {
	if prev, ok := slots.LoadAndDelete(slot); ok {
		prev.(releaser).Release()
	}
}
