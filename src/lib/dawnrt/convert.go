// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawnrt

import (
	"unsafe"
)

// Strlen is the string view length denoting a NUL-terminated string.
const Strlen = ^uint(0)

// Bool gives the C ABI form of b.
func Bool(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// StringFromView copies a string view into a Go string. A length of Strlen
// means the data is NUL-terminated; nil data is the empty string.
func StringFromView(data unsafe.Pointer, length uint) string {
	if data == nil {
		return ""
	}
	if length == Strlen {
		length = cstrlen(data)
	}
	return string(unsafe.Slice((*byte)(data), length))
}

// GoString copies a NUL-terminated string.
func GoString(data unsafe.Pointer) string {
	return StringFromView(data, Strlen)
}

// GoStrings copies an array of n NUL-terminated strings.
func GoStrings(data unsafe.Pointer, n uint) []string {
	if data == nil || n == 0 {
		return nil
	}
	ptrs := unsafe.Slice((*unsafe.Pointer)(data), n)
	strs := make([]string, n)
	for i, p := range ptrs {
		strs[i] = GoString(p)
	}
	return strs
}

// CopySlice copies n elements starting at data.
func CopySlice[T any](data *T, n uint) []T {
	if data == nil || n == 0 {
		return nil
	}
	return append([]T(nil), unsafe.Slice(data, n)...)
}

// CopyBytes copies n bytes starting at data.
func CopyBytes(data unsafe.Pointer, n uint) []byte {
	return CopySlice((*byte)(data), n)
}

// WrapSlice converts n raw elements starting at data with f.
func WrapSlice[R, T any](data *R, n uint, f func(*R) T) []T {
	if data == nil || n == 0 {
		return nil
	}
	raw := unsafe.Slice(data, n)
	out := make([]T, n)
	for i := range raw {
		out[i] = f(&raw[i])
	}
	return out
}

// WrapPointer converts the raw value at p with f, or gives nil for a nil
// pointer.
func WrapPointer[R, T any](p *R, f func(*R) T) *T {
	if p == nil {
		return nil
	}
	v := f(p)
	return &v
}

func cstrlen(data unsafe.Pointer) uint {
	var n uint
	for *(*byte)(unsafe.Add(data, n)) != 0 {
		n++
	}
	return n
}
