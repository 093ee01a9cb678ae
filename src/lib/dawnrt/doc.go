// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dawnrt is the runtime support imported by generated WebGPU
// bindings.
//
// Every wrapped call opens a Scope. Raw structures, arrays, strings and
// extension chains built to pass host values into the API are allocated in
// that Scope and pinned, and are all released together when the call
// returns. Nothing allocated in a Scope may be referenced by the API after
// the call.
//
// Closures handed to the API as callbacks cross the C boundary as
// OwnedOpaque handles. The generated trampoline reclaims the closure with
// FromRaw and, for callbacks invoked at most once, releases it. A multi-use
// closure set through a method is kept in a Slot until the next call to the
// same method on the same object replaces or clears it.
//
// The package does not use cgo itself. Generated code converts the pointers
// given here to its C types with unsafe.Pointer, and turns handles into
// void* with a C helper in its preamble.
package dawnrt
