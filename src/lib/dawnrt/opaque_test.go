// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawnrt

import (
	"testing"
)

type testCallback func(status int)

// trampoline mirrors generated trampolines.
func trampoline(userdata uintptr, status int, singleUse bool) {
	owned := FromRaw[testCallback](userdata)
	owned.Value()(status)
	if singleUse {
		owned.Release()
	}
}

func TestSingleUseReleasesOnce(t *testing.T) {
	before := Live()
	var calls []int
	raw := NewOwnedOpaque(testCallback(func(status int) { calls = append(calls, status) })).IntoRaw()
	if got := Live(); got != before+1 {
		t.Fatalf("Live() = %d, want %d", got, before+1)
	}

	trampoline(raw, 3, true)
	if len(calls) != 1 || calls[0] != 3 {
		t.Errorf("calls = %v, want [3]", calls)
	}
	if got := Live(); got != before {
		t.Errorf("Live() after a single-use call = %d, want %d", got, before)
	}
	if _, ok := Peek[testCallback](raw); ok {
		t.Errorf("released handle is still visible")
	}
}

func TestMultiUseNeverReleases(t *testing.T) {
	before := Live()
	calls := 0
	owned := NewOwnedOpaque(testCallback(func(int) { calls++ }))
	raw := owned.IntoRaw()

	trampoline(raw, 0, false)
	trampoline(raw, 0, false)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if got := Live(); got != before+1 {
		t.Errorf("Live() = %d, want %d", got, before+1)
	}
	owned.Release()
	if got := Live(); got != before {
		t.Errorf("Live() after the owner released = %d, want %d", got, before)
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	owned := NewOwnedOpaque(1)
	owned.Release()
	defer func() {
		if recover() == nil {
			t.Errorf("double release did not panic")
		}
	}()
	owned.Release()
}

func TestPeek(t *testing.T) {
	owned := NewOwnedOpaque("mode")
	defer owned.Release()

	if v, ok := Peek[string](owned.IntoRaw()); !ok || v != "mode" {
		t.Errorf("Peek = %q, %t; want %q, true", v, ok, "mode")
	}
	if _, ok := Peek[int](owned.IntoRaw()); ok {
		t.Errorf("Peek with the wrong type succeeded")
	}
	if _, ok := Peek[string](0); ok {
		t.Errorf("Peek(0) succeeded")
	}
}

func TestKeepReplacesPreviousClosure(t *testing.T) {
	before := Live()
	slot := Slot{Owner: 0x1000, Name: "wgpuDeviceSetLoggingCallback"}
	other := Slot{Owner: 0x2000, Name: "wgpuDeviceSetLoggingCallback"}

	first := NewOwnedOpaque(testCallback(func(int) {}))
	Keep(slot, first)
	Keep(other, NewOwnedOpaque(testCallback(func(int) {})))
	if got := Live(); got != before+2 {
		t.Fatalf("Live() = %d, want %d", got, before+2)
	}

	calls := 0
	second := NewOwnedOpaque(testCallback(func(int) { calls++ }))
	Keep(slot, second)
	if got := Live(); got != before+2 {
		t.Errorf("Live() after replacing = %d, want %d", got, before+2)
	}
	if _, ok := Peek[testCallback](first.IntoRaw()); ok {
		t.Errorf("replaced closure is still live")
	}
	trampoline(second.IntoRaw(), 0, false)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	Drop(slot)
	Drop(slot)
	if got := Live(); got != before+1 {
		t.Errorf("Live() after dropping = %d, want %d", got, before+1)
	}
	Drop(other)
	if got := Live(); got != before {
		t.Errorf("Live() after dropping every slot = %d, want %d", got, before)
	}
}
