// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawnrt

import (
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

func TestScopeAcquisitions(t *testing.T) {
	scope := new(Scope)
	defer scope.Release()

	p := New(scope, uint32(7))
	if *p != 7 {
		t.Errorf("New gave %d, want 7", *p)
	}
	if got := SliceData[uint32](scope, nil); got != nil {
		t.Errorf("SliceData(nil) = %v, want nil", got)
	}
	if got := Map(scope, []int{}, func(i int) int { return i }); got != nil {
		t.Errorf("Map(empty) = %v, want nil", got)
	}
	if got := Ref[int](scope, nil); got != nil {
		t.Errorf("Ref(nil) = %v, want nil", got)
	}
	if got := Bytes(scope, nil); got != nil {
		t.Errorf("Bytes(nil) = %v, want nil", got)
	}
	// Only New made an acquisition so far.
	if got := scope.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	doubled := Map(scope, []int{1, 2, 3}, func(i int) int64 { return int64(2 * i) })
	if diff := cmp.Diff([]int64{2, 4, 6}, unsafe.Slice(doubled, 3)); diff != "" {
		t.Errorf("Map (-want +got):\n%s", diff)
	}
	xs := []uint16{4, 5}
	if got := SliceData(scope, xs); got != &xs[0] {
		t.Errorf("SliceData did not give the backing array")
	}
}

func TestScopeRelease(t *testing.T) {
	scope := new(Scope)
	New(scope, 1)
	scope.Release()
	scope.Release()
	if !scope.Released() {
		t.Fatalf("scope not marked released")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("acquisition in a released scope did not panic")
		}
	}()
	New(scope, 2)
}

func TestCStrings(t *testing.T) {
	scope := new(Scope)
	defer scope.Release()

	strs := []string{"vs_main", "", "fs_main"}
	raw := CStrings(scope, strs)
	got := GoStrings(unsafe.Pointer(raw), uint(len(strs)))
	if diff := cmp.Diff(strs, got); diff != "" {
		t.Errorf("string list round trip (-want +got):\n%s", diff)
	}
	// One acquisition per string plus the array.
	if got, want := scope.Len(), len(strs)+1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if CStrings(scope, nil) != nil {
		t.Errorf("CStrings(nil) is not nil")
	}
}

// The raw layout of chained structures: a header leading every link.
type testChainedStruct struct {
	next  *testChainedStruct
	sType uint32
}

type testLink struct {
	chain testChainedStruct
	value uint32
}

type testRoot struct {
	nextInChain *testChainedStruct
	label       *byte
}

// testLinkHost mirrors generated link wrappers: each builds its own raw
// form and threads the rest of the chain behind it.
type testLinkHost struct {
	sType uint32
	value uint32
	next  *testLinkHost
}

func (l *testLinkHost) unwrapChain(scope *Scope) *testChainedStruct {
	if l == nil {
		return nil
	}
	raw := New(scope, testLink{
		chain: testChainedStruct{next: l.next.unwrapChain(scope), sType: l.sType},
		value: l.value,
	})
	return (*testChainedStruct)(unsafe.Pointer(raw))
}

func TestChainThreading(t *testing.T) {
	scope := new(Scope)
	host := &testLinkHost{sType: 1, value: 10, next: &testLinkHost{sType: 2, value: 20, next: &testLinkHost{sType: 3, value: 30}}}
	root := New(scope, testRoot{nextInChain: host.unwrapChain(scope), label: CString(scope, "root")})

	type seen struct {
		SType, Value uint32
	}
	var got []seen
	for node := root.nextInChain; node != nil; node = node.next {
		link := (*testLink)(unsafe.Pointer(node))
		got = append(got, seen{node.sType, link.value})
	}
	want := []seen{{1, 10}, {2, 20}, {3, 30}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chain (-want +got):\n%s", diff)
	}
	// Three links, the label and the root.
	if got := scope.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	scope.Release()
}

func TestChainWithoutExtensions(t *testing.T) {
	scope := new(Scope)
	defer scope.Release()
	var host *testLinkHost
	root := New(scope, testRoot{nextInChain: host.unwrapChain(scope)})
	if root.nextInChain != nil {
		t.Errorf("root without extensions has a chain")
	}
}

func TestPin(t *testing.T) {
	scope := new(Scope)
	defer scope.Release()

	if got := Pin(scope, nil); got != nil {
		t.Errorf("Pin(nil) = %v, want nil", got)
	}
	x := new(uint64)
	if got := Pin(scope, unsafe.Pointer(x)); got != unsafe.Pointer(x) {
		t.Errorf("Pin did not give its argument back")
	}
	if got := scope.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
