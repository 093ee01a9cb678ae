// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"testing"
)

func TestNameCasing(t *testing.T) {
	tests := []struct {
		raw        string
		camel      string
		upperCamel string
		identifier string
	}{
		{
			raw:        "HELLO world TEST",
			camel:      "HELLOWorldTEST",
			upperCamel: "HELLOWorldTEST",
			identifier: "HELLOWorldTEST",
		},
		{
			raw:        "123 test",
			camel:      "123Test",
			upperCamel: "123Test",
			identifier: "_123Test",
		},
		{
			raw:        "test 123 number",
			camel:      "test123Number",
			upperCamel: "Test123Number",
			identifier: "test123Number",
		},
		{
			raw:        "extent 3D",
			camel:      "extent3D",
			upperCamel: "Extent3D",
			identifier: "extent3D",
		},
		{
			raw: "",
		},
	}
	for _, test := range tests {
		n := NewName(test.raw)
		if got := n.CamelCase(); got != test.camel {
			t.Errorf("%q: expected camel case %q; got %q", test.raw, test.camel, got)
		}
		if got := n.UpperCamelCase(); got != test.upperCamel {
			t.Errorf("%q: expected upper camel case %q; got %q", test.raw, test.upperCamel, got)
		}
		if got := n.Identifier(); got != test.identifier {
			t.Errorf("%q: expected identifier %q; got %q", test.raw, test.identifier, got)
		}
	}
}

func TestNameParts(t *testing.T) {
	n := NewName("  get   mapped range ")
	if n.String() != "get mapped range" {
		t.Errorf("expected whitespace to be normalized; got %q", n)
	}
	if n.Len() != 3 {
		t.Errorf("expected 3 parts; got %d", n.Len())
	}
	if n.FirstPart() != "get" || n.LastPart() != "range" {
		t.Errorf("unexpected first/last parts: %q, %q", n.FirstPart(), n.LastPart())
	}
	if got := n.SubName(1); got != NewName("mapped range") {
		t.Errorf("expected %q; got %q", "mapped range", got)
	}
	if got := n.SubName(3); !got.IsEmpty() {
		t.Errorf("expected an empty name; got %q", got)
	}

	var empty Name
	if empty.Len() != 0 || empty.FirstPart() != "" || empty.LastPart() != "" {
		t.Errorf("expected the empty name to have no parts")
	}
}

func TestNameOrder(t *testing.T) {
	a, b := NewName("adapter"), NewName("adapter info")
	if !a.Less(b) || b.Less(a) {
		t.Errorf("expected %q < %q", a, b)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare disagrees with Less")
	}
}
