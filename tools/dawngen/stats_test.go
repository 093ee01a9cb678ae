// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const statsSchema = `{
	"uint32_t": {"category": "native"},
	"extent": {
		"category": "structure",
		"members": [{"name": "width", "type": "uint32_t"}]
	},
	"texture descriptor": {
		"category": "structure",
		"members": [
			{"name": "size", "type": "extent"},
			{"name": "mip level count", "type": "uint32_t"}
		]
	},
	"texture": {"category": "object", "methods": []},
	"device": {
		"category": "object",
		"methods": [
			{"name": "create texture", "returns": "texture", "args": [{"name": "descriptor", "type": "texture descriptor", "annotation": "const*"}]},
			{"name": "tick"},
			{"name": "resize", "args": [{"name": "size", "type": "extent"}], "tags": ["emscripten"]}
		]
	},
	"queue": {
		"category": "object",
		"methods": [{"name": "on submitted", "args": [{"name": "value", "type": "uint32_t"}]}]
	},
	"area": {
		"category": "function",
		"returns": "uint32_t",
		"args": [{"name": "extent", "type": "extent"}]
	},
	"count": {"category": "function", "returns": "uint32_t", "args": []}
}`

func TestComputeStats(t *testing.T) {
	s, err := Summarize(decode(t, statsSchema), Options{})
	if err != nil {
		t.Fatal(err)
	}
	stats := ComputeStats(s)
	expected := Stats{
		Functions: Names("area"),
		Methods: []ObjectMethods{
			{Object: NewName("device"), Methods: Names("create texture")},
		},
		Members: []StructMember{
			{Structure: NewName("texture descriptor"), Member: NewName("size"), Type: NewName("extent")},
		},
	}
	if diff := cmp.Diff(expected, stats, cmpOpt); diff != "" {
		t.Errorf("unexpected stats (-want +got):\n%s", diff)
	}
	if got := stats.MethodCount(); got != 1 {
		t.Errorf("expected 1 method; got %d", got)
	}

	var b strings.Builder
	if err := stats.Write(&b); err != nil {
		t.Fatal(err)
	}
	report := strings.Join([]string{
		"Functions with structure arguments: 1",
		"  area",
		"Objects with methods taking structure arguments:",
		"  Device",
		"    createTexture",
		"Total object methods taking structure arguments: 1",
		"Structures with structure members:",
		"  textureDescriptor has member size of type extent",
		"Total structure members of structure type: 1",
		"",
	}, "\n")
	if diff := cmp.Diff(report, b.String()); diff != "" {
		t.Errorf("unexpected report (-want +got):\n%s", diff)
	}
}
