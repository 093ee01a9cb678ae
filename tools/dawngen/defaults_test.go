// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolvedDefaults(t *testing.T) {
	s := summarizeFixture(t)
	tests := []struct {
		owner, member string
		expected      DefaultValue
	}{
		{"extent 3D", "width", DefaultValue{Kind: ValueZero}},
		{"extent 3D", "height", DefaultValue{Kind: ValueLiteral, Text: "1"}},
		{"string view", "data", DefaultValue{Kind: ValueNull}},
		{"string view", "length", DefaultValue{Kind: ValueLimit, Limit: LimitSizeMax, Constant: NewName("strlen")}},
		{"limits", "max texture dimension 1D", DefaultValue{Kind: ValueLimit, Limit: LimitUint32Max, Constant: NewName("limit u32 undefined")}},
		{"request adapter options", "feature level", DefaultValue{Kind: ValueEnumMember, Type: NewName("feature level"), Member: NewName("core")}},
		{"request adapter options", "force fallback adapter", DefaultValue{Kind: ValueBool}},
		{"buffer descriptor", "label", DefaultValue{Kind: ValueEmptyString}},
		{"buffer descriptor", "usage", DefaultValue{Kind: ValueEmptyBitmask, Type: NewName("buffer usage")}},
		{"bind group layout descriptor", "entries", DefaultValue{Kind: ValueEmptyList}},
		{"bind group layout descriptor", "entry count", DefaultValue{Kind: ValueZero}},
		{"device descriptor", "required limits", DefaultValue{Kind: ValueNull}},
		{"device descriptor", "uncaptured error callback info", DefaultValue{Kind: ValueNone}},
		{"blend constant", "values", DefaultValue{Kind: ValueZero}},
		{"buffer map callback info", "mode", DefaultValue{Kind: ValueEnumMember, Type: NewName("callback mode"), Member: NewName("wait any only")}},
		{
			"bind group layout entry", "buffer",
			DefaultValue{
				Kind:      ValueZeroStruct,
				Type:      NewName("buffer binding layout"),
				Field:     NewName("type"),
				FieldType: NewName("buffer binding type"),
				Member:    NewName("binding not used"),
			},
		},
	}
	for _, test := range tests {
		got := s.Default(NewName(test.owner), NewName(test.member))
		if diff := cmp.Diff(test.expected, got, cmpOpt); diff != "" {
			t.Errorf("%s.%s: unexpected default (-want +got):\n%s", test.owner, test.member, diff)
		}
	}
}

func TestExplicitDefaults(t *testing.T) {
	schema := decode(t, `{
		"float": {"category": "native"},
		"double": {"category": "native"},
		"bool": {"category": "native"},
		"uint32_t": {"category": "native"},
		"answer": {"category": "constant", "type": "uint32_t", "value": "42"},
		"color": {"category": "structure", "members": [{"name": "r", "type": "double"}]},
		"empty": {"category": "structure", "members": []},
		"mode": {"category": "enum", "values": [{"name": "a", "value": 1}]}
	}`)
	tests := []struct {
		name     string
		usage    TypeUsage
		expected DefaultValue
		err      error
	}{
		{
			name:     "C float suffix",
			usage:    TypeUsage{Type: NewName("float"), Default: &DefaultSpec{Name: NewName("1.f")}},
			expected: DefaultValue{Kind: ValueFloat, Text: "1.0"},
		},
		{
			name:     "float numeral",
			usage:    TypeUsage{Type: NewName("double"), Default: &DefaultSpec{Kind: DefaultFloat, Float: 2}},
			expected: DefaultValue{Kind: ValueFloat, Text: "2.0"},
		},
		{
			name:  "float garbage",
			usage: TypeUsage{Type: NewName("float"), Default: &DefaultSpec{Name: NewName("lots")}},
			err:   ErrUnhandledNativeType,
		},
		{
			name:     "bool spelled as a string",
			usage:    TypeUsage{Type: NewName("bool"), Default: &DefaultSpec{Name: NewName("true")}},
			expected: DefaultValue{Kind: ValueBool, Bool: true},
		},
		{
			name:  "constant without a host equivalent",
			usage: TypeUsage{Type: NewName("uint32_t"), Default: &DefaultSpec{Name: NewName("answer")}},
			err:   ErrUnknownConstant,
		},
		{
			name:  "unknown enum member",
			usage: TypeUsage{Type: NewName("mode"), Default: &DefaultSpec{Name: NewName("b")}},
			err:   ErrUnknownEnumValue,
		},
		{
			name:     "zero without a leading enum",
			usage:    TypeUsage{Type: NewName("color"), Default: &DefaultSpec{Name: NewName("zero")}},
			expected: DefaultValue{Kind: ValueZero},
		},
		{
			name:     "zero of an empty structure",
			usage:    TypeUsage{Type: NewName("empty"), Default: &DefaultSpec{Name: NewName("zero")}},
			expected: DefaultValue{Kind: ValueZero},
		},
		{
			name:     "null pointer",
			usage:    TypeUsage{Type: NewName("color"), Annotation: AnnotationConst, Default: &DefaultSpec{Name: NewName(NullPointer)}},
			expected: DefaultValue{Kind: ValueNull},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ResolveDefault(schema, test.usage)
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Fatalf("expected %v; got %v", test.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.expected, got, cmpOpt); diff != "" {
				t.Errorf("unexpected default (-want +got):\n%s", diff)
			}
		})
	}
}
