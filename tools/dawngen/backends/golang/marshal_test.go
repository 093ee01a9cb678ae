// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package golang

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.webgpu.dev/dawn/tools/dawngen"
)

func TestFoldOrder(t *testing.T) {
	acqs := []acquisition{
		{before: []string{"a1"}, expr: "a", after: []string{"a2"}},
		{expr: "b"},
		{before: []string{"c1"}, expr: "c", after: []string{"c2"}},
	}
	got := fold(acqs, func(exprs []string) []string {
		return []string{"f(" + strings.Join(exprs, ", ") + ")"}
	})
	expected := []string{"a1", "c1", "f(a, b, c)", "c2", "a2"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("unexpected statements (-want +got):\n%s", diff)
	}
	if anyScoped(acqs) {
		t.Error("expected no scoped acquisition")
	}
}

func TestFoldWithoutAcquisitions(t *testing.T) {
	got := fold(nil, func(exprs []string) []string {
		return []string{call("wgpuInstanceProcessEvents", exprs, false)}
	})
	if diff := cmp.Diff([]string{"C.wgpuInstanceProcessEvents()"}, got); diff != "" {
		t.Errorf("unexpected statements (-want +got):\n%s", diff)
	}
}

func TestNaming(t *testing.T) {
	tests := []struct {
		name     string
		param    string
		rawField string
		fromRaw  string
	}{
		{"type", "type_", "_type", "typeFromRaw"},
		{"scope", "scope_", "scope", "scopeFromRaw"},
		{"device ID", "deviceID", "deviceID", "deviceIDFromRaw"},
		{"shader source WGSL", "shaderSourceWGSL", "shaderSourceWGSL", "shaderSourceWGSLFromRaw"},
	}
	for _, test := range tests {
		n := dawngen.NewName(test.name)
		if got := paramName(n); got != test.param {
			t.Errorf("paramName(%q) = %q; expected %q", test.name, got, test.param)
		}
		if got := rawFieldName(n); got != test.rawField {
			t.Errorf("rawFieldName(%q) = %q; expected %q", test.name, got, test.rawField)
		}
		if got := fromRawName(n); got != test.fromRaw {
			t.Errorf("fromRawName(%q) = %q; expected %q", test.name, got, test.fromRaw)
		}
	}
}

func TestExternType(t *testing.T) {
	tests := map[string]string{
		"C.WGPUErrorType":  "WGPUErrorType",
		"*C.WGPUDevice":    "WGPUDevice*",
		"**C.char":         "char**",
		"unsafe.Pointer":   "void*",
		"C.WGPUStringView": "WGPUStringView",
	}
	for raw, expected := range tests {
		if got := externType(raw); got != expected {
			t.Errorf("externType(%q) = %q; expected %q", raw, got, expected)
		}
	}
}

func TestReceiverName(t *testing.T) {
	if got := receiverName("Device", nil); got != "d" {
		t.Errorf("expected d; got %q", got)
	}
	if got := receiverName("Device", map[string]bool{"d": true}); got != "device" {
		t.Errorf("expected device; got %q", got)
	}
	// "s" is free, but "scope" is not.
	if got := receiverName("Scope", map[string]bool{"s": true}); got != "scope_" {
		t.Errorf("expected scope_; got %q", got)
	}
}

func TestNumericLiteral(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"0", ""},
		{"0x0", ""},
		{"1", "1"},
		{"0xFFFF", "0xFFFF"},
		{"18446744073709551615", "18446744073709551615"},
		{"0.5", "0.5"},
	}
	for _, test := range tests {
		got, err := numericLiteral(test.text)
		if err != nil {
			t.Errorf("%q: %v", test.text, err)
			continue
		}
		if got != test.expected {
			t.Errorf("numericLiteral(%q) = %q; expected %q", test.text, got, test.expected)
		}
	}
	if _, err := numericLiteral("WGPU_WHOLE_SIZE"); err == nil {
		t.Error("expected a name to be rejected")
	}
}
