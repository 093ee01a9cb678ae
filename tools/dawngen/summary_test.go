// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummaryLeavesOutEmscripten(t *testing.T) {
	s := summarizeFixture(t)
	if _, ok := s.Lookup(NewName("INTERNAL HAVE EMDAWNWEBGPU HEADER")); ok {
		t.Error("expected the emscripten structure to be left out")
	}

	e, ok := s.Lookup(NewName("s type"))
	if !ok {
		t.Fatal("s type not summarized")
	}
	var values []Name
	for _, v := range e.(*Enum).Values {
		values = append(values, v.Name)
	}
	expected := Names("shader source SPIRV", "shader source WGSL", "dawn toggles descriptor")
	if diff := cmp.Diff(expected, values, cmpOpt); diff != "" {
		t.Errorf("unexpected enum values (-want +got):\n%s", diff)
	}

	var methods []Name
	for _, m := range s.Methods(NewName("device")) {
		methods = append(methods, m.Name)
	}
	expected = Names("create buffer", "create shader module", "create bind group layout", "get queue", "set logging callback", "destroy")
	if diff := cmp.Diff(expected, methods, cmpOpt); diff != "" {
		t.Errorf("unexpected methods (-want +got):\n%s", diff)
	}
}

func TestSummaryDeclsAreSorted(t *testing.T) {
	decls := summarizeFixture(t).Decls()
	for i := 1; i < len(decls); i++ {
		if !decls[i-1].Name.Less(decls[i].Name) {
			t.Errorf("%q is not before %q", decls[i-1].Name, decls[i].Name)
		}
	}
}

func findMethod(t *testing.T, s *Summary, object, method string) Callable {
	t.Helper()
	for _, m := range s.Methods(NewName(object)) {
		if m.Name == NewName(method) {
			return m
		}
	}
	t.Fatalf("no method %s.%s", object, method)
	return Callable{}
}

func TestGetters(t *testing.T) {
	s := summarizeFixture(t)
	tests := []struct {
		object, method string
		getter         string
	}{
		{"device", "get queue", "queue"},
		{"buffer", "get size", "size"},
		{"buffer", "get usage", "usage"},
		// Getters take no arguments.
		{"adapter", "get limits", ""},
		{"buffer", "get mapped range", ""},
		// Or return nothing.
		{"device", "destroy", ""},
	}
	for _, test := range tests {
		m := findMethod(t, s, test.object, test.method)
		if m.Getter != NewName(test.getter) {
			t.Errorf("%s.%s: expected getter %q; got %q", test.object, test.method, test.getter, m.Getter)
		}
	}
}

func TestSetters(t *testing.T) {
	s := summarizeFixture(t)
	tests := []struct {
		object, method string
		setter         string
	}{
		{"buffer", "set label", "label"},
		// Setters take exactly one argument.
		{"device", "set logging callback", ""},
		{"buffer", "unmap", ""},
	}
	for _, test := range tests {
		m := findMethod(t, s, test.object, test.method)
		if m.Setter != NewName(test.setter) {
			t.Errorf("%s.%s: expected setter %q; got %q", test.object, test.method, test.setter, m.Setter)
		}
		if m.IsSetter() != (test.setter != "") {
			t.Errorf("%s.%s: IsSetter() = %t", test.object, test.method, m.IsSetter())
		}
	}
}

func TestCallableOwnership(t *testing.T) {
	s := summarizeFixture(t)

	create := s.Function(NewName("create instance"))
	if create.IsMethod() || !create.ReturnsObject || create.Creates != NewName("instance") {
		t.Errorf("expected create instance to construct an instance; got %+v", create)
	}
	if create.SymbolName() != "wgpuCreateInstance" {
		t.Errorf("unexpected symbol %q", create.SymbolName())
	}

	createBuffer := findMethod(t, s, "device", "create buffer")
	if !createBuffer.ReturnsObject || !createBuffer.Creates.IsEmpty() {
		t.Errorf("expected create buffer to return an owned buffer; got %+v", createBuffer)
	}
	if createBuffer.SymbolName() != "wgpuDeviceCreateBuffer" {
		t.Errorf("unexpected symbol %q", createBuffer.SymbolName())
	}

	if proc := s.Function(NewName("get proc address")); proc.ReturnsObject {
		t.Error("function pointers are not owned objects")
	}
}

func hostArgNames(c Callable) []Name {
	var names []Name
	for _, arg := range c.HostArgs() {
		names = append(names, arg.Name)
	}
	return names
}

func TestHiddenArguments(t *testing.T) {
	s := summarizeFixture(t)

	logging := findMethod(t, s, "device", "set logging callback")
	expected := map[Name]Name{
		NewName("userdata1"): NewName("callback"),
		NewName("userdata2"): NewName("callback"),
	}
	if diff := cmp.Diff(expected, logging.Userdata, cmpOpt); diff != "" {
		t.Errorf("unexpected userdata (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Names("callback"), hostArgNames(logging), cmpOpt); diff != "" {
		t.Errorf("unexpected host args (-want +got):\n%s", diff)
	}

	submit := findMethod(t, s, "queue", "submit")
	if diff := cmp.Diff(Names("commands"), hostArgNames(submit), cmpOpt); diff != "" {
		t.Errorf("unexpected host args (-want +got):\n%s", diff)
	}

	write := findMethod(t, s, "queue", "write buffer")
	if diff := cmp.Diff(Names("buffer", "buffer offset", "data"), hostArgNames(write), cmpOpt); diff != "" {
		t.Errorf("unexpected host args (-want +got):\n%s", diff)
	}
}

func TestSummaryClassifications(t *testing.T) {
	s := summarizeFixture(t)
	if !s.IsWrapped(NewName("buffer descriptor")) || s.IsWrapped(NewName("extent 3D")) {
		t.Error("unexpected wrapped structures")
	}
	if !s.NeedsReverseInit(NewName("limits")) || s.NeedsReverseInit(NewName("buffer descriptor")) {
		t.Error("unexpected reverse-init structures")
	}
	if !s.Extensibility(NewName("shader source WGSL")).IsLink() {
		t.Error("expected shader source WGSL to be a link")
	}
	if !s.NeedsWrap(TypeUsage{Type: NewName("bool")}) {
		t.Error("expected bool to wrap")
	}
	if s.Pairing(NewName("shader source SPIRV")).Len() != 1 {
		t.Error("expected the SPIR-V code to be paired with its size")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected a usage absent from the schema to panic")
		}
	}()
	s.NeedsWrap(TypeUsage{Type: NewName("bool"), Annotation: AnnotationConstConst})
}

func TestSummaryConstants(t *testing.T) {
	s := summarizeFixture(t)
	if diff := cmp.Diff(DefaultValue{Kind: ValueLimit, Limit: LimitUint64Max}, s.Constant(NewName("whole size")), cmpOpt); diff != "" {
		t.Errorf("unexpected constant (-want +got):\n%s", diff)
	}

	literal := decode(t, `{
		"uint32_t": {"category": "native"},
		"array layer count undefined": {"category": "constant", "type": "uint32_t", "value": "0x10"},
		"max sample mask": {"category": "constant", "type": "uint32_t", "value": 255}
	}`)
	summary, err := Summarize(literal, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := summary.Constant(NewName("array layer count undefined")); got.Kind != ValueLiteral || got.Text != "0x10" {
		t.Errorf("unexpected constant %+v", got)
	}
	if got := summary.Constant(NewName("max sample mask")); got.Kind != ValueLiteral || got.Text != "255" {
		t.Errorf("unexpected constant %+v", got)
	}

	unknown := decode(t, `{
		"float": {"category": "native"},
		"pi": {"category": "constant", "type": "float", "value": "M_PI"}
	}`)
	if _, err := Summarize(unknown, Options{}); !errors.Is(err, ErrUnknownConstant) {
		t.Errorf("expected %v; got %v", ErrUnknownConstant, err)
	}
}

func TestSummarizeFailsOnUnknownReference(t *testing.T) {
	schema := decode(t, `{
		"device": {"category": "object", "methods": [
			{"name": "frobnicate", "args": [{"name": "widget", "type": "widget"}]}
		]}
	}`)
	_, err := Summarize(schema, Options{})
	if !errors.Is(err, ErrUnknownTypeReference) {
		t.Fatalf("expected %v; got %v", ErrUnknownTypeReference, err)
	}
	var ee *EntityError
	if !errors.As(err, &ee) || ee.Entity != NewName("device") {
		t.Errorf("expected the error to be attributed to device; got %v", err)
	}
}

func TestSummarizeExtraMultiUse(t *testing.T) {
	schema := decode(t, `{
		"tick callback": {"category": "callback function", "args": []}
	}`)
	s, err := Summarize(schema, Options{MultiUse: Names("tick callback")})
	if err != nil {
		t.Fatal(err)
	}
	if id := s.Callbacks.Identity(NewName("tick callback")); id != MultiUse {
		t.Errorf("expected tick callback to be multi-use; got %q", id)
	}
	// The defaults went unmatched.
	expected := Names("logging callback", "uncaptured error callback")
	if diff := cmp.Diff(expected, s.Callbacks.Unmatched(), cmpOpt); diff != "" {
		t.Errorf("unexpected unmatched names (-want +got):\n%s", diff)
	}
}
