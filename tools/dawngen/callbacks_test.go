// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCallbackIdentities(t *testing.T) {
	r, err := NewCallbackRegistry(loadFixture(t), DefaultMultiUseCallbacks)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[string]CallbackIdentity{
		"buffer map callback":            SingleUse,
		"buffer map callback info":       SingleUse,
		"logging callback":               MultiUse,
		"request adapter callback":       SingleUse,
		"request adapter callback info":  SingleUse,
		"uncaptured error callback":      MultiUse,
		"uncaptured error callback info": MultiUse,
	}
	got := make(map[string]CallbackIdentity)
	for _, name := range r.Names() {
		got[name.String()] = r.Identity(name)
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("unexpected identities (-want +got):\n%s", diff)
	}
	if unmatched := r.Unmatched(); len(unmatched) != 0 {
		t.Errorf("expected every curated name to match; got %v", unmatched)
	}
	if _, ok := r.Lookup(NewName("device")); ok {
		t.Error("objects should have no callback identity")
	}
}

func TestCallbackUseInSchemaWins(t *testing.T) {
	s := decode(t, `{
		"logging callback": {"category": "callback function", "args": [], "callback use": "single"},
		"tick callback": {"category": "callback function", "args": [], "callback_use": "multi"}
	}`)
	r, err := NewCallbackRegistry(s, Names("logging callback", "stale callback", "another stale callback"))
	if err != nil {
		t.Fatal(err)
	}
	if id := r.Identity(NewName("logging callback")); id != SingleUse {
		t.Errorf("expected the schema's own use to win; got %q", id)
	}
	if id := r.Identity(NewName("tick callback")); id != MultiUse {
		t.Errorf("expected tick callback to be multi-use; got %q", id)
	}
	if diff := cmp.Diff(Names("another stale callback", "stale callback"), r.Unmatched(), cmpOpt); diff != "" {
		t.Errorf("unexpected unmatched names (-want +got):\n%s", diff)
	}
}

func TestCallbackInfoErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{
			name: "no callback member",
			src: `{
				"mode": {"category": "enum", "values": []},
				"info": {"category": "callback info", "members": [{"name": "mode", "type": "mode"}]}
			}`,
			err: ErrMissingRequiredField,
		},
		{
			name: "callback member is not a callback",
			src: `{
				"mode": {"category": "enum", "values": []},
				"info": {"category": "callback info", "members": [{"name": "callback", "type": "mode"}]}
			}`,
			err: ErrUnknownTypeReference,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewCallbackRegistry(decode(t, test.src), nil)
			if !errors.Is(err, test.err) {
				t.Fatalf("expected %v; got %v", test.err, err)
			}
			var ee *EntityError
			if !errors.As(err, &ee) || ee.Entity != NewName("info") {
				t.Errorf("expected the error to be attributed to info; got %v", err)
			}
		})
	}
}

func TestCallbackIdentityRejectsUnknownUse(t *testing.T) {
	var id CallbackIdentity
	if err := id.UnmarshalJSON([]byte(`"sometimes"`)); err == nil {
		t.Error("expected an unknown callback use to fail")
	}
}
