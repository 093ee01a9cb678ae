// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package color

import (
	"testing"
)

func TestEnableColorFlag(t *testing.T) {
	for _, s := range []string{"never", "auto", "always"} {
		var ec EnableColor
		if err := ec.Set(s); err != nil {
			t.Fatalf("Set(%q): %s", s, err)
		}
		if got := ec.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
	var ec EnableColor
	if err := ec.Set("sometimes"); err == nil {
		t.Errorf("Set(%q) succeeded", "sometimes")
	}
}

func TestNewColor(t *testing.T) {
	if c := NewColor(ColorNever); c.Enabled() {
		t.Errorf("ColorNever gave an enabled Color")
	}
	if got := NewColor(ColorNever).Red("%d", 1); got != "1" {
		t.Errorf("monochrome Red = %q, want %q", got, "1")
	}
	if got, want := NewColor(ColorAlways).Red("%d", 1), "\033[31m1\033[0m"; got != want {
		t.Errorf("Red = %q, want %q", got, want)
	}
	if got := NewColor(ColorAlways).DefaultColor("x"); got != "x" {
		t.Errorf("DefaultColor = %q, want %q", got, "x")
	}
}
