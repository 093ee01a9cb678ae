// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package osmisc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		path string
		want bool
	}{
		{dir, true},
		{file, false},
		{filepath.Join(dir, "missing"), false},
	} {
		got, err := IsDir(tc.path)
		if err != nil {
			t.Fatalf("IsDir(%s): %s", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("IsDir(%s) = %t, want %t", tc.path, got, tc.want)
		}
	}
}

func TestDirIsEmpty(t *testing.T) {
	dir := t.TempDir()
	if empty, err := DirIsEmpty(filepath.Join(dir, "missing")); err != nil || !empty {
		t.Errorf("DirIsEmpty(missing) = %t, %v; want true, nil", empty, err)
	}
	if empty, err := DirIsEmpty(dir); err != nil || !empty {
		t.Errorf("DirIsEmpty(empty) = %t, %v; want true, nil", empty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "file"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if empty, err := DirIsEmpty(dir); err != nil || empty {
		t.Errorf("DirIsEmpty(non-empty) = %t, %v; want false, nil", empty, err)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	if isDir, _ := IsDir(dir); !isDir {
		t.Errorf("%s was not created", dir)
	}
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on an existing directory: %s", err)
	}
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(file); err == nil {
		t.Errorf("EnsureDir on a file succeeded")
	}
}
