// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osmisc holds small filesystem helpers.
package osmisc

import (
	"errors"
	"fmt"
	"os"
)

// IsDir determines whether a given path exists *and* is a directory. It will
// return false (with no error) if the path does not exist.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// DirIsEmpty returns whether a given directory is empty.
// By convention, we say that a directory is empty if it does not exist.
func DirIsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// EnsureDir creates the directory and its parents if needed. It fails if the
// path exists as something other than a directory.
func EnsureDir(dir string) error {
	isDir, err := IsDir(dir)
	if err != nil {
		return err
	}
	if isDir {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%s exists and is not a directory", dir)
	}
	return os.MkdirAll(dir, 0o755)
}
