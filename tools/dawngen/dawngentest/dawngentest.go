// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dawngentest loads and summarizes schemas for the tests of the
// dawngen backends and tools.
package dawngentest

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.webgpu.dev/dawn/tools/dawngen"
)

// EndToEndTest summarizes schemas, failing T on any error.
type EndToEndTest struct {
	*testing.T
	opts dawngen.Options
}

// WithMultiUse adds callback functions to those known to be multi-use.
func (e EndToEndTest) WithMultiUse(names ...string) EndToEndTest {
	e.opts.MultiUse = append(e.opts.MultiUse, dawngen.Names(names...)...)
	return e
}

// Single summarizes an inline schema.
func (e EndToEndTest) Single(src string) *dawngen.Summary {
	e.Helper()
	schema, err := dawngen.DecodeSchema(context.Background(), strings.NewReader(src))
	if err != nil {
		e.Fatal(err)
	}
	return e.summarize(schema)
}

// Fixture summarizes the schema under tools/dawngen/testdata, which
// exercises every category.
func (e EndToEndTest) Fixture() *dawngen.Summary {
	e.Helper()
	schema, err := dawngen.LoadSchema(context.Background(), FixturePath())
	if err != nil {
		e.Fatal(err)
	}
	return e.summarize(schema)
}

func (e EndToEndTest) summarize(schema *dawngen.Schema) *dawngen.Summary {
	e.Helper()
	summary, err := dawngen.Summarize(schema, e.opts)
	if err != nil {
		e.Fatal(err)
	}
	return summary
}

// FixturePath gives the location of the shared schema.
func FixturePath() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("no caller information")
	}
	return filepath.Join(filepath.Dir(file), "..", "testdata", "dawn.json")
}
