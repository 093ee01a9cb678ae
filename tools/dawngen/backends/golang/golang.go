// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package golang generates cgo bindings from a summarized schema: one file
// per category of declaration, all in a single package.
package golang

import (
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"go.webgpu.dev/dawn/tools/dawngen"
	"go.webgpu.dev/dawn/tools/lib/codegen"
	"go.webgpu.dev/dawn/tools/lib/logger"
	"go.webgpu.dev/dawn/tools/lib/osmisc"
)

//go:embed templates/*
var templates embed.FS

// Options configures the generated package.
type Options struct {
	// Package is the name of the generated package.
	Package string
	// Header is the C header declaring the raw API, as included by the cgo
	// preamble.
	Header string
	// RuntimeImport is the import path of the dawnrt runtime.
	RuntimeImport string
}

// DefaultOptions targets the upstream header layout.
func DefaultOptions() Options {
	return Options{
		Package:       "wgpu",
		Header:        "webgpu/webgpu.h",
		RuntimeImport: "go.webgpu.dev/dawn/src/lib/dawnrt",
	}
}

// Generator provides cgo bindings.
type Generator struct {
	codegen.Generator
	opts Options
}

func NewGenerator(formatter codegen.Formatter, opts Options) *Generator {
	gen := codegen.NewGenerator("GoTemplates", templates, formatter, template.FuncMap{
		"Params": Params,
	})
	return &Generator{*gen, opts}
}

// Output is a generated file, not yet written.
type Output struct {
	Filename string
	Contents []byte
}

// Render generates every file in memory. Files are rendered concurrently but
// come back in bucket order.
func (gen *Generator) Render(ctx context.Context, summary *dawngen.Summary) ([]Output, error) {
	files, err := build(summary, gen.opts)
	if err != nil {
		return nil, err
	}

	outputs := make([]Output, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := gen.ExecuteTemplate("GenerateGoFile", f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Filename(), err)
			}
			logger.Debugf(ctx, "rendered %s (%d bytes)", f.Filename(), len(b))
			outputs[i] = Output{Filename: f.Filename(), Contents: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Generate renders every file and writes them to outputDir. Nothing is
// written unless every file renders.
func (gen *Generator) Generate(ctx context.Context, summary *dawngen.Summary, outputDir string) ([]string, error) {
	outputs, err := gen.Render(ctx, summary)
	if err != nil {
		return nil, err
	}
	if err := osmisc.EnsureDir(outputDir); err != nil {
		return nil, err
	}
	var written []string
	for _, o := range outputs {
		path := filepath.Join(outputDir, o.Filename)
		if err := codegen.WriteFileIfChanged(path, o.Contents); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

//
// Template functions.
//

// Params renders a parameter list.
func Params(params []Param) string {
	var parts []string
	for _, p := range params {
		parts = append(parts, p.Name+" "+p.Type)
	}
	return strings.Join(parts, ", ")
}
