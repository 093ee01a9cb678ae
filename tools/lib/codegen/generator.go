// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package codegen holds the template and file plumbing shared by the
// generator backends.
package codegen

import (
	"bytes"
	"fmt"
	"io/fs"
	"text/template"
)

// Generator executes a set of named templates and formats their output.
type Generator struct {
	tmpls     *template.Template
	formatter Formatter
}

// NewGenerator parses every template in the given file system. Templates
// are expected to give themselves names with {{define}}.
func NewGenerator(name string, templates fs.FS, formatter Formatter, funcs template.FuncMap) *Generator {
	tmpls := template.New(name).Funcs(funcs)
	tmpls = template.Must(tmpls.ParseFS(templates, "templates/*"))
	if formatter == nil {
		formatter = IdentityFormatter{}
	}
	return &Generator{tmpls: tmpls, formatter: formatter}
}

// ExecuteTemplate executes the named template over data and formats the
// result.
func (gen *Generator) ExecuteTemplate(tmpl string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gen.tmpls.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return nil, fmt.Errorf("failed to execute %s: %w", tmpl, err)
	}
	formatted, err := gen.formatter.Format(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format %s: %w", tmpl, err)
	}
	return formatted, nil
}

// GenerateFile executes the named template and writes the formatted result
// to filename, leaving the file alone if its contents would not change.
func (gen *Generator) GenerateFile(filename, tmpl string, data any) error {
	b, err := gen.ExecuteTemplate(tmpl, data)
	if err != nil {
		return err
	}
	return WriteFileIfChanged(filename, b)
}
