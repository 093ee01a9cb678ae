// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"text/template"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testTemplates = fstest.MapFS{
	"templates/file.tmpl": {Data: []byte(`
{{- define "GenerateFile" -}}
package {{ .Package }}

import "fmt"

{{ range .Names }}
const {{ Upper . }} = {{ printf "%q" . }}
{{ end }}
{{- end }}
`)},
}

type testData struct {
	Package string
	Names   []string
}

func newTestGenerator(f Formatter) *Generator {
	return NewGenerator("TestTemplates", testTemplates, f, template.FuncMap{
		"Upper": strings.ToUpper,
	})
}

func TestExecuteTemplateFormats(t *testing.T) {
	gen := newTestGenerator(NewGoFormatter(DefaultFormatConfig()))
	got, err := gen.ExecuteTemplate("GenerateFile", testData{Package: "p", Names: []string{"a", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	// The unused import is pruned and the blank lines collapse.
	want := `package p

const A = "a"

const B = "b"
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestExecuteTemplateReportsFormatErrors(t *testing.T) {
	gen := newTestGenerator(NewGoFormatter(DefaultFormatConfig()))
	// An empty package clause does not parse.
	if _, err := gen.ExecuteTemplate("GenerateFile", testData{}); err == nil {
		t.Errorf("expected a format error")
	}
}

func TestFormatOnlyKeepsImports(t *testing.T) {
	cfg := DefaultFormatConfig()
	cfg.FormatOnly = true
	gen := newTestGenerator(NewGoFormatter(cfg))
	got, err := gen.ExecuteTemplate("GenerateFile", testData{Package: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `import "fmt"`) {
		t.Errorf("import pruned under format_only:\n%s", got)
	}
}

func TestLoadFormatConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format.json")
	if err := os.WriteFile(path, []byte(`{"tab_width": 4, "comments": false}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFormatConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.Options()
	if opts.TabWidth != 4 || opts.Comments || !opts.TabIndent || opts.FormatOnly {
		t.Errorf("unexpected options: %+v", opts)
	}

	if err := os.WriteFile(path, []byte(`{"tab_width": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFormatConfig(path); err == nil {
		t.Errorf("expected an error for a negative tab width")
	}
	if _, err := LoadFormatConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestLoadFormatConfigTOML(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name        string
		contents    string
		expected    FormatConfig
		expectedErr string
	}{
		{
			name:     "fields",
			contents: "tab_width = 2\ntab_indent = false\nformat_only = true\n",
			expected: FormatConfig{TabWidth: 2, TabIndent: new(bool), FormatOnly: true},
		},
		{
			name:     "empty keeps defaults",
			expected: DefaultFormatConfig(),
		},
		{
			name:        "unknown key",
			contents:    "tab_size = 2\n",
			expectedErr: `unknown key "tab_size"`,
		},
		{
			name:        "negative tab width",
			contents:    "tab_width = -3\n",
			expectedErr: "negative tab_width -3",
		},
		{
			name:        "malformed",
			contents:    "tab_width = \n",
			expectedErr: "failed to decode format config",
		},
	}
	for i, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("format%d.toml", i))
			if err := os.WriteFile(path, []byte(test.contents), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFormatConfig(path)
			if test.expectedErr != "" {
				if err == nil || !strings.Contains(err.Error(), test.expectedErr) {
					t.Fatalf("expected an error containing %q; got %v", test.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.expected, cfg); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.go")
	if err := WriteFileIfChanged(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileIfChanged(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("unchanged file was rewritten")
	}

	if err := WriteFileIfChanged(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Errorf("got contents %q, want %q", b, "two")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}
