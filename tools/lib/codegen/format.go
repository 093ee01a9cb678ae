// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package codegen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/tools/imports"
)

// Formatter formats generated source.
type Formatter interface {
	Format(source []byte) ([]byte, error)
}

// IdentityFormatter leaves source untouched.
type IdentityFormatter struct{}

func (IdentityFormatter) Format(source []byte) ([]byte, error) {
	return source, nil
}

// FormatConfig is the on-disk configuration of GoFormatter.
type FormatConfig struct {
	// TabWidth is the tab width used for alignment.
	TabWidth int `json:"tab_width" toml:"tab_width"`

	// TabIndent selects tabs over spaces for indentation. Defaults to true.
	TabIndent *bool `json:"tab_indent" toml:"tab_indent"`

	// Comments selects whether comments are kept. Defaults to true.
	Comments *bool `json:"comments" toml:"comments"`

	// FormatOnly disables the pruning of unused imports.
	FormatOnly bool `json:"format_only" toml:"format_only"`
}

// DefaultFormatConfig matches gofmt.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{TabWidth: 8}
}

// LoadFormatConfig reads a format configuration, as TOML when path ends in
// ".toml" and as JSON otherwise. Absent fields keep their defaults.
func LoadFormatConfig(path string) (FormatConfig, error) {
	cfg := DefaultFormatConfig()
	if filepath.Ext(path) == ".toml" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to decode format config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("format config %s: unknown key %q", path, undecoded[0].String())
		}
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read format config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode format config %s: %w", path, err)
		}
	}
	if cfg.TabWidth < 0 {
		return cfg, fmt.Errorf("format config %s: negative tab_width %d", path, cfg.TabWidth)
	}
	return cfg, nil
}

// Options gives the imports options that the configuration denotes.
func (cfg FormatConfig) Options() *imports.Options {
	opts := &imports.Options{
		TabWidth:   cfg.TabWidth,
		TabIndent:  true,
		Comments:   true,
		Fragment:   false,
		FormatOnly: cfg.FormatOnly,
	}
	if opts.TabWidth == 0 {
		opts.TabWidth = 8
	}
	if cfg.TabIndent != nil {
		opts.TabIndent = *cfg.TabIndent
	}
	if cfg.Comments != nil {
		opts.Comments = *cfg.Comments
	}
	return opts
}

// GoFormatter runs Go source through goimports: gofmt, plus the removal of
// unused imports.
type GoFormatter struct {
	opts *imports.Options
}

func NewGoFormatter(cfg FormatConfig) GoFormatter {
	return GoFormatter{opts: cfg.Options()}
}

func (f GoFormatter) Format(source []byte) ([]byte, error) {
	formatted, err := imports.Process("generated.go", source, f.opts)
	if err != nil {
		return nil, fmt.Errorf("%w\n--- source ---\n%s", err, numbered(source))
	}
	return formatted, nil
}

func numbered(source []byte) string {
	var b []byte
	line := 1
	b = fmt.Appendf(b, "%4d  ", line)
	for _, c := range source {
		b = append(b, c)
		if c == '\n' {
			line++
			b = fmt.Appendf(b, "%4d  ", line)
		}
	}
	return string(b)
}
