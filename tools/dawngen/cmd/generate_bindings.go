// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"go.webgpu.dev/dawn/tools/dawngen"
	"go.webgpu.dev/dawn/tools/dawngen/backends/golang"
	"go.webgpu.dev/dawn/tools/lib/codegen"
	"go.webgpu.dev/dawn/tools/lib/logger"
)

type generateBindingsCmd struct {
	schema       string
	outputDir    string
	formatConfig string
	multiUse     string
	opts         golang.Options
}

func init() {
	subcommandList = append(subcommandList,
		&generateBindingsCmd{},
	)
}

func (*generateBindingsCmd) Name() string { return "generate-bindings" }

func (*generateBindingsCmd) Synopsis() string {
	return "Generates cgo bindings from a dawn.json schema."
}

func (*generateBindingsCmd) Usage() string {
	return "dawngen generate-bindings -schema <dawn.json> -output-dir <dir> [-format-config <path>] [-multi-use name,...]\n"
}

func (cmd *generateBindingsCmd) SetFlags(f *flag.FlagSet) {
	defaults := golang.DefaultOptions()
	f.StringVar(&cmd.schema, "schema", "", "Path to dawn.json.")
	f.StringVar(&cmd.outputDir, "output-dir", "", "Directory to write the generated files to.")
	f.StringVar(&cmd.formatConfig, "format-config", "", "Optional configuration of the Go formatter, as JSON or as TOML when the path ends in .toml.")
	f.StringVar(&cmd.multiUse, "multi-use", "", "Comma separated callback functions that may be invoked more than once, in addition to the built-in ones.")
	f.StringVar(&cmd.opts.Package, "package", defaults.Package, "Name of the generated package.")
	f.StringVar(&cmd.opts.Header, "header", defaults.Header, "C header included by the cgo preamble.")
	f.StringVar(&cmd.opts.RuntimeImport, "runtime-import", defaults.RuntimeImport, "Import path of the dawnrt runtime.")
}

func (cmd *generateBindingsCmd) parseFlags() error {
	if cmd.schema == "" {
		return fmt.Errorf("-schema is required")
	}
	if cmd.outputDir == "" {
		return fmt.Errorf("-output-dir is required")
	}
	if cmd.opts.Package == "" {
		return fmt.Errorf("-package must not be empty")
	}
	return nil
}

func (cmd *generateBindingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(ctx); err != nil {
		logger.Errorf(ctx, "%s", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *generateBindingsCmd) execute(ctx context.Context) error {
	if err := cmd.parseFlags(); err != nil {
		return err
	}
	summary, err := summarize(ctx, cmd.schema, parseNames(cmd.multiUse))
	if err != nil {
		return err
	}

	cfg := codegen.DefaultFormatConfig()
	if cmd.formatConfig != "" {
		if cfg, err = codegen.LoadFormatConfig(cmd.formatConfig); err != nil {
			return err
		}
	}
	gen := golang.NewGenerator(codegen.NewGoFormatter(cfg), cmd.opts)
	written, err := gen.Generate(ctx, summary, cmd.outputDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Debugf(ctx, "wrote %s", path)
	}
	logger.Infof(ctx, "generated %d files in %s", len(written), cmd.outputDir)
	return nil
}

// summarize loads and summarizes a schema, warning about multi-use names
// that match no callback function.
func summarize(ctx context.Context, path string, multiUse []dawngen.Name) (*dawngen.Summary, error) {
	schema, err := dawngen.LoadSchema(ctx, path)
	if err != nil {
		return nil, err
	}
	summary, err := dawngen.Summarize(schema, dawngen.Options{MultiUse: multiUse})
	if err != nil {
		return nil, err
	}
	for _, name := range summary.Callbacks.Unmatched() {
		logger.Warningf(ctx, "multi-use callback %q matches no callback function", name)
	}
	return summary, nil
}

// parseNames splits a comma separated list of names, dropping empty entries.
func parseNames(list string) []dawngen.Name {
	var names []dawngen.Name
	for _, raw := range strings.Split(list, ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			names = append(names, dawngen.NewName(raw))
		}
	}
	return names
}
