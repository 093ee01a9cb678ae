// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"go.webgpu.dev/dawn/tools/dawngen/backends/apinotes"
	"go.webgpu.dev/dawn/tools/lib/logger"
)

type generateAPINotesCmd struct {
	schema string
	output string
	module string
}

func init() {
	subcommandList = append(subcommandList,
		&generateAPINotesCmd{},
	)
}

func (*generateAPINotesCmd) Name() string { return "generate-api-notes" }

func (*generateAPINotesCmd) Synopsis() string {
	return "Generates a Clang API notes file for the C header."
}

func (*generateAPINotesCmd) Usage() string {
	return "dawngen generate-api-notes -schema <dawn.json> -output <file>\n"
}

func (cmd *generateAPINotesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schema, "schema", "", "Path to dawn.json.")
	f.StringVar(&cmd.output, "output", "", "Path of the API notes file to write.")
	f.StringVar(&cmd.module, "module", apinotes.DefaultModule, "Name of the Clang module the notes apply to.")
}

func (cmd *generateAPINotesCmd) parseFlags() error {
	if cmd.schema == "" {
		return fmt.Errorf("-schema is required")
	}
	if cmd.output == "" {
		return fmt.Errorf("-output is required")
	}
	return nil
}

func (cmd *generateAPINotesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(ctx); err != nil {
		logger.Errorf(ctx, "%s", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *generateAPINotesCmd) execute(ctx context.Context) error {
	if err := cmd.parseFlags(); err != nil {
		return err
	}
	summary, err := summarize(ctx, cmd.schema, nil)
	if err != nil {
		return err
	}
	if err := apinotes.Generate(ctx, summary, cmd.module, cmd.output); err != nil {
		return err
	}
	logger.Infof(ctx, "wrote %s", cmd.output)
	return nil
}
