// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"go.webgpu.dev/dawn/tools/dawngen"
	"go.webgpu.dev/dawn/tools/lib/logger"
)

type schemaStatsCmd struct {
	schema string
	out    io.Writer
}

func init() {
	subcommandList = append(subcommandList,
		&schemaStatsCmd{},
	)
}

func (*schemaStatsCmd) Name() string { return "schema-stats" }

func (*schemaStatsCmd) Synopsis() string {
	return "Prints where structures are passed across the API."
}

func (*schemaStatsCmd) Usage() string {
	return "dawngen schema-stats -schema <dawn.json>\n"
}

func (cmd *schemaStatsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.schema, "schema", "", "Path to dawn.json.")
}

func (cmd *schemaStatsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := cmd.execute(ctx); err != nil {
		logger.Errorf(ctx, "%s", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (cmd *schemaStatsCmd) execute(ctx context.Context) error {
	if cmd.schema == "" {
		return fmt.Errorf("-schema is required")
	}
	summary, err := summarize(ctx, cmd.schema, nil)
	if err != nil {
		return err
	}
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	return dawngen.ComputeStats(summary).Write(out)
}
