// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"go.webgpu.dev/dawn/tools/lib/color"
	"go.webgpu.dev/dawn/tools/lib/logger"
)

var (
	colors         color.EnableColor
	level          logger.LogLevel
	subcommandList []subcommands.Command
)

func init() {
	colors = color.ColorAuto
	level = logger.InfoLevel

	flag.Var(&colors, "color", "use color in output, can be never, auto, always")
	flag.Var(&level, "level", "output verbosity, can be fatal, error, warning, info, debug or trace")

	subcommandList = append(subcommandList,
		subcommands.HelpCommand(),
		subcommands.FlagsCommand(),
	)
}

func main() {
	for _, cmd := range subcommandList {
		subcommands.Register(cmd, "")
	}

	flag.Parse()
	log := logger.NewLogger(level, color.NewColor(colors), os.Stdout, os.Stderr, "dawngen ")
	ctx := logger.WithLogger(context.Background(), log)
	os.Exit(int(subcommands.Execute(ctx)))
}
