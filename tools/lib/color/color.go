// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package color wraps text in ANSI color escapes when the terminal allows it.
package color

import (
	"fmt"
	"os"
)

// ColorCode is an ANSI foreground color.
type ColorCode int

const (
	escape       = "\033["
	reset        = escape + "0m"
	DefaultColor ColorCode = 0
	BlackColor   ColorCode = 30
	RedColor     ColorCode = 31
	GreenColor   ColorCode = 32
	YellowColor  ColorCode = 33
	BlueColor    ColorCode = 34
	MagentaColor ColorCode = 35
	CyanColor    ColorCode = 36
	WhiteColor   ColorCode = 37
)

// Colorfn formats its arguments in a fixed color.
type Colorfn func(format string, a ...any) string

// Color formats text in the various colors. Implementations either add
// escapes or pass text through unchanged.
type Color interface {
	Black(format string, a ...any) string
	Red(format string, a ...any) string
	Green(format string, a ...any) string
	Yellow(format string, a ...any) string
	Blue(format string, a ...any) string
	Magenta(format string, a ...any) string
	Cyan(format string, a ...any) string
	White(format string, a ...any) string
	DefaultColor(format string, a ...any) string
	WithColor(code ColorCode, format string, a ...any) string
	Enabled() bool
}

type color struct{}

func (color) Black(format string, a ...any) string   { return colorString(BlackColor, format, a...) }
func (color) Red(format string, a ...any) string     { return colorString(RedColor, format, a...) }
func (color) Green(format string, a ...any) string   { return colorString(GreenColor, format, a...) }
func (color) Yellow(format string, a ...any) string  { return colorString(YellowColor, format, a...) }
func (color) Blue(format string, a ...any) string    { return colorString(BlueColor, format, a...) }
func (color) Magenta(format string, a ...any) string { return colorString(MagentaColor, format, a...) }
func (color) Cyan(format string, a ...any) string    { return colorString(CyanColor, format, a...) }
func (color) White(format string, a ...any) string   { return colorString(WhiteColor, format, a...) }
func (color) DefaultColor(format string, a ...any) string {
	return colorString(DefaultColor, format, a...)
}
func (color) WithColor(code ColorCode, format string, a ...any) string {
	return colorString(code, format, a...)
}
func (color) Enabled() bool { return true }

func colorString(c ColorCode, format string, a ...any) string {
	if c == DefaultColor {
		return fmt.Sprintf(format, a...)
	}
	return fmt.Sprintf("%s%dm%s%s", escape, c, fmt.Sprintf(format, a...), reset)
}

type monochrome struct{}

func (monochrome) Black(format string, a ...any) string   { return fmt.Sprintf(format, a...) }
func (monochrome) Red(format string, a ...any) string     { return fmt.Sprintf(format, a...) }
func (monochrome) Green(format string, a ...any) string   { return fmt.Sprintf(format, a...) }
func (monochrome) Yellow(format string, a ...any) string  { return fmt.Sprintf(format, a...) }
func (monochrome) Blue(format string, a ...any) string    { return fmt.Sprintf(format, a...) }
func (monochrome) Magenta(format string, a ...any) string { return fmt.Sprintf(format, a...) }
func (monochrome) Cyan(format string, a ...any) string    { return fmt.Sprintf(format, a...) }
func (monochrome) White(format string, a ...any) string   { return fmt.Sprintf(format, a...) }
func (monochrome) DefaultColor(format string, a ...any) string {
	return fmt.Sprintf(format, a...)
}
func (monochrome) WithColor(_ ColorCode, format string, a ...any) string {
	return fmt.Sprintf(format, a...)
}
func (monochrome) Enabled() bool { return false }

// EnableColor is a flag value selecting when to use color.
type EnableColor int

const (
	ColorNever EnableColor = iota
	ColorAuto
	ColorAlways
)

func (ec *EnableColor) String() string {
	switch *ec {
	case ColorNever:
		return "never"
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	}
	return ""
}

func (ec *EnableColor) Set(s string) error {
	switch s {
	case "never":
		*ec = ColorNever
	case "auto":
		*ec = ColorAuto
	case "always":
		*ec = ColorAlways
	default:
		return fmt.Errorf("%s is not a valid color value", s)
	}
	return nil
}

// NewColor returns a Color for the given setting. Under ColorAuto, color is
// used only when stdout is a terminal.
func NewColor(ec EnableColor) Color {
	enabled := false
	switch ec {
	case ColorAlways:
		enabled = true
	case ColorAuto:
		enabled = isTerminal(os.Stdout)
	}
	if enabled {
		return color{}
	}
	return monochrome{}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
