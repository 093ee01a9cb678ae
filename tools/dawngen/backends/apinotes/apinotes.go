// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package apinotes emits a Clang API notes file for the raw C API, so that
// importers of the header see objects as reference types, bitmasks as option
// sets and getters as properties.
package apinotes

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"go.webgpu.dev/dawn/tools/dawngen"
	"go.webgpu.dev/dawn/tools/lib/codegen"
	"go.webgpu.dev/dawn/tools/lib/logger"
	"go.webgpu.dev/dawn/tools/lib/osmisc"
)

// DefaultModule is the Clang module that the notes apply to.
const DefaultModule = "DawnC"

// Category is a top-level section of an API notes file.
type Category string

const (
	CategoryEnumerators Category = "Enumerators"
	CategoryFunctions   Category = "Functions"
	CategoryGlobals     Category = "Globals"
	CategoryTags        Category = "Tags"
	CategoryTypedefs    Category = "Typedefs"
)

// Note annotates one C declaration.
type Note struct {
	Category Category
	// Name is the C name of the declaration.
	Name   string
	Values map[string]string
}

// Notes derives the notes of every summarized entity. Notes are sorted by
// category and then by name.
func Notes(summary *dawngen.Summary) []Note {
	var notes []Note
	for _, decl := range summary.Decls() {
		switch e := decl.Entity.(type) {
		case *dawngen.Enum:
			notes = append(notes, enumNotes(decl.Name, e)...)
		case *dawngen.Bitmask:
			notes = append(notes, bitmaskNotes(decl.Name, e)...)
		case *dawngen.Object:
			notes = append(notes, objectNotes(decl.Name, summary.Methods(decl.Name))...)
		case *dawngen.Function:
			if n, ok := functionNote(summary.Function(decl.Name)); ok {
				notes = append(notes, n)
			}
		}
	}
	slices.SortStableFunc(notes, func(a, b Note) int {
		if c := strings.Compare(string(a.Category), string(b.Category)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return notes
}

func cName(name dawngen.Name) string {
	return "WGPU" + name.UpperCamelCase()
}

func enumNotes(name dawngen.Name, e *dawngen.Enum) []Note {
	notes := []Note{{
		Category: CategoryTags,
		Name:     cName(name),
		Values:   map[string]string{"EnumExtensibility": "closed"},
	}}
	for _, v := range e.Values {
		notes = append(notes, Note{
			Category: CategoryEnumerators,
			Name:     cName(name) + "_" + v.Name.UpperCamelCase(),
			Values:   map[string]string{"SwiftName": v.Name.Identifier()},
		})
	}
	return notes
}

func bitmaskNotes(name dawngen.Name, b *dawngen.Bitmask) []Note {
	typedef := cName(name)
	notes := []Note{{
		Category: CategoryTypedefs,
		Name:     typedef,
		Values: map[string]string{
			"SwiftWrapper":    "struct",
			"SwiftConformsTo": "Swift.OptionSet",
		},
	}}
	for _, v := range b.Values {
		notes = append(notes, Note{
			Category: CategoryGlobals,
			Name:     typedef + "_" + v.Name.UpperCamelCase(),
			Values:   map[string]string{"SwiftName": typedef + "." + v.Name.CamelCase()},
		})
	}
	return notes
}

func objectNotes(name dawngen.Name, methods []dawngen.Callable) []Note {
	impl := cName(name) + "Impl"
	addRef := "wgpu" + name.UpperCamelCase() + "AddRef"
	release := "wgpu" + name.UpperCamelCase() + "Release"
	notes := []Note{
		{
			Category: CategoryTags,
			Name:     impl,
			Values: map[string]string{
				"SwiftImportAs":  "reference",
				"SwiftReleaseOp": release,
				"SwiftRetainOp":  addRef,
			},
		},
		{
			Category: CategoryFunctions,
			Name:     addRef,
			Values:   map[string]string{"SwiftName": impl + ".addRef(self:)"},
		},
		{
			Category: CategoryFunctions,
			Name:     release,
			Values:   map[string]string{"SwiftName": impl + ".release(self:)"},
		},
	}
	for _, m := range methods {
		note := Note{Category: CategoryFunctions, Name: m.SymbolName()}
		switch {
		case m.IsGetter():
			note.Values = map[string]string{
				"SwiftName": fmt.Sprintf("getter:%s.%s(self:)", impl, m.Getter.CamelCase()),
			}
		case m.IsSetter():
			note.Values = map[string]string{
				"SwiftName": fmt.Sprintf("setter:%s.%s(self:%s)", impl, m.Setter.CamelCase(), labels(m.Args)),
			}
		default:
			note.Values = map[string]string{
				"SwiftName": fmt.Sprintf("%s.%s(self:%s)", impl, m.Name.CamelCase(), labels(m.Args)),
			}
			if m.ReturnsObject {
				note.Values["SwiftReturnOwnership"] = "retained"
			}
		}
		notes = append(notes, note)
	}
	return notes
}

// functionNote turns "create X" into an initializer of X. Other free
// functions are imported as they are.
func functionNote(f dawngen.Callable) (Note, bool) {
	if f.Creates.IsEmpty() {
		return Note{}, false
	}
	return Note{
		Category: CategoryFunctions,
		Name:     f.SymbolName(),
		Values: map[string]string{
			"SwiftName":            fmt.Sprintf("%sImpl.init(%s)", cName(f.Creates), labels(f.Args)),
			"SwiftReturnOwnership": "retained",
		},
	}, true
}

// labels gives the argument labels of a Swift name, e.g. "a:b:".
func labels(args []dawngen.Record) string {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg.Name.CamelCase())
		b.WriteString(":")
	}
	return b.String()
}

// Marshal renders notes as an API notes document for the given module.
func Marshal(module string, notes []Note) ([]byte, error) {
	byCategory := make(map[Category][]yaml.MapSlice)
	for _, n := range notes {
		item := yaml.MapSlice{{Key: "Name", Value: n.Name}}
		keys := maps.Keys(n.Values)
		slices.Sort(keys)
		for _, k := range keys {
			item = append(item, yaml.MapItem{Key: k, Value: n.Values[k]})
		}
		byCategory[n.Category] = append(byCategory[n.Category], item)
	}

	doc := yaml.MapSlice{{Key: "Name", Value: module}}
	categories := maps.Keys(byCategory)
	slices.Sort(categories)
	for _, c := range categories {
		doc = append(doc, yaml.MapItem{Key: string(c), Value: byCategory[c]})
	}
	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Generate writes the notes of the summary to output, leaving the file
// untouched when its contents would not change.
func Generate(ctx context.Context, summary *dawngen.Summary, module, output string) error {
	notes := Notes(summary)
	b, err := Marshal(module, notes)
	if err != nil {
		return err
	}
	if err := osmisc.EnsureDir(filepath.Dir(output)); err != nil {
		return err
	}
	logger.Debugf(ctx, "writing %d notes to %s", len(notes), output)
	return codegen.WriteFileIfChanged(output, b)
}
