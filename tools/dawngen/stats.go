// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"fmt"
	"io"
)

// Stats counts where structures are passed across the API, which is where
// the bindings spend their marshaling effort.
type Stats struct {
	// Functions lists the free functions taking a structure argument.
	Functions []Name
	// Methods lists, per object, the methods taking a structure argument.
	Methods []ObjectMethods
	// Members lists the structure members whose type is a structure.
	Members []StructMember
}

type ObjectMethods struct {
	Object  Name
	Methods []Name
}

type StructMember struct {
	Structure Name
	Member    Name
	Type      Name
}

// ComputeStats gathers the statistics of the summarized entities, in name
// order.
func ComputeStats(s *Summary) Stats {
	isStructure := func(name Name) bool {
		e, ok := s.Lookup(name)
		if !ok {
			return false
		}
		_, ok = e.(*Structure)
		return ok
	}
	anyStructure := func(records []Record) bool {
		for _, r := range records {
			if isStructure(r.Type) {
				return true
			}
		}
		return false
	}

	var stats Stats
	for _, d := range s.Decls() {
		switch e := d.Entity.(type) {
		case *Function:
			if anyStructure(e.Args) {
				stats.Functions = append(stats.Functions, d.Name)
			}
		case *Object:
			om := ObjectMethods{Object: d.Name}
			for _, m := range e.Methods {
				if anyStructure(m.Args) {
					om.Methods = append(om.Methods, m.Name)
				}
			}
			if len(om.Methods) > 0 {
				stats.Methods = append(stats.Methods, om)
			}
		case *Structure:
			for _, m := range e.Members {
				if isStructure(m.Type) {
					stats.Members = append(stats.Members, StructMember{Structure: d.Name, Member: m.Name, Type: m.Type})
				}
			}
		}
	}
	return stats
}

// MethodCount gives the number of methods taking a structure argument.
func (s Stats) MethodCount() int {
	n := 0
	for _, om := range s.Methods {
		n += len(om.Methods)
	}
	return n
}

// Write prints a human-readable report.
func (s Stats) Write(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Functions with structure arguments: %d\n", len(s.Functions))
	for _, f := range s.Functions {
		ew.printf("  %s\n", f.CamelCase())
	}
	ew.printf("Objects with methods taking structure arguments:\n")
	for _, om := range s.Methods {
		ew.printf("  %s\n", om.Object.UpperCamelCase())
		for _, m := range om.Methods {
			ew.printf("    %s\n", m.CamelCase())
		}
	}
	ew.printf("Total object methods taking structure arguments: %d\n", s.MethodCount())
	ew.printf("Structures with structure members:\n")
	for _, m := range s.Members {
		ew.printf("  %s has member %s of type %s\n", m.Structure.CamelCase(), m.Member.CamelCase(), m.Type.CamelCase())
	}
	ew.printf("Total structure members of structure type: %d\n", len(s.Members))
	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}
