// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"fmt"
)

// Count types that may hold the length of a sibling array.
var countTypes = map[Name]struct{}{
	NewName("size_t"):   {},
	NewName("uint32_t"): {},
	NewName("uint64_t"): {},
}

// Pairing relates the arrays of a member or argument list to the sibling
// records holding their element counts. Count siblings never appear on a
// host surface; their values are derived from the array's length.
type Pairing struct {
	countOf map[Name]Name
	arrayOf map[Name]Name
}

// PairArrays pairs every named-length record with its count sibling.
func PairArrays(records []Record) (Pairing, error) {
	p := Pairing{
		countOf: make(map[Name]Name),
		arrayOf: make(map[Name]Name),
	}
	for _, r := range records {
		if !r.Length.IsNamed() {
			continue
		}
		count, ok := findRecord(records, r.Length.Named)
		if !ok {
			return Pairing{}, fmt.Errorf("%s: %w: length %q is not a sibling", r.Name, ErrMissingRequiredField, r.Length.Named)
		}
		if _, ok := countTypes[count.Type]; !ok || count.Annotation.IsPointer() {
			return Pairing{}, fmt.Errorf("%s: %w: length %q has type %q", r.Name, ErrUnhandledNativeType, count.Name, count.Type)
		}
		if other, ok := p.arrayOf[count.Name]; ok {
			return Pairing{}, fmt.Errorf("%s: %w: length %q already counts %q", r.Name, ErrUnhandledAnnotationCombination, count.Name, other)
		}
		p.countOf[r.Name] = count.Name
		p.arrayOf[count.Name] = r.Name
	}
	return p, nil
}

// IsCount returns whether the named record is the count of some array.
func (p Pairing) IsCount(name Name) bool {
	_, ok := p.arrayOf[name]
	return ok
}

// CountOf gives the count sibling of the named array.
func (p Pairing) CountOf(array Name) (Name, bool) {
	count, ok := p.countOf[array]
	return count, ok
}

// ArrayOf gives the array counted by the named record.
func (p Pairing) ArrayOf(count Name) (Name, bool) {
	array, ok := p.arrayOf[count]
	return array, ok
}

// Len gives the number of pairs.
func (p Pairing) Len() int {
	return len(p.countOf)
}

// Visible filters out the count siblings, leaving the records that make up
// a host surface.
func (p Pairing) Visible(records []Record) []Record {
	var visible []Record
	for _, r := range records {
		if !p.IsCount(r.Name) {
			visible = append(visible, r)
		}
	}
	return visible
}
