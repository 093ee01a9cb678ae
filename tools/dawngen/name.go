// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Name is a schema identifier: an ordered sequence of space-separated words,
// e.g. "shader module descriptor". Names are the keys of the schema's symbol
// table, so they compare and order by their raw form.
type Name struct {
	raw string
}

// NewName returns the name with the given raw, space-separated form.
func NewName(raw string) Name {
	return Name{raw: strings.Join(strings.Fields(raw), " ")}
}

func (n Name) String() string {
	return n.raw
}

// Parts gives the words of the name.
func (n Name) Parts() []string {
	return strings.Fields(n.raw)
}

// Len gives the number of words in the name.
func (n Name) Len() int {
	return len(n.Parts())
}

// IsEmpty returns whether the name has no words.
func (n Name) IsEmpty() bool {
	return n.raw == ""
}

// FirstPart gives the first word, or "" for the empty name.
func (n Name) FirstPart() string {
	parts := n.Parts()
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastPart gives the last word, or "" for the empty name.
func (n Name) LastPart() string {
	parts := n.Parts()
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// SubName gives the name made of the words from index `from` onwards, e.g.
// NewName("get limits").SubName(1) is "limits".
func (n Name) SubName(from int) Name {
	parts := n.Parts()
	if from >= len(parts) {
		return Name{}
	}
	return Name{raw: strings.Join(parts[from:], " ")}
}

// Less orders names by their raw form.
func (n Name) Less(other Name) bool {
	return n.raw < other.raw
}

// Compare returns -1, 0, or 1 comparing raw forms.
func (n Name) Compare(other Name) int {
	return strings.Compare(n.raw, other.raw)
}

// CamelCase keeps the first word verbatim and upper-cases the first rune of
// every following word: "get limits" becomes "getLimits".
func (n Name) CamelCase() string {
	parts := n.Parts()
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(upperFirst(p))
	}
	return b.String()
}

// UpperCamelCase upper-cases the first rune of every word: "get limits"
// becomes "GetLimits".
func (n Name) UpperCamelCase() string {
	var b strings.Builder
	for _, p := range n.Parts() {
		b.WriteString(upperFirst(p))
	}
	return b.String()
}

// Identifier is CamelCase made safe to start an identifier.
func (n Name) Identifier() string {
	return identifierSafe(n.CamelCase())
}

// UpperIdentifier is UpperCamelCase made safe to start an identifier.
func (n Name) UpperIdentifier() string {
	return identifierSafe(n.UpperCamelCase())
}

func (n *Name) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = NewName(raw)
	return nil
}

func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.raw)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func identifierSafe(s string) string {
	if s == "" {
		return s
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsDigit(r) {
		return "_" + s
	}
	return s
}

// Names converts raw strings to names.
func Names(raws ...string) []Name {
	names := make([]Name, 0, len(raws))
	for _, raw := range raws {
		names = append(names, NewName(raw))
	}
	return names
}
