// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"fmt"
	"regexp"
	"strconv"
)

// ValueKind distinguishes the shapes of a resolved default value.
type ValueKind string

const (
	// ValueNone means the usage has no default; the host zero value applies.
	ValueNone ValueKind = "none"
	// ValueLiteral is an integer or other value to be rendered verbatim.
	ValueLiteral ValueKind = "literal"
	// ValueFloat is a floating-point literal in decimal form.
	ValueFloat ValueKind = "float"
	ValueBool  ValueKind = "bool"
	// ValueLimit is one of the well-known numeric limits.
	ValueLimit         ValueKind = "limit"
	ValueEnumMember    ValueKind = "enum member"
	ValueBitmaskMember ValueKind = "bitmask member"
	// ValueZeroStruct is a structure whose leading enum member is set to that
	// enum's zero-valued member.
	ValueZeroStruct   ValueKind = "zero struct"
	ValueZero         ValueKind = "zero"
	ValueNull         ValueKind = "null"
	ValueEmptyList    ValueKind = "empty list"
	ValueEmptyString  ValueKind = "empty string"
	ValueEmptyBitmask ValueKind = "empty bitmask"
)

// Limit is a well-known numeric limit that a constant may be defined as.
type Limit string

const (
	LimitUint64Max Limit = "UINT64_MAX"
	LimitUint32Max Limit = "UINT32_MAX"
	LimitNaN       Limit = "NAN"
	LimitSizeMax   Limit = "SIZE_MAX"
)

// Limits are the constant values that can be given a host equivalent.
var Limits = map[string]Limit{
	string(LimitUint64Max): LimitUint64Max,
	string(LimitUint32Max): LimitUint32Max,
	string(LimitNaN):       LimitNaN,
	string(LimitSizeMax):   LimitSizeMax,
}

// DefaultValue is a host-neutral resolved default, which each backend
// renders in its own terms.
type DefaultValue struct {
	Kind ValueKind

	// Text is the literal text for ValueLiteral and ValueFloat.
	Text string

	// Bool is set for ValueBool.
	Bool bool

	// Limit is set for ValueLimit; Constant names the constant entity.
	Limit    Limit
	Constant Name

	// Type is the type the value belongs to: the enum or bitmask for member
	// references, and the structure for ValueZeroStruct.
	Type Name

	// Member is the referenced enum or bitmask member. For ValueZeroStruct it
	// is the zero-valued member of the leading enum.
	Member Name

	// Field and FieldType name the leading enum member of a ValueZeroStruct.
	Field     Name
	FieldType Name
}

var (
	floatDefault = regexp.MustCompile(`^(\d+)\.f$`)
	zeroDefault  = NewName("zero")
)

// ResolveDefault resolves the default value of a usage. An explicit default
// is resolved against the schema; otherwise nullable usages default to null,
// named-length arrays to the empty list, and everything else to the default
// of its type's category.
func ResolveDefault(schema *Schema, u TypeUsage) (DefaultValue, error) {
	name, e, err := schema.Resolve(u.Type)
	if err != nil {
		return DefaultValue{}, err
	}
	if u.Default != nil {
		return resolveExplicitDefault(schema, name, e, *u.Default)
	}
	if u.Nullable() {
		return DefaultValue{Kind: ValueNull}, nil
	}
	if u.Length.IsNamed() {
		return DefaultValue{Kind: ValueEmptyList}, nil
	}

	switch e := e.(type) {
	case *NativeType:
		switch {
		case name == nativeBool && !u.Annotation.IsPointer():
			return DefaultValue{Kind: ValueBool}, nil
		case name == nativeVoid && !u.Annotation.IsPointer():
			return DefaultValue{Kind: ValueNone}, nil
		case u.Annotation.IsPointer() || e.IsPointer:
			return DefaultValue{Kind: ValueNull}, nil
		}
		return DefaultValue{Kind: ValueZero}, nil
	case *Structure:
		if IsStringView(name) {
			return DefaultValue{Kind: ValueEmptyString}, nil
		}
		return DefaultValue{Kind: ValueNone}, nil
	case *Enum:
		for _, v := range e.Values {
			if !v.Tags.Has(EmscriptenTag) {
				return DefaultValue{Kind: ValueEnumMember, Type: name, Member: v.Name}, nil
			}
		}
		return DefaultValue{Kind: ValueZero}, nil
	case *Bitmask:
		return DefaultValue{Kind: ValueEmptyBitmask, Type: name}, nil
	case *Object, *CallbackFunction, *CallbackInfo, *FunctionPointer:
		return DefaultValue{Kind: ValueNone}, nil
	case *Function, *Constant:
		return DefaultValue{}, fmt.Errorf("%w: %q is a %s, not a type", ErrUnknownTypeReference, u.Type, e.Category())
	default:
		panic(fmt.Sprintf("unknown entity variant %T", e))
	}
}

func resolveExplicitDefault(schema *Schema, name Name, e Entity, d DefaultSpec) (DefaultValue, error) {
	switch d.Kind {
	case DefaultInt:
		return DefaultValue{Kind: ValueLiteral, Text: strconv.FormatInt(d.Int, 10)}, nil
	case DefaultFloat:
		return DefaultValue{Kind: ValueFloat, Text: formatFloat(d.Float)}, nil
	case DefaultBool:
		return DefaultValue{Kind: ValueBool, Bool: d.Bool}, nil
	}

	value := d.Name
	if value.String() == NullPointer {
		return DefaultValue{Kind: ValueNull}, nil
	}

	// Named constants take precedence over everything else.
	if c, ok := schema.Lookup(value); ok {
		if c, ok := c.(*Constant); ok {
			limit, ok := Limits[c.Value]
			if !ok {
				return DefaultValue{}, fmt.Errorf("%w: %q is defined as %q", ErrUnknownConstant, value, c.Value)
			}
			return DefaultValue{Kind: ValueLimit, Limit: limit, Constant: value}, nil
		}
	}

	switch e := e.(type) {
	case *Enum:
		if !hasValue(e.Values, value) {
			return DefaultValue{}, fmt.Errorf("%w: %q of %q", ErrUnknownEnumValue, value, name)
		}
		return DefaultValue{Kind: ValueEnumMember, Type: name, Member: value}, nil
	case *Bitmask:
		if !hasValue(e.Values, value) {
			return DefaultValue{}, fmt.Errorf("%w: %q of %q", ErrUnknownEnumValue, value, name)
		}
		return DefaultValue{Kind: ValueBitmaskMember, Type: name, Member: value}, nil
	case *NativeType:
		raw := value.String()
		switch name {
		case nativeFloat, nativeDouble:
			if m := floatDefault.FindStringSubmatch(raw); m != nil {
				return DefaultValue{Kind: ValueFloat, Text: m[1] + ".0"}, nil
			}
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return DefaultValue{Kind: ValueFloat, Text: formatFloat(f)}, nil
			}
			return DefaultValue{}, fmt.Errorf("%w: %q default %q", ErrUnhandledNativeType, name, raw)
		case nativeBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				return DefaultValue{Kind: ValueBool, Bool: b}, nil
			}
			return DefaultValue{}, fmt.Errorf("%w: %q default %q", ErrUnhandledNativeType, name, raw)
		}
		return DefaultValue{Kind: ValueLiteral, Text: raw}, nil
	case *Structure:
		if m := floatDefault.FindStringSubmatch(value.String()); m != nil {
			return DefaultValue{Kind: ValueFloat, Text: m[1] + ".0"}, nil
		}
		if value == zeroDefault {
			return resolveZeroStruct(schema, name, e)
		}
		return DefaultValue{Kind: ValueLiteral, Text: value.String()}, nil
	default:
		if value == zeroDefault {
			return DefaultValue{Kind: ValueZero}, nil
		}
		return DefaultValue{Kind: ValueLiteral, Text: value.String()}, nil
	}
}

// resolveZeroStruct resolves the "zero" default of a structure: the
// structure with its leading member set to the zero-valued member of that
// member's enum type. Without a leading enum, it is the generic zero.
func resolveZeroStruct(schema *Schema, name Name, s *Structure) (DefaultValue, error) {
	if len(s.Members) == 0 {
		return DefaultValue{Kind: ValueZero}, nil
	}
	first := s.Members[0]
	enumName, e, err := schema.Resolve(first.Type)
	if err != nil {
		return DefaultValue{}, fmt.Errorf("%s: %w", first.Name, err)
	}
	enum, ok := e.(*Enum)
	if !ok {
		return DefaultValue{Kind: ValueZero}, nil
	}
	for _, v := range enum.Values {
		if v.Value == 0 {
			return DefaultValue{
				Kind:      ValueZeroStruct,
				Type:      name,
				Field:     first.Name,
				FieldType: enumName,
				Member:    v.Name,
			}, nil
		}
	}
	return DefaultValue{Kind: ValueZero}, nil
}

func hasValue(values []EnumValue, name Name) bool {
	for _, v := range values {
		if v.Name == name {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		s += ".0"
	}
	return s
}
