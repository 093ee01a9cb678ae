// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package golang

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.webgpu.dev/dawn/tools/dawngen"
)

// shapeKind is the host representation chosen for a usage. It decides both
// the host type and the way values cross the boundary.
type shapeKind int

const (
	// Numeric scalars, converted.
	shapeScalar shapeKind = iota
	// C booleans, which are 32-bit integers.
	shapeBool
	// Untyped pointers.
	shapeOpaque
	// A NUL-terminated `char const*` without a length.
	shapeCString
	// A pointer to a single scalar.
	shapeScalarPointer
	// Byte spans: `void`, `char` or `uint8_t` pointers with a length.
	shapeBytes
	// Scalar, enum and bitmask arrays with a length.
	shapeScalarSlice
	// Fixed-size inline scalar arrays.
	shapeFixedArray
	// `char const*const*` with a length.
	shapeStrings
	// Enums, bitmasks and function pointers: type aliases of the raw type.
	shapeAlias
	shapeObject
	shapeObjectSlice
	shapeStringView
	shapeStruct
	// A `const*` structure.
	shapeStructPointer
	// A `*` structure that the API fills in.
	shapeStructOut
	shapeStructSlice
	shapeCallback
	shapeCallbackInfo
)

// shape is a usage resolved against the summary.
type shape struct {
	kind  shapeKind
	usage dawngen.TypeUsage
	// name is the resolved type name, with aliases followed.
	name dawngen.Name

	// host is the exported Go type and raw the cgo type of the value.
	host string
	raw  string

	// elemHost and elemRaw are the element types of arrays.
	elemHost string
	elemRaw  string

	// wrapped is set for structures needing field-by-field marshaling.
	wrapped bool
}

type nativeType struct {
	host string
	raw  string
}

var nativeTypes = map[string]nativeType{
	"bool":     {"bool", "C.WGPUBool"},
	"char":     {"byte", "C.char"},
	"float":    {"float32", "C.float"},
	"double":   {"float64", "C.double"},
	"int":      {"int32", "C.int"},
	"int8_t":   {"int8", "C.int8_t"},
	"uint8_t":  {"uint8", "C.uint8_t"},
	"int16_t":  {"int16", "C.int16_t"},
	"uint16_t": {"uint16", "C.uint16_t"},
	"int32_t":  {"int32", "C.int32_t"},
	"uint32_t": {"uint32", "C.uint32_t"},
	"int64_t":  {"int64", "C.int64_t"},
	"uint64_t": {"uint64", "C.uint64_t"},
	"size_t":   {"uint", "C.size_t"},
}

var (
	nativeBool  = dawngen.NewName("bool")
	nativeChar  = dawngen.NewName("char")
	nativeVoid  = dawngen.NewName("void")
	nativeUint8 = dawngen.NewName("uint8_t")
)

func unhandled(u dawngen.TypeUsage) error {
	return fmt.Errorf("%w: %q with annotation %q and length %s", dawngen.ErrUnhandledAnnotationCombination, u.Type, u.Annotation, u.Length)
}

// shapeOf resolves the host representation of a usage.
func (b *builder) shapeOf(u dawngen.TypeUsage) (shape, error) {
	name, e, err := b.summary.Schema.Resolve(u.Type)
	if err != nil {
		return shape{}, err
	}
	sh := shape{usage: u, name: name}
	plain := u.Annotation == dawngen.AnnotationNone && u.Length.IsNone()
	constArray := u.Annotation == dawngen.AnnotationConst && !u.Length.IsNone()

	switch e := e.(type) {
	case *dawngen.NativeType:
		return nativeShape(sh, e)
	case *dawngen.Enum, *dawngen.Bitmask:
		sh.host, sh.raw = typeName(name), cType(name)
		switch {
		case plain:
			sh.kind = shapeAlias
			return sh, nil
		case constArray:
			sh.kind = shapeScalarSlice
			sh.elemHost, sh.elemRaw = sh.host, sh.raw
			sh.host, sh.raw = "[]"+sh.elemHost, "*"+sh.elemRaw
			return sh, nil
		}
	case *dawngen.Object:
		sh.host, sh.raw = typeName(name), cType(name)
		switch {
		case plain:
			sh.kind = shapeObject
			return sh, nil
		case constArray:
			sh.kind = shapeObjectSlice
			sh.elemHost, sh.elemRaw = sh.host, sh.raw
			sh.host, sh.raw = "[]"+sh.elemHost, "*"+sh.elemRaw
			return sh, nil
		}
	case *dawngen.Structure:
		if dawngen.IsStringView(name) {
			if plain {
				sh.kind, sh.host, sh.raw = shapeStringView, "string", cType(name)
				return sh, nil
			}
			break
		}
		sh.wrapped = b.summary.IsWrapped(name)
		host, raw := typeName(name), cType(name)
		switch {
		case plain:
			sh.kind, sh.host, sh.raw = shapeStruct, host, raw
			return sh, nil
		case constArray:
			sh.kind, sh.host, sh.raw = shapeStructSlice, "[]"+host, "*"+raw
			sh.elemHost, sh.elemRaw = host, raw
			return sh, nil
		case u.Annotation == dawngen.AnnotationConst && u.Length.IsNone():
			sh.kind, sh.host, sh.raw = shapeStructPointer, "*"+host, "*"+raw
			sh.elemHost, sh.elemRaw = host, raw
			return sh, nil
		case u.Annotation == dawngen.AnnotationMut && u.Length.IsNone():
			sh.kind, sh.host, sh.raw = shapeStructOut, "*"+host, "*"+raw
			sh.elemHost, sh.elemRaw = host, raw
			return sh, nil
		}
	case *dawngen.CallbackFunction:
		if plain {
			sh.kind, sh.host, sh.raw = shapeCallback, typeName(name), cType(name)
			return sh, nil
		}
	case *dawngen.CallbackInfo:
		if plain {
			sh.kind, sh.host, sh.raw = shapeCallbackInfo, typeName(name), cType(name)
			return sh, nil
		}
	case *dawngen.FunctionPointer:
		if plain {
			sh.kind, sh.host, sh.raw = shapeAlias, typeName(name), cType(name)
			return sh, nil
		}
	case *dawngen.Function, *dawngen.Constant:
		return shape{}, fmt.Errorf("%w: %q is a %s, not a type", dawngen.ErrUnknownTypeReference, u.Type, e.Category())
	default:
		panic(fmt.Sprintf("unknown entity variant %T", e))
	}
	return shape{}, unhandled(u)
}

func nativeShape(sh shape, e *dawngen.NativeType) (shape, error) {
	u, name := sh.usage, sh.name

	// Natives that are pointers in their own right, like "void *".
	if e.IsPointer || strings.Contains(name.String(), "*") {
		if u.Annotation == dawngen.AnnotationNone && u.Length.IsNone() {
			sh.kind, sh.host, sh.raw = shapeOpaque, "unsafe.Pointer", "unsafe.Pointer"
			return sh, nil
		}
		return shape{}, unhandled(u)
	}

	if name == nativeVoid {
		switch {
		case u.Annotation == dawngen.AnnotationNone:
		case u.Length.IsNone() && u.Annotation != dawngen.AnnotationConstConst:
			sh.kind, sh.host, sh.raw = shapeOpaque, "unsafe.Pointer", "unsafe.Pointer"
			return sh, nil
		case u.Length.IsNamed() && u.Annotation != dawngen.AnnotationConstConst:
			sh.kind, sh.host, sh.raw = shapeBytes, "[]byte", "unsafe.Pointer"
			return sh, nil
		}
		return shape{}, unhandled(u)
	}

	nt, ok := nativeTypes[name.String()]
	if !ok {
		return shape{}, fmt.Errorf("%w: %q", dawngen.ErrUnhandledNativeType, name)
	}
	sh.elemHost, sh.elemRaw = nt.host, nt.raw
	isBool := name == nativeBool

	switch u.Annotation {
	case dawngen.AnnotationNone:
		switch {
		case u.Length.IsNone() && isBool:
			sh.kind, sh.host, sh.raw = shapeBool, nt.host, nt.raw
			return sh, nil
		case u.Length.IsNone():
			sh.kind, sh.host, sh.raw = shapeScalar, nt.host, nt.raw
			return sh, nil
		case u.Length.IsFixed() && !isBool:
			n := u.Length.Fixed
			sh.kind = shapeFixedArray
			sh.host, sh.raw = fmt.Sprintf("[%d]%s", n, nt.host), fmt.Sprintf("[%d]%s", n, nt.raw)
			return sh, nil
		}
	case dawngen.AnnotationConst, dawngen.AnnotationMut:
		if isBool {
			break
		}
		switch {
		case u.Length.IsNone() && name == nativeChar && u.Annotation == dawngen.AnnotationConst:
			sh.kind, sh.host, sh.raw = shapeCString, "*byte", "*C.char"
			return sh, nil
		case u.Length.IsNone():
			sh.kind, sh.host, sh.raw = shapeScalarPointer, "*"+nt.host, "*"+nt.raw
			return sh, nil
		case name == nativeChar || name == nativeUint8:
			sh.kind, sh.host, sh.raw = shapeBytes, "[]byte", "*"+nt.raw
			return sh, nil
		default:
			sh.kind, sh.host, sh.raw = shapeScalarSlice, "[]"+nt.host, "*"+nt.raw
			return sh, nil
		}
	case dawngen.AnnotationConstConst:
		if name == nativeChar && !u.Length.IsNone() {
			sh.kind, sh.host, sh.raw = shapeStrings, "[]string", "**C.char"
			return sh, nil
		}
	}
	return shape{}, unhandled(u)
}

//
// Naming.
//

// typeName gives the exported Go name of a schema type.
func typeName(n dawngen.Name) string {
	return n.UpperIdentifier()
}

// cType gives the cgo spelling of a schema type, e.g. C.WGPUBufferDescriptor.
func cType(n dawngen.Name) string {
	return "C.WGPU" + n.UpperCamelCase()
}

// cName gives the C spelling of a schema type, e.g. WGPUBufferDescriptor.
func cName(n dawngen.Name) string {
	return "WGPU" + n.UpperCamelCase()
}

// fieldName gives the exported Go field of a member.
func fieldName(n dawngen.Name) string {
	return n.UpperIdentifier()
}

// Identifiers that generated bodies use and that parameters must not
// shadow, on top of the Go keywords.
var reservedIdentifiers = map[string]struct{}{
	"C":      {},
	"dawnrt": {},
	"math":   {},
	"unsafe": {},
	"scope":  {},
	"ret":    {},
	"len":    {},
	"nil":    {},
	"new":    {},
	"string": {},
}

var goKeywords = map[string]struct{}{
	"break":       {},
	"case":        {},
	"chan":        {},
	"const":       {},
	"continue":    {},
	"default":     {},
	"defer":       {},
	"else":        {},
	"fallthrough": {},
	"for":         {},
	"func":        {},
	"go":          {},
	"goto":        {},
	"if":          {},
	"import":      {},
	"interface":   {},
	"map":         {},
	"package":     {},
	"range":       {},
	"return":      {},
	"select":      {},
	"struct":      {},
	"switch":      {},
	"type":        {},
	"var":         {},
}

// paramName gives a Go identifier for a parameter or local, e.g. "type_"
// for "type".
func paramName(n dawngen.Name) string {
	s := n.Identifier()
	if _, ok := goKeywords[s]; ok {
		return s + "_"
	}
	if _, ok := reservedIdentifiers[s]; ok {
		return s + "_"
	}
	return s
}

// rawFieldName gives the cgo spelling of a C struct field. cgo prefixes
// fields that are Go keywords with an underscore.
func rawFieldName(n dawngen.Name) string {
	s := n.Identifier()
	if _, ok := goKeywords[s]; ok {
		return "_" + s
	}
	return s
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// fromRawName gives the raw-to-host constructor of a structure or callback
// info, e.g. limitsFromRaw.
func fromRawName(n dawngen.Name) string {
	return lowerFirst(typeName(n)) + "FromRaw"
}

// trampolineName gives the accessor of a callback function's trampoline.
func trampolineName(n dawngen.Name) string {
	return lowerFirst(typeName(n)) + "Trampoline"
}

// exportName gives the C symbol of a callback function's trampoline.
func exportName(n dawngen.Name) string {
	return "wgpuGo" + typeName(n)
}

// memberConst gives the Go constant of an enum or bitmask member, e.g.
// BufferUsageMapRead.
func memberConst(typ, member dawngen.Name) string {
	return typeName(typ) + member.UpperCamelCase()
}

// cEnumerator gives the cgo spelling of an enum member, e.g.
// C.WGPUSType_ShaderSourceWGSL.
func cEnumerator(typ, member dawngen.Name) string {
	return cType(typ) + "_" + member.UpperCamelCase()
}

// externType gives the C spelling of a cgo type, as used in the exported
// trampolines' prototypes.
func externType(raw string) string {
	stars := 0
	for strings.HasPrefix(raw, "*") {
		raw = raw[1:]
		stars++
	}
	if raw == "unsafe.Pointer" {
		raw = "void*"
	} else {
		raw = strings.TrimPrefix(raw, "C.")
	}
	return raw + strings.Repeat("*", stars)
}
