// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package golang

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"go.webgpu.dev/dawn/tools/dawngen"
)

// acquisition is the unwrapped form of one host value. The statements of
// before run ahead of the raw use of expr and those of after run once it
// returns, while everything acquired is still alive.
type acquisition struct {
	before []string
	expr   string
	after  []string
	// scoped is set when the acquisition needs the call's dawnrt.Scope.
	scoped bool
}

// fold nests the acquisitions right to left around inner, which receives the
// raw expressions in order. The result runs every acquisition's before in
// order, then inner, then every after in reverse order.
func fold(acqs []acquisition, inner func(exprs []string) []string) []string {
	k := inner
	for i := len(acqs) - 1; i >= 0; i-- {
		acq, next := acqs[i], k
		k = func(exprs []string) []string {
			var stmts []string
			stmts = append(stmts, acq.before...)
			stmts = append(stmts, next(append(slices.Clone(exprs), acq.expr))...)
			return append(stmts, acq.after...)
		}
	}
	return k(nil)
}

func anyScoped(acqs []acquisition) bool {
	for _, acq := range acqs {
		if acq.scoped {
			return true
		}
	}
	return false
}

// unwrap gives the acquisition converting the host value h to its raw form.
// local prefixes any temporaries it declares.
func (b *builder) unwrap(sh shape, h, local string) (acquisition, error) {
	switch sh.kind {
	case shapeScalar:
		return acquisition{expr: fmt.Sprintf("%s(%s)", sh.raw, h)}, nil
	case shapeBool:
		return acquisition{expr: fmt.Sprintf("C.WGPUBool(dawnrt.Bool(%s))", h)}, nil
	case shapeAlias:
		return acquisition{expr: h}, nil
	case shapeOpaque:
		return acquisition{expr: fmt.Sprintf("dawnrt.Pin(scope, %s)", h), scoped: true}, nil
	case shapeCString:
		return acquisition{
			expr:   fmt.Sprintf("(*C.char)(unsafe.Pointer(dawnrt.Ref(scope, %s)))", h),
			scoped: true,
		}, nil
	case shapeScalarPointer:
		return acquisition{
			expr:   fmt.Sprintf("(%s)(unsafe.Pointer(dawnrt.Ref(scope, %s)))", sh.raw, h),
			scoped: true,
		}, nil
	case shapeBytes:
		expr := fmt.Sprintf("dawnrt.Bytes(scope, %s)", h)
		if sh.raw != "unsafe.Pointer" {
			expr = fmt.Sprintf("(%s)(%s)", sh.raw, expr)
		}
		return acquisition{expr: expr, scoped: true}, nil
	case shapeScalarSlice:
		return acquisition{
			expr:   fmt.Sprintf("(%s)(unsafe.Pointer(dawnrt.SliceData(scope, %s)))", sh.raw, h),
			scoped: true,
		}, nil
	case shapeFixedArray:
		return acquisition{expr: fmt.Sprintf("*(*%s)(unsafe.Pointer(&%s))", sh.raw, h)}, nil
	case shapeStrings:
		return acquisition{
			expr:   fmt.Sprintf("(**C.char)(unsafe.Pointer(dawnrt.CStrings(scope, %s)))", h),
			scoped: true,
		}, nil
	case shapeObject:
		return acquisition{expr: h + ".ref"}, nil
	case shapeObjectSlice:
		return acquisition{
			expr:   fmt.Sprintf("dawnrt.Map(scope, %s, func(o %s) %s { return o.ref })", h, sh.elemHost, sh.elemRaw),
			scoped: true,
		}, nil
	case shapeStringView:
		return acquisition{
			expr: fmt.Sprintf("C.WGPUStringView{data: (*C.char)(unsafe.Pointer(dawnrt.CString(scope, %s))), length: C.size_t(len(%s))}", h, h),
			scoped: true,
		}, nil
	case shapeStruct, shapeCallbackInfo:
		return acquisition{expr: h + ".unwrap(scope)", scoped: true}, nil
	case shapeStructPointer, shapeStructOut:
		if !sh.wrapped {
			// Layout-identical, so C may read and write the host value in
			// place.
			return acquisition{
				expr:   fmt.Sprintf("(%s)(unsafe.Pointer(dawnrt.Ref(scope, %s)))", sh.raw, h),
				scoped: true,
			}, nil
		}
		raw := local + "Raw"
		acq := acquisition{
			before: []string{
				fmt.Sprintf("var %s %s", raw, sh.raw),
				fmt.Sprintf("if %s != nil {\n%s = dawnrt.New(scope, %s.unwrap(scope))\n}", h, raw, h),
			},
			expr:   raw,
			scoped: true,
		}
		if sh.kind == shapeStructOut {
			if !b.summary.NeedsReverseInit(sh.name) {
				return acquisition{}, fmt.Errorf("%w: %q is written by the API but cannot be read back", dawngen.ErrUnhandledAnnotationCombination, sh.name)
			}
			acq.after = []string{
				fmt.Sprintf("if %s != nil {\n*%s = %s(%s)\n}", h, h, fromRawName(sh.name), raw),
			}
		}
		return acq, nil
	case shapeStructSlice:
		if !sh.wrapped {
			return acquisition{
				expr:   fmt.Sprintf("(%s)(unsafe.Pointer(dawnrt.SliceData(scope, %s)))", sh.raw, h),
				scoped: true,
			}, nil
		}
		return acquisition{
			expr:   fmt.Sprintf("dawnrt.Map(scope, %s, func(x %s) %s { return x.unwrap(scope) })", h, sh.elemHost, sh.elemRaw),
			scoped: true,
		}, nil
	case shapeCallback:
		return acquisition{}, fmt.Errorf("%w: callback %q has no userdata to carry its closure", dawngen.ErrUnhandledAnnotationCombination, sh.name)
	default:
		panic(fmt.Sprintf("unknown shape %d", sh.kind))
	}
}

// unwrapCallback gives the acquisition of a callback argument followed by
// legacy userdata arguments. The closure handle is left in local+"Data".
// When slot is set, the closure is kept in that dawnrt.Slot once the call
// returns, releasing the one it replaces.
func unwrapCallback(sh shape, h, local, slot string) acquisition {
	fn, data, owned := local+"Fn", local+"Data", local+"Owned"
	acq := acquisition{
		before: []string{
			fmt.Sprintf("var %s %s", fn, sh.raw),
			fmt.Sprintf("var %s unsafe.Pointer", data),
		},
		expr: fn,
	}
	if slot == "" {
		acq.before = append(acq.before,
			fmt.Sprintf("if %s != nil {\n%s = %s()\n%s = C.wgpuGoHandle(C.uintptr_t(dawnrt.NewOwnedOpaque(%s).IntoRaw()))\n}", h, fn, trampolineName(sh.name), data, h))
		return acq
	}
	acq.before = append(acq.before,
		fmt.Sprintf("var %s dawnrt.OwnedOpaque[%s]", owned, sh.host),
		fmt.Sprintf("if %s != nil {\n%s = %s()\n%s = dawnrt.NewOwnedOpaque(%s)\n%s = C.wgpuGoHandle(C.uintptr_t(%s.IntoRaw()))\n}", h, fn, trampolineName(sh.name), owned, h, data, owned))
	acq.after = []string{
		fmt.Sprintf("if %s != nil {\ndawnrt.Keep(%s, %s)\n} else {\ndawnrt.Drop(%s)\n}", h, slot, owned, slot),
	}
	return acq
}

// countExpr derives the raw count of the host array h.
func countExpr(count dawngen.Record, h string) (string, error) {
	nt, ok := nativeTypes[count.Type.String()]
	if !ok {
		return "", fmt.Errorf("%w: count %q has type %q", dawngen.ErrUnhandledNativeType, count.Name, count.Type)
	}
	return fmt.Sprintf("%s(len(%s))", nt.raw, h), nil
}

// wrap gives the expression converting the raw value r to its host form.
// count is the element count of arrays with a named length, as a uint.
func (b *builder) wrap(sh shape, r, count string) (string, error) {
	if sh.usage.Length.IsFixed() {
		count = fmt.Sprintf("%d", sh.usage.Length.Fixed)
	}
	switch sh.kind {
	case shapeBytes, shapeScalarSlice, shapeStrings, shapeObjectSlice, shapeStructSlice:
		if count == "" {
			return "", fmt.Errorf("%w: array of %q has no known length", dawngen.ErrUnhandledAnnotationCombination, sh.name)
		}
	}
	switch sh.kind {
	case shapeScalar:
		return fmt.Sprintf("%s(%s)", sh.host, r), nil
	case shapeBool:
		return r + " != 0", nil
	case shapeOpaque, shapeAlias:
		return r, nil
	case shapeCString, shapeScalarPointer:
		return fmt.Sprintf("(%s)(unsafe.Pointer(%s))", sh.host, r), nil
	case shapeBytes:
		return fmt.Sprintf("dawnrt.CopyBytes(unsafe.Pointer(%s), %s)", r, count), nil
	case shapeScalarSlice:
		return fmt.Sprintf("dawnrt.CopySlice((*%s)(unsafe.Pointer(%s)), %s)", sh.elemHost, r, count), nil
	case shapeFixedArray:
		return fmt.Sprintf("*(*%s)(unsafe.Pointer(&%s))", sh.host, r), nil
	case shapeStrings:
		return fmt.Sprintf("dawnrt.GoStrings(unsafe.Pointer(%s), %s)", r, count), nil
	case shapeObject:
		return fmt.Sprintf("%s{ref: %s}", sh.host, r), nil
	case shapeObjectSlice:
		return fmt.Sprintf("dawnrt.WrapSlice(%s, %s, func(p *%s) %s { return %s{ref: *p} })", r, count, sh.elemRaw, sh.elemHost, sh.elemHost), nil
	case shapeStringView:
		return fmt.Sprintf("dawnrt.StringFromView(unsafe.Pointer(%s.data), uint(%s.length))", r, r), nil
	}

	if !b.summary.NeedsReverseInit(sh.name) && sh.kind != shapeCallbackInfo {
		return "", fmt.Errorf("%w: %q is handed back by the API but cannot be read back", dawngen.ErrUnhandledAnnotationCombination, sh.name)
	}
	switch sh.kind {
	case shapeStruct, shapeCallbackInfo:
		return fmt.Sprintf("%s(&%s)", fromRawName(sh.name), r), nil
	case shapeStructPointer, shapeStructOut:
		return fmt.Sprintf("dawnrt.WrapPointer(%s, %s)", r, fromRawName(sh.name)), nil
	case shapeStructSlice:
		return fmt.Sprintf("dawnrt.WrapSlice(%s, %s, %s)", r, count, fromRawName(sh.name)), nil
	case shapeCallback:
		return "", fmt.Errorf("%w: callback %q cannot be handed back", dawngen.ErrUnhandledAnnotationCombination, sh.name)
	default:
		panic(fmt.Sprintf("unknown shape %d", sh.kind))
	}
}

// call renders a raw call, assigning its result to ret when there is one.
func call(symbol string, args []string, hasResult bool) string {
	c := fmt.Sprintf("C.%s(%s)", symbol, strings.Join(args, ", "))
	if hasResult {
		return "ret := " + c
	}
	return c
}
