// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package golang

import (
	"fmt"
	"strings"

	"go.webgpu.dev/dawn/tools/dawngen"
)

var (
	addRefMethod  = dawngen.NewName("add ref")
	releaseMethod = dawngen.NewName("release")
)

func (b *builder) object(name dawngen.Name) (Object, error) {
	host, raw := typeName(name), cType(name)
	methods := b.summary.Methods(name)

	declared := make(map[string]bool)
	taken := make(map[string]bool)
	for _, m := range methods {
		declared[m.Name.UpperIdentifier()] = true
		for p := range localsOf(m.Args) {
			taken[p] = true
		}
	}
	recv := receiverName(host, taken)

	out := Object{
		Doc: []string{
			fmt.Sprintf("%s is a reference-counted %s handle. The zero value is the", host, cName(name)),
			"null handle.",
		},
		Name: host,
		Raw:  raw,
	}
	if !declared[addRefMethod.UpperIdentifier()] {
		out.Funcs = append(out.Funcs, Func{
			Doc:      []string{"AddRef acquires another reference to the handle."},
			Receiver: recv + " " + host,
			Name:     "AddRef",
			Body:     []string{fmt.Sprintf("C.wgpu%sAddRef(%s.ref)", name.UpperCamelCase(), recv)},
		})
	}
	if !declared[releaseMethod.UpperIdentifier()] {
		out.Funcs = append(out.Funcs, Func{
			Doc:      []string{"Release drops a reference to the handle."},
			Receiver: recv + " " + host,
			Name:     "Release",
			Body:     []string{fmt.Sprintf("C.wgpu%sRelease(%s.ref)", name.UpperCamelCase(), recv)},
		})
	}

	for _, m := range methods {
		method := m.Name.UpperIdentifier()
		if m.IsGetter() {
			if getter := m.Getter.UpperIdentifier(); !declared[getter] {
				method = getter
			}
		}
		fn, err := b.callable(m, recv, method)
		if err != nil {
			return Object{}, fmt.Errorf("%s: %w", m.Name, err)
		}
		out.Funcs = append(out.Funcs, fn)
	}
	return out, nil
}

// callable gives the host wrapper of a method, when recv is set, or of a
// free function. Counts and userdata are filled in from the host
// arguments.
func (b *builder) callable(c dawngen.Callable, recv, name string) (Func, error) {
	fn := Func{Name: name}
	var acqs []acquisition
	if recv != "" {
		fn.Receiver = recv + " " + typeName(c.Owner)
		acqs = append(acqs, acquisition{expr: recv + ".ref"})
	}

	carriers := make(map[dawngen.Name]bool)
	for _, cb := range c.Userdata {
		carriers[cb] = true
	}
	carried := make(map[dawngen.Name]bool)
	for _, arg := range c.Args {
		p := paramName(arg.Name)
		if array, ok := c.Pairing.ArrayOf(arg.Name); ok {
			expr, err := countExpr(arg, paramName(array))
			if err != nil {
				return Func{}, fmt.Errorf("%s: %w", arg.Name, err)
			}
			acqs = append(acqs, acquisition{expr: expr})
			continue
		}
		if cb, ok := c.Userdata[arg.Name]; ok {
			// The first userdata carries the closure.
			expr := "nil"
			if !carried[cb] {
				carried[cb] = true
				expr = paramName(cb) + "Data"
			}
			acqs = append(acqs, acquisition{expr: expr})
			continue
		}

		sh, err := b.shapeOf(arg.TypeUsage)
		if err != nil {
			return Func{}, fmt.Errorf("%s: %w", arg.Name, err)
		}
		fn.Params = append(fn.Params, Param{Name: p, Type: sh.host})
		var acq acquisition
		if sh.kind == shapeCallback && carriers[arg.Name] {
			var slot string
			if b.summary.Callbacks.Identity(sh.name) == dawngen.MultiUse {
				owner := "0"
				if recv != "" {
					owner = fmt.Sprintf("uintptr(unsafe.Pointer(%s.ref))", recv)
				}
				slot = fmt.Sprintf("dawnrt.Slot{Owner: %s, Name: %q}", owner, c.SymbolName())
			}
			acq = unwrapCallback(sh, p, p, slot)
		} else if acq, err = b.unwrap(sh, p, p); err != nil {
			return Func{}, fmt.Errorf("%s: %w", arg.Name, err)
		}
		acqs = append(acqs, acq)
	}

	var result *shape
	if c.Returns != nil && c.Returns.Type != nativeVoid {
		sh, err := b.shapeOf(c.Returns.Usage())
		if err != nil {
			return Func{}, fmt.Errorf("return type: %w", err)
		}
		result = &sh
		fn.Result = sh.host
	}

	symbol := c.SymbolName()
	fn.Doc = []string{fmt.Sprintf("%s calls %s.", name, symbol)}
	if c.ReturnsObject {
		if !c.Creates.IsEmpty() {
			fn.Doc = []string{fmt.Sprintf("%s creates a new %s.", name, typeName(c.Creates))}
		}
		fn.Doc = append(fn.Doc, fmt.Sprintf("The returned %s is owned by the caller and must be released exactly once.", fn.Result))
	}

	fn.Body = fold(acqs, func(exprs []string) []string {
		return []string{call(symbol, exprs, result != nil)}
	})
	if result != nil {
		ret, err := b.wrap(*result, "ret", "")
		if err != nil {
			return Func{}, fmt.Errorf("return type: %w", err)
		}
		fn.Body = append(fn.Body, "return "+ret)
	}
	if anyScoped(acqs) {
		fn.Body = append([]string{"scope := new(dawnrt.Scope)", "defer scope.Release()"}, fn.Body...)
	}
	return fn, nil
}

// callbackFunction gives the host function type of a callback, the
// trampoline that the API invokes in its place and the trampoline's C
// declaration.
func (b *builder) callbackFunction(name dawngen.Name, cb *dawngen.CallbackFunction) (Callback, string, error) {
	host := typeName(name)
	pairing := b.summary.Pairing(name)
	identity := b.summary.Callbacks.Identity(name)

	out := Callback{Name: host}
	switch identity {
	case dawngen.MultiUse:
		out.Doc = []string{
			fmt.Sprintf("%s may be invoked any number of times. A closure handed to", host),
			"the API is kept alive until the same setter replaces or clears it.",
		}
	default:
		out.Doc = []string{fmt.Sprintf("%s is invoked at most once.", host)}
	}

	var rawParams []Param
	var externParams, args []string
	for _, arg := range cb.Args {
		sh, err := b.shapeOf(arg.TypeUsage)
		if err != nil {
			return Callback{}, "", fmt.Errorf("%s: %w", arg.Name, err)
		}
		p := paramName(arg.Name)
		rawParams = append(rawParams, Param{Name: p, Type: sh.raw})
		externParams = append(externParams, externType(sh.raw))
		if pairing.IsCount(arg.Name) {
			continue
		}
		out.Params = append(out.Params, Param{Name: p, Type: sh.host})
		var count string
		if c, ok := pairing.CountOf(arg.Name); ok {
			count = fmt.Sprintf("uint(%s)", paramName(c))
		}
		expr, err := b.wrap(sh, p, count)
		if err != nil {
			return Callback{}, "", fmt.Errorf("%s: %w", arg.Name, err)
		}
		args = append(args, expr)
	}
	rawParams = append(rawParams,
		Param{Name: "userdata1", Type: "unsafe.Pointer"},
		Param{Name: "userdata2", Type: "unsafe.Pointer"})
	externParams = append(externParams, "void*", "void*")

	export := exportName(name)
	body := []string{
		fmt.Sprintf("owned := dawnrt.FromRaw[%s](uintptr(userdata1))", host),
		fmt.Sprintf("owned.Value()(%s)", strings.Join(args, ", ")),
	}
	if identity == dawngen.SingleUse {
		body = append(body, "owned.Release()")
	}
	out.Funcs = []Func{
		{
			Directive: "//export " + export,
			Name:      export,
			Params:    rawParams,
			Body:      body,
		},
		{
			Name:   trampolineName(name),
			Result: cType(name),
			Body:   []string{fmt.Sprintf("return %s(C.%s)", cType(name), export)},
		},
	}
	extern := fmt.Sprintf("extern void %s(%s);", export, strings.Join(externParams, ", "))
	return out, extern, nil
}
