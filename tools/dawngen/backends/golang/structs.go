// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package golang

import (
	"fmt"

	"go.webgpu.dev/dawn/tools/dawngen"
)

const chainedStruct = "*C.WGPUChainedStruct"

// memberShapes resolves every member of a structure or callback info.
func (b *builder) memberShapes(members []dawngen.Record) (map[dawngen.Name]shape, error) {
	shapes := make(map[dawngen.Name]shape)
	for _, m := range members {
		sh, err := b.shapeOf(m.TypeUsage)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		shapes[m.Name] = sh
	}
	return shapes, nil
}

// localsOf gives the temporaries an unwrap of members may declare.
func localsOf(records []dawngen.Record) map[string]bool {
	taken := make(map[string]bool)
	for _, r := range records {
		p := paramName(r.Name)
		taken[p] = true
		taken[p+"Raw"] = true
		taken[p+"Fn"] = true
		taken[p+"Data"] = true
		taken[p+"Owned"] = true
	}
	return taken
}

func (b *builder) structure(name dawngen.Name, s *dawngen.Structure) (Struct, error) {
	host, raw := typeName(name), cType(name)
	ext := b.summary.Extensibility(name)
	pairing := b.summary.Pairing(name)
	wrapped := b.summary.IsWrapped(name)

	shapes, err := b.memberShapes(s.Members)
	if err != nil {
		return Struct{}, err
	}
	for _, m := range s.Members {
		if shapes[m.Name].kind == shapeCallback {
			return Struct{}, fmt.Errorf("%s: %w: callback %q outside of a callback info", m.Name, dawngen.ErrUnhandledAnnotationCombination, m.Type)
		}
	}

	out := Struct{
		Doc:  []string{fmt.Sprintf("%s is the host form of %s.", host, cName(name))},
		Name: host,
		Raw:  raw,
	}
	if !ext.IsNone() {
		out.Fields = append(out.Fields, Field{Name: "NextInChain", Type: "ChainedStruct"})
	}
	visible := pairing.Visible(s.Members)
	for _, m := range visible {
		out.Fields = append(out.Fields, Field{Name: fieldName(m.Name), Type: shapes[m.Name].host})
	}

	ctors, err := b.constructors(name, visible, shapes)
	if err != nil {
		return Struct{}, err
	}
	out.Funcs = append(out.Funcs, ctors...)

	taken := localsOf(s.Members)
	taken["next"], taken["nextInChain"] = true, true
	recv := receiverName(host, taken)

	if !wrapped && ext.IsNone() {
		out.SizeGuard = true
		out.Funcs = append(out.Funcs, Func{
			Receiver: recv + " " + host,
			Name:     "unwrap",
			Params:   []Param{{Name: "scope", Type: "*dawnrt.Scope"}},
			Result:   raw,
			Body:     []string{fmt.Sprintf("return *(*%s)(unsafe.Pointer(&%s))", raw, recv)},
		})
	} else {
		unwrap, reads, err := b.unwrapStructure(name, recv, s.Members, ext, pairing, shapes)
		if err != nil {
			return Struct{}, err
		}
		out.Funcs = append(out.Funcs, unwrap)
		out.unwrapped = reads
	}

	if ext.IsLink() {
		b.links = append(b.links, name)
		sType, err := b.sTypeEnumerator(ext.Tag)
		if err != nil {
			return Struct{}, err
		}
		out.Funcs = append(out.Funcs,
			Func{
				Doc:      []string{fmt.Sprintf("SType gives the tag that identifies a %s in a chain.", host)},
				Receiver: "*" + host,
				Name:     "SType",
				Result:   typeName(sTypeName),
				Body:     []string{"return " + sType},
			},
			Func{
				Receiver: recv + " *" + host,
				Name:     "unwrapChain",
				Params:   []Param{{Name: "scope", Type: "*dawnrt.Scope"}},
				Result:   chainedStruct,
				Body: []string{
					fmt.Sprintf("if %s == nil {\nreturn nil\n}", recv),
					fmt.Sprintf("return (%s)(unsafe.Pointer(dawnrt.New(scope, %s.unwrap(scope))))", chainedStruct, recv),
				},
			})
	}

	if b.summary.NeedsReverseInit(name) {
		fromRaw, writes, err := b.structureFromRaw(name, s.Members, ext, pairing, shapes, wrapped)
		if err != nil {
			return Struct{}, err
		}
		out.Funcs = append(out.Funcs, fromRaw)
		out.rewrapped = writes
	}
	return out, nil
}

// constructors gives NewX, taking every visible member, and DefaultX,
// giving the schema defaults.
func (b *builder) constructors(name dawngen.Name, visible []dawngen.Record, shapes map[dawngen.Name]shape) ([]Func, error) {
	host := typeName(name)
	ctor := Func{
		Doc:    []string{fmt.Sprintf("New%s builds a %s from its members.", host, host)},
		Name:   "New" + host,
		Result: host,
	}
	var given, defaults []keyed
	for _, m := range visible {
		sh := shapes[m.Name]
		p := paramName(m.Name)
		ctor.Params = append(ctor.Params, Param{Name: p, Type: sh.host})
		given = append(given, keyed{fieldName(m.Name), p})

		expr, err := b.defaultExpr(b.summary.Default(name, m.Name), sh.host)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		if expr != "" {
			defaults = append(defaults, keyed{fieldName(m.Name), expr})
		}
	}
	ctor.Body = []string{"return " + compositeLit(host, given)}

	def := Func{
		Doc:    []string{fmt.Sprintf("Default%s gives a %s holding the default of every member.", host, host)},
		Name:   "Default" + host,
		Result: host,
		Body:   []string{"return " + compositeLit(host, defaults)},
	}
	return []Func{ctor, def}, nil
}

// unwrapStructure gives the host-to-raw conversion of a wrapped structure,
// along with the host fields it reads.
func (b *builder) unwrapStructure(name dawngen.Name, recv string, members []dawngen.Record, ext dawngen.Extensibility, pairing dawngen.Pairing, shapes map[dawngen.Name]shape) (Func, []string, error) {
	var keys, reads []string
	var acqs []acquisition
	switch {
	case ext.IsRoot():
		keys = append(keys, "nextInChain")
		acqs = append(acqs, acquisition{
			before: []string{
				"var nextInChain " + chainedStruct,
				fmt.Sprintf("if %s.NextInChain != nil {\nnextInChain = %s.NextInChain.unwrapChain(scope)\n}", recv, recv),
			},
			expr: "nextInChain",
		})
		reads = append(reads, "NextInChain")
	case ext.IsLink():
		sType, err := b.sTypeEnumerator(ext.Tag)
		if err != nil {
			return Func{}, nil, err
		}
		keys = append(keys, "chain")
		acqs = append(acqs, acquisition{
			before: []string{
				"var next " + chainedStruct,
				fmt.Sprintf("if %s.NextInChain != nil {\nnext = %s.NextInChain.unwrapChain(scope)\n}", recv, recv),
			},
			expr: fmt.Sprintf("C.WGPUChainedStruct{next: next, sType: %s}", sType),
		})
		reads = append(reads, "NextInChain")
	}

	for _, m := range members {
		keys = append(keys, rawFieldName(m.Name))
		if array, ok := pairing.ArrayOf(m.Name); ok {
			expr, err := countExpr(m, recv+"."+fieldName(array))
			if err != nil {
				return Func{}, nil, err
			}
			acqs = append(acqs, acquisition{expr: expr})
			continue
		}
		acq, err := b.unwrap(shapes[m.Name], recv+"."+fieldName(m.Name), paramName(m.Name))
		if err != nil {
			return Func{}, nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		acqs = append(acqs, acq)
		reads = append(reads, fieldName(m.Name))
	}

	raw := cType(name)
	body := fold(acqs, func(exprs []string) []string {
		fields := make([]keyed, len(keys))
		for i := range keys {
			fields[i] = keyed{keys[i], exprs[i]}
		}
		return []string{"return " + compositeLit(raw, fields)}
	})
	return Func{
		Receiver: recv + " " + typeName(name),
		Name:     "unwrap",
		Params:   []Param{{Name: "scope", Type: "*dawnrt.Scope"}},
		Result:   raw,
		Body:     body,
	}, reads, nil
}

// structureFromRaw gives the raw-to-host constructor of a structure, along
// with the host fields it writes.
func (b *builder) structureFromRaw(name dawngen.Name, members []dawngen.Record, ext dawngen.Extensibility, pairing dawngen.Pairing, shapes map[dawngen.Name]shape, wrapped bool) (Func, []string, error) {
	host := typeName(name)
	fn := Func{
		Name:   fromRawName(name),
		Params: []Param{{Name: "r", Type: "*" + cType(name)}},
		Result: host,
	}
	if !wrapped && ext.IsNone() {
		fn.Body = []string{fmt.Sprintf("return *(*%s)(unsafe.Pointer(r))", host)}
		return fn, nil, nil
	}

	var fields []keyed
	var writes []string
	switch {
	case ext.IsRoot():
		fields = append(fields, keyed{"NextInChain", "chainFromRaw(r.nextInChain)"})
		writes = append(writes, "NextInChain")
	case ext.IsLink():
		fields = append(fields, keyed{"NextInChain", "chainFromRaw(r.chain.next)"})
		writes = append(writes, "NextInChain")
	}
	for _, m := range pairing.Visible(members) {
		var count string
		if c, ok := pairing.CountOf(m.Name); ok {
			count = fmt.Sprintf("uint(r.%s)", rawFieldName(c))
		}
		expr, err := b.wrap(shapes[m.Name], "r."+rawFieldName(m.Name), count)
		if err != nil {
			return Func{}, nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		fields = append(fields, keyed{fieldName(m.Name), expr})
		writes = append(writes, fieldName(m.Name))
	}
	fn.Body = []string{"return " + compositeLit(host, fields)}
	return fn, writes, nil
}

// callbackInfo gives the host form of a callback info. Its Callback field
// holds a Go closure; unwrapping hands the API the callback's trampoline and
// a handle to the closure.
func (b *builder) callbackInfo(name dawngen.Name, info *dawngen.CallbackInfo) (Struct, error) {
	host, raw := typeName(name), cType(name)
	pairing := b.summary.Pairing(name)
	shapes, err := b.memberShapes(info.Members)
	if err != nil {
		return Struct{}, err
	}
	cbMember, ok := dawngen.CallbackMember(info)
	if !ok {
		return Struct{}, fmt.Errorf("%w: no callback member", dawngen.ErrMissingRequiredField)
	}
	cb := shapes[cbMember.Name]
	if cb.kind != shapeCallback {
		return Struct{}, fmt.Errorf("%w: %q is not a callback function", dawngen.ErrUnknownTypeReference, cbMember.Type)
	}
	cbField := fieldName(cbMember.Name)

	out := Struct{
		Doc: []string{
			fmt.Sprintf("%s is the host form of %s.", host, cName(name)),
			fmt.Sprintf("A nil %s leaves the API without a callback.", cbField),
		},
		Name: host,
		Raw:  raw,
	}
	visible := pairing.Visible(info.Members)
	for _, m := range visible {
		out.Fields = append(out.Fields, Field{Name: fieldName(m.Name), Type: shapes[m.Name].host})
	}
	ctors, err := b.constructors(name, visible, shapes)
	if err != nil {
		return Struct{}, err
	}
	out.Funcs = append(out.Funcs, ctors...)

	taken := localsOf(info.Members)
	recv := receiverName(host, taken)

	var keys, reads []string
	var acqs []acquisition
	var guard []keyed
	for _, m := range info.Members {
		if m.Name == cbMember.Name {
			keys = append(keys, rawFieldName(m.Name), "userdata1", "userdata2")
			acqs = append(acqs,
				acquisition{expr: trampolineName(cb.name) + "()"},
				acquisition{expr: fmt.Sprintf("C.wgpuGoHandle(C.uintptr_t(dawnrt.NewOwnedOpaque(%s.%s).IntoRaw()))", recv, cbField)},
				acquisition{expr: "nil"})
			reads = append(reads, cbField)
			continue
		}
		keys = append(keys, rawFieldName(m.Name))
		if array, ok := pairing.ArrayOf(m.Name); ok {
			expr, err := countExpr(m, recv+"."+fieldName(array))
			if err != nil {
				return Struct{}, err
			}
			acqs = append(acqs, acquisition{expr: expr})
			continue
		}
		acq, err := b.unwrap(shapes[m.Name], recv+"."+fieldName(m.Name), paramName(m.Name))
		if err != nil {
			return Struct{}, fmt.Errorf("%s: %w", m.Name, err)
		}
		acqs = append(acqs, acq)
		reads = append(reads, fieldName(m.Name))
		if mode, ok := dawngen.ModeMember(info); ok && mode.Name == m.Name && len(acq.before) == 0 {
			guard = append(guard, keyed{rawFieldName(m.Name), acq.expr})
		}
	}
	body := []string{
		fmt.Sprintf("if %s.%s == nil {\nreturn %s\n}", recv, cbField, compositeLit(raw, guard)),
	}
	body = append(body, fold(acqs, func(exprs []string) []string {
		fields := make([]keyed, len(keys))
		for i := range keys {
			fields[i] = keyed{keys[i], exprs[i]}
		}
		return []string{"return " + compositeLit(raw, fields)}
	})...)
	out.Funcs = append(out.Funcs, Func{
		Receiver: recv + " " + host,
		Name:     "unwrap",
		Params:   []Param{{Name: "scope", Type: "*dawnrt.Scope"}},
		Result:   raw,
		Body:     body,
	})
	out.unwrapped = reads

	if b.infoFromRaw.Has(name) {
		fromRaw, writes, err := b.callbackInfoFromRaw(name, info, cbMember, cb, pairing, shapes)
		if err != nil {
			return Struct{}, err
		}
		out.Funcs = append(out.Funcs, fromRaw)
		out.rewrapped = writes
	}
	return out, nil
}

// callbackInfoFromRaw reads a callback info back. The closure is only
// peeked at, so that reading it back leaves its ownership with the API.
func (b *builder) callbackInfoFromRaw(name dawngen.Name, info *dawngen.CallbackInfo, cbMember dawngen.Record, cb shape, pairing dawngen.Pairing, shapes map[dawngen.Name]shape) (Func, []string, error) {
	var fields []keyed
	var writes []string
	for _, m := range pairing.Visible(info.Members) {
		if m.Name == cbMember.Name {
			fields = append(fields, keyed{fieldName(m.Name), "callback"})
			writes = append(writes, fieldName(m.Name))
			continue
		}
		var count string
		if c, ok := pairing.CountOf(m.Name); ok {
			count = fmt.Sprintf("uint(r.%s)", rawFieldName(c))
		}
		expr, err := b.wrap(shapes[m.Name], "r."+rawFieldName(m.Name), count)
		if err != nil {
			return Func{}, nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		fields = append(fields, keyed{fieldName(m.Name), expr})
		writes = append(writes, fieldName(m.Name))
	}
	return Func{
		Name:   fromRawName(name),
		Params: []Param{{Name: "r", Type: "*" + cType(name)}},
		Result: typeName(name),
		Body: []string{
			fmt.Sprintf("callback, _ := dawnrt.Peek[%s](uintptr(r.userdata1))", cb.host),
			"return " + compositeLit(typeName(name), fields),
		},
	}, writes, nil
}
