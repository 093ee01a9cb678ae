// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package golang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-cz/textcase"

	"go.webgpu.dev/dawn/tools/dawngen"
)

// Bucket is a category of declarations, generated into a file of its own.
type Bucket string

const (
	BucketEnums             Bucket = "Enums"
	BucketBitmasks          Bucket = "Bitmasks"
	BucketCallbackFunctions Bucket = "CallbackFunctions"
	BucketCallbackInfo      Bucket = "CallbackInfo"
	BucketFunctionPointers  Bucket = "FunctionPointers"
	BucketObjects           Bucket = "Objects"
	BucketStructures        Bucket = "Structures"
	BucketConstants         Bucket = "Constants"
	BucketFunctions         Bucket = "Functions"
	BucketAliases           Bucket = "Aliases"
)

// Buckets lists every bucket in output order.
var Buckets = []Bucket{
	BucketEnums,
	BucketBitmasks,
	BucketCallbackFunctions,
	BucketCallbackInfo,
	BucketFunctionPointers,
	BucketObjects,
	BucketStructures,
	BucketConstants,
	BucketFunctions,
	BucketAliases,
}

// Filename gives the name of the bucket's file, e.g. "callback_info.go".
func (b Bucket) Filename() string {
	return textcase.SnakeCase(string(b)) + ".go"
}

// Param is a parameter of a generated function.
type Param struct {
	Name string
	Type string
}

// Func is a generated function or method. Each element of Body is one
// statement, possibly spanning lines.
type Func struct {
	Doc       []string
	Directive string
	Receiver  string
	Name      string
	Params    []Param
	Result    string
	Body      []string
}

type Field struct {
	Name string
	Type string
}

// Member is an enum or bitmask constant.
type Member struct {
	Name  string
	Value string
}

// Enum is an enum or a bitmask: an alias of the raw type plus its members.
type Enum struct {
	Doc     []string
	Name    string
	Raw     string
	Members []Member
}

// Struct is the host form of a structure or a callback info.
type Struct struct {
	Doc    []string
	Name   string
	Raw    string
	Fields []Field
	// SizeGuard asks for a compile-time assertion that the host and raw forms
	// have the same size.
	SizeGuard bool
	Funcs     []Func

	// The host fields that unwrap reads and that the raw-to-host constructor
	// writes.
	unwrapped []string
	rewrapped []string
}

// Object is a handle type and its methods.
type Object struct {
	Doc   []string
	Name  string
	Raw   string
	Funcs []Func
}

// Callback is a callback function type along with its trampoline.
type Callback struct {
	Doc    []string
	Name   string
	Params []Param
	Funcs  []Func
}

// Alias is a type alias: of the raw type for function pointers and of the
// target's host type for typedefs.
type Alias struct {
	Doc    []string
	Name   string
	Target string
}

type Const struct {
	Name  string
	Type  string
	Value string
	// Var is set for values that are not Go constants, like NaN.
	Var bool
}

// ChainCase reads one kind of link back from a raw chain.
type ChainCase struct {
	SType   string
	Raw     string
	FromRaw string
}

// File is everything generated into one bucket's file.
type File struct {
	Bucket        Bucket
	Package       string
	Header        string
	RuntimeImport string
	// Externs are C declarations added to the cgo preamble.
	Externs []string

	Enums             []Enum
	Bitmasks          []Enum
	CallbackFunctions []Callback
	CallbackInfo      []Struct
	FunctionPointers  []Alias
	Objects           []Object
	Structures        []Struct
	Constants         []Const
	Functions         []Func
	Aliases           []Alias

	// Chained is set when structures take part in chaining. ChainCases then
	// lists the links that can be read back from a raw chain.
	Chained    bool
	ChainCases []ChainCase
}

// Filename gives the name of the generated file.
func (f *File) Filename() string {
	return f.Bucket.Filename()
}

func (f *File) empty() bool {
	n := len(f.Enums) + len(f.Bitmasks) + len(f.CallbackFunctions) + len(f.CallbackInfo) +
		len(f.FunctionPointers) + len(f.Objects) + len(f.Structures) + len(f.Constants) +
		len(f.Functions) + len(f.Aliases)
	return n == 0 && !f.Chained
}

var sTypeName = dawngen.NewName("s type")

// builder turns a summary into the per-bucket files.
type builder struct {
	summary *dawngen.Summary
	opts    Options
	files   map[Bucket]*File

	// infoFromRaw holds the callback infos carried by structures that are
	// read back, which need a raw-to-host constructor of their own.
	infoFromRaw dawngen.NameSet
	links       []dawngen.Name
}

func newBuilder(summary *dawngen.Summary, opts Options) *builder {
	return &builder{
		summary:     summary,
		opts:        opts,
		files:       make(map[Bucket]*File),
		infoFromRaw: make(dawngen.NameSet),
	}
}

// build gives the non-empty files in bucket order. The first failure is
// attributed to its entity.
func build(summary *dawngen.Summary, opts Options) ([]*File, error) {
	b := newBuilder(summary, opts)
	if err := b.findInfoFromRaw(); err != nil {
		return nil, err
	}
	for _, d := range summary.Decls() {
		if err := b.decl(d.Name, d.Entity); err != nil {
			return nil, &dawngen.EntityError{Entity: d.Name, Err: err}
		}
	}
	if err := b.chains(); err != nil {
		return nil, &dawngen.EntityError{Entity: sTypeName, Err: err}
	}

	var files []*File
	for _, bucket := range Buckets {
		if f, ok := b.files[bucket]; ok && !f.empty() {
			files = append(files, f)
		}
	}
	return files, nil
}

func (b *builder) file(bucket Bucket) *File {
	f, ok := b.files[bucket]
	if !ok {
		f = &File{
			Bucket:        bucket,
			Package:       b.opts.Package,
			Header:        b.opts.Header,
			RuntimeImport: b.opts.RuntimeImport,
		}
		b.files[bucket] = f
	}
	return f
}

func (b *builder) findInfoFromRaw() error {
	for _, name := range b.summary.StructuresRequiringReverseInit().Sorted() {
		e, ok := b.summary.Lookup(name)
		if !ok {
			continue
		}
		s, ok := e.(*dawngen.Structure)
		if !ok {
			continue
		}
		for _, m := range s.Members {
			target, e, err := b.summary.Schema.Resolve(m.Type)
			if err != nil {
				return &dawngen.EntityError{Entity: name, Err: fmt.Errorf("%s: %w", m.Name, err)}
			}
			if _, ok := e.(*dawngen.CallbackInfo); ok {
				b.infoFromRaw.Add(target)
			}
		}
	}
	return nil
}

func (b *builder) decl(name dawngen.Name, e dawngen.Entity) error {
	switch e := e.(type) {
	case *dawngen.Enum:
		f := b.file(BucketEnums)
		f.Enums = append(f.Enums, enumDecl(name, e.Values, false))
	case *dawngen.Bitmask:
		f := b.file(BucketBitmasks)
		f.Bitmasks = append(f.Bitmasks, enumDecl(name, e.Values, true))
	case *dawngen.Structure:
		// Its host form is string.
		if dawngen.IsStringView(name) {
			return nil
		}
		s, err := b.structure(name, e)
		if err != nil {
			return err
		}
		f := b.file(BucketStructures)
		f.Structures = append(f.Structures, s)
	case *dawngen.CallbackInfo:
		s, err := b.callbackInfo(name, e)
		if err != nil {
			return err
		}
		f := b.file(BucketCallbackInfo)
		f.CallbackInfo = append(f.CallbackInfo, s)
	case *dawngen.CallbackFunction:
		cb, extern, err := b.callbackFunction(name, e)
		if err != nil {
			return err
		}
		f := b.file(BucketCallbackFunctions)
		f.CallbackFunctions = append(f.CallbackFunctions, cb)
		f.Externs = append(f.Externs, extern)
	case *dawngen.Object:
		o, err := b.object(name)
		if err != nil {
			return err
		}
		f := b.file(BucketObjects)
		f.Objects = append(f.Objects, o)
	case *dawngen.Function:
		c := b.summary.Function(name)
		fn, err := b.callable(c, "", name.UpperIdentifier())
		if err != nil {
			return err
		}
		f := b.file(BucketFunctions)
		f.Functions = append(f.Functions, fn)
	case *dawngen.FunctionPointer:
		f := b.file(BucketFunctionPointers)
		f.FunctionPointers = append(f.FunctionPointers, Alias{
			Doc:    []string{fmt.Sprintf("%s is the raw %s function pointer.", typeName(name), cName(name))},
			Name:   typeName(name),
			Target: cType(name),
		})
	case *dawngen.Alias:
		sh, err := b.shapeOf(dawngen.TypeUsage{Type: e.Type})
		if err != nil {
			return err
		}
		f := b.file(BucketAliases)
		f.Aliases = append(f.Aliases, Alias{Name: typeName(name), Target: sh.host})
	case *dawngen.Constant:
		c, err := b.constant(name, e)
		if err != nil {
			return err
		}
		f := b.file(BucketConstants)
		f.Constants = append(f.Constants, c)
	case *dawngen.NativeType:
	default:
		panic(fmt.Sprintf("unknown entity variant %T", e))
	}
	return nil
}

func enumDecl(name dawngen.Name, values []dawngen.EnumValue, bitmask bool) Enum {
	e := Enum{
		Doc:  []string{fmt.Sprintf("%s is %s.", typeName(name), cName(name))},
		Name: typeName(name),
		Raw:  cType(name),
	}
	for _, v := range values {
		value := cEnumerator(name, v.Name)
		if bitmask {
			// The C flags are static variables rather than constants.
			value = fmt.Sprintf("%#x", v.Value)
		}
		e.Members = append(e.Members, Member{Name: memberConst(name, v.Name), Value: value})
	}
	return e
}

// sTypeEnumerator gives the raw tag of a link.
func (b *builder) sTypeEnumerator(tag dawngen.Name) (string, error) {
	e, ok := b.summary.Lookup(sTypeName)
	if !ok {
		return "", fmt.Errorf("%w: %q", dawngen.ErrUnknownTypeReference, sTypeName)
	}
	enum, ok := e.(*dawngen.Enum)
	if !ok {
		return "", fmt.Errorf("%w: %q is a %s, not an enum", dawngen.ErrUnknownTypeReference, sTypeName, e.Category())
	}
	for _, v := range enum.Values {
		if v.Name == tag {
			return cEnumerator(sTypeName, tag), nil
		}
	}
	return "", fmt.Errorf("%w: %q of %q", dawngen.ErrUnknownEnumValue, tag, sTypeName)
}

// chains adds the chain interface and its raw reader to the structures'
// file when any structure takes part in chaining.
func (b *builder) chains() error {
	f, ok := b.files[BucketStructures]
	if !ok {
		return nil
	}
	for _, d := range b.summary.Decls() {
		if _, ok := d.Entity.(*dawngen.Structure); !ok || dawngen.IsStringView(d.Name) {
			continue
		}
		if !b.summary.Extensibility(d.Name).IsNone() {
			f.Chained = true
			break
		}
	}
	if !f.Chained {
		return nil
	}
	if e, ok := b.summary.Lookup(sTypeName); !ok {
		return fmt.Errorf("%w: %q", dawngen.ErrUnknownTypeReference, sTypeName)
	} else if _, ok := e.(*dawngen.Enum); !ok {
		return fmt.Errorf("%w: %q is a %s, not an enum", dawngen.ErrUnknownTypeReference, sTypeName, e.Category())
	}
	for _, link := range b.links {
		if !b.summary.NeedsReverseInit(link) {
			continue
		}
		sType, err := b.sTypeEnumerator(link)
		if err != nil {
			return err
		}
		f.ChainCases = append(f.ChainCases, ChainCase{
			SType:   sType,
			Raw:     cType(link),
			FromRaw: fromRawName(link),
		})
	}
	return nil
}

//
// Values.
//

// constant gives the declaration of a schema constant. NaN is not a Go
// constant, so it becomes a variable.
func (b *builder) constant(name dawngen.Name, c *dawngen.Constant) (Const, error) {
	sh, err := b.shapeOf(dawngen.TypeUsage{Type: c.Type})
	if err != nil {
		return Const{}, err
	}
	if sh.kind != shapeScalar && sh.kind != shapeAlias {
		return Const{}, fmt.Errorf("%w: constant of type %q", dawngen.ErrUnhandledNativeType, c.Type)
	}
	out := Const{Name: typeName(name), Type: sh.host}
	v := b.summary.Constant(name)
	switch v.Kind {
	case dawngen.ValueLimit:
		out.Value, out.Var = limitValue(v.Limit, sh.host)
	case dawngen.ValueLiteral:
		out.Value = v.Text
	default:
		panic(fmt.Sprintf("constant %q resolved to a %s", name, v.Kind))
	}
	return out, nil
}

func limitValue(l dawngen.Limit, host string) (string, bool) {
	switch l {
	case dawngen.LimitUint64Max:
		return "math.MaxUint64", false
	case dawngen.LimitUint32Max:
		return "math.MaxUint32", false
	case dawngen.LimitSizeMax:
		return "math.MaxUint", false
	case dawngen.LimitNaN:
		return fmt.Sprintf("%s(math.NaN())", host), true
	default:
		panic(fmt.Sprintf("unknown limit %q", l))
	}
}

// defaultExpr renders the default of a member for a host field of type
// host. It is empty when the Go zero value already is the default.
func (b *builder) defaultExpr(v dawngen.DefaultValue, host string) (string, error) {
	switch v.Kind {
	case dawngen.ValueNone, dawngen.ValueZero, dawngen.ValueNull, dawngen.ValueEmptyList,
		dawngen.ValueEmptyString, dawngen.ValueEmptyBitmask:
		return "", nil
	case dawngen.ValueBool:
		if v.Bool {
			return "true", nil
		}
		return "", nil
	case dawngen.ValueLiteral:
		return numericLiteral(v.Text)
	case dawngen.ValueFloat:
		if f, err := strconv.ParseFloat(v.Text, 64); err == nil && f == 0 {
			return "", nil
		}
		return v.Text, nil
	case dawngen.ValueLimit:
		if v.Constant.IsEmpty() {
			expr, _ := limitValue(v.Limit, host)
			return expr, nil
		}
		e, ok := b.summary.Lookup(v.Constant)
		if !ok {
			return "", fmt.Errorf("%w: %q", dawngen.ErrUnknownConstant, v.Constant)
		}
		c, ok := e.(*dawngen.Constant)
		if !ok {
			return "", fmt.Errorf("%w: %q is a %s", dawngen.ErrUnknownConstant, v.Constant, e.Category())
		}
		sh, err := b.shapeOf(dawngen.TypeUsage{Type: c.Type})
		if err != nil {
			return "", err
		}
		expr := typeName(v.Constant)
		if sh.host != host {
			expr = fmt.Sprintf("%s(%s)", host, expr)
		}
		return expr, nil
	case dawngen.ValueEnumMember, dawngen.ValueBitmaskMember:
		return memberConst(v.Type, v.Member), nil
	case dawngen.ValueZeroStruct:
		return fmt.Sprintf("%s{%s: %s}", typeName(v.Type), fieldName(v.Field), memberConst(v.FieldType, v.Member)), nil
	default:
		panic(fmt.Sprintf("unknown default kind %q", v.Kind))
	}
}

// numericLiteral passes numbers through verbatim. Anything else would name
// something the generated code cannot see.
func numericLiteral(text string) (string, error) {
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		if i == 0 {
			return "", nil
		}
		return text, nil
	}
	if _, err := strconv.ParseUint(text, 0, 64); err == nil {
		return text, nil
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return text, nil
	}
	return "", fmt.Errorf("%w: default %q is not a number", dawngen.ErrUnknownConstant, text)
}

//
// Rendering helpers.
//

type keyed struct {
	key   string
	value string
}

func compositeLit(typ string, fields []keyed) string {
	if len(fields) == 0 {
		return typ + "{}"
	}
	var s strings.Builder
	s.WriteString(typ)
	s.WriteString("{\n")
	for _, f := range fields {
		fmt.Fprintf(&s, "%s: %s,\n", f.key, f.value)
	}
	s.WriteString("}")
	return s.String()
}

// receiverName picks a receiver that no parameter or local shadows.
func receiverName(host string, taken map[string]bool) string {
	for _, candidate := range []string{strings.ToLower(host[:1]), lowerFirst(host)} {
		if taken[candidate] {
			continue
		}
		if _, ok := goKeywords[candidate]; ok {
			continue
		}
		if _, ok := reservedIdentifiers[candidate]; ok {
			continue
		}
		return candidate
	}
	return lowerFirst(host) + "_"
}
