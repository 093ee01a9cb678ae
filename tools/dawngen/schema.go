// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dawngen contains the schema model and the decisions shared by the
// various binding backends: which usages need a host wrapper, how structures
// chain, how defaults resolve, how array lengths pair and which callbacks
// outlive a single invocation.
package dawngen

import (
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Category is the schema's discriminator for an entity record.
type Category string

const (
	CategoryEnum             Category = "enum"
	CategoryBitmask          Category = "bitmask"
	CategoryStructure        Category = "structure"
	CategoryObject           Category = "object"
	CategoryNative           Category = "native"
	CategoryFunction         Category = "function"
	CategoryFunctionPointer  Category = "function pointer"
	CategoryCallbackFunction Category = "callback function"
	CategoryCallbackInfo     Category = "callback info"
	CategoryAlias            Category = "typedef"
	CategoryConstant         Category = "constant"
)

// Entity is a schema record. The set of implementations is closed; switches
// over it are expected to handle every variant.
type Entity interface {
	Category() Category
	GetTags() Tags
	isEntity()
}

var _ = []Entity{
	(*Enum)(nil),
	(*Bitmask)(nil),
	(*Structure)(nil),
	(*Object)(nil),
	(*NativeType)(nil),
	(*Function)(nil),
	(*FunctionPointer)(nil),
	(*CallbackFunction)(nil),
	(*CallbackInfo)(nil),
	(*Alias)(nil),
	(*Constant)(nil),
}

// Tags are free-form labels attached to records, e.g. "dawn" or "emscripten".
type Tags []string

func (tags Tags) Has(tag string) bool {
	return slices.Contains(tags, tag)
}

// EmscriptenTag marks records that only exist in the Emscripten flavor of the
// API and never appear in the native header.
const EmscriptenTag = "emscripten"

// Annotation gives the pointer-ness of a usage.
type Annotation string

const (
	AnnotationNone       Annotation = ""
	AnnotationMut        Annotation = "*"
	AnnotationConst      Annotation = "const*"
	AnnotationConstConst Annotation = "const*const*"
)

// IsPointer returns whether the annotation denotes any pointer.
func (a Annotation) IsPointer() bool {
	return a != AnnotationNone
}

// LengthKind distinguishes the shapes of an array length.
type LengthKind int

const (
	LengthNone LengthKind = iota
	LengthFixed
	LengthNamed
)

// Length is an array length: absent, a fixed element count, or the name of a
// sibling member or argument holding the count.
type Length struct {
	Kind  LengthKind
	Fixed int
	Named Name
}

func FixedLength(n int) Length  { return Length{Kind: LengthFixed, Fixed: n} }
func NamedLength(n Name) Length { return Length{Kind: LengthNamed, Named: n} }

func (l Length) IsNone() bool  { return l.Kind == LengthNone }
func (l Length) IsFixed() bool { return l.Kind == LengthFixed }
func (l Length) IsNamed() bool { return l.Kind == LengthNamed }

func (l Length) String() string {
	switch l.Kind {
	case LengthFixed:
		return strconv.Itoa(l.Fixed)
	case LengthNamed:
		return strconv.Quote(l.Named.String())
	default:
		return "none"
	}
}

func (l *Length) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*l = FixedLength(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("length must be a string or an integer: %s", b)
	}
	// A NUL-terminated string carries no separate length.
	if s == "strlen" {
		*l = Length{}
		return nil
	}
	*l = NamedLength(NewName(s))
	return nil
}

// DefaultKind distinguishes the shapes of an explicit default.
type DefaultKind int

const (
	DefaultName DefaultKind = iota
	DefaultInt
	DefaultFloat
	DefaultBool
)

// DefaultSpec is an explicit default value as written in the schema.
type DefaultSpec struct {
	Kind  DefaultKind
	Name  Name
	Int   int64
	Float float64
	Bool  bool
}

// NullPointer is the named default denoting a null pointer.
const NullPointer = "nullptr"

// IsNullPointer returns whether the default is the null pointer sentinel.
func (d *DefaultSpec) IsNullPointer() bool {
	return d != nil && d.Kind == DefaultName && d.Name.String() == NullPointer
}

func (d *DefaultSpec) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = DefaultSpec{Kind: DefaultName, Name: NewName(s)}
		return nil
	}
	var boolean bool
	if err := json.Unmarshal(b, &boolean); err == nil {
		*d = DefaultSpec{Kind: DefaultBool, Bool: boolean}
		return nil
	}
	var i int64
	if err := json.Unmarshal(b, &i); err == nil {
		*d = DefaultSpec{Kind: DefaultInt, Int: i}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = DefaultSpec{Kind: DefaultFloat, Float: f}
		return nil
	}
	return fmt.Errorf("unknown default value: %s", b)
}

// TypeUsage describes one use of a type: as a structure member, a function
// argument or a return value. Classification and marshaling are defined
// over this single shape.
type TypeUsage struct {
	Type       Name
	Annotation Annotation
	Length     Length
	Optional   bool
	Default    *DefaultSpec
}

// Nullable returns whether the usage may be absent, either because it is
// flagged optional or because it defaults to a null pointer.
func (u TypeUsage) Nullable() bool {
	return u.Optional || u.Default.IsNullPointer()
}

// Record is a named usage: a structure member or a function argument.
type Record struct {
	Name Name
	TypeUsage
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name       *Name        `json:"name"`
		Type       *Name        `json:"type"`
		Annotation Annotation   `json:"annotation"`
		Length     Length       `json:"length"`
		Optional   bool         `json:"optional"`
		Default    *DefaultSpec `json:"default"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Name == nil {
		return fmt.Errorf("%w: record has no name", ErrMissingRequiredField)
	}
	if raw.Type == nil {
		return fmt.Errorf("%w: %q has no type", ErrMissingRequiredField, *raw.Name)
	}
	*r = Record{
		Name: *raw.Name,
		TypeUsage: TypeUsage{
			Type:       *raw.Type,
			Annotation: raw.Annotation,
			Length:     raw.Length,
			Optional:   raw.Optional || raw.Default.IsNullPointer(),
			Default:    raw.Default,
		},
	}
	return nil
}

// ReturnType is the result of a function or method. It may be written as a
// bare type name or as an object with a type and an optional flag.
type ReturnType struct {
	Type     Name
	Optional bool
}

// Usage gives the return type as a usage.
func (r ReturnType) Usage() TypeUsage {
	return TypeUsage{Type: r.Type, Optional: r.Optional}
}

func (r *ReturnType) UnmarshalJSON(b []byte) error {
	var name Name
	if err := json.Unmarshal(b, &name); err == nil {
		*r = ReturnType{Type: name}
		return nil
	}
	var desc struct {
		Type     *Name `json:"type"`
		Optional bool  `json:"optional"`
	}
	if err := json.Unmarshal(b, &desc); err != nil {
		return err
	}
	if desc.Type == nil {
		return fmt.Errorf("%w: return type has no type", ErrMissingRequiredField)
	}
	*r = ReturnType{Type: *desc.Type, Optional: desc.Optional}
	return nil
}

// EnumValue is a member of an enum or a bitmask.
type EnumValue struct {
	Name  Name   `json:"name"`
	Value uint64 `json:"value"`
	Tags  Tags   `json:"tags"`
}

// Enum represents an enumeration.
type Enum struct {
	Values                []EnumValue `json:"values"`
	Tags                  Tags        `json:"tags"`
	EmscriptenNoEnumTable bool        `json:"emscripten_no_enum_table"`
}

// Bitmask represents a set of flags.
type Bitmask struct {
	Values []EnumValue `json:"values"`
	Tags   Tags        `json:"tags"`
}

// Direction tells whether a structure's chain carries data into the API, out
// of it, or is absent.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
)

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch Direction(s) {
		case DirectionIn, DirectionOut:
			*d = Direction(s)
			return nil
		}
		return fmt.Errorf("unknown chain direction %q", s)
	}
	var enabled bool
	if err := json.Unmarshal(b, &enabled); err != nil || enabled {
		return fmt.Errorf("unknown chain direction: %s", b)
	}
	*d = DirectionNone
	return nil
}

// Structure represents a plain C structure, possibly taking part in an
// extension chain.
type Structure struct {
	Extensible Direction
	Chained    Direction
	ChainRoots []Name
	Members    []Record
	Tags       Tags
}

// Object represents a reference-counted handle type and its methods.
type Object struct {
	Methods    []Method
	NoAutolock bool
	Tags       Tags
}

// Method is a function bound to an object.
type Method struct {
	Name    Name        `json:"name"`
	Args    []Record    `json:"args"`
	Returns *ReturnType `json:"returns"`
	Tags    Tags        `json:"tags"`
}

// NativeType represents a C scalar or pointer type such as "uint32_t".
type NativeType struct {
	IsPointer         bool
	IsSigned          bool
	IsNullable        bool
	IsNullablePointer bool
	WasmType          string
}

// Function is a free function.
type Function struct {
	Args    []Record
	Returns *ReturnType
	Tags    Tags
}

// FunctionPointer is a raw C function pointer type.
type FunctionPointer struct {
	Args    []Record
	Returns *ReturnType
	Tags    Tags
}

// CallbackFunction is the signature of an asynchronous callback. The raw
// signature is Args followed by two opaque userdata pointers.
type CallbackFunction struct {
	Args []Record
	Tags Tags
	// Use optionally pins the callback's identity in the schema itself.
	Use CallbackIdentity
}

// CallbackInfo bundles a callback function with its invocation mode.
type CallbackInfo struct {
	Members []Record
	Tags    Tags
}

// Alias is a typedef of another type.
type Alias struct {
	Type Name
	Tags Tags
}

// Constant is a named value given by a C expression, e.g. "UINT32_MAX".
type Constant struct {
	Type     Name
	Value    string
	CppValue string
}

func (*Enum) Category() Category             { return CategoryEnum }
func (*Bitmask) Category() Category          { return CategoryBitmask }
func (*Structure) Category() Category        { return CategoryStructure }
func (*Object) Category() Category           { return CategoryObject }
func (*NativeType) Category() Category       { return CategoryNative }
func (*Function) Category() Category         { return CategoryFunction }
func (*FunctionPointer) Category() Category  { return CategoryFunctionPointer }
func (*CallbackFunction) Category() Category { return CategoryCallbackFunction }
func (*CallbackInfo) Category() Category     { return CategoryCallbackInfo }
func (*Alias) Category() Category            { return CategoryAlias }
func (*Constant) Category() Category         { return CategoryConstant }

func (e *Enum) GetTags() Tags             { return e.Tags }
func (b *Bitmask) GetTags() Tags          { return b.Tags }
func (s *Structure) GetTags() Tags        { return s.Tags }
func (o *Object) GetTags() Tags           { return o.Tags }
func (*NativeType) GetTags() Tags         { return nil }
func (f *Function) GetTags() Tags         { return f.Tags }
func (f *FunctionPointer) GetTags() Tags  { return f.Tags }
func (c *CallbackFunction) GetTags() Tags { return c.Tags }
func (c *CallbackInfo) GetTags() Tags     { return c.Tags }
func (a *Alias) GetTags() Tags            { return a.Tags }
func (*Constant) GetTags() Tags           { return nil }

func (*Enum) isEntity()             {}
func (*Bitmask) isEntity()          {}
func (*Structure) isEntity()        {}
func (*Object) isEntity()           {}
func (*NativeType) isEntity()       {}
func (*Function) isEntity()         {}
func (*FunctionPointer) isEntity()  {}
func (*CallbackFunction) isEntity() {}
func (*CallbackInfo) isEntity()     {}
func (*Alias) isEntity()            {}
func (*Constant) isEntity()         {}

// StringView is the structure that the API uses for sized, non-owning
// strings. It is given a host string type instead of a generated structure.
var StringView = NewName("string view")

// IsStringView returns whether the name is the string view structure.
func IsStringView(name Name) bool {
	return name == StringView
}

// Schema is the symbol table of an API description. It is immutable once
// built.
type Schema struct {
	entities map[Name]Entity
}

// NewSchema returns a schema over a copy of the given entities.
func NewSchema(entities map[Name]Entity) *Schema {
	return &Schema{entities: maps.Clone(entities)}
}

// Lookup returns the entity with the given name.
func (s *Schema) Lookup(name Name) (Entity, bool) {
	e, ok := s.entities[name]
	return e, ok
}

// Len gives the number of entities.
func (s *Schema) Len() int {
	return len(s.entities)
}

// Names gives every entity name in sorted order.
func (s *Schema) Names() []Name {
	names := maps.Keys(s.entities)
	// Sort to account for map access nondeterminism.
	slices.SortFunc(names, Name.Compare)
	return names
}

// Resolve follows aliases until it reaches a non-alias entity. It returns
// the name of that entity alongside it.
func (s *Schema) Resolve(name Name) (Name, Entity, error) {
	seen := map[Name]struct{}{}
	for {
		e, ok := s.entities[name]
		if !ok {
			return name, nil, unknownType(name)
		}
		alias, ok := e.(*Alias)
		if !ok {
			return name, e, nil
		}
		if _, ok := seen[name]; ok {
			return name, nil, fmt.Errorf("%w: alias cycle through %q", ErrUnknownTypeReference, name)
		}
		seen[name] = struct{}{}
		name = alias.Type
	}
}
