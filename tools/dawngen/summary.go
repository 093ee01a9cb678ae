// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Options configures summarization.
type Options struct {
	// MultiUse names callback functions, in addition to
	// DefaultMultiUseCallbacks, that may be invoked repeatedly.
	MultiUse []Name
}

// Decl is a named entity that survived summarization.
type Decl struct {
	Name   Name
	Entity Entity
}

// Summary holds every decision derived from a schema. It is computed eagerly
// by Summarize and is read-only afterwards, so backends may consult it from
// several goroutines.
type Summary struct {
	Schema    *Schema
	Callbacks *CallbackRegistry

	decls       []Decl
	wrapped     NameSet
	reverseInit NameSet
	extensions  map[Name]Extensibility
	wraps       map[usageKey]bool
	pairings    map[Name]Pairing
	methods     map[Name][]Callable
	functions   map[Name]Callable
	defaults    map[memberKey]DefaultValue
	constants   map[Name]DefaultValue
}

// usageKey holds the parts of a usage that its classification depends on.
type usageKey struct {
	Type       Name
	Annotation Annotation
	Length     Length
}

func keyOf(u TypeUsage) usageKey {
	return usageKey{Type: u.Type, Annotation: u.Annotation, Length: u.Length}
}

type memberKey struct {
	Owner  Name
	Member Name
}

// Summarize computes every decision over the schema. Entities tagged for
// Emscripten are left out, as are enum and bitmask values and methods so
// tagged. The first failure is returned, attributed to its entity.
func Summarize(schema *Schema, opts Options) (*Summary, error) {
	c := NewClassifier(schema)

	wrapped, err := c.StructuresRequiringWrap()
	if err != nil {
		return nil, err
	}
	reverseInit, err := c.StructuresRequiringReverseInit()
	if err != nil {
		return nil, err
	}
	multiUse := append(slices.Clone(DefaultMultiUseCallbacks), opts.MultiUse...)
	callbacks, err := NewCallbackRegistry(schema, multiUse)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Schema:      schema,
		Callbacks:   callbacks,
		wrapped:     wrapped,
		reverseInit: reverseInit,
		extensions:  make(map[Name]Extensibility),
		wraps:       make(map[usageKey]bool),
		pairings:    make(map[Name]Pairing),
		methods:     make(map[Name][]Callable),
		functions:   make(map[Name]Callable),
		defaults:    make(map[memberKey]DefaultValue),
		constants:   make(map[Name]DefaultValue),
	}
	for _, name := range schema.Names() {
		e, _ := schema.Lookup(name)
		if e.GetTags().Has(EmscriptenTag) {
			continue
		}
		summarized, err := s.summarize(c, name, e)
		if err != nil {
			return nil, entityError(name, err)
		}
		s.decls = append(s.decls, Decl{Name: name, Entity: summarized})
	}
	return s, nil
}

func (s *Summary) summarize(c *Classifier, name Name, e Entity) (Entity, error) {
	switch e := e.(type) {
	case *Enum:
		filtered := *e
		filtered.Values = withoutEmscripten(e.Values)
		return &filtered, nil
	case *Bitmask:
		filtered := *e
		filtered.Values = withoutEmscripten(e.Values)
		return &filtered, nil
	case *Structure:
		ext, err := c.Extensibility(name)
		if err != nil {
			return nil, err
		}
		s.extensions[name] = ext
		if err := s.summarizeRecords(c, name, e.Members, true); err != nil {
			return nil, err
		}
		return e, nil
	case *Object:
		filtered := *e
		filtered.Methods = nil
		for _, m := range e.Methods {
			if m.Tags.Has(EmscriptenTag) {
				continue
			}
			callable, err := s.summarizeCallable(c, name, m.Name, m.Args, m.Returns)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Name, err)
			}
			s.methods[name] = append(s.methods[name], callable)
			filtered.Methods = append(filtered.Methods, m)
		}
		return &filtered, nil
	case *Function:
		callable, err := s.summarizeCallable(c, Name{}, name, e.Args, e.Returns)
		if err != nil {
			return nil, err
		}
		s.functions[name] = callable
		return e, nil
	case *FunctionPointer:
		if err := s.summarizeRecords(c, name, e.Args, false); err != nil {
			return nil, err
		}
		if err := s.summarizeReturn(c, e.Returns); err != nil {
			return nil, err
		}
		return e, nil
	case *CallbackFunction:
		if err := s.summarizeRecords(c, name, e.Args, false); err != nil {
			return nil, err
		}
		return e, nil
	case *CallbackInfo:
		if err := s.summarizeRecords(c, name, e.Members, true); err != nil {
			return nil, err
		}
		return e, nil
	case *Alias:
		if _, _, err := s.Schema.Resolve(e.Type); err != nil {
			return nil, err
		}
		return e, nil
	case *Constant:
		value, err := ResolveConstant(e)
		if err != nil {
			return nil, err
		}
		s.constants[name] = value
		return e, nil
	case *NativeType:
		return e, nil
	default:
		panic(fmt.Sprintf("unknown entity variant %T", e))
	}
}

func (s *Summary) summarizeRecords(c *Classifier, owner Name, records []Record, withDefaults bool) error {
	pairing, err := PairArrays(records)
	if err != nil {
		return err
	}
	s.pairings[owner] = pairing
	for _, r := range records {
		if err := s.summarizeUsage(c, r.TypeUsage); err != nil {
			return fmt.Errorf("%s: failed to classify: %w", r.Name, err)
		}
		if !withDefaults {
			continue
		}
		value, err := ResolveDefault(s.Schema, r.TypeUsage)
		if err != nil {
			return fmt.Errorf("%s: failed to resolve default: %w", r.Name, err)
		}
		s.defaults[memberKey{Owner: owner, Member: r.Name}] = value
	}
	return nil
}

func (s *Summary) summarizeCallable(c *Classifier, owner, name Name, args []Record, returns *ReturnType) (Callable, error) {
	callable, err := newCallable(s.Schema, owner, name, args, returns)
	if err != nil {
		return Callable{}, err
	}
	for _, arg := range args {
		if err := s.summarizeUsage(c, arg.TypeUsage); err != nil {
			return Callable{}, fmt.Errorf("%s: failed to classify: %w", arg.Name, err)
		}
	}
	if err := s.summarizeReturn(c, returns); err != nil {
		return Callable{}, err
	}
	return callable, nil
}

func (s *Summary) summarizeReturn(c *Classifier, returns *ReturnType) error {
	if returns == nil {
		return nil
	}
	if err := s.summarizeUsage(c, returns.Usage()); err != nil {
		return fmt.Errorf("return type: failed to classify: %w", err)
	}
	return nil
}

func (s *Summary) summarizeUsage(c *Classifier, u TypeUsage) error {
	key := keyOf(u)
	if _, ok := s.wraps[key]; ok {
		return nil
	}
	wraps, err := c.NeedsWrap(u)
	if err != nil {
		return err
	}
	s.wraps[key] = wraps
	return nil
}

func withoutEmscripten(values []EnumValue) []EnumValue {
	var filtered []EnumValue
	for _, v := range values {
		if !v.Tags.Has(EmscriptenTag) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// ResolveConstant gives the host-neutral value of a constant: one of the
// well-known limits, or a numeric literal.
func ResolveConstant(c *Constant) (DefaultValue, error) {
	if limit, ok := Limits[c.Value]; ok {
		return DefaultValue{Kind: ValueLimit, Limit: limit}, nil
	}
	if _, err := strconv.ParseInt(c.Value, 0, 64); err == nil {
		return DefaultValue{Kind: ValueLiteral, Text: c.Value}, nil
	}
	if _, err := strconv.ParseUint(c.Value, 0, 64); err == nil {
		return DefaultValue{Kind: ValueLiteral, Text: c.Value}, nil
	}
	return DefaultValue{}, fmt.Errorf("%w: %q", ErrUnknownConstant, c.Value)
}

// Decls gives the summarized entities in name order.
func (s *Summary) Decls() []Decl {
	return slices.Clone(s.decls)
}

// Lookup gives the summarized form of the named entity. Entities left out
// of the summary are not found.
func (s *Summary) Lookup(name Name) (Entity, bool) {
	i, ok := slices.BinarySearchFunc(s.decls, name, func(d Decl, n Name) int {
		return d.Name.Compare(n)
	})
	if !ok {
		return nil, false
	}
	return s.decls[i].Entity, true
}

// NeedsWrap gives the classification of a usage occurring in the schema.
func (s *Summary) NeedsWrap(u TypeUsage) bool {
	wraps, ok := s.wraps[keyOf(u)]
	if !ok {
		panic(fmt.Sprintf("usage of %q (annotation %q, length %s) was not summarized", u.Type, u.Annotation, u.Length))
	}
	return wraps
}

// IsWrapped returns whether the named structure needs a host wrapper.
func (s *Summary) IsWrapped(structure Name) bool {
	return s.wrapped.Has(structure)
}

// NeedsReverseInit returns whether the named structure is handed back by
// the API and so needs a raw-to-host constructor.
func (s *Summary) NeedsReverseInit(structure Name) bool {
	return s.reverseInit.Has(structure)
}

// StructuresRequiringWrap gives every structure needing a host wrapper.
func (s *Summary) StructuresRequiringWrap() NameSet {
	return maps.Clone(s.wrapped)
}

// StructuresRequiringReverseInit gives every structure needing a
// raw-to-host constructor.
func (s *Summary) StructuresRequiringReverseInit() NameSet {
	return maps.Clone(s.reverseInit)
}

// Extensibility gives the chaining role of the named structure.
func (s *Summary) Extensibility(structure Name) Extensibility {
	ext, ok := s.extensions[structure]
	if !ok {
		panic(fmt.Sprintf("no extensibility for %q", structure))
	}
	return ext
}

// Pairing gives the array pairing of the members or arguments of the named
// structure, callback info, callback function or function pointer.
func (s *Summary) Pairing(owner Name) Pairing {
	p, ok := s.pairings[owner]
	if !ok {
		panic(fmt.Sprintf("no pairing for %q", owner))
	}
	return p
}

// Methods gives the summarized methods of the named object in schema order.
func (s *Summary) Methods(object Name) []Callable {
	return slices.Clone(s.methods[object])
}

// Function gives the summarized free function.
func (s *Summary) Function(name Name) Callable {
	f, ok := s.functions[name]
	if !ok {
		panic(fmt.Sprintf("no function %q", name))
	}
	return f
}

// Default gives the resolved default of a structure or callback info
// member.
func (s *Summary) Default(owner, member Name) DefaultValue {
	d, ok := s.defaults[memberKey{Owner: owner, Member: member}]
	if !ok {
		panic(fmt.Sprintf("no default for %s.%s", owner, member))
	}
	return d
}

// Constant gives the resolved value of the named constant.
func (s *Summary) Constant(name Name) DefaultValue {
	v, ok := s.constants[name]
	if !ok {
		panic(fmt.Sprintf("no constant %q", name))
	}
	return v
}
