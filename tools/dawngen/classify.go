// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NameSet is a set of names.
type NameSet map[Name]struct{}

func (s NameSet) Add(name Name) {
	s[name] = struct{}{}
}

func (s NameSet) Has(name Name) bool {
	_, ok := s[name]
	return ok
}

// Sorted gives the members of the set in order.
func (s NameSet) Sorted() []Name {
	names := maps.Keys(s)
	// Sort to account for map access nondeterminism.
	slices.SortFunc(names, Name.Compare)
	return names
}

// ExtensibilityKind is the role a structure plays in an extension chain.
type ExtensibilityKind string

const (
	// ExtensibilityNone structures take no part in chaining.
	ExtensibilityNone ExtensibilityKind = "none"

	// ExtensibilityRoot structures carry a chain pointer to which links may
	// be attached.
	ExtensibilityRoot ExtensibilityKind = "root"

	// ExtensibilityLink structures may be threaded into a root's chain. They
	// lead with a tagged header.
	ExtensibilityLink ExtensibilityKind = "link"
)

// Extensibility describes a structure's role in chaining.
type Extensibility struct {
	Kind ExtensibilityKind

	// Tag is the discriminator written into a link's header: the link's own
	// name. Empty for other kinds.
	Tag Name

	// Direction is the direction of the chain.
	Direction Direction
}

func (e Extensibility) IsNone() bool { return e.Kind == ExtensibilityNone }
func (e Extensibility) IsRoot() bool { return e.Kind == ExtensibilityRoot }
func (e Extensibility) IsLink() bool { return e.Kind == ExtensibilityLink }

func (e Extensibility) String() string {
	if e.IsLink() {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Tag)
	}
	return string(e.Kind)
}

// Classifier decides, for every use of a type, whether the raw C shape can
// be used as-is or needs a host wrapper. Decisions are memoized. A
// Classifier is not safe for concurrent use; the Summary that owns one
// computes everything up front.
type Classifier struct {
	schema *Schema

	structWraps map[Name]bool
	// pending holds the tentative decisions of the structures being
	// classified together.
	pending     map[Name]bool
	extensions  map[Name]Extensibility
}

func NewClassifier(schema *Schema) *Classifier {
	return &Classifier{
		schema:      schema,
		structWraps: make(map[Name]bool),
		pending:     make(map[Name]bool),
		extensions:  make(map[Name]Extensibility),
	}
}

// Schema gives the classified schema.
func (c *Classifier) Schema() *Schema {
	return c.schema
}

// NeedsWrap returns whether the usage needs a host wrapper.
func (c *Classifier) NeedsWrap(u TypeUsage) (bool, error) {
	name, e, err := c.schema.Resolve(u.Type)
	if err != nil {
		return false, err
	}

	switch e := e.(type) {
	case *NativeType:
		switch {
		case name == nativeBool:
			return true, nil
		case !u.Length.IsNone():
			// Byte spans and host slices.
			return true, nil
		case name == nativeChar && u.Annotation == AnnotationConstConst:
			// Host string lists.
			return true, nil
		}
		return false, nil
	case *CallbackFunction, *CallbackInfo:
		return true, nil
	case *Structure:
		wraps, err := c.StructureNeedsWrap(name)
		if err != nil {
			return false, err
		}
		// A const pointer to a raw-compatible structure still needs a
		// scoped address.
		return wraps || u.Annotation == AnnotationConst, nil
	case *Object, *Enum, *Bitmask:
		return u.Annotation == AnnotationConst && !u.Length.IsNone(), nil
	case *FunctionPointer:
		return false, nil
	case *Function, *Constant:
		return false, fmt.Errorf("%w: %q is a %s, not a type", ErrUnknownTypeReference, u.Type, e.Category())
	default:
		panic(fmt.Sprintf("unknown entity variant %T", e))
	}
}

// StructureNeedsWrap returns whether the named structure needs a host
// wrapper: it is the string view, it takes part in chaining, one of its
// members is a pointer or one of its members needs wrapping.
//
// Structures may reach each other through pointers, so every structure
// reachable from name is decided together: all start out as not wrapping
// and are re-evaluated until no decision changes. The result does not
// depend on the order in which structures are asked about.
func (c *Classifier) StructureNeedsWrap(name Name) (bool, error) {
	if wraps, ok := c.structWraps[name]; ok {
		return wraps, nil
	}
	if wraps, ok := c.pending[name]; ok {
		return wraps, nil
	}
	if _, err := c.structure(name); err != nil {
		return false, err
	}

	group := c.reachableStructures(name)
	for _, n := range group {
		c.pending[n] = false
	}
	defer func() {
		for _, n := range group {
			delete(c.pending, n)
		}
	}()
	for changed := true; changed; {
		changed = false
		for _, n := range group {
			if c.pending[n] {
				continue
			}
			wraps, err := c.structureWraps(n)
			if err != nil {
				return false, err
			}
			if wraps {
				c.pending[n] = true
				changed = true
			}
		}
	}
	for _, n := range group {
		c.structWraps[n] = c.pending[n]
	}
	return c.structWraps[name], nil
}

// structureWraps evaluates one structure against the current decisions of
// the structures it refers to.
func (c *Classifier) structureWraps(name Name) (bool, error) {
	s, err := c.structure(name)
	if err != nil {
		return false, err
	}
	ext, err := c.Extensibility(name)
	if err != nil {
		return false, err
	}
	if IsStringView(name) || !ext.IsNone() {
		return true, nil
	}
	for _, m := range s.Members {
		if c.holdsPointer(m.TypeUsage) {
			return true, nil
		}
		w, err := c.NeedsWrap(m.TypeUsage)
		if err != nil {
			return false, fmt.Errorf("%s.%s: failed to classify: %w", name, m.Name, err)
		}
		if w {
			return true, nil
		}
	}
	return false, nil
}

// holdsPointer returns whether a member of the usage stores an address.
// Host addresses stored in raw memory must be pinned, which only the
// wrapper's unwrap does; a layout-identical structure is passed in place.
func (c *Classifier) holdsPointer(u TypeUsage) bool {
	if u.Annotation.IsPointer() {
		return true
	}
	name, e, err := c.schema.Resolve(u.Type)
	if err != nil {
		return false
	}
	nt, ok := e.(*NativeType)
	return ok && (nt.IsPointer || strings.Contains(name.String(), "*"))
}

// reachableStructures gives name and the undecided structures reachable
// from its members, in discovery order. Unresolvable members are left for
// structureWraps to report.
func (c *Classifier) reachableStructures(name Name) []Name {
	seen := map[Name]bool{name: true}
	group := []Name{name}
	for i := 0; i < len(group); i++ {
		s, err := c.structure(group[i])
		if err != nil {
			continue
		}
		for _, m := range s.Members {
			target, e, err := c.schema.Resolve(m.Type)
			if err != nil {
				continue
			}
			if _, ok := e.(*Structure); !ok || seen[target] {
				continue
			}
			seen[target] = true
			if _, done := c.structWraps[target]; !done {
				group = append(group, target)
			}
		}
	}
	return group
}

// Extensibility gives the chaining role of the named structure.
func (c *Classifier) Extensibility(name Name) (Extensibility, error) {
	if ext, ok := c.extensions[name]; ok {
		return ext, nil
	}
	s, err := c.structure(name)
	if err != nil {
		return Extensibility{}, err
	}

	var ext Extensibility
	switch {
	case s.Extensible != DirectionNone:
		ext = Extensibility{Kind: ExtensibilityRoot, Direction: s.Extensible}
	case s.Chained != DirectionNone || len(s.ChainRoots) > 0:
		ext = Extensibility{Kind: ExtensibilityLink, Tag: name, Direction: s.Chained}
	default:
		ext = Extensibility{Kind: ExtensibilityNone}
	}
	c.extensions[name] = ext
	return ext, nil
}

// StructuresRequiringWrap gives every structure that needs a host wrapper.
func (c *Classifier) StructuresRequiringWrap() (NameSet, error) {
	set := make(NameSet)
	for _, name := range c.schema.Names() {
		e, _ := c.schema.Lookup(name)
		if _, ok := e.(*Structure); !ok || e.GetTags().Has(EmscriptenTag) {
			continue
		}
		wraps, err := c.StructureNeedsWrap(name)
		if err != nil {
			return nil, entityError(name, err)
		}
		if wraps {
			set.Add(name)
		}
	}
	return set, nil
}

// StructuresRequiringReverseInit gives every structure that the API hands
// back and so needs a raw-to-host reconstruction path: returned structures,
// structures passed by mutable pointer, structures received by function
// pointers and callbacks (by value or by pointer), structures declaring chain
// roots, and every structure that is a member of one of these.
func (c *Classifier) StructuresRequiringReverseInit() (NameSet, error) {
	set := make(NameSet)
	var worklist []Name
	include := func(u TypeUsage) error {
		name, e, err := c.schema.Resolve(u.Type)
		if err != nil {
			return err
		}
		if _, ok := e.(*Structure); ok && !set.Has(name) {
			set.Add(name)
			worklist = append(worklist, name)
		}
		return nil
	}
	includeReturn := func(r *ReturnType) error {
		if r == nil {
			return nil
		}
		return include(r.Usage())
	}
	includeArgs := func(args []Record, annotations ...Annotation) error {
		for _, arg := range args {
			if !slices.Contains(annotations, arg.Annotation) {
				continue
			}
			if err := include(arg.TypeUsage); err != nil {
				return fmt.Errorf("%s: %w", arg.Name, err)
			}
		}
		return nil
	}

	for _, name := range c.schema.Names() {
		e, _ := c.schema.Lookup(name)
		if e.GetTags().Has(EmscriptenTag) {
			continue
		}
		var err error
		switch e := e.(type) {
		case *Function:
			if err = includeReturn(e.Returns); err == nil {
				err = includeArgs(e.Args, AnnotationMut)
			}
		case *Object:
			for _, m := range e.Methods {
				if m.Tags.Has(EmscriptenTag) {
					continue
				}
				if err = includeReturn(m.Returns); err == nil {
					err = includeArgs(m.Args, AnnotationMut)
				}
				if err != nil {
					err = fmt.Errorf("%s: %w", m.Name, err)
					break
				}
			}
		case *FunctionPointer:
			if err = includeReturn(e.Returns); err == nil {
				err = includeArgs(e.Args, AnnotationNone, AnnotationMut, AnnotationConst)
			}
		case *CallbackFunction:
			err = includeArgs(e.Args, AnnotationNone, AnnotationMut, AnnotationConst)
		case *Structure:
			if len(e.ChainRoots) > 0 && !set.Has(name) {
				set.Add(name)
				worklist = append(worklist, name)
			}
		}
		if err != nil {
			return nil, entityError(name, err)
		}
	}

	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		s, err := c.structure(name)
		if err != nil {
			return nil, entityError(name, err)
		}
		for _, m := range s.Members {
			if err := include(m.TypeUsage); err != nil {
				return nil, entityError(name, fmt.Errorf("%s: %w", m.Name, err))
			}
		}
	}
	return set, nil
}

func (c *Classifier) structure(name Name) (*Structure, error) {
	e, ok := c.schema.Lookup(name)
	if !ok {
		return nil, unknownType(name)
	}
	s, ok := e.(*Structure)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %s, not a structure", ErrUnknownTypeReference, name, e.Category())
	}
	return s, nil
}

// Native type names with special handling.
var (
	nativeBool   = NewName("bool")
	nativeChar   = NewName("char")
	nativeVoid   = NewName("void")
	nativeFloat  = NewName("float")
	nativeDouble = NewName("double")
)
