// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"fmt"
)

var (
	getterVerb  = "get"
	setterVerb  = "set"
	creatorVerb = "create"
)

// Callable is a summarized method or free function: its arguments with the
// array pairings and callback userdata slots worked out, plus the naming and
// ownership facts that every backend needs.
type Callable struct {
	// Owner is the object a method belongs to, and empty for free functions.
	Owner Name
	Name  Name

	Args    []Record
	Returns *ReturnType

	// Pairing relates array arguments to their count arguments.
	Pairing Pairing

	// Userdata maps each legacy userdata argument to the callback argument
	// whose closure it carries. Such arguments are filled in by the wrapper.
	Userdata map[Name]Name

	// Getter is the property name of a zero-argument "get X" method, and
	// empty otherwise.
	Getter Name

	// Setter is the property name of a "set X" method taking one argument
	// and returning nothing, and empty otherwise.
	Setter Name

	// ReturnsObject is set when the result is an object handle whose
	// reference is transferred to the caller.
	ReturnsObject bool

	// Creates names the object that a "create X" free function constructs.
	Creates Name
}

// IsMethod returns whether the callable is bound to an object.
func (c Callable) IsMethod() bool {
	return !c.Owner.IsEmpty()
}

// IsGetter returns whether the callable is getter-shaped.
func (c Callable) IsGetter() bool {
	return !c.Getter.IsEmpty()
}

// IsSetter returns whether the callable is setter-shaped.
func (c Callable) IsSetter() bool {
	return !c.Setter.IsEmpty()
}

// IsHidden returns whether the argument is filled in by the wrapper: it is
// either an array count or a callback's userdata.
func (c Callable) IsHidden(arg Name) bool {
	if c.Pairing.IsCount(arg) {
		return true
	}
	_, ok := c.Userdata[arg]
	return ok
}

// HostArgs gives the arguments that make up the host signature.
func (c Callable) HostArgs() []Record {
	var args []Record
	for _, arg := range c.Args {
		if !c.IsHidden(arg.Name) {
			args = append(args, arg)
		}
	}
	return args
}

// SymbolName gives the raw C symbol: "wgpuDeviceCreateBuffer" for methods
// and "wgpuCreateInstance" for free functions.
func (c Callable) SymbolName() string {
	return "wgpu" + c.Owner.UpperCamelCase() + c.Name.UpperCamelCase()
}

// getterName gives X of a "get X" method without arguments. Only methods
// with a result are getters.
func getterName(name Name, args []Record) (Name, bool) {
	if name.Len() < 2 || name.FirstPart() != getterVerb || len(args) > 0 {
		return Name{}, false
	}
	return name.SubName(1), true
}

// setterName gives X of a "set X" method with exactly one argument.
func setterName(name Name, args []Record) (Name, bool) {
	if name.Len() < 2 || name.FirstPart() != setterVerb || len(args) != 1 {
		return Name{}, false
	}
	return name.SubName(1), true
}

// userdataNames are the argument names that carry a legacy callback's
// closure.
var userdataNames = Names("userdata", "userdata1", "userdata2")

// pairUserdata finds callback arguments directly followed by opaque userdata
// arguments, which is how callbacks were passed before callback info records.
func pairUserdata(schema *Schema, args []Record) (map[Name]Name, error) {
	pairs := make(map[Name]Name)
	for i := 0; i < len(args); i++ {
		_, e, err := schema.Resolve(args[i].Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", args[i].Name, err)
		}
		if _, ok := e.(*CallbackFunction); !ok {
			continue
		}
		for j := i + 1; j < len(args) && isUserdata(args[j]); j++ {
			pairs[args[j].Name] = args[i].Name
		}
	}
	return pairs, nil
}

func isUserdata(r Record) bool {
	if r.Type != nativeVoid || r.Annotation != AnnotationMut {
		return false
	}
	for _, name := range userdataNames {
		if r.Name == name {
			return true
		}
	}
	return false
}

func newCallable(schema *Schema, owner, name Name, args []Record, returns *ReturnType) (Callable, error) {
	pairing, err := PairArrays(args)
	if err != nil {
		return Callable{}, err
	}
	userdata, err := pairUserdata(schema, args)
	if err != nil {
		return Callable{}, err
	}
	c := Callable{
		Owner:    owner,
		Name:     name,
		Args:     args,
		Returns:  returns,
		Pairing:  pairing,
		Userdata: userdata,
	}
	if getter, ok := getterName(name, args); ok && !owner.IsEmpty() && returns != nil {
		c.Getter = getter
	}
	if setter, ok := setterName(name, args); ok && !owner.IsEmpty() && returns == nil {
		c.Setter = setter
	}
	if returns != nil {
		target, e, err := schema.Resolve(returns.Type)
		if err != nil {
			return Callable{}, fmt.Errorf("return type: %w", err)
		}
		if _, ok := e.(*Object); ok {
			c.ReturnsObject = true
			if owner.IsEmpty() && name.FirstPart() == creatorVerb && name.SubName(1) == target {
				c.Creates = target
			}
		}
	}
	return c, nil
}
